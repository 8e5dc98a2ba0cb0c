package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "NEWSDIGEST_CONFIG"
	databasePathEnv   = "DATABASE_PATH"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	openAIModelEnv    = "OPENAI_MODEL"
	smtpHostEnv       = "SMTP_HOST"
	smtpPortEnv       = "SMTP_PORT"
	smtpUsernameEnv   = "SMTP_USERNAME"
	smtpPasswordEnv   = "SMTP_PASSWORD"
	smtpFromEnv       = "SMTP_FROM"
)

// DedupeNaturalKey is the only supported dedupe mode: ingested items collapse
// on (source_id, natural_key). Similarity-based dedupe is reserved config space.
const DedupeNaturalKey = "natural-key"

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Delivery  DeliveryConfig  `yaml:"delivery"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Logging   LoggingConfig   `yaml:"logging"`
	Sources   []SourceConfig  `yaml:"sources"`
}

// DatabaseConfig describes the SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when recurring runs execute.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// OpenAIConfig defines how to contact the OpenAI-compatible API used for
// summarization and ranking.
type OpenAIConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// SMTPConfig wires the outbound email transport.
type SMTPConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	From          string `yaml:"from"`
	SubjectPrefix string `yaml:"subjectPrefix"`
}

// DeliveryConfig bounds what one run delivers.
type DeliveryConfig struct {
	WindowHours      int `yaml:"windowHours"`
	TopN             int `yaml:"topN"`
	SummaryWorkers   int `yaml:"summaryWorkers"`
	RecipientWorkers int `yaml:"recipientWorkers"`
}

// IngestConfig tunes ingestion behavior.
type IngestConfig struct {
	Dedupe string `yaml:"dedupe"`
}

// LoggingConfig selects log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SourceConfig describes one content source with its scanner strategy.
type SourceConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	URL     string            `yaml:"url"`
	Options map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Ingest.Dedupe != DedupeNaturalKey {
		return fmt.Errorf("config: unsupported ingest.dedupe %q (only %q is implemented)", c.Ingest.Dedupe, DedupeNaturalKey)
	}
	if c.Delivery.WindowHours <= 0 {
		return fmt.Errorf("config: delivery.windowHours must be positive, got %d", c.Delivery.WindowHours)
	}
	if c.Delivery.TopN <= 0 {
		return fmt.Errorf("config: delivery.topN must be positive, got %d", c.Delivery.TopN)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv(smtpHostEnv); v != "" {
		c.SMTP.Host = v
	}
	if v := os.Getenv(smtpPortEnv); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil && port > 0 {
			c.SMTP.Port = port
		}
	}
	if v := os.Getenv(smtpUsernameEnv); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv(smtpFromEnv); v != "" {
		c.SMTP.From = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}

	if override.SMTP.Host != "" {
		base.SMTP.Host = override.SMTP.Host
	}
	if override.SMTP.Port != 0 {
		base.SMTP.Port = override.SMTP.Port
	}
	if override.SMTP.Username != "" {
		base.SMTP.Username = override.SMTP.Username
	}
	if override.SMTP.Password != "" {
		base.SMTP.Password = override.SMTP.Password
	}
	if override.SMTP.From != "" {
		base.SMTP.From = override.SMTP.From
	}
	if override.SMTP.SubjectPrefix != "" {
		base.SMTP.SubjectPrefix = override.SMTP.SubjectPrefix
	}

	if override.Delivery.WindowHours != 0 {
		base.Delivery.WindowHours = override.Delivery.WindowHours
	}
	if override.Delivery.TopN != 0 {
		base.Delivery.TopN = override.Delivery.TopN
	}
	if override.Delivery.SummaryWorkers != 0 {
		base.Delivery.SummaryWorkers = override.Delivery.SummaryWorkers
	}
	if override.Delivery.RecipientWorkers != 0 {
		base.Delivery.RecipientWorkers = override.Delivery.RecipientWorkers
	}

	if override.Ingest.Dedupe != "" {
		base.Ingest.Dedupe = override.Ingest.Dedupe
	}
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database:  DatabaseConfig{Path: "newsdigest.db"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		OpenAI: OpenAIConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
		},
		SMTP: SMTPConfig{
			Host:          "localhost",
			Port:          587,
			SubjectPrefix: "[NewsDigest]",
		},
		Delivery: DeliveryConfig{
			WindowHours:      24,
			TopN:             10,
			SummaryWorkers:   4,
			RecipientWorkers: 4,
		},
		Ingest:  IngestConfig{Dedupe: DedupeNaturalKey},
		Logging: LoggingConfig{Level: "info"},
		Sources: []SourceConfig{
			{
				Name:    "anthropic-news",
				Scanner: "newsroom",
				URL:     "https://www.anthropic.com/news",
			},
			{
				Name:    "openai-news",
				Scanner: "rss",
				URL:     "https://openai.com/news/rss.xml",
			},
		},
	}
}
