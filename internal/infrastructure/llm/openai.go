package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

const summarizeSystemPrompt = `You are a professional content summarizer. Create a concise, engaging title ` +
	`and a 2-3 sentence summary highlighting the key points. Stay accurate and add nothing that is not ` +
	`in the content. Respond with JSON: {"short_title": string, "synopsis": string}.`

// Client implements the summarization and ranking collaborators backed by an
// OpenAI-compatible chat completions API.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var (
	_ ports.Summarizer = (*Client)(nil)
	_ ports.Ranker     = (*Client)(nil)
)

// NewClient builds a client from configuration.
func NewClient(cfg config.OpenAIConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Summarize asks the model for a short title and 2-3 sentence synopsis. Any
// transport, decode, or validation problem is one opaque failure; the pipeline
// does not distinguish cause.
func (c *Client) Summarize(ctx context.Context, title, body string) (domain.DigestText, error) {
	userPrompt := fmt.Sprintf("Please create a digest for this content:\n\nTitle: %s\n\n%s", title, body)

	content, err := c.complete(ctx, summarizeSystemPrompt, userPrompt)
	if err != nil {
		return domain.DigestText{}, err
	}

	var parsed struct {
		ShortTitle string `json:"short_title"`
		Synopsis   string `json:"synopsis"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return domain.DigestText{}, fmt.Errorf("decode summary output: %w", err)
	}
	if strings.TrimSpace(parsed.ShortTitle) == "" || strings.TrimSpace(parsed.Synopsis) == "" {
		return domain.DigestText{}, fmt.Errorf("summary output missing title or synopsis")
	}
	return domain.DigestText{
		ShortTitle: strings.TrimSpace(parsed.ShortTitle),
		Synopsis:   strings.TrimSpace(parsed.Synopsis),
	}, nil
}

// Score ranks candidate summaries against the recipient profile, returning
// relevance scores from 0 to 100 in the model's preferred order.
func (c *Client) Score(ctx context.Context, profile domain.RecipientProfile, candidates []domain.SummarizedItem) ([]domain.RankedItem, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	var catalog strings.Builder
	for i, candidate := range candidates {
		fmt.Fprintf(&catalog, "Candidate %d:\nID: %d\nTitle: %s\nSummary: %s\nType: %s\n\n",
			i+1, candidate.Item.ID, candidate.Summary.ShortTitle, candidate.Summary.Synopsis, candidate.Item.Kind)
	}

	systemPrompt := fmt.Sprintf(`You are a personalized news anchor ranking items for a reader.

Reader profile:
- Name: %s
- Background: %s
- Interests: %s

Rank every candidate from most to least relevant to this reader, assigning a relevance score from 0.0 to 100.0. Include every candidate exactly once. Respond with JSON: {"items": [{"id": number, "score": number}]}.`,
		profile.Name, profile.Background, profile.Interests)

	userPrompt := fmt.Sprintf("Please rank these %d candidates:\n\n%s", len(candidates), catalog.String())

	content, err := c.complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Items []struct {
			ID    int64   `json:"id"`
			Score float64 `json:"score"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("decode ranking output: %w", err)
	}

	ranked := make([]domain.RankedItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		ranked = append(ranked, domain.RankedItem{ContentItemID: item.ID, Score: item.Score})
	}
	return ranked, nil
}

// complete posts one system+user exchange and returns the first choice's text.
func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("openai client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("model error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
