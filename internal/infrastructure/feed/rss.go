package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/scanner"
)

// RSSScanner fetches an RSS 2.0 feed and extracts items published inside the
// requested window. The natural key is the item guid, falling back to its link.
type RSSScanner struct {
	client *http.Client
}

// NewRSSScanner wires an HTTP client; a nil client gets a 20s-timeout default.
func NewRSSScanner(client *http.Client) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RSSScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (r *RSSScanner) Name() string {
	return "rss"
}

type rssDocument struct {
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// Scan downloads the feed and keeps items whose publication time falls inside
// the window. Entries without a parseable date are skipped.
func (r *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.ContentItem, error) {
	raw, err := fetchBody(ctx, r.client, req.URL)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", req.SourceName, err)
	}

	var doc rssDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("feed %s: parse rss: %w", req.SourceName, err)
	}

	items := make([]domain.ContentItem, 0, len(doc.Channel.Items))
	for _, entry := range doc.Channel.Items {
		publishedAt, err := parsePubDate(entry.PubDate)
		if err != nil {
			continue
		}
		if !req.Window.Contains(publishedAt) {
			continue
		}

		naturalKey := strings.TrimSpace(entry.GUID)
		if naturalKey == "" {
			naturalKey = strings.TrimSpace(entry.Link)
		}
		if naturalKey == "" {
			continue
		}

		items = append(items, domain.ContentItem{
			SourceID:    req.SourceName,
			NaturalKey:  naturalKey,
			Title:       strings.TrimSpace(entry.Title),
			URL:         strings.TrimSpace(entry.Link),
			Body:        strings.TrimSpace(entry.Description),
			Kind:        domain.KindArticle,
			PublishedAt: publishedAt,
		})
	}
	return items, nil
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

func parsePubDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized publication date %q", value)
}

func fetchBody(ctx context.Context, client *http.Client, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsDigest/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	return readAllLimited(resp.Body)
}
