package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/scanner"
)

// maxFeedBytes caps how much of a feed response is read.
const maxFeedBytes = 4 << 20

// YouTubeScanner fetches a channel's Atom feed and extracts videos published
// inside the requested window. The natural key is the platform video id.
type YouTubeScanner struct {
	client *http.Client
}

// NewYouTubeScanner wires an HTTP client; a nil client gets a 20s-timeout default.
func NewYouTubeScanner(client *http.Client) *YouTubeScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &YouTubeScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (y *YouTubeScanner) Name() string {
	return "youtube"
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	VideoID   string   `xml:"videoId"`
	Title     string   `xml:"title"`
	Link      atomLink `xml:"link"`
	Published string   `xml:"published"`
	Group     struct {
		Description string `xml:"description"`
	} `xml:"group"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

// Scan downloads the channel feed and keeps videos published in the window.
func (y *YouTubeScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.ContentItem, error) {
	raw, err := fetchBody(ctx, y.client, req.URL)
	if err != nil {
		return nil, fmt.Errorf("channel %s: %w", req.SourceName, err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(raw, &feed); err != nil {
		return nil, fmt.Errorf("channel %s: parse atom: %w", req.SourceName, err)
	}

	items := make([]domain.ContentItem, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		videoID := strings.TrimSpace(entry.VideoID)
		if videoID == "" {
			continue
		}
		publishedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(entry.Published))
		if err != nil {
			continue
		}
		if !req.Window.Contains(publishedAt) {
			continue
		}

		url := strings.TrimSpace(entry.Link.Href)
		if url == "" {
			url = "https://www.youtube.com/watch?v=" + videoID
		}

		items = append(items, domain.ContentItem{
			SourceID:    req.SourceName,
			NaturalKey:  videoID,
			Title:       strings.TrimSpace(entry.Title),
			URL:         url,
			Body:        strings.TrimSpace(entry.Group.Description),
			Kind:        domain.KindVideo,
			PublishedAt: publishedAt,
		})
	}
	return items, nil
}

func readAllLimited(body io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	return raw, nil
}
