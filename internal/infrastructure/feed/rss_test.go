package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/scanner"
)

var scanNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

const rssPayload = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <item>
      <title>Fresh article</title>
      <link>https://example.org/fresh</link>
      <guid>tag:example.org,2025:fresh</guid>
      <description>Something new happened.</description>
      <pubDate>Sun, 01 Jun 2025 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Stale article</title>
      <link>https://example.org/stale</link>
      <guid>tag:example.org,2025:stale</guid>
      <description>Old news.</description>
      <pubDate>Mon, 26 May 2025 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>No guid</title>
      <link>https://example.org/no-guid</link>
      <description>Falls back to the link.</description>
      <pubDate>Sun, 01 Jun 2025 09:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Broken date</title>
      <link>https://example.org/broken</link>
      <guid>tag:example.org,2025:broken</guid>
      <pubDate>yesterday-ish</pubDate>
    </item>
  </channel>
</rss>`

func TestRSSScannerFiltersWindowAndKeys(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssPayload))
	}))
	defer server.Close()

	sc := NewRSSScanner(server.Client())
	items, err := sc.Scan(context.Background(), scanner.Request{
		Window:     domain.LastHours(scanNow, 24),
		SourceName: "example",
		URL:        server.URL,
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}
	first := items[0]
	if first.NaturalKey != "tag:example.org,2025:fresh" {
		t.Fatalf("unexpected natural key %q", first.NaturalKey)
	}
	if first.SourceID != "example" || first.Kind != domain.KindArticle {
		t.Fatalf("unexpected item metadata: %+v", first)
	}
	wantPublished := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(wantPublished) {
		t.Fatalf("expected publication time %v, got %v", wantPublished, first.PublishedAt)
	}
	second := items[1]
	if second.NaturalKey != "https://example.org/no-guid" {
		t.Fatalf("expected link fallback key, got %q", second.NaturalKey)
	}
}

func TestRSSScannerRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	sc := NewRSSScanner(server.Client())
	_, err := sc.Scan(context.Background(), scanner.Request{
		Window:     domain.LastHours(scanNow, 24),
		SourceName: "example",
		URL:        server.URL,
	})
	if err == nil {
		t.Fatal("expected error on 500 response")
	}
}

const atomPayload = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/">
  <entry>
    <yt:videoId>abc123</yt:videoId>
    <title>Fresh video</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=abc123"/>
    <published>2025-06-01T08:30:00+00:00</published>
    <media:group>
      <media:description>A demo walkthrough.</media:description>
    </media:group>
  </entry>
  <entry>
    <yt:videoId>old999</yt:videoId>
    <title>Stale video</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=old999"/>
    <published>2025-05-20T08:30:00+00:00</published>
  </entry>
</feed>`

func TestYouTubeScannerExtractsVideos(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(atomPayload))
	}))
	defer server.Close()

	sc := NewYouTubeScanner(server.Client())
	items, err := sc.Scan(context.Background(), scanner.Request{
		Window:     domain.LastHours(scanNow, 24),
		SourceName: "channel",
		URL:        server.URL,
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	video := items[0]
	if video.NaturalKey != "abc123" {
		t.Fatalf("expected video id key, got %q", video.NaturalKey)
	}
	if video.Kind != domain.KindVideo {
		t.Fatalf("expected video kind, got %q", video.Kind)
	}
	if video.URL != "https://www.youtube.com/watch?v=abc123" {
		t.Fatalf("unexpected url %q", video.URL)
	}
	if video.Body != "A demo walkthrough." {
		t.Fatalf("expected media description as body, got %q", video.Body)
	}
}

func TestParsePubDateLayouts(t *testing.T) {
	t.Parallel()

	cases := []string{
		"Sun, 01 Jun 2025 10:00:00 +0000",
		"Sun, 01 Jun 2025 10:00:00 GMT",
		"2025-06-01T10:00:00Z",
	}
	for _, value := range cases {
		if _, err := parsePubDate(value); err != nil {
			t.Fatalf("parsePubDate(%q): %v", value, err)
		}
	}
	if _, err := parsePubDate("last tuesday"); err == nil {
		t.Fatal("expected error for garbage date")
	}
}
