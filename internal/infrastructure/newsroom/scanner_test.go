package newsroom

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

const indexPage = `<!DOCTYPE html>
<html>
<body>
  <div class="cards">
    <a class="card" href="/news/fresh-announcement">
      <h3>Fresh announcement</h3>
      <time>Jun 1, 2025</time>
    </a>
    <a class="card" href="/news/fresh-announcement">
      <h3>Fresh announcement duplicate</h3>
      <time>Jun 1, 2025</time>
    </a>
    <a class="card" href="/news/old-announcement">
      <h3>Old announcement</h3>
      <time>May 12, 2025</time>
    </a>
    <a class="card" href="/news/undated">
      <h3>Undated card</h3>
    </a>
  </div>
</body>
</html>`

func TestScannerExtractsCardsInWindow(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(indexPage))
	}))
	defer server.Close()

	sc := NewScanner(server.Client())
	items, err := sc.Scan(context.Background(), scanner.Request{
		Window:     domain.LastHours(scanNow, 24),
		SourceName: "newsroom-site",
		URL:        server.URL + "/news",
		Options:    map[string]string{"entry": "a.card"},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d: %+v", len(items), items)
	}
	item := items[0]
	if item.URL != server.URL+"/news/fresh-announcement" {
		t.Fatalf("expected absolute URL, got %q", item.URL)
	}
	if item.NaturalKey != item.URL {
		t.Fatalf("natural key must be the absolute URL, got %q", item.NaturalKey)
	}
	if item.Title != "Fresh announcement" {
		t.Fatalf("date text must not leak into the title, got %q", item.Title)
	}
	wantDate := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	if !item.PublishedAt.Equal(wantDate) {
		t.Fatalf("expected %v, got %v", wantDate, item.PublishedAt)
	}
}

func TestScannerHonorsSelectorOptions(t *testing.T) {
	t.Parallel()

	page := `<html><body>
	  <div class="post">
	    <a href="https://example.org/posts/1"><span class="headline">Selector title</span></a>
	    <span class="when" datetime="2025-06-01T09:00:00Z">today</span>
	  </div>
	</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	sc := NewScanner(server.Client())
	items, err := sc.Scan(context.Background(), scanner.Request{
		Window:     domain.LastHours(scanNow, 24),
		SourceName: "custom",
		URL:        server.URL,
		Options: map[string]string{
			"entry": "div.post",
			"title": "span.headline",
			"date":  "span.when",
		},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Title != "Selector title" {
		t.Fatalf("unexpected title %q", items[0].Title)
	}
	if !items[0].PublishedAt.Equal(time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("datetime attribute not used: %v", items[0].PublishedAt)
	}
}

func TestScannerRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	sc := NewScanner(server.Client())
	_, err := sc.Scan(context.Background(), scanner.Request{
		Window:     domain.LastHours(scanNow, 24),
		SourceName: "broken",
		URL:        server.URL,
	})
	if err == nil {
		t.Fatal("expected error on 404 response")
	}
}
