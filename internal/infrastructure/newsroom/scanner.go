package newsroom

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/scanner"
)

const (
	defaultEntrySelector = "a[href]"
	defaultDateSelector  = "time"
	defaultDateLayout    = "Jan 2, 2006"
)

// Scanner crawls a newsroom index page (a listing of article cards) and
// extracts entries published inside the requested window. Selectors and the
// date layout come from source options so one strategy covers different sites:
//
//	entry:      selector for each article card (default "a[href]")
//	title:      selector inside the card for the title (default: card text)
//	date:       selector inside the card for the date (default "time")
//	dateLayout: Go layout for the date text (default "Jan 2, 2006")
type Scanner struct {
	client *http.Client
}

// NewScanner wires an HTTP client; a nil client gets a 20s-timeout default.
func NewScanner(client *http.Client) *Scanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Scanner{client: client}
}

// Name identifies the strategy inside the registry.
func (s *Scanner) Name() string {
	return "newsroom"
}

// Scan fetches the index page and returns entries inside the window, deduped
// by absolute URL.
func (s *Scanner) Scan(ctx context.Context, req scanner.Request) ([]domain.ContentItem, error) {
	doc, err := s.fetchDocument(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("newsroom %s: %w", req.SourceName, err)
	}

	base, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("newsroom %s: invalid url: %w", req.SourceName, err)
	}

	entrySelector := option(req.Options, "entry", defaultEntrySelector)
	var (
		results []domain.ContentItem
		seen    = map[string]struct{}{}
	)
	doc.Find(entrySelector).Each(func(i int, entry *goquery.Selection) {
		item, err := parseEntry(entry, base, req)
		if err != nil {
			return
		}
		if !req.Window.Contains(item.PublishedAt) {
			return
		}
		if _, ok := seen[item.NaturalKey]; ok {
			return
		}
		seen[item.NaturalKey] = struct{}{}
		results = append(results, item)
	})

	return results, nil
}

func (s *Scanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsDigest/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsroom returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func parseEntry(entry *goquery.Selection, base *url.URL, req scanner.Request) (domain.ContentItem, error) {
	href, ok := entry.Attr("href")
	if !ok {
		if link := entry.Find("a[href]").First(); link.Length() > 0 {
			href, _ = link.Attr("href")
		}
	}
	href = strings.TrimSpace(href)
	if href == "" {
		return domain.ContentItem{}, fmt.Errorf("entry has no link")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("invalid entry link %q: %w", href, err)
	}
	absolute := base.ResolveReference(ref).String()

	title := collapseSpace(entry.Text())
	if selector := option(req.Options, "title", ""); selector != "" {
		title = collapseSpace(entry.Find(selector).First().Text())
	}
	if title == "" {
		return domain.ContentItem{}, fmt.Errorf("entry has no title")
	}

	dateSelector := option(req.Options, "date", defaultDateSelector)
	dateNode := entry.Find(dateSelector).First()
	dateText := collapseSpace(dateNode.Text())
	if datetime, ok := dateNode.Attr("datetime"); ok {
		dateText = strings.TrimSpace(datetime)
	}
	publishedAt, err := parseDate(dateText, option(req.Options, "dateLayout", defaultDateLayout))
	if err != nil {
		return domain.ContentItem{}, err
	}

	// The date node's text would otherwise leak into a text-derived title.
	if option(req.Options, "title", "") == "" && dateText != "" {
		title = collapseSpace(strings.ReplaceAll(title, dateText, " "))
	}

	return domain.ContentItem{
		SourceID:    req.SourceName,
		NaturalKey:  absolute,
		Title:       title,
		URL:         absolute,
		Kind:        domain.KindArticle,
		PublishedAt: publishedAt,
	}, nil
}

func parseDate(value, layout string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("entry has no date")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(layout, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func option(options map[string]string, key, fallback string) string {
	if v, ok := options[key]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func collapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
