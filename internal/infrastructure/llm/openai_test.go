package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
)

func testClient(endpoint string) *Client {
	return NewClient(config.OpenAIConfig{
		Endpoint: endpoint,
		Model:    "gpt-test",
		APIKey:   "secret",
	})
}

func completionResponse(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func TestSummarizeParsesModelOutput(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", got)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-test" {
			t.Errorf("unexpected model %q", req.Model)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %q", req.ResponseFormat.Type)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "Release notes") {
			t.Errorf("user prompt missing content: %+v", req.Messages)
		}
		_, _ = w.Write([]byte(completionResponse(`{"short_title": "Notes shipped", "synopsis": "The notes cover two fixes."}`)))
	}))
	defer server.Close()

	text, err := testClient(server.URL).Summarize(context.Background(), "Release notes", "Long body")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if text.ShortTitle != "Notes shipped" || text.Synopsis != "The notes cover two fixes." {
		t.Fatalf("unexpected digest text: %+v", text)
	}
}

func TestSummarizeRejectsIncompleteOutput(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(completionResponse(`{"short_title": "", "synopsis": "no title"}`)))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Summarize(context.Background(), "t", "b")
	if err == nil {
		t.Fatal("expected error for empty short title")
	}
}

func TestScoreParsesRanking(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		system := req.Messages[0].Content
		if !strings.Contains(system, "Interests: databases") {
			t.Errorf("profile missing from system prompt: %q", system)
		}
		if !strings.Contains(req.Messages[1].Content, "ID: 42") {
			t.Errorf("candidate catalog missing from user prompt: %q", req.Messages[1].Content)
		}
		_, _ = w.Write([]byte(completionResponse(`{"items": [{"id": 7, "score": 88.5}, {"id": 42, "score": 61.0}]}`)))
	}))
	defer server.Close()

	candidates := []domain.SummarizedItem{
		{Item: domain.ContentItem{ID: 42, Kind: domain.KindArticle}, Summary: domain.Summary{ContentItemID: 42, ShortTitle: "a"}},
		{Item: domain.ContentItem{ID: 7, Kind: domain.KindVideo}, Summary: domain.Summary{ContentItemID: 7, ShortTitle: "b"}},
	}
	ranked, err := testClient(server.URL).Score(context.Background(), domain.RecipientProfile{
		Email:     "reader@example.org",
		Name:      "Reader",
		Interests: "databases",
	}, candidates)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked items, got %d", len(ranked))
	}
	if ranked[0].ContentItemID != 7 || ranked[0].Score != 88.5 {
		t.Fatalf("unexpected first ranked item: %+v", ranked[0])
	}
}

func TestScoreEmptyCandidatesSkipsCall(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty candidates")
	}))
	defer server.Close()

	ranked, err := testClient(server.URL).Score(context.Background(), domain.RecipientProfile{}, nil)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if ranked != nil {
		t.Fatalf("expected nil result, got %v", ranked)
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limit"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Summarize(context.Background(), "t", "b")
	if err == nil {
		t.Fatal("expected error on 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error should carry the status, got %v", err)
	}
}

func TestClientRequiresConfiguration(t *testing.T) {
	t.Parallel()

	client := NewClient(config.OpenAIConfig{Endpoint: "http://localhost", Model: "m"})
	if _, err := client.Summarize(context.Background(), "t", "b"); err == nil {
		t.Fatal("expected error when the api key is missing")
	}
}
