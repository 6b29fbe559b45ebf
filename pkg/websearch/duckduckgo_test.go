package websearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestSearchParsesAbstractAndTopics(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "what is pix" {
			t.Errorf("unexpected query: %q", got)
		}
		w.Write([]byte(`{
			"Heading": "Pix",
			"Abstract": "Pix is an instant payment platform.",
			"AbstractURL": "https://example.org/pix",
			"RelatedTopics": [
				{"Text": "Pix was created by the central bank.", "FirstURL": "https://example.org/bcb"},
				{"Text": "", "FirstURL": "https://example.org/empty"},
				{"Text": "Pix transfers settle in seconds.", "FirstURL": "https://example.org/speed"}
			]
		}`))
	})

	hits, err := client.Search(context.Background(), "what is pix", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Title != "Pix" || hits[0].Snippet != "Pix is an instant payment platform." {
		t.Fatalf("unexpected first hit: %#v", hits[0])
	}
	if hits[1].URL != "https://example.org/bcb" {
		t.Fatalf("unexpected second hit: %#v", hits[1])
	}
}

func TestSearchServerErrorIsSearchUnavailable(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Search(context.Background(), "anything", 3)
	if !errors.Is(err, contractx.ErrSearchUnavailable) {
		t.Fatalf("expected ErrSearchUnavailable, got %v", err)
	}
}

func TestSearchEmptyAnswer(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Heading":"","Abstract":"","RelatedTopics":[]}`))
	})

	hits, err := client.Search(context.Background(), "obscure", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %#v", hits)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	t.Parallel()

	// "çã" are two-byte runes; a byte cut at 9 would land mid-rune.
	s := "transaçõe" + "s bancárias"
	got := truncate(s, 9)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if len(got) > 9+len("...") {
		t.Fatalf("truncate result too long: %q", got)
	}

	if got := truncate("short", 100); got != "short" {
		t.Fatalf("truncate(%q, 100) = %q, want unchanged", "short", got)
	}
}
