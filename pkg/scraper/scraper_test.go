package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const samplePage = `<html>
<head><title>Maquininha Smart</title><script>track()</script></head>
<body>
	<h1>Maquininha Smart</h1>
	<h2>Taxas</h2>
	<p>Credit cards 2.5%, Debit cards 1.9%.</p>
	<style>.x{color:red}</style>
</body>
</html>`

func TestScrapeURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	t.Cleanup(srv.Close)

	s := New(Config{Timeout: 2 * time.Second})
	page, err := s.ScrapeURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ScrapeURL() error = %v", err)
	}

	if page.Title != "Maquininha Smart" {
		t.Fatalf("unexpected title: %q", page.Title)
	}
	if len(page.Headings) != 2 || page.Headings[1] != "Taxas" {
		t.Fatalf("unexpected headings: %#v", page.Headings)
	}
	if !strings.Contains(page.Text, "Credit cards 2.5%") {
		t.Fatalf("body text missing content: %q", page.Text)
	}
	if strings.Contains(page.Text, "track()") || strings.Contains(page.Text, "color:red") {
		t.Fatalf("script/style content leaked into text: %q", page.Text)
	}
}

func TestScrapeAllSkipsFailures(t *testing.T) {
	t.Parallel()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	t.Cleanup(good.Close)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(bad.Close)

	s := New(Config{Timeout: 2 * time.Second})
	pages := s.ScrapeAll(context.Background(), []string{good.URL, bad.URL})

	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if pages[0].URL != good.URL {
		t.Fatalf("unexpected page url: %s", pages[0].URL)
	}
}
