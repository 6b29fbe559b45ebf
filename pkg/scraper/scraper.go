// Package scraper fetches product pages and reduces them to plain text
// for index ingestion.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// Page is the scraped content of one URL.
type Page struct {
	URL      string
	Title    string
	Text     string
	Headings []string
}

type Scraper struct {
	httpClient *http.Client
}

type Option func(*Scraper)

func WithHTTPClient(hc *http.Client) Option {
	return func(s *Scraper) {
		if hc != nil {
			s.httpClient = hc
		}
	}
}

func New(cfg Config, opts ...Option) *Scraper {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &Scraper{
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScrapeURL fetches one page and strips scripts, styles, and markup.
func (s *Scraper) ScrapeURL(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; agentswarm/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	doc.Find("script, style, noscript").Remove()

	var headings []string
	doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		if h := strings.TrimSpace(sel.Text()); h != "" {
			headings = append(headings, h)
		}
	})

	return &Page{
		URL:      pageURL,
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		Text:     collapseWhitespace(doc.Find("body").Text()),
		Headings: headings,
	}, nil
}

// ScrapeAll fetches every URL concurrently and returns the pages that
// succeeded, preserving input order. Failures are logged and skipped.
func (s *Scraper) ScrapeAll(ctx context.Context, urls []string) []Page {
	results := make([]*Page, len(urls))

	var wg sync.WaitGroup
	for i, pageURL := range urls {
		wg.Add(1)
		go func(i int, pageURL string) {
			defer wg.Done()
			page, err := s.ScrapeURL(ctx, pageURL)
			if err != nil {
				log.Warn().Err(err).Str("url", pageURL).Msg("scrape failed")
				return
			}
			results[i] = page
		}(i, pageURL)
	}
	wg.Wait()

	pages := make([]Page, 0, len(urls))
	for _, p := range results {
		if p != nil {
			pages = append(pages, *p)
		}
	}
	return pages
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
