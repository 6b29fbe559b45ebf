// Package websearch adapts the DuckDuckGo Instant Answer API as the
// external search collaborator.
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	contractx "github.com/agentswarm/agentswarm/agent/contract"
)

const DefaultMaxResults = 3

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.duckduckgo.com"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the client, mainly for tests.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("websearch base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid websearch base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type instantAnswer struct {
	Heading       string         `json:"Heading"`
	Abstract      string         `json:"Abstract"`
	AbstractURL   string         `json:"AbstractURL"`
	RelatedTopics []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

// Search returns up to maxResults ranked snippets. Any transport or
// decoding failure surfaces as ErrSearchUnavailable; the knowledge agent
// degrades gracefully on it.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]contractx.SearchHit, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_redirect", "1")
	params.Set("no_html", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", contractx.ErrSearchUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", contractx.ErrSearchUnavailable, resp.StatusCode)
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", contractx.ErrSearchUnavailable, err)
	}

	hits := make([]contractx.SearchHit, 0, maxResults)
	if abstract := strings.TrimSpace(answer.Abstract); abstract != "" {
		hits = append(hits, contractx.SearchHit{
			Title:   strings.TrimSpace(answer.Heading),
			Snippet: abstract,
			URL:     answer.AbstractURL,
		})
	}
	for _, topic := range answer.RelatedTopics {
		if len(hits) >= maxResults {
			break
		}
		text := strings.TrimSpace(topic.Text)
		if text == "" {
			continue
		}
		hits = append(hits, contractx.SearchHit{
			Title:   truncate(text, 100),
			Snippet: text,
			URL:     topic.FirstURL,
		})
	}
	return hits, nil
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
