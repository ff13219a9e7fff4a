// Package provider is a client for the Pokémon TCG card-data API.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.pokemontcg.io/v2"
	defaultPageSize = 250
	defaultTimeout  = 60 * time.Second
	userAgent       = "tcg-collection-api/1.0"

	// maxPages bounds pagination if the provider keeps returning full pages.
	maxPages = 200
)

// Config holds provider client settings.
type Config struct {
	BaseURL           string
	APIKey            string
	PageSize          int
	Timeout           time.Duration
	RequestsPerSecond float64
}

// StatusError is returned when the provider answers with a non-200 status.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d for %s", e.StatusCode, e.URL)
}

// Client fetches expansions and cards from the card-data API.
// Requests are rate limited and never retried.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	apiKey      string
	pageSize    int
}

// NewClient creates a new provider client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(limit, 1),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		pageSize:    cfg.PageSize,
	}
}

// GetSets retrieves every expansion the provider knows about.
func (c *Client) GetSets(ctx context.Context) ([]Set, error) {
	sets, err := fetchAll[Set](ctx, c, "/sets", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get sets: %w", err)
	}
	return sets, nil
}

// GetCardsBySet retrieves all cards of one expansion.
func (c *Client) GetCardsBySet(ctx context.Context, setID string) ([]Card, error) {
	query := url.Values{"q": {"set.id:" + setID}}

	cards, err := fetchAll[Card](ctx, c, "/cards", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for set %s: %w", setID, err)
	}
	return cards, nil
}

// fetchAll walks the pages of a list endpoint until totalCount items are read
// or a page comes back empty.
func fetchAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var all []T

	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		params := url.Values{}
		for k, v := range query {
			params[k] = v
		}
		params.Set("page", strconv.Itoa(pageNum))
		params.Set("pageSize", strconv.Itoa(c.pageSize))

		var p page[T]
		if err := c.doRequest(ctx, c.baseURL+path+"?"+params.Encode(), &p); err != nil {
			return nil, err
		}

		all = append(all, p.Data...)

		if len(p.Data) == 0 || len(all) >= p.TotalCount {
			return all, nil
		}
	}

	log.Printf("[ProviderClient] Stopped paging %s after %d pages", path, maxPages)
	return all, nil
}

// doRequest performs a rate-limited GET and decodes a 200 JSON body into result.
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("[ProviderClient] %s returned HTTP %d", url, resp.StatusCode)
		return &StatusError{StatusCode: resp.StatusCode, URL: url, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return nil
}
