package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shopcrawl/internal/config"
	"shopcrawl/internal/logger"
	"shopcrawl/internal/models"
	"shopcrawl/internal/scrape"
)

// Client fetches product pages from a store's public /products.json endpoint.
// It implements scrape.Strategy.
type Client struct {
	storeDomain string
	baseURL     string
	pageSize    int
	userAgent   string
	minInterval time.Duration
	httpClient  *http.Client
	logger      *logger.Logger

	page        int
	lastRequest time.Time
}

func NewClient(storeDomain string, cfg *config.Config, logger *logger.Logger) *Client {
	var minInterval time.Duration
	if cfg.RateLimit > 0 {
		minInterval = time.Duration(float64(time.Second) / cfg.RateLimit)
	}

	return &Client{
		storeDomain: storeDomain,
		baseURL:     "https://" + storeDomain,
		pageSize:    cfg.PageSize,
		userAgent:   cfg.UserAgent,
		minInterval: minInterval,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
		page:   1,
	}
}

func (c *Client) Name() string { return "public_json" }

func (c *Client) Available() bool { return true }

func (c *Client) Reset() { c.page = 1 }

// Fetch returns the next page of products. Pagination ends when a page comes
// back short or empty.
func (c *Client) Fetch(ctx context.Context) ([]models.Product, bool, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, false, err
	}

	endpoint := fmt.Sprintf("%s/products.json?limit=%d&page=%d", c.baseURL, c.pageSize, c.page)
	c.logger.Debug("fetching %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, false, scrape.Malformed("public_json", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, scrape.Transient("public_json", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, scrape.FromStatus("public_json", resp.StatusCode)
	}

	var body ProductsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, scrape.Malformed("public_json", fmt.Errorf("failed to decode response: %w", err))
	}

	page := make([]models.Product, 0, len(body.Products))
	for i := range body.Products {
		page = append(page, FromREST(c.storeDomain, &body.Products[i]))
	}

	c.page++
	more := len(body.Products) == c.pageSize && c.pageSize > 0
	return page, more, nil
}

// throttle enforces the minimum inter-request delay derived from the
// configured rate limit.
func (c *Client) throttle(ctx context.Context) error {
	if c.minInterval > 0 && !c.lastRequest.IsZero() {
		if wait := c.minInterval - time.Since(c.lastRequest); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	c.lastRequest = time.Now()
	return nil
}

// CleanDomain reduces a store URL or bare host to its hostname.
func CleanDomain(storeURL string) (string, error) {
	s := strings.TrimSpace(storeURL)
	if s == "" {
		return "", errors.New("empty store URL")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid store URL %q: %w", storeURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("store URL %q has no host", storeURL)
	}
	return u.Host, nil
}
