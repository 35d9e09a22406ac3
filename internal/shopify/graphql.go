package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"shopcrawl/internal/config"
	"shopcrawl/internal/logger"
	"shopcrawl/internal/models"
	"shopcrawl/internal/scrape"
)

const graphqlAPIVersion = "2024-01"

// The Storefront API caps page sizes at 250; variants and images are bounded
// per product so one query returns a complete page.
const productsQuery = `query Products($pageSize: Int!, $cursor: String) {
  products(first: $pageSize, after: $cursor) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        id title handle vendor productType descriptionHtml tags
        createdAt updatedAt publishedAt
        variants(first: 100) {
          edges {
            node {
              id title sku availableForSale
              price { amount }
              compareAtPrice { amount }
            }
          }
        }
        images(first: 50) { edges { node { url } } }
      }
    }
  }
}`

// GraphQLClient fetches product pages through the Storefront GraphQL API.
// It is the preferred strategy whenever an access token is configured.
// It implements scrape.Strategy.
type GraphQLClient struct {
	storeDomain string
	baseURL     string
	accessToken string
	pageSize    int
	userAgent   string
	httpClient  *http.Client
	logger      *logger.Logger

	cursor string
}

func NewGraphQLClient(storeDomain string, cfg *config.Config, logger *logger.Logger) *GraphQLClient {
	pageSize := cfg.PageSize
	if pageSize > 250 {
		pageSize = 250
	}

	return &GraphQLClient{
		storeDomain: storeDomain,
		baseURL:     "https://" + storeDomain,
		accessToken: cfg.AccessToken,
		pageSize:    pageSize,
		userAgent:   cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

func (c *GraphQLClient) Name() string { return "storefront_graphql" }

func (c *GraphQLClient) Available() bool { return c.accessToken != "" }

func (c *GraphQLClient) Reset() { c.cursor = "" }

func (c *GraphQLClient) Fetch(ctx context.Context) ([]models.Product, bool, error) {
	variables := map[string]interface{}{
		"pageSize": c.pageSize,
	}
	if c.cursor != "" {
		variables["cursor"] = c.cursor
	}

	payload, err := json.Marshal(map[string]interface{}{
		"query":     productsQuery,
		"variables": variables,
	})
	if err != nil {
		return nil, false, scrape.Malformed("storefront_graphql", err)
	}

	endpoint := fmt.Sprintf("%s/api/%s/graphql.json", c.baseURL, graphqlAPIVersion)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, false, scrape.Malformed("storefront_graphql", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, scrape.Transient("storefront_graphql", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, scrape.FromStatus("storefront_graphql", resp.StatusCode)
	}

	var body gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, scrape.Malformed("storefront_graphql", fmt.Errorf("failed to decode response: %w", err))
	}

	// GraphQL-level errors (invalid token, malformed query) are never
	// retryable on this strategy.
	if len(body.Errors) > 0 {
		err := fmt.Errorf("graphql error: %s", body.Errors[0].Message)
		if isAuthMessage(body.Errors[0].Message) {
			return nil, false, scrape.Auth("storefront_graphql", err)
		}
		return nil, false, scrape.Malformed("storefront_graphql", err)
	}
	if body.Data == nil {
		return nil, false, scrape.Malformed("storefront_graphql", fmt.Errorf("response has no data"))
	}

	products := body.Data.Products
	page := make([]models.Product, 0, len(products.Edges))
	for i := range products.Edges {
		page = append(page, FromGraphQL(c.storeDomain, &products.Edges[i].Node))
	}

	c.cursor = products.PageInfo.EndCursor
	return page, products.PageInfo.HasNextPage, nil
}

func isAuthMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "access") || strings.Contains(m, "token") || strings.Contains(m, "unauthorized")
}
