package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcrawl/internal/scrape"
)

func TestGraphQLClientPaginatesWithCursor(t *testing.T) {
	var cursors []interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token-123", r.Header.Get("X-Shopify-Storefront-Access-Token"))

		var req struct {
			Variables map[string]interface{} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		cursors = append(cursors, req.Variables["cursor"])

		if len(cursors) == 1 {
			w.Write([]byte(`{"data": {"products": {
				"pageInfo": {"hasNextPage": true, "endCursor": "abc"},
				"edges": [{"node": {"id": "gid://shopify/Product/1", "title": "One"}}]
			}}}`))
			return
		}
		w.Write([]byte(`{"data": {"products": {
			"pageInfo": {"hasNextPage": false, "endCursor": ""},
			"edges": [{"node": {"id": "gid://shopify/Product/2", "title": "Two"}}]
		}}}`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.AccessToken = "token-123"

	c := NewGraphQLClient("example.myshopify.com", cfg, testLogger())
	c.baseURL = srv.URL

	page1, more, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, more)
	require.Len(t, page1, 1)
	assert.Equal(t, "1", page1[0].ProductID)

	page2, more, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, more)
	require.Len(t, page2, 1)
	assert.Equal(t, "2", page2[0].ProductID)

	// first request carries no cursor, second carries the endCursor
	require.Len(t, cursors, 2)
	assert.Nil(t, cursors[0])
	assert.Equal(t, "abc", cursors[1])
}

func TestGraphQLClientAvailability(t *testing.T) {
	cfg := testConfig()
	c := NewGraphQLClient("example.myshopify.com", cfg, testLogger())
	assert.False(t, c.Available())

	cfg.AccessToken = "token"
	c = NewGraphQLClient("example.myshopify.com", cfg, testLogger())
	assert.True(t, c.Available())
}

func TestGraphQLClientInvalidTokenIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "Invalid Storefront access token"}]}`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.AccessToken = "bad-token"

	c := NewGraphQLClient("example.myshopify.com", cfg, testLogger())
	c.baseURL = srv.URL

	_, _, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, scrape.KindAuth, scrape.KindOf(err))
	assert.False(t, scrape.Recoverable(err))
}

func TestGraphQLClientQueryErrorIsUnrecoverable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors": [{"message": "Field 'bogus' doesn't exist on type 'Product'"}]}`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.AccessToken = "token"

	c := NewGraphQLClient("example.myshopify.com", cfg, testLogger())
	c.baseURL = srv.URL

	_, _, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, scrape.KindMalformed, scrape.KindOf(err))
	assert.False(t, scrape.Recoverable(err))
}

func TestGraphQLClientRateLimitIsRecoverable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.AccessToken = "token"

	c := NewGraphQLClient("example.myshopify.com", cfg, testLogger())
	c.baseURL = srv.URL

	_, _, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, scrape.KindRateLimited, scrape.KindOf(err))
	assert.True(t, scrape.Recoverable(err))
}
