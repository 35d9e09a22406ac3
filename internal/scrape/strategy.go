package scrape

import (
	"context"

	"shopcrawl/internal/models"
)

// Strategy is one way of acquiring product pages from a store. Fetch returns
// the next page of normalized products and whether more pages remain; the
// first call starts at the beginning of the catalog.
type Strategy interface {
	Name() string

	// Available reports whether the strategy can run with the current
	// configuration (the GraphQL strategy needs an access token, the
	// renderer needs fallback scraping enabled).
	Available() bool

	Fetch(ctx context.Context) (page []models.Product, more bool, err error)

	// Reset rewinds pagination so the next Fetch starts over.
	Reset()
}
