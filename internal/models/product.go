package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the canonical record every acquisition strategy is normalized
// into. (StoreDomain, ProductID) identifies a product; re-scraping updates the
// stored document instead of duplicating it.
type Product struct {
	StoreDomain string     `json:"store_domain" bson:"store_domain"`
	ProductID   string     `json:"product_id" bson:"product_id"`
	Title       string     `json:"title" bson:"title"`
	Handle      string     `json:"handle" bson:"handle"`
	Vendor      string     `json:"vendor" bson:"vendor"`
	ProductType string     `json:"product_type" bson:"product_type"`
	BodyHTML    string     `json:"body_html" bson:"body_html"`
	Tags        []string   `json:"tags" bson:"tags"`
	CreatedAt   *time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at" bson:"updated_at"`
	PublishedAt *time.Time `json:"published_at" bson:"published_at"`
	Variants    []Variant  `json:"variants" bson:"variants"`
	Images      []string   `json:"images" bson:"images"`

	// Set by the persistence sink at write time, never by a strategy.
	ScrapedAt *time.Time `json:"scraped_at,omitempty" bson:"scraped_at,omitempty"`
	StoreURL  string     `json:"store_url,omitempty" bson:"store_url,omitempty"`
}

type Variant struct {
	ID             string     `json:"id" bson:"id"`
	Title          string     `json:"title" bson:"title"`
	SKU            string     `json:"sku" bson:"sku"`
	Price          *string    `json:"price" bson:"price"`
	CompareAtPrice *string    `json:"compare_at_price" bson:"compare_at_price"`
	Available      bool       `json:"available" bson:"available"`
	CreatedAt      *time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at" bson:"updated_at"`
}

// PrimaryImage returns the first image URL, if any.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// NormalizePrice turns price text ("19.99", "$19.99", "1,299.00 USD") into a
// fixed two-decimal string. Malformed text yields nil, never an error.
func NormalizePrice(raw string) *string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return nil
	}

	// "1,299.99" uses commas as thousand separators; a lone comma is a
	// decimal separator.
	if strings.Contains(cleaned, ".") {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}

	s := d.StringFixed(2)
	return &s
}

// DedupImages removes repeated URLs while preserving first-seen order.
func DedupImages(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
