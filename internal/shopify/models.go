package shopify

import (
	"encoding/json"
	"strings"
	"time"
)

// ProductsResponse is the body of the public /products.json endpoint.
type ProductsResponse struct {
	Products []Product `json:"products"`
}

// Product is a raw product as served by /products.json.
type Product struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	BodyHTML    string     `json:"body_html"`
	Vendor      string     `json:"vendor"`
	ProductType string     `json:"product_type"`
	Handle      string     `json:"handle"`
	Tags        Tags       `json:"tags"`
	Variants    []Variant  `json:"variants"`
	Images      []Image    `json:"images"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// Variant is a raw product variant.
type Variant struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Sku            string     `json:"sku"`
	Price          string     `json:"price"`
	CompareAtPrice *string    `json:"compare_at_price"`
	Available      bool       `json:"available"`
	CreatedAt      *time.Time `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

// Image is a raw product image.
type Image struct {
	ID       int64  `json:"id"`
	Position int    `json:"position"`
	Src      string `json:"src"`
}

// Tags accepts both the array form served by /products.json and the
// comma-joined string form of the admin API.
type Tags []string

func (t *Tags) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '[' {
		var arr []string
		if err := json.Unmarshal(b, &arr); err != nil {
			return err
		}
		*t = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = nil
		return nil
	}

	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	*t = parts
	return nil
}

// GQLProduct is a product node returned by the Storefront GraphQL API.
type GQLProduct struct {
	ID              string     `json:"id"` // gid://shopify/Product/<id>
	Title           string     `json:"title"`
	Handle          string     `json:"handle"`
	Vendor          string     `json:"vendor"`
	ProductType     string     `json:"productType"`
	DescriptionHTML string     `json:"descriptionHtml"`
	Tags            []string   `json:"tags"`
	CreatedAt       *time.Time `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt"`
	PublishedAt     *time.Time `json:"publishedAt"`
	Variants        struct {
		Edges []struct {
			Node GQLVariant `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	Images struct {
		Edges []struct {
			Node struct {
				URL string `json:"url"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"images"`
}

// GQLVariant is a variant node returned by the Storefront GraphQL API.
type GQLVariant struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Sku              string `json:"sku"`
	AvailableForSale bool   `json:"availableForSale"`
	Price            struct {
		Amount string `json:"amount"`
	} `json:"price"`
	CompareAtPrice *struct {
		Amount string `json:"amount"`
	} `json:"compareAtPrice"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data *struct {
		Products struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node GQLProduct `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}
