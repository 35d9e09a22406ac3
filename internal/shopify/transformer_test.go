package shopify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRESTMapsProduct(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	compareAt := "39.99"

	raw := &Product{
		ID:          632910392,
		Title:       "IPod Nano - 8GB",
		BodyHTML:    "<p>It's the small iPod with one very big idea.</p>",
		Vendor:      "Apple",
		ProductType: "Cult Products",
		Handle:      "ipod-nano",
		Tags:        Tags{"Emotive", "Flash Memory"},
		CreatedAt:   &created,
		Variants: []Variant{
			{
				ID:             808950810,
				Title:          "Pink",
				Sku:            "IPOD2008PINK",
				Price:          "$29.99",
				CompareAtPrice: &compareAt,
				Available:      true,
			},
		},
		Images: []Image{
			{ID: 1, Src: "https://cdn.shopify.com/ipod-nano.png"},
			{ID: 2, Src: "https://cdn.shopify.com/ipod-nano-pink.png"},
			{ID: 3, Src: "https://cdn.shopify.com/ipod-nano.png"},
		},
	}

	got := FromREST("example.myshopify.com", raw)

	assert.Equal(t, "example.myshopify.com", got.StoreDomain)
	assert.Equal(t, "632910392", got.ProductID)
	assert.Equal(t, "ipod-nano", got.Handle)
	assert.Equal(t, []string{"Emotive", "Flash Memory"}, got.Tags)
	assert.Equal(t, &created, got.CreatedAt)

	require.Len(t, got.Variants, 1)
	v := got.Variants[0]
	assert.Equal(t, "808950810", v.ID)
	assert.Equal(t, "IPOD2008PINK", v.SKU)
	require.NotNil(t, v.Price)
	assert.Equal(t, "29.99", *v.Price)
	require.NotNil(t, v.CompareAtPrice)
	assert.Equal(t, "39.99", *v.CompareAtPrice)
	assert.True(t, v.Available)

	// duplicate image dropped, first-seen order kept
	assert.Equal(t, []string{
		"https://cdn.shopify.com/ipod-nano.png",
		"https://cdn.shopify.com/ipod-nano-pink.png",
	}, got.Images)
}

func TestFromRESTToleratesMissingFields(t *testing.T) {
	got := FromREST("example.myshopify.com", &Product{ID: 42})

	assert.Equal(t, "42", got.ProductID)
	assert.Equal(t, "example.myshopify.com", got.StoreDomain)
	assert.Empty(t, got.Variants)
	assert.Empty(t, got.Images)
	assert.Nil(t, got.CreatedAt)
	assert.Nil(t, got.PublishedAt)
}

func TestFromRESTMalformedPriceDegradesToNil(t *testing.T) {
	raw := &Product{
		ID:       7,
		Variants: []Variant{{ID: 1, Price: "free"}},
	}

	got := FromREST("example.myshopify.com", raw)
	require.Len(t, got.Variants, 1)
	assert.Nil(t, got.Variants[0].Price)
}

func TestFromGraphQLMapsProduct(t *testing.T) {
	payload := `{
		"id": "gid://shopify/Product/632910392",
		"title": "IPod Nano - 8GB",
		"handle": "ipod-nano",
		"vendor": "Apple",
		"productType": "Cult Products",
		"descriptionHtml": "<p>small iPod</p>",
		"tags": ["Emotive"],
		"variants": {"edges": [
			{"node": {
				"id": "gid://shopify/ProductVariant/808950810",
				"title": "Pink",
				"sku": "IPOD2008PINK",
				"availableForSale": true,
				"price": {"amount": "29.99"},
				"compareAtPrice": null
			}}
		]},
		"images": {"edges": [
			{"node": {"url": "https://cdn.shopify.com/ipod-nano.png"}}
		]}
	}`

	var node GQLProduct
	require.NoError(t, json.Unmarshal([]byte(payload), &node))

	got := FromGraphQL("example.myshopify.com", &node)

	assert.Equal(t, "632910392", got.ProductID)
	assert.Equal(t, "example.myshopify.com", got.StoreDomain)
	assert.Equal(t, "<p>small iPod</p>", got.BodyHTML)

	require.Len(t, got.Variants, 1)
	assert.Equal(t, "808950810", got.Variants[0].ID)
	require.NotNil(t, got.Variants[0].Price)
	assert.Equal(t, "29.99", *got.Variants[0].Price)
	assert.Nil(t, got.Variants[0].CompareAtPrice)
}

func TestTagsAcceptStringAndArrayForms(t *testing.T) {
	var fromArray struct {
		Tags Tags `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tags": ["a", "b"]}`), &fromArray))
	assert.Equal(t, Tags{"a", "b"}, fromArray.Tags)

	var fromString struct {
		Tags Tags `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tags": "a, b"}`), &fromString))
	assert.Equal(t, Tags{"a", "b"}, fromString.Tags)

	var empty struct {
		Tags Tags `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tags": ""}`), &empty))
	assert.Empty(t, empty.Tags)
}

func TestLegacyID(t *testing.T) {
	assert.Equal(t, "123", legacyID("gid://shopify/Product/123"))
	assert.Equal(t, "opaque", legacyID("opaque"))
}
