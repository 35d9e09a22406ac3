package shopify

import (
	"strconv"
	"strings"

	"shopcrawl/internal/models"
)

// FromREST maps one /products.json record into the canonical format. It
// never fails: missing optional fields become empty sequences or nils.
func FromREST(storeDomain string, p *Product) models.Product {
	variants := make([]models.Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, models.Variant{
			ID:             strconv.FormatInt(v.ID, 10),
			Title:          v.Title,
			SKU:            v.Sku,
			Price:          models.NormalizePrice(v.Price),
			CompareAtPrice: normalizeOptional(v.CompareAtPrice),
			Available:      v.Available,
			CreatedAt:      v.CreatedAt,
			UpdatedAt:      v.UpdatedAt,
		})
	}

	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.Src)
	}

	return models.Product{
		StoreDomain: storeDomain,
		ProductID:   strconv.FormatInt(p.ID, 10),
		Title:       p.Title,
		Handle:      p.Handle,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		BodyHTML:    p.BodyHTML,
		Tags:        []string(p.Tags),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		PublishedAt: p.PublishedAt,
		Variants:    variants,
		Images:      models.DedupImages(images),
	}
}

// FromGraphQL maps one Storefront API product node into the canonical format.
func FromGraphQL(storeDomain string, p *GQLProduct) models.Product {
	variants := make([]models.Variant, 0, len(p.Variants.Edges))
	for _, edge := range p.Variants.Edges {
		v := edge.Node
		var compareAt *string
		if v.CompareAtPrice != nil {
			compareAt = models.NormalizePrice(v.CompareAtPrice.Amount)
		}
		variants = append(variants, models.Variant{
			ID:             legacyID(v.ID),
			Title:          v.Title,
			SKU:            v.Sku,
			Price:          models.NormalizePrice(v.Price.Amount),
			CompareAtPrice: compareAt,
			Available:      v.AvailableForSale,
		})
	}

	images := make([]string, 0, len(p.Images.Edges))
	for _, edge := range p.Images.Edges {
		images = append(images, edge.Node.URL)
	}

	return models.Product{
		StoreDomain: storeDomain,
		ProductID:   legacyID(p.ID),
		Title:       p.Title,
		Handle:      p.Handle,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		BodyHTML:    p.DescriptionHTML,
		Tags:        p.Tags,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		PublishedAt: p.PublishedAt,
		Variants:    variants,
		Images:      models.DedupImages(images),
	}
}

// legacyID extracts the numeric identifier from a GraphQL global ID like
// "gid://shopify/Product/12345". Unrecognized IDs pass through unchanged.
func legacyID(gid string) string {
	if i := strings.LastIndex(gid, "/"); i >= 0 && i+1 < len(gid) {
		return gid[i+1:]
	}
	return gid
}

func normalizeOptional(raw *string) *string {
	if raw == nil {
		return nil
	}
	return models.NormalizePrice(*raw)
}
