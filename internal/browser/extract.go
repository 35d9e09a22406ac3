package browser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shopcrawl/internal/models"
)

// ExtractListing parses a rendered collection page into partially populated
// product records, plus the absolute URL of the "next" pagination control if
// one is present. Tiles carry no variant-level detail beyond a price; the
// handle doubles as the product identifier.
func ExtractListing(html, storeDomain, pageURL string) ([]models.Product, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", err
	}

	base, _ := url.Parse(pageURL)

	seen := make(map[string]bool)
	var products []models.Product

	doc.Find(`a[href*="/products/"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		handle := handleFromPath(href)
		if handle == "" || seen[handle] {
			return
		}
		seen[handle] = true

		img := a.Find("img").First()
		title := collapseSpace(a.Find(`[class*="title"]`).First().Text())
		if title == "" {
			title, _ = img.Attr("alt")
			title = collapseSpace(title)
		}
		if title == "" {
			title = collapseSpace(a.Text())
		}

		src, ok := img.Attr("src")
		if !ok || src == "" {
			src, _ = img.Attr("data-src")
		}
		var images []string
		if src != "" {
			images = append(images, resolveURL(base, src))
		}

		// Price text lives in the tile around the anchor as often as
		// inside it.
		priceText := findPriceText(a)

		p := models.Product{
			StoreDomain: storeDomain,
			ProductID:   handle,
			Handle:      handle,
			Title:       title,
			Images:      models.DedupImages(images),
		}
		if price := models.NormalizePrice(priceText); price != nil {
			p.Variants = []models.Variant{{Title: "Default Title", Price: price, Available: true}}
		}
		products = append(products, p)
	})

	return products, nextPageURL(doc, base), nil
}

func findPriceText(a *goquery.Selection) string {
	sel := a.Find(`[class*="price"]`).First()
	if sel.Length() == 0 {
		sel = a.Parent().Find(`[class*="price"]`).First()
	}
	return collapseSpace(sel.Text())
}

func nextPageURL(doc *goquery.Document, base *url.URL) string {
	if href, ok := doc.Find(`a[rel="next"]`).First().Attr("href"); ok {
		return resolveURL(base, href)
	}

	next := ""
	doc.Find(`a[href*="page="]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.ToLower(collapseSpace(a.Text()))
		if text == "next" || text == "next »" || text == "›" || text == "→" {
			if href, ok := a.Attr("href"); ok {
				next = resolveURL(base, href)
				return false
			}
		}
		return true
	})
	return next
}

func handleFromPath(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "products" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
