package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shopcrawl/internal/logger"
	"shopcrawl/internal/models"
)

// csvHeader is the fixed column order of the flat export: one row per
// (product, variant) pair, variant columns empty for variant-less products.
var csvHeader = []string{
	"store_domain", "product_id", "title", "handle", "vendor",
	"product_type", "created_at", "updated_at", "published_at",
	"tags", "body_html", "variant_id", "variant_title", "sku",
	"price", "compare_at_price", "available", "variant_created_at",
	"variant_updated_at", "image_src", "all_image_srcs",
}

// Exporter accumulates products in encounter order and writes the JSON and
// CSV exports at run end. Products are keyed by identity, so re-scraping the
// same product replaces its rows instead of appending duplicates.
type Exporter struct {
	dir    string
	logger *logger.Logger

	products []models.Product
	index    map[string]int
}

func NewExporter(dir string, logger *logger.Logger) *Exporter {
	return &Exporter{
		dir:    dir,
		logger: logger,
		index:  make(map[string]int),
	}
}

func (e *Exporter) Add(p models.Product) {
	key := p.StoreDomain + "|" + p.ProductID
	if i, ok := e.index[key]; ok {
		e.products[i] = p
		return
	}
	e.index[key] = len(e.products)
	e.products = append(e.products, p)
}

// Flush rewrites both export files from scratch. Safe to call more than once;
// the last call wins.
func (e *Exporter) Flush() error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := e.writeJSON(filepath.Join(e.dir, "products.json")); err != nil {
		return err
	}
	if err := e.writeCSV(filepath.Join(e.dir, "products.csv")); err != nil {
		return err
	}
	e.logger.Info("exported %d products to %s", len(e.products), e.dir)
	return nil
}

func (e *Exporter) writeJSON(path string) error {
	products := e.products
	if products == nil {
		products = []models.Product{}
	}
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (e *Exporter) writeCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range e.products {
		for _, row := range productRows(&e.products[i]) {
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	w.Flush()
	return w.Error()
}

// productRows flattens a product into CSV rows, one per variant, or a single
// row with empty variant columns when the product has none.
func productRows(p *models.Product) [][]string {
	common := []string{
		p.StoreDomain,
		p.ProductID,
		p.Title,
		p.Handle,
		p.Vendor,
		p.ProductType,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
		formatTime(p.PublishedAt),
		strings.Join(p.Tags, ", "),
		p.BodyHTML,
	}
	imageCols := []string{
		p.PrimaryImage(),
		strings.Join(p.Images, "|"),
	}

	if len(p.Variants) == 0 {
		row := append(append([]string{}, common...),
			"", "", "", "", "", "", "", "")
		return [][]string{append(row, imageCols...)}
	}

	rows := make([][]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		row := append(append([]string{}, common...),
			v.ID,
			v.Title,
			v.SKU,
			deref(v.Price),
			deref(v.CompareAtPrice),
			strconv.FormatBool(v.Available),
			formatTime(v.CreatedAt),
			formatTime(v.UpdatedAt),
		)
		rows = append(rows, append(row, imageCols...))
	}
	return rows
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
