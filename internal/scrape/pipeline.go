package scrape

import (
	"context"

	"shopcrawl/internal/logger"
	"shopcrawl/internal/models"
	"shopcrawl/internal/observability"
)

// Sink persists normalized products to the document store.
type Sink interface {
	Upsert(ctx context.Context, p *models.Product) error
}

// Exporter accumulates products for the flat-file exports written at run end.
type Exporter interface {
	Add(p models.Product)
	Flush() error
}

// Publisher emits a product event after a successful upsert. Implementations
// must not fail the run; errors are logged and dropped.
type Publisher interface {
	ProductScraped(ctx context.Context, p *models.Product) error
}

// Pipeline drives the selector and feeds each normalized product through the
// sink and the exports, one page at a time.
type Pipeline struct {
	Selector *Selector
	Sink     Sink
	Exporter Exporter
	Events   Publisher // optional
	Log      *logger.Logger

	// Limit caps the number of records persisted. It is checked at page
	// boundaries; records past the limit within a page are dropped.
	Limit int
}

// Run executes the scrape until pagination is exhausted, the limit is
// reached, or a fatal error occurs. It returns the number of records
// persisted; exports written before a fatal storage error are preserved.
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	count := 0
	limited := false

	for !limited {
		page, ok, err := p.Selector.Next(ctx)
		if err != nil {
			// Exports accumulated before a cancellation or acquisition
			// failure are preserved.
			p.flushPartial()
			return count, err
		}
		if !ok {
			break
		}

		for i := range page {
			if p.Limit > 0 && count >= p.Limit {
				p.Log.Info("record limit %d reached, dropping %d remaining records in page", p.Limit, len(page)-i)
				limited = true
				break
			}

			prod := &page[i]
			if err := p.Sink.Upsert(ctx, prod); err != nil {
				p.flushPartial()
				return count, err
			}
			p.Exporter.Add(*prod)

			if p.Events != nil {
				if err := p.Events.ProductScraped(ctx, prod); err != nil {
					p.Log.Warn("failed to publish product event for %s: %v", prod.ProductID, err)
				}
			}

			observability.ProductsScraped.Inc()
			count++
		}
	}

	if err := p.Exporter.Flush(); err != nil {
		return count, err
	}
	return count, nil
}

// flushPartial writes the exports collected before a fatal error; the flush
// failure itself is logged, not propagated, so the original error surfaces.
func (p *Pipeline) flushPartial() {
	if err := p.Exporter.Flush(); err != nil {
		p.Log.Error("failed to flush partial exports: %v", err)
	}
}
