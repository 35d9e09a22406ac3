package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"shopcrawl/internal/config"
	"shopcrawl/internal/logger"
	"shopcrawl/internal/models"
	"shopcrawl/internal/scrape"
)

// Renderer drives a headless browser over a store's paginated collection
// listing when neither API strategy is usable. One browser context is held
// for the whole run; Close must be called on every exit path.
// It implements scrape.Strategy.
type Renderer struct {
	storeDomain string
	userAgent   string
	waitTimeout time.Duration
	enabled     bool
	logger      *logger.Logger

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	nextURL string
}

func NewRenderer(storeDomain string, cfg *config.Config, logger *logger.Logger) *Renderer {
	return &Renderer{
		storeDomain: storeDomain,
		userAgent:   cfg.UserAgent,
		waitTimeout: cfg.Timeout,
		enabled:     cfg.FallbackToScraping,
		logger:      logger,
		nextURL:     listingURL(storeDomain, 1),
	}
}

func (r *Renderer) Name() string { return "rendered_html" }

func (r *Renderer) Available() bool { return r.enabled }

func (r *Renderer) Reset() { r.nextURL = listingURL(r.storeDomain, 1) }

// Fetch renders the current listing page and extracts product tiles. A page
// with no tiles ends pagination rather than failing: the collection may
// legitimately be empty.
func (r *Renderer) Fetch(ctx context.Context) ([]models.Product, bool, error) {
	if r.nextURL == "" {
		return nil, false, nil
	}

	if err := r.start(); err != nil {
		return nil, false, scrape.Transient("rendered_html", err)
	}

	pageURL := r.nextURL
	r.logger.Debug("rendering %s", pageURL)

	tctx, cancel := context.WithTimeout(r.browserCtx, r.waitTimeout)
	defer cancel()
	go func() {
		// Propagate run-level cancellation into the navigation.
		select {
		case <-ctx.Done():
			cancel()
		case <-tctx.Done():
		}
	}()

	var html string
	err := chromedp.Run(tctx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, false, scrape.Transient("rendered_html", fmt.Errorf("render timeout for %s: %w", pageURL, err))
		}
		return nil, false, scrape.Transient("rendered_html", fmt.Errorf("navigation failed for %s: %w", pageURL, err))
	}

	page, next, err := ExtractListing(html, r.storeDomain, pageURL)
	if err != nil {
		return nil, false, scrape.Malformed("rendered_html", err)
	}

	if len(page) == 0 {
		r.logger.Info("no product tiles on %s, ending pagination", pageURL)
		r.nextURL = ""
		return nil, false, nil
	}

	r.nextURL = next
	return page, next != "", nil
}

// start lazily launches the browser on first use.
func (r *Renderer) start() error {
	if r.browserCtx != nil {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(r.userAgent),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Launch now so a missing chrome binary surfaces as a strategy failure
	// instead of hanging on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	r.allocCancel = allocCancel
	r.browserCtx = browserCtx
	r.browserCancel = browserCancel
	r.logger.Info("headless browser started for %s", r.storeDomain)
	return nil
}

// Close tears down the browser context. Safe to call when the browser never
// started.
func (r *Renderer) Close() {
	if r.browserCancel != nil {
		r.browserCancel()
		r.browserCancel = nil
	}
	if r.allocCancel != nil {
		r.allocCancel()
		r.allocCancel = nil
	}
	r.browserCtx = nil
}

func listingURL(storeDomain string, page int) string {
	return fmt.Sprintf("https://%s/collections/all?page=%d", storeDomain, page)
}
