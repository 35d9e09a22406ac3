package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopcrawl/internal/logger"
)

var (
	PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "Pages of products fetched, per acquisition strategy",
		},
		[]string{"strategy"},
	)

	ProductsScraped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_products_scraped_total",
			Help: "Products normalized and persisted",
		},
	)

	RetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_retries_total",
			Help: "Retry attempts across all components",
		},
	)

	StrategyFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_strategy_fallbacks_total",
			Help: "Transitions from one acquisition strategy to the next",
		},
	)
)

var registerOnce sync.Once

// Register adds the scraper collectors to the default registry. Every binary
// that serves /metrics calls it; repeat calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(PagesFetched, ProductsScraped, RetriesTotal, StrategyFallbacks)
	})
}

// Start registers the collectors and serves /metrics on the given port.
func Start(port string, log *logger.Logger) {
	Register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.Error("metrics listener on port %s failed: %v", port, err)
		}
	}()
}
