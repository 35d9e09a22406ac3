package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shopcrawl/internal/config"
	"shopcrawl/internal/logger"
)

func rendererConfig(fallback bool) *config.Config {
	return &config.Config{
		UserAgent:          "shopcrawl-test",
		Timeout:            time.Second,
		FallbackToScraping: fallback,
	}
}

func TestRendererAvailabilityFollowsFallbackSetting(t *testing.T) {
	enabled := NewRenderer("example.myshopify.com", rendererConfig(true), logger.New("error"))
	assert.True(t, enabled.Available())

	disabled := NewRenderer("example.myshopify.com", rendererConfig(false), logger.New("error"))
	assert.False(t, disabled.Available())
}

func TestRendererCloseBeforeStart(t *testing.T) {
	r := NewRenderer("example.myshopify.com", rendererConfig(true), logger.New("error"))

	// Close runs on every exit path, launched or not, and must be
	// repeatable.
	assert.NotPanics(t, func() {
		r.Close()
		r.Close()
	})
	assert.Nil(t, r.browserCtx)
}

func TestRendererResetRewindsPagination(t *testing.T) {
	r := NewRenderer("example.myshopify.com", rendererConfig(true), logger.New("error"))

	r.nextURL = "https://example.myshopify.com/collections/all?page=7"
	r.Reset()
	assert.Equal(t, "https://example.myshopify.com/collections/all?page=1", r.nextURL)
}
