package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.RateLimit)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.BackoffBase)
	assert.True(t, cfg.FallbackToScraping)
	assert.Equal(t, 250, cfg.PageSize)
	assert.Equal(t, "sqlite://data/shopcrawl.db", cfg.DatabaseURL)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("RATE_LIMIT", "0.5")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("SHOPIFY_STOREFRONT_TOKEN", "shpat_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.RateLimit)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, "shpat_test", cfg.AccessToken)
}

func TestApplyFileOverridesEnvironment(t *testing.T) {
	t.Setenv("MAX_RETRIES", "5")

	cfg, err := Load()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
access_token: shpat_from_file
rate_limit: 4
max_retries: 1
backoff_base: 0.5
page_size: 100
log_level: debug
`), 0o644))

	require.NoError(t, cfg.ApplyFile(path))

	assert.Equal(t, "shpat_from_file", cfg.AccessToken)
	assert.Equal(t, 4.0, cfg.RateLimit)
	assert.Equal(t, 1, cfg.MaxRetries, "file settings win over environment")
	assert.Equal(t, 500*time.Millisecond, cfg.BackoffBase)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, "debug", cfg.LogLevel)

	// keys absent from the file keep their prior values
	assert.True(t, cfg.FallbackToScraping)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestApplyFileMissingFile(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.ApplyFile(filepath.Join(t.TempDir(), "absent.yaml")))
}
