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
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Address)
	assert.Equal(t, 10, cfg.Crawler.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Crawler.RequestTimeout)
	assert.Equal(t, int64(10<<20), cfg.Crawler.MaxBodyBytes)
	assert.False(t, cfg.Output.Enabled)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOCSCRAPE_CRAWLER_BATCH_SIZE", "4")
	t.Setenv("DOCSCRAPE_CRAWLER_REQUEST_TIMEOUT", "5s")
	t.Setenv("DOCSCRAPE_OUTPUT_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Crawler.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.Crawler.RequestTimeout)
	assert.True(t, cfg.Output.Enabled)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docscrape.yaml")
	content := "server:\n  address: \":9999\"\ncrawler:\n  batch_size: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Chdir(dir)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, 3, cfg.Crawler.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Crawler.RequestTimeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"valid", Config{Crawler: CrawlerConfig{BatchSize: 1, RequestTimeout: time.Second}}, nil},
		{"zero batch", Config{Crawler: CrawlerConfig{RequestTimeout: time.Second}}, ErrInvalidBatchSize},
		{"zero timeout", Config{Crawler: CrawlerConfig{BatchSize: 10}}, ErrInvalidTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), tt.want)
		})
	}
}
