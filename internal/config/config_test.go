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
	t.Setenv(configPathEnv, "")
	t.Setenv(searchDriverEnv, "")
	t.Setenv(openAIKeyEnv, "")
	t.Setenv("STORE_CAPACITY", "")

	cfg := Load()

	assert.Equal(t, "tavily", cfg.Search.Provider)
	assert.Equal(t, []string{"duckduckgo"}, cfg.Search.Fallbacks)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, 10*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 5, cfg.Scraper.Concurrency)
	assert.Equal(t, 5000, cfg.Scraper.MaxContentChars)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 100, cfg.Store.Capacity)
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte(`
logging:
  level: warn
  format: json
search:
  provider: feed
  fallbacks: [tavily]
  maxResults: 3
scraper:
  timeout: 4s
llm:
  provider: gemini
  model: gpt-test
scheduler:
  interval: 1h
  topics: ["tariffs", "chip export rules"]
`)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(searchDriverEnv, "")
	t.Setenv(logLevelEnv, "")
	t.Setenv(openAIModelEnv, "gpt-env")
	t.Setenv(pexelsKeyEnv, "pexels-key")
	t.Setenv(httpAddrEnv, ":9090")

	cfg := Load()

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "feed", cfg.Search.Provider)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, []string{"tavily"}, cfg.Search.Fallbacks)
	assert.Equal(t, 4*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, 5, cfg.Scraper.Concurrency, "unset fields keep defaults")
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gpt-env", cfg.LLM.Model, "env wins over file")
	assert.Equal(t, "pexels-key", cfg.Images.APIKey)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval)
	assert.Equal(t, []string{"tariffs", "chip export rules"}, cfg.Scheduler.Topics)
}

func TestLoadIgnoresUnreadableFile(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv(searchDriverEnv, "")
	t.Setenv(tavilyKeyEnv, "")

	cfg := Load()
	assert.Equal(t, defaultConfig().Search, cfg.Search)
}
