package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "RESEARCH_REPORTER_CONFIG"
	logLevelEnv     = "LOG_LEVEL"
	openAIKeyEnv    = "OPENAI_API_KEY"
	openAIModelEnv  = "OPENAI_MODEL"
	geminiKeyEnv    = "GEMINI_API_KEY"
	tavilyKeyEnv    = "TAVILY_API_KEY"
	pexelsKeyEnv    = "PEXELS_API_KEY"
	httpAddrEnv     = "HTTP_ADDR"
	searchDriverEnv = "SEARCH_PROVIDER"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Search    SearchConfig    `yaml:"search"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	LLM       LLMConfig       `yaml:"llm"`
	Images    ImagesConfig    `yaml:"images"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Store     StoreConfig     `yaml:"store"`
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// LoggingConfig selects the slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SearchConfig picks the search provider and bounds its output.
type SearchConfig struct {
	Provider      string       `yaml:"provider"`
	Fallbacks     []string     `yaml:"fallbacks"`
	MaxResults    int          `yaml:"maxResults"`
	RatePerMinute int          `yaml:"ratePerMinute"`
	Tavily        TavilyConfig `yaml:"tavily"`
	Feed          FeedConfig   `yaml:"feed"`
	DuckDuckGoURL string       `yaml:"duckDuckGoUrl"`
}

// TavilyConfig describes the Tavily search API.
type TavilyConfig struct {
	Endpoint    string `yaml:"endpoint"`
	APIKey      string `yaml:"apiKey"`
	SearchDepth string `yaml:"searchDepth"`
}

// FeedConfig describes an RSS/Atom search endpoint; %s receives the escaped query.
type FeedConfig struct {
	URLTemplate string `yaml:"urlTemplate"`
}

// ScraperConfig bounds page fetching.
type ScraperConfig struct {
	UserAgent       string        `yaml:"userAgent"`
	Timeout         time.Duration `yaml:"timeout"`
	Concurrency     int           `yaml:"concurrency"`
	MaxPages        int           `yaml:"maxPages"`
	MaxContentChars int           `yaml:"maxContentChars"`
}

// LLMConfig defines how to contact the text generation backend.
type LLMConfig struct {
	Provider     string  `yaml:"provider"`
	Endpoint     string  `yaml:"endpoint"`
	Model        string  `yaml:"model"`
	APIKey       string  `yaml:"apiKey"`
	GeminiModel  string  `yaml:"geminiModel"`
	GeminiAPIKey string  `yaml:"geminiApiKey"`
	MaxTokens    int     `yaml:"maxTokens"`
	Temperature  float32 `yaml:"temperature"`
	SystemPrompt string  `yaml:"systemPrompt"`
}

// ImagesConfig describes the image lookup service.
type ImagesConfig struct {
	Endpoint      string `yaml:"endpoint"`
	APIKey        string `yaml:"apiKey"`
	RatePerMinute int    `yaml:"ratePerMinute"`
}

// PipelineConfig bounds a single report generation.
type PipelineConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// StoreConfig bounds the in-process report store.
type StoreConfig struct {
	Capacity int `yaml:"capacity"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SchedulerConfig lists topics regenerated on an interval while serving.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
	Topics   []string      `yaml:"topics"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile is Load with an explicit YAML path; an empty path uses defaults.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(searchDriverEnv); v != "" {
		c.Search.Provider = v
	}

	if v := os.Getenv(tavilyKeyEnv); v != "" {
		c.Search.Tavily.APIKey = v
	}

	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv(geminiKeyEnv); v != "" {
		c.LLM.GeminiAPIKey = v
	}

	if v := os.Getenv(pexelsKeyEnv); v != "" {
		c.Images.APIKey = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv("STORE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Store.Capacity = n
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Search.Provider != "" {
		base.Search.Provider = override.Search.Provider
	}
	if len(override.Search.Fallbacks) > 0 {
		base.Search.Fallbacks = override.Search.Fallbacks
	}
	if override.Search.MaxResults > 0 {
		base.Search.MaxResults = override.Search.MaxResults
	}
	if override.Search.RatePerMinute > 0 {
		base.Search.RatePerMinute = override.Search.RatePerMinute
	}
	if override.Search.Tavily.Endpoint != "" {
		base.Search.Tavily.Endpoint = override.Search.Tavily.Endpoint
	}
	if override.Search.Tavily.APIKey != "" {
		base.Search.Tavily.APIKey = override.Search.Tavily.APIKey
	}
	if override.Search.Tavily.SearchDepth != "" {
		base.Search.Tavily.SearchDepth = override.Search.Tavily.SearchDepth
	}
	if override.Search.Feed.URLTemplate != "" {
		base.Search.Feed.URLTemplate = override.Search.Feed.URLTemplate
	}
	if override.Search.DuckDuckGoURL != "" {
		base.Search.DuckDuckGoURL = override.Search.DuckDuckGoURL
	}

	if override.Scraper.UserAgent != "" {
		base.Scraper.UserAgent = override.Scraper.UserAgent
	}
	if override.Scraper.Timeout > 0 {
		base.Scraper.Timeout = override.Scraper.Timeout
	}
	if override.Scraper.Concurrency > 0 {
		base.Scraper.Concurrency = override.Scraper.Concurrency
	}
	if override.Scraper.MaxPages > 0 {
		base.Scraper.MaxPages = override.Scraper.MaxPages
	}
	if override.Scraper.MaxContentChars > 0 {
		base.Scraper.MaxContentChars = override.Scraper.MaxContentChars
	}

	if override.LLM.Provider != "" {
		base.LLM.Provider = override.LLM.Provider
	}
	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.GeminiModel != "" {
		base.LLM.GeminiModel = override.LLM.GeminiModel
	}
	if override.LLM.GeminiAPIKey != "" {
		base.LLM.GeminiAPIKey = override.LLM.GeminiAPIKey
	}
	if override.LLM.MaxTokens > 0 {
		base.LLM.MaxTokens = override.LLM.MaxTokens
	}
	if override.LLM.Temperature > 0 {
		base.LLM.Temperature = override.LLM.Temperature
	}
	if override.LLM.SystemPrompt != "" {
		base.LLM.SystemPrompt = override.LLM.SystemPrompt
	}

	if override.Images.Endpoint != "" {
		base.Images.Endpoint = override.Images.Endpoint
	}
	if override.Images.APIKey != "" {
		base.Images.APIKey = override.Images.APIKey
	}
	if override.Images.RatePerMinute > 0 {
		base.Images.RatePerMinute = override.Images.RatePerMinute
	}

	if override.Pipeline.Timeout > 0 {
		base.Pipeline.Timeout = override.Pipeline.Timeout
	}

	if override.Store.Capacity > 0 {
		base.Store.Capacity = override.Store.Capacity
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Scheduler.Interval > 0 {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if len(override.Scheduler.Topics) > 0 {
		base.Scheduler.Topics = override.Scheduler.Topics
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Search: SearchConfig{
			Provider:      "tavily",
			Fallbacks:     []string{"duckduckgo"},
			MaxResults:    5,
			RatePerMinute: 30,
			Tavily: TavilyConfig{
				Endpoint:    "https://api.tavily.com/search",
				SearchDepth: "basic",
			},
			Feed: FeedConfig{
				URLTemplate: "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en",
			},
			DuckDuckGoURL: "https://html.duckduckgo.com/html/",
		},
		Scraper: ScraperConfig{
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			Timeout:         10 * time.Second,
			Concurrency:     5,
			MaxPages:        5,
			MaxContentChars: 5000,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Endpoint:    "https://api.openai.com/v1",
			Model:       "gpt-4o",
			GeminiModel: "gemini-2.5-flash",
			MaxTokens:   4000,
			Temperature: 0.1,
			SystemPrompt: "You are a real-time, non-partisan research assistant. " +
				"You answer only with the JSON document you are asked for.",
		},
		Images: ImagesConfig{
			Endpoint:      "https://api.pexels.com/v1",
			RatePerMinute: 60,
		},
		Pipeline:  PipelineConfig{Timeout: 90 * time.Second},
		Store:     StoreConfig{Capacity: 100},
		Server:    ServerConfig{Addr: ":8080"},
		Scheduler: SchedulerConfig{Interval: 6 * time.Hour},
	}
}
