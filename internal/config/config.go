package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/contact-enricher/internal/enrich"
)

// Config holds the full application configuration.
type Config struct {
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// FirecrawlConfig holds Firecrawl API settings. Firecrawl is the primary scraper.
type FirecrawlConfig struct {
	Key        string  `yaml:"key" mapstructure:"key"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// JinaConfig holds Jina AI Reader settings (fallback scraper).
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ScrapeConfig configures the scraper chain.
type ScrapeConfig struct {
	BreakerThreshold int  `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSecs int  `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
	LocalFallback    bool `yaml:"local_fallback" mapstructure:"local_fallback"`
}

// LLM providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// LLMConfig selects the dossier extraction backend.
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// EnrichConfig tunes the enrichment pipeline.
type EnrichConfig struct {
	MaxContentChars    int     `yaml:"max_content_chars" mapstructure:"max_content_chars"`
	MaxURLs            int     `yaml:"max_urls" mapstructure:"max_urls"`
	Temperature        float64 `yaml:"temperature" mapstructure:"temperature"`
	FetchTimeoutSecs   int     `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	ExtractTimeoutSecs int     `yaml:"extract_timeout_secs" mapstructure:"extract_timeout_secs"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// NotionConfig holds Notion API credentials for CRM export.
type NotionConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	ContactDB string `yaml:"contact_db" mapstructure:"contact_db"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrent    int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENRICHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("firecrawl.key", "")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("firecrawl.rate_per_sec", 5)
	v.SetDefault("jina.key", "")
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("scrape.breaker_threshold", 5)
	v.SetDefault("scrape.breaker_reset_secs", 30)
	v.SetDefault("scrape.local_fallback", false)
	v.SetDefault("llm.provider", ProviderAnthropic)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("gemini.key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("enrich.max_content_chars", 15000)
	v.SetDefault("enrich.max_urls", 3)
	v.SetDefault("enrich.temperature", 0.2)
	v.SetDefault("enrich.fetch_timeout_secs", 30)
	v.SetDefault("enrich.extract_timeout_secs", 90)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "enricher.db")
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.contact_db", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("batch.max_concurrent", 4)
	v.SetDefault("batch.max_attempts", 3)
	v.SetDefault("batch.initial_backoff_ms", 500)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validation modes.
const (
	ModeEnrich = "enrich"
	ModeServe  = "serve"
	ModeStore  = "store"
)

// Validate checks the settings a command mode needs and reports every
// problem in one error. Missing credentials in enrich and serve modes make
// it an enrich.ErrConfiguration error.
func (c *Config) Validate(mode string) error {
	var missing, invalid []string

	switch mode {
	case ModeEnrich, ModeServe:
		if c.ScrapeKey() == "" {
			missing = append(missing, "firecrawl.key (or jina.key) is required")
		}
		switch c.LLM.Provider {
		case ProviderAnthropic:
			if c.Anthropic.Key == "" {
				missing = append(missing, "anthropic.key is required")
			}
		case ProviderGemini:
			if c.Gemini.Key == "" {
				missing = append(missing, "gemini.key is required")
			}
		default:
			invalid = append(invalid, "llm.provider must be anthropic or gemini")
		}
		if c.Enrich.MaxURLs < 1 {
			invalid = append(invalid, "enrich.max_urls must be >= 1")
		}
		if c.Enrich.MaxContentChars < 1 {
			invalid = append(invalid, "enrich.max_content_chars must be >= 1")
		}
		if c.Enrich.Temperature < 0 || c.Enrich.Temperature > 2 {
			invalid = append(invalid, "enrich.temperature must be between 0 and 2")
		}
		if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 50 {
			invalid = append(invalid, "batch.max_concurrent must be between 1 and 50")
		}
		if mode == ModeServe && c.Server.Port <= 0 {
			invalid = append(invalid, "server.port must be > 0")
		}
	case ModeStore:
		switch strings.ToLower(c.Store.Driver) {
		case "", "none":
			invalid = append(invalid, "store.driver must be sqlite or postgres")
		case "postgres", "postgresql":
			if c.Store.DatabaseURL == "" {
				missing = append(missing, "store.database_url is required")
			}
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	problems := append(missing, invalid...)
	if len(problems) == 0 {
		return nil
	}
	err := eris.Errorf("config: %s", strings.Join(problems, "; "))
	if len(missing) > 0 && mode != ModeStore {
		return &enrich.Error{Kind: enrich.ErrConfiguration, Msg: "invalid configuration", Err: err}
	}
	return err
}

// ScrapeKey returns the credential of the primary scraper.
func (c *Config) ScrapeKey() string {
	if c.Firecrawl.Key != "" {
		return c.Firecrawl.Key
	}
	return c.Jina.Key
}

// LLMKey returns the credential of the selected provider.
func (c *Config) LLMKey() string {
	if c.LLM.Provider == ProviderGemini {
		return c.Gemini.Key
	}
	return c.Anthropic.Key
}

// EnrichOptions maps the configuration onto the pipeline options.
func (c *Config) EnrichOptions() enrich.Options {
	opts := enrich.DefaultOptions()
	opts.ScrapeKey = c.ScrapeKey()
	opts.LLMKey = c.LLMKey()
	if c.Enrich.MaxContentChars > 0 {
		opts.MaxContentChars = c.Enrich.MaxContentChars
	}
	if c.Enrich.MaxURLs > 0 {
		opts.MaxURLs = c.Enrich.MaxURLs
	}
	opts.Temperature = c.Enrich.Temperature
	if c.Anthropic.MaxTokens > 0 {
		opts.MaxTokens = c.Anthropic.MaxTokens
	}
	if c.Enrich.FetchTimeoutSecs > 0 {
		opts.FetchTimeout = time.Duration(c.Enrich.FetchTimeoutSecs) * time.Second
	}
	if c.Enrich.ExtractTimeoutSecs > 0 {
		opts.ExtractTimeout = time.Duration(c.Enrich.ExtractTimeoutSecs) * time.Second
	}
	return opts
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
