package model

import "time"

// Config is the full worker configuration, assembled from defaults, the
// config file, environment variables and CLI flags (in increasing priority).
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Cache       CacheConfig       `yaml:"cache"`
	Cluster     ClusterConfig     `yaml:"cluster"`
	Compose     ComposeConfig     `yaml:"compose"`
	Store       StoreConfig       `yaml:"store"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig controls the shared fetcher.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	CheckRobots  bool          `yaml:"check_robots"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty"`
}

// CacheConfig controls response caching for upstream fetches.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir,omitempty"` // Empty means memory-only
	TTL     time.Duration `yaml:"ttl"`
}

// ClusterConfig holds the geographic clustering parameters.
type ClusterConfig struct {
	MaxDistanceKM float64 `yaml:"max_distance_km"`
	DaysBack      int     `yaml:"days_back"`
	RowLimit      int     `yaml:"row_limit"`
}

// ComposeConfig configures the LLM-backed event composer.
type ComposeConfig struct {
	Provider  string `yaml:"provider"` // "anthropic", "openai", "" = templates only
	Model     string `yaml:"model,omitempty"`
	APIKey    string `yaml:"-"` // From environment only, never written to disk
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver"` // "supabase", "postgres", "dryrun"
	SupabaseURL string `yaml:"supabase_url,omitempty"`
	SupabaseKey string `yaml:"-"` // From environment only
	DatabaseURL string `yaml:"database_url,omitempty"`
}

// RateLimitConfig throttles upstream API calls.
type RateLimitConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	ComposeDelay      time.Duration `yaml:"compose_delay"` // Pause between event creations
}

// ConcurrencyConfig bounds parallel source processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls run reporting.
type OutputConfig struct {
	Verbose bool   `yaml:"verbose"`
	JSON    string `yaml:"json,omitempty"`
	MD      string `yaml:"md,omitempty"`
}

// DefaultConfig returns the built-in defaults. Distance threshold and recency
// window match the per-source values the scrapers have always used.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      60 * time.Second,
			UserAgent:    "Verdant/0.1 (+https://github.com/opengreens/verdant)",
			MaxBodyBytes: 8_000_000,
			CheckRobots:  true,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		Cluster: ClusterConfig{
			MaxDistanceKM: 0.5,
			DaysBack:      14,
			RowLimit:      1000,
		},
		Compose: ComposeConfig{
			Provider:  "",
			Timeout:   30,
			MaxTokens: 1000,
		},
		Store: StoreConfig{
			Driver: "dryrun",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             5,
			ComposeDelay:      time.Second,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{},
	}
}
