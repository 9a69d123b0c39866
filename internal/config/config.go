// Package config handles configuration loading for earningsdesk.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override,
// e.g. EARNINGSDESK_RESOLVER_DEMO_MODE=true.
const EnvPrefix = "EARNINGSDESK"

// Config represents the complete application configuration.
type Config struct {
	Finnhub   FinnhubConfig   `mapstructure:"finnhub"   yaml:"finnhub"`
	Yahoo     YahooConfig     `mapstructure:"yahoo"     yaml:"yahoo"`
	Resolver  ResolverConfig  `mapstructure:"resolver"  yaml:"resolver"`
	Directory DirectoryConfig `mapstructure:"directory" yaml:"directory"`
	Cache     CacheConfig     `mapstructure:"cache"     yaml:"cache"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// FinnhubConfig holds the calendar/profile provider settings.
type FinnhubConfig struct {
	APIKey        string `mapstructure:"api_key"         yaml:"api_key"`
	BaseURL       string `mapstructure:"base_url"        yaml:"base_url"`
	RatePerMinute int    `mapstructure:"rate_per_minute" yaml:"rate_per_minute"` // free tier: 60
}

// YahooConfig holds the Yahoo Finance quote provider settings.
type YahooConfig struct {
	Enabled       bool   `mapstructure:"enabled"         yaml:"enabled"`
	BaseURL       string `mapstructure:"base_url"        yaml:"base_url"`
	RatePerMinute int    `mapstructure:"rate_per_minute" yaml:"rate_per_minute"`
}

// ResolverConfig holds earnings and market cap resolution settings.
type ResolverConfig struct {
	DemoMode         bool     `mapstructure:"demo_mode"          yaml:"demo_mode"`
	WindowDays       int      `mapstructure:"window_days"        yaml:"window_days"`
	DemoMinDays      int      `mapstructure:"demo_min_days"      yaml:"demo_min_days"`
	DemoMaxDays      int      `mapstructure:"demo_max_days"      yaml:"demo_max_days"`
	HTTPTimeoutSec   int      `mapstructure:"http_timeout_sec"   yaml:"http_timeout_sec"`
	Workers          int      `mapstructure:"workers"            yaml:"workers"`
	Burst            int      `mapstructure:"burst"              yaml:"burst"`
	EarningsCalendar []string `mapstructure:"earnings_calendar"  yaml:"earnings_calendar"` // provider A, in order
	EarningsProfile  []string `mapstructure:"earnings_profile"   yaml:"earnings_profile"`  // provider B, in order
	MarketCap        []string `mapstructure:"market_cap"         yaml:"market_cap"`
}

// HTTPTimeout returns the per-upstream-call deadline.
func (r ResolverConfig) HTTPTimeout() time.Duration {
	return time.Duration(r.HTTPTimeoutSec) * time.Second
}

// DirectoryConfig selects the company universe and where it is loaded from.
type DirectoryConfig struct {
	Universe  string `mapstructure:"universe"   yaml:"universe"` // "cac40" or "sp500"
	Source    string `mapstructure:"source"     yaml:"source"`   // "static", "scrape" or "hosted"
	ScrapeURL string `mapstructure:"scrape_url" yaml:"scrape_url"`
	HostedURL string `mapstructure:"hosted_url" yaml:"hosted_url"`
	TTLSec    int    `mapstructure:"ttl_sec"    yaml:"ttl_sec"`
	PageSize  int    `mapstructure:"page_size"  yaml:"page_size"`
}

// TTL returns how long a loaded company list stays fresh.
func (d DirectoryConfig) TTL() time.Duration {
	return time.Duration(d.TTLSec) * time.Second
}

// CacheConfig selects the delegated result cache.
type CacheConfig struct {
	Backend  string `mapstructure:"backend"   yaml:"backend"` // "memory" or "redis"
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`
	TTLSec   int    `mapstructure:"ttl_sec"   yaml:"ttl_sec"`
}

// TTL returns how long resolutions are cached.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `mapstructure:"level"   yaml:"level"`  // "debug", "info", "warn", "error"
	Format  string `mapstructure:"format"  yaml:"format"` // "text" or "json"
	Tracing bool   `mapstructure:"tracing" yaml:"tracing"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml
//  2. ~/.earningsdesk/config.yaml
//  3. /etc/earningsdesk/config.yaml
//
// Environment variables override config file values.
// Format: EARNINGSDESK_<SECTION>_<KEY>, e.g., EARNINGSDESK_FINNHUB_API_KEY
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".earningsdesk"))
	v.AddConfigPath("/etc/earningsdesk")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No file: defaults + env only.
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("finnhub.api_key", "")
	v.SetDefault("finnhub.base_url", "https://finnhub.io/api/v1")
	v.SetDefault("finnhub.rate_per_minute", 60)

	v.SetDefault("yahoo.enabled", true)
	v.SetDefault("yahoo.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("yahoo.rate_per_minute", 120)

	v.SetDefault("resolver.demo_mode", false)
	v.SetDefault("resolver.window_days", 180)
	v.SetDefault("resolver.demo_min_days", 5)
	v.SetDefault("resolver.demo_max_days", 90)
	v.SetDefault("resolver.http_timeout_sec", 10)
	v.SetDefault("resolver.workers", 4)
	v.SetDefault("resolver.burst", 1)
	v.SetDefault("resolver.earnings_calendar", []string{"finnhub"})
	v.SetDefault("resolver.earnings_profile", []string{"yfinance"})
	v.SetDefault("resolver.market_cap", []string{"finnhub", "yfinance"})

	v.SetDefault("directory.universe", "cac40")
	v.SetDefault("directory.source", "static")
	v.SetDefault("directory.scrape_url", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies")
	v.SetDefault("directory.hosted_url", "")
	v.SetDefault("directory.ttl_sec", 6*60*60)
	v.SetDefault("directory.page_size", 10)

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.ttl_sec", 60*60)

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.tracing", false)
}

// overrideFromEnv reads the vendor's conventional variable as a fallback
// for the credential.
func overrideFromEnv(cfg *Config) {
	if cfg.Finnhub.APIKey == "" {
		cfg.Finnhub.APIKey = os.Getenv("FINNHUB_API_KEY")
	}
}

// Validate rejects configurations the resolvers cannot honour.
func (c *Config) Validate() error {
	switch c.Directory.Universe {
	case "cac40", "sp500":
	default:
		return fmt.Errorf("directory.universe: unknown universe %q (want cac40 or sp500)", c.Directory.Universe)
	}
	switch c.Directory.Source {
	case "static", "scrape", "hosted":
	default:
		return fmt.Errorf("directory.source: unknown source %q (want static, scrape or hosted)", c.Directory.Source)
	}
	if c.Directory.Source == "hosted" && c.Directory.HostedURL == "" {
		return fmt.Errorf("directory.hosted_url is required when directory.source is hosted")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (want memory or redis)", c.Cache.Backend)
	}
	if c.Resolver.WindowDays <= 0 {
		return fmt.Errorf("resolver.window_days must be positive, got %d", c.Resolver.WindowDays)
	}
	if c.Resolver.DemoMinDays < 0 || c.Resolver.DemoMaxDays < c.Resolver.DemoMinDays {
		return fmt.Errorf("resolver demo band [%d, %d] is invalid", c.Resolver.DemoMinDays, c.Resolver.DemoMaxDays)
	}
	if c.Resolver.Workers < 1 {
		return fmt.Errorf("resolver.workers must be at least 1, got %d", c.Resolver.Workers)
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
