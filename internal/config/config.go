package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url" envconfig:"API_BASE_URL"`
	Timeout        time.Duration `mapstructure:"timeout" envconfig:"API_TIMEOUT"`
	RatePerSecond  float64       `mapstructure:"rate_per_second" envconfig:"API_RATE_PER_SECOND"`
	RateBurst      int           `mapstructure:"rate_burst" envconfig:"API_RATE_BURST"`
	BreakerMax     int           `mapstructure:"breaker_max_failures" envconfig:"API_BREAKER_MAX_FAILURES"`
	BreakerTimeout time.Duration `mapstructure:"breaker_timeout" envconfig:"API_BREAKER_TIMEOUT"`
}

type UIConfig struct {
	WidthBreakpoint int           `mapstructure:"width_breakpoint" envconfig:"UI_WIDTH_BREAKPOINT"`
	PerPageWide     int           `mapstructure:"per_page_wide" envconfig:"UI_PER_PAGE_WIDE"`
	PerPageNarrow   int           `mapstructure:"per_page_narrow" envconfig:"UI_PER_PAGE_NARROW"`
	SearchDebounce  time.Duration `mapstructure:"search_debounce" envconfig:"UI_SEARCH_DEBOUNCE"`
}

type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl" envconfig:"CACHE_TTL"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" envconfig:"CACHE_CLEANUP_INTERVAL"`
}

type StubConfig struct {
	Port        int           `mapstructure:"port" envconfig:"STUB_PORT"`
	JWTSecret   string        `mapstructure:"jwt_secret" envconfig:"STUB_JWT_SECRET"`
	TokenExpiry time.Duration `mapstructure:"token_expiry" envconfig:"STUB_TOKEN_EXPIRY"`
}

type Config struct {
	API   APIConfig   `mapstructure:"api"`
	UI    UIConfig    `mapstructure:"ui"`
	Cache CacheConfig `mapstructure:"cache"`
	Stub  StubConfig  `mapstructure:"stub"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8080",
			Timeout:        15 * time.Second,
			RatePerSecond:  20,
			RateBurst:      10,
			BreakerMax:     5,
			BreakerTimeout: 30 * time.Second,
		},
		UI: UIConfig{
			WidthBreakpoint: 120,
			PerPageWide:     10,
			PerPageNarrow:   5,
			SearchDebounce:  400 * time.Millisecond,
		},
		Cache: CacheConfig{
			TTL:             2 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
		Stub: StubConfig{
			Port:        8080,
			JWTSecret:   "dev-secret",
			TokenExpiry: 12 * time.Hour,
		},
	}
}

// LoadConfig reads config.yaml (working dir or ./config), then applies
// CLINIC_* environment overrides. A missing file is not an error; the
// defaults stand.
func LoadConfig() (*Config, error) {
	cfg := Default()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("clinic", cfg); err != nil {
		return nil, fmt.Errorf("failed to process env overrides: %w", err)
	}

	return cfg, nil
}
