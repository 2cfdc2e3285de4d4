package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config aggregates all configuration settings for the application.
type Config struct {
	// Environment indicates the running environment (e.g., "development", "production").
	Environment string `mapstructure:"environment"`
	// LogLevel sets the global logging verbosity.
	LogLevel string `mapstructure:"log_level"`
	// Server holds configuration for the HTTP server.
	Server ServerConfig `mapstructure:"server"`
	// Redis holds configuration for the optional Redis cache.
	Redis RedisConfig `mapstructure:"redis"`
	// MarketData holds configuration for the market-data provider.
	MarketData MarketDataConfig `mapstructure:"market_data"`
	// Analytics holds configuration for transforms and forecasting.
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	// Telemetry holds configuration for tracing.
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig defines the HTTP server settings.
type ServerConfig struct {
	// Port is the TCP port the server listens on.
	Port int `mapstructure:"port"`
	// AllowedOrigins is a list of CORS allowed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RedisConfig defines the Redis connection settings. The server runs without
// caching when Redis is unreachable.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// CacheTTL is the price-history snapshot lifetime, e.g. "15m".
	CacheTTL string `mapstructure:"cache_ttl"`
}

// Addr returns the host:port address for the Redis client.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MarketDataConfig defines settings for the market-data provider endpoints.
type MarketDataConfig struct {
	// BaseURL is the chart API base, e.g. "https://query1.finance.yahoo.com".
	BaseURL string `mapstructure:"base_url"`
	// ScreenerURL is the predefined-screener endpoint used for the
	// most-active listing. Empty disables the listing.
	ScreenerURL string `mapstructure:"screener_url"`
	// Range is the history range requested from the provider, e.g. "2y".
	Range string `mapstructure:"range"`
	// Timeout is the request timeout in seconds.
	Timeout int `mapstructure:"timeout"`
}

// AnalyticsConfig defines parameters for the transform and forecast pipeline.
type AnalyticsConfig struct {
	// RollingWindow is the default trailing window for mean/stddev statistics.
	RollingWindow int `mapstructure:"rolling_window"`
	// MinObservations is the minimum series length a model fit requires.
	MinObservations int `mapstructure:"min_observations"`
	// MaxHorizon caps the forecast horizon in business days.
	MaxHorizon int `mapstructure:"max_horizon"`
	// OverlayPeriods lists SMA overlay periods for the price chart.
	OverlayPeriods []int `mapstructure:"overlay_periods"`
}

// TelemetryConfig defines settings for tracing.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
}

// Load reads configuration from ./configs/config.yaml or ./config.yaml when
// present, then applies environment overrides (e.g. SERVER_PORT,
// MARKET_DATA_BASE_URL). Missing files are fine; defaults cover everything.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Analytics.MaxHorizon < 0 || config.Analytics.MaxHorizon > 7 {
		return nil, fmt.Errorf("analytics.max_horizon must be between 0 and 7, got %d", config.Analytics.MaxHorizon)
	}
	if config.Analytics.RollingWindow < 1 {
		return nil, fmt.Errorf("analytics.rolling_window must be positive, got %d", config.Analytics.RollingWindow)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.cache_ttl", "15m")

	viper.SetDefault("market_data.base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("market_data.screener_url", "https://query1.finance.yahoo.com/v1/finance/screener/predefined/saved")
	viper.SetDefault("market_data.range", "2y")
	viper.SetDefault("market_data.timeout", 30)

	viper.SetDefault("analytics.rolling_window", 30)
	viper.SetDefault("analytics.min_observations", 30)
	viper.SetDefault("analytics.max_horizon", 7)
	viper.SetDefault("analytics.overlay_periods", []int{20, 50})

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.service_name", "stockdash")
	viper.SetDefault("telemetry.service_version", "1.0.0")
}
