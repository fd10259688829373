package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"EquityPulse/internal/services/engine"
	"EquityPulse/pkg/cache"
	pkgch "EquityPulse/pkg/clickhouse"
	xhttp "EquityPulse/pkg/http"
	pkgkafka "EquityPulse/pkg/kafka"
	applogger "EquityPulse/pkg/logger"
)

// EnvPrefix is prepended to every environment override, e.g.
// EQUITYPULSE_KAFKA_BROKERS or EQUITYPULSE_CLICKHOUSE_HOST.
const EnvPrefix = "EQUITYPULSE_"

type Config struct {
	Environment string             `yaml:"environment" env:"ENVIRONMENT" default:"development" validate:"oneof=development staging production test"`
	Server      xhttp.ServerConfig `yaml:"server" envPrefix:"SERVER_"`
	Logging     applogger.Config   `yaml:"logging" envPrefix:"LOG_"`
	Kafka       KafkaConfig        `yaml:"kafka" envPrefix:"KAFKA_"`
	ClickHouse  pkgch.ClientConfig `yaml:"clickhouse" envPrefix:"CLICKHOUSE_"`
	Cache       cache.Config       `yaml:"cache" envPrefix:"CACHE_"`
	Provider    ProviderConfig     `yaml:"provider" envPrefix:"PROVIDER_"`
	Engine      engine.Config      `yaml:"engine"`
	Watchlist   WatchlistConfig    `yaml:"watchlist" envPrefix:"WATCHLIST_"`
	Export      ExportConfig       `yaml:"export" envPrefix:"EXPORT_"`
	LogShipping LogShippingConfig  `yaml:"log_shipping" envPrefix:"LOG_SHIPPING_"`
}

// KafkaConfig enables the broker side of the service. With Enabled unset the
// server runs HTTP only and reports are not published.
type KafkaConfig struct {
	Enabled         bool `yaml:"enabled" env:"ENABLED"`
	pkgkafka.Config `yaml:",inline"`
}

// ProviderConfig describes the remote market data source.
type ProviderConfig struct {
	BaseURL      string        `yaml:"base_url" env:"BASE_URL" default:"https://query1.finance.yahoo.com" validate:"required,url"`
	Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT" default:"15s"`
	Retries      int           `yaml:"retries" env:"RETRIES" default:"3" validate:"gte=1,lte=10"`
	RetryBackoff time.Duration `yaml:"retry_backoff" env:"RETRY_BACKOFF" default:"500ms"`
	UserAgent    string        `yaml:"user_agent" env:"USER_AGENT" default:"Mozilla/5.0 (compatible; equitypulse/1.0)"`
	// LookbackDays is the default range when a request carries no start date.
	LookbackDays int `yaml:"lookback_days" env:"LOOKBACK_DAYS" default:"365" validate:"gte=30"`
	// AnalysisTimeout bounds fetch plus analysis for one ticker.
	AnalysisTimeout time.Duration `yaml:"analysis_timeout" env:"ANALYSIS_TIMEOUT" default:"30s"`
	// Backfill writes remotely fetched bars into ClickHouse.
	Backfill bool `yaml:"backfill" env:"BACKFILL" default:"true"`
}

// WatchlistConfig schedules periodic analysis of a fixed set of tickers.
type WatchlistConfig struct {
	Enabled     bool          `yaml:"enabled" env:"ENABLED"`
	Tickers     []string      `yaml:"tickers" env:"TICKERS" envSeparator:","`
	Interval    time.Duration `yaml:"interval" env:"INTERVAL" default:"1h" validate:"gte=1m"`
	Benchmark   string        `yaml:"benchmark" env:"BENCHMARK" default:"^GSPTSE"`
	Concurrency int           `yaml:"concurrency" env:"CONCURRENCY" default:"4" validate:"gte=1,lte=32"`
}

// ExportConfig is used by the analyze command.
type ExportConfig struct {
	Dir string `yaml:"dir" env:"DIR" default:"."`
}

// LogShippingConfig forwards aggregated error logs to Kafka.
type LogShippingConfig struct {
	Enabled        bool          `yaml:"enabled" env:"ENABLED"`
	Interval       time.Duration `yaml:"interval" env:"INTERVAL" default:"30s"`
	CountThreshold int           `yaml:"count_threshold" env:"COUNT_THRESHOLD" default:"100"`
}

var validate = validator.New()

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return c
}

// Load reads and parses a YAML configuration file. Missing keys keep their
// defaults.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides it with EQUITYPULSE_*
// environment variables. An empty path skips the file.
func LoadWithEnv(path string) (*Config, error) {
	c := Default()
	if path != "" {
		var err error
		if c, err = read(path); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(c, nil); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Parse decodes YAML over the defaults without validating.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	if err := yaml.NewDecoder(r).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides c from the environment. A nil environment reads the
// process environment.
func ApplyEnv(c *Config, environment map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Watchlist.Enabled && len(c.Watchlist.Tickers) == 0 {
		return fmt.Errorf("watchlist.tickers cannot be empty when the watchlist is enabled")
	}
	if c.LogShipping.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("log_shipping requires kafka")
	}
	return nil
}

func read(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
