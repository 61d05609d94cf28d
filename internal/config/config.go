package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the gw2flip CLI.
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Market data API
	API APIConfig `yaml:"api"`

	// Trading post fees, percent of sale price.
	ListingFeePct  int64 `yaml:"listing_fee_pct"`
	ExchangeFeePct int64 `yaml:"exchange_fee_pct"`

	// Ranking
	SortKey     string `yaml:"sort_key"`    // profit, step, roi, qty
	MinProfit   int64  `yaml:"min_profit"`  // copper
	Parallelism int    `yaml:"parallelism"` // 0 = GOMAXPROCS

	// Snapshot persistence (optional, enables --offline runs)
	Database DatabaseConfig `yaml:"database"`
}

// APIConfig holds trading post API client parameters.
type APIConfig struct {
	BaseURL     string `yaml:"base_url"`
	CacheDir    string `yaml:"cache_dir"`
	CacheTTLMin int    `yaml:"cache_ttl_min"`
	ChunkSize   int    `yaml:"chunk_size"` // ids per listings request
	TimeoutSec  int    `yaml:"timeout_sec"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// TotalFeePct returns the combined trading post cut applied to sales.
func (c Config) TotalFeePct() int64 {
	return c.ListingFeePct + c.ExchangeFeePct
}

// Default returns config with sensible defaults: the official API, the
// standard 5% listing + 10% exchange fees, ranking by total profit.
func Default() Config {
	return Config{
		LogLevel: "info",
		API: APIConfig{
			BaseURL:     "https://api.guildwars2.com/v2",
			CacheDir:    ".cache",
			CacheTTLMin: 5,
			ChunkSize:   200,
			TimeoutSec:  30,
		},
		ListingFeePct:  5,
		ExchangeFeePct: 10,
		SortKey:        "profit",
		MinProfit:      0,
		Parallelism:    0,
		// database persistence off by default; enable for --offline runs
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "gw2flip",
			Password: "gw2flip",
			DBName:   "gw2flip",
			SSLMode:  "disable",
		},
	}
}

// Load loads config from a YAML file over the defaults.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ListingFeePct < 0 || c.ExchangeFeePct < 0 || c.TotalFeePct() >= 100 {
		return fmt.Errorf("fees %d%%+%d%% out of range", c.ListingFeePct, c.ExchangeFeePct)
	}
	if c.API.ChunkSize <= 0 {
		return fmt.Errorf("api chunk_size %d must be positive", c.API.ChunkSize)
	}
	return nil
}
