// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, metrics address, and logging level.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Instrument declares a tradable symbol created at startup.
type Instrument struct {
	Symbol string `yaml:"symbol"`
	Price  int64  `yaml:"price"`
}

// Market configures the random walk and the tick cadence.
type Market struct {
	TickPeriodMs int          `yaml:"tick_period_ms"`
	MinDelta     int64        `yaml:"min_delta"`
	MaxDelta     int64        `yaml:"max_delta"`
	PriceFloor   int64        `yaml:"price_floor"`
	Seed         int64        `yaml:"seed"` // 0 picks a time-based seed
	HistoryCap   int          `yaml:"history_cap"`
	Instruments  []Instrument `yaml:"instruments"`
}

// Ledger captures the virtual account settings.
type Ledger struct {
	StartingBalance int64  `yaml:"starting_balance"`
	FillsPath       string `yaml:"fills_path"`
}

// UI configures the presentation refresh cadence.
type UI struct {
	RefreshPeriodMs int `yaml:"refresh_period_ms"`
	ChartWidth      int `yaml:"chart_width"`
}

// Stream configures the websocket snapshot stream served next to /metrics.
type Stream struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App    App    `yaml:"app"`
	Market Market `yaml:"market"`
	Ledger Ledger `yaml:"ledger"`
	UI     UI     `yaml:"ui"`
	Stream Stream `yaml:"stream"`
}

// Default returns the stock simulator's built-in settings: TechCorp at 100,
// HealthPlus at 50, a 1000 balance, and a 5 second walk of [-10, 10] floored at 1.
func Default() *Config {
	return &Config{
		App: App{
			Name:        "stock-simulator",
			Env:         "dev",
			MetricsAddr: ":9102",
			LogLevel:    "info",
		},
		Market: Market{
			TickPeriodMs: 5000,
			MinDelta:     -10,
			MaxDelta:     10,
			PriceFloor:   1,
			Instruments: []Instrument{
				{Symbol: "TechCorp", Price: 100},
				{Symbol: "HealthPlus", Price: 50},
			},
		},
		Ledger: Ledger{StartingBalance: 1000},
		UI:     UI{RefreshPeriodMs: 5000, ChartWidth: 40},
		Stream: Stream{Enabled: true, Path: "/stream"},
	}
}

// TickPeriod converts the configured tick period to a duration.
func (m Market) TickPeriod() time.Duration {
	return time.Duration(m.TickPeriodMs) * time.Millisecond
}

// RefreshPeriod converts the configured UI refresh period to a duration.
func (u UI) RefreshPeriod() time.Duration {
	return time.Duration(u.RefreshPeriodMs) * time.Millisecond
}

// Load reads a YAML file from disk and decodes it over Default.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate rejects settings the market or ledger cannot run with.
func (c *Config) Validate() error {
	m := c.Market
	if m.TickPeriodMs <= 0 {
		return fmt.Errorf("market.tick_period_ms must be positive, got %d", m.TickPeriodMs)
	}
	if m.MinDelta > m.MaxDelta {
		return fmt.Errorf("market.min_delta %d exceeds max_delta %d", m.MinDelta, m.MaxDelta)
	}
	if m.PriceFloor < 1 {
		return fmt.Errorf("market.price_floor must be at least 1, got %d", m.PriceFloor)
	}
	if m.HistoryCap < 0 {
		return fmt.Errorf("market.history_cap must not be negative")
	}
	if len(m.Instruments) == 0 {
		return errors.New("market.instruments must not be empty")
	}
	seen := make(map[string]struct{}, len(m.Instruments))
	for _, inst := range m.Instruments {
		sym := strings.TrimSpace(inst.Symbol)
		if sym == "" {
			return errors.New("market.instruments: empty symbol")
		}
		if _, dup := seen[sym]; dup {
			return fmt.Errorf("market.instruments: duplicate symbol %q", sym)
		}
		seen[sym] = struct{}{}
		if inst.Price < m.PriceFloor {
			return fmt.Errorf("market.instruments: %s price %d below floor %d", sym, inst.Price, m.PriceFloor)
		}
	}
	if c.Ledger.StartingBalance < 0 {
		return fmt.Errorf("ledger.starting_balance must not be negative")
	}
	return nil
}

// ApplyEnv loads an optional .env file and applies STOCKSIM_* overrides.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load() // best-effort

	if v := os.Getenv("STOCKSIM_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	if v := os.Getenv("STOCKSIM_METRICS_ADDR"); v != "" {
		c.App.MetricsAddr = v
	}
	if v := os.Getenv("STOCKSIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("STOCKSIM_SEED: %w", err)
		}
		c.Market.Seed = seed
	}
	if v := os.Getenv("STOCKSIM_TICK_PERIOD_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STOCKSIM_TICK_PERIOD_MS: %w", err)
		}
		c.Market.TickPeriodMs = ms
	}
	return c.Validate()
}
