package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "stocksim-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.App.LogLevel != "debug" {
		t.Fatalf("unexpected App.LogLevel: %s", cfg.App.LogLevel)
	}
	if cfg.Market.TickPeriod() != 250*time.Millisecond {
		t.Fatalf("unexpected tick period: %s", cfg.Market.TickPeriod())
	}
	if cfg.Market.MinDelta != -3 || cfg.Market.MaxDelta != 4 {
		t.Fatalf("unexpected delta range [%d, %d]", cfg.Market.MinDelta, cfg.Market.MaxDelta)
	}
	if cfg.Market.PriceFloor != 2 {
		t.Fatalf("unexpected price floor: %d", cfg.Market.PriceFloor)
	}
	if cfg.Market.Seed != 42 {
		t.Fatalf("unexpected seed: %d", cfg.Market.Seed)
	}
	if cfg.Market.HistoryCap != 64 {
		t.Fatalf("unexpected history cap: %d", cfg.Market.HistoryCap)
	}
	want := []Instrument{
		{Symbol: "TechCorp", Price: 120},
		{Symbol: "HealthPlus", Price: 45},
		{Symbol: "GreenGrid", Price: 10},
	}
	if diff := pretty.Compare(want, cfg.Market.Instruments); diff != "" {
		t.Fatalf("instruments -want/+got:\n%s", diff)
	}
	if cfg.Ledger.StartingBalance != 5000 {
		t.Fatalf("expected starting balance 5000, got %d", cfg.Ledger.StartingBalance)
	}
	if cfg.Ledger.FillsPath != "fills/test.jsonl" {
		t.Fatalf("unexpected fills path: %s", cfg.Ledger.FillsPath)
	}
	if cfg.Stream.Enabled {
		t.Fatalf("expected stream disabled")
	}
	// Keys missing from the file keep their defaults.
	if cfg.Stream.Path != "/stream" {
		t.Fatalf("expected default stream path, got %s", cfg.Stream.Path)
	}
	if cfg.UI.RefreshPeriod() != 5*time.Second {
		t.Fatalf("expected default refresh period, got %s", cfg.UI.RefreshPeriod())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault returned error: %v", err)
	}
	if diff := pretty.Compare(Default(), cfg); diff != "" {
		t.Fatalf("expected defaults -want/+got:\n%s", diff)
	}
}

func TestDefaultMatchesStartupConstants(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Market.TickPeriod() != 5*time.Second {
		t.Fatalf("expected 5s tick period, got %s", cfg.Market.TickPeriod())
	}
	if cfg.Market.MinDelta != -10 || cfg.Market.MaxDelta != 10 || cfg.Market.PriceFloor != 1 {
		t.Fatalf("unexpected walk parameters %+v", cfg.Market)
	}
	if cfg.Ledger.StartingBalance != 1000 {
		t.Fatalf("expected starting balance 1000, got %d", cfg.Ledger.StartingBalance)
	}
	want := []Instrument{{Symbol: "TechCorp", Price: 100}, {Symbol: "HealthPlus", Price: 50}}
	if diff := pretty.Compare(want, cfg.Market.Instruments); diff != "" {
		t.Fatalf("instruments -want/+got:\n%s", diff)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"zero period":     func(c *Config) { c.Market.TickPeriodMs = 0 },
		"inverted deltas": func(c *Config) { c.Market.MinDelta, c.Market.MaxDelta = 5, -5 },
		"floor below one": func(c *Config) { c.Market.PriceFloor = 0 },
		"no instruments":  func(c *Config) { c.Market.Instruments = nil },
		"duplicate":       func(c *Config) { c.Market.Instruments[1].Symbol = "TechCorp" },
		"below floor":     func(c *Config) { c.Market.Instruments[0].Price = 0 },
		"empty symbol":    func(c *Config) { c.Market.Instruments[0].Symbol = "  " },
		"negative cash":   func(c *Config) { c.Ledger.StartingBalance = -1 },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Market.Seed = 7
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Market.Seed != 7 {
		t.Fatalf("expected seed 7 after reload, got %d", loaded.Market.Seed)
	}
	if err := Save(path, nil); err == nil {
		t.Fatalf("expected error saving nil config")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STOCKSIM_LOG_LEVEL", "warn")
	t.Setenv("STOCKSIM_SEED", "99")
	t.Setenv("STOCKSIM_TICK_PERIOD_MS", "100")
	t.Setenv("STOCKSIM_METRICS_ADDR", "127.0.0.1:0")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv returned error: %v", err)
	}
	if cfg.App.LogLevel != "warn" || cfg.Market.Seed != 99 || cfg.Market.TickPeriodMs != 100 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.App.MetricsAddr != "127.0.0.1:0" {
		t.Fatalf("unexpected metrics addr %s", cfg.App.MetricsAddr)
	}
}

func TestApplyEnvBadSeed(t *testing.T) {
	t.Setenv("STOCKSIM_SEED", "not-a-number")
	cfg := Default()
	if err := cfg.ApplyEnv(); err == nil {
		t.Fatalf("expected error for invalid seed")
	}
}
