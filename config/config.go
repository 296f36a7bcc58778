package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/papertrade/market"
)

// Config represents the complete simulation configuration.
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Execution  ExecutionConfig  `json:"execution" yaml:"execution"`
	Snapshots  SnapshotConfig   `json:"snapshots" yaml:"snapshots"`
	Stats      StatsConfig      `json:"stats" yaml:"stats"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Simulation SimulationConfig `json:"simulation,omitempty" yaml:"simulation,omitempty"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	ID           string  `json:"id" yaml:"id"`
	StartingCash float64 `json:"starting_cash" yaml:"starting_cash"`
}

// ExecutionConfig tunes the execution simulator.
type ExecutionConfig struct {
	FeeRate            float64 `json:"fee_rate" yaml:"fee_rate"`                         // fraction of notional
	Delay              string  `json:"delay" yaml:"delay"`                               // e.g. "500ms"
	MaxSlippage        float64 `json:"max_slippage" yaml:"max_slippage"`                 // price units (cents)
	SlippageEnabled    bool    `json:"slippage_enabled" yaml:"slippage_enabled"`
	PartialFillProb    float64 `json:"partial_fill_prob" yaml:"partial_fill_prob"`       // [0,1]
	PartialFillEnabled bool    `json:"partial_fill_enabled" yaml:"partial_fill_enabled"`
	RejectProb         float64 `json:"reject_prob" yaml:"reject_prob"`                   // [0,1]
	Seed               int64   `json:"seed" yaml:"seed"`                                 // 0 means seed from the clock
}

// ParseDelay converts the simulated execution delay to a duration.
func (c ExecutionConfig) ParseDelay() (time.Duration, error) {
	if c.Delay == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Delay)
}

// SnapshotConfig tunes the snapshot recorder.
type SnapshotConfig struct {
	Interval  string `json:"interval" yaml:"interval"`   // e.g. "1m"
	Retention string `json:"retention" yaml:"retention"` // e.g. "24h"
}

func (c SnapshotConfig) ParseInterval() (time.Duration, error) {
	if c.Interval == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Interval)
}

func (c SnapshotConfig) ParseRetention() (time.Duration, error) {
	if c.Retention == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Retention)
}

// StatsConfig tunes the performance metrics calculator.
type StatsConfig struct {
	// Annualization scales Sharpe/Sortino by sqrt(Annualization),
	// matching the cadence of the snapshot return series.
	Annualization float64 `json:"annualization" yaml:"annualization"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// SimulationConfig scripts a run for the CLI: an ordered list of price
// steps, with orders submitted after given steps.
type SimulationConfig struct {
	Steps  []PriceStep `json:"steps,omitempty" yaml:"steps,omitempty"`
	Orders []OrderStep `json:"orders,omitempty" yaml:"orders,omitempty"`
}

// PriceStep is one scripted price update.
type PriceStep struct {
	MarketID string  `json:"market_id" yaml:"market_id"`
	Yes      float64 `json:"yes" yaml:"yes"`
	No       float64 `json:"no" yaml:"no"`
	Delay    string  `json:"delay,omitempty" yaml:"delay,omitempty"` // e.g. "1h", "30m", "1s"
}

// ParseDuration converts the delay string to time.Duration.
func (ps PriceStep) ParseDuration() (time.Duration, error) {
	if ps.Delay == "" {
		return 0, nil
	}
	return time.ParseDuration(ps.Delay)
}

// OrderStep is one scripted order, submitted after the price step at
// index AfterStep has been applied.
type OrderStep struct {
	AfterStep int           `json:"after_step" yaml:"after_step"`
	MarketID  string        `json:"market_id" yaml:"market_id"`
	Side      market.Side   `json:"side" yaml:"side"`
	Action    market.Action `json:"action" yaml:"action"`
	Kind      string        `json:"kind" yaml:"kind"` // "market" or "limit"
	Quantity  float64       `json:"quantity" yaml:"quantity"`
	Price     *float64      `json:"price,omitempty" yaml:"price,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML first, JSON fallback).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (format chosen by extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.StartingCash <= 0 {
		return fmt.Errorf("account.starting_cash must be positive")
	}
	if c.Execution.FeeRate < 0 || c.Execution.FeeRate >= 1 {
		return fmt.Errorf("execution.fee_rate must be in [0, 1)")
	}
	if d, err := c.Execution.ParseDelay(); err != nil {
		return fmt.Errorf("execution.delay: %w", err)
	} else if d < 0 {
		return fmt.Errorf("execution.delay must not be negative")
	}
	if c.Execution.MaxSlippage < 0 {
		return fmt.Errorf("execution.max_slippage must be non-negative")
	}
	if c.Execution.PartialFillProb < 0 || c.Execution.PartialFillProb > 1 {
		return fmt.Errorf("execution.partial_fill_prob must be in [0, 1]")
	}
	if c.Execution.RejectProb < 0 || c.Execution.RejectProb > 1 {
		return fmt.Errorf("execution.reject_prob must be in [0, 1]")
	}
	if iv, err := c.Snapshots.ParseInterval(); err != nil {
		return fmt.Errorf("snapshots.interval: %w", err)
	} else if iv <= 0 {
		return fmt.Errorf("snapshots.interval must be positive")
	}
	if rt, err := c.Snapshots.ParseRetention(); err != nil {
		return fmt.Errorf("snapshots.retention: %w", err)
	} else if rt <= 0 {
		return fmt.Errorf("snapshots.retention must be positive")
	}
	if c.Stats.Annualization <= 0 {
		return fmt.Errorf("stats.annualization must be positive")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	for i, st := range c.Simulation.Steps {
		if st.MarketID == "" {
			return fmt.Errorf("simulation.steps[%d].market_id is required", i)
		}
		if _, err := st.ParseDuration(); err != nil {
			return fmt.Errorf("simulation.steps[%d].delay: %w", i, err)
		}
	}
	for i, o := range c.Simulation.Orders {
		if o.AfterStep < 0 || o.AfterStep >= len(c.Simulation.Steps) {
			return fmt.Errorf("simulation.orders[%d].after_step out of range", i)
		}
		if !o.Side.Valid() {
			return fmt.Errorf("simulation.orders[%d].side must be 'yes' or 'no'", i)
		}
		if !o.Action.Valid() {
			return fmt.Errorf("simulation.orders[%d].action must be 'buy' or 'sell'", i)
		}
		if o.Kind != "market" && o.Kind != "limit" {
			return fmt.Errorf("simulation.orders[%d].kind must be 'market' or 'limit'", i)
		}
		if o.Kind == "limit" && o.Price == nil {
			return fmt.Errorf("simulation.orders[%d] limit order needs a price", i)
		}
		if o.Quantity <= 0 {
			return fmt.Errorf("simulation.orders[%d].quantity must be positive", i)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:           "SIM-001",
			StartingCash: 100000,
		},
		Execution: ExecutionConfig{
			FeeRate:            0.01,
			Delay:              "500ms",
			MaxSlippage:        2,
			SlippageEnabled:    true,
			PartialFillProb:    0.3,
			PartialFillEnabled: true,
			RejectProb:         0.05,
		},
		Snapshots: SnapshotConfig{
			Interval:  "1m",
			Retention: "24h",
		},
		Stats: StatsConfig{
			Annualization: 365,
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}
