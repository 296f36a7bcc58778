package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestParseDelay(t *testing.T) {
	t.Parallel()

	c := ExecutionConfig{Delay: "500ms"}
	d, err := c.ParseDelay()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)

	c.Delay = ""
	d, err = c.ParseDelay()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero starting cash", func(c *Config) { c.Account.StartingCash = 0 }},
		{"negative fee rate", func(c *Config) { c.Execution.FeeRate = -0.01 }},
		{"fee rate of one", func(c *Config) { c.Execution.FeeRate = 1 }},
		{"bad delay", func(c *Config) { c.Execution.Delay = "soon" }},
		{"negative delay", func(c *Config) { c.Execution.Delay = "-500ms" }},
		{"negative snapshot interval", func(c *Config) { c.Snapshots.Interval = "-1m" }},
		{"negative retention", func(c *Config) { c.Snapshots.Retention = "-24h" }},
		{"negative slippage", func(c *Config) { c.Execution.MaxSlippage = -1 }},
		{"partial prob above one", func(c *Config) { c.Execution.PartialFillProb = 1.5 }},
		{"reject prob below zero", func(c *Config) { c.Execution.RejectProb = -0.1 }},
		{"zero snapshot interval", func(c *Config) { c.Snapshots.Interval = "0s" }},
		{"zero retention", func(c *Config) { c.Snapshots.Retention = "0s" }},
		{"zero annualization", func(c *Config) { c.Stats.Annualization = 0 }},
		{"unknown journal type", func(c *Config) { c.Journal.Type = "parquet" }},
		{"csv without files", func(c *Config) { c.Journal.Type = "csv" }},
		{"sqlite without path", func(c *Config) { c.Journal.Type = "sqlite" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateScriptedOrders(t *testing.T) {
	t.Parallel()

	price := 40.0
	cfg := Default()
	cfg.Simulation = SimulationConfig{
		Steps: []PriceStep{
			{MarketID: "btc-above-100k", Yes: 40, No: 59, Delay: "1m"},
		},
		Orders: []OrderStep{
			{AfterStep: 0, MarketID: "btc-above-100k", Side: "yes", Action: "buy", Kind: "limit", Quantity: 10, Price: &price},
		},
	}
	assert.NoError(t, cfg.Validate())

	cfg.Simulation.Orders[0].AfterStep = 3
	assert.Error(t, cfg.Validate())

	cfg.Simulation.Orders[0].AfterStep = 0
	cfg.Simulation.Orders[0].Kind = "limit"
	cfg.Simulation.Orders[0].Price = nil
	assert.Error(t, cfg.Validate())
}

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	yml := `
account:
  id: TEST-1
  starting_cash: 50000
execution:
  fee_rate: 0.02
  delay: 250ms
  max_slippage: 1
  slippage_enabled: true
  partial_fill_prob: 0.5
  partial_fill_enabled: true
  reject_prob: 0.1
  seed: 42
snapshots:
  interval: 30s
  retention: 12h
stats:
  annualization: 365
journal:
  type: none
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "TEST-1", cfg.Account.ID)
	assert.InDelta(t, 50000, cfg.Account.StartingCash, 1e-9)
	assert.InDelta(t, 0.02, cfg.Execution.FeeRate, 1e-9)
	assert.Equal(t, int64(42), cfg.Execution.Seed)

	iv, err := cfg.Snapshots.ParseInterval()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, iv)
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Default()
	cfg.Account.ID = "ROUND-1"

	for _, name := range []string{"cfg.yaml", "cfg.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, cfg.SaveToFile(path))

		got, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, cfg.Account.ID, got.Account.ID)
		assert.InDelta(t, cfg.Execution.FeeRate, got.Execution.FeeRate, 1e-9)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
