package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/internal/telemetry"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/rustyeddy/papertrade/stats"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scripted simulation from a config file",
	Long: `Run a paper-trading simulation using settings from a configuration file.

The config file specifies the account, execution frictions, and a script of
price steps with orders submitted after given steps.

Example:
  papertrade run -f examples/configs/basic.yaml`,
	RunE: runRun,
}

var (
	runConfigPath  string
	runStatePath   string
	runMetricsAddr string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVar(&runStatePath, "state", "", "write final engine state to this file as JSON")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	j, err := newJournal(cfg.Journal.Type, cfg.Journal.TradesFile, cfg.Journal.EquityFile, cfg.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	engine, err := sim.NewEngine(cfg, j)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	engine.SetLogger(log)

	if runMetricsAddr != "" {
		reg := prometheus.NewRegistry()
		engine.SetTelemetry(telemetry.New(reg))
		go func() {
			h := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
			if err := http.ListenAndServe(runMetricsAddr, h); err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	fmt.Printf("Running simulation with config: %s\n", runConfigPath)
	fmt.Printf("  Account: %s (Cash: $%.2f)\n", cfg.Account.ID, cfg.Account.StartingCash)
	fmt.Printf("  Session: %s\n", engine.Session())
	fmt.Printf("  Steps: %d, Orders: %d\n\n", len(cfg.Simulation.Steps), len(cfg.Simulation.Orders))

	if err := runScript(engine, cfg); err != nil {
		return err
	}

	fmt.Printf("Final cash:   $%.2f\n", engine.Cash())
	fmt.Printf("Final equity: $%.2f\n", engine.Equity())
	fmt.Printf("Realized P/L: $%.2f\n", engine.RealizedPL())
	fmt.Printf("Max drawdown: $%.2f\n\n", engine.MaxDrawdown())
	stats.WriteReport(os.Stdout, engine.Stats())

	if runStatePath != "" {
		data, err := engine.Export()
		if err != nil {
			return fmt.Errorf("export state: %w", err)
		}
		if err := os.WriteFile(runStatePath, data, 0644); err != nil {
			return fmt.Errorf("write state: %w", err)
		}
		fmt.Printf("\nState written to %s\n", runStatePath)
	}
	return nil
}

// runScript replays the configured price steps, submitting each
// scripted order right after its trigger step.
func runScript(engine *sim.Engine, cfg *config.Config) error {
	for i, step := range cfg.Simulation.Steps {
		d, _ := step.ParseDuration()
		if err := engine.UpdatePrice(market.PriceUpdate{
			MarketID: step.MarketID,
			BestYes:  step.Yes,
			BestNo:   step.No,
			Time:     engine.Now().Add(d),
		}); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		for _, so := range cfg.Simulation.Orders {
			if so.AfterStep != i {
				continue
			}
			req := sim.OrderRequest{
				MarketID: so.MarketID,
				Side:     so.Side,
				Action:   so.Action,
				Kind:     sim.Kind(so.Kind),
				Quantity: so.Quantity,
				Price:    so.Price,
			}
			o, err := engine.SubmitOrder(req)
			if err != nil {
				fmt.Printf("  step %d: order refused: %v\n", i, err)
				continue
			}
			fmt.Printf("  step %d: submitted %s %s %s %.2f @ %s (%s)\n",
				i, o.Action, o.Side, o.MarketID, o.Quantity, fmtLimit(o.LimitPrice), o.ID)
		}
	}

	// let any in-flight executions complete
	delay, _ := cfg.Execution.ParseDelay()
	if delay > 0 {
		engine.Advance(delay)
	}
	engine.Advance(time.Millisecond)
	return nil
}

func fmtLimit(p *float64) string {
	if p == nil {
		return "market"
	}
	return fmt.Sprintf("%.2f", *p)
}
