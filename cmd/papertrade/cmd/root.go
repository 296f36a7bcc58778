package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/papertrade/journal"
)

var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "A simulated exchange for paper trading binary-outcome contracts",
	Long: `Papertrade is a virtual exchange for binary-outcome contract markets.

It provides tools for:
  - Running scripted simulations from a config file
  - Streaming live prices over WebSocket into the simulator
  - Simulated execution with latency, slippage and partial fills
  - Position, cash and equity tracking with drawdown
  - Performance metrics (Sharpe, Sortino, win rate, streaks)
  - Trade and equity journals (CSV or SQLite)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the CLI logger honoring --verbose.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// newJournal builds the journal sink named by the config.
func newJournal(typ, tradesFile, equityFile, dbPath string) (journal.Journal, error) {
	switch typ {
	case "", "none":
		return journal.NewMemory(), nil
	case "csv":
		return journal.NewCSV(tradesFile, equityFile)
	case "sqlite":
		return journal.NewSQLite(dbPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", typ)
	}
}
