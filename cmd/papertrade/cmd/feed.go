package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/feed"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/rustyeddy/papertrade/stats"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Stream live prices over WebSocket into the simulator",
	Long: `Connect to a WebSocket price feed and run the simulator against it
until interrupted. Orders are not scripted in this mode; the command is for
watching equity track a live market and for journal capture.

Example:
  papertrade feed -f config.yaml --url ws://localhost:9001/prices`,
	RunE: runFeed,
}

var (
	feedConfigPath string
	feedURL        string
)

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().StringVarP(&feedConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	feedCmd.Flags().StringVar(&feedURL, "url", "", "WebSocket price feed URL (required)")
	feedCmd.MarkFlagRequired("url")
}

func runFeed(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if feedConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(feedConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Streaming %s (session %s), Ctrl-C to stop\n", feedURL, engine.Session())

	client := feed.New(feed.Config{URL: feedURL}, log)
	if err := client.Run(ctx, engine); err != nil && ctx.Err() == nil {
		return fmt.Errorf("feed: %w", err)
	}

	fmt.Printf("\nFinal equity: $%.2f across %d markets\n\n",
		engine.Equity(), len(engine.Positions()))
	stats.WriteReport(os.Stdout, engine.Stats())
	return nil
}
