package stats

import (
	"fmt"
	"io"
	"math"
)

// WriteReport renders a Summary as a human readable block, used by the
// CLI after a scripted run.
func WriteReport(w io.Writer, s Summary) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Session Performance")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Closed Trades: %d\n", s.ClosedTrades)
	fmt.Fprintf(w, "Wins:          %d\n", s.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", s.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", s.WinRate)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Profit & Loss")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Gross Profit:  %.2f\n", s.GrossProfit)
	fmt.Fprintf(w, "Gross Loss:    %.2f\n", s.GrossLoss)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", s.NetPL)
	fmt.Fprintf(w, "Total Fees:    %.2f\n", s.TotalFees)
	if math.IsInf(s.ProfitFactor, 1) {
		fmt.Fprintln(w, "Profit Factor: inf")
	} else {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", s.ProfitFactor)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Risk Adjusted")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Sharpe:        %.4f\n", s.Sharpe)
	fmt.Fprintf(w, "Sortino:       %.4f\n", s.Sortino)
	fmt.Fprintf(w, "Periods:       %d\n", s.Periods)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Streaks")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Current:       %d\n", s.CurrentStreak)
	fmt.Fprintf(w, "Max Wins:      %d\n", s.MaxWinStreak)
	fmt.Fprintf(w, "Max Losses:    %d\n", s.MaxLossStreak)
	fmt.Fprintln(w, "==================================================")
}
