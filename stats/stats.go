// Package stats derives aggregate performance statistics from the
// engine's closed trades and equity snapshots. Everything here is a
// stateless projection: it is computed on demand and never stored as
// source-of-truth.
package stats

import (
	"math"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
)

// Summary is the computed metrics projection.
type Summary struct {
	ClosedTrades int     `json:"closed_trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"` // percent

	GrossProfit float64 `json:"gross_profit"`
	GrossLoss   float64 `json:"gross_loss"`
	NetPL       float64 `json:"net_pl"`
	TotalFees   float64 `json:"total_fees"`

	// ProfitFactor is +Inf when there are wins and no losses.
	ProfitFactor float64 `json:"profit_factor"`

	Sharpe  float64 `json:"sharpe"`
	Sortino float64 `json:"sortino"`
	Periods int     `json:"periods"` // return periods behind the ratios

	// CurrentStreak is positive for a run of wins, negative for a run
	// of losses.
	CurrentStreak int `json:"current_streak"`
	MaxWinStreak  int `json:"max_win_streak"`
	MaxLossStreak int `json:"max_loss_streak"`
}

// Compute builds a Summary from the trade history and snapshot
// sequence. Only closing (sell) trades count toward trade statistics;
// the return series comes from consecutive snapshot equities.
func Compute(trades []journal.TradeRecord, snaps []journal.EquitySnapshot, annualization float64) Summary {
	var s Summary

	for _, t := range trades {
		s.TotalFees += t.Fee
		if t.Action != market.Sell {
			continue
		}
		s.ClosedTrades++
		s.NetPL += t.RealizedPL

		switch {
		case t.RealizedPL > 0:
			s.Wins++
			s.GrossProfit += t.RealizedPL
			if s.CurrentStreak > 0 {
				s.CurrentStreak++
			} else {
				s.CurrentStreak = 1
			}
			if s.CurrentStreak > s.MaxWinStreak {
				s.MaxWinStreak = s.CurrentStreak
			}
		case t.RealizedPL < 0:
			s.Losses++
			s.GrossLoss += -t.RealizedPL
			if s.CurrentStreak < 0 {
				s.CurrentStreak--
			} else {
				s.CurrentStreak = -1
			}
			if -s.CurrentStreak > s.MaxLossStreak {
				s.MaxLossStreak = -s.CurrentStreak
			}
		default:
			// break-even: neither a win nor a loss, and it leaves the
			// running streak untouched
		}
	}

	if s.ClosedTrades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.ClosedTrades) * 100
	}
	switch {
	case s.GrossLoss > 0:
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	case s.GrossProfit > 0:
		s.ProfitFactor = math.Inf(1)
	}

	r := Returns(snaps)
	s.Periods = len(r)
	s.Sharpe = Sharpe(r, annualization)
	s.Sortino = Sortino(r, annualization)

	return s
}

// Returns builds the per-period return series from consecutive
// snapshot equities. Periods starting from zero equity are skipped.
func Returns(snaps []journal.EquitySnapshot) []float64 {
	var out []float64
	for i := 1; i < len(snaps); i++ {
		prev := snaps[i-1].Equity
		if prev == 0 {
			continue
		}
		out = append(out, (snaps[i].Equity-prev)/prev)
	}
	return out
}

// Sharpe is mean(r)/stddev(r) × sqrt(annualization), zero when the
// deviation is zero.
func Sharpe(r []float64, annualization float64) float64 {
	if len(r) == 0 {
		return 0
	}
	m := mean(r)
	sd := stddev(r, m)
	if sd == 0 {
		return 0
	}
	return m / sd * math.Sqrt(annualization)
}

// Sortino divides the same numerator by the deviation of only the
// negative returns. When no negative returns exist the deviation is
// pinned to 1.0 rather than zero, keeping the output comparable with
// the historical convention of this engine.
func Sortino(r []float64, annualization float64) float64 {
	if len(r) == 0 {
		return 0
	}
	var neg []float64
	for _, x := range r {
		if x < 0 {
			neg = append(neg, x)
		}
	}
	downside := 1.0
	if len(neg) > 0 {
		if sd := stddev(neg, mean(neg)); sd > 0 {
			downside = sd
		}
	}
	return mean(r) / downside * math.Sqrt(annualization)
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation around m.
func stddev(xs []float64, m float64) float64 {
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
