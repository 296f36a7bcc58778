// Package journal defines the append-only record types the simulator
// emits (trades and equity snapshots) and the sinks that persist them.
package journal

import (
	"time"

	"github.com/rustyeddy/papertrade/market"
)

// TradeRecord is a ledger-level record of a single fill. For sell
// trades RealizedPL carries the profit-or-loss against the position's
// average cost at fill time, net of the fill fee.
type TradeRecord struct {
	TradeID    string        `json:"trade_id"`
	OrderID    string        `json:"order_id"`
	MarketID   string        `json:"market_id"`
	Side       market.Side   `json:"side"`
	Action     market.Action `json:"action"`
	Quantity   float64       `json:"quantity"`
	Price      float64       `json:"price"`
	Fee        float64       `json:"fee"`
	RealizedPL float64       `json:"realized_pl"`
	Time       time.Time     `json:"time"`
}

// EquitySnapshot is a point-in-time sample of the portfolio.
type EquitySnapshot struct {
	Time          time.Time `json:"time"`
	Cash          float64   `json:"cash"`
	Equity        float64   `json:"equity"`
	UnrealizedPL  float64   `json:"unrealized_pl"`
	RealizedPL    float64   `json:"realized_pl"`
	OpenPositions int       `json:"open_positions"`
	NotionalUsed  float64   `json:"notional_used"`
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Memory is an in-process journal, handy for tests and examples.
type Memory struct {
	Trades []TradeRecord
	Equity []EquitySnapshot
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) RecordTrade(t TradeRecord) error {
	m.Trades = append(m.Trades, t)
	return nil
}

func (m *Memory) RecordEquity(e EquitySnapshot) error {
	m.Equity = append(m.Equity, e)
	return nil
}

func (m *Memory) Close() error { return nil }
