package sim

import (
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/papertrade/market"
)

type positionKey struct {
	MarketID string
	Side     market.Side
}

// Position is the net open exposure for one (market, side) pair. It is
// created on the first opening fill and deleted when quantity reaches
// zero; realized P&L up to that point lives in the trade records.
type Position struct {
	MarketID     string      `json:"market_id"`
	Side         market.Side `json:"side"`
	Quantity     float64     `json:"quantity"`
	AvgPrice     float64     `json:"avg_price"`
	MarkPrice    float64     `json:"mark_price"`
	UnrealizedPL float64     `json:"unrealized_pl"`
	RealizedPL   float64     `json:"realized_pl"`
	OpenedAt     time.Time   `json:"opened_at"`
	TradeIDs     []string    `json:"trade_ids,omitempty"`
}

func (p *Position) key() positionKey {
	return positionKey{MarketID: p.MarketID, Side: p.Side}
}

// add folds an opening fill into the weighted-average entry price.
func (p *Position) add(price, qty float64) {
	p.AvgPrice = (p.AvgPrice*p.Quantity + price*qty) / (p.Quantity + qty)
	p.Quantity += qty
}

// reduce realizes P&L for a closing fill against the average cost. The
// average price is unchanged by a reduction. Reducing by more than held
// means the validator let an oversell through, which is an engine bug.
func (p *Position) reduce(price, qty, fee float64) float64 {
	if qty > p.Quantity+qtyEps {
		panic(fmt.Sprintf("sim: invariant violation: reducing %s/%s by %v with only %v held",
			p.MarketID, p.Side, qty, p.Quantity))
	}
	pl := (price-p.AvgPrice)*qty - fee
	p.Quantity -= qty
	if p.Quantity < 0 {
		p.Quantity = 0
	}
	p.RealizedPL += pl
	return pl
}

// markTo re-marks the position at the latest best price for its side.
func (p *Position) markTo(price float64) {
	p.MarkPrice = price
	p.UnrealizedPL = (price - p.AvgPrice) * p.Quantity
}

// marketValue is the mark-to-market value of the open quantity.
func (p *Position) marketValue() float64 {
	return p.Quantity * p.MarkPrice
}

// notional is the cost basis of the open quantity.
func (p *Position) notional() float64 {
	return p.Quantity * p.AvgPrice
}

func (p *Position) closed() bool {
	return p.Quantity <= qtyEps
}

func sortPositions(positions []Position) {
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].MarketID != positions[j].MarketID {
			return positions[i].MarketID < positions[j].MarketID
		}
		return positions[i].Side < positions[j].Side
	})
}

// snapshot returns a defensive copy.
func (p *Position) snapshot() Position {
	cp := *p
	cp.TradeIDs = append([]string(nil), p.TradeIDs...)
	return cp
}
