package sim

import (
	"go.uber.org/zap"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
)

// Partial fills execute a fraction of the remaining quantity drawn
// uniformly from this range.
const (
	partialFillMin = 0.3
	partialFillMax = 1.0
)

// resolveLocked advances an order by one execution step. It runs once
// after the execution delay (first=true) and again on every later
// price update for the order's market while the order rests, until the
// order is fully filled or cancelled.
func (e *Engine) resolveLocked(o *Order, first bool) {
	if o.Status.Terminal() {
		// Cancelled (or rejected) while the callback was queued.
		return
	}

	// The independent rejection trial applies to newly submitted
	// orders only, never to re-checks of a resting order.
	if first && e.rng.Float64() < e.cfg.Execution.RejectProb {
		e.rejectLocked(o, reasonSimulated)
		return
	}

	u, err := e.prices.Get(o.MarketID)
	if err != nil {
		e.rejectLocked(o, reasonNoMarketData)
		return
	}
	best := u.Best(o.Side)

	if o.Kind == KindLimit && !crosses(o.Action, best, *o.LimitPrice) {
		// Not crossable yet; rest and await the next tick.
		if o.Status == StatusPending {
			o.Status = StatusOpen
			o.UpdatedAt = e.now
		}
		return
	}

	price := e.executionPrice(o.Action, best)
	qty := e.fillQuantity(o.remaining())
	fee := price * qty * e.cfg.Execution.FeeRate

	e.applyFillLocked(o, price, qty, fee)
}

// crosses reports whether the best price makes a limit order
// executable: marketPrice <= limit for a buy, >= limit for a sell.
func crosses(a market.Action, best, limit float64) bool {
	if a == market.Buy {
		return best <= limit
	}
	return best >= limit
}

// executionPrice applies slippage adversely to the taker and clamps to
// the contract price domain.
func (e *Engine) executionPrice(a market.Action, best float64) float64 {
	price := best
	if e.cfg.Execution.SlippageEnabled && e.cfg.Execution.MaxSlippage > 0 {
		slip := e.rng.Float64() * e.cfg.Execution.MaxSlippage
		if a == market.Buy {
			price += slip
		} else {
			price -= slip
		}
	}
	return market.ClampPrice(price)
}

// fillQuantity draws the quantity for one execution step: everything
// remaining, or a partial fraction of it.
func (e *Engine) fillQuantity(remaining float64) float64 {
	if e.cfg.Execution.PartialFillEnabled && e.rng.Float64() < e.cfg.Execution.PartialFillProb {
		frac := partialFillMin + e.rng.Float64()*(partialFillMax-partialFillMin)
		return remaining * frac
	}
	return remaining
}

// applyFillLocked writes exactly one fill and one trade record, and
// updates the position ledger and cash balance atomically with them.
func (e *Engine) applyFillLocked(o *Order, price, qty, fee float64) {
	fill := Fill{
		ID:       e.ids.New(),
		Quantity: qty,
		Price:    price,
		Fee:      fee,
		Time:     e.now,
	}
	o.Fills = append(o.Fills, fill)
	o.AvgFillPrice = (o.AvgFillPrice*o.FilledQuantity + price*qty) / (o.FilledQuantity + qty)
	o.FilledQuantity += qty
	if o.FilledQuantity >= o.Quantity-qtyEps {
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartiallyFilled
	}
	o.UpdatedAt = e.now

	key := positionKey{MarketID: o.MarketID, Side: o.Side}
	var realized float64

	switch o.Action {
	case market.Buy:
		pos := e.positions[key]
		if pos == nil {
			pos = &Position{
				MarketID:  o.MarketID,
				Side:      o.Side,
				MarkPrice: price,
				OpenedAt:  e.now,
			}
			e.positions[key] = pos
		}
		pos.add(price, qty)
		pos.markTo(pos.MarkPrice)
		e.acct.Cash -= price*qty + fee

	case market.Sell:
		pos := e.positions[key]
		if pos == nil {
			panic("sim: invariant violation: sell fill without a position")
		}
		realized = pos.reduce(price, qty, fee)
		e.acct.Cash += price*qty - fee
		e.acct.RealizedPL += realized
		if pos.closed() {
			delete(e.positions, key)
		} else {
			pos.markTo(pos.MarkPrice)
		}
	}
	e.acct.FeesPaid += fee

	rec := journal.TradeRecord{
		TradeID:    e.ids.New(),
		OrderID:    o.ID,
		MarketID:   o.MarketID,
		Side:       o.Side,
		Action:     o.Action,
		Quantity:   qty,
		Price:      price,
		Fee:        fee,
		RealizedPL: realized,
		Time:       e.now,
	}
	e.trades = append(e.trades, rec)
	if pos := e.positions[key]; pos != nil {
		pos.TradeIDs = append(pos.TradeIDs, rec.TradeID)
	}
	if e.journal != nil {
		if err := e.journal.RecordTrade(rec); err != nil {
			e.log.Warn("journal trade failed", zap.Error(err))
		}
	}

	if e.tel != nil {
		e.tel.Fills.Inc()
		if o.Action == market.Sell {
			e.tel.TradesClosed.Inc()
		}
	}
	e.log.Debug("fill",
		zap.String("order", o.ID),
		zap.String("market", o.MarketID),
		zap.Float64("quantity", qty),
		zap.Float64("price", price),
		zap.Float64("fee", fee),
		zap.Float64("realized_pl", realized))

	e.recomputeLocked()
}

// rejectLocked marks an order terminally rejected. Rejection does not
// retry.
func (e *Engine) rejectLocked(o *Order, reason string) {
	o.Status = StatusRejected
	o.Reason = reason
	o.UpdatedAt = e.now
	if e.tel != nil {
		e.tel.OrdersRejected.Inc()
	}
	e.log.Debug("order rejected",
		zap.String("order", o.ID),
		zap.String("reason", reason))
}
