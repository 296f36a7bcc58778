package sim

import "github.com/rustyeddy/papertrade/market"

// validateLocked checks a request against the current price cache,
// cash balance and held positions. It is read-only: nothing in the
// ledger moves until the execution simulator produces a fill.
func (e *Engine) validateLocked(req OrderRequest) *ValidationError {
	if !req.Side.Valid() {
		return invalid("unknown side %q", req.Side)
	}
	if !req.Action.Valid() {
		return invalid("unknown action %q", req.Action)
	}
	if req.Kind != KindMarket && req.Kind != KindLimit {
		return invalid("unknown order kind %q", req.Kind)
	}
	if req.Quantity <= 0 {
		return invalid("quantity must be positive, got %v", req.Quantity)
	}
	if req.Kind == KindLimit && req.Price == nil {
		return invalid("limit order requires a price")
	}
	if req.Price != nil && (*req.Price < market.MinPrice || *req.Price > market.MaxPrice) {
		return invalid("limit price %v outside [%v, %v]", *req.Price, market.MinPrice, market.MaxPrice)
	}

	u, err := e.prices.Get(req.MarketID)
	if err != nil {
		return invalid("no price for market %q", req.MarketID)
	}

	switch req.Action {
	case market.Buy:
		price := u.Best(req.Side)
		if req.Price != nil {
			price = *req.Price
		}
		cost := price * req.Quantity * (1 + e.cfg.Execution.FeeRate)
		if cost > e.acct.Cash {
			return invalid("insufficient balance: need %.2f, have %.2f", cost, e.acct.Cash)
		}
	case market.Sell:
		pos, ok := e.positions[positionKey{MarketID: req.MarketID, Side: req.Side}]
		if !ok {
			return invalid("no %s position in market %q to sell", req.Side, req.MarketID)
		}
		if pos.Quantity+qtyEps < req.Quantity {
			return invalid("insufficient position: hold %v, selling %v", pos.Quantity, req.Quantity)
		}
	}

	return nil
}
