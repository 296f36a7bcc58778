// Package market holds the domain leaf types for binary-outcome
// (YES/NO contract) prediction markets: sides, actions, the price
// domain, and price-update events.
package market

import "time"

// Side is one of the two complementary outcomes of a binary market.
// Prices on the two sides are not required to sum to a fixed total.
type Side string

const (
	Yes Side = "yes"
	No  Side = "no"
)

// Valid reports whether s is a recognized side.
func (s Side) Valid() bool { return s == Yes || s == No }

// Action is the direction of an order.
type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
)

// Valid reports whether a is a recognized action.
func (a Action) Valid() bool { return a == Buy || a == Sell }

// Binary contract prices are quoted in cents and live in [1, 99].
const (
	MinPrice = 1.0
	MaxPrice = 99.0
)

// ClampPrice bounds p to the valid contract price domain.
func ClampPrice(p float64) float64 {
	if p < MinPrice {
		return MinPrice
	}
	if p > MaxPrice {
		return MaxPrice
	}
	return p
}

// PriceUpdate is one tick of the per-market price stream: the latest
// best-bid price for each side, in cents.
type PriceUpdate struct {
	MarketID string    `json:"market_id"`
	BestYes  float64   `json:"best_yes_price"`
	BestNo   float64   `json:"best_no_price"`
	Time     time.Time `json:"timestamp"`
}

// Best returns the best-bid price for the given side.
func (u PriceUpdate) Best(s Side) float64 {
	if s == No {
		return u.BestNo
	}
	return u.BestYes
}
