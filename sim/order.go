package sim

import (
	"sort"
	"time"

	"github.com/rustyeddy/papertrade/market"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending         Status = "pending"
	StatusOpen            Status = "open"
	StatusPartiallyFilled Status = "partially_filled"
	StatusFilled          Status = "filled"
	StatusCancelled       Status = "cancelled"
	StatusRejected        Status = "rejected"
)

// Terminal reports whether no further fills can apply to an order in
// this state.
func (s Status) Terminal() bool {
	return s == StatusFilled || s == StatusCancelled || s == StatusRejected
}

// Kind is the order pricing mode.
type Kind string

const (
	KindMarket Kind = "market"
	KindLimit  Kind = "limit"
)

// Quantities are floats; comparisons against requested quantity use
// this tolerance.
const qtyEps = 1e-9

// OrderRequest is what a caller submits. Price is the limit price and
// is required for limit orders.
type OrderRequest struct {
	MarketID string
	Side     market.Side
	Action   market.Action
	Kind     Kind
	Quantity float64
	Price    *float64
}

// Fill is an immutable record of quantity executed at a price.
type Fill struct {
	ID       string    `json:"id"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	Fee      float64   `json:"fee"`
	Time     time.Time `json:"time"`
}

// Order is owned by the engine; callers only ever see copies.
type Order struct {
	ID             string        `json:"id"`
	MarketID       string        `json:"market_id"`
	Side           market.Side   `json:"side"`
	Action         market.Action `json:"action"`
	Kind           Kind          `json:"kind"`
	Quantity       float64       `json:"quantity"`
	LimitPrice     *float64      `json:"limit_price,omitempty"`
	FilledQuantity float64       `json:"filled_quantity"`
	AvgFillPrice   float64       `json:"avg_fill_price"`
	Status         Status        `json:"status"`
	Reason         string        `json:"reason,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Fills          []Fill        `json:"fills,omitempty"`
}

func (o *Order) remaining() float64 {
	return o.Quantity - o.FilledQuantity
}

// working reports whether the order is resting and should be
// re-checked on price updates for its market.
func (o *Order) working() bool {
	return o.Status == StatusOpen || o.Status == StatusPartiallyFilled
}

// sortOrders orders by ID, which for ULIDs is submission order.
func sortOrders(orders []Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
}

// snapshot returns a defensive copy for callers outside the engine.
func (o *Order) snapshot() Order {
	cp := *o
	if o.LimitPrice != nil {
		p := *o.LimitPrice
		cp.LimitPrice = &p
	}
	cp.Fills = append([]Fill(nil), o.Fills...)
	return cp
}
