package sim

import (
	"fmt"
	"math/rand"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// State is the full-state serialization: the only durability mechanism
// the engine supports. Import replaces engine state wholesale.
type State struct {
	Session   string                   `json:"session"`
	Now       time.Time                `json:"now"`
	Config    config.Config            `json:"config"`
	Account   account                  `json:"account"`
	Prices    []market.PriceUpdate     `json:"prices,omitempty"`
	Positions []Position               `json:"positions,omitempty"`
	Orders    []Order                  `json:"orders,omitempty"`
	Trades    []journal.TradeRecord    `json:"trades,omitempty"`
	Snapshots []journal.EquitySnapshot `json:"snapshots,omitempty"`
}

// Export serializes the full engine state.
func (e *Engine) Export() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := State{
		Session: e.session,
		Now:     e.now,
		Config:  e.cfg,
		Account: e.acct,
	}

	for _, mid := range e.prices.Markets() {
		u, err := e.prices.Get(mid)
		if err != nil {
			return nil, err
		}
		st.Prices = append(st.Prices, u)
	}
	for _, pos := range e.positionsSortedLocked() {
		st.Positions = append(st.Positions, pos)
	}
	for _, o := range e.ordersSortedLocked() {
		st.Orders = append(st.Orders, o)
	}
	st.Trades = append([]journal.TradeRecord(nil), e.trades...)
	st.Snapshots = append([]journal.EquitySnapshot(nil), e.snapshots...)

	return jsonCodec.MarshalIndent(st, "", "  ")
}

// Import replaces engine state wholesale from a previous Export.
// Pending orders whose execution callbacks were lost with the old
// scheduler are re-armed for resolution after the execution delay.
func (e *Engine) Import(data []byte) error {
	var st State
	if err := jsonCodec.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("import state: %w", err)
	}
	if err := st.Config.Validate(); err != nil {
		return fmt.Errorf("import state: %w", err)
	}

	delay, _ := st.Config.Execution.ParseDelay()
	snapInterval, _ := st.Config.Snapshots.ParseInterval()
	snapRetention, _ := st.Config.Snapshots.ParseRetention()

	seed := st.Config.Execution.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg = st.Config
	e.seed = seed
	e.rng = rand.New(rand.NewSource(seed))
	e.ids = e.newIDGenerator(seed)
	e.delay = delay
	e.snapInterval = snapInterval
	e.snapRetention = snapRetention
	if st.Session != "" {
		e.session = st.Session
	}
	if !st.Now.IsZero() {
		e.now = st.Now
	}
	e.acct = st.Account

	e.prices.Reset()
	for _, u := range st.Prices {
		e.prices.Set(u)
	}

	e.positions = make(map[positionKey]*Position, len(st.Positions))
	for i := range st.Positions {
		pos := st.Positions[i]
		e.positions[pos.key()] = &pos
	}

	e.orders = make(map[string]*Order, len(st.Orders))
	e.tasks = nil
	e.taskSeq = 0
	for i := range st.Orders {
		o := st.Orders[i]
		e.orders[o.ID] = &o
		if o.Status == StatusPending {
			ord := e.orders[o.ID]
			e.scheduleLocked(e.delay, func() { e.resolveLocked(ord, true) })
		}
	}

	e.trades = append([]journal.TradeRecord(nil), st.Trades...)
	e.snapshots = append([]journal.EquitySnapshot(nil), st.Snapshots...)

	e.scheduleSnapshotLocked()
	e.recomputeLocked()
	return nil
}

func (e *Engine) ordersSortedLocked() []Order {
	out := make([]Order, 0, len(e.orders))
	for _, o := range e.orders {
		out = append(out, o.snapshot())
	}
	sortOrders(out)
	return out
}

func (e *Engine) positionsSortedLocked() []Position {
	out := make([]Position, 0, len(e.positions))
	for _, pos := range e.positions {
		out = append(out, pos.snapshot())
	}
	sortPositions(out)
	return out
}
