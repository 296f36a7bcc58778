// Package sim is the virtual exchange simulation core: it accepts
// synthetic buy/sell orders against binary-outcome markets, simulates
// execution (latency, slippage, partial fills, random rejection),
// maintains the position ledger and cash balance, and records the
// trade and equity history the stats package derives its numbers from.
//
// The engine is single-account and cooperative: every mutation happens
// behind one mutex, in response to either a price update or an order
// request, processed to completion before the next event. A fill and
// its position/equity effects are therefore observed atomically.
package sim

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/internal/id"
	"github.com/rustyeddy/papertrade/internal/telemetry"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/stats"
)

type Engine struct {
	mu  sync.Mutex
	cfg config.Config

	session string
	seed    int64
	now     time.Time
	rng     *rand.Rand
	ids     *id.Generator

	delay         time.Duration
	snapInterval  time.Duration
	snapRetention time.Duration

	prices    *market.PriceStore
	orders    map[string]*Order
	positions map[positionKey]*Position
	trades    []journal.TradeRecord
	snapshots []journal.EquitySnapshot

	acct account

	tasks   taskQueue
	taskSeq int64

	journal journal.Journal
	log     *zap.Logger
	tel     *telemetry.Metrics
}

// NewEngine builds an engine from cfg. j may be nil to skip
// journaling. The first equity snapshot is recorded immediately so the
// metrics projection always has at least one data point.
func NewEngine(cfg *config.Config, j journal.Journal) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	delay, _ := cfg.Execution.ParseDelay()
	snapInterval, _ := cfg.Snapshots.ParseInterval()
	snapRetention, _ := cfg.Snapshots.ParseRetention()

	seed := cfg.Execution.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		cfg:           *cfg,
		session:       uuid.NewString(),
		seed:          seed,
		now:           time.Now().UTC(),
		rng:           rand.New(rand.NewSource(seed)),
		delay:         delay,
		snapInterval:  snapInterval,
		snapRetention: snapRetention,
		prices:        market.NewPriceStore(),
		orders:        make(map[string]*Order),
		positions:     make(map[positionKey]*Position),
		acct:          newAccount(cfg.Account.StartingCash),
		journal:       j,
		log:           zap.NewNop(),
	}
	e.ids = e.newIDGenerator(seed)

	e.mu.Lock()
	e.snapshotLocked()
	e.scheduleSnapshotLocked()
	e.mu.Unlock()

	return e, nil
}

// newIDGenerator ties order/trade IDs to the engine's seed and logical
// clock, so seeded runs mint reproducible IDs.
func (e *Engine) newIDGenerator(seed int64) *id.Generator {
	return id.NewGenerator(rand.New(rand.NewSource(seed)), func() time.Time { return e.now })
}

// SetLogger replaces the engine's logger (default: no-op).
func (e *Engine) SetLogger(log *zap.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if log == nil {
		log = zap.NewNop()
	}
	e.log = log
}

// SetTelemetry attaches Prometheus instruments (default: disabled).
func (e *Engine) SetTelemetry(tel *telemetry.Metrics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tel = tel
}

// SubmitOrder validates the request and, if accepted, schedules it for
// resolution after the configured execution delay. The returned Order
// is a copy; track it by ID afterwards.
func (e *Engine) SubmitOrder(req OrderRequest) (Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.validateLocked(req); err != nil {
		e.log.Debug("order refused",
			zap.String("market", req.MarketID),
			zap.String("reason", err.Reason))
		return Order{}, err
	}

	o := &Order{
		ID:        e.ids.New(),
		MarketID:  req.MarketID,
		Side:      req.Side,
		Action:    req.Action,
		Kind:      req.Kind,
		Quantity:  req.Quantity,
		Status:    StatusPending,
		CreatedAt: e.now,
		UpdatedAt: e.now,
	}
	if req.Price != nil {
		p := *req.Price
		o.LimitPrice = &p
	}
	e.orders[o.ID] = o

	if e.tel != nil {
		e.tel.OrdersSubmitted.Inc()
	}
	e.log.Debug("order submitted",
		zap.String("order", o.ID),
		zap.String("market", o.MarketID),
		zap.String("side", string(o.Side)),
		zap.String("action", string(o.Action)),
		zap.Float64("quantity", o.Quantity))

	e.scheduleLocked(e.delay, func() { e.resolveLocked(o, true) })
	// Zero-delay configs resolve inline.
	e.drainLocked()

	return o.snapshot(), nil
}

// CancelOrder preempts a non-terminal order. It reports whether the
// order was cancelled; an execution callback already scheduled will
// see the terminal status and no-op.
func (e *Engine) CancelOrder(orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.orders[orderID]
	if !ok || o.Status.Terminal() {
		return false
	}

	o.Status = StatusCancelled
	o.UpdatedAt = e.now
	if e.tel != nil {
		e.tel.OrdersCancelled.Inc()
	}
	e.log.Debug("order cancelled", zap.String("order", orderID))
	return true
}

// UpdatePrice ingests one tick of the market-data stream: it refreshes
// the price cache, advances the clock, fires due scheduled work,
// re-checks resting orders for the market, re-marks open positions,
// and rolls equity/drawdown forward.
func (e *Engine) UpdatePrice(u market.PriceUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.prices.Set(u)
	if u.Time.After(e.now) {
		e.now = u.Time
	}

	e.drainLocked()
	e.recheckOrdersLocked(u.MarketID)
	e.markPositionsLocked(u)
	e.recomputeLocked()
	return nil
}

// recheckOrdersLocked resolves resting (open / partially filled)
// orders for one market in submission order. ULIDs sort by creation
// time, so sorting the IDs is enough to keep replay deterministic.
func (e *Engine) recheckOrdersLocked(marketID string) {
	var ids []string
	for oid, o := range e.orders {
		if o.MarketID == marketID && o.working() {
			ids = append(ids, oid)
		}
	}
	sort.Strings(ids)
	for _, oid := range ids {
		e.resolveLocked(e.orders[oid], false)
	}
}

func (e *Engine) markPositionsLocked(u market.PriceUpdate) {
	for _, side := range []market.Side{market.Yes, market.No} {
		if pos, ok := e.positions[positionKey{MarketID: u.MarketID, Side: side}]; ok {
			pos.markTo(u.Best(side))
		}
	}
}

// recomputeLocked derives equity = cash + mark-to-market value of all
// open positions, and feeds it through the peak/drawdown tracker.
func (e *Engine) recomputeLocked() {
	eq := e.acct.Cash
	for _, pos := range e.positions {
		eq += pos.marketValue()
	}
	e.acct.observeEquity(eq)

	if e.tel != nil {
		e.tel.Cash.Set(e.acct.Cash)
		e.tel.Equity.Set(e.acct.Equity)
		e.tel.OpenPositions.Set(float64(len(e.positions)))
	}
}

// Cash returns the current cash balance.
func (e *Engine) Cash() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct.Cash
}

// Equity returns cash plus the mark-to-market value of open positions.
func (e *Engine) Equity() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct.Equity
}

// PeakEquity returns the running equity high-water mark.
func (e *Engine) PeakEquity() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct.PeakEquity
}

// MaxDrawdown returns the largest peak-to-trough equity decline seen.
func (e *Engine) MaxDrawdown() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct.MaxDrawdown
}

// RealizedPL returns cumulative realized profit-and-loss, net of fees
// on closing fills.
func (e *Engine) RealizedPL() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct.RealizedPL
}

// FeesPaid returns all fees charged so far, both sides.
func (e *Engine) FeesPaid() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct.FeesPaid
}

// Session returns the engine's run identifier.
func (e *Engine) Session() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Price returns the latest cached update for a market.
func (e *Engine) Price(marketID string) (market.PriceUpdate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prices.Get(marketID)
}

// Order returns a copy of one order by ID.
func (e *Engine) Order(orderID string) (Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.orders[orderID]
	if !ok {
		return Order{}, false
	}
	return o.snapshot(), true
}

// Orders returns copies of all orders, optionally filtered by status,
// in submission order.
func (e *Engine) Orders(statuses ...Status) []Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	match := func(s Status) bool {
		if len(statuses) == 0 {
			return true
		}
		for _, want := range statuses {
			if s == want {
				return true
			}
		}
		return false
	}

	var out []Order
	for _, o := range e.orders {
		if match(o.Status) {
			out = append(out, o.snapshot())
		}
	}
	sortOrders(out)
	return out
}

// Positions returns copies of all open positions.
func (e *Engine) Positions() []Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.positionsSortedLocked()
}

// Position returns the open position for one (market, side) pair.
func (e *Engine) Position(marketID string, side market.Side) (Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pos, ok := e.positions[positionKey{MarketID: marketID, Side: side}]
	if !ok {
		return Position{}, false
	}
	return pos.snapshot(), true
}

// Trades returns the trade history, most recent last. A positive limit
// restricts the result to the most recent N records.
func (e *Engine) Trades(limit int) []journal.TradeRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := 0
	if limit > 0 && len(e.trades) > limit {
		start = len(e.trades) - limit
	}
	return append([]journal.TradeRecord(nil), e.trades[start:]...)
}

// Snapshots returns the retained equity snapshot history.
func (e *Engine) Snapshots() []journal.EquitySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]journal.EquitySnapshot(nil), e.snapshots...)
}

// Stats computes the performance metrics projection from the
// accumulated trades and snapshots.
func (e *Engine) Stats() stats.Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return stats.Compute(e.trades, e.snapshots, e.cfg.Stats.Annualization)
}

// Reset returns the engine to its starting state: starting cash, no
// orders, positions, trades or snapshots beyond a fresh initial one.
// The price cache survives (market data is not account state) and the
// RNG is re-seeded, so resetting twice is the same as resetting once.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rng = rand.New(rand.NewSource(e.seed))
	e.ids = e.newIDGenerator(e.seed)
	e.orders = make(map[string]*Order)
	e.positions = make(map[positionKey]*Position)
	e.trades = nil
	e.snapshots = nil
	e.acct = newAccount(e.cfg.Account.StartingCash)
	e.tasks = nil
	e.taskSeq = 0

	e.snapshotLocked()
	e.scheduleSnapshotLocked()
	e.log.Info("engine reset", zap.String("session", e.session))
}
