package sim

import (
	"testing"
	"time"

	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/market"
)

func TestExportImportRoundtrip(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	tick(t, e, "m1", 40, 60)
	tick(t, e, "m2", 25, 75)
	mustSubmit(t, e, marketBuy("m1", market.Yes, 10))

	limit := 20.0
	resting := mustSubmit(t, e, OrderRequest{
		MarketID: "m2", Side: market.Yes, Action: market.Buy,
		Kind: KindLimit, Quantity: 5, Price: &limit,
	})

	data, err := e.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	e2, _ := newTestEngine(t, nil)
	if err := e2.Import(data); err != nil {
		t.Fatalf("import: %v", err)
	}

	if e2.Session() != e.Session() {
		t.Error("session not restored")
	}
	if !approxEqual(e2.Cash(), e.Cash(), 1e-9) {
		t.Errorf("cash = %v, want %v", e2.Cash(), e.Cash())
	}
	if !approxEqual(e2.Equity(), e.Equity(), 1e-9) {
		t.Errorf("equity = %v, want %v", e2.Equity(), e.Equity())
	}

	pos, ok := e2.Position("m1", market.Yes)
	if !ok {
		t.Fatal("position not restored")
	}
	if !approxEqual(pos.Quantity, 10, 1e-9) || !approxEqual(pos.AvgPrice, 40, 1e-9) {
		t.Errorf("position = %v @ %v, want 10 @ 40", pos.Quantity, pos.AvgPrice)
	}

	got, ok := e2.Order(resting.ID)
	if !ok {
		t.Fatal("resting order not restored")
	}
	if got.Status != StatusOpen {
		t.Errorf("resting order status = %s, want %s", got.Status, StatusOpen)
	}
	if len(e2.Trades(0)) != len(e.Trades(0)) {
		t.Errorf("trades = %d, want %d", len(e2.Trades(0)), len(e.Trades(0)))
	}
	if _, err := e2.Price("m2"); err != nil {
		t.Errorf("price cache not restored: %v", err)
	}

	// the restored engine keeps trading: the resting limit still
	// fills when its market crosses
	tick(t, e2, "m2", 18, 82)
	got, _ = e2.Order(resting.ID)
	if got.Status != StatusFilled {
		t.Errorf("restored limit order status = %s, want %s", got.Status, StatusFilled)
	}
}

func TestImportReArmsPendingOrders(t *testing.T) {
	e, _ := newTestEngine(t, func(cfg *config.Config) {
		cfg.Execution.Delay = "500ms"
	})
	tick(t, e, "m1", 40, 60)
	o := mustSubmit(t, e, marketBuy("m1", market.Yes, 10))

	data, err := e.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	e2, _ := newTestEngine(t, nil)
	if err := e2.Import(data); err != nil {
		t.Fatalf("import: %v", err)
	}

	got, ok := e2.Order(o.ID)
	if !ok || got.Status != StatusPending {
		t.Fatalf("pending order not restored as pending")
	}

	e2.Advance(500 * time.Millisecond)
	got, _ = e2.Order(o.ID)
	if got.Status != StatusFilled {
		t.Errorf("re-armed order status = %s, want %s", got.Status, StatusFilled)
	}
}

func TestImportRejectsInvalidState(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	if err := e.Import([]byte("{not json")); err == nil {
		t.Error("garbage input must fail")
	}
	if err := e.Import([]byte(`{"config":{"account":{"starting_cash":-1}}}`)); err == nil {
		t.Error("invalid config must fail validation")
	}
}
