package sim

import (
	"testing"

	"github.com/rustyeddy/papertrade/market"
)

func TestPositionAddWeightedAverage(t *testing.T) {
	p := &Position{MarketID: "m1", Side: market.Yes}
	p.add(40, 10)
	p.add(50, 10)

	if !approxEqual(p.Quantity, 20, 1e-9) {
		t.Errorf("quantity = %v, want 20", p.Quantity)
	}
	if !approxEqual(p.AvgPrice, 45, 1e-9) {
		t.Errorf("avg price = %v, want 45", p.AvgPrice)
	}

	// unequal lot sizes
	p.add(60, 5)
	want := (45.0*20 + 60.0*5) / 25
	if !approxEqual(p.AvgPrice, want, 1e-9) {
		t.Errorf("avg price = %v, want %v", p.AvgPrice, want)
	}
}

func TestPositionReduceRealizes(t *testing.T) {
	p := &Position{MarketID: "m1", Side: market.Yes}
	p.add(40, 10)

	pl := p.reduce(55, 4, 0.5)
	if !approxEqual(pl, (55-40)*4-0.5, 1e-9) {
		t.Errorf("realized = %v, want 59.5", pl)
	}
	if !approxEqual(p.Quantity, 6, 1e-9) {
		t.Errorf("quantity = %v, want 6", p.Quantity)
	}
	// reductions never move the average
	if !approxEqual(p.AvgPrice, 40, 1e-9) {
		t.Errorf("avg price = %v, want 40", p.AvgPrice)
	}
	if p.closed() {
		t.Error("position with 6 remaining reported closed")
	}

	p.reduce(30, 6, 0)
	if !p.closed() {
		t.Error("fully reduced position not closed")
	}
}

func TestPositionReducePanicsOnOversell(t *testing.T) {
	p := &Position{MarketID: "m1", Side: market.Yes}
	p.add(40, 5)

	defer func() {
		if recover() == nil {
			t.Fatal("reduce beyond held quantity must panic")
		}
	}()
	p.reduce(50, 6, 0)
}

func TestPositionMark(t *testing.T) {
	p := &Position{MarketID: "m1", Side: market.No}
	p.add(60, 10)
	p.markTo(72)

	if !approxEqual(p.UnrealizedPL, 120, 1e-9) {
		t.Errorf("unrealized = %v, want 120", p.UnrealizedPL)
	}
	if !approxEqual(p.marketValue(), 720, 1e-9) {
		t.Errorf("market value = %v, want 720", p.marketValue())
	}
	if !approxEqual(p.notional(), 600, 1e-9) {
		t.Errorf("notional = %v, want 600", p.notional())
	}
}

func TestAccountDrawdown(t *testing.T) {
	a := newAccount(1000)
	a.observeEquity(1100)
	a.observeEquity(900)
	a.observeEquity(1050)

	if !approxEqual(a.PeakEquity, 1100, 1e-9) {
		t.Errorf("peak = %v, want 1100", a.PeakEquity)
	}
	if !approxEqual(a.MaxDrawdown, 200, 1e-9) {
		t.Errorf("drawdown = %v, want 200", a.MaxDrawdown)
	}
}
