package sim

// account is the cash & equity tracker. Peak equity is monotonically
// non-decreasing; max drawdown is non-decreasing within a session and
// resets only on an explicit engine reset.
type account struct {
	StartingCash float64 `json:"starting_cash"`
	Cash         float64 `json:"cash"`
	Equity       float64 `json:"equity"`
	PeakEquity   float64 `json:"peak_equity"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	RealizedPL   float64 `json:"realized_pl"`
	FeesPaid     float64 `json:"fees_paid"`
}

func newAccount(cash float64) account {
	return account{
		StartingCash: cash,
		Cash:         cash,
		Equity:       cash,
		PeakEquity:   cash,
	}
}

// observeEquity records a fresh equity value and rolls the peak and
// drawdown forward.
func (a *account) observeEquity(eq float64) {
	a.Equity = eq
	if eq > a.PeakEquity {
		a.PeakEquity = eq
	}
	if dd := a.PeakEquity - eq; dd > a.MaxDrawdown {
		a.MaxDrawdown = dd
	}
}
