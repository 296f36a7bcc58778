// Package telemetry holds the Prometheus instruments the engine
// updates as orders and fills flow through it. The engine treats a nil
// *Metrics as "telemetry disabled", so callers only pay for what they
// register.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	OrdersSubmitted prometheus.Counter
	OrdersRejected  prometheus.Counter
	OrdersCancelled prometheus.Counter
	Fills           prometheus.Counter
	TradesClosed    prometheus.Counter

	Cash          prometheus.Gauge
	Equity        prometheus.Gauge
	OpenPositions prometheus.Gauge
}

// New builds the instrument set and registers it with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_orders_submitted_total",
			Help: "Orders accepted by the validator.",
		}),
		OrdersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_orders_rejected_total",
			Help: "Orders terminally rejected by the execution simulator.",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_orders_cancelled_total",
			Help: "Orders cancelled before completion.",
		}),
		Fills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_fills_total",
			Help: "Individual fills applied to the ledger.",
		}),
		TradesClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "papertrade_trades_closed_total",
			Help: "Closing (sell) trades recorded.",
		}),
		Cash: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrade_cash",
			Help: "Current cash balance.",
		}),
		Equity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrade_equity",
			Help: "Current total equity (cash + mark-to-market).",
		}),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "papertrade_open_positions",
			Help: "Number of open positions.",
		}),
	}

	reg.MustRegister(
		m.OrdersSubmitted,
		m.OrdersRejected,
		m.OrdersCancelled,
		m.Fills,
		m.TradesClosed,
		m.Cash,
		m.Equity,
		m.OpenPositions,
	)
	return m
}
