package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{"trade_id", "order_id", "market_id", "side", "action", "quantity", "price", "fee", "realized_pl", "time"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"time", "cash", "equity", "unrealized_pl", "realized_pl", "open_positions", "notional_used"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{tw, ew, tf, ef}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.OrderID,
		t.MarketID,
		string(t.Side),
		string(t.Action),
		f(t.Quantity),
		f(t.Price),
		f(t.Fee),
		f(t.RealizedPL),
		t.Time.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		f(e.Cash),
		f(e.Equity),
		f(e.UnrealizedPL),
		f(e.RealizedPL),
		strconv.Itoa(e.OpenPositions),
		f(e.NotionalUsed),
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	j.equity.Flush()
	if err := j.tf.Close(); err != nil {
		j.ef.Close()
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
