package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, order_id, market_id, side, action, quantity, price, fee, realized_pl, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.OrderID, t.MarketID, string(t.Side), string(t.Action),
		t.Quantity, t.Price, t.Fee, t.RealizedPL, t.Time,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, cash, equity, unrealized_pl, realized_pl, open_positions, notional_used)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Time, e.Cash, e.Equity, e.UnrealizedPL, e.RealizedPL, e.OpenPositions, e.NotionalUsed,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
