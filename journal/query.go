package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rustyeddy/papertrade/market"
)

// GetTrade returns a single trade record by ID.
func (j *SQLiteJournal) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT trade_id, order_id, market_id, side, action, quantity, price, fee, realized_pl, time
		FROM trades
		WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesBetween returns trades whose time is within [start, end).
func (j *SQLiteJournal) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, order_id, market_id, side, action, quantity, price, fee, realized_pl, time
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquityBetween returns equity snapshots within [start, end).
func (j *SQLiteJournal) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, cash, equity, unrealized_pl, realized_pl, open_positions, notional_used
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(
			&e.Time,
			&e.Cash,
			&e.Equity,
			&e.UnrealizedPL,
			&e.RealizedPL,
			&e.OpenPositions,
			&e.NotionalUsed,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (TradeRecord, error) {
	var rec TradeRecord
	var side, action string
	err := s.Scan(
		&rec.TradeID,
		&rec.OrderID,
		&rec.MarketID,
		&side,
		&action,
		&rec.Quantity,
		&rec.Price,
		&rec.Fee,
		&rec.RealizedPL,
		&rec.Time,
	)
	if err != nil {
		return TradeRecord{}, err
	}
	rec.Side = market.Side(side)
	rec.Action = market.Action(action)
	return rec, nil
}
