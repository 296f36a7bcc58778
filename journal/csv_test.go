package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/papertrade/market"
)

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	tradesData, err := os.ReadFile(tradesPath)
	assert.NoError(t, err)
	equityData, err := os.ReadFile(equityPath)
	assert.NoError(t, err)

	tradesReader := csv.NewReader(strings.NewReader(string(tradesData)))
	tradesHeader, err := tradesReader.Read()
	assert.NoError(t, err)

	equityReader := csv.NewReader(strings.NewReader(string(equityData)))
	equityHeader, err := equityReader.Read()
	assert.NoError(t, err)

	wantTrades := []string{"trade_id", "order_id", "market_id", "side", "action", "quantity", "price", "fee", "realized_pl", "time"}
	assert.Equal(t, wantTrades, tradesHeader)

	wantEquity := []string{"time", "cash", "equity", "unrealized_pl", "realized_pl", "open_positions", "notional_used"}
	assert.Equal(t, wantEquity, equityHeader)
}

func TestCSVJournalRecordTrade(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath)
	assert.NoError(t, err)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	err = j.RecordTrade(TradeRecord{
		TradeID:    "T1",
		OrderID:    "O1",
		MarketID:   "btc-above-100k",
		Side:       market.Yes,
		Action:     market.Sell,
		Quantity:   10,
		Price:      55,
		Fee:        5.5,
		RealizedPL: 144.5,
		Time:       at,
	})
	assert.NoError(t, err)

	assert.NoError(t, j.Close())

	tradesData, err := os.ReadFile(tradesPath)
	assert.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(tradesData)))
	_, err = reader.Read() // header
	assert.NoError(t, err)
	row, err := reader.Read()
	assert.NoError(t, err)

	want := []string{
		"T1",
		"O1",
		"btc-above-100k",
		"yes",
		"sell",
		"10",
		"55",
		"5.5",
		"144.5",
		at.Format(time.RFC3339),
	}
	assert.Equal(t, want, row)
}

func TestCSVJournalRecordEquity(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(filepath.Join(dir, "trades.csv"), filepath.Join(dir, "equity.csv"))
	assert.NoError(t, err)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	err = j.RecordEquity(EquitySnapshot{
		Time:          at,
		Cash:          99600,
		Equity:        100000,
		UnrealizedPL:  0,
		RealizedPL:    0,
		OpenPositions: 1,
		NotionalUsed:  400,
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	data, err := os.ReadFile(filepath.Join(dir, "equity.csv"))
	assert.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(data)))
	_, err = reader.Read() // header
	assert.NoError(t, err)
	row, err := reader.Read()
	assert.NoError(t, err)

	want := []string{at.Format(time.RFC3339), "99600", "100000", "0", "0", "1", "400"}
	assert.Equal(t, want, row)
}
