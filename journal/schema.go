package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	market_id TEXT NOT NULL,
	side TEXT NOT NULL,
	action TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	fee REAL NOT NULL,
	realized_pl REAL NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);
CREATE INDEX IF NOT EXISTS idx_trades_market ON trades(market_id);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	equity REAL NOT NULL,
	unrealized_pl REAL NOT NULL,
	realized_pl REAL NOT NULL,
	open_positions INTEGER NOT NULL,
	notional_used REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
