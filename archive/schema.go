package archive

// Decimal columns are TEXT so values round-trip exactly.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	bucket TEXT NOT NULL,
	side TEXT NOT NULL,
	entry_time DATETIME,
	exit_time DATETIME,
	entry_price TEXT,
	exit_price TEXT,
	qty TEXT NOT NULL,
	pnl_dollars TEXT,
	pnl_percent TEXT,
	r_multiple TEXT,
	holding_minutes TEXT,
	status TEXT NOT NULL,
	notes TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	trade_id TEXT PRIMARY KEY,
	time DATETIME,
	label TEXT NOT NULL,
	pnl TEXT NOT NULL,
	equity TEXT NOT NULL,
	no_pnl INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_exit_time ON trades(exit_time);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
