package store

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS rookietrader_logs (
	trading_day INTEGER NOT NULL,
	account_name TEXT NOT NULL,
	symbol TEXT,
	trade_symbol TEXT,
	exchange TEXT,
	product_class TEXT,
	order_ref INTEGER,
	event_type TEXT NOT NULL,
	logs TEXT NOT NULL,
	log_level TEXT NOT NULL,
	action_time DATETIME NOT NULL,
	insert_time DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS rookietrader_logs_idx ON rookietrader_logs(trading_day, account_name, symbol);

CREATE TABLE IF NOT EXISTS rookietrader_orders (
	trading_day INTEGER NOT NULL,
	account_name TEXT NOT NULL,
	order_ref INTEGER,
	symbol TEXT NOT NULL,
	trade_symbol TEXT NOT NULL,
	exchange TEXT NOT NULL,
	product_class TEXT NOT NULL,
	limit_price REAL NOT NULL,
	volume INTEGER NOT NULL,
	direction TEXT NOT NULL,
	"offset" TEXT NOT NULL,
	req_time DATETIME NOT NULL,
	traded_volume INTEGER NOT NULL,
	remain_volume INTEGER NOT NULL,
	canceled_volume INTEGER NOT NULL,
	insert_time DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS rookietrader_orders_idx ON rookietrader_orders(trading_day, account_name, symbol);

CREATE TABLE IF NOT EXISTS rookietrader_trades (
	trading_day INTEGER NOT NULL,
	account_name TEXT NOT NULL,
	order_ref INTEGER,
	symbol TEXT NOT NULL,
	trade_symbol TEXT NOT NULL,
	exchange TEXT NOT NULL,
	product_class TEXT NOT NULL,
	limit_price REAL NOT NULL,
	volume INTEGER NOT NULL,
	direction TEXT NOT NULL,
	"offset" TEXT NOT NULL,
	trade_id TEXT NOT NULL,
	trade_price REAL NOT NULL,
	trade_volume INTEGER NOT NULL,
	trade_time DATETIME NOT NULL,
	fee REAL NOT NULL,
	insert_time DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS rookietrader_trades_idx ON rookietrader_trades(trading_day, account_name, symbol);

CREATE TABLE IF NOT EXISTS rookietrader_positions (
	trading_day INTEGER NOT NULL,
	account_name TEXT NOT NULL,
	symbol TEXT NOT NULL,
	trade_symbol TEXT NOT NULL,
	exchange TEXT NOT NULL,
	product_class TEXT NOT NULL,
	long_position INTEGER NOT NULL,
	short_position INTEGER NOT NULL,
	insert_time DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS rookietrader_positions_idx ON rookietrader_positions(trading_day, account_name);

CREATE TABLE IF NOT EXISTS rookietrader_risk_indicators (
	trading_day INTEGER NOT NULL,
	account_name TEXT NOT NULL,
	daily_order_num INTEGER NOT NULL,
	daily_cancel_num INTEGER NOT NULL,
	daily_repeat_order_num INTEGER NOT NULL,
	insert_time DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS rookietrader_risk_indicators_idx ON rookietrader_risk_indicators(trading_day, account_name);
`
