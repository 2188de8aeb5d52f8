package store

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// SQLiteSink writes rows into a local sqlite file.
type SQLiteSink struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite").With("path", path)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create sqlite schema").With("path", path)
	}
	return &SQLiteSink{db: db}, nil
}

// DB exposes the handle for inspection.
func (s *SQLiteSink) DB() *sql.DB {
	return s.db
}

func (s *SQLiteSink) exec(table, query string, args ...any) {
	if _, err := s.db.Exec(query, args...); err != nil {
		logs.Errorf("insert into %s, err: %+v", table, err)
	}
}

func (s *SQLiteSink) WriteLog(r LogRow) {
	s.exec(TableLogs, `
		INSERT INTO rookietrader_logs
		(trading_day, account_name, symbol, trade_symbol, exchange, product_class, order_ref, event_type, logs, log_level, action_time, insert_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.TradingDay, r.AccountName, r.Symbol, r.TradeSymbol, r.Exchange, r.ProductClass,
		r.OrderRef, r.EventType, r.Logs, r.LogLevel, r.ActionTime, r.InsertTime,
	)
}

func (s *SQLiteSink) WriteOrder(r OrderRow) {
	s.exec(TableOrders, `
		INSERT INTO rookietrader_orders
		(trading_day, account_name, order_ref, symbol, trade_symbol, exchange, product_class, limit_price, volume, direction, "offset", req_time, traded_volume, remain_volume, canceled_volume, insert_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.TradingDay, r.AccountName, r.OrderRef, r.Symbol, r.TradeSymbol, r.Exchange, r.ProductClass,
		r.LimitPrice, r.Volume, r.Direction, r.Offset, r.ReqTime,
		r.TradedVolume, r.RemainVolume, r.CanceledVolume, r.InsertTime,
	)
}

func (s *SQLiteSink) WriteTrade(r TradeRow) {
	s.exec(TableTrades, `
		INSERT INTO rookietrader_trades
		(trading_day, account_name, order_ref, symbol, trade_symbol, exchange, product_class, limit_price, volume, direction, "offset", trade_id, trade_price, trade_volume, trade_time, fee, insert_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.TradingDay, r.AccountName, r.OrderRef, r.Symbol, r.TradeSymbol, r.Exchange, r.ProductClass,
		r.LimitPrice, r.Volume, r.Direction, r.Offset,
		r.TradeID, r.TradePrice, r.TradeVolume, r.TradeTime, r.Fee, r.InsertTime,
	)
}

func (s *SQLiteSink) WritePosition(r PositionRow) {
	s.exec(TablePositions, `
		INSERT INTO rookietrader_positions
		(trading_day, account_name, symbol, trade_symbol, exchange, product_class, long_position, short_position, insert_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.TradingDay, r.AccountName, r.Symbol, r.TradeSymbol, r.Exchange, r.ProductClass,
		r.LongPosition, r.ShortPosition, r.InsertTime,
	)
}

func (s *SQLiteSink) WriteRiskIndicators(r RiskRow) {
	s.exec(TableRiskIndicators, `
		INSERT INTO rookietrader_risk_indicators
		(trading_day, account_name, daily_order_num, daily_cancel_num, daily_repeat_order_num, insert_time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.TradingDay, r.AccountName, r.DailyOrderNum, r.DailyCancelNum, r.DailyRepeatOrderNum, r.InsertTime,
	)
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
