package store

import "time"

// Row is one record of a journal table.
type Row interface {
	TableName() string
}

const (
	TableLogs           = "rookietrader_logs"
	TableOrders         = "rookietrader_orders"
	TableTrades         = "rookietrader_trades"
	TablePositions      = "rookietrader_positions"
	TableRiskIndicators = "rookietrader_risk_indicators"
)

// LogRow records an engine event. Symbol fields and OrderRef are optional.
type LogRow struct {
	TradingDay   uint32    `gorm:"column:trading_day;not null;index:rookietrader_logs_idx"`
	AccountName  string    `gorm:"column:account_name;not null;index:rookietrader_logs_idx"`
	Symbol       *string   `gorm:"column:symbol;index:rookietrader_logs_idx"`
	TradeSymbol  *string   `gorm:"column:trade_symbol"`
	Exchange     *string   `gorm:"column:exchange"`
	ProductClass *string   `gorm:"column:product_class"`
	OrderRef     *uint32   `gorm:"column:order_ref"`
	EventType    string    `gorm:"column:event_type;not null"`
	Logs         string    `gorm:"column:logs;not null"`
	LogLevel     string    `gorm:"column:log_level;not null"`
	ActionTime   time.Time `gorm:"column:action_time;not null"`
	InsertTime   time.Time `gorm:"column:insert_time;not null"`
}

func (LogRow) TableName() string { return TableLogs }

// OrderRow is a snapshot of an order table row.
type OrderRow struct {
	TradingDay     uint32    `gorm:"column:trading_day;not null;index:rookietrader_orders_idx"`
	AccountName    string    `gorm:"column:account_name;not null;index:rookietrader_orders_idx"`
	OrderRef       uint32    `gorm:"column:order_ref"`
	Symbol         string    `gorm:"column:symbol;not null;index:rookietrader_orders_idx"`
	TradeSymbol    string    `gorm:"column:trade_symbol;not null"`
	Exchange       string    `gorm:"column:exchange;not null"`
	ProductClass   string    `gorm:"column:product_class;not null"`
	LimitPrice     float64   `gorm:"column:limit_price;not null"`
	Volume         uint32    `gorm:"column:volume;not null"`
	Direction      string    `gorm:"column:direction;not null"`
	Offset         string    `gorm:"column:offset;not null"`
	ReqTime        time.Time `gorm:"column:req_time;not null"`
	TradedVolume   uint32    `gorm:"column:traded_volume;not null"`
	RemainVolume   uint32    `gorm:"column:remain_volume;not null"`
	CanceledVolume uint32    `gorm:"column:canceled_volume;not null"`
	InsertTime     time.Time `gorm:"column:insert_time;not null"`
}

func (OrderRow) TableName() string { return TableOrders }

// TradeRow is one fill joined with its order request.
type TradeRow struct {
	TradingDay   uint32    `gorm:"column:trading_day;not null;index:rookietrader_trades_idx"`
	AccountName  string    `gorm:"column:account_name;not null;index:rookietrader_trades_idx"`
	OrderRef     uint32    `gorm:"column:order_ref"`
	Symbol       string    `gorm:"column:symbol;not null;index:rookietrader_trades_idx"`
	TradeSymbol  string    `gorm:"column:trade_symbol;not null"`
	Exchange     string    `gorm:"column:exchange;not null"`
	ProductClass string    `gorm:"column:product_class;not null"`
	LimitPrice   float64   `gorm:"column:limit_price;not null"`
	Volume       uint32    `gorm:"column:volume;not null"`
	Direction    string    `gorm:"column:direction;not null"`
	Offset       string    `gorm:"column:offset;not null"`
	TradeID      string    `gorm:"column:trade_id;not null"`
	TradePrice   float64   `gorm:"column:trade_price;not null"`
	TradeVolume  uint32    `gorm:"column:trade_volume;not null"`
	TradeTime    time.Time `gorm:"column:trade_time;not null"`
	Fee          float64   `gorm:"column:fee;not null"`
	InsertTime   time.Time `gorm:"column:insert_time;not null"`
}

func (TradeRow) TableName() string { return TableTrades }

type PositionRow struct {
	TradingDay    uint32    `gorm:"column:trading_day;not null;index:rookietrader_positions_idx"`
	AccountName   string    `gorm:"column:account_name;not null;index:rookietrader_positions_idx"`
	Symbol        string    `gorm:"column:symbol;not null"`
	TradeSymbol   string    `gorm:"column:trade_symbol;not null"`
	Exchange      string    `gorm:"column:exchange;not null"`
	ProductClass  string    `gorm:"column:product_class;not null"`
	LongPosition  uint32    `gorm:"column:long_position;not null"`
	ShortPosition uint32    `gorm:"column:short_position;not null"`
	InsertTime    time.Time `gorm:"column:insert_time;not null"`
}

func (PositionRow) TableName() string { return TablePositions }

type RiskRow struct {
	TradingDay          uint32    `gorm:"column:trading_day;not null;index:rookietrader_risk_indicators_idx"`
	AccountName         string    `gorm:"column:account_name;not null;index:rookietrader_risk_indicators_idx"`
	DailyOrderNum       int       `gorm:"column:daily_order_num;not null"`
	DailyCancelNum      int       `gorm:"column:daily_cancel_num;not null"`
	DailyRepeatOrderNum int       `gorm:"column:daily_repeat_order_num;not null"`
	InsertTime          time.Time `gorm:"column:insert_time;not null"`
}

func (RiskRow) TableName() string { return TableRiskIndicators }

// Models lists every table for migrations.
func Models() []any {
	return []any{&LogRow{}, &OrderRow{}, &TradeRow{}, &PositionRow{}, &RiskRow{}}
}
