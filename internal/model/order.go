package model

import (
	"time"

	"rookie/internal/model/enum"
)

// OrderRef is the dense, zero based index of an order in the session order table.
type OrderRef uint32

// OrderReq is an order intent.
type OrderReq struct {
	Symbol     Symbol         `json:"symbol"`
	LimitPrice float64        `json:"limit_price"`
	Volume     uint32         `json:"volume"`
	Direction  enum.Direction `json:"direction"`
	Offset     enum.Offset    `json:"offset"`
}

// Equal compares the requests field by field, the symbol by display symbol.
func (r OrderReq) Equal(other OrderReq) bool {
	return r.Symbol.Equal(other.Symbol) &&
		r.LimitPrice == other.LimitPrice &&
		r.Volume == other.Volume &&
		r.Direction == other.Direction &&
		r.Offset == other.Offset
}

// Key is a comparable form of the request usable as a map key.
func (r OrderReq) Key() OrderReqKey {
	return OrderReqKey{
		Symbol:     r.Symbol.Key(),
		LimitPrice: r.LimitPrice,
		Volume:     r.Volume,
		Direction:  r.Direction,
		Offset:     r.Offset,
	}
}

type OrderReqKey struct {
	Symbol     string
	LimitPrice float64
	Volume     uint32
	Direction  enum.Direction
	Offset     enum.Offset
}

// OrderData is a row of the order table.
type OrderData struct {
	OrderRef       OrderRef  `json:"order_ref"`
	OrderReq       OrderReq  `json:"order_req"`
	TradingDay     uint32    `json:"trading_day"`
	ReqTime        time.Time `json:"req_time"`
	TradedVolume   uint32    `json:"traded_volume"`
	RemainVolume   uint32    `json:"remain_volume"`
	CanceledVolume uint32    `json:"canceled_volume"`
}

// IsRejected reports that the volume counters no longer add up to the requested volume.
func (o OrderData) IsRejected() bool {
	return o.OrderReq.Volume != 0 &&
		o.OrderReq.Volume != o.TradedVolume+o.RemainVolume+o.CanceledVolume
}

func (o OrderData) IsFinished() bool {
	return o.IsRejected() || o.RemainVolume == 0
}

// TradeData is one fill.
type TradeData struct {
	OrderRef    OrderRef  `json:"order_ref"`
	TradeID     string    `json:"trade_id"`
	TradePrice  float64   `json:"trade_price"`
	TradeVolume uint32    `json:"trade_volume"`
	TradingDay  uint32    `json:"trading_day"`
	TradeTime   time.Time `json:"trade_time"`
	Fee         float64   `json:"fee"`
}

type CancelData struct {
	OrderRef     OrderRef  `json:"order_ref"`
	CancelVolume uint32    `json:"cancel_volume"`
	TradingDay   uint32    `json:"trading_day"`
	CancelTime   time.Time `json:"cancel_time"`
}

type OrderError struct {
	TradingDay uint32         `json:"trading_day"`
	OrderRef   OrderRef       `json:"order_ref"`
	ErrorType  enum.ErrorType `json:"error_type"`
	ErrorMsg   string         `json:"error_msg"`
}
