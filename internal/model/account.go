package model

import "time"

// AccountData is the funds snapshot, replaced wholesale on every query.
type AccountData struct {
	TradingDay   uint32    `json:"trading_day"`
	UpdateTime   time.Time `json:"update_time"`
	Balance      float64   `json:"balance"`
	MarketValue  float64   `json:"market_value"`
	PreBalance   float64   `json:"pre_balance"`
	Deposit      float64   `json:"deposit"`
	Withdraw     float64   `json:"withdraw"`
	Margin       float64   `json:"margin"`
	PreMargin    float64   `json:"pre_margin"`
	FrozenMargin float64   `json:"frozen_margin"`
	Commission   float64   `json:"commission"`
	Available    float64   `json:"available"`
}

// AlgoReq asks the algo engine to work the net position of a symbol towards a target.
type AlgoReq struct {
	Symbol      Symbol    `json:"symbol"`
	NetPosition int32     `json:"net_position"`
	AlgoName    string    `json:"algo_name"`
	AlgoParam   string    `json:"algo_param_json"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// RiskIndicators are the daily counters watched by the risk gate.
type RiskIndicators struct {
	DailyOrderNum       int `json:"daily_order_num"`
	DailyCancelNum      int `json:"daily_cancel_num"`
	DailyRepeatOrderNum int `json:"daily_repeat_order_num"`
}
