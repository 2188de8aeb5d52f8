package exception

import "errors"

// Risk rejections
var (
	ErrRiskTradingInactive    = errors.New("risk: trading inactive")
	ErrRiskSessionMissing     = errors.New("risk: session state missing")
	ErrRiskTradeReconnecting  = errors.New("risk: trade adapter reconnecting")
	ErrRiskDailyOrderLimit    = errors.New("risk: daily order num exceeded")
	ErrRiskDailyCancelLimit   = errors.New("risk: daily cancel num exceeded")
	ErrRiskDailyRepeatLimit   = errors.New("risk: daily repeat order num exceeded")
	ErrRiskUnknownSymbol      = errors.New("risk: symbol not found")
	ErrRiskPriceTick          = errors.New("risk: limit price is not a multiple of price tick")
	ErrRiskMaxVolume          = errors.New("risk: volume exceeds max volume")
	ErrRiskPriceLimit         = errors.New("risk: limit price outside price limits")
	ErrRiskOrderRefOutOfRange = errors.New("risk: order ref out of range")
	ErrRiskOrderFinished      = errors.New("risk: order finished")
	ErrRiskTradingDayMismatch = errors.New("risk: trading day mismatch")
	ErrRiskUnsubscribed       = errors.New("risk: symbol not subscribed")
)
