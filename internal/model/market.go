package model

import (
	"time"

	"rookie/internal/model/enum"
)

// MaxDepth is the number of book levels carried by a tick.
const MaxDepth = 5

// Level is one price level of the book.
type Level struct {
	Price  float64 `json:"price"`
	Volume uint32  `json:"volume"`
}

// TickData is the latest quote snapshot of a symbol.
type TickData struct {
	Symbol          Symbol    `json:"symbol"`
	TradingDay      uint32    `json:"trading_day"`
	UpdateTime      time.Time `json:"update_time"`
	LastPrice       float64   `json:"last_price"`
	OpenPrice       float64   `json:"open_price"`
	HighPrice       float64   `json:"high_price"`
	LowPrice        float64   `json:"low_price"`
	AveragePrice    float64   `json:"average_price"`
	UpperLimitPrice float64   `json:"upper_limit_price"`
	LowerLimitPrice float64   `json:"lower_limit_price"`
	Volume          uint32    `json:"volume"`
	OpenInterest    float64   `json:"open_interest"`
	Bids            []Level   `json:"bids"`
	Asks            []Level   `json:"asks"`
}

// BarData is an aggregated candle.
type BarData struct {
	Symbol     Symbol    `json:"symbol"`
	TradingDay uint32    `json:"trading_day"`
	UpdateTime time.Time `json:"update_time"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	Volume     uint32    `json:"volume"`
	Amount     float64   `json:"amount"`
}

// SymbolDetail is the static instrument metadata loaded once per session.
type SymbolDetail struct {
	Symbol                    Symbol            `json:"symbol" yaml:"symbol"`
	ProductClass              enum.ProductClass `json:"product_class" yaml:"product_class"`
	UnderlyingAsset           string            `json:"underlying_asset" yaml:"underlying_asset"`
	PriceTick                 float64           `json:"price_tick" yaml:"price_tick"`
	Multiplier                int               `json:"multiplier" yaml:"multiplier"`
	MinBuyVolume              uint32            `json:"min_buy_volume" yaml:"min_buy_volume"`
	MinSellVolume             uint32            `json:"min_sell_volume" yaml:"min_sell_volume"`
	MaxBuyVolume              uint32            `json:"max_buy_volume" yaml:"max_buy_volume"`
	MaxSellVolume             uint32            `json:"max_sell_volume" yaml:"max_sell_volume"`
	UpperLimitPrice           float64           `json:"upper_limit_price" yaml:"upper_limit_price"`
	LowerLimitPrice           float64           `json:"lower_limit_price" yaml:"lower_limit_price"`
	OpenDate                  uint32            `json:"open_date" yaml:"open_date"`
	ExpireDate                uint32            `json:"expire_date" yaml:"expire_date"`
	LongMarginRatio           float64           `json:"long_margin_ratio" yaml:"long_margin_ratio"`
	ShortMarginRatio          float64           `json:"short_margin_ratio" yaml:"short_margin_ratio"`
	OpenFeeRateByMoney        float64           `json:"open_fee_rate_by_money" yaml:"open_fee_rate_by_money"`
	OpenFeeRateByVolume       float64           `json:"open_fee_rate_by_volume" yaml:"open_fee_rate_by_volume"`
	CloseFeeRateByMoney       float64           `json:"close_fee_rate_by_money" yaml:"close_fee_rate_by_money"`
	CloseFeeRateByVolume      float64           `json:"close_fee_rate_by_volume" yaml:"close_fee_rate_by_volume"`
	CloseTodayFeeRateByMoney  float64           `json:"close_today_fee_rate_by_money" yaml:"close_today_fee_rate_by_money"`
	CloseTodayFeeRateByVolume float64           `json:"close_today_fee_rate_by_volume" yaml:"close_today_fee_rate_by_volume"`
}

// SymbolDetails is keyed by display symbol.
type SymbolDetails map[string]*SymbolDetail

// MarketInfo is the session scoped market state. Only the tick cache changes
// after hydration.
type MarketInfo struct {
	TradingDay    uint32
	SymbolDetails SymbolDetails
	LastTicks     map[string]*TickData
}

func NewMarketInfo(tradingDay uint32, details SymbolDetails) *MarketInfo {
	if details == nil {
		details = make(SymbolDetails)
	}
	return &MarketInfo{
		TradingDay:    tradingDay,
		SymbolDetails: details,
		LastTicks:     make(map[string]*TickData),
	}
}

func (m *MarketInfo) Detail(s Symbol) (*SymbolDetail, bool) {
	if m == nil {
		return nil, false
	}
	d, ok := m.SymbolDetails[s.Key()]
	return d, ok
}

func (m *MarketInfo) LastTick(s Symbol) (*TickData, bool) {
	if m == nil {
		return nil, false
	}
	t, ok := m.LastTicks[s.Key()]
	return t, ok
}

// ResetTicks replaces the tick cache with a zero slot per symbol.
func (m *MarketInfo) ResetTicks(symbols SymbolSet) {
	m.LastTicks = make(map[string]*TickData, len(symbols))
	for key, s := range symbols {
		m.LastTicks[key] = &TickData{Symbol: s}
	}
}
