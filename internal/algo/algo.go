// Package algo holds execution algorithms that work a symbol's position
// towards a target through the engine command surface.
package algo

import (
	"strings"

	"github.com/yanun0323/errors"

	"rookie/internal/model"
	"rookie/pkg/exception"
)

// Engine is the part of the engine an algo may call. Calls are made from the
// event loop goroutine.
type Engine interface {
	OrderInsert(id model.StrategyID, req model.OrderReq) (model.OrderRef, bool)
	OrderCancel(id model.StrategyID, ref model.OrderRef) bool
	QueryLastTick(s model.Symbol) (model.TickData, bool)
	QueryPosition(s model.Symbol) (model.PositionData, bool)
	QuerySymbolDetail(s model.Symbol) (model.SymbolDetail, bool)
}

// Algo is a strategy addressed by symbol.
type Algo interface {
	Name() string
	Symbol() model.Symbol
	SetStrategyID(id model.StrategyID)
	// Stop halts the algo for good and cancels its outstanding order.
	Stop()
	// Done reports whether the algo stopped for good.
	Done() bool

	OnInit(tradingDay uint32) []model.Symbol
	OnTick(model.TickData)
	OnBar(model.BarData)
	OnTrade(model.TradeData)
	OnCancel(model.CancelData)
	OnError(model.OrderError)
	OnAlgoReq(model.AlgoReq)
}

type constructor func(engine Engine, symbol model.Symbol, param string) (Algo, error)

var constructors = map[string]constructor{
	TwapName: func(engine Engine, symbol model.Symbol, param string) (Algo, error) {
		return NewTwap(engine, symbol, param)
	},
}

// New builds the algo registered under name. Names are case insensitive.
func New(name string, engine Engine, symbol model.Symbol, param string) (Algo, error) {
	create, ok := constructors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Wrapf(exception.ErrAlgoUnknown, "algo name: %s", name)
	}
	return create(engine, symbol, param)
}

// Base carries what every algo shares and the no-op callbacks.
type Base struct {
	engine     Engine
	symbol     model.Symbol
	id         model.StrategyID
	tradingDay uint32
}

func (b *Base) Symbol() model.Symbol              { return b.symbol }
func (b *Base) StrategyID() model.StrategyID      { return b.id }
func (b *Base) SetStrategyID(id model.StrategyID) { b.id = id }
func (b *Base) TradingDay() uint32                { return b.tradingDay }

// OnInit subscribes the algo's own symbol.
func (b *Base) OnInit(tradingDay uint32) []model.Symbol {
	b.tradingDay = tradingDay
	return []model.Symbol{b.symbol}
}

func (b *Base) OnBar(model.BarData) {}
