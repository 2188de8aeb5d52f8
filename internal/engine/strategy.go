package engine

import (
	"rookie/internal/algo"
	"rookie/internal/model"
)

// Strategy receives the events of the symbols it asked for in OnInit and of
// the orders it placed. Every callback runs on the event loop goroutine and
// must not block.
type Strategy interface {
	// OnInit is called once per session before subscription and returns the
	// symbols the strategy wants.
	OnInit(tradingDay uint32) []model.Symbol
	OnTick(model.TickData)
	OnBar(model.BarData)
	OnTrade(model.TradeData)
	OnCancel(model.CancelData)
	OnError(model.OrderError)
	OnAlgoReq(model.AlgoReq)
}

var _ Strategy = (algo.Algo)(nil)

// BaseStrategy provides no-op callbacks. Embed it and implement OnInit.
type BaseStrategy struct{}

func (BaseStrategy) OnTick(model.TickData)     {}
func (BaseStrategy) OnBar(model.BarData)       {}
func (BaseStrategy) OnTrade(model.TradeData)   {}
func (BaseStrategy) OnCancel(model.CancelData) {}
func (BaseStrategy) OnError(model.OrderError)  {}
func (BaseStrategy) OnAlgoReq(model.AlgoReq)   {}

// slot routes router callbacks to whatever strategy currently occupies id,
// so a strategy replaced by RegisterStrategyAt keeps its routes.
type slot struct {
	engine *Engine
	id     model.StrategyID
}

func (s slot) OnTick(tick model.TickData) {
	if st := s.engine.strategy(s.id); st != nil {
		st.OnTick(tick)
	}
}

func (s slot) OnBar(bar model.BarData) {
	if st := s.engine.strategy(s.id); st != nil {
		st.OnBar(bar)
	}
}

func (s slot) OnTrade(trade model.TradeData) {
	if st := s.engine.strategy(s.id); st != nil {
		st.OnTrade(trade)
	}
}

func (s slot) OnCancel(cancel model.CancelData) {
	if st := s.engine.strategy(s.id); st != nil {
		st.OnCancel(cancel)
	}
}

func (s slot) OnError(e model.OrderError) {
	if st := s.engine.strategy(s.id); st != nil {
		st.OnError(e)
	}
}
