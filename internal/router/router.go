// Package router fans market events out to strategies and delivers order
// events to the strategy that placed the order.
package router

import "rookie/internal/model"

type MarketHandler interface {
	OnTick(model.TickData)
	OnBar(model.BarData)
}

type TradeHandler interface {
	OnTrade(model.TradeData)
	OnCancel(model.CancelData)
	OnError(model.OrderError)
}

// Router is owned by the event loop goroutine.
type Router struct {
	market map[string][]MarketHandler
	trade  []TradeHandler
}

func New() *Router {
	return &Router{market: make(map[string][]MarketHandler)}
}

// Reset drops every route.
func (r *Router) Reset() {
	r.market = make(map[string][]MarketHandler)
	r.trade = nil
}

// AddMarketHandler appends h to the handlers of s. Adding the same handler
// twice is ignored.
func (r *Router) AddMarketHandler(s model.Symbol, h MarketHandler) {
	if h == nil {
		return
	}
	for _, existing := range r.market[s.Key()] {
		if existing == h {
			return
		}
	}
	r.market[s.Key()] = append(r.market[s.Key()], h)
}

// RemoveSymbol drops every market handler of s.
func (r *Router) RemoveSymbol(s model.Symbol) {
	delete(r.market, s.Key())
}

func (r *Router) MarketHandlers(s model.Symbol) []MarketHandler {
	return r.market[s.Key()]
}

// SetTradeHandler binds h to ref, growing the table as needed.
func (r *Router) SetTradeHandler(ref model.OrderRef, h TradeHandler) {
	if int(ref) >= len(r.trade) {
		r.trade = append(r.trade, make([]TradeHandler, int(ref)+1-len(r.trade))...)
	}
	r.trade[ref] = h
}

func (r *Router) TradeHandler(ref model.OrderRef) TradeHandler {
	if int(ref) >= len(r.trade) {
		return nil
	}
	return r.trade[ref]
}

func (r *Router) HandleTick(tick model.TickData) {
	for _, h := range r.market[tick.Symbol.Key()] {
		h.OnTick(tick)
	}
}

func (r *Router) HandleBar(bar model.BarData) {
	for _, h := range r.market[bar.Symbol.Key()] {
		h.OnBar(bar)
	}
}

func (r *Router) HandleTrade(trade model.TradeData) {
	if h := r.TradeHandler(trade.OrderRef); h != nil {
		h.OnTrade(trade)
	}
}

func (r *Router) HandleCancel(cancel model.CancelData) {
	if h := r.TradeHandler(cancel.OrderRef); h != nil {
		h.OnCancel(cancel)
	}
}

func (r *Router) HandleError(e model.OrderError) {
	if h := r.TradeHandler(e.OrderRef); h != nil {
		h.OnError(e)
	}
}
