package engine

import (
	"context"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"

	"rookie/internal/gateway"
	"rookie/internal/model"
)

// The queries below read session state owned by the event loop. Call them
// from strategy callbacks; other goroutines use DetailJSON.

func (e *Engine) TradingDay() uint32 {
	if market := e.ledger.MarketInfo(); market != nil {
		return market.TradingDay
	}
	return 0
}

// QueryAllSymbols returns every symbol with a detail, sorted.
func (e *Engine) QueryAllSymbols() []model.Symbol {
	market := e.ledger.MarketInfo()
	if market == nil {
		return nil
	}
	set := make(model.SymbolSet, len(market.SymbolDetails))
	for _, d := range market.SymbolDetails {
		if d != nil {
			set.Add(d.Symbol)
		}
	}
	return set.Slice()
}

// QueryAllPositions returns the non-empty positions, sorted by symbol.
func (e *Engine) QueryAllPositions() []model.PositionData {
	trade := e.ledger.TradeInfo()
	if trade == nil {
		return nil
	}
	return sortedPositions(trade.Positions)
}

func (e *Engine) QueryLastTick(s model.Symbol) (model.TickData, bool) {
	tick, ok := e.ledger.MarketInfo().LastTick(s)
	if !ok || tick == nil {
		return model.TickData{}, false
	}
	return *tick, true
}

func (e *Engine) QuerySymbolDetail(s model.Symbol) (model.SymbolDetail, bool) {
	detail, ok := e.ledger.MarketInfo().Detail(s)
	if !ok || detail == nil {
		return model.SymbolDetail{}, false
	}
	return *detail, true
}

func (e *Engine) QueryPosition(s model.Symbol) (model.PositionData, bool) {
	p, ok := e.ledger.TradeInfo().Position(s)
	if !ok || p == nil {
		return model.PositionData{}, false
	}
	return *p, true
}

func (e *Engine) QueryAccount() (model.AccountData, bool) {
	trade := e.ledger.TradeInfo()
	if trade == nil {
		return model.AccountData{}, false
	}
	return trade.Account, true
}

func (e *Engine) QueryOrder(ref model.OrderRef) (model.OrderData, bool) {
	order := e.ledger.TradeInfo().Order(ref)
	if order == nil {
		return model.OrderData{}, false
	}
	return *order, true
}

func (e *Engine) QueryTrades(ref model.OrderRef) ([]model.TradeData, bool) {
	trade := e.ledger.TradeInfo()
	if trade == nil || int(ref) >= len(trade.Trades) {
		return nil, false
	}
	return append([]model.TradeData(nil), trade.Trades[ref]...), true
}

func sortedPositions(positions model.Positions) []model.PositionData {
	out := make([]model.PositionData, 0, len(positions))
	for _, p := range positions {
		if p == nil || p.Empty() {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Symbol.Less(out[j].Symbol)
	})
	return out
}

type detail struct {
	TradeInfo  *tradeDetail  `json:"trade_info"`
	MarketInfo *marketDetail `json:"market_info"`
}

type tradeDetail struct {
	AccountName string               `json:"account_name"`
	Positions   []model.PositionData `json:"positions"`
	Orders      []model.OrderData    `json:"orders"`
	Trades      [][]model.TradeData  `json:"trades"`
	Account     model.AccountData    `json:"account"`
}

type marketDetail struct {
	TradingDay    uint32                     `json:"trading_day"`
	SymbolDetails model.SymbolDetails        `json:"symbol_details"`
	LastTicks     map[string]*model.TickData `json:"last_ticks"`
}

// DetailJSON renders the session state. While events are dispatched the
// rendering runs on the event loop and the caller waits for it.
func (e *Engine) DetailJSON(ctx context.Context) (string, error) {
	if !e.State().Dispatching() {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.detailJSON()
	}

	call := gateway.NewCall[string](nil)
	if err := call.Begin(); err != nil {
		return "", err
	}
	err := e.post(func() {
		out, err := e.detailJSON()
		if err != nil {
			call.Fail(err)
			return
		}
		call.Resolve(out)
	})
	if err != nil {
		return "", errors.Wrap(err, "post detail")
	}
	return call.Wait(ctx, gateway.DefaultTimeout)
}

func (e *Engine) detailJSON() (string, error) {
	var d detail
	if trade := e.ledger.TradeInfo(); trade != nil {
		d.TradeInfo = &tradeDetail{
			AccountName: trade.AccountName,
			Positions:   sortedPositions(trade.Positions),
			Orders:      trade.Orders,
			Trades:      trade.Trades,
			Account:     trade.Account,
		}
	}
	if market := e.ledger.MarketInfo(); market != nil {
		d.MarketInfo = &marketDetail{
			TradingDay:    market.TradingDay,
			SymbolDetails: market.SymbolDetails,
			LastTicks:     market.LastTicks,
		}
	}
	out, err := sonic.MarshalString(d)
	if err != nil {
		return "", errors.Wrap(err, "marshal detail")
	}
	return out, nil
}
