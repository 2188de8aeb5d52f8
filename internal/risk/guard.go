package risk

import (
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"rookie/internal/model"
	"rookie/pkg/exception"
)

// The handle checks drop venue events that arrive outside the session they
// belong to.

func (g *Gate) CheckHandleTick(tick model.TickData) bool {
	return g.guard("tick", tick, g.marketGuard(tick.Symbol))
}

func (g *Gate) CheckHandleBar(bar model.BarData) bool {
	return g.guard("bar", bar, g.marketGuard(bar.Symbol))
}

func (g *Gate) CheckHandleTrade(trade model.TradeData) bool {
	err := g.orderGuard(trade.OrderRef, trade.TradingDay, true)
	return g.guard("trade", trade, err)
}

func (g *Gate) CheckHandleCancel(cancel model.CancelData) bool {
	err := g.orderGuard(cancel.OrderRef, cancel.TradingDay, false)
	return g.guard("cancel", cancel, err)
}

func (g *Gate) CheckHandleError(e model.OrderError) bool {
	err := g.orderGuard(e.OrderRef, e.TradingDay, false)
	return g.guard("order error", e, err)
}

func (g *Gate) marketGuard(s model.Symbol) error {
	if !g.active {
		return exception.ErrRiskTradingInactive
	}
	if g.market == nil {
		return exception.ErrRiskSessionMissing
	}
	if _, ok := g.market.LastTick(s); !ok {
		return errors.Wrapf(exception.ErrRiskUnsubscribed, "symbol %s", s)
	}
	return nil
}

func (g *Gate) orderGuard(ref model.OrderRef, tradingDay uint32, trades bool) error {
	if !g.active {
		return exception.ErrRiskTradingInactive
	}
	if g.trade == nil || g.market == nil {
		return exception.ErrRiskSessionMissing
	}
	if int(ref) >= len(g.trade.Orders) {
		return errors.Wrapf(exception.ErrRiskOrderRefOutOfRange, "order ref %d, orders %d", ref, len(g.trade.Orders))
	}
	if trades && int(ref) >= len(g.trade.Trades) {
		return errors.Wrapf(exception.ErrRiskOrderRefOutOfRange, "order ref %d, trades %d", ref, len(g.trade.Trades))
	}
	if day := g.trade.Orders[ref].TradingDay; day != g.market.TradingDay {
		return errors.Wrapf(exception.ErrRiskTradingDayMismatch, "order ref %d, order day %d, market day %d", ref, day, g.market.TradingDay)
	}
	if tradingDay != g.market.TradingDay {
		return errors.Wrapf(exception.ErrRiskTradingDayMismatch, "order ref %d, event day %d, market day %d", ref, tradingDay, g.market.TradingDay)
	}
	return nil
}

func (g *Gate) guard(kind string, payload any, err error) bool {
	if err == nil {
		return true
	}
	g.reject(EventHandle, err)
	logs.Warnf("drop %s %+v, err: %+v", kind, payload, err)
	return false
}
