package engine

import (
	"context"
	"sync/atomic"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"rookie/internal/bus"
	"rookie/internal/model"
	"rookie/internal/store"
)

// claim marks a side as reconnecting for session. A claim left behind by an
// older session does not count.
func claim(flag *atomic.Uint64, session uint64) bool {
	for {
		cur := flag.Load()
		if cur == session {
			return false
		}
		if flag.CompareAndSwap(cur, session) {
			return true
		}
	}
}

func release(flag *atomic.Uint64, session uint64) {
	flag.CompareAndSwap(session, 0)
}

func (e *Engine) handleMarketDisconnected() {
	session := e.session.Load()
	e.journal.Log(store.LevelWarn, EventDisconnect, "market adapter disconnected")
	if !claim(&e.marketReconnecting, session) {
		return
	}
	e.setState(StateReconnecting)
	go e.reconnectMarket(session, e.subscribed.Slice())
}

func (e *Engine) handleTradeDisconnected() {
	session := e.session.Load()
	e.journal.Log(store.LevelWarn, EventDisconnect, "trade adapter disconnected")
	e.gate.SetTradeHalted(true)
	if !claim(&e.tradeReconnecting, session) {
		return
	}
	e.setState(StateReconnecting)
	go e.reconnectTrade(session)
}

// reconnectMarket logs the market adapter back in, reloads the details and
// resubscribes the symbols that still exist.
func (e *Engine) reconnectMarket(session uint64, symbols []model.Symbol) {
	ctx := context.Background()
	details, err := e.relogMarket(ctx, symbols)
	if err != nil {
		logs.Errorf("reconnect market, err: %+v", err)
		e.journal.Log(store.LevelError, EventReconnect, "reconnect market failed, err: %+v", err)
		release(&e.marketReconnecting, session)
		e.retry(ctx, session, bus.MarketDisconnectedEvent())
		return
	}

	e.install(ctx, session, func() {
		e.installMarket(details)
		release(&e.marketReconnecting, session)
		e.resume(session)
	}, bus.MarketDisconnectedEvent(), &e.marketReconnecting)
}

func (e *Engine) relogMarket(ctx context.Context, symbols []model.Symbol) (model.SymbolDetails, error) {
	if err := e.market.Logout(ctx); err != nil {
		logs.Warnf("logout market adapter, err: %+v", err)
	}
	if err := e.market.Login(ctx); err != nil {
		return nil, errors.Wrap(err, "login market")
	}
	details, err := e.market.QuerySymbolDetails(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "query symbol details")
	}

	alive := make([]model.Symbol, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := details[s.Key()]; ok {
			alive = append(alive, s)
		}
	}
	if len(alive) != 0 {
		if err := e.market.Subscribe(ctx, alive); err != nil {
			return nil, errors.Wrap(err, "subscribe")
		}
	}
	return details, nil
}

// reconnectTrade logs the trade adapter back in and reloads the trade state.
func (e *Engine) reconnectTrade(session uint64) {
	ctx := context.Background()
	trade, err := e.relogTrade(ctx)
	if err != nil {
		logs.Errorf("reconnect trade, err: %+v", err)
		e.journal.Log(store.LevelError, EventReconnect, "reconnect trade failed, err: %+v", err)
		release(&e.tradeReconnecting, session)
		e.retry(ctx, session, bus.TradeDisconnectedEvent())
		return
	}

	e.install(ctx, session, func() {
		e.installTrade(trade)
		release(&e.tradeReconnecting, session)
		e.resume(session)
	}, bus.TradeDisconnectedEvent(), &e.tradeReconnecting)
}

func (e *Engine) relogTrade(ctx context.Context) (*model.TradeInfo, error) {
	if err := e.trade.Logout(ctx); err != nil {
		logs.Warnf("logout trade adapter, err: %+v", err)
	}
	if err := e.trade.Login(ctx); err != nil {
		return nil, errors.Wrap(err, "login trade")
	}
	return e.hydrateTrade(ctx)
}

// install hands the fresh state to the event loop. When the session ended in
// the meantime the state is thrown away.
func (e *Engine) install(ctx context.Context, session uint64, fn func(), retry bus.Event, flag *atomic.Uint64) {
	if e.session.Load() != session {
		release(flag, session)
		return
	}
	call := bus.CallEvent(func() {
		if e.session.Load() != session {
			return
		}
		fn()
	})
	if err := e.queue.Publish(ctx, call); err != nil {
		e.pusher().count(err)
		logs.Errorf("post reconnect state, err: %+v", err)
		release(flag, session)
		e.retry(ctx, session, retry)
	}
}

// retry puts the disconnect event back on the queue, blocking while it is full.
func (e *Engine) retry(ctx context.Context, session uint64, ev bus.Event) {
	if e.session.Load() != session {
		return
	}
	if err := e.queue.Publish(ctx, ev); err != nil {
		e.pusher().count(err)
		logs.Errorf("requeue %s, err: %+v", ev.Kind, err)
	}
}

// installMarket runs on the event loop. Symbols gone from the venue leave the
// subscription, the tick cache, the router and the positions.
func (e *Engine) installMarket(details model.SymbolDetails) {
	market := e.ledger.MarketInfo()
	if market == nil {
		return
	}
	market.SymbolDetails = details
	for key, s := range e.subscribed {
		if _, ok := details[key]; ok {
			continue
		}
		logs.Warnf("symbol %s gone after reconnect, dropped", s)
		delete(e.subscribed, key)
		delete(market.LastTicks, key)
		e.router.RemoveSymbol(s)
	}
	if trade := e.ledger.TradeInfo(); trade != nil {
		reconcilePositions(market, trade)
	}
	e.ledger.SetMarketInfo(market)
	e.gate.SetMarketInfo(market)
	e.journal.Log(store.LevelInfo, EventReconnect, "market reconnected, symbols %d", len(e.subscribed))
}

// installTrade runs on the event loop.
func (e *Engine) installTrade(trade *model.TradeInfo) {
	market := e.ledger.MarketInfo()
	if market == nil {
		return
	}
	reconcilePositions(market, trade)
	e.ledger.SetTradeInfo(trade)
	e.gate.SetTradeInfo(trade)
	e.gate.SetTradeHalted(false)
	e.journal.Log(store.LevelInfo, EventReconnect, "trade reconnected, orders %d", len(trade.Orders))
}

// resume returns to trading once neither side is reconnecting.
func (e *Engine) resume(session uint64) {
	if e.marketReconnecting.Load() == session || e.tradeReconnecting.Load() == session {
		return
	}
	if e.State() == StateReconnecting {
		e.setState(StateTrading)
	}
}
