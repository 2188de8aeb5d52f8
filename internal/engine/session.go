package engine

import (
	"context"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"rookie/internal/bus"
	"rookie/internal/model"
	"rookie/internal/store"
	"rookie/pkg/exception"
)

const (
	EventSession    = "session"
	EventDisconnect = "disconnect"
	EventReconnect  = "reconnect"
	EventStrategy   = "strategy"
)

// StartTrading logs in both adapters, hydrates the session and subscribes the
// symbols of every registered strategy. It blocks for the duration of the
// venue queries and must not be called from the event loop goroutine.
func (e *Engine) StartTrading(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.State() != StateNotTrading {
		return exception.ErrSessionAlreadyTrading
	}

	e.drainStale()
	session := e.session.Add(1)
	e.setState(StateLoggingIn)
	if err := e.start(ctx, session); err != nil {
		logs.Errorf("start trading, err: %+v", err)
		e.journal.Log(store.LevelError, EventSession, "start trading failed, err: %+v", err)
		e.ledger.Reset()
		e.gate.Reset()
		e.subscribed = make(model.SymbolSet)
		e.setState(StateNotTrading)
		e.logout(ctx)
		return err
	}

	e.gate.SetActive(true)
	e.setState(StateTrading)
	e.journal.Log(store.LevelInfo, EventSession, "trading started, trading day %d, symbols %d", e.ledger.MarketInfo().TradingDay, len(e.subscribed))
	return nil
}

func (e *Engine) start(ctx context.Context, session uint64) error {
	if err := e.trade.Login(ctx); err != nil {
		return errors.Wrapf(exception.ErrSessionLoginTrade, "err: %+v", err)
	}
	if err := e.market.Login(ctx); err != nil {
		return errors.Wrapf(exception.ErrSessionLoginMarket, "err: %+v", err)
	}

	e.setState(StateHydratingMarket)
	market, err := e.hydrateMarket(ctx)
	if err != nil {
		return errors.Wrapf(exception.ErrSessionHydrateMarket, "err: %+v", err)
	}
	e.journal.SetTradingDay(market.TradingDay)
	e.initStrategies(market, session)
	market.ResetTicks(e.subscribed)

	e.setState(StateHydratingTrade)
	trade, err := e.hydrateTrade(ctx)
	if err != nil {
		return errors.Wrapf(exception.ErrSessionHydrateTrade, "err: %+v", err)
	}
	reconcilePositions(market, trade)

	e.ledger.SetMarketInfo(market)
	e.ledger.SetTradeInfo(trade)
	e.gate.SetMarketInfo(market)
	e.gate.SetTradeInfo(trade)

	if len(e.subscribed) != 0 {
		if err := e.market.Subscribe(ctx, e.subscribed.Slice()); err != nil {
			return errors.Wrapf(exception.ErrSessionSubscribe, "err: %+v", err)
		}
	}
	return nil
}

// StopTrading ends the session: snapshots go to the store, the session state
// is dropped and both adapters log out. It must not be called from the event
// loop goroutine.
func (e *Engine) StopTrading(ctx context.Context) error {
	e.mu.Lock()
	if e.State() == StateNotTrading {
		e.mu.Unlock()
		return exception.ErrSessionNotTrading
	}

	e.session.Add(1)
	e.gate.SetActive(false)
	e.setState(StateNotTrading)
	e.flushSnapshots()
	e.ledger.Reset()
	e.gate.Reset()
	e.subscribed = make(model.SymbolSet)
	e.mu.Unlock()

	e.logout(ctx)
	e.journal.Log(store.LevelInfo, EventSession, "trading stopped")
	return nil
}

func (e *Engine) logout(ctx context.Context) {
	if err := e.market.Logout(ctx); err != nil {
		logs.Warnf("logout market adapter, err: %+v", err)
	}
	if err := e.trade.Logout(ctx); err != nil {
		logs.Warnf("logout trade adapter, err: %+v", err)
	}
}

func (e *Engine) flushSnapshots() {
	if trade := e.ledger.TradeInfo(); trade != nil {
		for _, p := range sortedPositions(trade.Positions) {
			e.journal.Position(p)
		}
	}
	e.journal.Risk(e.gate.Indicators())
}

// drainStale drops the events left over from the previous session. Algo
// requests and internal calls are kept.
func (e *Engine) drainStale() {
	dropped := e.queue.Retain(func(ev bus.Event) bool {
		return ev.Kind == bus.KindAlgoReq || ev.Kind == bus.KindCall
	})
	if dropped != 0 {
		logs.Warnf("drop %d stale events before start", dropped)
	}
}

func (e *Engine) hydrateMarket(ctx context.Context) (*model.MarketInfo, error) {
	day, err := e.trade.QueryTradingDay(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "query trading day")
	}
	details, err := e.market.QuerySymbolDetails(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "query symbol details")
	}
	logs.Infof("hydrate market, trading day %d, symbols %d", day, len(details))
	return model.NewMarketInfo(day, details), nil
}

// hydrateTrade runs the trade queries one after another, pausing between them
// to stay under the venue query rate.
func (e *Engine) hydrateTrade(ctx context.Context) (*model.TradeInfo, error) {
	if err := e.pause(ctx); err != nil {
		return nil, err
	}
	positions, err := e.trade.QueryPositions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "query positions")
	}

	if err := e.pause(ctx); err != nil {
		return nil, err
	}
	orders, err := e.trade.QueryOrders(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}

	if err := e.pause(ctx); err != nil {
		return nil, err
	}
	trades, err := e.trade.QueryTrades(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "query trades")
	}

	if err := e.pause(ctx); err != nil {
		return nil, err
	}
	account, err := e.trade.QueryAccount(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "query account")
	}

	logs.Infof("hydrate trade, positions %d, orders %d", len(positions), len(orders))
	return model.NewTradeInfo(e.account, positions, orders, trades, account), nil
}

func (e *Engine) pause(ctx context.Context) error {
	d := e.cfg.queryInterval()
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// reconcilePositions drops positions of symbols without a detail.
func reconcilePositions(market *model.MarketInfo, trade *model.TradeInfo) {
	for key, p := range trade.Positions {
		if p == nil {
			delete(trade.Positions, key)
			continue
		}
		if _, ok := market.SymbolDetails[key]; !ok {
			logs.Warnf("drop position of unknown symbol %s %+v", key, *p)
			delete(trade.Positions, key)
		}
	}
}
