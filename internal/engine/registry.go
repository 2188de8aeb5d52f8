package engine

import (
	"context"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"rookie/internal/model"
	"rookie/internal/store"
	"rookie/pkg/exception"
)

type registered struct {
	strategy Strategy
	seq      uint64
}

// RegisterStrategy appends s to the registry and returns its id. A strategy
// registered during a session is initialized and subscribed on the event loop.
func (e *Engine) RegisterStrategy(s Strategy) model.StrategyID {
	e.strategiesMu.Lock()
	id := model.StrategyID(len(e.strategies))
	e.nextSeq++
	entry := registered{strategy: s, seq: e.nextSeq}
	e.strategies = append(e.strategies, entry)
	e.strategiesMu.Unlock()

	e.afterRegister(id, entry)
	return id
}

// RegisterStrategyAt puts s in slot id, replacing its occupant. Routes of
// the slot are kept.
func (e *Engine) RegisterStrategyAt(id model.StrategyID, s Strategy) error {
	if id < 0 || s == nil {
		return errors.Wrapf(exception.ErrInvalidArgument, "strategy id %d", id)
	}

	e.strategiesMu.Lock()
	for int(id) >= len(e.strategies) {
		e.strategies = append(e.strategies, registered{})
	}
	e.nextSeq++
	entry := registered{strategy: s, seq: e.nextSeq}
	e.strategies[id] = entry
	e.strategiesMu.Unlock()

	e.afterRegister(id, entry)
	return nil
}

func (e *Engine) strategy(id model.StrategyID) Strategy {
	e.strategiesMu.RLock()
	defer e.strategiesMu.RUnlock()
	if id < 0 || int(id) >= len(e.strategies) {
		return nil
	}
	return e.strategies[id].strategy
}

func (e *Engine) snapshotStrategies() []registered {
	e.strategiesMu.RLock()
	defer e.strategiesMu.RUnlock()
	return append([]registered(nil), e.strategies...)
}

func (e *Engine) afterRegister(id model.StrategyID, entry registered) {
	if e.State() == StateNotTrading {
		return
	}
	session := e.session.Load()
	err := e.post(func() {
		e.lateInit(session, id, entry)
	})
	if err != nil {
		logs.Errorf("post late init of strategy %d, err: %+v", id, err)
	}
}

// lateInit runs on the event loop.
func (e *Engine) lateInit(session uint64, id model.StrategyID, entry registered) {
	market := e.ledger.MarketInfo()
	if e.session.Load() != session || market == nil {
		return
	}
	if e.initialized[id] == entry.seq {
		return
	}
	if current := e.snapshotAt(id); current.seq != entry.seq {
		return
	}

	added := e.initStrategy(id, entry, market)
	if len(added) == 0 {
		return
	}
	for key, s := range added {
		market.LastTicks[key] = &model.TickData{Symbol: s}
	}
	symbols := added.Slice()
	e.journal.Log(store.LevelInfo, EventStrategy, "strategy %d joined late, subscribe %v", id, symbols)
	go e.subscribe(session, symbols)
}

func (e *Engine) snapshotAt(id model.StrategyID) registered {
	e.strategiesMu.RLock()
	defer e.strategiesMu.RUnlock()
	if int(id) >= len(e.strategies) {
		return registered{}
	}
	return e.strategies[id]
}

func (e *Engine) subscribe(session uint64, symbols []model.Symbol) {
	if e.session.Load() != session {
		return
	}
	if err := e.market.Subscribe(context.Background(), symbols); err != nil {
		logs.Errorf("subscribe %v, err: %+v", symbols, err)
		e.journal.Log(store.LevelError, EventStrategy, "subscribe %v failed, err: %+v", symbols, err)
	}
}

// initStrategies rebuilds the router and the subscription set from every
// registered strategy.
func (e *Engine) initStrategies(market *model.MarketInfo, session uint64) {
	e.router.Reset()
	e.subscribed = make(model.SymbolSet)
	e.initialized = make(map[model.StrategyID]uint64)
	for i, entry := range e.snapshotStrategies() {
		if entry.strategy == nil {
			continue
		}
		e.initStrategy(model.StrategyID(i), entry, market)
	}
	logs.Infof("session %d, strategies initialized, symbols %d", session, len(e.subscribed))
}

// initStrategy calls OnInit and routes the known symbols to the strategy. It
// returns the symbols that were not subscribed yet.
func (e *Engine) initStrategy(id model.StrategyID, entry registered, market *model.MarketInfo) model.SymbolSet {
	e.initialized[id] = entry.seq
	added := make(model.SymbolSet)
	for _, s := range entry.strategy.OnInit(market.TradingDay) {
		detail, ok := market.Detail(s)
		if !ok {
			logs.Warnf("strategy %d wants unknown symbol %s, dropped", id, s)
			continue
		}
		e.router.AddMarketHandler(detail.Symbol, slot{engine: e, id: id})
		if e.subscribed.Add(detail.Symbol) {
			added.Add(detail.Symbol)
		}
	}
	return added
}
