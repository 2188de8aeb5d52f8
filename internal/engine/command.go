package engine

import (
	"strings"
	"time"

	"github.com/yanun0323/logs"

	"rookie/internal/algo"
	"rookie/internal/bus"
	"rookie/internal/model"
)

var _ algo.Engine = (*Engine)(nil)

// OrderInsert places an order for strategy id. It runs on the event loop
// goroutine and reports false when the risk gate rejects the request.
func (e *Engine) OrderInsert(id model.StrategyID, req model.OrderReq) (model.OrderRef, bool) {
	begin := time.Now()
	if !e.gate.CheckOrderInsert(req) {
		return 0, false
	}

	ref := e.ledger.OrderInsert(req)
	e.router.SetTradeHandler(ref, slot{engine: e, id: id})
	e.trade.OrderInsert(ref, req)
	e.metrics.ObserveOrderFlow(time.Since(begin))
	return ref, true
}

// OrderCancel asks the venue to cancel ref. It runs on the event loop goroutine.
func (e *Engine) OrderCancel(id model.StrategyID, ref model.OrderRef) bool {
	if !e.gate.CheckOrderCancel(ref) {
		logs.Warnf("strategy %d cancel order ref %d rejected", id, ref)
		return false
	}

	e.ledger.OrderCancel(ref)
	e.trade.OrderCancel(ref)
	return true
}

// AlgoInsert routes req to the algo working req.Symbol. The algo is created
// on first use and recreated when req names another algo or the running one
// is done. A replaced algo is stopped on the event loop. Call it from the
// event loop goroutine, or before trading starts.
func (e *Engine) AlgoInsert(req model.AlgoReq) error {
	key := req.Symbol.Key()

	e.strategiesMu.RLock()
	current, ok := e.algos[key]
	id, hasID := e.algoIDs[key]
	e.strategiesMu.RUnlock()

	if !ok || current.Done() || !strings.EqualFold(current.Name(), strings.TrimSpace(req.AlgoName)) {
		a, err := algo.New(req.AlgoName, e, req.Symbol, req.AlgoParam)
		if err != nil {
			logs.Errorf("create algo %s for %s, err: %+v", req.AlgoName, req.Symbol, err)
			return err
		}
		if ok && !current.Done() {
			if err := e.post(current.Stop); err != nil {
				logs.Errorf("post stop of algo %s for %s, err: %+v", current.Name(), req.Symbol, err)
			}
		}

		if hasID {
			a.SetStrategyID(id)
			if err := e.RegisterStrategyAt(id, a); err != nil {
				return err
			}
		} else {
			id = e.RegisterStrategy(a)
			a.SetStrategyID(id)
		}

		e.strategiesMu.Lock()
		e.algos[key] = a
		e.algoIDs[key] = id
		e.strategiesMu.Unlock()
		logs.Infof("algo %s for %s registered as strategy %d", a.Name(), req.Symbol, id)
	}

	err := e.queue.TryPublish(bus.AlgoReqEvent(req))
	if err != nil {
		e.pusher().count(err)
		logs.Errorf("publish algo req %+v, err: %+v", req, err)
	}
	return err
}
