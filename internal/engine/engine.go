package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"rookie/internal/algo"
	"rookie/internal/bus"
	"rookie/internal/gateway"
	"rookie/internal/model"
	"rookie/internal/obs"
	"rookie/internal/oms"
	"rookie/internal/risk"
	"rookie/internal/router"
	"rookie/internal/store"
	"rookie/pkg/exception"
)

const (
	DefaultQueueCapacity = 1 << 16
	DefaultQueryInterval = time.Second
)

// Config is the engine section of the trader config.
type Config struct {
	EventQueueCapacity  int `json:"event_queue_capacity" yaml:"event_queue_capacity"`
	LoopIntervalMicros  int `json:"loop_interval_us" yaml:"loop_interval_us"`
	QueryIntervalMillis int `json:"query_interval_ms" yaml:"query_interval_ms"`
}

func (c Config) queueCapacity() int {
	if c.EventQueueCapacity <= 0 {
		return DefaultQueueCapacity
	}
	return c.EventQueueCapacity
}

func (c Config) loopInterval() time.Duration {
	if c.LoopIntervalMicros <= 0 {
		return bus.DefaultInterval
	}
	return time.Duration(c.LoopIntervalMicros) * time.Microsecond
}

// queryInterval is the pause between hydration queries. A negative value
// disables it.
func (c Config) queryInterval() time.Duration {
	switch {
	case c.QueryIntervalMillis < 0:
		return 0
	case c.QueryIntervalMillis == 0:
		return DefaultQueryInterval
	default:
		return time.Duration(c.QueryIntervalMillis) * time.Millisecond
	}
}

// Options wires the collaborators of an engine.
type Options struct {
	Config     Config
	Account    string
	Thresholds risk.Thresholds
	Market     gateway.Config
	Trade      gateway.Config
	Registry   *gateway.Registry
	Sink       store.Sink
	LogLevel   store.Level
	Metrics    *obs.Metrics
}

// Engine owns the adapters, the event loop, the ledger, the risk gate, the
// router and the strategies of one account.
type Engine struct {
	cfg     Config
	account string
	market  gateway.MarketAdapter
	trade   gateway.TradeAdapter

	queue   *bus.Queue
	loop    *bus.Loop
	journal *store.Journal
	ledger  *oms.Ledger
	gate    *risk.Gate
	router  *router.Router
	metrics *obs.Metrics

	// mu excludes event dispatch while session control swaps state.
	mu         sync.Mutex
	state      atomic.Uint32
	session    atomic.Uint64
	subscribed model.SymbolSet

	// session ids of the sides being reconnected, zero when idle.
	marketReconnecting atomic.Uint64
	tradeReconnecting  atomic.Uint64

	strategiesMu sync.RWMutex
	strategies   []registered
	nextSeq      uint64
	algos        map[string]algo.Algo
	algoIDs      map[string]model.StrategyID

	// initialized maps a slot to the registration seq initialized this session.
	initialized map[model.StrategyID]uint64
}

// New builds the adapters named by the options. Failing to build either
// adapter is fatal.
func New(opt Options) (*Engine, error) {
	if opt.Registry == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "adapter registry")
	}
	metrics := opt.Metrics
	if metrics == nil {
		metrics = obs.NewMetrics()
	}

	journal := store.NewJournal(opt.Sink, opt.Account)
	journal.SetMinLevel(opt.LogLevel)
	queue := bus.NewQueue(opt.Config.queueCapacity())
	e := &Engine{
		cfg:         opt.Config,
		account:     opt.Account,
		queue:       queue,
		loop:        bus.NewLoop(queue),
		journal:     journal,
		ledger:      oms.New(journal),
		gate:        risk.New(opt.Thresholds, journal),
		router:      router.New(),
		metrics:     metrics,
		subscribed:  make(model.SymbolSet),
		algos:       make(map[string]algo.Algo),
		algoIDs:     make(map[string]model.StrategyID),
		initialized: make(map[model.StrategyID]uint64),
	}

	pusher := e.pusher()
	market, err := opt.Registry.NewMarket(opt.Market, pusher)
	if err != nil {
		return nil, errors.Wrap(err, "build market adapter")
	}
	trade, err := opt.Registry.NewTrade(opt.Trade, pusher)
	if err != nil {
		return nil, errors.Wrap(err, "build trade adapter")
	}
	e.market, e.trade = market, trade

	e.gate.SetObserver(metrics)
	e.loop.SetObserver(metrics)
	e.loop.SetGuard(&e.mu)
	e.registerHandlers()
	return e, nil
}

func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	if old := State(e.state.Swap(uint32(s))); old != s {
		logs.Infof("engine state %s -> %s", old, s)
	}
}

func (e *Engine) Metrics() *obs.Metrics   { return e.metrics }
func (e *Engine) Journal() *store.Journal { return e.journal }
func (e *Engine) Gate() *risk.Gate        { return e.gate }

// Pusher returns the push callbacks feeding the event queue.
func (e *Engine) Pusher() gateway.Pusher {
	return e.pusher()
}

// Poll dispatches at most one queued event when the session dispatches events.
func (e *Engine) Poll() bool {
	if !e.State().Dispatching() {
		return false
	}
	return e.loop.Step()
}

// Run drives the event loop until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	logs.Infof("engine loop started, interval %s", e.cfg.loopInterval())
	e.loop.Run(ctx, e.cfg.loopInterval(), func() bool {
		return e.State().Dispatching()
	})
	logs.Infof("engine loop stopped")
}

// Close stops a running session, closes the event queue and the store sink.
func (e *Engine) Close(ctx context.Context) error {
	if e.State() != StateNotTrading {
		if err := e.StopTrading(ctx); err != nil {
			logs.Warnf("stop trading on close, err: %+v", err)
		}
	}
	e.queue.Close()
	return e.journal.Sink().Close()
}

// post runs fn on the event loop goroutine.
func (e *Engine) post(fn func()) error {
	err := e.queue.TryPublish(bus.CallEvent(fn))
	if err != nil {
		e.pusher().count(err)
	}
	return err
}

func (e *Engine) pusher() queuePusher {
	return queuePusher{queue: e.queue, metrics: e.metrics}
}

func (e *Engine) registerHandlers() {
	e.loop.Register(bus.KindTick, func(ev bus.Event) { e.handleTick(*ev.Tick) })
	e.loop.Register(bus.KindBar, func(ev bus.Event) { e.handleBar(*ev.Bar) })
	e.loop.Register(bus.KindTrade, func(ev bus.Event) { e.handleTrade(*ev.Trade) })
	e.loop.Register(bus.KindCancel, func(ev bus.Event) { e.handleCancel(*ev.Cancel) })
	e.loop.Register(bus.KindOrderError, func(ev bus.Event) { e.handleError(*ev.Error) })
	e.loop.Register(bus.KindAlgoReq, func(ev bus.Event) { e.handleAlgoReq(*ev.Algo) })
	e.loop.Register(bus.KindMarketDisconnected, func(bus.Event) { e.handleMarketDisconnected() })
	e.loop.Register(bus.KindTradeDisconnected, func(bus.Event) { e.handleTradeDisconnected() })
}

func (e *Engine) handleTick(tick model.TickData) {
	if !e.gate.CheckHandleTick(tick) {
		return
	}
	e.ledger.HandleTick(tick)
	e.router.HandleTick(tick)
}

func (e *Engine) handleBar(bar model.BarData) {
	if !e.gate.CheckHandleBar(bar) {
		return
	}
	e.router.HandleBar(bar)
}

func (e *Engine) handleTrade(trade model.TradeData) {
	if !e.gate.CheckHandleTrade(trade) {
		return
	}
	e.ledger.HandleTrade(trade)
	e.router.HandleTrade(trade)
}

func (e *Engine) handleCancel(cancel model.CancelData) {
	if !e.gate.CheckHandleCancel(cancel) {
		return
	}
	e.ledger.HandleCancel(cancel)
	e.router.HandleCancel(cancel)
}

func (e *Engine) handleError(oe model.OrderError) {
	if !e.gate.CheckHandleError(oe) {
		return
	}
	e.ledger.HandleError(oe)
	e.router.HandleError(oe)
}

func (e *Engine) handleAlgoReq(req model.AlgoReq) {
	e.strategiesMu.RLock()
	a, ok := e.algos[req.Symbol.Key()]
	e.strategiesMu.RUnlock()
	if !ok {
		logs.Warnf("drop algo req %+v, no algo for symbol %s", req, req.Symbol)
		return
	}
	a.OnAlgoReq(req)
}
