package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"rookie/internal/gateway"
	"rookie/internal/model"
	"rookie/internal/model/enum"
	"rookie/internal/obs"
	"rookie/internal/risk"
	"rookie/internal/store"
)

const day = uint32(20240102)

var (
	rb = model.NewSymbol("rb2410", enum.ExchangeSHFE, enum.ProductClassFuture)
	au = model.NewSymbol("au2412", enum.ExchangeSHFE, enum.ProductClassFuture)
	ag = model.NewSymbol("ag2412", enum.ExchangeSHFE, enum.ProductClassFuture)
)

func detailOf(s model.Symbol) model.SymbolDetail {
	return model.SymbolDetail{
		Symbol:          s,
		ProductClass:    s.ProductClass,
		PriceTick:       1,
		MaxBuyVolume:    100,
		MaxSellVolume:   100,
		UpperLimitPrice: 4000,
		LowerLimitPrice: 3000,
	}
}

// popErr returns the first queued error and shifts the queue.
func popErr(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

type fakeMarket struct {
	mu         sync.Mutex
	pusher     gateway.Pusher
	symbols    []model.Symbol
	loginErrs  []error
	detailsErr error
	subErr     error
	logins     int
	logouts    int
	subscribes [][]model.Symbol
}

func (m *fakeMarket) Login(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins++
	return popErr(&m.loginErrs)
}

func (m *fakeMarket) Logout(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logouts++
	return nil
}

func (m *fakeMarket) Subscribe(_ context.Context, symbols []model.Symbol) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subErr != nil {
		return m.subErr
	}
	m.subscribes = append(m.subscribes, symbols)
	return nil
}

func (m *fakeMarket) Unsubscribe(context.Context, []model.Symbol) error {
	return nil
}

func (m *fakeMarket) QuerySymbolDetails(context.Context) (model.SymbolDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.detailsErr != nil {
		return nil, m.detailsErr
	}
	details := make(model.SymbolDetails, len(m.symbols))
	for _, s := range m.symbols {
		d := detailOf(s)
		details[s.Key()] = &d
	}
	return details, nil
}

func (m *fakeMarket) setSymbols(symbols ...model.Symbol) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols = symbols
}

func (m *fakeMarket) lastSubscribe() []model.Symbol {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.subscribes) == 0 {
		return nil
	}
	return m.subscribes[len(m.subscribes)-1]
}

func (m *fakeMarket) loginCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logins
}

type insert struct {
	ref model.OrderRef
	req model.OrderReq
}

type fakeTrade struct {
	mu           sync.Mutex
	pusher       gateway.Pusher
	positions    []model.PositionData
	orders       []model.OrderData
	account      model.AccountData
	loginErrs    []error
	loginHold    chan struct{}
	positionsErr error
	logins       int
	logouts      int
	inserts      []insert
	cancels      []model.OrderRef
}

// Login waits on loginHold when it is set.
func (f *fakeTrade) Login(context.Context) error {
	f.mu.Lock()
	hold := f.loginHold
	f.mu.Unlock()
	if hold != nil {
		<-hold
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	return popErr(&f.loginErrs)
}

func (f *fakeTrade) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return nil
}

func (f *fakeTrade) QueryTradingDay(context.Context) (uint32, error) {
	return day, nil
}

func (f *fakeTrade) QueryPositions(context.Context) (model.Positions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.positionsErr != nil {
		return nil, f.positionsErr
	}
	positions := make(model.Positions, len(f.positions))
	for _, p := range f.positions {
		positions[p.Symbol.Key()] = &p
	}
	return positions, nil
}

func (f *fakeTrade) QueryOrders(context.Context) ([]model.OrderData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.OrderData(nil), f.orders...), nil
}

func (f *fakeTrade) QueryTrades(context.Context) ([][]model.TradeData, error) {
	return nil, nil
}

func (f *fakeTrade) QueryAccount(context.Context) (model.AccountData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.account, nil
}

func (f *fakeTrade) OrderInsert(ref model.OrderRef, req model.OrderReq) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts = append(f.inserts, insert{ref: ref, req: req})
}

func (f *fakeTrade) OrderCancel(ref model.OrderRef) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, ref)
}

func (f *fakeTrade) insertList() []insert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]insert(nil), f.inserts...)
}

// spy records what the engine delivers.
type spy struct {
	BaseStrategy
	symbols []model.Symbol
	inits   []uint32
	ticks   []model.TickData
	trades  []model.TradeData
	cancels []model.CancelData
	errs    []model.OrderError
}

func (p *spy) OnInit(tradingDay uint32) []model.Symbol {
	p.inits = append(p.inits, tradingDay)
	return p.symbols
}

func (p *spy) OnTick(t model.TickData)     { p.ticks = append(p.ticks, t) }
func (p *spy) OnTrade(t model.TradeData)   { p.trades = append(p.trades, t) }
func (p *spy) OnCancel(c model.CancelData) { p.cancels = append(p.cancels, c) }
func (p *spy) OnError(e model.OrderError)  { p.errs = append(p.errs, e) }

type harness struct {
	engine   *Engine
	market   *fakeMarket
	trade    *fakeTrade
	recorder *store.Recorder
}

func newHarness(t *testing.T, market *fakeMarket, trade *fakeTrade) *harness {
	t.Helper()

	registry := gateway.NewRegistry()
	registry.RegisterMarket("fake", func(_ gateway.Config, p gateway.Pusher) (gateway.MarketAdapter, error) {
		market.pusher = p
		return market, nil
	})
	registry.RegisterTrade("fake", func(_ gateway.Config, p gateway.Pusher) (gateway.TradeAdapter, error) {
		trade.pusher = p
		return trade, nil
	})

	rec := store.NewRecorder()
	e, err := New(Options{
		Config:     Config{EventQueueCapacity: 64, QueryIntervalMillis: -1},
		Account:    "acc",
		Thresholds: risk.Thresholds{DailyOrderNum: 100, DailyCancelNum: 100, DailyRepeatOrderNum: 100},
		Market:     gateway.Config{AdapterName: "fake"},
		Trade:      gateway.Config{AdapterName: "fake"},
		Registry:   registry,
		Sink:       rec,
		Metrics:    obs.NewMetrics(),
	})
	require.NoError(t, err)
	return &harness{engine: e, market: market, trade: trade, recorder: rec}
}

// drain dispatches every queued event.
func (h *harness) drain() {
	for h.engine.Poll() {
	}
}
