package sim

import (
	"context"
	"sync"
	"sync/atomic"

	"rookie/internal/gateway"
	"rookie/internal/model"
	"rookie/pkg/exception"
)

var _ gateway.MarketAdapter = (*MarketAdapter)(nil)

// MarketAdapter serves quotes of the venue. Ticks of subscribed symbols are
// pushed from the venue goroutine.
type MarketAdapter struct {
	venue    *Venue
	cfg      gateway.Config
	pusher   gateway.Pusher
	loggedIn atomic.Bool

	mu   sync.Mutex
	subs model.SymbolSet

	login     *gateway.Call[struct{}]
	logout    *gateway.Call[struct{}]
	subscribe *gateway.Call[struct{}]
	unsub     *gateway.Call[struct{}]
	details   *gateway.Call[model.SymbolDetails]
}

func NewMarketAdapter(v *Venue, cfg gateway.Config, p gateway.Pusher) *MarketAdapter {
	m := &MarketAdapter{
		venue:     v,
		cfg:       cfg,
		pusher:    p,
		subs:      make(model.SymbolSet),
		login:     gateway.NewCall[struct{}](nil),
		logout:    gateway.NewCall[struct{}](nil),
		subscribe: gateway.NewCall[struct{}](nil),
		unsub:     gateway.NewCall[struct{}](nil),
		details:   gateway.NewCall(gateway.MergeMap[model.SymbolDetails]),
	}
	v.attachMarket(m)
	return m
}

func (m *MarketAdapter) Login(ctx context.Context) error {
	_, err := call(ctx, m.venue, m.login, m.cfg.Timeout(), func() {
		if m.venue.offline.Load() {
			m.login.Fail(exception.ErrGatewayDisconnected)
			return
		}
		m.loggedIn.Store(true)
		m.login.Resolve(struct{}{})
	})
	return err
}

func (m *MarketAdapter) Logout(ctx context.Context) error {
	_, err := call(ctx, m.venue, m.logout, m.cfg.Timeout(), func() {
		m.loggedIn.Store(false)
		m.mu.Lock()
		m.subs = make(model.SymbolSet)
		m.mu.Unlock()
		m.logout.Resolve(struct{}{})
	})
	return err
}

func (m *MarketAdapter) Subscribe(ctx context.Context, symbols []model.Symbol) error {
	_, err := call(ctx, m.venue, m.subscribe, m.cfg.Timeout(), func() {
		if !m.loggedIn.Load() {
			m.subscribe.Fail(exception.ErrGatewayNotLoggedIn)
			return
		}
		m.mu.Lock()
		for _, s := range symbols {
			m.subs.Add(s)
		}
		m.mu.Unlock()
		m.subscribe.Resolve(struct{}{})
	})
	return err
}

// Unsubscribe drops the symbols. An empty list drops every subscription.
func (m *MarketAdapter) Unsubscribe(ctx context.Context, symbols []model.Symbol) error {
	_, err := call(ctx, m.venue, m.unsub, m.cfg.Timeout(), func() {
		m.mu.Lock()
		if len(symbols) == 0 {
			m.subs = make(model.SymbolSet)
		}
		for _, s := range symbols {
			delete(m.subs, s.Key())
		}
		m.mu.Unlock()
		m.unsub.Resolve(struct{}{})
	})
	return err
}

// QuerySymbolDetails answers in pages of the configured size, filtered by
// the exchanges and product classes of the adapter config.
func (m *MarketAdapter) QuerySymbolDetails(ctx context.Context) (model.SymbolDetails, error) {
	return call(ctx, m.venue, m.details, m.cfg.Timeout(), func() {
		if !m.loggedIn.Load() {
			m.details.Fail(exception.ErrGatewayNotLoggedIn)
			return
		}
		details := m.cfg.Filter(m.venue.details)
		keys := sortedKeys(details)
		if len(keys) == 0 {
			m.details.Append(model.SymbolDetails{}, true)
			return
		}
		for start := 0; start < len(keys); start += m.venue.cfg.PageSize {
			end := min(start+m.venue.cfg.PageSize, len(keys))
			page := make(model.SymbolDetails, end-start)
			for _, key := range keys[start:end] {
				d := *details[key]
				page[key] = &d
			}
			m.details.Append(page, end == len(keys))
		}
	})
}

// Subscribed returns the subscribed symbols sorted.
func (m *MarketAdapter) Subscribed() []model.Symbol {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subs.Slice()
}

func (m *MarketAdapter) deliver(tick model.TickData) {
	if !m.loggedIn.Load() {
		return
	}
	m.mu.Lock()
	ok := m.subs.Has(tick.Symbol)
	m.mu.Unlock()
	if ok {
		m.pusher.PushTick(tick)
	}
}

func (m *MarketAdapter) drop() {
	if m.loggedIn.CompareAndSwap(true, false) {
		m.pusher.PushMarketDisconnected()
	}
}
