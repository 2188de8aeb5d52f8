package gateway

import (
	"sync"

	"github.com/yanun0323/errors"

	"rookie/pkg/exception"
)

type (
	MarketFactory func(cfg Config, p Pusher) (MarketAdapter, error)
	TradeFactory  func(cfg Config, p Pusher) (TradeAdapter, error)
)

// Registry maps adapter names to constructors.
type Registry struct {
	mu     sync.RWMutex
	market map[string]MarketFactory
	trade  map[string]TradeFactory
}

func NewRegistry() *Registry {
	return &Registry{
		market: make(map[string]MarketFactory),
		trade:  make(map[string]TradeFactory),
	}
}

func (r *Registry) RegisterMarket(name string, f MarketFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.market[name] = f
}

func (r *Registry) RegisterTrade(name string, f TradeFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trade[name] = f
}

// NewMarket builds the market adapter named by cfg.AdapterName.
func (r *Registry) NewMarket(cfg Config, p Pusher) (MarketAdapter, error) {
	if p == nil {
		return nil, exception.ErrGatewayNilPusher
	}
	r.mu.RLock()
	f, ok := r.market[cfg.AdapterName]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(exception.ErrGatewayUnknown, "market adapter: %s", cfg.AdapterName)
	}
	adapter, err := f(cfg, p)
	if err != nil {
		return nil, errors.Wrapf(err, "create market adapter %s", cfg.AdapterName)
	}
	return adapter, nil
}

// NewTrade builds the trade adapter named by cfg.AdapterName.
func (r *Registry) NewTrade(cfg Config, p Pusher) (TradeAdapter, error) {
	if p == nil {
		return nil, exception.ErrGatewayNilPusher
	}
	r.mu.RLock()
	f, ok := r.trade[cfg.AdapterName]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(exception.ErrGatewayUnknown, "trade adapter: %s", cfg.AdapterName)
	}
	adapter, err := f(cfg, p)
	if err != nil {
		return nil, errors.Wrapf(err, "create trade adapter %s", cfg.AdapterName)
	}
	return adapter, nil
}
