package sim

import (
	"rookie/internal/gateway"
)

// Register binds both sim adapters of v to the registry under Name.
func Register(r *gateway.Registry, v *Venue) {
	r.RegisterMarket(Name, func(cfg gateway.Config, p gateway.Pusher) (gateway.MarketAdapter, error) {
		return NewMarketAdapter(v, cfg, p), nil
	})
	r.RegisterTrade(Name, func(cfg gateway.Config, p gateway.Pusher) (gateway.TradeAdapter, error) {
		return NewTradeAdapter(v, cfg, p), nil
	})
}
