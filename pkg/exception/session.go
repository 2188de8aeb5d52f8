package exception

import "errors"

// Session errors
var (
	ErrSessionAlreadyTrading = errors.New("session: already trading")
	ErrSessionNotTrading     = errors.New("session: not trading")
	ErrSessionLoginTrade     = errors.New("session: login trade failed")
	ErrSessionLoginMarket    = errors.New("session: login market failed")
	ErrSessionHydrateMarket  = errors.New("session: hydrate market info failed")
	ErrSessionHydrateTrade   = errors.New("session: hydrate trade info failed")
	ErrSessionSubscribe      = errors.New("session: subscribe failed")
	ErrSessionUnknownStrat   = errors.New("session: strategy not found")
)
