package gateway

import (
	"context"

	"rookie/internal/model"
)

// MarketAdapter is the market data side of a venue integration.
// Every method blocks until the venue answers or the adapter timeout expires.
type MarketAdapter interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Subscribe(ctx context.Context, symbols []model.Symbol) error
	Unsubscribe(ctx context.Context, symbols []model.Symbol) error
	QuerySymbolDetails(ctx context.Context) (model.SymbolDetails, error)
}

// TradeAdapter is the execution side of a venue integration.
// OrderInsert and OrderCancel never block; their outcome arrives later through
// the Pusher as trade, cancel or order error events.
type TradeAdapter interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	QueryTradingDay(ctx context.Context) (uint32, error)
	QueryPositions(ctx context.Context) (model.Positions, error)
	QueryOrders(ctx context.Context) ([]model.OrderData, error)
	QueryTrades(ctx context.Context) ([][]model.TradeData, error)
	QueryAccount(ctx context.Context) (model.AccountData, error)
	OrderInsert(ref model.OrderRef, req model.OrderReq)
	OrderCancel(ref model.OrderRef)
}

// Pusher receives live venue data. Implementations must not block the caller,
// which is usually a venue callback goroutine.
type Pusher interface {
	PushTick(model.TickData)
	PushBar(model.BarData)
	PushTrade(model.TradeData)
	PushCancel(model.CancelData)
	PushOrderError(model.OrderError)
	PushMarketDisconnected()
	PushTradeDisconnected()
}
