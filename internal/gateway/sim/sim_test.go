package sim

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"rookie/internal/gateway"
	"rookie/internal/model"
	"rookie/internal/model/enum"
	"rookie/pkg/exception"
)

const day uint32 = 20240102

var (
	rb  = model.NewSymbol("rb2410", enum.ExchangeSHFE, enum.ProductClassFuture)
	au  = model.NewSymbol("au2412", enum.ExchangeSHFE, enum.ProductClassFuture)
	etf = model.NewSymbol("510300", enum.ExchangeSSE, enum.ProductClassETF)
)

func detailOf(s model.Symbol) model.SymbolDetail {
	return model.SymbolDetail{
		Symbol:              s,
		ProductClass:        s.ProductClass,
		PriceTick:           1,
		Multiplier:          10,
		MaxBuyVolume:        100,
		MaxSellVolume:       100,
		UpperLimitPrice:     4000,
		LowerLimitPrice:     3000,
		OpenFeeRateByMoney:  0.0001,
		CloseFeeRateByMoney: 0.0001,
	}
}

type recorder struct {
	mu          sync.Mutex
	ticks       []model.TickData
	trades      []model.TradeData
	cancels     []model.CancelData
	errs        []model.OrderError
	marketDowns int
	tradeDowns  int
}

func (r *recorder) PushTick(t model.TickData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, t)
}

func (r *recorder) PushBar(model.BarData) {}

func (r *recorder) PushTrade(t model.TradeData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = append(r.trades, t)
}

func (r *recorder) PushCancel(c model.CancelData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels = append(r.cancels, c)
}

func (r *recorder) PushOrderError(e model.OrderError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, e)
}

func (r *recorder) PushMarketDisconnected() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marketDowns++
}

func (r *recorder) PushTradeDisconnected() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tradeDowns++
}

func newVenue(t *testing.T, pageSize int) *Venue {
	t.Helper()
	v := NewVenue(VenueConfig{
		TradingDay: day,
		Balance:    1_000_000,
		Symbols:    []model.SymbolDetail{detailOf(rb), detailOf(au), detailOf(etf)},
		Prices:     map[string]float64{rb.Key(): 3500},
		PageSize:   pageSize,
	})
	t.Cleanup(v.Close)
	return v
}

func loggedInTrade(t *testing.T, v *Venue) (*TradeAdapter, *recorder) {
	t.Helper()
	rec := &recorder{}
	trade := NewTradeAdapter(v, gateway.Config{AdapterName: Name}, rec)
	require.NoError(t, trade.Login(context.Background()))
	return trade, rec
}

func TestQuerySymbolDetailsPaginatesAndFilters(t *testing.T) {
	v := newVenue(t, 1)
	ctx := context.Background()

	all := NewMarketAdapter(v, gateway.Config{AdapterName: Name}, &recorder{})
	_, err := all.QuerySymbolDetails(ctx)
	require.ErrorIs(t, err, exception.ErrGatewayNotLoggedIn)

	require.NoError(t, all.Login(ctx))
	details, err := all.QuerySymbolDetails(ctx)
	require.NoError(t, err)
	require.Len(t, details, 3)

	futures := NewMarketAdapter(v, gateway.Config{AdapterName: Name, Exchanges: []enum.Exchange{enum.ExchangeSHFE}}, &recorder{})
	require.NoError(t, futures.Login(ctx))
	details, err = futures.QuerySymbolDetails(ctx)
	require.NoError(t, err)
	require.Len(t, details, 2)
	require.Contains(t, details, rb.Key())
	require.NotContains(t, details, etf.Key())
}

func TestTicksReachSubscribers(t *testing.T) {
	v := newVenue(t, 0)
	ctx := context.Background()
	rec := &recorder{}
	market := NewMarketAdapter(v, gateway.Config{AdapterName: Name}, rec)

	require.ErrorIs(t, market.Subscribe(ctx, []model.Symbol{rb}), exception.ErrGatewayNotLoggedIn)
	require.NoError(t, market.Login(ctx))
	require.NoError(t, market.Subscribe(ctx, []model.Symbol{rb}))
	require.Equal(t, []model.Symbol{rb}, market.Subscribed())

	require.NoError(t, v.SetPrice(rb.Key(), 3510))
	require.NoError(t, v.SetPrice(au.Key(), 500))
	require.NoError(t, market.Unsubscribe(ctx, nil))
	require.NoError(t, v.SetPrice(rb.Key(), 3520))
	_, err := market.QuerySymbolDetails(ctx)
	require.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.ticks, 1)
	require.Equal(t, 3510.0, rec.ticks[0].LastPrice)
	require.Equal(t, day, rec.ticks[0].TradingDay)
	require.Equal(t, []model.Level{{Price: 3509, Volume: 1}}, rec.ticks[0].Bids)
}

func TestMarketableOrderFills(t *testing.T) {
	v := newVenue(t, 0)
	ctx := context.Background()
	trade, rec := loggedInTrade(t, v)

	trade.OrderInsert(0, model.OrderReq{Symbol: rb, LimitPrice: 3505, Volume: 2, Direction: enum.DirectionLong, Offset: enum.OffsetOpen})

	orders, err := trade.QueryOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, uint32(2), orders[0].TradedVolume)
	require.True(t, orders[0].IsFinished())
	require.False(t, orders[0].IsRejected())

	rec.mu.Lock()
	require.Len(t, rec.trades, 1)
	fill := rec.trades[0]
	rec.mu.Unlock()
	require.Equal(t, 3500.0, fill.TradePrice)
	require.NotEmpty(t, fill.TradeID)
	require.Equal(t, 7.0, fill.Fee)

	positions, err := trade.QueryPositions(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(2), positions[rb.Key()].Long.Position)

	acc, err := trade.QueryAccount(ctx)
	require.NoError(t, err)
	require.Equal(t, 7.0, acc.Commission)
	require.Equal(t, 999_993.0, acc.Balance)

	trades, err := trade.QueryTrades(ctx)
	require.NoError(t, err)
	require.Equal(t, [][]model.TradeData{{fill}}, trades)
}

func TestRestingOrderFillsWhenPriceCrosses(t *testing.T) {
	v := newVenue(t, 0)
	ctx := context.Background()
	trade, rec := loggedInTrade(t, v)

	trade.OrderInsert(0, model.OrderReq{Symbol: rb, LimitPrice: 3490, Volume: 1, Direction: enum.DirectionLong, Offset: enum.OffsetOpen})
	orders, err := trade.QueryOrders(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(1), orders[0].RemainVolume)

	require.NoError(t, v.SetPrice(rb.Key(), 3495))
	require.NoError(t, v.SetPrice(rb.Key(), 3488))
	orders, err = trade.QueryOrders(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(1), orders[0].TradedVolume)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.trades, 1)
	require.Equal(t, 3488.0, rec.trades[0].TradePrice)
}

func TestOrderCancel(t *testing.T) {
	v := newVenue(t, 0)
	ctx := context.Background()
	trade, rec := loggedInTrade(t, v)

	trade.OrderInsert(0, model.OrderReq{Symbol: rb, LimitPrice: 3400, Volume: 3, Direction: enum.DirectionLong, Offset: enum.OffsetOpen})
	trade.OrderCancel(0)
	trade.OrderCancel(0)
	trade.OrderCancel(9)

	orders, err := trade.QueryOrders(ctx)
	require.NoError(t, err)
	require.Equal(t, uint32(3), orders[0].CanceledVolume)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, []model.CancelData{{OrderRef: 0, CancelVolume: 3, TradingDay: day, CancelTime: rec.cancels[0].CancelTime}}, rec.cancels)
	require.Len(t, rec.errs, 2)
	for _, e := range rec.errs {
		require.Equal(t, enum.ErrorTypeOrderCancel, e.ErrorType)
	}
}

func TestRejectedInsertKeepsOrderTableDense(t *testing.T) {
	v := newVenue(t, 2)
	ctx := context.Background()
	trade, rec := loggedInTrade(t, v)

	unknown := model.NewSymbol("zz", enum.ExchangeSHFE, enum.ProductClassFuture)
	trade.OrderInsert(0, model.OrderReq{Symbol: unknown, LimitPrice: 1, Volume: 1, Direction: enum.DirectionLong, Offset: enum.OffsetOpen})
	trade.OrderInsert(1, model.OrderReq{Symbol: rb, LimitPrice: 3400, Volume: 1, Direction: enum.DirectionShort, Offset: enum.OffsetClose})
	trade.OrderInsert(2, model.OrderReq{Symbol: rb, LimitPrice: 3400, Volume: 1, Direction: enum.DirectionLong, Offset: enum.OffsetOpen})

	orders, err := trade.QueryOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	require.True(t, orders[0].IsRejected())
	require.True(t, orders[1].IsRejected())
	require.False(t, orders[2].IsFinished())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.errs, 2)
	require.Equal(t, "unknown symbol", rec.errs[0].ErrorMsg)
	require.Equal(t, "insufficient position", rec.errs[1].ErrorMsg)
}

func TestCloseFreezesPosition(t *testing.T) {
	v := newVenue(t, 0)
	ctx := context.Background()
	trade, _ := loggedInTrade(t, v)

	trade.OrderInsert(0, model.OrderReq{Symbol: rb, LimitPrice: 3500, Volume: 2, Direction: enum.DirectionLong, Offset: enum.OffsetOpen})
	trade.OrderInsert(1, model.OrderReq{Symbol: rb, LimitPrice: 3600, Volume: 2, Direction: enum.DirectionShort, Offset: enum.OffsetClose})

	positions, err := trade.QueryPositions(ctx)
	require.NoError(t, err)
	require.Equal(t, model.PositionInfo{Position: 2, Frozen: 2}, positions[rb.Key()].Long)

	require.NoError(t, v.SetPrice(rb.Key(), 3600))
	positions, err = trade.QueryPositions(ctx)
	require.NoError(t, err)
	require.Equal(t, model.PositionInfo{}, positions[rb.Key()].Long)
}

func TestDisconnect(t *testing.T) {
	v := newVenue(t, 0)
	ctx := context.Background()
	rec := &recorder{}
	market := NewMarketAdapter(v, gateway.Config{AdapterName: Name}, rec)
	trade := NewTradeAdapter(v, gateway.Config{AdapterName: Name}, rec)
	require.NoError(t, market.Login(ctx))
	require.NoError(t, trade.Login(ctx))

	v.SetOnline(false)
	v.Disconnect()
	v.Disconnect()

	rec.mu.Lock()
	require.Equal(t, 1, rec.marketDowns)
	require.Equal(t, 1, rec.tradeDowns)
	rec.mu.Unlock()

	require.ErrorIs(t, market.Login(ctx), exception.ErrGatewayDisconnected)
	_, err := trade.QueryTradingDay(ctx)
	require.ErrorIs(t, err, exception.ErrGatewayNotLoggedIn)

	v.SetOnline(true)
	require.NoError(t, trade.Login(ctx))
	got, err := trade.QueryTradingDay(ctx)
	require.NoError(t, err)
	require.Equal(t, day, got)
}

func TestClosedVenueFailsCalls(t *testing.T) {
	v := newVenue(t, 0)
	rec := &recorder{}
	trade := NewTradeAdapter(v, gateway.Config{AdapterName: Name}, rec)
	v.Close()

	require.ErrorIs(t, trade.Login(context.Background()), exception.ErrGatewayDisconnected)
	trade.OrderInsert(0, model.OrderReq{Symbol: rb, Volume: 1})
	require.Len(t, rec.errs, 1)
	require.Equal(t, enum.ErrorTypeOrderInsert, rec.errs[0].ErrorType)
}

func TestFee(t *testing.T) {
	d := detailOf(rb)
	d.CloseTodayFeeRateByVolume = 1.5
	require.Equal(t, "7", Fee(&d, enum.OffsetOpen, 3500, 2).String())
	require.Equal(t, "3", Fee(&d, enum.OffsetCloseToday, 3500, 2).String())

	d.Multiplier = 0
	require.Equal(t, "0.35", Fee(&d, enum.OffsetClose, 3500, 1).String())
}

func TestRegister(t *testing.T) {
	v := newVenue(t, 0)
	registry := gateway.NewRegistry()
	Register(registry, v)

	market, err := registry.NewMarket(gateway.Config{AdapterName: Name}, &recorder{})
	require.NoError(t, err)
	require.IsType(t, &MarketAdapter{}, market)

	trade, err := registry.NewTrade(gateway.Config{AdapterName: Name}, &recorder{})
	require.NoError(t, err)
	require.IsType(t, &TradeAdapter{}, trade)
}

func TestWalkerStaysOnTheGrid(t *testing.T) {
	v := newVenue(t, 0)
	w, err := NewWalker(v, 1)
	require.NoError(t, err)

	for range 200 {
		symbol, price, err := w.Step()
		require.NoError(t, err)
		require.Equal(t, rb.Key(), symbol)
		require.GreaterOrEqual(t, price, 3000.0)
		require.LessOrEqual(t, price, 4000.0)
		require.Equal(t, price, float64(int(price)))
	}

	empty := NewVenue(VenueConfig{})
	defer empty.Close()
	_, err = NewWalker(empty, 1)
	require.ErrorIs(t, err, exception.ErrInvalidConfig)
}
