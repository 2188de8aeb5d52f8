package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rookie/internal/gateway"
	"rookie/internal/gateway/sim"
	"rookie/internal/model"
	"rookie/internal/model/enum"
	"rookie/internal/obs"
	"rookie/internal/risk"
	"rookie/internal/store"
)

func TestSimVenueRoundTrip(t *testing.T) {
	venue := sim.NewVenue(sim.VenueConfig{
		TradingDay: day,
		Balance:    100_000,
		Symbols:    []model.SymbolDetail{detailOf(rb), detailOf(au)},
		PageSize:   1,
	})
	t.Cleanup(venue.Close)

	registry := gateway.NewRegistry()
	sim.Register(registry, venue)
	rec := store.NewRecorder()
	e, err := New(Options{
		Config:     Config{EventQueueCapacity: 64, QueryIntervalMillis: -1},
		Account:    "sim",
		Thresholds: risk.Thresholds{DailyOrderNum: 10, DailyCancelNum: 10, DailyRepeatOrderNum: 10},
		Market:     gateway.Config{AdapterName: sim.Name},
		Trade:      gateway.Config{AdapterName: sim.Name},
		Registry:   registry,
		Sink:       rec,
		Metrics:    obs.NewMetrics(),
	})
	require.NoError(t, err)

	p := &spy{symbols: []model.Symbol{rb}}
	id := e.RegisterStrategy(p)
	ctx := context.Background()
	require.NoError(t, e.StartTrading(ctx))
	require.Equal(t, []uint32{day}, p.inits)
	require.Equal(t, []model.Symbol{au, rb}, e.QueryAllSymbols())

	require.NoError(t, venue.SetPrice(rb.Key(), 3500))
	require.NoError(t, venue.SetPrice(au.Key(), 3600))
	require.Eventually(t, func() bool {
		for e.Poll() {
		}
		return len(p.ticks) == 1
	}, time.Second, time.Millisecond)

	ref, ok := e.OrderInsert(id, model.OrderReq{Symbol: rb, LimitPrice: 3500, Volume: 2, Direction: enum.DirectionLong, Offset: enum.OffsetOpen})
	require.True(t, ok)
	require.Eventually(t, func() bool {
		for e.Poll() {
		}
		return len(p.trades) == 1
	}, time.Second, time.Millisecond)

	position, ok := e.QueryPosition(rb)
	require.True(t, ok)
	require.Equal(t, uint32(2), position.Long.Position)
	order, ok := e.QueryOrder(ref)
	require.True(t, ok)
	require.True(t, order.IsFinished())

	require.NoError(t, e.StopTrading(ctx))
	require.NoError(t, e.StartTrading(ctx))
	position, ok = e.QueryPosition(rb)
	require.True(t, ok)
	require.Equal(t, uint32(2), position.Long.Position)
	order, ok = e.QueryOrder(ref)
	require.True(t, ok)
	require.Equal(t, uint32(2), order.TradedVolume)
	require.NoError(t, e.StopTrading(ctx))
}
