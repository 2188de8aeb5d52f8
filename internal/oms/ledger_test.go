package oms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rookie/internal/model"
	"rookie/internal/model/enum"
	"rookie/internal/store"
)

var rb = model.NewSymbol("rb2410", enum.ExchangeSHFE, enum.ProductClassFuture)

func newLedger(t *testing.T, orders int) (*Ledger, *store.Recorder) {
	t.Helper()

	rec := store.NewRecorder()
	l := New(store.NewJournal(rec, "acc"))
	l.SetMarketInfo(model.NewMarketInfo(20240102, model.SymbolDetails{
		rb.Key(): {Symbol: rb, PriceTick: 1, MaxBuyVolume: 100, MaxSellVolume: 100, UpperLimitPrice: 4000, LowerLimitPrice: 3000},
	}))

	seed := make([]model.OrderData, orders)
	for i := range seed {
		seed[i] = model.OrderData{
			OrderRef:       model.OrderRef(i),
			OrderReq:       model.OrderReq{Symbol: rb, LimitPrice: 3400, Volume: 1, Direction: enum.DirectionShort, Offset: enum.OffsetOpen},
			TradingDay:     20240102,
			CanceledVolume: 1,
		}
	}
	l.SetTradeInfo(model.NewTradeInfo("acc", nil, seed, nil, model.AccountData{}))
	return l, rec
}

func req(direction enum.Direction, offset enum.Offset, volume uint32) model.OrderReq {
	return model.OrderReq{Symbol: rb, LimitPrice: 3500, Volume: volume, Direction: direction, Offset: offset}
}

func TestSetTradeInfoSynthesizesPositions(t *testing.T) {
	l, _ := newLedger(t, 3)

	p, ok := l.TradeInfo().Position(rb)
	require.True(t, ok)
	assert.True(t, p.Empty())
	assert.Len(t, l.TradeInfo().Trades, 3)
}

func TestQuadrant(t *testing.T) {
	testCases := []struct {
		desc      string
		direction enum.Direction
		offset    enum.Offset
		want      func(p model.PositionData) uint32
	}{
		{"long open", enum.DirectionLong, enum.OffsetOpen, func(p model.PositionData) uint32 { return p.Long.Pending }},
		{"long close", enum.DirectionLong, enum.OffsetClose, func(p model.PositionData) uint32 { return p.Short.Frozen }},
		{"long close today", enum.DirectionLong, enum.OffsetCloseToday, func(p model.PositionData) uint32 { return p.Short.Frozen }},
		{"short open", enum.DirectionShort, enum.OffsetOpen, func(p model.PositionData) uint32 { return p.Short.Pending }},
		{"short close yesterday", enum.DirectionShort, enum.OffsetCloseYesterday, func(p model.PositionData) uint32 { return p.Long.Frozen }},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			l, _ := newLedger(t, 0)
			l.OrderInsert(req(tc.direction, tc.offset, 5))

			p, _ := l.TradeInfo().Position(rb)
			assert.Equal(t, uint32(5), tc.want(*p))
			p.Long.Pending, p.Long.Frozen, p.Short.Pending, p.Short.Frozen = 0, 0, 0, 0
			assert.True(t, p.Empty(), "only one counter moves")
		})
	}
}

func TestOrderInsertThenTrade(t *testing.T) {
	l, rec := newLedger(t, 7)

	ref := l.OrderInsert(req(enum.DirectionLong, enum.OffsetOpen, 1))
	require.Equal(t, model.OrderRef(7), ref)

	p, _ := l.TradeInfo().Position(rb)
	require.Equal(t, uint32(1), p.Long.Pending)

	l.HandleTrade(model.TradeData{OrderRef: 7, TradeID: "T1", TradePrice: 3500, TradeVolume: 1, TradingDay: 20240102})

	order := l.TradeInfo().Order(7)
	assert.Equal(t, uint32(0), order.RemainVolume)
	assert.Equal(t, uint32(1), order.TradedVolume)
	assert.True(t, order.IsFinished())
	assert.Equal(t, uint32(1), p.Long.Position)
	assert.Equal(t, uint32(0), p.Long.Pending)
	assert.Len(t, l.TradeInfo().Trades[7], 1)

	assert.Len(t, rec.LogsOf(EventOrderInsert), 1)
	assert.Len(t, rec.LogsOf(EventHandleTrade), 1)
	assert.Len(t, rec.Trades(), 1)
	assert.Len(t, rec.Orders(), 1)
}

func TestReservationSymmetry(t *testing.T) {
	t.Run("partial fill then cancel", func(t *testing.T) {
		l, _ := newLedger(t, 0)
		p, _ := l.TradeInfo().Position(rb)
		p.Short.Position = 10

		ref := l.OrderInsert(req(enum.DirectionLong, enum.OffsetClose, 6))
		assert.Equal(t, uint32(6), p.Short.Frozen)

		l.HandleTrade(model.TradeData{OrderRef: ref, TradeVolume: 2})
		l.HandleCancel(model.CancelData{OrderRef: ref, CancelVolume: 4})

		order := l.TradeInfo().Order(ref)
		assert.True(t, order.IsFinished())
		assert.False(t, order.IsRejected())
		assert.Equal(t, uint32(0), p.Short.Frozen)
		assert.Equal(t, uint32(8), p.Short.Position)
	})

	t.Run("insert error", func(t *testing.T) {
		l, _ := newLedger(t, 0)
		ref := l.OrderInsert(req(enum.DirectionShort, enum.OffsetOpen, 3))
		l.HandleError(model.OrderError{OrderRef: ref, ErrorType: enum.ErrorTypeOrderInsert, ErrorMsg: "rejected"})

		p, _ := l.TradeInfo().Position(rb)
		order := l.TradeInfo().Order(ref)
		assert.True(t, p.Empty())
		assert.Equal(t, uint32(0), order.RemainVolume)
		assert.True(t, order.IsRejected())
		assert.True(t, order.IsFinished())
	})

	t.Run("cancel error leaves order live", func(t *testing.T) {
		l, rec := newLedger(t, 0)
		ref := l.OrderInsert(req(enum.DirectionLong, enum.OffsetOpen, 3))
		l.HandleError(model.OrderError{OrderRef: ref, ErrorType: enum.ErrorTypeOrderCancel})

		p, _ := l.TradeInfo().Position(rb)
		assert.Equal(t, uint32(3), p.Long.Pending)
		assert.Equal(t, uint32(3), l.TradeInfo().Order(ref).RemainVolume)
		assert.Len(t, rec.LogsOf(EventHandleError), 1)
	})
}

func TestUnderflowSaturates(t *testing.T) {
	l, rec := newLedger(t, 0)
	ref := l.OrderInsert(req(enum.DirectionShort, enum.OffsetClose, 2))

	l.HandleTrade(model.TradeData{OrderRef: ref, TradeVolume: 2})

	p, _ := l.TradeInfo().Position(rb)
	assert.Equal(t, uint32(0), p.Long.Position)
	assert.Equal(t, uint32(0), p.Long.Frozen)
	assert.Len(t, rec.LogsOf(EventUnderflow), 1)
}

func TestHandleTickAndUnknownRef(t *testing.T) {
	l, rec := newLedger(t, 0)

	l.HandleTick(model.TickData{Symbol: rb, LastPrice: 3512})
	tick, ok := l.MarketInfo().LastTick(rb)
	require.True(t, ok)
	assert.Equal(t, 3512.0, tick.LastPrice)

	l.OrderCancel(3)
	l.HandleTrade(model.TradeData{OrderRef: 3, TradeVolume: 1})
	assert.Empty(t, rec.Logs())
}
