package sim

import (
	"context"
	"sync/atomic"

	"github.com/yanun0323/logs"

	"rookie/internal/gateway"
	"rookie/internal/model"
	"rookie/internal/model/enum"
	"rookie/pkg/exception"
)

var _ gateway.TradeAdapter = (*TradeAdapter)(nil)

// TradeAdapter executes against the venue book. Order refs are taken as
// given, so the venue order table lines up with the caller's.
type TradeAdapter struct {
	venue    *Venue
	cfg      gateway.Config
	pusher   gateway.Pusher
	loggedIn atomic.Bool

	login     *gateway.Call[struct{}]
	logout    *gateway.Call[struct{}]
	day       *gateway.Call[uint32]
	positions *gateway.Call[model.Positions]
	orders    *gateway.Call[[]model.OrderData]
	trades    *gateway.Call[[][]model.TradeData]
	account   *gateway.Call[model.AccountData]
}

func NewTradeAdapter(v *Venue, cfg gateway.Config, p gateway.Pusher) *TradeAdapter {
	t := &TradeAdapter{
		venue:     v,
		cfg:       cfg,
		pusher:    p,
		login:     gateway.NewCall[struct{}](nil),
		logout:    gateway.NewCall[struct{}](nil),
		day:       gateway.NewCall[uint32](nil),
		positions: gateway.NewCall(gateway.MergeMap[model.Positions]),
		orders:    gateway.NewCall(gateway.MergeSlice[[]model.OrderData]),
		trades:    gateway.NewCall[[][]model.TradeData](nil),
		account:   gateway.NewCall[model.AccountData](nil),
	}
	v.attachTrade(t)
	return t
}

func (t *TradeAdapter) Login(ctx context.Context) error {
	_, err := call(ctx, t.venue, t.login, t.cfg.Timeout(), func() {
		if t.venue.offline.Load() {
			t.login.Fail(exception.ErrGatewayDisconnected)
			return
		}
		t.loggedIn.Store(true)
		t.login.Resolve(struct{}{})
	})
	return err
}

func (t *TradeAdapter) Logout(ctx context.Context) error {
	_, err := call(ctx, t.venue, t.logout, t.cfg.Timeout(), func() {
		t.loggedIn.Store(false)
		t.logout.Resolve(struct{}{})
	})
	return err
}

func (t *TradeAdapter) QueryTradingDay(ctx context.Context) (uint32, error) {
	return call(ctx, t.venue, t.day, t.cfg.Timeout(), func() {
		if !t.loggedIn.Load() {
			t.day.Fail(exception.ErrGatewayNotLoggedIn)
			return
		}
		t.day.Resolve(t.venue.cfg.TradingDay)
	})
}

// QueryPositions answers in pages of the configured size.
func (t *TradeAdapter) QueryPositions(ctx context.Context) (model.Positions, error) {
	return call(ctx, t.venue, t.positions, t.cfg.Timeout(), func() {
		if !t.loggedIn.Load() {
			t.positions.Fail(exception.ErrGatewayNotLoggedIn)
			return
		}
		keys := sortedKeys(t.venue.position)
		if len(keys) == 0 {
			t.positions.Append(model.Positions{}, true)
			return
		}
		size := t.venue.cfg.PageSize
		for start := 0; start < len(keys); start += size {
			end := min(start+size, len(keys))
			page := make(model.Positions, end-start)
			for _, key := range keys[start:end] {
				p := *t.venue.position[key]
				page[key] = &p
			}
			t.positions.Append(page, end == len(keys))
		}
	})
}

// QueryOrders answers in pages of the configured size, ordered by ref.
func (t *TradeAdapter) QueryOrders(ctx context.Context) ([]model.OrderData, error) {
	return call(ctx, t.venue, t.orders, t.cfg.Timeout(), func() {
		if !t.loggedIn.Load() {
			t.orders.Fail(exception.ErrGatewayNotLoggedIn)
			return
		}
		rows := t.venue.orderRows()
		if len(rows) == 0 {
			t.orders.Append(nil, true)
			return
		}
		size := t.venue.cfg.PageSize
		for start := 0; start < len(rows); start += size {
			end := min(start+size, len(rows))
			t.orders.Append(rows[start:end], end == len(rows))
		}
	})
}

func (t *TradeAdapter) QueryTrades(ctx context.Context) ([][]model.TradeData, error) {
	return call(ctx, t.venue, t.trades, t.cfg.Timeout(), func() {
		if !t.loggedIn.Load() {
			t.trades.Fail(exception.ErrGatewayNotLoggedIn)
			return
		}
		out := make([][]model.TradeData, len(t.venue.trades))
		for i, fills := range t.venue.trades {
			out[i] = append([]model.TradeData(nil), fills...)
		}
		t.trades.Resolve(out)
	})
}

func (t *TradeAdapter) QueryAccount(ctx context.Context) (model.AccountData, error) {
	return call(ctx, t.venue, t.account, t.cfg.Timeout(), func() {
		if !t.loggedIn.Load() {
			t.account.Fail(exception.ErrGatewayNotLoggedIn)
			return
		}
		acc := t.venue.account
		acc.UpdateTime = t.venue.now()
		t.account.Resolve(acc)
	})
}

func (t *TradeAdapter) OrderInsert(ref model.OrderRef, req model.OrderReq) {
	err := t.venue.submit(func() {
		t.venue.insert(t, ref, req)
	})
	if err != nil {
		t.reject(ref, enum.ErrorTypeOrderInsert, err.Error())
	}
}

func (t *TradeAdapter) OrderCancel(ref model.OrderRef) {
	err := t.venue.submit(func() {
		t.venue.cancel(t, ref)
	})
	if err != nil {
		t.reject(ref, enum.ErrorTypeOrderCancel, err.Error())
	}
}

func (t *TradeAdapter) reject(ref model.OrderRef, typ enum.ErrorType, msg string) {
	logs.Warnf("sim reject order ref %d, %s: %s", ref, typ, msg)
	t.pusher.PushOrderError(model.OrderError{
		TradingDay: t.venue.cfg.TradingDay,
		OrderRef:   ref,
		ErrorType:  typ,
		ErrorMsg:   msg,
	})
}

func (t *TradeAdapter) drop() {
	if t.loggedIn.CompareAndSwap(true, false) {
		t.pusher.PushTradeDisconnected()
	}
}
