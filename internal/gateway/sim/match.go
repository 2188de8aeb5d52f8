package sim

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"rookie/internal/gateway"
	"rookie/internal/model"
	"rookie/internal/model/enum"
)

func (v *Venue) insert(owner *TradeAdapter, ref model.OrderRef, req model.OrderReq) {
	if !owner.loggedIn.Load() {
		owner.reject(ref, enum.ErrorTypeOrderInsert, "not logged in")
		return
	}
	if int(ref) < len(v.orders) && v.orders[ref] != nil {
		owner.reject(ref, enum.ErrorTypeOrderInsert, "duplicate order ref")
		return
	}

	o := &order{
		owner: owner,
		data:  model.OrderData{
			OrderRef:     ref,
			OrderReq:     req,
			TradingDay:   v.cfg.TradingDay,
			ReqTime:      v.now(),
			RemainVolume: req.Volume,
		},
	}
	v.store(o)

	detail, ok := v.details[req.Symbol.Key()]
	switch {
	case !ok:
		v.refuse(o, "unknown symbol")
		return
	case req.Volume == 0 || !req.Direction.IsAvailable() || !req.Offset.IsAvailable():
		v.refuse(o, "invalid order")
		return
	case req.Offset.IsClose() && v.closable(req) < req.Volume:
		v.refuse(o, "insufficient position")
		return
	}
	o.data.OrderReq.Symbol = detail.Symbol
	if req.Offset.IsClose() {
		v.freeze(req, int64(req.Volume))
	}

	if price, ok := v.last[req.Symbol.Key()]; ok && marketable(req, price) {
		v.fill(o, detail, price)
	}
}

// refuse keeps the row with zeroed counters so it reads as rejected.
func (v *Venue) refuse(o *order, msg string) {
	o.data.RemainVolume = 0
	o.owner.reject(o.data.OrderRef, enum.ErrorTypeOrderInsert, msg)
}

func (v *Venue) cancel(owner *TradeAdapter, ref model.OrderRef) {
	if !owner.loggedIn.Load() {
		owner.reject(ref, enum.ErrorTypeOrderCancel, "not logged in")
		return
	}
	if int(ref) >= len(v.orders) || v.orders[ref] == nil {
		owner.reject(ref, enum.ErrorTypeOrderCancel, "unknown order ref")
		return
	}
	o := v.orders[ref]
	if o.data.IsFinished() {
		owner.reject(ref, enum.ErrorTypeOrderCancel, "order finished")
		return
	}

	volume := o.data.RemainVolume
	o.data.CanceledVolume += volume
	o.data.RemainVolume = 0
	if o.data.OrderReq.Offset.IsClose() {
		v.freeze(o.data.OrderReq, -int64(volume))
	}
	if o.owner.loggedIn.Load() {
		o.owner.pusher.PushCancel(model.CancelData{
			OrderRef:     ref,
			CancelVolume: volume,
			TradingDay:   v.cfg.TradingDay,
			CancelTime:   v.now(),
		})
	}
}

// sweep fills the resting orders of the symbol crossed by price.
func (v *Venue) sweep(symbol string, price float64) {
	detail := v.details[symbol]
	for _, o := range v.orders {
		if o == nil || o.data.IsFinished() || o.data.OrderReq.Symbol.Key() != symbol {
			continue
		}
		if marketable(o.data.OrderReq, price) {
			v.fill(o, detail, price)
		}
	}
}

func (v *Venue) fill(o *order, detail *model.SymbolDetail, price float64) {
	req := o.data.OrderReq
	volume := o.data.RemainVolume
	fee := Fee(detail, req.Offset, price, volume)

	o.data.TradedVolume += volume
	o.data.RemainVolume = 0
	v.apply(req, volume)

	balance := decimal.NewFromFloat(v.account.Balance).Sub(fee)
	commission := decimal.NewFromFloat(v.account.Commission).Add(fee)
	v.account.Balance = balance.InexactFloat64()
	v.account.Commission = commission.InexactFloat64()
	v.account.Available = balance.Sub(decimal.NewFromFloat(v.account.Margin)).InexactFloat64()

	trade := model.TradeData{
		OrderRef:    o.data.OrderRef,
		TradeID:     v.nextTradeID(),
		TradePrice:  price,
		TradeVolume: volume,
		TradingDay:  v.cfg.TradingDay,
		TradeTime:   v.now(),
		Fee:         fee.InexactFloat64(),
	}
	v.trades[o.data.OrderRef] = append(v.trades[o.data.OrderRef], trade)
	if o.owner.loggedIn.Load() {
		o.owner.pusher.PushTrade(trade)
	}
}

func (v *Venue) store(o *order) {
	ref := int(o.data.OrderRef)
	for len(v.orders) <= ref {
		v.orders = append(v.orders, nil)
		v.trades = append(v.trades, nil)
	}
	v.orders[ref] = o
}

func (v *Venue) orderRows() []model.OrderData {
	rows := make([]model.OrderData, len(v.orders))
	for i, o := range v.orders {
		if o == nil {
			rows[i] = model.OrderData{OrderRef: model.OrderRef(i), TradingDay: v.cfg.TradingDay}
			continue
		}
		rows[i] = o.data
	}
	return rows
}

func (v *Venue) book(s model.Symbol) *model.PositionData {
	p, ok := v.position[s.Key()]
	if !ok {
		p = &model.PositionData{Symbol: s}
		v.position[s.Key()] = p
	}
	return p
}

// closable is the unfrozen position a close order of req would consume.
// A short close consumes the long side.
func (v *Venue) closable(req model.OrderReq) uint32 {
	p, ok := v.position[req.Symbol.Key()]
	if !ok {
		return 0
	}
	side := p.Long
	if req.Direction == enum.DirectionLong {
		side = p.Short
	}
	if side.Frozen >= side.Position {
		return 0
	}
	return side.Position - side.Frozen
}

func (v *Venue) freeze(req model.OrderReq, delta int64) {
	p := v.book(req.Symbol)
	side := &p.Long
	if req.Direction == enum.DirectionLong {
		side = &p.Short
	}
	side.Frozen = uint32(max(int64(side.Frozen)+delta, 0))
}

func (v *Venue) apply(req model.OrderReq, volume uint32) {
	p := v.book(req.Symbol)
	switch {
	case req.Offset == enum.OffsetOpen && req.Direction == enum.DirectionLong:
		p.Long.Position += volume
	case req.Offset == enum.OffsetOpen:
		p.Short.Position += volume
	default:
		v.freeze(req, -int64(volume))
		side := &p.Long
		if req.Direction == enum.DirectionLong {
			side = &p.Short
		}
		side.Position -= min(side.Position, volume)
	}
}

func marketable(req model.OrderReq, price float64) bool {
	if req.Direction == enum.DirectionLong {
		return req.LimitPrice >= price
	}
	return req.LimitPrice <= price
}

// Fee is turnover times the by-money rate plus lots times the by-volume rate
// of the offset, rounded to cents.
func Fee(d *model.SymbolDetail, offset enum.Offset, price float64, volume uint32) decimal.Decimal {
	byMoney, byVolume := d.OpenFeeRateByMoney, d.OpenFeeRateByVolume
	switch offset {
	case enum.OffsetClose, enum.OffsetCloseYesterday:
		byMoney, byVolume = d.CloseFeeRateByMoney, d.CloseFeeRateByVolume
	case enum.OffsetCloseToday:
		byMoney, byVolume = d.CloseTodayFeeRateByMoney, d.CloseTodayFeeRateByVolume
	}
	multiplier := int64(max(d.Multiplier, 1))

	lots := decimal.NewFromInt(int64(volume))
	turnover := decimal.NewFromFloat(price).Mul(lots).Mul(decimal.NewFromInt(multiplier))
	return turnover.Mul(decimal.NewFromFloat(byMoney)).
		Add(lots.Mul(decimal.NewFromFloat(byVolume))).
		Round(2)
}

// call starts c, runs fn on the venue goroutine and waits for fn to settle c.
func call[T any](ctx context.Context, v *Venue, c *gateway.Call[T], timeout time.Duration, fn func()) (T, error) {
	if err := c.Begin(); err != nil {
		var zero T
		return zero, err
	}
	if err := v.submit(fn); err != nil {
		c.Fail(err)
	}
	return c.Wait(ctx, timeout)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
