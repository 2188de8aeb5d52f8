package algo

import (
	"math"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"rookie/internal/model"
	"rookie/internal/model/enum"
	"rookie/pkg/exception"
)

const (
	TwapName = "twap"

	defaultRetryIntervalSecs = 30
	defaultLotSize           = 100
)

type TwapStatus uint8

const (
	TwapUnknown TwapStatus = iota
	TwapStopped
	TwapError
	TwapSending
	TwapCanceling
	TwapExecuting
	TwapIdle
)

var twapStatusNames = [...]string{
	TwapUnknown:   "UNKNOWN",
	TwapStopped:   "STOPPED",
	TwapError:     "ERROR",
	TwapSending:   "SENDING",
	TwapCanceling: "CANCELING",
	TwapExecuting: "EXECUTING",
	TwapIdle:      "IDLE",
}

func (s TwapStatus) String() string {
	if int(s) < len(twapStatusNames) {
		return twapStatusNames[s]
	}
	return twapStatusNames[TwapUnknown]
}

// Terminal reports whether the algo will never act again.
func (s TwapStatus) Terminal() bool {
	return s == TwapStopped || s == TwapError
}

type TwapParam struct {
	RetryIntervalSecs int    `json:"retry_interval_secs"`
	LotSize           uint32 `json:"lot_size"`
}

// ParseTwapParam decodes the param blob. An empty blob yields the defaults.
func ParseTwapParam(raw string) (TwapParam, error) {
	p := TwapParam{RetryIntervalSecs: defaultRetryIntervalSecs, LotSize: defaultLotSize}
	if strings.TrimSpace(raw) == "" {
		return p, nil
	}
	if err := sonic.UnmarshalString(raw, &p); err != nil {
		return TwapParam{}, errors.Wrapf(exception.ErrAlgoInvalidParameter, "twap param %s, err: %+v", raw, err)
	}
	if p.RetryIntervalSecs <= 0 || p.LotSize == 0 {
		return TwapParam{}, errors.Wrapf(exception.ErrAlgoInvalidParameter, "twap param %s", raw)
	}
	return p, nil
}

func (p TwapParam) interval() time.Duration {
	return time.Duration(p.RetryIntervalSecs) * time.Second
}

// Twap works the net position towards the target in equal slices spread over
// the command window, one order at a time.
type Twap struct {
	Base
	param  TwapParam
	status TwapStatus
	req    model.AlgoReq

	ref      *model.OrderRef
	volume   uint32
	filled   uint32
	canceled uint32
	sentAt   time.Time
	lastTime time.Time
}

func NewTwap(engine Engine, symbol model.Symbol, param string) (*Twap, error) {
	p, err := ParseTwapParam(param)
	if err != nil {
		return nil, err
	}
	return &Twap{
		Base:  Base{engine: engine, symbol: symbol},
		param: p,
	}, nil
}

func (t *Twap) Name() string           { return TwapName }
func (t *Twap) Status() TwapStatus     { return t.status }
func (t *Twap) Param() TwapParam       { return t.param }
func (t *Twap) Command() model.AlgoReq { return t.req }
func (t *Twap) Done() bool             { return t.status.Terminal() }

// Outstanding returns the ref of the working order.
func (t *Twap) Outstanding() (model.OrderRef, bool) {
	if t.ref == nil {
		return 0, false
	}
	return *t.ref, true
}

func (t *Twap) Stop() {
	if t.status.Terminal() {
		return
	}
	if t.ref != nil {
		t.engine.OrderCancel(t.id, *t.ref)
	}
	t.setStatus(TwapStopped)
}

func (t *Twap) OnAlgoReq(req model.AlgoReq) {
	if t.status.Terminal() {
		logs.Warnf("twap %s is %s, drop algo req %+v", t.symbol, t.status, req)
		return
	}
	t.req = req
	if t.status == TwapUnknown {
		t.setStatus(TwapIdle)
	}
	logs.Infof("twap %s target %d, window [%s, %s], param %+v",
		t.symbol, req.NetPosition, req.StartTime.Format(time.TimeOnly), req.EndTime.Format(time.TimeOnly), t.param)
}

func (t *Twap) OnTick(tick model.TickData) {
	if t.status == TwapUnknown || t.status.Terminal() {
		return
	}
	t.lastTime = tick.UpdateTime
	switch {
	case tick.UpdateTime.Before(t.req.StartTime):
		return
	case tick.UpdateTime.Before(t.req.EndTime):
		t.retry(tick.UpdateTime)
	default:
		t.Stop()
	}
}

func (t *Twap) OnTrade(trade model.TradeData) {
	if !t.owns(trade.OrderRef) {
		return
	}
	t.filled += trade.TradeVolume
	t.settle()
}

func (t *Twap) OnCancel(cancel model.CancelData) {
	if !t.owns(cancel.OrderRef) {
		return
	}
	t.canceled += cancel.CancelVolume
	t.settle()
}

func (t *Twap) OnError(e model.OrderError) {
	if !t.owns(e.OrderRef) {
		return
	}
	logs.Errorf("twap %s order ref %d, err: %s %s", t.symbol, e.OrderRef, e.ErrorType, e.ErrorMsg)
	t.setStatus(TwapError)
}

func (t *Twap) owns(ref model.OrderRef) bool {
	return t.ref != nil && *t.ref == ref
}

// settle frees the algo once the working order is fully traded or canceled.
func (t *Twap) settle() {
	if t.filled+t.canceled < t.volume {
		return
	}
	t.ref = nil
	if t.status.Terminal() {
		return
	}
	t.setStatus(TwapIdle)
	t.retry(t.lastTime)
}

func (t *Twap) retry(now time.Time) {
	switch t.status {
	case TwapSending, TwapCanceling, TwapError, TwapStopped, TwapUnknown:
		return
	}

	position, _ := t.engine.QueryPosition(t.symbol)
	if position.NetPosition() == t.req.NetPosition {
		return
	}

	if t.status == TwapExecuting {
		if t.ref == nil {
			logs.Errorf("twap %s executing without an order ref", t.symbol)
			t.setStatus(TwapError)
			return
		}
		// the next slice goes out once the cancel or the fill settles
		if t.engine.OrderCancel(t.id, *t.ref) {
			t.setStatus(TwapCanceling)
		}
		return
	}

	// one slice per interval
	if !t.sentAt.IsZero() && now.Sub(t.sentAt) < t.param.interval() {
		return
	}
	req, ok := t.slice(now, position)
	if !ok {
		return
	}

	t.setStatus(TwapSending)
	ref, ok := t.engine.OrderInsert(t.id, req)
	if !ok {
		t.setStatus(TwapIdle)
		return
	}
	t.ref = &ref
	t.volume, t.filled, t.canceled = req.Volume, 0, 0
	t.sentAt = now
	t.setStatus(TwapExecuting)
}

// slice computes the next child order, or false when nothing should be sent.
func (t *Twap) slice(now time.Time, position model.PositionData) (model.OrderReq, bool) {
	volume, direction, offset := SliceVolume(
		t.req.NetPosition, position.Long.Position, t.req.EndTime.Sub(now), t.param.interval(), t.param.LotSize)
	if volume == 0 {
		return model.OrderReq{}, false
	}

	tick, ok := t.engine.QueryLastTick(t.symbol)
	if !ok || tick.LastPrice <= 0 {
		return model.OrderReq{}, false
	}

	return model.OrderReq{
		Symbol:     t.symbol,
		LimitPrice: tick.LastPrice,
		Volume:     volume,
		Direction:  direction,
		Offset:     offset,
	}, true
}

// SliceVolume splits the distance between target and the long position over
// the intervals left in the window and rounds the slice down to whole lots.
// When a slice rounds to zero the interval count shrinks until a whole lot
// fits or no interval remains.
func SliceVolume(target int32, long uint32, remaining, interval time.Duration, lot uint32) (uint32, enum.Direction, enum.Offset) {
	delta := int64(target) - int64(long)
	if delta == 0 || lot == 0 {
		return 0, enum.DirectionUnknown, enum.OffsetUnknown
	}

	direction, offset := enum.DirectionLong, enum.OffsetOpen
	if delta < 0 {
		direction, offset = enum.DirectionShort, enum.OffsetClose
		delta = -delta
	}

	split := int64(1)
	if remaining > 0 && interval > 0 {
		split = int64(math.Ceil(remaining.Seconds() / interval.Seconds()))
	}
	if split < 1 {
		split = 1
	}

	for ; split > 0; split-- {
		volume := delta / split / int64(lot) * int64(lot)
		if volume > 0 {
			return uint32(volume), direction, offset
		}
	}
	return 0, direction, offset
}

func (t *Twap) setStatus(s TwapStatus) {
	if t.status == s {
		return
	}
	logs.Debugf("twap %s %s -> %s", t.symbol, t.status, s)
	t.status = s
}
