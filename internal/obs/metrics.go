package obs

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/yanun0323/logs"

	"rookie/internal/bus"
	"rookie/pkg/exception"
)

// riskReasons orders the rejection counters. Anything else lands in the slot
// past the end.
var riskReasons = [...]error{
	exception.ErrRiskTradingInactive,
	exception.ErrRiskSessionMissing,
	exception.ErrRiskTradeReconnecting,
	exception.ErrRiskDailyOrderLimit,
	exception.ErrRiskDailyCancelLimit,
	exception.ErrRiskDailyRepeatLimit,
	exception.ErrRiskUnknownSymbol,
	exception.ErrRiskPriceTick,
	exception.ErrRiskMaxVolume,
	exception.ErrRiskPriceLimit,
	exception.ErrRiskOrderRefOutOfRange,
	exception.ErrRiskOrderFinished,
	exception.ErrRiskTradingDayMismatch,
	exception.ErrRiskUnsubscribed,
}

const otherReason = "other"

// Metrics is safe for concurrent use. A nil *Metrics ignores every call.
type Metrics struct {
	events     [bus.KindCount]atomic.Uint64
	dispatch   [bus.KindCount]Latency
	rejections [len(riskReasons) + 1]atomic.Uint64
	drops      atomic.Uint64
	closed     atomic.Uint64
	orderFlow  Latency
}

type Snapshot struct {
	EventCounts      map[string]uint64
	RiskReasonCounts map[string]uint64
	QueueDrops       uint64
	QueueClosed      uint64
	DispatchLatency  LatencySnapshot
	OrderFlowLatency LatencySnapshot

	// DispatchByKind only carries kinds that were dispatched at least once.
	DispatchByKind map[string]LatencySnapshot
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveDispatch counts one event taken off the bus and how long its
// handler ran.
func (m *Metrics) ObserveDispatch(kind bus.Kind, d time.Duration) {
	if m == nil || int(kind) >= len(m.events) {
		return
	}
	m.events[kind].Add(1)
	m.dispatch[kind].Observe(d)
}

// ObserveRejection counts a risk rejection under its sentinel.
func (m *Metrics) ObserveRejection(_ string, err error) {
	if m == nil || err == nil {
		return
	}
	m.rejections[reasonIndex(err)].Add(1)
}

func reasonIndex(err error) int {
	for i, reason := range riskReasons {
		if errors.Is(err, reason) {
			return i
		}
	}
	return len(riskReasons)
}

func (m *Metrics) IncQueueDrop() {
	if m != nil {
		m.drops.Add(1)
	}
}

func (m *Metrics) IncQueueClosed() {
	if m != nil {
		m.closed.Add(1)
	}
}

// ObserveOrderFlow measures the time from the risk check to the adapter
// accepting the order.
func (m *Metrics) ObserveOrderFlow(d time.Duration) {
	if m != nil {
		m.orderFlow.Observe(d)
	}
}

func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	s := Snapshot{
		EventCounts:      make(map[string]uint64),
		RiskReasonCounts: make(map[string]uint64),
		DispatchByKind:   make(map[string]LatencySnapshot),
		QueueDrops:       m.drops.Load(),
		QueueClosed:      m.closed.Load(),
		OrderFlowLatency: m.orderFlow.Snapshot(),
	}
	var total Latency
	for i := range m.events {
		n := m.events[i].Load()
		if n == 0 {
			continue
		}
		name := bus.Kind(i).String()
		s.EventCounts[name] = n
		s.DispatchByKind[name] = m.dispatch[i].Snapshot()
		total.merge(&m.dispatch[i])
	}
	s.DispatchLatency = total.Snapshot()

	for i := range m.rejections {
		n := m.rejections[i].Load()
		if n == 0 {
			continue
		}
		name := otherReason
		if i < len(riskReasons) {
			name = riskReasons[i].Error()
		}
		s.RiskReasonCounts[name] = n
	}
	return s
}

func (m *Metrics) Log() {
	s := m.Snapshot()
	logs.Infof("metrics events: %v, risk rejections: %v, queue drops: %d, queue closed: %d",
		s.EventCounts, s.RiskReasonCounts, s.QueueDrops, s.QueueClosed)
	logs.Infof("metrics dispatch latency: %+v, order flow latency: %+v", s.DispatchLatency, s.OrderFlowLatency)
	for kind, l := range s.DispatchByKind {
		logs.Debugf("metrics dispatch %s: %+v", kind, l)
	}
}

// Latency aggregates duration samples. The zero value is ready to use.
type Latency struct {
	count atomic.Uint64
	sum   atomic.Uint64
	min   atomic.Uint64
	max   atomic.Uint64
}

type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Observe drops negative samples. A zero min means no sample yet, so a zero
// sample is stored as one nanosecond.
func (l *Latency) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	n := max(uint64(d), 1)
	l.count.Add(1)
	l.sum.Add(n)
	lower(&l.min, n)
	raise(&l.max, n)
}

func (l *Latency) merge(other *Latency) {
	count := other.count.Load()
	if count == 0 {
		return
	}
	l.count.Add(count)
	l.sum.Add(other.sum.Load())
	lower(&l.min, other.min.Load())
	raise(&l.max, other.max.Load())
}

func (l *Latency) Snapshot() LatencySnapshot {
	count := l.count.Load()
	if count == 0 {
		return LatencySnapshot{}
	}
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(l.min.Load()),
		Max:   time.Duration(l.max.Load()),
		Avg:   time.Duration(l.sum.Load() / count),
	}
}

func lower(v *atomic.Uint64, n uint64) {
	for {
		cur := v.Load()
		if cur != 0 && cur <= n {
			return
		}
		if v.CompareAndSwap(cur, n) {
			return
		}
	}
}

func raise(v *atomic.Uint64, n uint64) {
	for {
		cur := v.Load()
		if cur >= n {
			return
		}
		if v.CompareAndSwap(cur, n) {
			return
		}
	}
}
