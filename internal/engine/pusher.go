package engine

import (
	"errors"

	"github.com/yanun0323/logs"

	"rookie/internal/bus"
	"rookie/internal/model"
	"rookie/internal/obs"
)

// queuePusher hands venue callbacks to the event loop and never blocks.
// Ticks and bars are dropped and counted when the queue is full. Order events
// and disconnects spill into the queue backlog instead.
type queuePusher struct {
	queue   *bus.Queue
	metrics *obs.Metrics
}

func (p queuePusher) PushTick(t model.TickData)         { p.publish(bus.TickEvent(t)) }
func (p queuePusher) PushBar(b model.BarData)           { p.publish(bus.BarEvent(b)) }
func (p queuePusher) PushTrade(t model.TradeData)       { p.push(bus.TradeEvent(t)) }
func (p queuePusher) PushCancel(c model.CancelData)     { p.push(bus.CancelEvent(c)) }
func (p queuePusher) PushOrderError(e model.OrderError) { p.push(bus.OrderErrorEvent(e)) }

func (p queuePusher) PushMarketDisconnected() {
	if err := p.push(bus.MarketDisconnectedEvent()); err != nil {
		logs.Errorf("push market disconnected, err: %+v", err)
	}
}

func (p queuePusher) PushTradeDisconnected() {
	if err := p.push(bus.TradeDisconnectedEvent()); err != nil {
		logs.Errorf("push trade disconnected, err: %+v", err)
	}
}

func (p queuePusher) publish(e bus.Event) error {
	err := p.queue.TryPublish(e)
	p.count(err)
	return err
}

func (p queuePusher) push(e bus.Event) error {
	err := p.queue.Push(e)
	p.count(err)
	return err
}

func (p queuePusher) count(err error) {
	switch {
	case err == nil:
	case errors.Is(err, bus.ErrQueueFull):
		p.metrics.IncQueueDrop()
	case errors.Is(err, bus.ErrQueueClosed):
		p.metrics.IncQueueClosed()
	}
}
