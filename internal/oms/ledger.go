package oms

import (
	"time"

	"github.com/bytedance/sonic"

	"rookie/internal/model"
	"rookie/internal/model/enum"
	"rookie/internal/store"
)

const (
	EventOrderInsert  = "order_insert"
	EventOrderCancel  = "order_cancel"
	EventHandleTrade  = "handle_trade"
	EventHandleCancel = "handle_cancel"
	EventHandleError  = "handle_error"
	EventUnderflow    = "reservation_underflow"
)

// Ledger is the order and position book of a trading session. It is owned by
// the event loop goroutine and holds no locks.
type Ledger struct {
	journal *store.Journal
	market  *model.MarketInfo
	trade   *model.TradeInfo
	now     func() time.Time
}

func New(journal *store.Journal) *Ledger {
	if journal == nil {
		journal = store.NewJournal(nil, "")
	}
	return &Ledger{journal: journal, now: time.Now}
}

func (l *Ledger) MarketInfo() *model.MarketInfo { return l.market }
func (l *Ledger) TradeInfo() *model.TradeInfo   { return l.trade }

// SetMarketInfo installs the session market state.
func (l *Ledger) SetMarketInfo(info *model.MarketInfo) {
	l.market = info
	if info != nil {
		l.journal.SetTradingDay(info.TradingDay)
	}
	l.fillPositions()
}

// SetTradeInfo installs the session trade state. Every symbol with a detail
// gets a position row and the trade table is sized to the order table.
func (l *Ledger) SetTradeInfo(info *model.TradeInfo) {
	l.trade = info
	if info == nil {
		return
	}
	if info.Positions == nil {
		info.Positions = make(model.Positions)
	}
	info.AlignTrades()
	l.fillPositions()
}

// Reset drops the session state.
func (l *Ledger) Reset() {
	l.market = nil
	l.trade = nil
}

func (l *Ledger) fillPositions() {
	if l.market == nil || l.trade == nil {
		return
	}
	for key, detail := range l.market.SymbolDetails {
		if _, ok := l.trade.Positions[key]; !ok {
			l.trade.Positions[key] = &model.PositionData{Symbol: detail.Symbol}
		}
	}
}

func (l *Ledger) position(s model.Symbol) *model.PositionData {
	p, ok := l.trade.Positions[s.Key()]
	if !ok {
		p = &model.PositionData{Symbol: s}
		l.trade.Positions[s.Key()] = p
	}
	return p
}

func (l *Ledger) tradingDay() uint32 {
	if l.market == nil {
		return 0
	}
	return l.market.TradingDay
}

// OrderInsert appends an order row, reserves its volume and returns the new ref.
func (l *Ledger) OrderInsert(req model.OrderReq) model.OrderRef {
	ref := model.OrderRef(len(l.trade.Orders))
	l.trade.Orders = append(l.trade.Orders, model.OrderData{
		OrderRef:     ref,
		OrderReq:     req,
		TradingDay:   l.tradingDay(),
		ReqTime:      l.now(),
		RemainVolume: req.Volume,
	})
	l.trade.Trades = append(l.trade.Trades, nil)

	if s, ok := slotOf(l.position(req.Symbol), req.Direction, req.Offset); ok {
		*s.reserved += req.Volume
	} else {
		l.journal.LogOrder(store.LevelError, EventOrderInsert, req.Symbol, ref,
			"unknown direction %s or offset %s", req.Direction, req.Offset)
	}

	l.journal.LogOrder(store.LevelInfo, EventOrderInsert, req.Symbol, ref, "%s", payload(l.trade.Orders[ref]))
	return ref
}

// OrderCancel only records the intent. The book moves on the venue answer.
func (l *Ledger) OrderCancel(ref model.OrderRef) {
	order := l.trade.Order(ref)
	if order == nil {
		return
	}
	l.journal.LogOrder(store.LevelInfo, EventOrderCancel, order.OrderReq.Symbol, ref, "%s", payload(*order))
}

// HandleTick replaces the cached tick of the symbol.
func (l *Ledger) HandleTick(tick model.TickData) {
	l.market.LastTicks[tick.Symbol.Key()] = &tick
}

func (l *Ledger) HandleTrade(trade model.TradeData) {
	order := l.trade.Order(trade.OrderRef)
	if order == nil {
		return
	}
	l.trade.Trades[trade.OrderRef] = append(l.trade.Trades[trade.OrderRef], trade)

	req := order.OrderReq
	order.TradedVolume += trade.TradeVolume
	if !sub(&order.RemainVolume, trade.TradeVolume) {
		l.underflow(req.Symbol, trade.OrderRef, "remain_volume", trade.TradeVolume)
	}

	if s, ok := slotOf(l.position(req.Symbol), req.Direction, req.Offset); ok {
		if s.open {
			*s.position += trade.TradeVolume
		} else if !sub(s.position, trade.TradeVolume) {
			l.underflow(req.Symbol, trade.OrderRef, "position", trade.TradeVolume)
		}
		if !sub(s.reserved, trade.TradeVolume) {
			l.underflow(req.Symbol, trade.OrderRef, "reserved", trade.TradeVolume)
		}
	}

	l.journal.LogOrder(store.LevelInfo, EventHandleTrade, req.Symbol, trade.OrderRef, "%s", payload(trade))
	l.journal.Trade(*order, trade)
	if order.IsFinished() {
		l.journal.Order(*order)
	}
}

func (l *Ledger) HandleCancel(cancel model.CancelData) {
	order := l.trade.Order(cancel.OrderRef)
	if order == nil {
		return
	}

	req := order.OrderReq
	if !sub(&order.RemainVolume, cancel.CancelVolume) {
		l.underflow(req.Symbol, cancel.OrderRef, "remain_volume", cancel.CancelVolume)
	}
	order.CanceledVolume += cancel.CancelVolume

	if s, ok := slotOf(l.position(req.Symbol), req.Direction, req.Offset); ok {
		if !sub(s.reserved, cancel.CancelVolume) {
			l.underflow(req.Symbol, cancel.OrderRef, "reserved", cancel.CancelVolume)
		}
	}

	l.journal.LogOrder(store.LevelInfo, EventHandleCancel, req.Symbol, cancel.OrderRef, "%s", payload(cancel))
	if order.IsFinished() {
		l.journal.Order(*order)
	}
}

// HandleError voids an order rejected on insert. A failed cancel leaves the
// order live. Insert errors are assumed to arrive before any fill.
func (l *Ledger) HandleError(e model.OrderError) {
	order := l.trade.Order(e.OrderRef)
	if order == nil {
		return
	}

	req := order.OrderReq
	if e.ErrorType == enum.ErrorTypeOrderInsert {
		order.TradedVolume = 0
		order.RemainVolume = 0
		order.CanceledVolume = 0
		if s, ok := slotOf(l.position(req.Symbol), req.Direction, req.Offset); ok {
			if !sub(s.reserved, req.Volume) {
				l.underflow(req.Symbol, e.OrderRef, "reserved", req.Volume)
			}
		}
		l.journal.Order(*order)
	}

	l.journal.LogOrder(store.LevelWarn, EventHandleError, req.Symbol, e.OrderRef, "%s", payload(e))
}

func (l *Ledger) underflow(s model.Symbol, ref model.OrderRef, counter string, v uint32) {
	l.journal.LogOrder(store.LevelWarn, EventUnderflow, s, ref, "%s below %d, clamped to zero", counter, v)
}

func payload(v any) string {
	s, err := sonic.MarshalString(v)
	if err != nil {
		return err.Error()
	}
	return s
}
