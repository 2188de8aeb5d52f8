package risk

import (
	"math"

	"github.com/yanun0323/errors"

	"rookie/internal/model"
	"rookie/internal/model/enum"
	"rookie/internal/store"
	"rookie/pkg/exception"
)

const (
	EventOrderInsert = "order_insert"
	EventOrderCancel = "order_cancel"
	EventHandle      = "risk_guard"
)

// Thresholds are the daily limits of the account.
type Thresholds struct {
	DailyOrderNum       int `json:"daily_order_num" yaml:"daily_order_num"`
	DailyCancelNum      int `json:"daily_cancel_num" yaml:"daily_cancel_num"`
	DailyRepeatOrderNum int `json:"daily_repeat_order_num" yaml:"daily_repeat_order_num"`
}

// Observer is told about every rejection.
type Observer interface {
	ObserveRejection(op string, err error)
}

// Gate decides whether orders and venue events may reach the ledger.
// Like the ledger it is owned by the event loop goroutine.
type Gate struct {
	thresholds Thresholds
	indicators model.RiskIndicators
	active     bool
	halted     bool
	market     *model.MarketInfo
	trade      *model.TradeInfo
	journal    *store.Journal
	observer   Observer
}

func New(thresholds Thresholds, journal *store.Journal) *Gate {
	if journal == nil {
		journal = store.NewJournal(nil, "")
	}
	return &Gate{thresholds: thresholds, journal: journal}
}

func (g *Gate) SetObserver(o Observer)           { g.observer = o }
func (g *Gate) SetActive(active bool)            { g.active = active }
func (g *Gate) Active() bool                     { return g.active }
func (g *Gate) TradeHalted() bool                { return g.halted }
func (g *Gate) Thresholds() Thresholds           { return g.thresholds }
func (g *Gate) Indicators() model.RiskIndicators { return g.indicators }

func (g *Gate) SetMarketInfo(info *model.MarketInfo) {
	g.market = info
}

// SetTradeInfo installs the trade state and derives the indicators from the
// hydrated order table.
func (g *Gate) SetTradeInfo(info *model.TradeInfo) model.RiskIndicators {
	g.trade = info
	g.indicators = model.RiskIndicators{}
	if info == nil {
		return g.indicators
	}

	seen := make(map[model.OrderReqKey]int, len(info.Orders))
	for _, order := range info.Orders {
		seen[order.OrderReq.Key()]++
		g.indicators.DailyOrderNum++
		if order.CanceledVolume != 0 {
			g.indicators.DailyCancelNum++
		}
	}
	for _, n := range seen {
		if n > 1 {
			g.indicators.DailyRepeatOrderNum++
		}
	}

	g.journal.Log(store.LevelInfo, "risk_indicators", "order %d, cancel %d, repeat %d",
		g.indicators.DailyOrderNum, g.indicators.DailyCancelNum, g.indicators.DailyRepeatOrderNum)
	return g.indicators
}

// SetTradeHalted holds back inserts and cancels while the trade side is
// reconnecting. The order table is stale until the reload is installed.
func (g *Gate) SetTradeHalted(halted bool) {
	g.halted = halted
}

// Reset drops the session state and deactivates the gate.
func (g *Gate) Reset() {
	g.active = false
	g.halted = false
	g.market = nil
	g.trade = nil
}

// EvaluateOrderInsert runs the insert checks without committing counters.
func (g *Gate) EvaluateOrderInsert(req model.OrderReq) error {
	_, err := g.evaluateOrderInsert(req)
	return err
}

func (g *Gate) evaluateOrderInsert(req model.OrderReq) (repeat bool, err error) {
	if !g.active {
		return false, exception.ErrRiskTradingInactive
	}
	if g.halted {
		return false, exception.ErrRiskTradeReconnecting
	}
	if g.market == nil || g.trade == nil {
		return false, exception.ErrRiskSessionMissing
	}
	if g.indicators.DailyOrderNum+1 > g.thresholds.DailyOrderNum {
		return false, errors.Wrapf(exception.ErrRiskDailyOrderLimit, "daily order num %d exceeds %d",
			g.indicators.DailyOrderNum+1, g.thresholds.DailyOrderNum)
	}

	detail, ok := g.market.Detail(req.Symbol)
	if !ok {
		return false, errors.Wrapf(exception.ErrRiskUnknownSymbol, "symbol %s", req.Symbol)
	}
	if !IsMultipleOf(req.LimitPrice, detail.PriceTick) {
		return false, errors.Wrapf(exception.ErrRiskPriceTick, "limit price %v, price tick %v", req.LimitPrice, detail.PriceTick)
	}
	if (req.Direction == enum.DirectionLong && req.Volume > detail.MaxBuyVolume) ||
		(req.Direction == enum.DirectionShort && req.Volume > detail.MaxSellVolume) {
		return false, errors.Wrapf(exception.ErrRiskMaxVolume, "volume %d, max buy %d, max sell %d",
			req.Volume, detail.MaxBuyVolume, detail.MaxSellVolume)
	}
	if req.LimitPrice < detail.LowerLimitPrice || req.LimitPrice > detail.UpperLimitPrice {
		return false, errors.Wrapf(exception.ErrRiskPriceLimit, "limit price %v, band [%v, %v]",
			req.LimitPrice, detail.LowerLimitPrice, detail.UpperLimitPrice)
	}

	for i := range g.trade.Orders {
		if !g.trade.Orders[i].OrderReq.Equal(req) {
			continue
		}
		if g.indicators.DailyRepeatOrderNum+1 > g.thresholds.DailyRepeatOrderNum {
			return true, errors.Wrapf(exception.ErrRiskDailyRepeatLimit, "repeat order num %d exceeds %d",
				g.indicators.DailyRepeatOrderNum+1, g.thresholds.DailyRepeatOrderNum)
		}
		return true, nil
	}
	return false, nil
}

// CheckOrderInsert evaluates the request and commits the counters on pass.
func (g *Gate) CheckOrderInsert(req model.OrderReq) bool {
	repeat, err := g.evaluateOrderInsert(req)
	if err != nil {
		g.reject(EventOrderInsert, err)
		g.journal.LogSymbol(store.LevelWarn, EventOrderInsert, req.Symbol, "rejected: %+v, req: %+v", err, req)
		return false
	}
	if repeat {
		g.indicators.DailyRepeatOrderNum++
		g.journal.LogSymbol(store.LevelInfo, EventOrderInsert, req.Symbol, "repeat order detected: %+v", req)
	}
	g.indicators.DailyOrderNum++
	return true
}

func (g *Gate) EvaluateOrderCancel(ref model.OrderRef) error {
	if !g.active {
		return exception.ErrRiskTradingInactive
	}
	if g.halted {
		return exception.ErrRiskTradeReconnecting
	}
	if g.trade == nil {
		return exception.ErrRiskSessionMissing
	}
	order := g.trade.Order(ref)
	if order == nil {
		return errors.Wrapf(exception.ErrRiskOrderRefOutOfRange, "order ref %d, orders %d", ref, len(g.trade.Orders))
	}
	if g.indicators.DailyCancelNum+1 > g.thresholds.DailyCancelNum {
		return errors.Wrapf(exception.ErrRiskDailyCancelLimit, "daily cancel num %d exceeds %d",
			g.indicators.DailyCancelNum+1, g.thresholds.DailyCancelNum)
	}
	if order.IsFinished() {
		return errors.Wrapf(exception.ErrRiskOrderFinished, "order ref %d", ref)
	}
	return nil
}

func (g *Gate) CheckOrderCancel(ref model.OrderRef) bool {
	if err := g.EvaluateOrderCancel(ref); err != nil {
		g.reject(EventOrderCancel, err)
		if order := g.trade.Order(ref); order != nil {
			g.journal.LogOrder(store.LevelWarn, EventOrderCancel, order.OrderReq.Symbol, ref, "rejected: %+v", err)
		} else {
			g.journal.Log(store.LevelWarn, EventOrderCancel, "order ref %d rejected: %+v", ref, err)
		}
		return false
	}
	g.indicators.DailyCancelNum++
	return true
}

func (g *Gate) reject(op string, err error) {
	if g.observer != nil {
		g.observer.ObserveRejection(op, err)
	}
}

// IsMultipleOf reports whether a is an integer multiple of b within a relative
// and absolute tolerance.
func IsMultipleOf(a, b float64) bool {
	q := a / b
	n := math.Round(q)
	return math.Abs(q-n) <= math.Max(1e-9*math.Abs(q), 1e-12)
}
