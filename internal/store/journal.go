package store

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"rookie/internal/model"
	"rookie/pkg/exception"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

func (l Level) rank() int {
	switch l {
	case LevelDebug:
		return 0
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return 1
	}
}

// ParseLevel accepts the level names in any case. Empty means info.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToUpper(strings.TrimSpace(s))); l {
	case "":
		return LevelInfo, nil
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return l, nil
	default:
		return "", errors.Wrapf(exception.ErrInvalidConfig, "log level %q", s)
	}
}

// Journal writes each event both to the process log and to the sink.
type Journal struct {
	sink    Sink
	account string
	min     Level
	day     atomic.Uint32
	now     func() time.Time
}

func NewJournal(sink Sink, account string) *Journal {
	if sink == nil {
		sink = Nop{}
	}
	return &Journal{sink: sink, account: account, now: time.Now}
}

func (j *Journal) Sink() Sink             { return j.sink }
func (j *Journal) Account() string        { return j.account }
func (j *Journal) TradingDay() uint32     { return j.day.Load() }
func (j *Journal) SetTradingDay(d uint32) { j.day.Store(d) }

// SetMinLevel drops log rows below level from the sink. The process log
// still gets them. Call it before the journal is shared.
func (j *Journal) SetMinLevel(level Level) {
	j.min = level
}

func (j *Journal) write(row LogRow, level Level) {
	if j.min != "" && level.rank() < j.min.rank() {
		return
	}
	j.sink.WriteLog(row)
}

// Log records an event that is not bound to a symbol.
func (j *Journal) Log(level Level, event string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	emit(level, "[%s] %s", event, msg)
	j.write(j.logRow(level, event, msg), level)
}

func (j *Journal) LogSymbol(level Level, event string, s model.Symbol, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	emit(level, "[%s] %s %s", event, s.Symbol, msg)
	row := j.logRow(level, event, msg)
	fillSymbol(&row, s)
	j.write(row, level)
}

func (j *Journal) LogOrder(level Level, event string, s model.Symbol, ref model.OrderRef, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	emit(level, "[%s] %s ref %d %s", event, s.Symbol, ref, msg)
	row := j.logRow(level, event, msg)
	fillSymbol(&row, s)
	r := uint32(ref)
	row.OrderRef = &r
	j.write(row, level)
}

func (j *Journal) Order(o model.OrderData) {
	req := o.OrderReq
	j.sink.WriteOrder(OrderRow{
		TradingDay:     j.day.Load(),
		AccountName:    j.account,
		OrderRef:       uint32(o.OrderRef),
		Symbol:         req.Symbol.Symbol,
		TradeSymbol:    req.Symbol.TradeSymbol,
		Exchange:       req.Symbol.Exchange.String(),
		ProductClass:   req.Symbol.ProductClass.String(),
		LimitPrice:     req.LimitPrice,
		Volume:         req.Volume,
		Direction:      req.Direction.String(),
		Offset:         req.Offset.String(),
		ReqTime:        o.ReqTime,
		TradedVolume:   o.TradedVolume,
		RemainVolume:   o.RemainVolume,
		CanceledVolume: o.CanceledVolume,
		InsertTime:     j.now(),
	})
}

func (j *Journal) Trade(o model.OrderData, t model.TradeData) {
	req := o.OrderReq
	j.sink.WriteTrade(TradeRow{
		TradingDay:   j.day.Load(),
		AccountName:  j.account,
		OrderRef:     uint32(t.OrderRef),
		Symbol:       req.Symbol.Symbol,
		TradeSymbol:  req.Symbol.TradeSymbol,
		Exchange:     req.Symbol.Exchange.String(),
		ProductClass: req.Symbol.ProductClass.String(),
		LimitPrice:   req.LimitPrice,
		Volume:       req.Volume,
		Direction:    req.Direction.String(),
		Offset:       req.Offset.String(),
		TradeID:      t.TradeID,
		TradePrice:   t.TradePrice,
		TradeVolume:  t.TradeVolume,
		TradeTime:    t.TradeTime,
		Fee:          t.Fee,
		InsertTime:   j.now(),
	})
}

func (j *Journal) Position(p model.PositionData) {
	j.sink.WritePosition(PositionRow{
		TradingDay:    j.day.Load(),
		AccountName:   j.account,
		Symbol:        p.Symbol.Symbol,
		TradeSymbol:   p.Symbol.TradeSymbol,
		Exchange:      p.Symbol.Exchange.String(),
		ProductClass:  p.Symbol.ProductClass.String(),
		LongPosition:  p.Long.Position,
		ShortPosition: p.Short.Position,
		InsertTime:    j.now(),
	})
}

func (j *Journal) Risk(ind model.RiskIndicators) {
	j.sink.WriteRiskIndicators(RiskRow{
		TradingDay:          j.day.Load(),
		AccountName:         j.account,
		DailyOrderNum:       ind.DailyOrderNum,
		DailyCancelNum:      ind.DailyCancelNum,
		DailyRepeatOrderNum: ind.DailyRepeatOrderNum,
		InsertTime:          j.now(),
	})
}

func (j *Journal) logRow(level Level, event, msg string) LogRow {
	now := j.now()
	return LogRow{
		TradingDay:  j.day.Load(),
		AccountName: j.account,
		EventType:   event,
		Logs:        msg,
		LogLevel:    string(level),
		ActionTime:  now,
		InsertTime:  now,
	}
}

func fillSymbol(row *LogRow, s model.Symbol) {
	symbol, tradeSymbol := s.Symbol, s.TradeSymbol
	exchange, class := s.Exchange.String(), s.ProductClass.String()
	row.Symbol = &symbol
	row.TradeSymbol = &tradeSymbol
	row.Exchange = &exchange
	row.ProductClass = &class
}

func emit(level Level, format string, args ...any) {
	switch level {
	case LevelDebug:
		logs.Debugf(format, args...)
	case LevelWarn:
		logs.Warnf(format, args...)
	case LevelError:
		logs.Errorf(format, args...)
	default:
		logs.Infof(format, args...)
	}
}
