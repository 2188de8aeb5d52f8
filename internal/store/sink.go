package store

import "sync"

// Sink persists journal rows. Writes are fire-and-forget: a sink never
// reports a failed write to the caller.
type Sink interface {
	WriteLog(LogRow)
	WriteOrder(OrderRow)
	WriteTrade(TradeRow)
	WritePosition(PositionRow)
	WriteRiskIndicators(RiskRow)
	Close() error
}

// Nop discards every row.
type Nop struct{}

func (Nop) WriteLog(LogRow)             {}
func (Nop) WriteOrder(OrderRow)         {}
func (Nop) WriteTrade(TradeRow)         {}
func (Nop) WritePosition(PositionRow)   {}
func (Nop) WriteRiskIndicators(RiskRow) {}
func (Nop) Close() error                { return nil }

// Recorder keeps every row in memory.
type Recorder struct {
	mu        sync.Mutex
	logs      []LogRow
	orders    []OrderRow
	trades    []TradeRow
	positions []PositionRow
	risks     []RiskRow
	closed    bool
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) WriteLog(row LogRow) {
	r.mu.Lock()
	r.logs = append(r.logs, row)
	r.mu.Unlock()
}

func (r *Recorder) WriteOrder(row OrderRow) {
	r.mu.Lock()
	r.orders = append(r.orders, row)
	r.mu.Unlock()
}

func (r *Recorder) WriteTrade(row TradeRow) {
	r.mu.Lock()
	r.trades = append(r.trades, row)
	r.mu.Unlock()
}

func (r *Recorder) WritePosition(row PositionRow) {
	r.mu.Lock()
	r.positions = append(r.positions, row)
	r.mu.Unlock()
}

func (r *Recorder) WriteRiskIndicators(row RiskRow) {
	r.mu.Lock()
	r.risks = append(r.risks, row)
	r.mu.Unlock()
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Logs() []LogRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogRow(nil), r.logs...)
}

// LogsOf returns the log rows with the given event type.
func (r *Recorder) LogsOf(eventType string) []LogRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []LogRow
	for _, row := range r.logs {
		if row.EventType == eventType {
			out = append(out, row)
		}
	}
	return out
}

func (r *Recorder) Orders() []OrderRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OrderRow(nil), r.orders...)
}

func (r *Recorder) Trades() []TradeRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TradeRow(nil), r.trades...)
}

func (r *Recorder) Positions() []PositionRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PositionRow(nil), r.positions...)
}

func (r *Recorder) RiskIndicators() []RiskRow {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RiskRow(nil), r.risks...)
}

func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
