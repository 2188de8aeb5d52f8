package model

// Positions is keyed by display symbol.
type Positions map[string]*PositionData

// TradeInfo is the session scoped ledger state. Orders and Trades are indexed
// by OrderRef and only ever grow.
type TradeInfo struct {
	AccountName string
	Positions   Positions
	Orders      []OrderData
	Trades      [][]TradeData
	Account     AccountData
}

func NewTradeInfo(account string, positions Positions, orders []OrderData, trades [][]TradeData, acc AccountData) *TradeInfo {
	if positions == nil {
		positions = make(Positions)
	}
	info := &TradeInfo{
		AccountName: account,
		Positions:   positions,
		Orders:      orders,
		Trades:      trades,
		Account:     acc,
	}
	info.AlignTrades()
	return info
}

// AlignTrades resizes the trade table to the order table length.
func (t *TradeInfo) AlignTrades() {
	switch {
	case len(t.Trades) < len(t.Orders):
		t.Trades = append(t.Trades, make([][]TradeData, len(t.Orders)-len(t.Trades))...)
	case len(t.Trades) > len(t.Orders):
		t.Trades = t.Trades[:len(t.Orders)]
	}
}

func (t *TradeInfo) Position(s Symbol) (*PositionData, bool) {
	if t == nil {
		return nil, false
	}
	p, ok := t.Positions[s.Key()]
	return p, ok
}

// Order returns nil when ref is out of range.
func (t *TradeInfo) Order(ref OrderRef) *OrderData {
	if t == nil || int(ref) >= len(t.Orders) {
		return nil
	}
	return &t.Orders[ref]
}

func (t *TradeInfo) HasOrder(ref OrderRef) bool {
	return t != nil && int(ref) < len(t.Orders)
}
