package bus

import "rookie/internal/model"

// Kind tags the payload carried by an Event.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindTick
	KindBar
	KindTrade
	KindCancel
	KindOrderError
	KindMarketDisconnected
	KindTradeDisconnected
	KindAlgoReq
	// KindCall runs Event.Call on the loop goroutine.
	KindCall
	_kind_end
)

// KindCount is the number of valid kinds, used to size per kind tables.
const KindCount = int(_kind_end)

var kindNames = [...]string{
	KindUnknown:            "UNKNOWN",
	KindTick:               "TICK",
	KindBar:                "BAR",
	KindTrade:              "TRADE",
	KindCancel:             "CANCEL",
	KindOrderError:         "ORDER_ERROR",
	KindMarketDisconnected: "MD_DISCONNECTED",
	KindTradeDisconnected:  "TD_DISCONNECTED",
	KindAlgoReq:            "ALGO_REQ",
	KindCall:               "CALL",
}

func (k Kind) IsAvailable() bool {
	return k > KindUnknown && k < _kind_end
}

func (k Kind) String() string {
	if k >= _kind_end {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// Event is a tagged union. Only the field matching Kind is set.
type Event struct {
	Kind   Kind
	Tick   *model.TickData
	Bar    *model.BarData
	Trade  *model.TradeData
	Cancel *model.CancelData
	Error  *model.OrderError
	Algo   *model.AlgoReq
	Call   func()
}

func TickEvent(t model.TickData) Event {
	return Event{Kind: KindTick, Tick: &t}
}

func BarEvent(b model.BarData) Event {
	return Event{Kind: KindBar, Bar: &b}
}

func TradeEvent(t model.TradeData) Event {
	return Event{Kind: KindTrade, Trade: &t}
}

func CancelEvent(c model.CancelData) Event {
	return Event{Kind: KindCancel, Cancel: &c}
}

func OrderErrorEvent(e model.OrderError) Event {
	return Event{Kind: KindOrderError, Error: &e}
}

func MarketDisconnectedEvent() Event {
	return Event{Kind: KindMarketDisconnected}
}

func TradeDisconnectedEvent() Event {
	return Event{Kind: KindTradeDisconnected}
}

func AlgoReqEvent(r model.AlgoReq) Event {
	return Event{Kind: KindAlgoReq, Algo: &r}
}

func CallEvent(fn func()) Event {
	return Event{Kind: KindCall, Call: fn}
}
