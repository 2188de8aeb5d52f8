package engine

// State is the session state of the engine.
type State uint32

const (
	StateNotTrading State = iota
	StateLoggingIn
	StateHydratingMarket
	StateHydratingTrade
	StateTrading
	StateReconnecting
	_state_end
)

var stateNames = [...]string{
	StateNotTrading:      "NOT_TRADING",
	StateLoggingIn:       "LOGGING_IN",
	StateHydratingMarket: "HYDRATING_MARKET",
	StateHydratingTrade:  "HYDRATING_TRADE",
	StateTrading:         "TRADING",
	StateReconnecting:    "RECONNECTING",
}

func (s State) String() string {
	if s >= _state_end {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Dispatching reports whether the event loop delivers events in this state.
func (s State) Dispatching() bool {
	return s == StateTrading || s == StateReconnecting
}
