package enum

import "strings"

// Exchange identifies the venue an instrument is listed on.
type Exchange uint8

const (
	ExchangeUnknown Exchange = iota
	ExchangeSSE
	ExchangeSZSE
	ExchangeSHFE
	ExchangeCFFEX
	ExchangeINE
	ExchangeDCE
	ExchangeCZCE
	ExchangeGFEX
	_exchange_end
)

var exchangeNames = [...]string{
	ExchangeUnknown: "UNKNOWN",
	ExchangeSSE:     "SSE",
	ExchangeSZSE:    "SZSE",
	ExchangeSHFE:    "SHFE",
	ExchangeCFFEX:   "CFFEX",
	ExchangeINE:     "INE",
	ExchangeDCE:     "DCE",
	ExchangeCZCE:    "CZCE",
	ExchangeGFEX:    "GFEX",
}

func (e Exchange) IsAvailable() bool {
	return e > ExchangeUnknown && e < _exchange_end
}

func (e Exchange) String() string {
	if e >= _exchange_end {
		return exchangeNames[ExchangeUnknown]
	}
	return exchangeNames[e]
}

func (e Exchange) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Exchange) UnmarshalText(text []byte) error {
	*e = ParseExchange(string(text))
	return nil
}

// ParseExchange is case-insensitive and falls back to ExchangeUnknown.
func ParseExchange(s string) Exchange {
	return Exchange(parseName(exchangeNames[:], s))
}

func parseName(names []string, s string) int {
	for i, name := range names {
		if strings.EqualFold(name, s) {
			return i
		}
	}
	return 0
}
