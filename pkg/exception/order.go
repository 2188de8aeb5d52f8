package exception

import "errors"

// Order errors
var (
	ErrOrderUnknownRef      = errors.New("order: unknown order ref")
	ErrOrderFinished        = errors.New("order: order finished")
	ErrOrderNotMarketable   = errors.New("order: not marketable")
	ErrOrderUnknownSymbol   = errors.New("order: unknown symbol")
	ErrOrderInvalidRequest  = errors.New("order: invalid request")
	ErrOrderNoOutstanding   = errors.New("order: no outstanding order")
	ErrAlgoUnknown          = errors.New("algo: unknown algo name")
	ErrAlgoInvalidParameter = errors.New("algo: invalid parameter")
)
