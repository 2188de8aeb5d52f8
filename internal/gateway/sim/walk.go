package sim

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"rookie/internal/model"
	"rookie/pkg/exception"
)

// Walker moves the venue prices one symbol per step, round robin, by at most
// one price tick, staying inside the limit prices.
type Walker struct {
	venue   *Venue
	symbols []string
	details map[string]model.SymbolDetail
	prices  map[string]float64
	rng     *rand.Rand
	index   int
}

// NewWalker walks every symbol that has a start price.
func NewWalker(v *Venue, seed int64) (*Walker, error) {
	w := &Walker{
		venue:   v,
		details: make(map[string]model.SymbolDetail),
		prices:  make(map[string]float64),
		rng:     rand.New(rand.NewSource(seed)),
	}
	for _, d := range v.cfg.Symbols {
		price, ok := v.cfg.Prices[d.Symbol.Key()]
		if !ok {
			continue
		}
		w.symbols = append(w.symbols, d.Symbol.Key())
		w.details[d.Symbol.Key()] = d
		w.prices[d.Symbol.Key()] = price
	}
	if len(w.symbols) == 0 {
		return nil, errors.Wrap(exception.ErrInvalidConfig, "sim walker has no priced symbols")
	}
	sort.Strings(w.symbols)
	return w, nil
}

// Step moves the next symbol and returns its new price.
func (w *Walker) Step() (string, float64, error) {
	symbol := w.symbols[w.index]
	w.index = (w.index + 1) % len(w.symbols)

	d := w.details[symbol]
	price := w.prices[symbol] + d.PriceTick*float64(w.rng.Intn(3)-1)
	if d.UpperLimitPrice > 0 && price > d.UpperLimitPrice {
		price = d.UpperLimitPrice
	}
	if price < d.LowerLimitPrice || price <= 0 {
		price = w.prices[symbol]
	}
	w.prices[symbol] = price
	return symbol, price, w.venue.SetPrice(symbol, price)
}

// Run steps every interval until ctx is done.
func (w *Walker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if symbol, _, err := w.Step(); err != nil {
				logs.Warnf("sim walk %s, err: %+v", symbol, err)
			}
		}
	}
}
