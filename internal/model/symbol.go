package model

import (
	"sort"

	"rookie/internal/model/enum"
)

// Symbol is an exchange qualified instrument identity.
// Two symbols are the same instrument iff their display symbols match.
type Symbol struct {
	Symbol       string            `json:"symbol" yaml:"symbol"`
	TradeSymbol  string            `json:"trade_symbol" yaml:"trade_symbol"`
	Exchange     enum.Exchange     `json:"exchange" yaml:"exchange"`
	ProductClass enum.ProductClass `json:"product_class" yaml:"product_class"`
}

func NewSymbol(symbol string, exchange enum.Exchange, class enum.ProductClass) Symbol {
	return Symbol{
		Symbol:       symbol,
		TradeSymbol:  symbol,
		Exchange:     exchange,
		ProductClass: class,
	}
}

// Key is the map key of the symbol.
func (s Symbol) Key() string {
	return s.Symbol
}

func (s Symbol) Equal(other Symbol) bool {
	return s.Symbol == other.Symbol
}

func (s Symbol) Less(other Symbol) bool {
	return s.Symbol < other.Symbol
}

func (s Symbol) String() string {
	return s.Symbol
}

// SymbolSet is a set of symbols keyed by display symbol.
type SymbolSet map[string]Symbol

func NewSymbolSet(symbols ...Symbol) SymbolSet {
	set := make(SymbolSet, len(symbols))
	for _, s := range symbols {
		set.Add(s)
	}
	return set
}

func (set SymbolSet) Add(s Symbol) bool {
	if _, ok := set[s.Key()]; ok {
		return false
	}
	set[s.Key()] = s
	return true
}

func (set SymbolSet) Has(s Symbol) bool {
	_, ok := set[s.Key()]
	return ok
}

// Merge adds every symbol of other and returns the ones that were new.
func (set SymbolSet) Merge(other SymbolSet) SymbolSet {
	added := make(SymbolSet)
	for _, s := range other {
		if set.Add(s) {
			added.Add(s)
		}
	}
	return added
}

// Slice returns the symbols sorted by display symbol.
func (set SymbolSet) Slice() []Symbol {
	out := make([]Symbol, 0, len(set))
	for _, s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Less(out[j])
	})
	return out
}
