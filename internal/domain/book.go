package domain

import (
	"fmt"
	"sort"
)

// Book is the immutable set of instruments configured at startup. It is
// built once in bootstrap and read concurrently without locking.
type Book struct {
	instruments map[string]*Instrument
	symbols     []string // sorted, for stable iteration in reports
}

// NewBook builds a book from the configured instruments.
func NewBook(instruments ...*Instrument) *Book {
	b := &Book{
		instruments: make(map[string]*Instrument, len(instruments)),
		symbols:     make([]string, 0, len(instruments)),
	}
	for _, inst := range instruments {
		if _, ok := b.instruments[inst.Symbol]; ok {
			continue
		}
		b.instruments[inst.Symbol] = inst
		b.symbols = append(b.symbols, inst.Symbol)
	}
	sort.Strings(b.symbols)
	return b
}

// Lookup resolves a symbol, or fails with ErrUnknownInstrument.
func (b *Book) Lookup(symbol string) (*Instrument, error) {
	inst, ok := b.instruments[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstrument, symbol)
	}
	return inst, nil
}

// All returns every instrument in symbol order.
func (b *Book) All() []*Instrument {
	out := make([]*Instrument, 0, len(b.symbols))
	for _, sym := range b.symbols {
		out = append(out, b.instruments[sym])
	}
	return out
}

// Symbols returns the sorted symbol list.
func (b *Book) Symbols() []string {
	return b.symbols
}
