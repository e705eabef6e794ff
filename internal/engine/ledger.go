package engine

import (
	"sync"

	"trading_go/internal/domain"
)

// Ledger is the append-only record of every admitted order, pending and
// terminal, in admission order. Orders are never removed, only mutated in
// place through their own synchronization. Snapshot gives the matching
// cycle a point-in-time view that stays safe against concurrent appends.
type Ledger struct {
	mu     sync.RWMutex
	orders []*domain.Order
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append adds an admitted order. Admission is the only caller.
func (l *Ledger) Append(o *domain.Order) {
	l.mu.Lock()
	l.orders = append(l.orders, o)
	l.mu.Unlock()
}

// Snapshot returns a copy of the current order list. Orders admitted
// after the snapshot is taken appear in a later one.
func (l *Ledger) Snapshot() []*domain.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*domain.Order, len(l.orders))
	copy(out, l.orders)
	return out
}

// Len returns the number of orders ever admitted.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders)
}

// PendingCount returns how many admitted orders still await an outcome.
func (l *Ledger) PendingCount() int {
	count := 0
	for _, o := range l.Snapshot() {
		if o.Pending() {
			count++
		}
	}
	return count
}
