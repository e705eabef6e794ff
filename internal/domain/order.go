package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	StatusPending   = "PENDING"
	StatusExecuted  = "EXECUTED"
	StatusCancelled = "CANCELLED"
	StatusRejected  = "REJECTED"
)

// Order is a client's limit order intent plus its lifecycle state. The
// intent fields are immutable after construction; only status changes, and
// only once: PENDING moves to exactly one of EXECUTED, CANCELLED or
// REJECTED, observed through the completion signal.
type Order struct {
	ID         int64
	ClientID   int64
	Symbol     string
	Side       string // SideBuy or SideSell
	Volume     int64
	LimitPrice decimal.Decimal
	CreatedAt  time.Time

	mu     sync.Mutex
	status string
	signal *Signal
}

// NewOrder constructs a PENDING order stamped with the current time.
func NewOrder(id, clientID int64, symbol, side string, volume int64, limit decimal.Decimal) *Order {
	return &Order{
		ID:         id,
		ClientID:   clientID,
		Symbol:     symbol,
		Side:       side,
		Volume:     volume,
		LimitPrice: limit,
		CreatedAt:  time.Now(),
		status:     StatusPending,
		signal:     NewSignal(),
	}
}

// Status returns the order's current status.
func (o *Order) Status() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Pending reports whether the order still awaits a terminal outcome.
func (o *Order) Pending() bool {
	return o.Status() == StatusPending
}

// Complete moves the order to a terminal status and fires the completion
// signal. Exactly one call succeeds for the lifetime of the order; a
// second terminal transition fails with ErrSignalAlreadySet and leaves
// the first outcome untouched.
func (o *Order) Complete(status string) error {
	o.mu.Lock()
	if o.status != StatusPending {
		o.mu.Unlock()
		return ErrSignalAlreadySet
	}
	o.status = status
	o.mu.Unlock()
	return o.signal.Complete(status)
}

// Signal returns the order's completion signal.
func (o *Order) Signal() *Signal {
	return o.signal
}

// Age returns how long the order has been alive at the given instant.
func (o *Order) Age(now time.Time) time.Duration {
	return now.Sub(o.CreatedAt)
}
