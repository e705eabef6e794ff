package domain

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// Instrument is one tradable symbol on the venue. It carries two pieces of
// mutable state with different synchronization needs:
//
//   - committed: volume reserved by pending orders, bounded by capacity.
//     Updated lock-free with a CAS retry loop so that two concurrent
//     admissions can never both succeed when their combined volume would
//     overcommit the instrument.
//   - price/profit: the shared reference price and the commission
//     accumulator, guarded by one mutex per instrument so readers never
//     observe a torn write. Instruments never block each other.
type Instrument struct {
	Symbol   string
	capacity int64

	committed atomic.Int64

	priceMu sync.Mutex
	price   decimal.Decimal
	profit  decimal.Decimal
}

// NewInstrument creates an instrument with a fixed capacity and initial price.
// Instruments are created once at startup and live for the whole process.
func NewInstrument(symbol string, capacity int64, price decimal.Decimal) *Instrument {
	return &Instrument{
		Symbol:   symbol,
		capacity: capacity,
		price:    price,
	}
}

// TryAllocate reserves volume against the instrument's capacity. It fails
// immediately (no queueing) when the reservation would exceed capacity.
// The compare-and-swap loop retries when another allocation won the race,
// so committed never observes a stale value.
func (i *Instrument) TryAllocate(volume int64) bool {
	for {
		current := i.committed.Load()
		if current+volume > i.capacity {
			return false
		}
		if i.committed.CompareAndSwap(current, current+volume) {
			return true
		}
	}
}

// Release returns previously allocated volume to the pool. Callers release
// exactly what they allocated, exactly once.
func (i *Instrument) Release(volume int64) {
	i.committed.Add(-volume)
}

// Capacity returns the fixed maximum committed volume.
func (i *Instrument) Capacity() int64 {
	return i.capacity
}

// Committed returns the volume currently reserved by pending orders.
func (i *Instrument) Committed() int64 {
	return i.committed.Load()
}

// Available returns capacity minus committed volume.
func (i *Instrument) Available() int64 {
	return i.capacity - i.committed.Load()
}

// Advance applies one Euler-Maruyama step of the drift-diffusion process:
//
//	price += mu*dt + sigma*sqrt(dt)*epsilon
//
// where epsilon is a standard-normal draw from rnd. The price has no hard
// floor; it may go negative under heavy volatility and stays usable.
func (i *Instrument) Advance(mu, sigma, dt float64, rnd *rand.Rand) {
	step := mu*dt + sigma*math.Sqrt(dt)*rnd.NormFloat64()

	i.priceMu.Lock()
	i.price = i.price.Add(decimal.NewFromFloat(step))
	i.priceMu.Unlock()
}

// Price returns the latest committed reference price.
func (i *Instrument) Price() decimal.Decimal {
	i.priceMu.Lock()
	defer i.priceMu.Unlock()
	return i.price
}

// AddProfit adds a commission amount to the profit accumulator.
func (i *Instrument) AddProfit(amount decimal.Decimal) {
	i.priceMu.Lock()
	i.profit = i.profit.Add(amount)
	i.priceMu.Unlock()
}

// Profit returns the accumulated commission total.
func (i *Instrument) Profit() decimal.Decimal {
	i.priceMu.Lock()
	defer i.priceMu.Unlock()
	return i.profit
}
