package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"trading_go/internal/domain"
	"trading_go/internal/infra"

	"github.com/shopspring/decimal"
)

// Matcher drives the periodic matching cycle: advance every instrument's
// price once, then test every pending order for expiry or execution. It
// runs in a single goroutine; admissions never wait on it and it never
// waits on admissions, because each pass works on a ledger snapshot.
type Matcher struct {
	book    *domain.Book
	ledger  *Ledger
	audit   domain.AuditSink
	metrics *infra.Metrics

	drift          float64
	sigma          float64
	dt             float64
	expiry         time.Duration
	commissionRate decimal.Decimal
	interval       time.Duration

	rnd *rand.Rand
}

// NewMatcher builds a matcher from the engine configuration. A nil rnd
// gets a time-seeded source; tests pass their own for determinism.
func NewMatcher(book *domain.Book, ledger *Ledger, audit domain.AuditSink, metrics *infra.Metrics, cfg *infra.Config, rnd *rand.Rand) *Matcher {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Matcher{
		book:           book,
		ledger:         ledger,
		audit:          audit,
		metrics:        metrics,
		drift:          cfg.Engine.Mu,
		sigma:          cfg.Engine.Sigma,
		dt:             cfg.Engine.Dt,
		expiry:         cfg.ExpiryThreshold(),
		commissionRate: cfg.Engine.CommissionRate,
		interval:       cfg.CycleInterval(),
		rnd:            rnd,
	}
}

// Run invokes the matching cycle on a fixed period until ctx ends.
func (m *Matcher) Run(ctx context.Context) {
	slog.Info("matcher started",
		slog.Duration("interval", m.interval),
		slog.Duration("expiry", m.expiry))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("matcher stopping")
			return
		case <-ticker.C:
			start := time.Now()
			m.Cycle(start)
			m.metrics.RecordCycle(time.Since(start))
		}
	}
}

// Cycle performs one matching pass. Wall-clock time is captured once by
// the caller so every order in the pass shares the same age basis. A
// fault in one order's evaluation is reported and skipped; it never
// aborts the rest of the pass.
func (m *Matcher) Cycle(now time.Time) {
	for _, inst := range m.book.All() {
		inst.Advance(m.drift, m.sigma, m.dt, m.rnd)
	}

	for _, o := range m.ledger.Snapshot() {
		if !o.Pending() {
			continue
		}
		if err := m.evaluate(o, now); err != nil {
			m.metrics.RecordEvalError()
			slog.Error("order evaluation failed",
				slog.Int64("order_id", o.ID),
				slog.String("symbol", o.Symbol),
				slog.Any("error", err))
		}
	}
}

// evaluate decides one pending order's fate for this cycle. Expiry is
// checked before the limit condition: an order that is both expired and
// matchable is cancelled, not executed.
func (m *Matcher) evaluate(o *domain.Order, now time.Time) error {
	inst, err := m.book.Lookup(o.Symbol)
	if err != nil {
		return err
	}

	if o.Age(now) > m.expiry {
		return m.cancel(o, inst)
	}

	price := inst.Price()
	if executable(o, price) {
		return m.execute(o, inst, price)
	}
	return nil
}

// executable tests the limit condition: a BUY executes at or below its
// limit, a SELL at or above.
func executable(o *domain.Order, price decimal.Decimal) bool {
	switch o.Side {
	case domain.SideBuy:
		return price.LessThanOrEqual(o.LimitPrice)
	case domain.SideSell:
		return price.GreaterThanOrEqual(o.LimitPrice)
	}
	return false
}

// execute fills the order at the current price. The terminal transition
// goes first: once it succeeds this goroutine owns the order's liquidity
// release and audit trail, so each happens exactly once.
func (m *Matcher) execute(o *domain.Order, inst *domain.Instrument, price decimal.Decimal) error {
	if err := o.Complete(domain.StatusExecuted); err != nil {
		return fmt.Errorf("execute order %d: %w", o.ID, err)
	}
	inst.Release(o.Volume)

	value := price.Mul(decimal.NewFromInt(o.Volume))
	commission := value.Mul(m.commissionRate)
	inst.AddProfit(commission)

	m.audit.LogExecution(o.ID, o.Volume, value, commission)
	m.audit.UpdateOrderStatus(o.ID, domain.StatusExecuted)
	m.metrics.RecordExecuted()
	return nil
}

// cancel expires the order and returns its liquidity.
func (m *Matcher) cancel(o *domain.Order, inst *domain.Instrument) error {
	if err := o.Complete(domain.StatusCancelled); err != nil {
		return fmt.Errorf("cancel order %d: %w", o.ID, err)
	}
	inst.Release(o.Volume)

	reason := fmt.Sprintf("expired after %d seconds", int(m.expiry.Seconds()))
	m.audit.LogCancellation(o.ID, reason)
	m.audit.UpdateOrderStatus(o.ID, domain.StatusCancelled)
	m.metrics.RecordCancelled()
	return nil
}
