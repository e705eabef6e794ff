package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety. Purely observational: nothing
// in the engine consults these values for decisions.
type Metrics struct {
	// Admission counters
	ordersAdmitted atomic.Uint64
	ordersRejected atomic.Uint64

	// Matching counters
	ordersExecuted  atomic.Uint64
	ordersCancelled atomic.Uint64
	evalErrors      atomic.Uint64

	// Cycle latency tracking
	cycleDurSumNs atomic.Int64
	cycleCount    atomic.Uint64

	// Audit sink
	auditDropped atomic.Uint64

	// Gauges
	activeConnections atomic.Int32
}

// NewMetrics returns a zeroed metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordAdmitted counts an order accepted into the ledger.
func (m *Metrics) RecordAdmitted() {
	m.ordersAdmitted.Add(1)
}

// RecordRejected counts an order denied for lack of liquidity.
func (m *Metrics) RecordRejected() {
	m.ordersRejected.Add(1)
}

// RecordExecuted counts an executed order.
func (m *Metrics) RecordExecuted() {
	m.ordersExecuted.Add(1)
}

// RecordCancelled counts an expired order.
func (m *Metrics) RecordCancelled() {
	m.ordersCancelled.Add(1)
}

// RecordEvalError counts a per-order evaluation fault in a matching cycle.
func (m *Metrics) RecordEvalError() {
	m.evalErrors.Add(1)
}

// RecordCycle records one matching cycle with its duration.
func (m *Metrics) RecordCycle(d time.Duration) {
	m.cycleDurSumNs.Add(d.Nanoseconds())
	m.cycleCount.Add(1)
}

// RecordAuditDropped counts an audit entry dropped on queue overflow.
func (m *Metrics) RecordAuditDropped() {
	m.auditDropped.Add(1)
}

// IncrementConnections increments active client connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active client connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OrdersAdmitted    uint64
	OrdersRejected    uint64
	OrdersExecuted    uint64
	OrdersCancelled   uint64
	EvalErrors        uint64
	CycleCount        uint64
	AvgCycleNs        int64
	AuditDropped      uint64
	ActiveConnections int32
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgCycle int64
	count := m.cycleCount.Load()
	if count > 0 {
		avgCycle = m.cycleDurSumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		OrdersAdmitted:    m.ordersAdmitted.Load(),
		OrdersRejected:    m.ordersRejected.Load(),
		OrdersExecuted:    m.ordersExecuted.Load(),
		OrdersCancelled:   m.ordersCancelled.Load(),
		EvalErrors:        m.evalErrors.Load(),
		CycleCount:        count,
		AvgCycleNs:        avgCycle,
		AuditDropped:      m.auditDropped.Load(),
		ActiveConnections: m.activeConnections.Load(),
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ordersAdmitted.Store(0)
	m.ordersRejected.Store(0)
	m.ordersExecuted.Store(0)
	m.ordersCancelled.Store(0)
	m.evalErrors.Store(0)
	m.cycleDurSumNs.Store(0)
	m.cycleCount.Store(0)
	m.auditDropped.Store(0)
	m.activeConnections.Store(0)
}
