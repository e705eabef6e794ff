package audit

import (
	"log/slog"
	"sync"
	"time"

	"trading_go/internal/domain"
	"trading_go/internal/infra"
	"trading_go/internal/infra/storage"

	"github.com/shopspring/decimal"
)

// Recorder is the asynchronous audit sink backed by the SQLite registries.
// Callers enqueue and return immediately; a single worker goroutine writes
// the rows. A full queue drops the entry (counted, warned) and a failed
// write is logged locally. Nothing here ever reaches back into the
// admission or matching path.
type Recorder struct {
	store   *storage.Storage
	metrics *infra.Metrics
	jobs    chan job
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type job struct {
	op string
	fn func() error
}

// NewRecorder creates a recorder with a bounded queue.
func NewRecorder(store *storage.Storage, metrics *infra.Metrics, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Recorder{
		store:   store,
		metrics: metrics,
		jobs:    make(chan job, queueSize),
	}
}

// Start launches the writer goroutine.
func (r *Recorder) Start() {
	r.wg.Add(1)
	go r.loop()
}

// Close drains the queue and stops the writer. Entries enqueued after
// Close are dropped and counted, the same as on overflow, so late
// producers (a mid-flight matching pass, a straggling connection) never
// crash the shutdown path.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.jobs)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Recorder) loop() {
	defer r.wg.Done()
	for j := range r.jobs {
		if err := j.fn(); err != nil {
			slog.Error("audit write failed", slog.String("op", j.op), slog.Any("error", err))
		}
	}
}

func (r *Recorder) enqueue(op string, fn func() error) {
	// The read lock holds off Close while we send; the buffered send with
	// a default branch never blocks under it.
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.metrics.RecordAuditDropped()
		slog.Warn("audit entry after close, dropped", slog.String("op", op))
		return
	}
	select {
	case r.jobs <- job{op: op, fn: fn}:
	default:
		r.metrics.RecordAuditDropped()
		slog.Warn("audit queue full, entry dropped", slog.String("op", op))
	}
}

// LogOrder records an order row, rejected ones included.
func (r *Recorder) LogOrder(o *domain.Order) {
	rec := &domain.OrderRecord{
		OrderID:    o.ID,
		ClientID:   o.ClientID,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Volume:     o.Volume,
		LimitPrice: o.LimitPrice,
		Status:     o.Status(),
		PlacedAt:   o.CreatedAt,
	}
	r.enqueue("order", func() error { return r.store.InsertOrder(rec) })
}

// UpdateOrderStatus records an order's terminal status.
func (r *Recorder) UpdateOrderStatus(orderID int64, status string) {
	r.enqueue("status", func() error { return r.store.UpdateOrderStatus(orderID, status) })
}

// LogExecution records a fill.
func (r *Recorder) LogExecution(orderID int64, volume int64, value, commission decimal.Decimal) {
	rec := &domain.ExecutionRecord{
		OrderID:    orderID,
		Volume:     volume,
		Value:      value,
		Commission: commission,
		ExecutedAt: time.Now(),
	}
	r.enqueue("execution", func() error { return r.store.InsertExecution(rec) })
}

// LogCancellation records an expiry.
func (r *Recorder) LogCancellation(orderID int64, reason string) {
	rec := &domain.CancellationRecord{
		OrderID:     orderID,
		Reason:      reason,
		CancelledAt: time.Now(),
	}
	r.enqueue("cancellation", func() error { return r.store.InsertCancellation(rec) })
}
