package audit

import (
	"context"
	"log/slog"
	"time"

	"trading_go/internal/domain"
	"trading_go/internal/engine"
)

// Reporter periodically logs a snapshot of the venue: every instrument's
// available capacity, price and accumulated profit, plus the pending
// backlog. Read-only; it never influences matching or admission.
type Reporter struct {
	book     *domain.Book
	ledger   *engine.Ledger
	interval time.Duration
}

// NewReporter creates a reporter on its own interval.
func NewReporter(book *domain.Book, ledger *engine.Ledger, interval time.Duration) *Reporter {
	return &Reporter{
		book:     book,
		ledger:   ledger,
		interval: interval,
	}
}

// Run emits snapshots until ctx ends.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.report()
		}
	}
}

func (r *Reporter) report() {
	for _, inst := range r.book.All() {
		slog.Info("audit",
			slog.String("symbol", inst.Symbol),
			slog.Int64("available", inst.Available()),
			slog.String("price", inst.Price().StringFixed(2)),
			slog.String("profit", inst.Profit().StringFixed(2)))
	}

	pending := 0
	for _, o := range r.ledger.Snapshot() {
		if !o.Pending() {
			continue
		}
		pending++
		slog.Debug("pending order",
			slog.Int64("order_id", o.ID),
			slog.Int64("client_id", o.ClientID),
			slog.String("symbol", o.Symbol),
			slog.String("side", o.Side),
			slog.Int64("volume", o.Volume),
			slog.String("limit", o.LimitPrice.StringFixed(2)))
	}
	slog.Info("audit backlog", slog.Int("pending", pending))
}
