package engine

import (
	"log/slog"
	"sync/atomic"

	"trading_go/internal/domain"
	"trading_go/internal/infra"

	"github.com/shopspring/decimal"
)

// Desk is the admission path: the synchronous decision made when a new
// order arrives. It either reserves liquidity and hands the order to the
// ledger, or rejects it on the spot. Safe for concurrent use from many
// connections; overcommit protection is delegated to the instrument's
// allocation CAS.
type Desk struct {
	book    *domain.Book
	ledger  *Ledger
	audit   domain.AuditSink
	metrics *infra.Metrics
	nextID  atomic.Int64
}

// NewDesk creates the admission desk for a book and ledger.
func NewDesk(book *domain.Book, ledger *Ledger, audit domain.AuditSink, metrics *infra.Metrics) *Desk {
	return &Desk{
		book:    book,
		ledger:  ledger,
		audit:   audit,
		metrics: metrics,
	}
}

// Admit validates and places a new order. Validation failures (unknown
// symbol, bad side or volume) return an error and no order. Liquidity
// denial is not an error: the returned order is REJECTED with its signal
// already fired, and it never enters the ledger. Otherwise the order is
// appended PENDING and its outcome arrives through the completion signal.
func (d *Desk) Admit(clientID int64, symbol, side string, volume int64, limit decimal.Decimal) (*domain.Order, error) {
	if side != domain.SideBuy && side != domain.SideSell {
		return nil, domain.ErrInvalidSide
	}
	if volume <= 0 {
		return nil, domain.ErrInvalidVolume
	}

	inst, err := d.book.Lookup(symbol)
	if err != nil {
		return nil, err
	}

	o := domain.NewOrder(d.nextID.Add(1), clientID, symbol, side, volume, limit)

	if !inst.TryAllocate(volume) {
		if err := o.Complete(domain.StatusRejected); err != nil {
			// Unreachable for a fresh order; report, never mask.
			slog.Error("rejected order signalled twice",
				slog.Int64("order_id", o.ID), slog.Any("error", err))
		}
		d.audit.LogOrder(o)
		d.metrics.RecordRejected()
		return o, nil
	}

	d.ledger.Append(o)
	d.audit.LogOrder(o)
	d.metrics.RecordAdmitted()
	return o, nil
}
