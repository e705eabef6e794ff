package domain

import "github.com/shopspring/decimal"

// AuditSink receives the durable trail of order lifecycle events. All
// methods are fire-and-forget: implementations must not block the caller
// and must keep their failures local, never propagating them into the
// admission or matching path.
type AuditSink interface {
	LogOrder(o *Order)
	UpdateOrderStatus(orderID int64, status string)
	LogExecution(orderID int64, volume int64, value, commission decimal.Decimal)
	LogCancellation(orderID int64, reason string)
}

// NopAuditSink discards every event. Useful in tests and when the venue
// runs without persistence.
type NopAuditSink struct{}

func (NopAuditSink) LogOrder(*Order)                                             {}
func (NopAuditSink) UpdateOrderStatus(int64, string)                             {}
func (NopAuditSink) LogExecution(int64, int64, decimal.Decimal, decimal.Decimal) {}
func (NopAuditSink) LogCancellation(int64, string)                               {}
