package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord is the persisted registry row for every order the venue has
// seen, rejected ones included. Status is the only column updated after
// insert, on the order's terminal transition.
type OrderRecord struct {
	OrderID    int64           `gorm:"primaryKey" json:"order_id"`
	ClientID   int64           `json:"client_id"`
	Symbol     string          `gorm:"index" json:"symbol"`
	Side       string          `json:"side"`
	Volume     int64           `json:"volume"`
	LimitPrice decimal.Decimal `gorm:"type:text" json:"limit_price"`
	Status     string          `json:"status"`
	PlacedAt   time.Time       `json:"placed_at"`
}

// ExecutionRecord is one row per executed order: the traded volume, the
// value at the execution price and the commission charged on it.
type ExecutionRecord struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderID    int64           `gorm:"index" json:"order_id"`
	Volume     int64           `json:"volume"`
	Value      decimal.Decimal `gorm:"type:text" json:"value"`
	Commission decimal.Decimal `gorm:"type:text" json:"commission"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// CancellationRecord is one row per cancelled order with the reason.
type CancellationRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     int64     `gorm:"index" json:"order_id"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}
