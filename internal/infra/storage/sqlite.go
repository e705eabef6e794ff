package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"trading_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists the venue's audit registries: one row per order, per
// execution and per cancellation. Rows are append-only; the only update
// is the order row's status on its terminal transition.
type Storage struct {
	db *gorm.DB
}

// New opens (or creates) the SQLite database at path and migrates the
// registry tables.
func New(path string) (*Storage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(
		&domain.OrderRecord{},
		&domain.ExecutionRecord{},
		&domain.CancellationRecord{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// ======================================================================================
// Order Registry
// ======================================================================================

// InsertOrder appends an order row. Every admitted or rejected order gets
// exactly one row.
func (s *Storage) InsertOrder(rec *domain.OrderRecord) error {
	return s.db.Create(rec).Error
}

// UpdateOrderStatus records an order's terminal status on its row.
func (s *Storage) UpdateOrderStatus(orderID int64, status string) error {
	return s.db.Model(&domain.OrderRecord{}).
		Where("order_id = ?", orderID).
		Update("status", status).Error
}

// Order retrieves an order row by id. Not found is not an error.
func (s *Storage) Order(orderID int64) (*domain.OrderRecord, error) {
	var rec domain.OrderRecord
	err := s.db.First(&rec, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Orders retrieves all order rows in insertion order.
func (s *Storage) Orders() ([]domain.OrderRecord, error) {
	var recs []domain.OrderRecord
	err := s.db.Order("order_id").Find(&recs).Error
	return recs, err
}

// ======================================================================================
// Execution Registry
// ======================================================================================

// InsertExecution appends an execution row.
func (s *Storage) InsertExecution(rec *domain.ExecutionRecord) error {
	return s.db.Create(rec).Error
}

// Executions retrieves execution rows for an order.
func (s *Storage) Executions(orderID int64) ([]domain.ExecutionRecord, error) {
	var recs []domain.ExecutionRecord
	err := s.db.Where("order_id = ?", orderID).Find(&recs).Error
	return recs, err
}

// ======================================================================================
// Cancellation Registry
// ======================================================================================

// InsertCancellation appends a cancellation row.
func (s *Storage) InsertCancellation(rec *domain.CancellationRecord) error {
	return s.db.Create(rec).Error
}

// Cancellations retrieves cancellation rows for an order.
func (s *Storage) Cancellations(orderID int64) ([]domain.CancellationRecord, error) {
	var recs []domain.CancellationRecord
	err := s.db.Where("order_id = ?", orderID).Find(&recs).Error
	return recs, err
}
