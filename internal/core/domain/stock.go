// internal/core/domain/stock.go
package domain

import (
	"fmt"
	"time"
)

// DefaultLowStockThreshold is the quantity at or below which a stock
// level is considered low when the caller does not supply a threshold.
const DefaultLowStockThreshold = 5

// StockLevel represents the on-hand quantity of one product at one store.
// Quantity never goes below zero; decrements that would cross zero are
// rejected with an InsufficientStockError.
type StockLevel struct {
	StoreID   int64     `json:"store_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate performs domain validation on the stock level
func (s *StockLevel) Validate() error {
	if s.StoreID <= 0 {
		return fmt.Errorf("store_id is required")
	}
	if s.ProductID <= 0 {
		return fmt.Errorf("product_id is required")
	}
	if s.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	return nil
}

// IsLow reports whether the level is at or below the given threshold.
func (s *StockLevel) IsLow(threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return s.Quantity <= threshold
}

// StockAdjustment is a single quantity movement applied to a stock level.
type StockAdjustment struct {
	StoreID   int64 `json:"store_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Validate checks the adjustment carries a usable quantity
func (a *StockAdjustment) Validate() error {
	if a.StoreID <= 0 {
		return fmt.Errorf("store_id is required")
	}
	if a.ProductID <= 0 {
		return fmt.Errorf("product_id is required")
	}
	if a.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	return nil
}
