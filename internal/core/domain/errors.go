// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by repositories and services. Handlers map
// them to HTTP status codes with errors.Is.
var (
	ErrProductNotFound       = errors.New("product not found")
	ErrStoreNotFound         = errors.New("store not found")
	ErrStockNotFound         = errors.New("stock level not found")
	ErrSaleNotFound          = errors.New("sale not found")
	ErrAlreadyReturned       = errors.New("sale already returned")
	ErrReplenishmentNotFound = errors.New("replenishment request not found")
	ErrRequestNotPending     = errors.New("replenishment request is not pending")
	ErrStoreCannotSell       = errors.New("store does not record sales")
)

// InsufficientStockError is returned when a decrement would take a
// stock level below zero. It carries the quantities so callers can
// report what was available without a second query.
type InsufficientStockError struct {
	StoreID   int64
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d at store %d: requested %d, available %d",
		e.ProductID, e.StoreID, e.Requested, e.Available)
}

// IsInsufficientStock reports whether err wraps an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
