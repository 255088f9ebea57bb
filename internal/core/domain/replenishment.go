// internal/core/domain/replenishment.go
package domain

import (
	"fmt"
	"time"
)

// ReplenishmentStatus represents the lifecycle state of a request
type ReplenishmentStatus string

const (
	ReplenishmentPending  ReplenishmentStatus = "pending"
	ReplenishmentApproved ReplenishmentStatus = "approved"
	ReplenishmentRejected ReplenishmentStatus = "rejected"
)

// ReplenishmentRequest is a sales store asking the logistics store to
// transfer stock of one product. Approval moves the quantity from the
// logistics store to the requesting store in a single transaction.
type ReplenishmentRequest struct {
	ID        int64               `json:"id"`
	StoreID   int64               `json:"store_id"`
	ProductID int64               `json:"product_id"`
	Quantity  int                 `json:"quantity"`
	Status    ReplenishmentStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Validate performs domain validation on the request
func (r *ReplenishmentRequest) Validate() error {
	if r.StoreID <= 0 {
		return fmt.Errorf("store_id is required")
	}
	if r.ProductID <= 0 {
		return fmt.Errorf("product_id is required")
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if r.Status == "" {
		r.Status = ReplenishmentPending
	}
	return nil
}

// IsPending reports whether the request can still be approved or rejected.
func (r *ReplenishmentRequest) IsPending() bool {
	return r.Status == ReplenishmentPending
}
