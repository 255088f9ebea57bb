// internal/core/domain/product.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog product shared by every store in the chain.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Validate performs domain validation on the product
func (p *Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	return nil
}

// ProductFilter holds the supported catalog search criteria.
// An empty filter matches every product.
type ProductFilter struct {
	NameContains string
	Category     string
	SortBy       string
	SortOrder    string
	Limit        int
	Offset       int
}
