// internal/core/domain/sale.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SaleLine is one product position inside a sale. UnitPrice is the
// catalog price captured at the moment of recording; later catalog
// changes never alter a persisted sale.
type SaleLine struct {
	ID        int64           `json:"id,omitempty"`
	SaleID    int64           `json:"sale_id,omitempty"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal returns unit price times quantity for the line.
func (l *SaleLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Sale represents a completed point-of-sale transaction at one store.
// A returned sale stays on record with the Returned flag set; rows are
// never deleted, so reporting keeps its full history.
type Sale struct {
	ID         int64           `json:"id"`
	StoreID    int64           `json:"store_id"`
	Total      decimal.Decimal `json:"total"`
	Returned   bool            `json:"returned"`
	ReturnedAt *time.Time      `json:"returned_at,omitempty"`
	Lines      []SaleLine      `json:"lines"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Validate performs domain validation on the sale
func (s *Sale) Validate() error {
	if s.StoreID <= 0 {
		return fmt.Errorf("store_id is required")
	}
	if len(s.Lines) == 0 {
		return fmt.Errorf("at least one line is required")
	}
	seen := make(map[int64]bool, len(s.Lines))
	for i := range s.Lines {
		line := &s.Lines[i]
		if line.ProductID <= 0 {
			return fmt.Errorf("line %d: product_id is required", i)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("line %d: quantity must be positive", i)
		}
		if seen[line.ProductID] {
			return fmt.Errorf("line %d: duplicate product %d", i, line.ProductID)
		}
		seen[line.ProductID] = true
	}
	return nil
}

// ComputeTotal recalculates and sets the sale total from its lines.
func (s *Sale) ComputeTotal() {
	total := decimal.Zero
	for i := range s.Lines {
		total = total.Add(s.Lines[i].Subtotal())
	}
	s.Total = total
}
