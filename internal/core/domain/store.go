// internal/core/domain/store.go
package domain

import (
	"fmt"
	"time"
)

// StoreType represents the role a store plays in the chain
type StoreType string

// Store type constants
const (
	StoreTypeSales        StoreType = "sales"
	StoreTypeLogistics    StoreType = "logistics"
	StoreTypeHeadquarters StoreType = "headquarters"
)

// Store represents a physical location in the retail chain.
// Sales stores record transactions, the logistics store holds the
// central stock, and headquarters consumes consolidated reporting.
type Store struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Type      StoreType `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate performs domain validation on the store
func (s *Store) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch s.Type {
	case StoreTypeSales, StoreTypeLogistics, StoreTypeHeadquarters:
	case "":
		s.Type = StoreTypeSales
	default:
		return fmt.Errorf("invalid store type: %s", s.Type)
	}
	return nil
}

// CanSell reports whether the store records sale transactions.
func (s *Store) CanSell() bool {
	return s.Type == StoreTypeSales
}
