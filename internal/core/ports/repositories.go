// internal/core/ports/repositories.go
package ports

import (
	"context"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
)

// ProductRepository defines the persistence port for the product catalog.
// This interface is implemented by the database adapter.
type ProductRepository interface {
	Save(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int64, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// StoreRepository defines the persistence port for stores.
type StoreRepository interface {
	Save(ctx context.Context, store *domain.Store) error
	FindByID(ctx context.Context, id int64) (*domain.Store, error)
	FindAll(ctx context.Context) ([]*domain.Store, error)
	FindLogistics(ctx context.Context) (*domain.Store, error)
}

// StockRepository defines the persistence port for per-store stock levels.
// Decrement applies the quantity check and the update in one statement so
// concurrent callers can never drive a level below zero.
type StockRepository interface {
	Find(ctx context.Context, storeID, productID int64) (*domain.StockLevel, error)
	FindByStore(ctx context.Context, storeID int64) ([]*domain.StockLevel, error)
	Upsert(ctx context.Context, level *domain.StockLevel) error
	Increment(ctx context.Context, storeID, productID int64, qty int) (*domain.StockLevel, error)
	Decrement(ctx context.Context, storeID, productID int64, qty int) (*domain.StockLevel, error)
	FindLow(ctx context.Context, storeID int64, threshold int) ([]*domain.StockLevel, error)
	Transfer(ctx context.Context, fromStoreID, toStoreID, productID int64, qty int) error
}

// SaleRepository defines the persistence port for sale transactions.
// Save persists the sale and decrements every line's stock atomically;
// MarkReturned flips the returned flag and restores stock atomically.
type SaleRepository interface {
	Save(ctx context.Context, sale *domain.Sale) error
	FindByID(ctx context.Context, id int64) (*domain.Sale, error)
	FindByStore(ctx context.Context, storeID int64, limit, offset int) ([]*domain.Sale, int64, error)
	MarkReturned(ctx context.Context, id int64) (*domain.Sale, error)
}

// ReplenishmentRepository defines the persistence port for replenishment
// requests.
type ReplenishmentRepository interface {
	Save(ctx context.Context, req *domain.ReplenishmentRequest) error
	FindByID(ctx context.Context, id int64) (*domain.ReplenishmentRequest, error)
	FindByStatus(ctx context.Context, status domain.ReplenishmentStatus) ([]*domain.ReplenishmentRequest, error)
	Approve(ctx context.Context, id int64, fromStoreID int64) (*domain.ReplenishmentRequest, error)
	Reject(ctx context.Context, id int64) (*domain.ReplenishmentRequest, error)
}
