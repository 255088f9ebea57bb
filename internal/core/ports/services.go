// internal/core/ports/services.go
package ports

import (
	"context"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
)

// ProductService defines the application service port for the catalog.
type ProductService interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id int64, product *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, params ProductListParams) (*ProductListResult, error)
	Delete(ctx context.Context, id int64) error
}

// StockService defines the application service port for stock levels.
type StockService interface {
	Get(ctx context.Context, storeID, productID int64) (*domain.StockLevel, error)
	ListByStore(ctx context.Context, storeID int64) ([]*domain.StockLevel, error)
	Set(ctx context.Context, level *domain.StockLevel) error
	Increment(ctx context.Context, adj domain.StockAdjustment) (*domain.StockLevel, error)
	Decrement(ctx context.Context, adj domain.StockAdjustment) (*domain.StockLevel, error)
	ListLow(ctx context.Context, storeID int64, threshold int) ([]*domain.StockLevel, error)
}

// SaleService defines the application service port for sale transactions.
// RecordSale validates, snapshots prices, persists and decrements stock as
// one unit; ProcessReturn reverses a sale exactly once.
type SaleService interface {
	RecordSale(ctx context.Context, storeID int64, lines []domain.SaleLine) (*domain.Sale, error)
	GetByID(ctx context.Context, id int64) (*domain.Sale, error)
	ListByStore(ctx context.Context, storeID int64, page, pageSize int) (*SaleListResult, error)
	ProcessReturn(ctx context.Context, saleID int64) (*domain.Sale, error)
}

// ReplenishmentService defines the application service port for stock
// transfers from the logistics store.
type ReplenishmentService interface {
	Request(ctx context.Context, req *domain.ReplenishmentRequest) error
	ListPending(ctx context.Context) ([]*domain.ReplenishmentRequest, error)
	Approve(ctx context.Context, id int64) (*domain.ReplenishmentRequest, error)
	Reject(ctx context.Context, id int64) (*domain.ReplenishmentRequest, error)
}

// StoreService defines the application service port for stores.
type StoreService interface {
	Create(ctx context.Context, store *domain.Store) error
	GetByID(ctx context.Context, id int64) (*domain.Store, error)
	List(ctx context.Context) ([]*domain.Store, error)
}

// ProductListParams holds parameters for listing catalog products
type ProductListParams struct {
	Search    string
	Category  string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// ProductListResult holds the result of listing catalog products
type ProductListResult struct {
	Products   []*domain.Product `json:"products"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int64             `json:"total_count"`
	TotalPages int               `json:"total_pages"`
}

// SaleListResult holds the result of listing sales for a store
type SaleListResult struct {
	Sales      []*domain.Sale `json:"sales"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
	TotalPages int            `json:"total_pages"`
}
