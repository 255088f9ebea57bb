// internal/core/services/sale.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
)

// SaleService coordinates sale recording and return processing. It
// validates against the catalog and the store registry, snapshots unit
// prices, and delegates the atomic persist-and-decrement to the sale
// repository.
type SaleService struct {
	sales    ports.SaleRepository
	products ports.ProductRepository
	stores   ports.StoreRepository
	stock    ports.StockRepository
	tasks    TaskEnqueuer
	logger   *slog.Logger
}

var _ ports.SaleService = (*SaleService)(nil)

// NewSaleService creates a new sale service. tasks may be nil when no
// background queue is wired (tests, seeder).
func NewSaleService(
	sales ports.SaleRepository,
	products ports.ProductRepository,
	stores ports.StoreRepository,
	stock ports.StockRepository,
	tasks TaskEnqueuer,
	logger *slog.Logger,
) *SaleService {
	return &SaleService{
		sales:    sales,
		products: products,
		stores:   stores,
		stock:    stock,
		tasks:    tasks,
		logger:   logger.With(slog.String("service", "sale")),
	}
}

// RecordSale validates the requested lines, snapshots the current
// catalog price into each line, and persists the sale together with its
// stock decrements as one transaction. When any line cannot be covered
// the whole sale is rejected and no stock moves.
//
// The availability check before persisting is a fast-fail courtesy; the
// decisive check is the quantity guard inside the repository
// transaction, so a concurrent competing sale can never oversell.
func (s *SaleService) RecordSale(ctx context.Context, storeID int64, lines []domain.SaleLine) (*domain.Sale, error) {
	sale := &domain.Sale{StoreID: storeID, Lines: lines}
	if err := sale.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !store.CanSell() {
		return nil, fmt.Errorf("store %d is %s: %w", storeID, store.Type, domain.ErrStoreCannotSell)
	}

	ids := make([]int64, 0, len(sale.Lines))
	for i := range sale.Lines {
		ids = append(ids, sale.Lines[i].ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	for i := range sale.Lines {
		line := &sale.Lines[i]

		product, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrProductNotFound)
		}
		line.UnitPrice = product.Price

		if err := s.checkAvailability(ctx, storeID, line); err != nil {
			return nil, err
		}
	}

	sale.ComputeTotal()

	if err := s.sales.Save(ctx, sale); err != nil {
		return nil, err
	}

	s.enqueueLowStockCheck(ctx, storeID)

	s.logger.InfoContext(ctx, "sale recorded",
		slog.Int64("sale_id", sale.ID),
		slog.Int64("store_id", storeID),
		slog.String("total", sale.Total.String()))

	return sale, nil
}

// GetByID retrieves a sale with its lines
func (s *SaleService) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	return sale, nil
}

// ListByStore retrieves sales for one store with pagination
func (s *SaleService) ListByStore(ctx context.Context, storeID int64, page, pageSize int) (*ports.SaleListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return nil, err
	}

	sales, totalCount, err := s.sales.FindByStore(ctx, storeID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	var totalPages int
	if pageSize > 0 {
		totalPages = int(totalCount) / pageSize
		if int(totalCount)%pageSize > 0 {
			totalPages++
		}
	}

	return &ports.SaleListResult{
		Sales:      sales,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// ProcessReturn reverses a sale exactly once: the returned flag flips
// and every line's quantity flows back to the selling store's stock in
// one transaction. A second return of the same sale fails with
// ErrAlreadyReturned and restores nothing.
func (s *SaleService) ProcessReturn(ctx context.Context, saleID int64) (*domain.Sale, error) {
	sale, err := s.sales.MarkReturned(ctx, saleID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "return processed",
		slog.Int64("sale_id", sale.ID),
		slog.Int64("store_id", sale.StoreID),
		slog.Int("lines", len(sale.Lines)))

	return sale, nil
}

// checkAvailability fast-fails a line whose stock clearly cannot cover
// it. A missing level reads as zero on hand.
func (s *SaleService) checkAvailability(ctx context.Context, storeID int64, line *domain.SaleLine) error {
	level, err := s.stock.Find(ctx, storeID, line.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrStockNotFound) {
			return &domain.InsufficientStockError{
				StoreID:   storeID,
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: 0,
			}
		}
		return err
	}

	if level.Quantity < line.Quantity {
		return &domain.InsufficientStockError{
			StoreID:   storeID,
			ProductID: line.ProductID,
			Requested: line.Quantity,
			Available: level.Quantity,
		}
	}

	return nil
}

// enqueueLowStockCheck schedules a background low-stock sweep after a
// sale commits. Queue failures never fail the sale.
func (s *SaleService) enqueueLowStockCheck(ctx context.Context, storeID int64) {
	if s.tasks == nil {
		return
	}

	task, err := NewLowStockCheckTask(storeID, domain.DefaultLowStockThreshold)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to build low stock task",
			slog.String("error", err.Error()))
		return
	}

	if _, err := s.tasks.Enqueue(task, asynq.Queue("low"), asynq.MaxRetry(3)); err != nil {
		s.logger.WarnContext(ctx, "failed to enqueue low stock check",
			slog.Int64("store_id", storeID),
			slog.String("error", err.Error()))
	}
}
