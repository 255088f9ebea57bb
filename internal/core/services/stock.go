// internal/core/services/stock.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
)

// StockService handles stock ledger business logic
type StockService struct {
	repo     ports.StockRepository
	products ports.ProductRepository
	stores   ports.StoreRepository
	logger   *slog.Logger
}

var _ ports.StockService = (*StockService)(nil)

// NewStockService creates a new stock service
func NewStockService(repo ports.StockRepository, products ports.ProductRepository, stores ports.StoreRepository, logger *slog.Logger) *StockService {
	return &StockService{
		repo:     repo,
		products: products,
		stores:   stores,
		logger:   logger.With(slog.String("service", "stock")),
	}
}

// Get retrieves the stock level of one product at one store
func (s *StockService) Get(ctx context.Context, storeID, productID int64) (*domain.StockLevel, error) {
	level, err := s.repo.Find(ctx, storeID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock level: %w", err)
	}
	return level, nil
}

// ListByStore retrieves every stock level held at one store
func (s *StockService) ListByStore(ctx context.Context, storeID int64) ([]*domain.StockLevel, error) {
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return nil, err
	}

	levels, err := s.repo.FindByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}
	return levels, nil
}

// Set writes an absolute stock quantity, creating the level if needed.
// Both the store and the product must exist; the ledger never references
// phantom rows.
func (s *StockService) Set(ctx context.Context, level *domain.StockLevel) error {
	if err := level.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := s.checkRefs(ctx, level.StoreID, level.ProductID); err != nil {
		return err
	}

	if err := s.repo.Upsert(ctx, level); err != nil {
		return fmt.Errorf("failed to set stock level: %w", err)
	}

	s.logger.InfoContext(ctx, "stock level set",
		slog.Int64("store_id", level.StoreID),
		slog.Int64("product_id", level.ProductID),
		slog.Int("quantity", level.Quantity))

	return nil
}

// Increment adds the adjustment quantity to a stock level
func (s *StockService) Increment(ctx context.Context, adj domain.StockAdjustment) (*domain.StockLevel, error) {
	if err := adj.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.checkRefs(ctx, adj.StoreID, adj.ProductID); err != nil {
		return nil, err
	}

	level, err := s.repo.Increment(ctx, adj.StoreID, adj.ProductID, adj.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to increment stock level: %w", err)
	}

	s.logger.InfoContext(ctx, "stock incremented",
		slog.Int64("store_id", adj.StoreID),
		slog.Int64("product_id", adj.ProductID),
		slog.Int("by", adj.Quantity),
		slog.Int("quantity", level.Quantity))

	return level, nil
}

// Decrement subtracts the adjustment quantity from a stock level.
// The repository applies the quantity guard atomically; an over-draw
// surfaces as an InsufficientStockError and leaves the level untouched.
func (s *StockService) Decrement(ctx context.Context, adj domain.StockAdjustment) (*domain.StockLevel, error) {
	if err := adj.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	level, err := s.repo.Decrement(ctx, adj.StoreID, adj.ProductID, adj.Quantity)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "stock decremented",
		slog.Int64("store_id", adj.StoreID),
		slog.Int64("product_id", adj.ProductID),
		slog.Int("by", adj.Quantity),
		slog.Int("quantity", level.Quantity))

	return level, nil
}

// ListLow retrieves stock levels at or below the threshold for one store
func (s *StockService) ListLow(ctx context.Context, storeID int64, threshold int) ([]*domain.StockLevel, error) {
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return nil, err
	}

	levels, err := s.repo.FindLow(ctx, storeID, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	return levels, nil
}

// checkRefs verifies both sides of a stock level exist
func (s *StockService) checkRefs(ctx context.Context, storeID, productID int64) error {
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return err
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return err
	}
	return nil
}
