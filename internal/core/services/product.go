// internal/core/services/product.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
)

// ProductService handles catalog business logic
type ProductService struct {
	repo   ports.ProductRepository
	cache  ports.CacheRepository
	logger *slog.Logger
}

// Statically assert that *ProductService implements the ProductService interface.
var _ ports.ProductService = (*ProductService)(nil)

// NewProductService creates a new product service
func NewProductService(repo ports.ProductRepository, cache ports.CacheRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		cache:  cache,
		logger: logger.With(slog.String("service", "product")),
	}
}

// Create validates and persists a new catalog product
func (s *ProductService) Create(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateReports(ctx)

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("name", product.Name))

	return nil
}

// Update validates and persists changes to an existing product.
// Persisted sales keep the unit price captured at recording time, so a
// price change here never rewrites history.
func (s *ProductService) Update(ctx context.Context, id int64, product *domain.Product) error {
	product.ID = id

	if err := product.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidateReports(ctx)

	s.logger.InfoContext(ctx, "product updated",
		slog.Int64("product_id", id))

	return nil
}

// GetByID retrieves a catalog product
func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// List retrieves catalog products with filtering and pagination
func (s *ProductService) List(ctx context.Context, params ports.ProductListParams) (*ports.ProductListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 50
	}

	filter := domain.ProductFilter{
		NameContains: params.Search,
		Category:     params.Category,
		SortBy:       params.SortBy,
		SortOrder:    params.SortOrder,
		Limit:        params.PageSize,
		Offset:       (params.Page - 1) * params.PageSize,
	}

	products, totalCount, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	var totalPages int
	if params.PageSize > 0 {
		totalPages = int(totalCount) / params.PageSize
		if int(totalCount)%params.PageSize > 0 {
			totalPages++
		}
	}

	return &ports.ProductListResult{
		Products:   products,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// Delete removes a product from the catalog
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.invalidateReports(ctx)

	s.logger.InfoContext(ctx, "product deleted",
		slog.Int64("product_id", id))

	return nil
}

// invalidateReports drops cached report payloads after a catalog change.
// A cache failure only delays report freshness, so it is logged and
// swallowed.
func (s *ProductService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "report:*"); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate report cache",
			slog.String("error", err.Error()))
	}
}
