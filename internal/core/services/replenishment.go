// internal/core/services/replenishment.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
)

// ReplenishmentService coordinates stock transfers from the logistics
// store to sales stores.
type ReplenishmentService struct {
	repo     ports.ReplenishmentRepository
	stores   ports.StoreRepository
	products ports.ProductRepository
	logger   *slog.Logger
}

var _ ports.ReplenishmentService = (*ReplenishmentService)(nil)

// NewReplenishmentService creates a new replenishment service
func NewReplenishmentService(
	repo ports.ReplenishmentRepository,
	stores ports.StoreRepository,
	products ports.ProductRepository,
	logger *slog.Logger,
) *ReplenishmentService {
	return &ReplenishmentService{
		repo:     repo,
		stores:   stores,
		products: products,
		logger:   logger.With(slog.String("service", "replenishment")),
	}
}

// Request validates and files a new replenishment request
func (s *ReplenishmentService) Request(ctx context.Context, req *domain.ReplenishmentRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	store, err := s.stores.FindByID(ctx, req.StoreID)
	if err != nil {
		return err
	}
	if !store.CanSell() {
		return fmt.Errorf("store %d is %s: %w", req.StoreID, store.Type, domain.ErrStoreCannotSell)
	}
	if _, err := s.products.FindByID(ctx, req.ProductID); err != nil {
		return err
	}

	req.Status = domain.ReplenishmentPending
	if err := s.repo.Save(ctx, req); err != nil {
		return fmt.Errorf("failed to file replenishment request: %w", err)
	}

	s.logger.InfoContext(ctx, "replenishment requested",
		slog.Int64("request_id", req.ID),
		slog.Int64("store_id", req.StoreID),
		slog.Int64("product_id", req.ProductID),
		slog.Int("quantity", req.Quantity))

	return nil
}

// ListPending retrieves requests awaiting a decision
func (s *ReplenishmentService) ListPending(ctx context.Context) ([]*domain.ReplenishmentRequest, error) {
	reqs, err := s.repo.FindByStatus(ctx, domain.ReplenishmentPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return reqs, nil
}

// Approve transfers the requested quantity from the logistics store to
// the requesting store. The repository runs the status flip and the
// transfer in one transaction; a shortage at the logistics store rolls
// everything back and leaves the request pending.
func (s *ReplenishmentService) Approve(ctx context.Context, id int64) (*domain.ReplenishmentRequest, error) {
	logistics, err := s.stores.FindLogistics(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.repo.Approve(ctx, id, logistics.ID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "replenishment approved",
		slog.Int64("request_id", req.ID),
		slog.Int64("from_store_id", logistics.ID),
		slog.Int64("to_store_id", req.StoreID))

	return req, nil
}

// Reject declines a pending request without moving stock
func (s *ReplenishmentService) Reject(ctx context.Context, id int64) (*domain.ReplenishmentRequest, error) {
	req, err := s.repo.Reject(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "replenishment rejected",
		slog.Int64("request_id", req.ID))

	return req, nil
}
