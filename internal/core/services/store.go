// internal/core/services/store.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
)

// StoreService handles store business logic
type StoreService struct {
	repo   ports.StoreRepository
	logger *slog.Logger
}

var _ ports.StoreService = (*StoreService)(nil)

// NewStoreService creates a new store service
func NewStoreService(repo ports.StoreRepository, logger *slog.Logger) *StoreService {
	return &StoreService{
		repo:   repo,
		logger: logger.With(slog.String("service", "store")),
	}
}

// Create validates and persists a new store
func (s *StoreService) Create(ctx context.Context, store *domain.Store) error {
	if err := store.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := s.repo.Save(ctx, store); err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	s.logger.InfoContext(ctx, "store created",
		slog.Int64("store_id", store.ID),
		slog.String("type", string(store.Type)))

	return nil
}

// GetByID retrieves a store
func (s *StoreService) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return store, nil
}

// List retrieves every store in the chain
func (s *StoreService) List(ctx context.Context) ([]*domain.Store, error) {
	stores, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}
