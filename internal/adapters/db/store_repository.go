// internal/adapters/db/store_repository.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
)

// storeRepository implements ports.StoreRepository
type storeRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewStoreRepository creates a new store repository
func NewStoreRepository(db *Database, logger *slog.Logger) ports.StoreRepository {
	return &storeRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "store")),
	}
}

// Save creates a new store
func (r *storeRepository) Save(ctx context.Context, store *domain.Store) error {
	query := `
		INSERT INTO store (name, address, type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		store.Name, nullIfEmpty(store.Address), store.Type,
	).Scan(&store.ID, &store.CreatedAt, &store.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}

	r.logger.DebugContext(ctx, "store saved",
		slog.Int64("store_id", store.ID),
		slog.String("type", string(store.Type)))

	return nil
}

// FindByID retrieves a store by ID
func (r *storeRepository) FindByID(ctx context.Context, id int64) (*domain.Store, error) {
	query := `
		SELECT id, name, address, type, created_at, updated_at
		FROM store
		WHERE id = $1`

	store, err := scanStore(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("store %d: %w", id, domain.ErrStoreNotFound)
		}
		return nil, fmt.Errorf("failed to find store: %w", err)
	}

	return store, nil
}

// FindAll retrieves every store in the chain
func (r *storeRepository) FindAll(ctx context.Context) ([]*domain.Store, error) {
	query := `
		SELECT id, name, address, type, created_at, updated_at
		FROM store
		ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	var stores []*domain.Store
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, store)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return stores, nil
}

// FindLogistics retrieves the logistics store holding the central stock.
// The chain runs a single logistics store; the lowest ID wins if the
// data ever contains more than one.
func (r *storeRepository) FindLogistics(ctx context.Context) (*domain.Store, error) {
	query := `
		SELECT id, name, address, type, created_at, updated_at
		FROM store
		WHERE type = $1
		ORDER BY id ASC
		LIMIT 1`

	store, err := scanStore(r.db.QueryRow(ctx, query, domain.StoreTypeLogistics))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("logistics store: %w", domain.ErrStoreNotFound)
		}
		return nil, fmt.Errorf("failed to find logistics store: %w", err)
	}

	return store, nil
}

// scanStore scans one store row, handling nullable columns
func scanStore(row pgx.Row) (*domain.Store, error) {
	store := &domain.Store{}
	var address sql.NullString

	err := row.Scan(
		&store.ID, &store.Name, &address, &store.Type,
		&store.CreatedAt, &store.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	store.Address = address.String

	return store, nil
}
