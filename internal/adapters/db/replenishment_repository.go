// internal/adapters/db/replenishment_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
)

// replenishmentRepository implements ports.ReplenishmentRepository
type replenishmentRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewReplenishmentRepository creates a new replenishment repository
func NewReplenishmentRepository(db *Database, logger *slog.Logger) ports.ReplenishmentRepository {
	return &replenishmentRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "replenishment")),
	}
}

// Save creates a new replenishment request in pending state
func (r *replenishmentRepository) Save(ctx context.Context, req *domain.ReplenishmentRequest) error {
	query := `
		INSERT INTO replenishment_request (store_id, product_id, quantity, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		req.StoreID, req.ProductID, req.Quantity, req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save replenishment request: %w", err)
	}

	r.logger.DebugContext(ctx, "replenishment request saved",
		slog.Int64("request_id", req.ID),
		slog.Int64("store_id", req.StoreID),
		slog.Int64("product_id", req.ProductID))

	return nil
}

// FindByID retrieves a replenishment request by ID
func (r *replenishmentRepository) FindByID(ctx context.Context, id int64) (*domain.ReplenishmentRequest, error) {
	query := `
		SELECT id, store_id, product_id, quantity, status, created_at, updated_at
		FROM replenishment_request
		WHERE id = $1`

	req, err := scanReplenishment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("replenishment request %d: %w", id, domain.ErrReplenishmentNotFound)
		}
		return nil, fmt.Errorf("failed to find replenishment request: %w", err)
	}

	return req, nil
}

// FindByStatus retrieves requests in one lifecycle state, oldest first
func (r *replenishmentRepository) FindByStatus(ctx context.Context, status domain.ReplenishmentStatus) ([]*domain.ReplenishmentRequest, error) {
	query := `
		SELECT id, store_id, product_id, quantity, status, created_at, updated_at
		FROM replenishment_request
		WHERE status = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query replenishment requests: %w", err)
	}
	defer rows.Close()

	var reqs []*domain.ReplenishmentRequest
	for rows.Next() {
		req, err := scanReplenishment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan replenishment request: %w", err)
		}
		reqs = append(reqs, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return reqs, nil
}

// Approve marks a pending request approved and moves the stock from the
// logistics store to the requesting store in one transaction. The status
// flip is conditional on pending, so concurrent approvals commit exactly
// one transfer.
func (r *replenishmentRepository) Approve(ctx context.Context, id int64, fromStoreID int64) (*domain.ReplenishmentRequest, error) {
	req := &domain.ReplenishmentRequest{}

	err := r.db.Serializable(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE replenishment_request
			SET status = $2, updated_at = now()
			WHERE id = $1 AND status = $3
			RETURNING id, store_id, product_id, quantity, status, created_at, updated_at`,
			id, domain.ReplenishmentApproved, domain.ReplenishmentPending,
		).Scan(
			&req.ID, &req.StoreID, &req.ProductID, &req.Quantity,
			&req.Status, &req.CreatedAt, &req.UpdatedAt,
		)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to approve replenishment request: %w", err)
			}
			return r.notPendingOrMissing(ctx, tx, id)
		}

		var remaining int
		err = tx.QueryRow(ctx, `
			UPDATE store_stock
			SET quantity = quantity - $3, updated_at = now()
			WHERE store_id = $1 AND product_id = $2 AND quantity >= $3
			RETURNING quantity`,
			fromStoreID, req.ProductID, req.Quantity,
		).Scan(&remaining)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return insufficientInTx(ctx, tx, fromStoreID, req.ProductID, req.Quantity)
			}
			return fmt.Errorf("failed to decrement central stock: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO store_stock (store_id, product_id, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (store_id, product_id)
			DO UPDATE SET quantity = store_stock.quantity + EXCLUDED.quantity, updated_at = now()`,
			req.StoreID, req.ProductID, req.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to increment store stock: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "replenishment request approved",
		slog.Int64("request_id", req.ID),
		slog.Int64("store_id", req.StoreID),
		slog.Int64("product_id", req.ProductID),
		slog.Int("quantity", req.Quantity))

	return req, nil
}

// Reject marks a pending request rejected without touching stock
func (r *replenishmentRepository) Reject(ctx context.Context, id int64) (*domain.ReplenishmentRequest, error) {
	req := &domain.ReplenishmentRequest{}

	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE replenishment_request
			SET status = $2, updated_at = now()
			WHERE id = $1 AND status = $3
			RETURNING id, store_id, product_id, quantity, status, created_at, updated_at`,
			id, domain.ReplenishmentRejected, domain.ReplenishmentPending,
		).Scan(
			&req.ID, &req.StoreID, &req.ProductID, &req.Quantity,
			&req.Status, &req.CreatedAt, &req.UpdatedAt,
		)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to reject replenishment request: %w", err)
			}
			return r.notPendingOrMissing(ctx, tx, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "replenishment request rejected",
		slog.Int64("request_id", req.ID))

	return req, nil
}

// notPendingOrMissing distinguishes a missing request from one that has
// already left the pending state.
func (r *replenishmentRepository) notPendingOrMissing(ctx context.Context, tx pgx.Tx, id int64) error {
	var status domain.ReplenishmentStatus
	err := tx.QueryRow(ctx,
		`SELECT status FROM replenishment_request WHERE id = $1`, id,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("replenishment request %d: %w", id, domain.ErrReplenishmentNotFound)
		}
		return fmt.Errorf("failed to read replenishment request: %w", err)
	}
	return fmt.Errorf("replenishment request %d is %s: %w", id, status, domain.ErrRequestNotPending)
}

// scanReplenishment scans one replenishment request row
func scanReplenishment(row pgx.Row) (*domain.ReplenishmentRequest, error) {
	req := &domain.ReplenishmentRequest{}
	err := row.Scan(
		&req.ID, &req.StoreID, &req.ProductID, &req.Quantity,
		&req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}
