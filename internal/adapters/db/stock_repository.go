// internal/adapters/db/stock_repository.go
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

// stockRepository implements ports.StockRepository
type stockRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *Database, logger *slog.Logger) ports.StockRepository {
	return &stockRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "stock")),
	}
}

// Find retrieves the stock level of one product at one store
func (r *stockRepository) Find(ctx context.Context, storeID, productID int64) (*domain.StockLevel, error) {
	query := `
		SELECT store_id, product_id, quantity, updated_at
		FROM store_stock
		WHERE store_id = $1 AND product_id = $2`

	level := &domain.StockLevel{}
	err := r.db.QueryRow(ctx, query, storeID, productID).Scan(
		&level.StoreID, &level.ProductID, &level.Quantity, &level.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("store %d product %d: %w", storeID, productID, domain.ErrStockNotFound)
		}
		return nil, fmt.Errorf("failed to find stock level: %w", err)
	}

	return level, nil
}

// FindByStore retrieves every stock level held at one store
func (r *stockRepository) FindByStore(ctx context.Context, storeID int64) ([]*domain.StockLevel, error) {
	query := `
		SELECT store_id, product_id, quantity, updated_at
		FROM store_stock
		WHERE store_id = $1
		ORDER BY product_id ASC`

	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock levels: %w", err)
	}
	defer rows.Close()

	return scanStockLevels(rows)
}

// Upsert sets the stock level to an absolute quantity, creating the row
// when the product has never been stocked at the store.
func (r *stockRepository) Upsert(ctx context.Context, level *domain.StockLevel) error {
	query := `
		INSERT INTO store_stock (store_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (store_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query, level.StoreID, level.ProductID, level.Quantity).
		Scan(&level.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert stock level: %w", err)
	}

	r.logger.DebugContext(ctx, "stock level set",
		slog.Int64("store_id", level.StoreID),
		slog.Int64("product_id", level.ProductID),
		slog.Int("quantity", level.Quantity))

	return nil
}

// Increment adds qty to the stock level, creating the row at qty when
// the product has never been stocked at the store.
func (r *stockRepository) Increment(ctx context.Context, storeID, productID int64, qty int) (*domain.StockLevel, error) {
	query := `
		INSERT INTO store_stock (store_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (store_id, product_id)
		DO UPDATE SET quantity = store_stock.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING store_id, product_id, quantity, updated_at`

	level := &domain.StockLevel{}
	err := r.db.QueryRow(ctx, query, storeID, productID, qty).Scan(
		&level.StoreID, &level.ProductID, &level.Quantity, &level.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to increment stock level: %w", err)
	}

	return level, nil
}

// Decrement subtracts qty from the stock level. The quantity guard sits
// in the UPDATE itself, so concurrent decrements can never take the
// level below zero regardless of interleaving.
func (r *stockRepository) Decrement(ctx context.Context, storeID, productID int64, qty int) (*domain.StockLevel, error) {
	query := `
		UPDATE store_stock
		SET quantity = quantity - $3, updated_at = now()
		WHERE store_id = $1 AND product_id = $2 AND quantity >= $3
		RETURNING store_id, product_id, quantity, updated_at`

	level := &domain.StockLevel{}
	err := r.db.QueryRow(ctx, query, storeID, productID, qty).Scan(
		&level.StoreID, &level.ProductID, &level.Quantity, &level.UpdatedAt,
	)
	if err == nil {
		return level, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to decrement stock level: %w", err)
	}

	// No row matched: either the level does not exist or the quantity
	// guard rejected the decrement. Look up the current quantity to
	// tell the two apart.
	current, err := r.Find(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	return nil, &domain.InsufficientStockError{
		StoreID:   storeID,
		ProductID: productID,
		Requested: qty,
		Available: current.Quantity,
	}
}

// FindLow retrieves stock levels at or below the threshold for one store
func (r *stockRepository) FindLow(ctx context.Context, storeID int64, threshold int) ([]*domain.StockLevel, error) {
	if threshold <= 0 {
		threshold = domain.DefaultLowStockThreshold
	}

	query := `
		SELECT store_id, product_id, quantity, updated_at
		FROM store_stock
		WHERE store_id = $1 AND quantity <= $2
		ORDER BY quantity ASC, product_id ASC`

	rows, err := r.db.Query(ctx, query, storeID, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock levels: %w", err)
	}
	defer rows.Close()

	return scanStockLevels(rows)
}

// Transfer moves qty of a product from one store to another in a single
// transaction. The source decrement carries the same quantity guard as
// Decrement, so an over-draw rolls the whole transfer back.
func (r *stockRepository) Transfer(ctx context.Context, fromStoreID, toStoreID, productID int64, qty int) error {
	err := r.db.Transaction(ctx, func(tx pgx.Tx) error {
		var remaining int
		err := tx.QueryRow(ctx, `
			UPDATE store_stock
			SET quantity = quantity - $3, updated_at = now()
			WHERE store_id = $1 AND product_id = $2 AND quantity >= $3
			RETURNING quantity`,
			fromStoreID, productID, qty,
		).Scan(&remaining)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return insufficientInTx(ctx, tx, fromStoreID, productID, qty)
			}
			return fmt.Errorf("failed to decrement source stock: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO store_stock (store_id, product_id, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (store_id, product_id)
			DO UPDATE SET quantity = store_stock.quantity + EXCLUDED.quantity, updated_at = now()`,
			toStoreID, productID, qty,
		)
		if err != nil {
			return fmt.Errorf("failed to increment destination stock: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "stock transferred",
		slog.Int64("from_store_id", fromStoreID),
		slog.Int64("to_store_id", toStoreID),
		slog.Int64("product_id", productID),
		slog.Int("quantity", qty))

	return nil
}

// scanStockLevels drains rows into stock levels
func scanStockLevels(rows pgx.Rows) ([]*domain.StockLevel, error) {
	var levels []*domain.StockLevel
	for rows.Next() {
		level := &domain.StockLevel{}
		err := rows.Scan(&level.StoreID, &level.ProductID, &level.Quantity, &level.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		levels = append(levels, level)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return levels, nil
}
