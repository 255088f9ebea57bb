// internal/adapters/db/sale_repository.go
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

// saleRepository implements ports.SaleRepository
type saleRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *Database, logger *slog.Logger) ports.SaleRepository {
	return &saleRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "sale")),
	}
}

// Save persists a sale and decrements the stock of every line in one
// SERIALIZABLE transaction. Each decrement re-checks the quantity inside
// the UPDATE, so a concurrent sale of the same product either serializes
// cleanly or fails the guard and rolls the whole sale back. Nothing is
// persisted when any line fails.
func (r *saleRepository) Save(ctx context.Context, sale *domain.Sale) error {
	err := r.db.Serializable(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO sale (store_id, total)
			VALUES ($1, $2)
			RETURNING id, created_at`,
			sale.StoreID, sale.Total,
		).Scan(&sale.ID, &sale.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert sale: %w", err)
		}

		for i := range sale.Lines {
			line := &sale.Lines[i]
			line.SaleID = sale.ID

			err := tx.QueryRow(ctx, `
				INSERT INTO sale_item (sale_id, product_id, quantity, unit_price)
				VALUES ($1, $2, $3, $4)
				RETURNING id`,
				line.SaleID, line.ProductID, line.Quantity, line.UnitPrice,
			).Scan(&line.ID)
			if err != nil {
				return fmt.Errorf("failed to insert sale line: %w", err)
			}

			var remaining int
			err = tx.QueryRow(ctx, `
				UPDATE store_stock
				SET quantity = quantity - $3, updated_at = now()
				WHERE store_id = $1 AND product_id = $2 AND quantity >= $3
				RETURNING quantity`,
				sale.StoreID, line.ProductID, line.Quantity,
			).Scan(&remaining)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return insufficientInTx(ctx, tx, sale.StoreID, line.ProductID, line.Quantity)
				}
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "sale saved",
		slog.Int64("sale_id", sale.ID),
		slog.Int64("store_id", sale.StoreID),
		slog.Int("lines", len(sale.Lines)),
		slog.String("total", sale.Total.String()))

	return nil
}

// FindByID retrieves a sale with its lines
func (r *saleRepository) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	query := `
		SELECT id, store_id, total, returned, returned_at, created_at
		FROM sale
		WHERE id = $1`

	sale := &domain.Sale{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&sale.ID, &sale.StoreID, &sale.Total,
		&sale.Returned, &sale.ReturnedAt, &sale.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sale %d: %w", id, domain.ErrSaleNotFound)
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}

	lines, err := r.findLines(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	sale.Lines = lines[id]

	return sale, nil
}

// FindByStore retrieves sales for one store, newest first
func (r *saleRepository) FindByStore(ctx context.Context, storeID int64, limit, offset int) ([]*domain.Sale, int64, error) {
	var totalCount int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM sale WHERE store_id = $1`, storeID,
	).Scan(&totalCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count sales: %w", err)
	}

	query := `
		SELECT id, store_id, total, returned, returned_at, created_at
		FROM sale
		WHERE store_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, storeID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []*domain.Sale
	var ids []int64
	for rows.Next() {
		sale := &domain.Sale{}
		err := rows.Scan(
			&sale.ID, &sale.StoreID, &sale.Total,
			&sale.Returned, &sale.ReturnedAt, &sale.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, sale)
		ids = append(ids, sale.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	if len(ids) > 0 {
		lines, err := r.findLines(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for _, sale := range sales {
			sale.Lines = lines[sale.ID]
		}
	}

	return sales, totalCount, nil
}

// MarkReturned flips the returned flag and restores the stock of every
// line in one SERIALIZABLE transaction. The flag flip is conditional on
// returned = false, so two concurrent returns of the same sale commit
// exactly one restore; the loser sees ErrAlreadyReturned.
func (r *saleRepository) MarkReturned(ctx context.Context, id int64) (*domain.Sale, error) {
	sale := &domain.Sale{}

	err := r.db.Serializable(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE sale
			SET returned = true, returned_at = now()
			WHERE id = $1 AND returned = false
			RETURNING id, store_id, total, returned, returned_at, created_at`,
			id,
		).Scan(
			&sale.ID, &sale.StoreID, &sale.Total,
			&sale.Returned, &sale.ReturnedAt, &sale.CreatedAt,
		)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to mark sale returned: %w", err)
			}
			var returned bool
			err := tx.QueryRow(ctx, `SELECT returned FROM sale WHERE id = $1`, id).Scan(&returned)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("sale %d: %w", id, domain.ErrSaleNotFound)
				}
				return fmt.Errorf("failed to read sale: %w", err)
			}
			return fmt.Errorf("sale %d: %w", id, domain.ErrAlreadyReturned)
		}

		rows, err := tx.Query(ctx, `
			SELECT id, sale_id, product_id, quantity, unit_price
			FROM sale_item
			WHERE sale_id = $1
			ORDER BY id ASC`,
			id,
		)
		if err != nil {
			return fmt.Errorf("failed to query sale lines: %w", err)
		}
		sale.Lines, err = scanSaleLines(rows)
		if err != nil {
			return err
		}

		for i := range sale.Lines {
			line := &sale.Lines[i]
			_, err := tx.Exec(ctx, `
				INSERT INTO store_stock (store_id, product_id, quantity)
				VALUES ($1, $2, $3)
				ON CONFLICT (store_id, product_id)
				DO UPDATE SET quantity = store_stock.quantity + EXCLUDED.quantity, updated_at = now()`,
				sale.StoreID, line.ProductID, line.Quantity,
			)
			if err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "sale returned",
		slog.Int64("sale_id", sale.ID),
		slog.Int64("store_id", sale.StoreID))

	return sale, nil
}

// findLines loads the lines for a set of sales keyed by sale ID
func (r *saleRepository) findLines(ctx context.Context, saleIDs []int64) (map[int64][]domain.SaleLine, error) {
	query := `
		SELECT id, sale_id, product_id, quantity, unit_price
		FROM sale_item
		WHERE sale_id = ANY($1)
		ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale lines: %w", err)
	}

	lines, err := scanSaleLines(rows)
	if err != nil {
		return nil, err
	}

	bySale := make(map[int64][]domain.SaleLine, len(saleIDs))
	for _, line := range lines {
		bySale[line.SaleID] = append(bySale[line.SaleID], line)
	}

	return bySale, nil
}

// scanSaleLines drains rows into sale lines
func scanSaleLines(rows pgx.Rows) ([]domain.SaleLine, error) {
	defer rows.Close()

	var lines []domain.SaleLine
	for rows.Next() {
		var line domain.SaleLine
		err := rows.Scan(&line.ID, &line.SaleID, &line.ProductID, &line.Quantity, &line.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lines, nil
}

// insufficientInTx builds the error for a guarded decrement that matched
// no row, using the transaction's view of the current quantity.
func insufficientInTx(ctx context.Context, tx pgx.Tx, storeID, productID int64, qty int) error {
	var available int
	err := tx.QueryRow(ctx,
		`SELECT quantity FROM store_stock WHERE store_id = $1 AND product_id = $2`,
		storeID, productID,
	).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			available = 0
		} else {
			return fmt.Errorf("failed to read stock level: %w", err)
		}
	}

	return &domain.InsufficientStockError{
		StoreID:   storeID,
		ProductID: productID,
		Requested: qty,
		Available: available,
	}
}
