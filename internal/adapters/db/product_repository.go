// internal/adapters/db/product_repository.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
)

// productRepository implements ports.ProductRepository
type productRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *Database, logger *slog.Logger) ports.ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "product")),
	}
}

// Save creates a new catalog product
func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO product (name, category, price, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		product.Name, nullIfEmpty(product.Category), product.Price, nullIfEmpty(product.Description),
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	r.logger.DebugContext(ctx, "product saved",
		slog.Int64("product_id", product.ID),
		slog.String("name", product.Name))

	return nil
}

// Update updates an existing catalog product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE product SET
			name = $2, category = $3, price = $4, description = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		product.ID, product.Name, nullIfEmpty(product.Category), product.Price, nullIfEmpty(product.Description),
	).Scan(&product.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %d: %w", product.ID, domain.ErrProductNotFound)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	r.logger.DebugContext(ctx, "product updated",
		slog.Int64("product_id", product.ID))

	return nil
}

// FindByID retrieves a catalog product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, category, price, description, created_at, updated_at
		FROM product
		WHERE id = $1`

	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, domain.ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

// FindByIDs retrieves multiple products keyed by ID. Missing IDs are
// simply absent from the map; the caller decides whether that is an error.
func (r *productRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Product, error) {
	if len(ids) == 0 {
		return map[int64]*domain.Product{}, nil
	}

	query := `
		SELECT id, name, category, price, description, created_at, updated_at
		FROM product
		WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make(map[int64]*domain.Product, len(ids))
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products[product.ID] = product
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// FindAll retrieves catalog products with filtering and pagination
func (r *productRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int64, error) {
	applyFilter := func(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
		if filter.NameContains != "" {
			qb = qb.Where(squirrel.ILike{"name": "%" + filter.NameContains + "%"})
		}
		if filter.Category != "" {
			qb = qb.Where(squirrel.Eq{"category": filter.Category})
		}
		return qb
	}

	// Count total items (before pagination), sharing only the WHERE clauses
	countSQL, countArgs, err := applyFilter(
		squirrel.Select("COUNT(*)").From("product").PlaceholderFormat(squirrel.Dollar),
	).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	qb := applyFilter(
		squirrel.Select("id", "name", "category", "price", "description", "created_at", "updated_at").
			From("product").
			PlaceholderFormat(squirrel.Dollar),
	)

	orderBy := "id ASC"
	if filter.SortBy != "" {
		direction := "ASC"
		if filter.SortOrder == "desc" {
			direction = "DESC"
		}
		switch filter.SortBy {
		case "name":
			orderBy = fmt.Sprintf("name %s", direction)
		case "price":
			orderBy = fmt.Sprintf("price %s", direction)
		case "created_at":
			orderBy = fmt.Sprintf("created_at %s", direction)
		}
	}
	qb = qb.OrderBy(orderBy)

	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}

	sqlQuery, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, totalCount, nil
}

// Delete removes a product from the catalog
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM product WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrProductNotFound)
	}

	r.logger.InfoContext(ctx, "product deleted",
		slog.Int64("product_id", id))

	return nil
}

// Count returns the total number of catalog products
func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM product`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// scanProduct scans one product row, handling nullable columns
func scanProduct(row pgx.Row) (*domain.Product, error) {
	product := &domain.Product{}
	var category, description sql.NullString

	err := row.Scan(
		&product.ID, &product.Name, &category, &product.Price,
		&description, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Category = category.String
	product.Description = description.String

	return product, nil
}

// nullIfEmpty maps empty strings to SQL NULL
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
