package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// seedStore is one store to create on first run
type seedStore struct {
	Name string
	Type string
}

// seedProduct is one catalog entry to create on first run
type seedProduct struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Description string
}

var stores = []seedStore{
	{Name: "Head Office", Type: "headquarters"},
	{Name: "Central Warehouse", Type: "logistics"},
	{Name: "Downtown", Type: "sales"},
	{Name: "Riverside Mall", Type: "sales"},
	{Name: "Airport", Type: "sales"},
}

var products = []seedProduct{
	{Name: "Espresso Beans 1kg", Category: "grocery", Price: decimal.NewFromFloat(18.50), Description: "Dark roast arabica blend"},
	{Name: "French Press", Category: "kitchen", Price: decimal.NewFromFloat(34.90), Description: "8-cup borosilicate glass press"},
	{Name: "Ceramic Mug", Category: "kitchen", Price: decimal.NewFromFloat(9.95), Description: "350ml stoneware mug"},
	{Name: "Cotton Tote Bag", Category: "accessories", Price: decimal.NewFromFloat(12.00), Description: "Reusable canvas tote"},
	{Name: "Stainless Bottle 750ml", Category: "accessories", Price: decimal.NewFromFloat(24.50), Description: "Vacuum insulated bottle"},
	{Name: "Notebook A5", Category: "stationery", Price: decimal.NewFromFloat(6.75), Description: "Dotted, 120 pages"},
	{Name: "Gel Pen Set", Category: "stationery", Price: decimal.NewFromFloat(8.40), Description: "Pack of 5, assorted colors"},
	{Name: "Desk Lamp", Category: "home", Price: decimal.NewFromFloat(45.00), Description: "LED lamp with dimmer"},
	{Name: "Wool Throw Blanket", Category: "home", Price: decimal.NewFromFloat(79.00), Description: "130x170cm merino throw"},
	{Name: "Bluetooth Speaker", Category: "electronics", Price: decimal.NewFromFloat(59.99), Description: "Portable 10W speaker"},
	{Name: "USB-C Cable 2m", Category: "electronics", Price: decimal.NewFromFloat(11.25), Description: "Braided fast-charge cable"},
	{Name: "Scented Candle", Category: "home", Price: decimal.NewFromFloat(16.80), Description: "Cedar and vanilla, 40h burn"},
}

const (
	warehouseQty  = 200
	salesStoreQty = 20
)

func main() {
	// Parse flags
	var (
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun   = flag.Bool("dry-run", false, "Preview changes without modifying database")
	)
	flag.Parse()

	// Setup logging
	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	if *dryRun {
		fmt.Printf("[DRY RUN] Would create %d stores, %d products and opening stock\n",
			len(stores), len(products))
		return
	}

	// Database connection
	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "chainstore"),
		getEnv("DB_PASSWORD", "chainstore_dev_2026"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "chainstore"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()

	db, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	storeIDs, err := seedStores(ctx, db, logger)
	if err != nil {
		logger.Error("failed to seed stores", slog.String("error", err.Error()))
		os.Exit(1)
	}

	productIDs, err := seedProducts(ctx, db, logger)
	if err != nil {
		logger.Error("failed to seed products", slog.String("error", err.Error()))
		os.Exit(1)
	}

	stockRows, err := seedStock(ctx, db, storeIDs, productIDs, logger)
	if err != nil {
		logger.Error("failed to seed stock", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Summary
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEEDING OPERATION SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Stores:      %d\n", len(storeIDs))
	fmt.Printf("Products:    %d\n", len(productIDs))
	fmt.Printf("Stock rows:  %d\n", stockRows)

	logger.Info("seed operation completed",
		slog.Int("stores", len(storeIDs)),
		slog.Int("products", len(productIDs)),
		slog.Int("stock_rows", stockRows))
}

// seedStores inserts the store list and returns name -> id. Stores are
// matched by name so re-running the seeder is safe.
func seedStores(ctx context.Context, db *pgxpool.Pool, logger *slog.Logger) (map[string]int64, error) {
	ids := make(map[string]int64, len(stores))

	for _, s := range stores {
		var id int64
		err := db.QueryRow(ctx, `
			INSERT INTO store (name, type)
			VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET type = EXCLUDED.type
			RETURNING id`,
			s.Name, s.Type,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to seed store %q: %w", s.Name, err)
		}
		ids[s.Name] = id
	}

	logger.Info("stores seeded", slog.Int("count", len(ids)))
	return ids, nil
}

// seedProducts inserts the catalog and returns name -> id
func seedProducts(ctx context.Context, db *pgxpool.Pool, logger *slog.Logger) (map[string]int64, error) {
	ids := make(map[string]int64, len(products))

	for _, p := range products {
		var id int64
		err := db.QueryRow(ctx, `
			INSERT INTO product (name, category, price, description)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE SET
				category = EXCLUDED.category,
				price = EXCLUDED.price,
				description = EXCLUDED.description
			RETURNING id`,
			p.Name, p.Category, p.Price, p.Description,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
		ids[p.Name] = id
	}

	logger.Info("products seeded", slog.Int("count", len(ids)))
	return ids, nil
}

// seedStock fills the warehouse with bulk quantities and gives every
// sales store a small opening level for each product. Existing levels
// are left untouched.
func seedStock(ctx context.Context, db *pgxpool.Pool, storeIDs, productIDs map[string]int64, logger *slog.Logger) (int, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	queued := 0

	for _, s := range stores {
		if s.Type == "headquarters" {
			continue
		}

		qty := salesStoreQty
		if s.Type == "logistics" {
			qty = warehouseQty
		}

		storeID := storeIDs[s.Name]
		for _, p := range products {
			batch.Queue(`
				INSERT INTO store_stock (store_id, product_id, quantity)
				VALUES ($1, $2, $3)
				ON CONFLICT (store_id, product_id) DO NOTHING`,
				storeID, productIDs[p.Name], qty,
			)
			queued++
		}
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("failed to insert stock row: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Info("stock seeded", slog.Int("rows", queued))
	return queued, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
