package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/ldessureault/chainstore-be/internal/adapters/db"
	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
	"github.com/ldessureault/chainstore-be/internal/core/services"
	"github.com/ldessureault/chainstore-be/test/helpers"
)

func BenchmarkSaleOperations(b *testing.B) {
	// Setup
	testDB := helpers.SetupTestDB(&testing.T{})
	defer testDB.Database.Close()

	testRedis := helpers.SetupTestRedis(&testing.T{})
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: testRedis.Client.Options().Addr})
	defer asynqClient.Close()

	logger := helpers.TestLogger()
	productRepo := db.NewProductRepository(testDB.Database, logger)
	storeRepo := db.NewStoreRepository(testDB.Database, logger)
	stockRepo := db.NewStockRepository(testDB.Database, logger)
	saleRepo := db.NewSaleRepository(testDB.Database, logger)

	saleService := services.NewSaleService(saleRepo, productRepo, storeRepo, stockRepo, asynqClient, logger)
	stockService := services.NewStockService(stockRepo, productRepo, storeRepo, logger)
	ctx := context.Background()

	storeID := helpers.SeedTestStore(&testing.T{}, testDB.PgxPool, "Bench Downtown", domain.StoreTypeSales)
	productID := helpers.SeedTestProduct(&testing.T{}, testDB.PgxPool, "Bench Espresso Beans", decimal.NewFromFloat(18.50))
	helpers.SeedTestStock(&testing.T{}, testDB.PgxPool, storeID, productID, 1_000_000)

	b.Run("RecordSale", func(b *testing.B) {
		lines := []domain.SaleLine{{ProductID: productID, Quantity: 1}}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = saleService.RecordSale(ctx, storeID, lines)
		}
	})

	// Pre-create sales for read benchmarks
	var saleIDs []int64
	for i := 0; i < 100; i++ {
		sale, err := saleService.RecordSale(ctx, storeID, []domain.SaleLine{{ProductID: productID, Quantity: 1}})
		if err != nil {
			b.Fatalf("seed sale: %v", err)
		}
		saleIDs = append(saleIDs, sale.ID)
	}

	b.Run("GetByID", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			id := saleIDs[i%len(saleIDs)]
			_, _ = saleService.GetByID(ctx, id)
		}
	})

	b.Run("ListByStore", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = saleService.ListByStore(ctx, storeID, 1, 50)
		}
	})

	b.Run("StockDecrement", func(b *testing.B) {
		adj := domain.StockAdjustment{StoreID: storeID, ProductID: productID, Quantity: 1}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = stockService.Decrement(ctx, adj)
		}
	})

	b.Run("StockIncrement", func(b *testing.B) {
		adj := domain.StockAdjustment{StoreID: storeID, ProductID: productID, Quantity: 1}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = stockService.Increment(ctx, adj)
		}
	})
}

func BenchmarkProductOperations(b *testing.B) {
	testDB := helpers.SetupTestDB(&testing.T{})
	defer testDB.Database.Close()

	logger := helpers.TestLogger()
	productRepo := db.NewProductRepository(testDB.Database, logger)
	ctx := context.Background()

	b.Run("Save", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			product := &domain.Product{
				Name:     fmt.Sprintf("Bench Product %d-%d", b.N, i),
				Category: "benchmark",
				Price:    decimal.NewFromFloat(12.50),
			}
			_ = productRepo.Save(ctx, product)
		}
	})

	// Pre-create products for the list benchmark
	for _, product := range benchmarkProducts(100) {
		_ = productRepo.Save(ctx, product)
	}

	b.Run("List", func(b *testing.B) {
		filter := domain.ProductFilter{Category: "benchmark", Limit: 50}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _, _ = productRepo.FindAll(ctx, filter)
		}
	})
}

func BenchmarkSaleValidation(b *testing.B) {
	sale := benchmarkSale(1, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sale.Validate()
	}
}

func BenchmarkComputeTotal(b *testing.B) {
	sale := benchmarkSale(1, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sale.ComputeTotal()
	}
}

// Memory allocation benchmarks
func BenchmarkMemoryAllocation(b *testing.B) {
	b.Run("Sale", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = benchmarkSale(1, 3)
		}
	})

	b.Run("SaleListResult", func(b *testing.B) {
		sales := make([]*domain.Sale, 100)
		for i := range sales {
			sales[i] = benchmarkSale(1, 1)
		}

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = &ports.SaleListResult{
				Sales:      sales,
				Page:       1,
				PageSize:   50,
				TotalCount: 100,
				TotalPages: 2,
			}
		}
	})
}
