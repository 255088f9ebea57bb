// test/benchmarks/helpers.go
package benchmarks

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
)

// benchmarkLines builds n sale lines with distinct product IDs
func benchmarkLines(n int) []domain.SaleLine {
	lines := make([]domain.SaleLine, n)
	for i := range lines {
		lines[i] = domain.SaleLine{
			ProductID: int64(i + 1),
			Quantity:  1 + i%3,
			UnitPrice: decimal.NewFromFloat(9.95).Add(decimal.NewFromInt(int64(i))),
		}
	}
	return lines
}

// benchmarkSale builds a sale with computed total for allocation benchmarks
func benchmarkSale(storeID int64, numLines int) *domain.Sale {
	sale := &domain.Sale{
		StoreID: storeID,
		Lines:   benchmarkLines(numLines),
	}
	sale.ComputeTotal()
	return sale
}

// benchmarkProducts builds n catalog products with unique names
func benchmarkProducts(n int) []*domain.Product {
	products := make([]*domain.Product, n)
	for i := range products {
		products[i] = &domain.Product{
			Name:     fmt.Sprintf("Bench Product %d", i),
			Category: "benchmark",
			Price:    decimal.NewFromFloat(12.50),
		}
	}
	return products
}
