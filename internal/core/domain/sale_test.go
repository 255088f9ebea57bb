// internal/core/domain/sale_test.go
package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
)

func TestSale_Validate(t *testing.T) {
	tests := []struct {
		name          string
		sale          domain.Sale
		expectedError string
	}{
		{
			name: "valid_sale",
			sale: domain.Sale{
				StoreID: 1,
				Lines: []domain.SaleLine{
					{ProductID: 1, Quantity: 2},
					{ProductID: 2, Quantity: 1},
				},
			},
		},
		{
			name: "missing_store",
			sale: domain.Sale{
				Lines: []domain.SaleLine{{ProductID: 1, Quantity: 1}},
			},
			expectedError: "store_id is required",
		},
		{
			name:          "no_lines",
			sale:          domain.Sale{StoreID: 1},
			expectedError: "at least one line is required",
		},
		{
			name: "zero_quantity_line",
			sale: domain.Sale{
				StoreID: 1,
				Lines:   []domain.SaleLine{{ProductID: 1, Quantity: 0}},
			},
			expectedError: "quantity must be positive",
		},
		{
			name: "missing_product_on_line",
			sale: domain.Sale{
				StoreID: 1,
				Lines:   []domain.SaleLine{{Quantity: 1}},
			},
			expectedError: "product_id is required",
		},
		{
			name: "duplicate_product_across_lines",
			sale: domain.Sale{
				StoreID: 1,
				Lines: []domain.SaleLine{
					{ProductID: 1, Quantity: 1},
					{ProductID: 1, Quantity: 3},
				},
			},
			expectedError: "duplicate product 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sale.Validate()
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSale_ComputeTotal(t *testing.T) {
	sale := domain.Sale{
		StoreID: 1,
		Lines: []domain.SaleLine{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromFloat(18.50)},
			{ProductID: 2, Quantity: 3, UnitPrice: decimal.NewFromFloat(9.95)},
		},
	}

	sale.ComputeTotal()

	expected := decimal.NewFromFloat(66.85)
	assert.True(t, sale.Total.Equal(expected),
		"Expected total %s, got %s", expected, sale.Total)
}

func TestSaleLine_Subtotal(t *testing.T) {
	line := domain.SaleLine{
		ProductID: 1,
		Quantity:  4,
		UnitPrice: decimal.NewFromFloat(6.75),
	}

	assert.True(t, line.Subtotal().Equal(decimal.NewFromFloat(27.00)))
}
