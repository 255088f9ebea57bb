// internal/core/domain/stock_test.go
package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
)

func TestStockLevel_Validate(t *testing.T) {
	tests := []struct {
		name          string
		level         domain.StockLevel
		expectedError string
	}{
		{
			name:  "valid_level",
			level: domain.StockLevel{StoreID: 1, ProductID: 1, Quantity: 10},
		},
		{
			name:  "zero_quantity_is_valid",
			level: domain.StockLevel{StoreID: 1, ProductID: 1, Quantity: 0},
		},
		{
			name:          "negative_quantity",
			level:         domain.StockLevel{StoreID: 1, ProductID: 1, Quantity: -1},
			expectedError: "quantity cannot be negative",
		},
		{
			name:          "missing_store",
			level:         domain.StockLevel{ProductID: 1, Quantity: 1},
			expectedError: "store_id is required",
		},
		{
			name:          "missing_product",
			level:         domain.StockLevel{StoreID: 1, Quantity: 1},
			expectedError: "product_id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.level.Validate()
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestStockLevel_IsLow(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		threshold int
		expected  bool
	}{
		{name: "below_threshold", quantity: 3, threshold: 5, expected: true},
		{name: "at_threshold", quantity: 5, threshold: 5, expected: true},
		{name: "above_threshold", quantity: 6, threshold: 5, expected: false},
		{name: "zero_threshold_uses_default", quantity: 5, threshold: 0, expected: true},
		{name: "negative_threshold_uses_default", quantity: 6, threshold: -1, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := domain.StockLevel{StoreID: 1, ProductID: 1, Quantity: tt.quantity}
			assert.Equal(t, tt.expected, level.IsLow(tt.threshold))
		})
	}
}

func TestStockAdjustment_Validate(t *testing.T) {
	valid := domain.StockAdjustment{StoreID: 1, ProductID: 1, Quantity: 5}
	require.NoError(t, valid.Validate())

	zero := domain.StockAdjustment{StoreID: 1, ProductID: 1, Quantity: 0}
	err := zero.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity must be positive")
}
