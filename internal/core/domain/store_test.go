// internal/core/domain/store_test.go
package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
)

func TestStore_Validate(t *testing.T) {
	tests := []struct {
		name          string
		store         domain.Store
		expectedType  domain.StoreType
		expectedError string
	}{
		{
			name:         "valid_sales_store",
			store:        domain.Store{Name: "Downtown", Type: domain.StoreTypeSales},
			expectedType: domain.StoreTypeSales,
		},
		{
			name:         "valid_logistics_store",
			store:        domain.Store{Name: "Central Warehouse", Type: domain.StoreTypeLogistics},
			expectedType: domain.StoreTypeLogistics,
		},
		{
			name:         "empty_type_defaults_to_sales",
			store:        domain.Store{Name: "Downtown"},
			expectedType: domain.StoreTypeSales,
		},
		{
			name:          "missing_name",
			store:         domain.Store{Type: domain.StoreTypeSales},
			expectedError: "name is required",
		},
		{
			name:          "invalid_type",
			store:         domain.Store{Name: "Downtown", Type: "franchise"},
			expectedError: "invalid store type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.store.Validate()
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedType, tt.store.Type)
		})
	}
}

func TestStore_CanSell(t *testing.T) {
	sales := domain.Store{Name: "Downtown", Type: domain.StoreTypeSales}
	logistics := domain.Store{Name: "Central Warehouse", Type: domain.StoreTypeLogistics}
	hq := domain.Store{Name: "Head Office", Type: domain.StoreTypeHeadquarters}

	assert.True(t, sales.CanSell())
	assert.False(t, logistics.CanSell())
	assert.False(t, hq.CanSell())
}

func TestReplenishmentRequest_IsPending(t *testing.T) {
	pending := domain.ReplenishmentRequest{Status: domain.ReplenishmentPending}
	approved := domain.ReplenishmentRequest{Status: domain.ReplenishmentApproved}

	assert.True(t, pending.IsPending())
	assert.False(t, approved.IsPending())
}

func TestInsufficientStockError(t *testing.T) {
	err := &domain.InsufficientStockError{
		StoreID:   1,
		ProductID: 2,
		Requested: 10,
		Available: 4,
	}

	assert.Contains(t, err.Error(), "requested 10, available 4")
	assert.True(t, domain.IsInsufficientStock(err))
	assert.False(t, domain.IsInsufficientStock(domain.ErrStockNotFound))
}
