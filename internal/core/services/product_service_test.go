// internal/core/services/product_service_test.go
package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
	"github.com/ldessureault/chainstore-be/internal/core/services"
	"github.com/ldessureault/chainstore-be/test/helpers"
	"github.com/ldessureault/chainstore-be/test/mocks"
)

func TestProductService_Create(t *testing.T) {
	tests := []struct {
		name          string
		product       *domain.Product
		setupMocks    func(repo *mocks.MockProductRepository, cache *mocks.MockCacheRepository)
		expectedError bool
		errorContains string
	}{
		{
			name:    "successful_create_invalidates_report_cache",
			product: helpers.CreateTestProduct(),
			setupMocks: func(repo *mocks.MockProductRepository, cache *mocks.MockCacheRepository) {
				repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
				cache.EXPECT().DeletePattern(gomock.Any(), "report:*").Return(nil)
			},
		},
		{
			name: "validation_fails_for_missing_name",
			product: helpers.CreateTestProduct(func(p *domain.Product) {
				p.Name = ""
			}),
			setupMocks:    func(repo *mocks.MockProductRepository, cache *mocks.MockCacheRepository) {},
			expectedError: true,
			errorContains: "name is required",
		},
		{
			name: "validation_fails_for_negative_price",
			product: helpers.CreateTestProduct(func(p *domain.Product) {
				p.Price = decimal.NewFromFloat(-1.00)
			}),
			setupMocks:    func(repo *mocks.MockProductRepository, cache *mocks.MockCacheRepository) {},
			expectedError: true,
			errorContains: "price cannot be negative",
		},
		{
			name:    "cache_failure_does_not_fail_create",
			product: helpers.CreateTestProduct(),
			setupMocks: func(repo *mocks.MockProductRepository, cache *mocks.MockCacheRepository) {
				repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
				cache.EXPECT().DeletePattern(gomock.Any(), "report:*").
					Return(errors.New("redis unavailable"))
			},
		},
		{
			name:    "repository_error_propagates",
			product: helpers.CreateTestProduct(),
			setupMocks: func(repo *mocks.MockProductRepository, cache *mocks.MockCacheRepository) {
				repo.EXPECT().Save(gomock.Any(), gomock.Any()).
					Return(errors.New("database connection failed"))
			},
			expectedError: true,
			errorContains: "database connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockProductRepository(ctrl)
			cache := mocks.NewMockCacheRepository(ctrl)
			tt.setupMocks(repo, cache)

			svc := services.NewProductService(repo, cache, helpers.TestLogger())
			err := svc.Create(context.Background(), tt.product)

			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProductService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	repo.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, p *domain.Product) error {
			assert.Equal(t, int64(3), p.ID)
			return nil
		})
	cache.EXPECT().DeletePattern(gomock.Any(), "report:*").Return(nil)

	svc := services.NewProductService(repo, cache, helpers.TestLogger())
	err := svc.Update(context.Background(), 3, helpers.CreateTestProduct())
	require.NoError(t, err)
}

func TestProductService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	repo.EXPECT().FindAll(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int64, error) {
			assert.Equal(t, 20, filter.Limit)
			assert.Equal(t, 20, filter.Offset)
			return []*domain.Product{helpers.CreateTestProduct()}, 41, nil
		})

	svc := services.NewProductService(repo, cache, helpers.TestLogger())
	result, err := svc.List(context.Background(), ports.ProductListParams{
		Page:     2,
		PageSize: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Page)
	assert.Equal(t, int64(41), result.TotalCount)
	assert.Equal(t, 3, result.TotalPages)
	assert.Len(t, result.Products, 1)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProductRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)

	repo.EXPECT().FindByID(gomock.Any(), int64(99)).
		Return(nil, domain.ErrProductNotFound)

	svc := services.NewProductService(repo, cache, helpers.TestLogger())
	_, err := svc.GetByID(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
