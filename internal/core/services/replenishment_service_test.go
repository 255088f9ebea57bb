// internal/core/services/replenishment_service_test.go
package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/services"
	"github.com/ldessureault/chainstore-be/test/helpers"
	"github.com/ldessureault/chainstore-be/test/mocks"
)

type replenishmentServiceMocks struct {
	repo     *mocks.MockReplenishmentRepository
	stores   *mocks.MockStoreRepository
	products *mocks.MockProductRepository
}

func newReplenishmentService(t *testing.T) (*services.ReplenishmentService, replenishmentServiceMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := replenishmentServiceMocks{
		repo:     mocks.NewMockReplenishmentRepository(ctrl),
		stores:   mocks.NewMockStoreRepository(ctrl),
		products: mocks.NewMockProductRepository(ctrl),
	}

	svc := services.NewReplenishmentService(m.repo, m.stores, m.products, helpers.TestLogger())
	return svc, m
}

func TestReplenishmentService_Request(t *testing.T) {
	tests := []struct {
		name          string
		req           *domain.ReplenishmentRequest
		setupMocks    func(m replenishmentServiceMocks)
		expectedError bool
		errorContains string
	}{
		{
			name: "successful_request_starts_pending",
			req:  &domain.ReplenishmentRequest{StoreID: 1, ProductID: 1, Quantity: 10},
			setupMocks: func(m replenishmentServiceMocks) {
				m.stores.EXPECT().FindByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestStore(), nil)
				m.products.EXPECT().FindByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestProduct(), nil)
				m.repo.EXPECT().Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, req *domain.ReplenishmentRequest) error {
						assert.Equal(t, domain.ReplenishmentPending, req.Status)
						req.ID = 7
						return nil
					})
			},
		},
		{
			name:          "zero_quantity_rejected",
			req:           &domain.ReplenishmentRequest{StoreID: 1, ProductID: 1, Quantity: 0},
			setupMocks:    func(m replenishmentServiceMocks) {},
			expectedError: true,
			errorContains: "quantity must be positive",
		},
		{
			name: "unknown_store_rejected",
			req:  &domain.ReplenishmentRequest{StoreID: 99, ProductID: 1, Quantity: 10},
			setupMocks: func(m replenishmentServiceMocks) {
				m.stores.EXPECT().FindByID(gomock.Any(), int64(99)).
					Return(nil, domain.ErrStoreNotFound)
			},
			expectedError: true,
			errorContains: "store not found",
		},
		{
			name: "logistics_store_cannot_request",
			req:  &domain.ReplenishmentRequest{StoreID: 5, ProductID: 1, Quantity: 10},
			setupMocks: func(m replenishmentServiceMocks) {
				m.stores.EXPECT().FindByID(gomock.Any(), int64(5)).
					Return(helpers.CreateTestStore(func(s *domain.Store) {
						s.ID = 5
						s.Type = domain.StoreTypeLogistics
					}), nil)
			},
			expectedError: true,
			errorContains: "does not record sales",
		},
		{
			name: "unknown_product_rejected",
			req:  &domain.ReplenishmentRequest{StoreID: 1, ProductID: 99, Quantity: 10},
			setupMocks: func(m replenishmentServiceMocks) {
				m.stores.EXPECT().FindByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestStore(), nil)
				m.products.EXPECT().FindByID(gomock.Any(), int64(99)).
					Return(nil, domain.ErrProductNotFound)
			},
			expectedError: true,
			errorContains: "product not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newReplenishmentService(t)
			tt.setupMocks(m)

			err := svc.Request(context.Background(), tt.req)

			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestReplenishmentService_Approve(t *testing.T) {
	logistics := helpers.CreateTestStore(func(s *domain.Store) {
		s.ID = 5
		s.Name = "Central Warehouse"
		s.Type = domain.StoreTypeLogistics
	})

	tests := []struct {
		name          string
		id            int64
		setupMocks    func(m replenishmentServiceMocks)
		expectedError bool
		errorIs       error
	}{
		{
			name: "successful_approval_transfers_from_logistics",
			id:   7,
			setupMocks: func(m replenishmentServiceMocks) {
				m.stores.EXPECT().FindLogistics(gomock.Any()).Return(logistics, nil)
				m.repo.EXPECT().Approve(gomock.Any(), int64(7), int64(5)).
					Return(&domain.ReplenishmentRequest{
						ID: 7, StoreID: 1, ProductID: 1, Quantity: 10,
						Status: domain.ReplenishmentApproved,
					}, nil)
			},
		},
		{
			name: "shortage_at_logistics_leaves_request_pending",
			id:   7,
			setupMocks: func(m replenishmentServiceMocks) {
				m.stores.EXPECT().FindLogistics(gomock.Any()).Return(logistics, nil)
				m.repo.EXPECT().Approve(gomock.Any(), int64(7), int64(5)).
					Return(nil, &domain.InsufficientStockError{
						StoreID: 5, ProductID: 1, Requested: 10, Available: 2,
					})
			},
			expectedError: true,
		},
		{
			name: "settled_request_cannot_be_approved_again",
			id:   7,
			setupMocks: func(m replenishmentServiceMocks) {
				m.stores.EXPECT().FindLogistics(gomock.Any()).Return(logistics, nil)
				m.repo.EXPECT().Approve(gomock.Any(), int64(7), int64(5)).
					Return(nil, domain.ErrRequestNotPending)
			},
			expectedError: true,
			errorIs:       domain.ErrRequestNotPending,
		},
		{
			name: "missing_logistics_store_fails",
			id:   7,
			setupMocks: func(m replenishmentServiceMocks) {
				m.stores.EXPECT().FindLogistics(gomock.Any()).
					Return(nil, domain.ErrStoreNotFound)
			},
			expectedError: true,
			errorIs:       domain.ErrStoreNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newReplenishmentService(t)
			tt.setupMocks(m)

			req, err := svc.Approve(context.Background(), tt.id)

			if tt.expectedError {
				require.Error(t, err)
				if tt.errorIs != nil {
					assert.ErrorIs(t, err, tt.errorIs)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.ReplenishmentApproved, req.Status)
		})
	}
}

func TestReplenishmentService_Reject(t *testing.T) {
	svc, m := newReplenishmentService(t)

	m.repo.EXPECT().Reject(gomock.Any(), int64(7)).
		Return(&domain.ReplenishmentRequest{
			ID: 7, Status: domain.ReplenishmentRejected,
		}, nil)

	req, err := svc.Reject(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.ReplenishmentRejected, req.Status)
}
