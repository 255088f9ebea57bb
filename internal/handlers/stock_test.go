// internal/handlers/stock_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/handlers"
	"github.com/ldessureault/chainstore-be/test/helpers"
	"github.com/ldessureault/chainstore-be/test/mocks"
)

func newStockRequest(method, target, storeID, productID, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.SetPathValue("storeId", storeID)
	if productID != "" {
		req.SetPathValue("productId", productID)
	}
	return req
}

func TestStockHandler_GetStock(t *testing.T) {
	tests := []struct {
		name           string
		storeID        string
		productID      string
		setupMocks     func(m *mocks.MockStockService)
		expectedStatus int
	}{
		{
			name:      "existing_level",
			storeID:   "1",
			productID: "1",
			setupMocks: func(m *mocks.MockStockService) {
				m.EXPECT().
					Get(gomock.Any(), int64(1), int64(1)).
					Return(helpers.CreateTestStockLevel(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "missing_level",
			storeID:   "1",
			productID: "99",
			setupMocks: func(m *mocks.MockStockService) {
				m.EXPECT().
					Get(gomock.Any(), int64(1), int64(99)).
					Return(nil, domain.ErrStockNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid_store_id",
			storeID:        "abc",
			productID:      "1",
			setupMocks:     func(m *mocks.MockStockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockStockService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewStockHandler(service, helpers.TestLogger())

			req := newStockRequest("GET", "/api/v1/stores/1/stock/1", tt.storeID, tt.productID, "")
			w := httptest.NewRecorder()

			handler.GetStock(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestStockHandler_SetStock(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(m *mocks.MockStockService)
		expectedStatus int
	}{
		{
			name: "successful_set",
			body: `{"quantity": 30}`,
			setupMocks: func(m *mocks.MockStockService) {
				m.EXPECT().
					Set(gomock.Any(), gomock.Any()).
					Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "negative_quantity_rejected",
			body:           `{"quantity": -5}`,
			setupMocks:     func(m *mocks.MockStockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown_product_not_found",
			body: `{"quantity": 30}`,
			setupMocks: func(m *mocks.MockStockService) {
				m.EXPECT().
					Set(gomock.Any(), gomock.Any()).
					Return(domain.ErrProductNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockStockService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewStockHandler(service, helpers.TestLogger())

			req := newStockRequest("PUT", "/api/v1/stores/1/stock/1", "1", "1", tt.body)
			w := httptest.NewRecorder()

			handler.SetStock(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestStockHandler_DecrementStock(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(m *mocks.MockStockService)
		expectedStatus int
		validateBody   func(t *testing.T, body map[string]any)
	}{
		{
			name: "successful_decrement",
			body: `{"quantity": 5}`,
			setupMocks: func(m *mocks.MockStockService) {
				m.EXPECT().
					Decrement(gomock.Any(), domain.StockAdjustment{
						StoreID: 1, ProductID: 1, Quantity: 5,
					}).
					Return(helpers.CreateTestStockLevel(func(l *domain.StockLevel) {
						l.Quantity = 15
					}), nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, float64(15), body["quantity"])
			},
		},
		{
			name: "overdraw_returns_conflict_with_quantities",
			body: `{"quantity": 100}`,
			setupMocks: func(m *mocks.MockStockService) {
				m.EXPECT().
					Decrement(gomock.Any(), gomock.Any()).
					Return(nil, &domain.InsufficientStockError{
						StoreID: 1, ProductID: 1, Requested: 100, Available: 20,
					})
			},
			expectedStatus: http.StatusConflict,
			validateBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, float64(100), body["requested"])
				assert.Equal(t, float64(20), body["available"])
			},
		},
		{
			name:           "zero_quantity_rejected",
			body:           `{"quantity": 0}`,
			setupMocks:     func(m *mocks.MockStockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockStockService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewStockHandler(service, helpers.TestLogger())

			req := newStockRequest("POST", "/api/v1/stores/1/stock/1/decrement", "1", "1", tt.body)
			w := httptest.NewRecorder()

			handler.DecrementStock(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				tt.validateBody(t, body)
			}
		})
	}
}

func TestStockHandler_ListLowStock(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockStockService(ctrl)

	service.EXPECT().
		ListLow(gomock.Any(), int64(1), 3).
		Return([]*domain.StockLevel{
			helpers.CreateTestStockLevel(func(l *domain.StockLevel) { l.Quantity = 2 }),
		}, nil)

	handler := handlers.NewStockHandler(service, helpers.TestLogger())

	req := newStockRequest("GET", "/api/v1/stores/1/stock/low?threshold=3", "1", "", "")
	w := httptest.NewRecorder()

	handler.ListLowStock(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["threshold"])
	assert.Len(t, body["stock"], 1)
}
