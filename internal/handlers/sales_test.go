// internal/handlers/sales_test.go
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

func TestSaleHandler_RecordSale(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(m *mocks.MockSaleService)
		expectedStatus int
		validateBody   func(t *testing.T, body map[string]any)
	}{
		{
			name: "successful_sale",
			body: `{"store_id": 1, "lines": [{"product_id": 1, "quantity": 2}]}`,
			setupMocks: func(m *mocks.MockSaleService) {
				m.EXPECT().
					RecordSale(gomock.Any(), int64(1), gomock.Any()).
					Return(helpers.CreateTestSale(func(s *domain.Sale) {
						s.ID = 42
					}), nil)
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, float64(42), body["id"])
			},
		},
		{
			name:           "invalid_json",
			body:           `{not json`,
			setupMocks:     func(m *mocks.MockSaleService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing_lines",
			body:           `{"store_id": 1, "lines": []}`,
			setupMocks:     func(m *mocks.MockSaleService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "zero_quantity_line",
			body:           `{"store_id": 1, "lines": [{"product_id": 1, "quantity": 0}]}`,
			setupMocks:     func(m *mocks.MockSaleService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "insufficient_stock_returns_conflict",
			body: `{"store_id": 1, "lines": [{"product_id": 1, "quantity": 50}]}`,
			setupMocks: func(m *mocks.MockSaleService) {
				m.EXPECT().
					RecordSale(gomock.Any(), int64(1), gomock.Any()).
					Return(nil, &domain.InsufficientStockError{
						StoreID:   1,
						ProductID: 1,
						Requested: 50,
						Available: 20,
					})
			},
			expectedStatus: http.StatusConflict,
			validateBody: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Insufficient stock", body["error"])
				assert.Equal(t, float64(20), body["available"])
			},
		},
		{
			name: "logistics_store_unprocessable",
			body: `{"store_id": 2, "lines": [{"product_id": 1, "quantity": 1}]}`,
			setupMocks: func(m *mocks.MockSaleService) {
				m.EXPECT().
					RecordSale(gomock.Any(), int64(2), gomock.Any()).
					Return(nil, domain.ErrStoreCannotSell)
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "unknown_store_not_found",
			body: `{"store_id": 99, "lines": [{"product_id": 1, "quantity": 1}]}`,
			setupMocks: func(m *mocks.MockSaleService) {
				m.EXPECT().
					RecordSale(gomock.Any(), int64(99), gomock.Any()).
					Return(nil, domain.ErrStoreNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockSaleService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewSaleHandler(service, helpers.TestLogger())

			req := httptest.NewRequest("POST", "/api/v1/sales", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.RecordSale(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.validateBody != nil {
				var body map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				tt.validateBody(t, body)
			}
		})
	}
}

func TestSaleHandler_ProcessReturn(t *testing.T) {
	tests := []struct {
		name           string
		saleID         string
		setupMocks     func(m *mocks.MockSaleService)
		expectedStatus int
	}{
		{
			name:   "successful_return",
			saleID: "42",
			setupMocks: func(m *mocks.MockSaleService) {
				m.EXPECT().
					ProcessReturn(gomock.Any(), int64(42)).
					Return(helpers.CreateTestSale(func(s *domain.Sale) {
						s.ID = 42
						s.Returned = true
					}), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "already_returned_conflict",
			saleID: "42",
			setupMocks: func(m *mocks.MockSaleService) {
				m.EXPECT().
					ProcessReturn(gomock.Any(), int64(42)).
					Return(nil, domain.ErrAlreadyReturned)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:   "unknown_sale_not_found",
			saleID: "99",
			setupMocks: func(m *mocks.MockSaleService) {
				m.EXPECT().
					ProcessReturn(gomock.Any(), int64(99)).
					Return(nil, domain.ErrSaleNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid_id",
			saleID:         "not-a-number",
			setupMocks:     func(m *mocks.MockSaleService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockSaleService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewSaleHandler(service, helpers.TestLogger())

			req := httptest.NewRequest("POST", "/api/v1/sales/"+tt.saleID+"/return", nil)
			req.SetPathValue("id", tt.saleID)
			w := httptest.NewRecorder()

			handler.ProcessReturn(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestSaleHandler_GetSale(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockSaleService(ctrl)

	service.EXPECT().
		GetByID(gomock.Any(), int64(42)).
		Return(helpers.CreateTestSale(func(s *domain.Sale) { s.ID = 42 }), nil)

	handler := handlers.NewSaleHandler(service, helpers.TestLogger())

	req := httptest.NewRequest("GET", "/api/v1/sales/42", nil)
	req.SetPathValue("id", "42")
	w := httptest.NewRecorder()

	handler.GetSale(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var sale domain.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sale))
	assert.Equal(t, int64(42), sale.ID)
	assert.Len(t, sale.Lines, 1)
}
