// internal/handlers/products_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
	"github.com/ldessureault/chainstore-be/internal/handlers"
	"github.com/ldessureault/chainstore-be/test/helpers"
	"github.com/ldessureault/chainstore-be/test/mocks"
)

func TestProductHandler_CreateProduct(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(m *mocks.MockProductService)
		expectedStatus int
	}{
		{
			name: "successful_create",
			body: `{"name": "Espresso Beans 1kg", "price": "18.50", "category": "coffee"}`,
			setupMocks: func(m *mocks.MockProductService) {
				m.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, p *domain.Product) error {
						assert.Equal(t, "Espresso Beans 1kg", p.Name)
						p.ID = 7
						return nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid_json",
			body:           `{not json`,
			setupMocks:     func(m *mocks.MockProductService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing_name",
			body:           `{"price": "18.50"}`,
			setupMocks:     func(m *mocks.MockProductService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative_price",
			body:           `{"name": "Espresso Beans 1kg", "price": "-1.00"}`,
			setupMocks:     func(m *mocks.MockProductService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "service_error",
			body: `{"name": "Espresso Beans 1kg", "price": "18.50"}`,
			setupMocks: func(m *mocks.MockProductService) {
				m.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockProductService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewProductHandler(service, helpers.TestLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.CreateProduct(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestProductHandler_GetProduct(t *testing.T) {
	tests := []struct {
		name           string
		productID      string
		setupMocks     func(m *mocks.MockProductService)
		expectedStatus int
	}{
		{
			name:      "found",
			productID: "1",
			setupMocks: func(m *mocks.MockProductService) {
				m.EXPECT().
					GetByID(gomock.Any(), int64(1)).
					Return(helpers.CreateTestProduct(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "not_found",
			productID: "99",
			setupMocks: func(m *mocks.MockProductService) {
				m.EXPECT().
					GetByID(gomock.Any(), int64(99)).
					Return(nil, domain.ErrProductNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid_id",
			productID:      "abc",
			setupMocks:     func(m *mocks.MockProductService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockProductService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewProductHandler(service, helpers.TestLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+tt.productID, nil)
			req.SetPathValue("id", tt.productID)
			rec := httptest.NewRecorder()

			handler.GetProduct(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestProductHandler_ListProducts(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockProductService(ctrl)

	service.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, params ports.ProductListParams) (*ports.ProductListResult, error) {
			assert.Equal(t, "coffee", params.Category)
			assert.Equal(t, 2, params.Page)
			assert.Equal(t, 25, params.PageSize)
			return &ports.ProductListResult{
				Products:   []*domain.Product{helpers.CreateTestProduct()},
				Page:       2,
				PageSize:   25,
				TotalCount: 26,
				TotalPages: 2,
			}, nil
		})

	handler := handlers.NewProductHandler(service, helpers.TestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=coffee&page=2&limit=25", nil)
	rec := httptest.NewRecorder()

	handler.ListProducts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(26), body["total_count"])
	assert.Len(t, body["products"], 1)
}

func TestProductHandler_UpdateProduct(t *testing.T) {
	tests := []struct {
		name           string
		productID      string
		body           string
		setupMocks     func(m *mocks.MockProductService)
		expectedStatus int
	}{
		{
			name:      "successful_update",
			productID: "3",
			body:      `{"name": "Espresso Beans 2kg", "price": "32.00"}`,
			setupMocks: func(m *mocks.MockProductService) {
				m.EXPECT().
					Update(gomock.Any(), int64(3), gomock.Any()).
					Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "not_found",
			productID: "99",
			body:      `{"name": "Espresso Beans 2kg", "price": "32.00"}`,
			setupMocks: func(m *mocks.MockProductService) {
				m.EXPECT().
					Update(gomock.Any(), int64(99), gomock.Any()).
					Return(domain.ErrProductNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid_body",
			productID:      "3",
			body:           `{"price": "32.00"}`,
			setupMocks:     func(m *mocks.MockProductService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			service := mocks.NewMockProductService(ctrl)
			tt.setupMocks(service)

			handler := handlers.NewProductHandler(service, helpers.TestLogger())

			req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+tt.productID, bytes.NewBufferString(tt.body))
			req.SetPathValue("id", tt.productID)
			rec := httptest.NewRecorder()

			handler.UpdateProduct(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestProductHandler_DeleteProduct(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockProductService(ctrl)

	service.EXPECT().
		Delete(gomock.Any(), int64(5)).
		Return(nil)

	handler := handlers.NewProductHandler(service, helpers.TestLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/5", nil)
	req.SetPathValue("id", "5")
	rec := httptest.NewRecorder()

	handler.DeleteProduct(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(5), body["product_id"])
}
