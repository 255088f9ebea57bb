// internal/handlers/stock.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
)

// StockHandler handles stock ledger HTTP requests
type StockHandler struct {
	service ports.StockService
	logger  *slog.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(service ports.StockService, logger *slog.Logger) *StockHandler {
	return &StockHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "stock")),
	}
}

// GetStock handles GET /api/v1/stores/{storeId}/stock/{productId}
func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, productID, err := parseStockPath(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	level, err := h.service.Get(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, domain.ErrStockNotFound) {
			h.respondError(w, http.StatusNotFound, "Stock level not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get stock level",
			slog.Int64("store_id", storeID),
			slog.Int64("product_id", productID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve stock level")
		return
	}

	h.respondJSON(w, http.StatusOK, level)
}

// ListStock handles GET /api/v1/stores/{storeId}/stock
func (h *StockHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := parseID(r, "storeId")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid store ID format")
		return
	}

	levels, err := h.service.ListByStore(ctx, storeID)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			h.respondError(w, http.StatusNotFound, "Store not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to list stock levels",
			slog.Int64("store_id", storeID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list stock levels")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"store_id": storeID,
		"stock":    levels,
	})
}

// SetStock handles PUT /api/v1/stores/{storeId}/stock/{productId}
func (h *StockHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, productID, err := parseStockPath(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req SetStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity < 0 {
		h.respondError(w, http.StatusBadRequest, "quantity cannot be negative")
		return
	}

	level := &domain.StockLevel{
		StoreID:   storeID,
		ProductID: productID,
		Quantity:  req.Quantity,
	}

	if err := h.service.Set(ctx, level); err != nil {
		h.handleStockError(ctx, w, err, storeID, productID)
		return
	}

	h.respondJSON(w, http.StatusOK, level)
}

// IncrementStock handles POST /api/v1/stores/{storeId}/stock/{productId}/increment
func (h *StockHandler) IncrementStock(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.Increment)
}

// DecrementStock handles POST /api/v1/stores/{storeId}/stock/{productId}/decrement
func (h *StockHandler) DecrementStock(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.Decrement)
}

// ListLowStock handles GET /api/v1/stores/{storeId}/stock/low
func (h *StockHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := parseID(r, "storeId")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid store ID format")
		return
	}

	threshold := domain.DefaultLowStockThreshold
	if t := r.URL.Query().Get("threshold"); t != "" {
		if v, err := strconv.Atoi(t); err == nil && v > 0 {
			threshold = v
		}
	}

	levels, err := h.service.ListLow(ctx, storeID, threshold)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			h.respondError(w, http.StatusNotFound, "Store not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to list low stock",
			slog.Int64("store_id", storeID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list low stock")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"store_id":  storeID,
		"threshold": threshold,
		"stock":     levels,
	})
}

// adjust runs an increment or decrement through the service
func (h *StockHandler) adjust(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, adj domain.StockAdjustment) (*domain.StockLevel, error)) {

	ctx := r.Context()

	storeID, productID, err := parseStockPath(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Quantity <= 0 {
		h.respondError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	level, err := op(ctx, domain.StockAdjustment{
		StoreID:   storeID,
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.handleStockError(ctx, w, err, storeID, productID)
		return
	}

	h.respondJSON(w, http.StatusOK, level)
}

// handleStockError maps stock errors to HTTP responses
func (h *StockHandler) handleStockError(ctx context.Context, w http.ResponseWriter, err error, storeID, productID int64) {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		h.respondJSON(w, http.StatusConflict, map[string]any{
			"error":      "Insufficient stock",
			"store_id":   insufficient.StoreID,
			"product_id": insufficient.ProductID,
			"requested":  insufficient.Requested,
			"available":  insufficient.Available,
		})
	case errors.Is(err, domain.ErrStockNotFound):
		h.respondError(w, http.StatusNotFound, "Stock level not found")
	case errors.Is(err, domain.ErrStoreNotFound):
		h.respondError(w, http.StatusNotFound, "Store not found")
	case errors.Is(err, domain.ErrProductNotFound):
		h.respondError(w, http.StatusNotFound, "Product not found")
	default:
		h.logger.ErrorContext(ctx, "stock operation failed",
			slog.Int64("store_id", storeID),
			slog.Int64("product_id", productID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Stock operation failed")
	}
}

func (h *StockHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *StockHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// parseStockPath extracts store and product IDs from a stock route
func parseStockPath(r *http.Request) (int64, int64, error) {
	storeID, err := parseID(r, "storeId")
	if err != nil {
		return 0, 0, fmt.Errorf("invalid store ID format")
	}
	productID, err := parseID(r, "productId")
	if err != nil {
		return 0, 0, fmt.Errorf("invalid product ID format")
	}
	return storeID, productID, nil
}

// SetStockRequest represents the request body for setting a stock level
type SetStockRequest struct {
	Quantity int `json:"quantity"`
}

// AdjustStockRequest represents the request body for stock adjustments
type AdjustStockRequest struct {
	Quantity int `json:"quantity"`
}
