// internal/handlers/sales.go
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

// SaleHandler handles sale and return HTTP requests
type SaleHandler struct {
	service ports.SaleService
	logger  *slog.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(service ports.SaleService, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "sale")),
	}
}

// RecordSale handles POST /api/v1/sales
func (h *SaleHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RecordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sale, err := h.service.RecordSale(ctx, req.StoreID, req.ToLines())
	if err != nil {
		h.handleSaleError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, sale)
}

// GetSale handles GET /api/v1/sales/{id}
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	sale, err := h.service.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSaleNotFound) {
			h.respondError(w, http.StatusNotFound, "Sale not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get sale",
			slog.Int64("sale_id", id),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve sale")
		return
	}

	h.respondJSON(w, http.StatusOK, sale)
}

// ListSales handles GET /api/v1/stores/{storeId}/sales
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storeID, err := parseID(r, "storeId")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid store ID format")
		return
	}

	page, pageSize := 1, 50
	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			if v > 100 {
				v = 100
			}
			pageSize = v
		}
	}

	result, err := h.service.ListByStore(ctx, storeID, page, pageSize)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			h.respondError(w, http.StatusNotFound, "Store not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to list sales",
			slog.Int64("store_id", storeID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list sales")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// ProcessReturn handles POST /api/v1/sales/{id}/return
func (h *SaleHandler) ProcessReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	sale, err := h.service.ProcessReturn(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSaleNotFound):
			h.respondError(w, http.StatusNotFound, "Sale not found")
		case errors.Is(err, domain.ErrAlreadyReturned):
			h.respondError(w, http.StatusConflict, "Sale already returned")
		default:
			h.logger.ErrorContext(ctx, "failed to process return",
				slog.Int64("sale_id", id),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to process return")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, sale)
}

// handleSaleError maps sale recording errors to HTTP responses
func (h *SaleHandler) handleSaleError(ctx context.Context, w http.ResponseWriter, err error) {
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
	case errors.Is(err, domain.ErrStoreNotFound):
		h.respondError(w, http.StatusNotFound, "Store not found")
	case errors.Is(err, domain.ErrProductNotFound):
		h.respondError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrStoreCannotSell):
		h.respondError(w, http.StatusUnprocessableEntity, "Store does not record sales")
	default:
		h.logger.ErrorContext(ctx, "failed to record sale",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to record sale")
	}
}

func (h *SaleHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *SaleHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// RecordSaleRequest represents the request body for recording a sale
type RecordSaleRequest struct {
	StoreID int64             `json:"store_id"`
	Lines   []SaleLineRequest `json:"lines"`
}

// SaleLineRequest is one product position in a sale request. Prices are
// never accepted from the client; the service snapshots the catalog price.
type SaleLineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Validate validates the record sale request
func (r *RecordSaleRequest) Validate() error {
	if r.StoreID <= 0 {
		return fmt.Errorf("store_id is required")
	}
	if len(r.Lines) == 0 {
		return fmt.Errorf("at least one line is required")
	}
	for i, line := range r.Lines {
		if line.ProductID <= 0 {
			return fmt.Errorf("line %d: product_id is required", i)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("line %d: quantity must be positive", i)
		}
	}
	return nil
}

// ToLines converts the request lines to domain sale lines
func (r *RecordSaleRequest) ToLines() []domain.SaleLine {
	lines := make([]domain.SaleLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, domain.SaleLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		})
	}
	return lines
}
