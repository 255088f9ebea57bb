// internal/handlers/replenishments.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
)

// ReplenishmentHandler handles replenishment HTTP requests
type ReplenishmentHandler struct {
	service ports.ReplenishmentService
	logger  *slog.Logger
}

// NewReplenishmentHandler creates a new replenishment handler
func NewReplenishmentHandler(service ports.ReplenishmentService, logger *slog.Logger) *ReplenishmentHandler {
	return &ReplenishmentHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "replenishment")),
	}
}

// RequestReplenishment handles POST /api/v1/replenishments
func (h *ReplenishmentHandler) RequestReplenishment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ReplenishmentRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	request := req.ToDomain()
	if err := h.service.Request(ctx, request); err != nil {
		switch {
		case errors.Is(err, domain.ErrStoreNotFound):
			h.respondError(w, http.StatusNotFound, "Store not found")
		case errors.Is(err, domain.ErrProductNotFound):
			h.respondError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, domain.ErrStoreCannotSell):
			h.respondError(w, http.StatusUnprocessableEntity, "Only sales stores can request replenishment")
		default:
			h.logger.ErrorContext(ctx, "failed to file replenishment request",
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to file replenishment request")
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, request)
}

// ListPending handles GET /api/v1/replenishments/pending
func (h *ReplenishmentHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reqs, err := h.service.ListPending(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list pending requests",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list pending requests")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"requests": reqs})
}

// ApproveReplenishment handles POST /api/v1/replenishments/{id}/approve
func (h *ReplenishmentHandler) ApproveReplenishment(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve, "approve")
}

// RejectReplenishment handles POST /api/v1/replenishments/{id}/reject
func (h *ReplenishmentHandler) RejectReplenishment(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject, "reject")
}

// decide runs an approve or reject through the service
func (h *ReplenishmentHandler) decide(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, id int64) (*domain.ReplenishmentRequest, error), action string) {

	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request ID format")
		return
	}

	req, err := op(ctx, id)
	if err != nil {
		var insufficient *domain.InsufficientStockError
		switch {
		case errors.Is(err, domain.ErrReplenishmentNotFound):
			h.respondError(w, http.StatusNotFound, "Replenishment request not found")
		case errors.Is(err, domain.ErrRequestNotPending):
			h.respondError(w, http.StatusConflict, "Replenishment request is not pending")
		case errors.As(err, &insufficient):
			h.respondJSON(w, http.StatusConflict, map[string]any{
				"error":      "Insufficient central stock",
				"product_id": insufficient.ProductID,
				"requested":  insufficient.Requested,
				"available":  insufficient.Available,
			})
		case errors.Is(err, domain.ErrStoreNotFound):
			h.respondError(w, http.StatusConflict, "No logistics store configured")
		default:
			h.logger.ErrorContext(ctx, "failed to "+action+" replenishment request",
				slog.Int64("request_id", id),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to "+action+" replenishment request")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, req)
}

func (h *ReplenishmentHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *ReplenishmentHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// ReplenishmentRequestBody represents the request body for filing a
// replenishment request
type ReplenishmentRequestBody struct {
	StoreID   int64 `json:"store_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Validate validates the replenishment request body
func (r *ReplenishmentRequestBody) Validate() error {
	if r.StoreID <= 0 {
		return fmt.Errorf("store_id is required")
	}
	if r.ProductID <= 0 {
		return fmt.Errorf("product_id is required")
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	return nil
}

// ToDomain converts the request body to a domain model
func (r *ReplenishmentRequestBody) ToDomain() *domain.ReplenishmentRequest {
	return &domain.ReplenishmentRequest{
		StoreID:   r.StoreID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		Status:    domain.ReplenishmentPending,
	}
}
