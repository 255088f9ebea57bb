// internal/handlers/stores.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ldessureault/chainstore-be/internal/core/domain"
	"github.com/ldessureault/chainstore-be/internal/core/ports"
)

// StoreHandler handles store HTTP requests
type StoreHandler struct {
	service ports.StoreService
	logger  *slog.Logger
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(service ports.StoreService, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "store")),
	}
}

// GetStore handles GET /api/v1/stores/{id}
func (h *StoreHandler) GetStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid store ID format")
		return
	}

	store, err := h.service.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			h.respondError(w, http.StatusNotFound, "Store not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get store",
			slog.Int64("store_id", id),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve store")
		return
	}

	h.respondJSON(w, http.StatusOK, store)
}

// ListStores handles GET /api/v1/stores
func (h *StoreHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stores, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list stores",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list stores")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"stores": stores})
}

// CreateStore handles POST /api/v1/stores
func (h *StoreHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req StoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	store := req.ToDomain()
	if err := h.service.Create(ctx, store); err != nil {
		h.logger.ErrorContext(ctx, "failed to create store",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to create store")
		return
	}

	h.respondJSON(w, http.StatusCreated, store)
}

func (h *StoreHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *StoreHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// StoreRequest represents the request body for creating a store
type StoreRequest struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Type    string `json:"type,omitempty"`
}

// Validate validates the store request
func (r *StoreRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch domain.StoreType(r.Type) {
	case domain.StoreTypeSales, domain.StoreTypeLogistics, domain.StoreTypeHeadquarters, "":
		return nil
	}
	return fmt.Errorf("invalid store type: %s", r.Type)
}

// ToDomain converts the request to a domain model
func (r *StoreRequest) ToDomain() *domain.Store {
	storeType := domain.StoreType(r.Type)
	if storeType == "" {
		storeType = domain.StoreTypeSales
	}
	return &domain.Store{
		Name:    r.Name,
		Address: r.Address,
		Type:    storeType,
	}
}
