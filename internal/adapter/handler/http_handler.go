package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/core/service"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

// sessionHeader carries the opaque session id on authenticated requests.
const sessionHeader = "x-session-id"

type Handler struct {
	auth     *service.AuthService
	catalog  *service.CatalogService
	carts    *service.CartService
	checkout *service.CheckoutService
	reviews  *service.ReviewService
	admin    *service.AdminService
	logger   *zap.Logger
}

func New(
	auth *service.AuthService,
	catalog *service.CatalogService,
	carts *service.CartService,
	checkout *service.CheckoutService,
	reviews *service.ReviewService,
	admin *service.AdminService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		auth:     auth,
		catalog:  catalog,
		carts:    carts,
		checkout: checkout,
		reviews:  reviews,
		admin:    admin,
		logger:   logger,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

type errorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Product   string `json:"product,omitempty"`
	Attempted int    `json:"attempted,omitempty"`
	Max       int    `json:"max,omitempty"`
}

// writeError maps service failures onto HTTP statuses. Every failure is
// handled here at the boundary; nothing propagates as a fault.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Message, Field: validation.Field})
		return
	}

	var stockErr *domain.StockLimitError
	if errors.As(err, &stockErr) {
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:     stockErr.Error(),
			Product:   stockErr.ProductName,
			Attempted: stockErr.Attempted,
			Max:       stockErr.Limit,
		})
		return
	}

	switch {
	case errors.Is(err, port.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, port.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, port.ErrSessionNotFound):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, service.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
	case errors.Is(err, service.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cart is empty"})
	case errors.Is(err, service.ErrInsufficientStock):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "sold out"})
	case errors.Is(err, port.ErrPaymentDeclined):
		writeJSON(w, http.StatusPaymentRequired, errorResponse{Error: "payment declined"})
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
