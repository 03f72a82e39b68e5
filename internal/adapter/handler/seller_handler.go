package handler

import (
	"net/http"

	"github.com/handcrafted-haven/marketplace/internal/authctx"
	"github.com/handcrafted-haven/marketplace/internal/core/service"
)

func (h *Handler) ListSellerProducts(w http.ResponseWriter, r *http.Request) {
	session, _ := authctx.SessionFromContext(r.Context())

	products, err := h.catalog.ListSellerProducts(r.Context(), session.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponses(products))
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	CategoryID  string  `json:"category_id"`
	ImageRef    string  `json:"image_ref"`
}

func (req productRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageRef:    req.ImageRef,
	}
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	session, _ := authctx.SessionFromContext(r.Context())

	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), session.UserID, req.toInput())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(*product))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	session, _ := authctx.SessionFromContext(r.Context())

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), session, id, req.toInput())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*product))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	session, _ := authctx.SessionFromContext(r.Context())

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), session, id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
