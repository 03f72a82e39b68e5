package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/handcrafted-haven/marketplace/internal/authctx"
	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/core/service"
)

type cartLineResponse struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	StockLimit  int     `json:"stock_limit"`
	SellerLabel string  `json:"seller_label"`
	ImageRef    string  `json:"image_ref"`
}

type cartResponse struct {
	Items     []cartLineResponse `json:"items"`
	Total     float64            `json:"total"`
	ItemCount int                `json:"item_count"`
	Message   string             `json:"message,omitempty"`
}

func toCartResponse(cart domain.Cart, event service.CartEvent) cartResponse {
	items := make([]cartLineResponse, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		items = append(items, cartLineResponse{
			ProductID:   l.ProductID,
			Name:        l.Name,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
			StockLimit:  l.StockLimit,
			SellerLabel: l.SellerLabel,
			ImageRef:    l.ImageRef,
		})
	}

	var message string
	switch event.Kind {
	case service.CartItemAdded:
		message = event.ProductName + " added to cart"
	case service.CartQuantityIncreased:
		message = event.ProductName + " quantity increased"
	case service.CartQuantitySet:
		message = event.ProductName + " quantity updated"
	case service.CartItemRemoved:
		message = event.ProductName + " removed from cart"
	case service.CartCleared:
		message = "cart cleared"
	}

	return cartResponse{
		Items:     items,
		Total:     cart.Total(),
		ItemCount: cart.ItemCount(),
		Message:   message,
	}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	session, _ := authctx.SessionFromContext(r.Context())

	cart, err := h.carts.Get(r.Context(), session.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(cart, service.CartEvent{}))
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	session, _ := authctx.SessionFromContext(r.Context())

	var req addToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := uuid.Parse(req.ProductID); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "must be a valid id", Field: "product_id"})
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// The line carries the seller's display name, not their id.
	sellerLabel := ""
	if seller, err := h.auth.GetUser(r.Context(), product.SellerID); err == nil {
		sellerLabel = seller.Username
	}

	update, err := h.carts.AddToCart(r.Context(), session.UserID, *product, sellerLabel, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(update.Cart, update.Event))
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	session, _ := authctx.SessionFromContext(r.Context())

	var req updateCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	update, err := h.carts.UpdateItemQuantity(r.Context(), session.UserID, chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(update.Cart, update.Event))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	session, _ := authctx.SessionFromContext(r.Context())

	update, err := h.carts.RemoveFromCart(r.Context(), session.UserID, chi.URLParam(r, "productID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(update.Cart, update.Event))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	session, _ := authctx.SessionFromContext(r.Context())

	update, err := h.carts.Clear(r.Context(), session.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartResponse(update.Cart, update.Event))
}
