package handler

import (
	"net/http"
	"time"

	"github.com/handcrafted-haven/marketplace/internal/authctx"
	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/core/service"
)

type orderItemResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	Status          string              `json:"status"`
	Total           float64             `json:"total"`
	ShippingName    string              `json:"shipping_name"`
	ShippingAddress string              `json:"shipping_address"`
	ShippingCity    string              `json:"shipping_city"`
	ShippingZip     string              `json:"shipping_zip"`
	Items           []orderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}
	return orderResponse{
		ID:              o.ID,
		Status:          string(o.Status),
		Total:           o.Total,
		ShippingName:    o.ShippingName,
		ShippingAddress: o.ShippingAddress,
		ShippingCity:    o.ShippingCity,
		ShippingZip:     o.ShippingZip,
		Items:           items,
		CreatedAt:       o.CreatedAt,
	}
}

type checkoutRequest struct {
	ShippingName    string `json:"shipping_name"`
	ShippingAddress string `json:"shipping_address"`
	ShippingCity    string `json:"shipping_city"`
	ShippingZip     string `json:"shipping_zip"`
	CardNumber      string `json:"card_number"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	session, _ := authctx.SessionFromContext(r.Context())

	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.checkout.Checkout(r.Context(), service.CheckoutInput{
		BuyerID:         session.UserID,
		ShippingName:    req.ShippingName,
		ShippingAddress: req.ShippingAddress,
		ShippingCity:    req.ShippingCity,
		ShippingZip:     req.ShippingZip,
		CardNumber:      req.CardNumber,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(*order))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	session, _ := authctx.SessionFromContext(r.Context())

	orders, err := h.checkout.ListOrders(r.Context(), session.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	session, _ := authctx.SessionFromContext(r.Context())

	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.checkout.GetOrder(r.Context(), session.UserID, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}
