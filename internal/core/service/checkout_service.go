package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

type CheckoutInput struct {
	BuyerID         string
	ShippingName    string
	ShippingAddress string
	ShippingCity    string
	ShippingZip     string
	CardNumber      string
}

// CheckoutService turns a cart into a paid order: validate the shipping
// form, reserve stock, charge the buyer, persist the order, clear the cart.
// Any failure after reservation releases the reserved units; nothing is
// retried automatically.
type CheckoutService struct {
	carts    *CartService
	orders   port.OrderRepository
	stock    port.StockReserver
	payments port.PaymentProcessor
	logger   *zap.Logger
}

func NewCheckoutService(carts *CartService, orders port.OrderRepository, stock port.StockReserver, payments port.PaymentProcessor, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		orders:   orders,
		stock:    stock,
		payments: payments,
		logger:   logger,
	}
}

func validateShipping(input CheckoutInput) error {
	fields := []struct {
		name  string
		value string
	}{
		{"shipping_name", input.ShippingName},
		{"shipping_address", input.ShippingAddress},
		{"shipping_city", input.ShippingCity},
		{"shipping_zip", input.ShippingZip},
		{"card_number", input.CardNumber},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name, Message: "is required"}
		}
	}
	return nil
}

func (s *CheckoutService) Checkout(ctx context.Context, input CheckoutInput) (*domain.Order, error) {
	if err := validateShipping(input); err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, input.BuyerID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	// Reserve every line up front; any later failure releases what was taken.
	var reserved []domain.CartLine
	release := func() {
		for _, l := range reserved {
			if err := s.stock.Release(ctx, l.ProductID, l.Quantity); err != nil {
				s.logger.Error("stock release failed",
					zap.String("product_id", l.ProductID),
					zap.Int("quantity", l.Quantity),
					zap.Error(err),
				)
			}
		}
	}

	for _, l := range cart.Lines {
		ok, err := s.stock.Reserve(ctx, l.ProductID, l.Quantity)
		if err != nil {
			release()
			return nil, fmt.Errorf("stock reservation failed: %w", err)
		}
		if !ok {
			release()
			return nil, fmt.Errorf("%q: %w", l.Name, ErrInsufficientStock)
		}
		reserved = append(reserved, l)
	}

	total := cart.Total()
	txID, err := s.payments.Charge(ctx, port.ChargeRequest{
		BuyerID:    input.BuyerID,
		Amount:     total,
		CardNumber: input.CardNumber,
	})
	if err != nil {
		release()
		if errors.Is(err, port.ErrPaymentDeclined) {
			return nil, err
		}
		return nil, fmt.Errorf("payment service error: %w", err)
	}

	now := time.Now()
	order := domain.Order{
		ID:              uuid.NewString(),
		BuyerID:         input.BuyerID,
		Status:          domain.OrderStatusPaid,
		Total:           total,
		TransactionID:   txID,
		ShippingName:    input.ShippingName,
		ShippingAddress: input.ShippingAddress,
		ShippingCity:    input.ShippingCity,
		ShippingZip:     input.ShippingZip,
		Items:           make([]domain.OrderItem, 0, len(cart.Lines)),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, l := range cart.Lines {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		release()
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	if _, err := s.carts.Clear(ctx, input.BuyerID); err != nil {
		// The order is already placed; a stale cart is recoverable.
		s.logger.Warn("cart clear after checkout failed",
			zap.String("buyer_id", input.BuyerID),
			zap.Error(err),
		)
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("buyer_id", input.BuyerID),
		zap.Float64("total", total),
	)
	return &order, nil
}

// GetOrder returns the buyer's own order. Other buyers' orders are reported
// as not found rather than forbidden, so ids cannot be probed.
func (s *CheckoutService) GetOrder(ctx context.Context, buyerID, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, port.ErrNotFound
	}
	return order, nil
}

func (s *CheckoutService) ListOrders(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return s.orders.ListByBuyer(ctx, buyerID)
}
