package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID              string
	BuyerID         string
	Status          OrderStatus
	Total           float64
	TransactionID   string
	ShippingName    string
	ShippingAddress string
	ShippingCity    string
	ShippingZip     string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem snapshots name and price at purchase time so later catalog
// edits do not rewrite order history.
type OrderItem struct {
	ProductID string
	Name      string
	UnitPrice float64
	Quantity  int
}
