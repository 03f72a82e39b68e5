package domain

import "fmt"

// DefaultStockLimit is the purchasable quantity assumed for products that
// carry no stock figure.
const DefaultStockLimit = 10

// CartLine is one product entry in a cart. The JSON tags define the wire
// format persisted to the state store.
type CartLine struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	StockLimit  int     `json:"stock_limit"`
	SellerLabel string  `json:"seller_label"`
	ImageRef    string  `json:"image_ref"`
}

// Cart holds at most one line per product id. Line order is preserved for
// display; totals do not depend on it.
type Cart struct {
	Lines []CartLine
}

func (c Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

func (c Cart) ItemCount() int {
	var count int
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// Find returns the index of the line for productID, or -1 if absent.
func (c Cart) Find(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// StockLimitError rejects a cart mutation that would exceed a line's stock
// limit. The attempted and maximum quantities are carried for the
// user-facing warning.
type StockLimitError struct {
	ProductName string
	Attempted   int
	Limit       int
}

func (e *StockLimitError) Error() string {
	return fmt.Sprintf("only %d of %q available, requested %d", e.Limit, e.ProductName, e.Attempted)
}
