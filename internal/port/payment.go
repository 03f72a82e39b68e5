package port

import (
	"context"
	"errors"
)

// ErrPaymentDeclined is returned when the processor refuses the charge.
var ErrPaymentDeclined = errors.New("payment declined")

type ChargeRequest struct {
	BuyerID    string
	Amount     float64
	CardNumber string
}

// PaymentProcessor charges the buyer at checkout. The shipped implementation
// is a simulator; the port exists so a real gateway can be swapped in.
type PaymentProcessor interface {
	// Charge processes the payment and returns a transaction id
	Charge(ctx context.Context, req ChargeRequest) (string, error)
}
