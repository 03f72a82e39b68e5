package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handcrafted-haven/marketplace/internal/port"
)

// DeclinedTestCard always fails the charge, for exercising the decline path.
const DeclinedTestCard = "4000000000000002"

// MockProcessor simulates a payment gateway: a short processing delay, a
// designated always-declined card, and a generated transaction id.
type MockProcessor struct {
	logger *zap.Logger
	delay  time.Duration
}

func NewMockProcessor(logger *zap.Logger, delay time.Duration) *MockProcessor {
	return &MockProcessor{logger: logger, delay: delay}
}

func (p *MockProcessor) Charge(ctx context.Context, req port.ChargeRequest) (string, error) {
	if p.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.delay):
		}
	}

	card := strings.ReplaceAll(strings.TrimSpace(req.CardNumber), " ", "")
	if card == DeclinedTestCard {
		p.logger.Info("payment declined",
			zap.String("buyer_id", req.BuyerID),
			zap.Float64("amount", req.Amount),
		)
		return "", port.ErrPaymentDeclined
	}

	txID := "txn-" + uuid.NewString()
	p.logger.Info("payment captured",
		zap.String("buyer_id", req.BuyerID),
		zap.Float64("amount", req.Amount),
		zap.String("transaction_id", txID),
	)
	return txID, nil
}
