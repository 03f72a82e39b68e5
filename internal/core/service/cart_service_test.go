package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

// Mock StateStore
type mockStateStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockStateStore() *mockStateStore {
	return &mockStateStore{data: make(map[string][]byte)}
}

func (m *mockStateStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *mockStateStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func newTestCartService() (*CartService, *mockStateStore) {
	store := newMockStateStore()
	return NewCartService(store, zap.NewNop(), time.Hour), store
}

func testProduct(id, name string, price float64, stock int) domain.Product {
	return domain.Product{ID: id, Name: name, Price: price, Stock: stock}
}

func TestAddToCart_NewLine(t *testing.T) {
	svc, _ := newTestCartService()
	ctx := context.Background()

	update, err := svc.AddToCart(ctx, "buyer-1", testProduct("p1", "Bowl", 34.00, 8), "marias_pottery", 2)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if len(update.Cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(update.Cart.Lines))
	}
	line := update.Cart.Lines[0]
	if line.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", line.Quantity)
	}
	if line.StockLimit != 8 {
		t.Errorf("expected stock limit 8, got %d", line.StockLimit)
	}
	if line.SellerLabel != "marias_pottery" {
		t.Errorf("expected seller label, got %q", line.SellerLabel)
	}
	if update.Event.Kind != CartItemAdded {
		t.Errorf("expected item_added event, got %s", update.Event.Kind)
	}
}

func TestAddToCart_MergesQuantity(t *testing.T) {
	svc, _ := newTestCartService()
	ctx := context.Background()
	p := testProduct("p1", "Bowl", 34.00, 8)

	if _, err := svc.AddToCart(ctx, "buyer-1", p, "", 3); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	update, err := svc.AddToCart(ctx, "buyer-1", p, "", 2)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	if len(update.Cart.Lines) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(update.Cart.Lines))
	}
	if update.Cart.Lines[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", update.Cart.Lines[0].Quantity)
	}
	if update.Event.Kind != CartQuantityIncreased {
		t.Errorf("expected quantity_increased event, got %s", update.Event.Kind)
	}
}

func TestAddToCart_RejectsOverStock(t *testing.T) {
	svc, _ := newTestCartService()
	ctx := context.Background()
	p := testProduct("p1", "Bowl", 34.00, 5)

	if _, err := svc.AddToCart(ctx, "buyer-1", p, "", 4); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// 4 + 2 exceeds stock 5; the whole mutation must be rejected.
	_, err := svc.AddToCart(ctx, "buyer-1", p, "", 2)
	var stockErr *domain.StockLimitError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected StockLimitError, got %v", err)
	}
	if stockErr.Attempted != 6 || stockErr.Limit != 5 {
		t.Errorf("expected attempted=6 limit=5, got attempted=%d limit=%d", stockErr.Attempted, stockErr.Limit)
	}

	cart, err := svc.Get(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if cart.Lines[0].Quantity != 4 {
		t.Errorf("cart should be unchanged after rejection, got quantity %d", cart.Lines[0].Quantity)
	}
}

func TestAddToCart_DefaultStockLimit(t *testing.T) {
	svc, _ := newTestCartService()
	ctx := context.Background()

	// Stock 0 means the product carries no limit of its own.
	p := testProduct("p1", "Bowl", 34.00, 0)
	_, err := svc.AddToCart(ctx, "buyer-1", p, "", domain.DefaultStockLimit+1)
	var stockErr *domain.StockLimitError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected StockLimitError, got %v", err)
	}
	if stockErr.Limit != domain.DefaultStockLimit {
		t.Errorf("expected default limit %d, got %d", domain.DefaultStockLimit, stockErr.Limit)
	}
}

func TestUpdateItemQuantity_RejectsOverStockWithoutClamping(t *testing.T) {
	svc, _ := newTestCartService()
	ctx := context.Background()
	p := testProduct("p1", "Bowl", 34.00, 5)

	if _, err := svc.AddToCart(ctx, "buyer-1", p, "", 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	_, err := svc.UpdateItemQuantity(ctx, "buyer-1", "p1", 9)
	var stockErr *domain.StockLimitError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected StockLimitError, got %v", err)
	}

	cart, _ := svc.Get(ctx, "buyer-1")
	if cart.Lines[0].Quantity != 2 {
		t.Errorf("quantity must stay at 2, got %d", cart.Lines[0].Quantity)
	}
}

func TestUpdateItemQuantity_ZeroRemovesLine(t *testing.T) {
	svc, _ := newTestCartService()
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "buyer-1", testProduct("p1", "Bowl", 34.00, 8), "", 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	update, err := svc.UpdateItemQuantity(ctx, "buyer-1", "p1", 0)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(update.Cart.Lines) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(update.Cart.Lines))
	}
	if update.Event.Kind != CartItemRemoved {
		t.Errorf("expected item_removed event, got %s", update.Event.Kind)
	}
}

func TestUpdateItemQuantity_MissingLine(t *testing.T) {
	svc, _ := newTestCartService()

	_, err := svc.UpdateItemQuantity(context.Background(), "buyer-1", "missing", 1)
	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveFromCart_Idempotent(t *testing.T) {
	svc, _ := newTestCartService()
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "buyer-1", testProduct("p1", "Bowl", 34.00, 8), "", 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	update, err := svc.RemoveFromCart(ctx, "buyer-1", "p1")
	if err != nil {
		t.Fatalf("first remove failed: %v", err)
	}
	if update.Event.Kind != CartItemRemoved {
		t.Errorf("expected item_removed event, got %s", update.Event.Kind)
	}

	// Removing again is a silent no-op: same state, no error, empty event.
	update, err = svc.RemoveFromCart(ctx, "buyer-1", "p1")
	if err != nil {
		t.Fatalf("second remove errored: %v", err)
	}
	if update.Event.Kind != "" {
		t.Errorf("expected empty event on no-op removal, got %s", update.Event.Kind)
	}
	if len(update.Cart.Lines) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(update.Cart.Lines))
	}
}

func TestCartTotal(t *testing.T) {
	svc, _ := newTestCartService()
	ctx := context.Background()

	if _, err := svc.AddToCart(ctx, "buyer-1", testProduct("p1", "Bowl", 34.00, 8), "", 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	update, err := svc.AddToCart(ctx, "buyer-1", testProduct("p2", "Pendant", 65.00, 5), "", 1)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if got := update.Cart.Total(); got != 133.00 {
		t.Errorf("expected total 133.00, got %.2f", got)
	}
	if got := update.Cart.ItemCount(); got != 3 {
		t.Errorf("expected item count 3, got %d", got)
	}

	update, err = svc.UpdateItemQuantity(ctx, "buyer-1", "p1", 1)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := update.Cart.Total(); got != 99.00 {
		t.Errorf("expected total 99.00 after update, got %.2f", got)
	}

	update, err = svc.RemoveFromCart(ctx, "buyer-1", "p2")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if got := update.Cart.Total(); got != 34.00 {
		t.Errorf("expected total 34.00 after removal, got %.2f", got)
	}
}

func TestCart_RoundTripThroughStore(t *testing.T) {
	store := newMockStateStore()
	ctx := context.Background()

	first := NewCartService(store, zap.NewNop(), time.Hour)
	if _, err := first.AddToCart(ctx, "buyer-1", testProduct("p1", "Bowl", 34.00, 8), "marias_pottery", 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// A fresh service over the same store sees the identical cart.
	second := NewCartService(store, zap.NewNop(), time.Hour)
	cart, err := second.Get(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}
	l := cart.Lines[0]
	if l.ProductID != "p1" || l.Name != "Bowl" || l.UnitPrice != 34.00 || l.Quantity != 2 ||
		l.StockLimit != 8 || l.SellerLabel != "marias_pottery" {
		t.Errorf("line did not survive round trip: %+v", l)
	}
}

func TestCart_CorruptPayloadFallsBackToEmpty(t *testing.T) {
	store := newMockStateStore()
	ctx := context.Background()
	store.data["cart:buyer-1"] = []byte("{not json")

	svc := NewCartService(store, zap.NewNop(), time.Hour)
	cart, err := svc.Get(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("corrupt payload must not error: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(cart.Lines))
	}
}

func TestCart_Scenario(t *testing.T) {
	svc, _ := newTestCartService()
	ctx := context.Background()

	bowl := testProduct("p1", "Bowl", 34.00, 3)
	pendant := testProduct("p2", "Pendant", 65.00, 5)

	if _, err := svc.AddToCart(ctx, "buyer-1", bowl, "", 2); err != nil {
		t.Fatalf("add bowl failed: %v", err)
	}
	if _, err := svc.AddToCart(ctx, "buyer-1", pendant, "", 1); err != nil {
		t.Fatalf("add pendant failed: %v", err)
	}

	// Pushing the bowl past its stock of 3 must fail and change nothing.
	if _, err := svc.AddToCart(ctx, "buyer-1", bowl, "", 2); err == nil {
		t.Fatal("expected stock rejection")
	}
	cart, _ := svc.Get(ctx, "buyer-1")
	if cart.Lines[cart.Find("p1")].Quantity != 2 {
		t.Errorf("bowl quantity must stay at 2 after rejection")
	}

	// Setting exactly the stock limit is allowed.
	update, err := svc.UpdateItemQuantity(ctx, "buyer-1", "p1", 3)
	if err != nil {
		t.Fatalf("update bowl to limit failed: %v", err)
	}
	if update.Cart.Lines[update.Cart.Find("p1")].Quantity != 3 {
		t.Errorf("expected bowl quantity 3")
	}

	// Back down to zero drops the line entirely.
	update, err = svc.UpdateItemQuantity(ctx, "buyer-1", "p1", 0)
	if err != nil {
		t.Fatalf("update bowl to zero failed: %v", err)
	}
	if update.Cart.Find("p1") != -1 {
		t.Error("expected bowl line gone")
	}

	update, err = svc.UpdateItemQuantity(ctx, "buyer-1", "p2", 3)
	if err != nil {
		t.Fatalf("update pendant failed: %v", err)
	}
	if got := update.Cart.Total(); got != 195.00 {
		t.Errorf("expected total 195.00, got %.2f", got)
	}
	if got := update.Cart.ItemCount(); got != 3 {
		t.Errorf("expected 3 items, got %d", got)
	}

	// Removing the already-gone bowl is a silent no-op.
	update, err = svc.RemoveFromCart(ctx, "buyer-1", "p1")
	if err != nil {
		t.Fatalf("remove bowl failed: %v", err)
	}
	if got := update.Cart.Total(); got != 195.00 {
		t.Errorf("expected total 195.00, got %.2f", got)
	}

	update, err = svc.Clear(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if len(update.Cart.Lines) != 0 {
		t.Errorf("expected empty cart after clear")
	}
}
