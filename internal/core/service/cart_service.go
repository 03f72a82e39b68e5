package service

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

const cartKeyPrefix = "cart:"

type CartEventKind string

const (
	CartItemAdded         CartEventKind = "item_added"
	CartQuantityIncreased CartEventKind = "quantity_increased"
	CartQuantitySet       CartEventKind = "quantity_set"
	CartItemRemoved       CartEventKind = "item_removed"
	CartCleared           CartEventKind = "cleared"
)

// CartEvent is the user-visible outcome of a successful mutation. An empty
// Kind means the operation was a silent no-op (removing an absent line).
type CartEvent struct {
	Kind        CartEventKind
	ProductName string
}

type CartUpdate struct {
	Cart  domain.Cart
	Event CartEvent
}

// CartService owns the authoritative cart state. Every mutation loads the
// line sequence from the state store, applies the change, and writes the
// full sequence back. A striped lock serializes read-modify-write per cart
// key since HTTP handlers run concurrently.
type CartService struct {
	store  port.StateStore
	logger *zap.Logger
	ttl    time.Duration
	locks  [64]sync.Mutex
}

func NewCartService(store port.StateStore, logger *zap.Logger, ttl time.Duration) *CartService {
	return &CartService{store: store, logger: logger, ttl: ttl}
}

func cartKey(cartID string) string {
	return cartKeyPrefix + cartID
}

func (s *CartService) lock(cartID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(cartID))
	return &s.locks[h.Sum32()%uint32(len(s.locks))]
}

// load hydrates the cart from the state store. Missing or corrupt payloads
// degrade silently to an empty cart; only a store failure is an error.
func (s *CartService) load(ctx context.Context, cartID string) (domain.Cart, error) {
	raw, err := s.store.Get(ctx, cartKey(cartID))
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	if len(raw) == 0 {
		return domain.Cart{}, nil
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.logger.Debug("discarding corrupt cart payload",
			zap.String("cart_id", cartID),
			zap.Error(err),
		)
		return domain.Cart{}, nil
	}
	return domain.Cart{Lines: lines}, nil
}

func (s *CartService) save(ctx context.Context, cartID string, cart domain.Cart) error {
	raw, err := json.Marshal(cart.Lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.store.Set(ctx, cartKey(cartID), raw, s.ttl); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

// Get returns the current cart without mutating it.
func (s *CartService) Get(ctx context.Context, cartID string) (domain.Cart, error) {
	return s.load(ctx, cartID)
}

// AddToCart merges quantity into the existing line for the product, or
// creates a new line. The merged quantity may not exceed the product's
// stock (DefaultStockLimit when the product carries none); exceeding it
// rejects the whole mutation and leaves the cart unchanged.
func (s *CartService) AddToCart(ctx context.Context, cartID string, p domain.Product, sellerLabel string, quantity int) (*CartUpdate, error) {
	if quantity <= 0 {
		quantity = 1
	}

	l := s.lock(cartID)
	l.Lock()
	defer l.Unlock()

	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	maxStock := p.Stock
	if maxStock <= 0 {
		maxStock = domain.DefaultStockLimit
	}

	idx := cart.Find(p.ID)
	merged := quantity
	if idx >= 0 {
		merged += cart.Lines[idx].Quantity
	}
	if merged > maxStock {
		return nil, &domain.StockLimitError{ProductName: p.Name, Attempted: merged, Limit: maxStock}
	}

	kind := CartItemAdded
	if idx >= 0 {
		cart.Lines[idx].Quantity = merged
		kind = CartQuantityIncreased
	} else {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID:   p.ID,
			Name:        p.Name,
			UnitPrice:   p.Price,
			Quantity:    quantity,
			StockLimit:  maxStock,
			SellerLabel: sellerLabel,
			ImageRef:    p.ImageRef,
		})
	}

	if err := s.save(ctx, cartID, cart); err != nil {
		return nil, err
	}
	return &CartUpdate{Cart: cart, Event: CartEvent{Kind: kind, ProductName: p.Name}}, nil
}

// UpdateItemQuantity sets the line to quantity. Zero or negative behaves as
// removal. A quantity above the line's stock limit rejects the mutation and
// leaves the existing line untouched; unlike AddToCart there is no merge,
// and deliberately no clamping.
func (s *CartService) UpdateItemQuantity(ctx context.Context, cartID, productID string, quantity int) (*CartUpdate, error) {
	l := s.lock(cartID)
	l.Lock()
	defer l.Unlock()

	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	idx := cart.Find(productID)
	if idx < 0 {
		return nil, port.ErrNotFound
	}
	line := cart.Lines[idx]

	if quantity <= 0 {
		cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
		if err := s.save(ctx, cartID, cart); err != nil {
			return nil, err
		}
		return &CartUpdate{Cart: cart, Event: CartEvent{Kind: CartItemRemoved, ProductName: line.Name}}, nil
	}

	if quantity > line.StockLimit {
		return nil, &domain.StockLimitError{ProductName: line.Name, Attempted: quantity, Limit: line.StockLimit}
	}

	cart.Lines[idx].Quantity = quantity
	if err := s.save(ctx, cartID, cart); err != nil {
		return nil, err
	}
	return &CartUpdate{Cart: cart, Event: CartEvent{Kind: CartQuantitySet, ProductName: line.Name}}, nil
}

// RemoveFromCart deletes the line if present. Removing an absent product is
// a silent no-op: state unchanged, empty event, no error.
func (s *CartService) RemoveFromCart(ctx context.Context, cartID, productID string) (*CartUpdate, error) {
	l := s.lock(cartID)
	l.Lock()
	defer l.Unlock()

	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	idx := cart.Find(productID)
	if idx < 0 {
		return &CartUpdate{Cart: cart}, nil
	}

	name := cart.Lines[idx].Name
	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
	if err := s.save(ctx, cartID, cart); err != nil {
		return nil, err
	}
	return &CartUpdate{Cart: cart, Event: CartEvent{Kind: CartItemRemoved, ProductName: name}}, nil
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, cartID string) (*CartUpdate, error) {
	l := s.lock(cartID)
	l.Lock()
	defer l.Unlock()

	if err := s.store.Delete(ctx, cartKey(cartID)); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	return &CartUpdate{Cart: domain.Cart{}, Event: CartEvent{Kind: CartCleared}}, nil
}
