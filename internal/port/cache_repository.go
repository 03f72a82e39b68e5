package port

import (
	"context"
	"errors"
	"time"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// StateStore abstracts a durable key-value slot. The cart store serializes
// its full line sequence here after every mutation.
type StateStore interface {
	// Set writes value under key with the given TTL (0 means no expiry)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get reads the value under key; (nil, nil) if the key is absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the key; deleting an absent key is not an error
	Delete(ctx context.Context, key string) error
}

// StockReserver holds the fast-path stock counters used during checkout.
type StockReserver interface {
	// Reserve atomically decreases available stock, returns false if insufficient
	Reserve(ctx context.Context, productID string, quantity int) (bool, error)

	// Release restores stock (for rollback on failure)
	Release(ctx context.Context, productID string, quantity int) error

	// SetStock seeds the counter for a product
	SetStock(ctx context.Context, productID string, quantity int) error
}

// Session is the identity attached to an opaque session id.
type Session struct {
	UserID string
	Role   domain.Role
}

type SessionStore interface {
	// Create issues a new session id for the user with the given TTL
	Create(ctx context.Context, userID string, role domain.Role, ttl time.Duration) (string, error)

	// Get resolves a session id, ErrSessionNotFound if unknown or expired
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Refresh extends the session TTL, ErrSessionNotFound if unknown
	Refresh(ctx context.Context, sessionID string, ttl time.Duration) error

	// Delete revokes a session; revoking an absent session is not an error
	Delete(ctx context.Context, sessionID string) error
}
