package port

import (
	"context"
	"errors"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
)

// ErrNotFound is returned by repositories when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned on unique-constraint conflicts (email, username).
var ErrAlreadyExists = errors.New("already exists")

// BrowseFilter constrains the catalog prefetch. Search is matched
// case-insensitively as a substring of name or description; an empty
// CategoryID means all categories. Results come back newest first, capped
// at Limit rows.
type BrowseFilter struct {
	Search     string
	CategoryID string
	Limit      int
}

type ProductRepository interface {
	// Create persists a new product
	Create(ctx context.Context, p domain.Product) error

	// GetByID retrieves a product, ErrNotFound if absent
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// Browse runs the server-side prefetch stage: category + search, newest first
	Browse(ctx context.Context, filter BrowseFilter) ([]domain.Product, error)

	// ListBySeller returns the seller's own products, newest first
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Product, error)

	// Update rewrites the mutable fields of a product
	Update(ctx context.Context, p domain.Product) error

	// Delete removes a product, ErrNotFound if absent
	Delete(ctx context.Context, id string) error

	// Count returns the total number of products (admin stats)
	Count(ctx context.Context) (int, error)
}

type CategoryRepository interface {
	// List returns all categories ordered by name
	List(ctx context.Context) ([]domain.Category, error)

	// GetByID retrieves a category, ErrNotFound if absent
	GetByID(ctx context.Context, id string) (*domain.Category, error)
}

type UserRepository interface {
	// Create persists a new user, ErrAlreadyExists on duplicate email/username
	Create(ctx context.Context, u domain.User) error

	// GetByEmail retrieves a user by email, ErrNotFound if absent
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByID retrieves a user by id, ErrNotFound if absent
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// UpdateProfile rewrites username and email
	UpdateProfile(ctx context.Context, id, username, email string) error

	// UpdatePassword replaces the stored password hash
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// UpdateRole sets the user's role (admin tier, bypasses ownership scoping)
	UpdateRole(ctx context.Context, id string, role domain.Role) error

	// List returns all users, newest first (admin tier)
	List(ctx context.Context) ([]domain.User, error)

	// Delete removes a user (admin tier)
	Delete(ctx context.Context, id string) error

	// Count returns the total number of users (admin stats)
	Count(ctx context.Context) (int, error)
}

type OrderRepository interface {
	// Create persists the order and its items and decrements product stock
	// in one transaction, guarded by stock >= quantity
	Create(ctx context.Context, order domain.Order) error

	// GetByID retrieves an order with its items, ErrNotFound if absent
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByBuyer returns the buyer's orders, newest first
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)

	// Count returns the total number of orders (admin stats)
	Count(ctx context.Context) (int, error)

	// Revenue returns the sum of order totals (admin stats)
	Revenue(ctx context.Context) (float64, error)
}

type ReviewRepository interface {
	// Create persists a new review
	Create(ctx context.Context, r domain.Review) error

	// ListByProduct returns a product's reviews, newest first
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
}
