package service

import (
	"context"
	"errors"
	"testing"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

type mockReviewRepo struct {
	reviews []domain.Review
}

func (m *mockReviewRepo) Create(ctx context.Context, r domain.Review) error {
	m.reviews = append(m.reviews, r)
	return nil
}

func (m *mockReviewRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	var out []domain.Review
	for _, r := range m.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestAddReview(t *testing.T) {
	products := newMemProductRepo()
	ctx := context.Background()
	products.Create(ctx, domain.Product{ID: "p1", Name: "Bowl"})

	svc := NewReviewService(&mockReviewRepo{}, products)

	r, err := svc.AddReview(ctx, "buyer-1", "p1", 5, "  Beautiful glaze.  ")
	if err != nil {
		t.Fatalf("add review failed: %v", err)
	}
	if r.Comment != "Beautiful glaze." {
		t.Errorf("expected trimmed comment, got %q", r.Comment)
	}

	reviews, err := svc.ListReviews(ctx, "p1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(reviews) != 1 {
		t.Errorf("expected 1 review, got %d", len(reviews))
	}
}

func TestAddReview_RatingBounds(t *testing.T) {
	products := newMemProductRepo()
	ctx := context.Background()
	products.Create(ctx, domain.Product{ID: "p1", Name: "Bowl"})

	svc := NewReviewService(&mockReviewRepo{}, products)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.AddReview(ctx, "buyer-1", "p1", rating, "nice")
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Errorf("rating %d: expected ValidationError, got %v", rating, err)
		}
	}
}

func TestAddReview_UnknownProduct(t *testing.T) {
	svc := NewReviewService(&mockReviewRepo{}, newMemProductRepo())

	_, err := svc.AddReview(context.Background(), "buyer-1", "ghost", 4, "nice")
	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
