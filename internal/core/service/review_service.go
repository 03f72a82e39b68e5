package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

type ReviewService struct {
	reviews  port.ReviewRepository
	products port.ProductRepository
}

func NewReviewService(reviews port.ReviewRepository, products port.ProductRepository) *ReviewService {
	return &ReviewService{reviews: reviews, products: products}
}

func (s *ReviewService) AddReview(ctx context.Context, authorID, productID string, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, &ValidationError{Field: "rating", Message: "must be between 1 and 5"}
	}
	if strings.TrimSpace(comment) == "" {
		return nil, &ValidationError{Field: "comment", Message: "is required"}
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	r := domain.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		AuthorID:  authorID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: time.Now(),
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return &r, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	return s.reviews.ListByProduct(ctx, productID)
}
