package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
)

type MySQLReviewRepository struct {
	db *sql.DB
}

func NewMySQLReviewRepository(db *sql.DB) *MySQLReviewRepository {
	return &MySQLReviewRepository{db: db}
}

func (m *MySQLReviewRepository) Create(ctx context.Context, r domain.Review) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO reviews (id, product_id, author_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProductID, r.AuthorID, r.Rating, r.Comment, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (m *MySQLReviewRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, product_id, author_id, rating, comment, created_at
		FROM reviews WHERE product_id = ? ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var r domain.Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.AuthorID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
