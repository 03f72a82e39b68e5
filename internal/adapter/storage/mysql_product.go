package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

const defaultBrowseLimit = 100

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

const productColumns = "id, seller_id, category_id, name, description, price, stock, image_ref, created_at, updated_at"

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.SellerID, &p.CategoryID, &p.Name, &p.Description,
		&p.Price, &p.Stock, &p.ImageRef, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (m *MySQLProductRepository) Create(ctx context.Context, p domain.Product) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SellerID, p.CategoryID, p.Name, p.Description,
		p.Price, p.Stock, p.ImageRef, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (m *MySQLProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

func (m *MySQLProductRepository) Browse(ctx context.Context, filter port.BrowseFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`

	var conds []string
	var args []any

	if filter.CategoryID != "" {
		conds = append(conds, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		conds = append(conds, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultBrowseLimit
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("browse products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (m *MySQLProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE seller_id = ? ORDER BY created_at DESC`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (m *MySQLProductRepository) Update(ctx context.Context, p domain.Product) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE products
		SET category_id = ?, name = ?, description = ?, price = ?, stock = ?, image_ref = ?, updated_at = NOW()
		WHERE id = ?`,
		p.CategoryID, p.Name, p.Description, p.Price, p.Stock, p.ImageRef, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrNotFound
	}
	return nil
}

func (m *MySQLProductRepository) Delete(ctx context.Context, id string) error {
	result, err := m.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return port.ErrNotFound
	}
	return nil
}

func (m *MySQLProductRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

type MySQLCategoryRepository struct {
	db *sql.DB
}

func NewMySQLCategoryRepository(db *sql.DB) *MySQLCategoryRepository {
	return &MySQLCategoryRepository{db: db}
}

func (m *MySQLCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (m *MySQLCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, slug FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Slug)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query category: %w", err)
	}
	return &c, nil
}
