package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

// ErrStockConflict is returned when the guarded stock decrement matches no
// row, meaning another checkout took the remaining units first.
var ErrStockConflict = errors.New("stock conflict")

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (m *MySQLOrderRepository) Create(ctx context.Context, order domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, buyer_id, status, total, transaction_id,
			shipping_name, shipping_address, shipping_city, shipping_zip,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.BuyerID, order.Status, order.Total, order.TransactionID,
		order.ShippingName, order.ShippingAddress, order.ShippingCity, order.ShippingZip,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, unit_price, quantity)
			VALUES (?, ?, ?, ?, ?)`,
			order.ID, item.ProductID, item.Name, item.UnitPrice, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - ?, updated_at = NOW()
			WHERE id = ? AND stock >= ?`,
			item.Quantity, item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("update stock: %w", err)
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrStockConflict
		}
	}

	return tx.Commit()
}

func (m *MySQLOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := m.db.QueryRowContext(ctx, `
		SELECT id, buyer_id, status, total, transaction_id,
			shipping_name, shipping_address, shipping_city, shipping_zip,
			created_at, updated_at
		FROM orders WHERE id = ?`, id,
	).Scan(&o.ID, &o.BuyerID, &o.Status, &o.Total, &o.TransactionID,
		&o.ShippingName, &o.ShippingAddress, &o.ShippingCity, &o.ShippingZip,
		&o.CreatedAt, &o.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	items, err := m.itemsFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (m *MySQLOrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, buyer_id, status, total, transaction_id,
			shipping_name, shipping_address, shipping_city, shipping_zip,
			created_at, updated_at
		FROM orders WHERE buyer_id = ? ORDER BY created_at DESC`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.Status, &o.Total, &o.TransactionID,
			&o.ShippingName, &o.ShippingAddress, &o.ShippingCity, &o.ShippingZip,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := m.itemsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (m *MySQLOrderRepository) itemsFor(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT product_id, name, unit_price, quantity
		FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (m *MySQLOrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

func (m *MySQLOrderRepository) Revenue(ctx context.Context) (float64, error) {
	var revenue float64
	if err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total), 0) FROM orders WHERE status != 'cancelled'`,
	).Scan(&revenue); err != nil {
		return 0, fmt.Errorf("sum revenue: %w", err)
	}
	return revenue, nil
}
