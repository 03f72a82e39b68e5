package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

type PlatformStats struct {
	Users    int
	Products int
	Orders   int
	Revenue  float64
}

// AdminService is the elevated tier: its queries are unscoped by ownership.
type AdminService struct {
	users    port.UserRepository
	products port.ProductRepository
	orders   port.OrderRepository
	logger   *zap.Logger
}

func NewAdminService(users port.UserRepository, products port.ProductRepository, orders port.OrderRepository, logger *zap.Logger) *AdminService {
	return &AdminService{
		users:    users,
		products: products,
		orders:   orders,
		logger:   logger,
	}
}

func (s *AdminService) Stats(ctx context.Context) (*PlatformStats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	orders, err := s.orders.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	revenue, err := s.orders.Revenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}

	return &PlatformStats{
		Users:    users,
		Products: products,
		Orders:   orders,
		Revenue:  revenue,
	}, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *AdminService) UpdateUserRole(ctx context.Context, userID string, role domain.Role) error {
	if !domain.ValidRole(role) {
		return &ValidationError{Field: "role", Message: "must be buyer, seller or admin"}
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return err
	}

	s.logger.Info("user role updated",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
	)
	return nil
}

func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	return s.users.Delete(ctx, userID)
}
