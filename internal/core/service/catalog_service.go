package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

// CatalogService covers public browsing plus the seller dashboard CRUD.
// Sellers may only touch their own products; admins bypass the ownership
// scope (the elevated tier of the original platform).
type CatalogService struct {
	products    port.ProductRepository
	categories  port.CategoryRepository
	stock       port.StockReserver
	logger      *zap.Logger
	browseLimit int
}

func NewCatalogService(products port.ProductRepository, categories port.CategoryRepository, stock port.StockReserver, logger *zap.Logger, browseLimit int) *CatalogService {
	return &CatalogService{
		products:    products,
		categories:  categories,
		stock:       stock,
		logger:      logger,
		browseLimit: browseLimit,
	}
}

// Browse runs both pipeline stages for a stateless request: repository
// prefetch constrained by search and category, then in-memory refinement.
func (s *CatalogService) Browse(ctx context.Context, q domain.BrowseQuery) ([]domain.Product, error) {
	filter := port.BrowseFilter{Search: q.SearchText, Limit: s.browseLimit}
	if q.Category != "" && q.Category != domain.CategoryAll {
		filter.CategoryID = q.Category
	}

	candidates, err := s.products.Browse(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("browse products: %w", err)
	}
	return Refine(candidates, q), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *CatalogService) ListSellerProducts(ctx context.Context, sellerID string) ([]domain.Product, error) {
	return s.products.ListBySeller(ctx, sellerID)
}

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	CategoryID  string
	ImageRef    string
}

func (s *CatalogService) validateProduct(ctx context.Context, input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if input.Price <= 0 {
		return &ValidationError{Field: "price", Message: "must be positive"}
	}
	if input.Stock < 0 {
		return &ValidationError{Field: "stock", Message: "must not be negative"}
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return &ValidationError{Field: "category_id", Message: "unknown category"}
		}
		return fmt.Errorf("check category: %w", err)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, sellerID string, input ProductInput) (*domain.Product, error) {
	if err := s.validateProduct(ctx, input); err != nil {
		return nil, err
	}

	now := time.Now()
	p := domain.Product{
		ID:          uuid.NewString(),
		SellerID:    sellerID,
		CategoryID:  input.CategoryID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageRef:    input.ImageRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.stock.SetStock(ctx, p.ID, p.Stock); err != nil {
		s.logger.Warn("stock counter seed failed",
			zap.String("product_id", p.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("product created",
		zap.String("product_id", p.ID),
		zap.String("seller_id", sellerID),
	)
	return &p, nil
}

// UpdateProduct rewrites a product after an ownership check against the
// acting session.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor port.Session, id string, input ProductInput) (*domain.Product, error) {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != domain.RoleAdmin && existing.SellerID != actor.UserID {
		return nil, ErrForbidden
	}
	if err := s.validateProduct(ctx, input); err != nil {
		return nil, err
	}

	existing.CategoryID = input.CategoryID
	existing.Name = strings.TrimSpace(input.Name)
	existing.Description = input.Description
	existing.Price = input.Price
	existing.Stock = input.Stock
	existing.ImageRef = input.ImageRef

	if err := s.products.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.stock.SetStock(ctx, existing.ID, existing.Stock); err != nil {
		s.logger.Warn("stock counter sync failed",
			zap.String("product_id", existing.ID),
			zap.Error(err),
		)
	}
	return existing, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actor port.Session, id string) error {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role != domain.RoleAdmin && existing.SellerID != actor.UserID {
		return ErrForbidden
	}
	return s.products.Delete(ctx, id)
}
