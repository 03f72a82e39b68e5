package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
)

// NewRouter wires the full HTTP API surface.
func NewRouter(h *Handler) chi.Router {
	router := chi.NewRouter()

	router.Get("/health", h.HealthCheck)

	router.Route("/api", func(r chi.Router) {
		// Public surface.
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Get("/products", h.BrowseProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/products/{id}/reviews", h.ListReviews)
		r.Get("/categories", h.ListCategories)

		// Anything touching a cart, order, or profile needs a session.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)
			r.Post("/auth/logout", h.Logout)
			r.Get("/cart", h.GetCart)
			r.Post("/cart", h.AddToCart)
			r.Put("/cart/{productID}", h.UpdateCartItem)
			r.Delete("/cart/{productID}", h.RemoveCartItem)
			r.Delete("/cart", h.ClearCart)
			r.Post("/checkout", h.Checkout)
			r.Get("/orders", h.ListOrders)
			r.Get("/orders/{id}", h.GetOrder)
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
			r.Put("/profile/password", h.ChangePassword)
			r.Post("/products/{id}/reviews", h.AddReview)
		})

		r.Route("/seller", func(r chi.Router) {
			r.Use(h.RequireSession, h.RequireRole(domain.RoleSeller, domain.RoleAdmin))
			r.Get("/products", h.ListSellerProducts)
			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireSession, h.RequireRole(domain.RoleAdmin))
			r.Get("/stats", h.GetStats)
			r.Get("/users", h.ListUsers)
			r.Put("/users/{id}/role", h.UpdateUserRole)
			r.Delete("/users/{id}", h.DeleteUser)
		})
	})

	return router
}
