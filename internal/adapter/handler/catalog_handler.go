package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/handcrafted-haven/marketplace/internal/authctx"
	"github.com/handcrafted-haven/marketplace/internal/core/domain"
)

type productResponse struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	CategoryID  string    `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	ImageRef    string    `json:"image_ref"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		SellerID:    p.SellerID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageRef:    p.ImageRef,
		CreatedAt:   p.CreatedAt,
	}
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

type browseResponse struct {
	Products []productResponse `json:"products"`
	Total    int               `json:"total"`
}

// BrowseProducts parses the query state from URL parameters and runs both
// pipeline stages for this request.
func (h *Handler) BrowseProducts(w http.ResponseWriter, r *http.Request) {
	q := domain.DefaultBrowseQuery()
	params := r.URL.Query()

	q.SearchText = params.Get("search")
	if c := params.Get("category"); c != "" {
		q.Category = c
	}
	if s := params.Get("sort"); s != "" {
		q.Sort = domain.SortKey(s)
	}
	if raw := params.Get("price_min"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "must be a number", Field: "price_min"})
			return
		}
		q.Price.Min = v
	}
	if raw := params.Get("price_max"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "must be a number", Field: "price_max"})
			return
		}
		q.Price.Max = v
	}

	products, err := h.catalog.Browse(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, browseResponse{
		Products: toProductResponses(products),
		Total:    len(products),
	})
}

// parseID validates the uuid format of a route parameter before it reaches
// the database.
func parseID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	id := chi.URLParam(r, param)
	if _, err := uuid.Parse(id); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "must be a valid id", Field: param})
		return "", false
	}
	return id, true
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*product))
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	writeJSON(w, http.StatusOK, out)
}

type reviewResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	AuthorID  string    `json:"author_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	reviews, err := h.reviews.ListReviews(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]reviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, reviewResponse{
			ID:        rv.ID,
			ProductID: rv.ProductID,
			AuthorID:  rv.AuthorID,
			Rating:    rv.Rating,
			Comment:   rv.Comment,
			CreatedAt: rv.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type addReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	session, _ := authctx.SessionFromContext(r.Context())

	var req addReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.reviews.AddReview(r.Context(), session.UserID, id, req.Rating, req.Comment)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reviewResponse{
		ID:        review.ID,
		ProductID: review.ProductID,
		AuthorID:  review.AuthorID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	})
}
