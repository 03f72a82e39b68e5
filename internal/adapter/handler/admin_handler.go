package handler

import (
	"net/http"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
)

type statsResponse struct {
	Users    int     `json:"users"`
	Products int     `json:"products"`
	Orders   int     `json:"orders"`
	Revenue  float64 `json:"revenue"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Users:    stats.Users,
		Products: stats.Products,
		Orders:   stats.Orders,
		Revenue:  stats.Revenue,
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req updateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.admin.UpdateUserRole(r.Context(), id, domain.Role(req.Role)); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "role updated"})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.admin.DeleteUser(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
