package handler

import (
	"net/http"

	"github.com/AymanSha3ban/MUC-Library/internal/application/role"
	"github.com/AymanSha3ban/MUC-Library/internal/domain"
)

// RoleHandler exposes the role policy (admin-only).
type RoleHandler struct {
	svc role.Service
}

func NewRoleHandler(svc role.Service) *RoleHandler { return &RoleHandler{svc: svc} }

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RolesEnvelope{
		Roles:  []string{domain.RoleAdmin, domain.RoleStudent},
		Admins: h.svc.List(r.Context()),
	})
}
