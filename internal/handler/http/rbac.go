package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shelfable/bookstore/internal/domain"
	"github.com/shelfable/bookstore/internal/repository"
	"github.com/shelfable/bookstore/pkg/validator"
)

// RoleHandler handles HTTP requests for role management. Roles are simple
// enough that the handler talks to the repository directly.
type RoleHandler struct {
	roles  repository.RoleRepository
	logger *slog.Logger
}

// NewRoleHandler creates a new role HTTP handler.
func NewRoleHandler(roles repository.RoleRepository, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{roles: roles, logger: logger}
}

// --- Request DTOs ---

// CreateRoleRequest is the JSON request body for creating a role.
type CreateRoleRequest struct {
	Name          string   `json:"name" validate:"required,min=1,max=100"`
	Description   string   `json:"description" validate:"omitempty,max=500"`
	PermissionIDs []string `json:"permission_ids"`
}

// UpdateRoleRequest is the JSON request body for updating a role.
type UpdateRoleRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// SetRolePermissionsRequest is the JSON request body for replacing a role's
// permission attachments.
type SetRolePermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids" validate:"required"`
}

// --- Handlers ---

// List handles GET /api/v1/roles
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: roles})
}

// Get handles GET /api/v1/roles/{id}
func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	role, err := h.roles.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: role})
}

// GetPermissions handles GET /api/v1/roles/{id}/permissions
func (h *RoleHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	role, err := h.roles.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: role.Permissions})
}

// Create handles POST /api/v1/roles
func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	now := time.Now().UTC()
	role := &domain.Role{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.roles.Create(r.Context(), role, req.PermissionIDs); err != nil {
		writeAppError(w, r, err)
		return
	}

	created, err := h.roles.GetByID(r.Context(), role.ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "role created",
		slog.String("role_id", role.ID),
		slog.String("name", role.Name),
	)

	writeJSON(w, http.StatusCreated, response{Data: created})
}

// Update handles PUT /api/v1/roles/{id}
func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	role, err := h.roles.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	if req.Name != nil {
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}

	if err := h.roles.Update(r.Context(), role); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: role})
}

// SetPermissions handles PUT /api/v1/roles/{id}/permissions
//
// Users holding the role see the new permission set on their next token
// refresh; already issued access tokens keep their snapshot until expiry.
func (h *RoleHandler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	var req SetRolePermissionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	roleID := chi.URLParam(r, "id")
	if err := h.roles.SetPermissions(r.Context(), roleID, req.PermissionIDs); err != nil {
		writeAppError(w, r, err)
		return
	}

	role, err := h.roles.GetByID(r.Context(), roleID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "role permissions updated",
		slog.String("role_id", roleID),
		slog.Int("permission_count", len(req.PermissionIDs)),
	)

	writeJSON(w, http.StatusOK, response{Data: role})
}

// Delete handles DELETE /api/v1/roles/{id}
func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.roles.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id, "status": "deleted"}})
}

// PermissionHandler handles HTTP requests for permission management.
type PermissionHandler struct {
	permissions repository.PermissionRepository
	logger      *slog.Logger
}

// NewPermissionHandler creates a new permission HTTP handler.
func NewPermissionHandler(permissions repository.PermissionRepository, logger *slog.Logger) *PermissionHandler {
	return &PermissionHandler{permissions: permissions, logger: logger}
}

// CreatePermissionRequest is the JSON request body for creating a permission.
type CreatePermissionRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// UpdatePermissionRequest is the JSON request body for updating a permission.
type UpdatePermissionRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// List handles GET /api/v1/permissions
func (h *PermissionHandler) List(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.permissions.List(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: permissions})
}

// Get handles GET /api/v1/permissions/{id}
func (h *PermissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	permission, err := h.permissions.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: permission})
}

// Create handles POST /api/v1/permissions
func (h *PermissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePermissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	now := time.Now().UTC()
	permission := &domain.Permission{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.permissions.Create(r.Context(), permission); err != nil {
		writeAppError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "permission created",
		slog.String("permission_id", permission.ID),
		slog.String("name", permission.Name),
	)

	writeJSON(w, http.StatusCreated, response{Data: permission})
}

// Update handles PUT /api/v1/permissions/{id}
func (h *PermissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePermissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	permission, err := h.permissions.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	if req.Name != nil {
		permission.Name = *req.Name
	}
	if req.Description != nil {
		permission.Description = *req.Description
	}

	if err := h.permissions.Update(r.Context(), permission); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: permission})
}

// Delete handles DELETE /api/v1/permissions/{id}
func (h *PermissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.permissions.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"id": id, "status": "deleted"}})
}
