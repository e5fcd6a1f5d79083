package transport

import (
	"net/http"

	"toy-catalog/internal/domain"
	"toy-catalog/internal/middleware"
	"toy-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const minPasswordLength = 8

// CreateUserRequest represents the user creation payload
type CreateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role,omitempty"`
}

// RoleRequest represents the role-only update payload
type RoleRequest struct {
	Role domain.Role `json:"role"`
}

func createUserRules() []middleware.Rule {
	return []middleware.Rule{
		middleware.RequiredString("name"),
		middleware.Email("email", true),
		middleware.MinLength("password", minPasswordLength),
		middleware.OneOf("role", domain.Roles, false),
	}
}

func updateUserRules() []middleware.Rule {
	return []middleware.Rule{
		middleware.OptionalString("name"),
		middleware.Email("email", false),
		middleware.OptionalMinLength("password", minPasswordLength),
		middleware.OneOf("role", domain.Roles, false),
	}
}

func roleRules() []middleware.Rule {
	return []middleware.Rule{middleware.OneOf("role", domain.Roles, true)}
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Patch("/role", h.UpdateRole)
		})
	})
}

// Create handles user creation
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := middleware.DecodeAndCheck(r, &req, createUserRules()...); err != nil {
		h.logger.Debug("User validation failed", zap.Error(err))
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	user, err := h.userService.Create(r.Context(), &domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("User created", zap.String("user_id", user.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	users, err := h.userService.FindAll(r.Context(), page, limit)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// Update handles partial user updates
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.UserPatch
	if err := middleware.DecodeAndCheck(r, &patch, updateUserRules()...); err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	user, err := h.userService.Update(r.Context(), chi.URLParam(r, "id"), &patch)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, user)
}

// UpdateRole handles PATCH /users/{id}/role
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if err := middleware.DecodeAndCheck(r, &req, roleRules()...); err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	user, err := h.userService.UpdateRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("User role updated", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	middleware.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.userService.Delete(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("User deleted", zap.String("user_id", id))
	w.WriteHeader(http.StatusNoContent)
}
