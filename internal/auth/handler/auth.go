package handler

import (
	"barberbook/internal/auth/service"
	"barberbook/pkg/auth"
	httputil "barberbook/pkg/http"
	"barberbook/pkg/logger"
	"barberbook/pkg/middleware"
	"barberbook/pkg/model"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type AuthHandler struct {
	service service.AuthService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewAuthHandler(service service.AuthService, authenticator *middleware.Authenticator, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		auth:    authenticator,
		log:     log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteCreated(w, resp); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, err := h.service.GetProfile(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.writeError(w, "GetProfile", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "GetProfile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var update model.ProfileUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), auth.FromContext(r.Context()), &update)
	if err != nil {
		h.writeError(w, "UpdateProfile", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateProfile", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var change model.PasswordChange
	if err := httputil.DecodeJSON(r, &change); err != nil {
		h.writeError(w, "ChangePassword", err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), auth.FromContext(r.Context()), &change); err != nil {
		h.writeError(w, "ChangePassword", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, "ListUsers", err)
		return
	}

	if err := httputil.WriteSuccess(w, users); err != nil {
		h.log.Error("failed to write success response", "handler", "ListUsers", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) SetRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.RoleUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "SetRole", err)
		return
	}

	user, err := h.service.SetRole(r.Context(), auth.FromContext(r.Context()), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "SetRole", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "SetRole", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", h.Register)
	router.POST("/api/auth/login", h.Login)
	router.GET("/api/auth/profile", h.auth.Authenticate(h.GetProfile))
	router.PUT("/api/auth/profile", h.auth.Authenticate(h.UpdateProfile))
	router.PUT("/api/auth/change-password", h.auth.Authenticate(h.ChangePassword))
	router.GET("/api/auth/users", h.auth.RequireRole(h.ListUsers, model.RoleAdmin))
	router.PUT("/api/auth/users/:id/role", h.auth.RequireRole(h.SetRole, model.RoleAdmin))
}
