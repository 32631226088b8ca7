package handler

import (
	"net/http"

	"autolot/internal/middleware"
	"autolot/internal/service"
	"autolot/internal/session"
	"autolot/pkg/logger"
)

// AuthHandler serves registration, login and logout
type AuthHandler struct {
	authService service.AuthServiceInterface
	sessions    *session.Manager
	logger      *logger.Logger
}

func NewAuthHandler(authService service.AuthServiceInterface, sessions *session.Manager, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		logger:      logger.WithComponent("auth_handler"),
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req service.RegisterRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for register", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	user, err := h.authService.Register(req)
	if err != nil {
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	if err := h.sessions.SignIn(w, r, user.Identity()); err != nil {
		h.logger.Error("Failed to start session after registration", "user_id", user.ID, "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "internal server error")
		reqCtx.StatusCode = http.StatusInternalServerError
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusCreated, user)
	reqCtx.StatusCode = http.StatusCreated
	h.logger.LogResponse(reqCtx)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req service.LoginRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for login", "error", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	user, err := h.authService.Login(req)
	if err != nil {
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	if err := h.sessions.SignIn(w, r, user.Identity()); err != nil {
		h.logger.Error("Failed to start session", "user_id", user.ID, "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "internal server error")
		reqCtx.StatusCode = http.StatusInternalServerError
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, user)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	if err := h.sessions.SignOut(w, r); err != nil {
		h.logger.Error("Failed to end session", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, "internal server error")
		reqCtx.StatusCode = http.StatusInternalServerError
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	ident := middleware.IdentityFrom(r.Context())
	if ident == nil {
		writeErrorResponse(w, http.StatusUnauthorized, "authentication required")
		reqCtx.StatusCode = http.StatusUnauthorized
		h.logger.LogResponse(reqCtx)
		return
	}

	user, err := h.authService.GetUser(ident.UserID)
	if err != nil {
		h.logger.Warn("Failed to load current user", "user_id", ident.UserID, "error", err)
		reqCtx.StatusCode = writeServiceError(w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(w, http.StatusOK, user)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
