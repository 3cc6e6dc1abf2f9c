package api

import (
	goerrors "errors"
	"log/slog"
	"net/http"
	"time"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
	"downtime-tracker/services"
)

type AuthHandler struct {
	log        *slog.Logger
	auth       services.IAuthService
	cookieName string
	cookieTTL  time.Duration
	secure     bool
}

func NewAuthHandler(log *slog.Logger, auth services.IAuthService, cookieName string,
	cookieTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{log: log, auth: auth, cookieName: cookieName, cookieTTL: cookieTTL, secure: secure}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if goerrors.Is(err, errors.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.log.Error("Login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    string(token),
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.auth.Logout(cookie.Value); err != nil {
			h.log.Warn("Session revocation failed", "err", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId": principal.UserID,
		"role":   principal.Role,
	})
}

// Register creates an account. Only admins reach this handler; the router
// wraps it in RequireRole(admin).
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}

	user, err := h.auth.Register(req.Email, req.Name, role, req.Password)
	if err != nil {
		switch {
		case goerrors.Is(err, errors.ErrUserAlreadyExists):
			writeError(w, http.StatusConflict, "user already exists")
		case goerrors.Is(err, errors.ErrInvalidPassword), goerrors.Is(err, errors.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error("Registration failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
