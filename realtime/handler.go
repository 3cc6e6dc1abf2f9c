package realtime

import (
	"context"
	goerrors "errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
)

// Authenticator resolves the session token carried by the upgrade request's
// cookie into a principal. The HTTP layer uses the same resolver, so a
// user's real-time identity can never drift from their HTTP identity.
type Authenticator interface {
	ResolvePrincipal(ctx context.Context, token string) (domain.Principal, error)
}

// Handler accepts websocket upgrades on a single fixed path. The mux owns
// path dispatch; anything mounted elsewhere never reaches the upgrader.
type Handler struct {
	log        *slog.Logger
	guard      OriginGuard
	auth       Authenticator
	registry   *Registry
	router     *Router
	cookieName string
	upgrader   websocket.Upgrader
}

func NewHandler(log *slog.Logger, guard OriginGuard, auth Authenticator,
	registry *Registry, router *Router, cookieName string) *Handler {
	return &Handler{
		log:        log,
		guard:      guard,
		auth:       auth,
		registry:   registry,
		router:     router,
		cookieName: cookieName,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is validated before the handshake so the guard can
			// answer with an explicit 403 instead of gorilla's default.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Header.Get("Referer")
	}
	if !h.guard.Allow(origin) {
		h.log.Info("Rejected connection from unauthorized origin", "origin", origin)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	principal, err := h.authenticate(r)
	if err != nil {
		if goerrors.Is(err, errors.ErrNoSession) || goerrors.Is(err, errors.ErrUserNotFound) {
			h.log.Info("Unauthenticated connection attempt rejected")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		h.log.Error("Authentication lookup failed", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake failure to the client.
		h.log.Debug("Upgrade failed", "err", err)
		return
	}

	h.log.Info("Authenticated connection", "userId", principal.UserID, "role", principal.Role)

	client := newClient(principal, ws, h.log, func(c *Client) {
		h.registry.Deregister(c)
		h.log.Info("Client disconnected", "userId", c.principal.UserID, "connectionId", c.id)
	})
	h.registry.Register(client)
	client.start(h.router.Handle)
}

// authenticate extracts the session cookie and resolves it. Resolution uses
// the request context: a client that vanishes mid-handshake cancels the
// lookup instead of completing registration on a dead socket.
func (h *Handler) authenticate(r *http.Request) (domain.Principal, error) {
	cookie, err := r.Cookie(h.cookieName)
	if err != nil {
		return domain.Principal{}, errors.ErrNoSession
	}
	return h.auth.ResolvePrincipal(r.Context(), cookie.Value)
}
