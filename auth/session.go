package auth

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
	"downtime-tracker/repositories"
)

// SessionManager issues and resolves the cookie session shared by the HTTP
// middleware and the websocket upgrade path. Both paths funnel through
// ResolvePrincipal, so there is exactly one definition of "who this token
// belongs to" in the whole process.
type SessionManager struct {
	log      *slog.Logger
	sessions repositories.ISessionRepository
	users    repositories.IUserRepository
	ttl      time.Duration
}

func NewSessionManager(log *slog.Logger, sessions repositories.ISessionRepository,
	users repositories.IUserRepository, ttl time.Duration) *SessionManager {
	return &SessionManager{log: log, sessions: sessions, users: users, ttl: ttl}
}

// Issue creates a server-side session record for the user and returns the
// signed token to set as the session cookie.
func (m *SessionManager) Issue(user domain.User) (string, error) {
	sessionID := uuid.NewString()
	if err := m.sessions.Create(repositories.Session{
		ID:        sessionID,
		UserID:    user.ID,
		CreatedAt: time.Now(),
	}, m.ttl); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}

	token, err := GenerateToken(user.ID, user.Role, sessionID, m.ttl)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return token, nil
}

// ResolvePrincipal maps a raw session token to an authenticated principal.
//
// Failure modes, per class:
//   - unparseable/expired token, revoked session -> ErrNoSession
//   - session valid but account deleted -> ErrUserNotFound
//   - storage failure -> the underlying error, so callers answer with an
//     internal error instead of silently treating the user as anonymous
//
// The role comes from the stored user record at resolution time; for an
// already-open connection it is pinned once, at upgrade.
func (m *SessionManager) ResolvePrincipal(ctx context.Context, token string) (domain.Principal, error) {
	if err := ctx.Err(); err != nil {
		return domain.Principal{}, err
	}

	claims, err := ValidateToken(token)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", errors.ErrNoSession, err)
	}

	exists, err := m.sessions.Exists(claims.SessionID)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("session lookup: %w", err)
	}
	if !exists {
		return domain.Principal{}, errors.ErrNoSession
	}

	user, err := m.users.GetUser(claims.UserID)
	if err != nil {
		if goerrors.Is(err, badger.ErrKeyNotFound) || goerrors.Is(err, errors.ErrUserNotFound) {
			return domain.Principal{}, errors.ErrUserNotFound
		}
		return domain.Principal{}, fmt.Errorf("user lookup: %w", err)
	}

	return domain.Principal{UserID: user.ID, Role: user.Role}, nil
}

// Revoke deletes the server-side session record, invalidating the token for
// every future resolution. Already-open connections keep their principal.
func (m *SessionManager) Revoke(token string) error {
	claims, err := ValidateToken(token)
	if err != nil {
		// Nothing to revoke for a token we would never accept.
		return nil
	}
	return m.sessions.Delete(claims.SessionID)
}
