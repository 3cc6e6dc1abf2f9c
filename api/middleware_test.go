package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
)

var testLogger = logs.GetLoggerFromLevel(slog.LevelDebug)

// fakeResolver resolves a fixed token to a fixed principal.
type fakeResolver struct {
	token     string
	principal domain.Principal
	err       error
}

func (f *fakeResolver) ResolvePrincipal(_ context.Context, token string) (domain.Principal, error) {
	if f.err != nil {
		return domain.Principal{}, f.err
	}
	if token != f.token {
		return domain.Principal{}, errors.ErrNoSession
	}
	return f.principal, nil
}

func okHandler(captured *domain.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := PrincipalFrom(r.Context()); ok {
			*captured = p
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_Valid_Cookie_Injects_The_Principal(t *testing.T) {
	req := require.New(t)

	resolver := &fakeResolver{token: "tok", principal: domain.Principal{UserID: 7, Role: domain.RoleOperator}}
	var seen domain.Principal
	handler := RequireAuth(testLogger, resolver, "session")(okHandler(&seen))

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "tok"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)
	req.Equal(domain.Principal{UserID: 7, Role: domain.RoleOperator}, seen)
}

func TestRequireAuth_Missing_Cookie_Is_401(t *testing.T) {
	req := require.New(t)

	resolver := &fakeResolver{token: "tok"}
	handler := RequireAuth(testLogger, resolver, "session")(okHandler(&domain.Principal{}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	req.Equal(http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_Stale_Cookie_Is_401(t *testing.T) {
	req := require.New(t)

	resolver := &fakeResolver{token: "tok"}
	handler := RequireAuth(testLogger, resolver, "session")(okHandler(&domain.Principal{}))

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "revoked"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	req.Equal(http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_Resolver_Failure_Is_500(t *testing.T) {
	req := require.New(t)

	// A storage failure must not be mistaken for a missing session
	resolver := &fakeResolver{err: fmt.Errorf("badger: disk gone")}
	handler := RequireAuth(testLogger, resolver, "session")(okHandler(&domain.Principal{}))

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "tok"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	req.Equal(http.StatusInternalServerError, w.Code)
}

func TestRequireRole_Allows_Listed_Roles_Only(t *testing.T) {
	req := require.New(t)

	resolver := &fakeResolver{token: "tok", principal: domain.Principal{UserID: 7, Role: domain.RoleOperator}}
	gated := RequireAuth(testLogger, resolver, "session")(
		RequireRole(domain.RoleSupervisor, domain.RoleAdmin)(okHandler(&domain.Principal{})))

	// An operator hits the supervisor-only endpoint
	r := httptest.NewRequest(http.MethodPatch, "/api/machines/1/status", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "tok"})
	w := httptest.NewRecorder()
	gated.ServeHTTP(w, r)

	req.Equal(http.StatusForbidden, w.Code)

	// A supervisor passes
	resolver.principal = domain.Principal{UserID: 3, Role: domain.RoleSupervisor}
	r = httptest.NewRequest(http.MethodPatch, "/api/machines/1/status", nil)
	r.AddCookie(&http.Cookie{Name: "session", Value: "tok"})
	w = httptest.NewRecorder()
	gated.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)
}

func TestRequireRole_Without_Auth_Context_Is_401(t *testing.T) {
	req := require.New(t)

	handler := RequireRole(domain.RoleAdmin)(okHandler(&domain.Principal{}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/register", nil))

	req.Equal(http.StatusUnauthorized, w.Code)
}
