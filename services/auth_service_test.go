package services

import (
	"context"
	goerrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"downtime-tracker/auth"
	"downtime-tracker/domain"
	"downtime-tracker/errors"
	"downtime-tracker/repositories"
)

func newAuthService(t *testing.T) (IAuthService, *auth.SessionManager) {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := repositories.NewUserRepository(db)
	sessions := repositories.NewSessionRepository(db)
	manager := auth.NewSessionManager(logs.GetLoggerFromLevel(slog.LevelDebug), sessions, users, time.Hour)
	return NewAuthService(users, manager), manager
}

func TestAuthService_Register_Then_Login(t *testing.T) {
	req := require.New(t)

	service, manager := newAuthService(t)

	// Given a registered operator
	user, err := service.Register("operator@floor.example.com", "Operator Seven", domain.RoleOperator, "Str0ng!Pass42")
	req.NoError(err)
	req.Equal(domain.RoleOperator, user.Role)

	// When they log in with the right password
	token, loggedIn, err := service.Login("operator@floor.example.com", "Str0ng!Pass42")

	// Then the session token resolves back to them
	req.NoError(err)
	req.Equal(user.ID, loggedIn.ID)
	principal, err := manager.ResolvePrincipal(context.Background(), string(token))
	req.NoError(err)
	req.Equal(domain.Principal{UserID: user.ID, Role: domain.RoleOperator}, principal)
}

func TestAuthService_Login_Failures_Are_Indistinguishable(t *testing.T) {
	req := require.New(t)

	service, _ := newAuthService(t)
	_, err := service.Register("operator@floor.example.com", "Operator Seven", domain.RoleOperator, "Str0ng!Pass42")
	req.NoError(err)

	// Wrong password and unknown account must fail identically, so a
	// caller cannot probe which emails exist
	_, _, err = service.Login("operator@floor.example.com", "Wr0ng!Pass4242")
	req.True(goerrors.Is(err, errors.ErrInvalidCredentials))

	_, _, err = service.Login("ghost@floor.example.com", "Str0ng!Pass42")
	req.True(goerrors.Is(err, errors.ErrInvalidCredentials))
}

func TestAuthService_Logout_Revokes_The_Session(t *testing.T) {
	req := require.New(t)

	service, manager := newAuthService(t)
	_, err := service.Register("operator@floor.example.com", "Operator Seven", domain.RoleOperator, "Str0ng!Pass42")
	req.NoError(err)
	token, _, err := service.Login("operator@floor.example.com", "Str0ng!Pass42")
	req.NoError(err)

	req.NoError(service.Logout(string(token)))

	_, err = manager.ResolvePrincipal(context.Background(), string(token))
	req.True(goerrors.Is(err, errors.ErrNoSession))
}

func TestAuthService_Register_Rejects_Weak_Password(t *testing.T) {
	req := require.New(t)

	service, _ := newAuthService(t)

	_, err := service.Register("operator@floor.example.com", "Operator Seven", domain.RoleOperator, "weakpassword")

	req.True(goerrors.Is(err, errors.ErrInvalidPassword))
}

func TestAuthService_Register_Classifies_Shape_Errors_Separately(t *testing.T) {
	req := require.New(t)

	service, _ := newAuthService(t)

	// A malformed email is a request problem, not a password problem
	_, err := service.Register("not-an-email", "Operator Seven", domain.RoleOperator, "Str0ng!Pass42")
	req.True(goerrors.Is(err, errors.ErrInvalidRequest))
	req.False(goerrors.Is(err, errors.ErrInvalidPassword))

	// A too-short name likewise
	_, err = service.Register("operator@floor.example.com", "O", domain.RoleOperator, "Str0ng!Pass42")
	req.True(goerrors.Is(err, errors.ErrInvalidRequest))
	req.False(goerrors.Is(err, errors.ErrInvalidPassword))
}

func TestAuthService_Register_Rejects_Unknown_Role(t *testing.T) {
	req := require.New(t)

	service, _ := newAuthService(t)

	_, err := service.Register("operator@floor.example.com", "Operator Seven", domain.Role("janitor"), "Str0ng!Pass42")

	req.True(goerrors.Is(err, errors.ErrUnknownRole))
}

func TestAuthService_Register_Rejects_Duplicate_Email(t *testing.T) {
	req := require.New(t)

	service, _ := newAuthService(t)
	_, err := service.Register("operator@floor.example.com", "Operator Seven", domain.RoleOperator, "Str0ng!Pass42")
	req.NoError(err)

	_, err = service.Register("operator@floor.example.com", "Imposter", domain.RoleAdmin, "Str0ng!Pass42")

	req.True(goerrors.Is(err, errors.ErrUserAlreadyExists))
}
