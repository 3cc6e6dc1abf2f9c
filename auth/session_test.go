package auth

import (
	"context"
	goerrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
	"downtime-tracker/repositories"
)

func newTestManager(t *testing.T) (*SessionManager, repositories.IUserRepository) {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := repositories.NewUserRepository(db)
	sessions := repositories.NewSessionRepository(db)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewSessionManager(log, sessions, users, time.Hour), users
}

func TestSessionManager_Issue_Then_Resolve(t *testing.T) {
	req := require.New(t)

	// Given a stored user with a fresh session
	manager, users := newTestManager(t)
	user, err := users.CreateUser("operator@floor.example.com", "Operator Seven", domain.RoleOperator, "hash")
	req.NoError(err)

	token, err := manager.Issue(user)
	req.NoError(err)

	// When the token is resolved
	principal, err := manager.ResolvePrincipal(context.Background(), token)

	// Then we get back the authenticated principal
	req.NoError(err)
	req.Equal(domain.Principal{UserID: user.ID, Role: domain.RoleOperator}, principal)
}

func TestSessionManager_Garbage_Token_Is_No_Session(t *testing.T) {
	req := require.New(t)

	manager, _ := newTestManager(t)

	_, err := manager.ResolvePrincipal(context.Background(), "not.a.token")

	req.True(goerrors.Is(err, errors.ErrNoSession))
}

func TestSessionManager_Revoked_Session_Is_No_Session(t *testing.T) {
	req := require.New(t)

	// Given an issued session that the user then logs out of
	manager, users := newTestManager(t)
	user, err := users.CreateUser("operator@floor.example.com", "Operator Seven", domain.RoleOperator, "hash")
	req.NoError(err)
	token, err := manager.Issue(user)
	req.NoError(err)

	req.NoError(manager.Revoke(token))

	// Then the very same token stops resolving
	_, err = manager.ResolvePrincipal(context.Background(), token)
	req.True(goerrors.Is(err, errors.ErrNoSession))
}

func TestSessionManager_Deleted_User_Is_User_Not_Found(t *testing.T) {
	req := require.New(t)

	// Given a session whose user record never made it to the store:
	// the signed token is valid, the session record exists, but the
	// account behind it does not
	manager, _ := newTestManager(t)
	phantom := domain.User{ID: 999, Role: domain.RoleOperator}
	token, err := manager.Issue(phantom)
	req.NoError(err)

	_, err = manager.ResolvePrincipal(context.Background(), token)

	req.True(goerrors.Is(err, errors.ErrUserNotFound))
}

func TestSessionManager_Cancelled_Context_Short_Circuits(t *testing.T) {
	req := require.New(t)

	manager, users := newTestManager(t)
	user, err := users.CreateUser("operator@floor.example.com", "Operator Seven", domain.RoleOperator, "hash")
	req.NoError(err)
	token, err := manager.Issue(user)
	req.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = manager.ResolvePrincipal(ctx, token)
	req.True(goerrors.Is(err, context.Canceled))
}

func TestSessionManager_Revoke_Unparseable_Token_Is_A_NoOp(t *testing.T) {
	req := require.New(t)

	manager, _ := newTestManager(t)

	req.NoError(manager.Revoke("garbage"))
}
