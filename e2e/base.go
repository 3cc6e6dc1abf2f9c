package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"downtime-tracker/api"
	"downtime-tracker/auth"
	"downtime-tracker/domain"
	"downtime-tracker/realtime"
	"downtime-tracker/repositories"
	"downtime-tracker/services"
)

const (
	cookieName    = "floor_session"
	trustedOrigin = "http://e2e.floor.local"
	password      = "Str0ng!Pass42"
)

// BaseSuite boots the whole stack in-process: badger on a temp dir, the
// session layer, the room registry, and the HTTP surface behind an
// httptest server. The origin guard runs in production mode so the
// rejection path is exercised for real.
type BaseSuite struct {
	suite.Suite
	Config Config

	server   *httptest.Server
	db       *badger.DB
	users    repositories.IUserRepository
	machines repositories.IMachineRepository
	registry *realtime.Registry
}

func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

func (s *BaseSuite) SetupTest() {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	s.db = db

	s.users = repositories.NewUserRepository(db)
	s.machines = repositories.NewMachineRepository(db)
	sessions := repositories.NewSessionRepository(db)
	tickets := repositories.NewTicketRepository(db)
	batches := repositories.NewBatchRepository(db)

	manager := auth.NewSessionManager(log, sessions, s.users, time.Hour)
	s.registry = realtime.NewRegistry()
	router := realtime.NewRouter(log, s.registry)
	broadcaster := realtime.NewBroadcaster(log, s.registry)
	guard := realtime.NewOriginGuard(false, []string{trustedOrigin})
	wsHandler := realtime.NewHandler(log, guard, manager, s.registry, router, cookieName)

	authService := services.NewAuthService(s.users, manager)
	machineService := services.NewMachineService(s.machines, broadcaster)
	ticketService := services.NewTicketService(tickets, s.machines, s.users, broadcaster)
	batchService := services.NewBatchService(batches, s.machines, broadcaster)

	s.server = httptest.NewServer(api.NewRouter(api.Deps{
		Log:        log,
		Auth:       api.NewAuthHandler(log, authService, cookieName, time.Hour, false),
		Machines:   api.NewMachineHandler(log, machineService),
		Tickets:    api.NewTicketHandler(log, ticketService),
		Batches:    api.NewBatchHandler(log, batchService),
		Users:      api.NewUserHandler(log, s.users),
		Realtime:   wsHandler,
		Resolver:   manager,
		CookieName: cookieName,
	}))
}

func (s *BaseSuite) TearDownTest() {
	s.server.Close()
	s.Require().NoError(s.db.Close())
}

// Banner prints a colorized section header in the test log.
func (s *BaseSuite) Banner(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// SeedUser writes a user straight into the store with the shared test
// password and returns it.
func (s *BaseSuite) SeedUser(email, name string, role domain.Role) domain.User {
	hash, err := auth.HashPassword(password)
	s.Require().NoError(err)
	user, err := s.users.CreateUser(email, name, role, hash)
	s.Require().NoError(err)
	return user
}

func (s *BaseSuite) SeedMachine(name string) domain.Machine {
	machine, err := s.machines.CreateMachine(name)
	s.Require().NoError(err)
	return machine
}

// Login authenticates through the real endpoint and returns the session
// cookie value.
func (s *BaseSuite) Login(email string) string {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	s.Require().NoError(err)

	resp, err := http.Post(s.server.URL+"/api/login", "application/json", bytes.NewReader(body))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == cookieName {
			return cookie.Value
		}
	}
	s.Require().FailNow("login response did not set the session cookie")
	return ""
}

func (s *BaseSuite) wsURL() string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
}

// Dial opens a websocket with the given session cookie from the trusted
// origin and consumes the connected frame.
func (s *BaseSuite) Dial(session string) *websocket.Conn {
	conn, frame := s.dialRaw(session, trustedOrigin)
	s.Require().Equal("connected", frame["type"])
	return conn
}

// DialExpectingRejection attempts an upgrade that must fail with the given
// HTTP status.
func (s *BaseSuite) DialExpectingRejection(session, origin string, wantStatus int) {
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	if session != "" {
		header.Set("Cookie", cookieName+"="+session)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(s.wsURL(), header) //nolint:bodyclose
	s.Require().Error(err)
	s.Require().Nil(conn)
	s.Require().NotNil(resp)
	defer resp.Body.Close()
	s.Require().Equal(wantStatus, resp.StatusCode)
}

func (s *BaseSuite) dialRaw(session, origin string) (*websocket.Conn, map[string]any) {
	header := http.Header{}
	header.Set("Origin", origin)
	header.Set("Cookie", cookieName+"="+session)

	conn, resp, err := websocket.DefaultDialer.Dial(s.wsURL(), header)
	s.Require().NoError(err)
	if resp != nil {
		resp.Body.Close()
	}
	s.T().Cleanup(func() { _ = conn.Close() })

	return conn, s.ReadFrame(conn)
}

// ReadFrame blocks for one frame and decodes it.
func (s *BaseSuite) ReadFrame(conn *websocket.Conn) map[string]any {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(s.Config.ReadTimeout)))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)

	var frame map[string]any
	s.Require().NoError(json.Unmarshal(data, &frame))
	return frame
}

// ExpectSilence asserts that no frame arrives within the quiet window.
func (s *BaseSuite) ExpectSilence(conn *websocket.Conn) {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(s.Config.QuietWindow)))
	_, _, err := conn.ReadMessage()
	s.Require().Error(err)
	netErr, ok := err.(interface{ Timeout() bool })
	s.Require().True(ok && netErr.Timeout(), "expected a read timeout, got: %v", err)
}

// Send writes one JSON frame to the server.
func (s *BaseSuite) Send(conn *websocket.Conn, frame map[string]any) {
	s.Require().NoError(conn.WriteJSON(frame))
}

// Post fires an authenticated JSON request against the API and asserts on
// the status code.
func (s *BaseSuite) Post(session, path string, body map[string]any, wantStatus int) {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req, err := http.NewRequest(http.MethodPost, s.server.URL+path, bytes.NewReader(payload))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: cookieName, Value: session})

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(wantStatus, resp.StatusCode)
}
