package realtime

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"

	"downtime-tracker/domain"
)

var testLogger = logs.GetLoggerFromLevel(slog.LevelDebug)

// fakeConn records everything delivered to it so tests can assert on
// routing decisions without a real websocket.
type fakeConn struct {
	id         uuid.UUID
	principal  domain.Principal
	open       bool
	alive      bool
	probes     int
	probeErr   error
	terminated bool
	frames     [][]byte

	// When set, Terminate deregisters the connection the way a real
	// client's close path does.
	registry *Registry
}

func newFakeConn(userID int, role domain.Role) *fakeConn {
	return &fakeConn{
		id:        uuid.New(),
		principal: domain.Principal{UserID: userID, Role: role},
		open:      true,
		alive:     true,
	}
}

func (f *fakeConn) ID() uuid.UUID               { return f.id }
func (f *fakeConn) Principal() domain.Principal { return f.principal }

func (f *fakeConn) Deliver(frame []byte) bool {
	if !f.open {
		return false
	}
	f.frames = append(f.frames, frame)
	return true
}

func (f *fakeConn) ConfirmedAlive() bool { return f.alive }

func (f *fakeConn) Probe() error {
	f.alive = false
	f.probes++
	return f.probeErr
}

func (f *fakeConn) Terminate() {
	f.terminated = true
	f.open = false
	if f.registry != nil {
		f.registry.Deregister(f)
	}
}
