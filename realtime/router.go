package realtime

import (
	goerrors "errors"
	"log/slog"
)

// Router demultiplexes inbound frames by their type discriminator and applies
// room membership changes. A connection is never torn down for sending an
// unrecognized or malformed message; it just gets an error reply. Only
// transport-level errors (handled by the read pump) terminate a connection.
type Router struct {
	log      *slog.Logger
	registry *Registry
}

func NewRouter(log *slog.Logger, registry *Registry) *Router {
	return &Router{log: log, registry: registry}
}

func (r *Router) Handle(c Conn, data []byte) {
	msg, err := ParseInbound(data)
	if err != nil {
		var unknown *UnknownTypeError
		if goerrors.As(err, &unknown) {
			c.Deliver(errorFrame(unknown.Error()))
			return
		}
		c.Deliver(errorFrame(ErrMalformedMessage.Error()))
		return
	}

	switch m := msg.(type) {
	case JoinMachine:
		r.registry.Join(c, m.MachineID)
		r.log.Debug("Joined machine room", "userId", c.Principal().UserID, "machineId", m.MachineID)
		c.Deliver(joinedMachineFrame(m.MachineID))
	case LeaveMachine:
		r.registry.Leave(c, m.MachineID)
		r.log.Debug("Left machine room", "userId", c.Principal().UserID, "machineId", m.MachineID)
	}
}
