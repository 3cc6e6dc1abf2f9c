package realtime

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"downtime-tracker/domain/event"
)

// Broadcaster is the façade the request-handling layer calls after a state
// mutation commits. Calls are fire-and-forget: delivery to each currently
// open target connection is attempted synchronously, with no queueing and no
// retry. A connection that is down at broadcast time simply misses the event
// and becomes consistent again on its next state fetch.
type Broadcaster struct {
	log      *slog.Logger
	registry *Registry
}

func NewBroadcaster(log *slog.Logger, registry *Registry) *Broadcaster {
	return &Broadcaster{log: log, registry: registry}
}

func (b *Broadcaster) MachineStatusChanged(machineID int, data any) {
	b.publish(event.MachineStatusChanged{MachineID: machineID, At: time.Now(), Data: data})
}

func (b *Broadcaster) MachineStopped(machineID int, data any) {
	b.publish(event.MachineStopped{MachineID: machineID, At: time.Now(), Data: data})
}

func (b *Broadcaster) TicketCreated(data any) {
	b.publish(event.TicketCreated{At: time.Now(), Data: data})
}

func (b *Broadcaster) TicketAssigned(ticketID, technicianID int, data any) {
	b.publish(event.TicketAssigned{TicketID: ticketID, TechnicianID: technicianID, At: time.Now(), Data: data})
}

func (b *Broadcaster) TicketAccepted(ticketID int, data any) {
	b.publish(event.TicketAccepted{TicketID: ticketID, At: time.Now(), Data: data})
}

func (b *Broadcaster) TicketClosed(ticketID, machineID int, data any) {
	b.publish(event.TicketClosed{TicketID: ticketID, MachineID: machineID, At: time.Now(), Data: data})
}

func (b *Broadcaster) BatchStarted(machineID int, data any) {
	b.publish(event.BatchStarted{MachineID: machineID, At: time.Now(), Data: data})
}

func (b *Broadcaster) BatchFinished(machineID int, data any) {
	b.publish(event.BatchFinished{MachineID: machineID, At: time.Now(), Data: data})
}

// publish resolves the event's route into a deduplicated connection set and
// writes the serialized frame to every open member. A supervisor who also
// joined the machine room still receives the event once. Non-open
// connections are skipped; their cleanup belongs to the liveness sweep.
func (b *Broadcaster) publish(e event.DomainEvent) {
	frame, err := e.Frame()
	if err != nil {
		b.log.Error("Dropping unserializable event", "kind", e.Kind(), "err", err)
		return
	}

	route := e.Route()
	seen := make(map[uuid.UUID]struct{})
	delivered := 0

	deliver := func(conns []Conn) {
		for _, c := range conns {
			if _, dup := seen[c.ID()]; dup {
				continue
			}
			seen[c.ID()] = struct{}{}
			if c.Deliver(frame) {
				delivered++
			}
		}
	}

	if route.MachineID != nil {
		deliver(b.registry.MembersOfMachine(*route.MachineID))
	}
	if route.UserID != nil {
		deliver(b.registry.MembersOfUser(*route.UserID))
	}
	for _, role := range route.Roles {
		deliver(b.registry.MembersOfRole(role))
	}

	b.log.Debug("Event broadcast", "kind", e.Kind(), "targets", len(seen), "delivered", delivered)
}
