package event

import (
	"downtime-tracker/domain"
	"encoding/json"
	"time"

	"github.com/samber/lo"
)

type Kind string

const (
	KindMachineStatusChanged Kind = "machine_status_changed"
	KindMachineStopped       Kind = "machine_stopped"
	KindTicketCreated        Kind = "ticket_created"
	KindTicketAssigned       Kind = "ticket_assigned"
	KindTicketAccepted       Kind = "ticket_accepted"
	KindTicketClosed         Kind = "ticket_closed"
	KindBatchStarted         Kind = "batch_started"
	KindBatchFinished        Kind = "batch_finished"
)

// Route names the rooms one event fans out to. A nil MachineID or UserID
// means that room family is not targeted.
type Route struct {
	MachineID *int
	UserID    *int
	Roles     []domain.Role
}

// DomainEvent is a notification describing a state change that has already
// been committed elsewhere. Events are immutable, never stored, and consumed
// exactly once by the broadcaster.
type DomainEvent interface {
	Kind() Kind
	Route() Route
	Frame() ([]byte, error)
}

type MachineStatusChanged struct {
	MachineID int
	At        time.Time
	Data      any
}

func (e MachineStatusChanged) Kind() Kind { return KindMachineStatusChanged }

func (e MachineStatusChanged) Route() Route {
	return Route{
		MachineID: lo.ToPtr(e.MachineID),
		Roles:     []domain.Role{domain.RoleSupervisor, domain.RoleAdmin},
	}
}

func (e MachineStatusChanged) Frame() ([]byte, error) {
	return json.Marshal(struct {
		Type      Kind `json:"type"`
		MachineID int  `json:"machineId"`
		Data      any  `json:"data"`
	}{e.Kind(), e.MachineID, e.Data})
}

type MachineStopped struct {
	MachineID int
	At        time.Time
	Data      any
}

func (e MachineStopped) Kind() Kind { return KindMachineStopped }

func (e MachineStopped) Route() Route {
	return Route{
		MachineID: lo.ToPtr(e.MachineID),
		Roles:     []domain.Role{domain.RoleSupervisor, domain.RoleAdmin},
	}
}

func (e MachineStopped) Frame() ([]byte, error) {
	return json.Marshal(struct {
		Type      Kind `json:"type"`
		MachineID int  `json:"machineId"`
		Data      any  `json:"data"`
	}{e.Kind(), e.MachineID, e.Data})
}

// TicketCreated deliberately skips the machine room: operators only see a
// ticket once it is resolved, not while maintenance is still triaging it.
type TicketCreated struct {
	At   time.Time
	Data any
}

func (e TicketCreated) Kind() Kind { return KindTicketCreated }

func (e TicketCreated) Route() Route {
	return Route{
		Roles: []domain.Role{domain.RoleMaintenanceChief, domain.RoleSupervisor, domain.RoleAdmin},
	}
}

func (e TicketCreated) Frame() ([]byte, error) {
	return json.Marshal(struct {
		Type Kind `json:"type"`
		Data any  `json:"data"`
	}{e.Kind(), e.Data})
}

type TicketAssigned struct {
	TicketID     int
	TechnicianID int
	At           time.Time
	Data         any
}

func (e TicketAssigned) Kind() Kind { return KindTicketAssigned }

func (e TicketAssigned) Route() Route {
	return Route{
		UserID: lo.ToPtr(e.TechnicianID),
		Roles:  []domain.Role{domain.RoleMaintenanceChief, domain.RoleAdmin, domain.RoleTechnician},
	}
}

func (e TicketAssigned) Frame() ([]byte, error) {
	return json.Marshal(struct {
		Type     Kind `json:"type"`
		TicketID int  `json:"ticketId"`
		Data     any  `json:"data"`
	}{e.Kind(), e.TicketID, e.Data})
}

type TicketAccepted struct {
	TicketID int
	At       time.Time
	Data     any
}

func (e TicketAccepted) Kind() Kind { return KindTicketAccepted }

func (e TicketAccepted) Route() Route {
	return Route{
		Roles: []domain.Role{domain.RoleMaintenanceChief, domain.RoleSupervisor, domain.RoleAdmin, domain.RoleTechnician},
	}
}

func (e TicketAccepted) Frame() ([]byte, error) {
	return json.Marshal(struct {
		Type     Kind `json:"type"`
		TicketID int  `json:"ticketId"`
		Data     any  `json:"data"`
	}{e.Kind(), e.TicketID, e.Data})
}

type TicketClosed struct {
	TicketID  int
	MachineID int
	At        time.Time
	Data      any
}

func (e TicketClosed) Kind() Kind { return KindTicketClosed }

func (e TicketClosed) Route() Route {
	return Route{
		MachineID: lo.ToPtr(e.MachineID),
		Roles:     []domain.Role{domain.RoleMaintenanceChief, domain.RoleSupervisor, domain.RoleAdmin, domain.RoleTechnician},
	}
}

func (e TicketClosed) Frame() ([]byte, error) {
	return json.Marshal(struct {
		Type      Kind `json:"type"`
		TicketID  int  `json:"ticketId"`
		MachineID int  `json:"machineId"`
		Data      any  `json:"data"`
	}{e.Kind(), e.TicketID, e.MachineID, e.Data})
}

type BatchStarted struct {
	MachineID int
	At        time.Time
	Data      any
}

func (e BatchStarted) Kind() Kind { return KindBatchStarted }

func (e BatchStarted) Route() Route {
	return Route{
		MachineID: lo.ToPtr(e.MachineID),
		Roles:     []domain.Role{domain.RoleSupervisor, domain.RoleAdmin},
	}
}

func (e BatchStarted) Frame() ([]byte, error) {
	return json.Marshal(struct {
		Type      Kind `json:"type"`
		MachineID int  `json:"machineId"`
		Data      any  `json:"data"`
	}{e.Kind(), e.MachineID, e.Data})
}

type BatchFinished struct {
	MachineID int
	At        time.Time
	Data      any
}

func (e BatchFinished) Kind() Kind { return KindBatchFinished }

func (e BatchFinished) Route() Route {
	return Route{
		MachineID: lo.ToPtr(e.MachineID),
		Roles:     []domain.Role{domain.RoleSupervisor, domain.RoleAdmin},
	}
}

func (e BatchFinished) Frame() ([]byte, error) {
	return json.Marshal(struct {
		Type      Kind `json:"type"`
		MachineID int  `json:"machineId"`
		Data      any  `json:"data"`
	}{e.Kind(), e.MachineID, e.Data})
}
