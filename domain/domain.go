package domain

import (
	"downtime-tracker/errors"
	"time"
)

// Role is the access level a user holds on the production floor.
// A connection's role is fixed at authentication time for its whole
// lifetime; changing a user's role server-side does not migrate
// connections that are already open.
type Role string

const (
	RoleOperator         Role = "operator"
	RoleTechnician       Role = "technician"
	RoleMaintenanceChief Role = "maintenance_chief"
	RoleSupervisor       Role = "supervisor"
	RoleAdmin            Role = "admin"
)

func AllRoles() []Role {
	return []Role{RoleOperator, RoleTechnician, RoleMaintenanceChief, RoleSupervisor, RoleAdmin}
}

func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", errors.ErrUnknownRole
}

// Principal is the authenticated identity attached to a connection
// or an HTTP request.
type Principal struct {
	UserID int
	Role   Role
}

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type MachineStatus string

const (
	MachineRunning MachineStatus = "running"
	MachineStopped MachineStatus = "stopped"
	MachineLocked  MachineStatus = "locked"
)

type Machine struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Status    MachineStatus `json:"status"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketAssigned TicketStatus = "assigned"
	TicketAccepted TicketStatus = "accepted"
	TicketClosed   TicketStatus = "closed"
)

type Ticket struct {
	ID          int          `json:"id"`
	MachineID   int          `json:"machineId"`
	Description string       `json:"description"`
	Status      TicketStatus `json:"status"`
	CreatedBy   int          `json:"createdBy"`
	AssignedTo  *int         `json:"assignedTo,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	ClosedAt    *time.Time   `json:"closedAt,omitempty"`
}

type Batch struct {
	ID         int        `json:"id"`
	MachineID  int        `json:"machineId"`
	Product    string     `json:"product"`
	Quantity   int        `json:"quantity"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Stoppage is the payload attached to a machine_stopped event.
type Stoppage struct {
	MachineID  int       `json:"machineId"`
	Cause      string    `json:"cause"`
	ReportedBy int       `json:"reportedBy"`
	At         time.Time `json:"at"`
}
