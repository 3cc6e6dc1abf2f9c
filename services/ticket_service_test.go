package services

import (
	goerrors "errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
	"downtime-tracker/repositories"
)

// recordingBroadcaster captures every broadcast call so tests can assert on
// which events a service emitted without the real registry.
type recordingBroadcaster struct {
	calls []string
}

func (r *recordingBroadcaster) MachineStatusChanged(int, any) {
	r.calls = append(r.calls, "machine_status_changed")
}
func (r *recordingBroadcaster) MachineStopped(int, any)      { r.calls = append(r.calls, "machine_stopped") }
func (r *recordingBroadcaster) TicketCreated(any)            { r.calls = append(r.calls, "ticket_created") }
func (r *recordingBroadcaster) TicketAssigned(int, int, any) { r.calls = append(r.calls, "ticket_assigned") }
func (r *recordingBroadcaster) TicketAccepted(int, any)      { r.calls = append(r.calls, "ticket_accepted") }
func (r *recordingBroadcaster) TicketClosed(int, int, any)   { r.calls = append(r.calls, "ticket_closed") }
func (r *recordingBroadcaster) BatchStarted(int, any)        { r.calls = append(r.calls, "batch_started") }
func (r *recordingBroadcaster) BatchFinished(int, any)       { r.calls = append(r.calls, "batch_finished") }

type ticketFixture struct {
	service     ITicketService
	machines    repositories.IMachineRepository
	users       repositories.IUserRepository
	broadcaster *recordingBroadcaster
	machine     domain.Machine
	technician  domain.User
}

func newTicketFixture(t *testing.T) ticketFixture {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tickets := repositories.NewTicketRepository(db)
	machines := repositories.NewMachineRepository(db)
	users := repositories.NewUserRepository(db)
	broadcaster := &recordingBroadcaster{}

	machine, err := machines.CreateMachine("CNC mill 3")
	require.NoError(t, err)
	technician, err := users.CreateUser("tech@floor.example.com", "Bob", domain.RoleTechnician, "hash")
	require.NoError(t, err)

	return ticketFixture{
		service:     NewTicketService(tickets, machines, users, broadcaster),
		machines:    machines,
		users:       users,
		broadcaster: broadcaster,
		machine:     machine,
		technician:  technician,
	}
}

func TestTicketService_Create_Locks_Machine_And_Broadcasts(t *testing.T) {
	req := require.New(t)

	fix := newTicketFixture(t)
	operator := domain.Principal{UserID: 7, Role: domain.RoleOperator}

	// When an operator opens a ticket
	ticket, err := fix.service.CreateTicket(fix.machine.ID, "spindle vibration", operator)

	// Then the ticket is open and the machine is locked
	req.NoError(err)
	req.Equal(domain.TicketOpen, ticket.Status)
	machine, err := fix.machines.GetMachine(fix.machine.ID)
	req.NoError(err)
	req.Equal(domain.MachineLocked, machine.Status)
	// And both the lock and the new ticket are announced
	req.Equal([]string{"machine_status_changed", "ticket_created"}, fix.broadcaster.calls)
}

func TestTicketService_Create_For_Unknown_Machine_Fails_Silently_On_The_Wire(t *testing.T) {
	req := require.New(t)

	fix := newTicketFixture(t)
	operator := domain.Principal{UserID: 7, Role: domain.RoleOperator}

	_, err := fix.service.CreateTicket(999, "ghost machine", operator)

	req.True(goerrors.Is(err, errors.ErrMachineNotFound))
	req.Empty(fix.broadcaster.calls)
}

func TestTicketService_Full_Lifecycle(t *testing.T) {
	req := require.New(t)

	fix := newTicketFixture(t)
	operator := domain.Principal{UserID: 7, Role: domain.RoleOperator}

	ticket, err := fix.service.CreateTicket(fix.machine.ID, "spindle vibration", operator)
	req.NoError(err)

	// Assign to the technician
	ticket, err = fix.service.AssignTicket(ticket.ID, fix.technician.ID)
	req.NoError(err)
	req.Equal(domain.TicketAssigned, ticket.Status)
	req.Equal(fix.technician.ID, *ticket.AssignedTo)

	// The assignee accepts
	ticket, err = fix.service.AcceptTicket(ticket.ID, domain.Principal{UserID: fix.technician.ID, Role: domain.RoleTechnician})
	req.NoError(err)
	req.Equal(domain.TicketAccepted, ticket.Status)

	// Closing resolves the ticket and unlocks the machine
	ticket, err = fix.service.CloseTicket(ticket.ID)
	req.NoError(err)
	req.Equal(domain.TicketClosed, ticket.Status)
	req.NotNil(ticket.ClosedAt)

	machine, err := fix.machines.GetMachine(fix.machine.ID)
	req.NoError(err)
	req.Equal(domain.MachineRunning, machine.Status)

	req.Equal([]string{
		"machine_status_changed", "ticket_created",
		"ticket_assigned",
		"ticket_accepted",
		"machine_status_changed", "ticket_closed",
	}, fix.broadcaster.calls)
}

func TestTicketService_Assign_Requires_A_Technician(t *testing.T) {
	req := require.New(t)

	fix := newTicketFixture(t)
	operator := domain.Principal{UserID: 7, Role: domain.RoleOperator}
	supervisor, err := fix.users.CreateUser("super@floor.example.com", "Sam", domain.RoleSupervisor, "hash")
	req.NoError(err)

	ticket, err := fix.service.CreateTicket(fix.machine.ID, "spindle vibration", operator)
	req.NoError(err)

	_, err = fix.service.AssignTicket(ticket.ID, supervisor.ID)

	req.True(goerrors.Is(err, errors.ErrInvalidTransition))
}

func TestTicketService_Accept_Requires_The_Assignee(t *testing.T) {
	req := require.New(t)

	fix := newTicketFixture(t)
	operator := domain.Principal{UserID: 7, Role: domain.RoleOperator}

	ticket, err := fix.service.CreateTicket(fix.machine.ID, "spindle vibration", operator)
	req.NoError(err)
	ticket, err = fix.service.AssignTicket(ticket.ID, fix.technician.ID)
	req.NoError(err)

	// Another technician tries to accept someone else's ticket
	_, err = fix.service.AcceptTicket(ticket.ID, domain.Principal{UserID: 999, Role: domain.RoleTechnician})

	req.True(goerrors.Is(err, errors.ErrInvalidTransition))
}

func TestTicketService_Accept_Before_Assign_Is_Invalid(t *testing.T) {
	req := require.New(t)

	fix := newTicketFixture(t)
	operator := domain.Principal{UserID: 7, Role: domain.RoleOperator}

	ticket, err := fix.service.CreateTicket(fix.machine.ID, "spindle vibration", operator)
	req.NoError(err)

	_, err = fix.service.AcceptTicket(ticket.ID, domain.Principal{UserID: fix.technician.ID, Role: domain.RoleTechnician})

	req.True(goerrors.Is(err, errors.ErrInvalidTransition))
}

func TestTicketService_Close_Twice_Is_Invalid(t *testing.T) {
	req := require.New(t)

	fix := newTicketFixture(t)
	operator := domain.Principal{UserID: 7, Role: domain.RoleOperator}

	ticket, err := fix.service.CreateTicket(fix.machine.ID, "spindle vibration", operator)
	req.NoError(err)
	_, err = fix.service.CloseTicket(ticket.ID)
	req.NoError(err)

	_, err = fix.service.CloseTicket(ticket.ID)

	req.True(goerrors.Is(err, errors.ErrInvalidTransition))
}
