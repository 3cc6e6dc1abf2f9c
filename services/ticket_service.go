package services

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
	"downtime-tracker/repositories"
)

// ITicketService carries a ticket through open -> assigned -> accepted ->
// closed, broadcasting each committed transition. Only what the event layer
// must propagate lives here; richer maintenance workflow stays out.
type ITicketService interface {
	CreateTicket(machineID int, description string, by domain.Principal) (domain.Ticket, error)
	AssignTicket(ticketID, technicianID int) (domain.Ticket, error)
	AcceptTicket(ticketID int, by domain.Principal) (domain.Ticket, error)
	CloseTicket(ticketID int) (domain.Ticket, error)
}

type TicketService struct {
	tickets     repositories.ITicketRepository
	machines    repositories.IMachineRepository
	users       repositories.IUserRepository
	broadcaster Broadcaster
}

func NewTicketService(tickets repositories.ITicketRepository, machines repositories.IMachineRepository,
	users repositories.IUserRepository, broadcaster Broadcaster) ITicketService {
	return &TicketService{tickets: tickets, machines: machines, users: users, broadcaster: broadcaster}
}

// CreateTicket opens a ticket and locks the machine until maintenance
// resolves it.
func (s *TicketService) CreateTicket(machineID int, description string, by domain.Principal) (domain.Ticket, error) {
	if _, err := s.machines.GetMachine(machineID); err != nil {
		return domain.Ticket{}, err
	}

	ticket, err := s.tickets.CreateTicket(machineID, description, by.UserID)
	if err != nil {
		return domain.Ticket{}, err
	}

	if machine, err := s.machines.UpdateStatus(machineID, domain.MachineLocked); err == nil {
		s.broadcaster.MachineStatusChanged(machineID, machine)
	}
	s.broadcaster.TicketCreated(ticket)
	return ticket, nil
}

func (s *TicketService) AssignTicket(ticketID, technicianID int) (domain.Ticket, error) {
	technician, err := s.users.GetUser(technicianID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if technician.Role != domain.RoleTechnician {
		return domain.Ticket{}, fmt.Errorf("%w: user %d is not a technician", errors.ErrInvalidTransition, technicianID)
	}

	ticket, err := s.tickets.UpdateTicket(ticketID, func(t *domain.Ticket) error {
		if t.Status != domain.TicketOpen && t.Status != domain.TicketAssigned {
			return fmt.Errorf("%w: cannot assign a %s ticket", errors.ErrInvalidTransition, t.Status)
		}
		t.Status = domain.TicketAssigned
		t.AssignedTo = lo.ToPtr(technicianID)
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	s.broadcaster.TicketAssigned(ticketID, technicianID, ticket)
	return ticket, nil
}

func (s *TicketService) AcceptTicket(ticketID int, by domain.Principal) (domain.Ticket, error) {
	ticket, err := s.tickets.UpdateTicket(ticketID, func(t *domain.Ticket) error {
		if t.Status != domain.TicketAssigned {
			return fmt.Errorf("%w: cannot accept a %s ticket", errors.ErrInvalidTransition, t.Status)
		}
		if t.AssignedTo == nil || *t.AssignedTo != by.UserID {
			return fmt.Errorf("%w: ticket is not assigned to user %d", errors.ErrInvalidTransition, by.UserID)
		}
		t.Status = domain.TicketAccepted
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	s.broadcaster.TicketAccepted(ticketID, ticket)
	return ticket, nil
}

// CloseTicket resolves the ticket and unlocks its machine. The closed event
// reaches the machine room so the blocked station resumes without a refresh.
func (s *TicketService) CloseTicket(ticketID int) (domain.Ticket, error) {
	ticket, err := s.tickets.UpdateTicket(ticketID, func(t *domain.Ticket) error {
		if t.Status == domain.TicketClosed {
			return fmt.Errorf("%w: ticket already closed", errors.ErrInvalidTransition)
		}
		t.Status = domain.TicketClosed
		t.ClosedAt = lo.ToPtr(time.Now())
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	if machine, err := s.machines.UpdateStatus(ticket.MachineID, domain.MachineRunning); err == nil {
		s.broadcaster.MachineStatusChanged(ticket.MachineID, machine)
	}
	s.broadcaster.TicketClosed(ticketID, ticket.MachineID, ticket)
	return ticket, nil
}
