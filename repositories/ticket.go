package repositories

import (
	"time"

	"github.com/dgraph-io/badger/v4"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
)

type ITicketRepository interface {
	CreateTicket(machineID int, description string, createdBy int) (domain.Ticket, error)
	GetTicket(id int) (domain.Ticket, error)
	// UpdateTicket applies mutate to the stored ticket inside one
	// transaction and returns the updated value.
	UpdateTicket(id int, mutate func(*domain.Ticket) error) (domain.Ticket, error)
}

type TicketRepository struct {
	db *badger.DB
}

func NewTicketRepository(db *badger.DB) ITicketRepository {
	return &TicketRepository{db: db}
}

func (t *TicketRepository) CreateTicket(machineID int, description string, createdBy int) (domain.Ticket, error) {
	now := time.Now()
	ticket := domain.Ticket{
		MachineID:   machineID,
		Description: description,
		Status:      domain.TicketOpen,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := t.db.Update(func(txn *badger.Txn) error {
		id, err := nextID(txn, "ticket")
		if err != nil {
			return err
		}
		ticket.ID = id
		return putJSON(txn, ticketKey(id), ticket)
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}

func (t *TicketRepository) GetTicket(id int) (domain.Ticket, error) {
	var ticket domain.Ticket
	err := t.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, ticketKey(id), &ticket, errors.ErrTicketNotFound)
	})
	return ticket, err
}

func (t *TicketRepository) UpdateTicket(id int, mutate func(*domain.Ticket) error) (domain.Ticket, error) {
	var ticket domain.Ticket
	err := t.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, ticketKey(id), &ticket, errors.ErrTicketNotFound); err != nil {
			return err
		}
		if err := mutate(&ticket); err != nil {
			return err
		}
		ticket.UpdatedAt = time.Now()
		return putJSON(txn, ticketKey(id), ticket)
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}
