package api

import (
	goerrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"downtime-tracker/errors"
	"downtime-tracker/services"
)

type TicketHandler struct {
	log     *slog.Logger
	tickets services.ITicketService
}

func NewTicketHandler(log *slog.Logger, tickets services.ITicketService) *TicketHandler {
	return &TicketHandler{log: log, tickets: tickets}
}

func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MachineID   int    `json:"machineId"`
		Description string `json:"description"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	principal, _ := PrincipalFrom(r.Context())
	ticket, err := h.tickets.CreateTicket(req.MachineID, req.Description, principal)
	if err != nil {
		h.respondTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

func (h *TicketHandler) Assign(w http.ResponseWriter, r *http.Request) {
	ticketID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	var req struct {
		TechnicianID int `json:"technicianId"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticket, err := h.tickets.AssignTicket(ticketID, req.TechnicianID)
	if err != nil {
		h.respondTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *TicketHandler) Accept(w http.ResponseWriter, r *http.Request) {
	ticketID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	principal, _ := PrincipalFrom(r.Context())
	ticket, err := h.tickets.AcceptTicket(ticketID, principal)
	if err != nil {
		h.respondTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *TicketHandler) Close(w http.ResponseWriter, r *http.Request) {
	ticketID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	ticket, err := h.tickets.CloseTicket(ticketID)
	if err != nil {
		h.respondTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *TicketHandler) respondTicketError(w http.ResponseWriter, err error) {
	switch {
	case goerrors.Is(err, errors.ErrTicketNotFound):
		writeError(w, http.StatusNotFound, "ticket not found")
	case goerrors.Is(err, errors.ErrMachineNotFound):
		writeError(w, http.StatusNotFound, "machine not found")
	case goerrors.Is(err, errors.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "technician not found")
	case goerrors.Is(err, errors.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("Ticket mutation failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
