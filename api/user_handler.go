package api

import (
	"log/slog"
	"net/http"

	"downtime-tracker/domain"
	"downtime-tracker/repositories"
)

// UserHandler exposes the read-only user directory. Its one consumer is the
// assignment form, which needs the technicians to pick from.
type UserHandler struct {
	log   *slog.Logger
	users repositories.IUserRepository
}

func NewUserHandler(log *slog.Logger, users repositories.IUserRepository) *UserHandler {
	return &UserHandler{log: log, users: users}
}

func (h *UserHandler) Technicians(w http.ResponseWriter, r *http.Request) {
	technicians, err := h.users.GetUsersByRole(domain.RoleTechnician)
	if err != nil {
		h.log.Error("Technician listing failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, technicians)
}
