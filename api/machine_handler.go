package api

import (
	goerrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
	"downtime-tracker/services"
)

type MachineHandler struct {
	log      *slog.Logger
	machines services.IMachineService
}

func NewMachineHandler(log *slog.Logger, machines services.IMachineService) *MachineHandler {
	return &MachineHandler{log: log, machines: machines}
}

func (h *MachineHandler) List(w http.ResponseWriter, r *http.Request) {
	machines, err := h.machines.ListMachines()
	if err != nil {
		h.log.Error("Machine list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, machines)
}

func (h *MachineHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	machineID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid machine id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := domain.MachineStatus(req.Status)
	switch status {
	case domain.MachineRunning, domain.MachineStopped, domain.MachineLocked:
	default:
		writeError(w, http.StatusBadRequest, "unknown machine status")
		return
	}

	machine, err := h.machines.UpdateStatus(machineID, status)
	if err != nil {
		h.respondMachineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, machine)
}

func (h *MachineHandler) ReportStoppage(w http.ResponseWriter, r *http.Request) {
	machineID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid machine id")
		return
	}

	var req struct {
		Cause string `json:"cause"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal, _ := PrincipalFrom(r.Context())
	machine, err := h.machines.ReportStoppage(machineID, req.Cause, principal)
	if err != nil {
		h.respondMachineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, machine)
}

func (h *MachineHandler) respondMachineError(w http.ResponseWriter, err error) {
	if goerrors.Is(err, errors.ErrMachineNotFound) {
		writeError(w, http.StatusNotFound, "machine not found")
		return
	}
	h.log.Error("Machine mutation failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
