package api

import (
	goerrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"downtime-tracker/errors"
	"downtime-tracker/services"
)

type BatchHandler struct {
	log     *slog.Logger
	batches services.IBatchService
}

func NewBatchHandler(log *slog.Logger, batches services.IBatchService) *BatchHandler {
	return &BatchHandler{log: log, batches: batches}
}

func (h *BatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MachineID int    `json:"machineId"`
		Product   string `json:"product"`
		Quantity  int    `json:"quantity"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Product == "" || req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "product and positive quantity are required")
		return
	}

	batch, err := h.batches.StartBatch(req.MachineID, req.Product, req.Quantity)
	if err != nil {
		h.respondBatchError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, batch)
}

func (h *BatchHandler) Finish(w http.ResponseWriter, r *http.Request) {
	batchID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch id")
		return
	}

	batch, err := h.batches.FinishBatch(batchID)
	if err != nil {
		h.respondBatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (h *BatchHandler) respondBatchError(w http.ResponseWriter, err error) {
	switch {
	case goerrors.Is(err, errors.ErrBatchNotFound):
		writeError(w, http.StatusNotFound, "batch not found")
	case goerrors.Is(err, errors.ErrMachineNotFound):
		writeError(w, http.StatusNotFound, "machine not found")
	default:
		h.log.Error("Batch mutation failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
