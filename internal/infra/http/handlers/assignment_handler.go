package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type AssignmentHandler struct {
	Assign *usecase.AssignLeadsUseCase
	Logger *zap.Logger
}

func NewAssignmentHandler(assign *usecase.AssignLeadsUseCase, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{Assign: assign, Logger: logger}
}

func (h *AssignmentHandler) AssignOne(w http.ResponseWriter, r *http.Request) {
	var input usecase.AssignOneInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if err := h.Assign.AssignOne(r.Context(), input); err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	middleware.RecordLeadsAssigned(usecase.AssignModeSingle, 1)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AssignmentHandler) AssignBulk(w http.ResponseWriter, r *http.Request) {
	var input usecase.AssignBulkInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Assign.AssignBulk(r.Context(), input)
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	middleware.RecordLeadsAssigned(usecase.AssignModeBulk, out.Assigned)
	writeJSON(w, http.StatusOK, out)
}
