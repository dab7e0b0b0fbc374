package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const defaultMaxUploadBytes = 10 << 20

type LeadHandler struct {
	Query          *usecase.QueryLeadsUseCase
	Import         *usecase.ImportLeadsUseCase
	FollowUp       *usecase.FollowUpUseCase
	CloseDeal      *usecase.CloseDealUseCase
	MaxUploadBytes int64
	Logger         *zap.Logger
}

func NewLeadHandler(query *usecase.QueryLeadsUseCase, imp *usecase.ImportLeadsUseCase, followUp *usecase.FollowUpUseCase, closeDeal *usecase.CloseDealUseCase, maxUploadBytes int64, logger *zap.Logger) *LeadHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &LeadHandler{
		Query:          query,
		Import:         imp,
		FollowUp:       followUp,
		CloseDeal:      closeDeal,
		MaxUploadBytes: maxUploadBytes,
		Logger:         logger,
	}
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Query.List(r.Context(), middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Query.Get(r.Context(), chi.URLParam(r, "id"), middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lead": lead})
}

// Upload ingests a CSV or Excel sheet sent as multipart field "file".
func (h *LeadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusBadRequest, "File too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, `CSV/Excel file required in form field "file"`)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, `CSV/Excel file required in form field "file"`)
		return
	}
	defer file.Close()

	out, err := h.Import.Execute(r.Context(), usecase.ImportLeadsInput{
		Filename: header.Filename,
		Reader:   file,
	})
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	middleware.RecordLeadsImported(out.Added)
	writeJSON(w, http.StatusOK, out)
}

func (h *LeadHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.FollowUp.List(r.Context(), chi.URLParam(r, "id"), middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (h *LeadHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var input usecase.AppendNoteInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.LeadID = chi.URLParam(r, "id")

	note, err := h.FollowUp.Append(r.Context(), input, middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	middleware.RecordNoteAdded()
	writeJSON(w, http.StatusOK, map[string]any{"note": note})
}

type closeDealRequest struct {
	Amount      json.RawMessage `json:"amount"`
	ClosedMonth *string         `json:"closedMonth"`
}

func (h *LeadHandler) Close(w http.ResponseWriter, r *http.Request) {
	var req closeDealRequest
	malformed := json.NewDecoder(r.Body).Decode(&req) != nil

	input := usecase.CloseDealInput{
		LeadID:        chi.URLParam(r, "id"),
		Amount:        parseAmount(req.Amount),
		MalformedBody: malformed,
	}
	if req.ClosedMonth != nil {
		input.ClosedMonth = *req.ClosedMonth
	}

	out, err := h.CloseDeal.Execute(r.Context(), input, middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.Logger, err)
		return
	}

	middleware.RecordDealClosed()
	writeJSON(w, http.StatusOK, out)
}

// parseAmount accepts a JSON number or a numeric string. Anything else
// yields nil, which the use case rejects.
func parseAmount(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if v, err := num.Float64(); err == nil {
			return &v
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
