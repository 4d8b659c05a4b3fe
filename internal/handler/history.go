package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/model"
)

// History reads the local push history. *service.HistoryService satisfies it.
type History interface {
	List(ctx context.Context, limit, offset int) ([]model.HistoryEntry, error)
	Get(ctx context.Context, id string) (*model.HistoryEntry, error)
}

type HistoryHandler struct {
	history History
	logger  *slog.Logger
}

func NewHistoryHandler(history History, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

// HandleList returns recorded pushes, newest first.
//
// HTTP: GET /api/history?limit=20&offset=0
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.history.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGet returns one recorded push.
//
// HTTP: GET /api/history/{id}
func (h *HistoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, name+" must be an integer")
	}
	return n, nil
}
