package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/coordinator"
)

// Pusher runs push cycles. *coordinator.Coordinator satisfies it.
type Pusher interface {
	Push(ctx context.Context) (*coordinator.Result, error)
	Status() coordinator.Status
}

// PushHandler is the HTTP equivalent of the in-page push button.
type PushHandler struct {
	pusher Pusher
	logger *slog.Logger
}

func NewPushHandler(pusher Pusher, logger *slog.Logger) *PushHandler {
	return &PushHandler{pusher: pusher, logger: logger}
}

// HandlePush runs one push cycle and returns its result.
//
// HTTP: POST /api/push
//
// RESPONSES:
//   - 200 with the cycle result, whether it Succeeded or Failed. The
//     result's errorKind and affordance say what went wrong.
//   - 409 when a cycle is already in flight. Nothing is submitted.
//
// The cycle is detached from the request context: once the solution has
// been submitted, a client hanging up must not abandon the push.
func (h *PushHandler) HandlePush(w http.ResponseWriter, r *http.Request) {
	res, err := h.pusher.Push(context.WithoutCancel(r.Context()))
	if err != nil {
		if !errors.Is(err, apperror.ErrBusy) {
			h.logger.Error("push failed to start", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
