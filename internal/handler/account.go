package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/auth"
	"github.com/sakif/leetpush/internal/coordinator"
	"github.com/sakif/leetpush/internal/model"
	"github.com/sakif/leetpush/internal/service"
)

// Accounts is the account service as seen by the handlers.
// *service.AccountService satisfies it.
type Accounts interface {
	Login(ctx context.Context, code string) (*service.Session, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*service.Session, error)
	SelectRepository(ctx context.Context, repo string) error
	Repositories(ctx context.Context) ([]model.Repository, error)
	Stats(ctx context.Context) (*model.Stats, error)
	Streak(ctx context.Context) (*model.Streak, error)
}

// AccountHandler serves the popup's account views: status, stats,
// repository selection and logout.
type AccountHandler struct {
	accounts Accounts
	pusher   Pusher
	logger   *slog.Logger
}

func NewAccountHandler(accounts Accounts, pusher Pusher, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, pusher: pusher, logger: logger}
}

// StatusResponse combines the coordinator view with the session summary.
type StatusResponse struct {
	Push    coordinator.Status `json:"push"`
	Session *service.Session   `json:"session"`
}

// HandleStatus returns the push button state and the reconciled session.
//
// HTTP: GET /api/status
func (h *AccountHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	session, err := h.accounts.Session(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		Push:    h.pusher.Status(),
		Session: session,
	})
}

// HandleStats proxies the backend's aggregate for the current user.
//
// HTTP: GET /api/stats
// Auth: Required (RequireSession)
func (h *AccountHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.accounts.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleStreak returns the current push streak.
//
// HTTP: GET /api/streak
// Auth: Required (RequireSession)
func (h *AccountHandler) HandleStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := h.accounts.Streak(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streak)
}

type selectRepositoryRequest struct {
	Repository string `json:"repository"`
}

// HandleSelectRepository sets the push target.
//
// HTTP: POST /api/repository
// REQUEST BODY: {"repository": "octocat/leetcode"}
// Auth: Required (RequireSession)
func (h *AccountHandler) HandleSelectRepository(w http.ResponseWriter, r *http.Request) {
	var req selectRepositoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if err := h.accounts.SelectRepository(r.Context(), req.Repository); err != nil {
		writeError(w, err)
		return
	}

	logger := h.logger
	if cred, ok := auth.CredentialFromContext(r.Context()); ok {
		logger = logger.With(slog.String("username", cred.Username))
	}
	logger.Info("push target changed", slog.String("repository", req.Repository))

	writeJSON(w, http.StatusOK, map[string]string{"repository": req.Repository})
}

// HandleListRepositories lists candidate push targets from GitHub.
//
// HTTP: GET /api/repositories
func (h *AccountHandler) HandleListRepositories(w http.ResponseWriter, r *http.Request) {
	repos, err := h.accounts.Repositories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if repos == nil {
		repos = []model.Repository{}
	}
	writeJSON(w, http.StatusOK, repos)
}

// HandleLogout clears the credential store.
//
// HTTP: POST /api/logout
//
// Logout is state-changing, so it is POST only: a GET could be triggered
// by a prefetch or a cross-site link.
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
