package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/auth"
	"github.com/sakif/leetpush/internal/coordinator"
	"github.com/sakif/leetpush/internal/handler"
	"github.com/sakif/leetpush/internal/model"
	"github.com/sakif/leetpush/internal/service"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// MockPusher implements handler.Pusher without a browser.
type MockPusher struct {
	ReturnRes *coordinator.Result
	ReturnErr error
	Calls     int
	CtxErr    error
}

func (m *MockPusher) Push(ctx context.Context) (*coordinator.Result, error) {
	m.Calls++
	m.CtxErr = ctx.Err()
	return m.ReturnRes, m.ReturnErr
}

func (m *MockPusher) Status() coordinator.Status {
	return coordinator.Status{State: coordinator.Idle}
}

// MockAccounts implements handler.Accounts.
type MockAccounts struct {
	ReturnSession *service.Session
	Err           error
	SelectedArg   string
	LoginCode     string
	LoggedOut     bool
}

func (m *MockAccounts) Login(ctx context.Context, code string) (*service.Session, error) {
	m.LoginCode = code
	return m.ReturnSession, m.Err
}

func (m *MockAccounts) Logout(ctx context.Context) error {
	m.LoggedOut = true
	return m.Err
}

func (m *MockAccounts) Session(ctx context.Context) (*service.Session, error) {
	return m.ReturnSession, m.Err
}

func (m *MockAccounts) SelectRepository(ctx context.Context, repo string) error {
	m.SelectedArg = repo
	return m.Err
}

func (m *MockAccounts) Repositories(ctx context.Context) ([]model.Repository, error) {
	return nil, m.Err
}

func (m *MockAccounts) Stats(ctx context.Context) (*model.Stats, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &model.Stats{TotalSolved: 7}, nil
}

func (m *MockAccounts) Streak(ctx context.Context) (*model.Streak, error) {
	return &model.Streak{Streak: 2}, m.Err
}

// MockHistory implements handler.History.
type MockHistory struct {
	GotLimit, GotOffset int
}

func (m *MockHistory) List(ctx context.Context, limit, offset int) ([]model.HistoryEntry, error) {
	m.GotLimit, m.GotOffset = limit, offset
	return nil, nil
}

func (m *MockHistory) Get(ctx context.Context, id string) (*model.HistoryEntry, error) {
	if id != "h1" {
		return nil, apperror.NotFound("history entry", id)
	}
	return &model.HistoryEntry{ID: "h1", Filename: "0001_Two_Sum.py"}, nil
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestPushHandler_HandlePush(t *testing.T) {
	t.Run("returns the cycle result", func(t *testing.T) {
		pusher := &MockPusher{ReturnRes: &coordinator.Result{
			CycleID:  "c1",
			State:    coordinator.Succeeded,
			Outcome:  model.OutcomeCreated,
			Filename: "0001_Two_Sum.py",
		}}
		h := handler.NewPushHandler(pusher, discard)

		req := httptest.NewRequest(http.MethodPost, "/api/push", nil)
		rr := httptest.NewRecorder()
		h.HandlePush(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var res map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "succeeded", res["state"])
		assert.Equal(t, "created", res["outcome"])
	})

	t.Run("failed cycle is still 200", func(t *testing.T) {
		pusher := &MockPusher{ReturnRes: &coordinator.Result{
			State:     coordinator.Failed,
			ErrorKind: "NoRepositorySelected",
		}}
		h := handler.NewPushHandler(pusher, discard)

		rr := httptest.NewRecorder()
		h.HandlePush(rr, httptest.NewRequest(http.MethodPost, "/api/push", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "NoRepositorySelected")
	})

	t.Run("busy returns 409", func(t *testing.T) {
		h := handler.NewPushHandler(&MockPusher{ReturnErr: apperror.Busy()}, discard)

		rr := httptest.NewRecorder()
		h.HandlePush(rr, httptest.NewRequest(http.MethodPost, "/api/push", nil))

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "Busy", decodeError(t, rr).Error)
	})

	t.Run("client disconnect does not cancel the cycle", func(t *testing.T) {
		pusher := &MockPusher{ReturnRes: &coordinator.Result{State: coordinator.Succeeded}}
		h := handler.NewPushHandler(pusher, discard)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodPost, "/api/push", nil).WithContext(ctx)
		h.HandlePush(httptest.NewRecorder(), req)

		assert.NoError(t, pusher.CtxErr)
	})
}

func TestAccountHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"auth expired", apperror.AuthExpired("token rejected"), http.StatusUnauthorized, "AuthExpired"},
		{"backend down", apperror.NetworkFailure("stats", errors.New("dial tcp")), http.StatusBadGateway, "NetworkFailure"},
		{"backend 500", apperror.ServerError(500, "boom"), http.StatusBadGateway, "ServerError"},
		{"plain error", errors.New("disk on fire"), http.StatusInternalServerError, "Internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewAccountHandler(&MockAccounts{Err: tt.err}, &MockPusher{}, discard)

			rr := httptest.NewRecorder()
			h.HandleStats(rr, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			body := decodeError(t, rr)
			assert.Equal(t, tt.wantKind, body.Error)
			assert.NotContains(t, body.Message, "disk on fire")
		})
	}
}

func TestAccountHandler_HandleStatus(t *testing.T) {
	accounts := &MockAccounts{ReturnSession: &service.Session{LoggedIn: true, Username: "octocat"}}
	h := handler.NewAccountHandler(accounts, &MockPusher{}, discard)

	rr := httptest.NewRecorder()
	h.HandleStatus(rr, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Push struct {
			State string `json:"state"`
			Busy  bool   `json:"busy"`
		} `json:"push"`
		Session service.Session `json:"session"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "idle", body.Push.State)
	assert.False(t, body.Push.Busy)
	assert.Equal(t, "octocat", body.Session.Username)
}

func TestAccountHandler_HandleSelectRepository(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		accounts := &MockAccounts{}
		h := handler.NewAccountHandler(accounts, &MockPusher{}, discard)

		req := httptest.NewRequest(http.MethodPost, "/api/repository",
			bytes.NewBufferString(`{"repository":"octocat/leetcode"}`))
		rr := httptest.NewRecorder()
		h.HandleSelectRepository(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "octocat/leetcode", accounts.SelectedArg)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		accounts := &MockAccounts{}
		h := handler.NewAccountHandler(accounts, &MockPusher{}, discard)

		rr := httptest.NewRecorder()
		h.HandleSelectRepository(rr, httptest.NewRequest(http.MethodPost, "/api/repository",
			bytes.NewBufferString(`{invalid`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, accounts.SelectedArg)
	})

	t.Run("validation error carries the field", func(t *testing.T) {
		accounts := &MockAccounts{Err: apperror.ValidationFailed("repository", "repository must look like owner/name")}
		h := handler.NewAccountHandler(accounts, &MockPusher{}, discard)

		rr := httptest.NewRecorder()
		h.HandleSelectRepository(rr, httptest.NewRequest(http.MethodPost, "/api/repository",
			bytes.NewBufferString(`{"repository":"nope"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeError(t, rr)
		assert.Equal(t, "Validation", body.Error)
		assert.Equal(t, "repository", body.Field)
	})
}

func TestAccountHandler_HandleLogout(t *testing.T) {
	accounts := &MockAccounts{}
	h := handler.NewAccountHandler(accounts, &MockPusher{}, discard)

	rr := httptest.NewRecorder()
	h.HandleLogout(rr, httptest.NewRequest(http.MethodPost, "/api/logout", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, accounts.LoggedOut)
}

func TestHistoryHandler(t *testing.T) {
	history := &MockHistory{}
	h := handler.NewHistoryHandler(history, discard)

	r := chi.NewRouter()
	r.Get("/api/history", h.HandleList)
	r.Get("/api/history/{id}", h.HandleGet)

	t.Run("list passes paging through", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history?limit=5&offset=10", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
		assert.Equal(t, 5, history.GotLimit)
		assert.Equal(t, 10, history.GotOffset)
	})

	t.Run("bad limit", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history?limit=ten", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("get", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history/h1", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "0001_Two_Sum.py")
	})

	t.Run("get missing", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/history/nope", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "NotFound", decodeError(t, rr).Error)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	provider := auth.NewGitHubProvider("client-id", "http://127.0.0.1:7337/auth/github/callback")
	h := handler.NewAuthHandler(provider, &MockAccounts{}, discard)

	rr := httptest.NewRecorder()
	h.HandleGitHubLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/github/login", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "oauth_state", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "github.com", loc.Host)
	assert.Equal(t, cookies[0].Value, loc.Query().Get("state"))
	assert.Equal(t, "repo", loc.Query().Get("scope"))
}

func TestAuthHandler_LoginNotConfigured(t *testing.T) {
	h := handler.NewAuthHandler(auth.NewGitHubProvider("", ""), &MockAccounts{}, discard)

	rr := httptest.NewRecorder()
	h.HandleGitHubLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/github/login", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAuthHandler_Callback(t *testing.T) {
	callback := func(query, cookieState string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?"+query, nil)
		if cookieState != "" {
			req.AddCookie(&http.Cookie{Name: "oauth_state", Value: cookieState})
		}
		return req
	}

	t.Run("forwards the code", func(t *testing.T) {
		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		accounts := &MockAccounts{ReturnSession: &service.Session{LoggedIn: true, Username: "octocat", LastLoginAt: &now}}
		h := handler.NewAuthHandler(auth.NewGitHubProvider("id", ""), accounts, discard)

		rr := httptest.NewRecorder()
		h.HandleGitHubCallback(rr, callback("code=abc&state=s1", "s1"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "abc", accounts.LoginCode)
		assert.Contains(t, rr.Body.String(), "octocat")
	})

	t.Run("state mismatch", func(t *testing.T) {
		accounts := &MockAccounts{}
		h := handler.NewAuthHandler(auth.NewGitHubProvider("id", ""), accounts, discard)

		rr := httptest.NewRecorder()
		h.HandleGitHubCallback(rr, callback("code=abc&state=evil", "s1"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, accounts.LoginCode)
	})

	t.Run("missing cookie", func(t *testing.T) {
		h := handler.NewAuthHandler(auth.NewGitHubProvider("id", ""), &MockAccounts{}, discard)

		rr := httptest.NewRecorder()
		h.HandleGitHubCallback(rr, callback("code=abc&state=s1", ""))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("denied", func(t *testing.T) {
		accounts := &MockAccounts{}
		h := handler.NewAuthHandler(auth.NewGitHubProvider("id", ""), accounts, discard)

		rr := httptest.NewRecorder()
		h.HandleGitHubCallback(rr, callback("error=access_denied&state=s1", "s1"))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Empty(t, accounts.LoginCode)
	})

	t.Run("backend rejects the code", func(t *testing.T) {
		accounts := &MockAccounts{Err: apperror.ServerError(400, "bad verification code")}
		h := handler.NewAuthHandler(auth.NewGitHubProvider("id", ""), accounts, discard)

		rr := httptest.NewRecorder()
		h.HandleGitHubCallback(rr, callback("code=abc&state=s1", "s1"))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}
