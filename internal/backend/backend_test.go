package backend_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/backend"
	"github.com/sakif/leetpush/internal/backend/backendtest"
	"github.com/sakif/leetpush/internal/model"
)

func newClient(t *testing.T) (*backend.Client, *backendtest.Server) {
	t.Helper()
	srv := backendtest.NewServer()
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return backend.New(srv.URL, srv.Client(), logger), srv
}

func pushRequest(code string) model.PushRequest {
	return model.PushRequest{
		Filename:     "0001_Two_Sum.py",
		Code:         code,
		SelectedRepo: "octocat/leetcode",
	}
}

func TestPushCode_CreatedThenDuplicate(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()

	first, err := c.PushCode(ctx, backendtest.Token, pushRequest("print(1)"))
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeCreated, first.Outcome)
	require.NotNil(t, first.PushedAt)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), first.PushedAt.Time)

	second, err := c.PushCode(ctx, backendtest.Token, pushRequest("print(1)"))
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeDuplicate, second.Outcome)

	assert.Len(t, srv.Pushes(), 2)
}

func TestPushCode_Errors(t *testing.T) {
	t.Run("missing token never calls", func(t *testing.T) {
		c, srv := newClient(t)
		_, err := c.PushCode(context.Background(), "", pushRequest("x"))
		assert.ErrorIs(t, err, apperror.ErrAuthExpired)
		assert.Empty(t, srv.Pushes())
	})

	t.Run("rejected token is AuthExpired", func(t *testing.T) {
		c, _ := newClient(t)
		_, err := c.PushCode(context.Background(), "stale", pushRequest("x"))
		assert.ErrorIs(t, err, apperror.ErrAuthExpired)
		assert.EqualError(t, err, "backend: push-code: Invalid Token")
	})

	t.Run("5xx is ServerError with status and body", func(t *testing.T) {
		c, srv := newClient(t)
		srv.FailPushWith(http.StatusBadGateway)

		_, err := c.PushCode(context.Background(), backendtest.Token, pushRequest("x"))
		require.ErrorIs(t, err, apperror.ErrServerError)

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, http.StatusBadGateway, appErr.Status)
		assert.Contains(t, appErr.Body, "push failed")
	})

	t.Run("unreachable backend is NetworkFailure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := backend.New(srv.URL, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

		_, err := c.PushCode(context.Background(), backendtest.Token, pushRequest("x"))
		assert.ErrorIs(t, err, apperror.ErrNetworkFailure)
	})

	t.Run("undecodable body is ServerError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>ok</html>"))
		}))
		defer srv.Close()
		c := backend.New(srv.URL, srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))

		_, err := c.PushCode(context.Background(), backendtest.Token, pushRequest("x"))
		assert.ErrorIs(t, err, apperror.ErrServerError)
	})
}

func TestClassifyOutcome(t *testing.T) {
	tests := []struct {
		name string
		resp model.PushResponse
		want model.PushOutcome
	}{
		{"already pushed", model.PushResponse{Message: "Already pushed!"}, model.OutcomeDuplicate},
		{"no change", model.PushResponse{Message: "No change"}, model.OutcomeUnchanged},
		{"no change with period", model.PushResponse{Message: "No change."}, model.OutcomeUnchanged},
		{"any other message", model.PushResponse{Message: "uploaded to github!"}, model.OutcomeCreated},
		{"empty message", model.PushResponse{}, model.OutcomeCreated},
		{"explicit outcome wins", model.PushResponse{Message: "uploaded", Outcome: model.OutcomeDuplicate}, model.OutcomeDuplicate},
		{"unknown outcome falls back to message", model.PushResponse{Message: "No change.", Outcome: "weird"}, model.OutcomeUnchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := backend.ClassifyOutcome(&tt.resp); got != tt.want {
				t.Errorf("ClassifyOutcome(%+v) = %q, want %q", tt.resp, got, tt.want)
			}
		})
	}
}

func TestAccountEndpoints(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()

	require.NoError(t, c.SaveRepository(ctx, backendtest.Token, "octocat/leetcode"))
	assert.Equal(t, "octocat/leetcode", srv.SelectedRepository())

	me, err := c.Me(ctx, backendtest.Token)
	require.NoError(t, err)
	assert.Equal(t, backendtest.Username, me.Username)
	assert.Equal(t, "octocat/leetcode", me.SelectedRepo)
	assert.Nil(t, me.LastPush)
	require.NotNil(t, me.LastLogin)

	_, err = c.PushCode(ctx, backendtest.Token, pushRequest("print(2)"))
	require.NoError(t, err)

	stats, err := c.Stats(ctx, backendtest.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSolved)
	assert.Equal(t, map[string]int{"py": 1}, stats.ByLanguage)

	streak, err := c.Streak(ctx, backendtest.Token)
	require.NoError(t, err)
	assert.Equal(t, &model.Streak{Streak: 3, FrozenUsed: 1}, streak)
}

func TestLoginCallback(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	res, err := c.LoginCallback(ctx, backendtest.Code)
	require.NoError(t, err)
	assert.Equal(t, backendtest.Token, res.Token)
	assert.Equal(t, backendtest.Username, res.Username)
	assert.Nil(t, res.LastPush)
	require.NotNil(t, res.LastLogin)

	_, err = c.LoginCallback(ctx, "")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = c.LoginCallback(ctx, "wrong")
	assert.ErrorIs(t, err, apperror.ErrServerError)
}

func TestLoginCallback_NoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"GitHub login successful","username":"octocat"}`))
	}))
	defer srv.Close()
	c := backend.New(srv.URL, srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.LoginCallback(context.Background(), "code")
	assert.ErrorIs(t, err, apperror.ErrAuthExpired)
}

func TestPublicQueries(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	results, err := c.Search(ctx, "octo")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, backendtest.Username, results[0].Username)

	user, err := c.User(ctx, backendtest.Username)
	require.NoError(t, err)
	assert.Equal(t, 0, user.TotalSolved)

	_, err = c.User(ctx, "nobody")
	assert.ErrorIs(t, err, apperror.ErrServerError)

	ranking, err := c.Ranking(ctx)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
}
