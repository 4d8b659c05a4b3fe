package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/model"
	"github.com/sakif/leetpush/internal/repository"
)

func TestStore_CredentialLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.SaveLogin(ctx, &model.Credential{BearerToken: "tok", Username: "octocat"}))
	require.NoError(t, s.SetSelectedRepository(ctx, "octocat/solutions"))
	at := time.Date(2025, 2, 2, 2, 2, 2, 0, time.UTC)
	require.NoError(t, s.SetLastPush(ctx, at))

	cred, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, cred.CanPush())
	require.NotNil(t, cred.LastPushAt)
	assert.True(t, cred.LastPushAt.Equal(at))

	require.NoError(t, s.Clear(ctx))
	cred, err = s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, cred.Authenticated())
	assert.Empty(t, cred.SelectedRepository)
}

func TestStore_InstancesAreIsolated(t *testing.T) {
	ctx := context.Background()
	a, b := New(), New()

	require.NoError(t, a.SaveLogin(ctx, &model.Credential{BearerToken: "a"}))

	cred, err := b.Load(ctx)
	require.NoError(t, err)
	assert.False(t, cred.Authenticated())
}

func TestStore_History(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := &model.HistoryEntry{Filename: "a.py", PushedAt: base}
	require.NoError(t, s.Append(ctx, first))
	require.NoError(t, s.Append(ctx, &model.HistoryEntry{Filename: "b.py", PushedAt: base.Add(time.Minute)}))

	list, err := s.List(ctx, repository.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b.py", list[0].Filename)

	found, err := s.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.py", found.Filename)

	_, err = s.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	page, err := s.List(ctx, repository.ListOptions{Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, page)
}
