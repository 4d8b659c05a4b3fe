package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/model"
	"github.com/sakif/leetpush/internal/repository"
)

// mockHistoryRepo implements repository.HistoryRepository for testing.
type mockHistoryRepo struct {
	entries []model.HistoryEntry
	gotOpts repository.ListOptions
	err     error
}

func (m *mockHistoryRepo) Append(ctx context.Context, entry *model.HistoryEntry) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockHistoryRepo) GetByID(ctx context.Context, id string) (*model.HistoryEntry, error) {
	for i := range m.entries {
		if m.entries[i].ID == id {
			return &m.entries[i], nil
		}
	}
	return nil, apperror.NotFound("history entry", id)
}

func (m *mockHistoryRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.HistoryEntry, error) {
	m.gotOpts = opts
	return m.entries, m.err
}

func TestHistoryService_ListClamps(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"default limit", 0, 0, DefaultListLimit, 0},
		{"negative limit", -5, 0, DefaultListLimit, 0},
		{"capped limit", 500, 10, MaxListLimit, 10},
		{"negative offset", 5, -1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockHistoryRepo{}
			svc := NewHistoryService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

			_, err := svc.List(context.Background(), tt.limit, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, repo.gotOpts.Limit)
			assert.Equal(t, tt.wantOffset, repo.gotOpts.Offset)
		})
	}
}

func TestHistoryService_ListError(t *testing.T) {
	repo := &mockHistoryRepo{err: errors.New("disk full")}
	svc := NewHistoryService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.List(context.Background(), 10, 0)
	assert.ErrorContains(t, err, "disk full")
}

func TestHistoryService_Get(t *testing.T) {
	repo := &mockHistoryRepo{entries: []model.HistoryEntry{{
		ID:       "h1",
		Filename: "0001_Two_Sum.py",
		Outcome:  model.OutcomeCreated,
		PushedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}}
	svc := NewHistoryService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	entry, err := svc.Get(ctx, " h1 ")
	require.NoError(t, err)
	assert.Equal(t, "0001_Two_Sum.py", entry.Filename)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
