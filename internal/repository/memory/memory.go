// Package memory is an in-process credential and history store. Each Store
// is isolated, so tests and --ephemeral daemons never share state.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/model"
	"github.com/sakif/leetpush/internal/repository"
)

var (
	_ repository.CredentialRepository = (*Store)(nil)
	_ repository.HistoryRepository    = (*Store)(nil)
)

type Store struct {
	mu      sync.Mutex
	values  map[string]string
	history []model.HistoryEntry
}

func New() *Store {
	return &Store{values: map[string]string{}}
}

func (s *Store) Load(ctx context.Context) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return repository.FromValues(s.values), nil
}

func (s *Store) SaveLogin(ctx context.Context, cred *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = repository.Values(cred)
	return nil
}

func (s *Store) SetSelectedRepository(ctx context.Context, repo string) error {
	s.put(map[string]string{repository.KeySelectedRepo: repo})
	return nil
}

func (s *Store) SetLastPush(ctx context.Context, at time.Time) error {
	s.put(map[string]string{repository.KeyLastPush: repository.FormatTime(at)})
	return nil
}

func (s *Store) ApplyProfile(ctx context.Context, p *model.Profile) error {
	s.put(repository.ProfileValues(p))
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]string{}
	return nil
}

func (s *Store) put(values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
}

func (s *Store) Append(ctx context.Context, entry *model.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = xid.New().String()
	}
	if entry.PushedAt.IsZero() {
		entry.PushedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, *entry)
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.history {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, apperror.NotFound("history entry", id)
}

func (s *Store) List(ctx context.Context, opts repository.ListOptions) ([]model.HistoryEntry, error) {
	s.mu.Lock()
	entries := make([]model.HistoryEntry, len(s.history))
	copy(entries, s.history)
	s.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PushedAt.After(entries[j].PushedAt)
	})

	if opts.Offset >= len(entries) {
		return []model.HistoryEntry{}, nil
	}
	entries = entries[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(entries) {
		entries = entries[:opts.Limit]
	}
	return entries, nil
}
