package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/model"
	"github.com/sakif/leetpush/internal/repository"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// HistoryService reads the local push history.
type HistoryService struct {
	repo   repository.HistoryRepository
	logger *slog.Logger
}

func NewHistoryService(repo repository.HistoryRepository, logger *slog.Logger) *HistoryService {
	return &HistoryService{repo: repo, logger: logger}
}

// List returns pushes newest first. limit is clamped to 1-100 (default 20)
// and a negative offset is treated as 0.
func (s *HistoryService) List(ctx context.Context, limit, offset int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.repo.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list push history", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing push history: %w", err)
	}
	return entries, nil
}

func (s *HistoryService) Get(ctx context.Context, id string) (*model.HistoryEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "history entry ID is required")
	}
	return s.repo.GetByID(ctx, id)
}
