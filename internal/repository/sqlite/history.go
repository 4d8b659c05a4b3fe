package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/model"
	"github.com/sakif/leetpush/internal/repository"
)

var _ repository.HistoryRepository = (*DB)(nil)

const defaultHistoryLimit = 50

// Append stores a history entry, assigning an xid when ID is empty.
func (db *DB) Append(ctx context.Context, entry *model.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = xid.New().String()
	}
	if entry.PushedAt.IsZero() {
		entry.PushedAt = time.Now()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO push_history (id, cycle_id, filename, repository, outcome, digest, pushed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.CycleID,
		entry.Filename,
		entry.Repository,
		string(entry.Outcome),
		entry.Digest,
		entry.PushedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting history entry %s: %w", entry.Filename, err)
	}
	return nil
}

func (db *DB) GetByID(ctx context.Context, id string) (*model.HistoryEntry, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, cycle_id, filename, repository, outcome, digest, pushed_at
		 FROM push_history WHERE id = ?`, id)

	e, err := scanHistory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("history entry", id)
		}
		return nil, fmt.Errorf("sqlite: getting history entry %s: %w", id, err)
	}
	return e, nil
}

// List returns entries newest first.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.HistoryEntry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, cycle_id, filename, repository, outcome, digest, pushed_at
		 FROM push_history ORDER BY pushed_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing history: %w", err)
	}
	defer rows.Close()

	entries := []model.HistoryEntry{}
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning history row: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating history rows: %w", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHistory(s scanner) (*model.HistoryEntry, error) {
	var e model.HistoryEntry
	var outcome string
	if err := s.Scan(&e.ID, &e.CycleID, &e.Filename, &e.Repository, &outcome, &e.Digest, &e.PushedAt); err != nil {
		return nil, err
	}
	e.Outcome = model.PushOutcome(outcome)
	return &e, nil
}
