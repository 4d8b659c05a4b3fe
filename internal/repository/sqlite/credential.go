package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/leetpush/internal/model"
	"github.com/sakif/leetpush/internal/repository"
)

var _ repository.CredentialRepository = (*DB)(nil)

// Load reads every credential key. A fresh database yields an empty record.
func (db *DB) Load(ctx context.Context) (*model.Credential, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT key, value FROM credentials`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading credentials: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, len(repository.CredentialKeys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("sqlite: scanning credential row: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating credential rows: %w", err)
	}

	return repository.FromValues(values), nil
}

// SaveLogin replaces the whole record in one transaction.
func (db *DB) SaveLogin(ctx context.Context, cred *model.Credential) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
			return fmt.Errorf("clearing credentials: %w", err)
		}
		return putAll(ctx, tx, repository.Values(cred))
	})
}

func (db *DB) SetSelectedRepository(ctx context.Context, repo string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return putAll(ctx, tx, map[string]string{repository.KeySelectedRepo: repo})
	})
}

func (db *DB) SetLastPush(ctx context.Context, at time.Time) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return putAll(ctx, tx, map[string]string{repository.KeyLastPush: repository.FormatTime(at)})
	})
}

func (db *DB) ApplyProfile(ctx context.Context, p *model.Profile) error {
	values := repository.ProfileValues(p)
	if len(values) == 0 {
		return nil
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return putAll(ctx, tx, values)
	})
}

// Clear removes the whole record (logout).
func (db *DB) Clear(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("sqlite: clearing credentials: %w", err)
	}
	return nil
}

func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

func putAll(ctx context.Context, tx *sql.Tx, values map[string]string) error {
	now := time.Now().UTC()
	for k, v := range values {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, v, now,
		)
		if err != nil {
			return fmt.Errorf("writing credential %s: %w", k, err)
		}
	}
	return nil
}
