// Package sqlite persists the credential store and the local push history
// in a single SQLite file.
//
// The pure-Go modernc.org/sqlite driver keeps the binary cgo-free, which
// matters because leetpush ships as one static executable next to the
// user's browser.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the connection and implements both
// repository.CredentialRepository and repository.HistoryRepository.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection serialises every credential update, so a push cycle
	// and a logout can never interleave partial writes. It also keeps
	// ":memory:" databases from splitting across pool connections.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS credentials (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating credentials table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS push_history (
			id         TEXT PRIMARY KEY,
			cycle_id   TEXT NOT NULL,
			filename   TEXT NOT NULL,
			repository TEXT NOT NULL,
			outcome    TEXT NOT NULL,
			pushed_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_push_history_pushed_at ON push_history(pushed_at);
	`)
	if err != nil {
		return fmt.Errorf("creating push_history table: %w", err)
	}

	// digest arrived after the first release; older files lack the column.
	if err := db.addColumnIfNotExists("push_history", "digest",
		"TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding digest to push_history: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column only when pragma_table_info says it is
// missing. SQLite has no ADD COLUMN IF NOT EXISTS.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}
