package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"eilbot/migrations"
)

const lastEntryKey = "last_entry"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps in-memory databases coherent and
	// sidesteps SQLITE_BUSY under concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// AddSubscriber inserts a chat ID into the subscriber set.
func (s *SQLite) AddSubscriber(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO subscribers (id) VALUES (?)`, chatID,
	)
	if err != nil {
		return fmt.Errorf("add subscriber: %w", err)
	}
	return nil
}

// RemoveSubscriber deletes a chat ID from the subscriber set.
func (s *SQLite) RemoveSubscriber(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM subscribers WHERE id = ?`, chatID,
	)
	if err != nil {
		return fmt.Errorf("remove subscriber: %w", err)
	}
	return nil
}

// ReplaceSubscriber swaps oldID for newID in a single transaction.
func (s *SQLite) ReplaceSubscriber(ctx context.Context, oldID, newID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subscribers WHERE id = ?`, oldID); err != nil {
		return fmt.Errorf("remove old subscriber: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO subscribers (id) VALUES (?)`, newID); err != nil {
		return fmt.Errorf("add new subscriber: %w", err)
	}
	return tx.Commit()
}

// IsSubscriber checks whether a chat ID is in the subscriber set.
func (s *SQLite) IsSubscriber(ctx context.Context, chatID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscribers WHERE id = ?`, chatID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check subscriber: %w", err)
	}
	return count > 0, nil
}

// Subscribers returns a snapshot of all subscribed chat IDs.
func (s *SQLite) Subscribers(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM subscribers`)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LastSeen returns the stored last-entry marker, or "" when unset.
func (s *SQLite) LastSeen(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM system WHERE key = ?`, lastEntryKey,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get last entry: %w", err)
	}
	return value, nil
}

// SetLastSeen overwrites the last-entry marker.
func (s *SQLite) SetLastSeen(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO system (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastEntryKey, id,
	)
	if err != nil {
		return fmt.Errorf("set last entry: %w", err)
	}
	return nil
}
