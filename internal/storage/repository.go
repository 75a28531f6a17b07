// Package storage persists month records in SQLite, one JSON document per
// user and month.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"financas/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get implements docs.DocumentStore. A month that was never saved returns
// (nil, nil).
func (r *SQLiteRepository) Get(ctx context.Context, uid string, key core.MonthKey) (*core.MonthRecord, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM months WHERE user_id = ? AND month_key = ?`,
		uid, key.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query month %s: %w", key, err)
	}

	var rec core.MonthRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode month %s: %w", key, err)
	}
	return &rec, nil
}

// Set implements docs.DocumentStore. The whole document is replaced.
func (r *SQLiteRepository) Set(ctx context.Context, uid string, key core.MonthKey, rec *core.MonthRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode month %s: %w", key, err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO months (user_id, month_key, data, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, month_key) DO UPDATE SET
		   data = excluded.data,
		   updated_at = excluded.updated_at`,
		uid, key.String(), data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save month %s: %w", key, err)
	}
	return nil
}

// ListMonths returns the keys of all saved months for a user, newest first.
func (r *SQLiteRepository) ListMonths(ctx context.Context, uid string) ([]core.MonthKey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month_key FROM months WHERE user_id = ? ORDER BY month_key DESC`, uid)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	defer rows.Close()

	var keys []core.MonthKey
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan month key: %w", err)
		}
		key, err := core.ParseMonthKey(s)
		if err != nil {
			return nil, fmt.Errorf("stored month key %q: %w", s, err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
