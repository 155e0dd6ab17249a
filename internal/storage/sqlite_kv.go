package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type sqliteKV struct {
	db *sql.DB
}

func (k *sqliteKV) Get(ctx context.Context, key string) ([]byte, int64, bool, error) {
	var value string
	var version int64
	err := k.db.QueryRowContext(ctx, "SELECT value, version FROM kv WHERE key = ?", key).Scan(&value, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), version, true, nil
}

func (k *sqliteKV) Put(ctx context.Context, key string, value []byte, expected int64) error {
	var (
		result sql.Result
		err    error
	)
	now := time.Now().UTC()
	if expected == 0 {
		result, err = k.db.ExecContext(ctx, `
			INSERT INTO kv (key, value, version, updated_at)
			VALUES (?, ?, 1, ?)
			ON CONFLICT(key) DO NOTHING
		`, key, string(value), now)
	} else {
		result, err = k.db.ExecContext(ctx, `
			UPDATE kv SET value = ?, version = version + 1, updated_at = ?
			WHERE key = ? AND version = ?
		`, string(value), now, key, expected)
	}
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	if rows == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (k *sqliteKV) Delete(ctx context.Context, key string) error {
	if _, err := k.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (k *sqliteKV) List(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := k.db.QueryContext(ctx,
		`SELECT key, value, version FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY key`,
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var value string
		if err := rows.Scan(&e.Key, &value, &e.Version); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Value = []byte(value)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
