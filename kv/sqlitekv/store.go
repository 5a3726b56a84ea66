// Package sqlitekv is the durable kv.Store: one SQLite file per data folder.
package sqlitekv

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/kv"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

var _ kv.Store = (*Store)(nil)

// Store provides SQLite-backed local storage.
type Store struct {
	kv.Notifier

	sqlDB *sql.DB
	quota int64
}

// Open opens and migrates the store at path. quota bounds the summed byte
// size of keys and values; 0 disables the bound.
func Open(path string, quota int64) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Single writer. Cart read-modify-write cycles from different processes
	// can still interleave; only individual statements are serialized.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, quota: quota}
	if err := applyMigrations(sqlDB, migrationFS, "migrations"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s == nil || s.sqlDB == nil {
		return "", false, fmt.Errorf("storage is not configured")
	}

	var value string
	row := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM entries WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get entry: %w", err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if key == "" {
		return fmt.Errorf("key is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if s.quota > 0 {
		used, err := usedInScope(ctx, tx, key)
		if err != nil {
			return err
		}
		if used+kv.EntrySize(key, value) > s.quota {
			return sferrors.ErrQuotaExceeded
		}
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		    value = excluded.value,
		    updated_at = excluded.updated_at`,
		key,
		value,
		time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("put entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entry: %w", err)
	}

	s.Notify(kv.Event{Key: key})
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		s.Notify(kv.Event{Key: key, Deleted: true})
	}
	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT key FROM entries WHERE substr(CAST(key AS BLOB), 1, ?) = CAST(? AS BLOB) ORDER BY key`,
		len(prefix),
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

const (
	usedInProfileQuery = `SELECT COALESCE(SUM(LENGTH(CAST(key AS BLOB)) + LENGTH(CAST(value AS BLOB))), 0)
		 FROM entries
		 WHERE key <> ? AND substr(CAST(key AS BLOB), 1, ?) = CAST(? AS BLOB)`
	usedOutsideProfilesQuery = `SELECT COALESCE(SUM(LENGTH(CAST(key AS BLOB)) + LENGTH(CAST(value AS BLOB))), 0)
		 FROM entries
		 WHERE key <> ? AND substr(CAST(key AS BLOB), 1, ?) <> CAST(? AS BLOB)`
)

// usedInScope sums the entries that share key's quota, key itself excluded.
// Prefixes are compared as bytes to match the byte lengths passed in.
func usedInScope(ctx context.Context, tx *sql.Tx, key string) (int64, error) {
	query, prefix := usedInProfileQuery, kv.QuotaScope(key)
	if prefix == "" {
		query, prefix = usedOutsideProfilesQuery, kv.ProfileKeyPrefix
	}

	var used int64
	if err := tx.QueryRowContext(ctx, query, key, len(prefix), prefix).Scan(&used); err != nil {
		return 0, fmt.Errorf("measure storage: %w", err)
	}
	return used, nil
}
