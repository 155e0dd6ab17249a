package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

// Key prefixes separating the record namespaces inside one database.
const (
	projectPrefix   = "projects/"
	workspacePrefix = "workspaces/"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	path string
	db   *sql.DB
	kv   *sqliteKV

	projects   *sqliteProjectRepo
	workspaces *sqliteWorkspaceRepo
}

// NewSQLiteStorage creates a new SQLite storage.
func NewSQLiteStorage(path string) *SQLiteStorage {
	return &SQLiteStorage{path: path}
}

// Open initializes the database connection.
func (s *SQLiteStorage) Open() error {
	ctx := context.Background()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	// busy_timeout lets concurrent CLI processes wait on the write lock instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Keep connection alive

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	s.db = db

	// Initialize repositories
	s.kv = &sqliteKV{db: db}
	s.projects = &sqliteProjectRepo{kv: s.kv}
	s.workspaces = &sqliteWorkspaceRepo{kv: s.kv}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Migrate runs database migrations.
func (s *SQLiteStorage) Migrate() error {
	return migrate(context.Background(), s.db)
}

// KV returns the raw key-value store.
func (s *SQLiteStorage) KV() KV {
	return s.kv
}

// Projects returns the project repository.
func (s *SQLiteStorage) Projects() ProjectRepository {
	return s.projects
}

// Workspaces returns the workspace repository.
func (s *SQLiteStorage) Workspaces() WorkspaceRepository {
	return s.workspaces
}

// OpenAndMigrate opens the store at path and applies pending migrations.
func OpenAndMigrate(path string) (*SQLiteStorage, error) {
	store := NewSQLiteStorage(path)
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("open metadata store at %s: %w", path, err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate metadata store: %w", err)
	}
	return store, nil
}
