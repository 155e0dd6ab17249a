// Package storage provides the persistent metadata store for projects and workspaces.
package storage

import (
	"context"
	"errors"

	"github.com/good-yellow-bee/kitforge/internal/models"
)

// ErrVersionConflict is returned by a conditional write whose expected version
// no longer matches the stored one.
var ErrVersionConflict = errors.New("storage: version conflict")

// maxUpdateAttempts bounds the optimistic read-modify-write loop.
const maxUpdateAttempts = 10

// Storage is the main interface for metadata operations.
type Storage interface {
	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error

	// Repository accessors
	Projects() ProjectRepository
	Workspaces() WorkspaceRepository
}

// KV is an ordered key-value mapping with versioned conditional writes.
type KV interface {
	// Get returns the value and version stored at key.
	Get(ctx context.Context, key string) (value []byte, version int64, found bool, err error)
	// Put writes value if the stored version equals expected. An expected
	// version of 0 requires the key to be absent.
	Put(ctx context.Context, key string, value []byte, expected int64) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns all entries whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Entry, error)
}

// Entry is a single stored key-value pair.
type Entry struct {
	Key     string
	Value   []byte
	Version int64
}

// ProjectUpdateFunc computes a new record from the current one (nil when absent).
type ProjectUpdateFunc func(current *models.ProjectMetadata) (*models.ProjectMetadata, error)

// WorkspaceUpdateFunc computes a new record from the current one (nil when absent).
type WorkspaceUpdateFunc func(current *models.WorkspaceMetadata) (*models.WorkspaceMetadata, error)

// ProjectRepository defines operations on project records, keyed by folder name.
type ProjectRepository interface {
	Get(ctx context.Context, folderName string) (*models.ProjectMetadata, error)
	Put(ctx context.Context, project *models.ProjectMetadata) error
	Update(ctx context.Context, folderName string, fn ProjectUpdateFunc) (*models.ProjectMetadata, error)
	Delete(ctx context.Context, folderName string) error
	List(ctx context.Context) ([]*models.ProjectMetadata, error)
	ListByPrefix(ctx context.Context, prefix string) ([]*models.ProjectMetadata, error)
}

// WorkspaceRepository defines operations on workspace records, keyed by name.
type WorkspaceRepository interface {
	Get(ctx context.Context, name string) (*models.WorkspaceMetadata, error)
	Update(ctx context.Context, name string, fn WorkspaceUpdateFunc) (*models.WorkspaceMetadata, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]*models.WorkspaceMetadata, error)
}
