package storage

import (
	"context"
	"fmt"

	"github.com/good-yellow-bee/kitforge/internal/models"
)

type sqliteProjectRepo struct {
	kv KV
}

func projectKey(folderName string) string {
	return projectPrefix + folderName
}

func (r *sqliteProjectRepo) Get(ctx context.Context, folderName string) (*models.ProjectMetadata, error) {
	p, _, err := getRecord[models.ProjectMetadata](ctx, r.kv, projectKey(folderName))
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", folderName, err)
	}
	return p, nil
}

// Put stores project, replacing whatever is stored under its folder name.
func (r *sqliteProjectRepo) Put(ctx context.Context, project *models.ProjectMetadata) error {
	if project.FolderName == "" {
		return fmt.Errorf("put project: folder name is required")
	}
	_, err := r.Update(ctx, project.FolderName, func(*models.ProjectMetadata) (*models.ProjectMetadata, error) {
		return project.Clone(), nil
	})
	return err
}

func (r *sqliteProjectRepo) Update(ctx context.Context, folderName string, fn ProjectUpdateFunc) (*models.ProjectMetadata, error) {
	p, err := updateRecord(ctx, r.kv, projectKey(folderName), func(current *models.ProjectMetadata) (*models.ProjectMetadata, error) {
		return fn(current)
	})
	if err != nil {
		return nil, fmt.Errorf("update project %s: %w", folderName, err)
	}
	return p, nil
}

func (r *sqliteProjectRepo) Delete(ctx context.Context, folderName string) error {
	if err := r.kv.Delete(ctx, projectKey(folderName)); err != nil {
		return fmt.Errorf("delete project %s: %w", folderName, err)
	}
	return nil
}

func (r *sqliteProjectRepo) List(ctx context.Context) ([]*models.ProjectMetadata, error) {
	return r.ListByPrefix(ctx, "")
}

// ListByPrefix returns projects whose folder name starts with prefix, ordered by folder name.
func (r *sqliteProjectRepo) ListByPrefix(ctx context.Context, prefix string) ([]*models.ProjectMetadata, error) {
	projects, err := listRecords[models.ProjectMetadata](ctx, r.kv, projectKey(prefix))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}
