package storage

import (
	"context"
	"fmt"

	"github.com/good-yellow-bee/kitforge/internal/models"
)

type sqliteWorkspaceRepo struct {
	kv KV
}

func workspaceKey(name string) string {
	return workspacePrefix + name
}

func (r *sqliteWorkspaceRepo) Get(ctx context.Context, name string) (*models.WorkspaceMetadata, error) {
	w, _, err := getRecord[models.WorkspaceMetadata](ctx, r.kv, workspaceKey(name))
	if err != nil {
		return nil, fmt.Errorf("get workspace %s: %w", name, err)
	}
	return w, nil
}

func (r *sqliteWorkspaceRepo) Update(ctx context.Context, name string, fn WorkspaceUpdateFunc) (*models.WorkspaceMetadata, error) {
	w, err := updateRecord(ctx, r.kv, workspaceKey(name), func(current *models.WorkspaceMetadata) (*models.WorkspaceMetadata, error) {
		return fn(current)
	})
	if err != nil {
		return nil, fmt.Errorf("update workspace %s: %w", name, err)
	}
	return w, nil
}

func (r *sqliteWorkspaceRepo) Delete(ctx context.Context, name string) error {
	if err := r.kv.Delete(ctx, workspaceKey(name)); err != nil {
		return fmt.Errorf("delete workspace %s: %w", name, err)
	}
	return nil
}

func (r *sqliteWorkspaceRepo) List(ctx context.Context) ([]*models.WorkspaceMetadata, error) {
	workspaces, err := listRecords[models.WorkspaceMetadata](ctx, r.kv, workspacePrefix)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return workspaces, nil
}
