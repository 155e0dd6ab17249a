package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/good-yellow-bee/kitforge/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "projects.db")
	store, err := OpenAndMigrate(dbPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStorage_Migrate(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	for _, table := range []string{"kv", "schema_migrations"} {
		var count int
		err := store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
		if err != nil {
			t.Errorf("table %s should exist: %v", table, err)
		}
	}

	// Re-running is a no-op.
	if err := store.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var version, rows int
	if err := store.db.QueryRowContext(ctx, "SELECT MAX(version), COUNT(*) FROM schema_migrations").Scan(&version, &rows); err != nil {
		t.Fatalf("read schema_migrations: %v", err)
	}
	if version != len(schemaSteps) || rows != len(schemaSteps) {
		t.Errorf("schema version %d with %d rows, want %d", version, rows, len(schemaSteps))
	}
}

func TestKV_ConditionalPut(t *testing.T) {
	store := setupTestDB(t)
	kv := store.KV()
	ctx := context.Background()

	if err := kv.Put(ctx, "projects/a", []byte(`{"v":1}`), 0); err != nil {
		t.Fatalf("initial put: %v", err)
	}
	// Creating again must fail: the key exists.
	if err := kv.Put(ctx, "projects/a", []byte(`{"v":2}`), 0); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("duplicate create = %v, want ErrVersionConflict", err)
	}

	_, version, found, err := kv.Get(ctx, "projects/a")
	if err != nil || !found || version != 1 {
		t.Fatalf("get = version %d found %v err %v", version, found, err)
	}

	if err := kv.Put(ctx, "projects/a", []byte(`{"v":2}`), version); err != nil {
		t.Fatalf("conditional put: %v", err)
	}
	// The old version is now stale.
	if err := kv.Put(ctx, "projects/a", []byte(`{"v":3}`), version); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale put = %v, want ErrVersionConflict", err)
	}

	value, version, _, _ := kv.Get(ctx, "projects/a")
	if string(value) != `{"v":2}` || version != 2 {
		t.Errorf("value = %s version = %d", value, version)
	}
}

func TestKV_ListPrefixAndDelete(t *testing.T) {
	store := setupTestDB(t)
	kv := store.KV()
	ctx := context.Background()

	for _, key := range []string{"projects/shop-api", "projects/shop-admin-ui", "projects/blog-api", "workspaces/shop", "projects/shop_x"} {
		if err := kv.Put(ctx, key, []byte(`{}`), 0); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	entries, err := kv.List(ctx, "projects/shop-")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (underscore must not act as a wildcard)", len(entries))
	}
	if entries[0].Key != "projects/shop-admin-ui" || entries[1].Key != "projects/shop-api" {
		t.Errorf("unexpected order: %s, %s", entries[0].Key, entries[1].Key)
	}

	if err := kv.Delete(ctx, "projects/shop-api"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := kv.Delete(ctx, "projects/shop-api"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	_, _, found, _ := kv.Get(ctx, "projects/shop-api")
	if found {
		t.Error("key should be deleted")
	}
}

func TestProjectRepository_CRUD(t *testing.T) {
	store := setupTestDB(t)
	repo := store.Projects()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	project := &models.ProjectMetadata{
		Name:       "my-shop",
		Type:       models.KindAPI,
		FolderName: "my-shop-api",
		Path:       "/tmp/my-shop-api",
		Databases:  &models.Databases{Dev: "my_shop_api_dev", Test: "my_shop_api_test", Prod: "my_shop_api_prod"},
		Status:     models.StatusCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := repo.Put(ctx, project); err != nil {
		t.Fatalf("put project: %v", err)
	}

	got, err := repo.Get(ctx, "my-shop-api")
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got == nil {
		t.Fatal("project should exist")
	}
	if got.Name != "my-shop" || got.Databases.Dev != "my_shop_api_dev" || !got.CreatedAt.Equal(now) {
		t.Errorf("got = %+v", got)
	}

	missing, err := repo.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("missing project = %v, %v", missing, err)
	}

	// Update
	updated, err := repo.Update(ctx, "my-shop-api", func(cur *models.ProjectMetadata) (*models.ProjectMetadata, error) {
		cur.Status = models.StatusDestroyed
		return cur, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != models.StatusDestroyed {
		t.Errorf("status = %s", updated.Status)
	}

	// List
	if err := repo.Put(ctx, &models.ProjectMetadata{Name: "my-shop", Type: models.KindAdminUI, FolderName: "my-shop-admin-ui"}); err != nil {
		t.Fatalf("put second: %v", err)
	}
	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("projects count = %d, want 2", len(all))
	}
	byPrefix, err := repo.ListByPrefix(ctx, "my-shop-a")
	if err != nil {
		t.Fatalf("list by prefix: %v", err)
	}
	if len(byPrefix) != 2 {
		t.Errorf("prefix count = %d, want 2", len(byPrefix))
	}

	// Delete
	if err := repo.Delete(ctx, "my-shop-api"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = repo.Get(ctx, "my-shop-api")
	if got != nil {
		t.Error("project should be deleted")
	}
}

func TestProjectRepository_UpdateRetriesOnConflict(t *testing.T) {
	store := setupTestDB(t)
	repo := store.Projects()
	kv := store.KV()
	ctx := context.Background()

	if err := repo.Put(ctx, &models.ProjectMetadata{FolderName: "shop-api", Status: models.StatusCreating}); err != nil {
		t.Fatalf("put: %v", err)
	}

	attempts := 0
	got, err := repo.Update(ctx, "shop-api", func(cur *models.ProjectMetadata) (*models.ProjectMetadata, error) {
		attempts++
		if attempts == 1 {
			// A concurrent writer bumps the version between our read and write.
			_, version, _, _ := kv.Get(ctx, projectKey("shop-api"))
			if err := kv.Put(ctx, projectKey("shop-api"), []byte(`{"folderName":"shop-api","name":"other","status":"creating"}`), version); err != nil {
				t.Fatalf("concurrent put: %v", err)
			}
		}
		cur.Status = models.StatusCreated
		return cur, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	// The retry re-read the concurrent writer's value rather than clobbering it.
	if got.Name != "other" || got.Status != models.StatusCreated {
		t.Errorf("got = %+v", got)
	}
}

func TestProjectRepository_UpdateGivesUp(t *testing.T) {
	store := setupTestDB(t)
	kv := store.KV()
	ctx := context.Background()

	_, err := store.Projects().Update(ctx, "busy-api", func(cur *models.ProjectMetadata) (*models.ProjectMetadata, error) {
		// Someone always wins the race.
		_, version, _, _ := kv.Get(ctx, projectKey("busy-api"))
		_ = kv.Put(ctx, projectKey("busy-api"), []byte(`{"folderName":"busy-api"}`), version)
		return &models.ProjectMetadata{FolderName: "busy-api"}, nil
	})
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("err = %v, want ErrVersionConflict", err)
	}
}

func TestProjectRepository_UpdateAbortsOnFuncError(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	sentinel := errors.New("stop")

	_, err := store.Projects().Update(ctx, "x-api", func(*models.ProjectMetadata) (*models.ProjectMetadata, error) {
		return nil, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
	got, _ := store.Projects().Get(ctx, "x-api")
	if got != nil {
		t.Error("nothing should have been written")
	}
}

func TestWorkspaceRepository_CRUD(t *testing.T) {
	store := setupTestDB(t)
	repo := store.Workspaces()
	ctx := context.Background()

	_, err := repo.Update(ctx, "acme", func(cur *models.WorkspaceMetadata) (*models.WorkspaceMetadata, error) {
		if cur != nil {
			t.Fatal("workspace should not exist yet")
		}
		return &models.WorkspaceMetadata{Name: "acme", Status: models.WorkspaceCreating}, nil
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = repo.Update(ctx, "acme", func(cur *models.WorkspaceMetadata) (*models.WorkspaceMetadata, error) {
		cur.Projects = append(cur.Projects, models.WorkspaceProject{FolderName: "acme-api", Type: models.KindAPI})
		return cur, nil
	})
	if err != nil {
		t.Fatalf("append project: %v", err)
	}

	got, err := repo.Get(ctx, "acme")
	if err != nil || got == nil {
		t.Fatalf("get: %v, %v", got, err)
	}
	if len(got.Projects) != 1 || got.Projects[0].FolderName != "acme-api" {
		t.Errorf("projects = %+v", got.Projects)
	}

	// Workspace records do not leak into the project namespace.
	projects, _ := store.Projects().List(ctx)
	if len(projects) != 0 {
		t.Errorf("project list contains %d workspace records", len(projects))
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %d, %v", len(list), err)
	}
	if err := repo.Delete(ctx, "acme"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = repo.Get(ctx, "acme")
	if got != nil {
		t.Error("workspace should be deleted")
	}
}

func TestSQLiteStorage_TwoHandlesShareState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.db")
	a, err := OpenAndMigrate(path)
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	defer a.Close()
	b, err := OpenAndMigrate(path)
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	defer b.Close()

	ctx := context.Background()
	if err := a.Projects().Put(ctx, &models.ProjectMetadata{FolderName: "shared-api", Status: models.StatusCreated}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := b.Projects().Get(ctx, "shared-api")
	if err != nil || got == nil {
		t.Fatalf("second handle get = %v, %v", got, err)
	}
}
