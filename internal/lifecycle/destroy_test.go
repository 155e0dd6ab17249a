package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/good-yellow-bee/kitforge/internal/models"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

func TestDestroy_ForcePurges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, CreateOptions{Name: "my-shop", Kind: models.KindAPI, Dir: f.dir})
	require.NoError(t, err)

	res, err := f.engine.Destroy(ctx, DestroyOptions{Name: "my-shop-api", Dir: f.dir, Force: true})
	require.NoError(t, err)
	assert.True(t, res.Tracked)
	assert.True(t, res.Purged)
	assert.NoDirExists(t, filepath.Join(f.dir, "my-shop-api"))
	assert.Empty(t, f.dbs.Names())
	assert.Len(t, f.dbs.Dropped, 3)

	p, err := f.store.Projects().Get(ctx, "my-shop-api")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDestroy_KeepsDestroyedRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, CreateOptions{Name: "shop", Kind: models.KindStatus, Dir: f.dir})
	require.NoError(t, err)

	res, err := f.engine.Destroy(ctx, DestroyOptions{Name: "shop-status", Dir: f.dir})
	require.NoError(t, err)
	assert.False(t, res.Purged)

	p, err := f.store.Projects().Get(ctx, "shop-status")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, models.StatusDestroyed, p.Status)

	again, err := f.engine.Destroy(ctx, DestroyOptions{Name: "shop-status", Dir: f.dir})
	require.NoError(t, err)
	assert.True(t, again.AlreadyDestroyed)
	assert.False(t, again.Purged)

	purged, err := f.engine.Destroy(ctx, DestroyOptions{Name: "shop-status", Dir: f.dir, Force: true})
	require.NoError(t, err)
	assert.True(t, purged.AlreadyDestroyed)
	assert.True(t, purged.Purged)
	p, _ = f.store.Projects().Get(ctx, "shop-status")
	assert.Nil(t, p)
}

func TestDestroy_FolderAlreadyGone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.engine.Create(ctx, CreateOptions{Name: "shop", Kind: models.KindAPI, Dir: f.dir})
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(created.Project.Path))

	res, err := f.engine.Destroy(ctx, DestroyOptions{Name: "shop-api", Force: true})
	require.NoError(t, err)
	assert.True(t, res.Purged)
	p, _ := f.store.Projects().Get(ctx, "shop-api")
	assert.Nil(t, p)
}

func TestDestroy_ByNameAndType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, kind := range []models.ComponentKind{models.KindAPI, models.KindStore} {
		_, err := f.engine.Create(ctx, CreateOptions{Name: "shop", Kind: kind, Dir: f.dir, SkipDBSetup: true})
		require.NoError(t, err)
	}

	res, err := f.engine.Destroy(ctx, DestroyOptions{Name: "shop", Kind: models.KindStore, Dir: f.dir, Force: true})
	require.NoError(t, err)
	assert.Equal(t, "shop-store", res.FolderName)
	assert.DirExists(t, filepath.Join(f.dir, "shop-api"))
}

func TestDestroy_Ambiguous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, kind := range []models.ComponentKind{models.KindAPI, models.KindAdminUI} {
		_, err := f.engine.Create(ctx, CreateOptions{Name: "shop", Kind: kind, Dir: f.dir, SkipDBSetup: true})
		require.NoError(t, err)
	}

	_, err := f.engine.Destroy(ctx, DestroyOptions{Name: "shop", Dir: f.dir, Force: true})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAmbiguousTarget), "err = %v", err)

	for _, folder := range []string{"shop-api", "shop-admin-ui"} {
		assert.DirExists(t, filepath.Join(f.dir, folder))
		p, err := f.store.Projects().Get(ctx, folder)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCreated, p.Status)
	}
}

func TestDestroy_AmbiguousInteractive(t *testing.T) {
	var offered []string
	f := newFixture(t, func(o *Options) {
		o.Choose = func(_ string, options []string) (int, error) {
			offered = options
			return 1, nil
		}
	})
	ctx := context.Background()

	for _, kind := range []models.ComponentKind{models.KindAPI, models.KindAdminUI} {
		_, err := f.engine.Create(ctx, CreateOptions{Name: "shop", Kind: kind, Dir: f.dir, SkipDBSetup: true})
		require.NoError(t, err)
	}

	res, err := f.engine.Destroy(ctx, DestroyOptions{Name: "shop", Dir: f.dir, Interactive: true, SkipDBSetup: true})
	require.NoError(t, err)
	require.Len(t, offered, 2)
	// Candidates are ordered by folder name.
	assert.Equal(t, "shop-api", res.FolderName)
	assert.DirExists(t, filepath.Join(f.dir, "shop-admin-ui"))
}

func TestDestroy_PrefixPrefersActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, kind := range []models.ComponentKind{models.KindAPI, models.KindStore} {
		_, err := f.engine.Create(ctx, CreateOptions{Name: "shop", Kind: kind, Dir: f.dir, SkipDBSetup: true})
		require.NoError(t, err)
	}
	_, err := f.engine.Destroy(ctx, DestroyOptions{Name: "shop-api", Dir: f.dir, SkipDBSetup: true})
	require.NoError(t, err)

	res, err := f.engine.Destroy(ctx, DestroyOptions{Name: "shop", Dir: f.dir})
	require.NoError(t, err)
	assert.Equal(t, "shop-store", res.FolderName)
}

func TestDestroy_Untracked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	manual := filepath.Join(f.dir, "legacy-api")
	require.NoError(t, os.MkdirAll(filepath.Join(manual, "src"), 0o755))
	f.dbs.Databases["legacy_api_dev"] = true

	res, err := f.engine.Destroy(ctx, DestroyOptions{Name: "legacy", Kind: models.KindAPI, Dir: f.dir})
	require.NoError(t, err)
	assert.False(t, res.Tracked)
	assert.Equal(t, "legacy-api", res.FolderName)
	assert.NoDirExists(t, manual)
	assert.Equal(t, []string{"legacy_api_dev"}, f.dbs.Dropped)
}

func TestDestroy_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Destroy(context.Background(), DestroyOptions{Name: "ghost", Dir: f.dir})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound), "err = %v", err)

	_, err = f.engine.Destroy(context.Background(), DestroyOptions{Name: "../etc", Dir: f.dir})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound), "err = %v", err)
}

func TestDestroy_DatabaseFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, CreateOptions{Name: "shop", Kind: models.KindAPI, Dir: f.dir})
	require.NoError(t, err)
	f.dbs.Err = errors.New("server closed the connection")

	res, err := f.engine.Destroy(ctx, DestroyOptions{Name: "shop-api", Dir: f.dir})
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 3)
	p, _ := f.store.Projects().Get(ctx, "shop-api")
	assert.Equal(t, models.StatusDestroyed, p.Status)
}

func TestDestroy_SkipDBSetup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, CreateOptions{Name: "shop", Kind: models.KindAPI, Dir: f.dir})
	require.NoError(t, err)

	_, err = f.engine.Destroy(ctx, DestroyOptions{Name: "shop-api", Dir: f.dir, SkipDBSetup: true, Force: true})
	require.NoError(t, err)
	assert.Len(t, f.dbs.Names(), 3)
}

func TestDestroy_FilesystemErrorLeavesDestroying(t *testing.T) {
	removeErr := errors.New("permission denied")
	f := newFixture(t, func(o *Options) {
		o.RemoveTree = func(string) error { return removeErr }
	})
	ctx := context.Background()

	_, err := f.engine.Create(ctx, CreateOptions{Name: "my-shop", Kind: models.KindAPI, Dir: f.dir})
	require.NoError(t, err)

	res, err := f.engine.Destroy(ctx, DestroyOptions{Name: "my-shop-api", Dir: f.dir, Force: true})
	require.ErrorIs(t, err, removeErr)
	assert.Nil(t, res)

	p, err := f.store.Projects().Get(ctx, "my-shop-api")
	require.NoError(t, err)
	require.NotNil(t, p, "record must not be purged")
	assert.Equal(t, models.StatusDestroying, p.Status)
	assert.DirExists(t, filepath.Join(f.dir, "my-shop-api"))
	assert.Empty(t, f.dbs.Dropped)
	assert.Len(t, f.dbs.Names(), 3)
}
