package lifecycle

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/kitforge/internal/fsutil"
	"github.com/good-yellow-bee/kitforge/internal/metrics"
	"github.com/good-yellow-bee/kitforge/internal/models"
	"github.com/good-yellow-bee/kitforge/internal/naming"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

// DestroyOptions are the inputs of a project destroy.
type DestroyOptions struct {
	// Name is a folder name or a logical name.
	Name string
	// Kind, when set, is combined with Name to form the folder name.
	Kind models.ComponentKind
	// Dir is searched for untracked folders.
	Dir         string
	Force       bool
	SkipDBSetup bool
	// Interactive allows Choose to resolve ambiguous names.
	Interactive bool
}

// DestroyResult reports a finished destroy.
type DestroyResult struct {
	FolderName string `json:"folderName"`
	Path       string `json:"path"`
	// Tracked is false when an untracked folder was removed.
	Tracked bool `json:"tracked"`
	// AlreadyDestroyed is set when the record was already destroyed and
	// nothing was torn down.
	AlreadyDestroyed bool     `json:"alreadyDestroyed"`
	Purged           bool     `json:"purged"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Destroy removes a project folder and its databases and updates its record:
// deleted with Force, marked destroyed otherwise.
func (e *Engine) Destroy(ctx context.Context, opts DestroyOptions) (res *DestroyResult, err error) {
	started := time.Now()
	kind := string(opts.Kind)
	defer func() {
		outcome := metrics.OutcomeSuccess
		switch {
		case err != nil:
			outcome = metrics.OutcomeFailure
		case res != nil && res.AlreadyDestroyed && !res.Purged:
			outcome = metrics.OutcomeNoop
		}
		e.observe("destroy", kind, outcome, started)
	}()

	if opts.Name == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "a project name is required")
	}
	if opts.Kind != "" && !opts.Kind.IsValid() {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "unknown component type %q", opts.Kind)
	}

	target, err := e.resolveTarget(ctx, opts)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return e.destroyUntracked(ctx, opts)
	}
	kind = string(target.Type)
	return e.destroyTracked(ctx, target, opts)
}

// resolveTarget finds the record to destroy: exact folder name first, then
// name plus type, then a unique folder-name prefix match. A nil result means
// nothing is tracked under the name.
func (e *Engine) resolveTarget(ctx context.Context, opts DestroyOptions) (*models.ProjectMetadata, error) {
	if p, err := e.store.Get(ctx, opts.Name); err != nil || p != nil {
		return p, err
	}
	if opts.Kind != "" {
		return e.store.Get(ctx, naming.FolderName(opts.Name, opts.Kind))
	}

	candidates, err := e.store.ListByPrefix(ctx, opts.Name+"-")
	if err != nil {
		return nil, err
	}
	if len(candidates) > 1 {
		var active []*models.ProjectMetadata
		for _, c := range candidates {
			if c.IsActive() {
				active = append(active, c)
			}
		}
		if len(active) > 0 {
			candidates = active
		}
	}
	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		e.logger.Info("resolved project by prefix", zap.String("name", opts.Name), zap.String("folder", candidates[0].FolderName))
		return candidates[0], nil
	}

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = fmt.Sprintf("%s (%s, %s)", c.FolderName, c.Type, c.Status)
	}
	if opts.Interactive && e.choose != nil {
		i, err := e.choose(fmt.Sprintf("%q matches several projects. Which one should be destroyed?", opts.Name), names)
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= len(candidates) {
			return nil, apperrors.New(apperrors.CodeInvalidArgument, "invalid selection %d", i)
		}
		return candidates[i], nil
	}
	return nil, apperrors.New(apperrors.CodeAmbiguousTarget, "%q matches %d projects: %s", opts.Name, len(candidates), strings.Join(names, ", ")).
		WithHint("pass the full folder name or --type").
		WithMeta("candidates", names)
}

func (e *Engine) destroyTracked(ctx context.Context, p *models.ProjectMetadata, opts DestroyOptions) (*DestroyResult, error) {
	res := &DestroyResult{FolderName: p.FolderName, Path: p.Path, Tracked: true}
	log := e.logger.With(zap.String("folder", p.FolderName))

	if p.Status == models.StatusDestroyed {
		res.AlreadyDestroyed = true
		if opts.Force {
			if err := e.store.Delete(ctx, p.FolderName); err != nil {
				return nil, err
			}
			res.Purged = true
			log.Info("destroyed project record purged")
		}
		return res, nil
	}

	if res.Path == "" {
		dir, err := absDir(opts.Dir)
		if err != nil {
			return nil, err
		}
		res.Path = filepath.Join(dir, p.FolderName)
	}

	if err := e.setStatus(ctx, p.FolderName, models.StatusDestroying); err != nil {
		return nil, err
	}
	if err := e.removeTree(res.Path); err != nil {
		return nil, fmt.Errorf("remove %s: %w", res.Path, err)
	}
	if !opts.SkipDBSetup {
		res.Warnings = e.dropDatabases(ctx, p.FolderName, p.Databases)
	}

	if opts.Force {
		if err := e.store.Delete(ctx, p.FolderName); err != nil {
			return nil, err
		}
		res.Purged = true
	} else if err := e.setStatus(ctx, p.FolderName, models.StatusDestroyed); err != nil {
		return nil, err
	}
	log.Info("project destroyed", zap.String("path", res.Path), zap.Bool("purged", res.Purged))
	return res, nil
}

// destroyUntracked removes a folder that has no record, so that manually
// created or orphaned folders can still be cleaned up.
func (e *Engine) destroyUntracked(ctx context.Context, opts DestroyOptions) (*DestroyResult, error) {
	dir, err := absDir(opts.Dir)
	if err != nil {
		return nil, err
	}
	folders := []string{opts.Name}
	if opts.Kind != "" {
		if f := naming.FolderName(opts.Name, opts.Kind); f != opts.Name {
			folders = append(folders, f)
		}
	}
	for _, folder := range folders {
		if naming.ValidateName(folder) != nil {
			continue
		}
		path := filepath.Join(dir, folder)
		if !fsutil.IsDir(path) {
			continue
		}
		res := &DestroyResult{FolderName: folder, Path: path}
		if err := e.removeTree(path); err != nil {
			return nil, fmt.Errorf("remove %s: %w", path, err)
		}
		if opts.Kind.OwnsData() && !opts.SkipDBSetup {
			res.Warnings = e.dropDatabases(ctx, folder, naming.Databases(folder))
		}
		e.logger.Info("untracked folder removed", zap.String("path", path))
		return res, nil
	}
	return nil, apperrors.New(apperrors.CodeNotFound, "no project named %q is tracked or present in %s", opts.Name, dir).
		WithHint("run 'kitforge list --status=all' to see tracked projects")
}

// dropDatabases drops each database, returning warnings for failures.
func (e *Engine) dropDatabases(ctx context.Context, folder string, dbs *models.Databases) []string {
	names := dbs.Names()
	if len(names) == 0 {
		return nil
	}
	if e.provisioner == nil {
		e.logger.Warn("no database provisioner configured, databases kept", zap.String("folder", folder), zap.Strings("databases", names))
		return []string{"databases kept: no database provisioner configured"}
	}
	var warnings []string
	for _, name := range names {
		if err := e.provisioner.Drop(ctx, name); err != nil {
			e.logger.Warn("could not drop database", zap.String("folder", folder), zap.String("database", name), zap.Error(err))
			e.metrics.ExternalFailure("database")
			warnings = append(warnings, fmt.Sprintf("could not drop database %s: %v", name, err))
		}
	}
	return warnings
}

func absDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve target directory: %w", err)
	}
	return abs, nil
}
