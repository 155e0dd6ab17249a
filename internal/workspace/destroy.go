package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/kitforge/internal/fsutil"
	"github.com/good-yellow-bee/kitforge/internal/lifecycle"
	"github.com/good-yellow-bee/kitforge/internal/metrics"
	"github.com/good-yellow-bee/kitforge/internal/models"
	"github.com/good-yellow-bee/kitforge/internal/naming"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

// DestroyOptions are the inputs of a workspace destroy.
type DestroyOptions struct {
	Name string
	// Force purges the project records instead of marking them destroyed.
	Force        bool
	DeleteRemote bool
	SkipDBSetup  bool
}

// DestroyResult reports a finished workspace destroy.
type DestroyResult struct {
	Name              string   `json:"name"`
	Path              string   `json:"path"`
	ProjectsDestroyed int      `json:"projectsDestroyed"`
	ReposDeleted      int      `json:"reposDeleted"`
	Warnings          []string `json:"warnings,omitempty"`
}

// Destroy tears a workspace down in reverse: remote repositories, projects,
// the workspace directory and finally the record. Every step is attempted
// even when an earlier one failed.
func (o *Orchestrator) Destroy(ctx context.Context, opts DestroyOptions) (res *DestroyResult, err error) {
	started := time.Now()
	defer func() {
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeFailure
		}
		o.metrics.ObserveOperation("workspace_destroy", string(models.KindWorkspace), outcome, time.Since(started))
	}()

	ws, err := o.store.Get(ctx, opts.Name)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "workspace %s is not tracked", opts.Name).
			WithHint("run 'kitforge workspace list' to see tracked workspaces")
	}
	if opts.DeleteRemote && len(ws.GitHubRepos) > 0 && o.remote == nil {
		return nil, apperrors.New(apperrors.CodeExternalToolUnavailable, "cannot delete remote repositories: no provider is available").
			WithHint("set KITFORGE_GITHUB_TOKEN (or GITHUB_TOKEN), install gh, or drop --delete-remote")
	}

	root, err := filepath.Abs(ws.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace path: %w", err)
	}
	res = &DestroyResult{Name: ws.Name, Path: root}
	log := o.logger.With(zap.String("workspace", ws.Name))
	warn := func(msg string, err error) {
		log.Warn(msg, zap.Error(err))
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", msg, err))
	}

	if _, err := o.update(ctx, ws.Name, func(w *models.WorkspaceMetadata) { w.Status = models.WorkspaceDestroying }); err != nil {
		warn("could not mark workspace destroying", err)
	}

	if opts.DeleteRemote {
		for _, repo := range ws.GitHubRepos {
			if err := o.remote.DeleteRepo(ctx, ws.Namespace, repo.Name); err != nil {
				o.metrics.ExternalFailure("remote")
				warn("delete remote repository "+repo.Name, err)
				continue
			}
			res.ReposDeleted++
		}
	}

	for i := len(ws.Projects) - 1; i >= 0; i-- {
		p := ws.Projects[i]
		pr, err := o.projects.Destroy(ctx, lifecycle.DestroyOptions{
			Name:        p.FolderName,
			Dir:         root,
			Force:       opts.Force,
			SkipDBSetup: opts.SkipDBSetup,
		})
		if err != nil {
			warn("destroy project "+p.FolderName, err)
			continue
		}
		res.ProjectsDestroyed++
		res.Warnings = append(res.Warnings, pr.Warnings...)
	}

	// Components that failed part way never joined ws.Projects but may
	// still have a record inside the workspace.
	for _, folder := range o.strayProjects(ctx, ws, root) {
		pr, err := o.projects.Destroy(ctx, lifecycle.DestroyOptions{
			Name:        folder,
			Dir:         root,
			Force:       opts.Force,
			SkipDBSetup: opts.SkipDBSetup,
		})
		if err != nil {
			warn("destroy project "+folder, err)
			continue
		}
		res.ProjectsDestroyed++
		res.Warnings = append(res.Warnings, pr.Warnings...)
	}

	if err := fsutil.RemoveTree(root); err != nil {
		warn("remove "+root, err)
	}
	if err := o.store.Delete(ctx, ws.Name); err != nil {
		return res, err
	}
	log.Info("workspace destroyed",
		zap.Int("projects", res.ProjectsDestroyed),
		zap.Int("repos", res.ReposDeleted),
		zap.Int("warnings", len(res.Warnings)))
	return res, nil
}

// strayProjects returns the folder names of active component records under
// root that the workspace record does not list.
func (o *Orchestrator) strayProjects(ctx context.Context, ws *models.WorkspaceMetadata, root string) []string {
	var folders []string
	for _, kind := range ws.Components.Kinds() {
		folder := naming.FolderName(ws.Name, kind)
		if ws.HasProject(folder) {
			continue
		}
		p, err := o.projects.Store().Get(ctx, folder)
		if err != nil {
			o.logger.Warn("could not look up component record", zap.String("folder", folder), zap.Error(err))
			continue
		}
		if p == nil || !p.IsActive() || !within(root, p.Path) {
			continue
		}
		folders = append(folders, folder)
	}
	return folders
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
