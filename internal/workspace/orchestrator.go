// Package workspace creates and destroys workspaces: named groups of
// component projects sharing one parent directory.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/good-yellow-bee/kitforge/internal/fsutil"
	"github.com/good-yellow-bee/kitforge/internal/lifecycle"
	"github.com/good-yellow-bee/kitforge/internal/metrics"
	"github.com/good-yellow-bee/kitforge/internal/models"
	"github.com/good-yellow-bee/kitforge/internal/naming"
	"github.com/good-yellow-bee/kitforge/internal/remote"
	"github.com/good-yellow-bee/kitforge/internal/runner"
	"github.com/good-yellow-bee/kitforge/internal/storage"
	"github.com/good-yellow-bee/kitforge/internal/vcs"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

const initialCommitMessage = "Initial commit from kitforge"

// Options configure an Orchestrator. Store and Projects are required.
type Options struct {
	Store    storage.WorkspaceRepository
	Projects *lifecycle.Engine
	// Runner runs git. Version control is skipped when nil.
	Runner runner.Runner
	// Remote provisions hosted repositories. Nil when none is available.
	Remote        remote.Provider
	DefaultBranch string
	Logger        *zap.Logger
	Metrics       *metrics.Recorder
	Now           func() time.Time
}

// Orchestrator runs workspace create and destroy.
type Orchestrator struct {
	store    storage.WorkspaceRepository
	projects *lifecycle.Engine
	runner   runner.Runner
	remote   remote.Provider
	branch   string
	logger   *zap.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
}

// New returns an Orchestrator for opts.
func New(opts Options) (*Orchestrator, error) {
	if opts.Store == nil || opts.Projects == nil {
		return nil, errors.New("workspace: store and project engine are required")
	}
	o := &Orchestrator{
		store:    opts.Store,
		projects: opts.Projects,
		runner:   opts.Runner,
		remote:   opts.Remote,
		branch:   opts.DefaultBranch,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.now == nil {
		o.now = func() time.Time { return time.Now().UTC() }
	}
	if o.branch == "" {
		o.branch = "main"
	}
	return o, nil
}

// CreateOptions are the inputs of a workspace create.
type CreateOptions struct {
	Name       string
	Dir        string
	Components models.Components
	// Org requests one hosted repository per component under this owner.
	// Empty skips remote provisioning.
	Org         string
	Private     bool
	Latest      bool
	SkipDBSetup bool
}

// ComponentFailure is a component whose project could not be created.
type ComponentFailure struct {
	Kind       models.ComponentKind `json:"type"`
	FolderName string               `json:"folderName"`
	Err        error                `json:"-"`
}

func (f ComponentFailure) String() string {
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

// CreateResult reports a finished workspace create.
type CreateResult struct {
	Workspace *models.WorkspaceMetadata
	Projects  []*lifecycle.CreateResult
	Failures  []ComponentFailure
	Files     []string
	Warnings  []string
}

// Create scaffolds every selected component under a new workspace
// directory. Component failures are collected and leave the workspace
// partial; they never stop the remaining components.
func (o *Orchestrator) Create(ctx context.Context, opts CreateOptions) (res *CreateResult, err error) {
	started := time.Now()
	defer func() {
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeFailure
		}
		o.metrics.ObserveOperation("workspace_create", string(models.KindWorkspace), outcome, time.Since(started))
	}()

	if err := naming.ValidateWorkspaceName(opts.Name); err != nil {
		return nil, err
	}
	// Components are named after the workspace, so it must also be a valid project name.
	if err := naming.ValidateName(opts.Name); err != nil {
		return nil, err
	}
	kinds := opts.Components.Kinds()
	if len(kinds) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "no components selected")
	}
	if opts.Org != "" && o.remote == nil {
		return nil, apperrors.New(apperrors.CodeExternalToolUnavailable, "remote repositories requested for %s but no provider is available", opts.Org).
			WithHint("set KITFORGE_GITHUB_TOKEN (or GITHUB_TOKEN), install gh, or pass --skip-remote")
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve target directory: %w", err)
	}
	root := filepath.Join(dir, opts.Name)

	existing, err := o.store.Get(ctx, opts.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.New(apperrors.CodeAlreadyExists, "workspace %s is already tracked (%s)", opts.Name, existing.Status).
			WithHint("run 'kitforge workspace destroy %s' first or choose another name", opts.Name)
	}
	if ok, err := fsutil.Exists(root); err != nil {
		return nil, fmt.Errorf("check %s: %w", root, err)
	} else if ok {
		return nil, apperrors.New(apperrors.CodeUntrackedConflict, "directory %s already exists", root).
			WithHint("remove it or choose another workspace name")
	}

	namespace := opts.Org
	if namespace == "" {
		namespace = opts.Name
	}
	now := o.now()
	ws, err := o.store.Update(ctx, opts.Name, func(current *models.WorkspaceMetadata) (*models.WorkspaceMetadata, error) {
		if current != nil {
			return nil, apperrors.New(apperrors.CodeAlreadyExists, "workspace %s is already tracked", opts.Name)
		}
		return &models.WorkspaceMetadata{
			ID:         uuid.New().String(),
			Name:       opts.Name,
			Path:       root,
			Namespace:  namespace,
			Status:     models.WorkspaceCreating,
			Components: opts.Components,
			CreatedAt:  now,
			UpdatedAt:  now,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	log := o.logger.With(zap.String("workspace", opts.Name), zap.String("id", ws.ID))
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", root, err)
	}

	res = &CreateResult{}
	for _, kind := range kinds {
		pr, err := o.projects.Create(ctx, lifecycle.CreateOptions{
			Name:        opts.Name,
			Kind:        kind,
			Dir:         root,
			Latest:      opts.Latest,
			SkipDBSetup: opts.SkipDBSetup || !kind.OwnsData(),
		})
		if err != nil {
			log.Error("component failed", zap.String("type", string(kind)), zap.Error(err))
			res.Failures = append(res.Failures, ComponentFailure{Kind: kind, FolderName: naming.FolderName(opts.Name, kind), Err: err})
			continue
		}
		res.Projects = append(res.Projects, pr)
		ws, err = o.update(ctx, opts.Name, func(w *models.WorkspaceMetadata) {
			if !w.HasProject(pr.Project.FolderName) {
				w.Projects = append(w.Projects, models.WorkspaceProject{
					FolderName: pr.Project.FolderName,
					Path:       pr.Project.Path,
					Type:       kind,
					AddedAt:    o.now(),
				})
			}
		})
		if err != nil {
			return nil, err
		}
	}

	for _, p := range ws.Projects {
		repo, warn := o.initRepository(ctx, p)
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
		}
		if opts.Org == "" {
			continue
		}
		gh, warn := o.provisionRemote(ctx, opts.Org, opts.Private, p, repo)
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
		}
		if gh == nil {
			continue
		}
		ws, err = o.update(ctx, opts.Name, func(w *models.WorkspaceMetadata) {
			w.GitHubRepos = append(w.GitHubRepos, *gh)
		})
		if err != nil {
			return nil, err
		}
	}

	if len(ws.Projects) > 0 {
		files, err := writeOrchestration(ws)
		res.Files = files
		if err != nil {
			log.Warn("could not write orchestration files", zap.Error(err))
			res.Warnings = append(res.Warnings, err.Error())
		}
	}

	status := models.WorkspaceCreated
	if len(res.Failures) > 0 {
		status = models.WorkspacePartial
	}
	ws, err = o.update(ctx, opts.Name, func(w *models.WorkspaceMetadata) { w.Status = status })
	if err != nil {
		return nil, err
	}
	res.Workspace = ws
	log.Info("workspace created",
		zap.String("status", string(status)),
		zap.Int("projects", len(ws.Projects)),
		zap.Int("failures", len(res.Failures)))
	return res, nil
}

// initRepository initializes git in a component and commits the scaffold.
// Failures are returned as a warning.
func (o *Orchestrator) initRepository(ctx context.Context, p models.WorkspaceProject) (*vcs.Repository, string) {
	if o.runner == nil {
		return nil, ""
	}
	repo := vcs.NewRepository(p.Path, o.runner)
	created, err := repo.Init(ctx, o.branch)
	if err == nil && (created || !repo.HasCommits(ctx)) {
		if err = repo.AddAll(ctx); err == nil {
			err = repo.Commit(ctx, initialCommitMessage)
		}
	}
	if err != nil {
		o.logger.Warn("git setup failed", zap.String("folder", p.FolderName), zap.Error(err))
		o.metrics.ExternalFailure("git")
		return repo, fmt.Sprintf("git setup for %s: %v", p.FolderName, err)
	}
	return repo, ""
}

// provisionRemote creates the hosted repository and pushes to it. The
// repository is returned whenever it was created, even if the push failed.
func (o *Orchestrator) provisionRemote(ctx context.Context, org string, private bool, p models.WorkspaceProject, repo *vcs.Repository) (*models.GitHubRepo, string) {
	created, err := o.remote.CreateRepo(ctx, org, p.FolderName, private)
	if err != nil {
		o.logger.Warn("remote repository creation failed", zap.String("folder", p.FolderName), zap.String("provider", o.remote.Name()), zap.Error(err))
		o.metrics.ExternalFailure("remote")
		return nil, fmt.Sprintf("remote repository for %s: %v", p.FolderName, err)
	}
	gh := &models.GitHubRepo{Name: created.Name, URL: created.URL, Type: p.Type}
	if repo == nil || created.CloneURL == "" {
		return gh, ""
	}
	if err := repo.SetRemote(ctx, "origin", created.CloneURL); err != nil {
		o.metrics.ExternalFailure("git")
		return gh, fmt.Sprintf("set remote for %s: %v", p.FolderName, err)
	}
	if err := repo.Push(ctx, "origin", o.branch); err != nil {
		o.logger.Warn("push failed", zap.String("folder", p.FolderName), zap.Error(err))
		o.metrics.ExternalFailure("git")
		return gh, fmt.Sprintf("push %s: %v", p.FolderName, err)
	}
	return gh, ""
}

func (o *Orchestrator) update(ctx context.Context, name string, mutate func(*models.WorkspaceMetadata)) (*models.WorkspaceMetadata, error) {
	return o.store.Update(ctx, name, func(current *models.WorkspaceMetadata) (*models.WorkspaceMetadata, error) {
		if current == nil {
			return nil, apperrors.New(apperrors.CodeNotFound, "workspace %s disappeared", name)
		}
		next := current.Clone()
		mutate(next)
		next.UpdatedAt = o.now()
		return next, nil
	})
}
