package lifecycle

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/kitforge/internal/fsutil"
	"github.com/good-yellow-bee/kitforge/internal/metrics"
	"github.com/good-yellow-bee/kitforge/internal/models"
	"github.com/good-yellow-bee/kitforge/internal/naming"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

// CreateOptions are the inputs of a project create.
type CreateOptions struct {
	Name           string
	Kind           models.ComponentKind
	Dir            string
	Latest         bool
	SkipDBSetup    bool
	ForceOverwrite bool
	// Interactive allows Confirm to be asked before an overwrite.
	Interactive bool
}

// Reconciliation is how a create related to the state it found.
type Reconciliation string

const (
	// Fresh: no record and no folder.
	Fresh Reconciliation = "fresh"
	// Overwritten: a created project was removed and created again.
	Overwritten Reconciliation = "overwritten"
	// Resumed: the record claimed created but the folder was gone.
	Resumed Reconciliation = "resumed"
	// Recreated: the record was destroyed.
	Recreated Reconciliation = "recreated"
	// Recovered: a previous create or destroy did not finish.
	Recovered Reconciliation = "recovered"
)

// CreateResult reports a finished create.
type CreateResult struct {
	Project        *models.ProjectMetadata
	Reconciliation Reconciliation
	Summary        Summary
}

// Create scaffolds a project from its template and records it as created.
func (e *Engine) Create(ctx context.Context, opts CreateOptions) (res *CreateResult, err error) {
	started := time.Now()
	defer func() {
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeFailure
		}
		e.observe("create", string(opts.Kind), outcome, started)
	}()

	creator, ok := e.creators[string(opts.Kind)]
	if !ok {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "cannot create a project of type %q", opts.Kind).
			WithHint("use one of: api, admin-ui, store, status")
	}
	id, err := naming.Resolve(opts.Name, opts.Kind)
	if err != nil {
		return nil, err
	}
	templateDir := filepath.Join(e.templatesDir, creator.TemplateName())
	if !fsutil.IsDir(templateDir) {
		return nil, apperrors.New(apperrors.CodeTemplateNotFound, "template %s not found in %s", creator.TemplateName(), e.templatesDir).
			WithHint("reinstall the templates or point templates_dir at them")
	}

	dir, err := absDir(opts.Dir)
	if err != nil {
		return nil, err
	}

	job := &Job{
		Identity:    id,
		Path:        filepath.Join(dir, id.FolderName),
		SkipDBSetup: opts.SkipDBSetup || !opts.Kind.OwnsData(),
		engine:      e,
	}
	log := e.logger.With(zap.String("folder", id.FolderName), zap.String("type", string(id.Kind)))

	rec, err := e.reconcile(ctx, job, opts, log)
	if err != nil {
		return nil, err
	}

	stats, err := fsutil.CopyTree(templateDir, job.Path)
	if err != nil {
		return nil, fmt.Errorf("copy template %s: %w", creator.TemplateName(), err)
	}
	log.Debug("template copied", zap.Int("copied", stats.Copied), zap.Int("skipped", stats.Skipped))

	if err := creator.Configure(ctx, job); err != nil {
		return nil, fmt.Errorf("configure %s: %w", id.FolderName, err)
	}
	if opts.Latest {
		if err := creator.UpdateDependencies(ctx, job); err != nil {
			return nil, err
		}
	}
	if err := creator.PostCreate(ctx, job); err != nil {
		return nil, fmt.Errorf("post-create %s: %w", id.FolderName, err)
	}

	built := creator.BuildMetadata(job)
	project, err := e.store.Update(ctx, id.FolderName, func(current *models.ProjectMetadata) (*models.ProjectMetadata, error) {
		next := built.Clone()
		now := e.now()
		next.Status = models.StatusCreated
		next.UpdatedAt = now
		if current != nil && !current.CreatedAt.IsZero() {
			next.CreatedAt = current.CreatedAt
		} else {
			next.CreatedAt = now
		}
		return next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("record project: %w", err)
	}
	log.Info("project created", zap.String("path", job.Path), zap.String("reconciliation", string(rec)))

	return &CreateResult{
		Project:        project,
		Reconciliation: rec,
		Summary:        creator.Summarize(job),
	}, nil
}

// reconcile decides how the create relates to the stored record and the
// folder on disk, performs any cleanup that decision authorizes, and leaves
// the record in the creating state.
func (e *Engine) reconcile(ctx context.Context, job *Job, opts CreateOptions, log *zap.Logger) (Reconciliation, error) {
	existing, err := e.store.Get(ctx, job.FolderName)
	if err != nil {
		return "", err
	}
	folderExists, err := fsutil.Exists(job.Path)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", job.Path, err)
	}

	if existing != nil && existing.IsActive() && existing.Path != "" && existing.Path != job.Path {
		elsewhere, err := fsutil.Exists(existing.Path)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", existing.Path, err)
		}
		if elsewhere {
			return "", apperrors.New(apperrors.CodeAlreadyExists, "project %s is tracked at %s", job.FolderName, existing.Path).
				WithHint("run 'kitforge destroy %s' first, or create it from %s", job.FolderName, filepath.Dir(existing.Path))
		}
	}

	var rec Reconciliation
	switch {
	case existing == nil && folderExists:
		return "", apperrors.New(apperrors.CodeUntrackedConflict, "folder %s already exists but is not tracked", job.Path).
			WithHint("remove or rename the folder, or choose another name such as %q", job.Name+"-2")

	case existing == nil:
		rec = Fresh

	case existing.Status == models.StatusCreated && folderExists:
		if !opts.ForceOverwrite {
			ok, err := e.confirmOverwrite(job, opts)
			if err != nil {
				return "", err
			}
			if !ok {
				return "", apperrors.New(apperrors.CodeAlreadyExists, "project %s already exists at %s", job.FolderName, job.Path).
					WithHint("pass --force-overwrite to replace it, or choose another name")
			}
		}
		if err := e.setStatus(ctx, job.FolderName, models.StatusDestroying); err != nil {
			return "", err
		}
		if err := fsutil.RemoveTree(job.Path); err != nil {
			return "", fmt.Errorf("remove %s: %w", job.Path, err)
		}
		if err := e.setStatus(ctx, job.FolderName, models.StatusDestroyed); err != nil {
			return "", err
		}
		log.Info("existing project removed for overwrite")
		rec = Overwritten

	case existing.Status == models.StatusCreated:
		log.Warn("metadata says created but folder is missing, recreating", zap.String("path", job.Path))
		rec = Resumed

	case existing.Status == models.StatusDestroyed:
		rec = Recreated

	default:
		// creating or destroying: a previous run stopped part way.
		if folderExists {
			if err := fsutil.RemoveTree(job.Path); err != nil {
				return "", fmt.Errorf("remove partial %s: %w", job.Path, err)
			}
		}
		log.Warn("recovering from an interrupted operation", zap.String("status", string(existing.Status)))
		rec = Recovered
	}

	_, err = e.store.Update(ctx, job.FolderName, func(current *models.ProjectMetadata) (*models.ProjectMetadata, error) {
		next := job.metadata()
		if current != nil {
			next.CreatedAt = current.CreatedAt
		}
		next.Status = models.StatusCreating
		next.UpdatedAt = e.now()
		return next, nil
	})
	if err != nil {
		return "", fmt.Errorf("record project: %w", err)
	}
	return rec, nil
}

func (e *Engine) confirmOverwrite(job *Job, opts CreateOptions) (bool, error) {
	if !opts.Interactive || e.confirm == nil {
		return false, nil
	}
	return e.confirm(fmt.Sprintf("Project %s already exists at %s. Overwrite it?", job.FolderName, job.Path))
}

func (e *Engine) setStatus(ctx context.Context, folderName string, status models.ProjectStatus) error {
	_, err := e.store.Update(ctx, folderName, func(current *models.ProjectMetadata) (*models.ProjectMetadata, error) {
		if current == nil {
			return nil, fmt.Errorf("project %s disappeared", folderName)
		}
		next := current.Clone()
		next.Status = status
		next.UpdatedAt = e.now()
		return next, nil
	})
	return err
}
