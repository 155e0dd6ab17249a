package lifecycle

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/kitforge/internal/fsutil"
	"github.com/good-yellow-bee/kitforge/internal/models"
	"github.com/good-yellow-bee/kitforge/internal/naming"
	"github.com/good-yellow-bee/kitforge/internal/versions"
)

// Creator holds the kind-specific steps of a project create. The engine owns
// the control flow and calls the steps in a fixed order.
type Creator interface {
	Kind() models.ComponentKind
	TemplateName() string
	Configure(ctx context.Context, job *Job) error
	UpdateDependencies(ctx context.Context, job *Job) error
	PostCreate(ctx context.Context, job *Job) error
	BuildMetadata(job *Job) *models.ProjectMetadata
	Summarize(job *Job) Summary
}

// Job is the project being created, shared by the creator steps.
type Job struct {
	naming.Identity
	Path        string
	SkipDBSetup bool
	Credentials *Credentials
	Warnings    []string

	engine *Engine
}

func (j *Job) file(rel string) string {
	return filepath.Join(j.Path, filepath.FromSlash(rel))
}

// warn logs a tolerated failure and keeps it for the summary.
func (j *Job) warn(collaborator, msg string, err error) {
	j.engine.logger.Warn(msg, zap.String("folder", j.FolderName), zap.Error(err))
	j.engine.metrics.ExternalFailure(collaborator)
	j.Warnings = append(j.Warnings, fmt.Sprintf("%s: %v", msg, err))
}

func defaultCreators() map[string]Creator {
	creators := map[string]Creator{}
	for _, c := range []Creator{
		&apiCreator{},
		newFrontendCreator(models.KindAdminUI, "admin-ui-starter", "VITE_APP_NAME", "VITE_API_URL", "npm run dev"),
		newFrontendCreator(models.KindStore, "store-starter", "NEXT_PUBLIC_STORE_NAME", "NEXT_PUBLIC_API_URL", "npm run dev"),
		newFrontendCreator(models.KindStatus, "status-starter", "STATUS_PAGE_TITLE", "STATUS_API_URL", "npm start"),
	} {
		creators[string(c.Kind())] = c
	}
	return creators
}

// placeholders returns the template substitutions common to every kind.
func (j *Job) placeholders() map[string]string {
	values := map[string]string{
		"{{PROJECT_NAME}}": j.Name,
		"{{FOLDER_NAME}}":  j.FolderName,
	}
	if j.Databases != nil {
		db := j.engine.database
		values["{{DB_NAME}}"] = j.Databases.Dev
		values["{{DB_TEST_NAME}}"] = j.Databases.Test
		values["{{DB_PROD_NAME}}"] = j.Databases.Prod
		values["{{DB_USER}}"] = db.User
		values["{{DB_PASSWORD}}"] = db.Password
	}
	return values
}

// substitute replaces placeholders in the given files. Missing files are skipped.
func (j *Job) substitute(files ...string) error {
	values := j.placeholders()
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, k, v)
	}
	replacer := strings.NewReplacer(pairs...)
	for _, rel := range files {
		path := j.file(rel)
		content, found, err := fsutil.ReadText(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		if !found {
			continue
		}
		if out := replacer.Replace(content); out != content {
			if err := fsutil.WriteText(path, out); err != nil {
				return fmt.Errorf("write %s: %w", rel, err)
			}
		}
	}
	return nil
}

// updatePackageJSON refreshes package.json to the latest published versions.
func (j *Job) updatePackageJSON(ctx context.Context) error {
	if j.engine.resolver == nil {
		j.warn("registry", "no version resolver configured, keeping pinned versions", fmt.Errorf("resolver unavailable"))
		return nil
	}
	report, err := versions.UpdateManifest(ctx, j.file("package.json"), j.engine.resolver, j.engine.logger)
	if err != nil {
		return fmt.Errorf("update dependencies: %w", err)
	}
	failed := make([]string, 0, len(report.Failed))
	for pkg := range report.Failed {
		failed = append(failed, pkg)
	}
	sort.Strings(failed)
	for _, pkg := range failed {
		j.warn("registry", "kept pinned version of "+pkg, report.Failed[pkg])
	}
	return nil
}

func (j *Job) metadata() *models.ProjectMetadata {
	return &models.ProjectMetadata{
		Name:       j.Name,
		Type:       j.Kind,
		FolderName: j.FolderName,
		Path:       j.Path,
		Databases:  j.Databases,
	}
}
