package lifecycle

import (
	"context"
	"fmt"

	"github.com/good-yellow-bee/kitforge/internal/models"
)

// frontendCreator scaffolds the web front ends. They differ only in their
// template and the env keys naming the app and the API it talks to.
type frontendCreator struct {
	kind     models.ComponentKind
	template string
	nameKey  string
	apiKey   string
	runCmd   string
}

func newFrontendCreator(kind models.ComponentKind, template, nameKey, apiKey, runCmd string) *frontendCreator {
	return &frontendCreator{kind: kind, template: template, nameKey: nameKey, apiKey: apiKey, runCmd: runCmd}
}

func (c *frontendCreator) Kind() models.ComponentKind { return c.kind }
func (c *frontendCreator) TemplateName() string       { return c.template }

func (c *frontendCreator) Configure(_ context.Context, job *Job) error {
	if err := job.substitute(envExample, "package.json", "index.html"); err != nil {
		return err
	}
	env, err := loadEnvFile(job.file(envExample))
	if err != nil {
		return err
	}
	if _, err := env.Ensure(c.nameKey, literal(job.Name)); err != nil {
		return err
	}
	if _, err := env.Ensure(c.apiKey, literal(job.engine.apiURL)); err != nil {
		return err
	}
	return env.Save()
}

func (c *frontendCreator) UpdateDependencies(ctx context.Context, job *Job) error {
	return job.updatePackageJSON(ctx)
}

func (c *frontendCreator) PostCreate(_ context.Context, job *Job) error {
	if _, err := materializeEnv(job.file(envExample), job.file(".env"), nil); err != nil {
		return fmt.Errorf("materialize .env: %w", err)
	}
	return nil
}

func (c *frontendCreator) BuildMetadata(job *Job) *models.ProjectMetadata {
	return job.metadata()
}

func (c *frontendCreator) Summarize(job *Job) Summary {
	s := newSummary(job)
	s.NextSteps = []string{"cd " + job.Path, "npm install", c.runCmd}
	return s
}
