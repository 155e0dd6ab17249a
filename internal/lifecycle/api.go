package lifecycle

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/good-yellow-bee/kitforge/internal/models"
)

const (
	envExample  = ".env.example"
	composeFile = "docker-compose.yml"
	ciWorkflow  = ".github/workflows/ci.yml"
	deployFile  = "deploy/app.yaml"
)

// apiCreator scaffolds the REST backend. It is the only kind that owns databases.
type apiCreator struct{}

func (c *apiCreator) Kind() models.ComponentKind { return models.KindAPI }
func (c *apiCreator) TemplateName() string       { return "api-starter" }

func (c *apiCreator) Configure(_ context.Context, job *Job) error {
	if err := job.substitute(envExample, composeFile, ciWorkflow, deployFile); err != nil {
		return err
	}

	if _, err := patchYAML(job.file(composeFile),
		yamlPatch{Path: []string{"name"}, Value: job.FolderName},
		yamlPatch{Path: []string{"services", "db", "environment", "POSTGRES_DB"}, Value: job.Databases.Dev},
	); err != nil {
		return err
	}
	if _, err := patchYAML(job.file(ciWorkflow),
		yamlPatch{Path: []string{"env", "DB_NAME"}, Value: job.Databases.Test},
	); err != nil {
		return err
	}

	env, err := loadEnvFile(job.file(envExample))
	if err != nil {
		return err
	}
	if _, err := env.Ensure("JWT_SECRET", newSecret); err != nil {
		return err
	}
	if _, err := env.Ensure("ADMIN_EMAIL", literal("admin@"+job.FolderName+".local")); err != nil {
		return err
	}
	if !env.Has("ADMIN_PASSWORD_HASH") {
		password, err := newPassword()
		if err != nil {
			return err
		}
		hash, err := hashPassword(password, job.engine.bcryptCost)
		if err != nil {
			return err
		}
		if err := env.Set("ADMIN_PASSWORD_HASH", hash); err != nil {
			return err
		}
		job.Credentials = &Credentials{Email: env.Get("ADMIN_EMAIL"), Password: password}
	}
	return env.Save()
}

func (c *apiCreator) UpdateDependencies(ctx context.Context, job *Job) error {
	return job.updatePackageJSON(ctx)
}

// PostCreate writes the per-environment env files and provisions databases.
func (c *apiCreator) PostCreate(ctx context.Context, job *Job) error {
	db := job.engine.database
	envs := []struct {
		file   string
		dbName string
		appEnv string
	}{
		{".env", job.Databases.Dev, "development"},
		{".env.test", job.Databases.Test, "test"},
		{".env.production", job.Databases.Prod, "production"},
	}
	for _, e := range envs {
		_, err := materializeEnv(job.file(envExample), job.file(e.file), [][2]string{
			{"NODE_ENV", e.appEnv},
			{"DB_HOST", db.Host},
			{"DB_PORT", strconv.Itoa(db.Port)},
			{"DB_NAME", e.dbName},
		})
		if err != nil {
			return fmt.Errorf("materialize %s: %w", e.file, err)
		}
	}

	if job.SkipDBSetup {
		return nil
	}
	if job.engine.provisioner == nil {
		job.warn("database", "database setup skipped", fmt.Errorf("no database provisioner configured"))
		return nil
	}
	for _, name := range job.Databases.Names() {
		if err := job.engine.provisioner.Create(ctx, name); err != nil {
			job.warn("database", "could not create database "+name, err)
		}
	}
	return nil
}

func (c *apiCreator) BuildMetadata(job *Job) *models.ProjectMetadata {
	return job.metadata()
}

func (c *apiCreator) Summarize(job *Job) Summary {
	s := newSummary(job)
	s.Credentials = job.Credentials
	s.NextSteps = []string{"cd " + job.Path, "docker compose up -d db"}
	if job.SkipDBSetup {
		s.NextSteps = append(s.NextSteps, "kitforge create skipped database setup; create "+strings.Join(job.Databases.Names(), ", "))
	}
	s.NextSteps = append(s.NextSteps, "npm install", "npm run migrate", "npm run dev")
	return s
}
