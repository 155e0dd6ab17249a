package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/good-yellow-bee/kitforge/internal/models"
	"github.com/good-yellow-bee/kitforge/internal/storage"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

// setupEnv points the config at temporary directories and installs a
// minimal status-page template.
func setupEnv(t *testing.T) (workDir string) {
	t.Helper()
	root := t.TempDir()
	templates := filepath.Join(root, "templates", "status-starter")
	if err := os.MkdirAll(templates, 0o755); err != nil {
		t.Fatalf("mkdir templates: %v", err)
	}
	files := map[string]string{
		"package.json": `{"name": "{{PROJECT_NAME}}", "version": "0.1.0"}` + "\n",
		".env.example": "STATUS_PAGE_TITLE={{PROJECT_NAME}}\n",
		"index.html":   "<title>{{PROJECT_NAME}}</title>\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(templates, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	workDir = filepath.Join(root, "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir work: %v", err)
	}
	t.Setenv("KITFORGE_DATA_DIR", filepath.Join(root, "data"))
	t.Setenv("KITFORGE_TEMPLATES_DIR", filepath.Join(root, "templates"))
	t.Setenv("KITFORGE_LOG_LEVEL", "error")
	t.Setenv("KITFORGE_GITHUB_TOKEN", "")
	return workDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--test-mode", "--non-interactive"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestProjectLifecycleCommands(t *testing.T) {
	work := setupEnv(t)

	out, err := execute(t, "create", "shop", "--type", "status", "--dir", work, "-o", "plain")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	wantPath := filepath.Join(work, "shop-status")
	if strings.TrimSpace(out) != wantPath {
		t.Fatalf("create printed %q, want %q", out, wantPath)
	}
	if _, err := os.Stat(filepath.Join(wantPath, ".env")); err != nil {
		t.Fatalf(".env not materialized: %v", err)
	}

	out, err = execute(t, "list", "--status", "active", "--type", "", "--where", "", "-o", "plain")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.TrimSpace(out) != "shop-status" {
		t.Fatalf("list printed %q", out)
	}

	out, err = execute(t, "show", "shop-status", "-o", "json")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var p models.ProjectMetadata
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode show output %q: %v", out, err)
	}
	if p.Status != models.StatusCreated || p.Type != models.KindStatus {
		t.Fatalf("show = %+v", p)
	}

	if _, err := execute(t, "destroy", "shop", "--type", "", "--dir", work, "--force=false", "-o", "plain"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if _, err := os.Stat(wantPath); !os.IsNotExist(err) {
		t.Fatalf("project folder still present: %v", err)
	}

	out, err = execute(t, "list", "--status", "destroyed", "--type", "", "--where", `kind == "status"`, "-o", "plain")
	if err != nil {
		t.Fatalf("list destroyed: %v", err)
	}
	if strings.TrimSpace(out) != "shop-status" {
		t.Fatalf("list destroyed printed %q", out)
	}
}

func TestCreate_RejectsWorkspaceType(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "create", "shop", "--type", "workspace", "-o", "plain")
	if !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Fatalf("err = %v, want invalid_argument", err)
	}
}

func TestShow_NotTracked(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "show", "nope-api", "-o", "plain")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
	if apperrors.HintOf(err) == "" {
		t.Fatal("expected a hint")
	}
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "list", "--status", "gone", "--type", "", "--where", "", "-o", "plain")
	if !apperrors.IsCode(err, apperrors.CodeInvalidArgument) {
		t.Fatalf("err = %v, want invalid_argument", err)
	}
}

func TestWorkspaceList_Empty(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "workspace", "list", "--status", "all", "-o", "json")
	if err != nil {
		t.Fatalf("workspace list: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("workspace list printed %q", out)
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "-o", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var info map[string]any
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
}

func TestWorkspaceDestroy_ReportsProviderSelectionError(t *testing.T) {
	work := setupEnv(t)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("PATH", t.TempDir())
	t.Cleanup(func() { wsDeleteRemote, wsForce = false, false })

	// Seed the isolated test-mode store with a workspace that owns a repository.
	dbPath := filepath.Join(os.Getenv("KITFORGE_DATA_DIR"), "test", "projects.db")
	store, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	_, err = store.Workspaces().Update(context.Background(), "acme", func(*models.WorkspaceMetadata) (*models.WorkspaceMetadata, error) {
		return &models.WorkspaceMetadata{
			Name:        "acme",
			Path:        filepath.Join(work, "acme"),
			Namespace:   "acme-inc",
			Status:      models.WorkspaceCreated,
			GitHubRepos: []models.GitHubRepo{{Name: "acme-api", URL: "https://github.com/acme-inc/acme-api", Type: models.KindAPI}},
		}, nil
	})
	store.Close()
	if err != nil {
		t.Fatalf("seed workspace: %v", err)
	}

	_, err = execute(t, "workspace", "destroy", "acme", "--delete-remote", "--force", "-o", "plain")
	if !apperrors.IsCode(err, apperrors.CodeExternalToolUnavailable) {
		t.Fatalf("err = %v, want external_tool_unavailable", err)
	}
	if !strings.Contains(err.Error(), "gh CLI is not installed") {
		t.Errorf("err = %v, want the provider selection error", err)
	}
}
