package lifecycle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/good-yellow-bee/kitforge/internal/dbadmin"
	"github.com/good-yellow-bee/kitforge/internal/storage"
	"github.com/good-yellow-bee/kitforge/internal/versions"
)

var templateFiles = map[string]map[string]string{
	"api-starter": {
		".env.example": "# database\nDB_NAME={{DB_NAME}}\nDB_USER={{DB_USER}}\nDB_PASSWORD={{DB_PASSWORD}}\nJWT_SECRET=\n",
		"docker-compose.yml": `name: starter
services:
  db:
    image: postgres:16-alpine
    environment:
      POSTGRES_DB: starter_dev
      POSTGRES_USER: "{{DB_USER}}"
`,
		".github/workflows/ci.yml": `name: ci
env:
  DB_NAME: starter_test
jobs:
  test:
    runs-on: ubuntu-latest
`,
		"deploy/app.yaml": "app: {{FOLDER_NAME}}\ndatabase: {{DB_PROD_NAME}}\n",
		"package.json": `{
  "name": "{{FOLDER_NAME}}",
  "dependencies": {
    "express": "^4.19.2"
  }
}
`,
		"src/index.js": "console.log('api')\n",
	},
	"admin-ui-starter": {
		".env.example": "VITE_API_URL=\n",
		"package.json": `{"name": "{{FOLDER_NAME}}"}` + "\n",
		"index.html":   "<title>{{PROJECT_NAME}}</title>\n",
	},
	"store-starter": {
		".env.example": "",
		"package.json": `{"name": "{{FOLDER_NAME}}"}` + "\n",
	},
	"status-starter": {
		"package.json": `{"name": "{{FOLDER_NAME}}"}` + "\n",
	},
}

// writeTemplates lays out the starter templates under a temp directory.
func writeTemplates(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, files := range templateFiles {
		for rel, content := range files {
			path := filepath.Join(root, name, filepath.FromSlash(rel))
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		}
	}
	return root
}

// clock returns a time source that advances one minute per call.
func clock() func() time.Time {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

type fixture struct {
	engine *Engine
	store  *storage.SQLiteStorage
	dbs    *dbadmin.Memory
	dir    string
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	store, err := storage.OpenAndMigrate(filepath.Join(t.TempDir(), "projects.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	dbs := dbadmin.NewMemory()
	opts := Options{
		Store:        store.Projects(),
		TemplatesDir: writeTemplates(t),
		Provisioner:  dbs,
		Resolver:     versions.StaticResolver{"express": "5.1.0"},
		BcryptCost:   4,
		Now:          clock(),
	}
	for _, m := range mutate {
		m(&opts)
	}
	engine, err := New(opts)
	require.NoError(t, err)
	return &fixture{engine: engine, store: store, dbs: dbs, dir: t.TempDir()}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
