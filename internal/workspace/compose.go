package workspace

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/good-yellow-bee/kitforge/internal/models"
	"github.com/good-yellow-bee/kitforge/internal/naming"
)

type composeFile struct {
	Name     string                       `yaml:"name"`
	Services map[string]composeService    `yaml:"services"`
	Volumes  map[string]map[string]string `yaml:"volumes,omitempty"`
}

type composeService struct {
	Image       string            `yaml:"image,omitempty"`
	Build       *composeBuild     `yaml:"build,omitempty"`
	Command     string            `yaml:"command,omitempty"`
	Ports       []string          `yaml:"ports,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	EnvFile     []string          `yaml:"env_file,omitempty"`
	Volumes     []string          `yaml:"volumes,omitempty"`
	DependsOn   []string          `yaml:"depends_on,omitempty"`
}

type composeBuild struct {
	Context string `yaml:"context"`
	Target  string `yaml:"target,omitempty"`
}

// servicePorts maps each kind to its host port and container port.
var servicePorts = map[models.ComponentKind][2]int{
	models.KindAPI:     {3000, 3000},
	models.KindAdminUI: {5173, 80},
	models.KindStore:   {3001, 3000},
	models.KindStatus:  {3002, 3000},
}

var devPorts = map[models.ComponentKind]int{
	models.KindAPI:     3000,
	models.KindAdminUI: 5173,
	models.KindStore:   3000,
	models.KindStatus:  3000,
}

// buildCompose renders the compose model for the created projects. dev
// mounts the sources and runs the dev servers.
func buildCompose(ws *models.WorkspaceMetadata, dev bool) composeFile {
	cf := composeFile{Name: ws.Name, Services: map[string]composeService{}}
	hasAPI := false
	for _, p := range ws.Projects {
		if p.Type == models.KindAPI {
			hasAPI = true
		}
	}
	if hasAPI {
		db := naming.DatabaseName(naming.FolderName(ws.Name, models.KindAPI), "dev")
		cf.Services["db"] = composeService{
			Image: "postgres:16-alpine",
			Ports: []string{"5432:5432"},
			Environment: map[string]string{
				"POSTGRES_DB":       db,
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
			},
			Volumes: []string{"db-data:/var/lib/postgresql/data"},
		}
		cf.Volumes = map[string]map[string]string{"db-data": {}}
	}

	for _, p := range ws.Projects {
		ports := servicePorts[p.Type]
		svc := composeService{
			Build:   &composeBuild{Context: "./" + p.FolderName},
			EnvFile: []string{"./" + p.FolderName + "/.env"},
			Ports:   []string{fmt.Sprintf("%d:%d", ports[0], ports[1])},
		}
		if dev {
			svc.Build.Target = "dev"
			svc.Command = "npm run dev"
			svc.Ports = []string{fmt.Sprintf("%d:%d", ports[0], devPorts[p.Type])}
			svc.Volumes = []string{"./" + p.FolderName + ":/app", "/app/node_modules"}
		}
		if p.Type == models.KindAPI {
			svc.Environment = map[string]string{"DB_HOST": "db"}
			svc.DependsOn = []string{"db"}
		} else if hasAPI {
			svc.DependsOn = []string{string(models.KindAPI)}
		}
		cf.Services[string(p.Type)] = svc
	}
	return cf
}

func renderCompose(ws *models.WorkspaceMetadata, dev bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(buildCompose(ws, dev)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var startScript = template.Must(template.New("start.sh").Funcs(template.FuncMap{
	"port": func(k models.ComponentKind) int { return servicePorts[k][0] },
}).Parse(`#!/usr/bin/env bash
# Starts the {{.Name}} workspace. Pass --dev for live-reload containers.
set -euo pipefail
cd "$(dirname "$0")"

files=(-f docker-compose.yml)
if [[ "${1:-}" == "--dev" ]]; then
  files=(-f docker-compose.dev.yml)
fi

docker compose "${files[@]}" up -d --build
{{range .Projects}}echo "{{.Type}}: http://localhost:{{port .Type}}"
{{end}}`))

var stopScript = template.Must(template.New("stop.sh").Parse(`#!/usr/bin/env bash
# Stops the {{.Name}} workspace. Pass --volumes to also remove data.
set -euo pipefail
cd "$(dirname "$0")"

args=()
if [[ "${1:-}" == "--volumes" ]]; then
  args=(--volumes)
fi

docker compose -f docker-compose.yml down "${args[@]}"
docker compose -f docker-compose.dev.yml down "${args[@]}" 2>/dev/null || true
`))

// writeOrchestration writes the compose files and the start/stop scripts for
// the projects recorded in ws. It returns the files written.
func writeOrchestration(ws *models.WorkspaceMetadata) ([]string, error) {
	var written []string
	for _, f := range []struct {
		name string
		dev  bool
	}{{"docker-compose.yml", false}, {"docker-compose.dev.yml", true}} {
		data, err := renderCompose(ws, f.dev)
		if err != nil {
			return written, fmt.Errorf("render %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(ws.Path, f.name), data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", f.name, err)
		}
		written = append(written, f.name)
	}

	for _, tmpl := range []*template.Template{startScript, stopScript} {
		var sb strings.Builder
		if err := tmpl.Execute(&sb, ws); err != nil {
			return written, fmt.Errorf("render %s: %w", tmpl.Name(), err)
		}
		path := filepath.Join(ws.Path, tmpl.Name())
		if err := os.WriteFile(path, []byte(sb.String()), 0o755); err != nil {
			return written, fmt.Errorf("write %s: %w", tmpl.Name(), err)
		}
		written = append(written, tmpl.Name())
	}
	return written, nil
}
