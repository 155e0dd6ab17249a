package versions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNPMRegistry_Latest(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		switch r.URL.EscapedPath() {
		case "/express/latest":
			json.NewEncoder(w).Encode(map[string]string{"version": "5.1.0"})
		case "/@types%2Fnode/latest":
			json.NewEncoder(w).Encode(map[string]string{"version": "22.7.4"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	reg := NewNPMRegistry(srv.URL, 100, "kitforge/test", srv.Client())
	ctx := context.Background()

	v, err := reg.Latest(ctx, "express")
	if err != nil || v != "5.1.0" {
		t.Errorf("express = %q, %v", v, err)
	}
	v, err = reg.Latest(ctx, "@types/node")
	if err != nil || v != "22.7.4" {
		t.Errorf("@types/node = %q, %v (paths %v)", v, err, paths)
	}
	if _, err := reg.Latest(ctx, "does-not-exist"); err == nil {
		t.Error("expected error for unknown package")
	}
}

func TestUpdateManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	original := `{
  "name": "shop-api",
  "dependencies": {
    "express": "^4.19.2",
    "pg": "~8.11.0",
    "local-lib": "file:../lib"
  },
  "devDependencies": {
    "typescript": "5.4.5",
    "vitest": "^1.6.0"
  }
}
`
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	resolver := StaticResolver{"express": "5.1.0", "pg": "8.13.1", "typescript": "5.4.5"}
	report, err := UpdateManifest(context.Background(), path, resolver, nil)
	if err != nil {
		t.Fatalf("UpdateManifest: %v", err)
	}

	data, _ := os.ReadFile(path)
	got := string(data)
	for _, want := range []string{`"express": "^5.1.0"`, `"pg": "~8.13.1"`, `"typescript": "5.4.5"`, `"vitest": "^1.6.0"`, `"local-lib": "file:../lib"`} {
		if !strings.Contains(got, want) {
			t.Errorf("manifest missing %s:\n%s", want, got)
		}
	}
	if len(report.Updated) != 2 {
		t.Errorf("updated = %v", report.Updated)
	}
	if _, ok := report.Failed["vitest"]; !ok {
		t.Errorf("vitest lookup failure should be reported: %v", report.Failed)
	}
	if report.Updated["express"].From != "^4.19.2" {
		t.Errorf("express change = %+v", report.Updated["express"])
	}
}

func TestUpdateManifest_Missing(t *testing.T) {
	report, err := UpdateManifest(context.Background(), filepath.Join(t.TempDir(), "package.json"), StaticResolver{}, nil)
	if err != nil {
		t.Fatalf("UpdateManifest: %v", err)
	}
	if len(report.Updated) != 0 {
		t.Errorf("report = %+v", report)
	}
}
