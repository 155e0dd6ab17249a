package versions

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/kitforge/internal/fsutil"
)

// pinnedSpec matches plain semver ranges kitforge is willing to rewrite.
var pinnedSpec = regexp.MustCompile(`^([~^]?)(\d+\.\d+\.\d+[0-9A-Za-z.+-]*)$`)

// Change describes one rewritten dependency.
type Change struct {
	From string
	To   string
}

// ManifestReport summarizes an UpdateManifest run.
type ManifestReport struct {
	Updated   map[string]Change
	Unchanged []string
	// Failed holds lookups that fell back to the pinned version.
	Failed map[string]error
}

type manifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// UpdateManifest rewrites dependencies and devDependencies in the package.json
// at path to the latest versions reported by resolver. The range operator and
// the file's formatting are preserved. A failed lookup keeps the pinned
// version and never aborts the run.
func UpdateManifest(ctx context.Context, path string, resolver Resolver, logger *zap.Logger) (*ManifestReport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	report := &ManifestReport{Updated: map[string]Change{}, Failed: map[string]error{}}

	content, found, err := fsutil.ReadText(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if !found {
		logger.Debug("no dependency manifest to update", zap.String("path", path))
		return report, nil
	}

	var m manifest
	if err := json.Unmarshal([]byte(content), &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	specs := map[string]string{}
	for name, spec := range m.DevDependencies {
		specs[name] = spec
	}
	for name, spec := range m.Dependencies {
		specs[name] = spec
	}
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	updated := content
	for _, name := range names {
		spec := specs[name]
		match := pinnedSpec.FindStringSubmatch(spec)
		if match == nil {
			report.Unchanged = append(report.Unchanged, name)
			continue
		}
		latest, err := resolver.Latest(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("version lookup failed, keeping pinned version",
				zap.String("dependency", name), zap.String("pinned", spec), zap.Error(err))
			report.Failed[name] = err
			continue
		}
		next := match[1] + latest
		if next == spec {
			report.Unchanged = append(report.Unchanged, name)
			continue
		}
		pattern := regexp.MustCompile(`("` + regexp.QuoteMeta(name) + `"\s*:\s*)"` + regexp.QuoteMeta(spec) + `"`)
		updated = pattern.ReplaceAllString(updated, `${1}"`+next+`"`)
		report.Updated[name] = Change{From: spec, To: next}
	}

	if updated != content {
		if err := fsutil.WriteText(path, updated); err != nil {
			return nil, fmt.Errorf("write manifest: %w", err)
		}
	}
	logger.Info("dependency versions updated",
		zap.Int("updated", len(report.Updated)), zap.Int("failed", len(report.Failed)))
	return report, nil
}

// StaticResolver answers from a fixed table. Unknown packages fail.
type StaticResolver map[string]string

// Latest implements Resolver.
func (s StaticResolver) Latest(_ context.Context, pkg string) (string, error) {
	v, ok := s[pkg]
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("package %s not found", pkg)
	}
	return v, nil
}
