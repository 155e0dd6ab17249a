package query

import (
	"sort"

	"github.com/good-yellow-bee/kitforge/internal/models"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

// StatusFilter selects records by lifecycle state.
type StatusFilter string

const (
	StatusActive    StatusFilter = "active"
	StatusDestroyed StatusFilter = "destroyed"
	StatusAll       StatusFilter = "all"
)

// ParseStatusFilter parses a --status value. Empty means active.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(s); f {
	case "":
		return StatusActive, nil
	case StatusActive, StatusDestroyed, StatusAll:
		return f, nil
	}
	return "", apperrors.New(apperrors.CodeInvalidArgument, "unknown status filter %q", s).
		WithHint("use one of: active, destroyed, all")
}

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	Status StatusFilter
	// Kind, when set, keeps only projects of that kind.
	Kind models.ComponentKind
	// Where, when set, keeps only projects matching the expression.
	Where *ParsedQuery
}

func (f ProjectFilter) statusMatches(destroyed bool) bool {
	switch f.Status {
	case StatusAll:
		return true
	case StatusDestroyed:
		return destroyed
	default:
		return !destroyed
	}
}

// Projects returns the projects matching f, most recently updated first.
func Projects(projects []*models.ProjectMetadata, f ProjectFilter) ([]*models.ProjectMetadata, error) {
	out := make([]*models.ProjectMetadata, 0, len(projects))
	for _, p := range projects {
		if !f.statusMatches(p.Status == models.StatusDestroyed) {
			continue
		}
		if f.Kind != "" && p.Type != f.Kind {
			continue
		}
		if f.Where != nil {
			ok, err := f.Where.Match(p)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].FolderName < out[j].FolderName
	})
	return out, nil
}

// Workspaces returns the workspaces matching status, most recently updated first.
func Workspaces(workspaces []*models.WorkspaceMetadata, status StatusFilter) []*models.WorkspaceMetadata {
	f := ProjectFilter{Status: status}
	out := make([]*models.WorkspaceMetadata, 0, len(workspaces))
	for _, w := range workspaces {
		if f.statusMatches(w.Status == models.WorkspaceDestroyed) {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
