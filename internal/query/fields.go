// Package query provides read-only views over tracked projects and
// workspaces: status filtering, sorting and a small expression language for
// ad-hoc filters.
package query

import (
	"time"

	"github.com/good-yellow-bee/kitforge/internal/models"
)

// FieldType represents the data type of a queryable field.
type FieldType int

const (
	FieldTypeString FieldType = iota
	FieldTypeTime
)

// FieldDef defines a queryable field with its allowed operators.
type FieldDef struct {
	Name      string    // expr field name
	Type      FieldType // data type
	Operators []string  // allowed operators
	value     func(*models.ProjectMetadata) any
}

var stringOps = []string{"==", "!=", "in", "contains", "startsWith", "endsWith", "matches"}

var timeOps = []string{">=", "<=", ">", "<"}

// ProjectFields contains all queryable project fields.
var ProjectFields = map[string]FieldDef{
	"name": {
		Name:      "name",
		Type:      FieldTypeString,
		Operators: stringOps,
		value:     func(p *models.ProjectMetadata) any { return p.Name },
	},
	"kind": {
		Name:      "kind",
		Type:      FieldTypeString,
		Operators: []string{"==", "!=", "in"},
		value:     func(p *models.ProjectMetadata) any { return string(p.Type) },
	},
	"folder": {
		Name:      "folder",
		Type:      FieldTypeString,
		Operators: stringOps,
		value:     func(p *models.ProjectMetadata) any { return p.FolderName },
	},
	"path": {
		Name:      "path",
		Type:      FieldTypeString,
		Operators: stringOps,
		value:     func(p *models.ProjectMetadata) any { return p.Path },
	},
	"status": {
		Name:      "status",
		Type:      FieldTypeString,
		Operators: []string{"==", "!=", "in"},
		value:     func(p *models.ProjectMetadata) any { return string(p.Status) },
	},

	// Time fields
	"created_at": {
		Name:      "created_at",
		Type:      FieldTypeTime,
		Operators: timeOps,
		value:     func(p *models.ProjectMetadata) any { return p.CreatedAt },
	},
	"updated_at": {
		Name:      "updated_at",
		Type:      FieldTypeTime,
		Operators: timeOps,
		value:     func(p *models.ProjectMetadata) any { return p.UpdatedAt },
	},
}

// IsOperatorAllowed checks if an operator is valid for a field.
func (f FieldDef) IsOperatorAllowed(op string) bool {
	for _, allowed := range f.Operators {
		if allowed == op {
			return true
		}
	}
	return false
}

// AllowedFunctions lists functions allowed in expressions.
var AllowedFunctions = map[string]bool{
	"now":      true,
	"duration": true,
}

func zeroValue(t FieldType) any {
	if t == FieldTypeTime {
		return time.Time{}
	}
	return ""
}
