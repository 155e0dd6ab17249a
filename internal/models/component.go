package models

import "fmt"

// ComponentKind is the category of a scaffolded unit.
type ComponentKind string

const (
	KindAPI       ComponentKind = "api"
	KindAdminUI   ComponentKind = "admin-ui"
	KindStore     ComponentKind = "store"
	KindStatus    ComponentKind = "status"
	KindWorkspace ComponentKind = "workspace"
)

// ProjectKinds lists the project kinds in workspace creation order.
var ProjectKinds = []ComponentKind{KindAPI, KindAdminUI, KindStore, KindStatus}

// ParseComponentKind parses a --type value.
func ParseComponentKind(s string) (ComponentKind, error) {
	switch k := ComponentKind(s); k {
	case KindAPI, KindAdminUI, KindStore, KindStatus, KindWorkspace:
		return k, nil
	}
	return "", fmt.Errorf("unknown component type %q (use: api, admin-ui, store, status)", s)
}

// Suffix returns the folder-name suffix for the kind. Workspaces have none.
func (k ComponentKind) Suffix() string {
	if k == KindWorkspace || k == "" {
		return ""
	}
	return "-" + string(k)
}

// OwnsData reports whether projects of this kind provision backing databases.
func (k ComponentKind) OwnsData() bool {
	return k == KindAPI
}

// IsValid reports whether k is a known kind.
func (k ComponentKind) IsValid() bool {
	_, err := ParseComponentKind(string(k))
	return err == nil
}
