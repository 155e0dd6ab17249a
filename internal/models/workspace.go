package models

import (
	"time"
)

// WorkspaceStatus is the lifecycle state of a workspace record.
type WorkspaceStatus string

const (
	WorkspaceCreating   WorkspaceStatus = "creating"
	WorkspaceCreated    WorkspaceStatus = "created"
	WorkspacePartial    WorkspaceStatus = "partial"
	WorkspaceDestroying WorkspaceStatus = "destroying"
	WorkspaceDestroyed  WorkspaceStatus = "destroyed"
)

// Components records which project kinds were requested for a workspace.
type Components struct {
	API     bool `json:"api"`
	AdminUI bool `json:"adminUi"`
	Store   bool `json:"store"`
	Status  bool `json:"status"`
}

// Has reports whether kind was requested.
func (c Components) Has(kind ComponentKind) bool {
	switch kind {
	case KindAPI:
		return c.API
	case KindAdminUI:
		return c.AdminUI
	case KindStore:
		return c.Store
	case KindStatus:
		return c.Status
	}
	return false
}

// Set marks kind as requested or not.
func (c *Components) Set(kind ComponentKind, on bool) {
	switch kind {
	case KindAPI:
		c.API = on
	case KindAdminUI:
		c.AdminUI = on
	case KindStore:
		c.Store = on
	case KindStatus:
		c.Status = on
	}
}

// Kinds returns the requested kinds in creation order.
func (c Components) Kinds() []ComponentKind {
	var kinds []ComponentKind
	for _, k := range ProjectKinds {
		if c.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// WorkspaceProject references a project created as part of a workspace.
type WorkspaceProject struct {
	FolderName string        `json:"folderName"`
	Path       string        `json:"path"`
	Type       ComponentKind `json:"type"`
	AddedAt    time.Time     `json:"addedAt"`
}

// GitHubRepo is a remote repository provisioned for a workspace component.
type GitHubRepo struct {
	Name string        `json:"name"`
	URL  string        `json:"url"`
	Type ComponentKind `json:"type"`
}

// WorkspaceMetadata is the tracked record of a workspace, keyed by Name.
type WorkspaceMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Path        string             `json:"path"`
	Namespace   string             `json:"namespace"`
	Status      WorkspaceStatus    `json:"status"`
	Components  Components         `json:"components"`
	Projects    []WorkspaceProject `json:"projects"`
	GitHubRepos []GitHubRepo       `json:"githubRepos"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// HasProject reports whether folderName is already listed.
func (w *WorkspaceMetadata) HasProject(folderName string) bool {
	for _, p := range w.Projects {
		if p.FolderName == folderName {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (w *WorkspaceMetadata) Clone() *WorkspaceMetadata {
	if w == nil {
		return nil
	}
	c := *w
	c.Projects = append([]WorkspaceProject(nil), w.Projects...)
	c.GitHubRepos = append([]GitHubRepo(nil), w.GitHubRepos...)
	return &c
}
