package models

import (
	"time"
)

// ProjectStatus is the lifecycle state of a project record.
type ProjectStatus string

const (
	StatusCreating   ProjectStatus = "creating"
	StatusCreated    ProjectStatus = "created"
	StatusDestroying ProjectStatus = "destroying"
	StatusDestroyed  ProjectStatus = "destroyed"
)

// Databases holds the derived database names of a data-owning project.
type Databases struct {
	Dev  string `json:"dev"`
	Test string `json:"test"`
	Prod string `json:"prod"`
}

// Names returns the database names in dev, test, prod order.
func (d *Databases) Names() []string {
	if d == nil {
		return nil
	}
	return []string{d.Dev, d.Test, d.Prod}
}

// ProjectMetadata is the tracked record of one scaffolded project, keyed by FolderName.
type ProjectMetadata struct {
	Name       string        `json:"name"`
	Type       ComponentKind `json:"type"`
	FolderName string        `json:"folderName"`
	Path       string        `json:"path"`
	Databases  *Databases    `json:"databases,omitempty"`
	Status     ProjectStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// IsActive reports whether the record is not in the destroyed state.
func (p *ProjectMetadata) IsActive() bool {
	return p.Status != StatusDestroyed
}

// Clone returns a deep copy.
func (p *ProjectMetadata) Clone() *ProjectMetadata {
	if p == nil {
		return nil
	}
	c := *p
	if p.Databases != nil {
		dbs := *p.Databases
		c.Databases = &dbs
	}
	return &c
}
