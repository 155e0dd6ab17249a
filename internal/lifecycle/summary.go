package lifecycle

import (
	"github.com/good-yellow-bee/kitforge/internal/models"
)

// Summary is the human-facing report of a finished create.
type Summary struct {
	Name        string               `json:"name"`
	Kind        models.ComponentKind `json:"type"`
	FolderName  string               `json:"folderName"`
	Path        string               `json:"path"`
	Databases   *models.Databases    `json:"databases,omitempty"`
	Credentials *Credentials         `json:"credentials,omitempty"`
	NextSteps   []string             `json:"nextSteps"`
	Warnings    []string             `json:"warnings,omitempty"`
}

func newSummary(job *Job) Summary {
	return Summary{
		Name:       job.Name,
		Kind:       job.Kind,
		FolderName: job.FolderName,
		Path:       job.Path,
		Databases:  job.Databases,
		Warnings:   append([]string(nil), job.Warnings...),
	}
}
