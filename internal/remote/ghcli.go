package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/good-yellow-bee/kitforge/internal/runner"
)

// GHCLI provisions repositories by shelling out to the gh CLI, reusing
// whatever authentication gh already has.
type GHCLI struct {
	runner runner.Runner
}

// NewGHCLI returns a gh-backed Provider.
func NewGHCLI(r runner.Runner) *GHCLI {
	return &GHCLI{runner: r}
}

// Name implements Provider.
func (g *GHCLI) Name() string { return "gh-cli" }

func fullName(owner, name string) string {
	if owner == "" {
		return name
	}
	return owner + "/" + name
}

// CreateRepo runs "gh repo create".
func (g *GHCLI) CreateRepo(ctx context.Context, owner, name string, private bool) (*Repo, error) {
	visibility := "--public"
	if private {
		visibility = "--private"
	}
	out, err := g.runner.Run(ctx, "", "gh", "repo", "create", fullName(owner, name), visibility)
	if err != nil {
		return nil, fmt.Errorf("create repository %s: %w", fullName(owner, name), err)
	}
	// gh prints the repository URL as its last line.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	webURL := strings.TrimSpace(lines[len(lines)-1])
	repo := &Repo{Owner: owner, Name: name, URL: webURL}
	if strings.HasPrefix(webURL, "https://") {
		repo.CloneURL = webURL + ".git"
	}
	return repo, nil
}

// DeleteRepo runs "gh repo delete --yes". A missing repository is not an error.
func (g *GHCLI) DeleteRepo(ctx context.Context, owner, name string) error {
	_, err := g.runner.Run(ctx, "", "gh", "repo", "delete", fullName(owner, name), "--yes")
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "Could not resolve to a Repository") || strings.Contains(msg, "HTTP 404") {
			return nil
		}
		return fmt.Errorf("delete repository %s: %w", fullName(owner, name), err)
	}
	return nil
}
