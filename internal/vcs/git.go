// Package vcs drives the git CLI for freshly scaffolded projects. All commands
// target the project directory via "git -C <dir>".
package vcs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/good-yellow-bee/kitforge/internal/fsutil"
	"github.com/good-yellow-bee/kitforge/internal/runner"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

// Repository represents a git working tree at a specific directory.
type Repository struct {
	dir    string
	runner runner.Runner
}

// NewRepository returns a Repository targeting dir.
func NewRepository(dir string, r runner.Runner) *Repository {
	return &Repository{dir: dir, runner: r}
}

// Dir returns the repository directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Available reports whether the git binary can be found.
func (r *Repository) Available() error {
	if _, err := r.runner.LookPath("git"); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternalToolUnavailable, "git is not installed")
	}
	return nil
}

// IsInitialized reports whether dir already contains a repository.
func (r *Repository) IsInitialized() bool {
	ok, _ := fsutil.Exists(filepath.Join(r.dir, ".git"))
	return ok
}

func (r *Repository) run(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"-C", r.dir}, args...)
	return r.runner.Run(ctx, "", "git", fullArgs...)
}

// Init creates the repository with branch as its initial branch. It is a
// no-op returning false when the repository already exists.
func (r *Repository) Init(ctx context.Context, branch string) (bool, error) {
	if r.IsInitialized() {
		return false, nil
	}
	if err := r.Available(); err != nil {
		return false, err
	}
	if _, err := r.run(ctx, "init"); err != nil {
		return false, err
	}
	if branch != "" {
		// Works on the unborn branch regardless of the git version's init.defaultBranch.
		if _, err := r.run(ctx, "symbolic-ref", "HEAD", "refs/heads/"+branch); err != nil {
			return true, fmt.Errorf("set initial branch: %w", err)
		}
	}
	return true, nil
}

// AddAll stages every file in the working tree.
func (r *Repository) AddAll(ctx context.Context) error {
	_, err := r.run(ctx, "add", "--all")
	return err
}

// Commit records the staged changes.
func (r *Repository) Commit(ctx context.Context, message string) error {
	_, err := r.run(ctx, "commit", "--quiet", "-m", message)
	return err
}

// HasCommits reports whether HEAD points at a commit.
func (r *Repository) HasCommits(ctx context.Context) bool {
	_, err := r.run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

// SetRemote adds remote name pointing at url, or updates it when it exists.
func (r *Repository) SetRemote(ctx context.Context, name, url string) error {
	out, err := r.run(ctx, "remote")
	if err != nil {
		return err
	}
	for _, existing := range strings.Fields(out) {
		if existing == name {
			_, err := r.run(ctx, "remote", "set-url", name, url)
			return err
		}
	}
	_, err = r.run(ctx, "remote", "add", name, url)
	return err
}

// Push pushes branch to remote and sets it as upstream. A commit must exist.
func (r *Repository) Push(ctx context.Context, remote, branch string) error {
	if !r.HasCommits(ctx) {
		return fmt.Errorf("push %s: repository has no commits", r.dir)
	}
	_, err := r.run(ctx, "push", "--quiet", "-u", remote, branch)
	return err
}
