// Package remote provisions and deletes hosted repositories for workspace
// components, either through the GitHub REST API or the gh CLI.
package remote

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/kitforge/internal/runner"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

// Repo describes a hosted repository.
type Repo struct {
	Owner    string
	Name     string
	URL      string
	CloneURL string
}

// Provider creates and deletes hosted repositories.
type Provider interface {
	Name() string
	CreateRepo(ctx context.Context, owner, name string, private bool) (*Repo, error)
	// DeleteRepo removes owner/name. A repository that does not exist is not an error.
	DeleteRepo(ctx context.Context, owner, name string) error
}

// Options configure provider selection.
type Options struct {
	Token      string
	APIURL     string
	UserAgent  string
	HTTPClient *http.Client
	Runner     runner.Runner
	Logger     *zap.Logger
}

// Select picks the GitHub API when a token is configured, the gh CLI when it
// is installed, and fails with ExternalToolUnavailable otherwise.
func Select(opts Options) (Provider, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Token != "" {
		logger.Debug("using GitHub API for remote repositories", zap.String("api_url", opts.APIURL))
		return NewGitHubAPI(opts.APIURL, opts.Token, opts.UserAgent, opts.HTTPClient), nil
	}
	if opts.Runner != nil {
		if _, err := opts.Runner.LookPath("gh"); err == nil {
			logger.Debug("using gh CLI for remote repositories")
			return NewGHCLI(opts.Runner), nil
		}
	}
	return nil, apperrors.New(apperrors.CodeExternalToolUnavailable, "no GitHub credentials and the gh CLI is not installed").
		WithHint("set KITFORGE_GITHUB_TOKEN (or GITHUB_TOKEN), install gh, or pass --skip-remote")
}
