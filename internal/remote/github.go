package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// githubAPIVersion pins the REST API version header.
const githubAPIVersion = "2022-11-28"

// APIError represents a non-2xx response from the GitHub REST API.
type APIError struct {
	StatusCode int
	Message    string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("github: HTTP %d: %s", err.StatusCode, err.Message)
}

// IsNotFound reports whether err is a GitHub API 404 Not Found response.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == http.StatusNotFound
}

// GitHubAPI is a token-authenticated GitHub REST client covering repository
// creation and deletion.
type GitHubAPI struct {
	baseURL   string
	userAgent string
	client    *http.Client

	login string
}

// NewGitHubAPI returns a client for baseURL authenticated with token. base may
// carry a custom transport; the oauth2 transport wraps it.
func NewGitHubAPI(baseURL, token, userAgent string, base *http.Client) *GitHubAPI {
	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &GitHubAPI{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    oauth2.NewClient(ctx, src),
	}
}

// Name implements Provider.
func (g *GitHubAPI) Name() string { return "github-api" }

type repoResponse struct {
	Name     string `json:"name"`
	HTMLURL  string `json:"html_url"`
	CloneURL string `json:"clone_url"`
	SSHURL   string `json:"ssh_url"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// CreateRepo creates owner/name. When owner is the authenticated user the
// repository is created under the user account, otherwise under the org.
func (g *GitHubAPI) CreateRepo(ctx context.Context, owner, name string, private bool) (*Repo, error) {
	login, err := g.authenticatedLogin(ctx)
	if err != nil {
		return nil, err
	}

	path := "/orgs/" + url.PathEscape(owner) + "/repos"
	if owner == "" || strings.EqualFold(owner, login) {
		path = "/user/repos"
		owner = login
	}

	body := map[string]any{
		"name":      name,
		"private":   private,
		"auto_init": false,
	}
	var resp repoResponse
	if err := g.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, fmt.Errorf("create repository %s/%s: %w", owner, name, err)
	}
	cloneURL := resp.SSHURL
	if cloneURL == "" {
		cloneURL = resp.CloneURL
	}
	return &Repo{Owner: resp.Owner.Login, Name: resp.Name, URL: resp.HTMLURL, CloneURL: cloneURL}, nil
}

// DeleteRepo deletes owner/name, treating 404 as already deleted.
func (g *GitHubAPI) DeleteRepo(ctx context.Context, owner, name string) error {
	path := "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name)
	if err := g.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("delete repository %s/%s: %w", owner, name, err)
	}
	return nil
}

func (g *GitHubAPI) authenticatedLogin(ctx context.Context) (string, error) {
	if g.login != "" {
		return g.login, nil
	}
	var user struct {
		Login string `json:"login"`
	}
	if err := g.do(ctx, http.MethodGet, "/user", nil, &user); err != nil {
		return "", fmt.Errorf("resolve authenticated user: %w", err)
	}
	g.login = user.Login
	return g.login, nil
}

func (g *GitHubAPI) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Message == "" {
			payload.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: payload.Message}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
