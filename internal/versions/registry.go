// Package versions looks up the latest published versions of dependencies and
// rewrites dependency manifests to use them.
package versions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Resolver fetches the latest published version of a package.
type Resolver interface {
	Latest(ctx context.Context, pkg string) (string, error)
}

// NPMRegistry resolves versions against an npm-compatible registry. Requests
// are throttled so that large manifests do not trip registry rate limits.
type NPMRegistry struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// NewNPMRegistry creates a resolver for baseURL allowing rps requests per second.
func NewNPMRegistry(baseURL string, rps float64, userAgent string, client *http.Client) *NPMRegistry {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if rps <= 0 {
		rps = 5
	}
	return &NPMRegistry{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Latest returns the version tagged "latest" for pkg.
func (r *NPMRegistry) Latest(ctx context.Context, pkg string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for registry rate limit: %w", err)
	}

	// Scoped packages keep their "@" but the separating slash is escaped.
	endpoint := r.baseURL + "/" + strings.Replace(url.PathEscape(pkg), "%40", "@", 1) + "/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pkg, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: registry returned %s", pkg, resp.Status)
	}

	var payload struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode %s: %w", pkg, err)
	}
	if payload.Version == "" {
		return "", fmt.Errorf("fetch %s: registry returned no version", pkg)
	}
	return payload.Version, nil
}
