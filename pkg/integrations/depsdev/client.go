package depsdev

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackhealth/pkg/cache"
	"github.com/matzehuels/stackhealth/pkg/integrations"
)

// DefaultBaseURL is the public deps.dev API.
const DefaultBaseURL = "https://api.deps.dev"

// Client provides access to the deps.dev API.
type Client struct {
	*integrations.Client
	baseURL string
	logger  *log.Logger
}

// NewClient creates a deps.dev client caching responses in backend for
// cacheTTL. An empty baseURL selects [DefaultBaseURL].
func NewClient(backend cache.Cache, baseURL string, cacheTTL time.Duration, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		Client:  integrations.NewClient(backend, "depsdev", cacheTTL, map[string]string{"Accept": "application/json"}),
		baseURL: integrations.TrimBaseURL(baseURL),
		logger:  logger.With("provider", "depsdev"),
	}
}

// LatestVersion returns the default version of a package, which deps.dev
// defines as the latest release.
func (c *Client) LatestVersion(ctx context.Context, system, name string) (string, bool) {
	return integrations.FetchJSON(ctx, c.Client, c.logger, c.packageURL(system, name), func(r *packageResponse) (string, bool) {
		for _, v := range r.Versions {
			if v.IsDefault && v.VersionKey.Version != "" {
				return v.VersionKey.Version, true
			}
		}
		return "", false
	})
}

// Dependents returns the number of packages depending on the given version.
func (c *Client) Dependents(ctx context.Context, system, name, version string) (int, bool) {
	url := fmt.Sprintf("%s/v3alpha/systems/%s/packages/%s/versions/%s:dependents",
		c.baseURL, sys(system), integrations.PathEscape(name), integrations.PathEscape(version))
	return integrations.FetchJSON(ctx, c.Client, c.logger, url, func(r *dependentsResponse) (int, bool) {
		if r.DependentCount == nil {
			return 0, false
		}
		return *r.DependentCount, true
	})
}

// SourceRepoProjectKey returns the project key (e.g. "github.com/owner/repo")
// of the first related project whose relation is the source repository.
func (c *Client) SourceRepoProjectKey(ctx context.Context, system, name, version string) (string, bool) {
	url := c.packageURL(system, name) + "/versions/" + integrations.PathEscape(version)
	return integrations.FetchJSON(ctx, c.Client, c.logger, url, func(r *versionResponse) (string, bool) {
		for _, p := range r.RelatedProjects {
			if p.RelationType == relationSourceRepo && p.ProjectKey.ID != "" {
				return p.ProjectKey.ID, true
			}
		}
		return "", false
	})
}

// Project returns the deps.dev project for a repository key.
func (c *Client) Project(ctx context.Context, projectKey string) (*Project, bool) {
	url := fmt.Sprintf("%s/v3/projects/%s", c.baseURL, integrations.PathEscape(projectKey))
	return integrations.FetchJSON(ctx, c.Client, c.logger, url, func(p *Project) (*Project, bool) {
		return p, true
	})
}

func (c *Client) packageURL(system, name string) string {
	return fmt.Sprintf("%s/v3/systems/%s/packages/%s", c.baseURL, sys(system), integrations.PathEscape(name))
}

func sys(system string) string {
	return strings.ToLower(system)
}
