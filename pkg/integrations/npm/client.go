// Package npm reads source repository links from the npm registry.
package npm

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackhealth/pkg/cache"
	"github.com/matzehuels/stackhealth/pkg/integrations"
)

// DefaultBaseURL is the public npm registry.
const DefaultBaseURL = "https://registry.npmjs.org"

// Client provides access to the npm registry.
type Client struct {
	*integrations.Client
	baseURL string
	logger  *log.Logger
}

// NewClient creates an npm registry client. An empty baseURL selects
// [DefaultBaseURL].
func NewClient(backend cache.Cache, baseURL string, cacheTTL time.Duration, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		Client:  integrations.NewClient(backend, "npm", cacheTTL, map[string]string{"Accept": "application/json"}),
		baseURL: integrations.TrimBaseURL(baseURL),
		logger:  logger.With("provider", "npm"),
	}
}

// RepositoryURL returns the repository URL declared by a package, taken from
// the package document or, failing that, from its latest version. Scoped
// names such as "@babel/core" are accepted.
func (c *Client) RepositoryURL(ctx context.Context, name string) (string, bool) {
	url := c.baseURL + "/" + integrations.PathEscape(name)
	return integrations.FetchJSON(ctx, c.Client, c.logger, url, func(doc *packument) (string, bool) {
		if u := repositoryURL(doc.Repository); u != "" {
			return u, true
		}
		if v, ok := doc.Versions[doc.DistTags.Latest]; ok {
			if u := repositoryURL(v.Repository); u != "" {
				return u, true
			}
		}
		return "", false
	})
}

// repositoryURL accepts both forms npm allows: a plain string or an object
// with a url field.
func repositoryURL(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val["url"].(string); ok {
			return s
		}
	}
	return ""
}

type packument struct {
	DistTags struct {
		Latest string `json:"latest"`
	} `json:"dist-tags"`
	Repository any                `json:"repository"`
	Versions   map[string]version `json:"versions"`
}

type version struct {
	Repository any `json:"repository"`
}
