// Package rubygems reads source repository links from rubygems.org.
package rubygems

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackhealth/pkg/cache"
	"github.com/matzehuels/stackhealth/pkg/integrations"
)

// DefaultBaseURL is the public rubygems.org API.
const DefaultBaseURL = "https://rubygems.org"

// Client provides access to the rubygems.org API.
type Client struct {
	*integrations.Client
	baseURL string
	logger  *log.Logger
}

// NewClient creates a rubygems.org client. An empty baseURL selects
// [DefaultBaseURL].
func NewClient(backend cache.Cache, baseURL string, cacheTTL time.Duration, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		Client:  integrations.NewClient(backend, "rubygems", cacheTTL, nil),
		baseURL: integrations.TrimBaseURL(baseURL),
		logger:  logger.With("provider", "rubygems"),
	}
}

// RepositoryURL returns the source_code_uri of a gem, or its homepage_uri
// when no source link is declared.
func (c *Client) RepositoryURL(ctx context.Context, name string) (string, bool) {
	url := fmt.Sprintf("%s/api/v1/gems/%s.json", c.baseURL, integrations.PathEscape(name))
	return integrations.FetchJSON(ctx, c.Client, c.logger, url, func(r *gemResponse) (string, bool) {
		if r.SourceCodeURI != "" {
			return r.SourceCodeURI, true
		}
		return r.HomepageURI, r.HomepageURI != ""
	})
}

type gemResponse struct {
	SourceCodeURI string `json:"source_code_uri"`
	HomepageURI   string `json:"homepage_uri"`
}
