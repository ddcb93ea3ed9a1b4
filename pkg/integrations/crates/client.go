// Package crates reads source repository links from crates.io.
package crates

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackhealth/pkg/cache"
	"github.com/matzehuels/stackhealth/pkg/integrations"
)

// DefaultBaseURL is the public crates.io API.
const DefaultBaseURL = "https://crates.io"

// userAgent identifies the client; crates.io rejects requests without one.
const userAgent = "stackhealth (https://github.com/matzehuels/stackhealth)"

// Client provides access to the crates.io API.
type Client struct {
	*integrations.Client
	baseURL string
	logger  *log.Logger
}

// NewClient creates a crates.io client. An empty baseURL selects
// [DefaultBaseURL].
func NewClient(backend cache.Cache, baseURL string, cacheTTL time.Duration, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.Default()
	}
	headers := map[string]string{
		"User-Agent": userAgent,
		"Accept":     "application/json",
	}
	return &Client{
		Client:  integrations.NewClient(backend, "crates", cacheTTL, headers),
		baseURL: integrations.TrimBaseURL(baseURL),
		logger:  logger.With("provider", "crates"),
	}
}

// RepositoryURL returns the repository URL of a crate.
func (c *Client) RepositoryURL(ctx context.Context, name string) (string, bool) {
	url := fmt.Sprintf("%s/api/v1/crates/%s", c.baseURL, integrations.PathEscape(name))
	return integrations.FetchJSON(ctx, c.Client, c.logger, url, func(r *crateResponse) (string, bool) {
		return r.Crate.Repository, r.Crate.Repository != ""
	})
}

type crateResponse struct {
	Crate struct {
		Repository string `json:"repository"`
	} `json:"crate"`
}
