// Package pypi reads source repository links from the Python Package Index.
package pypi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackhealth/pkg/cache"
	"github.com/matzehuels/stackhealth/pkg/integrations"
)

// DefaultBaseURL is the public PyPI JSON API.
const DefaultBaseURL = "https://pypi.org"

// sourceLabels are project_urls labels naming the code repository, most
// specific first. Labels are compared case-insensitively.
var sourceLabels = []string{"source", "source code", "repository", "code", "github", "homepage"}

// codeHosts are the hosts a homepage must point at to count as a repository.
var codeHosts = []string{"github.com/", "gitlab.com/", "bitbucket.org/"}

// Client provides access to the PyPI JSON API.
type Client struct {
	*integrations.Client
	baseURL string
	logger  *log.Logger
}

// NewClient creates a PyPI client. An empty baseURL selects [DefaultBaseURL].
func NewClient(backend cache.Cache, baseURL string, cacheTTL time.Duration, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		Client:  integrations.NewClient(backend, "pypi", cacheTTL, nil),
		baseURL: integrations.TrimBaseURL(baseURL),
		logger:  logger.With("provider", "pypi"),
	}
}

// RepositoryURL returns the code repository URL of a project, chosen from its
// project_urls by label and falling back to home_page. Only URLs on a known
// code host are returned.
func (c *Client) RepositoryURL(ctx context.Context, name string) (string, bool) {
	url := fmt.Sprintf("%s/pypi/%s/json", c.baseURL, integrations.PathEscape(NormalizeName(name)))
	return integrations.FetchJSON(ctx, c.Client, c.logger, url, func(r *projectResponse) (string, bool) {
		labels := make(map[string]string, len(r.Info.ProjectURLs))
		for k, v := range r.Info.ProjectURLs {
			labels[strings.ToLower(k)] = v
		}
		for _, l := range sourceLabels {
			if u := labels[l]; onCodeHost(u) {
				return u, true
			}
		}
		if onCodeHost(r.Info.HomePage) {
			return r.Info.HomePage, true
		}
		return "", false
	})
}

// NormalizeName applies PEP 503 normalization: lowercase, with runs of
// "-", "_" and "." collapsed to "-".
func NormalizeName(name string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r == '-' || r == '_' || r == '.' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('-')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}

func onCodeHost(u string) bool {
	key := integrations.NormalizeRepoKey(u)
	for _, h := range codeHosts {
		if strings.HasPrefix(key, h) {
			return true
		}
	}
	return false
}

type projectResponse struct {
	Info struct {
		HomePage    string            `json:"home_page"`
		ProjectURLs map[string]string `json:"project_urls"`
	} `json:"info"`
}
