package integrations

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/stackhealth/pkg/cache"
	"github.com/matzehuels/stackhealth/pkg/observability"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist at the provider.
	ErrNotFound = cache.ErrNotFound

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-2xx responses).
	ErrNetwork = cache.ErrNetwork
)

// NewHTTPClient creates an HTTP client with a standard timeout for provider
// requests. Requests are reported to the [observability.HTTPHooks].
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout, Transport: NewTransport(nil)}
}

// NewTransport wraps base (nil means [http.DefaultTransport]) so that every
// round trip is reported to the registered HTTP hooks.
func NewTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return hookTransport{base: base}
}

type hookTransport struct {
	base http.RoundTripper
}

func (t hookTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path

	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

type refreshKey struct{}

// WithRefresh returns a context that makes every [Client.Cached] call
// bypass the cache.
func WithRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

// Refresh reports whether ctx was marked with [WithRefresh].
func Refresh(ctx context.Context) bool {
	v, _ := ctx.Value(refreshKey{}).(bool)
	return v
}

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "github.com/",
	"git@gitlab.com:", "gitlab.com/",
	"git@bitbucket.org:", "bitbucket.org/",
)

// NormalizeRepoKey converts a repository URL or key to the canonical
// "host/owner/repo" form: scheme, "git+" prefix, ".git" suffix and trailing
// slashes are dropped and the host is lowercased. It returns "" for an
// empty input.
func NormalizeRepoKey(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	for _, scheme := range []string{"https://", "http://", "git://", "ssh://git@", "ssh://"} {
		s = strings.TrimPrefix(s, scheme)
	}
	s = strings.TrimSuffix(strings.TrimRight(s, "/"), ".git")

	host, rest, ok := strings.Cut(s, "/")
	if !ok {
		return strings.ToLower(s)
	}
	return strings.ToLower(host) + "/" + rest
}

// RepoKeyFromURL reduces a repository web URL to its "host/owner/repo" key,
// dropping deeper paths ("/tree/main"), query strings and fragments.
func RepoKeyFromURL(raw string) string {
	s, _, _ := strings.Cut(raw, "#")
	s, _, _ = strings.Cut(s, "?")
	key := NormalizeRepoKey(s)
	if parts := strings.SplitN(key, "/", 4); len(parts) == 4 {
		key = strings.Join(parts[:3], "/")
	}
	return strings.TrimSuffix(key, ".git")
}

// TrimBaseURL drops trailing slashes so paths can be appended with "/".
func TrimBaseURL(u string) string { return strings.TrimRight(u, "/") }

// PathEscape percent-encodes s for use as a single URL path segment.
// Slashes are encoded, so scoped names like "@babel/core" stay one segment.
func PathEscape(s string) string { return url.PathEscape(s) }
