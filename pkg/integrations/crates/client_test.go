package crates

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/api/v1/crates/serde":
			fmt.Fprint(w, `{"crate":{"name":"serde","repository":"https://github.com/serde-rs/serde"}}`)
		case "/api/v1/crates/no-repo":
			fmt.Fprint(w, `{"crate":{"name":"no-repo","repository":null}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(nil, srv.URL+"/", time.Hour, nil)
	ctx := context.Background()

	got, ok := c.RepositoryURL(ctx, "serde")
	require.True(t, ok)
	assert.Equal(t, "https://github.com/serde-rs/serde", got)

	_, ok = c.RepositoryURL(ctx, "no-repo")
	assert.False(t, ok)

	_, ok = c.RepositoryURL(ctx, "missing")
	assert.False(t, ok)
}
