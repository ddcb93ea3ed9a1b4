package rubygems

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
		switch r.URL.Path {
		case "/api/v1/gems/rails.json":
			fmt.Fprint(w, `{"name":"rails","source_code_uri":"https://github.com/rails/rails/tree/v7.1.3","homepage_uri":"https://rubyonrails.org"}`)
		case "/api/v1/gems/rack.json":
			fmt.Fprint(w, `{"name":"rack","source_code_uri":null,"homepage_uri":"https://github.com/rack/rack"}`)
		case "/api/v1/gems/bare.json":
			fmt.Fprint(w, `{"name":"bare"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(nil, srv.URL, time.Hour, nil)
	ctx := context.Background()

	got, ok := c.RepositoryURL(ctx, "rails")
	require.True(t, ok)
	assert.Equal(t, "https://github.com/rails/rails/tree/v7.1.3", got)

	got, ok = c.RepositoryURL(ctx, "rack")
	require.True(t, ok)
	assert.Equal(t, "https://github.com/rack/rack", got)

	_, ok = c.RepositoryURL(ctx, "bare")
	assert.False(t, ok)
}
