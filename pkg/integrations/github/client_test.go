package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/stackhealth/pkg/errors"
	"github.com/matzehuels/stackhealth/pkg/integrations"
)

func testClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := NewClient("test-token", srv.URL)
	require.NoError(t, err)
	return c
}

func TestRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/pallets/flask", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{
			"default_branch": "main",
			"created_at": "2010-04-06T11:11:59Z",
			"archived": true,
			"stargazers_count": 67000,
			"forks_count": 16000
		}`)
	})
	c := testClient(t, mux)

	repo, err := c.Repository(context.Background(), "pallets", "flask")
	require.NoError(t, err)
	assert.Equal(t, &Repo{
		DefaultBranch: "main",
		CreatedAt:     time.Date(2010, 4, 6, 11, 11, 59, 0, time.UTC),
		Archived:      true,
	}, repo)
}

func TestRepositoryNotFound(t *testing.T) {
	c := testClient(t, http.NewServeMux())
	_, err := c.Repository(context.Background(), "nobody", "nothing")
	assert.ErrorIs(t, err, integrations.ErrNotFound)
}

func TestRepositoryServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := testClient(t, mux)
	_, err := c.Repository(context.Background(), "o", "r")
	assert.ErrorIs(t, err, integrations.ErrNetwork)
}

func TestPagedCounts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/contributors", func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("anon"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		w.Header().Set("Link", fmt.Sprintf(`<%s?per_page=1&page=2>; rel="next", <%s?per_page=1&page=42>; rel="last"`, r.URL.Path, r.URL.Path))
		fmt.Fprint(w, `[{"login":"a","contributions":10}]`)
	})
	mux.HandleFunc("GET /repos/o/r/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		fmt.Fprint(w, `[{"number":1}]`)
	})
	c := testClient(t, mux)
	ctx := context.Background()

	n, err := c.ContributorCount(ctx, "o", "r")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = c.OpenPullRequestCount(ctx, "o", "r")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLastCommit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/commits", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "main", r.URL.Query().Get("sha"))
		fmt.Fprint(w, `[{"sha":"abc","commit":{
			"author":{"date":"2024-01-01T00:00:00Z"},
			"committer":{"date":"2024-01-02T03:04:05Z"}
		}}]`)
	})
	c := testClient(t, mux)

	got, err := c.LastCommit(context.Background(), "o", "r", "main")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), got)
}

func TestFileExistsAndReadme(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/contents/.github/SECURITY.md", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"file","name":"SECURITY.md","path":".github/SECURITY.md"}`)
	})
	mux.HandleFunc("GET /repos/o/r/readme", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"type":"file","name":"README.md","path":"README.md"}`)
	})
	c := testClient(t, mux)
	ctx := context.Background()

	ok, err := c.FileExists(ctx, "o", "r", ".github/SECURITY.md")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.FileExists(ctx, "o", "r", "CODE_OF_CONDUCT.md")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.FileExists(ctx, "o", "r", "../secrets")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidPath))

	ok, err = c.HasReadme(ctx, "o", "r")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.HasReadme(ctx, "o", "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBlobCount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("recursive"))
		fmt.Fprint(w, `{"sha":"t","truncated":false,"tree":[
			{"path":"README.md","type":"blob"},
			{"path":"go.mod","type":"blob"},
			{"path":"src","type":"tree"},
			{"path":"vendor","type":"commit"}
		]}`)
	})
	c := testClient(t, mux)

	n, err := c.BlobCount(context.Background(), "o", "r", "main")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOpenIssueCreationTimes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"number":3,"created_at":"2024-03-01T00:00:00Z"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, r.URL.Path))
		fmt.Fprint(w, `[
			{"number":1,"created_at":"2024-01-01T00:00:00Z"},
			{"number":2,"created_at":"2024-02-01T00:00:00Z","pull_request":{"url":"x"}}
		]`)
	})
	c := testClient(t, mux)

	got, err := c.OpenIssueCreationTimes(context.Background(), "o", "r")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}, got)
}

func TestContributorStats(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/o/r/stats/contributors", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusAccepted)
			fmt.Fprint(w, `{}`)
			return
		}
		fmt.Fprint(w, `[
			{"author":{"login":"alice"},"total":8},
			{"author":{"login":"bob"},"total":5}
		]`)
	})
	mux.HandleFunc("GET /repos/o/broken/stats/contributors", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"forbidden"}`)
	})
	c := testClient(t, mux)
	ctx := context.Background()

	res := c.ContributorStats(ctx, "o", "r")
	assert.Equal(t, StatsNotReady, res.State)

	res = c.ContributorStats(ctx, "o", "r")
	require.Equal(t, StatsReady, res.State)
	assert.Equal(t, []ContributorStat{{"alice", 8}, {"bob", 5}}, res.Stats)

	res = c.ContributorStats(ctx, "o", "broken")
	assert.Equal(t, StatsFailed, res.State)
	assert.ErrorIs(t, res.Err, integrations.ErrNetwork)
}

func TestNewClientBaseURL(t *testing.T) {
	c, err := NewClient("", "https://ghe.example.com/api/v3")
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3/", c.gh.BaseURL.String())

	c, err = NewClient("", "")
	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com/", c.gh.BaseURL.String())
}
