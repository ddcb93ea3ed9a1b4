package analyzer

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackhealth/pkg/integrations"
	"github.com/matzehuels/stackhealth/pkg/integrations/depsdev"
	"github.com/matzehuels/stackhealth/pkg/integrations/github"
)

func quiet() *log.Logger { return log.New(io.Discard) }

type fakeDepsDev struct {
	latest     map[string]string // keyed by name
	dependents map[string]int    // keyed by name@version
	repos      map[string]string // keyed by name@version
	projects   map[string]*depsdev.Project
	calls      []string
}

func (f *fakeDepsDev) LatestVersion(_ context.Context, system, name string) (string, bool) {
	f.calls = append(f.calls, "latest "+system+" "+name)
	v, ok := f.latest[name]
	return v, ok
}

func (f *fakeDepsDev) Dependents(_ context.Context, system, name, version string) (int, bool) {
	f.calls = append(f.calls, "dependents "+system+" "+name+"@"+version)
	n, ok := f.dependents[name+"@"+version]
	return n, ok
}

func (f *fakeDepsDev) SourceRepoProjectKey(_ context.Context, system, name, version string) (string, bool) {
	f.calls = append(f.calls, "repo "+system+" "+name+"@"+version)
	k, ok := f.repos[name+"@"+version]
	return k, ok
}

func (f *fakeDepsDev) Project(_ context.Context, key string) (*depsdev.Project, bool) {
	f.calls = append(f.calls, "project "+key)
	p, ok := f.projects[key]
	return p, ok
}

type fakeVCS struct {
	repo       *github.Repo
	repoErr    error
	failAll    bool
	files      map[string]bool
	issues     []time.Time
	stats      []github.StatsResult
	statsCalls int
}

func (f *fakeVCS) err() error {
	if f.failAll {
		return integrations.ErrNetwork
	}
	return nil
}

func (f *fakeVCS) Repository(context.Context, string, string) (*github.Repo, error) {
	return f.repo, f.repoErr
}

func (f *fakeVCS) ContributorCount(context.Context, string, string) (int, error) {
	return 12, f.err()
}

func (f *fakeVCS) OpenPullRequestCount(context.Context, string, string) (int, error) {
	return 3, f.err()
}

func (f *fakeVCS) LastCommit(context.Context, string, string, string) (time.Time, error) {
	return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), f.err()
}

func (f *fakeVCS) FileExists(_ context.Context, _, _, path string) (bool, error) {
	return f.files[path], f.err()
}

func (f *fakeVCS) HasReadme(context.Context, string, string) (bool, error) {
	return true, f.err()
}

func (f *fakeVCS) BlobCount(context.Context, string, string, string) (int, error) {
	return 250, f.err()
}

func (f *fakeVCS) OpenIssueCreationTimes(context.Context, string, string) ([]time.Time, error) {
	return f.issues, f.err()
}

func (f *fakeVCS) ContributorStats(context.Context, string, string) github.StatsResult {
	i := min(f.statsCalls, len(f.stats)-1)
	f.statsCalls++
	return f.stats[i]
}
