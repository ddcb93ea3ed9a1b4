package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/stackhealth/pkg/health"
)

type fakeLookup struct {
	urls  map[string]string
	calls []string
}

func (f *fakeLookup) RepositoryURL(_ context.Context, name string) (string, bool) {
	f.calls = append(f.calls, name)
	u, ok := f.urls[name]
	return u, ok
}

func TestRegistryMapper(t *testing.T) {
	lookup := &fakeLookup{urls: map[string]string{
		"@babel/core": "git+https://github.com/babel/babel.git",
		"requests":    "https://github.com/psf/requests/tree/main",
		"homepage":    "https://example.com",
	}}
	m := NewRegistryMapper("npm", lookup, quiet())

	assert.Equal(t, "registry-npm", m.Name())
	assert.True(t, m.Applicable(health.Identity{Type: "npm", Name: "x"}))
	assert.False(t, m.Applicable(health.Identity{Type: "pypi", Name: "x"}))

	ctx := context.Background()
	key, ok := m.FindSourceCode(ctx, health.Identity{Type: "npm", Namespace: "@babel", Name: "core"})
	assert.True(t, ok)
	assert.Equal(t, "github.com/babel/babel", key)

	key, ok = m.FindSourceCode(ctx, health.Identity{Type: "npm", Name: "requests"})
	assert.True(t, ok)
	assert.Equal(t, "github.com/psf/requests", key)

	_, ok = m.FindSourceCode(ctx, health.Identity{Type: "npm", Name: "homepage"})
	assert.False(t, ok, "a bare homepage is not a repository")

	_, ok = m.FindSourceCode(ctx, health.Identity{Type: "npm", Name: "unknown"})
	assert.False(t, ok)

	assert.Equal(t, []string{"@babel/core", "requests", "homepage", "unknown"}, lookup.calls)
}

func TestRegistryMapperIsFallback(t *testing.T) {
	api := &fakeDepsDev{
		latest: map[string]string{"flask": "3.0.0", "orphan": "1.0.0"},
		repos:  map[string]string{"flask@3.0.0": "github.com/pallets/flask"},
	}
	lookup := &fakeLookup{urls: map[string]string{
		"flask":  "https://github.com/someone/fork",
		"orphan": "https://gitlab.com/group/orphan",
	}}
	reg := NewRegistry(Options{
		DepsDev:    api,
		Registries: []PackageRegistry{{Type: "pypi", Lookup: lookup}},
		Logger:     quiet(),
	})
	assert.Equal(t, []string{"depsdev-package", "depsdev-mapper", "registry-pypi", "depsdev-source", "github"}, reg.Names())

	var seen []string
	agg := health.NewAggregator(reg, health.WithLogger(quiet()))
	agg.Analyze(context.Background(), flask)
	agg.Analyze(context.Background(), health.Identity{Type: "pypi", Name: "orphan"})
	for _, c := range api.calls {
		if key, ok := strings.CutPrefix(c, "project "); ok {
			seen = append(seen, key)
		}
	}
	assert.Equal(t, []string{"github.com/pallets/flask", "gitlab.com/group/orphan"}, seen)
	assert.Equal(t, []string{"flask", "orphan"}, lookup.calls)
}
