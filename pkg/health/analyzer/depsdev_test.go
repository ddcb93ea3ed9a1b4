package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackhealth/pkg/health"
	"github.com/matzehuels/stackhealth/pkg/integrations/depsdev"
)

func TestSystemsLookup(t *testing.T) {
	s := DefaultSystems()

	sys, name, ok := s.Lookup(health.Identity{Type: "maven", Namespace: "org.slf4j", Name: "slf4j-api"})
	assert.True(t, ok)
	assert.Equal(t, "MAVEN", sys)
	assert.Equal(t, "org.slf4j:slf4j-api", name)

	sys, name, ok = s.Lookup(health.Identity{Type: "npm", Namespace: "@babel", Name: "core"})
	assert.True(t, ok)
	assert.Equal(t, "NPM", sys)
	assert.Equal(t, "@babel/core", name)

	_, _, ok = s.Lookup(health.Identity{Type: "generic", Name: "x"})
	assert.False(t, ok)
}

func TestDepsDevPackageAnalyzerUsesIdentityVersion(t *testing.T) {
	api := &fakeDepsDev{dependents: map[string]int{"lodash@4.17.21": 150000}}
	a := NewDepsDevPackageAnalyzer(api, DefaultSystems(), quiet())

	id := health.Identity{Type: "npm", Name: "lodash", Version: "4.17.21"}
	require.True(t, a.Applicable(id))
	rec := a.Analyze(context.Background(), id)

	assert.Equal(t, 150000, *rec.Dependents)
	assert.Equal(t, []string{"dependents NPM lodash@4.17.21"}, api.calls)
}

func TestDepsDevPackageAnalyzerFallsBackToLatest(t *testing.T) {
	api := &fakeDepsDev{
		latest:     map[string]string{"requests": "2.31.0"},
		dependents: map[string]int{"requests@2.31.0": 9000},
	}
	a := NewDepsDevPackageAnalyzer(api, DefaultSystems(), quiet())

	rec := a.Analyze(context.Background(), health.Identity{Type: "pypi", Name: "requests", Version: "0.0.1"})
	assert.Equal(t, 9000, *rec.Dependents)

	rec = a.Analyze(context.Background(), health.Identity{Type: "pypi", Name: "requests"})
	assert.Equal(t, 9000, *rec.Dependents)
}

func TestDepsDevPackageAnalyzerNothingKnown(t *testing.T) {
	a := NewDepsDevPackageAnalyzer(&fakeDepsDev{}, DefaultSystems(), quiet())
	rec := a.Analyze(context.Background(), health.Identity{Type: "cargo", Name: "serde", Version: "1.0.0"})
	assert.True(t, rec.Empty())
	assert.False(t, a.Applicable(health.Identity{Type: "conda", Name: "numpy"}))
}

func TestDepsDevMapper(t *testing.T) {
	api := &fakeDepsDev{
		latest: map[string]string{"lodash": "4.17.21", "weird": "1.0.0"},
		repos: map[string]string{
			"lodash@4.17.21": "github.com/lodash/lodash",
			"weird@1.0.0":    "not a repository",
		},
	}
	m := NewDepsDevMapper(api, DefaultSystems(), quiet())
	ctx := context.Background()

	key, ok := m.FindSourceCode(ctx, health.Identity{Type: "npm", Name: "lodash", Version: "3.0.0"})
	assert.True(t, ok)
	assert.Equal(t, "github.com/lodash/lodash", key)

	_, ok = m.FindSourceCode(ctx, health.Identity{Type: "npm", Name: "weird"})
	assert.False(t, ok)

	_, ok = m.FindSourceCode(ctx, health.Identity{Type: "npm", Name: "unknown"})
	assert.False(t, ok)
}

func TestDepsDevMapperUsesIdentityVersionWithoutLatest(t *testing.T) {
	api := &fakeDepsDev{repos: map[string]string{"cobra@v1.8.0": "https://GitHub.com/spf13/cobra.git"}}
	m := NewDepsDevMapper(api, DefaultSystems(), quiet())

	key, ok := m.FindSourceCode(context.Background(), health.Identity{Type: "golang", Name: "cobra", Version: "v1.8.0"})
	assert.True(t, ok)
	assert.Equal(t, "github.com/spf13/cobra", key)
}

func TestDepsDevSourceAnalyzer(t *testing.T) {
	date := time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC)
	project := &depsdev.Project{
		OpenIssuesCount: health.Ptr(74),
		StarsCount:      health.Ptr(58000),
		ForksCount:      health.Ptr(7000),
		Scorecard: &depsdev.Scorecard{
			Date:         &date,
			OverallScore: health.Ptr(5.4),
			Checks: []depsdev.Check{{
				Name:    "Maintained",
				Score:   0,
				Reason:  "0 commit(s) found",
				Details: []string{"d"},
			}},
		},
	}
	project.Scorecard.Reference.Version = "v4.13.1"
	project.Scorecard.Checks[0].Documentation.ShortDescription = "Determines if the project is maintained."
	project.Scorecard.Checks[0].Documentation.URL = "https://example.org/maintained"

	api := &fakeDepsDev{projects: map[string]*depsdev.Project{"github.com/lodash/lodash": project}}
	a := NewDepsDevSourceAnalyzer(api, nil, quiet())

	assert.True(t, a.Applicable("github.com/lodash/lodash"))
	assert.True(t, a.Applicable("gitlab.com/group/project"))
	assert.False(t, a.Applicable("codeberg.org/a/b"))

	id := health.Identity{Type: "npm", Name: "lodash"}
	rec := a.Analyze(context.Background(), id, "github.com/lodash/lodash")

	assert.Equal(t, id, rec.Identity())
	assert.Equal(t, 74, *rec.OpenIssues)
	assert.Equal(t, 58000, *rec.Stars)
	assert.Equal(t, 7000, *rec.Forks)
	assert.Equal(t, "v4.13.1", *rec.ScorecardVersion)
	assert.Equal(t, 5.4, *rec.ScorecardScore)
	assert.Equal(t, date, *rec.ScorecardTimestamp)
	assert.Equal(t, []health.ScorecardCheck{{
		Name:             "Maintained",
		Description:      "Determines if the project is maintained.",
		Score:            0,
		Reason:           "0 commit(s) found",
		Details:          []string{"d"},
		DocumentationURL: "https://example.org/maintained",
	}}, rec.ScorecardChecks)

	rec = a.Analyze(context.Background(), id, "github.com/unknown/repo")
	assert.True(t, rec.Empty())
}

func TestDepsDevSourceAnalyzerWithoutScorecard(t *testing.T) {
	api := &fakeDepsDev{projects: map[string]*depsdev.Project{"bitbucket.org/a/b": {StarsCount: health.Ptr(2)}}}
	a := NewDepsDevSourceAnalyzer(api, nil, quiet())

	rec := a.Analyze(context.Background(), health.Identity{Type: "npm", Name: "b"}, "bitbucket.org/a/b")
	assert.Equal(t, []string{"stars"}, rec.SetFields())
}
