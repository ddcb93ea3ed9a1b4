package analyzer

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/stackhealth/pkg/errors"
	"github.com/matzehuels/stackhealth/pkg/health"
	"github.com/matzehuels/stackhealth/pkg/integrations"
	"github.com/matzehuels/stackhealth/pkg/integrations/depsdev"
)

// DepsDevAPI is the subset of [depsdev.Client] the deps.dev providers use.
type DepsDevAPI interface {
	LatestVersion(ctx context.Context, system, name string) (string, bool)
	Dependents(ctx context.Context, system, name, version string) (int, bool)
	SourceRepoProjectKey(ctx context.Context, system, name, version string) (string, bool)
	Project(ctx context.Context, projectKey string) (*depsdev.Project, bool)
}

// DefaultHosts are the repository hosts deps.dev reports projects for.
var DefaultHosts = []string{"github", "gitlab", "bitbucket"}

// DepsDevPackageAnalyzer sets the dependents count of a package version.
type DepsDevPackageAnalyzer struct {
	api     DepsDevAPI
	systems Systems
	logger  *log.Logger
}

// NewDepsDevPackageAnalyzer creates the deps.dev package analyzer.
func NewDepsDevPackageAnalyzer(api DepsDevAPI, systems Systems, logger *log.Logger) *DepsDevPackageAnalyzer {
	return &DepsDevPackageAnalyzer{api: api, systems: systems, logger: named(logger, "depsdev-package")}
}

func (a *DepsDevPackageAnalyzer) Name() string { return "depsdev-package" }

func (a *DepsDevPackageAnalyzer) Applicable(id health.Identity) bool {
	_, _, ok := a.systems.Lookup(id)
	return ok
}

// Analyze counts the dependents of the identity's version. When the version
// is missing or unknown to deps.dev, the latest version is used instead.
func (a *DepsDevPackageAnalyzer) Analyze(ctx context.Context, id health.Identity) health.Record {
	rec := health.NewRecord(id)
	system, name, ok := a.systems.Lookup(id)
	if !ok {
		return rec
	}

	var n int
	found := false
	if id.Version != "" {
		n, found = a.api.Dependents(ctx, system, name, id.Version)
	}
	if !found {
		latest, ok := a.api.LatestVersion(ctx, system, name)
		if ok && latest != id.Version {
			a.logger.Debug("falling back to latest version", "name", name, "version", latest)
			n, found = a.api.Dependents(ctx, system, name, latest)
		}
	}
	if found {
		rec.Dependents = health.Ptr(n)
	}
	return rec
}

// DepsDevMapper resolves a package to the source repository deps.dev links
// to its latest version.
type DepsDevMapper struct {
	api     DepsDevAPI
	systems Systems
	logger  *log.Logger
}

// NewDepsDevMapper creates the deps.dev source code mapper.
func NewDepsDevMapper(api DepsDevAPI, systems Systems, logger *log.Logger) *DepsDevMapper {
	return &DepsDevMapper{api: api, systems: systems, logger: named(logger, "depsdev-mapper")}
}

func (m *DepsDevMapper) Name() string { return "depsdev-mapper" }

func (m *DepsDevMapper) Applicable(id health.Identity) bool {
	_, _, ok := m.systems.Lookup(id)
	return ok
}

// FindSourceCode returns the normalized key of the SOURCE_REPO project.
// Keys that fail validation are treated as absent.
func (m *DepsDevMapper) FindSourceCode(ctx context.Context, id health.Identity) (string, bool) {
	system, name, ok := m.systems.Lookup(id)
	if !ok {
		return "", false
	}

	version, ok := m.api.LatestVersion(ctx, system, name)
	if !ok {
		if id.Version == "" {
			return "", false
		}
		version = id.Version
	}

	raw, ok := m.api.SourceRepoProjectKey(ctx, system, name, version)
	if !ok {
		return "", false
	}
	return canonicalKey(integrations.NormalizeRepoKey(raw), raw, m.logger)
}

// canonicalKey validates a normalized repository key, logging and rejecting
// keys that do not have the host/owner/repo shape.
func canonicalKey(key, raw string, logger *log.Logger) (string, bool) {
	if err := errs.ValidateRepoKey(key); err != nil {
		logger.Warn("ignoring source repository", "key", raw, "err", err)
		return "", false
	}
	return key, true
}

// DepsDevSourceAnalyzer reads project popularity and the OpenSSF scorecard.
type DepsDevSourceAnalyzer struct {
	api    DepsDevAPI
	hosts  []string
	logger *log.Logger
}

// NewDepsDevSourceAnalyzer creates the deps.dev source code analyzer for
// repository keys containing one of hosts (nil means [DefaultHosts]).
func NewDepsDevSourceAnalyzer(api DepsDevAPI, hosts []string, logger *log.Logger) *DepsDevSourceAnalyzer {
	if hosts == nil {
		hosts = DefaultHosts
	}
	return &DepsDevSourceAnalyzer{api: api, hosts: hosts, logger: named(logger, "depsdev-source")}
}

func (a *DepsDevSourceAnalyzer) Name() string { return "depsdev-source" }

func (a *DepsDevSourceAnalyzer) Applicable(repoKey string) bool {
	for _, h := range a.hosts {
		if h != "" && strings.Contains(repoKey, h) {
			return true
		}
	}
	return false
}

func (a *DepsDevSourceAnalyzer) Analyze(ctx context.Context, id health.Identity, repoKey string) health.Record {
	rec := health.NewRecord(id)
	p, ok := a.api.Project(ctx, repoKey)
	if !ok || p == nil {
		return rec
	}

	rec.OpenIssues = p.OpenIssuesCount
	rec.Stars = p.StarsCount
	rec.Forks = p.ForksCount

	sc := p.Scorecard
	if sc == nil {
		return rec
	}
	if sc.Reference.Version != "" {
		rec.ScorecardVersion = health.Ptr(sc.Reference.Version)
	}
	rec.ScorecardTimestamp = sc.Date
	rec.ScorecardScore = sc.OverallScore
	if sc.Checks != nil {
		checks := make([]health.ScorecardCheck, len(sc.Checks))
		for i, c := range sc.Checks {
			checks[i] = health.ScorecardCheck{
				Name:             c.Name,
				Description:      c.Documentation.ShortDescription,
				Score:            c.Score,
				Reason:           c.Reason,
				Details:          c.Details,
				DocumentationURL: c.Documentation.URL,
			}
		}
		rec.ScorecardChecks = checks
	}
	return rec
}

func named(logger *log.Logger, name string) *log.Logger {
	if logger == nil {
		logger = log.Default()
	}
	return logger.With("analyzer", name)
}
