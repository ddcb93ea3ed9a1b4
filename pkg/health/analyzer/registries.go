package analyzer

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackhealth/pkg/health"
	"github.com/matzehuels/stackhealth/pkg/integrations"
)

// RepositoryLookup returns the repository URL a package registry declares
// for a package. The npm, pypi, crates and rubygems clients implement it.
type RepositoryLookup interface {
	RepositoryURL(ctx context.Context, name string) (string, bool)
}

// PackageRegistry pairs a purl type with the package registry serving it.
type PackageRegistry struct {
	Type   string
	Lookup RepositoryLookup
}

// RegistryMapper resolves the source repository from the package's own
// registry metadata. Registered after the deps.dev mapper, it only decides
// the key when deps.dev has no source link.
type RegistryMapper struct {
	typ    string
	lookup RepositoryLookup
	logger *log.Logger
}

// NewRegistryMapper creates a mapper for identities of purlType.
func NewRegistryMapper(purlType string, lookup RepositoryLookup, logger *log.Logger) *RegistryMapper {
	m := &RegistryMapper{typ: purlType, lookup: lookup}
	m.logger = named(logger, m.Name())
	return m
}

func (m *RegistryMapper) Name() string { return "registry-" + m.typ }

func (m *RegistryMapper) Applicable(id health.Identity) bool { return id.Type == m.typ }

// FindSourceCode looks the package up by its namespaced name and reduces the
// declared URL to a repository key.
func (m *RegistryMapper) FindSourceCode(ctx context.Context, id health.Identity) (string, bool) {
	raw, ok := m.lookup.RepositoryURL(ctx, id.NamespacedName("/"))
	if !ok {
		return "", false
	}
	return canonicalKey(integrations.RepoKeyFromURL(raw), raw, m.logger)
}
