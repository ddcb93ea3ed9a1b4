package analyzer

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackhealth/pkg/health"
)

// Options configures [NewRegistry].
type Options struct {
	// DepsDev is the deps.dev client. Nil skips the deps.dev providers.
	DepsDev DepsDevAPI
	// GitHub is the GitHub client. Nil keeps the GitHub analyzer registered
	// but makes it warn and contribute nothing.
	GitHub VCS
	// Systems maps purl types to deps.dev systems. Nil means [DefaultSystems].
	Systems Systems
	// Hosts selects the repositories deps.dev is asked about. Nil means [DefaultHosts].
	Hosts []string
	// Registries add mappers reading package registry metadata, consulted
	// after deps.dev in the order given.
	Registries []PackageRegistry
	// Stats bounds contributor statistics polling. Zero means [DefaultStatsPolicy].
	Stats  StatsPolicy
	Logger *log.Logger
}

// NewRegistry registers the providers in their canonical order: deps.dev
// before GitHub, so GitHub's answers win where both report a field.
func NewRegistry(opts Options) *health.Registry {
	if opts.Systems == nil {
		opts.Systems = DefaultSystems()
	}
	if opts.Stats == (StatsPolicy{}) {
		opts.Stats = DefaultStatsPolicy()
	}

	reg := health.NewRegistry()
	if opts.DepsDev != nil {
		reg.RegisterPackageAnalyzer(NewDepsDevPackageAnalyzer(opts.DepsDev, opts.Systems, opts.Logger)).
			RegisterSourceCodeMapper(NewDepsDevMapper(opts.DepsDev, opts.Systems, opts.Logger)).
			RegisterSourceCodeAnalyzer(NewDepsDevSourceAnalyzer(opts.DepsDev, opts.Hosts, opts.Logger))
	}
	for _, r := range opts.Registries {
		reg.RegisterSourceCodeMapper(NewRegistryMapper(r.Type, r.Lookup, opts.Logger))
	}
	reg.RegisterSourceCodeAnalyzer(NewGitHubAnalyzer(opts.GitHub, opts.Stats, opts.Logger))
	return reg
}
