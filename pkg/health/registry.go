package health

// Registry holds the ordered provider lists used by an [Aggregator].
// Registration order is the merge order and the mapper preference order.
//
// A Registry is built once at startup and is not safe for concurrent
// registration; lookups are read-only.
type Registry struct {
	packages []PackageAnalyzer
	mappers  []SourceCodeMapper
	sources  []SourceCodeAnalyzer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterPackageAnalyzer appends package analyzers.
func (r *Registry) RegisterPackageAnalyzer(a ...PackageAnalyzer) *Registry {
	r.packages = append(r.packages, a...)
	return r
}

// RegisterSourceCodeMapper appends source code mappers.
func (r *Registry) RegisterSourceCodeMapper(m ...SourceCodeMapper) *Registry {
	r.mappers = append(r.mappers, m...)
	return r
}

// RegisterSourceCodeAnalyzer appends source code analyzers.
func (r *Registry) RegisterSourceCodeAnalyzer(a ...SourceCodeAnalyzer) *Registry {
	r.sources = append(r.sources, a...)
	return r
}

// PackageAnalyzers returns the package analyzers applicable to id, in registration order.
func (r *Registry) PackageAnalyzers(id Identity) []PackageAnalyzer {
	return applicable(r.packages, func(a PackageAnalyzer) bool { return a.Applicable(id) })
}

// SourceCodeMappers returns the mappers applicable to id, in registration order.
func (r *Registry) SourceCodeMappers(id Identity) []SourceCodeMapper {
	return applicable(r.mappers, func(m SourceCodeMapper) bool { return m.Applicable(id) })
}

// SourceCodeAnalyzers returns the source analyzers applicable to repoKey, in registration order.
func (r *Registry) SourceCodeAnalyzers(repoKey string) []SourceCodeAnalyzer {
	return applicable(r.sources, func(a SourceCodeAnalyzer) bool { return a.Applicable(repoKey) })
}

// Names lists every registered provider, package analyzers first.
func (r *Registry) Names() []string {
	var names []string
	for _, a := range r.packages {
		names = append(names, a.Name())
	}
	for _, m := range r.mappers {
		names = append(names, m.Name())
	}
	for _, a := range r.sources {
		names = append(names, a.Name())
	}
	return names
}

func applicable[T any](all []T, ok func(T) bool) []T {
	var out []T
	for _, v := range all {
		if ok(v) {
			out = append(out, v)
		}
	}
	return out
}
