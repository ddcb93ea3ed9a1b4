package health

import "context"

// PackageAnalyzer supplies signals that depend only on the component
// identity, typically from a package registry.
type PackageAnalyzer interface {
	Name() string
	Applicable(id Identity) bool
	// Analyze returns a partial record for id. Failures leave fields unset.
	Analyze(ctx context.Context, id Identity) Record
}

// SourceCodeMapper resolves a component identity to a canonical repository
// key such as "github.com/owner/repo".
type SourceCodeMapper interface {
	Name() string
	Applicable(id Identity) bool
	// FindSourceCode returns the repository key, or false when unknown.
	FindSourceCode(ctx context.Context, id Identity) (string, bool)
}

// SourceCodeAnalyzer supplies signals about a source repository.
type SourceCodeAnalyzer interface {
	Name() string
	// Applicable reports whether the analyzer understands repoKey.
	Applicable(repoKey string) bool
	// Analyze returns a partial record for id, derived from repoKey.
	// Failures leave fields unset.
	Analyze(ctx context.Context, id Identity, repoKey string) Record
}
