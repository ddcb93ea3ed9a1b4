// Package integrations provides HTTP clients for the health data providers.
//
// # Overview
//
// Each provider has its own subpackage:
//
//   - [depsdev]: deps.dev API (versions, dependents, source repository, project
//     popularity and OpenSSF scorecard)
//   - [github]: GitHub REST API (repository activity and hygiene signals)
//   - [npm], [pypi], [crates], [rubygems]: package registries, used only to
//     find a package's source repository when deps.dev has none
//
// # Shared Infrastructure
//
// The [Client] type provides shared HTTP functionality: default headers,
// response caching via [cache.Cache], retries and HTTP observability hooks.
// Non-2xx responses map to [ErrNotFound] or [ErrNetwork].
//
// Two helpers keep provider code free of error plumbing:
//
//	version, ok := integrations.FetchJSON(ctx, c, logger, url, func(p *packageResponse) (string, bool) {
//	    return p.defaultVersion()
//	})
//
//	count := integrations.SafeCall(ctx, logger, "count contributors", gh.ContributorCount, -1)
//
// [depsdev]: github.com/matzehuels/stackhealth/pkg/integrations/depsdev
// [github]: github.com/matzehuels/stackhealth/pkg/integrations/github
// [npm]: github.com/matzehuels/stackhealth/pkg/integrations/npm
// [pypi]: github.com/matzehuels/stackhealth/pkg/integrations/pypi
// [crates]: github.com/matzehuels/stackhealth/pkg/integrations/crates
// [rubygems]: github.com/matzehuels/stackhealth/pkg/integrations/rubygems
// [cache.Cache]: github.com/matzehuels/stackhealth/pkg/cache.Cache
package integrations
