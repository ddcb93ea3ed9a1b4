// Package health aggregates component health signals from independent
// providers into a single [Record].
//
// # Pipeline
//
// An [Aggregator] runs three stages for a component [Identity]:
//
//  1. Every applicable [PackageAnalyzer] (registry signals such as the
//     dependents count); partial records are merged in registration order.
//  2. Every applicable [SourceCodeMapper]; all of them are invoked and the
//     first one (in registration order) that resolves a repository key wins.
//  3. Every applicable [SourceCodeAnalyzer] for that key (hosting API and
//     scorecard signals); partial records are merged in registration order.
//
// Analyzers never return errors. A provider that fails or knows nothing
// simply leaves its fields unset, so the aggregator always returns a record,
// possibly holding nothing but the identity.
//
// # Merge
//
// [Merge] is a pure, field-level, last-applied-wins combination of two
// records: a field set in the incoming record overwrites the target, an unset
// field leaves it alone. Scorecard checks are replaced as a whole list.
//
// # Derived metrics
//
// [BusFactor], [WeeklyCommitFrequency] and [AverageIssueAge] are pure
// functions over contributor statistics and issue timestamps.
//
// Provider implementations live in [github.com/matzehuels/stackhealth/pkg/health/analyzer].
package health
