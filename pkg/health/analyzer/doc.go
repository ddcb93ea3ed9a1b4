// Package analyzer implements the health providers registered with a
// [health.Registry]:
//
//   - [DepsDevPackageAnalyzer]: dependents count from deps.dev
//   - [DepsDevMapper]: source repository key from deps.dev
//   - [DepsDevSourceAnalyzer]: stars, forks, open issues and the OpenSSF
//     scorecard from deps.dev
//   - [GitHubAnalyzer]: activity and hygiene signals from the GitHub API
//
// [NewRegistry] wires them in their canonical order. Providers never fail:
// every unanswered question leaves its field unset and is logged.
package analyzer
