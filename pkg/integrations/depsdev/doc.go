// Package depsdev provides a client for the deps.dev API.
//
// deps.dev indexes package registries and links packages to their source
// repositories. stackhealth uses four endpoints:
//
//   - package: the default (latest) version of a package
//   - version: the related source repository of a version
//   - dependents (v3alpha): how many packages depend on a version
//   - project: popularity counters and the OpenSSF scorecard of a repository
//
// Package names are passed as deps.dev expects them for the system, e.g.
// "org.slf4j:slf4j-api" for Maven or "@babel/core" for npm; the client
// escapes them into a single path segment.
//
// All methods return (value, ok): a failed request or a response without
// the requested datum is logged and reported as ok=false.
package depsdev
