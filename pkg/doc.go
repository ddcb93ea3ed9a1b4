// Package pkg provides the libraries behind stackhealth.
//
// # Overview
//
// Stackhealth enriches a component identity (a package URL) with health
// signals gathered from independent providers and merged into one record.
// The pkg directory is organized as:
//
//  1. [health] - Identity, record model, merge, metrics and the aggregator
//  2. [health/analyzer] - deps.dev, GitHub and registry providers
//  3. [integrations] - HTTP clients for deps.dev, GitHub and package registries
//  4. [pipeline] - Record caching and persistence around the aggregator
//  5. [cache], [store] - File, Redis and MongoDB backends
//  6. [config], [errors], [observability] - Configuration, coded errors, hooks
//
// # Architecture
//
//	package URL
//	     ↓
//	[health.Aggregator]
//	     ├─ package analyzers      (deps.dev dependents)
//	     ├─ source code mappers    (deps.dev, registries → github.com/owner/repo)
//	     └─ source code analyzers  (deps.dev project + scorecard, GitHub)
//	     ↓
//	[health.Record]  →  [pipeline.Runner] cache + store
//
// # Quick Start
//
//	reg := analyzer.NewRegistry(analyzer.Options{
//	    DepsDev: depsdev.NewClient(cache.NewNullCache(), "", cache.TTLHTTP, nil),
//	})
//	agg := health.NewAggregator(reg)
//	id, _ := health.ParseIdentity("pkg:npm/lodash@4.17.21")
//	rec := agg.Analyze(ctx, id)
package pkg
