// Package pipeline runs health aggregation with record caching and
// persistence, for use by both the CLI and the HTTP service.
//
// # Architecture
//
// A [Runner] wraps a [health.Aggregator]:
//
//  1. Look up the record cache (skipped with Options.Refresh)
//  2. On a miss, run the aggregator; with Refresh the provider response
//     cache is bypassed too
//  3. Write the record to the cache and the store
//
// # Usage
//
//	runner := pipeline.NewRunner(agg, cache, nil, store, logger)
//	res, err := runner.Analyze(ctx, id, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Record.SetFields())
package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/stackhealth/pkg/health"
	"github.com/matzehuels/stackhealth/pkg/store"
)

// DefaultConcurrency is how many components [Runner.AnalyzeMany] analyzes at once.
const DefaultConcurrency = 4

// Analyzer is the aggregation entry point the runner drives.
// [health.Aggregator] implements it.
type Analyzer interface {
	Applicable(id health.Identity) bool
	Analyze(ctx context.Context, id health.Identity) health.Record
}

// Options controls a single run.
type Options struct {
	// Refresh ignores cached records and provider responses.
	Refresh bool
	// Progress, if set, is called by [Runner.AnalyzeMany] as each component
	// finishes. Calls may come from several goroutines.
	Progress func(id health.Identity, err error)
}

// Result is the outcome of analyzing one component.
type Result struct {
	Record     health.Record `json:"record"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
	CacheHit   bool          `json:"cache_hit"`
	Duration   time.Duration `json:"duration"`
}

func (r *Result) entry() store.Entry {
	return store.Entry{Record: r.Record, AnalyzedAt: r.AnalyzedAt}
}
