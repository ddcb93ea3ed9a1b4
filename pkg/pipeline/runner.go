package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackhealth/pkg/cache"
	errs "github.com/matzehuels/stackhealth/pkg/errors"
	"github.com/matzehuels/stackhealth/pkg/health"
	"github.com/matzehuels/stackhealth/pkg/integrations"
	"github.com/matzehuels/stackhealth/pkg/observability"
	"github.com/matzehuels/stackhealth/pkg/store"
)

// Runner encapsulates aggregation with caching and persistence.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner holds no per-run state; multiple goroutines can safely share it.
type Runner struct {
	Analyzer Analyzer
	Cache    cache.Cache
	Keyer    cache.Keyer
	Store    store.Store
	Logger   *log.Logger

	// KeyOpts are the analysis options folded into record cache keys.
	KeyOpts cache.RecordKeyOpts
	// TTL is how long records stay cached.
	TTL time.Duration

	now func() time.Time
}

// NewRunner creates a runner around analyzer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If st is nil, a NullStore is used (persistence disabled).
func NewRunner(analyzer Analyzer, c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if st == nil {
		st = store.NullStore{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Analyzer: analyzer,
		Cache:    c,
		Keyer:    keyer,
		Store:    st,
		Logger:   logger,
		TTL:      cache.TTLRecord,
		now:      time.Now,
	}
}

// Analyze returns the health record of id, from cache when possible.
// It fails for identities no provider understands and when ctx ends before
// the analysis completes. Records of interrupted runs are neither cached nor
// stored.
func (r *Runner) Analyze(ctx context.Context, id health.Identity, opts Options) (*Result, error) {
	if !r.Analyzer.Applicable(id) {
		return nil, errs.New(errs.ErrCodeUnsupportedType, "no provider supports package type %q", id.Type)
	}

	start := r.now()
	key := r.Keyer.RecordKey(id.String(), r.KeyOpts)
	hooks := observability.Cache()

	if !opts.Refresh {
		if res, ok := r.cached(ctx, key); ok {
			hooks.OnCacheHit(ctx, "record")
			res.CacheHit = true
			res.Duration = r.now().Sub(start)
			return res, nil
		}
		hooks.OnCacheMiss(ctx, "record")
	} else {
		ctx = integrations.WithRefresh(ctx)
	}

	rec := r.Analyzer.Analyze(ctx, id)
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errs.Wrap(errs.ErrCodeTimeout, err, "analysis of %s timed out", id)
		}
		return nil, fmt.Errorf("analyze %s: %w", id, err)
	}
	res := &Result{Record: rec, AnalyzedAt: r.now().UTC()}
	res.Duration = r.now().Sub(start)

	if data, err := json.Marshal(res.entry()); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache record", "purl", id.String(), "err", err)
		} else {
			hooks.OnCacheSet(ctx, "record", len(data))
		}
	}
	if err := r.Store.Save(ctx, res.entry()); err != nil {
		r.Logger.Warn("store record", "purl", id.String(), "err", err)
	}

	r.Logger.Info("analyzed component",
		"purl", id.String(),
		"fields", len(rec.SetFields()),
		"duration", res.Duration)
	return res, nil
}

// AnalyzeMany analyzes ids concurrently and returns results in input order.
// An unsupported identity leaves a nil result and its error in failures at the
// same index.
func (r *Runner) AnalyzeMany(ctx context.Context, ids []health.Identity, opts Options) ([]*Result, []error) {
	results := make([]*Result, len(ids))
	failures := make([]error, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			results[i], failures[i] = r.Analyze(ctx, id, opts)
			if opts.Progress != nil {
				opts.Progress(id, failures[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return results, failures
}

// Last returns the most recently stored record of id.
func (r *Runner) Last(ctx context.Context, id health.Identity) (*Result, error) {
	e, err := r.Store.Load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errs.New(errs.ErrCodeNotFound, "no stored record for %s", id)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "load stored record")
	}
	return &Result{Record: e.Record, AnalyzedAt: e.AnalyzedAt}, nil
}

// Close releases the cache and the store.
func (r *Runner) Close(ctx context.Context) error {
	return errors.Join(r.Cache.Close(), r.Store.Close(ctx))
}

func (r *Runner) cached(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		return nil, false
	}
	var e store.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		r.Logger.Debug("discarding unreadable cached record", "err", err)
		return nil, false
	}
	return &Result{Record: e.Record, AnalyzedAt: e.AnalyzedAt}, true
}
