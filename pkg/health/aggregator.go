package health

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stackhealth/pkg/observability"
)

// Aggregator runs the registered providers for an identity and merges their
// answers into one record.
type Aggregator struct {
	registry *Registry
	logger   *log.Logger
	parallel bool
	now      func() time.Time
}

// Option configures an [Aggregator].
type Option func(*Aggregator)

// WithLogger sets the logger. The default is [log.Default].
func WithLogger(l *log.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithParallel runs the providers of each stage concurrently. Results are
// still merged in registration order, so the output does not depend on
// completion order.
func WithParallel(on bool) Option {
	return func(a *Aggregator) { a.parallel = on }
}

// NewAggregator creates an aggregator over reg. A nil registry behaves like
// an empty one.
func NewAggregator(reg *Registry, opts ...Option) *Aggregator {
	if reg == nil {
		reg = NewRegistry()
	}
	a := &Aggregator{registry: reg, logger: log.Default(), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Applicable reports whether any package analyzer or source code mapper
// understands id. An inapplicable identity always yields an empty record.
func (a *Aggregator) Applicable(id Identity) bool {
	return len(a.registry.PackageAnalyzers(id)) > 0 || len(a.registry.SourceCodeMappers(id)) > 0
}

// Analyze collects health signals for id. It never fails: providers that
// error or have nothing to say leave their fields unset, and the result is
// at least a record carrying id.
func (a *Aggregator) Analyze(ctx context.Context, id Identity) Record {
	start := a.now()
	purl := id.String()
	hooks := observability.Analysis()
	hooks.OnAnalyzeStart(ctx, purl)

	logger := a.logger.With("purl", purl, "run", uuid.NewString())
	logger.Debug("analyzing component")

	result := a.collect(ctx, id, logger)

	elapsed := a.now().Sub(start)
	fields := result.SetFields()
	hooks.OnAnalyzeComplete(ctx, purl, len(fields), elapsed)
	logger.Debug("analysis complete", "fields", len(fields), "duration", elapsed)
	return result
}

func (a *Aggregator) collect(ctx context.Context, id Identity, logger *log.Logger) Record {
	result := NewRecord(id)

	pkgs := a.registry.PackageAnalyzers(id)
	partials := fanOut(ctx, a.parallel, pkgs, func(ctx context.Context, pa PackageAnalyzer) Record {
		return a.timed(ctx, observability.StagePackage, pa.Name(), func() Record { return pa.Analyze(ctx, id) })
	})
	for i, p := range partials {
		if p.Empty() {
			logger.Warn("no package data", "analyzer", pkgs[i].Name())
		}
		result = Merge(result, p)
	}

	repoKey, ok := a.findSourceCode(ctx, id, logger)
	if !ok {
		return result
	}
	logger = logger.With("repo", repoKey)

	srcs := a.registry.SourceCodeAnalyzers(repoKey)
	if len(srcs) == 0 {
		logger.Info("no source code analyzer for repository")
		return result
	}
	partials = fanOut(ctx, a.parallel, srcs, func(ctx context.Context, sa SourceCodeAnalyzer) Record {
		return a.timed(ctx, observability.StageSource, sa.Name(), func() Record { return sa.Analyze(ctx, id, repoKey) })
	})
	for i, p := range partials {
		if p.Empty() {
			logger.Warn("no source code data", "analyzer", srcs[i].Name())
		}
		result = Merge(result, p)
	}
	return result
}

// findSourceCode asks every applicable mapper and keeps the first key in
// registration order. All mappers run even when an early one answers.
func (a *Aggregator) findSourceCode(ctx context.Context, id Identity, logger *log.Logger) (string, bool) {
	mappers := a.registry.SourceCodeMappers(id)
	if len(mappers) == 0 {
		logger.Info("no source code mapper for component type", "type", id.Type)
		return "", false
	}

	type answer struct {
		key string
		ok  bool
	}
	answers := fanOut(ctx, a.parallel, mappers, func(ctx context.Context, m SourceCodeMapper) answer {
		start := a.now()
		key, ok := m.FindSourceCode(ctx, id)
		found := 0
		if ok {
			found = 1
		}
		observability.Analysis().OnProviderCall(ctx, observability.StageMapper, m.Name(), found, a.now().Sub(start))
		return answer{key, ok}
	})

	for i, ans := range answers {
		if ans.ok && ans.key != "" {
			logger.Debug("resolved source code", "mapper", mappers[i].Name(), "repo", ans.key)
			return ans.key, true
		}
	}
	logger.Warn("could not find source code repository")
	return "", false
}

func (a *Aggregator) timed(ctx context.Context, stage, name string, fn func() Record) Record {
	start := a.now()
	rec := fn()
	observability.Analysis().OnProviderCall(ctx, stage, name, len(rec.SetFields()), a.now().Sub(start))
	return rec
}

// fanOut applies fn to every item and returns the results in item order.
func fanOut[T, R any](ctx context.Context, parallel bool, items []T, fn func(context.Context, T) R) []R {
	out := make([]R, len(items))
	if !parallel || len(items) < 2 {
		for i, it := range items {
			out[i] = fn(ctx, it)
		}
		return out
	}

	var g errgroup.Group
	for i, it := range items {
		g.Go(func() error {
			out[i] = fn(ctx, it)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
