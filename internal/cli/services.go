package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/stackhealth/pkg/cache"
	"github.com/matzehuels/stackhealth/pkg/config"
	errs "github.com/matzehuels/stackhealth/pkg/errors"
	"github.com/matzehuels/stackhealth/pkg/health"
	"github.com/matzehuels/stackhealth/pkg/health/analyzer"
	"github.com/matzehuels/stackhealth/pkg/integrations"
	"github.com/matzehuels/stackhealth/pkg/integrations/crates"
	"github.com/matzehuels/stackhealth/pkg/integrations/depsdev"
	"github.com/matzehuels/stackhealth/pkg/integrations/github"
	"github.com/matzehuels/stackhealth/pkg/integrations/npm"
	"github.com/matzehuels/stackhealth/pkg/integrations/pypi"
	"github.com/matzehuels/stackhealth/pkg/integrations/rubygems"
	"github.com/matzehuels/stackhealth/pkg/pipeline"
	"github.com/matzehuels/stackhealth/pkg/store"
)

// retryDelay is the pause between deps.dev attempts when retries are enabled.
const retryDelay = time.Second

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner wires clients, providers, cache and store into a pipeline runner.
// The caller owns the runner and must Close it.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := c.settings()

	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	st, err := c.newStore(ctx)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	keyer := cache.NewDefaultKeyer()
	if scope := cfg.Cache.Scope; scope != "" {
		keyer = cache.NewScopedKeyer(keyer, scope+":")
	}

	reg, err := c.newRegistry(backend, keyer)
	if err != nil {
		_ = backend.Close()
		_ = st.Close(ctx)
		return nil, err
	}

	agg := health.NewAggregator(reg,
		health.WithLogger(c.Logger),
		health.WithParallel(cfg.Parallel))

	r := pipeline.NewRunner(agg, backend, keyer, st, c.Logger)
	r.TTL = cfg.Cache.TTL
	r.KeyOpts = cache.RecordKeyOpts{GitHub: cfg.GitHub.Enabled, Providers: len(reg.Names())}
	return r, nil
}

func (c *CLI) newRegistry(backend cache.Cache, keyer cache.Keyer) (*health.Registry, error) {
	cfg := c.settings()
	opts := analyzer.Options{
		Systems: analyzer.Systems(cfg.Systems),
		Hosts:   cfg.DepsDev.Hosts,
		Stats: analyzer.StatsPolicy{
			MaxAttempts: cfg.GitHub.StatsAttempts,
			Interval:    cfg.GitHub.StatsInterval,
		},
		Logger: c.Logger,
	}

	if cfg.DepsDev.Enabled {
		dd := depsdev.NewClient(backend, cfg.DepsDev.BaseURL, cfg.Cache.HTTPTTL, c.Logger)
		dd.WithKeyer(keyer)
		if cfg.DepsDev.Retries > 1 {
			dd.WithRetry(cfg.DepsDev.Retries, retryDelay)
		}
		opts.DepsDev = dd
	}

	if cfg.Registry.Enabled {
		ttl := cfg.Cache.HTTPTTL
		npmClient := npm.NewClient(backend, cfg.Registry.NPMURL, ttl, c.Logger)
		pypiClient := pypi.NewClient(backend, cfg.Registry.PyPIURL, ttl, c.Logger)
		cratesClient := crates.NewClient(backend, cfg.Registry.CratesURL, ttl, c.Logger)
		gemsClient := rubygems.NewClient(backend, cfg.Registry.RubyGemsURL, ttl, c.Logger)
		for _, ic := range []*integrations.Client{npmClient.Client, pypiClient.Client, cratesClient.Client, gemsClient.Client} {
			ic.WithKeyer(keyer)
		}
		opts.Registries = []analyzer.PackageRegistry{
			{Type: "npm", Lookup: npmClient},
			{Type: "pypi", Lookup: pypiClient},
			{Type: "cargo", Lookup: cratesClient},
			{Type: "gem", Lookup: gemsClient},
		}
	}

	// Only assign a non-nil client; a typed nil would defeat the analyzer's
	// missing-client check.
	if cfg.GitHub.Enabled {
		gc, err := github.NewClient(cfg.GitHub.Token, cfg.GitHub.BaseURL)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeConfig, err, "github client")
		}
		if cfg.GitHub.Token == "" {
			c.Logger.Debug("no GitHub token configured, using unauthenticated requests")
		}
		opts.GitHub = gc
	}

	return analyzer.NewRegistry(opts), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.settings().Cache
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	}

	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg := c.settings().Store
	if cfg.Backend != config.BackendMongo {
		return store.NullStore{}, nil
	}
	st, err := store.NewMongoStore(ctx, store.MongoConfig{
		URI:        cfg.Mongo.URI,
		Database:   cfg.Mongo.Database,
		Collection: cfg.Mongo.Collection,
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if dir := c.settings().Cache.Dir; dir != "" {
		return dir, nil
	}
	return defaultCacheDir()
}

// defaultCacheDir returns the cache directory using XDG standard (~/.cache/stackhealth/).
func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
