package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/stackhealth/pkg/errors"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("STACKHEALTH_GITHUB_TOKEN", "")
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stackhealth.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.File)
	assert.True(t, cfg.GitHub.Enabled)
	assert.Equal(t, 5, cfg.GitHub.StatsAttempts)
	assert.Equal(t, 2*time.Second, cfg.GitHub.StatsInterval)
	assert.Equal(t, "https://api.deps.dev", cfg.DepsDev.BaseURL)
	assert.Equal(t, []string{"github", "gitlab", "bitbucket"}, cfg.DepsDev.Hosts)
	assert.True(t, cfg.Registry.Enabled)
	assert.Equal(t, "https://registry.npmjs.org", cfg.Registry.NPMURL)
	assert.Equal(t, BackendFile, cfg.Cache.Backend)
	assert.Equal(t, 12*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, BackendNone, cfg.Store.Backend)
	assert.Equal(t, "records", cfg.Store.Mongo.Collection)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.Parallel)

	assert.Equal(t, "NPM", cfg.Systems["npm"])
	assert.Equal(t, "RUBYGEMS", cfg.Systems["gem"])
	assert.Len(t, cfg.Systems, 7)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
parallel = true

[github]
token = "from-file"
stats_attempts = 3
stats_interval = "500ms"

[cache]
backend = "redis"
ttl = "1h"
[cache.redis]
addr = "localhost:6379"
db = 2

[store]
backend = "mongo"
[store.mongo]
uri = "mongodb://localhost:27017"

[systems]
npm = "NPM"
conda = "CONDA"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, "from-file", cfg.GitHub.Token)
	assert.Equal(t, 3, cfg.GitHub.StatsAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.GitHub.StatsInterval)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.Mongo.URI)
	assert.Equal(t, "stackhealth", cfg.Store.Mongo.Database)
	assert.Equal(t, map[string]string{"npm": "NPM", "conda": "CONDA"}, cfg.Systems)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "[github]\ntoken = \"from-file\"\n")

	t.Setenv("STACKHEALTH_GITHUB_TOKEN", "from-env")
	t.Setenv("STACKHEALTH_SERVER_ADDR", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GitHub.Token)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoadGitHubTokenFallback(t *testing.T) {
	isolate(t)
	t.Setenv("GITHUB_TOKEN", "plain")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "plain", cfg.GitHub.Token)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.True(t, errs.Is(err, errs.ErrCodeConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without addr", func(c *Config) { c.Cache.Backend = BackendRedis }},
		{"unknown store backend", func(c *Config) { c.Store.Backend = "postgres" }},
		{"mongo without uri", func(c *Config) { c.Store.Backend = BackendMongo }},
		{"bad github url", func(c *Config) { c.GitHub.BaseURL = "ftp://example.com" }},
		{"empty depsdev url", func(c *Config) { c.DepsDev.BaseURL = "" }},
		{"bad registry url", func(c *Config) { c.Registry.PyPIURL = "pypi.org" }},
		{"zero attempts", func(c *Config) { c.GitHub.StatsAttempts = 0 }},
		{"negative interval", func(c *Config) { c.GitHub.StatsInterval = -time.Second }},
		{"bad system type", func(c *Config) { c.Systems["NPM!"] = "NPM" }},
		{"empty system", func(c *Config) { c.Systems["conda"] = "" }},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeConfig), "got %v", err)
		})
	}
}
