// Package config loads stackhealth configuration.
//
// Values are resolved by viper in this order: environment variables
// (STACKHEALTH_ prefix, dots become underscores, e.g.
// STACKHEALTH_GITHUB_TOKEN), the config file, then built-in defaults.
// GITHUB_TOKEN is honored when STACKHEALTH_GITHUB_TOKEN is unset.
//
// The config file is stackhealth.toml, looked up in the working directory
// and in $XDG_CONFIG_HOME/stackhealth, unless a path is given explicitly:
//
//	parallel = true
//
//	[github]
//	token = "ghp_..."
//	stats_attempts = 5
//	stats_interval = "2s"
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	[store.mongo]
//	uri = "mongodb://localhost:27017"
//
//	[systems]
//	npm = "NPM"
package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	errs "github.com/matzehuels/stackhealth/pkg/errors"
)

// Cache and store backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// AppName names the config file, env prefix and config directory.
const AppName = "stackhealth"

//go:embed defaults.toml
var defaultsTOML string

// Config is the resolved configuration.
type Config struct {
	GitHub   GitHubConfig      `mapstructure:"github"`
	DepsDev  DepsDevConfig     `mapstructure:"depsdev"`
	Registry RegistryConfig    `mapstructure:"registry"`
	Systems  map[string]string `mapstructure:"systems"`
	Cache    CacheConfig       `mapstructure:"cache"`
	Store    StoreConfig       `mapstructure:"store"`
	Server   ServerConfig      `mapstructure:"server"`
	Parallel bool              `mapstructure:"parallel"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type GitHubConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Token         string        `mapstructure:"token"`
	BaseURL       string        `mapstructure:"base_url"`
	StatsAttempts int           `mapstructure:"stats_attempts"`
	StatsInterval time.Duration `mapstructure:"stats_interval"`
}

type DepsDevConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	BaseURL string   `mapstructure:"base_url"`
	Hosts   []string `mapstructure:"hosts"`
	// Retries is the number of attempts for 5xx and transport failures.
	Retries int `mapstructure:"retries"`
}

// RegistryConfig selects the package registries consulted for source
// repository links when deps.dev has none.
type RegistryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	NPMURL      string `mapstructure:"npm_url"`
	PyPIURL     string `mapstructure:"pypi_url"`
	CratesURL   string `mapstructure:"crates_url"`
	RubyGemsURL string `mapstructure:"rubygems_url"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	Dir     string        `mapstructure:"dir"`
	TTL     time.Duration `mapstructure:"ttl"`
	HTTPTTL time.Duration `mapstructure:"http_ttl"`

	// Scope prefixes every cache key so deployments can share a backend.
	Scope string      `mapstructure:"scope"`
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type StoreConfig struct {
	Backend string      `mapstructure:"backend"`
	Mongo   MongoConfig `mapstructure:"mongo"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from path, or from the default locations when
// path is empty. A missing default config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	if err := setDefaults(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(configHome(), AppName))
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("github.token", "STACKHEALTH_GITHUB_TOKEN", "GITHUB_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errs.Wrap(errs.ErrCodeConfig, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfig, err, "decode config")
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	_ = setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return errs.New(errs.ErrCodeConfig, "cache.redis.addr is required for the redis backend")
		}
	default:
		return errs.New(errs.ErrCodeConfig, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}

	switch c.Store.Backend {
	case BackendNone:
	case BackendMongo:
		if c.Store.Mongo.URI == "" {
			return errs.New(errs.ErrCodeConfig, "store.mongo.uri is required for the mongo backend")
		}
	default:
		return errs.New(errs.ErrCodeConfig, "unknown store backend %q (want mongo or none)", c.Store.Backend)
	}

	if c.GitHub.BaseURL != "" {
		if err := errs.ValidateURL(c.GitHub.BaseURL); err != nil {
			return errs.Wrap(errs.ErrCodeConfig, err, "github.base_url")
		}
	}
	if err := errs.ValidateURL(c.DepsDev.BaseURL); err != nil {
		return errs.Wrap(errs.ErrCodeConfig, err, "depsdev.base_url")
	}
	if c.Registry.Enabled {
		for key, u := range map[string]string{
			"registry.npm_url":      c.Registry.NPMURL,
			"registry.pypi_url":     c.Registry.PyPIURL,
			"registry.crates_url":   c.Registry.CratesURL,
			"registry.rubygems_url": c.Registry.RubyGemsURL,
		} {
			if err := errs.ValidateURL(u); err != nil {
				return errs.Wrap(errs.ErrCodeConfig, err, "%s", key)
			}
		}
	}
	if c.GitHub.StatsAttempts < 1 {
		return errs.New(errs.ErrCodeConfig, "github.stats_attempts must be at least 1")
	}
	if c.GitHub.StatsInterval < 0 || c.Cache.TTL < 0 || c.Cache.HTTPTTL < 0 {
		return errs.New(errs.ErrCodeConfig, "durations must not be negative")
	}
	if c.DepsDev.Retries < 1 {
		return errs.New(errs.ErrCodeConfig, "depsdev.retries must be at least 1")
	}

	for typ, system := range c.Systems {
		if err := errs.ValidateType(typ); err != nil {
			return errs.Wrap(errs.ErrCodeConfig, err, "systems")
		}
		if system == "" {
			return errs.New(errs.ErrCodeConfig, "systems.%s has no deps.dev system", typ)
		}
	}
	return nil
}

type defaultsFile struct {
	Systems map[string]string `toml:"systems"`
}

func setDefaults(v *viper.Viper) error {
	var d defaultsFile
	if _, err := toml.Decode(defaultsTOML, &d); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "decode built-in defaults")
	}

	v.SetDefault("github.enabled", true)
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("github.stats_attempts", 5)
	v.SetDefault("github.stats_interval", "2s")
	v.SetDefault("depsdev.enabled", true)
	v.SetDefault("depsdev.base_url", "https://api.deps.dev")
	v.SetDefault("depsdev.hosts", []string{"github", "gitlab", "bitbucket"})
	v.SetDefault("depsdev.retries", 1)
	v.SetDefault("registry.enabled", true)
	v.SetDefault("registry.npm_url", "https://registry.npmjs.org")
	v.SetDefault("registry.pypi_url", "https://pypi.org")
	v.SetDefault("registry.crates_url", "https://crates.io")
	v.SetDefault("registry.rubygems_url", "https://rubygems.org")
	v.SetDefault("systems", d.Systems)
	v.SetDefault("cache.backend", BackendFile)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.ttl", "12h")
	v.SetDefault("cache.http_ttl", "24h")
	v.SetDefault("cache.scope", "")
	v.SetDefault("cache.redis.addr", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", AppName+":")
	v.SetDefault("store.backend", BackendNone)
	v.SetDefault("store.mongo.uri", "")
	v.SetDefault("store.mongo.database", AppName)
	v.SetDefault("store.mongo.collection", "records")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("parallel", false)
	return nil
}

// configHome returns the base config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}
	return "."
}
