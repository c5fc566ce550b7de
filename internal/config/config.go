// Package config loads the rangecache command configuration.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Config is the top-level configuration of the rangecache command.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Namespace string         `mapstructure:"namespace"`
	Log       LogConfig      `mapstructure:"log"`
	Cache     CacheConfig    `mapstructure:"cache"`
	Provider  ProviderConfig `mapstructure:"provider"`
	GenStore  GenStoreConfig `mapstructure:"genstore"`
	Hooks     HooksConfig    `mapstructure:"hooks"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`   // debug, info, warn, error
	Backend string `mapstructure:"backend"` // zap, logrus, slog
}

// CacheConfig maps onto rangecache.Options.
type CacheConfig struct {
	Codec           string        `mapstructure:"codec"`
	PaddingRatio    float64       `mapstructure:"padding_ratio"`
	Precision       float64       `mapstructure:"precision"`
	SnapshotTTL     time.Duration `mapstructure:"snapshot_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	GenRetention    time.Duration `mapstructure:"gen_retention"`
	Disabled        bool          `mapstructure:"disabled"`
}

type ProviderConfig struct {
	Kind      string          `mapstructure:"kind"` // ristretto, bigcache, redis
	Ristretto RistrettoConfig `mapstructure:"ristretto"`
	BigCache  BigCacheConfig  `mapstructure:"bigcache"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

type RistrettoConfig struct {
	MaxSnapshots int64 `mapstructure:"max_snapshots"`
}

type BigCacheConfig struct {
	LifeWindow       time.Duration `mapstructure:"life_window"`
	HardMaxSizeMB    int           `mapstructure:"hard_max_size_mb"`
	MaxSnapshotBytes int           `mapstructure:"max_snapshot_bytes"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type GenStoreConfig struct {
	Kind string        `mapstructure:"kind"` // local, redis
	TTL  time.Duration `mapstructure:"ttl"`
}

type HooksConfig struct {
	Log           bool `mapstructure:"log"`
	Metrics       bool `mapstructure:"metrics"`
	AsyncQueue    int  `mapstructure:"async_queue"` // 0 = synchronous delivery
	SelfHealEvery int  `mapstructure:"self_heal_every"`
}

var (
	ErrInvalidConfig = errors.New("invalid config")

	providerKinds = []string{ProviderRistretto, ProviderBigCache, ProviderRedis}
	genStoreKinds = []string{GenStoreLocal, GenStoreRedis}
	logLevels     = []string{"debug", "info", "warn", "error"}
	logBackends   = []string{LogZap, LogLogrus, LogSlog}
)

const (
	ProviderRistretto = "ristretto"
	ProviderBigCache  = "bigcache"
	ProviderRedis     = "redis"

	GenStoreLocal = "local"
	GenStoreRedis = "redis"

	LogZap    = "zap"
	LogLogrus = "logrus"
	LogSlog   = "slog"
)

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if strings.TrimSpace(c.Namespace) == "" {
		bad("namespace is required")
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		bad("log.level %q not in %v", c.Log.Level, logLevels)
	}
	if !slices.Contains(logBackends, c.Log.Backend) {
		bad("log.backend %q not in %v", c.Log.Backend, logBackends)
	}
	if c.Cache.PaddingRatio < 0 {
		bad("cache.padding_ratio must be >= 0")
	}
	if c.Cache.Precision < 0 {
		bad("cache.precision must be >= 0")
	}
	if !slices.Contains(providerKinds, c.Provider.Kind) {
		bad("provider.kind %q not in %v", c.Provider.Kind, providerKinds)
	}
	if c.Provider.Kind == ProviderRistretto && c.Provider.Ristretto.MaxSnapshots <= 0 {
		bad("provider.ristretto.max_snapshots must be > 0")
	}
	if !slices.Contains(genStoreKinds, c.GenStore.Kind) {
		bad("genstore.kind %q not in %v", c.GenStore.Kind, genStoreKinds)
	}
	needsRedis := c.Provider.Kind == ProviderRedis || c.GenStore.Kind == GenStoreRedis
	if needsRedis && c.Provider.Redis.Addr == "" {
		bad("provider.redis.addr is required for redis")
	}
	if c.Hooks.AsyncQueue < 0 {
		bad("hooks.async_queue must be >= 0")
	}
	if c.Hooks.SelfHealEvery < 0 {
		bad("hooks.self_heal_every must be >= 0")
	}

	return errors.Join(errs...)
}
