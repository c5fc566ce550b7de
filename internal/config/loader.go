package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName      = ".rangecache"
	configType      = "yaml"
	envPrefix       = "RANGECACHE"
	envKeySeparator = "_"
)

// Load reads configuration from file, env vars and defaults.
// If path is empty the file is searched in CWD and $HOME;
// a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("namespace", "default")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.backend", LogZap)

	v.SetDefault("cache.codec", "json")
	v.SetDefault("cache.padding_ratio", 0.0)
	v.SetDefault("cache.precision", 0.0)
	v.SetDefault("cache.snapshot_ttl", 10*time.Minute)
	v.SetDefault("cache.cleanup_interval", time.Hour)
	v.SetDefault("cache.gen_retention", 30*24*time.Hour)
	v.SetDefault("cache.disabled", false)

	v.SetDefault("provider.kind", ProviderRistretto)
	v.SetDefault("provider.ristretto.max_snapshots", 10_000)
	v.SetDefault("provider.bigcache.life_window", 10*time.Minute)
	v.SetDefault("provider.bigcache.hard_max_size_mb", 0)
	v.SetDefault("provider.bigcache.max_snapshot_bytes", 0)
	v.SetDefault("provider.redis.addr", "")
	v.SetDefault("provider.redis.password", "")
	v.SetDefault("provider.redis.db", 0)

	v.SetDefault("genstore.kind", GenStoreLocal)
	v.SetDefault("genstore.ttl", 24*time.Hour)

	v.SetDefault("hooks.log", true)
	v.SetDefault("hooks.metrics", false)
	v.SetDefault("hooks.async_queue", 0)
	v.SetDefault("hooks.self_heal_every", 1)
}
