package main

import (
	"context"
	"fmt"
	"io"
	stdslog "log/slog"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/rangecache"
	"github.com/unkn0wn-root/rangecache/codec"
	"github.com/unkn0wn-root/rangecache/genstore"
	asynchook "github.com/unkn0wn-root/rangecache/hooks/async"
	"github.com/unkn0wn-root/rangecache/internal/config"
	logruslog "github.com/unkn0wn-root/rangecache/log/logrus"
	sloglog "github.com/unkn0wn-root/rangecache/log/slog"
	zaplog "github.com/unkn0wn-root/rangecache/log/zap"
	"github.com/unkn0wn-root/rangecache/promhooks"
	"github.com/unkn0wn-root/rangecache/provider"
	"github.com/unkn0wn-root/rangecache/provider/bigcache"
	redisprov "github.com/unkn0wn-root/rangecache/provider/redis"
	"github.com/unkn0wn-root/rangecache/provider/ristretto"
	"github.com/unkn0wn-root/rangecache/sloghooks"
)

// stack is a cache assembled from config, plus what must be torn down
// with it.
type stack struct {
	cache    rangecache.Cache[any]
	provider provider.Provider
	registry *prometheus.Registry // nil unless hooks.metrics
	closers  []func()
}

func buildStack(cfg *config.Config, stderr io.Writer) (*stack, error) {
	s := &stack{}

	log, syncLog, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, syncLog)

	var rdb goredis.UniversalClient
	redisClient := func() goredis.UniversalClient {
		if rdb == nil {
			rdb = goredis.NewClient(&goredis.Options{
				Addr:     cfg.Provider.Redis.Addr,
				Password: cfg.Provider.Redis.Password,
				DB:       cfg.Provider.Redis.DB,
			})
		}
		return rdb
	}

	p, err := newProvider(cfg.Provider, redisClient)
	if err != nil {
		return nil, err
	}
	s.provider = p

	var gens genstore.GenStore
	if cfg.GenStore.Kind == config.GenStoreRedis {
		gens = genstore.NewRedisGenStoreWithTTL(redisClient(), cfg.Namespace, cfg.GenStore.TTL)
	}

	c, err := codec.ByName[any](cfg.Cache.Codec)
	if err != nil {
		_ = p.Close(context.Background())
		return nil, err
	}

	hooks, err := s.newHooks(cfg.Hooks, stderr)
	if err != nil {
		_ = p.Close(context.Background())
		return nil, err
	}

	s.cache, err = rangecache.New[any](rangecache.Options[any]{
		Namespace:       cfg.Namespace,
		Provider:        p,
		Codec:           c,
		Logger:          log,
		Hooks:           hooks,
		SnapshotTTL:     cfg.Cache.SnapshotTTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
		GenRetention:    cfg.Cache.GenRetention,
		Disabled:        cfg.Cache.Disabled,
		GenStore:        gens,
		PaddingRatio:    cfg.Cache.PaddingRatio,
		Precision:       cfg.Cache.Precision,
	})
	if err != nil {
		_ = p.Close(context.Background())
		return nil, err
	}
	return s, nil
}

// Close flushes hooks and logs, then closes the cache.
func (s *stack) Close(ctx context.Context) error {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	return s.cache.Close(ctx)
}

func newProvider(cfg config.ProviderConfig, redisClient func() goredis.UniversalClient) (provider.Provider, error) {
	switch cfg.Kind {
	case config.ProviderRistretto:
		rc := ristretto.DefaultConfig(cfg.Ristretto.MaxSnapshots)
		rc.SyncWrites = true
		return ristretto.New(rc)
	case config.ProviderBigCache:
		return bigcache.New(bigcache.Config{
			LifeWindow:         cfg.BigCache.LifeWindow,
			HardMaxCacheSizeMB: cfg.BigCache.HardMaxSizeMB,
			MaxSnapshotBytes:   cfg.BigCache.MaxSnapshotBytes,
		})
	case config.ProviderRedis:
		return redisprov.New(redisprov.Config{Client: redisClient(), CloseClient: true})
	}
	return nil, fmt.Errorf("%w: provider.kind %q", config.ErrInvalidConfig, cfg.Kind)
}

func (s *stack) newHooks(cfg config.HooksConfig, stderr io.Writer) (rangecache.Hooks, error) {
	var hs []rangecache.Hooks
	if cfg.Log {
		l := stdslog.New(stdslog.NewTextHandler(stderr, nil))
		hs = append(hs, sloghooks.New(l, sloghooks.Options{SelfHealEvery: uint64(cfg.SelfHealEvery)}))
	}
	if cfg.Metrics {
		s.registry = prometheus.NewRegistry()
		ph, err := promhooks.New(s.registry, "sim")
		if err != nil {
			return nil, err
		}
		hs = append(hs, ph)
	}

	h := rangecache.MultiHooks(hs...)
	if cfg.AsyncQueue > 0 {
		a := asynchook.New(h, 1, cfg.AsyncQueue)
		s.closers = append(s.closers, a.Close)
		return a, nil
	}
	return h, nil
}

// newLogger builds the configured backend. The returned func flushes it.
func newLogger(cfg config.LogConfig, w io.Writer) (rangecache.Logger, func(), error) {
	switch cfg.Backend {
	case config.LogZap:
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, err
		}
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(w),
			lvl,
		)
		l := zap.New(core)
		return zaplog.New(l), func() { _ = l.Sync() }, nil
	case config.LogLogrus:
		lvl, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, err
		}
		l := logrus.New()
		l.SetOutput(w)
		l.SetLevel(lvl)
		return logruslog.New(l), func() {}, nil
	case config.LogSlog:
		var lvl stdslog.Level
		if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, err
		}
		l := stdslog.New(stdslog.NewTextHandler(w, &stdslog.HandlerOptions{Level: lvl}))
		return sloglog.Logger{L: l}, func() {}, nil
	}
	return nil, nil, fmt.Errorf("%w: log.backend %q", config.ErrInvalidConfig, cfg.Backend)
}
