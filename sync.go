package rangecache

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// warmConcurrency bounds parallel snapshot loads in Warm.
const warmConcurrency = 8

func (c *cache[V]) Sync(ctx context.Context, serie string, levels ...string) ([]string, error) {
	if !c.enabled || len(levels) == 0 {
		return nil, nil
	}
	keys := make([]string, len(levels))
	for i, l := range levels {
		keys[i] = c.levelKey(serie, l)
	}
	gens, err := c.gen.SnapshotMany(ctx, keys)
	if err != nil {
		for _, k := range keys {
			c.hooks.GenSnapshotError(k, err)
		}
		c.log.Warn("gen snapshot error", Fields{"serie": serie, "levels": len(levels), "err": err})
		return nil, err
	}

	var dropped []string
	c.mu.Lock()
	for i, k := range keys {
		lv, ok := c.levels[k]
		if !ok {
			continue
		}
		lv.mu.RLock()
		stale := lv.gen != gens[k]
		lv.mu.RUnlock()
		if stale {
			delete(c.levels, k)
			dropped = append(dropped, levels[i])
		}
	}
	c.mu.Unlock()

	if len(dropped) > 0 {
		c.log.Debug("stale levels dropped", Fields{"serie": serie, "levels": dropped})
	}
	return dropped, nil
}

func (c *cache[V]) Warm(ctx context.Context, serie string, levels ...string) ([]string, error) {
	loaded := make([]bool, len(levels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)
	for i, l := range levels {
		g.Go(func() error {
			ok, err := c.Load(gctx, serie, l)
			if err != nil {
				return fmt.Errorf("rangecache: warm %s/%s: %w", serie, l, err)
			}
			loaded[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []string
	for i, ok := range loaded {
		if ok {
			out = append(out, levels[i])
		}
	}
	return out, nil
}
