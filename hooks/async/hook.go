// Package asynchook moves hook delivery off the caller's goroutine.
// The cache fires hooks while holding a level lock, so slow sinks
// (network loggers, exporters) belong behind this wrapper.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    GapEvery:      10, // ~every 10th occupied gap
//	    SelfHealEvery: 1,
//	})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := rangecache.New[[]float64](rangecache.Options[[]float64]{
//	    Namespace: "metrics",
//	    Provider:  p,
//	    Codec:     codec.JSON[[]float64]{},
//	    Hooks:     hooks,
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/rangecache"
)

type Hooks struct {
	inner   rangecache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ rangecache.Hooks = (*Hooks)(nil)

func New(inner rangecache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers.
// Events fired after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded on a full queue.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	defer func() {
		// send on closed queue
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) GapOccupied(k string, n int)        { h.try(func() { h.inner.GapOccupied(k, n) }) }
func (h *Hooks) Reconciled(k string, n int)         { h.try(func() { h.inner.Reconciled(k, n) }) }
func (h *Hooks) SnapshotSelfHeal(k, r string)       { h.try(func() { h.inner.SnapshotSelfHeal(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string)       { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) GenBumpError(k string, err error)   { h.try(func() { h.inner.GenBumpError(k, err) }) }
func (h *Hooks) GenSnapshotError(k string, e error) { h.try(func() { h.inner.GenSnapshotError(k, e) }) }
func (h *Hooks) InvalidateOutage(k string, be, de error) {
	h.try(func() { h.inner.InvalidateOutage(k, be, de) })
}
