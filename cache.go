package rangecache

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/unkn0wn-root/rangecache/codec"
	"github.com/unkn0wn-root/rangecache/diffset"
	"github.com/unkn0wn-root/rangecache/genstore"
	"github.com/unkn0wn-root/rangecache/internal/util"
	"github.com/unkn0wn-root/rangecache/internal/wire"
	"github.com/unkn0wn-root/rangecache/interval"
	"github.com/unkn0wn-root/rangecache/layered"
	"github.com/unkn0wn-root/rangecache/provider"
	"github.com/unkn0wn-root/rangecache/segment"
)

type cache[V any] struct {
	ns             string
	provider       provider.Provider
	codec          codec.Codec[V]
	log            Logger
	hooks          Hooks
	enabled        bool
	snapshotTTL    time.Duration
	sweepInterval  time.Duration
	genRetention   time.Duration
	computeSetCost SetCostFunc
	gen            genstore.GenStore

	paddingRatio float64
	precision    float64
	leftClosed   bool
	rightClosed  bool

	mu     sync.Mutex
	levels map[string]*level[V]
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("rangecache: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("rangecache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("rangecache: namespace is required")
	}
	if opts.PaddingRatio < 0 || opts.Precision < 0 {
		return nil, fmt.Errorf("rangecache: padding ratio and precision must not be negative")
	}

	c := &cache[V]{
		ns:           opts.Namespace,
		provider:     opts.Provider,
		codec:        opts.Codec,
		enabled:      !opts.Disabled,
		paddingRatio: opts.PaddingRatio,
		precision:    opts.Precision,
		leftClosed:   !opts.LeftOpen,
		rightClosed:  !opts.RightOpen,
		levels:       make(map[string]*level[V]),
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.snapshotTTL = coalesce[time.Duration](opts.SnapshotTTL, defaultSnapshotTTL)
	c.sweepInterval = coalesce[time.Duration](opts.CleanupInterval, defaultSweep)
	c.genRetention = coalesce[time.Duration](opts.GenRetention, defaultGenRetention)

	if opts.ComputeSetCost != nil {
		c.computeSetCost = opts.ComputeSetCost
	} else {
		c.computeSetCost = func(string, []byte, int) int64 { return 1 }
	}

	if opts.GenStore != nil {
		c.gen = opts.GenStore
	} else {
		// default to in-process generations with periodic cleanup
		c.gen = genstore.NewLocalGenStore(c.sweepInterval, c.genRetention)
	}

	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Close(ctx context.Context) error {
	// Close gen store first (best effort)
	if c.gen != nil {
		_ = c.gen.Close(ctx)
	}
	if c.provider != nil {
		return c.provider.Close(ctx)
	}
	return nil
}

func (c *cache[V]) Request(ctx context.Context, req Request) ([]interval.Span, error) {
	req = c.normalize(req)
	span := c.shape(req)
	if !c.enabled {
		return []interval.Span{span}, nil
	}

	lv := c.level(ctx, c.levelKey(req.Serie, req.Level))
	lv.mu.Lock()
	defer lv.mu.Unlock()

	want := []interval.Span{span}
	unknown := diffset.Subtract(want, lv.known()).Spans()
	missing := diffset.Subtract(unknown, lv.fetch).Spans()

	lv.fetch = diffset.Add(lv.fetch, missing).Spans()
	lv.top = diffset.Add(lv.top, want).Spans()

	c.log.Debug("range requested", Fields{"serie": req.Serie, "level": req.Level, "span": span, "missing": len(missing)})
	return missing, nil
}

func (c *cache[V]) Complete(ctx context.Context, req Request, segments []Segment[V]) (layered.Outcome, error) {
	if !c.enabled {
		return layered.Outcome{}, nil
	}
	req = c.normalize(req)

	segs, err := sortSegments(segments)
	if err != nil {
		return layered.Outcome{}, err
	}

	key := c.levelKey(req.Serie, req.Level)
	lv := c.level(ctx, key)
	lv.mu.Lock()
	defer lv.mu.Unlock()

	if err := lv.data.InsertRange(segs); err != nil {
		if !errors.Is(err, segment.ErrOccupiedGap) {
			return layered.Outcome{}, &ReconcileError{Key: key, InsertErr: err}
		}
		c.hooks.GapOccupied(key, len(segs))
		c.log.Debug("gap occupied; merging segments", Fields{"key": key, "segments": len(segs)})
		if merr := lv.data.MergeRange(segs); merr != nil {
			return layered.Outcome{}, &ReconcileError{Key: key, InsertErr: err, MergeErr: merr}
		}
	}

	// the source answered for the whole shaped span Request registered, data or not
	result := diffset.Add([]interval.Span{c.shape(req)}, segs).Spans()

	out := layered.Execute(lv.base, lv.top, lv.fetch, result)
	lv.top = out.Top.Spans()
	lv.base = out.Base.Spans()
	lv.fetch = diffset.Subtract(lv.fetch, result).Spans()

	extra := len(out.Extra.Result)
	c.hooks.Reconciled(key, extra)
	c.log.Debug("fetch completed", Fields{"key": key, "segments": len(segs), "extra": extra})

	return out, c.persist(ctx, key, lv)
}

func (c *cache[V]) Segments(serie, lvl string, from, to float64, opts ...segment.QueryOption) []Segment[V] {
	if !c.enabled {
		return nil
	}
	lv := c.lookup(c.levelKey(serie, lvl))
	if lv == nil {
		return nil
	}
	lv.mu.RLock()
	defer lv.mu.RUnlock()
	return lv.data.GetRange(from, to, opts...)
}

func (c *cache[V]) Coverage(serie, lvl string) Coverage {
	lv := c.lookup(c.levelKey(serie, lvl))
	if lv == nil {
		return Coverage{}
	}
	return lv.coverage()
}

func (c *cache[V]) Demote(ctx context.Context, serie, lvl string) error {
	if !c.enabled {
		return nil
	}
	key := c.levelKey(serie, lvl)
	lv := c.lookup(key)
	if lv == nil {
		return nil
	}
	lv.mu.Lock()
	defer lv.mu.Unlock()

	settled := diffset.Subtract(lv.top, lv.fetch).Spans()
	if len(settled) == 0 {
		return nil
	}
	lv.base = diffset.Add(lv.base, settled).Spans()
	lv.top = diffset.Subtract(lv.top, settled).Spans()
	c.log.Debug("top demoted", Fields{"key": key, "settled": len(settled)})
	return c.persist(ctx, key, lv)
}

func (c *cache[V]) Load(ctx context.Context, serie, lvl string) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	key := c.levelKey(serie, lvl)
	raw, ok, err := c.provider.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	snap, err := wire.DecodeSnapshot(raw)
	if err != nil {
		c.selfHeal(ctx, key, "corrupt")
		return false, nil
	}
	// validate generation
	gen, ok := c.snapshotGen(ctx, key)
	if !ok {
		return false, nil
	}
	if snap.Gen != gen {
		c.selfHeal(ctx, key, "gen_mismatch")
		return false, nil
	}
	segs := make([]Segment[V], len(snap.Segments))
	for i, s := range snap.Segments {
		v, err := c.codec.Decode(s.Payload)
		if err != nil {
			c.selfHeal(ctx, key, "value_decode")
			return false, nil
		}
		segs[i] = Segment[V]{Start: s.Start, End: s.End, Data: v}
	}
	if segs, err = sortSegments(segs); err != nil {
		c.selfHeal(ctx, key, "segments")
		return false, nil
	}

	lv := c.level(ctx, key)
	lv.mu.Lock()
	defer lv.mu.Unlock()
	if lv.gen == snap.Gen && (lv.data.Len() > 0 || len(lv.top) > 0 || len(lv.base) > 0) {
		// in-memory state is at least as fresh and may hold in-flight ranges
		c.log.Debug("level already current; snapshot not applied", Fields{"key": key})
		return false, nil
	}
	lv.gen = snap.Gen
	lv.data = segment.FromSorted(segment.ExtentKeys[Segment[V]](), c.leftClosed, c.rightClosed, segs)
	lv.base, lv.top, lv.fetch = snap.Base, snap.Top, nil
	c.log.Debug("level loaded", Fields{"key": key, "segments": len(segs)})
	return true, nil
}

func (c *cache[V]) Invalidate(ctx context.Context, serie, lvl string) error {
	if !c.enabled {
		return nil
	}
	key := c.levelKey(serie, lvl)

	newGen, bumpErr := c.gen.Bump(ctx, key)
	if bumpErr != nil {
		c.hooks.GenBumpError(key, bumpErr)
		c.log.Error("gen bump error", Fields{"key": key, "err": bumpErr})
	}
	delErr := c.provider.Del(ctx, key)

	c.mu.Lock()
	delete(c.levels, key)
	c.mu.Unlock()

	if bumpErr != nil && delErr != nil {
		c.hooks.InvalidateOutage(key, bumpErr, delErr)
		return &InvalidateError{Key: key, BumpErr: bumpErr, DelErr: delErr}
	}
	c.log.Debug("invalidated level (bumped gen + cleared snapshot)", Fields{"key": key, "newGen": newGen})
	return nil
}

// sortSegments returns a sorted copy of segs, rejecting inverted or
// overlapping segments with ErrInvalidSegments.
func sortSegments[V any](segs []Segment[V]) ([]Segment[V], error) {
	out := slices.Clone(segs)
	slices.SortFunc(out, func(a, b Segment[V]) int { return cmp.Compare(a.Start, b.Start) })
	for i, s := range out {
		if s.Start > s.End {
			return nil, fmt.Errorf("%w: [%v, %v] is inverted", ErrInvalidSegments, s.Start, s.End)
		}
		if i > 0 && out[i-1].End > s.Start {
			return nil, fmt.Errorf("%w: [%v, %v] overlaps [%v, %v]",
				ErrInvalidSegments, out[i-1].Start, out[i-1].End, s.Start, s.End)
		}
	}
	return out, nil
}

// normalize swaps inverted request bounds and says so.
func (c *cache[V]) normalize(req Request) Request {
	req, swapped := req.Normalize()
	if swapped {
		c.log.Warn("inverted request bounds", Fields{"serie": req.Serie, "level": req.Level, "from": req.To, "to": req.From})
	}
	return req
}

// shape widens req by the padding ratio and snaps it to the precision grid.
func (c *cache[V]) shape(req Request) interval.Span {
	r := req.Range()
	if c.paddingRatio > 0 {
		r.Extend(r.Length() * c.paddingRatio)
	}
	r.ExpandToFitPrecision(c.precision)
	return interval.Span{Start: r.Left, End: r.Right}
}

// level returns the state for key, creating it at the current generation.
func (c *cache[V]) level(ctx context.Context, key string) *level[V] {
	if lv := c.lookup(key); lv != nil {
		return lv
	}
	gen, _ := c.snapshotGen(ctx, key)
	fresh := newLevel[V](gen, c.leftClosed, c.rightClosed)

	c.mu.Lock()
	defer c.mu.Unlock()
	if lv, ok := c.levels[key]; ok {
		return lv
	}
	c.levels[key] = fresh
	return fresh
}

func (c *cache[V]) lookup(key string) *level[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.levels[key]
}

// persist writes a snapshot of lv iff the generation lv was built against
// is still current. Caller holds lv.mu.
func (c *cache[V]) persist(ctx context.Context, key string, lv *level[V]) error {
	cur, ok := c.snapshotGen(ctx, key)
	if !ok || cur != lv.gen {
		// generation moved; skip stale write
		c.log.Debug("snapshot skipped (gen mismatch)", Fields{"key": key, "obs": lv.gen})
		return nil
	}

	all := lv.data.All()
	segs := make([]wire.Segment, len(all))
	for i, s := range all {
		payload, err := c.codec.Encode(s.Data)
		if err != nil {
			return fmt.Errorf("rangecache: encode segment [%v, %v]: %w", s.Start, s.End, err)
		}
		segs[i] = wire.Segment{Start: s.Start, End: s.End, Payload: payload}
	}
	raw := wire.EncodeSnapshot(wire.Snapshot{Gen: lv.gen, Base: lv.base, Top: lv.top, Segments: segs})

	ok, err := c.provider.Set(ctx, key, raw, c.computeSetCost(key, raw, len(segs)), c.snapshotTTL)
	if err != nil {
		return err
	}
	if !ok {
		c.hooks.ProviderSetRejected(key)
		c.log.Debug("snapshot rejected by provider (pressure)", Fields{"key": key})
	}
	return nil
}

func (c *cache[V]) selfHeal(ctx context.Context, key, reason string) {
	_ = c.provider.Del(ctx, key)
	c.hooks.SnapshotSelfHeal(key, reason)
	c.log.Debug("snapshot self-healed", Fields{"key": key, "reason": reason})
}

func (c *cache[V]) snapshotGen(ctx context.Context, storageKey string) (uint64, bool) {
	g, err := c.gen.Snapshot(ctx, storageKey)
	if err != nil {
		// Conservative: callers skip writes and reads
		c.hooks.GenSnapshotError(storageKey, err)
		c.log.Warn("gen snapshot error", Fields{"key": storageKey, "err": err})
		return 0, false
	}
	return g, true
}

func (c *cache[V]) levelKey(serie, lvl string) string {
	// isolate by namespace
	return util.LevelKey(c.ns, serie, lvl)
}
