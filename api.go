package rangecache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/rangecache/codec"
	"github.com/unkn0wn-root/rangecache/genstore"
	"github.com/unkn0wn-root/rangecache/interval"
	"github.com/unkn0wn-root/rangecache/layered"
	"github.com/unkn0wn-root/rangecache/provider"
	"github.com/unkn0wn-root/rangecache/segment"
)

type SetCostFunc func(storageKey string, raw []byte, segments int) int64

// Segment is one fetched piece of a serie level.
type Segment[V any] struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	Data  V       `json:"data" yaml:"data"`
}

func (s Segment[V]) Bounds() (float64, float64) { return s.Start, s.End }

// Coverage is a copy of the layers of one serie level.
type Coverage struct {
	Base  []interval.Span `json:"base"`
	Top   []interval.Span `json:"top"`
	Fetch []interval.Span `json:"fetch"`
	// Known is Base plus the part of Top that is not in flight.
	Known []interval.Span `json:"known"`
}

// LevelSpan is a piece of a projection and the level that covers it.
type LevelSpan struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Level string  `json:"level"`
}

func (s LevelSpan) Bounds() (float64, float64) { return s.Start, s.End }

// Cache tracks, per serie and level, which ranges are known, needed and in
// flight, and keeps the fetched segments. V is the segment payload type;
// snapshots are serialized with a pluggable Codec[V].
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Request registers req as needed and returns the sub-ranges that must
	// be fetched. Ranges already known or in flight are not returned again.
	Request(ctx context.Context, req Request) ([]interval.Span, error)
	// Complete stores the segments fetched for req and reconciles the layers.
	Complete(ctx context.Context, req Request, segments []Segment[V]) (layered.Outcome, error)

	Segments(serie, level string, from, to float64, opts ...segment.QueryOption) []Segment[V]
	Coverage(serie, level string) Coverage
	// Projection merges the known coverage of levels, finest first, so that
	// each point of [from, to] is attributed to the finest level knowing it.
	Projection(serie string, levels []string, from, to float64) ([]LevelSpan, error)

	// Demote moves settled Top coverage into Base.
	Demote(ctx context.Context, serie, level string) error
	// Load restores a persisted level snapshot. ok is false when there was
	// nothing valid to restore, or when the level is already held in memory
	// at the snapshot's generation; that state is kept along with its
	// in-flight ranges.
	Load(ctx context.Context, serie, level string) (ok bool, err error)
	// Invalidate bumps the level generation, deletes its snapshot and
	// forgets its in-memory state.
	Invalidate(ctx context.Context, serie, level string) error

	// Sync forgets in-memory levels built against a generation that has
	// since moved (e.g. invalidated by another replica) and returns them.
	Sync(ctx context.Context, serie string, levels ...string) (dropped []string, err error)
	// Warm loads the snapshots of levels concurrently and returns the ones
	// restored.
	Warm(ctx context.Context, serie string, levels ...string) (loaded []string, err error)
}

// Options tune the behavior of the range cache.
// Namespace, Provider and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions. e.g. "metrics", "trades"
	Provider  provider.Provider
	Codec     codec.Codec[V]

	Logger          Logger            // if nil, NopLogger is used
	Hooks           Hooks             // if nil, NopHooks is used
	SnapshotTTL     time.Duration     // 0 => 10m
	CleanupInterval time.Duration     // 0 => 1h
	GenRetention    time.Duration     // 0 => 30d
	Disabled        bool              // default false (enabled)
	ComputeSetCost  SetCostFunc       // default 1
	GenStore        genstore.GenStore // nil => LocalGenStore (in-process)

	// Request shaping
	PaddingRatio float64 // widen each request by ratio*width on both sides
	Precision    float64 // snap request bounds outward to multiples of Precision

	// Default closedness of Segments queries; both closed by default.
	LeftOpen  bool
	RightOpen bool
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
