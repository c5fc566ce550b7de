package rangecache

import (
	"slices"
	"sync"

	"github.com/unkn0wn-root/rangecache/diffset"
	"github.com/unkn0wn-root/rangecache/interval"
	"github.com/unkn0wn-root/rangecache/segment"
)

// level is the state of one serie level. gen is the generation the state
// was built against; snapshots are only written while it is current.
type level[V any] struct {
	mu   sync.RWMutex
	gen  uint64
	data *segment.Array[Segment[V]]

	base  []interval.Span
	top   []interval.Span
	fetch []interval.Span
}

func newLevel[V any](gen uint64, leftClosed, rightClosed bool) *level[V] {
	return &level[V]{
		gen:  gen,
		data: segment.New(segment.ExtentKeys[Segment[V]](), leftClosed, rightClosed),
	}
}

// known is base + (top - fetch). Caller holds mu.
func (l *level[V]) known() []interval.Span {
	settled := diffset.Subtract(l.top, l.fetch).Spans()
	return diffset.Add(l.base, settled).Spans()
}

func (l *level[V]) coverage() Coverage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Coverage{
		Base:  slices.Clone(l.base),
		Top:   slices.Clone(l.top),
		Fetch: slices.Clone(l.fetch),
		Known: l.known(),
	}
}
