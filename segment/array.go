// Package segment implements an ordered array of disjoint (possibly touching)
// segments with gap insertion, left-bound merge and boundary-aware range queries.
//
// An Array is not safe for concurrent mutation. Concurrent readers of an
// unmodified Array are fine; writers need exclusive access.
package segment

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/unkn0wn-root/rangecache/interval"
)

// Keys reads the left and right bound of a segment.
type Keys[S any] struct {
	Left  func(S) float64
	Right func(S) float64
}

// ExtentKeys reads both bounds through interval.Extent.
func ExtentKeys[S interval.Extent]() Keys[S] {
	return Keys[S]{
		Left:  func(s S) float64 { l, _ := s.Bounds(); return l },
		Right: func(s S) float64 { _, r := s.Bounds(); return r },
	}
}

// boundCmp compares one bound of a segment against a scalar.
type boundCmp[S any] func(s S, v float64) int

// Array keeps segments ordered by left bound. For adjacent segments
// s[i].Right <= s[i+1].Left always holds.
type Array[S any] struct {
	keys        Keys[S]
	leftClosed  bool
	rightClosed bool
	leftCmp     boundCmp[S]
	rightCmp    boundCmp[S]
	data        []S
}

// New returns an empty Array. leftClosed and rightClosed are the default
// closedness of query bounds used by GetRange.
func New[S any](keys Keys[S], leftClosed, rightClosed bool) *Array[S] {
	return &Array[S]{
		keys:        keys,
		leftClosed:  leftClosed,
		rightClosed: rightClosed,
		leftCmp:     func(s S, v float64) int { return cmp.Compare(keys.Left(s), v) },
		rightCmp:    func(s S, v float64) int { return cmp.Compare(keys.Right(s), v) },
	}
}

// FromSorted returns an Array owning a copy of data, which must already be
// ordered and non-overlapping.
func FromSorted[S any](keys Keys[S], leftClosed, rightClosed bool, data []S) *Array[S] {
	a := New(keys, leftClosed, rightClosed)
	a.data = slices.Clone(data)
	return a
}

func (a *Array[S]) Len() int { return len(a.data) }

// All returns the live backing slice. Callers must not modify it.
func (a *Array[S]) All() []S { return a.data }

func (a *Array[S]) Clear() { a.data = nil }

// InsertRange splices rng into the gap it occupies. rng must be ordered and
// non-overlapping, and no existing segment may lie inside its extent; segments
// touching the extent are fine. Otherwise ErrOccupiedGap is returned and the
// array is left untouched.
func (a *Array[S]) InsertRange(rng []S) error {
	if len(rng) == 0 {
		return nil
	}
	left, right := a.keys.Left(rng[0]), a.keys.Right(rng[len(rng)-1])
	leftNeighbor := findBoundNotAfter(a.data, left, a.rightCmp)
	rightNeighbor := findBoundNotBefore(a.data, right, a.leftCmp)

	if inside := rightNeighbor - leftNeighbor - 1; inside != 0 {
		return fmt.Errorf("%w: %d segment(s) within [%v, %v]", ErrOccupiedGap, inside, left, right)
	}
	a.data = slices.Insert(a.data, leftNeighbor+1, rng...)
	return nil
}

// MergeRange merges rng into the array. rng may overlap or touch any number
// of existing segments. Overlapped segments are interleaved with rng by left
// bound; on a left bound tie the segment from rng replaces the existing one.
func (a *Array[S]) MergeRange(rng []S) error {
	if len(rng) == 0 {
		return nil
	}
	if len(a.data) == 0 {
		a.data = slices.Clone(rng)
		return nil
	}
	left, right := a.keys.Left(rng[0]), a.keys.Right(rng[len(rng)-1])
	leftNeighbor := findBoundBefore(a.data, left, a.rightCmp)
	rightNeighbor := findBoundAfter(a.data, right, a.leftCmp)
	inside := rightNeighbor - leftNeighbor - 1

	switch {
	case inside == 0:
		a.data = slices.Insert(a.data, leftNeighbor+1, rng...)
	case inside < 0 && len(rng) > 1:
		return fmt.Errorf("%w: neighbors %d and %d around [%v, %v]",
			ErrInconsistentOverlap, leftNeighbor, rightNeighbor, left, right)
	case inside < 0:
		// inverted single segment; nothing is overlapped
		a.data = slices.Insert(a.data, leftNeighbor+1, rng...)
	default:
		merged := a.mergeByLeft(a.data[leftNeighbor+1:rightNeighbor], rng)
		a.data = slices.Replace(a.data, leftNeighbor+1, rightNeighbor, merged...)
	}
	return nil
}

// mergeByLeft merges two left-ordered runs. Only left bounds are compared.
func (a *Array[S]) mergeByLeft(existing, incoming []S) []S {
	out := make([]S, 0, len(existing)+len(incoming))
	i, j := 0, 0
	for i < len(existing) || j < len(incoming) {
		switch {
		case i == len(existing):
			out = append(out, incoming[j])
			j++
		case j == len(incoming):
			out = append(out, existing[i])
			i++
		default:
			el, il := a.keys.Left(existing[i]), a.keys.Left(incoming[j])
			switch {
			case el == il:
				out = append(out, incoming[j])
				i++
				j++
			case el < il:
				out = append(out, existing[i])
				i++
			default:
				out = append(out, incoming[j])
				j++
			}
		}
	}
	return out
}

type query struct {
	leftClosed  bool
	rightClosed bool
	oneMore     bool
}

// QueryOption overrides the query defaults of an Array.
type QueryOption func(*query)

func LeftBoundClosed(closed bool) QueryOption  { return func(q *query) { q.leftClosed = closed } }
func RightBoundClosed(closed bool) QueryOption { return func(q *query) { q.rightClosed = closed } }

// OneMore adds one trailing segment to the result.
func OneMore() QueryOption { return func(q *query) { q.oneMore = true } }

// GetRange returns a copy of the contiguous run of segments overlapping
// [left, right]. A segment that only touches an open query bound is excluded.
func (a *Array[S]) GetRange(left, right float64, opts ...QueryOption) []S {
	q := query{leftClosed: a.leftClosed, rightClosed: a.rightClosed}
	for _, o := range opts {
		o(&q)
	}
	lo, hi := a.findRangeIndexes(left, right, q)
	if lo < 0 && hi < 0 {
		return nil
	}
	if q.oneMore {
		hi++
	}
	hi = min(hi+1, len(a.data))
	if lo >= hi {
		return nil
	}
	return slices.Clone(a.data[lo:hi])
}

// GetRangeOf is GetRange with the bounds and closedness taken from r.
func (a *Array[S]) GetRangeOf(r interval.Range, oneMore bool) []S {
	opts := []QueryOption{LeftBoundClosed(r.LeftClosed), RightBoundClosed(r.RightClosed)}
	if oneMore {
		opts = append(opts, OneMore())
	}
	return a.GetRange(r.Left, r.Right, opts...)
}

// FindRangeIndexes returns the indices of the first and last segment
// overlapping [left, right], or (-1, -1) when the query misses the data.
// lo > hi means the query falls into a gap.
func (a *Array[S]) FindRangeIndexes(left, right float64, opts ...QueryOption) (lo, hi int) {
	q := query{leftClosed: a.leftClosed, rightClosed: a.rightClosed}
	for _, o := range opts {
		o(&q)
	}
	return a.findRangeIndexes(left, right, q)
}

func (a *Array[S]) findRangeIndexes(left, right float64, q query) (int, int) {
	if len(a.data) == 0 {
		return -1, -1
	}
	first := findBoundNotBefore(a.data, left, a.rightCmp)
	last := findBoundNotAfter(a.data, right, a.leftCmp)
	if first >= len(a.data) || last < 0 {
		return -1, -1
	}
	// exclude segments touching an open bound
	if a.rightCmp(a.data[first], left) == 0 && !q.leftClosed {
		first++
	}
	if a.leftCmp(a.data[last], right) == 0 && !q.rightClosed {
		last--
	}
	return first, last
}
