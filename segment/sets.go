package segment

import (
	"fmt"
	"slices"
	"sort"

	"github.com/unkn0wn-root/rangecache/interval"
)

// Reshape returns a copy of s spanning [start, end]. Implementations carry
// over whatever payload s holds.
type Reshape[S any] func(s S, start, end float64) S

// Split partitions an ordered set around a query range. Start and End are the
// bounds of the overlapping run in the original set.
type Split[S any] struct {
	Before  []S
	Overlap []S
	After   []S
	Start   int
	End     int
}

// OverlapBoundIndices returns the half-open index run [start, end) of the
// elements of set overlapping q. Elements are treated as closed ranges; q
// carries its own closedness. set must be ordered and non-overlapping.
func OverlapBoundIndices[S interval.Extent](set []S, q interval.Range) (start, end int) {
	start = sort.Search(len(set), func(i int) bool {
		return !interval.Of(set[i], true, true).IsBefore(q, false)
	})
	end = sort.Search(len(set), func(i int) bool {
		return interval.Of(set[i], true, true).IsAfter(q, false)
	})
	// a degenerate open point query can yield end < start
	return start, max(start, end)
}

// SplitOverlapping partitions set into the elements before, overlapping and
// after q. The returned slices are copies.
func SplitOverlapping[S interval.Extent](set []S, q interval.Range) Split[S] {
	start, end := OverlapBoundIndices(set, q)
	return Split[S]{
		Before:  slices.Clone(set[:start]),
		Overlap: slices.Clone(set[start:end]),
		After:   slices.Clone(set[end:]),
		Start:   start,
		End:     end,
	}
}

// Cut splits set at the open range (start, end). Boundary elements sticking
// out of it are reshaped: the part left of start moves to Before and the part
// right of end moves to the head of After, so Overlap lies within
// [start, end]. Start and End still index the original set.
func Cut[S interval.Extent](set []S, start, end float64, reshape Reshape[S]) Split[S] {
	sp := SplitOverlapping(set, interval.Opened(start, end))
	if len(sp.Overlap) == 0 {
		return sp
	}
	if s, e := sp.Overlap[0].Bounds(); s < start {
		sp.Before = append(sp.Before, reshape(sp.Overlap[0], s, start))
		sp.Overlap[0] = reshape(sp.Overlap[0], start, e)
	}
	last := len(sp.Overlap) - 1
	if s, e := sp.Overlap[last].Bounds(); e > end {
		sp.After = slices.Insert(sp.After, 0, reshape(sp.Overlap[last], end, e))
		sp.Overlap[last] = reshape(sp.Overlap[last], s, end)
	}
	return sp
}

// JoinTouching concatenates two ordered sets, left entirely before right.
// When the last element of left and the first of right are equal per same
// (nil means always equal) and touch, they are fused into one element via
// reshape. Equal boundary elements that overlap yield ErrOverlappingJoin.
func JoinTouching[S interval.Extent](left, right []S, reshape Reshape[S], same func(a, b S) bool) ([]S, error) {
	if len(left) == 0 {
		return slices.Clone(right), nil
	}
	if len(right) == 0 {
		return slices.Clone(left), nil
	}
	l, r := left[len(left)-1], right[0]
	if same != nil && !same(l, r) {
		return slices.Concat(left, right), nil
	}
	ls, le := l.Bounds()
	rs, re := r.Bounds()
	switch {
	case le > rs:
		return nil, fmt.Errorf("%w: [%v, %v] and [%v, %v]", ErrOverlappingJoin, ls, le, rs, re)
	case le < rs:
		return slices.Concat(left, right), nil
	}
	out := make([]S, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	out = append(out, reshape(l, ls, re))
	return append(out, right[1:]...), nil
}
