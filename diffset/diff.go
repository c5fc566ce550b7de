// Package diffset computes the delta between an existing ordered interval set
// and an incoming one.
//
// Both inputs must be ordered by start and free of overlaps within each set.
// Neither input is modified. A Report refers back to elements of the
// existing set by index and value so callers can tell which existing
// segments survived unchanged, which were resized and which disappeared.
package diffset

import (
	"math"

	"github.com/unkn0wn-root/rangecache/interval"
)

// Group is one element of a diff result. A group anchored on an element of
// the existing set carries its index in Origin and its value in Existing;
// groups with no existing anchor have Origin -1.
type Group[S any] struct {
	Start    float64
	End      float64
	Origin   int
	Existing S
}

func (g Group[S]) Bounds() (float64, float64) { return g.Start, g.End }

// IsNew reports whether g has no anchor in the existing set.
func (g Group[S]) IsNew() bool { return g.Origin < 0 }

// Changed reports whether an anchored group no longer matches its anchor.
func (g Group[S]) Changed(existing interval.Extent) bool {
	s, e := existing.Bounds()
	return g.Start != s || g.End != e
}

// Report is the outcome of Add or Subtract.
//
// Every existing element is either absent from all lists (unchanged),
// the anchor of exactly one Resized group, or listed in Removed.
type Report[S any] struct {
	Result  []Group[S]
	Added   []Group[S]
	Resized []Group[S]
	Removed []S
}

// Spans returns the bounds of r.Result.
func (r Report[S]) Spans() []interval.Span { return interval.Spans(r.Result) }

type side int

const (
	sideNone side = iota
	sideLeft
	sideRight
)

// nextStep proposes the next unvisited element from whichever set has the
// smaller upcoming start. Equal starts fall back to comparing the ends of the
// current elements, an absent current element counting as -Inf. Remaining
// ties go left.
func nextStep(ls, rs []interval.Span, il, ir int) side {
	hasLeft, hasRight := il+1 < len(ls), ir+1 < len(rs)
	if !hasLeft && !hasRight {
		return sideNone
	}
	leftPoint, rightPoint := math.Inf(1), math.Inf(1)
	if hasLeft {
		leftPoint = ls[il+1].Start
	}
	if hasRight {
		rightPoint = rs[ir+1].Start
	}
	if hasLeft && hasRight && leftPoint == rightPoint && (il >= 0 || ir >= 0) {
		leftPoint, rightPoint = math.Inf(-1), math.Inf(-1)
		if il >= 0 {
			leftPoint = ls[il].End
		}
		if ir >= 0 {
			rightPoint = rs[ir].End
		}
	}
	if hasLeft && leftPoint <= rightPoint || !hasRight {
		return sideLeft
	}
	return sideRight
}

type relation int

const (
	relBefore relation = iota
	relAfter
	relEqual
	relIncluded
	relResizing
)

func relate(group, subject interval.Span) relation {
	switch {
	case subject.Start > group.End:
		return relAfter
	case subject.End < group.Start:
		return relBefore
	case subject.Start == group.Start && subject.End == group.End:
		return relEqual
	case subject.Start >= group.Start && subject.End <= group.End:
		return relIncluded
	default:
		return relResizing
	}
}

// Add unions right into left. Overlapping or touching elements fuse into one
// group. A group anchored on an existing element that another existing
// element joins reports the latter as removed.
func Add[S, R interval.Extent](left []S, right []R) Report[S] {
	var rep Report[S]
	ls, rs := interval.Spans(left), interval.Spans(right)

	var (
		cur    Group[S]
		open   bool
		il, ir = -1, -1
	)
	closeGroup := func() {
		switch {
		case cur.IsNew():
			rep.Added = append(rep.Added, cur)
		case cur.Changed(ls[cur.Origin]):
			rep.Resized = append(rep.Resized, cur)
		}
		rep.Result = append(rep.Result, cur)
	}
	newGroup := func(item interval.Span, isLeft bool) Group[S] {
		g := Group[S]{Start: item.Start, End: item.End, Origin: -1}
		if isLeft {
			g.Origin, g.Existing = il, left[il]
		}
		return g
	}

	for {
		var (
			item   interval.Span
			isLeft bool
		)
		switch nextStep(ls, rs, il, ir) {
		case sideNone:
			if open {
				closeGroup()
			}
			return rep
		case sideLeft:
			il++
			item, isLeft = ls[il], true
		case sideRight:
			ir++
			item = rs[ir]
		}
		if !open {
			cur, open = newGroup(item, isLeft), true
		}

		rel := relate(interval.Span{Start: cur.Start, End: cur.End}, item)
		if isLeft && (rel == relEqual || rel == relIncluded || rel == relResizing) {
			switch {
			case cur.IsNew():
				cur.Origin, cur.Existing = il, left[il]
			case cur.Origin != il:
				rep.Removed = append(rep.Removed, left[il])
			}
		}
		switch rel {
		case relResizing:
			cur.Start = min(cur.Start, item.Start)
			cur.End = max(cur.End, item.End)
		case relAfter:
			closeGroup()
			cur = newGroup(item, isLeft)
		}
	}
}
