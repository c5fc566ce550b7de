// Package interval holds the boundary-aware Range value type and the plain
// Span shape shared by the segment and diff packages.
package interval

import (
	"fmt"
	"math"
	"time"
)

// Range is an interval [Left, Right] with independent closed/open flags per bound.
// Left must not exceed Right. A degenerate Left == Right range is a point when both
// bounds are closed; with an open bound it is empty, and callers must not build it.
type Range struct {
	Left        float64
	Right       float64
	LeftClosed  bool
	RightClosed bool
}

func Opened(left, right float64) Range { return Range{left, right, false, false} }
func Closed(left, right float64) Range { return Range{left, right, true, true} }

// LeftClosed returns [left, right).
func LeftClosed(left, right float64) Range { return Range{left, right, true, false} }

// RightClosed returns (left, right].
func RightClosed(left, right float64) Range { return Range{left, right, false, true} }

// Unbounded returns (-inf, +inf).
func Unbounded() Range { return Range{math.Inf(-1), math.Inf(1), false, false} }

// Of builds a Range over the bounds of e.
func Of(e Extent, leftClosed, rightClosed bool) Range {
	start, end := e.Bounds()
	return Range{start, end, leftClosed, rightClosed}
}

func (r Range) LeftTouches(v float64) bool  { return r.LeftClosed && r.Left == v }
func (r Range) RightTouches(v float64) bool { return r.RightClosed && r.Right == v }

// Contains reports whether v lies inside r, honoring the bound flags.
func (r Range) Contains(v float64) bool {
	if v > r.Left && v < r.Right {
		return true
	}
	return r.LeftTouches(v) || r.RightTouches(v)
}

// HasCommon reports whether r and o share at least one point.
func (r Range) HasCommon(o Range) bool {
	if o.Right > r.Left && o.Left < r.Right {
		return true
	}
	return r.LeftClosed && o.LeftClosed && r.Left == o.Left ||
		r.RightClosed && o.RightClosed && r.Right == o.Right ||
		r.RightClosed && o.LeftClosed && r.Right == o.Left ||
		r.LeftClosed && o.RightClosed && r.Left == o.Right
}

// IsBefore reports whether r lies entirely before o.
//
// When r.Right == o.Left the ranges touch. Touching ranges are separated when
// either shared bound is open; with both shared bounds closed they share the
// point and are separated only if touch is set.
func (r Range) IsBefore(o Range, touch bool) bool {
	if r.Right < o.Left {
		return true
	}
	if r.Right == o.Left {
		shared := r.RightClosed && o.LeftClosed
		return !shared || touch
	}
	return false
}

// IsAfter is the mirror of IsBefore.
func (r Range) IsAfter(o Range, touch bool) bool {
	if r.Left > o.Right {
		return true
	}
	if r.Left == o.Right {
		shared := r.LeftClosed && o.RightClosed
		return !shared || touch
	}
	return false
}

// Extend widens both bounds by v.
func (r *Range) Extend(v float64) *Range {
	r.Left -= v
	r.Right += v
	return r
}

func (r *Range) Round() *Range {
	r.Left = math.Round(r.Left)
	r.Right = math.Round(r.Right)
	return r
}

// ExpandToFitPrecision snaps Left down and Right up to multiples of step.
// A non-positive step leaves r unchanged.
func (r *Range) ExpandToFitPrecision(step float64) *Range {
	if step <= 0 {
		return r
	}
	r.Left -= math.Mod(r.Left, step)
	if rem := math.Mod(r.Right, step); rem > 0 {
		r.Right += step - rem
	}
	return r
}

func (r Range) Length() float64 { return r.Right - r.Left }

func (r Range) Equal(o Range) bool { return r == o }

// Bounds makes a Range usable wherever an Extent is expected.
func (r Range) Bounds() (float64, float64) { return r.Left, r.Right }

const stampLayout = "2006-01-02 15:04:05"

// String renders r with '<' '>' for closed and '(' ')' for open bounds.
// Bounds are read as unix milliseconds.
func (r Range) String() string {
	lb, rb := '(', ')'
	if r.LeftClosed {
		lb = '<'
	}
	if r.RightClosed {
		rb = '>'
	}
	return fmt.Sprintf("%c%s; %s%c", lb, stamp(r.Left), stamp(r.Right), rb)
}

func stamp(v float64) string {
	switch {
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsNaN(v):
		return "NaN"
	}
	return time.UnixMilli(int64(v)).UTC().Format(stampLayout)
}
