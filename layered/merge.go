// Package layered reconciles the interval layers of a range cache after a
// fetch completes.
//
// Four ordered interval sets cooperate:
//
//	Base   - durably known data
//	Top    - data actively needed by readers
//	Fetch  - ranges currently requested from the source
//	Result - ranges that just arrived
//
// None of them is owned here; callers pass them in and keep the outcome.
package layered

import (
	"github.com/unkn0wn-root/rangecache/diffset"
	"github.com/unkn0wn-root/rangecache/interval"
)

// Outcome holds the updated layers.
type Outcome struct {
	// Top is Top with the unrequested part of Result folded in.
	Top diffset.Report[interval.Span]
	// Base is Base with Result cut out.
	Base diffset.Report[interval.Span]
	// Extra is Result minus Fetch: coverage that arrived without being asked for.
	Extra diffset.Report[interval.Span]
}

// Execute reconciles base, top, fetch and result:
//
//	extra = result - fetch
//	top'  = top + extra
//	base' = base - result
func Execute[B, T, F, R interval.Extent](base []B, top []T, fetch []F, result []R) Outcome {
	extra := diffset.Subtract(interval.Spans(result), fetch)
	return Outcome{
		Top:   diffset.Add(interval.Spans(top), extra.Result),
		Base:  diffset.Subtract(interval.Spans(base), result),
		Extra: extra,
	}
}

// Layers is a snapshot of the four sets as plain spans.
type Layers struct {
	Base   []interval.Span `json:"base" yaml:"base"`
	Top    []interval.Span `json:"top" yaml:"top"`
	Fetch  []interval.Span `json:"fetch" yaml:"fetch"`
	Result []interval.Span `json:"result" yaml:"result"`
}

// Apply reconciles l and returns the next layers together with the diff
// reports. Result is consumed: the next Fetch no longer contains it and the
// next Result is empty.
func (l Layers) Apply() (Layers, Outcome) {
	out := Execute(l.Base, l.Top, l.Fetch, l.Result)
	next := Layers{
		Base:  out.Base.Spans(),
		Top:   out.Top.Spans(),
		Fetch: diffset.Subtract(l.Fetch, l.Result).Spans(),
	}
	return next, out
}
