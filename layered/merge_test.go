package layered

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/unkn0wn-root/rangecache/interval"
)

func sp(b ...float64) []interval.Span {
	out := make([]interval.Span, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		out = append(out, interval.Span{Start: b[i], End: b[i+1]})
	}
	return out
}

var equateEmpty = cmpopts.EquateEmpty()

func TestExecuteFullyRequestedResult(t *testing.T) {
	base, top, fetch, result := sp(0, 100), sp(10, 90), sp(20, 80), sp(20, 80)
	out := Execute(base, top, fetch, result)

	if diff := cmp.Diff(sp(), out.Extra.Spans(), equateEmpty); diff != "" {
		t.Fatalf("extra result (-want +got):\n%s", diff)
	}
	if len(out.Extra.Added) != 0 || len(out.Extra.Resized) != 0 {
		t.Fatalf("extra should carry no additions or resizes: %+v", out.Extra)
	}
	// The consumed result element is reported as removed, even though a
	// fully requested result is often read as "nothing removed". Subtract
	// reports every element that loses all coverage, and Extra follows it.
	if diff := cmp.Diff(sp(20, 80), out.Extra.Removed); diff != "" {
		t.Fatalf("extra removed (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(sp(10, 90), out.Top.Spans()); diff != "" {
		t.Fatalf("top (-want +got):\n%s", diff)
	}
	if len(out.Top.Added)+len(out.Top.Resized)+len(out.Top.Removed) != 0 {
		t.Fatalf("top should be unchanged: %+v", out.Top)
	}

	if diff := cmp.Diff(sp(0, 20, 80, 100), out.Base.Spans()); diff != "" {
		t.Fatalf("base (-want +got):\n%s", diff)
	}
	if len(out.Base.Resized) != 1 || out.Base.Resized[0].End != 20 {
		t.Fatalf("base resized = %+v", out.Base.Resized)
	}
}

func TestExecuteWiderResultExtendsTop(t *testing.T) {
	// asked for 20..80, got 10..90
	out := Execute(sp(), sp(30, 40), sp(20, 80), sp(10, 90))

	if diff := cmp.Diff(sp(10, 20, 80, 90), out.Extra.Spans()); diff != "" {
		t.Fatalf("extra (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(sp(10, 20, 30, 40, 80, 90), out.Top.Spans()); diff != "" {
		t.Fatalf("top (-want +got):\n%s", diff)
	}
	if len(out.Top.Added) != 2 {
		t.Fatalf("top added = %+v", out.Top.Added)
	}
	if len(out.Base.Result) != 0 {
		t.Fatalf("base = %+v", out.Base.Result)
	}
}

func TestExecuteExtraTouchingTopFuses(t *testing.T) {
	out := Execute(sp(), sp(0, 10), sp(12, 20), sp(10, 20))
	if diff := cmp.Diff(sp(0, 12), out.Top.Spans()); diff != "" {
		t.Fatalf("top (-want +got):\n%s", diff)
	}
	if len(out.Top.Resized) != 1 {
		t.Fatalf("top resized = %+v", out.Top.Resized)
	}
}

func TestLayersApply(t *testing.T) {
	l := Layers{
		Base:   sp(0, 100),
		Top:    sp(10, 90),
		Fetch:  sp(20, 80, 150, 160),
		Result: sp(20, 80),
	}
	next, _ := l.Apply()
	want := Layers{
		Base:  sp(0, 20, 80, 100),
		Top:   sp(10, 90),
		Fetch: sp(150, 160),
	}
	if diff := cmp.Diff(want, next, equateEmpty); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(sp(20, 80), l.Result); diff != "" {
		t.Fatalf("Apply mutated its receiver (-want +got):\n%s", diff)
	}
}
