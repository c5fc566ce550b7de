package segment

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/unkn0wn-root/rangecache/interval"
)

func reshapeSpan(_ interval.Span, start, end float64) interval.Span {
	return interval.Span{Start: start, End: end}
}

func TestOverlapBoundIndices(t *testing.T) {
	cases := map[string]struct {
		set        []interval.Span
		start, end float64
		lo, hi     int
	}{
		"empty set":              {set: nil, start: 5, end: 6, lo: 0, hi: 0},
		"after, touching":        {set: spans(0, 1, 2, 3, 4, 5), start: 5, end: 6, lo: 2, hi: 3},
		"after":                  {set: spans(0, 1, 2, 3, 4, 4.5), start: 5, end: 6, lo: 3, hi: 3},
		"far after":              {set: spans(2, 3, 4, 4.5), start: 100, end: 101, lo: 2, hi: 2},
		"before":                 {set: spans(3.5, 4, 5, 6, 7, 8), start: 0, end: 3, lo: 0, hi: 0},
		"before, touching":       {set: spans(3, 4, 7, 8), start: 0, end: 3, lo: 0, hi: 1},
		"inside, in a gap":       {set: spans(0, 1, 4, 5, 6, 7), start: 2, end: 3, lo: 1, hi: 1},
		"inside, overlapping":    {set: spans(0, 1, 4, 5, 6, 7), start: 2, end: 5, lo: 1, hi: 2},
		"overlapping all":        {set: spans(0, 1, 4, 5, 6, 7), start: -1000, end: 1000, lo: 0, hi: 3},
		"touching both ends":     {set: spans(0, 1, 4, 5, 6, 7), start: 1, end: 6, lo: 0, hi: 3},
		"cross-overlapping ends": {set: spans(0, 1, 4, 5, 6, 7), start: 0.5, end: 6.5, lo: 0, hi: 3},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			lo, hi := OverlapBoundIndices(tc.set, interval.Closed(tc.start, tc.end))
			if lo != tc.lo || hi != tc.hi {
				t.Fatalf("got {%d, %d}, want {%d, %d}", lo, hi, tc.lo, tc.hi)
			}
		})
	}
}

func TestSplitOverlapping(t *testing.T) {
	cases := map[string]struct {
		set        []interval.Span
		start, end float64
		want       Split[interval.Span]
	}{
		"empty set": {
			start: 5, end: 6,
		},
		"after": {
			set:  spans(0, 1, 1, 2, 2, 3), start: 5, end: 6,
			want: Split[interval.Span]{Before: spans(0, 1, 1, 2, 2, 3), Start: 3, End: 3},
		},
		"after, touching": {
			set:  spans(0, 1, 1, 2, 2, 3), start: 3, end: 6,
			want: Split[interval.Span]{Before: spans(0, 1, 1, 2), Overlap: spans(2, 3), Start: 2, End: 3},
		},
		"before": {
			set:  spans(1, 2, 2, 3, 3, 4), start: 0, end: 0.5,
			want: Split[interval.Span]{After: spans(1, 2, 2, 3, 3, 4)},
		},
		"before, touching": {
			set:  spans(1, 2, 2, 3, 3, 4), start: 0, end: 1,
			want: Split[interval.Span]{Overlap: spans(1, 2), After: spans(2, 3, 3, 4), End: 1},
		},
		"inside, overlapping": {
			set:  spans(0, 1, 4, 5, 6, 7), start: 2, end: 5,
			want: Split[interval.Span]{Before: spans(0, 1), Overlap: spans(4, 5), After: spans(6, 7), Start: 1, End: 2},
		},
		"first part": {
			set:  spans(0, 1, 4, 5, 6, 7), start: -1, end: 5,
			want: Split[interval.Span]{Overlap: spans(0, 1, 4, 5), After: spans(6, 7), End: 2},
		},
		"last part": {
			set:  spans(0, 1, 4, 5, 6, 7), start: 4, end: 7,
			want: Split[interval.Span]{Before: spans(0, 1), Overlap: spans(4, 5, 6, 7), Start: 1, End: 3},
		},
		"single, touching right": {
			set:  spans(0, 1), start: 1, end: 2,
			want: Split[interval.Span]{Overlap: spans(0, 1), End: 1},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := SplitOverlapping(tc.set, interval.Closed(tc.start, tc.end))
			if diff := cmp.Diff(tc.want, got, equateEmpty); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestCut(t *testing.T) {
	cases := map[string]struct {
		set        []interval.Span
		start, end float64
		want       Split[interval.Span]
	}{
		"empty set": {
			start: 5, end: 6,
		},
		"after, touching": {
			set:  spans(0, 1, 1, 2, 2, 3), start: 3, end: 6,
			want: Split[interval.Span]{Before: spans(0, 1, 1, 2, 2, 3), Start: 3, End: 3},
		},
		"before, touching": {
			set:  spans(1, 2, 2, 3, 3, 4), start: 0, end: 1,
			want: Split[interval.Span]{After: spans(1, 2, 2, 3, 3, 4)},
		},
		"in a gap": {
			set:  spans(0, 1, 4, 5, 6, 7), start: 2, end: 3,
			want: Split[interval.Span]{Before: spans(0, 1), After: spans(4, 5, 6, 7), Start: 1, End: 1},
		},
		"touching both ends": {
			set:  spans(0, 1, 4, 5, 6, 7), start: 1, end: 6,
			want: Split[interval.Span]{Before: spans(0, 1), Overlap: spans(4, 5), After: spans(6, 7), Start: 1, End: 2},
		},
		"cross-overlapping": {
			set:  spans(0, 1, 4, 5, 6, 7), start: 0.5, end: 6.5,
			want: Split[interval.Span]{
				Before:  spans(0, 0.5),
				Overlap: spans(0.5, 1, 4, 5, 6, 6.5),
				After:   spans(6.5, 7),
				End:     3,
			},
		},
		"tail": {
			set:  spans(0, 1, 3, 4, 4, 5), start: 4.5, end: 5.5,
			want: Split[interval.Span]{Before: spans(0, 1, 3, 4, 4, 4.5), Overlap: spans(4.5, 5), Start: 2, End: 3},
		},
		"inside one element": {
			set:  spans(0, 1, 3, 4, 4, 5), start: 4.25, end: 4.75,
			want: Split[interval.Span]{
				Before:  spans(0, 1, 3, 4, 4, 4.25),
				Overlap: spans(4.25, 4.75),
				After:   spans(4.75, 5),
				Start:   2,
				End:     3,
			},
		},
		"across elements": {
			set:  spans(0, 1, 3, 4, 4, 5), start: 0.5, end: 4.5,
			want: Split[interval.Span]{
				Before:  spans(0, 0.5),
				Overlap: spans(0.5, 1, 3, 4, 4, 4.5),
				After:   spans(4.5, 5),
				End:     3,
			},
		},
		"middle of a single element": {
			set:  spans(0, 100), start: 20, end: 80,
			want: Split[interval.Span]{Before: spans(0, 20), Overlap: spans(20, 80), After: spans(80, 100), End: 1},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := Cut(tc.set, tc.start, tc.end, reshapeSpan)
			if diff := cmp.Diff(tc.want, got, equateEmpty); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestCutKeepsAfterOrdered(t *testing.T) {
	set := spans(0, 10, 20, 30)
	got := Cut(set, 5, 25, reshapeSpan)
	if diff := cmp.Diff(spans(25, 30), got.After); diff != "" {
		t.Fatalf("after (-want +got):\n%s", diff)
	}
	got = Cut(spans(0, 10, 20, 30, 40, 50), 5, 25, reshapeSpan)
	if diff := cmp.Diff(spans(25, 30, 40, 50), got.After); diff != "" {
		t.Fatalf("after with tail (-want +got):\n%s", diff)
	}
	if set[0] != (interval.Span{Start: 0, End: 10}) {
		t.Fatalf("Cut mutated its input: %v", set)
	}
}

func TestCutCarriesPayload(t *testing.T) {
	set := tags("a", 0, 100)
	got := Cut(set, 20, 80, func(s tagged, start, end float64) tagged {
		s.Start, s.End = start, end
		return s
	})
	for _, part := range [][]tagged{got.Before, got.Overlap, got.After} {
		if len(part) != 1 || part[0].Tag != "a" {
			t.Fatalf("payload lost: %+v", got)
		}
	}
}

func TestJoinTouching(t *testing.T) {
	sameTag := func(a, b tagged) bool { return a.Tag == b.Tag }
	reshape := func(s tagged, start, end float64) tagged {
		s.Start, s.End = start, end
		return s
	}

	got, err := JoinTouching(tags("x", 0, 1, 2, 3), tags("x", 3, 5, 6, 7), reshape, sameTag)
	if err != nil {
		t.Fatalf("JoinTouching: %v", err)
	}
	if diff := cmp.Diff(tags("x", 0, 1, 2, 5, 6, 7), got); diff != "" {
		t.Fatalf("fused (-want +got):\n%s", diff)
	}

	got, err = JoinTouching(tags("x", 0, 3), tags("y", 3, 5), reshape, sameTag)
	if err != nil {
		t.Fatalf("JoinTouching: %v", err)
	}
	want := append(tags("x", 0, 3), tags("y", 3, 5)...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("different kinds stay apart (-want +got):\n%s", diff)
	}

	got, err = JoinTouching(tags("x", 0, 1), tags("x", 2, 3), reshape, nil)
	if err != nil {
		t.Fatalf("JoinTouching: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("gap must not fuse: %v", got)
	}

	if _, err := JoinTouching(tags("x", 0, 4), tags("x", 3, 5), reshape, nil); !errors.Is(err, ErrOverlappingJoin) {
		t.Fatalf("want ErrOverlappingJoin, got %v", err)
	}

	got, err = JoinTouching(nil, tags("x", 3, 5), reshape, nil)
	if err != nil || len(got) != 1 {
		t.Fatalf("empty left: %v, %v", got, err)
	}
}
