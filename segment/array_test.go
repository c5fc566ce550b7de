package segment

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/unkn0wn-root/rangecache/interval"
)

// tagged carries a payload so replacement on merge is observable.
type tagged struct {
	Start, End float64
	Tag        string
}

func (t tagged) Bounds() (float64, float64) { return t.Start, t.End }

// spans builds [[b0,b1], [b2,b3], ...] from a flat bound list.
func spans(b ...float64) []interval.Span {
	out := make([]interval.Span, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		out = append(out, interval.Span{Start: b[i], End: b[i+1]})
	}
	return out
}

func tags(tag string, b ...float64) []tagged {
	out := make([]tagged, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		out = append(out, tagged{Start: b[i], End: b[i+1], Tag: tag})
	}
	return out
}

func spanArray(leftClosed, rightClosed bool, data []interval.Span) *Array[interval.Span] {
	return FromSorted(ExtentKeys[interval.Span](), leftClosed, rightClosed, data)
}

var fixture = spans(
	3, 5, 5, 6, 8, 10, 10, 11, 11, 12, 12, 13,
	100, 110, 200, 210, 300, 310, 400, 410, 500, 510, 600, 610, 700, 710,
)

var equateEmpty = cmpopts.EquateEmpty()

func TestGetRangeBasics(t *testing.T) {
	a := spanArray(true, true, fixture)
	if got := a.GetRange(1000, 2000); len(got) != 0 {
		t.Fatalf("range past data: got %v", got)
	}
	if got := a.GetRange(0, 1); len(got) != 0 {
		t.Fatalf("range before data: got %v", got)
	}
	if got := spanArray(true, true, nil).GetRange(12, 155); len(got) != 0 {
		t.Fatalf("empty array: got %v", got)
	}
	one := spanArray(true, true, spans(3, 4))
	if diff := cmp.Diff(spans(3, 4), one.GetRange(0, 155)); diff != "" {
		t.Fatalf("single element (-want +got):\n%s", diff)
	}
}

func TestGetRangeBoundaries(t *testing.T) {
	cases := map[string]struct {
		lc, rc      bool
		left, right float64
		from, to    float64
	}{
		"at segment, closed":                    {lc: true, rc: true, left: 300, right: 510, from: 300, to: 510},
		"at segment, opened":                    {left: 300, right: 510, from: 300, to: 510},
		"touching before, closed":               {lc: true, rc: true, left: 150, right: 300, from: 200, to: 310},
		"touching before, opened":               {left: 150, right: 300, from: 200, to: 210},
		"touching after, closed":                {lc: true, rc: true, left: 510, right: 650, from: 500, to: 610},
		"touching after, opened":                {left: 510, right: 650, from: 600, to: 610},
		"inside segment, closed":                {lc: true, rc: true, left: 201, right: 509, from: 200, to: 510},
		"inside segment, opened":                {left: 201, right: 509, from: 200, to: 510},
		"outside segment, closed":               {lc: true, rc: true, left: 199, right: 511, from: 200, to: 510},
		"outside segment, opened":               {left: 199, right: 511, from: 200, to: 510},
		"touching 3, closed left, opened right": {lc: true, left: 11, right: 12, from: 10, to: 12},
		"touching 3, opened left, closed right": {rc: true, left: 11, right: 12, from: 11, to: 13},
		"touching 3, closed":                    {lc: true, rc: true, left: 11, right: 12, from: 10, to: 13},
		"touching 3, opened":                    {left: 11, right: 12, from: 11, to: 12},
		"inside 3, opened":                      {left: 10.5, right: 12.5, from: 10, to: 13},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			a := spanArray(tc.lc, tc.rc, fixture)
			got := a.GetRange(tc.left, tc.right)
			if len(got) == 0 {
				t.Fatalf("GetRange(%v, %v) returned nothing", tc.left, tc.right)
			}
			if got[0].Start != tc.from || got[len(got)-1].End != tc.to {
				t.Fatalf("GetRange(%v, %v) spans [%v, %v], want [%v, %v]",
					tc.left, tc.right, got[0].Start, got[len(got)-1].End, tc.from, tc.to)
			}
		})
	}
}

func TestGetRangeOptionsOverrideDefaults(t *testing.T) {
	a := spanArray(true, true, fixture)
	got := a.GetRange(150, 300, LeftBoundClosed(false), RightBoundClosed(false))
	if diff := cmp.Diff(spans(200, 210), got); diff != "" {
		t.Fatalf("opened override (-want +got):\n%s", diff)
	}
	got = a.GetRangeOf(interval.Opened(150, 300), true)
	if diff := cmp.Diff(spans(200, 210, 300, 310), got); diff != "" {
		t.Fatalf("one more (-want +got):\n%s", diff)
	}
	// look-ahead past the last segment is clamped
	got = a.GetRange(700, 800, OneMore())
	if diff := cmp.Diff(spans(700, 710), got); diff != "" {
		t.Fatalf("clamped one more (-want +got):\n%s", diff)
	}
}

func TestGetRangeReturnsCopy(t *testing.T) {
	a := spanArray(true, true, spans(0, 1, 2, 3))
	got := a.GetRange(0, 3)
	got[0].Start = 42
	if a.All()[0].Start != 0 {
		t.Fatalf("GetRange result aliases the array")
	}
}

func TestFindRangeIndexesGap(t *testing.T) {
	a := spanArray(false, false, spans(0, 1, 2, 3))
	lo, hi := a.FindRangeIndexes(1, 2)
	if lo <= hi {
		t.Fatalf("open query over a gap should yield lo > hi, got %d, %d", lo, hi)
	}
	if lo, hi := a.FindRangeIndexes(10, 20); lo != -1 || hi != -1 {
		t.Fatalf("miss: got %d, %d", lo, hi)
	}
}

func TestInsertRange(t *testing.T) {
	base := spans(0, 1, 2, 4, 100, 104, 104, 110)
	cases := map[string]struct {
		data, rng, want []interval.Span
	}{
		"gap not touching": {
			data: base, rng: spans(50, 51, 52, 55, 55, 58, 60, 61),
			want: spans(0, 1, 2, 4, 50, 51, 52, 55, 55, 58, 60, 61, 100, 104, 104, 110),
		},
		"gap touching both sides": {
			data: base, rng: spans(4, 100),
			want: spans(0, 1, 2, 4, 4, 100, 100, 104, 104, 110),
		},
		"gap touching left": {
			data: base, rng: spans(4, 51, 52, 55, 55, 58, 60, 61),
			want: spans(0, 1, 2, 4, 4, 51, 52, 55, 55, 58, 60, 61, 100, 104, 104, 110),
		},
		"gap touching right": {
			data: base, rng: spans(50, 51, 52, 55, 55, 58, 60, 100),
			want: spans(0, 1, 2, 4, 50, 51, 52, 55, 55, 58, 60, 100, 100, 104, 104, 110),
		},
		"point touching both": {
			data: spans(100, 104, 104, 110), rng: spans(104, 104),
			want: spans(100, 104, 104, 104, 104, 110),
		},
		"beginning not touching": {
			data: spans(100, 104, 104, 110), rng: spans(1, 2),
			want: spans(1, 2, 100, 104, 104, 110),
		},
		"beginning touching": {
			data: spans(100, 104, 104, 110), rng: spans(1, 100),
			want: spans(1, 100, 100, 104, 104, 110),
		},
		"end not touching": {
			data: spans(100, 104, 104, 110), rng: spans(200, 300),
			want: spans(100, 104, 104, 110, 200, 300),
		},
		"end touching": {
			data: spans(100, 104, 104, 110), rng: spans(110, 300),
			want: spans(100, 104, 104, 110, 110, 300),
		},
		"empty array": {
			data: nil, rng: spans(1, 2, 3, 4),
			want: spans(1, 2, 3, 4),
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			a := spanArray(true, true, tc.data)
			if err := a.InsertRange(tc.rng); err != nil {
				t.Fatalf("InsertRange: %v", err)
			}
			if diff := cmp.Diff(tc.want, a.All()); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestInsertRangeOccupied(t *testing.T) {
	data := spans(0, 1, 2, 4, 100, 104, 104, 110)
	a := spanArray(true, true, data)
	err := a.InsertRange(spans(1.5, 1.6, 50, 60))
	if !errors.Is(err, ErrOccupiedGap) {
		t.Fatalf("want ErrOccupiedGap, got %v", err)
	}
	if diff := cmp.Diff(data, a.All()); diff != "" {
		t.Fatalf("failed insert mutated the array (-want +got):\n%s", diff)
	}
}

func TestMergeRange(t *testing.T) {
	cases := map[string]struct {
		data, rng, want []interval.Span
	}{
		"identical points": {
			data: spans(0, 0, 1, 1, 2, 2, 3, 3), rng: spans(0, 0, 1, 1, 2, 2, 3, 3),
			want: spans(0, 0, 1, 1, 2, 2, 3, 3),
		},
		"one into gap": {
			data: spans(0, 1, 4, 5, 8, 9), rng: spans(2, 3),
			want: spans(0, 1, 2, 3, 4, 5, 8, 9),
		},
		"one into gap touching": {
			data: spans(0, 1, 4, 5, 8, 9), rng: spans(1, 4),
			want: spans(0, 1, 1, 4, 4, 5, 8, 9),
		},
		"many into gap": {
			data: spans(0, 1, 4, 5, 8, 9), rng: spans(2, 2.1, 2.2, 2.3, 2.3, 2.4, 2.5, 2.6),
			want: spans(0, 1, 2, 2.1, 2.2, 2.3, 2.3, 2.4, 2.5, 2.6, 4, 5, 8, 9),
		},
		"many into gap touching": {
			data: spans(0, 1, 4, 5, 8, 9), rng: spans(1, 2.1, 2.2, 2.3, 2.3, 2.4, 2.4, 4),
			want: spans(0, 1, 1, 2.1, 2.2, 2.3, 2.3, 2.4, 2.4, 4, 4, 5, 8, 9),
		},
		"interleaving": {
			data: spans(0, 1, 4, 5, 8, 9), rng: spans(2, 3, 6, 7),
			want: spans(0, 1, 2, 3, 4, 5, 6, 7, 8, 9),
		},
		"beginning": {
			data: spans(4, 5, 8, 9), rng: spans(2, 3),
			want: spans(2, 3, 4, 5, 8, 9),
		},
		"beginning touching": {
			data: spans(4, 5, 8, 9), rng: spans(2, 4),
			want: spans(2, 4, 4, 5, 8, 9),
		},
		"end": {
			data: spans(4, 5, 8, 9), rng: spans(10, 11),
			want: spans(4, 5, 8, 9, 10, 11),
		},
		"end touching": {
			data: spans(4, 5, 8, 9), rng: spans(9, 10),
			want: spans(4, 5, 8, 9, 9, 10),
		},
		"into empty": {
			data: nil, rng: spans(2, 3, 3, 4, 4, 5),
			want: spans(2, 3, 3, 4, 4, 5),
		},
		"empty into empty": {},
		"empty into data": {
			data: spans(1, 2, 2, 4), want: spans(1, 2, 2, 4),
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			a := spanArray(true, true, tc.data)
			if err := a.MergeRange(tc.rng); err != nil {
				t.Fatalf("MergeRange: %v", err)
			}
			if diff := cmp.Diff(tc.want, a.All(), equateEmpty); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeRangeOverwrites(t *testing.T) {
	cases := map[string]struct {
		data, rng, want []tagged
	}{
		"one overwriting": {
			data: tags("old", 1, 2, 3, 4), rng: tags("new", 3, 4),
			want: append(tags("old", 1, 2), tags("new", 3, 4)...),
		},
		"two, one overwriting": {
			data: tags("old", 1, 2, 3, 4, 4, 5), rng: tags("new", 3, 4, 4, 5),
			want: append(tags("old", 1, 2), tags("new", 3, 4, 4, 5)...),
		},
		"overwriting all": {
			data: tags("old", 1, 2, 3, 4, 4, 5), rng: tags("new", 1, 2, 3, 4, 4, 5),
			want: tags("new", 1, 2, 3, 4, 4, 5),
		},
		"single overwriting single": {
			data: tags("old", 1, 2), rng: tags("new", 1, 2),
			want: tags("new", 1, 2),
		},
		"overwriting at the beginning": {
			data: tags("old", 1, 2, 3, 4), rng: tags("new", 1, 2),
			want: append(tags("new", 1, 2), tags("old", 3, 4)...),
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			a := FromSorted(ExtentKeys[tagged](), true, true, tc.data)
			if err := a.MergeRange(tc.rng); err != nil {
				t.Fatalf("MergeRange: %v", err)
			}
			if diff := cmp.Diff(tc.want, a.All()); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
		})
	}
}

// Merging the same run a second time leaves the array as the first merge did.
func TestMergeRangeIdempotent(t *testing.T) {
	cases := map[string]struct {
		data, rng []tagged
	}{
		"into gaps": {
			data: tags("old", 0, 1, 4, 5, 8, 9), rng: tags("new", 2, 3, 6, 7),
		},
		"overlapping existing": {
			data: tags("old", 1, 2, 3, 4, 4, 5, 9, 10), rng: tags("new", 3, 4, 4, 5, 6, 7),
		},
		"covering everything": {
			data: tags("old", 1, 2, 3, 4), rng: tags("new", 0, 1, 1, 2, 2, 3, 3, 4, 4, 5),
		},
		"touching both ends": {
			data: tags("old", 0, 2, 8, 10), rng: tags("new", 2, 4, 4, 6, 6, 8),
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			a := FromSorted(ExtentKeys[tagged](), true, true, tc.data)
			if err := a.MergeRange(tc.rng); err != nil {
				t.Fatalf("first MergeRange: %v", err)
			}
			once := slices.Clone(a.All())
			if err := a.MergeRange(tc.rng); err != nil {
				t.Fatalf("second MergeRange: %v", err)
			}
			if diff := cmp.Diff(once, a.All()); diff != "" {
				t.Fatalf("second merge changed the array (-once +twice):\n%s", diff)
			}
		})
	}
}

func TestMergeRangeInconsistentOverlap(t *testing.T) {
	data := spans(0, 1, 4, 5, 8, 9)
	a := spanArray(true, true, data)
	// out of order: the run starts after it ends, around [4, 5]
	err := a.MergeRange(spans(6, 7, 2, 3))
	if !errors.Is(err, ErrInconsistentOverlap) {
		t.Fatalf("want ErrInconsistentOverlap, got %v", err)
	}
	if diff := cmp.Diff(data, a.All()); diff != "" {
		t.Fatalf("failed merge mutated the array (-want +got):\n%s", diff)
	}
}

func TestMergeRangeInvertedSingleSegment(t *testing.T) {
	a := spanArray(true, true, spans(0, 1, 4, 5, 8, 9))
	if err := a.MergeRange(spans(6, 3)); err != nil {
		t.Fatalf("MergeRange: %v", err)
	}
	// placed after the last segment ending before its left bound
	want := spans(0, 1, 4, 5, 6, 3, 8, 9)
	if diff := cmp.Diff(want, a.All()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestMergeByLeft(t *testing.T) {
	a := New(ExtentKeys[interval.Span](), true, true)
	got := a.mergeByLeft(spans(2, 3, 6, 7, 10, 11), spans(4, 5, 8, 9))
	if diff := cmp.Diff(spans(2, 3, 4, 5, 6, 7, 8, 9, 10, 11), got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

// Splitting a tiling into two halves and merging one into the other must
// restore the tiling.
func TestMergeRangeRestoresPartition(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 6, 10, 50, 100, 1000} {
		var all, existing, incoming []interval.Span
		bound := 0.0
		for i := 0; i < n; i++ {
			left := bound + float64(i%4)
			right := left + 1 + float64((i*7)%4)
			bound = right
			s := interval.Span{Start: left, End: right}
			all = append(all, s)
			if (i*31)%3 == 0 {
				existing = append(existing, s)
			} else {
				incoming = append(incoming, s)
			}
		}
		a := spanArray(true, true, existing)
		if err := a.MergeRange(incoming); err != nil {
			t.Fatalf("n=%d: MergeRange: %v", n, err)
		}
		if diff := cmp.Diff(all, a.All()); diff != "" {
			t.Fatalf("n=%d (-want +got):\n%s", n, diff)
		}
	}
}

func TestCustomKeys(t *testing.T) {
	type point struct{ from, to int64 }
	keys := Keys[point]{
		Left:  func(p point) float64 { return float64(p.from) },
		Right: func(p point) float64 { return float64(p.to) },
	}
	a := New(keys, false, true)
	if err := a.InsertRange([]point{{0, 10}, {10, 20}}); err != nil {
		t.Fatalf("InsertRange: %v", err)
	}
	got := a.GetRange(10, 20)
	if len(got) != 1 || got[0] != (point{10, 20}) {
		t.Fatalf("GetRange = %v", got)
	}
	a.Clear()
	if a.Len() != 0 {
		t.Fatalf("Clear left %d segments", a.Len())
	}
}
