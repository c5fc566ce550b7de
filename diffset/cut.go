package diffset

import "github.com/unkn0wn-root/rangecache/interval"

type cutKind int

const (
	cutNone cutKind = iota
	cutRemove
	cutMiddle
	cutTop
	cutBottom
)

func (k cutKind) String() string {
	switch k {
	case cutRemove:
		return "remove"
	case cutMiddle:
		return "middle"
	case cutTop:
		return "top"
	case cutBottom:
		return "bottom"
	default:
		return "none"
	}
}

// cutInfo classifies how cutter c affects subject s.
func cutInfo(s, c interval.Span) cutKind {
	switch {
	case c.Start <= s.Start && c.End >= s.End:
		return cutRemove
	case c.End <= s.Start || c.Start >= s.End || c.Start == c.End:
		return cutNone
	case c.Start > s.Start && c.End < s.End:
		return cutMiddle
	case c.Start <= s.Start:
		return cutTop
	default:
		return cutBottom
	}
}

// Subtract cuts every element of right out of left.
//
// An existing element that loses all coverage is reported in Removed. One
// that keeps exactly its original bounds is unchanged. Otherwise its first
// remaining piece stays anchored to it and is reported in Resized, while
// pieces split off behind a cutter are new groups. Added is always empty.
func Subtract[S, R interval.Extent](left []S, right []R) Report[S] {
	var rep Report[S]
	rs := interval.Spans(right)

	j := 0
	for i, el := range left {
		start, end := el.Bounds()
		// cutters ending before this element cannot reach any later one
		for j < len(rs) && rs[j].End < start {
			j++
		}

		sub := interval.Span{Start: start, End: end}
		var pieces []interval.Span
		alive := true
	cutters:
		for k := j; k < len(rs); k++ {
			c := rs[k]
			if c.Start > sub.End {
				break
			}
			switch cutInfo(sub, c) {
			case cutRemove:
				alive = false
				break cutters
			case cutMiddle:
				pieces = append(pieces, interval.Span{Start: sub.Start, End: c.Start})
				sub.Start = c.End
			case cutTop:
				sub.Start = c.End
			case cutBottom:
				sub.End = c.Start
				break cutters
			}
		}
		if alive {
			pieces = append(pieces, sub)
		}

		switch {
		case len(pieces) == 0:
			rep.Removed = append(rep.Removed, el)
		case len(pieces) == 1 && pieces[0] == (interval.Span{Start: start, End: end}):
			rep.Result = append(rep.Result, Group[S]{Start: start, End: end, Origin: i, Existing: el})
		default:
			first := Group[S]{Start: pieces[0].Start, End: pieces[0].End, Origin: i, Existing: el}
			rep.Result = append(rep.Result, first)
			rep.Resized = append(rep.Resized, first)
			for _, p := range pieces[1:] {
				rep.Result = append(rep.Result, Group[S]{Start: p.Start, End: p.End, Origin: -1})
			}
		}
	}
	return rep
}
