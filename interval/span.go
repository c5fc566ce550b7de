package interval

// Extent is anything exposing a [start, end] extent.
type Extent interface {
	Bounds() (start, end float64)
}

// Span is the plain {start, end} shape.
type Span struct {
	Start float64 `json:"start" yaml:"start" msgpack:"start" cbor:"start"`
	End   float64 `json:"end" yaml:"end" msgpack:"end" cbor:"end"`
}

func (s Span) Bounds() (float64, float64) { return s.Start, s.End }

// Spans copies the bounds of every element of set.
func Spans[S Extent](set []S) []Span {
	out := make([]Span, len(set))
	for i, e := range set {
		out[i].Start, out[i].End = e.Bounds()
	}
	return out
}
