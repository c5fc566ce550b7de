package rangecache

import (
	"encoding/json"

	"github.com/unkn0wn-root/rangecache/interval"
)

// Request asks for one level of a serie over [From, To].
// The JSON shape {id, level, from, to} is what data sources receive.
type Request struct {
	Serie string  `json:"id" yaml:"id"`
	Level string  `json:"level" yaml:"level"`
	From  float64 `json:"from" yaml:"from"`
	To    float64 `json:"to" yaml:"to"`
}

// NewRequest returns a Request with From <= To, swapping inverted bounds.
func NewRequest(serie, level string, from, to float64) Request {
	r, _ := Request{Serie: serie, Level: level, From: from, To: to}.Normalize()
	return r
}

// Normalize swaps inverted bounds. swapped reports whether it had to.
func (r Request) Normalize() (_ Request, swapped bool) {
	if r.From > r.To {
		r.From, r.To = r.To, r.From
		return r, true
	}
	return r, false
}

func (r Request) Bounds() (float64, float64) { return r.From, r.To }

func (r Request) Span() interval.Span { return interval.Span{Start: r.From, End: r.To} }

// Range is the request as a closed range.
func (r Request) Range() interval.Range { return interval.Closed(r.From, r.To) }

// ToServerFormat encodes r in the shape data sources expect.
func (r Request) ToServerFormat() ([]byte, error) { return json.Marshal(r) }

// RequestFromServerFormat decodes a request produced by ToServerFormat.
// Inverted bounds are normalised.
func RequestFromServerFormat(b []byte) (Request, error) {
	var r Request
	if err := json.Unmarshal(b, &r); err != nil {
		return Request{}, err
	}
	r, _ = r.Normalize()
	return r, nil
}
