package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"

	"github.com/unkn0wn-root/rangecache/interval"
)

const (
	version      byte = 1
	kindSnapshot byte = 1
)

var (
	ErrCorrupt = errors.New("rangecache: corrupt snapshot")
	magic4     = [...]byte{'R', 'N', 'G', 'C'}
)

const (
	headerLen  = 4 + 1 + 1 + 8
	spanLen    = 8 + 8
	segHdrLen  = 8 + 8 + 4
	countLen   = 4
	minimalLen = headerLen + 3*countLen
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Segment is one data segment with its codec-encoded payload.
type Segment struct {
	Start   float64
	End     float64
	Payload []byte
}

// Snapshot is the persisted state of one serie level.
type Snapshot struct {
	Gen      uint64
	Base     []interval.Span
	Top      []interval.Span
	Segments []Segment
}

// EncodeSnapshot frames s as:
//
//	magic(4) | ver(1) | kind(1) | gen(u64 be)
//	nBase(u32 be) | (start f64 | end f64) * nBase
//	nTop(u32 be)  | (start f64 | end f64) * nTop
//	nSeg(u32 be)  | (start f64 | end f64 | vlen u32 | payload(vlen)) * nSeg
func EncodeSnapshot(s Snapshot) []byte {
	total := minimalLen + spanLen*(len(s.Base)+len(s.Top))
	for _, seg := range s.Segments {
		total += segHdrLen + len(seg.Payload)
	}

	var buf bytes.Buffer
	buf.Grow(total)

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindSnapshot)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], s.Gen)
	buf.Write(u8[:])

	putF := func(f float64) {
		binary.BigEndian.PutUint64(u8[:], math.Float64bits(f))
		buf.Write(u8[:])
	}
	putN := func(n int) {
		binary.BigEndian.PutUint32(u4[:], uint32(n))
		buf.Write(u4[:])
	}

	for _, layer := range [][]interval.Span{s.Base, s.Top} {
		putN(len(layer))
		for _, sp := range layer {
			putF(sp.Start)
			putF(sp.End)
		}
	}

	putN(len(s.Segments))
	for _, seg := range s.Segments {
		putF(seg.Start)
		putF(seg.End)
		putN(len(seg.Payload))
		buf.Write(seg.Payload)
	}
	return buf.Bytes()
}

// DecodeSnapshot parses a frame produced by EncodeSnapshot. Segment payloads
// alias b. Trailing bytes are rejected.
func DecodeSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	if len(b) < minimalLen || !hasMagic(b) || b[4] != version || b[5] != kindSnapshot {
		return s, ErrCorrupt
	}
	off := 6
	s.Gen = binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	count := func(elemLen int) (int, bool) {
		if off+countLen > len(b) {
			return 0, false
		}
		n := int(binary.BigEndian.Uint32(b[off : off+countLen]))
		off += countLen
		// an announced count must fit the remaining bytes before anything is allocated
		if n < 0 || n > (len(b)-off)/elemLen {
			return 0, false
		}
		return n, true
	}
	getF := func() float64 {
		f := math.Float64frombits(binary.BigEndian.Uint64(b[off : off+8]))
		off += 8
		return f
	}
	spans := func() ([]interval.Span, bool) {
		n, ok := count(spanLen)
		if !ok {
			return nil, false
		}
		out := make([]interval.Span, n)
		for i := range out {
			out[i].Start = getF()
			out[i].End = getF()
		}
		return out, true
	}

	var ok bool
	if s.Base, ok = spans(); !ok {
		return Snapshot{}, ErrCorrupt
	}
	if s.Top, ok = spans(); !ok {
		return Snapshot{}, ErrCorrupt
	}

	n, ok := count(segHdrLen)
	if !ok {
		return Snapshot{}, ErrCorrupt
	}
	s.Segments = make([]Segment, 0, n)
	for i := 0; i < n; i++ {
		if off+segHdrLen > len(b) {
			return Snapshot{}, ErrCorrupt
		}
		start, end := getF(), getF()
		vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		if vlen < 0 || vlen > len(b)-off { // overflow-safe bound check
			return Snapshot{}, ErrCorrupt
		}
		s.Segments = append(s.Segments, Segment{Start: start, End: end, Payload: b[off : off+vlen]})
		off += vlen
	}

	if off != len(b) {
		return Snapshot{}, ErrCorrupt
	}
	return s, nil
}
