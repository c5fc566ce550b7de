package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

const (
	lz4Stored     byte = 0
	lz4Compressed byte = 1

	// lz4 cannot expand a block by more than this factor
	lz4MaxRatio = 255
)

// ErrCompressedCorrupt is returned by LZ4 for payloads it did not produce.
var ErrCompressedCorrupt = errors.New("codec: corrupt lz4 payload")

// LZ4 compresses the output of Inner with LZ4 block compression.
//
//	flag(1) | origLen(u32 be) | block     flag=1
//	flag(1) | raw                         flag=0 (incompressible)
type LZ4[V any] struct {
	Inner Codec[V]
}

var _ Codec[[]byte] = LZ4[[]byte]{Inner: Bytes{}}

func (c LZ4[V]) Encode(v V) ([]byte, error) {
	raw, err := c.Inner.Encode(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 5+lz4.CompressBlockBound(len(raw)))
	n, err := lz4.CompressBlock(raw, out[5:], nil)
	if err != nil {
		return nil, fmt.Errorf("codec: lz4 compress: %w", err)
	}
	if n == 0 || n >= len(raw) {
		stored := make([]byte, 1+len(raw))
		stored[0] = lz4Stored
		copy(stored[1:], raw)
		return stored, nil
	}
	out[0] = lz4Compressed
	binary.BigEndian.PutUint32(out[1:5], uint32(len(raw)))
	return out[:5+n], nil
}

func (c LZ4[V]) Decode(b []byte) (V, error) {
	var zero V
	if len(b) == 0 {
		return zero, ErrCompressedCorrupt
	}
	switch b[0] {
	case lz4Stored:
		return c.Inner.Decode(b[1:])
	case lz4Compressed:
		if len(b) < 5 {
			return zero, ErrCompressedCorrupt
		}
		size := int(binary.BigEndian.Uint32(b[1:5]))
		block := b[5:]
		if size == 0 || size > lz4MaxRatio*len(block)+16 {
			return zero, ErrCompressedCorrupt
		}
		raw := make([]byte, size)
		n, err := lz4.UncompressBlock(block, raw)
		if err != nil || n != size {
			return zero, ErrCompressedCorrupt
		}
		return c.Inner.Decode(raw)
	default:
		return zero, ErrCompressedCorrupt
	}
}
