package codec

import (
	"fmt"
	"strings"
)

// ByName returns the codec configured by name: "json", "cbor", "msgpack",
// optionally prefixed with "lz4+" for compression, e.g. "lz4+msgpack".
func ByName[V any](name string) (Codec[V], error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if inner, ok := strings.CutPrefix(n, "lz4+"); ok {
		c, err := ByName[V](inner)
		if err != nil {
			return nil, err
		}
		return LZ4[V]{Inner: c}, nil
	}
	switch n {
	case "", "json":
		return JSON[V]{}, nil
	case "cbor":
		c, err := NewCBOR[V](true)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "msgpack":
		return Msgpack[V]{}, nil
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
}
