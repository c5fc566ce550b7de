package rangecache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/rangecache/interval"
)

func TestNewRequestSwapsInvertedBounds(t *testing.T) {
	r := NewRequest("cpu", "1m", 20, 10)
	require.Equal(t, Request{Serie: "cpu", Level: "1m", From: 10, To: 20}, r)

	_, swapped := Request{From: 1, To: 2}.Normalize()
	require.False(t, swapped)
	_, swapped = Request{From: 2, To: 1}.Normalize()
	require.True(t, swapped)
}

func TestRequestServerFormat(t *testing.T) {
	raw, err := NewRequest("cpu", "1m", 1000, 2000).ToServerFormat()
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"cpu","level":"1m","from":1000,"to":2000}`, string(raw))

	r, err := RequestFromServerFormat([]byte(`{"id":"mem","level":"raw","from":9,"to":3}`))
	require.NoError(t, err)
	require.Equal(t, NewRequest("mem", "raw", 3, 9), r)

	_, err = RequestFromServerFormat([]byte(`{"id":`))
	require.Error(t, err)
}

func TestRequestExtent(t *testing.T) {
	r := NewRequest("cpu", "1m", 5, 7)
	require.Equal(t, interval.Span{Start: 5, End: 7}, r.Span())
	require.Equal(t, interval.Closed(5, 7), r.Range())
	require.Equal(t, []interval.Span{{Start: 5, End: 7}}, interval.Spans([]Request{r}))
}
