package ristretto

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProviderRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig(100)
	cfg.SyncWrites = true
	cfg.Metrics = true
	p, err := New(cfg)
	require.NoError(t, err)
	defer p.Close(ctx)

	ok, err := p.Set(ctx, "level:m:cpu:1m", []byte("snap"), 1, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	b, ok, err := p.Get(ctx, "level:m:cpu:1m")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("snap"), b)
	require.NotNil(t, p.Metrics())

	require.NoError(t, p.Del(ctx, "level:m:cpu:1m"))
	_, ok, err = p.Get(ctx, "level:m:cpu:1m")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
