package ratelimit

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCountsPerKey(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := s.Hit(ctx, "a", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	n, err := s.Hit(ctx, "b", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStoreWindowResets(t *testing.T) {
	s := NewMemoryStore(time.Millisecond)
	ctx := context.Background()

	_, _ = s.Hit(ctx, "k", 20*time.Millisecond)
	_, _ = s.Hit(ctx, "k", 20*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	n, err := s.Hit(ctx, "k", 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestLimiterAllow(t *testing.T) {
	l := New(NewMemoryStore(time.Minute), Config{Limit: 2, Window: time.Minute})
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "10.0.0.1", "/api/v1/auth/login"))
	assert.True(t, l.Allow(ctx, "10.0.0.1", "/api/v1/auth/login"))
	assert.False(t, l.Allow(ctx, "10.0.0.1", "/api/v1/auth/login"))

	assert.True(t, l.Allow(ctx, "10.0.0.1", "/api/v1/patients"))
	assert.True(t, l.Allow(ctx, "10.0.0.2", "/api/v1/auth/login"))
}

func TestLimiterDisabled(t *testing.T) {
	l := New(NewMemoryStore(time.Minute), Config{Limit: 0, Window: time.Minute})

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(context.Background(), "ip", "route"))
	}
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration) (int64, error) {
	return 0, stderrors.New("connection refused")
}

func TestLimiterFailsOpen(t *testing.T) {
	l := New(failingStore{}, Config{Limit: 1, Window: time.Minute})

	assert.True(t, l.Allow(context.Background(), "ip", "route"))
	assert.True(t, l.Allow(context.Background(), "ip", "route"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "ratelimit:1.2.3.4:/x", Key("1.2.3.4", "/x"))
}
