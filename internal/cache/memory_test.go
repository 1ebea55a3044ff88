package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("test", 0)

	require.NoError(t, c.Set(ctx, "k1", "v1", 0))

	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)
}

func TestMemoryClient_GetMissing(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("", 0)

	_, err := c.Get(ctx, "nope")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestMemoryClient_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("", 0)

	require.NoError(t, c.Set(ctx, "ephemeral", "x", 20*time.Millisecond))

	got, err := c.Get(ctx, "ephemeral")
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	time.Sleep(40 * time.Millisecond)

	_, err = c.Get(ctx, "ephemeral")
	assert.True(t, IsNotFound(err))
}

func TestMemoryClient_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("", 0)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	require.NoError(t, c.Delete(ctx, "k"))

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryClient_PrefixIsolation(t *testing.T) {
	ctx := context.Background()
	a := NewMemory("a", 0)
	b := NewMemory("b", 0)

	require.NoError(t, a.Set(ctx, "k", "from-a", 0))

	_, err := b.Get(ctx, "k")
	assert.True(t, IsNotFound(err))
}

func TestMemoryClient_Stats(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("", 0)

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "missing")

	st, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", st.Driver)
	assert.Equal(t, int64(1), st.Keys)
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
}

func TestNew_DefaultsToMemory(t *testing.T) {
	c, err := New(Config{Kind: "memory"})
	require.NoError(t, err)
	require.NoError(t, c.Ping(context.Background()))
}
