package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *IdentityCache {
	t.Helper()
	c, err := NewIdentityCache(context.Background(), time.Minute)
	require.NoError(t, err)
	require.NotNil(t, c)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestIdentityCache_StoreLookup(t *testing.T) {
	c := newTestCache(t)

	_, ok := c.Lookup("a@x.com", "secret", "hash")
	assert.False(t, ok, "empty cache")

	c.Store("a@x.com", "secret", "hash", 42)

	id, ok := c.Lookup("a@x.com", "secret", "hash")
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	_, ok = c.Lookup("a@x.com", "other", "hash")
	assert.False(t, ok, "different password")

	_, ok = c.Lookup("a@x.com", "secret", "hash2")
	assert.False(t, ok, "different stored hash")

	_, ok = c.Lookup("b@x.com", "secret", "hash")
	assert.False(t, ok, "different email")
}

func TestIdentityCache_FieldBoundaries(t *testing.T) {
	c := newTestCache(t)

	c.Store("a@x.com", "ab", "c", 1)

	_, ok := c.Lookup("a@x.com", "a", "bc")
	assert.False(t, ok, "shifting bytes between fields must not collide")
}

func TestIdentityCache_Invalidate(t *testing.T) {
	c := newTestCache(t)

	c.Store("a@x.com", "secret", "hash", 42)
	c.Invalidate("a@x.com")

	_, ok := c.Lookup("a@x.com", "secret", "hash")
	assert.False(t, ok)

	assert.NotPanics(t, func() { c.Invalidate("never@x.com") })
}

func TestIdentityCache_Disabled(t *testing.T) {
	c, err := NewIdentityCache(context.Background(), 0)
	require.NoError(t, err)
	assert.Nil(t, c)

	assert.NotPanics(t, func() {
		c.Store("a@x.com", "secret", "hash", 1)
		_, ok := c.Lookup("a@x.com", "secret", "hash")
		assert.False(t, ok)
		c.Invalidate("a@x.com")
		assert.NoError(t, c.Close())
	})
}
