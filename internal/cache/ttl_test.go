package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests move time forward explicitly
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestCache_HitWithinTTL(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1000, 0)}
	c := New(5*time.Minute, WithClock[string, int](clk.Now))

	c.Set("a", 42)

	clk.Advance(4 * time.Minute)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1000, 0)}
	c := New(5*time.Minute, WithClock[string, int](clk.Now))

	c.Set("a", 42)

	clk.Advance(5 * time.Minute)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len(), "expired entry should be dropped on access")
}

func TestCache_SetResetsAge(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1000, 0)}
	c := New(time.Minute, WithClock[string, string](clk.Now))

	c.Set("k", "old")
	clk.Advance(45 * time.Second)
	c.Set("k", "new")
	clk.Advance(45 * time.Second)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New[string, int](time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCache_DeleteExpired(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1000, 0)}
	c := New(5*time.Minute, WithClock[string, int](clk.Now))

	c.Set("old", 1)
	clk.Advance(3 * time.Minute)
	c.Set("fresh", 2)

	// "old" has 2 minutes left; nothing is pruned yet
	c.DeleteExpired()
	assert.Equal(t, 2, c.Len())

	clk.Advance(3 * time.Minute)
	c.DeleteExpired()
	assert.Equal(t, 1, c.Len(), "never-read expired entries must be pruned")

	v, ok := c.Get("fresh")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := New[int, []string](time.Minute)
	v, ok := c.Get(7)
	assert.False(t, ok)
	assert.Nil(t, v)
}
