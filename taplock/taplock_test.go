// SPDX-License-Identifier: Unlicense OR MIT

package taplock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newLimiter(t *testing.T, size int) (*Limiter, *fakeClock) {
	t.Helper()
	l, err := New(size)
	require.NoError(t, err)
	clk := &fakeClock{t: time.Unix(1000, 0)}
	l.SetNowFunc(clk.now)
	return l, clk
}

func TestCheckAndSet(t *testing.T) {
	l, clk := newLimiter(t, 0)

	assert.False(t, l.CheckAndSet("save", 500*time.Millisecond), "first call must pass")
	assert.True(t, l.CheckAndSet("save", 500*time.Millisecond), "second call must be locked")
	assert.True(t, l.Locked("save"))
	assert.False(t, l.Locked("other"))

	clk.t = clk.t.Add(499 * time.Millisecond)
	assert.True(t, l.Locked("save"))

	clk.t = clk.t.Add(time.Millisecond)
	assert.False(t, l.Locked("save"), "lock must expire")
	assert.Equal(t, 0, l.Len(), "expired entry must be collected")
	assert.False(t, l.CheckAndSet("save", time.Second))
}

func TestUnlock(t *testing.T) {
	l, _ := newLimiter(t, 4)
	l.CheckAndSet("k", time.Hour)
	l.Unlock("k")
	assert.False(t, l.Locked("k"))
}

func TestZeroDurationNeverLocks(t *testing.T) {
	l, _ := newLimiter(t, 4)
	assert.False(t, l.CheckAndSet("k", 0))
	assert.False(t, l.CheckAndSet("k", 0))
}

func TestEviction(t *testing.T) {
	l, _ := newLimiter(t, 2)
	l.CheckAndSet("a", time.Hour)
	l.CheckAndSet("b", time.Hour)
	l.CheckAndSet("c", time.Hour)
	assert.Equal(t, 2, l.Len())
	assert.False(t, l.Locked("a"), "least recently used key must be evicted")
	assert.True(t, l.Locked("c"))
}
