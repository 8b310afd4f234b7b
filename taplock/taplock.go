// SPDX-License-Identifier: Unlicense OR MIT

// Package taplock rate limits repeated invocations that share a key,
// such as a tap command fired twice by a nervous finger.
package taplock

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultSize is the number of keys a Limiter remembers when New is
// called with a non-positive size.
const DefaultSize = 256

// Limiter remembers, per key, the instant until which the key is
// locked. Expired entries are dropped lazily. The least recently used
// key is forgotten when the limiter is full.
type Limiter struct {
	mu    sync.Mutex
	locks *lru.Cache
	now   func() time.Time
}

// New returns a Limiter remembering up to size keys.
func New(size int) (*Limiter, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("taplock: %w", err)
	}
	return &Limiter{locks: c, now: time.Now}, nil
}

// SetNowFunc overrides the clock used for expiry.
func (l *Limiter) SetNowFunc(fn func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fn != nil {
		l.now = fn
	}
}

// Locked reports whether key is currently locked.
func (l *Limiter) Locked(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked(key)
}

// CheckAndSet reports whether key is still locked. If it is not, the
// key is locked for d and CheckAndSet returns false.
func (l *Limiter) CheckAndSet(key string, d time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locked(key) {
		return true
	}
	if d > 0 {
		l.locks.Add(key, l.now().Add(d))
	}
	return false
}

// Unlock releases key.
func (l *Limiter) Unlock(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locks.Remove(key)
}

// Len returns the number of remembered keys, including expired ones
// not yet collected.
func (l *Limiter) Len() int {
	return l.locks.Len()
}

func (l *Limiter) locked(key string) bool {
	v, ok := l.locks.Get(key)
	if !ok {
		return false
	}
	if !l.now().Before(v.(time.Time)) {
		l.locks.Remove(key)
		return false
	}
	return true
}
