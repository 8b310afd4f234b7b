// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"time"

	"gioui.org/touch/io/pointer"
)

type longPressState uint8

const (
	lpIdle longPressState = iota
	// lpPending is set while the timer runs.
	lpPending
	// lpActive is set once the timer fired for the gesture.
	lpActive
)

// timer is the subset of *time.Timer used by the engine.
type timer interface {
	Stop() bool
}

func afterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// arm starts the long press timer for a fresh contact. At most one
// timer is live per engine; a generation number tells a stale expiry
// apart from the current one.
func (g *Engine) arm() {
	if g.timer != nil {
		g.timer.Stop()
	}
	g.lpGen++
	gen := g.lpGen
	g.setLongPress(lpPending)
	g.timer = g.afterFunc(g.cfg.longPress(), func() {
		g.longPressExpired(gen)
	})
}

// disarm stops the timer. An active long press stays active until the
// next press.
func (g *Engine) disarm() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	if g.lp == lpPending {
		g.setLongPress(lpIdle)
	}
}

func (g *Engine) setLongPress(s longPressState) {
	g.lp = s
	g.longPressing.Store(s == lpActive)
}

func (g *Engine) longPressExpired(gen uint64) {
	if g.disposed.Load() {
		return
	}
	g.mu.Lock()
	if g.disposed.Load() || gen != g.lpGen || g.lp != lpPending {
		g.mu.Unlock()
		return
	}
	g.timer = nil
	if g.lpLocked || g.down == nil {
		g.setLongPress(lpIdle)
		g.mu.Unlock()
		return
	}
	g.setLongPress(lpActive)
	g.queue = append(g.queue, emission{kind: pointer.Pressed, event: g.down, result: LongPressing, down: g.down})
	g.mu.Unlock()
	g.dispatch()
}
