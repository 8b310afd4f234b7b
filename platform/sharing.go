// SPDX-License-Identifier: Unlicense OR MIT

package platform

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"gioui.org/touch/gesture"
	"gioui.org/touch/io/pointer"
)

// Sharing applies the sharing mode of an Engine to a Host.
//
// On the first contact of a gesture, Lock and Default capture the pointer while Manual
// releases it. In Manual mode the engine's LockState is consulted after
// every movement: Locked captures, Unlocked releases and Initial keeps
// the current state. The pointer is released when the last contact
// ends or the engine is disposed.
type Sharing struct {
	log  *zap.SugaredLogger
	eng  *gesture.Engine
	host Host

	captured atomic.Bool
	active   atomic.Bool
}

// NewSharing wraps eng. Samples must be delivered through the returned
// Sharing's Process for the host to follow the engine.
func NewSharing(log *zap.SugaredLogger, eng *gesture.Engine, host Host) *Sharing {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Sharing{log: log, eng: eng, host: host}
	eng.Handle(gesture.Down, s.down)
	eng.Handle(gesture.Up, s.up)
	eng.OnDispose(s.release)
	return s
}

// Engine returns the wrapped engine.
func (s *Sharing) Engine() *gesture.Engine {
	return s.eng
}

// Process feeds smp to the engine and updates the host.
func (s *Sharing) Process(smp pointer.Sample) {
	s.eng.Process(smp)
	if smp.Kind&pointer.Pan == 0 || !s.active.Load() || s.eng.Mode() != gesture.Manual {
		return
	}
	switch s.eng.LockState() {
	case gesture.Locked:
		s.capture()
	case gesture.Unlocked:
		s.release()
	}
}

// Captured reports whether the host currently holds the pointer.
func (s *Sharing) Captured() bool {
	return s.captured.Load()
}

func (s *Sharing) down(e *gesture.Event) {
	if !s.active.CAS(false, true) {
		// Further contacts join the gesture and keep its capture.
		return
	}
	switch s.eng.Mode() {
	case gesture.Lock, gesture.Default:
		s.capture()
	case gesture.Manual:
		s.release()
	}
}

func (s *Sharing) up(e *gesture.Event) {
	if e.InContact {
		return
	}
	s.active.Store(false)
	s.release()
}

func (s *Sharing) capture() {
	if s.captured.CAS(false, true) {
		s.log.Debugw("capturing pointer")
		s.host.Capture()
	}
}

func (s *Sharing) release() {
	if s.captured.CAS(true, false) {
		s.log.Debugw("releasing pointer")
		s.host.Release()
	}
}
