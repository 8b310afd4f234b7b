// SPDX-License-Identifier: Unlicense OR MIT

/*
Package mobileinput feeds gesture engines from golang.org/x/mobile
events.

x/mobile events carry no timestamps: samples are stamped with the
adapter's clock when they are handled. Positions are in pixels of the
whole window; size events set the element bounds and the density.
*/
package mobileinput

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"gioui.org/touch/f32"
	"gioui.org/touch/io/pointer"
	"gioui.org/touch/platform"
	"gioui.org/touch/unit"
)

// MouseID is the pointer ID of mouse samples. Touch sequences use
// their non-negative sequence number.
const MouseID pointer.ID = -1

// Adapter converts the x/mobile events of one window.
type Adapter struct {
	log *zap.SugaredLogger

	mu       sync.Mutex
	proc     platform.Processor
	contacts platform.Contacts
	wheel    platform.WheelScale
	buttons  pointer.Buttons
	size     f32.Point
	metric   unit.Metric
	now      func() time.Time
	start    time.Time
	last     time.Duration
}

var _ platform.Adapter = (*Adapter)(nil)

// New returns a detached Adapter.
func New(log *zap.SugaredLogger) *Adapter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	a := &Adapter{log: log, now: time.Now}
	a.start = a.now()
	return a
}

// SetNowFunc replaces the clock used to stamp samples.
func (a *Adapter) SetNowFunc(fn func() time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now = fn
	a.start = fn()
	a.last = 0
}

// Attach directs samples to p.
func (a *Adapter) Attach(p platform.Processor) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.proc = p
}

// Detach stops delivering samples and forgets active contacts.
func (a *Adapter) Detach() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.proc = nil
	a.contacts.Clear()
	a.buttons = 0
}

// Metric returns the density reported by the last size event.
func (a *Adapter) Metric() unit.Metric {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.metric
}

// Handle converts e if it is a touch, mouse or size event and reports
// whether it was consumed.
func (a *Adapter) Handle(e any) bool {
	a.mu.Lock()
	var (
		s  pointer.Sample
		ok bool
	)
	switch e := e.(type) {
	case size.Event:
		a.size = f32.Pt(float32(e.WidthPx), float32(e.HeightPx))
		a.metric = unit.Metric{PxPerDp: e.PixelsPerPt}
		a.log.Debugw("window resized", "width", e.WidthPx, "height", e.HeightPx, "density", e.PixelsPerPt)
		a.mu.Unlock()
		return true
	case touch.Event:
		s, ok = a.touch(e)
	case mouse.Event:
		s, ok = a.mouse(e)
	default:
		a.mu.Unlock()
		return false
	}
	proc := a.proc
	a.mu.Unlock()
	if ok && proc != nil {
		platform.Feed(a.log, proc, s)
	}
	return true
}

func (a *Adapter) sample(id pointer.ID, src pointer.Source, x, y float32) pointer.Sample {
	t := a.now().Sub(a.start)
	if t < a.last {
		t = a.last
	}
	a.last = t
	p := f32.Pt(x, y)
	return pointer.Sample{
		PointerID: id,
		Source:    src,
		Position:  p,
		Inside:    platform.Inside(p, a.size),
		Time:      t,
	}
}

func (a *Adapter) touch(e touch.Event) (pointer.Sample, bool) {
	id := pointer.ID(e.Sequence)
	s := a.sample(id, pointer.Touch, e.X, e.Y)
	switch e.Type {
	case touch.TypeBegin:
		s.Kind = pointer.Pressed
		s.Touches = a.contacts.Down(id)
	case touch.TypeMove:
		if !a.contacts.Has(id) {
			return s, false
		}
		s.Kind = pointer.Moved
		s.Touches = a.contacts.Len()
	case touch.TypeEnd:
		if !a.contacts.Has(id) {
			return s, false
		}
		s.Kind = pointer.Released
		s.Touches = a.contacts.Up(id)
	default:
		return s, false
	}
	return s, true
}

func (a *Adapter) mouse(e mouse.Event) (pointer.Sample, bool) {
	s := a.sample(MouseID, pointer.Mouse, e.X, e.Y)
	switch e.Direction {
	case mouse.DirStep:
		var delta float32
		switch e.Button {
		case mouse.ButtonWheelUp:
			delta = 1
		case mouse.ButtonWheelDown:
			delta = -1
		default:
			return s, false
		}
		s.Kind = pointer.Wheel
		s.Wheel = a.wheel.Wheel(delta, s.Position)
		return s, true
	case mouse.DirPress:
		b, ok := button(e.Button)
		if !ok {
			return s, false
		}
		a.buttons |= b.Set()
		s.Button = a.buttonInfo(b, pointer.ButtonPressed)
		if a.contacts.Has(MouseID) {
			// Another button while dragging.
			s.Kind = pointer.Pointer
			s.Touches = 1
			return s, true
		}
		s.Kind = pointer.Pressed
		s.Touches = a.contacts.Down(MouseID)
	case mouse.DirRelease:
		b, ok := button(e.Button)
		if !ok {
			return s, false
		}
		a.buttons &^= b.Set()
		s.Button = a.buttonInfo(b, pointer.ButtonReleased)
		if a.buttons != 0 {
			s.Kind = pointer.Pointer
			s.Touches = 1
			return s, true
		}
		if !a.contacts.Has(MouseID) {
			return s, false
		}
		s.Kind = pointer.Released
		s.Touches = a.contacts.Up(MouseID)
	case mouse.DirNone:
		if a.contacts.Has(MouseID) {
			s.Kind = pointer.Moved
			s.Touches = 1
		} else {
			s.Kind = pointer.Pointer
		}
	default:
		return s, false
	}
	return s, true
}

func (a *Adapter) buttonInfo(b pointer.Button, st pointer.ButtonState) *pointer.ButtonInfo {
	return &pointer.ButtonInfo{
		Button:   b,
		Number:   int(b) + 1,
		State:    st,
		Pressed:  a.buttons,
		Pressure: 1,
	}
}

func button(b mouse.Button) (pointer.Button, bool) {
	switch b {
	case mouse.ButtonLeft:
		return pointer.ButtonLeft, true
	case mouse.ButtonRight:
		return pointer.ButtonRight, true
	case mouse.ButtonMiddle:
		return pointer.ButtonMiddle, true
	default:
		return 0, false
	}
}
