// SPDX-License-Identifier: Unlicense OR MIT

/*
Package gioinput feeds gesture engines from Gio pointer events.

Add an Adapter's tag to the operation list of the element, clipped to
the element bounds, and call Update with the frame's input source and
the element size:

	a := gioinput.New(log)
	a.Attach(platform.NewSharing(log, eng, a))
	...
	a.Update(gtx.Source, gtx.Constraints.Max)
	a.Add(gtx.Ops)

Capture is implemented as a pointer grab of every active contact. Gio
has no way to hand a grabbed pointer back, so Release only stops
further grabs.
*/
package gioinput

import (
	"image"
	"math"

	gf32 "gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/input"
	gpointer "gioui.org/io/pointer"
	"gioui.org/op"
	"go.uber.org/zap"

	"gioui.org/touch/f32"
	"gioui.org/touch/io/pointer"
	"gioui.org/touch/platform"
)

// Source is the part of input.Source used by Adapter.
type Source interface {
	Event(filters ...event.Filter) (event.Event, bool)
	Execute(c input.Command)
}

// WheelNotch is the scroll distance Gio reports for one wheel notch.
const WheelNotch = 120

// Adapter converts the Gio pointer events of one element.
type Adapter struct {
	log  *zap.SugaredLogger
	proc platform.Processor

	contacts platform.Contacts
	wheel    platform.WheelScale
	button   pointer.Button
	size     f32.Point

	// src is the source of the frame being processed.
	src      Source
	grabbing bool
}

var _ platform.Adapter = (*Adapter)(nil)
var _ platform.Host = (*Adapter)(nil)

// New returns a detached Adapter.
func New(log *zap.SugaredLogger) *Adapter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Adapter{log: log}
}

// Attach directs samples to p.
func (a *Adapter) Attach(p platform.Processor) {
	a.proc = p
}

// Detach stops delivering samples and forgets active contacts.
func (a *Adapter) Detach() {
	a.proc = nil
	a.contacts.Clear()
	a.grabbing = false
}

// Add registers the adapter as the target of pointer events in the
// current clip area.
func (a *Adapter) Add(ops *op.Ops) {
	event.Op(ops, a)
}

// Capture grabs every active contact.
func (a *Adapter) Capture() {
	a.grabbing = true
	a.grab()
}

// Release stops grabbing new contacts.
func (a *Adapter) Release() {
	a.grabbing = false
}

func (a *Adapter) grab() {
	if a.src == nil {
		return
	}
	for _, id := range a.contacts.IDs() {
		a.src.Execute(gpointer.GrabCmd{Tag: a, ID: gpointer.ID(id)})
	}
}

// Update converts and delivers the pending events of the element,
// whose size in pixels is size.
func (a *Adapter) Update(src Source, size image.Point) {
	a.src = src
	defer func() { a.src = nil }()
	a.size = f32.Pt(float32(size.X), float32(size.Y))
	filter := gpointer.Filter{
		Target: a,
		Kinds: gpointer.Press | gpointer.Release | gpointer.Cancel | gpointer.Drag |
			gpointer.Move | gpointer.Leave | gpointer.Scroll,
		ScrollX: gpointer.ScrollRange{Min: math.MinInt32, Max: math.MaxInt32},
		ScrollY: gpointer.ScrollRange{Min: math.MinInt32, Max: math.MaxInt32},
	}
	for {
		ev, ok := src.Event(filter)
		if !ok {
			break
		}
		e, ok := ev.(gpointer.Event)
		if !ok {
			continue
		}
		s, ok := a.convert(e)
		if !ok || a.proc == nil {
			continue
		}
		platform.Feed(a.log, a.proc, s)
		if s.Kind == pointer.Pressed && a.grabbing {
			a.src.Execute(gpointer.GrabCmd{Tag: a, ID: e.PointerID})
		}
	}
}

// convert translates e. It reports false for events without a
// counterpart.
func (a *Adapter) convert(e gpointer.Event) (pointer.Sample, bool) {
	id := pointer.ID(e.PointerID)
	s := pointer.Sample{
		PointerID: id,
		Source:    source(e.Source),
		Position:  point(e.Position),
		Time:      e.Time,
	}
	s.Inside = platform.Inside(s.Position, a.size)
	switch e.Kind {
	case gpointer.Press:
		s.Kind = pointer.Pressed
		s.Touches = a.contacts.Down(id)
		a.button = button(e.Buttons)
		s.Button = a.buttonInfo(e, pointer.ButtonPressed)
	case gpointer.Release:
		if !a.contacts.Has(id) {
			return s, false
		}
		s.Kind = pointer.Released
		s.Touches = a.contacts.Up(id)
		s.Button = a.buttonInfo(e, pointer.ButtonReleased)
	case gpointer.Cancel:
		if !a.contacts.Has(id) {
			return s, false
		}
		s.Kind = pointer.Cancelled
		s.Touches = a.contacts.Up(id)
	case gpointer.Leave:
		if !a.contacts.Has(id) {
			return s, false
		}
		s.Kind = pointer.Exited
		s.Touches = a.contacts.Up(id)
	case gpointer.Drag:
		if !a.contacts.Has(id) {
			return s, false
		}
		s.Kind = pointer.Moved
		s.Touches = a.contacts.Len()
		s.Button = a.buttonInfo(e, pointer.ButtonPressed)
	case gpointer.Move:
		s.Kind = pointer.Pointer
		s.Touches = a.contacts.Len()
	case gpointer.Scroll:
		// Scrolling up zooms in.
		delta := -e.Scroll.Y / WheelNotch
		s.Kind = pointer.Wheel
		s.Touches = a.contacts.Len()
		s.Wheel = a.wheel.Wheel(delta, s.Position)
	default:
		return s, false
	}
	return s, true
}

func (a *Adapter) buttonInfo(e gpointer.Event, st pointer.ButtonState) *pointer.ButtonInfo {
	if e.Source != gpointer.Mouse {
		return nil
	}
	return &pointer.ButtonInfo{
		Button:   a.button,
		Number:   int(a.button) + 1,
		State:    st,
		Pressed:  buttons(e.Buttons),
		Pressure: 1,
	}
}

func source(s gpointer.Source) pointer.Source {
	if s == gpointer.Touch {
		return pointer.Touch
	}
	return pointer.Mouse
}

func point(p gf32.Point) f32.Point {
	return f32.Pt(p.X, p.Y)
}

// button returns the most significant button of b.
func button(b gpointer.Buttons) pointer.Button {
	switch {
	case b.Contain(gpointer.ButtonPrimary):
		return pointer.ButtonLeft
	case b.Contain(gpointer.ButtonSecondary):
		return pointer.ButtonRight
	case b.Contain(gpointer.ButtonTertiary):
		return pointer.ButtonMiddle
	default:
		return pointer.ButtonLeft
	}
}

func buttons(b gpointer.Buttons) pointer.Buttons {
	var set pointer.Buttons
	if b.Contain(gpointer.ButtonPrimary) {
		set |= pointer.ButtonLeft.Set()
	}
	if b.Contain(gpointer.ButtonSecondary) {
		set |= pointer.ButtonRight.Set()
	}
	if b.Contain(gpointer.ButtonTertiary) {
		set |= pointer.ButtonMiddle.Set()
	}
	return set
}
