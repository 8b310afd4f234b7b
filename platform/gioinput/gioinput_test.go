// SPDX-License-Identifier: Unlicense OR MIT

package gioinput

import (
	"image"
	"testing"
	"time"

	gf32 "gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/input"
	gpointer "gioui.org/io/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gioui.org/touch/f32"
	"gioui.org/touch/gesture"
	"gioui.org/touch/io/pointer"
	"gioui.org/touch/platform"
)

type fakeSource struct {
	events []event.Event
	cmds   []input.Command
}

func (s *fakeSource) Event(filters ...event.Filter) (event.Event, bool) {
	if len(s.events) == 0 {
		return nil, false
	}
	e := s.events[0]
	s.events = s.events[1:]
	return e, true
}

func (s *fakeSource) Execute(c input.Command) {
	s.cmds = append(s.cmds, c)
}

type sink struct {
	samples []pointer.Sample
}

func (s *sink) Process(smp pointer.Sample) {
	s.samples = append(s.samples, smp)
}

func (s *sink) kinds() []pointer.Kind {
	var ks []pointer.Kind
	for _, smp := range s.samples {
		ks = append(ks, smp.Kind)
	}
	return ks
}

func ev(k gpointer.Kind, id gpointer.ID, x, y float32, ms int) gpointer.Event {
	return gpointer.Event{
		Kind:      k,
		Source:    gpointer.Touch,
		PointerID: id,
		Position:  gf32.Pt(x, y),
		Time:      time.Duration(ms) * time.Millisecond,
	}
}

func TestConvertTouchSequence(t *testing.T) {
	a := New(nil)
	out := new(sink)
	a.Attach(out)
	src := &fakeSource{events: []event.Event{
		ev(gpointer.Move, 0, 5, 5, 0),
		ev(gpointer.Press, 0, 10, 10, 10),
		ev(gpointer.Press, 1, 20, 10, 20),
		ev(gpointer.Drag, 1, 30, 10, 30),
		ev(gpointer.Release, 1, 30, 10, 40),
		ev(gpointer.Drag, 0, 120, 10, 50),
		ev(gpointer.Release, 0, 120, 10, 60),
		ev(gpointer.Release, 0, 120, 10, 70),
	}}
	a.Update(src, image.Pt(100, 100))

	assert.Equal(t, []pointer.Kind{
		pointer.Pointer, pointer.Pressed, pointer.Pressed, pointer.Moved,
		pointer.Released, pointer.Moved, pointer.Released,
	}, out.kinds())
	var touches []int
	for _, s := range out.samples {
		touches = append(touches, s.Touches)
	}
	assert.Equal(t, []int{0, 1, 2, 2, 2, 1, 1}, touches)
	assert.True(t, out.samples[3].Inside)
	assert.False(t, out.samples[5].Inside)
	assert.Equal(t, pointer.Touch, out.samples[1].Source)
	assert.Nil(t, out.samples[1].Button)
	assert.Equal(t, 40*time.Millisecond, out.samples[4].Time)
}

func TestConvertMouse(t *testing.T) {
	a := New(nil)
	out := new(sink)
	a.Attach(out)
	press := ev(gpointer.Press, 0, 1, 1, 0)
	press.Source = gpointer.Mouse
	press.Buttons = gpointer.ButtonSecondary
	release := press
	release.Kind = gpointer.Release
	release.Buttons = 0
	scroll := ev(gpointer.Scroll, 0, 4, 4, 10)
	scroll.Source = gpointer.Mouse
	scroll.Scroll = gf32.Pt(0, -WheelNotch)

	a.Update(&fakeSource{events: []event.Event{press, release, scroll}}, image.Pt(10, 10))
	require.Len(t, out.samples, 3)

	b := out.samples[0].Button
	require.NotNil(t, b)
	assert.Equal(t, pointer.ButtonRight, b.Button)
	assert.Equal(t, 2, b.Number)
	assert.Equal(t, pointer.ButtonRight.Set(), b.Pressed)
	assert.Equal(t, pointer.ButtonReleased, out.samples[1].Button.State)
	assert.Equal(t, pointer.ButtonRight, out.samples[1].Button.Button)

	w := out.samples[2]
	assert.Equal(t, pointer.Wheel, w.Kind)
	require.NotNil(t, w.Wheel)
	assert.Equal(t, float32(1), w.Wheel.Delta)
	assert.InDelta(t, 1.05, w.Wheel.Scale, 1e-6)
	assert.Equal(t, f32.Pt(4, 4), w.Wheel.Center)
}

func TestCancelAndLeave(t *testing.T) {
	a := New(nil)
	out := new(sink)
	a.Attach(out)
	a.Update(&fakeSource{events: []event.Event{
		ev(gpointer.Cancel, 0, 0, 0, 0),
		ev(gpointer.Press, 0, 0, 0, 0),
		ev(gpointer.Cancel, 0, 0, 0, 10),
		ev(gpointer.Press, 1, 0, 0, 20),
		ev(gpointer.Leave, 1, -1, 0, 30),
		ev(gpointer.Leave, 1, -1, 0, 40),
	}}, image.Pt(10, 10))
	assert.Equal(t, []pointer.Kind{
		pointer.Pressed, pointer.Cancelled, pointer.Pressed, pointer.Exited,
	}, out.kinds())
}

func TestDetached(t *testing.T) {
	a := New(nil)
	out := new(sink)
	a.Attach(out)
	a.Detach()
	src := &fakeSource{events: []event.Event{ev(gpointer.Press, 0, 0, 0, 0)}}
	a.Update(src, image.Pt(10, 10))
	assert.Empty(t, out.samples)
	assert.Empty(t, src.events, "events must be drained")
}

func TestCaptureGrabs(t *testing.T) {
	eng := gesture.New(nil, gesture.Config{Mode: gesture.Lock, LongPress: time.Hour})
	defer eng.Dispose()
	a := New(nil)
	a.Attach(platform.NewSharing(nil, eng, a))
	var results []gesture.Result
	eng.SetListener(gesture.ListenerFunc(func(k pointer.Kind, e *gesture.Event, r gesture.Result) {
		results = append(results, r)
	}))

	src := &fakeSource{events: []event.Event{
		ev(gpointer.Press, 3, 5, 5, 0),
		ev(gpointer.Release, 3, 5, 5, 50),
	}}
	a.Update(src, image.Pt(10, 10))

	assert.Equal(t, []gesture.Result{gesture.Down, gesture.Tapped, gesture.Up}, results)
	require.NotEmpty(t, src.cmds)
	assert.Equal(t, gpointer.GrabCmd{Tag: a, ID: 3}, src.cmds[0])
}
