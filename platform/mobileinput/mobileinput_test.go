// SPDX-License-Identifier: Unlicense OR MIT

package mobileinput

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"gioui.org/touch/gesture"
	"gioui.org/touch/io/pointer"
	"gioui.org/touch/unit"
)

type sink struct {
	samples []pointer.Sample
}

func (s *sink) Process(smp pointer.Sample) {
	s.samples = append(s.samples, smp)
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(ms int) { c.t = c.t.Add(time.Duration(ms) * time.Millisecond) }

func newAdapter() (*Adapter, *sink, *clock) {
	a := New(nil)
	c := &clock{t: time.Unix(100, 0)}
	a.SetNowFunc(c.now)
	out := new(sink)
	a.Attach(out)
	a.Handle(size.Event{WidthPx: 200, HeightPx: 100, PixelsPerPt: 2})
	return a, out, c
}

func TestTouch(t *testing.T) {
	a, out, c := newAdapter()
	assert.Equal(t, unit.Metric{PxPerDp: 2}, a.Metric())

	a.Handle(touch.Event{X: 10, Y: 10, Sequence: 0, Type: touch.TypeBegin})
	c.advance(10)
	a.Handle(touch.Event{X: 50, Y: 50, Sequence: 1, Type: touch.TypeBegin})
	c.advance(10)
	a.Handle(touch.Event{X: 250, Y: 50, Sequence: 1, Type: touch.TypeMove})
	a.Handle(touch.Event{X: 250, Y: 50, Sequence: 1, Type: touch.TypeEnd})
	a.Handle(touch.Event{X: 10, Y: 10, Sequence: 0, Type: touch.TypeEnd})
	a.Handle(touch.Event{X: 10, Y: 10, Sequence: 7, Type: touch.TypeMove})

	require.Len(t, out.samples, 5)
	want := []struct {
		kind    pointer.Kind
		touches int
	}{
		{pointer.Pressed, 1},
		{pointer.Pressed, 2},
		{pointer.Moved, 2},
		{pointer.Released, 2},
		{pointer.Released, 1},
	}
	for i, w := range want {
		assert.Equal(t, w.kind, out.samples[i].Kind, "sample %d", i)
		assert.Equal(t, w.touches, out.samples[i].Touches, "sample %d", i)
	}
	assert.Equal(t, pointer.ID(1), out.samples[2].PointerID)
	assert.False(t, out.samples[2].Inside)
	assert.Equal(t, 20*time.Millisecond, out.samples[2].Time)
}

func TestMouse(t *testing.T) {
	a, out, _ := newAdapter()
	a.Handle(mouse.Event{X: 5, Y: 5, Direction: mouse.DirNone})
	a.Handle(mouse.Event{X: 5, Y: 5, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	a.Handle(mouse.Event{X: 15, Y: 5, Direction: mouse.DirNone})
	a.Handle(mouse.Event{X: 15, Y: 5, Button: mouse.ButtonRight, Direction: mouse.DirPress})
	a.Handle(mouse.Event{X: 15, Y: 5, Button: mouse.ButtonRight, Direction: mouse.DirRelease})
	a.Handle(mouse.Event{X: 15, Y: 5, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
	a.Handle(mouse.Event{X: 15, Y: 5, Button: mouse.ButtonWheelDown, Direction: mouse.DirStep})

	var kinds []pointer.Kind
	for _, s := range out.samples {
		kinds = append(kinds, s.Kind)
		assert.Equal(t, MouseID, s.PointerID)
		assert.NoError(t, s.Validate())
	}
	assert.Equal(t, []pointer.Kind{
		pointer.Pointer, pointer.Pressed, pointer.Moved, pointer.Pointer,
		pointer.Pointer, pointer.Released, pointer.Wheel,
	}, kinds)

	right := out.samples[3].Button
	require.NotNil(t, right)
	assert.Equal(t, pointer.ButtonRight, right.Button)
	assert.Equal(t, pointer.ButtonLeft.Set()|pointer.ButtonRight.Set(), right.Pressed)

	w := out.samples[6].Wheel
	require.NotNil(t, w)
	assert.Equal(t, float32(-1), w.Delta)
	assert.InDelta(t, 0.95, w.Scale, 1e-6)
}

func TestUnhandledEvents(t *testing.T) {
	a, out, _ := newAdapter()
	assert.False(t, a.Handle(lifecycle.Event{}))
	assert.True(t, a.Handle(touch.Event{Type: touch.TypeEnd}))
	assert.Empty(t, out.samples)
}

func TestDriveEngine(t *testing.T) {
	a, _, c := newAdapter()
	eng := gesture.New(nil, gesture.Config{Metric: a.Metric(), LongPress: time.Hour})
	defer eng.Dispose()
	a.Attach(eng)
	var results []gesture.Result
	eng.SetListener(gesture.ListenerFunc(func(k pointer.Kind, e *gesture.Event, r gesture.Result) {
		results = append(results, r)
	}))

	a.Handle(touch.Event{X: 10, Y: 10, Type: touch.TypeBegin})
	c.advance(40)
	a.Handle(touch.Event{X: 15, Y: 12, Type: touch.TypeMove})
	c.advance(40)
	a.Handle(touch.Event{X: 15, Y: 12, Type: touch.TypeEnd})

	// 5px stays inside the 10px slop at density 2.
	assert.Equal(t, []gesture.Result{gesture.Down, gesture.Panning, gesture.Tapped, gesture.Up}, results)
}
