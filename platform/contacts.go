// SPDX-License-Identifier: Unlicense OR MIT

package platform

import (
	"sort"

	"gioui.org/touch/f32"
	"gioui.org/touch/io/pointer"
)

// Contacts is the set of pointers currently down on an element. The
// zero value is empty and ready to use.
type Contacts struct {
	ids map[pointer.ID]struct{}
}

// Down adds id and returns the number of contacts.
func (c *Contacts) Down(id pointer.ID) int {
	if c.ids == nil {
		c.ids = make(map[pointer.ID]struct{})
	}
	c.ids[id] = struct{}{}
	return len(c.ids)
}

// Up removes id and returns the number of contacts before the removal,
// which is the touch count reported with the ending sample. It is at
// least 1.
func (c *Contacts) Up(id pointer.ID) int {
	n := len(c.ids)
	if _, ok := c.ids[id]; ok {
		delete(c.ids, id)
	} else {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Has reports whether id is down.
func (c *Contacts) Has(id pointer.ID) bool {
	_, ok := c.ids[id]
	return ok
}

// Len returns the number of contacts.
func (c *Contacts) Len() int {
	return len(c.ids)
}

// IDs returns the contacts in ascending order.
func (c *Contacts) IDs() []pointer.ID {
	ids := make([]pointer.ID, 0, len(c.ids))
	for id := range c.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clear forgets every contact.
func (c *Contacts) Clear() {
	c.ids = nil
}

// Zoom limits and steps applied by WheelScale.
const (
	MinWheelScale = 0.1
	MaxWheelScale = 1000
	wheelZoomIn   = 1.05
	wheelZoomOut  = 0.95
)

// WheelScale accumulates a zoom factor from mouse wheel notches. The
// zero value starts at scale 1.
type WheelScale struct {
	scale float32
}

// Step applies one wheel notch in the direction of delta and returns
// the new scale. A zero delta zooms out, like a non-positive notch.
func (w *WheelScale) Step(delta float32) float32 {
	s := w.Scale()
	if delta > 0 {
		s *= wheelZoomIn
	} else {
		s *= wheelZoomOut
	}
	w.scale = min(max(s, MinWheelScale), MaxWheelScale)
	return w.scale
}

// Scale returns the current scale.
func (w *WheelScale) Scale() float32 {
	if w.scale == 0 {
		return 1
	}
	return w.scale
}

// Wheel returns the wheel info of a notch of delta at center.
func (w *WheelScale) Wheel(delta float32, center f32.Point) *pointer.WheelInfo {
	return &pointer.WheelInfo{
		Delta:  delta,
		Scale:  w.Step(delta),
		Center: center,
	}
}
