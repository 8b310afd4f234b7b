// SPDX-License-Identifier: Unlicense OR MIT

package wsinput

import (
	"gioui.org/touch/gesture"
	"gioui.org/touch/io/pointer"
)

// Message types.
const (
	TypeTouch   = "touch-event"
	TypeWheel   = "wheel-event"
	TypeSize    = "size"
	TypeGesture = "gesture"
	TypeCapture = "capture"
	TypeRelease = "release"
	TypeError   = "error"
)

// TouchEvent is one contact update. A zero pressure ends the contact.
type TouchEvent struct {
	ID       uint32 `json:"id"`
	X        uint32 `json:"x"`
	Y        uint32 `json:"y"`
	Pressure uint32 `json:"pressure"`
	// Time is the client timestamp in milliseconds. The server clock is
	// used when it is zero.
	Time int64 `json:"time,omitempty"`
}

// WheelEvent is one wheel notch; positive deltas zoom in.
type WheelEvent struct {
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Delta float32 `json:"delta"`
	Time  int64   `json:"time,omitempty"`
}

// Size sets the element bounds in pixels.
type Size struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// InMsg is a message from the client.
type InMsg struct {
	Type       string      `json:"type"`
	TouchEvent *TouchEvent `json:"touchEvent,omitempty"`
	WheelEvent *WheelEvent `json:"wheelEvent,omitempty"`
	Size       *Size       `json:"size,omitempty"`
}

// OutMsg is a message to the client.
type OutMsg struct {
	Type    string      `json:"type"`
	Gesture *GestureMsg `json:"gesture,omitempty"`
	Line    *string     `json:"line,omitempty"`
}

// GestureMsg reports one gesture result.
type GestureMsg struct {
	Result   string  `json:"result"`
	Kind     string  `json:"kind"`
	ID       int64   `json:"id"`
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	DeltaX   float32 `json:"deltaX"`
	DeltaY   float32 `json:"deltaY"`
	TotalX   float32 `json:"totalX"`
	TotalY   float32 `json:"totalY"`
	Touches  int     `json:"touches"`
	Scale    float64 `json:"scale,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
	Wheel    float32 `json:"wheel,omitempty"`
	FlingX   float32 `json:"flingX,omitempty"`
	FlingY   float32 `json:"flingY,omitempty"`
}

func gestureMsg(k pointer.Kind, e *gesture.Event, r gesture.Result) *GestureMsg {
	m := &GestureMsg{
		Result:  r.String(),
		Kind:    k.String(),
		ID:      int64(e.PointerID),
		X:       e.Position.X,
		Y:       e.Position.Y,
		DeltaX:  e.Motion.Delta.X,
		DeltaY:  e.Motion.Delta.Y,
		TotalX:  e.Motion.Total.X,
		TotalY:  e.Motion.Total.Y,
		Touches: e.Touches,
		FlingX:  e.Motion.Fling.X,
		FlingY:  e.Motion.Fling.Y,
	}
	if mp := e.Manipulation; mp != nil {
		m.Scale, m.Rotation = mp.ScaleTotal, mp.RotationTotal
	}
	if w := e.Wheel; w != nil {
		m.Wheel = w.Scale
	}
	return m
}
