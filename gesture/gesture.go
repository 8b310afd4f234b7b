// SPDX-License-Identifier: Unlicense OR MIT

/*
Package gesture implements the gesture disambiguation engine.

An Engine accepts unified pointer samples for one element and derives
higher level results from them: Down, Up, Tapped, LongPressing,
Panning, Wheel and Pointer. Results are delivered to a Listener, to
callbacks registered with Handle and to commands bound with
BindCommand.

The Engine also carries the input sharing state that platform backends
consult to decide whether the element owns the pointer or yields it to
an ancestor scrollable container.
*/
package gesture

import (
	"fmt"
	"strings"
	"time"

	"gioui.org/touch/f32"
	"gioui.org/touch/io/pointer"
	"gioui.org/touch/multitouch"
	"gioui.org/touch/unit"
)

// Result is a gesture result derived from one or more samples.
type Result uint8

// Mode is the input sharing mode of an element.
type Mode uint8

// LockState is the input sharing decision of an element in Manual
// mode.
type LockState int32

const (
	// Down is reported when a contact starts.
	Down Result = iota
	// Up is reported when a contact is released, cancelled or leaves
	// the element.
	Up
	// Tapped is reported for a short release that stayed within the
	// tap slop.
	Tapped
	// LongPressing is reported once when a contact is held still for
	// the long press duration.
	LongPressing
	// Panning is reported for every non-zero movement of a contact.
	Panning
	// Wheel is reported for mouse wheel and trackpad zoom samples.
	Wheel
	// Pointer is reported for hover movement without contact.
	Pointer
)

// Pinched is the name some bindings use for Wheel.
const Pinched = Wheel

const (
	// Default lets the platform apply its simultaneous recognition
	// rules.
	Default Mode = iota
	// Lock blocks the ancestor for the whole gesture.
	Lock
	// Manual starts unlocked and follows the LockState set by the
	// element during the gesture.
	Manual
	// Disabled turns off event processing.
	Disabled
)

const (
	// Initial means no decision: backends keep their capture state.
	Initial LockState = iota
	// Locked asks backends to capture the pointer and cancel the
	// ancestor's recognizer.
	Locked
	// Unlocked asks backends to release the pointer to the ancestor.
	Unlocked
)

const (
	// DefaultLongPress is the long press duration when Config leaves it
	// unset.
	DefaultLongPress = 1500 * time.Millisecond
	// DefaultTapSlop is the tap slop when Config leaves it unset.
	DefaultTapSlop = unit.Dp(5)
)

// Config configures an Engine. The zero value selects the defaults.
type Config struct {
	Mode Mode
	// LongPress is the hold duration before LongPressing.
	LongPress time.Duration
	// TapSlop is how far a contact may travel, on each axis, and still
	// count as a tap.
	TapSlop unit.Dp
	// Draggable keeps reporting Panning when a contact is dragged
	// outside the element instead of turning it into Exited.
	Draggable bool
	// Metric converts TapSlop to device pixels.
	Metric unit.Metric
	// TapLock suppresses Tapped callbacks and commands for this long
	// after a tap, when the Engine has a tap limiter.
	TapLock time.Duration
}

// Event is a pointer sample together with the motion derived from
// the samples before it.
type Event struct {
	pointer.Sample
	Motion Motion
	// Manipulation is set for movement samples while at least one
	// contact is tracked.
	Manipulation *multitouch.Manipulation
	// Start is where the gesture started.
	Start     f32.Point
	StartTime time.Duration
	// InContact reports whether the gesture still has a contact down.
	InContact bool
	// PreventDefault, set by a Down or LongPressing consumer on the
	// down event, suppresses LongPressing delivery and the Tapped
	// decision for the gesture.
	PreventDefault bool
	// Context is the parameter passed to the command being executed,
	// if any.
	Context any
}

// Motion is the displacement and velocity of a sample relative to
// the sample before it. Distances are in pixels, velocities in pixels
// per second.
type Motion struct {
	Start, End    f32.Point
	Delta, Total  f32.Point
	Velocity      f32.Point
	TotalVelocity f32.Point
	// Fling is set on the final Up of a gesture. It estimates the
	// release velocity from the recent movement of the primary
	// contact.
	Fling   f32.Point
	Elapsed time.Duration
}

// Listener receives every result of an Engine.
type Listener interface {
	GestureEvent(k pointer.Kind, e *Event, r Result)
}

// A Listener that also implements transparent and reports true
// receives nothing.
type transparent interface {
	InputTransparent() bool
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(k pointer.Kind, e *Event, r Result)

func (f ListenerFunc) GestureEvent(k pointer.Kind, e *Event, r Result) {
	f(k, e, r)
}

// Command is executed when its bound result occurs.
type Command interface {
	Execute(param any) error
}

// CommandFunc adapts a function to a Command.
type CommandFunc func(param any) error

func (f CommandFunc) Execute(param any) error {
	return f(param)
}

func (c Config) longPress() time.Duration {
	if c.LongPress <= 0 {
		return DefaultLongPress
	}
	return c.LongPress
}

func (c Config) tapSlop() float32 {
	s := c.TapSlop
	if s <= 0 {
		s = DefaultTapSlop
	}
	return c.Metric.Dp(s)
}

// ParseMode parses a mode name, case insensitively.
func ParseMode(s string) (Mode, error) {
	for m := Default; m <= Disabled; m++ {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("gesture: unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(m.String())), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (r Result) String() string {
	switch r {
	case Down:
		return "Down"
	case Up:
		return "Up"
	case Tapped:
		return "Tapped"
	case LongPressing:
		return "LongPressing"
	case Panning:
		return "Panning"
	case Wheel:
		return "Wheel"
	case Pointer:
		return "Pointer"
	default:
		panic("invalid Result")
	}
}

func (m Mode) String() string {
	switch m {
	case Default:
		return "Default"
	case Lock:
		return "Lock"
	case Manual:
		return "Manual"
	case Disabled:
		return "Disabled"
	default:
		panic("invalid Mode")
	}
}

func (s LockState) String() string {
	switch s {
	case Initial:
		return "Initial"
	case Locked:
		return "Locked"
	case Unlocked:
		return "Unlocked"
	default:
		panic("invalid LockState")
	}
}
