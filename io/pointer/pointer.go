// SPDX-License-Identifier: Unlicense OR MIT

/*
Package pointer defines the unified pointer sample that every platform
backend produces: one touch, mouse or pen sample, already translated
into the local pixel space of the receiving element.
*/
package pointer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gioui.org/touch/f32"
)

// Sample is a pointer sample.
type Sample struct {
	// PointerID identifies one continuous contact (a finger, a mouse
	// pointer, a pen) from Press to Release, Cancel or Exit. IDs are not
	// reused while the contact is active.
	PointerID ID
	Kind      Kind
	Source    Source
	// Position is the sample location in device pixels relative to the
	// top left corner of the element.
	Position f32.Point
	// Button is set for mouse and pen samples only.
	Button *ButtonInfo
	// Wheel is set for wheel samples only.
	Wheel *WheelInfo
	// Touches is the number of concurrent contacts reported by the
	// platform when the sample was captured.
	Touches int
	// Inside reports whether Position falls within the element bounds.
	Inside bool
	// Time is when the sample was captured. The timestamp is
	// relative to an undefined base and never decreases for one
	// element.
	Time time.Duration
}

// ButtonInfo describes the mouse or pen button state of a Sample.
type ButtonInfo struct {
	// Button is the button that triggered the sample.
	Button Button
	// Number is the 1-based button number: 1 left, 2 right, 3 middle,
	// 4 and up for extended buttons.
	Number int
	State  ButtonState
	// Pressed is the set of all buttons held down.
	Pressed Buttons
	// Pressure is the pen pressure in the range [0, 1]. Mice report 1.
	Pressure float32
}

// WheelInfo describes a wheel sample.
type WheelInfo struct {
	Delta float32
	// Scale is the zoom scale accumulated by the backend.
	Scale float32
	// Center is the wheel position in device pixels inside the element.
	Center f32.Point
}

type ID int64

// Kind of a Sample.
type Kind uint

// Source of a Sample.
type Source uint8

// Button identifies a single mouse button.
type Button uint8

// ButtonState is the transition of the triggering button.
type ButtonState uint8

// Buttons is a set of mouse buttons
type Buttons uint16

const (
	// Entered is reported when a pointer enters the element and is
	// treated like a Press.
	Entered Kind = 1 << iota
	// Press of a pointer.
	Pressed
	// Move of a pressed pointer.
	Moved
	// Release of a pointer.
	Released
	// Exited is reported when a pressed pointer leaves the element.
	Exited
	// A Cancelled sample is generated when the platform interrupts
	// the current contact.
	Cancelled
	// Wheel of a mouse or trackpad.
	Wheel
	// Pointer is hover or button-only movement without a contact.
	Pointer
	// PanStarted, PanChanged and PanEnded are explicit pan signals
	// from platform pan recognizers.
	PanStarted
	PanChanged
	PanEnded
	// Rotated is reported by backends that detect rotation natively.
	Rotated
)

const (
	// Touch generated sample.
	Touch Source = iota
	// Mouse generated sample.
	Mouse
	// Pen generated sample.
	Pen
)

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
	ButtonX1
	ButtonX2
	ButtonX3
	ButtonX4
	ButtonX5
	ButtonX6
	ButtonX7
	ButtonX8
	ButtonX9
	// ButtonExtended is any button beyond ButtonX9. ButtonInfo.Number
	// tells which.
	ButtonExtended
)

const (
	ButtonPressed ButtonState = iota
	ButtonReleased
)

// Terminal is the set of kinds that end a contact.
const Terminal = Released | Cancelled | Exited

// Pan is the set of kinds that carry movement.
const Pan = Moved | PanStarted | PanChanged | PanEnded

var errButtonAndWheel = errors.New("pointer: sample carries both button and wheel info")

// Validate reports whether s is well formed: a sample carries button
// info, wheel info or neither, never both.
func (s Sample) Validate() error {
	if s.Button != nil && s.Wheel != nil {
		return errButtonAndWheel
	}
	return nil
}

// ButtonFromNumber maps a 1-based button number to a Button.
func ButtonFromNumber(n int) Button {
	switch {
	case n <= 1:
		return ButtonLeft
	case n <= int(ButtonX9)+1:
		return Button(n - 1)
	default:
		return ButtonExtended
	}
}

// Set returns the Buttons set containing only b. ButtonExtended has no
// bit and yields the empty set.
func (b Button) Set() Buttons {
	if b >= ButtonExtended {
		return 0
	}
	return 1 << b
}

// Contain reports whether the set b contains
// all of the buttons.
func (b Buttons) Contain(buttons Buttons) bool {
	return b&buttons == buttons
}

func (b Buttons) String() string {
	var strs []string
	for bt := ButtonLeft; bt < ButtonExtended; bt++ {
		if b.Contain(bt.Set()) {
			strs = append(strs, bt.String())
		}
	}
	return strings.Join(strs, "|")
}

func (t Kind) String() string {
	var buf strings.Builder
	for tt := Kind(1); tt <= Rotated; tt <<= 1 {
		if t&tt > 0 {
			if buf.Len() > 0 {
				buf.WriteByte('|')
			}
			buf.WriteString((t & tt).string())
		}
	}
	return buf.String()
}

func (t Kind) string() string {
	switch t {
	case Entered:
		return "Entered"
	case Pressed:
		return "Pressed"
	case Moved:
		return "Moved"
	case Released:
		return "Released"
	case Exited:
		return "Exited"
	case Cancelled:
		return "Cancelled"
	case Wheel:
		return "Wheel"
	case Pointer:
		return "Pointer"
	case PanStarted:
		return "PanStarted"
	case PanChanged:
		return "PanChanged"
	case PanEnded:
		return "PanEnded"
	case Rotated:
		return "Rotated"
	default:
		panic("unknown Kind")
	}
}

// ParseKind parses a single kind name, case insensitively.
func ParseKind(s string) (Kind, error) {
	for k := Entered; k <= Rotated; k <<= 1 {
		if strings.EqualFold(s, k.string()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("pointer: unknown kind %q", s)
}

// ParseSource parses a source name, case insensitively.
func ParseSource(s string) (Source, error) {
	for src := Touch; src <= Pen; src++ {
		if strings.EqualFold(s, src.String()) {
			return src, nil
		}
	}
	return 0, fmt.Errorf("pointer: unknown source %q", s)
}

func (s Source) String() string {
	switch s {
	case Touch:
		return "Touch"
	case Mouse:
		return "Mouse"
	case Pen:
		return "Pen"
	default:
		panic("unknown source")
	}
}

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	case ButtonMiddle:
		return "Middle"
	case ButtonExtended:
		return "Extended"
	default:
		if b < ButtonExtended {
			return fmt.Sprintf("XButton%d", b-ButtonX1+1)
		}
		panic("unknown button")
	}
}

func (s ButtonState) String() string {
	switch s {
	case ButtonPressed:
		return "Pressed"
	case ButtonReleased:
		return "Released"
	default:
		panic("unknown button state")
	}
}
