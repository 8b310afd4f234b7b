// SPDX-License-Identifier: Unlicense OR MIT

/*
Package platform contains the pieces shared by the input backends that
translate native pointer events into samples for a gesture.Engine.

A backend is an Adapter: it is attached to one Engine and feeds it the
samples of one element. Backends that can capture the pointer away from
an enclosing scrollable container implement Host and wrap their engine
in a Sharing to apply the engine's sharing mode.
*/
package platform

import (
	"fmt"

	"go.uber.org/zap"

	"gioui.org/touch/f32"
	"gioui.org/touch/io/pointer"
)

// Adapter connects a native event source to an Engine.
type Adapter interface {
	Attach(p Processor)
	Detach()
}

// Host blocks or unblocks the recognizers of the element's ancestors.
type Host interface {
	// Capture makes the element the exclusive receiver of the pointer.
	Capture()
	// Release lets ancestors claim the pointer again.
	Release()
}

// Processor accepts samples. It is implemented by *gesture.Engine and
// *Sharing.
type Processor interface {
	Process(s pointer.Sample)
}

// Feed delivers a batch of samples in order. A panic while processing
// a sample is logged and the sample dropped.
func Feed(log *zap.SugaredLogger, p Processor, samples ...pointer.Sample) {
	for _, s := range samples {
		if err := process(p, s); err != nil {
			log.Errorw("dropping pointer sample", "kind", s.Kind, "id", s.PointerID, "error", err)
		}
	}
}

func process(p Processor, s pointer.Sample) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("platform: %v", r)
		}
	}()
	p.Process(s)
	return nil
}

// Inside reports whether p lies within an element of the given size.
// Edges count as inside.
func Inside(p, size f32.Point) bool {
	return f32.Rect(size.X, size.Y).Contains(p)
}
