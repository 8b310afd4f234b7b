// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"gioui.org/touch/f32"
	"gioui.org/touch/io/pointer"
)

// fillMotion derives e's motion from the previous event of the same
// gesture.
func fillMotion(e, prev *Event) {
	if prev == nil {
		e.Start, e.StartTime = e.Position, e.Time
		e.Motion = Motion{Start: e.Position, End: e.Position}
		return
	}
	e.Start, e.StartTime = prev.Start, prev.StartTime
	e.InContact = prev.InContact

	m := Motion{
		Start:   prev.Position,
		End:     e.Position,
		Delta:   e.Position.Sub(prev.Position),
		Elapsed: e.Time - prev.Time,
	}
	if e.Kind&pointer.Terminal != 0 {
		// The position of a terminal sample is unreliable.
		m.End = prev.Position
		m.Delta = f32.Point{}
	}
	m.Total = prev.Motion.Total.Add(m.Delta)
	m.Velocity = velocity(e, prev, m)
	if span := e.Time - e.StartTime; span > 0 {
		m.TotalVelocity = m.Total.Div(float32(span.Seconds()))
	}
	e.Motion = m
}

// velocity returns the velocity of e. Terminal samples carry the
// velocity of the previous movement forward, stretched over the time
// elapsed since.
func velocity(e, prev *Event, m Motion) f32.Point {
	secs := m.Elapsed.Seconds()
	if e.Kind&pointer.Terminal == 0 {
		if secs <= 0 {
			return f32.Point{}
		}
		return m.Delta.Div(float32(secs))
	}
	pd, pv := prev.Motion.Delta, prev.Motion.Velocity
	switch {
	case pv.X != 0:
		secs += float64(pd.X / pv.X)
	case pv.Y != 0:
		secs += float64(pd.Y / pv.Y)
	}
	if secs <= 0 {
		return f32.Point{}
	}
	return pd.Div(float32(secs))
}
