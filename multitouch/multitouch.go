// SPDX-License-Identifier: Unlicense OR MIT

/*
Package multitouch aggregates concurrent contacts into a manipulation:
the centroid of all active touches together with the scale and rotation
they describe.

A phase starts when a second contact joins a single one. Scale and
Rotation are measured since the start of the current phase and stay
frozen at their last values when the contacts drop back to one. The
Total fields accumulate across phases until Restart or Reset.

Rotation follows the y-down device space: positive angles turn
clockwise on screen, a counter-clockwise turn reports a negative
rotation. With more than two contacts the rotation is measured on the
pair with the greatest separation.
*/
package multitouch

import (
	"math"
	"sort"

	"gioui.org/touch/f32"
	"gioui.org/touch/io/pointer"
)

// Manipulation is the aggregate of all active contacts after a
// movement.
type Manipulation struct {
	Center         f32.Point
	PreviousCenter f32.Point
	// Scale is the ratio of the mean pairwise distance to the distance
	// when the current phase started.
	Scale float64
	// Rotation is in degrees since the current phase started.
	Rotation      float64
	ScaleTotal    float64
	RotationTotal float64
	Touches       int
}

// Tracker tracks the contacts of one element. The zero value is ready
// to use.
type Tracker struct {
	touches map[pointer.ID]f32.Point
	// ids holds the active ids in ascending order.
	ids []pointer.ID

	// changed is set when membership changed since the last
	// measurement.
	changed bool
	center  f32.Point
	dist    float64
	pair    [2]pointer.ID
	angle   float64

	scale, rotation           float64
	scaleTotal, rotationTotal float64
	init                      bool
}

// Restart begins tracking a single contact at p, discarding every
// other contact and the accumulated totals.
func (t *Tracker) Restart(id pointer.ID, p f32.Point) {
	t.Reset()
	t.add(id, p)
	t.center = p
	t.changed = false
}

// Reset clears all contacts and accumulated state.
func (t *Tracker) Reset() {
	*t = Tracker{
		touches:    make(map[pointer.ID]f32.Point),
		scale:      1,
		scaleTotal: 1,
		init:       true,
	}
}

// RemoveTouch drops a single contact. The remaining contacts continue
// the manipulation.
func (t *Tracker) RemoveTouch(id pointer.ID) {
	if _, ok := t.touches[id]; !ok {
		return
	}
	delete(t.touches, id)
	i := sort.Search(len(t.ids), func(i int) bool { return t.ids[i] >= id })
	t.ids = append(t.ids[:i], t.ids[i+1:]...)
	t.changed = true
}

// Touches returns the number of active contacts.
func (t *Tracker) Touches() int {
	return len(t.ids)
}

// AddMovement records the position p of contact id, starting to track
// it if it is unknown. It returns the manipulation when at least one
// contact is active.
func (t *Tracker) AddMovement(id pointer.ID, p f32.Point) (Manipulation, bool) {
	if !t.init {
		t.Reset()
	}
	prevCount := len(t.ids)
	if _, ok := t.touches[id]; !ok {
		t.add(id, p)
	}
	t.touches[id] = p
	if len(t.ids) == 0 {
		return Manipulation{}, false
	}

	pts := t.points()
	center := f32.Mean(pts...)
	prevCenter := t.center
	if t.changed {
		// New or departed contacts move the centroid without any
		// finger actually moving.
		prevCenter = center
	}

	if n := len(t.ids); n >= 2 {
		dist := meanDistance(pts)
		pair := t.rotationPair()
		angle := t.touches[pair[1]].Sub(t.touches[pair[0]]).Angle()
		switch {
		case prevCount < 2 && t.changed:
			// A new phase.
			t.scale, t.rotation = 1, 0
		case t.changed:
			// Membership changed inside a phase: re-anchor so that
			// Scale and Rotation stay continuous.
		default:
			step := 1.0
			if t.dist > 0 && dist > 0 {
				step = dist / t.dist
			}
			t.scale *= step
			t.scaleTotal *= step
			if pair == t.pair {
				turn := normalize(angle - t.angle)
				t.rotation += turn
				t.rotationTotal += turn
			}
		}
		t.dist, t.pair, t.angle = dist, pair, angle
	}
	t.center = center
	t.changed = false

	return Manipulation{
		Center:         center,
		PreviousCenter: prevCenter,
		Scale:          t.scale,
		Rotation:       t.rotation,
		ScaleTotal:     t.scaleTotal,
		RotationTotal:  t.rotationTotal,
		Touches:        len(t.ids),
	}, true
}

func (t *Tracker) add(id pointer.ID, p f32.Point) {
	t.touches[id] = p
	i := sort.Search(len(t.ids), func(i int) bool { return t.ids[i] >= id })
	t.ids = append(t.ids, 0)
	copy(t.ids[i+1:], t.ids[i:])
	t.ids[i] = id
	t.changed = true
}

func (t *Tracker) points() []f32.Point {
	pts := make([]f32.Point, len(t.ids))
	for i, id := range t.ids {
		pts[i] = t.touches[id]
	}
	return pts
}

// rotationPair returns the two contacts furthest apart, preferring
// lower ids on ties.
func (t *Tracker) rotationPair() [2]pointer.ID {
	var best [2]pointer.ID
	bestDist := -1.0
	for i := 0; i < len(t.ids); i++ {
		for j := i + 1; j < len(t.ids); j++ {
			d := t.touches[t.ids[i]].Dist(t.touches[t.ids[j]])
			if d > bestDist {
				bestDist = d
				best = [2]pointer.ID{t.ids[i], t.ids[j]}
			}
		}
	}
	return best
}

func meanDistance(pts []f32.Point) float64 {
	var sum float64
	n := 0
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			sum += pts[i].Dist(pts[j])
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// normalize maps an angle difference to (-180, 180].
func normalize(a float64) float64 {
	a = math.Mod(a, 360)
	switch {
	case a > 180:
		a -= 360
	case a <= -180:
		a += 360
	}
	return a
}
