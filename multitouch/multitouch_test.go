// SPDX-License-Identifier: Unlicense OR MIT

package multitouch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gioui.org/touch/f32"
)

const eps = 1e-4

func TestSingleTouch(t *testing.T) {
	var tr Tracker
	tr.Restart(1, f32.Pt(10, 10))

	m, ok := tr.AddMovement(1, f32.Pt(20, 30))
	require.True(t, ok)
	assert.Equal(t, 1, m.Touches)
	assert.Equal(t, f32.Pt(20, 30), m.Center)
	assert.Equal(t, f32.Pt(10, 10), m.PreviousCenter)
	assert.Equal(t, 1.0, m.Scale)
	assert.Equal(t, 0.0, m.Rotation)
	assert.Equal(t, 1.0, m.ScaleTotal)
}

func TestScaleInvariance(t *testing.T) {
	var tr Tracker
	tr.Restart(1, f32.Pt(0, 0))
	m, _ := tr.AddMovement(2, f32.Pt(100, 0))
	assert.Equal(t, 2, m.Touches)
	assert.InDelta(t, 1.0, m.Scale, eps)

	m, _ = tr.AddMovement(2, f32.Pt(200, 0))
	assert.InDelta(t, 2.0, m.Scale, eps)
	assert.InDelta(t, 2.0, m.ScaleTotal, eps)

	m, _ = tr.AddMovement(2, f32.Pt(100, 0))
	assert.InDelta(t, 1.0, m.Scale, eps)
	assert.InDelta(t, 1.0, m.ScaleTotal, eps)
}

func TestRotationSign(t *testing.T) {
	var tr Tracker
	tr.Restart(1, f32.Pt(0, 0))
	tr.AddMovement(2, f32.Pt(100, 0))

	// Turn the pair 90 degrees counter-clockwise on screen about its
	// midpoint (50, 0). Y grows downwards.
	tr.AddMovement(2, f32.Pt(50, -50))
	m, _ := tr.AddMovement(1, f32.Pt(50, 50))

	assert.InDelta(t, -90.0, m.Rotation, eps)
	assert.InDelta(t, -90.0, m.RotationTotal, eps)
	assert.InDelta(t, 1.0, m.Scale, eps)
	assert.InDelta(t, 50, m.Center.X, eps)
	assert.InDelta(t, 0, m.Center.Y, eps)
}

func TestRotationWraps(t *testing.T) {
	var tr Tracker
	tr.Restart(1, f32.Pt(0, 0))
	tr.AddMovement(2, f32.Pt(-100, 1))
	// Crossing the ±180 boundary must not produce a 360 degree jump.
	m, _ := tr.AddMovement(2, f32.Pt(-100, -1))
	assert.Greater(t, m.Rotation, 0.0)
	assert.Less(t, m.Rotation, 5.0)
}

func TestNewTouchNoJump(t *testing.T) {
	var tr Tracker
	tr.Restart(1, f32.Pt(0, 0))
	m, _ := tr.AddMovement(7, f32.Pt(400, 400))
	assert.Equal(t, m.Center, m.PreviousCenter, "joining contact moved the centroid")
	assert.InDelta(t, 1.0, m.Scale, eps)
}

func TestRemoveTouchFreezes(t *testing.T) {
	var tr Tracker
	tr.Restart(1, f32.Pt(0, 0))
	tr.AddMovement(2, f32.Pt(100, 0))
	m, _ := tr.AddMovement(2, f32.Pt(150, 0))
	require.InDelta(t, 1.5, m.Scale, eps)

	tr.RemoveTouch(2)
	m, ok := tr.AddMovement(1, f32.Pt(5, 5))
	require.True(t, ok)
	assert.Equal(t, 1, m.Touches)
	assert.InDelta(t, 1.5, m.Scale, eps)
	assert.InDelta(t, 1.5, m.ScaleTotal, eps)

	// A new second finger starts a new phase; totals keep accumulating.
	tr.AddMovement(3, f32.Pt(105, 5))
	m, _ = tr.AddMovement(3, f32.Pt(205, 5))
	assert.InDelta(t, 2.0, m.Scale, eps)
	assert.InDelta(t, 3.0, m.ScaleTotal, eps)
}

func TestThirdTouchContinuity(t *testing.T) {
	var tr Tracker
	tr.Restart(1, f32.Pt(0, 0))
	tr.AddMovement(2, f32.Pt(100, 0))
	tr.AddMovement(2, f32.Pt(200, 0))
	m, _ := tr.AddMovement(3, f32.Pt(100, 100))
	assert.Equal(t, 3, m.Touches)
	assert.InDelta(t, 2.0, m.Scale, eps, "joining contact changed the scale")
	assert.InDelta(t, 0.0, m.Rotation, eps)
}

func TestReset(t *testing.T) {
	var tr Tracker
	tr.Restart(1, f32.Pt(0, 0))
	tr.AddMovement(2, f32.Pt(100, 0))
	tr.AddMovement(2, f32.Pt(300, 0))
	tr.Reset()
	assert.Equal(t, 0, tr.Touches())

	m, ok := tr.AddMovement(4, f32.Pt(1, 1))
	require.True(t, ok)
	assert.Equal(t, 1, m.Touches)
	assert.Equal(t, 1.0, m.ScaleTotal)
}

func TestZeroValueAddMovement(t *testing.T) {
	var tr Tracker
	m, ok := tr.AddMovement(1, f32.Pt(3, 4))
	require.True(t, ok)
	assert.Equal(t, f32.Pt(3, 4), m.Center)
	assert.Equal(t, 1.0, m.Scale)
}
