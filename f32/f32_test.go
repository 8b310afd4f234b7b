// SPDX-License-Identifier: Unlicense OR MIT

package f32

import (
	"math"
	"testing"
)

func eq(p1, p2 Point) bool {
	tol := 1e-5
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	return math.Abs(math.Sqrt(float64(dx*dx+dy*dy))) < tol
}

func TestMean(t *testing.T) {
	if got := Mean(); got != (Point{}) {
		t.Errorf("empty mean: have %v, want zero", got)
	}
	got := Mean(Pt(0, 0), Pt(10, 0), Pt(5, 30))
	if !eq(got, Pt(5, 10)) {
		t.Errorf("mean mismatch: have %v, want {5 10}", got)
	}
}

func TestAngle(t *testing.T) {
	for _, tc := range []struct {
		v    Point
		want float64
	}{
		{Pt(1, 0), 0},
		{Pt(0, 1), 90},
		{Pt(-1, 0), 180},
		{Pt(0, -1), -90},
	} {
		if got := tc.v.Angle(); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Angle(%v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestRectangleContains(t *testing.T) {
	r := Rect(100, 50)
	for _, tc := range []struct {
		p    Point
		want bool
	}{
		{Pt(0, 0), true},
		{Pt(100, 50), true},
		{Pt(50, 25), true},
		{Pt(-0.5, 10), false},
		{Pt(10, 50.5), false},
	} {
		if got := r.Contains(tc.p); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestDiv(t *testing.T) {
	if got := Pt(4, 2).Div(0); got != (Point{}) {
		t.Errorf("division by zero: have %v, want zero", got)
	}
	if got := Pt(4, 2).Div(2); !eq(got, Pt(2, 1)) {
		t.Errorf("division mismatch: have %v, want {2 1}", got)
	}
}
