// SPDX-License-Identifier: Unlicense OR MIT

/*
Package f32 is a float32 implementation of package image's
Point and Rectangle, extended with the vector math needed by
gesture recognition.

The coordinate space has the origin in the top left
corner with the axes extending right and down.
*/
package f32

import "math"

// A Point is a two dimensional point.
type Point struct {
	X, Y float32
}

// A Rectangle contains the points (X, Y) where Min.X <= X <= Max.X,
// Min.Y <= Y <= Max.Y. Unlike image.Rectangle the far edges are
// included, matching how platforms report a contact on the border of
// a view.
type Rectangle struct {
	Min, Max Point
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// Rect is shorthand for Rectangle{Min: Pt(0, 0), Max: Pt(w, h)}.
func Rect(w, h float32) Rectangle {
	return Rectangle{Max: Point{X: w, Y: h}}
}

// Add return the point p+p2.
func (p Point) Add(p2 Point) Point {
	return Point{X: p.X + p2.X, Y: p.Y + p2.Y}
}

// Sub returns the vector p-p2.
func (p Point) Sub(p2 Point) Point {
	return Point{X: p.X - p2.X, Y: p.Y - p2.Y}
}

// Mul returns p scaled by s.
func (p Point) Mul(s float32) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Div returns p divided by s. Division by zero yields the zero Point.
func (p Point) Div(s float32) Point {
	if s == 0 {
		return Point{}
	}
	return Point{X: p.X / s, Y: p.Y / s}
}

// IsZero reports whether both coordinates are zero.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// Len returns the length of the vector p.
func (p Point) Len() float64 {
	return math.Hypot(float64(p.X), float64(p.Y))
}

// Dist returns the distance between p and p2.
func (p Point) Dist(p2 Point) float64 {
	return p.Sub(p2).Len()
}

// Angle returns the direction of the vector p in degrees, in the range
// (-180, 180]. Because the y axis points down, angles grow clockwise
// on screen.
func (p Point) Angle() float64 {
	return math.Atan2(float64(p.Y), float64(p.X)) * 180 / math.Pi
}

// Mean returns the arithmetic mean of pts, or the zero Point if pts
// is empty.
func Mean(pts ...Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range pts {
		sx += float64(p.X)
		sy += float64(p.Y)
	}
	n := float64(len(pts))
	return Point{X: float32(sx / n), Y: float32(sy / n)}
}

// Size returns r's width and height.
func (r Rectangle) Size() Point {
	return Point{X: r.Dx(), Y: r.Dy()}
}

// Dx returns r's width.
func (r Rectangle) Dx() float32 {
	return r.Max.X - r.Min.X
}

// Dy returns r's Height.
func (r Rectangle) Dy() float32 {
	return r.Max.Y - r.Min.Y
}

// Contains reports whether p lies in r, edges included.
func (r Rectangle) Contains(p Point) bool {
	return p.X >= r.Min.X && p.Y >= r.Min.Y &&
		p.X <= r.Max.X && p.Y <= r.Max.Y
}

// Canon returns the canonical version of r, where Min is to
// the upper left of Max.
func (r Rectangle) Canon() Rectangle {
	if r.Max.X < r.Min.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Max.Y < r.Min.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Empty reports whether r represents the empty area.
func (r Rectangle) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Add offsets r with the vector p.
func (r Rectangle) Add(p Point) Rectangle {
	return Rectangle{
		Point{r.Min.X + p.X, r.Min.Y + p.Y},
		Point{r.Max.X + p.X, r.Max.Y + p.Y},
	}
}
