// SPDX-License-Identifier: Unlicense OR MIT

// Package fling estimates the release velocity of a contact by fitting
// a polynomial to its recent positions.
package fling

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Extrapolation collects positions along one axis.
type Extrapolation struct {
	// ring buffer of the last historySize samples.
	history [historySize]sample
	idx     int
	n       int
}

type sample struct {
	t time.Duration
	v float32
}

type matrix struct {
	rows, cols int
	data       []float32
}

type coefficients [degree + 1]float32

const (
	historySize = 20
	// Samples older than maxAge relative to the latest are ignored.
	maxAge = 100 * time.Millisecond
	degree = 2
)

// Reset forgets every sample.
func (e *Extrapolation) Reset() {
	*e = Extrapolation{}
}

// Sample records position v at time t. Times must not decrease.
func (e *Extrapolation) Sample(t time.Duration, v float32) {
	e.history[e.idx] = sample{t: t, v: v}
	e.idx = (e.idx + 1) % historySize
	if e.n < historySize {
		e.n++
	}
}

// Velocity estimates the velocity, in units per second, at the time of
// the latest sample.
func (e *Extrapolation) Velocity() float32 {
	if e.n < 2 {
		return 0
	}
	last := e.at(0)
	var X, Y []float32
	for i := 0; i < e.n; i++ {
		s := e.at(i)
		age := last.t - s.t
		if age > maxAge {
			break
		}
		// Fit in milliseconds to keep the powers of X well scaled.
		X = append(X, -float32(age)/float32(time.Millisecond))
		Y = append(Y, s.v-last.v)
	}
	switch {
	case len(X) < 2:
		return 0
	case len(X) > degree:
		if c, ok := polyFit(X, Y); ok {
			return c[1] * 1000
		}
	}
	// Too few or degenerate samples: use the mean velocity.
	first := len(X) - 1
	if X[first] == 0 {
		return 0
	}
	return (Y[0] - Y[first]) / (X[0] - X[first]) * 1000
}

// at returns the i'th most recent sample.
func (e *Extrapolation) at(i int) sample {
	j := (e.idx - 1 - i + 2*historySize) % historySize
	return e.history[j]
}

// polyFit returns the least squares polynomial of degree fitted to the
// points (X[i], Y[i]).
func polyFit(X, Y []float32) (coefficients, bool) {
	if len(X) != len(Y) || len(X) <= degree {
		return coefficients{}, false
	}
	A := newMatrix(len(X), degree+1)
	for i, x := range X {
		p := float32(1)
		for j := 0; j <= degree; j++ {
			A.set(i, j, p)
			p *= x
		}
	}
	Q, Rt, ok := decomposeQR(A)
	if !ok {
		return coefficients{}, false
	}
	// Solve R*c = Qt*Y by back substitution.
	var c coefficients
	for i := degree; i >= 0; i-- {
		var s float32
		for k := 0; k < Q.rows; k++ {
			s += Q.get(k, i) * Y[k]
		}
		for j := i + 1; j <= degree; j++ {
			s -= Rt.get(j, i) * c[j]
		}
		c[i] = s / Rt.get(i, i)
	}
	return c, true
}

// decomposeQR computes A = Q*R with modified Gram-Schmidt and returns Q
// and the transpose of R. It fails when the columns of A are linearly
// dependent.
func decomposeQR(A *matrix) (*matrix, *matrix, bool) {
	if A.rows < A.cols {
		return nil, nil, false
	}
	Q := newMatrix(A.rows, A.cols)
	Rt := newMatrix(A.cols, A.cols)
	copy(Q.data, A.data)
	for j := 0; j < A.cols; j++ {
		for k := 0; k < j; k++ {
			var dot float32
			for i := 0; i < A.rows; i++ {
				dot += Q.get(i, k) * Q.get(i, j)
			}
			Rt.set(j, k, dot)
			for i := 0; i < A.rows; i++ {
				Q.set(i, j, Q.get(i, j)-dot*Q.get(i, k))
			}
		}
		var norm float32
		for i := 0; i < A.rows; i++ {
			norm += Q.get(i, j) * Q.get(i, j)
		}
		norm = float32(math.Sqrt(float64(norm)))
		if norm < 1e-6 {
			return nil, nil, false
		}
		Rt.set(j, j, norm)
		for i := 0; i < A.rows; i++ {
			Q.set(i, j, Q.get(i, j)/norm)
		}
	}
	return Q, Rt, true
}

func newMatrix(rows, cols int) *matrix {
	return &matrix{rows: rows, cols: cols, data: make([]float32, rows*cols)}
}

func (m *matrix) get(row, col int) float32 {
	return m.data[row*m.cols+col]
}

func (m *matrix) set(row, col int, v float32) {
	m.data[row*m.cols+col] = v
}

func (m *matrix) transpose() *matrix {
	t := newMatrix(m.cols, m.rows)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			t.set(c, r, m.get(r, c))
		}
	}
	return t
}

func (m *matrix) mul(m2 *matrix) *matrix {
	if m.cols != m2.rows {
		panic("mismatched matrices")
	}
	p := newMatrix(m.rows, m2.cols)
	for r := 0; r < p.rows; r++ {
		for c := 0; c < p.cols; c++ {
			var v float32
			for k := 0; k < m.cols; k++ {
				v += m.get(r, k) * m2.get(k, c)
			}
			p.set(r, c, v)
		}
	}
	return p
}

func (m *matrix) approxEqual(m2 *matrix) bool {
	if m.rows != m2.rows || m.cols != m2.cols {
		return false
	}
	for i, v := range m.data {
		if !approxEqual(v, m2.data[i]) {
			return false
		}
	}
	return true
}

func (m *matrix) String() string {
	var b strings.Builder
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			fmt.Fprintf(&b, "%f ", m.get(r, c))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (c coefficients) approxEqual(c2 coefficients) bool {
	for i, v := range c {
		if !approxEqual(v, c2[i]) {
			return false
		}
	}
	return true
}

func approxEqual(a, b float32) bool {
	const epsilon = 0.00002
	return math.Abs(float64(a-b)) < epsilon*math.Max(1, math.Max(math.Abs(float64(a)), math.Abs(float64(b))))
}
