// SPDX-License-Identifier: Unlicense OR MIT

/*
Package unit implements device independent units and values.

Device independent pixel, or dp, is the unit for sizes independent of
the underlying display device. Gesture thresholds such as the tap slop
are expressed in dp and converted to device pixels with a Metric, since
every pointer sample is reported in device pixels.
*/
package unit

import (
	"fmt"
	"math"
)

// Metric converts Dp values to device pixels.
type Metric struct {
	// PxPerDp is the device pixels per dp, also known as the display
	// density. Zero means a density of 1.
	PxPerDp float32
}

// Dp represents device independent pixels. 1 dp will
// have the same apparent size across platforms and
// display resolutions.
type Dp float32

// Dp converts v to device pixels.
func (m Metric) Dp(v Dp) float32 {
	return float32(v) * m.density()
}

// PxToDp converts v device pixels to Dp.
func (m Metric) PxToDp(v float32) Dp {
	return Dp(v / m.density())
}

// Density returns the effective pixels per dp.
func (m Metric) Density() float32 {
	return m.density()
}

func (m Metric) density() float32 {
	if m.PxPerDp <= 0 || math.IsNaN(float64(m.PxPerDp)) {
		return 1
	}
	return m.PxPerDp
}

func (v Dp) String() string {
	return fmt.Sprintf("%gdp", float32(v))
}
