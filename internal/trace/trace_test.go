// SPDX-License-Identifier: Unlicense OR MIT

package trace

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gioui.org/touch/f32"
	"gioui.org/touch/io/pointer"
)

const tapTrace = `
element: button
steps:
  - {at: 0, kind: pressed, id: 1, x: 10, y: 10}
  - {at: 40, kind: moved, id: 1, x: 12, y: 10, outside: true}
  - {at: 80, kind: released, id: 1, x: 12, y: 10}
  - {at: 90, kind: wheel, id: -1, source: mouse, x: 5, y: 5, wheel: {delta: 1, scale: 1.05}}
  - {element: menu, at: 100, kind: pressed, id: 2, source: mouse, x: 1, y: 1, button: {number: 2, pressure: 1}}
`

func TestRead(t *testing.T) {
	tr, err := Read(strings.NewReader(tapTrace))
	require.NoError(t, err)
	require.Len(t, tr.Steps, 5)

	s, err := tr.Steps[1].Sample()
	require.NoError(t, err)
	assert.Equal(t, pointer.Moved, s.Kind)
	assert.Equal(t, pointer.Touch, s.Source)
	assert.Equal(t, 1, s.Touches)
	assert.False(t, s.Inside)
	assert.Equal(t, 40*time.Millisecond, s.Time)

	w, err := tr.Steps[3].Sample()
	require.NoError(t, err)
	assert.Equal(t, 0, w.Touches)
	require.NotNil(t, w.Wheel)
	assert.Equal(t, f32.Pt(5, 5), w.Wheel.Center)

	b, err := tr.Steps[4].Sample()
	require.NoError(t, err)
	require.NotNil(t, b.Button)
	assert.Equal(t, pointer.ButtonRight, b.Button.Button)
	assert.Equal(t, pointer.ButtonRight.Set(), b.Button.Pressed)

	assert.Equal(t, "button", tr.ElementOf(tr.Steps[0]))
	assert.Equal(t, "menu", tr.ElementOf(tr.Steps[4]))
}

func TestReadRejectsBadSteps(t *testing.T) {
	for _, doc := range []string{
		"steps: [{kind: hovered}]",
		"steps: [{kind: pressed, source: trackball}]",
		"steps: [{kind: wheel, wheel: {delta: 1}, button: {number: 1}}]",
		"steps: {",
	} {
		_, err := Read(strings.NewReader(doc))
		assert.Error(t, err, doc)
	}
}

func TestSaveLoad(t *testing.T) {
	tr, err := Read(strings.NewReader(tapTrace))
	require.NoError(t, err)
	for _, name := range []string{"tap.yaml", "tap.yaml.lz4"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, tr))
			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, tr, got)
		})
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	in := pointer.Sample{
		PointerID: 3,
		Kind:      pointer.Released,
		Source:    pointer.Pen,
		Position:  f32.Pt(1.5, 2),
		Touches:   1,
		Inside:    true,
		Time:      1500 * time.Millisecond,
		Button:    &pointer.ButtonInfo{Button: pointer.ButtonLeft, Number: 1, State: pointer.ButtonReleased, Pressure: 0.5},
	}
	r.Record("canvas", in)
	assert.Equal(t, 1, r.Len())

	path := filepath.Join(t.TempDir(), "rec.yaml.lz4")
	require.NoError(t, r.Save(path))
	tr, err := Load(path)
	require.NoError(t, err)
	require.Len(t, tr.Steps, 1)
	assert.Equal(t, "canvas", tr.ElementOf(tr.Steps[0]))

	out, err := tr.Steps[0].Sample()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
