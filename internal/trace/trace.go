// SPDX-License-Identifier: Unlicense OR MIT

// Package trace reads and writes recorded pointer sample sequences.
// Traces are YAML documents, lz4 compressed when the file name ends in
// ".lz4".
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"

	"gioui.org/touch/f32"
	"gioui.org/touch/io/pointer"
)

// Trace is a recorded sample sequence.
type Trace struct {
	// Element is the element name used for steps that carry none.
	Element string `yaml:"element"`
	Steps   []Step `yaml:"steps"`
}

// Step is one recorded sample.
type Step struct {
	Element string  `yaml:"element,omitempty"`
	At      int64   `yaml:"at"`
	Kind    string  `yaml:"kind"`
	ID      int64   `yaml:"id"`
	Source  string  `yaml:"source,omitempty"`
	X       float32 `yaml:"x"`
	Y       float32 `yaml:"y"`
	Touches int     `yaml:"touches,omitempty"`
	// Outside marks samples beyond the element bounds.
	Outside bool    `yaml:"outside,omitempty"`
	Button  *Button `yaml:"button,omitempty"`
	Wheel   *Wheel  `yaml:"wheel,omitempty"`
}

// Button is the recorded button state of a step.
type Button struct {
	Number   int     `yaml:"number"`
	Released bool    `yaml:"released,omitempty"`
	Pressure float32 `yaml:"pressure,omitempty"`
}

// Wheel is the recorded wheel state of a step.
type Wheel struct {
	Delta float32 `yaml:"delta"`
	Scale float32 `yaml:"scale,omitempty"`
}

// FromSample records s. At is in milliseconds.
func FromSample(element string, s pointer.Sample) Step {
	st := Step{
		Element: element,
		At:      s.Time.Milliseconds(),
		Kind:    s.Kind.String(),
		ID:      int64(s.PointerID),
		Source:  s.Source.String(),
		X:       s.Position.X,
		Y:       s.Position.Y,
		Touches: s.Touches,
		Outside: !s.Inside,
	}
	if b := s.Button; b != nil {
		st.Button = &Button{Number: b.Number, Released: b.State == pointer.ButtonReleased, Pressure: b.Pressure}
	}
	if w := s.Wheel; w != nil {
		st.Wheel = &Wheel{Delta: w.Delta, Scale: w.Scale}
	}
	return st
}

// Sample returns the sample of the step. A zero touch count defaults
// to 1 for contact kinds.
func (st Step) Sample() (pointer.Sample, error) {
	k, err := pointer.ParseKind(st.Kind)
	if err != nil {
		return pointer.Sample{}, err
	}
	src := pointer.Touch
	if st.Source != "" {
		if src, err = pointer.ParseSource(st.Source); err != nil {
			return pointer.Sample{}, err
		}
	}
	s := pointer.Sample{
		PointerID: pointer.ID(st.ID),
		Kind:      k,
		Source:    src,
		Position:  f32.Pt(st.X, st.Y),
		Touches:   st.Touches,
		Inside:    !st.Outside,
		Time:      time.Duration(st.At) * time.Millisecond,
	}
	if s.Touches == 0 && k&(pointer.Pointer|pointer.Wheel) == 0 {
		s.Touches = 1
	}
	if b := st.Button; b != nil {
		btn := pointer.ButtonFromNumber(b.Number)
		info := &pointer.ButtonInfo{Button: btn, Number: b.Number, Pressure: b.Pressure}
		if b.Released {
			info.State = pointer.ButtonReleased
		} else {
			info.Pressed = btn.Set()
		}
		s.Button = info
	}
	if w := st.Wheel; w != nil {
		s.Wheel = &pointer.WheelInfo{Delta: w.Delta, Scale: w.Scale, Center: s.Position}
	}
	if err := s.Validate(); err != nil {
		return pointer.Sample{}, err
	}
	return s, nil
}

// ElementOf returns the element a step is addressed to.
func (t *Trace) ElementOf(st Step) string {
	if st.Element != "" {
		return st.Element
	}
	return t.Element
}

// Read decodes a trace.
func Read(r io.Reader) (*Trace, error) {
	t := new(Trace)
	if err := yaml.NewDecoder(r).Decode(t); err != nil {
		return nil, fmt.Errorf("trace: decode: %w", err)
	}
	for i, st := range t.Steps {
		if _, err := st.Sample(); err != nil {
			return nil, fmt.Errorf("trace: step %d: %w", i, err)
		}
	}
	return t, nil
}

// Write encodes t.
func Write(w io.Writer, t *Trace) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("trace: encode: %w", err)
	}
	return enc.Close()
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".lz4")
}

// Load reads the trace file at path.
func Load(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = bufio.NewReader(f)
	if compressed(path) {
		r = lz4.NewReader(r)
	}
	return Read(r)
}

// Save writes t to path.
func Save(path string, t *Trace) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if !compressed(path) {
		return Write(f, t)
	}
	zw := lz4.NewWriter(f)
	if err := Write(zw, t); err != nil {
		return err
	}
	return zw.Close()
}

// Recorder collects samples from concurrent sources.
type Recorder struct {
	mu sync.Mutex
	t  Trace
}

// Record appends s, delivered to element.
func (r *Recorder) Record(element string, s pointer.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.t.Steps = append(r.t.Steps, FromSample(element, s))
}

// Len returns the number of recorded steps.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.t.Steps)
}

// Save writes the recorded trace to path.
func (r *Recorder) Save(path string) error {
	r.mu.Lock()
	t := Trace{Element: r.t.Element, Steps: append([]Step(nil), r.t.Steps...)}
	r.mu.Unlock()
	return Save(path, &t)
}
