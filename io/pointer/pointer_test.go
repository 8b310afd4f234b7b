// SPDX-License-Identifier: Unlicense OR MIT

package pointer

import (
	"testing"
)

func TestKindString(t *testing.T) {
	for _, tc := range []struct {
		typ Kind
		res string
	}{
		{Entered, "Entered"},
		{Pressed, "Pressed"},
		{Moved, "Moved"},
		{Released, "Released"},
		{Cancelled, "Cancelled"},
		{Wheel, "Wheel"},
		{Rotated, "Rotated"},
		{Pressed | Released, "Pressed|Released"},
		{Terminal, "Released|Exited|Cancelled"},
		{Pan, "Moved|PanStarted|PanChanged|PanEnded"},
	} {
		t.Run(tc.res, func(t *testing.T) {
			if want, got := tc.res, tc.typ.String(); want != got {
				t.Errorf("got %q; want %q", got, want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for k := Entered; k <= Rotated; k <<= 1 {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", k, err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v", k, got)
		}
	}
	if _, err := ParseKind("swipe"); err == nil {
		t.Error("ParseKind accepted an unknown kind")
	}
}

func TestButtons(t *testing.T) {
	if got := ButtonFromNumber(2); got != ButtonRight {
		t.Errorf("button 2 = %v, want Right", got)
	}
	if got := ButtonFromNumber(5); got != ButtonX2 {
		t.Errorf("button 5 = %v, want XButton2", got)
	}
	if got := ButtonFromNumber(40); got != ButtonExtended {
		t.Errorf("button 40 = %v, want Extended", got)
	}
	set := ButtonLeft.Set() | ButtonX1.Set()
	if got, want := set.String(), "Left|XButton1"; got != want {
		t.Errorf("got %q; want %q", got, want)
	}
	if ButtonExtended.Set() != 0 {
		t.Error("extended button must not map to a bit")
	}
}

func TestValidate(t *testing.T) {
	s := Sample{Kind: Wheel, Wheel: &WheelInfo{Delta: 1}}
	if err := s.Validate(); err != nil {
		t.Errorf("wheel sample rejected: %v", err)
	}
	s.Button = &ButtonInfo{}
	if err := s.Validate(); err == nil {
		t.Error("sample with button and wheel accepted")
	}
}
