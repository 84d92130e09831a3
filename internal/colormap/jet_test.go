package colormap

import (
	"image/color"
	"math"
	"testing"

	"gonum.org/v1/plot/palette"
)

func TestJetColor_Anchors(t *testing.T) {
	tests := []struct {
		f    float64
		want color.NRGBA
	}{
		{0, color.NRGBA{0, 0, 128, 255}},
		{0.5, color.NRGBA{123, 255, 123, 255}},
		{1, color.NRGBA{128, 0, 0, 255}},
		{-3, color.NRGBA{0, 0, 128, 255}},
		{7, color.NRGBA{128, 0, 0, 255}},
	}

	for _, tt := range tests {
		got := JetColor(tt.f)
		if absDiff(got.R, tt.want.R) > 1 || absDiff(got.G, tt.want.G) > 1 || absDiff(got.B, tt.want.B) > 1 {
			t.Errorf("JetColor(%v) = %v, want ~%v", tt.f, got, tt.want)
		}
	}
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

func TestJet_ClampsOutsideRange(t *testing.T) {
	j := NewJet(-80, 20)

	lo, err := j.At(-1000)
	if err != nil {
		t.Fatalf("At below range: %v", err)
	}
	first, _ := j.At(-80)
	if lo != first {
		t.Errorf("below-range color %v, want %v", lo, first)
	}

	hi, err := j.At(1000)
	if err != nil {
		t.Fatalf("At above range: %v", err)
	}
	last, _ := j.At(20)
	if hi != last {
		t.Errorf("above-range color %v, want %v", hi, last)
	}
}

func TestJet_NaN(t *testing.T) {
	if _, err := NewJet(0, 1).At(math.NaN()); err != palette.ErrNaN {
		t.Errorf("expected ErrNaN, got %v", err)
	}
}

func TestJet_Palette(t *testing.T) {
	p := NewJet(0, 1).Palette(256)
	if n := len(p.Colors()); n != 256 {
		t.Fatalf("expected 256 colors, got %d", n)
	}
	if p.Colors()[0] != color.Color(JetColor(0)) {
		t.Error("palette should start at the low end")
	}
}

func TestNonsingular(t *testing.T) {
	tests := []struct {
		min, max         float64
		wantMin, wantMax float64
	}{
		{-80, 20, -80, 20},
		{20, -80, -80, 20},
		{0, 0, -0.5, 0.5},
		{-100, -100, -105, -95},
	}

	for _, tt := range tests {
		gotMin, gotMax := Nonsingular(tt.min, tt.max)
		if gotMin != tt.wantMin || gotMax != tt.wantMax {
			t.Errorf("Nonsingular(%v, %v) = (%v, %v), want (%v, %v)",
				tt.min, tt.max, gotMin, gotMax, tt.wantMin, tt.wantMax)
		}
	}
}

func TestHex(t *testing.T) {
	hex := Hex(3)
	if len(hex) != 3 {
		t.Fatalf("expected 3 colors, got %d", len(hex))
	}
	if hex[0] != "#000080" {
		t.Errorf("first color = %s, want #000080", hex[0])
	}
	if hex[2] != "#800000" {
		t.Errorf("last color = %s, want #800000", hex[2])
	}
}
