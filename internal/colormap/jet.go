// Package colormap implements the jet color scale used by every voltage
// heatmap, both as a gonum palette.ColorMap and as hex ramps for HTML and
// terminal output.
package colormap

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
)

type anchor struct {
	x, y float64
}

// Piecewise-linear channel curves of the classic jet map.
var (
	jetRed   = []anchor{{0, 0}, {0.35, 0}, {0.66, 1}, {0.89, 1}, {1, 0.5}}
	jetGreen = []anchor{{0, 0}, {0.125, 0}, {0.375, 1}, {0.64, 1}, {0.91, 0}, {1, 0}}
	jetBlue  = []anchor{{0, 0.5}, {0.11, 1}, {0.34, 1}, {0.65, 0}, {1, 0}}
)

func interp(curve []anchor, f float64) float64 {
	if f <= curve[0].x {
		return curve[0].y
	}
	for i := 1; i < len(curve); i++ {
		if f <= curve[i].x {
			a, b := curve[i-1], curve[i]
			return a.y + (f-a.x)/(b.x-a.x)*(b.y-a.y)
		}
	}
	return curve[len(curve)-1].y
}

// JetColor maps f in [0, 1] to a jet color. Values outside are clamped.
func JetColor(f float64) color.NRGBA {
	f = math.Max(0, math.Min(1, f))
	return color.NRGBA{
		R: uint8(math.Round(interp(jetRed, f) * 255)),
		G: uint8(math.Round(interp(jetGreen, f) * 255)),
		B: uint8(math.Round(interp(jetBlue, f) * 255)),
		A: 255,
	}
}

// Jet is a jet ColorMap over [Min, Max]. Values outside the range take the
// end colors, the way an image with fixed vmin/vmax is drawn.
type Jet struct {
	min, max float64
	alpha    float64
}

var _ palette.ColorMap = (*Jet)(nil)

func NewJet(min, max float64) *Jet {
	min, max = Nonsingular(min, max)
	return &Jet{min: min, max: max, alpha: 1}
}

func (j *Jet) At(v float64) (color.Color, error) {
	if math.IsNaN(v) {
		return nil, palette.ErrNaN
	}
	c := JetColor((v - j.min) / (j.max - j.min))
	c.A = uint8(math.Round(j.alpha * 255))
	return c, nil
}

// Norm returns the position of v inside [Min, Max] as a fraction, clamped.
func (j *Jet) Norm(v float64) float64 {
	return math.Max(0, math.Min(1, (v-j.min)/(j.max-j.min)))
}

func (j *Jet) Max() float64 { return j.max }
func (j *Jet) Min() float64 { return j.min }
func (j *Jet) SetMax(v float64) { j.max = v }
func (j *Jet) SetMin(v float64) { j.min = v }
func (j *Jet) Alpha() float64 { return j.alpha }
func (j *Jet) SetAlpha(a float64) { j.alpha = a }
func (j *Jet) Palette(n int) palette.Palette {
	return jetPalette(Colors(n))
}

type jetPalette []color.Color

func (p jetPalette) Colors() []color.Color { return p }

// Colors samples n evenly spaced jet colors from low to high.
func Colors(n int) []color.Color {
	if n < 2 {
		return []color.Color{JetColor(0.5)}
	}
	out := make([]color.Color, n)
	for i := range out {
		out[i] = JetColor(float64(i) / float64(n-1))
	}
	return out
}

// Hex samples n evenly spaced jet colors as #rrggbb strings.
func Hex(n int) []string {
	cols := Colors(n)
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = ToHex(c.(color.NRGBA))
	}
	return out
}

func ToHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Nonsingular widens an empty range so it can be normalized against.
func Nonsingular(min, max float64) (float64, float64) {
	if max > min {
		return min, max
	}
	if max < min {
		return max, min
	}
	d := math.Max(math.Abs(min)*0.05, 0.5)
	return min - d, max + d
}
