package heatmap

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot/palette"
)

// DefaultColorStops run from dark blue through cyan, green and yellow to dark red.
var DefaultColorStops = []string{
	"#00008B", "#0000FF", "#0080FF", "#00FFFF",
	"#80FF80", "#FFFF00", "#FF8000", "#FF0000", "#800000",
}

var errNaNValue = errors.New("colormap: NaN value")

// multiPhase is a palette.ColorMap that blends linearly between evenly spaced
// colour stops.
type multiPhase struct {
	stops    []colorful.Color
	min, max float64
	alpha    float64
}

var _ palette.ColorMap = (*multiPhase)(nil)

// NewColorMap builds a colormap from hex colour stops ("#RRGGBB").
// The returned map covers [0, 1] until SetMin/SetMax are called.
func NewColorMap(hexStops []string) (palette.ColorMap, error) {
	if len(hexStops) < 2 {
		return nil, fmt.Errorf("colormap needs at least 2 stops, got %d", len(hexStops))
	}
	stops := make([]colorful.Color, len(hexStops))
	for i, h := range hexStops {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("colormap stop %d %q: %w", i, h, err)
		}
		stops[i] = c
	}
	return &multiPhase{stops: stops, min: 0, max: 1, alpha: 1}, nil
}

func (m *multiPhase) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, errNaNValue
	case v < m.min:
		return nil, palette.ErrUnderflow
	case v > m.max:
		return nil, palette.ErrOverflow
	}
	t := 0.0
	if m.max > m.min {
		t = (v - m.min) / (m.max - m.min)
	}
	return m.blend(t), nil
}

// blend returns the colour at fraction t in [0, 1] along the stops.
func (m *multiPhase) blend(t float64) color.Color {
	pos := t * float64(len(m.stops)-1)
	i := int(math.Floor(pos))
	if i >= len(m.stops)-1 {
		i = len(m.stops) - 2
	}
	if i < 0 {
		i = 0
	}
	c := m.stops[i].BlendRgb(m.stops[i+1], pos-float64(i)).Clamped()
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(m.alpha * 255))}
}

func (m *multiPhase) Max() float64       { return m.max }
func (m *multiPhase) SetMax(v float64)   { m.max = v }
func (m *multiPhase) Min() float64       { return m.min }
func (m *multiPhase) SetMin(v float64)   { m.min = v }
func (m *multiPhase) Alpha() float64     { return m.alpha }
func (m *multiPhase) SetAlpha(a float64) { m.alpha = a }

// Palette samples n evenly spaced colours from the map.
func (m *multiPhase) Palette(n int) palette.Palette {
	ramp := make(colorRamp, n)
	for i := range n {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		ramp[i] = m.blend(t)
	}
	return ramp
}

// colorRamp is a fixed list of colours satisfying palette.Palette.
type colorRamp []color.Color

func (r colorRamp) Colors() []color.Color { return r }
