package heatmap

import (
	"errors"
	"fmt"
	"math"
)

// ColorScale is the value range mapped onto the colormap.
type ColorScale struct {
	Min, Max float64
}

// ScaleOf returns the combined extrema of the given grids.
func ScaleOf(grids ...*Grid) ColorScale {
	s := ColorScale{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, g := range grids {
		s = s.Union(ColorScale{Min: g.Min(), Max: g.Max()})
	}
	return s
}

// Union returns the smallest scale covering both s and o.
func (s ColorScale) Union(o ColorScale) ColorScale {
	return ColorScale{Min: math.Min(s.Min, o.Min), Max: math.Max(s.Max, o.Max)}
}

// Degenerate reports whether the scale collapses to a single value.
func (s ColorScale) Degenerate() bool { return s.Min == s.Max }

// Normalize maps v into [0, 1]. Values outside the scale are clamped, and a
// degenerate scale maps everything to 0.
func (s ColorScale) Normalize(v float64) float64 {
	if s.Degenerate() || math.IsNaN(v) {
		return 0
	}
	t := (v - s.Min) / (s.Max - s.Min)
	return math.Max(0, math.Min(1, t))
}

// drawable widens a degenerate scale so plotting code can divide by its span.
func (s ColorScale) drawable() ColorScale {
	if s.Degenerate() {
		return ColorScale{Min: s.Min, Max: s.Min + 1}
	}
	return s
}

func (s ColorScale) String() string {
	return fmt.Sprintf("[%g, %g]", s.Min, s.Max)
}

// ScalePolicy selects how panels share colour scales.
type ScalePolicy int

const (
	// ScaleAuto gives every panel the extrema of its own grid.
	ScaleAuto ScalePolicy = iota
	// ScaleGlobal gives every full-grid panel the extrema of the original grid.
	ScaleGlobal
	// ScaleGrouped is ScaleGlobal for full-grid panels plus one shared scale
	// over all region panels.
	ScaleGrouped
)

func (p ScalePolicy) String() string {
	switch p {
	case ScaleAuto:
		return "auto"
	case ScaleGlobal:
		return "global"
	case ScaleGrouped:
		return "grouped"
	}
	return fmt.Sprintf("ScalePolicy(%d)", int(p))
}

// PanelSet lists the grids of a figure. Full[0] must be the original,
// unsmoothed grid; Region holds the region cut from each entry of Full.
type PanelSet struct {
	Full   []*Grid
	Region []*Grid
}

// Scales holds one resolved scale per panel, index-aligned with PanelSet.
type Scales struct {
	Full   []ColorScale
	Region []ColorScale
}

var errNoFullPanels = errors.New("colour scale needs at least one full-grid panel")

// ResolveScales computes the colour scale of every panel in set under policy.
func ResolveScales(policy ScalePolicy, set PanelSet) (Scales, error) {
	if len(set.Full) == 0 {
		return Scales{}, errNoFullPanels
	}

	out := Scales{
		Full:   make([]ColorScale, len(set.Full)),
		Region: make([]ColorScale, len(set.Region)),
	}
	for i, g := range set.Full {
		out.Full[i] = ScaleOf(g)
	}
	for i, g := range set.Region {
		out.Region[i] = ScaleOf(g)
	}

	switch policy {
	case ScaleAuto:
	case ScaleGlobal, ScaleGrouped:
		global := ScaleOf(set.Full[0])
		for i := range out.Full {
			out.Full[i] = global
		}
		if policy == ScaleGrouped && len(set.Region) > 0 {
			shared := ScaleOf(set.Region...)
			for i := range out.Region {
				out.Region[i] = shared
			}
		}
	default:
		return Scales{}, fmt.Errorf("unknown colour scale policy %v", policy)
	}
	return out, nil
}
