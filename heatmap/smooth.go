package heatmap

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// DefaultWindows are the rolling-average sizes used by the rolling layouts.
var DefaultWindows = []int{3, 6}

// Smooth applies a window x window box (uniform) average to g. Cells beyond the
// border take the value of the nearest edge cell, so the output has the same
// shape as the input. For an even window the extra cell sits on the low side:
// index i averages i-window/2 through i-window/2+window-1.
//
// The filter is separable and is applied along the columns first, then along
// the rows. A window of 1 returns an identical copy.
func Smooth(g *Grid, window int) (*Grid, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	rows, cols := g.Dims()
	src := g.flat()
	if window == 1 {
		return newGrid(rows, cols, src), nil
	}

	off := window / 2

	// Horizontal pass.
	tmp := make([]float64, rows*cols)
	for r := range rows {
		row := src[r*cols : (r+1)*cols]
		for c := range cols {
			sum := 0.0
			for k := range window {
				sum += row[clamp(c-off+k, 0, cols-1)]
			}
			tmp[r*cols+c] = sum
		}
	}

	// Vertical pass.
	out := make([]float64, rows*cols)
	for c := range cols {
		for r := range rows {
			sum := 0.0
			for k := range window {
				sum += tmp[clamp(r-off+k, 0, rows-1)*cols+c]
			}
			out[r*cols+c] = sum
		}
	}
	floats.Scale(1/float64(window*window), out)

	return newGrid(rows, cols, out), nil
}

// SmoothAll returns g followed by one smoothed copy per window.
func SmoothAll(g *Grid, windows []int) ([]*Grid, error) {
	out := make([]*Grid, 0, len(windows)+1)
	out = append(out, g)
	for _, w := range windows {
		s, err := Smooth(g, w)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
