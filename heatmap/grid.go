// Package heatmap loads delimited numeric grids (elemental-loading maps and the
// like), smooths them with a box filter, and renders one or more colour-mapped
// panels into a single PNG figure.
//
// A typical run is Load -> Smooth (once per window) -> ResolveScales ->
// Extract -> RenderPanel (per panel), all driven by a Composer for one of the
// six layout modes.
package heatmap

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Grid is an immutable rows x cols matrix of measured values.
// Every transform in this package returns a new Grid.
type Grid struct {
	m *mat.Dense
}

// NewGrid copies data into a new Grid. Every row must have the same length.
func NewGrid(data [][]float64) (*Grid, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, &MalformedGridError{Err: ErrEmptyGrid}
	}
	cols := len(data[0])
	flat := make([]float64, 0, len(data)*cols)
	for i, row := range data {
		if len(row) != cols {
			return nil, &MalformedGridError{Row: i, Got: len(row), Want: cols}
		}
		flat = append(flat, row...)
	}
	return newGrid(len(data), cols, flat), nil
}

// newGrid takes ownership of flat, which must hold rows*cols values in row-major order.
func newGrid(rows, cols int, flat []float64) *Grid {
	return &Grid{m: mat.NewDense(rows, cols, flat)}
}

// Dims returns the number of rows and columns.
func (g *Grid) Dims() (rows, cols int) { return g.m.Dims() }

func (g *Grid) Rows() int {
	r, _ := g.m.Dims()
	return r
}

func (g *Grid) Cols() int {
	_, c := g.m.Dims()
	return c
}

// Len is the number of cells.
func (g *Grid) Len() int {
	r, c := g.m.Dims()
	return r * c
}

// At returns the value at row r, column c.
func (g *Grid) At(r, c int) float64 { return g.m.At(r, c) }

func (g *Grid) Min() float64 { return mat.Min(g.m) }

func (g *Grid) Max() float64 { return mat.Max(g.m) }

// Median returns the median of all cells. For an even number of cells it is
// the mean of the two middle values.
func (g *Grid) Median() float64 {
	vals := g.flat()
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

// Values returns a copy of the grid as a slice of rows.
func (g *Grid) Values() [][]float64 {
	rows, cols := g.Dims()
	out := make([][]float64, rows)
	for r := range rows {
		out[r] = make([]float64, cols)
		mat.Row(out[r], r, g.m)
	}
	return out
}

// Equal reports whether g and o have the same shape and identical values.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	gr, gc := g.Dims()
	or, oc := o.Dims()
	if gr != or || gc != oc {
		return false
	}
	return mat.Equal(g.m, o.m)
}

// flat returns a row-major copy of the cells.
func (g *Grid) flat() []float64 {
	rows, cols := g.Dims()
	out := make([]float64, rows*cols)
	for r := range rows {
		mat.Row(out[r*cols:(r+1)*cols], r, g.m)
	}
	return out
}
