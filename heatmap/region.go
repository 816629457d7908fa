package heatmap

import (
	"fmt"
)

// Region is a rectangle of cells: X and Y locate its top-left cell.
type Region struct {
	X, Y          int
	Width, Height int
}

// DefaultRegion is the bottom-right quarter of a rows x cols grid, at least 3x3.
func DefaultRegion(rows, cols int) Region {
	w := max(3, cols/4)
	h := max(3, rows/4)
	return Region{X: cols - w, Y: rows - h, Width: w, Height: h}
}

// RegionFromSlice builds a Region from [x, y, width, height].
func RegionFromSlice(v []int) (Region, error) {
	if len(v) != 4 {
		return Region{}, fmt.Errorf("region needs 4 values [x, y, width, height], got %d", len(v))
	}
	return Region{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

// Slice returns the region as [x, y, width, height].
func (r Region) Slice() []int {
	return []int{r.X, r.Y, r.Width, r.Height}
}

// Fits returns a *RegionOutOfBoundsError unless r lies inside a rows x cols grid.
func (r Region) Fits(rows, cols int) error {
	if r.X < 0 || r.Y < 0 || r.Width < 1 || r.Height < 1 ||
		r.X+r.Width > cols || r.Y+r.Height > rows {
		return &RegionOutOfBoundsError{Region: r, Rows: rows, Cols: cols}
	}
	return nil
}

// Size is the "W×H" form used in panel titles.
func (r Region) Size() string {
	return fmt.Sprintf("%d×%d", r.Width, r.Height)
}

func (r Region) String() string {
	return fmt.Sprintf("%s at (%d,%d)", r.Size(), r.X, r.Y)
}

// Extract copies the cells of g covered by r into a new Grid.
func Extract(g *Grid, r Region) (*Grid, error) {
	rows, cols := g.Dims()
	if err := r.Fits(rows, cols); err != nil {
		return nil, err
	}
	flat := make([]float64, 0, r.Width*r.Height)
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			flat = append(flat, g.At(y, x))
		}
	}
	return newGrid(r.Height, r.Width, flat), nil
}

// ExtractAll cuts r from each grid.
func ExtractAll(grids []*Grid, r Region) ([]*Grid, error) {
	out := make([]*Grid, len(grids))
	for i, g := range grids {
		sub, err := Extract(g, r)
		if err != nil {
			return nil, err
		}
		out[i] = sub
	}
	return out, nil
}
