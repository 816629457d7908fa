package heatmap

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyGrid is reported when a data file holds no numeric rows.
	ErrEmptyGrid = errors.New("grid has no data rows")

	// ErrInvalidWindow is reported for smoothing windows smaller than 1.
	ErrInvalidWindow = errors.New("smoothing window must be a positive integer")

	// ErrUnknownMode is reported by ParseMode for unrecognised mode names.
	ErrUnknownMode = errors.New("unknown visualization mode")

	// ErrNoOutputPath is reported when neither an output path nor a data path is known.
	ErrNoOutputPath = errors.New("no output path")
)

// FileNotFoundError is returned when the grid data file does not exist.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("data file %q not found", e.Path)
}

func (e *FileNotFoundError) Unwrap() error { return e.Err }

// ParseError is returned when a token in the data file is not a number.
type ParseError struct {
	Path   string
	Line   int // 1-based line number in the file
	Column int // 1-based token position within the line
	Token  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: token %d %q is not a number", e.Path, e.Line, e.Column, e.Token)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MalformedGridError is returned when the retained rows do not form a rectangle.
type MalformedGridError struct {
	Path string
	Line int // 1-based line number, 0 when the grid was not read from a file
	Row  int // 0-based index of the offending row
	Got  int
	Want int
	Err  error
}

func (e *MalformedGridError) Error() string {
	if e.Err != nil {
		if e.Path != "" {
			return fmt.Sprintf("%s: %v", e.Path, e.Err)
		}
		return e.Err.Error()
	}
	loc := fmt.Sprintf("row %d", e.Row)
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d: row %d", e.Path, e.Line, e.Row)
	}
	return fmt.Sprintf("%s has %d values, expected %d", loc, e.Got, e.Want)
}

func (e *MalformedGridError) Unwrap() error { return e.Err }

// RegionOutOfBoundsError is returned when a region does not fit inside a grid.
type RegionOutOfBoundsError struct {
	Region Region
	Rows   int
	Cols   int
}

func (e *RegionOutOfBoundsError) Error() string {
	return fmt.Sprintf("region x=%d y=%d width=%d height=%d does not fit a %dx%d grid",
		e.Region.X, e.Region.Y, e.Region.Width, e.Region.Height, e.Rows, e.Cols)
}

// RenderError is returned when a figure cannot be drawn or written.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %q failed: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
