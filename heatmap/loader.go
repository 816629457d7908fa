package heatmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// DefaultDelimiter separates values when the configuration does not name one.
const DefaultDelimiter = "\t"

// commentPrefixes mark lines that carry headers rather than data.
var commentPrefixes = []string{"#", "Original", "Columns"}

// Load reads a delimited numeric grid from path.
func Load(path, delim string) (g *Grid, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileNotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return Parse(f, path, delim)
}

// Parse reads a grid from r. The name is only used in error messages.
//
// Blank lines and lines starting with one of the comment prefixes are skipped.
// Each remaining line is split on delim (any run of whitespace when delim is
// empty), empty tokens are dropped, and a line without tokens is omitted.
// Rows of differing length are rejected.
func Parse(r io.Reader, name, delim string) (*Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		flat []float64
		cols int
		rows int
		line int
	)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if skipLine(text) {
			continue
		}

		row, err := parseRow(text, delim)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Path = name
				pe.Line = line
			}
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		if rows == 0 {
			cols = len(row)
		} else if len(row) != cols {
			return nil, &MalformedGridError{Path: name, Line: line, Row: rows, Got: len(row), Want: cols}
		}
		flat = append(flat, row...)
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if rows == 0 {
		return nil, &MalformedGridError{Path: name, Err: ErrEmptyGrid}
	}

	return newGrid(rows, cols, flat), nil
}

func skipLine(text string) bool {
	if text == "" {
		return true
	}
	for _, p := range commentPrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

func parseRow(text, delim string) ([]float64, error) {
	var tokens []string
	if delim == "" {
		tokens = strings.Fields(text)
	} else {
		tokens = strings.Split(text, delim)
	}

	row := make([]float64, 0, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, &ParseError{Column: i + 1, Token: tok, Err: err}
		}
		row = append(row, v)
	}
	return row, nil
}
