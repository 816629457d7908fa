package heatmap

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeData(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		delim string
		want  [][]float64
	}{
		{
			name:  "tab separated",
			input: "1\t2\t3\n4\t5\t6\n",
			delim: "\t",
			want:  [][]float64{{1, 2, 3}, {4, 5, 6}},
		},
		{
			name:  "comment and header lines",
			input: "# header\nColumns: a b c\n1\t2\t3\n4\t5\t6\n7\t8\t9\n",
			delim: "\t",
			want:  [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}},
		},
		{
			name:  "original prefix and blank lines",
			input: "Original data export\n\n  \n1.5,2.5\n\n3.5,4.5\n",
			delim: ",",
			want:  [][]float64{{1.5, 2.5}, {3.5, 4.5}},
		},
		{
			name:  "trailing delimiter",
			input: "1\t2\t\n3\t4\t\n",
			delim: "\t",
			want:  [][]float64{{1, 2}, {3, 4}},
		},
		{
			name:  "whitespace runs",
			input: "1   2 \t 3\n4 5 6\n",
			delim: "",
			want:  [][]float64{{1, 2, 3}, {4, 5, 6}},
		},
		{
			name:  "crlf line endings",
			input: "1\t2\r\n3\t4\r\n",
			delim: "\t",
			want:  [][]float64{{1, 2}, {3, 4}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse(strings.NewReader(tt.input), "test", tt.delim)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, g.Values()); diff != "" {
				t.Errorf("grid mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRaggedRows(t *testing.T) {
	_, err := Parse(strings.NewReader("1\t2\t3\t4\t5\n1\t2\t3\t4\n"), "ragged.txt", "\t")

	var me *MalformedGridError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "ragged.txt", me.Path)
	assert.Equal(t, 2, me.Line)
	assert.Equal(t, 1, me.Row)
	assert.Equal(t, 4, me.Got)
	assert.Equal(t, 5, me.Want)
}

func TestParseBadToken(t *testing.T) {
	_, err := Parse(strings.NewReader("# x\n1\t2\n3\tabc\n"), "bad.txt", "\t")

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad.txt", pe.Path)
	assert.Equal(t, 3, pe.Line)
	assert.Equal(t, 2, pe.Column)
	assert.Equal(t, "abc", pe.Token)
	assert.Contains(t, err.Error(), "bad.txt:3")
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(strings.NewReader("# only a header\n\n"), "empty.txt", "\t")

	var me *MalformedGridError
	require.ErrorAs(t, err, &me)
	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func TestLoad(t *testing.T) {
	path := writeData(t, "grid.txt", "# header\nColumns: a b c\n1\t2\t3\n4\t5\t6\n7\t8\t9\n")

	g, err := Load(path, "\t")
	require.NoError(t, err)
	rows, cols := g.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 6.0, g.At(1, 2))
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.txt")

	_, err := Load(path, "\t")

	var nf *FileNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, path, nf.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestNewGrid(t *testing.T) {
	g, err := NewGrid([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 2, g.Cols())
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 1.0, g.Min())
	assert.Equal(t, 4.0, g.Max())
	assert.Equal(t, 2.5, g.Median())

	_, err = NewGrid([][]float64{{1, 2}, {3}})
	var me *MalformedGridError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 1, me.Row)

	_, err = NewGrid(nil)
	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func TestGridValuesAreCopies(t *testing.T) {
	src := [][]float64{{1, 2}, {3, 4}}
	g, err := NewGrid(src)
	require.NoError(t, err)

	src[0][0] = 100
	v := g.Values()
	v[1][1] = 100

	assert.Equal(t, 1.0, g.At(0, 0))
	assert.Equal(t, 4.0, g.At(1, 1))
}

func TestMedianOdd(t *testing.T) {
	g, err := NewGrid([][]float64{{5, 1, 3}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, g.Median())
}
