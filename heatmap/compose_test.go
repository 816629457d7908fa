package heatmap

import (
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/plot/vg"
)

func TestModeNames(t *testing.T) {
	tests := []struct {
		mode   Mode
		name   string
		suffix string
	}{
		{ModeSingle, "single", "-heatmap-s"},
		{ModeSingleRollingDiff, "single_rolling_diff", "-heatmap-sdu"},
		{ModeSingleRollingSame, "single_rolling_same", "-heatmap-ssu"},
		{ModeWhole, "whole", "-heatmap-w"},
		{ModeWholeRollingDiff, "whole_rolling_diff", "-heatmap-wdu"},
		{ModeWholeRollingSame, "whole_rolling_same", "-heatmap-wsu"},
	}
	require.Len(t, Modes(), len(tests))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.mode.String())
			assert.Equal(t, tt.suffix, tt.mode.Suffix())

			m, err := ParseMode(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.mode, m)

			m, err = ParseMode(tt.suffix[len("-heatmap-"):])
			require.NoError(t, err)
			assert.Equal(t, tt.mode, m)
		})
	}

	m, err := ParseMode("Whole-Rolling-Same")
	require.NoError(t, err)
	assert.Equal(t, ModeWholeRollingSame, m)

	_, err = ParseMode("spiral")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "data/Co_loading-heatmap-s.png", OutputPath("data/Co_loading.txt", ModeSingle))
	assert.Equal(t, "data/after HNO3-heatmap-wsu.png", OutputPath("data/after HNO3.txt", ModeWholeRollingSame))
	assert.Equal(t, "grid-heatmap-sdu.png", OutputPath("grid", ModeSingleRollingDiff))
	assert.Equal(t, "v1.2/grid-heatmap-w.png", OutputPath("v1.2/grid.csv", ModeWhole))
}

func TestBuildLayout(t *testing.T) {
	g := randomGrid(t, 40, 32, 11)
	req := Request{}

	tests := []struct {
		mode       Mode
		rows, cols int
		titles     []string
		highlights int
		width      vg.Length
		height     vg.Length
	}{
		{ModeSingle, 1, 1, []string{"Original Data"}, 0, 8 * vg.Inch, 6 * vg.Inch},
		{ModeSingleRollingDiff, 1, 3,
			[]string{"Original Data", "3×3 Rolling Average", "6×6 Rolling Average"}, 0, 18 * vg.Inch, 6 * vg.Inch},
		{ModeSingleRollingSame, 1, 3,
			[]string{"Original Data", "3×3 Rolling Average", "6×6 Rolling Average"}, 0, 18 * vg.Inch, 6 * vg.Inch},
		{ModeWhole, 2, 1,
			[]string{"Full Heatmap with Marked Region", "Zoomed Region: 8×10 at (24,30)"}, 1, 10 * vg.Inch, 12 * vg.Inch},
		{ModeWholeRollingDiff, 2, 3,
			[]string{"Original Data", "3×3 Rolling Average", "6×6 Rolling Average",
				"Original Region (8×10)", "3×3 Region (8×10)", "6×6 Region (8×10)"}, 3, 18 * vg.Inch, 12 * vg.Inch},
		{ModeWholeRollingSame, 2, 3,
			[]string{"Original Data", "3×3 Rolling Average", "6×6 Rolling Average",
				"Original Region (8×10)", "3×3 Region (8×10)", "6×6 Region (8×10)"}, 3, 18 * vg.Inch, 12 * vg.Inch},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			l, err := BuildLayout(tt.mode, g, req)
			require.NoError(t, err)
			assert.Equal(t, tt.rows, l.Rows)
			assert.Equal(t, tt.cols, l.Cols)
			assert.Equal(t, tt.width, l.Width)
			assert.Equal(t, tt.height, l.Height)

			var titles []string
			highlights := 0
			for _, p := range l.Panels {
				titles = append(titles, p.Title)
				if p.Highlight != nil {
					highlights++
					assert.Equal(t, DefaultRegion(40, 32), *p.Highlight)
				}
			}
			assert.Equal(t, tt.titles, titles)
			assert.Equal(t, tt.highlights, highlights)
		})
	}
}

func TestBuildLayoutScales(t *testing.T) {
	g := randomGrid(t, 24, 24, 5)
	global := ScaleOf(g)

	l, err := BuildLayout(ModeSingleRollingSame, g, Request{})
	require.NoError(t, err)
	for _, p := range l.Panels {
		assert.Equal(t, global, p.Scale)
	}

	l, err = BuildLayout(ModeSingleRollingDiff, g, Request{})
	require.NoError(t, err)
	for _, p := range l.Panels {
		assert.Equal(t, ScaleOf(p.Grid), p.Scale)
	}

	l, err = BuildLayout(ModeWholeRollingSame, g, Request{})
	require.NoError(t, err)
	regionScale := ScaleOf(l.Panels[3].Grid, l.Panels[4].Grid, l.Panels[5].Grid)
	for i, p := range l.Panels {
		if i < 3 {
			assert.Equal(t, global, p.Scale)
		} else {
			assert.Equal(t, regionScale, p.Scale)
		}
	}
}

func TestBuildLayoutOptions(t *testing.T) {
	g := randomGrid(t, 20, 20, 8)
	req := Request{
		Windows:    []int{2, 4, 8},
		Region:     &Region{X: 0, Y: 0, Width: 5, Height: 4},
		HideValues: true,
		Subject:    "Nickel Loading",
	}

	l, err := BuildLayout(ModeWholeRollingDiff, g, req)
	require.NoError(t, err)
	assert.Equal(t, 4, l.Cols)
	assert.Len(t, l.Panels, 8)
	assert.Equal(t, 24*vg.Inch, l.Width)
	assert.Equal(t, "Nickel Loading Analysis with Independent Color Scales", l.Title)
	assert.Equal(t, "8×8 Rolling Average", l.Panels[3].Title)
	assert.Equal(t, "4×4 Region (5×4)", l.Panels[6].Title)
	for _, p := range l.Panels {
		assert.False(t, p.ShowValues)
	}

	l, err = BuildLayout(ModeWhole, g, Request{})
	require.NoError(t, err)
	assert.False(t, l.Panels[0].ShowValues, "full panel never shows values")
	assert.True(t, l.Panels[1].ShowValues)
}

func TestBuildLayoutErrors(t *testing.T) {
	g := mustGrid(t, [][]float64{{1, 2}, {3, 4}})

	_, err := BuildLayout(ModeWhole, g, Request{})
	var oob *RegionOutOfBoundsError
	assert.ErrorAs(t, err, &oob)

	_, err = BuildLayout(ModeWholeRollingSame, g, Request{Region: &Region{X: 1, Y: 1, Width: 1, Height: 1}})
	assert.NoError(t, err)

	_, err = BuildLayout(ModeSingleRollingDiff, g, Request{Windows: []int{3, -1}})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = BuildLayout(Mode(42), g, Request{})
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestComposerRunSingle(t *testing.T) {
	data := writeData(t, "grid.txt", "1\t2\n3\t4\n")
	c := NewComposer(zaptest.NewLogger(t))

	out, err := c.Run(ModeSingle, Request{DataPath: data, Delimiter: "\t"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(data), "grid-heatmap-s.png"), out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())

	entries, err := os.ReadDir(filepath.Dir(data))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "only the data file and the figure")
}

func TestComposerRunAll(t *testing.T) {
	data := writeData(t, "grid.csv", makeCSV(12, 10))
	c := NewComposer(nil)

	outs, err := c.RunAll(Modes(), Request{
		DataPath:  data,
		Delimiter: ",",
		Render:    RenderConfig{DPI: 30},
	})
	require.NoError(t, err)
	require.Len(t, outs, 6)
	for i, m := range Modes() {
		assert.Equal(t, OutputPath(data, m), outs[i])
		assert.FileExists(t, outs[i])
	}
}

func makeCSV(rows, cols int) string {
	var sb strings.Builder
	for r := range rows {
		for c := range cols {
			if c > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(r*cols + c))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func TestComposerLeavesNothingOnFailure(t *testing.T) {
	g := mustGrid(t, [][]float64{{1, 2}, {3, 4}})
	dir := t.TempDir()
	c := NewComposer(nil)

	// The target is a directory, so the final rename fails.
	target := filepath.Join(dir, "out.png")
	require.NoError(t, os.Mkdir(target, 0o755))
	_, err := c.Compose(ModeSingle, g, Request{OutputPath: target})
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, target, re.Path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.png", entries[0].Name())
	assert.True(t, entries[0].IsDir())

	// Missing output directory.
	missing := filepath.Join(dir, "no", "such", "dir", "out.png")
	_, err = c.Compose(ModeSingle, g, Request{OutputPath: missing})
	require.ErrorAs(t, err, &re)
	assert.NoFileExists(t, missing)
}

func TestComposerErrors(t *testing.T) {
	c := NewComposer(nil)

	_, err := c.Run(ModeSingle, Request{DataPath: filepath.Join(t.TempDir(), "missing.txt")})
	var nf *FileNotFoundError
	assert.ErrorAs(t, err, &nf)

	g := mustGrid(t, [][]float64{{1}})
	_, err = c.Compose(ModeSingle, g, Request{})
	assert.ErrorIs(t, err, ErrNoOutputPath)

	data := writeData(t, "small.txt", "1\t2\n3\t4\n")
	_, err = c.Run(ModeWhole, Request{DataPath: data})
	var oob *RegionOutOfBoundsError
	assert.ErrorAs(t, err, &oob)
	assert.NoFileExists(t, OutputPath(data, ModeWhole))
}
