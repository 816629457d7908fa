package heatmap

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

func TestCellLabels(t *testing.T) {
	g := mustGrid(t, [][]float64{{1, 2}, {3, 4}})

	got := CellLabels(g)
	want := []CellLabel{
		{Row: 0, Col: 0, Text: "1.0", Light: false},
		{Row: 0, Col: 1, Text: "2.0", Light: false},
		{Row: 1, Col: 0, Text: "3.0", Light: true},
		{Row: 1, Col: 1, Text: "4.0", Light: true},
	}
	assert.Equal(t, want, got)
}

func TestCellLabelsConstantGrid(t *testing.T) {
	g := mustGrid(t, [][]float64{{5, 5}, {5, 5}})
	for _, cl := range CellLabels(g) {
		assert.False(t, cl.Light, "no value is above the median")
	}
}

func TestAnnotated(t *testing.T) {
	small := mustGrid(t, make20x20(t))
	big := randomGrid(t, 21, 20, 3)

	assert.True(t, PanelSpec{Grid: small, ShowValues: true}.Annotated(400))
	assert.False(t, PanelSpec{Grid: small}.Annotated(400))
	assert.False(t, PanelSpec{Grid: big, ShowValues: true}.Annotated(400))
}

func make20x20(t *testing.T) [][]float64 {
	t.Helper()
	data := make([][]float64, 20)
	for r := range data {
		data[r] = make([]float64, 20)
		for c := range data[r] {
			data[r][c] = float64(r*20 + c)
		}
	}
	return data
}

func TestUnit(t *testing.T) {
	assert.Equal(t, UnitIntensity, ParseUnit("Intensity"))
	assert.Equal(t, UnitIntensity, ParseUnit(" intensity "))
	assert.Equal(t, UnitLoading, ParseUnit("Co loading"))
	assert.Equal(t, UnitLoading, ParseUnit(""))
	assert.Equal(t, "Intensity", UnitIntensity.Label())
	assert.Equal(t, "Co loading (μg/cm²)", UnitLoading.Label())
}

func TestRenderConfigDefaults(t *testing.T) {
	cfg := RenderConfig{DPI: 72, UnitLabel: "Counts"}.withDefaults()
	def := DefaultRenderConfig()

	assert.Equal(t, 72, cfg.DPI)
	assert.Equal(t, "Counts", cfg.UnitLabel)
	assert.Equal(t, def.FontSize, cfg.FontSize)
	assert.Equal(t, def.MaxAnnotatedCells, cfg.MaxAnnotatedCells)
	assert.Equal(t, def.ColorStops, cfg.ColorStops)
}

func TestColorMap(t *testing.T) {
	cm, err := NewColorMap(DefaultColorStops)
	require.NoError(t, err)
	cm.SetMin(0)
	cm.SetMax(8)

	tests := []struct {
		v    float64
		want color.NRGBA
	}{
		{0, color.NRGBA{R: 0x00, G: 0x00, B: 0x8B, A: 255}},
		{4, color.NRGBA{R: 0x80, G: 0xFF, B: 0x80, A: 255}},
		{8, color.NRGBA{R: 0x80, G: 0x00, B: 0x00, A: 255}},
	}
	for _, tt := range tests {
		c, err := cm.At(tt.v)
		require.NoError(t, err)
		assert.Equal(t, tt.want, c, "value %v", tt.v)
	}

	_, err = cm.At(-1)
	assert.ErrorIs(t, err, palette.ErrUnderflow)
	_, err = cm.At(9)
	assert.ErrorIs(t, err, palette.ErrOverflow)

	pal := cm.Palette(256).Colors()
	require.Len(t, pal, 256)
	assert.Equal(t, color.NRGBA{R: 0x00, G: 0x00, B: 0x8B, A: 255}, pal[0])
	assert.Equal(t, color.NRGBA{R: 0x80, G: 0x00, B: 0x00, A: 255}, pal[255])
}

func TestNewColorMapErrors(t *testing.T) {
	_, err := NewColorMap([]string{"#000000"})
	assert.Error(t, err)
	_, err = NewColorMap([]string{"#000000", "not-a-colour"})
	assert.Error(t, err)
}

func TestCellTicks(t *testing.T) {
	values := func(min, max float64) []float64 {
		var out []float64
		for _, tk := range (CellTicks{}).Ticks(min, max) {
			out = append(out, tk.Value)
		}
		return out
	}
	assert.Equal(t, []float64{0, 1, 2, 3}, values(-0.5, 3.5))
	assert.Equal(t, []float64{0, 20, 40, 60, 80, 100, 120, 140, 160, 180}, values(-0.5, 199.5))
	assert.Nil(t, values(0.2, 0.8))
}

func TestRenderPanel(t *testing.T) {
	tests := []struct {
		name string
		spec PanelSpec
	}{
		{
			name: "annotated",
			spec: PanelSpec{Grid: mustGrid(t, [][]float64{{1, 2}, {3, 4}}), Title: "Original Data", ShowValues: true},
		},
		{
			name: "constant grid",
			spec: PanelSpec{Grid: mustGrid(t, [][]float64{{7, 7}, {7, 7}}), ShowValues: true},
		},
		{
			name: "highlighted",
			spec: PanelSpec{Grid: randomGrid(t, 30, 40, 9), Highlight: &Region{X: 30, Y: 20, Width: 10, Height: 10}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.spec.Scale = ScaleOf(tt.spec.Grid)
			c := vgimg.New(4*vg.Inch, 3*vg.Inch)
			err := RenderPanel(draw.New(c), tt.spec, DefaultRenderConfig())
			assert.NoError(t, err)
		})
	}
}

func TestRenderPanelNoGrid(t *testing.T) {
	c := vgimg.New(vg.Inch, vg.Inch)
	assert.Error(t, RenderPanel(draw.New(c), PanelSpec{}, RenderConfig{}))
}
