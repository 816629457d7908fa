package heatmap

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"

	// Liberation fonts register automatically on import
	_ "gonum.org/v1/plot/font/liberation"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Unit selects the colorbar label.
type Unit int

const (
	UnitLoading Unit = iota
	UnitIntensity
)

// ParseUnit maps a configuration value to a Unit. Anything other than
// "Intensity" (case-insensitive) selects the loading unit.
func ParseUnit(s string) Unit {
	if strings.EqualFold(strings.TrimSpace(s), "intensity") {
		return UnitIntensity
	}
	return UnitLoading
}

// Label is the colorbar caption for u.
func (u Unit) Label() string {
	if u == UnitIntensity {
		return "Intensity"
	}
	return "Co loading (μg/cm²)"
}

// RenderConfig carries every drawing setting for one figure. Zero fields take
// the values of DefaultRenderConfig.
type RenderConfig struct {
	DPI               int
	FontSize          float64 // base size in points
	Typeface          font.Typeface
	Variant           font.Variant
	UnitLabel         string
	HighlightColor    color.Color
	HighlightWidth    float64 // points
	MaxAnnotatedCells int     // value labels are drawn only up to this many cells
	ColorStops        []string
}

// DefaultRenderConfig returns the settings used when nothing is configured.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		DPI:               100,
		FontSize:          10,
		Typeface:          "Liberation",
		Variant:           "Sans",
		UnitLabel:         UnitLoading.Label(),
		HighlightColor:    color.RGBA{R: 255, G: 255, A: 255}, // yellow
		HighlightWidth:    2,
		MaxAnnotatedCells: 400,
		ColorStops:        DefaultColorStops,
	}
}

func (cfg RenderConfig) withDefaults() RenderConfig {
	def := DefaultRenderConfig()
	if cfg.DPI <= 0 {
		cfg.DPI = def.DPI
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = def.FontSize
	}
	if cfg.Typeface == "" {
		cfg.Typeface = def.Typeface
	}
	if cfg.Variant == "" {
		cfg.Variant = def.Variant
	}
	if cfg.UnitLabel == "" {
		cfg.UnitLabel = def.UnitLabel
	}
	if cfg.HighlightColor == nil {
		cfg.HighlightColor = def.HighlightColor
	}
	if cfg.HighlightWidth <= 0 {
		cfg.HighlightWidth = def.HighlightWidth
	}
	if cfg.MaxAnnotatedCells <= 0 {
		cfg.MaxAnnotatedCells = def.MaxAnnotatedCells
	}
	if len(cfg.ColorStops) == 0 {
		cfg.ColorStops = def.ColorStops
	}
	return cfg
}

// PanelSpec describes one rendered heatmap within a figure.
type PanelSpec struct {
	Grid       *Grid
	Title      string
	Scale      ColorScale
	Highlight  *Region // outlined on the panel when set
	ShowValues bool
}

// Annotated reports whether per-cell values are drawn for s.
func (s PanelSpec) Annotated(limit int) bool {
	return s.ShowValues && s.Grid.Len() <= limit
}

// CellLabel is the text drawn over one cell.
type CellLabel struct {
	Row, Col int
	Text     string
	Light    bool // white text; the value is above the grid median
}

// CellLabels returns the value label of every cell of g, row by row.
func CellLabels(g *Grid) []CellLabel {
	rows, cols := g.Dims()
	median := g.Median()
	out := make([]CellLabel, 0, rows*cols)
	for r := range rows {
		for c := range cols {
			v := g.At(r, c)
			out = append(out, CellLabel{
				Row:   r,
				Col:   c,
				Text:  fmt.Sprintf("%.1f", v),
				Light: v > median,
			})
		}
	}
	return out
}

// RenderPanel draws spec onto c. The heatmap takes the canvas minus a strip on
// the right that holds the colorbar.
func RenderPanel(c draw.Canvas, spec PanelSpec, cfg RenderConfig) error {
	if spec.Grid == nil {
		return errors.New("panel has no grid")
	}
	cfg = cfg.withDefaults()

	heat, bar, err := panelPlots(spec, cfg)
	if err != nil {
		return err
	}

	w := c.Max.X - c.Min.X
	h := c.Max.Y - c.Min.Y
	barW := vg.Points(cfg.FontSize * 8)

	heat.Draw(draw.Crop(c, 0, -barW, 0, 0))
	// The colorbar is shortened to 80% of the panel height.
	bar.Draw(draw.Crop(c, w-barW, 0, h*0.1, -h*0.1))
	return nil
}

// panelPlots builds the heatmap plot and its colorbar plot.
func panelPlots(spec PanelSpec, cfg RenderConfig) (heat, bar *plot.Plot, err error) {
	cm, err := NewColorMap(cfg.ColorStops)
	if err != nil {
		return nil, nil, err
	}
	scale := spec.Scale.drawable()
	pal := cm.Palette(256)
	colors := pal.Colors()

	heat = plot.New()
	styleAxes(heat, cfg)
	heat.Title.Text = spec.Title
	heat.Title.Padding = vg.Points(cfg.FontSize * 1.5)
	heat.X.Label.Text = "Columns"
	heat.Y.Label.Text = "Rows"
	// Row 0 at the top, as the grid appears in the file.
	heat.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	heat.X.Tick.Marker = CellTicks{}
	heat.Y.Tick.Marker = CellTicks{}

	hm := plotter.NewHeatMap(gridXYZ{g: spec.Grid}, pal)
	hm.Min = scale.Min
	hm.Max = scale.Max
	hm.Underflow = colors[0]
	hm.Overflow = colors[len(colors)-1]
	heat.Add(hm)

	if spec.Highlight != nil {
		heat.Add(&regionOutline{
			Region: *spec.Highlight,
			LineStyle: draw.LineStyle{
				Color: cfg.HighlightColor,
				Width: vg.Points(cfg.HighlightWidth),
			},
		})
	}

	if spec.Annotated(cfg.MaxAnnotatedCells) {
		labels, err := cellLabelPlotter(spec.Grid, cfg)
		if err != nil {
			return nil, nil, err
		}
		heat.Add(labels)
	}

	cm.SetMin(scale.Min)
	cm.SetMax(scale.Max)

	bar = plot.New()
	styleAxes(bar, cfg)
	bar.HideX()
	bar.Y.Label.Text = cfg.UnitLabel
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: len(colors)})

	return heat, bar, nil
}

func cellLabelPlotter(g *Grid, cfg RenderConfig) (*plotter.Labels, error) {
	cells := CellLabels(g)
	xys := make(plotter.XYs, len(cells))
	texts := make([]string, len(cells))
	for i, cl := range cells {
		xys[i] = plotter.XY{X: float64(cl.Col), Y: float64(cl.Row)}
		texts[i] = cl.Text
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, fmt.Errorf("cell labels: %w", err)
	}
	for i, cl := range cells {
		sty := &labels.TextStyle[i]
		sty.Font.Typeface = cfg.Typeface
		sty.Font.Variant = cfg.Variant
		sty.Font.Weight = xfont.WeightBold
		sty.Font.Size = vg.Points(cfg.FontSize - 1)
		sty.XAlign = draw.XCenter
		sty.YAlign = draw.YCenter
		sty.Color = color.Black
		if cl.Light {
			sty.Color = color.White
		}
	}
	return labels, nil
}

func styleAxes(p *plot.Plot, cfg RenderConfig) {
	set := func(f *font.Font, size float64) {
		f.Typeface = cfg.Typeface
		f.Variant = cfg.Variant
		f.Size = vg.Points(size)
	}
	set(&p.Title.TextStyle.Font, cfg.FontSize+2)
	set(&p.X.Label.TextStyle.Font, cfg.FontSize)
	set(&p.Y.Label.TextStyle.Font, cfg.FontSize)
	set(&p.X.Tick.Label.Font, cfg.FontSize-1)
	set(&p.Y.Tick.Label.Font, cfg.FontSize-1)
}

// CellTicks places ticks on whole cell indices, thinned to roughly Max ticks
// per axis (10 when Max is zero).
type CellTicks struct {
	Max int
}

func (t CellTicks) Ticks(min, max float64) []plot.Tick {
	lo, hi := math.Ceil(min), math.Floor(max)
	if hi < lo {
		return nil
	}
	n := t.Max
	if n <= 0 {
		n = 10
	}
	step := niceStep((hi - lo) / float64(n))

	var ticks []plot.Tick
	for v := math.Ceil(lo/step) * step; v <= hi; v += step {
		ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf("%.0f", v)})
	}
	return ticks
}

// niceStep rounds raw up to 1, 2 or 5 times a power of ten, never below 1.
func niceStep(raw float64) float64 {
	if raw <= 1 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5} {
		if m*mag >= raw {
			return m * mag
		}
	}
	return 10 * mag
}

// gridXYZ presents a Grid to plotter.HeatMap with columns on X and rows on Y.
type gridXYZ struct {
	g *Grid
}

func (x gridXYZ) Dims() (c, r int)   { return x.g.Cols(), x.g.Rows() }
func (x gridXYZ) Z(c, r int) float64 { return x.g.At(r, c) }
func (x gridXYZ) X(c int) float64    { return float64(c) }
func (x gridXYZ) Y(r int) float64    { return float64(r) }

// regionOutline strokes the border of a region in cell coordinates.
type regionOutline struct {
	Region Region
	draw.LineStyle
}

func (o *regionOutline) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	x0 := float64(o.Region.X) - 0.5
	y0 := float64(o.Region.Y) - 0.5
	x1 := x0 + float64(o.Region.Width)
	y1 := y0 + float64(o.Region.Height)

	pts := []vg.Point{
		{X: trX(x0), Y: trY(y0)},
		{X: trX(x1), Y: trY(y0)},
		{X: trX(x1), Y: trY(y1)},
		{X: trX(x0), Y: trY(y1)},
		{X: trX(x0), Y: trY(y0)},
	}
	c.StrokeLines(o.LineStyle, c.ClipLinesXY(pts)...)
}
