package heatmap

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Mode selects one of the fixed figure layouts.
type Mode int

const (
	// ModeSingle is the original grid alone.
	ModeSingle Mode = iota
	// ModeSingleRollingDiff is the original grid beside its smoothed copies,
	// each with its own colour scale.
	ModeSingleRollingDiff
	// ModeSingleRollingSame is ModeSingleRollingDiff on the original grid's scale.
	ModeSingleRollingSame
	// ModeWhole is the full grid with the region outlined above a zoom of the region.
	ModeWhole
	// ModeWholeRollingDiff puts the full grids on the top row and their regions
	// below, every panel on its own scale.
	ModeWholeRollingDiff
	// ModeWholeRollingSame is ModeWholeRollingDiff with grouped scales.
	ModeWholeRollingSame
)

var modeNames = [...]struct{ name, suffix string }{
	ModeSingle:            {"single", "-heatmap-s"},
	ModeSingleRollingDiff: {"single_rolling_diff", "-heatmap-sdu"},
	ModeSingleRollingSame: {"single_rolling_same", "-heatmap-ssu"},
	ModeWhole:             {"whole", "-heatmap-w"},
	ModeWholeRollingDiff:  {"whole_rolling_diff", "-heatmap-wdu"},
	ModeWholeRollingSame:  {"whole_rolling_same", "-heatmap-wsu"},
}

// Modes lists every layout mode in a stable order.
func Modes() []Mode {
	out := make([]Mode, len(modeNames))
	for i := range modeNames {
		out[i] = Mode(i)
	}
	return out
}

func (m Mode) valid() bool { return m >= 0 && int(m) < len(modeNames) }

func (m Mode) String() string {
	if !m.valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m].name
}

// Suffix is appended to the data file name to form the output name.
func (m Mode) Suffix() string {
	if !m.valid() {
		return ""
	}
	return modeNames[m].suffix
}

// ParseMode accepts a mode name ("whole_rolling_same") or its short suffix
// code ("wsu"). Hyphens and underscores are interchangeable.
func ParseMode(s string) (Mode, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, n := range modeNames {
		if key == n.name || key == strings.TrimPrefix(n.suffix, "-heatmap-") {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownMode, s)
}

// OutputPath derives the figure path for mode from the data file path:
// the extension is replaced by the mode suffix and ".png".
func OutputPath(dataPath string, mode Mode) string {
	base := strings.TrimSuffix(dataPath, filepath.Ext(dataPath))
	return base + mode.Suffix() + ".png"
}

// Request is everything one pipeline run needs. It is built once by a driver
// and never modified by the pipeline.
type Request struct {
	DataPath   string
	Delimiter  string  // empty means DefaultDelimiter
	Windows    []int   // empty means DefaultWindows
	Region     *Region // nil means DefaultRegion
	HideValues bool
	Subject    string // figure title prefix, "Cobalt Loading" when empty
	OutputPath string // overrides the derived output path
	Render     RenderConfig
}

func (r Request) delimiter() string {
	if r.Delimiter == "" {
		return DefaultDelimiter
	}
	return r.Delimiter
}

func (r Request) windows() []int {
	if len(r.Windows) == 0 {
		return DefaultWindows
	}
	return r.Windows
}

func (r Request) subject() string {
	if r.Subject == "" {
		return "Cobalt Loading"
	}
	return r.Subject
}

func (r Request) region(rows, cols int) Region {
	if r.Region != nil {
		return *r.Region
	}
	return DefaultRegion(rows, cols)
}

func (r Request) output(mode Mode) (string, error) {
	if r.OutputPath != "" {
		return r.OutputPath, nil
	}
	if r.DataPath == "" {
		return "", ErrNoOutputPath
	}
	return OutputPath(r.DataPath, mode), nil
}

// Layout is a fully resolved figure: panels in row-major order on a
// Rows x Cols tiling.
type Layout struct {
	Mode          Mode
	Rows, Cols    int
	Panels        []PanelSpec
	Title         string
	Width, Height vg.Length
}

// panelWidth and panelHeight size the rolling layouts per tile.
const (
	panelWidth  = 6 * vg.Inch
	panelHeight = 6 * vg.Inch
)

// BuildLayout arranges g into the panels of mode. It does no drawing.
func BuildLayout(mode Mode, g *Grid, req Request) (Layout, error) {
	if !mode.valid() {
		return Layout{}, fmt.Errorf("%w: %v", ErrUnknownMode, mode)
	}
	show := !req.HideValues
	windows := req.windows()

	switch mode {
	case ModeSingle:
		return Layout{
			Mode: mode, Rows: 1, Cols: 1,
			Width: 8 * vg.Inch, Height: 6 * vg.Inch,
			Panels: []PanelSpec{{Grid: g, Title: "Original Data", Scale: ScaleOf(g), ShowValues: show}},
		}, nil

	case ModeSingleRollingDiff, ModeSingleRollingSame:
		grids, err := SmoothAll(g, windows)
		if err != nil {
			return Layout{}, err
		}
		policy, title := ScaleAuto, "Analysis - Side by Side Comparison"
		if mode == ModeSingleRollingSame {
			policy, title = ScaleGlobal, "Analysis - Unified Color Scale"
		}
		scales, err := ResolveScales(policy, PanelSet{Full: grids})
		if err != nil {
			return Layout{}, err
		}
		l := Layout{
			Mode: mode, Rows: 1, Cols: len(grids),
			Width:  panelWidth * vg.Length(len(grids)),
			Height: panelHeight,
			Title:  req.subject() + " " + title,
		}
		for i, sg := range grids {
			l.Panels = append(l.Panels, PanelSpec{
				Grid: sg, Title: smoothedTitle(i, windows), Scale: scales.Full[i], ShowValues: show,
			})
		}
		return l, nil

	case ModeWhole:
		r := req.region(g.Dims())
		sub, err := Extract(g, r)
		if err != nil {
			return Layout{}, err
		}
		return Layout{
			Mode: mode, Rows: 2, Cols: 1,
			Width: 10 * vg.Inch, Height: 12 * vg.Inch,
			Title: "Custom Region Analysis",
			Panels: []PanelSpec{
				{Grid: g, Title: "Full Heatmap with Marked Region", Scale: ScaleOf(g), Highlight: &r},
				{Grid: sub, Title: "Zoomed Region: " + r.String(), Scale: ScaleOf(sub), ShowValues: show},
			},
		}, nil
	}

	// Whole grid with rolling averages.
	r := req.region(g.Dims())
	grids, err := SmoothAll(g, windows)
	if err != nil {
		return Layout{}, err
	}
	regions, err := ExtractAll(grids, r)
	if err != nil {
		return Layout{}, err
	}
	policy, title := ScaleAuto, "Analysis with Independent Color Scales"
	if mode == ModeWholeRollingSame {
		policy, title = ScaleGrouped, "Analysis with Grouped Color Scales"
	}
	scales, err := ResolveScales(policy, PanelSet{Full: grids, Region: regions})
	if err != nil {
		return Layout{}, err
	}

	l := Layout{
		Mode: mode, Rows: 2, Cols: len(grids),
		Width:  panelWidth * vg.Length(len(grids)),
		Height: 2 * panelHeight,
		Title:  req.subject() + " " + title,
	}
	for i, sg := range grids {
		l.Panels = append(l.Panels, PanelSpec{
			Grid: sg, Title: smoothedTitle(i, windows), Scale: scales.Full[i], Highlight: &r, ShowValues: show,
		})
	}
	for i, rg := range regions {
		name := "Original"
		if i > 0 {
			name = fmt.Sprintf("%d×%d", windows[i-1], windows[i-1])
		}
		l.Panels = append(l.Panels, PanelSpec{
			Grid: rg, Title: fmt.Sprintf("%s Region (%s)", name, r.Size()), Scale: scales.Region[i], ShowValues: show,
		})
	}
	return l, nil
}

// smoothedTitle names panel i of a SmoothAll result.
func smoothedTitle(i int, windows []int) string {
	if i == 0 {
		return "Original Data"
	}
	w := windows[i-1]
	return fmt.Sprintf("%d×%d Rolling Average", w, w)
}

// Composer draws layouts and writes them to disk.
type Composer struct {
	log *zap.Logger
}

// NewComposer returns a Composer that reports progress to log at debug level.
// A nil logger discards everything.
func NewComposer(log *zap.Logger) *Composer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Composer{log: log}
}

// Run loads the request's data file and composes mode from it.
func (c *Composer) Run(mode Mode, req Request) (string, error) {
	g, err := c.load(req)
	if err != nil {
		return "", err
	}
	return c.Compose(mode, g, req)
}

// RunAll loads the data file once and composes every mode in modes. It stops
// at the first failure and returns the paths written so far.
func (c *Composer) RunAll(modes []Mode, req Request) ([]string, error) {
	g, err := c.load(req)
	if err != nil {
		return nil, err
	}
	req.OutputPath = ""
	var written []string
	for _, m := range modes {
		out, err := c.Compose(m, g, req)
		if err != nil {
			return written, err
		}
		written = append(written, out)
	}
	return written, nil
}

func (c *Composer) load(req Request) (*Grid, error) {
	start := time.Now()
	g, err := Load(req.DataPath, req.delimiter())
	if err != nil {
		return nil, err
	}
	rows, cols := g.Dims()
	c.log.Debug("grid loaded",
		zap.String("path", req.DataPath),
		zap.Int("rows", rows),
		zap.Int("cols", cols),
		zap.Duration("took", time.Since(start)))
	return g, nil
}

// Compose renders mode for g and writes the PNG. It returns the path written.
// On failure no file is left at the output path.
func (c *Composer) Compose(mode Mode, g *Grid, req Request) (string, error) {
	out, err := req.output(mode)
	if err != nil {
		return "", err
	}

	start := time.Now()
	layout, err := BuildLayout(mode, g, req)
	if err != nil {
		return "", err
	}
	img, err := drawLayout(layout, req.Render)
	if err != nil {
		return "", &RenderError{Path: out, Err: err}
	}
	c.log.Debug("figure drawn",
		zap.Stringer("mode", mode),
		zap.Int("panels", len(layout.Panels)),
		zap.Duration("took", time.Since(start)))

	start = time.Now()
	if err := writePNG(out, img); err != nil {
		return "", &RenderError{Path: out, Err: err}
	}
	c.log.Debug("figure saved", zap.String("path", out), zap.Duration("took", time.Since(start)))
	return out, nil
}

// drawLayout renders every panel of l onto one in-memory image.
func drawLayout(l Layout, cfg RenderConfig) (img image.Image, err error) {
	cfg = cfg.withDefaults()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plot backend: %v", r)
		}
	}()

	canvas := vgimg.NewWith(vgimg.UseWH(l.Width, l.Height), vgimg.UseDPI(cfg.DPI))
	dc := draw.New(canvas)

	body := dc
	if l.Title != "" {
		titleH := vg.Points(cfg.FontSize * 3)
		drawTitle(dc, l.Title, cfg)
		body = draw.Crop(dc, 0, 0, 0, -titleH)
	}

	pad := vg.Points(cfg.FontSize)
	tiles := draw.Tiles{
		Rows: l.Rows, Cols: l.Cols,
		PadX: pad, PadY: pad,
		PadTop: pad / 2, PadBottom: pad / 2, PadLeft: pad / 2, PadRight: pad / 2,
	}
	for i, p := range l.Panels {
		tc := tiles.At(body, i%l.Cols, i/l.Cols)
		if err := RenderPanel(tc, p, cfg); err != nil {
			return nil, fmt.Errorf("panel %d %q: %w", i, p.Title, err)
		}
	}
	return canvas.Image(), nil
}

func drawTitle(dc draw.Canvas, title string, cfg RenderConfig) {
	sty := text.Style{
		Color:   color.Black,
		Font:    font.From(font.Font{Typeface: cfg.Typeface, Variant: cfg.Variant}, vg.Points(cfg.FontSize+6)),
		XAlign:  draw.XCenter,
		YAlign:  draw.YTop,
		Handler: plot.DefaultTextHandler,
	}
	pt := vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - vg.Points(cfg.FontSize/2)}
	dc.FillText(sty, pt, title)
}

// writePNG encodes img next to path and renames it into place, so a failed
// write never leaves a partial file at path.
func writePNG(path string, img image.Image) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err = png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
