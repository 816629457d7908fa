package filestat

import (
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// pieTypes is the number of extensions shown before the rest become "other".
const pieTypes = 8

// WriteReport renders st as a standalone HTML page with three charts: the
// file-type split, the largest files in MB and the file count per type.
func WriteReport(w io.Writer, st *Stats) error {
	summary := fmt.Sprintf("root=%s total files=%d hidden files=%d", st.Root, st.TotalFiles, st.HiddenFiles)
	types := st.TopTypes(pieTypes)

	page := components.NewPage()
	page.PageTitle = "Folder Analysis Report"
	page.AddCharts(
		typePie(types, summary),
		largestBar(st.Largest),
		typeCountBar(types),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func typePie(types []TypeCount, summary string) *charts.Pie {
	data := make([]opts.PieData, len(types))
	for i, tc := range types {
		data[i] = opts.PieData{Name: tc.Ext, Value: tc.Count}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "File Type Distribution", Subtitle: summary}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("types", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
	)
	return pie
}

func largestBar(files []FileSize) *charts.Bar {
	names := make([]string, len(files))
	data := make([]opts.BarData, len(files))
	// Reversed so the largest file ends up at the top once the axes are swapped.
	for i, f := range files {
		j := len(files) - 1 - i
		names[j] = filepath.Base(f.Path)
		data[j] = opts.BarData{
			Name:  fmt.Sprintf("%s (%s)", f.Path, HumanSize(f.Size)),
			Value: math.Round(float64(f.Size)/1024/1024*100) / 100,
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Largest %d Files", len(files))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "MB"}),
	)
	bar.SetXAxis(names).
		AddSeries("size", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}),
		)
	bar.XYReversal()
	return bar
}

func typeCountBar(types []TypeCount) *charts.Bar {
	names := make([]string, len(types))
	data := make([]opts.BarData, len(types))
	for i, tc := range types {
		names[i] = tc.Ext
		data[i] = opts.BarData{Value: tc.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Files per Type"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)
	bar.SetXAxis(names).
		AddSeries("count", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
