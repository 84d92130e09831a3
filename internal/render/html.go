package render

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/san-kum/pinnviz/internal/colormap"
	"github.com/san-kum/pinnviz/internal/field"
)

const htmlExt = ".html"

type renderer interface {
	Render(w io.Writer) error
}

func writeChart(path string, chart renderer) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chart.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

// ActionPotentialHTML writes an interactive line chart of s next to the raster plot.
func (r *Renderer) ActionPotentialHTML(s *TraceSeries) (string, error) {
	xs := make([]int, len(s.Truth))
	truth := make([]opts.LineData, len(s.Truth))
	pred := make([]opts.LineData, len(s.Pred))
	for i := range s.Truth {
		xs[i] = i
		truth[i] = opts.LineData{Value: s.Truth[i].Y}
		pred[i] = opts.LineData{Value: s.Pred[i].Y}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Action Potential", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: s.Title()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (ms)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "V", NameLocation: "middle", NameGap: 40}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	line.SetXAxis(xs).
		AddSeries("Ground Truth", truth,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#1f77b4"}),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		).
		AddSeries("Prediction", pred,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff7f0e"}),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)

	if len(s.Observed) > 0 {
		obs := make([]opts.ScatterData, len(s.Observed))
		for i, o := range s.Observed {
			obs[i] = opts.ScatterData{Value: []interface{}{int(o.X), o.Y}}
		}
		scatter := charts.NewScatter()
		scatter.AddSeries("Observed", obs,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "red"}),
		)
		line.Overlap(scatter)
	}

	path := ArtifactPath(r.cfg.Prefix, ActionPotentialName, htmlExt)
	if err := writeChart(path, line); err != nil {
		return "", err
	}
	return path, nil
}

// SnapshotHTML writes an interactive heatmap of the prediction at frame tf,
// with the visual map pinned to the prediction bounds.
func (r *Renderer) SnapshotHTML(rec *field.Reconstruction, tf int) (string, error) {
	frame, err := rec.Pred.Frame(tf)
	if err != nil {
		return "", err
	}
	shape := rec.Pred.Shape()
	xs := make([]int, shape.NX)
	for i := range xs {
		xs[i] = i
	}
	ys := make([]int, shape.NY)
	for i := range ys {
		ys[i] = i
	}

	data := make([]opts.HeatMapData, 0, shape.NX*shape.NY)
	for x := range frame {
		for y, v := range frame[x] {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{x, y, v}})
		}
	}

	lo, hi := colormap.Nonsingular(rec.PredMin, rec.PredMax)
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Snapshot", Width: "800px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: SnapshotTitle(tf)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X", Type: "category", Data: xs}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y", Type: "category", Data: ys}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Right:      "0",
			Top:        "center",
			InRange:    &opts.VisualMapInRange{Color: colormap.Hex(11)},
		}),
	)
	hm.SetXAxis(xs).AddSeries("V", data)

	path := ArtifactPath(r.cfg.Prefix, SnapshotName, htmlExt)
	if err := writeChart(path, hm); err != nil {
		return "", err
	}
	return path, nil
}
