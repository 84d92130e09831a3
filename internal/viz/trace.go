package viz

import (
	"fmt"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pinnviz/internal/render"
)

// Trace plots ground truth and prediction at the series' cell. Observed
// samples are counted in the caption since asciigraph has no markers.
func Trace(s *render.TraceSeries, width, height int) string {
	if len(s.Truth) == 0 {
		return ""
	}
	truth := make([]float64, len(s.Truth))
	pred := make([]float64, len(s.Pred))
	for i := range s.Truth {
		truth[i] = s.Truth[i].Y
	}
	for i := range s.Pred {
		pred[i] = s.Pred[i].Y
	}

	caption := fmt.Sprintf("%s, %d observed", s.Title(), len(s.Observed))
	return asciigraph.PlotMany([][]float64{truth, pred},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Orange),
		asciigraph.SeriesLegends("Ground Truth", "Prediction"),
		asciigraph.Caption(caption),
	)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
