package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/pinnviz/internal/render"
)

// Summary is a panel with the figures a report describes, for the terminal.
func Summary(rep *render.Report) string {
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s %s\n", MetricLabel.Render(fmt.Sprintf("%-14s", label)), MetricValue.Render(value)))
	}

	b.WriteString(Title.Render("PINN reconstruction") + "\n")
	row("shape", rep.Shape.String())
	row("cell", fmt.Sprintf("(%d, %d)", rep.CellX, rep.CellY))
	row("snapshot", fmt.Sprintf("t=%d", rep.SnapshotFrame))
	row("pred range", fmt.Sprintf("[%s, %s]", formatValue(rep.PredMin), formatValue(rep.PredMax)))
	row("observed", fmt.Sprintf("%d", rep.Observed))
	if rep.Frames > 0 {
		row("frames", fmt.Sprintf("%d", rep.Frames))
	}

	if len(rep.Metrics) > 0 {
		b.WriteString(Separator(32) + "\n")
		names := make([]string, 0, len(rep.Metrics))
		for name := range rep.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			row(name, formatValue(rep.Metrics[name]))
		}
	}

	if len(rep.Artifacts) > 0 {
		b.WriteString(Separator(32) + "\n")
		for _, path := range rep.Artifacts {
			b.WriteString(Subtle.Render(path) + "\n")
		}
	}
	return Panel.Render(strings.TrimSuffix(b.String(), "\n"))
}
