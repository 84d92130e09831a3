package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/pinnviz/internal/colormap"
)

const heatCell = "██"

// Heat renders frame[x][y] as colored blocks, one row per x like the raster
// snapshot. Grids larger than maxRows x maxCols are sampled by stride.
// NaN cells are left blank.
func Heat(frame [][]float64, cm *colormap.Jet, maxRows, maxCols int) string {
	if len(frame) == 0 || len(frame[0]) == 0 {
		return ""
	}
	rowStep := stride(len(frame), maxRows)
	colStep := stride(len(frame[0]), maxCols)

	styles := make(map[string]lipgloss.Style)
	var b strings.Builder
	for x := 0; x < len(frame); x += rowStep {
		for y := 0; y < len(frame[x]); y += colStep {
			v := frame[x][y]
			if math.IsNaN(v) {
				b.WriteString("  ")
				continue
			}
			hex := colormap.ToHex(colormap.JetColor(cm.Norm(v)))
			st, ok := styles[hex]
			if !ok {
				st = lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
				styles[hex] = st
			}
			b.WriteString(st.Render(heatCell))
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// ColorBar is a one-line legend of the jet ramp between lo and hi.
func ColorBar(cm *colormap.Jet, width int) string {
	if width < 2 {
		width = 2
	}
	var b strings.Builder
	b.WriteString(MetricLabel.Render(formatValue(cm.Min())) + " ")
	for _, hex := range colormap.Hex(width) {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("█"))
	}
	b.WriteString(" " + MetricLabel.Render(formatValue(cm.Max())))
	return b.String()
}

func stride(n, limit int) int {
	if limit <= 0 || n <= limit {
		return 1
	}
	return (n + limit - 1) / limit
}
