package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/pinnviz/internal/colormap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

const (
	paletteSize   = 256
	colorBarWidth = 0.9 * vg.Inch
)

// Artifact names, appended to the caller's prefix.
const (
	ActionPotentialName = "Action_Potential"
	SnapshotName        = "Snapshot_2"
	AnimationName       = "New_2D_Animation"
)

// ArtifactPath joins prefix, name and extension as "<prefix>_<name><ext>".
func ArtifactPath(prefix, name, ext string) string {
	return prefix + "_" + name + ext
}

// FormatExt returns the file suffix for a raster or vector figure format.
func FormatExt(format string) string {
	return "." + format
}

func newCanvas(format string, w, h vg.Length, dpi int) (vg.CanvasWriterTo, error) {
	switch format {
	case "tiff":
		return vgimg.TiffCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))}, nil
	case "png":
		return vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))}, nil
	case "jpg":
		return vgimg.JpegCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))}, nil
	case "svg":
		return vgsvg.New(w, h), nil
	case "pdf":
		return vgpdf.New(w, h), nil
	default:
		return nil, fmt.Errorf("unsupported figure format %q", format)
	}
}

// writeFigure paints one figure and writes it to path in the given format.
func writeFigure(path, format string, w, h vg.Length, dpi int, paint func(draw.Canvas) error) error {
	c, err := newCanvas(format, w, h, dpi)
	if err != nil {
		return err
	}
	if err := paint(draw.New(c)); err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

// frameGrid adapts an [x][y] frame to plotter.GridXYZ with x along columns
// and y along rows, so row 0 sits at the bottom of the plot.
type frameGrid [][]float64

func (g frameGrid) Dims() (c, r int) { return len(g), len(g[0]) }
func (g frameGrid) Z(c, r int) float64 { return g[c][r] }
func (g frameGrid) X(c int) float64 { return float64(c) }
func (g frameGrid) Y(r int) float64 { return float64(r) }

// newHeatMap draws frame with a fixed color scale taken from cm. Values
// outside the scale take the end colors.
func newHeatMap(frame [][]float64, cm *colormap.Jet) *plotter.HeatMap {
	pal := cm.Palette(paletteSize)
	h := plotter.NewHeatMap(frameGrid(frame), pal)
	h.Min, h.Max = cm.Min(), cm.Max()
	cols := pal.Colors()
	h.Underflow = cols[0]
	h.Overflow = cols[len(cols)-1]
	h.Rasterized = true
	return h
}

func heatPlot(frame [][]float64, cm *colormap.Jet, title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(newHeatMap(frame, cm))
	return p
}

func colorBarPlot(cm palette.ColorMap, label string) *plot.Plot {
	p := plot.New()
	p.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true})
	p.HideX()
	p.Y.Padding = 0
	p.Y.Label.Text = label
	return p
}

// splitColorBar returns the plotting area and a strip on the right for a colorbar.
func splitColorBar(c draw.Canvas) (body, bar draw.Canvas) {
	width := c.Max.X - c.Min.X
	body = draw.Crop(c, 0, -colorBarWidth, 0, 0)
	bar = draw.Crop(c, width-colorBarWidth, 0, vg.Points(8), -vg.Points(20))
	return body, bar
}

func superTitle(c draw.Canvas, txt string) {
	sty := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, 14),
		Handler: plot.DefaultTextHandler,
		XAlign:  draw.XCenter,
		YAlign:  draw.YTop,
	}
	c.FillText(sty, vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: c.Max.Y - vg.Points(6)}, txt)
}

// pyFloat formats v the way Python's str() prints a float.
func pyFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}
