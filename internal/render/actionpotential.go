package render

import (
	"fmt"
	"image/color"

	"github.com/san-kum/pinnviz/internal/field"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	truthColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	predColor     = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	observedColor = color.RGBA{R: 255, A: 255}
)

// TraceSeries is the data behind the action potential plot for one cell.
type TraceSeries struct {
	CellX, CellY int
	Truth        plotter.XYs
	Pred         plotter.XYs
	Observed     plotter.XYs
}

// Cell picks the representative cell at fraction of each spatial extent.
func Cell(shape field.Shape, fraction float64) (x, y int) {
	return field.FractionIndex(shape.NX, fraction), field.FractionIndex(shape.NY, fraction)
}

// ActionPotentialSeries collects ground truth, prediction and observed
// points of the representative cell. Observed points holding the sentinel
// are left out.
func ActionPotentialSeries(vsav *field.Grid, rec *field.Reconstruction, allT []float64, fraction float64) (*TraceSeries, error) {
	shape := vsav.Shape()
	if rec.Pred.Shape() != shape {
		return nil, fmt.Errorf("prediction %s vs ground truth %s: %w", rec.Pred.Shape(), shape, field.ErrShapeMismatch)
	}
	if allT != nil && len(allT) != shape.NT {
		return nil, fmt.Errorf("%d time points for %d frames: %w", len(allT), shape.NT, field.ErrShapeMismatch)
	}

	cx, cy := Cell(shape, fraction)
	truth, err := vsav.Trace(cx, cy)
	if err != nil {
		return nil, err
	}
	pred, err := rec.Pred.Trace(cx, cy)
	if err != nil {
		return nil, err
	}
	obs, err := rec.ObservedAt(cx, cy)
	if err != nil {
		return nil, err
	}

	s := &TraceSeries{
		CellX:    cx,
		CellY:    cy,
		Truth:    make(plotter.XYs, len(truth)),
		Pred:     make(plotter.XYs, len(pred)),
		Observed: make(plotter.XYs, len(obs)),
	}
	for t := range truth {
		s.Truth[t] = plotter.XY{X: float64(t), Y: truth[t]}
		s.Pred[t] = plotter.XY{X: float64(t), Y: pred[t]}
	}
	for i, o := range obs {
		s.Observed[i] = plotter.XY{X: float64(o.T), Y: o.V}
	}
	return s, nil
}

func (s *TraceSeries) Title() string {
	return fmt.Sprintf("Action Potential at (%d, %d) node", s.CellX, s.CellY)
}

func actionPotentialPlot(s *TraceSeries) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = s.Title()
	p.X.Label.Text = "Time (ms)"
	p.Y.Label.Text = "V"

	truthLine, err := plotter.NewLine(s.Truth)
	if err != nil {
		return nil, err
	}
	truthLine.Color = truthColor
	truthLine.Width = vg.Points(1.5)

	predLine, err := plotter.NewLine(s.Pred)
	if err != nil {
		return nil, err
	}
	predLine.Color = predColor
	predLine.Width = vg.Points(1.5)

	p.Add(truthLine, predLine)
	p.Legend.Add("Ground Truth", truthLine)
	p.Legend.Add("Prediction", predLine)

	if len(s.Observed) > 0 {
		marks, err := plotter.NewScatter(s.Observed)
		if err != nil {
			return nil, err
		}
		marks.GlyphStyle.Shape = draw.PlusGlyph{}
		marks.GlyphStyle.Color = observedColor
		marks.GlyphStyle.Radius = vg.Points(3)
		p.Add(marks)
		p.Legend.Add("Observed", marks)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// ActionPotential writes "<prefix>_Action_Potential.<format>".
func (r *Renderer) ActionPotential(vsav *field.Grid, rec *field.Reconstruction, allT []float64) (string, *TraceSeries, error) {
	s, err := ActionPotentialSeries(vsav, rec, allT, r.cfg.ActionPotential.CellFraction)
	if err != nil {
		return "", nil, err
	}
	p, err := actionPotentialPlot(s)
	if err != nil {
		return "", nil, err
	}

	path := ArtifactPath(r.cfg.Prefix, ActionPotentialName, FormatExt(r.cfg.Format))
	err = writeFigure(path, r.cfg.Format, r.width(), r.height(), r.cfg.DPI, func(c draw.Canvas) error {
		p.Draw(c)
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("save action potential plot: %w", err)
	}
	return path, s, nil
}
