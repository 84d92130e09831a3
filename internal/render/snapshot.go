package render

import (
	"fmt"

	"github.com/san-kum/pinnviz/internal/colormap"
	"github.com/san-kum/pinnviz/internal/field"
	"gonum.org/v1/plot/vg/draw"
)

// SnapshotFrame picks the time index at fraction of the time extent.
func SnapshotFrame(shape field.Shape, fraction float64) int {
	return field.FractionIndex(shape.NT, fraction)
}

// SnapshotTitle labels frame tf in seconds, with time indices read as milliseconds.
func SnapshotTitle(tf int) string {
	return fmt.Sprintf("Prediction at %ss", pyFloat(float64(tf)/1000))
}

// Snapshot writes "<prefix>_Snapshot_2.<format>": the predicted field at the
// snapshot frame on the fixed prediction color scale.
func (r *Renderer) Snapshot(rec *field.Reconstruction) (string, int, error) {
	tf := SnapshotFrame(rec.Pred.Shape(), r.cfg.Snapshot.TimeFraction)
	frame, err := rec.Pred.Frame(tf)
	if err != nil {
		return "", 0, err
	}

	cm := colormap.NewJet(rec.PredMin, rec.PredMax)
	p := heatPlot(frame, cm, SnapshotTitle(tf), "X", "Y")
	bar := colorBarPlot(cm, "V")

	path := ArtifactPath(r.cfg.Prefix, SnapshotName, FormatExt(r.cfg.Format))
	err = writeFigure(path, r.cfg.Format, r.width(), r.height(), r.cfg.DPI, func(c draw.Canvas) error {
		body, strip := splitColorBar(c)
		p.Draw(body)
		bar.Draw(strip)
		return nil
	})
	if err != nil {
		return "", 0, fmt.Errorf("save snapshot: %w", err)
	}
	return path, tf, nil
}
