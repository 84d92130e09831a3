// Package render draws the diagnostics of a PINN voltage reconstruction:
// the action potential of one cell, a snapshot of the predicted field and an
// optional ground truth vs prediction animation.
package render

import (
	"context"
	"fmt"

	"github.com/san-kum/pinnviz/internal/config"
	"github.com/san-kum/pinnviz/internal/field"
	"github.com/san-kum/pinnviz/internal/metrics"
	"gonum.org/v1/plot/vg"
)

// Input is everything a PINN run hands over for plotting.
type Input struct {
	Vsav  *field.Grid
	Train field.Split
	Test  field.Split
	// AllT is the time axis; only its length is used. Nil means Vsav's NT.
	AllT []float64
}

// Report describes one PlotResults call.
type Report struct {
	Prefix        string
	Shape         field.Shape
	CellX         int
	CellY         int
	SnapshotFrame int
	PredMin       float64
	PredMax       float64
	Observed      int
	Frames        int
	Metrics       map[string]float64
	Artifacts     []string
}

type Renderer struct {
	cfg       *config.Config
	reorderer *field.Reorderer
}

func New(cfg *config.Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	ro, err := field.NewReorderer(cfg.Reorder.SortColumns, cfg.Reorder.Sentinel)
	if err != nil {
		return nil, err
	}
	return &Renderer{cfg: cfg.Clone(), reorderer: ro}, nil
}

func (r *Renderer) Config() *config.Config {
	return r.cfg.Clone()
}

func (r *Renderer) width() vg.Length {
	return vg.Length(r.cfg.WidthInches) * vg.Inch
}

func (r *Renderer) height() vg.Length {
	return vg.Length(r.cfg.HeightInches) * vg.Inch
}

// Reconstruct rebuilds the prediction and observation grids on Vsav's shape.
func (r *Renderer) Reconstruct(in Input) (*field.Reconstruction, error) {
	if in.Vsav == nil {
		return nil, fmt.Errorf("ground truth grid is missing")
	}
	return r.reorderer.Reorder(in.Vsav.Shape(), in.Train, in.Test)
}

// Inspection is everything PlotResults would draw, without the drawing.
type Inspection struct {
	Report *Report
	Rec    *field.Reconstruction
	Series *TraceSeries
}

// Inspect reconstructs the grids and computes the report fields, the cell
// trace and the error metrics. No files are written.
func (r *Renderer) Inspect(in Input) (*Inspection, error) {
	rec, err := r.Reconstruct(in)
	if err != nil {
		return nil, fmt.Errorf("reconstruct: %w", err)
	}

	scores, err := metrics.Compare(in.Vsav, rec.Pred)
	if err != nil {
		return nil, err
	}
	series, err := ActionPotentialSeries(in.Vsav, rec, in.AllT, r.cfg.ActionPotential.CellFraction)
	if err != nil {
		return nil, err
	}

	return &Inspection{
		Report: &Report{
			Prefix:        r.cfg.Prefix,
			Shape:         in.Vsav.Shape(),
			CellX:         series.CellX,
			CellY:         series.CellY,
			SnapshotFrame: SnapshotFrame(in.Vsav.Shape(), r.cfg.Snapshot.TimeFraction),
			PredMin:       rec.PredMin,
			PredMax:       rec.PredMax,
			Observed:      rec.ObservedCount(),
			Metrics:       scores,
		},
		Rec:    rec,
		Series: series,
	}, nil
}

// PlotResults reconstructs the grids and writes every artifact in turn:
// action potential, snapshot, then the animation when enabled.
func (r *Renderer) PlotResults(ctx context.Context, in Input) (*Report, error) {
	rec, err := r.Reconstruct(in)
	if err != nil {
		return nil, fmt.Errorf("reconstruct: %w", err)
	}

	scores, err := metrics.Compare(in.Vsav, rec.Pred)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Prefix:   r.cfg.Prefix,
		Shape:    in.Vsav.Shape(),
		PredMin:  rec.PredMin,
		PredMax:  rec.PredMax,
		Observed: rec.ObservedCount(),
		Metrics:  scores,
	}

	path, series, err := r.ActionPotential(in.Vsav, rec, in.AllT)
	if err != nil {
		return nil, err
	}
	rep.CellX, rep.CellY = series.CellX, series.CellY
	rep.Artifacts = append(rep.Artifacts, path)
	Logf("wrote %s", path)

	path, tf, err := r.Snapshot(rec)
	if err != nil {
		return nil, err
	}
	rep.SnapshotFrame = tf
	rep.Artifacts = append(rep.Artifacts, path)
	Logf("wrote %s", path)

	if r.cfg.HTML {
		for _, write := range []func() (string, error){
			func() (string, error) { return r.ActionPotentialHTML(series) },
			func() (string, error) { return r.SnapshotHTML(rec, tf) },
		} {
			path, err := write()
			if err != nil {
				return nil, err
			}
			rep.Artifacts = append(rep.Artifacts, path)
			Logf("wrote %s", path)
		}
	}

	if r.cfg.Animation.Enabled {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, n, err := r.Animation(ctx, in.Vsav, rec)
		if err != nil {
			return nil, fmt.Errorf("animation: %w", err)
		}
		rep.Frames = n
		rep.Artifacts = append(rep.Artifacts, path)
		Logf("wrote %s (%d frames)", path, n)
	}

	return rep, nil
}
