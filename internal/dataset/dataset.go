// Package dataset loads the arrays a PINN training run leaves behind:
// the ground truth field, the train and test coordinates with their values
// and the time axis.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/pinnviz/internal/field"
	"github.com/san-kum/pinnviz/internal/render"
)

var (
	ErrUnknownSource = errors.New("dataset: input must be a .json bundle or a CSV directory")
	ErrBadShape      = errors.New("dataset: shape must have three positive extents")
)

// Dataset is a loaded PINN run.
type Dataset struct {
	Vsav  *field.Grid
	Train field.Split
	Test  field.Split
	AllT  []float64
}

// Input hands the dataset to the renderer.
func (d *Dataset) Input() render.Input {
	return render.Input{
		Vsav:  d.Vsav,
		Train: d.Train,
		Test:  d.Test,
		AllT:  d.AllT,
	}
}

// Load reads a JSON bundle or a directory of CSV files.
func Load(path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return LoadCSVDir(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(path)
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnknownSource)
}

func shapeOf(dims []int) (field.Shape, error) {
	if len(dims) != 3 {
		return field.Shape{}, fmt.Errorf("got %d extents: %w", len(dims), ErrBadShape)
	}
	s := field.Shape{NX: dims[0], NY: dims[1], NT: dims[2]}
	if !s.Valid() {
		return field.Shape{}, fmt.Errorf("got %s: %w", s, ErrBadShape)
	}
	return s, nil
}
