package field

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Sentinel marks a grid point without an observation.
const Sentinel = 999.0

// DefaultSortColumns orders coordinate rows by column 2, then 0, then 1.
var DefaultSortColumns = []int{2, 0, 1}

// Split is one set of coordinate rows (x, y, t) with the value at each row.
type Split struct {
	Coords [][]float64
	Values []float64
}

func (s Split) Len() int {
	return len(s.Coords)
}

func (s Split) validate(name string) error {
	if len(s.Coords) != len(s.Values) {
		return fmt.Errorf("%s: %d coordinates, %d values: %w", name, len(s.Coords), len(s.Values), ErrRowMismatch)
	}
	for i, c := range s.Coords {
		if len(c) < 3 {
			return fmt.Errorf("%s row %d: %w", name, i, ErrBadCoordinate)
		}
	}
	return nil
}

// Observation is a non-sentinel value on a cell's time axis.
type Observation struct {
	T int
	V float64
}

// Reconstruction holds the prediction and observation grids rebuilt from
// scattered rows, plus the color bounds taken from the test predictions.
type Reconstruction struct {
	Pred     *Grid
	Observed *Grid
	PredMin  float64
	PredMax  float64
	Sentinel float64
}

// ObservedAt lists the observed points of one cell, skipping sentinel values.
func (r *Reconstruction) ObservedAt(x, y int) ([]Observation, error) {
	trace, err := r.Observed.Trace(x, y)
	if err != nil {
		return nil, err
	}
	var out []Observation
	for t, v := range trace {
		if v == r.Sentinel {
			continue
		}
		out = append(out, Observation{T: t, V: v})
	}
	return out, nil
}

// ObservedCount counts non-sentinel points in the whole observation grid.
func (r *Reconstruction) ObservedCount() int {
	n := 0
	for _, v := range r.Observed.Data {
		if v != r.Sentinel {
			n++
		}
	}
	return n
}

type row struct {
	coord [3]float64
	pred  float64
	obs   float64
}

// Reorderer merges train and test rows back into dense grids.
type Reorderer struct {
	sortColumns []int
	sentinel    float64
}

func NewReorderer(sortColumns []int, sentinel float64) (*Reorderer, error) {
	if err := ValidateSortColumns(sortColumns); err != nil {
		return nil, err
	}
	cols := make([]int, len(sortColumns))
	copy(cols, sortColumns)
	return &Reorderer{sortColumns: cols, sentinel: sentinel}, nil
}

// DefaultReorderer uses DefaultSortColumns and Sentinel.
func DefaultReorderer() *Reorderer {
	r, _ := NewReorderer(DefaultSortColumns, Sentinel)
	return r
}

// ValidateSortColumns checks that columns name distinct coordinate columns.
func ValidateSortColumns(columns []int) error {
	if len(columns) == 0 {
		return fmt.Errorf("sort columns: empty key")
	}
	seen := [3]bool{}
	for _, c := range columns {
		if c < 0 || c > 2 {
			return fmt.Errorf("sort columns: column %d out of range [0, 2]", c)
		}
		if seen[c] {
			return fmt.Errorf("sort columns: column %d repeated", c)
		}
		seen[c] = true
	}
	return nil
}

// Reorder stacks train rows over test rows, sorts them by the composite key
// and reshapes the value column into shape. Test rows contribute their
// predictions to Pred and the sentinel to Observed.
func (r *Reorderer) Reorder(shape Shape, train, test Split) (*Reconstruction, error) {
	if err := train.validate("train"); err != nil {
		return nil, err
	}
	if err := test.validate("test"); err != nil {
		return nil, err
	}
	if len(test.Values) == 0 {
		return nil, ErrEmptyPrediction
	}

	total := train.Len() + test.Len()
	if total != shape.Size() {
		return nil, &ReshapeError{Shape: shape, Got: total}
	}

	rows := make([]row, 0, total)
	for i, c := range train.Coords {
		rows = append(rows, row{coord: [3]float64{c[0], c[1], c[2]}, pred: train.Values[i], obs: train.Values[i]})
	}
	for i, c := range test.Coords {
		rows = append(rows, row{coord: [3]float64{c[0], c[1], c[2]}, pred: test.Values[i], obs: r.sentinel})
	}

	slices.SortStableFunc(rows, func(a, b row) int {
		for _, col := range r.sortColumns {
			if c := cmp.Compare(a.coord[col], b.coord[col]); c != 0 {
				return c
			}
		}
		return 0
	})

	pred := make([]float64, total)
	obs := make([]float64, total)
	for i, rw := range rows {
		pred[i] = rw.pred
		obs[i] = rw.obs
	}

	predGrid, err := FromValues(shape, pred)
	if err != nil {
		return nil, err
	}
	obsGrid, err := FromValues(shape, obs)
	if err != nil {
		return nil, err
	}

	return &Reconstruction{
		Pred:     predGrid,
		Observed: obsGrid,
		PredMin:  floats.Min(test.Values),
		PredMax:  floats.Max(test.Values),
		Sentinel: r.sentinel,
	}, nil
}
