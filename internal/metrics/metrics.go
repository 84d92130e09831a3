package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/pinnviz/internal/field"
)

// Metric accumulates a score over (truth, prediction) pairs.
type Metric interface {
	Name() string
	Observe(truth, pred float64)
	Value() float64
	Reset()
}

type RMSE struct {
	sum float64
	n   int
}

func NewRMSE() *RMSE { return &RMSE{} }

func (m *RMSE) Name() string { return "rmse" }

func (m *RMSE) Observe(truth, pred float64) {
	d := pred - truth
	m.sum += d * d
	m.n++
}

func (m *RMSE) Value() float64 {
	if m.n == 0 {
		return 0
	}
	return math.Sqrt(m.sum / float64(m.n))
}

func (m *RMSE) Reset() { m.sum, m.n = 0, 0 }

type MAE struct {
	sum float64
	n   int
}

func NewMAE() *MAE { return &MAE{} }

func (m *MAE) Name() string { return "mae" }

func (m *MAE) Observe(truth, pred float64) {
	m.sum += math.Abs(pred - truth)
	m.n++
}

func (m *MAE) Value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func (m *MAE) Reset() { m.sum, m.n = 0, 0 }

type MaxAbs struct {
	max float64
}

func NewMaxAbs() *MaxAbs { return &MaxAbs{} }

func (m *MaxAbs) Name() string { return "max_abs" }

func (m *MaxAbs) Observe(truth, pred float64) {
	m.max = math.Max(m.max, math.Abs(pred-truth))
}

func (m *MaxAbs) Value() float64 { return m.max }

func (m *MaxAbs) Reset() { m.max = 0 }

// RelL2 is ||pred - truth|| / ||truth||.
type RelL2 struct {
	diff, norm float64
}

func NewRelL2() *RelL2 { return &RelL2{} }

func (m *RelL2) Name() string { return "rel_l2" }

func (m *RelL2) Observe(truth, pred float64) {
	d := pred - truth
	m.diff += d * d
	m.norm += truth * truth
}

func (m *RelL2) Value() float64 {
	if m.norm == 0 {
		return 0
	}
	return math.Sqrt(m.diff / m.norm)
}

func (m *RelL2) Reset() { m.diff, m.norm = 0, 0 }

func Default() []Metric {
	return []Metric{NewRMSE(), NewMAE(), NewMaxAbs(), NewRelL2()}
}

// Compare scores pred against truth point by point with the default metrics.
func Compare(truth, pred *field.Grid) (map[string]float64, error) {
	if truth.Shape() != pred.Shape() {
		return nil, fmt.Errorf("compare %s with %s: %w", truth.Shape(), pred.Shape(), field.ErrShapeMismatch)
	}
	ms := Default()
	for i, v := range truth.Data {
		for _, m := range ms {
			m.Observe(v, pred.Data[i])
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out, nil
}

// FrameRMSE returns the RMSE of every time frame.
func FrameRMSE(truth, pred *field.Grid) ([]float64, error) {
	s := truth.Shape()
	if s != pred.Shape() {
		return nil, fmt.Errorf("compare %s with %s: %w", s, pred.Shape(), field.ErrShapeMismatch)
	}
	out := make([]float64, s.NT)
	m := NewRMSE()
	for t := 0; t < s.NT; t++ {
		m.Reset()
		for x := 0; x < s.NX; x++ {
			for y := 0; y < s.NY; y++ {
				m.Observe(truth.At(x, y, t), pred.At(x, y, t))
			}
		}
		out[t] = m.Value()
	}
	return out, nil
}
