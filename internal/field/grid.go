package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Shape holds the extents of an (x, y, t) grid.
type Shape struct {
	NX, NY, NT int
}

func (s Shape) Size() int {
	return s.NX * s.NY * s.NT
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d, %d)", s.NX, s.NY, s.NT)
}

// Valid reports whether every extent is positive.
func (s Shape) Valid() bool {
	return s.NX > 0 && s.NY > 0 && s.NT > 0
}

// Grid is a dense voltage field indexed by (x, y, t).
// Data is row-major with t varying fastest.
type Grid struct {
	shape Shape
	Data  []float64
}

func NewGrid(shape Shape) *Grid {
	return &Grid{shape: shape, Data: make([]float64, shape.Size())}
}

// FromValues reshapes a flat value slice into a grid. The slice is not copied.
func FromValues(shape Shape, values []float64) (*Grid, error) {
	if len(values) != shape.Size() {
		return nil, &ReshapeError{Shape: shape, Got: len(values)}
	}
	return &Grid{shape: shape, Data: values}, nil
}

func (g *Grid) Shape() Shape {
	return g.shape
}

func (g *Grid) index(x, y, t int) int {
	return (x*g.shape.NY+y)*g.shape.NT + t
}

func (g *Grid) inBounds(x, y, t int) bool {
	return x >= 0 && x < g.shape.NX && y >= 0 && y < g.shape.NY && t >= 0 && t < g.shape.NT
}

func (g *Grid) At(x, y, t int) float64 {
	return g.Data[g.index(x, y, t)]
}

func (g *Grid) Set(x, y, t int, v float64) {
	g.Data[g.index(x, y, t)] = v
}

// Trace returns the time series of one cell.
func (g *Grid) Trace(x, y int) ([]float64, error) {
	if !g.inBounds(x, y, 0) {
		return nil, fmt.Errorf("cell (%d, %d) in grid %s: %w", x, y, g.shape, ErrIndexOutOfRange)
	}
	start := g.index(x, y, 0)
	out := make([]float64, g.shape.NT)
	copy(out, g.Data[start:start+g.shape.NT])
	return out, nil
}

// Frame returns the x-by-y slice at time index t, indexed [x][y].
func (g *Grid) Frame(t int) ([][]float64, error) {
	if !g.inBounds(0, 0, t) {
		return nil, fmt.Errorf("frame %d in grid %s: %w", t, g.shape, ErrIndexOutOfRange)
	}
	out := make([][]float64, g.shape.NX)
	for x := range out {
		out[x] = make([]float64, g.shape.NY)
		for y := range out[x] {
			out[x][y] = g.At(x, y, t)
		}
	}
	return out, nil
}

func (g *Grid) Min() float64 {
	if len(g.Data) == 0 {
		return math.NaN()
	}
	return floats.Min(g.Data)
}

func (g *Grid) Max() float64 {
	if len(g.Data) == 0 {
		return math.NaN()
	}
	return floats.Max(g.Data)
}

// FractionIndex returns floor(fraction*extent), the index used to pick a
// representative cell or frame.
func FractionIndex(extent int, fraction float64) int {
	return int(math.Floor(float64(extent) * fraction))
}
