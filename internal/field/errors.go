package field

import (
	"errors"
	"fmt"
)

// Domain errors for grid reconstruction.
var (
	// ErrShapeMismatch indicates the number of values does not fill the target grid.
	ErrShapeMismatch = errors.New("field: value count does not match grid shape")

	// ErrEmptyPrediction indicates there are no predicted values to bound a color scale.
	ErrEmptyPrediction = errors.New("field: prediction array is empty")

	// ErrIndexOutOfRange indicates a cell or frame index outside the grid.
	ErrIndexOutOfRange = errors.New("field: index out of range")

	// ErrRowMismatch indicates coordinate and value arrays of different lengths.
	ErrRowMismatch = errors.New("field: coordinate and value row counts differ")

	// ErrBadCoordinate indicates a coordinate row without three columns.
	ErrBadCoordinate = errors.New("field: coordinate row must have 3 columns")
)

// ReshapeError reports a failed reshape with the sizes involved.
type ReshapeError struct {
	Shape Shape
	Got   int
}

func (e *ReshapeError) Error() string {
	return fmt.Sprintf("cannot reshape array of size %d into shape %s", e.Got, e.Shape)
}

func (e *ReshapeError) Unwrap() error {
	return ErrShapeMismatch
}
