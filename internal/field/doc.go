// Package field rebuilds dense (x, y, t) voltage grids from the scattered
// train and test rows produced by a PINN run.
//
// A [Reorderer] stacks the training rows (coordinates plus observed voltage)
// on top of the test rows (coordinates plus predicted voltage), sorts them by
// a composite coordinate key and reshapes the value column into the ground
// truth's [Shape]:
//
//	r := field.DefaultReorderer()
//	rec, err := r.Reorder(vsav.Shape(), train, test)
//
// The resulting [Reconstruction] carries two grids. Pred holds every value;
// Observed holds the training values and [Sentinel] wherever the point was
// only predicted.
package field
