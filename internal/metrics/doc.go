// Package metrics scores a reconstructed prediction against the ground truth.
//
// Each [Metric] observes (truth, prediction) pairs one at a time, the same
// way for every grid point:
//
//   - [RMSE]: root mean squared error
//   - [MAE]: mean absolute error
//   - [MaxAbs]: largest absolute error
//   - [RelL2]: relative L2 error, ||pred - truth|| / ||truth||
//
// [Compare] runs all of them over two grids of the same shape.
package metrics
