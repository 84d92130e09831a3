// Package viz renders reconstruction diagnostics for the terminal.
//
//   - [Trace]: ground truth and prediction at one cell as an asciigraph plot
//   - [Heat]: one time frame as jet-colored blocks on fixed bounds
//   - [Summary]: shape, bounds, observation count and error metrics
//
// The same pieces back the inspect command and the browse TUI.
package viz
