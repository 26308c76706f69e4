// Package forecast estimates how long a product's stock will last.
//
// Forecast runs a Monte Carlo simulation: Trials independent demand paths,
// each Steps long, where a step is one scheduler interval and every step's
// demand is drawn uniformly from the same range the scheduler uses. A path
// depletes at the first step k (1-based) whose cumulative demand reaches
// the current stock, after k*Step of simulated time. Paths that never
// deplete record the full horizon. The answer is the median over paths,
// in hours rounded to one decimal.
//
// Results carry a Status plus the legacy numeric encoding the web frontend
// understands: 0 depleted, -1 unknown product, 999 sufficient beyond the
// horizon, -999 internal failure.
//
// Paths are generated a block of rows at a time into a flat matrix,
// prefix-summed per row and scanned for the first crossing. simulateTrial
// is the per-path reference loop with the same semantics; tests keep the two
// in agreement. Forecasts take no lock and never write.
package forecast
