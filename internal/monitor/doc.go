// Package monitor renders diagnostics for geometric hashing runs: PNG
// scatter plots of frame-local coordinates and HTML vote tally charts.
package monitor
