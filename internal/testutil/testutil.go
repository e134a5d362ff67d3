// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability. Fixtures use
// gonum r3 vectors so they can be passed straight to geoindex.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultTolerance is the absolute tolerance used by the Near helpers.
const DefaultTolerance = 1e-9

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertVecNear fails the test if got and want differ by more than tol in
// any component.
func AssertVecNear(t *testing.T, got, want r3.Vec, tol float64) {
	t.Helper()
	if !VecNear(got, want, tol) {
		t.Errorf("vector = (%g,%g,%g), want (%g,%g,%g) within %g",
			got.X, got.Y, got.Z, want.X, want.Y, want.Z, tol)
	}
}

// VecNear reports whether a and b agree within tol in every component.
func VecNear(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// Cube returns the 8 corners of an axis-aligned cube with the given
// minimum corner and edge length. The first three corners are the origin
// corner, +X neighbour and +Y neighbour, a valid frame triple.
func Cube(origin r3.Vec, side float64) []r3.Vec {
	offsets := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 1},
		{X: 0, Y: 1, Z: 1},
		{X: 1, Y: 1, Z: 1},
	}
	pts := make([]r3.Vec, len(offsets))
	for i, o := range offsets {
		pts[i] = r3.Add(origin, r3.Scale(side, o))
	}
	return pts
}

// Rotate rotates every point by alpha radians about axis through the
// world origin.
func Rotate(points []r3.Vec, axis r3.Vec, alpha float64) []r3.Vec {
	rot := r3.NewRotation(alpha, axis)
	out := make([]r3.Vec, len(points))
	for i, p := range points {
		out[i] = rot.Rotate(p)
	}
	return out
}

// Translate shifts every point by d.
func Translate(points []r3.Vec, d r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(points))
	for i, p := range points {
		out[i] = r3.Add(p, d)
	}
	return out
}
