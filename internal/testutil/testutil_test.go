package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	// Verify nil error doesn't cause issues
	AssertNoError(t, nil)
}

func TestVecNear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b r3.Vec
		tol  float64
		want bool
	}{
		{"equal", r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1, Y: 2, Z: 3}, 0, true},
		{"within tol", r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1.0005, Y: 2, Z: 3}, 1e-3, true},
		{"outside tol", r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1, Y: 2, Z: 3.1}, 1e-3, false},
	}

	for _, tt := range tests {
		if got := VecNear(tt.a, tt.b, tt.tol); got != tt.want {
			t.Errorf("%s: VecNear() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCube(t *testing.T) {
	t.Parallel()

	pts := Cube(r3.Vec{X: 1, Y: 1, Z: 1}, 2)
	if len(pts) != 8 {
		t.Fatalf("expected 8 corners, got %d", len(pts))
	}
	AssertVecNear(t, pts[0], r3.Vec{X: 1, Y: 1, Z: 1}, 0)
	AssertVecNear(t, pts[1], r3.Vec{X: 3, Y: 1, Z: 1}, 0)
	AssertVecNear(t, pts[2], r3.Vec{X: 1, Y: 3, Z: 1}, 0)
	AssertVecNear(t, pts[7], r3.Vec{X: 3, Y: 3, Z: 3}, 0)

	seen := make(map[r3.Vec]bool)
	for _, p := range pts {
		seen[p] = true
	}
	if len(seen) != 8 {
		t.Errorf("expected 8 distinct corners, got %d", len(seen))
	}
}

func TestRotate_PreservesNorm(t *testing.T) {
	t.Parallel()

	pts := Cube(r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, 2)
	rotated := Rotate(pts, r3.Vec{X: 1, Y: 2, Z: 3}, 0.7)
	for i := range pts {
		if math.Abs(r3.Norm(pts[i])-r3.Norm(rotated[i])) > DefaultTolerance {
			t.Errorf("point %d: norm changed from %g to %g", i, r3.Norm(pts[i]), r3.Norm(rotated[i]))
		}
	}
}

func TestRotate_QuarterTurnAboutZ(t *testing.T) {
	t.Parallel()

	got := Rotate([]r3.Vec{{X: 1}}, r3.Vec{Z: 1}, math.Pi/2)
	AssertVecNear(t, got[0], r3.Vec{Y: 1}, DefaultTolerance)
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	got := Translate([]r3.Vec{{X: 1, Y: 1, Z: 1}}, r3.Vec{X: -1, Y: 2, Z: 0.5})
	AssertVecNear(t, got[0], r3.Vec{X: 0, Y: 3, Z: 1.5}, 0)
}
