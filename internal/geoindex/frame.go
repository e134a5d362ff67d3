package geoindex

import (
	"fmt"
	"math"

	"github.com/banshee-data/geohash/internal/metrics"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultColinearThreshold is the minimum |a×b| BuildFrame accepts, where
// a and b are the triple's edge vectors from p0. It is absolute, so it is
// expressed in squared input units.
const DefaultColinearThreshold = 1.0

// Point is a 3D position in world or frame-local coordinates.
type Point = r3.Vec

// FrameID identifies a stored model frame. IDs start at 0 and increase by
// one per insertion.
type FrameID int

// Frame is an immutable 3×3 basis matrix. Its columns are the basis
// vectors; local coordinates x of a world point p satisfy Frame·x = p.
// The zero Frame is invalid.
type Frame struct {
	m *mat.Dense
}

// BuildFrame derives an orthonormal frame from three points using
// DefaultColinearThreshold.
func BuildFrame(p0, p1, p2 Point) (Frame, error) {
	return BuildFrameWithThreshold(p0, p1, p2, DefaultColinearThreshold)
}

// BuildFrameWithThreshold derives an orthonormal frame from three points.
//
// Steps:
// 1. a = p1-p0, b = p2-p0; reject when |a×b| < threshold
// 2. Gram-Schmidt: b -= (a·b / |a|²)·a
// 3. c = a×b, then normalise a, b and c
//
// The result has columns [a b c]. Near-colinear triples yield
// ErrDegenerateTriple; the caller should pick another triple.
func BuildFrameWithThreshold(p0, p1, p2 Point, threshold float64) (Frame, error) {
	if !finitePoint(p0) || !finitePoint(p1) || !finitePoint(p2) {
		return Frame{}, fmt.Errorf("%w: non-finite frame point", ErrInvalidInput)
	}

	a := r3.Sub(p1, p0)
	b := r3.Sub(p2, p0)

	area := r3.Norm(r3.Cross(a, b))
	if area < threshold || area == 0 {
		metrics.DegenerateTriplesTotal.Inc()
		return Frame{}, fmt.Errorf("%w: |a×b|=%g below %g", ErrDegenerateTriple, area, threshold)
	}

	b = r3.Sub(b, r3.Scale(r3.Dot(a, b)/r3.Norm2(a), a))
	c := r3.Cross(a, b)

	return frameFromColumns(r3.Unit(a), r3.Unit(b), r3.Unit(c)), nil
}

// FrameFromMatrix wraps a caller-supplied 3×3 matrix as a Frame. The
// matrix is copied and is not required to be orthonormal or invertible;
// Vote reports singular candidates as ErrSingularHypothesis.
func FrameFromMatrix(m mat.Matrix) (Frame, error) {
	if m == nil {
		return Frame{}, fmt.Errorf("%w: nil matrix", ErrInvalidInput)
	}
	r, c := m.Dims()
	if r != 3 || c != 3 {
		return Frame{}, fmt.Errorf("%w: frame matrix must be 3x3, got %dx%d", ErrInvalidInput, r, c)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return Frame{}, fmt.Errorf("%w: non-finite frame element (%d,%d)", ErrInvalidInput, i, j)
			}
		}
	}
	return Frame{m: mat.DenseCopyOf(m)}, nil
}

func frameFromColumns(a, b, c Point) Frame {
	return Frame{m: mat.NewDense(3, 3, []float64{
		a.X, b.X, c.X,
		a.Y, b.Y, c.Y,
		a.Z, b.Z, c.Z,
	})}
}

// Valid reports whether f was produced by a constructor.
func (f Frame) Valid() bool {
	return f.m != nil
}

// At returns element (i, j) of the frame matrix.
func (f Frame) At(i, j int) float64 {
	return f.m.At(i, j)
}

// Column returns basis vector j (0, 1 or 2).
func (f Frame) Column(j int) Point {
	return Point{X: f.m.At(0, j), Y: f.m.At(1, j), Z: f.m.At(2, j)}
}

// Matrix returns a copy of the frame matrix.
func (f Frame) Matrix() *mat.Dense {
	return mat.DenseCopyOf(f.m)
}

// IsOrthonormal reports whether every column has unit length and the
// columns are pairwise orthogonal within tol.
func (f Frame) IsOrthonormal(tol float64) bool {
	if !f.Valid() {
		return false
	}
	for i := 0; i < 3; i++ {
		ci := f.Column(i)
		if math.Abs(r3.Norm(ci)-1) > tol {
			return false
		}
		for j := i + 1; j < 3; j++ {
			if math.Abs(r3.Dot(ci, f.Column(j))) > tol {
				return false
			}
		}
	}
	return true
}

// ToLocal solves Frame·x = p for the local coordinates x of world point p.
func (f Frame) ToLocal(p Point) (Point, error) {
	local, err := f.ToLocalAll([]Point{p})
	if err != nil {
		return Point{}, err
	}
	return local[0], nil
}

// ToLocalAll solves Frame·X = P for all points at once, P holding one
// point per column.
func (f Frame) ToLocalAll(points []Point) ([]Point, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: zero frame", ErrInvalidInput)
	}
	if len(points) == 0 {
		return []Point{}, nil
	}

	rhs := mat.NewDense(3, len(points), nil)
	for j, p := range points {
		rhs.Set(0, j, p.X)
		rhs.Set(1, j, p.Y)
		rhs.Set(2, j, p.Z)
	}

	var x mat.Dense
	if err := x.Solve(f.m, rhs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularFrame, err)
	}

	local := make([]Point, len(points))
	for j := range local {
		local[j] = Point{X: x.At(0, j), Y: x.At(1, j), Z: x.At(2, j)}
	}
	return local, nil
}

// ToWorld maps local coordinates back to world coordinates (Frame·x).
func (f Frame) ToWorld(x Point) Point {
	var w mat.VecDense
	w.MulVec(f.m, mat.NewVecDense(3, []float64{x.X, x.Y, x.Z}))
	return Point{X: w.AtVec(0), Y: w.AtVec(1), Z: w.AtVec(2)}
}

// invertible reports whether the frame matrix has a usable inverse.
func (f Frame) invertible() error {
	var inv mat.Dense
	if err := inv.Inverse(f.m); err != nil {
		return fmt.Errorf("%w: %v", ErrSingularFrame, err)
	}
	return nil
}

func finitePoint(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

func checkFinite(points []Point) error {
	for i, p := range points {
		if !finitePoint(p) {
			return fmt.Errorf("%w: non-finite point at index %d", ErrInvalidInput, i)
		}
	}
	return nil
}
