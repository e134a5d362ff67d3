package geoindex

import (
	"fmt"
	"math"
)

// BinPolicy selects how a scaled coordinate is rounded to a bin index.
type BinPolicy int

const (
	// BinTruncate rounds toward zero. Bin 0 spans (-binSize, binSize), twice
	// the width of every other bin, so -0.5 and 0.5 share a bin.
	BinTruncate BinPolicy = iota
	// BinFloor rounds toward negative infinity; every bin has equal width
	// and -0.5 falls in bin -1.
	BinFloor
)

// String returns the config name of the policy.
func (p BinPolicy) String() string {
	switch p {
	case BinTruncate:
		return "truncate"
	case BinFloor:
		return "floor"
	default:
		return fmt.Sprintf("BinPolicy(%d)", int(p))
	}
}

// ParseBinPolicy maps a config name to a BinPolicy. The empty string is
// BinTruncate.
func ParseBinPolicy(s string) (BinPolicy, error) {
	switch s {
	case "", "truncate":
		return BinTruncate, nil
	case "floor":
		return BinFloor, nil
	default:
		return 0, fmt.Errorf("%w: unknown bin policy %q", ErrInvalidInput, s)
	}
}

// BinKey is the integer cell of a local-coordinate point. It is comparable
// and used directly as a map key.
type BinKey struct {
	I, J, K int64
}

// String formats the key as "(i,j,k)".
func (k BinKey) String() string {
	return fmt.Sprintf("(%d,%d,%d)", k.I, k.J, k.K)
}

// KeyFor divides each component of p by binSize and rounds per policy.
func KeyFor(p Point, binSize float64, policy BinPolicy) BinKey {
	return BinKey{
		I: quantize(p.X, binSize, policy),
		J: quantize(p.Y, binSize, policy),
		K: quantize(p.Z, binSize, policy),
	}
}

func quantize(v, binSize float64, policy BinPolicy) int64 {
	q := v / binSize
	if policy == BinFloor {
		return int64(math.Floor(q))
	}
	return int64(math.Trunc(q))
}
