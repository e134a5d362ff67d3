package geoindex

import "errors"

// ErrDegenerateTriple is returned by the frame builder when the three
// points are too close to colinear to define a stable basis.
var ErrDegenerateTriple = errors.New("degenerate point triple")

// ErrSingularFrame is returned when a frame matrix cannot be inverted or
// solved against.
var ErrSingularFrame = errors.New("singular frame matrix")

// ErrSingularHypothesis is returned by Vote when the candidate frame
// cannot be inverted. Try another scene triple.
var ErrSingularHypothesis = errors.New("singular pose hypothesis")

// ErrNoHypothesis is returned by Vote when no stored frame received enough
// supporting points.
var ErrNoHypothesis = errors.New("no supported hypothesis")

// ErrInvalidInput is returned for malformed arguments at the API boundary.
var ErrInvalidInput = errors.New("invalid input")
