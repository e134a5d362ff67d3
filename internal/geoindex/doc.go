// Package geoindex implements geometric hashing over 3D point sets.
//
// Responsibilities: building orthonormal frames from point triples,
// transforming points between world and frame-local coordinates, binning
// local points into an integer-keyed spatial index, and voting scene
// points against stored model frames.
// Key types: Frame, BinKey, GeoIndex, VoteResult.
//
// Typical use: pick three model points, BuildFrame, Insert the whole model
// under that frame; repeat for as many triples as wanted. Later pick three
// scene points, BuildFrame, and Vote with the scene. The frame ID with the
// most scene points landing in its occupied bins is the best match.
//
// GeoIndex is not safe for concurrent use; wrap it in SafeIndex when
// several goroutines share one index.
package geoindex
