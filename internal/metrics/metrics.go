// Package metrics exposes Prometheus instrumentation for the geometric
// hashing index. Collectors register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Vote outcome label values for VotesTotal.
const (
	OutcomeMatch        = "match"
	OutcomeNoHypothesis = "no_hypothesis"
	OutcomeSingular     = "singular"
	OutcomeInvalid      = "invalid"
)

var (
	// FramesInsertedTotal counts model frames stored in an index
	FramesInsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geohash_frames_inserted_total",
			Help: "Total number of model frames inserted",
		},
	)

	// PointsIndexedTotal counts local-coordinate points appended to bins
	PointsIndexedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geohash_points_indexed_total",
			Help: "Total number of model points binned into the spatial index",
		},
	)

	// DegenerateTriplesTotal counts triples rejected as near-colinear
	DegenerateTriplesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geohash_degenerate_triples_total",
			Help: "Total number of point triples rejected by the frame builder",
		},
	)

	// VotesTotal counts vote calls by outcome
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geohash_votes_total",
			Help: "Total number of votes by outcome",
		},
		[]string{"outcome"},
	)

	// VoteSupportPoints records the winning bucket size of successful votes
	VoteSupportPoints = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geohash_vote_support_points",
			Help:    "Supporting point count of the best hypothesis per vote",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// IndexClearsTotal counts index resets
	IndexClearsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geohash_index_clears_total",
			Help: "Total number of index clear operations",
		},
	)
)
