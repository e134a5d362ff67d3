package geoindex

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/banshee-data/geohash/internal/metrics"
	"github.com/banshee-data/geohash/internal/monitoring"
)

// VoteResult is the best-supported hypothesis of a Vote.
type VoteResult struct {
	// FrameID is the stored model frame with the most supporting points.
	FrameID FrameID
	// Support holds the scene points that voted for FrameID, in world
	// coordinates, in scene order. A point is repeated once per entry of
	// FrameID in its bin.
	Support []Point
	// Local holds every scene point in the candidate frame's coordinates.
	Local []Point
	// Tally is the supporting point count of every frame that got a vote.
	Tally map[FrameID]int
	// Candidates lists the frames that got at least one vote, ascending.
	Candidates []FrameID
}

// Vote projects scene points into the candidate frame and tallies, per
// stored frame, the points that land in bins that frame occupies.
//
// A candidate frame that cannot be inverted yields ErrSingularHypothesis.
// When no point hits an occupied bin, or the best frame's support is below
// the index thresh, Vote returns ErrNoHypothesis. Ties go to the frame
// that first reached the winning count.
//
// Support points are recovered by mapping each local point back through
// the candidate frame, so they reproduce the scene points in world space
// rather than in the matched model frame.
func (g *GeoIndex) Vote(frame Frame, points []Point) (*VoteResult, error) {
	if !frame.Valid() {
		metrics.VotesTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, fmt.Errorf("%w: zero frame", ErrInvalidInput)
	}
	if err := checkFinite(points); err != nil {
		metrics.VotesTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	if err := frame.invertible(); err != nil {
		metrics.VotesTotal.WithLabelValues(metrics.OutcomeSingular).Inc()
		return nil, fmt.Errorf("%w: %v", ErrSingularHypothesis, err)
	}
	local, err := frame.ToLocalAll(points)
	if err != nil {
		metrics.VotesTotal.WithLabelValues(metrics.OutcomeSingular).Inc()
		return nil, fmt.Errorf("%w: %v", ErrSingularHypothesis, err)
	}

	buckets := make(map[FrameID][]Point)
	voted := roaring.New()
	best := FrameID(-1)

	for _, x := range local {
		ids := g.bins[g.KeyOf(x)]
		if len(ids) == 0 {
			continue
		}
		world := frame.ToWorld(x)
		for _, id := range ids {
			buckets[id] = append(buckets[id], world)
			voted.Add(uint32(id))
			if best < 0 || len(buckets[id]) > len(buckets[best]) {
				best = id
			}
		}
	}

	if best < 0 {
		metrics.VotesTotal.WithLabelValues(metrics.OutcomeNoHypothesis).Inc()
		return nil, fmt.Errorf("%w: none of %d points hit an occupied bin", ErrNoHypothesis, len(points))
	}
	support := buckets[best]
	if float64(len(support)) < g.thresh {
		monitoring.Debugf("geoindex: best frame %d has %d supporting points, below thresh %g", best, len(support), g.thresh)
		metrics.VotesTotal.WithLabelValues(metrics.OutcomeNoHypothesis).Inc()
		return nil, fmt.Errorf("%w: best frame %d has %d supporting points, need %g", ErrNoHypothesis, best, len(support), g.thresh)
	}

	tally := make(map[FrameID]int, len(buckets))
	for id, pts := range buckets {
		tally[id] = len(pts)
	}

	metrics.VotesTotal.WithLabelValues(metrics.OutcomeMatch).Inc()
	metrics.VoteSupportPoints.Observe(float64(len(support)))

	return &VoteResult{
		FrameID:    best,
		Support:    support,
		Local:      local,
		Tally:      tally,
		Candidates: toFrameIDs(voted),
	}, nil
}
