package geoindex

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring"
	"github.com/banshee-data/geohash/internal/config"
	"github.com/banshee-data/geohash/internal/metrics"
	"github.com/banshee-data/geohash/internal/monitoring"
)

// GeoIndex maps binned local-coordinate points to the model frames that
// produced them.
//
// State grows monotonically through Insert until Clear. Frame IDs are
// assigned 0, 1, 2, ... with no gaps, and every ID present in a bin has an
// entry in frames. The zero value is not usable; construct with New.
type GeoIndex struct {
	binSize           float64
	thresh            float64
	policy            BinPolicy
	colinearThreshold float64

	frameCount int
	frames     map[FrameID]Frame

	// bins keeps one entry per binned point, in insertion order, so a
	// frame appears once for each of its points that landed in the bin.
	bins map[BinKey][]FrameID
	// occupancy holds the distinct frame IDs of each bin.
	occupancy map[BinKey]*roaring.Bitmap
}

// Option customises a GeoIndex at construction.
type Option func(*GeoIndex)

// WithBinPolicy selects the rounding policy used for bin keys.
func WithBinPolicy(p BinPolicy) Option {
	return func(g *GeoIndex) { g.policy = p }
}

// WithColinearThreshold sets the |a×b| floor used by GeoIndex.BuildFrame.
func WithColinearThreshold(t float64) Option {
	return func(g *GeoIndex) { g.colinearThreshold = t }
}

// New creates an empty index. binSize must be positive and finite. thresh
// is the minimum number of supporting points Vote requires before it
// accepts a hypothesis; values <= 1 accept any support.
func New(binSize, thresh float64, opts ...Option) (*GeoIndex, error) {
	if binSize <= 0 || math.IsNaN(binSize) || math.IsInf(binSize, 0) {
		return nil, fmt.Errorf("%w: bin size must be positive and finite, got %g", ErrInvalidInput, binSize)
	}
	if math.IsNaN(thresh) {
		return nil, fmt.Errorf("%w: thresh is NaN", ErrInvalidInput)
	}

	g := &GeoIndex{
		binSize:           binSize,
		thresh:            thresh,
		policy:            BinTruncate,
		colinearThreshold: DefaultColinearThreshold,
		frames:            make(map[FrameID]Frame),
		bins:              make(map[BinKey][]FrameID),
		occupancy:         make(map[BinKey]*roaring.Bitmap),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.policy != BinTruncate && g.policy != BinFloor {
		return nil, fmt.Errorf("%w: unknown bin policy %d", ErrInvalidInput, int(g.policy))
	}
	if g.colinearThreshold < 0 || math.IsNaN(g.colinearThreshold) {
		return nil, fmt.Errorf("%w: colinear threshold must be non-negative, got %g", ErrInvalidInput, g.colinearThreshold)
	}
	return g, nil
}

// NewFromConfig creates an index from an IndexConfig, applying defaults
// for unset fields. It also applies the config's debug flag to
// monitoring.
func NewFromConfig(cfg *config.IndexConfig) (*GeoIndex, error) {
	if cfg == nil {
		cfg = config.EmptyIndexConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	policy, err := ParseBinPolicy(cfg.GetBinPolicy())
	if err != nil {
		return nil, err
	}
	monitoring.SetDebug(cfg.GetDebug())
	return New(cfg.GetBinSize(), cfg.GetThresh(),
		WithBinPolicy(policy),
		WithColinearThreshold(cfg.GetColinearThreshold()),
	)
}

// BinSize returns the bin edge length fixed at construction.
func (g *GeoIndex) BinSize() float64 { return g.binSize }

// Thresh returns the minimum support Vote requires.
func (g *GeoIndex) Thresh() float64 { return g.thresh }

// Policy returns the bin rounding policy.
func (g *GeoIndex) Policy() BinPolicy { return g.policy }

// FrameCount returns the next frame ID to be assigned, which is also the
// number of frames stored.
func (g *GeoIndex) FrameCount() int { return g.frameCount }

// IsEmpty reports whether no frame has been inserted since construction
// or the last Clear.
func (g *GeoIndex) IsEmpty() bool { return g.frameCount == 0 }

// Frame returns the stored frame for id.
func (g *GeoIndex) Frame(id FrameID) (Frame, bool) {
	f, ok := g.frames[id]
	return f, ok
}

// BuildFrame builds a frame using the index's colinear threshold.
func (g *GeoIndex) BuildFrame(p0, p1, p2 Point) (Frame, error) {
	return BuildFrameWithThreshold(p0, p1, p2, g.colinearThreshold)
}

// KeyOf returns the bin key of a local-coordinate point.
func (g *GeoIndex) KeyOf(p Point) BinKey {
	return KeyFor(p, g.binSize, g.policy)
}

// Insert stores frame under the next frame ID and bins every model point
// in that frame's local coordinates. It returns the local points in input
// order. On error the index is unchanged.
func (g *GeoIndex) Insert(frame Frame, points []Point) ([]Point, error) {
	if !frame.Valid() {
		return nil, fmt.Errorf("%w: zero frame", ErrInvalidInput)
	}
	if err := checkFinite(points); err != nil {
		return nil, err
	}

	// Solve everything before mutating so a failure leaves no partial frame.
	local, err := frame.ToLocalAll(points)
	if err != nil {
		return nil, fmt.Errorf("insert frame %d: %w", g.frameCount, err)
	}

	id := FrameID(g.frameCount)
	g.frames[id] = frame
	g.frameCount++

	for _, p := range local {
		key := g.KeyOf(p)
		monitoring.Debugf("geoindex: frame %d local=(%.4f,%.4f,%.4f) bin=%s", id, p.X, p.Y, p.Z, key)

		g.bins[key] = append(g.bins[key], id)
		bm, ok := g.occupancy[key]
		if !ok {
			bm = roaring.New()
			g.occupancy[key] = bm
		}
		bm.Add(uint32(id))
	}

	metrics.FramesInsertedTotal.Inc()
	metrics.PointsIndexedTotal.Add(float64(len(local)))
	return local, nil
}

// Lookup returns the frame IDs recorded in the bin of a local-coordinate
// point. The slice is a copy. ok is false when the bin is absent or empty.
func (g *GeoIndex) Lookup(p Point) (ids []FrameID, ok bool) {
	return g.LookupKey(g.KeyOf(p))
}

// LookupKey is Lookup by bin key.
func (g *GeoIndex) LookupKey(key BinKey) ([]FrameID, bool) {
	ids := g.bins[key]
	if len(ids) == 0 {
		return nil, false
	}
	out := make([]FrameID, len(ids))
	copy(out, ids)
	return out, true
}

// Clear drops every frame and bin and resets the frame ID counter to 0.
func (g *GeoIndex) Clear() {
	g.frameCount = 0
	g.frames = make(map[FrameID]Frame)
	g.bins = make(map[BinKey][]FrameID)
	g.occupancy = make(map[BinKey]*roaring.Bitmap)
	metrics.IndexClearsTotal.Inc()
}

// IndexStats summarises the contents of an index.
type IndexStats struct {
	Frames         int `json:"frames"`          // frames stored
	Bins           int `json:"bins"`            // occupied bins
	Entries        int `json:"entries"`         // frame IDs across all bins, duplicates included
	DistinctFrames int `json:"distinct_frames"` // frames with at least one binned point
	MaxBinLoad     int `json:"max_bin_load"`    // longest bin list
}

// Stats walks the index and returns its summary.
func (g *GeoIndex) Stats() IndexStats {
	s := IndexStats{Frames: g.frameCount, Bins: len(g.bins)}
	for _, ids := range g.bins {
		s.Entries += len(ids)
		if len(ids) > s.MaxBinLoad {
			s.MaxBinLoad = len(ids)
		}
	}

	sets := make([]*roaring.Bitmap, 0, len(g.occupancy))
	for _, bm := range g.occupancy {
		sets = append(sets, bm)
	}
	if len(sets) > 0 {
		s.DistinctFrames = int(roaring.FastOr(sets...).GetCardinality())
	}
	return s
}

// DistinctFrames returns the distinct frame IDs in the bin of a local
// point, ascending. Unlike Lookup it collapses repeated entries.
func (g *GeoIndex) DistinctFrames(p Point) []FrameID {
	bm, ok := g.occupancy[g.KeyOf(p)]
	if !ok {
		return nil
	}
	return toFrameIDs(bm)
}

func toFrameIDs(bm *roaring.Bitmap) []FrameID {
	raw := bm.ToArray()
	ids := make([]FrameID, len(raw))
	for i, v := range raw {
		ids[i] = FrameID(v)
	}
	return ids
}
