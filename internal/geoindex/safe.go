package geoindex

import "sync"

// SafeIndex serialises access to a GeoIndex: Insert and Clear take the
// write lock, every read takes the read lock.
type SafeIndex struct {
	mu  sync.RWMutex
	idx *GeoIndex
}

// NewSafeIndex wraps idx. The caller must not use idx directly afterwards.
func NewSafeIndex(idx *GeoIndex) *SafeIndex {
	return &SafeIndex{idx: idx}
}

// Insert is GeoIndex.Insert under the write lock.
func (s *SafeIndex) Insert(frame Frame, points []Point) ([]Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Insert(frame, points)
}

// Clear is GeoIndex.Clear under the write lock.
func (s *SafeIndex) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx.Clear()
}

// Lookup is GeoIndex.Lookup under the read lock.
func (s *SafeIndex) Lookup(p Point) ([]FrameID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Lookup(p)
}

// Vote is GeoIndex.Vote under the read lock.
func (s *SafeIndex) Vote(frame Frame, points []Point) (*VoteResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Vote(frame, points)
}

// BuildFrame reads only construction-time state and takes no lock.
func (s *SafeIndex) BuildFrame(p0, p1, p2 Point) (Frame, error) {
	return s.idx.BuildFrame(p0, p1, p2)
}

// IsEmpty is GeoIndex.IsEmpty under the read lock.
func (s *SafeIndex) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.IsEmpty()
}

// FrameCount is GeoIndex.FrameCount under the read lock.
func (s *SafeIndex) FrameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.FrameCount()
}

// Stats is GeoIndex.Stats under the read lock.
func (s *SafeIndex) Stats() IndexStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Stats()
}
