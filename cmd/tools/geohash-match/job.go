package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/geohash/internal/geoindex"
)

// Job describes a model to index and a scene to match. Every frame
// triple is chosen by the author of the job file.
type Job struct {
	Model ModelSpec `json:"model"`
	Scene SceneSpec `json:"scene"`
}

// ModelSpec is a model point set and the triples to index it under.
type ModelSpec struct {
	Name    string       `json:"name"`
	Points  [][3]float64 `json:"points"`
	Triples [][3]int     `json:"triples"`
}

// SceneSpec is a scene point set and the candidate triples to vote with.
type SceneSpec struct {
	Points  [][3]float64 `json:"points"`
	Triples [][3]int     `json:"triples"`
}

// loadJob reads and validates a job file.
func loadJob(path string) (*Job, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse job JSON: %w", err)
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}
	return &job, nil
}

// Validate checks point counts and triple indices.
func (j *Job) Validate() error {
	if len(j.Model.Points) < 3 {
		return fmt.Errorf("model needs at least 3 points, got %d", len(j.Model.Points))
	}
	if len(j.Model.Triples) == 0 {
		return fmt.Errorf("model has no triples")
	}
	if len(j.Scene.Points) < 3 {
		return fmt.Errorf("scene needs at least 3 points, got %d", len(j.Scene.Points))
	}
	if len(j.Scene.Triples) == 0 {
		return fmt.Errorf("scene has no triples")
	}
	for i, tr := range j.Model.Triples {
		if err := checkTriple(tr, len(j.Model.Points)); err != nil {
			return fmt.Errorf("model triple %d: %w", i, err)
		}
	}
	for i, tr := range j.Scene.Triples {
		if err := checkTriple(tr, len(j.Scene.Points)); err != nil {
			return fmt.Errorf("scene triple %d: %w", i, err)
		}
	}
	return nil
}

func checkTriple(tr [3]int, n int) error {
	for _, idx := range tr {
		if idx < 0 || idx >= n {
			return fmt.Errorf("index %d out of range [0,%d)", idx, n)
		}
	}
	if tr[0] == tr[1] || tr[0] == tr[2] || tr[1] == tr[2] {
		return fmt.Errorf("indices %v must be distinct", tr)
	}
	return nil
}

func toPoints(raw [][3]float64) []geoindex.Point {
	pts := make([]geoindex.Point, len(raw))
	for i, r := range raw {
		pts[i] = geoindex.Point{X: r[0], Y: r[1], Z: r[2]}
	}
	return pts
}
