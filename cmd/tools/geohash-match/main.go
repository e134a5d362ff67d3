// Package main provides a diagnostics tool for geometric hashing.
// It indexes a model under the triples listed in a job file, votes each
// listed scene triple against the index, and reports the outcomes.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/banshee-data/geohash/internal/config"
	"github.com/banshee-data/geohash/internal/geoindex"
	"github.com/banshee-data/geohash/internal/monitor"
	"github.com/banshee-data/geohash/internal/monitoring"
	"github.com/banshee-data/geohash/internal/version"
	"github.com/google/uuid"
)

// Config holds command-line configuration.
type Config struct {
	JobFile    string
	ConfigFile string
	OutputDir  string
	OutputJSON string
	Plot       bool
	Chart      bool
	Verbose    bool
	Version    bool
}

// Outcome values reported per scene triple.
const (
	OutcomeMatch        = "match"
	OutcomeDegenerate   = "degenerate_triple"
	OutcomeSingular     = "singular_hypothesis"
	OutcomeNoHypothesis = "no_hypothesis"
)

// Report is the JSON result of one run.
type Report struct {
	RunID          string               `json:"run_id"`
	ToolVersion    string               `json:"tool_version"`
	JobFile        string               `json:"job_file"`
	ModelName      string               `json:"model_name,omitempty"`
	BinSize        float64              `json:"bin_size"`
	BinPolicy      string               `json:"bin_policy"`
	Thresh         float64              `json:"thresh"`
	FramesInserted int                  `json:"frames_inserted"`
	SkippedTriples [][3]int             `json:"skipped_model_triples,omitempty"`
	FrameTriples   map[int][3]int       `json:"frame_triples"`
	Index          geoindex.IndexStats  `json:"index"`
	Results        []SceneTripleOutcome `json:"results"`
	ProcessingMs   int64                `json:"processing_ms"`
}

// SceneTripleOutcome is the vote outcome for one scene triple.
type SceneTripleOutcome struct {
	Triple       [3]int       `json:"triple"`
	Outcome      string       `json:"outcome"`
	FrameID      *int         `json:"frame_id,omitempty"`
	ModelTriple  *[3]int      `json:"model_triple,omitempty"`
	SupportCount int          `json:"support_count"`
	Support      [][3]float64 `json:"support,omitempty"`
	Tally        map[int]int  `json:"tally,omitempty"`
	Error        string       `json:"error,omitempty"`
}

func main() {
	cfg := parseFlags()

	if cfg.Version {
		fmt.Println(version.String())
		return
	}

	if cfg.JobFile == "" {
		log.Fatal("job file is required")
	}

	report, err := run(cfg)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	printResults(report)

	if cfg.OutputJSON != "" {
		outputPath := cfg.OutputJSON
		if cfg.OutputDir != "" {
			outputPath = filepath.Join(cfg.OutputDir, cfg.OutputJSON)
		}
		if err := exportJSON(report, outputPath); err != nil {
			log.Printf("Warning: failed to export JSON: %v", err)
		} else {
			log.Printf("Results exported to: %s", outputPath)
		}
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.JobFile, "job", "", "Path to job JSON (model, scene and triples)")
	flag.StringVar(&cfg.ConfigFile, "config", "", "Path to index config JSON (defaults when empty)")
	flag.StringVar(&cfg.OutputDir, "output", "", "Output directory for plots, charts and JSON")
	flag.StringVar(&cfg.OutputJSON, "json", "", "Output JSON filename (e.g., report.json)")
	flag.BoolVar(&cfg.Plot, "plot", false, "Write local-coordinate scatter plots per matched triple")
	flag.BoolVar(&cfg.Chart, "chart", false, "Write HTML vote tally charts per matched triple")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable per-point debug logging")
	flag.BoolVar(&cfg.Version, "version", false, "Print version and exit")

	flag.Parse()
	return cfg
}

func run(cfg Config) (*Report, error) {
	start := time.Now()

	job, err := loadJob(cfg.JobFile)
	if err != nil {
		return nil, err
	}

	idxCfg := config.EmptyIndexConfig()
	if cfg.ConfigFile != "" {
		if idxCfg, err = config.LoadIndexConfig(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}
	if cfg.Verbose {
		on := true
		idxCfg.Debug = &on
	}

	idx, err := geoindex.NewFromConfig(idxCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	if (cfg.Plot || cfg.Chart) && cfg.OutputDir == "" {
		return nil, fmt.Errorf("-plot and -chart need -output")
	}
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	report := &Report{
		RunID:        uuid.New().String(),
		ToolVersion:  version.String(),
		JobFile:      cfg.JobFile,
		ModelName:    job.Model.Name,
		BinSize:      idx.BinSize(),
		BinPolicy:    idx.Policy().String(),
		Thresh:       idx.Thresh(),
		FrameTriples: make(map[int][3]int),
	}

	model := toPoints(job.Model.Points)
	modelLocal := make(map[geoindex.FrameID][]geoindex.Point)
	for _, tr := range job.Model.Triples {
		f, err := idx.BuildFrame(model[tr[0]], model[tr[1]], model[tr[2]])
		if errors.Is(err, geoindex.ErrDegenerateTriple) {
			monitoring.Logf("skipping model triple %v: %v", tr, err)
			report.SkippedTriples = append(report.SkippedTriples, tr)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("model triple %v: %w", tr, err)
		}

		id := geoindex.FrameID(idx.FrameCount())
		local, err := idx.Insert(f, model)
		if err != nil {
			return nil, fmt.Errorf("insert model triple %v: %w", tr, err)
		}
		modelLocal[id] = local
		report.FrameTriples[int(id)] = tr
	}
	report.FramesInserted = idx.FrameCount()
	report.Index = idx.Stats()

	scene := toPoints(job.Scene.Points)
	for _, tr := range job.Scene.Triples {
		out := voteTriple(idx, scene, tr)
		if out.FrameID != nil {
			mt := report.FrameTriples[*out.FrameID]
			out.ModelTriple = &mt
		}
		report.Results = append(report.Results, out.SceneTripleOutcome)

		if out.result == nil {
			continue
		}
		base := fmt.Sprintf("triple_%d_%d_%d", tr[0], tr[1], tr[2])
		if cfg.Plot {
			path := filepath.Join(cfg.OutputDir, base+"_local.png")
			series := []monitor.PointSeries{
				{Name: fmt.Sprintf("model frame %d", out.result.FrameID), Points: modelLocal[out.result.FrameID]},
				{Name: "scene", Points: out.result.Local},
			}
			if err := monitor.PlotLocalPoints(path, base, monitor.AxisXY, idx.BinSize(), series); err != nil {
				monitoring.Logf("Warning: failed to plot %s: %v", base, err)
			}
		}
		if cfg.Chart {
			if err := writeChart(filepath.Join(cfg.OutputDir, base+"_tally.html"), base, out.result); err != nil {
				monitoring.Logf("Warning: failed to chart %s: %v", base, err)
			}
		}
	}

	report.ProcessingMs = time.Since(start).Milliseconds()
	return report, nil
}

type tripleVote struct {
	SceneTripleOutcome
	result *geoindex.VoteResult
}

func voteTriple(idx *geoindex.GeoIndex, scene []geoindex.Point, tr [3]int) tripleVote {
	out := tripleVote{SceneTripleOutcome: SceneTripleOutcome{Triple: tr}}

	f, err := idx.BuildFrame(scene[tr[0]], scene[tr[1]], scene[tr[2]])
	if err != nil {
		out.Outcome = OutcomeDegenerate
		out.Error = err.Error()
		return out
	}

	res, err := idx.Vote(f, scene)
	switch {
	case errors.Is(err, geoindex.ErrSingularHypothesis):
		out.Outcome = OutcomeSingular
		out.Error = err.Error()
		return out
	case err != nil:
		out.Outcome = OutcomeNoHypothesis
		out.Error = err.Error()
		return out
	}

	id := int(res.FrameID)
	out.Outcome = OutcomeMatch
	out.FrameID = &id
	out.SupportCount = len(res.Support)
	out.Support = make([][3]float64, len(res.Support))
	for i, p := range res.Support {
		out.Support[i] = [3]float64{p.X, p.Y, p.Z}
	}
	out.Tally = make(map[int]int, len(res.Tally))
	for fid, n := range res.Tally {
		out.Tally[int(fid)] = n
	}
	out.result = res
	return out
}

func writeChart(path, title string, res *geoindex.VoteResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := monitor.RenderTallyChart(f, title, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printResults(r *Report) {
	fmt.Printf("Run %s: %d frames indexed (bin %g, %s), %d bins, %d entries\n",
		r.RunID, r.FramesInserted, r.BinSize, r.BinPolicy, r.Index.Bins, r.Index.Entries)
	if len(r.SkippedTriples) > 0 {
		fmt.Printf("Skipped %d degenerate model triples: %v\n", len(r.SkippedTriples), r.SkippedTriples)
	}

	results := append([]SceneTripleOutcome(nil), r.Results...)
	sort.SliceStable(results, func(i, j int) bool { return results[i].SupportCount > results[j].SupportCount })
	for _, res := range results {
		if res.Outcome != OutcomeMatch {
			fmt.Printf("  scene %v: %s\n", res.Triple, res.Outcome)
			continue
		}
		fmt.Printf("  scene %v: frame %d (model %v) support=%d\n", res.Triple, *res.FrameID, *res.ModelTriple, res.SupportCount)
	}
}

func exportJSON(r *Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
