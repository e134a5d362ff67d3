package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical index defaults file.
const DefaultConfigPath = "config/geohash.defaults.json"

// Bin policy names accepted in bin_policy.
const (
	BinPolicyTruncate = "truncate"
	BinPolicyFloor    = "floor"
)

// IndexConfig holds the tunable parameters of a geometric hashing index.
// Fields are pointers so a partial JSON file only overrides what it names;
// the Get* methods supply defaults for the rest.
type IndexConfig struct {
	// Spatial index params
	BinSize   *float64 `json:"bin_size,omitempty"`
	BinPolicy *string  `json:"bin_policy,omitempty"` // "truncate" or "floor"

	// Frame builder params
	ColinearThreshold *float64 `json:"colinear_threshold,omitempty"`

	// Voting params
	Thresh *float64 `json:"thresh,omitempty"` // minimum supporting points

	// Diagnostics
	Debug *bool `json:"debug,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }

// EmptyIndexConfig returns an IndexConfig with all fields set to nil.
func EmptyIndexConfig() *IndexConfig {
	return &IndexConfig{}
}

// DefaultIndexConfig returns an IndexConfig with every field populated
// with its default value.
func DefaultIndexConfig() *IndexConfig {
	return &IndexConfig{
		BinSize:           ptrFloat64(1.0),
		BinPolicy:         ptrString(BinPolicyTruncate),
		ColinearThreshold: ptrFloat64(1.0),
		Thresh:            ptrFloat64(0),
		Debug:             ptrBool(false),
	}
}

// LoadIndexConfig loads an IndexConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file fall back to the Get* defaults.
func LoadIndexConfig(path string) (*IndexConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyIndexConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *IndexConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from cmd/tools/geohash-match/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadIndexConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *IndexConfig) Validate() error {
	if c.BinSize != nil {
		if *c.BinSize <= 0 || math.IsNaN(*c.BinSize) || math.IsInf(*c.BinSize, 0) {
			return fmt.Errorf("bin_size must be a positive finite number, got %f", *c.BinSize)
		}
	}

	if c.BinPolicy != nil {
		switch *c.BinPolicy {
		case BinPolicyTruncate, BinPolicyFloor:
		default:
			return fmt.Errorf("bin_policy must be %q or %q, got %q", BinPolicyTruncate, BinPolicyFloor, *c.BinPolicy)
		}
	}

	if c.ColinearThreshold != nil {
		if *c.ColinearThreshold < 0 || math.IsNaN(*c.ColinearThreshold) {
			return fmt.Errorf("colinear_threshold must be non-negative, got %f", *c.ColinearThreshold)
		}
	}

	if c.Thresh != nil && math.IsNaN(*c.Thresh) {
		return fmt.Errorf("thresh must be a number")
	}

	return nil
}

// GetBinSize returns the bin_size value or the default.
func (c *IndexConfig) GetBinSize() float64 {
	if c.BinSize == nil {
		return 1.0
	}
	return *c.BinSize
}

// GetBinPolicy returns the bin_policy value or the default.
func (c *IndexConfig) GetBinPolicy() string {
	if c.BinPolicy == nil || *c.BinPolicy == "" {
		return BinPolicyTruncate
	}
	return *c.BinPolicy
}

// GetColinearThreshold returns the colinear_threshold value or the default.
func (c *IndexConfig) GetColinearThreshold() float64 {
	if c.ColinearThreshold == nil {
		return 1.0
	}
	return *c.ColinearThreshold
}

// GetThresh returns the thresh value or the default (0: any support wins).
func (c *IndexConfig) GetThresh() float64 {
	if c.Thresh == nil {
		return 0
	}
	return *c.Thresh
}

// GetDebug returns the debug value or the default.
func (c *IndexConfig) GetDebug() bool {
	if c.Debug == nil {
		return false
	}
	return *c.Debug
}
