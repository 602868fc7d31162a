// Package config loads server defaults from a JSON file and the environment.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ironsheep/image-palette-mcp/internal/imaging"
	"github.com/ironsheep/image-palette-mcp/internal/palette"
	"github.com/ironsheep/image-palette-mcp/internal/point"
	"github.com/ironsheep/image-palette-mcp/internal/segmentation"
)

// Environment variables read by FromEnv.
const (
	EnvConfigPath = "PALETTE_MCP_CONFIG"
	EnvLogLevel   = "PALETTE_MCP_LOG_LEVEL"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// FeatureConfig mirrors imaging.FeatureOptions without the region, which is
// chosen per request.
type FeatureConfig struct {
	MaxDimension  int                `json:"max_dimension"`
	Blur          float64            `json:"blur"`
	ColorSpace    imaging.ColorSpace `json:"color_space"`
	SpatialWeight float64            `json:"spatial_weight"`
	MinAlpha      uint8              `json:"min_alpha"`
}

// PaletteConfig mirrors palette.Options.
type PaletteConfig struct {
	MaxColors     int     `json:"max_colors"`
	MergeDistance float64 `json:"merge_distance"`
	MinRatio      float64 `json:"min_ratio"`
}

// Config holds the defaults every tool call starts from. Requests may
// override the algorithm and its parameters.
type Config struct {
	LogLevel  string                 `json:"log_level"`
	Algorithm segmentation.Algorithm `json:"algorithm"`

	// Workers bounds the goroutines used by K-Means and SLIC. Zero means
	// GOMAXPROCS.
	Workers int `json:"workers"`

	Features FeatureConfig `json:"features"`
	Palette  PaletteConfig `json:"palette"`

	DBSCAN         segmentation.DBSCANConfig         `json:"dbscan"`
	DBSCANPlusPlus segmentation.DBSCANPlusPlusConfig `json:"dbscan_plus_plus"`
	KMeans         segmentation.KMeansConfig         `json:"kmeans"`
	SLIC           segmentation.SLICConfig           `json:"slic"`
	SNIC           segmentation.SNICConfig           `json:"snic"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		Algorithm: segmentation.AlgorithmSNIC,
		Features: FeatureConfig{
			MaxDimension:  256,
			ColorSpace:    imaging.SpaceLab,
			SpatialWeight: 0.25,
			MinAlpha:      1,
		},
		Palette: PaletteConfig{
			MaxColors:     8,
			MergeDistance: 0.05,
		},
		DBSCAN: segmentation.DBSCANConfig{
			MinPoints: 8,
			Epsilon:   0.03,
			Metric:    point.Euclidean,
		},
		DBSCANPlusPlus: segmentation.DBSCANPlusPlusConfig{
			MinPoints:   8,
			Epsilon:     0.03,
			Probability: 0.1,
			Metric:      point.Euclidean,
		},
		KMeans: segmentation.KMeansConfig{
			Clusters:      8,
			MaxIterations: 50,
			Tolerance:     1e-4,
			Metric:        point.Euclidean,
		},
		SLIC: segmentation.SLICConfig{
			Segments:      64,
			Compactness:   0.1,
			MaxIterations: 10,
			Tolerance:     1e-3,
			Metric:        point.Euclidean,
		},
		SNIC: segmentation.SNICConfig{
			Segments:    64,
			Compactness: 0.1,
			Metric:      point.Euclidean,
		},
	}
}

// Load reads a JSON configuration file on top of Default.
// The file must have a .json extension and be under 1MB. Fields omitted from
// the file keep their default values, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// FromEnv loads the file named by PALETTE_MCP_CONFIG, or Default when it is
// unset, then applies PALETTE_MCP_LOG_LEVEL.
func FromEnv() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigPath); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

// Validate checks the configuration. Every algorithm section is validated,
// not only the default one, so a request switching algorithms cannot fail on
// a bad file later.
func (c *Config) Validate() error {
	alg, err := segmentation.ParseAlgorithm(string(c.Algorithm))
	if err != nil {
		return err
	}
	c.Algorithm = alg

	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}

	if _, err := imaging.ParseColorSpace(string(c.Features.ColorSpace)); err != nil {
		return err
	}
	if c.Features.MaxDimension < 0 {
		return fmt.Errorf("features.max_dimension must be non-negative, got %d", c.Features.MaxDimension)
	}
	if !nonNegative(c.Features.Blur) {
		return fmt.Errorf("features.blur must be non-negative, got %v", c.Features.Blur)
	}
	if !nonNegative(c.Features.SpatialWeight) {
		return fmt.Errorf("features.spatial_weight must be non-negative, got %v", c.Features.SpatialWeight)
	}

	if c.Palette.MaxColors < 0 {
		return fmt.Errorf("palette.max_colors must be non-negative, got %d", c.Palette.MaxColors)
	}
	if !nonNegative(c.Palette.MergeDistance) {
		return fmt.Errorf("palette.merge_distance must be non-negative, got %v", c.Palette.MergeDistance)
	}
	if !nonNegative(c.Palette.MinRatio) || c.Palette.MinRatio > 1 {
		return fmt.Errorf("palette.min_ratio must be between 0 and 1, got %v", c.Palette.MinRatio)
	}

	for _, a := range segmentation.Algorithms {
		seg, err := c.Segmentation(a)
		if err != nil {
			return err
		}
		if _, err := segmentation.New(seg); err != nil {
			return fmt.Errorf("%s: %w", a, err)
		}
	}
	return nil
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Segmentation returns the configured parameters for alg.
func (c *Config) Segmentation(alg segmentation.Algorithm) (segmentation.Config, error) {
	switch alg {
	case segmentation.AlgorithmDBSCAN:
		return c.DBSCAN, nil
	case segmentation.AlgorithmDBSCANPlusPlus:
		return c.DBSCANPlusPlus, nil
	case segmentation.AlgorithmKMeans:
		return c.KMeans, nil
	case segmentation.AlgorithmSLIC:
		return c.SLIC, nil
	case segmentation.AlgorithmSNIC:
		return c.SNIC, nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %q", alg)
	}
}

// SegmentationWith returns the parameters for alg with the fields present in
// overrides, a JSON object, replacing the configured ones. Empty overrides
// leave the configuration untouched.
func (c *Config) SegmentationWith(alg segmentation.Algorithm, overrides json.RawMessage) (segmentation.Config, error) {
	base, err := c.Segmentation(alg)
	if err != nil {
		return nil, err
	}
	if len(overrides) == 0 || string(overrides) == "null" {
		return base, nil
	}

	// Decode into a copy of the concrete struct so omitted fields keep
	// their configured values.
	switch v := base.(type) {
	case segmentation.DBSCANConfig:
		err = json.Unmarshal(overrides, &v)
		base = v
	case segmentation.DBSCANPlusPlusConfig:
		err = json.Unmarshal(overrides, &v)
		base = v
	case segmentation.KMeansConfig:
		err = json.Unmarshal(overrides, &v)
		base = v
	case segmentation.SLICConfig:
		err = json.Unmarshal(overrides, &v)
		base = v
	case segmentation.SNICConfig:
		err = json.Unmarshal(overrides, &v)
		base = v
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameters: %w", alg, err)
	}
	return base, nil
}

// WorkerCount resolves Workers, mapping zero to GOMAXPROCS.
func (c *Config) WorkerCount() int {
	if c.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}

// FeatureOptions returns the feature extraction defaults for region, which
// may be nil.
func (c *Config) FeatureOptions(region *imaging.Region) imaging.FeatureOptions {
	return imaging.FeatureOptions{
		Region:        region,
		MaxDimension:  c.Features.MaxDimension,
		Blur:          c.Features.Blur,
		Space:         c.Features.ColorSpace,
		SpatialWeight: c.Features.SpatialWeight,
		MinAlpha:      c.Features.MinAlpha,
	}
}

// PaletteOptions returns the palette defaults.
func (c *Config) PaletteOptions() palette.Options {
	return palette.Options{
		MaxColors:     c.Palette.MaxColors,
		MergeDistance: c.Palette.MergeDistance,
		MinRatio:      c.Palette.MinRatio,
	}
}
