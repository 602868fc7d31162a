package segmentation

import (
	"fmt"
	"strings"
	"time"

	"github.com/ironsheep/image-palette-mcp/internal/cluster"
	"github.com/ironsheep/image-palette-mcp/internal/point"
	"github.com/ironsheep/image-palette-mcp/internal/segment"
)

// Algorithm names a segmentation algorithm.
type Algorithm string

const (
	AlgorithmDBSCAN         Algorithm = "dbscan"
	AlgorithmDBSCANPlusPlus Algorithm = "dbscan++"
	AlgorithmKMeans         Algorithm = "kmeans"
	AlgorithmSLIC           Algorithm = "slic"
	AlgorithmSNIC           Algorithm = "snic"
)

// Algorithms lists every supported algorithm in a stable order.
var Algorithms = []Algorithm{
	AlgorithmDBSCAN,
	AlgorithmDBSCANPlusPlus,
	AlgorithmKMeans,
	AlgorithmSLIC,
	AlgorithmSNIC,
}

// ParseAlgorithm maps a case-insensitive algorithm name to its value.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dbscan":
		return AlgorithmDBSCAN, nil
	case "dbscan++", "dbscanpp", "dbscan_plus_plus":
		return AlgorithmDBSCANPlusPlus, nil
	case "kmeans", "k-means", "k_means":
		return AlgorithmKMeans, nil
	case "slic":
		return AlgorithmSLIC, nil
	case "snic":
		return AlgorithmSNIC, nil
	default:
		return "", fmt.Errorf("unknown algorithm: %q", name)
	}
}

// Config selects one segmentation algorithm and carries its parameters.
//
// The set of implementations is closed: DBSCANConfig, DBSCANPlusPlusConfig,
// KMeansConfig, SLICConfig and SNICConfig. New is the only place that
// distinguishes between them.
type Config interface {
	Algorithm() Algorithm
	config()
}

// DBSCANConfig configures density clustering. Outliers stay unlabelled.
type DBSCANConfig struct {
	MinPoints int          `json:"min_points"`
	Epsilon   float64      `json:"epsilon"`
	Metric    point.Metric `json:"metric"`
}

// DBSCANPlusPlusConfig configures DBSCAN with subsampled core detection.
type DBSCANPlusPlusConfig struct {
	MinPoints   int          `json:"min_points"`
	Epsilon     float64      `json:"epsilon"`
	Probability float64      `json:"probability"`
	Metric      point.Metric `json:"metric"`
}

// KMeansConfig configures centroid clustering. Seeds defaults to
// segment.RegularGrid over the image.
type KMeansConfig struct {
	Clusters      int               `json:"clusters"`
	MaxIterations int               `json:"max_iterations"`
	Tolerance     float64           `json:"tolerance"`
	Metric        point.Metric      `json:"metric"`
	Seeds         segment.Generator `json:"-"`
}

// SLICConfig configures simple linear iterative clustering superpixels.
// Compactness weighs pixel distance, in units of the grid step, against
// feature distance.
type SLICConfig struct {
	Segments      int          `json:"segments"`
	Compactness   float64      `json:"compactness"`
	MaxIterations int          `json:"max_iterations"`
	Tolerance     float64      `json:"tolerance"`
	Metric        point.Metric `json:"metric"`
}

// SNICConfig configures simple non-iterative clustering superpixels.
type SNICConfig struct {
	Segments    int          `json:"segments"`
	Compactness float64      `json:"compactness"`
	Metric      point.Metric `json:"metric"`
}

func (DBSCANConfig) Algorithm() Algorithm         { return AlgorithmDBSCAN }
func (DBSCANPlusPlusConfig) Algorithm() Algorithm { return AlgorithmDBSCANPlusPlus }
func (KMeansConfig) Algorithm() Algorithm         { return AlgorithmKMeans }
func (SLICConfig) Algorithm() Algorithm           { return AlgorithmSLIC }
func (SNICConfig) Algorithm() Algorithm           { return AlgorithmSNIC }

func (DBSCANConfig) config()         {}
func (DBSCANPlusPlusConfig) config() {}
func (KMeansConfig) config()         {}
func (SLICConfig) config()           {}
func (SNICConfig) config()           {}

// Segmenter runs one configured algorithm over images. It holds no per-run
// state, so a single Segmenter may be reused, but concurrent calls each pay
// for their own buffers.
type Segmenter struct {
	algorithm Algorithm
	opts      options
	run       func(f *frame) (*segment.LabelImage, error)
}

// New validates cfg and returns a Segmenter for the algorithm it selects.
// Every parameter is checked here, before any point is seen; failures match
// ErrInvalidConfig.
func New(cfg Config, opts ...Option) (*Segmenter, error) {
	o := applyOptions(opts)
	s := &Segmenter{opts: o}

	switch c := cfg.(type) {
	case DBSCANConfig:
		d, err := cluster.NewDBSCAN(c.MinPoints, c.Epsilon, c.Metric, o.clusterOptions()...)
		if err != nil {
			return nil, err
		}
		s.run = func(f *frame) (*segment.LabelImage, error) {
			return f.fromClusters(d.Fit(f.compact()))
		}

	case DBSCANPlusPlusConfig:
		d, err := cluster.NewDBSCANPlusPlus(c.MinPoints, c.Epsilon, c.Probability, c.Metric, o.clusterOptions()...)
		if err != nil {
			return nil, err
		}
		s.run = func(f *frame) (*segment.LabelImage, error) {
			return f.fromClusters(d.Fit(f.compact()))
		}

	case KMeansConfig:
		km, err := cluster.NewKMeans(c.Clusters, c.MaxIterations, c.Tolerance, c.Metric, o.clusterOptions()...)
		if err != nil {
			return nil, err
		}
		seeds := c.Seeds
		s.run = func(f *frame) (*segment.LabelImage, error) {
			var picked []int
			if seeds != nil {
				picked = seeds.Generate(f.width, f.height, km.K(), f.mask)
			} else {
				picked = f.gridSeeds(km.K())
			}
			return f.fromClusters(km.FitSeeded(f.compact(), f.compactSeeds(picked)))
		}

	case SLICConfig:
		sl, err := newSLIC(c, o)
		if err != nil {
			return nil, err
		}
		s.run = sl.segment

	case SNICConfig:
		sn, err := newSNIC(c, o)
		if err != nil {
			return nil, err
		}
		s.run = sn.segment

	case nil:
		return nil, &cluster.ConfigError{Field: "algorithm", Value: nil, Reason: "no configuration given"}

	default:
		return nil, &cluster.ConfigError{Field: "algorithm", Value: fmt.Sprintf("%T", cfg), Reason: "unsupported configuration"}
	}

	s.algorithm = cfg.Algorithm()
	return s, nil
}

// Algorithm returns the algorithm s runs.
func (s *Segmenter) Algorithm() Algorithm {
	return s.algorithm
}

// Segment labels every pixel of a width*height grid of points.
func (s *Segmenter) Segment(width, height int, points []point.Point) (*segment.LabelImage, error) {
	return s.SegmentWithMask(width, height, points, nil)
}

// SegmentWithMask labels the pixels of a width*height grid whose mask entry is
// true. Masked pixels are never seeded, never assigned and never contribute
// to a centroid; they read as unassigned in the result. A nil mask keeps
// every pixel.
//
// Points and mask must both hold width*height entries, otherwise a
// *LengthMismatchError is returned. A grid without eligible pixels yields an
// empty label image.
func (s *Segmenter) SegmentWithMask(width, height int, points []point.Point, mask []bool) (*segment.LabelImage, error) {
	f, err := newFrame(width, height, points, mask)
	if err != nil {
		return nil, err
	}
	if len(f.eligible) == 0 {
		return f.labelImage(nil), nil
	}

	start := time.Now()
	labels, err := s.run(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.algorithm, err)
	}

	s.opts.logger.Debug().
		Str("algorithm", string(s.algorithm)).
		Int("width", width).
		Int("height", height).
		Int("eligible", len(f.eligible)).
		Int("segments", labels.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("segmentation complete")

	return labels, nil
}
