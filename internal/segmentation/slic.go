package segmentation

import (
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-palette-mcp/internal/cluster"
	"github.com/ironsheep/image-palette-mcp/internal/kdtree"
	"github.com/ironsheep/image-palette-mcp/internal/point"
	"github.com/ironsheep/image-palette-mcp/internal/segment"
)

// minParallelPixels is the eligible pixel count below which SLIC assigns on
// the calling goroutine.
const minParallelPixels = 4096

// slic implements simple linear iterative clustering.
//
// Seeds start on a regular grid with step S = sqrt(eligible/segments) and
// are moved to the lowest-gradient pixel of their 3x3 neighbourhood. Each
// iteration lets every centre claim the pixels of a window of radius 2S
// around it, scoring a pixel as
//
//	metric(feature, centre) + metric.Axis(compactness * pixelDistance / S)
//
// Pixels no window reached go to the nearest centre in feature space. The
// run stops once every centroid moves by at most the tolerance.
type slic struct {
	segments      int
	compactness   float64
	maxIterations int
	tolerance     float64
	metric        point.Metric
	opts          options
}

// centre is a SLIC cluster centre: a feature centroid plus the mean pixel
// position of its members.
type centre struct {
	feature point.Point
	x, y    float64
}

func newSLIC(c SLICConfig, o options) (*slic, error) {
	if err := cluster.RequirePositive("segment count", c.Segments); err != nil {
		return nil, err
	}
	if err := cluster.RequirePositiveFinite("compactness", c.Compactness); err != nil {
		return nil, err
	}
	if err := cluster.RequirePositive("max iterations", c.MaxIterations); err != nil {
		return nil, err
	}
	if err := cluster.RequirePositiveFinite("tolerance", c.Tolerance); err != nil {
		return nil, err
	}
	if err := cluster.RequireMetric(c.Metric); err != nil {
		return nil, err
	}
	return &slic{
		segments:      c.Segments,
		compactness:   c.Compactness,
		maxIterations: c.MaxIterations,
		tolerance:     c.Tolerance,
		metric:        c.Metric,
		opts:          o,
	}, nil
}

func (s *slic) segment(f *frame) (*segment.LabelImage, error) {
	step := gridStep(len(f.eligible), s.segments)
	radius := int(math.Ceil(2 * step))

	seeds := snapSeeds(f, f.gridSeeds(s.segments), s.metric)
	centres := make([]centre, len(seeds))
	segs := make([]*segment.Segment, len(seeds))
	for i, idx := range seeds {
		x, y := f.xy(idx)
		centres[i] = centre{feature: f.points[idx].Clone(), x: float64(x), y: float64(y)}
		segs[i] = segment.New(f.dim())
	}

	total := f.width * f.height
	labels := make([]int, total)
	dist := make([]float64, total)

	for iter := 1; iter <= s.maxIterations; iter++ {
		for i := range labels {
			labels[i] = segment.Unassigned
			dist[i] = math.Inf(1)
		}
		if err := s.assignWindows(f, centres, radius, step, labels, dist); err != nil {
			return nil, err
		}
		orphans := s.assignOrphans(f, centres, labels)
		converged := s.update(f, centres, segs, labels)

		s.opts.logger.Debug().
			Int("iteration", iter).
			Int("centres", len(centres)).
			Int("orphans", orphans).
			Bool("converged", converged).
			Msg("slic iteration")

		if converged {
			break
		}
	}
	return f.labelImage(segs), nil
}

// assignWindows lets every centre claim pixels inside its window. Rows are
// split into bands, one per worker; each band visits the centres in the same
// order, so the result does not depend on the worker count.
func (s *slic) assignWindows(f *frame, centres []centre, radius int, step float64, labels []int, dist []float64) error {
	bands := 1
	if s.opts.workers > 1 && len(f.eligible) >= minParallelPixels {
		bands = min(s.opts.workers, f.height)
	}
	if bands == 1 {
		s.scanBand(f, centres, radius, step, 0, f.height, labels, dist)
		return nil
	}

	rows := (f.height + bands - 1) / bands
	var g errgroup.Group
	g.SetLimit(bands)
	for top := 0; top < f.height; top += rows {
		bottom := min(top+rows, f.height)
		g.Go(func() error {
			s.scanBand(f, centres, radius, step, top, bottom, labels, dist)
			return nil
		})
	}
	return g.Wait()
}

// scanBand assigns the pixels of rows [top, bottom).
func (s *slic) scanBand(f *frame, centres []centre, radius int, step float64, top, bottom int, labels []int, dist []float64) {
	for c, ctr := range centres {
		cx := int(math.Round(ctr.x))
		cy := int(math.Round(ctr.y))
		y0, y1 := max(cy-radius, top), min(cy+radius, bottom-1)
		x0, x1 := max(cx-radius, 0), min(cx+radius, f.width-1)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				idx := y*f.width + x
				if !f.isEligible(idx) {
					continue
				}
				if d := s.distance(f.points[idx], ctr, x, y, step); d < dist[idx] {
					dist[idx] = d
					labels[idx] = c
				}
			}
		}
	}
}

func (s *slic) distance(p point.Point, ctr centre, x, y int, step float64) float64 {
	spatial := math.Hypot(float64(x)-ctr.x, float64(y)-ctr.y)
	return s.metric.Measure(p, ctr.feature) + s.metric.Axis(s.compactness*spatial/step)
}

// assignOrphans gives every eligible pixel left unlabelled by the windows to
// the centre nearest in feature space, and returns how many there were.
func (s *slic) assignOrphans(f *frame, centres []centre, labels []int) int {
	var tree *kdtree.Tree
	orphans := 0
	for _, idx := range f.eligible {
		if labels[idx] != segment.Unassigned {
			continue
		}
		if tree == nil {
			features := make([]point.Point, len(centres))
			for i, c := range centres {
				features[i] = c.feature
			}
			tree = kdtree.New(features, s.metric, s.opts.leafSize)
		}
		nearest, _ := tree.SearchNearest(f.points[idx])
		labels[idx] = nearest.Index
		orphans++
	}
	return orphans
}

// update rebuilds the segments from labels, moves every non-empty centre to
// its members' mean and reports whether all moves were within tolerance.
// Empty segments keep their previous centre.
func (s *slic) update(f *frame, centres []centre, segs []*segment.Segment, labels []int) bool {
	for _, seg := range segs {
		seg.Clear()
	}
	sumX := make([]float64, len(centres))
	sumY := make([]float64, len(centres))
	for _, idx := range f.eligible {
		c := labels[idx]
		segs[c].Insert(idx, f.points[idx])
		x, y := f.xy(idx)
		sumX[c] += float64(x)
		sumY[c] += float64(y)
	}

	converged := true
	for c, seg := range segs {
		if seg.IsEmpty() {
			continue
		}
		next := seg.Center()
		if s.metric.Measure(centres[c].feature, next) > s.tolerance {
			converged = false
		}
		n := float64(seg.Len())
		centres[c] = centre{feature: next, x: sumX[c] / n, y: sumY[c] / n}
	}
	return converged
}

// gridStep returns S = sqrt(pixels/segments), never less than one pixel.
func gridStep(pixels, segments int) float64 {
	return math.Max(math.Sqrt(float64(pixels)/float64(segments)), 1)
}
