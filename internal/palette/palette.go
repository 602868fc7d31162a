// Package palette ranks the segments of a label image into colour swatches.
//
// Segments whose mean colours lie within a merge distance of each other are
// combined first, so a photograph split into many superpixels of the same
// sky still reports a single sky swatch.
package palette

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog"

	"github.com/ironsheep/image-palette-mcp/internal/cluster"
	"github.com/ironsheep/image-palette-mcp/internal/imaging"
	"github.com/ironsheep/image-palette-mcp/internal/point"
	"github.com/ironsheep/image-palette-mcp/internal/segment"
)

// Options controls Extract.
type Options struct {
	// MaxColors caps the number of swatches. Zero keeps all of them.
	MaxColors int

	// MergeDistance joins segments whose mean colours are within this
	// Euclidean distance in the feature colour space, transitively. Zero
	// disables merging.
	MergeDistance float64

	// MinRatio drops swatches covering less than this share of the labelled
	// pixels.
	MinRatio float64

	Logger zerolog.Logger
}

// Swatch is one palette entry.
type Swatch struct {
	Hex string           `json:"hex"`
	RGB imaging.RGBColor `json:"rgb"`

	// Color holds the mean colour in the feature colour space.
	Color []float64 `json:"color"`

	// Population is the number of feature pixels in the swatch and Ratio its
	// share of all labelled pixels.
	Population int     `json:"population"`
	Ratio      float64 `json:"ratio"`

	// X and Y locate the member pixel closest to the swatch centroid, in
	// source image coordinates.
	X int `json:"x"`
	Y int `json:"y"`
}

// Palette is the ranked result of Extract.
type Palette struct {
	Swatches []Swatch          `json:"swatches"`
	Space    imaging.ColorSpace `json:"color_space"`

	// Segments is the number of input segments and Merged the number left
	// after merging.
	Segments int `json:"segments"`
	Merged   int `json:"merged"`

	// Pixels is the number of labelled feature pixels.
	Pixels int `json:"pixels"`
}

// Extract merges similar segments of labels, ranks them by population and
// returns them as swatches. labels must have been computed over features.
// The label image is left untouched.
func Extract(features *imaging.Features, labels *segment.LabelImage, opts Options) (*Palette, error) {
	if labels.Width() != features.Width || labels.Height() != features.Height {
		return nil, fmt.Errorf("label image %dx%d does not match features %dx%d",
			labels.Width(), labels.Height(), features.Width, features.Height)
	}
	if opts.MaxColors < 0 {
		return nil, fmt.Errorf("max colors must not be negative, got %d", opts.MaxColors)
	}
	if math.IsNaN(opts.MergeDistance) || opts.MergeDistance < 0 {
		return nil, fmt.Errorf("merge distance must not be negative, got %v", opts.MergeDistance)
	}
	if math.IsNaN(opts.MinRatio) || opts.MinRatio < 0 || opts.MinRatio > 1 {
		return nil, fmt.Errorf("min ratio must lie in [0, 1], got %v", opts.MinRatio)
	}

	segs := make([]*segment.Segment, 0, labels.Len())
	for seg := range labels.Segments() {
		segs = append(segs, seg)
	}

	merged, err := merge(segs, opts.MergeDistance)
	if err != nil {
		return nil, err
	}

	pixels := 0
	for _, seg := range merged {
		pixels += seg.Len()
	}

	swatches := make([]Swatch, 0, len(merged))
	for _, seg := range merged {
		center := seg.Center()
		rgb := features.Color(center)
		rep := features.SourcePosition(representative(features, seg, center))
		sw := Swatch{
			Hex:        rgb.Hex(),
			RGB:        rgb,
			Color:      center[:imaging.ColorDims],
			Population: seg.Len(),
			Ratio:      float64(seg.Len()) / float64(pixels),
			X:          rep.X,
			Y:          rep.Y,
		}
		if sw.Ratio < opts.MinRatio {
			continue
		}
		swatches = append(swatches, sw)
	}

	slices.SortStableFunc(swatches, func(a, b Swatch) int {
		if c := cmp.Compare(b.Population, a.Population); c != 0 {
			return c
		}
		return cmp.Compare(a.Hex, b.Hex)
	})
	if opts.MaxColors > 0 && len(swatches) > opts.MaxColors {
		swatches = swatches[:opts.MaxColors]
	}

	opts.Logger.Debug().
		Int("segments", len(segs)).
		Int("merged", len(merged)).
		Int("swatches", len(swatches)).
		Msg("palette extracted")

	return &Palette{
		Swatches: swatches,
		Space:    features.Space,
		Segments: len(segs),
		Merged:   len(merged),
		Pixels:   pixels,
	}, nil
}

// merge groups segments whose colour centroids are density-connected at
// distance eps and absorbs each group into one new segment. With eps zero
// every segment stands alone. Inputs are cloned before absorbing.
func merge(segs []*segment.Segment, eps float64) ([]*segment.Segment, error) {
	if eps == 0 || len(segs) < 2 {
		out := make([]*segment.Segment, len(segs))
		for i, seg := range segs {
			out[i] = seg.Clone()
		}
		return out, nil
	}

	colors := make([]point.Point, len(segs))
	for i, seg := range segs {
		colors[i] = seg.Center()[:imaging.ColorDims]
	}

	// With one point per neighbourhood every segment is a core point, so
	// DBSCAN reduces to single-linkage grouping at eps.
	d, err := cluster.NewDBSCAN(1, eps, point.Euclidean)
	if err != nil {
		return nil, err
	}
	res, err := d.Fit(colors)
	if err != nil {
		return nil, err
	}

	out := make([]*segment.Segment, 0, len(res.Clusters))
	for _, group := range res.Clusters {
		var combined *segment.Segment
		for i := range group.Members() {
			if combined == nil {
				combined = segs[i].Clone()
				continue
			}
			combined.Absorb(segs[i].Clone())
		}
		out = append(out, combined)
	}
	return out, nil
}

// representative returns the member of seg nearest to center in feature
// space, preferring the lowest index on ties.
func representative(features *imaging.Features, seg *segment.Segment, center point.Point) int {
	best, bestDist := -1, math.Inf(1)
	for idx := range seg.Members() {
		if d := point.SquaredEuclidean.Measure(features.Points[idx], center); d < bestDist {
			best, bestDist = idx, d
		}
	}
	return best
}
