package segmentation

import (
	"fmt"

	"github.com/ironsheep/image-palette-mcp/internal/cluster"
	"github.com/ironsheep/image-palette-mcp/internal/point"
	"github.com/ironsheep/image-palette-mcp/internal/segment"
)

// frame is a validated segmentation input: a row-major width*height grid of
// feature points plus the indices the mask leaves eligible.
type frame struct {
	width    int
	height   int
	points   []point.Point
	mask     []bool
	eligible []int
}

func newFrame(width, height int, points []point.Point, mask []bool) (*frame, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("image size %dx%d: %w", width, height, ErrInvalidInput)
	}
	total := width * height
	if len(points) != total {
		return nil, &LengthMismatchError{Field: "points", Expected: total, Actual: len(points)}
	}
	if mask != nil && len(mask) != total {
		return nil, &LengthMismatchError{Field: "mask", Expected: total, Actual: len(mask)}
	}

	f := &frame{width: width, height: height, points: points, mask: mask}
	for i := range total {
		if f.isEligible(i) {
			f.eligible = append(f.eligible, i)
		}
	}

	// Masked pixels are never read, so only eligible points must agree.
	if len(f.eligible) > 0 {
		dim := points[f.eligible[0]].Dim()
		for _, idx := range f.eligible {
			if d := points[idx].Dim(); d != dim {
				return nil, &cluster.DimensionMismatchError{Index: idx, Expected: dim, Actual: d}
			}
		}
	}
	return f, nil
}

func (f *frame) isEligible(idx int) bool {
	return f.mask == nil || f.mask[idx]
}

func (f *frame) dim() int {
	if len(f.eligible) == 0 {
		return 0
	}
	return f.points[f.eligible[0]].Dim()
}

func (f *frame) xy(idx int) (int, int) {
	return idx % f.width, idx / f.width
}

// at returns the index of pixel (x, y), or fallback when the pixel lies
// outside the image or is masked out.
func (f *frame) at(x, y, fallback int) int {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return fallback
	}
	idx := y*f.width + x
	if !f.isEligible(idx) {
		return fallback
	}
	return idx
}

// neighbours appends the eligible 4-connected neighbours of (x, y) to buf.
func (f *frame) neighbours(x, y int, buf []int) []int {
	buf = buf[:0]
	for _, d := range [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}} {
		if idx := f.at(x+d[0], y+d[1], -1); idx >= 0 {
			buf = append(buf, idx)
		}
	}
	return buf
}

// compact returns the eligible points in pixel order. Position i of the
// result corresponds to pixel f.eligible[i].
func (f *frame) compact() []point.Point {
	out := make([]point.Point, len(f.eligible))
	for i, idx := range f.eligible {
		out[i] = f.points[idx]
	}
	return out
}

// gridSeeds places up to k seeds on the regular grid. When the mask hides
// every grid position the seeds are spread evenly over the eligible pixels
// instead, so a non-empty frame always gets at least one seed.
func (f *frame) gridSeeds(k int) []int {
	seeds := segment.RegularGrid{}.Generate(f.width, f.height, k, f.mask)
	if len(seeds) == 0 {
		seeds = segment.Uniform{}.Generate(f.width, f.height, k, f.mask)
	}
	return seeds
}

// compactSeeds converts pixel indices into positions within compact().
func (f *frame) compactSeeds(seeds []int) []int {
	pos := make(map[int]int, len(f.eligible))
	for i, idx := range f.eligible {
		pos[idx] = i
	}
	out := make([]int, 0, len(seeds))
	for _, s := range seeds {
		if i, ok := pos[s]; ok {
			out = append(out, i)
		}
	}
	return out
}

// fromClusters turns clusters over compact() into a label image over the
// full grid.
func (f *frame) fromClusters(res *cluster.Result, err error) (*segment.LabelImage, error) {
	if err != nil {
		return nil, err
	}
	segs := make([]*segment.Segment, 0, len(res.Clusters))
	for _, c := range res.Clusters {
		seg := segment.New(f.dim())
		for i := range c.Members() {
			idx := f.eligible[i]
			seg.Insert(idx, f.points[idx])
		}
		segs = append(segs, seg)
	}
	return f.labelImage(segs), nil
}

func (f *frame) labelImage(segs []*segment.Segment) *segment.LabelImage {
	return segment.NewLabelImage(f.width, f.height, segs)
}
