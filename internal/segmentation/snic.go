package segmentation

import (
	"container/heap"
	"math"

	"github.com/ironsheep/image-palette-mcp/internal/cluster"
	"github.com/ironsheep/image-palette-mcp/internal/kdtree"
	"github.com/ironsheep/image-palette-mcp/internal/point"
	"github.com/ironsheep/image-palette-mcp/internal/segment"
)

// snic implements simple non-iterative clustering.
//
// Grid seeds are pushed onto a min-heap at distance zero. Popping a candidate
// labels its pixel for good, folds it into the segment centroid and pushes
// the pixel's unlabelled 4-neighbours scored against the updated centroid.
// Pixels already labelled when popped are skipped, so each pixel goes to the
// closest segment that reaches it first.
//
// Eligible pixels cut off from every seed by the mask are attached to the
// segment whose centroid is nearest and flooded from there, so every eligible
// pixel ends up in exactly one segment.
type snic struct {
	segments    int
	compactness float64
	metric      point.Metric
	opts        options
}

func newSNIC(c SNICConfig, o options) (*snic, error) {
	if err := cluster.RequirePositive("segment count", c.Segments); err != nil {
		return nil, err
	}
	if err := cluster.RequirePositiveFinite("compactness", c.Compactness); err != nil {
		return nil, err
	}
	if err := cluster.RequireMetric(c.Metric); err != nil {
		return nil, err
	}
	return &snic{
		segments:    c.Segments,
		compactness: c.Compactness,
		metric:      c.Metric,
		opts:        o,
	}, nil
}

// candidate proposes pixel index for segment label. seq breaks distance ties
// in push order.
type candidate struct {
	index    int
	label    int
	distance float64
	seq      uint64
}

type candidateQueue []candidate

func (q candidateQueue) Len() int { return len(q) }

func (q candidateQueue) Less(i, j int) bool {
	if q[i].distance != q[j].distance {
		return q[i].distance < q[j].distance
	}
	return q[i].seq < q[j].seq
}

func (q candidateQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *candidateQueue) Push(x any) { *q = append(*q, x.(candidate)) }

func (q *candidateQueue) Pop() any {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}

// snicRun holds the state of one SNIC pass over a frame.
type snicRun struct {
	*snic
	f      *frame
	step   float64
	labels []int
	segs   []*segment.Segment
	sumX   []float64
	sumY   []float64
	queue  candidateQueue
	seq    uint64
	buf    []int
}

func (s *snic) segment(f *frame) (*segment.LabelImage, error) {
	seeds := f.gridSeeds(s.segments)
	r := &snicRun{
		snic:   s,
		f:      f,
		step:   gridStep(len(f.eligible), s.segments),
		labels: make([]int, f.width*f.height),
		segs:   make([]*segment.Segment, len(seeds)),
		sumX:   make([]float64, len(seeds)),
		sumY:   make([]float64, len(seeds)),
		buf:    make([]int, 0, 4),
	}
	for i := range r.labels {
		r.labels[i] = segment.Unassigned
	}
	for label, idx := range seeds {
		r.segs[label] = segment.New(f.dim())
		r.push(idx, label, 0)
	}
	r.grow()

	islands := r.attachIslands()

	s.opts.logger.Debug().
		Int("seeds", len(seeds)).
		Int("islands", islands).
		Msg("snic complete")

	return f.labelImage(r.segs), nil
}

func (r *snicRun) push(idx, label int, distance float64) {
	heap.Push(&r.queue, candidate{index: idx, label: label, distance: distance, seq: r.seq})
	r.seq++
}

// grow drains the queue.
func (r *snicRun) grow() {
	for r.queue.Len() > 0 {
		c := heap.Pop(&r.queue).(candidate)
		if r.labels[c.index] != segment.Unassigned {
			continue
		}
		r.labels[c.index] = c.label
		seg := r.segs[c.label]
		seg.Insert(c.index, r.f.points[c.index])

		x, y := r.f.xy(c.index)
		r.sumX[c.label] += float64(x)
		r.sumY[c.label] += float64(y)
		n := float64(seg.Len())
		cx, cy := r.sumX[c.label]/n, r.sumY[c.label]/n
		centroid := seg.Center()

		r.buf = r.f.neighbours(x, y, r.buf)
		for _, nb := range r.buf {
			if r.labels[nb] != segment.Unassigned {
				continue
			}
			nx, ny := r.f.xy(nb)
			spatial := math.Hypot(float64(nx)-cx, float64(ny)-cy)
			d := r.metric.Measure(r.f.points[nb], centroid) + r.metric.Axis(r.compactness*spatial/r.step)
			r.push(nb, c.label, d)
		}
	}
}

// attachIslands labels the eligible pixels the seeded growth could not
// reach. Each unreached region joins the segment whose centroid, as it stood
// after the seeded growth, is nearest to the region's first pixel.
func (r *snicRun) attachIslands() int {
	var tree *kdtree.Tree
	islands := 0
	for _, idx := range r.f.eligible {
		if r.labels[idx] != segment.Unassigned {
			continue
		}
		if tree == nil {
			centroids := make([]point.Point, len(r.segs))
			for i, seg := range r.segs {
				centroids[i] = seg.Center()
			}
			tree = kdtree.New(centroids, r.metric, r.opts.leafSize)
		}
		nearest, _ := tree.SearchNearest(r.f.points[idx])
		r.push(idx, nearest.Index, 0)
		r.grow()
		islands++
	}
	return islands
}
