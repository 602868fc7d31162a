package cluster

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/ironsheep/image-palette-mcp/internal/kdtree"
	"github.com/ironsheep/image-palette-mcp/internal/point"
	"github.com/ironsheep/image-palette-mcp/internal/segment"
)

// DBSCANPlusPlus is DBSCAN with core points evaluated on a random subsample.
//
// Only ceil(probability*n) points are tested for core status, each against
// the full point set. Core points within epsilon of each other form clusters,
// and every remaining point joins the cluster of its nearest core point when
// that core is within epsilon. Everything else is an outlier.
type DBSCANPlusPlus struct {
	minPoints   int
	epsilon     float64
	probability float64
	metric      point.Metric
	opts        options
}

// NewDBSCANPlusPlus validates the parameters and returns a ready clusterer.
// probability must lie in (0, 1]; minPoints and epsilon follow NewDBSCAN.
func NewDBSCANPlusPlus(minPoints int, epsilon, probability float64, metric point.Metric, opts ...Option) (*DBSCANPlusPlus, error) {
	if err := RequirePositive("min points", minPoints); err != nil {
		return nil, err
	}
	if err := RequirePositiveFinite("epsilon", epsilon); err != nil {
		return nil, err
	}
	if err := requireProbability(probability); err != nil {
		return nil, err
	}
	if err := RequireMetric(metric); err != nil {
		return nil, err
	}
	return &DBSCANPlusPlus{
		minPoints:   minPoints,
		epsilon:     epsilon,
		probability: probability,
		metric:      metric,
		opts:        applyOptions(opts),
	}, nil
}

// Fit clusters points. An empty input yields an empty result.
func (d *DBSCANPlusPlus) Fit(points []point.Point) (*Result, error) {
	if err := CheckDimensions(points); err != nil {
		return nil, err
	}
	n := len(points)
	if n == 0 {
		return &Result{}, nil
	}

	tree := kdtree.New(points, d.metric, d.opts.leafSize)
	labels := make([]Label, n)

	cores := d.findCores(points, tree, labels)

	corePoints := make([]point.Point, len(cores))
	for i, idx := range cores {
		corePoints[i] = points[idx]
	}
	coreTree := kdtree.New(corePoints, d.metric, d.opts.leafSize)

	// Connect cores that lie within epsilon of each other.
	coreCluster := make([]int, len(cores))
	for i := range coreCluster {
		coreCluster[i] = -1
	}
	clusterCount := 0
	var queue []int
	for c := range cores {
		if coreCluster[c] >= 0 {
			continue
		}
		id := clusterCount
		clusterCount++
		coreCluster[c] = id
		queue = append(queue[:0], c)
		for head := 0; head < len(queue); head++ {
			for _, nb := range coreTree.SearchRadius(corePoints[queue[head]], d.epsilon) {
				if coreCluster[nb.Index] < 0 {
					coreCluster[nb.Index] = id
					queue = append(queue, nb.Index)
				}
			}
		}
	}

	clusters := make([]*segment.Segment, clusterCount)
	for i := range clusters {
		clusters[i] = segment.New(points[0].Dim())
	}
	for i, idx := range cores {
		labels[idx] = AssignedTo(coreCluster[i])
	}

	for i, p := range points {
		if labels[i].Kind != Assigned {
			nearest, ok := coreTree.SearchNearest(p)
			if ok && nearest.Distance <= d.epsilon {
				labels[i] = AssignedTo(coreCluster[nearest.Index])
			} else {
				labels[i] = Label{Kind: Outlier}
				continue
			}
		}
		clusters[labels[i].Cluster].Insert(i, p)
	}

	d.opts.logger.Debug().
		Int("points", n).
		Int("candidates", int(math.Ceil(d.probability*float64(n)))).
		Int("cores", len(cores)).
		Int("clusters", clusterCount).
		Msg("dbscan++ complete")

	return &Result{Clusters: clusters, Labels: labels}, nil
}

// findCores draws the subsample, marks every sampled point and returns the
// sampled indices that are core points, in ascending order.
func (d *DBSCANPlusPlus) findCores(points []point.Point, tree *kdtree.Tree, labels []Label) []int {
	n := len(points)
	m := int(math.Ceil(d.probability * float64(n)))
	m = min(max(m, 1), n)

	r := rand.New(rand.NewPCG(d.opts.randSeed, d.opts.randSeed^0x9e3779b97f4a7c15))
	sample := r.Perm(n)[:m]
	sort.Ints(sample)

	cores := make([]int, 0, m)
	for _, idx := range sample {
		labels[idx] = Label{Kind: Marked}
		if len(tree.SearchRadius(points[idx], d.epsilon)) >= d.minPoints {
			cores = append(cores, idx)
		}
	}
	return cores
}
