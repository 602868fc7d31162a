package cluster

import (
	"github.com/ironsheep/image-palette-mcp/internal/kdtree"
	"github.com/ironsheep/image-palette-mcp/internal/point"
	"github.com/ironsheep/image-palette-mcp/internal/segment"
)

// DBSCAN implements density-based clustering.
//
// A point is a core point when its epsilon-neighbourhood, itself included,
// holds at least minPoints points. Clusters grow breadth-first from core
// points; neighbours that are not core join the cluster but do not extend it.
// Points that no core point reaches end up as outliers.
type DBSCAN struct {
	minPoints int
	epsilon   float64
	metric    point.Metric
	opts      options
}

// NewDBSCAN validates the parameters and returns a ready clusterer.
// Epsilon is expressed in the units of metric, so it must be squared when
// metric is SquaredEuclidean.
func NewDBSCAN(minPoints int, epsilon float64, metric point.Metric, opts ...Option) (*DBSCAN, error) {
	if err := RequirePositive("min points", minPoints); err != nil {
		return nil, err
	}
	if err := RequirePositiveFinite("epsilon", epsilon); err != nil {
		return nil, err
	}
	if err := RequireMetric(metric); err != nil {
		return nil, err
	}
	return &DBSCAN{
		minPoints: minPoints,
		epsilon:   epsilon,
		metric:    metric,
		opts:      applyOptions(opts),
	}, nil
}

// Fit clusters points. An empty input yields an empty result.
func (d *DBSCAN) Fit(points []point.Point) (*Result, error) {
	if err := CheckDimensions(points); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return &Result{}, nil
	}

	dim := points[0].Dim()
	tree := kdtree.New(points, d.metric, d.opts.leafSize)
	labels := make([]Label, len(points))
	var clusters []*segment.Segment
	var queue []int

	for i := range points {
		if labels[i].Kind != Undefined {
			continue
		}

		neighbors := tree.SearchRadius(points[i], d.epsilon)
		if len(neighbors) < d.minPoints {
			labels[i] = Label{Kind: Outlier}
			continue
		}

		id := len(clusters)
		cluster := segment.New(dim)
		labels[i] = AssignedTo(id)
		cluster.Insert(i, points[i])

		queue = d.expand(queue[:0], neighbors, labels, id, cluster, points)
		for head := 0; head < len(queue); head++ {
			q := queue[head]
			labels[q] = AssignedTo(id)
			cluster.Insert(q, points[q])

			qNeighbors := tree.SearchRadius(points[q], d.epsilon)
			if len(qNeighbors) >= d.minPoints {
				queue = d.expand(queue, qNeighbors, labels, id, cluster, points)
			}
		}
		clusters = append(clusters, cluster)
	}

	d.opts.logger.Debug().
		Int("points", len(points)).
		Int("clusters", len(clusters)).
		Float64("epsilon", d.epsilon).
		Int("min_points", d.minPoints).
		Msg("dbscan complete")

	return &Result{Clusters: clusters, Labels: labels}, nil
}

// expand queues unvisited neighbours of a core point and attaches outliers
// directly, since an outlier is already known not to be a core point.
func (d *DBSCAN) expand(queue []int, neighbors []kdtree.Neighbor, labels []Label, id int, cluster *segment.Segment, points []point.Point) []int {
	for _, n := range neighbors {
		switch labels[n.Index].Kind {
		case Undefined:
			labels[n.Index] = Label{Kind: Marked}
			queue = append(queue, n.Index)
		case Outlier:
			labels[n.Index] = AssignedTo(id)
			cluster.Insert(n.Index, points[n.Index])
		}
	}
	return queue
}
