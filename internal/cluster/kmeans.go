package cluster

import (
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-palette-mcp/internal/kdtree"
	"github.com/ironsheep/image-palette-mcp/internal/point"
	"github.com/ironsheep/image-palette-mcp/internal/segment"
)

// minParallelPoints is the input size below which the assignment scan stays
// on the calling goroutine even when more workers are configured.
const minParallelPoints = 4096

// KMeans implements Lloyd's algorithm with kd-tree accelerated assignment.
//
// Each iteration rebuilds a kd-tree over the current centres, assigns every
// point to its nearest centre and recomputes the centroids. The run stops
// once every centre moves by at most the tolerance, or after maxIterations.
// Hitting the iteration limit is not an error; the last assignment is
// returned with Converged set to false.
type KMeans struct {
	k             int
	maxIterations int
	tolerance     float64
	metric        point.Metric
	opts          options
}

// NewKMeans validates the parameters and returns a ready clusterer. The
// tolerance is compared against metric distances between successive centres.
func NewKMeans(k, maxIterations int, tolerance float64, metric point.Metric, opts ...Option) (*KMeans, error) {
	if err := RequirePositive("cluster count", k); err != nil {
		return nil, err
	}
	if err := RequirePositive("max iterations", maxIterations); err != nil {
		return nil, err
	}
	if err := RequirePositiveFinite("tolerance", tolerance); err != nil {
		return nil, err
	}
	if err := RequireMetric(metric); err != nil {
		return nil, err
	}
	return &KMeans{
		k:             k,
		maxIterations: maxIterations,
		tolerance:     tolerance,
		metric:        metric,
		opts:          applyOptions(opts),
	}, nil
}

// K returns the configured cluster count.
func (km *KMeans) K() int {
	return km.k
}

// Fit clusters points, placing the initial centres with the configured seed
// generator. Points are presented to the generator as a single row.
func (km *KMeans) Fit(points []point.Point) (*Result, error) {
	if err := CheckDimensions(points); err != nil {
		return nil, err
	}
	seeds := km.opts.seeds.Generate(len(points), 1, km.k, nil)
	return km.fit(points, seeds)
}

// FitSeeded clusters points starting from the given seed indices. Indices
// outside the input and duplicates are ignored, and at most k seeds are used.
func (km *KMeans) FitSeeded(points []point.Point, seeds []int) (*Result, error) {
	if err := CheckDimensions(points); err != nil {
		return nil, err
	}
	return km.fit(points, seeds)
}

func (km *KMeans) fit(points []point.Point, seeds []int) (*Result, error) {
	n := len(points)
	if n == 0 {
		return &Result{Converged: true}, nil
	}
	dim := points[0].Dim()

	// Every point is its own centre.
	if km.k >= n {
		clusters := make([]*segment.Segment, n)
		for i, p := range points {
			clusters[i] = segment.New(dim)
			clusters[i].Insert(i, p)
		}
		return &Result{Clusters: clusters, Converged: true}, nil
	}

	centers := make([]point.Point, 0, km.k)
	seen := make(map[int]bool, len(seeds))
	for _, idx := range seeds {
		if idx < 0 || idx >= n || seen[idx] {
			continue
		}
		seen[idx] = true
		centers = append(centers, points[idx].Clone())
		if len(centers) == km.k {
			break
		}
	}
	if len(centers) == 0 {
		return &Result{Converged: true}, nil
	}

	segments := make([]*segment.Segment, len(centers))
	for i := range segments {
		segments[i] = segment.New(dim)
	}
	assignment := make([]int, n)
	result := &Result{}

	for iter := 1; iter <= km.maxIterations; iter++ {
		tree := kdtree.New(centers, km.metric, km.opts.leafSize)
		if err := km.assign(points, tree, assignment); err != nil {
			return nil, err
		}

		for _, seg := range segments {
			seg.Clear()
		}
		var inertia float64
		for i, p := range points {
			c := assignment[i]
			segments[c].Insert(i, p)
			inertia += point.SquaredEuclidean.Measure(p, centers[c])
		}
		result.Inertia = append(result.Inertia, inertia)
		result.Iterations = iter

		converged := true
		for c, seg := range segments {
			if seg.IsEmpty() {
				continue
			}
			next := seg.Center()
			if km.metric.Measure(centers[c], next) > km.tolerance {
				converged = false
			}
			centers[c] = next
		}

		km.opts.logger.Debug().
			Int("iteration", iter).
			Float64("inertia", inertia).
			Bool("converged", converged).
			Msg("kmeans iteration")

		if converged {
			result.Converged = true
			break
		}
	}

	for _, seg := range segments {
		if !seg.IsEmpty() {
			result.Clusters = append(result.Clusters, seg)
		}
	}
	return result, nil
}

// assign writes the index of the nearest centre of every point into out.
// Points are split into contiguous ranges, one per worker, so each goroutine
// writes a disjoint part of out; the caller reads out only after Wait.
func (km *KMeans) assign(points []point.Point, tree *kdtree.Tree, out []int) error {
	n := len(points)
	workers := km.opts.workers
	if workers <= 1 || n < minParallelPoints {
		for i, p := range points {
			nearest, _ := tree.SearchNearest(p)
			out[i] = nearest.Index
		}
		return nil
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				nearest, _ := tree.SearchNearest(points[i])
				out[i] = nearest.Index
			}
			return nil
		})
	}
	return g.Wait()
}
