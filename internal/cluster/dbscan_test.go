package cluster

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-palette-mcp/internal/kdtree"
	"github.com/ironsheep/image-palette-mcp/internal/point"
)

// blobs returns n points scattered within spread of each centre, in centre
// order.
func blobs(r *rand.Rand, centers []point.Point, n int, spread float64) []point.Point {
	var out []point.Point
	for _, c := range centers {
		for i := 0; i < n; i++ {
			p := make(point.Point, len(c))
			for d := range c {
				p[d] = c[d] + (r.Float64()*2-1)*spread
			}
			out = append(out, p)
		}
	}
	return out
}

func TestNewDBSCAN_Validation(t *testing.T) {
	tests := []struct {
		name      string
		minPoints int
		epsilon   float64
		metric    point.Metric
	}{
		{"zero min points", 0, 0.1, point.Euclidean},
		{"negative min points", -2, 0.1, point.Euclidean},
		{"zero epsilon", 3, 0, point.Euclidean},
		{"negative epsilon", 3, -1, point.Euclidean},
		{"NaN epsilon", 3, math.NaN(), point.Euclidean},
		{"infinite epsilon", 3, math.Inf(1), point.Euclidean},
		{"unknown metric", 3, 0.1, point.Metric(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDBSCAN(tt.minPoints, tt.epsilon, tt.metric)
			require.Error(t, err)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestDBSCAN_TightClusterAndOutlier(t *testing.T) {
	points := []point.Point{
		{0.000, 0.000},
		{0.001, 0.000},
		{0.000, 0.001},
		{0.001, 0.001},
		{5.000, 5.000},
	}

	d, err := NewDBSCAN(3, 0.01, point.Euclidean)
	require.NoError(t, err)

	res, err := d.Fit(points)
	require.NoError(t, err)

	require.Len(t, res.Clusters, 1)
	for i := 0; i < 4; i++ {
		assert.Equal(t, AssignedTo(0), res.Labels[i], "point %d", i)
	}
	assert.Equal(t, Outlier, res.Labels[4].Kind)
	assert.Equal(t, []int{4}, res.Outliers())

	c := res.Clusters[0]
	assert.Equal(t, []int{0, 1, 2, 3}, c.MemberSlice())
	assert.InDelta(t, 0.0005, c.Center()[0], 1e-12)
	assert.InDelta(t, 0.0005, c.Center()[1], 1e-12)
}

func TestDBSCAN_EmptyInput(t *testing.T) {
	d, err := NewDBSCAN(3, 0.5, point.Euclidean)
	require.NoError(t, err)

	res, err := d.Fit(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Clusters)
	assert.Empty(t, res.Labels)
}

func TestDBSCAN_DimensionMismatch(t *testing.T) {
	d, err := NewDBSCAN(1, 0.5, point.Euclidean)
	require.NoError(t, err)

	_, err = d.Fit([]point.Point{{0, 0}, {1, 1, 1}})
	var dm *DimensionMismatchError
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 1, dm.Index)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 3, dm.Actual)
}

func TestDBSCAN_DensityConnectivity(t *testing.T) {
	r := rand.New(rand.NewPCG(21, 22))
	centers := []point.Point{{0, 0, 0}, {5, 5, 5}, {-5, 5, 0}}
	points := blobs(r, centers, 120, 0.3)

	const eps = 0.35
	d, err := NewDBSCAN(4, eps, point.Euclidean)
	require.NoError(t, err)
	res, err := d.Fit(points)
	require.NoError(t, err)

	tree := kdtree.New(points, point.Euclidean, 8)
	for i, p := range points {
		neighbors := tree.SearchRadius(p, eps)
		if len(neighbors) < 4 {
			continue
		}
		require.True(t, res.Labels[i].IsAssigned(), "core point %d must be assigned", i)
		for _, n := range neighbors {
			assert.Equal(t, res.Labels[i], res.Labels[n.Index],
				"neighbour %d of core point %d landed in a different cluster", n.Index, i)
		}
	}

	assert.Len(t, res.Clusters, 3)
	for id, c := range res.Clusters {
		for idx := range c.Members() {
			assert.Equal(t, AssignedTo(id), res.Labels[idx])
		}
	}
}

func TestDBSCAN_LabelsAreTerminal(t *testing.T) {
	r := rand.New(rand.NewPCG(23, 24))
	points := blobs(r, []point.Point{{0, 0}, {3, 3}}, 40, 1.0)

	d, err := NewDBSCAN(5, 0.3, point.Euclidean)
	require.NoError(t, err)
	res, err := d.Fit(points)
	require.NoError(t, err)

	members := 0
	for _, c := range res.Clusters {
		members += c.Len()
	}
	assigned := 0
	for _, l := range res.Labels {
		assert.Contains(t, []LabelKind{Assigned, Outlier}, l.Kind)
		if l.IsAssigned() {
			assigned++
		}
	}
	assert.Equal(t, assigned, members)
}

func TestDBSCAN_SquaredMetricWithSquaredEpsilon(t *testing.T) {
	r := rand.New(rand.NewPCG(25, 26))
	points := blobs(r, []point.Point{{0, 0}, {4, 4}}, 30, 0.3)

	plain, err := NewDBSCAN(3, 0.25, point.Euclidean)
	require.NoError(t, err)
	squared, err := NewDBSCAN(3, 0.25*0.25, point.SquaredEuclidean)
	require.NoError(t, err)

	a, err := plain.Fit(points)
	require.NoError(t, err)
	b, err := squared.Fit(points)
	require.NoError(t, err)

	assert.Equal(t, a.Labels, b.Labels)
}

func TestDBSCANPlusPlus_Validation(t *testing.T) {
	for _, p := range []float64{0, -0.1, 1.01, math.NaN()} {
		_, err := NewDBSCANPlusPlus(3, 0.1, p, point.Euclidean)
		assert.ErrorIs(t, err, ErrInvalidConfig, "probability %v", p)
	}
	_, err := NewDBSCANPlusPlus(0, 0.1, 0.5, point.Euclidean)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewDBSCANPlusPlus(3, math.NaN(), 0.5, point.Euclidean)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	d, err := NewDBSCANPlusPlus(3, 0.1, 1, point.Euclidean)
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestDBSCANPlusPlus_RecoversBlobs(t *testing.T) {
	r := rand.New(rand.NewPCG(27, 28))
	centers := []point.Point{{0, 0}, {10, 0}, {0, 10}}
	points := blobs(r, centers, 80, 0.5)
	points = append(points, point.Point{50, 50})

	d, err := NewDBSCANPlusPlus(4, 1.0, 0.3, point.Euclidean, WithRandSeed(7))
	require.NoError(t, err)
	res, err := d.Fit(points)
	require.NoError(t, err)

	require.Len(t, res.Clusters, 3)
	for b := range centers {
		first := res.Labels[b*80]
		require.True(t, first.IsAssigned())
		for i := b * 80; i < (b+1)*80; i++ {
			assert.Equal(t, first, res.Labels[i], "blob %d point %d", b, i)
		}
	}
	assert.Equal(t, Outlier, res.Labels[len(points)-1].Kind)
}

func TestDBSCANPlusPlus_Deterministic(t *testing.T) {
	r := rand.New(rand.NewPCG(29, 30))
	points := blobs(r, []point.Point{{0, 0}, {2, 2}}, 50, 0.8)

	d, err := NewDBSCANPlusPlus(3, 0.4, 0.5, point.Euclidean)
	require.NoError(t, err)

	a, err := d.Fit(points)
	require.NoError(t, err)
	b, err := d.Fit(points)
	require.NoError(t, err)
	assert.Equal(t, a.Labels, b.Labels)
}

func TestDBSCANPlusPlus_EmptyInput(t *testing.T) {
	d, err := NewDBSCANPlusPlus(3, 0.4, 0.5, point.Euclidean)
	require.NoError(t, err)

	res, err := d.Fit(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Clusters)
}
