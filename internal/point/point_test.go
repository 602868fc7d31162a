package point

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetric_Measure(t *testing.T) {
	a := Point{0, 0, 0}
	b := Point{3, 4, 0}

	tests := []struct {
		name   string
		metric Metric
		want   float64
	}{
		{"euclidean", Euclidean, 5},
		{"squared euclidean", SquaredEuclidean, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.metric.Measure(a, b), 1e-12)
			assert.InDelta(t, tt.want, tt.metric.Measure(b, a), 1e-12, "metric must be symmetric")
			assert.Zero(t, tt.metric.Measure(a, a))
			assert.Zero(t, tt.metric.Measure(b, b))
		})
	}
}

func TestMetric_SquaredIsMonotonic(t *testing.T) {
	origin := Point{0, 0}
	near := Point{1, 1}
	far := Point{2, -3}

	assert.Less(t, Euclidean.Measure(origin, near), Euclidean.Measure(origin, far))
	assert.Less(t, SquaredEuclidean.Measure(origin, near), SquaredEuclidean.Measure(origin, far))
}

func TestMetric_Axis(t *testing.T) {
	assert.Equal(t, 2.0, Euclidean.Axis(-2))
	assert.Equal(t, 4.0, SquaredEuclidean.Axis(-2))
	assert.Equal(t, 0.0, Euclidean.Axis(0))
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"", Euclidean, false},
		{"Euclidean", Euclidean, false},
		{"squared_euclidean", SquaredEuclidean, false},
		{" squared ", SquaredEuclidean, false},
		{"manhattan", Euclidean, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMetric(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestPoint_Clone(t *testing.T) {
	p := Point{1, 2, 3}
	c := p.Clone()
	c[0] = math.Pi

	assert.Equal(t, 1.0, p[0])
	assert.Equal(t, 3, c.Dim())
}

func TestMetric_String(t *testing.T) {
	assert.Equal(t, "euclidean", Euclidean.String())
	assert.Equal(t, "squared_euclidean", SquaredEuclidean.String())
	assert.Equal(t, "Metric(7)", Metric(7).String())
	assert.False(t, Metric(7).Valid())
}

func TestMetric_JSON(t *testing.T) {
	type wrapper struct {
		Metric Metric `json:"metric"`
	}

	data, err := json.Marshal(wrapper{Metric: SquaredEuclidean})
	require.NoError(t, err)
	assert.JSONEq(t, `{"metric":"squared_euclidean"}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"metric":"L2"}`), &w))
	assert.Equal(t, Euclidean, w.Metric)

	assert.Error(t, json.Unmarshal([]byte(`{"metric":"manhattan"}`), &w))

	_, err = json.Marshal(wrapper{Metric: Metric(7)})
	assert.Error(t, err)
}
