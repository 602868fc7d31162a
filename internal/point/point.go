// Package point defines the feature vectors clustered by this module and the
// distance metrics used to compare them.
//
// A Point is a fixed-dimension slice of float64. For image work the dimension
// is five: three colour channels followed by normalized x and y. Callers are
// expected to scale every channel into comparable ranges and to supply finite,
// non-NaN coordinates; nothing in this module re-normalizes.
package point

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Point is an N-element feature vector. Points are treated as immutable once
// produced; algorithms copy them before mutating.
type Point []float64

// Dim returns the number of coordinates in p.
func (p Point) Dim() int {
	return len(p)
}

// Clone returns a copy of p that shares no storage with it.
func (p Point) Clone() Point {
	out := make(Point, len(p))
	copy(out, p)
	return out
}

// Metric selects a distance function. It is a plain value, so two metrics are
// equal exactly when they name the same function.
type Metric int

const (
	// Euclidean is the L2 distance.
	Euclidean Metric = iota

	// SquaredEuclidean is the L2 distance without the final square root.
	// It orders neighbours the same way Euclidean does, but any threshold
	// expressed with it (epsilon, tolerance) must be squared as well.
	SquaredEuclidean
)

// Measure returns the distance between a and b. Both points must have the same
// dimension.
func (m Metric) Measure(a, b Point) float64 {
	switch m {
	case SquaredEuclidean:
		var sum float64
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return sum
	default:
		return floats.Distance(a, b, 2)
	}
}

// Axis converts a difference along a single coordinate into the units of m.
//
// The kd-tree uses it to decide whether the far side of a split can still hold
// a closer point, and SLIC uses it to put pixel-space distance on the same
// scale as feature distance.
func (m Metric) Axis(delta float64) float64 {
	if m == SquaredEuclidean {
		return delta * delta
	}
	return math.Abs(delta)
}

// Valid reports whether m is one of the defined metrics.
func (m Metric) Valid() bool {
	return m == Euclidean || m == SquaredEuclidean
}

func (m Metric) String() string {
	switch m {
	case Euclidean:
		return "euclidean"
	case SquaredEuclidean:
		return "squared_euclidean"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// ParseMetric maps a metric name to its value. Names are case-insensitive and
// the empty string selects Euclidean.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "euclidean", "l2":
		return Euclidean, nil
	case "squared_euclidean", "squared-euclidean", "squared", "sql2":
		return SquaredEuclidean, nil
	default:
		return Euclidean, fmt.Errorf("unknown metric: %q", name)
	}
}

// MarshalText encodes m by name.
func (m Metric) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("unknown metric: %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a metric name accepted by ParseMetric.
func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
