package cluster

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/image-palette-mcp/internal/point"
)

// ErrInvalidConfig is matched (via errors.Is) by every configuration error
// returned from a constructor in this module.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports a rejected configuration parameter. Constructors return
// it before any point is processed.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidConfig) succeed.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// DimensionMismatchError reports a point whose dimension differs from the
// first point of the same input.
type DimensionMismatchError struct {
	Index    int
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch at point %d: expected %d, got %d", e.Index, e.Expected, e.Actual)
}

// RequirePositive rejects counts that are zero or negative.
func RequirePositive(field string, v int) error {
	if v <= 0 {
		return &ConfigError{Field: field, Value: v, Reason: "must be greater than zero"}
	}
	return nil
}

// RequirePositiveFinite rejects values that are NaN, infinite, zero or
// negative.
func RequirePositiveFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return &ConfigError{Field: field, Value: v, Reason: "must be positive and finite"}
	}
	return nil
}

// RequireMetric rejects unknown metric values.
func RequireMetric(m point.Metric) error {
	if !m.Valid() {
		return &ConfigError{Field: "metric", Value: m, Reason: "unknown metric"}
	}
	return nil
}

func requireProbability(v float64) error {
	if math.IsNaN(v) || v <= 0 || v > 1 {
		return &ConfigError{Field: "probability", Value: v, Reason: "must lie in (0, 1]"}
	}
	return nil
}

// CheckDimensions verifies that every point has the dimension of the first.
func CheckDimensions(points []point.Point) error {
	if len(points) == 0 {
		return nil
	}
	dim := points[0].Dim()
	for i, p := range points {
		if p.Dim() != dim {
			return &DimensionMismatchError{Index: i, Expected: dim, Actual: p.Dim()}
		}
	}
	return nil
}
