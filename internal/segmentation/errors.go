package segmentation

import (
	"errors"
	"fmt"

	"github.com/ironsheep/image-palette-mcp/internal/cluster"
)

// ErrInvalidConfig is matched by every configuration error returned from New.
// It is the same sentinel the cluster package uses.
var ErrInvalidConfig = cluster.ErrInvalidConfig

// ErrInvalidInput is matched by every input-shape error returned from a
// Segmenter.
var ErrInvalidInput = errors.New("invalid input")

// LengthMismatchError reports a point or mask slice whose length differs from
// width*height.
type LengthMismatchError struct {
	Field    string
	Expected int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s length mismatch: expected %d, got %d", e.Field, e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrInvalidInput) succeed.
func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrInvalidInput
}
