package cluster

import (
	"fmt"

	"github.com/ironsheep/image-palette-mcp/internal/segment"
)

// LabelKind is the traversal state of one point during density clustering.
// A point only ever moves forward: Undefined, then Marked or Outlier, then
// Assigned.
type LabelKind uint8

const (
	// Undefined points have not been visited.
	Undefined LabelKind = iota
	// Marked points are queued for expansion but not yet classified.
	Marked
	// Outlier points are not density-reachable from any core point seen so far.
	Outlier
	// Assigned points belong to Label.Cluster.
	Assigned
)

func (k LabelKind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Marked:
		return "marked"
	case Outlier:
		return "outlier"
	case Assigned:
		return "assigned"
	default:
		return fmt.Sprintf("LabelKind(%d)", uint8(k))
	}
}

// Label is the density-clustering state of a point. Cluster is meaningful
// only when Kind is Assigned.
type Label struct {
	Kind    LabelKind
	Cluster int
}

// AssignedTo returns the label of a point that belongs to cluster id.
func AssignedTo(id int) Label {
	return Label{Kind: Assigned, Cluster: id}
}

// IsAssigned reports whether the point belongs to a cluster.
func (l Label) IsAssigned() bool {
	return l.Kind == Assigned
}

func (l Label) String() string {
	if l.Kind == Assigned {
		return fmt.Sprintf("assigned(%d)", l.Cluster)
	}
	return l.Kind.String()
}

// Result is the output of a clustering run.
type Result struct {
	// Clusters holds the non-empty clusters. For density clustering the
	// slice position equals the Cluster field of Assigned labels.
	Clusters []*segment.Segment

	// Labels holds one entry per input point for density clustering; it is
	// nil for K-Means.
	Labels []Label

	// Iterations is the number of K-Means iterations executed.
	Iterations int

	// Converged is true when K-Means stopped because every centre moved by
	// at most the tolerance.
	Converged bool

	// Inertia records, per K-Means iteration, the sum of squared Euclidean
	// distances from each point to the centre it was assigned to.
	Inertia []float64
}

// Outliers returns the indices labelled Outlier.
func (r *Result) Outliers() []int {
	var out []int
	for i, l := range r.Labels {
		if l.Kind == Outlier {
			out = append(out, i)
		}
	}
	return out
}
