// Package kdtree implements a static k-d tree over a slice of feature points.
//
// The tree is built once by New and never modified afterwards, so any number
// of goroutines may query it concurrently. It borrows the point slice it was
// built from; callers must not mutate those points while the tree is in use.
//
// # Layout
//
// Internal nodes split on axis depth mod N at the median of that axis. Each
// internal node stores the index of the median point; every point in the left
// subtree has a value less than or equal to it on the split axis and every
// point in the right subtree a value greater than or equal. Subsets no larger
// than the leaf size are kept as flat buckets and scanned linearly.
//
// # Queries
//
//   - SearchNearest: the single closest point (branch and bound)
//   - SearchNearestK: the k closest points, ascending by distance
//   - SearchRadius: every point within a distance of a centre
//
// A tree over zero points is valid; its queries report no match.
package kdtree

import (
	"math"
	"sort"

	"github.com/ironsheep/image-palette-mcp/internal/point"
)

// DefaultLeafSize is the bucket size used when New is given a non-positive
// leaf size.
const DefaultLeafSize = 16

// Neighbor is a query hit: the index of a point in the slice the tree was
// built from, and its distance to the query under the tree's metric.
type Neighbor struct {
	Index    int
	Distance float64
}

// Tree is an immutable k-d tree.
type Tree struct {
	points   []point.Point
	metric   point.Metric
	leafSize int
	root     *node
}

type node struct {
	// Internal nodes.
	index       int
	axis        int
	left, right *node

	// Leaf buckets.
	leaf    bool
	indices []int
}

// New builds a tree over points in O(n log n) using median selection per
// level. All points must share the same dimension.
func New(points []point.Point, metric point.Metric, leafSize int) *Tree {
	if leafSize <= 0 {
		leafSize = DefaultLeafSize
	}
	t := &Tree{
		points:   points,
		metric:   metric,
		leafSize: leafSize,
	}
	if len(points) == 0 || points[0].Dim() == 0 {
		return t
	}

	indices := make([]int, len(points))
	for i := range indices {
		indices[i] = i
	}
	t.root = t.build(indices, 0)
	return t
}

// Len returns the number of indexed points.
func (t *Tree) Len() int {
	return len(t.points)
}

// Metric returns the metric distances are reported in.
func (t *Tree) Metric() point.Metric {
	return t.metric
}

func (t *Tree) build(indices []int, depth int) *node {
	if len(indices) == 0 {
		return nil
	}
	if len(indices) <= t.leafSize {
		return &node{leaf: true, indices: indices}
	}

	axis := depth % t.points[indices[0]].Dim()
	mid := len(indices) / 2
	t.selectNth(indices, mid, axis)

	return &node{
		index: indices[mid],
		axis:  axis,
		left:  t.build(indices[:mid], depth+1),
		right: t.build(indices[mid+1:], depth+1),
	}
}

// selectNth reorders indices so that position n holds the element that would
// be there if the slice were sorted on axis, with nothing greater before it
// and nothing smaller after it.
func (t *Tree) selectNth(indices []int, n, axis int) {
	lo, hi := 0, len(indices)-1
	for lo < hi {
		pivot := t.points[indices[lo+(hi-lo)/2]][axis]
		i, j := lo, hi
		for i <= j {
			for t.points[indices[i]][axis] < pivot {
				i++
			}
			for t.points[indices[j]][axis] > pivot {
				j--
			}
			if i <= j {
				indices[i], indices[j] = indices[j], indices[i]
				i++
				j--
			}
		}
		switch {
		case n <= j:
			hi = j
		case n >= i:
			lo = i
		default:
			return
		}
	}
}

// SearchNearest returns the indexed point closest to query. The boolean is
// false only when the tree is empty. Ties resolve to the lowest index.
func (t *Tree) SearchNearest(query point.Point) (Neighbor, bool) {
	if t.root == nil {
		return Neighbor{Index: -1}, false
	}
	best := Neighbor{Index: -1, Distance: math.Inf(1)}
	t.nearest(t.root, query, &best)
	return best, true
}

func (t *Tree) consider(index int, query point.Point, best *Neighbor) {
	d := t.metric.Measure(t.points[index], query)
	if d < best.Distance || (d == best.Distance && index < best.Index) {
		best.Index = index
		best.Distance = d
	}
}

func (t *Tree) nearest(n *node, query point.Point, best *Neighbor) {
	if n == nil {
		return
	}
	if n.leaf {
		for _, idx := range n.indices {
			t.consider(idx, query, best)
		}
		return
	}

	t.consider(n.index, query, best)

	delta := query[n.axis] - t.points[n.index][n.axis]
	near, far := n.left, n.right
	if delta > 0 {
		near, far = far, near
	}
	t.nearest(near, query, best)
	if t.metric.Axis(delta) <= best.Distance {
		t.nearest(far, query, best)
	}
}

// SearchNearestK returns up to k indexed points closest to query, ordered by
// ascending distance and then by index.
func (t *Tree) SearchNearestK(query point.Point, k int) []Neighbor {
	if t.root == nil || k <= 0 {
		return nil
	}
	best := make([]Neighbor, 0, k)
	t.nearestK(t.root, query, k, &best)
	return best
}

func (t *Tree) offer(index int, query point.Point, k int, best *[]Neighbor) {
	d := t.metric.Measure(t.points[index], query)
	list := *best
	if len(list) == k {
		worst := list[k-1]
		if d > worst.Distance || (d == worst.Distance && index > worst.Index) {
			return
		}
		list = list[:k-1]
	}
	pos := sort.Search(len(list), func(i int) bool {
		if list[i].Distance != d {
			return list[i].Distance > d
		}
		return list[i].Index > index
	})
	list = append(list, Neighbor{})
	copy(list[pos+1:], list[pos:])
	list[pos] = Neighbor{Index: index, Distance: d}
	*best = list
}

func (t *Tree) nearestK(n *node, query point.Point, k int, best *[]Neighbor) {
	if n == nil {
		return
	}
	if n.leaf {
		for _, idx := range n.indices {
			t.offer(idx, query, k, best)
		}
		return
	}

	t.offer(n.index, query, k, best)

	delta := query[n.axis] - t.points[n.index][n.axis]
	near, far := n.left, n.right
	if delta > 0 {
		near, far = far, near
	}
	t.nearestK(near, query, k, best)
	if len(*best) < k || t.metric.Axis(delta) <= (*best)[len(*best)-1].Distance {
		t.nearestK(far, query, k, best)
	}
}

// SearchRadius returns every indexed point whose distance to center is at
// most radius. The result is in traversal order; callers that need a stable
// order should sort it.
func (t *Tree) SearchRadius(center point.Point, radius float64) []Neighbor {
	if t.root == nil || radius < 0 || math.IsNaN(radius) {
		return nil
	}
	var out []Neighbor
	t.radius(t.root, center, radius, &out)
	return out
}

func (t *Tree) radius(n *node, center point.Point, radius float64, out *[]Neighbor) {
	if n == nil {
		return
	}
	if n.leaf {
		for _, idx := range n.indices {
			if d := t.metric.Measure(t.points[idx], center); d <= radius {
				*out = append(*out, Neighbor{Index: idx, Distance: d})
			}
		}
		return
	}

	if d := t.metric.Measure(t.points[n.index], center); d <= radius {
		*out = append(*out, Neighbor{Index: n.index, Distance: d})
	}

	delta := center[n.axis] - t.points[n.index][n.axis]
	near, far := n.left, n.right
	if delta > 0 {
		near, far = far, near
	}
	t.radius(near, center, radius, out)
	if t.metric.Axis(delta) <= radius {
		t.radius(far, center, radius, out)
	}
}
