package segment

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/image-palette-mcp/internal/point"
)

// Segment is a group of point indices with a running centroid.
//
// The centroid always equals the arithmetic mean of the points that were
// inserted since the last Clear. It is maintained incrementally, so Insert
// costs O(dim) no matter how many members the segment already has.
//
// A Segment is owned by the single algorithm that mutates it and is not safe
// for concurrent writers.
type Segment struct {
	center  point.Point
	members *roaring.Bitmap
}

// New returns an empty segment for points of the given dimension.
func New(dim int) *Segment {
	return &Segment{
		center:  make(point.Point, dim),
		members: roaring.New(),
	}
}

// Insert adds index with feature vector p and folds p into the centroid.
// Re-inserting an index that is already a member is a no-op and returns false.
func (s *Segment) Insert(index int, p point.Point) bool {
	if !s.members.CheckedAdd(uint32(index)) {
		return false
	}
	if len(s.center) != len(p) {
		s.center = make(point.Point, len(p))
	}
	n := float64(s.members.GetCardinality())
	for i, v := range p {
		s.center[i] += (v - s.center[i]) / n
	}
	return true
}

// Clear removes every member and zeroes the centroid.
func (s *Segment) Clear() {
	s.members.Clear()
	for i := range s.center {
		s.center[i] = 0
	}
}

// Absorb moves every member of other into s and clears other. The centroid
// becomes the count-weighted average of both centroids. The two segments are
// expected to be disjoint; a shared index is kept once but weighted twice.
func (s *Segment) Absorb(other *Segment) {
	if other == nil || other == s || other.IsEmpty() {
		return
	}
	if s.IsEmpty() {
		s.center = other.center.Clone()
		s.members.Or(other.members)
		other.Clear()
		return
	}

	n1 := float64(s.members.GetCardinality())
	n2 := float64(other.members.GetCardinality())
	floats.Scale(n1/(n1+n2), s.center)
	floats.AddScaled(s.center, n2/(n1+n2), other.center)

	s.members.Or(other.members)
	other.Clear()
}

// Center returns a copy of the current centroid.
func (s *Segment) Center() point.Point {
	return s.center.Clone()
}

// Clone returns an independent copy of s.
func (s *Segment) Clone() *Segment {
	return &Segment{
		center:  s.center.Clone(),
		members: s.members.Clone(),
	}
}

// Contains reports whether index is a member.
func (s *Segment) Contains(index int) bool {
	return s.members.Contains(uint32(index))
}

// Len returns the number of members.
func (s *Segment) Len() int {
	return int(s.members.GetCardinality())
}

// IsEmpty reports whether the segment has no members.
func (s *Segment) IsEmpty() bool {
	return s.members.IsEmpty()
}

// Members yields member indices in ascending order.
func (s *Segment) Members() iter.Seq[int] {
	return func(yield func(int) bool) {
		s.members.Iterate(func(x uint32) bool {
			return yield(int(x))
		})
	}
}

// MemberSlice returns the member indices in ascending order.
func (s *Segment) MemberSlice() []int {
	raw := s.members.ToArray()
	out := make([]int, len(raw))
	for i, v := range raw {
		out[i] = int(v)
	}
	return out
}
