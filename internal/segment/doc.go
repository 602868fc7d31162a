// Package segment holds the bookkeeping shared by every clustering and
// segmentation algorithm in this module.
//
// # Segments
//
// A Segment is a set of point indices plus the running mean of the points
// they refer to. Algorithms never subclass it; they compose it and drive it
// through a small contract:
//
//   - Insert: add one index and fold its vector into the centroid
//   - Clear: return to the empty state
//   - Absorb: merge another segment using count-weighted averaging
//   - Center / Members / Len: read the result
//
// Member sets are roaring bitmaps, so membership checks are cheap and
// iteration is always in ascending index order.
//
// # Label Images
//
// A LabelImage maps every pixel of a width*height image either to a segment
// label or to Unassigned. It is the output of all segmentation algorithms and
// the input of palette extraction.
//
// # Seeds
//
// Generator implementations choose initial centres. RegularGrid walks a
// regular grid over the image and is used by the spatially aware algorithms;
// Uniform spreads seeds evenly over an arbitrary point list.
package segment
