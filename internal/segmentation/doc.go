// Package segmentation labels the pixels of an image given as a row-major
// grid of feature points.
//
// One of five algorithms is chosen by the concrete type of the Config passed
// to New:
//
//   - DBSCANConfig and DBSCANPlusPlusConfig: density clustering; outliers stay
//     unlabelled
//   - KMeansConfig: centroid clustering seeded on the image grid
//   - SLICConfig: iterative superpixels with windowed assignment
//   - SNICConfig: single-pass superpixels grown from a priority queue
//
// Every algorithm honours the same mask contract: pixels whose mask entry is
// false are never seeded, never assigned and never contribute to a centroid.
// Input whose points or mask disagree with width*height is rejected with a
// *LengthMismatchError. An image with no eligible pixels yields an empty
// segment.LabelImage rather than an error.
//
// Example:
//
//	seg, err := segmentation.New(segmentation.SNICConfig{
//		Segments:    64,
//		Compactness: 1,
//		Metric:      point.Euclidean,
//	})
//	if err != nil {
//		return err
//	}
//	labels, err := seg.SegmentWithMask(width, height, points, mask)
package segmentation
