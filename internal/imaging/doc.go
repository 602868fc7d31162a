// Package imaging turns image files into the feature points the clustering
// packages work on, and turns their results back into pictures.
//
// It covers the steps around segmentation:
//
//   - loading and caching decoded images (ImageCache)
//   - cropping, downscaling and blurring, then converting every pixel into a
//     colour-plus-position feature point (ExtractFeatures)
//   - painting a segment.LabelImage with segment mean colours (RenderLabels)
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left corner. For
// regions, (x1,y1) is inclusive and (x2,y2) is exclusive. Feature points are
// stored row-major, so pixel (x, y) of a Features value is index y*Width+x.
//
// # Feature Layout
//
// Each point holds ColorDims colour coordinates in the selected ColorSpace
// (lightness in [0, 1] and two chroma axes) followed by x and y normalized
// into [0, 1] and multiplied by the spatial weight.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions are stateless.
package imaging
