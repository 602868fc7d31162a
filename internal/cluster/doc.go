// Package cluster partitions point sets without regard to image geometry.
//
// Three algorithms are provided:
//
//   - DBSCAN: density clustering with outlier detection
//   - DBSCANPlusPlus: DBSCAN with core points evaluated on a random subsample
//   - KMeans: centroid clustering with kd-tree accelerated assignment
//
// All constructors validate their parameters eagerly and return a
// *ConfigError (matching ErrInvalidConfig) before any point is touched. Fit
// methods report a *DimensionMismatchError when the points disagree in
// dimension. An empty point set is never an error: every algorithm returns an
// empty Result for it.
//
// Each cluster is a *segment.Segment whose centroid is the mean of its
// members. The algorithms run synchronously on the calling goroutine;
// KMeans can optionally split its assignment scan across workers.
package cluster
