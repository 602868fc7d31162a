package segmentation

import (
	"github.com/rs/zerolog"

	"github.com/ironsheep/image-palette-mcp/internal/cluster"
	"github.com/ironsheep/image-palette-mcp/internal/kdtree"
)

type options struct {
	logger   zerolog.Logger
	workers  int
	leafSize int
	randSeed uint64
}

func defaultOptions() options {
	return options{
		logger:   zerolog.Nop(),
		workers:  1,
		leafSize: kdtree.DefaultLeafSize,
		randSeed: cluster.DefaultRandSeed,
	}
}

// Option customises a Segmenter at construction time.
type Option func(*options)

// WithLogger routes per-run debug output to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithWorkers lets K-Means and SLIC split their assignment step over n
// goroutines. Values below one are treated as one.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(n, 1)
	}
}

// WithLeafSize sets the bucket size of every kd-tree built during a run.
func WithLeafSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.leafSize = n
		}
	}
}

// WithRandSeed seeds the DBSCAN++ subsample.
func WithRandSeed(seed uint64) Option {
	return func(o *options) {
		o.randSeed = seed
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// clusterOptions forwards the shared settings to the cluster package.
func (o options) clusterOptions() []cluster.Option {
	return []cluster.Option{
		cluster.WithLogger(o.logger),
		cluster.WithWorkers(o.workers),
		cluster.WithLeafSize(o.leafSize),
		cluster.WithRandSeed(o.randSeed),
	}
}
