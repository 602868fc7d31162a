package cluster

import (
	"github.com/rs/zerolog"

	"github.com/ironsheep/image-palette-mcp/internal/kdtree"
	"github.com/ironsheep/image-palette-mcp/internal/segment"
)

// DefaultRandSeed seeds the subsampling of DBSCAN++ unless WithRandSeed is
// given, so repeated runs over the same input agree.
const DefaultRandSeed uint64 = 0x5eed

type options struct {
	logger   zerolog.Logger
	workers  int
	leafSize int
	seeds    segment.Generator
	randSeed uint64
}

func defaultOptions() options {
	return options{
		logger:   zerolog.Nop(),
		workers:  1,
		leafSize: kdtree.DefaultLeafSize,
		seeds:    segment.Uniform{},
		randSeed: DefaultRandSeed,
	}
}

// Option customises an algorithm at construction time.
type Option func(*options)

// WithLogger routes debug output (iterations, convergence, cluster counts)
// to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithWorkers spreads the K-Means assignment scan over n goroutines. Values
// below one are treated as one.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(n, 1)
	}
}

// WithLeafSize sets the bucket size of the kd-trees built during a run.
func WithLeafSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.leafSize = n
		}
	}
}

// WithSeedGenerator replaces the generator K-Means uses to place its initial
// centres.
func WithSeedGenerator(g segment.Generator) Option {
	return func(o *options) {
		if g != nil {
			o.seeds = g
		}
	}
}

// WithRandSeed seeds the random subsample drawn by DBSCAN++.
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
