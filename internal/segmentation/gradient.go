package segmentation

import (
	"github.com/ironsheep/image-palette-mcp/internal/point"
)

// gradient approximates the feature gradient at idx with central differences:
// the metric distance between the left and right neighbours plus the distance
// between the upper and lower ones. A neighbour outside the image or masked
// out is replaced by the pixel itself.
func gradient(f *frame, idx int, metric point.Metric) float64 {
	x, y := f.xy(idx)
	left := f.points[f.at(x-1, y, idx)]
	right := f.points[f.at(x+1, y, idx)]
	up := f.points[f.at(x, y-1, idx)]
	down := f.points[f.at(x, y+1, idx)]
	return metric.Measure(left, right) + metric.Measure(up, down)
}

// snapSeeds moves every seed to the eligible pixel with the lowest gradient
// in its 3x3 neighbourhood. A seed keeps its place unless a neighbour is
// strictly lower; among equal neighbours the first in row-major order wins.
// A seed whose target is already taken stays put, and is dropped if that
// spot is taken too.
func snapSeeds(f *frame, seeds []int, metric point.Metric) []int {
	out := make([]int, 0, len(seeds))
	taken := make(map[int]bool, len(seeds))
	for _, seed := range seeds {
		best, bestGrad := seed, gradient(f, seed, metric)
		sx, sy := f.xy(seed)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				idx := f.at(sx+dx, sy+dy, -1)
				if idx < 0 || idx == seed {
					continue
				}
				if g := gradient(f, idx, metric); g < bestGrad {
					best, bestGrad = idx, g
				}
			}
		}
		if taken[best] {
			best = seed
		}
		if taken[best] {
			continue
		}
		taken[best] = true
		out = append(out, best)
	}
	return out
}
