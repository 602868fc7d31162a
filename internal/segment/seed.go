package segment

import (
	"math"
)

// Generator chooses initial seed indices for a clustering run.
//
// Points are addressed as a width*height grid in row-major order. A nil mask
// makes every point eligible; otherwise only indices i with mask[i] == true
// may be returned. Implementations are stateless and deterministic.
//
// Every implementation follows the same edge rules: k <= 0 yields no seeds,
// and k >= the number of eligible points yields all eligible indices.
type Generator interface {
	Generate(width, height, k int, mask []bool) []int
}

// RegularGrid places seeds on a regular grid whose step is
// round(sqrt(width*height/k)), never less than one. The first seed sits half
// a step in from the top-left corner and the grid is walked row by row until
// k eligible seeds are collected or the grid is exhausted.
type RegularGrid struct{}

// Generate implements Generator.
func (RegularGrid) Generate(width, height, k int, mask []bool) []int {
	if k <= 0 || width <= 0 || height <= 0 {
		return nil
	}
	total := width * height
	eligible := eligibleIndices(total, mask)
	if k >= len(eligible) {
		return eligible
	}

	step := int(math.Round(math.Sqrt(float64(total) / float64(k))))
	if step < 1 {
		step = 1
	}
	offsetX := min(step/2, width-1)
	offsetY := min(step/2, height-1)

	seeds := make([]int, 0, k)
	for y := offsetY; y < height; y += step {
		for x := offsetX; x < width; x += step {
			idx := y*width + x
			if !isEligible(idx, mask) {
				continue
			}
			seeds = append(seeds, idx)
			if len(seeds) == k {
				return seeds
			}
		}
	}
	return seeds
}

// Uniform spreads k seeds evenly over the eligible indices in order, taking
// the middle element of each of k equal runs. It ignores image geometry and
// suits point sets that are not laid out as a grid.
type Uniform struct{}

// Generate implements Generator.
func (Uniform) Generate(width, height, k int, mask []bool) []int {
	if k <= 0 || width <= 0 || height <= 0 {
		return nil
	}
	eligible := eligibleIndices(width*height, mask)
	if k >= len(eligible) {
		return eligible
	}

	seeds := make([]int, k)
	for i := range seeds {
		seeds[i] = eligible[(2*i+1)*len(eligible)/(2*k)]
	}
	return seeds
}

// Fixed returns the same seed list on every call, filtered by mask. It lets
// callers that already chose seeds reuse code paths that expect a Generator.
type Fixed []int

// Generate implements Generator. k limits the number of seeds returned.
func (f Fixed) Generate(width, height, k int, mask []bool) []int {
	if k <= 0 {
		return nil
	}
	total := width * height
	out := make([]int, 0, min(k, len(f)))
	for _, idx := range f {
		if idx < 0 || idx >= total || !isEligible(idx, mask) {
			continue
		}
		out = append(out, idx)
		if len(out) == k {
			break
		}
	}
	return out
}

func isEligible(idx int, mask []bool) bool {
	if mask == nil {
		return true
	}
	return idx < len(mask) && mask[idx]
}

func eligibleIndices(total int, mask []bool) []int {
	out := make([]int, 0, total)
	for i := 0; i < total; i++ {
		if isEligible(i, mask) {
			out = append(out, i)
		}
	}
	return out
}
