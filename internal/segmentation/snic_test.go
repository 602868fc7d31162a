package segmentation

import (
	"container/heap"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-palette-mcp/internal/point"
)

func TestCandidateQueue_Order(t *testing.T) {
	q := &candidateQueue{}
	heap.Push(q, candidate{index: 1, distance: 0.5, seq: 0})
	heap.Push(q, candidate{index: 2, distance: 0.1, seq: 1})
	heap.Push(q, candidate{index: 3, distance: 0.5, seq: 2})
	heap.Push(q, candidate{index: 4, distance: 0.1, seq: 3})
	heap.Push(q, candidate{index: 5, distance: 0, seq: 4})

	var got []int
	for q.Len() > 0 {
		got = append(got, heap.Pop(q).(candidate).index)
	}
	assert.Equal(t, []int{5, 2, 4, 1, 3}, got)
}

func TestSNIC_EveryEligiblePixelAssignedOnce(t *testing.T) {
	// Column 9 is masked, cutting columns 10-11 off from the grid seeds at
	// x=2 and x=7.
	const width, height = 12, 9
	points := noise(rand.New(rand.NewPCG(51, 52)), width, height)
	mask := make([]bool, width*height)
	for i := range mask {
		mask[i] = i%width != 9
	}

	s, err := New(SNICConfig{Segments: 4, Compactness: 1})
	require.NoError(t, err)
	labels, err := s.SegmentWithMask(width, height, points, mask)
	require.NoError(t, err)

	seen := make([]int, width*height)
	for seg := range labels.Segments() {
		for idx := range seg.Members() {
			seen[idx]++
		}
	}
	eligible := 0
	for i, keep := range mask {
		if keep {
			eligible++
			assert.Equal(t, 1, seen[i], "eligible pixel %d", i)
		} else {
			assert.Zero(t, seen[i], "masked pixel %d", i)
		}
	}
	assert.Equal(t, eligible, labels.Assigned())

	// The cut-off strip is flooded as one piece.
	island, ok := labels.Label(10)
	require.True(t, ok)
	for y := 0; y < height; y++ {
		for x := 10; x < width; x++ {
			got, _ := labels.Label(y*width + x)
			assert.Equal(t, island, got, "pixel (%d,%d)", x, y)
		}
	}
}

func TestSNIC_SegmentsAreConnected(t *testing.T) {
	const width, height = 30, 20
	points := noise(rand.New(rand.NewPCG(53, 54)), width, height)

	s, err := New(SNICConfig{Segments: 12, Compactness: 2})
	require.NoError(t, err)
	labels, err := s.Segment(width, height, points)
	require.NoError(t, err)
	require.Equal(t, width*height, labels.Assigned())

	// Flood each segment from one member over same-label 4-neighbours; the
	// flood must reach every member.
	for label := 0; label < labels.Len(); label++ {
		seg := labels.Segment(label)
		members := seg.MemberSlice()
		visited := map[int]bool{members[0]: true}
		stack := []int{members[0]}
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%width, idx/width
			for _, d := range [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				nb := ny*width + nx
				if l, _ := labels.Label(nb); l == label && !visited[nb] {
					visited[nb] = true
					stack = append(stack, nb)
				}
			}
		}
		assert.Len(t, visited, len(members), "segment %d is not connected", label)
	}
}

func TestSNIC_Deterministic(t *testing.T) {
	const width, height = 16, 16
	points := noise(rand.New(rand.NewPCG(55, 56)), width, height)

	s, err := New(SNICConfig{Segments: 9, Compactness: 1, Metric: point.SquaredEuclidean})
	require.NoError(t, err)

	a, err := s.Segment(width, height, points)
	require.NoError(t, err)
	b, err := s.Segment(width, height, points)
	require.NoError(t, err)

	for i := range points {
		la, _ := a.Label(i)
		lb, _ := b.Label(i)
		require.Equal(t, la, lb, "pixel %d", i)
	}
}

func TestSNIC_MoreSegmentsThanPixels(t *testing.T) {
	points := twoTone(3, 2)

	s, err := New(SNICConfig{Segments: 50, Compactness: 1})
	require.NoError(t, err)
	labels, err := s.Segment(3, 2, points)
	require.NoError(t, err)

	assert.Equal(t, 6, labels.Len())
	for seg := range labels.Segments() {
		assert.Equal(t, 1, seg.Len())
	}
}
