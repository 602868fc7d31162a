package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func allTrue(n int) []bool {
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	return mask
}

func TestRegularGrid_Generate(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		k             int
		mask          []bool
		want          []int
	}{
		{
			name:  "twelve by nine, four seeds",
			width: 12, height: 9, k: 4,
			mask: allTrue(108),
			want: []int{26, 31, 86, 91},
		},
		{
			name:  "nil mask behaves like all true",
			width: 12, height: 9, k: 4,
			want: []int{26, 31, 86, 91},
		},
		{
			name:  "zero seeds",
			width: 12, height: 9, k: 0,
			mask: allTrue(108),
			want: nil,
		},
		{
			name:  "more seeds than points",
			width: 2, height: 2, k: 10,
			mask: []bool{true, false, true, true},
			want: []int{0, 2, 3},
		},
		{
			name:  "single row clamps the vertical offset",
			width: 8, height: 1, k: 2,
			want: []int{1, 3},
		},
		{
			name:  "masked grid points are skipped",
			width: 4, height: 4, k: 4,
			mask: func() []bool {
				m := allTrue(16)
				m[5] = false
				return m
			}(),
			want: []int{7, 13, 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RegularGrid{}.Generate(tt.width, tt.height, tt.k, tt.mask)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegularGrid_NeverReturnsMaskedIndex(t *testing.T) {
	mask := allTrue(30 * 20)
	for i := range mask {
		if i%3 == 0 {
			mask[i] = false
		}
	}

	for k := 1; k < 60; k++ {
		for _, idx := range (RegularGrid{}).Generate(30, 20, k, mask) {
			assert.True(t, mask[idx], "k=%d returned masked index %d", k, idx)
		}
	}
}

func TestUniform_Generate(t *testing.T) {
	assert.Equal(t, []int{1, 4}, Uniform{}.Generate(6, 1, 2, nil))
	assert.Equal(t, []int{0, 1, 2}, Uniform{}.Generate(3, 1, 5, nil))
	assert.Empty(t, Uniform{}.Generate(3, 1, 0, nil))
	assert.Equal(t, []int{1, 3}, Uniform{}.Generate(4, 1, 2, []bool{false, true, false, true}))
}

func TestFixed_Generate(t *testing.T) {
	seeds := Fixed{5, 1, 99, 3}

	assert.Equal(t, []int{5, 1, 3}, seeds.Generate(10, 1, 10, nil))
	assert.Equal(t, []int{5}, seeds.Generate(10, 1, 1, nil))
	assert.Equal(t, []int{1, 3}, seeds.Generate(10, 1, 10, []bool{true, true, true, true, true, false}))
}
