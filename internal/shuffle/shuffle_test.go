// internal/shuffle/shuffle_test.go
package shuffle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceIsPermutation(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	in := make([]int, 20)
	for i := range in {
		in[i] = i
	}
	got := append([]int(nil), in...)
	Slice(r, got)

	assert.ElementsMatch(t, in, got)
}

func TestSliceShortInputs(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	var empty []int
	Slice(r, empty)
	assert.Empty(t, empty)

	one := []int{7}
	Slice(r, one)
	assert.Equal(t, []int{7}, one)
}

// TestSliceUniformity runs many shuffles of a small slice and checks that no
// value sticks to any position disproportionately. With 10k runs over 5
// positions each cell expects runs/5 hits; a biased [0, i) draw fails this
// comfortably while the inclusive draw sits well inside the tolerance.
func TestSliceUniformity(t *testing.T) {
	const (
		size = 5
		runs = 10000
	)
	r := rand.New(rand.NewSource(1))

	var counts [size][size]int
	for n := 0; n < runs; n++ {
		s := make([]int, size)
		for i := range s {
			s[i] = i
		}
		Slice(r, s)
		for pos, v := range s {
			counts[v][pos]++
		}
	}

	expected := float64(runs) / size
	for v := 0; v < size; v++ {
		for pos := 0; pos < size; pos++ {
			diff := float64(counts[v][pos]) - expected
			if diff < 0 {
				diff = -diff
			}
			assert.Lessf(t, diff, expected*0.15,
				"value %d landed on position %d %d times, expected ~%.0f", v, pos, counts[v][pos], expected)
		}
	}
}
