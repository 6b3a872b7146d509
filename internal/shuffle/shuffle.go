// internal/shuffle/shuffle.go

// Package shuffle implements the in-place Durstenfeld shuffle used for
// randomizing turn order and for dealing hands.
package shuffle

import "math/rand"

// Slice permutes s in place. Assuming a uniform source, every permutation of
// s is equally likely. The swap index for position i is drawn from [0, i]
// inclusive; drawing from [0, i) yields a biased shuffle.
func Slice[T any](r *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
