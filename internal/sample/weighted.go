// Package sample implements the random draws used by person generation.
// Every helper takes the caller's *rand.Rand so a single seeded source
// drives a whole run.
package sample

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrShapeMismatch is returned when items and weights differ in length.
	ErrShapeMismatch = errors.New("items and weights differ in length")

	// ErrEmptySelection is returned when there is nothing to choose from.
	ErrEmptySelection = errors.New("nothing to choose from")

	// ErrNegativeWeight is returned when a weight is below zero.
	ErrNegativeWeight = errors.New("negative weight")
)

// Choose draws one item with probability proportional to its weight.
// With no weights the draw is uniform over items. Ties go to the earlier
// item.
func Choose[T any](r *rand.Rand, items []T, weights []float64) (T, error) {
	var zero T

	if len(weights) == 0 {
		if len(items) == 0 {
			return zero, ErrEmptySelection
		}
		return items[r.Intn(len(items))], nil
	}
	if len(items) != len(weights) {
		return zero, fmt.Errorf("%w: %d items, %d weights", ErrShapeMismatch, len(items), len(weights))
	}

	total := 0.0
	for i, w := range weights {
		if w < 0 {
			return zero, fmt.Errorf("%w: %v at index %d", ErrNegativeWeight, w, i)
		}
		total += w
	}

	target := r.Float64() * total
	running := 0.0
	for i, item := range items {
		running += weights[i]
		if running >= target {
			return item, nil
		}
	}

	// Rounding can leave running a hair below target.
	return items[len(items)-1], nil
}

// Bernoulli returns true with probability p.
func Bernoulli(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// IntBetween returns a uniform integer in [lo, hi]. The bounds are
// swapped when given in reverse.
func IntBetween(r *rand.Rand, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + r.Intn(hi-lo+1)
}
