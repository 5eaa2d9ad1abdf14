// Package pick implements weighted random selection over an explicit
// weight mapping. The random source is injected so callers can make
// selection deterministic in tests.
package pick

import (
	"math/rand"
	"sort"
)

// Weighted picks one key from weights with probability proportional to
// its weight. Keys with non-positive weights are excluded. Iteration
// order is made deterministic by sorting keys, so a seeded rng yields a
// reproducible pick. Returns "" for an empty or all-non-positive map.
func Weighted(rng *rand.Rand, weights map[string]float64) string {
	keys := make([]string, 0, len(weights))
	total := 0.0
	for k, w := range weights {
		if w > 0 {
			keys = append(keys, k)
			total += w
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	r := rng.Float64() * total
	for _, k := range keys {
		r -= weights[k]
		if r <= 0 {
			return k
		}
	}
	return keys[0]
}

// One picks a uniformly random element from items. Returns the zero
// value for an empty slice.
func One[T any](rng *rand.Rand, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[rng.Intn(len(items))]
}
