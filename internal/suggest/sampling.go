package suggest

import (
	"math/rand"

	"github.com/wanderlist/wanderlist/internal/models"
)

// weightFunc returns the sampling weight for a group. Non-positive weights
// are treated as 1 so an unweighted candidate is never unreachable.
type weightFunc func(*models.CategoryGroup) float64

// sampleWithoutReplacement draws up to k groups, each draw proportional to
// its weight among the remaining pool. The pool shrinks after every draw, so
// removing a heavy item raises the relative probability of the rest. This is
// weight-proportional sampling, not shuffle-then-slice.
//
// The input slice is not modified. If k >= len(groups), all groups are
// returned in draw order.
func sampleWithoutReplacement(rng *rand.Rand, groups []models.CategoryGroup, weightOf weightFunc, k int) []models.CategoryGroup {
	if k <= 0 || len(groups) == 0 {
		return nil
	}
	if k > len(groups) {
		k = len(groups)
	}

	pool := make([]models.CategoryGroup, len(groups))
	copy(pool, groups)
	weights := make([]float64, len(pool))
	var total float64
	for i := range pool {
		w := weightOf(&pool[i])
		if w <= 0 {
			w = 1
		}
		weights[i] = w
		total += w
	}

	picked := make([]models.CategoryGroup, 0, k)
	for len(picked) < k {
		target := rng.Float64() * total
		idx := len(pool) - 1
		var cum float64
		for i := range pool {
			cum += weights[i]
			if target < cum {
				idx = i
				break
			}
		}

		picked = append(picked, pool[idx])
		total -= weights[idx]

		// Remove the drawn item; order within the pool does not matter.
		last := len(pool) - 1
		pool[idx] = pool[last]
		weights[idx] = weights[last]
		pool = pool[:last]
		weights = weights[:last]
	}

	return picked
}

// sampleUniform draws one group uniformly at random, disregarding weight.
func sampleUniform(rng *rand.Rand, groups []models.CategoryGroup) (models.CategoryGroup, bool) {
	if len(groups) == 0 {
		return models.CategoryGroup{}, false
	}
	return groups[rng.Intn(len(groups))], true
}
