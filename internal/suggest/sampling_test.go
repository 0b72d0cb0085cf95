package suggest

import (
	"math/rand"
	"testing"

	"github.com/wanderlist/wanderlist/internal/models"
)

func weightedGroups(weights ...float64) []models.CategoryGroup {
	groups := make([]models.CategoryGroup, len(weights))
	for i, w := range weights {
		groups[i] = models.CategoryGroup{
			ID:     string(rune('a' + i)),
			Weight: w,
		}
	}
	return groups
}

func byWeight(g *models.CategoryGroup) float64 { return g.Weight }

func TestSampleWithoutReplacement_Basics(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	groups := weightedGroups(1, 1, 1, 1)

	if got := sampleWithoutReplacement(rng, groups, byWeight, 0); got != nil {
		t.Errorf("k=0 should return nil, got %v", got)
	}
	if got := sampleWithoutReplacement(rng, nil, byWeight, 3); got != nil {
		t.Errorf("empty pool should return nil, got %v", got)
	}

	// k > len returns everything exactly once.
	got := sampleWithoutReplacement(rng, groups, byWeight, 10)
	if len(got) != len(groups) {
		t.Fatalf("expected %d items, got %d", len(groups), len(got))
	}
	seen := make(map[string]bool)
	for _, g := range got {
		if seen[g.ID] {
			t.Errorf("duplicate id %q in sample", g.ID)
		}
		seen[g.ID] = true
	}
}

func TestSampleWithoutReplacement_NoDuplicates(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	groups := weightedGroups(5, 3, 2, 8, 1, 4)

	for trial := 0; trial < 200; trial++ {
		got := sampleWithoutReplacement(rng, groups, byWeight, 4)
		if len(got) != 4 {
			t.Fatalf("expected 4 items, got %d", len(got))
		}
		seen := make(map[string]bool)
		for _, g := range got {
			if seen[g.ID] {
				t.Fatalf("duplicate id %q drawn in trial %d", g.ID, trial)
			}
			seen[g.ID] = true
		}
	}
}

// The heavy item with weights [10,1,1] should win far more than half the
// draws but never all of them. Statistical: bounds are loose on purpose.
func TestSampleWithoutReplacement_Distribution(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	groups := weightedGroups(10, 1, 1)

	const draws = 10000
	heavyWins := 0
	for i := 0; i < draws; i++ {
		got := sampleWithoutReplacement(rng, groups, byWeight, 1)
		if len(got) != 1 {
			t.Fatalf("expected exactly one item, got %d", len(got))
		}
		if got[0].ID == "a" {
			heavyWins++
		}
	}

	// Expected share is 10/12 ≈ 83%.
	if heavyWins <= draws/2 {
		t.Errorf("heavy item won only %d/%d draws, expected well over half", heavyWins, draws)
	}
	if heavyWins >= draws {
		t.Errorf("heavy item won every draw; light items must remain reachable")
	}
}

// Drawing k=2 from [10,1,1]: after the heavy item is removed the light items
// split the remaining probability, so both light ids must appear in second
// position over many trials.
func TestSampleWithoutReplacement_Renormalizes(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(99))
	groups := weightedGroups(10, 1, 1)

	secondPosition := make(map[string]int)
	for i := 0; i < 5000; i++ {
		got := sampleWithoutReplacement(rng, groups, byWeight, 2)
		secondPosition[got[1].ID]++
	}

	if secondPosition["b"] == 0 || secondPosition["c"] == 0 {
		t.Errorf("renormalization failed: second-position counts %v", secondPosition)
	}
}

func TestSampleWithoutReplacement_ZeroWeightDefaultsToOne(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3))
	groups := weightedGroups(0, 0, 0)

	got := sampleWithoutReplacement(rng, groups, byWeight, 3)
	if len(got) != 3 {
		t.Fatalf("zero-weight items must still be drawable, got %d of 3", len(got))
	}
}

func TestSampleUniform(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(5))

	if _, ok := sampleUniform(rng, nil); ok {
		t.Error("empty pool should report no pick")
	}

	groups := weightedGroups(1, 100)
	counts := make(map[string]int)
	for i := 0; i < 2000; i++ {
		g, ok := sampleUniform(rng, groups)
		if !ok {
			t.Fatal("expected a pick")
		}
		counts[g.ID]++
	}
	// Uniform pick disregards weight: both ids must show up substantially.
	if counts["a"] < 500 || counts["b"] < 500 {
		t.Errorf("uniform sampling looks skewed: %v", counts)
	}
}
