package breeding

import (
	"fmt"
	"math/rand"
	"sort"

	"verdane/internal/model"
)

// ParentSelector picks the parent subset for the next generation in headless
// season runs. Interactive runs bypass selectors: the operator supplies the
// parent set directly.
type ParentSelector interface {
	Name() string
	SelectParents(rng *rand.Rand, plants []model.Plant, count int) ([]model.Plant, error)
}

func validateSelection(rng *rand.Rand, plants []model.Plant, count int) error {
	if rng == nil {
		return fmt.Errorf("random source is required")
	}
	if count < 2 {
		return fmt.Errorf("parent count must be >= 2, got %d", count)
	}
	if count > len(plants) {
		return fmt.Errorf("parent count %d exceeds population size %d", count, len(plants))
	}
	return nil
}

// TopYieldSelector truncates on yield breeding value.
type TopYieldSelector struct{}

func (TopYieldSelector) Name() string {
	return "top_yield"
}

func (TopYieldSelector) SelectParents(rng *rand.Rand, plants []model.Plant, count int) ([]model.Plant, error) {
	if err := validateSelection(rng, plants, count); err != nil {
		return nil, err
	}

	ranked := make([]model.Plant, len(plants))
	copy(ranked, plants)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].BreedingValue.Yield > ranked[j].BreedingValue.Yield
	})
	return ranked[:count], nil
}

// IndexSelector truncates on a weighted selection index over breeding values.
type IndexSelector struct {
	Weights model.TraitValues
}

func (IndexSelector) Name() string {
	return "index"
}

func (s IndexSelector) SelectParents(rng *rand.Rand, plants []model.Plant, count int) ([]model.Plant, error) {
	if err := validateSelection(rng, plants, count); err != nil {
		return nil, err
	}
	if s.Weights == (model.TraitValues{}) {
		return nil, fmt.Errorf("at least one index weight must be non-zero")
	}

	ranked := make([]model.Plant, len(plants))
	copy(ranked, plants)
	sort.SliceStable(ranked, func(i, j int) bool {
		return s.index(ranked[i]) > s.index(ranked[j])
	})
	return ranked[:count], nil
}

func (s IndexSelector) index(plant model.Plant) float64 {
	return s.Weights.Yield*plant.BreedingValue.Yield +
		s.Weights.Resistance*plant.BreedingValue.Resistance +
		s.Weights.Height*plant.BreedingValue.Height
}

// TournamentSelector fills the parent set by repeated tournaments on the
// selection index, removing each winner from the pool.
type TournamentSelector struct {
	Weights        model.TraitValues
	TournamentSize int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) SelectParents(rng *rand.Rand, plants []model.Plant, count int) ([]model.Plant, error) {
	if err := validateSelection(rng, plants, count); err != nil {
		return nil, err
	}

	weights := s.Weights
	if weights == (model.TraitValues{}) {
		weights = model.TraitValues{Yield: 1, Resistance: 1, Height: 1}
	}
	index := IndexSelector{Weights: weights}

	tournamentSize := s.TournamentSize
	if tournamentSize <= 0 {
		tournamentSize = 3
	}

	pool := make([]model.Plant, len(plants))
	copy(pool, plants)
	selected := make([]model.Plant, 0, count)
	for len(selected) < count {
		if tournamentSize > len(pool) {
			tournamentSize = len(pool)
		}
		best := rng.Intn(len(pool))
		for i := 1; i < tournamentSize; i++ {
			candidate := rng.Intn(len(pool))
			if index.index(pool[candidate]) > index.index(pool[best]) {
				best = candidate
			}
		}
		selected = append(selected, pool[best])
		pool = append(pool[:best], pool[best+1:]...)
	}
	return selected, nil
}

// SelectorFromName resolves a configured selection strategy.
func SelectorFromName(name string) (ParentSelector, error) {
	switch name {
	case "", "top_yield":
		return TopYieldSelector{}, nil
	case "index":
		return IndexSelector{Weights: model.TraitValues{Yield: 1, Resistance: 1, Height: 1}}, nil
	case "tournament":
		return TournamentSelector{TournamentSize: 3}, nil
	default:
		return nil, fmt.Errorf("unsupported selection strategy: %s", name)
	}
}
