package breeding

import (
	"fmt"
	"math/rand"

	"verdane/internal/genome"
	"verdane/internal/model"
)

// DefaultPopulationSize is the fixed population cardinality carried across
// generations unless configured otherwise.
const DefaultPopulationSize = 20

// Advancer produces whole populations: the founder generation and each
// full-replacement offspring generation.
type Advancer struct {
	Calc            Calculator
	Crosser         Crosser
	PopulationSize  int
	AlleleFrequency float64
}

func NewAdvancer(calc Calculator, crosser Crosser, populationSize int, alleleFrequency float64) (Advancer, error) {
	if populationSize < 2 {
		return Advancer{}, fmt.Errorf("population size must be >= 2, got %d", populationSize)
	}
	if alleleFrequency < 0 || alleleFrequency > 1 {
		return Advancer{}, fmt.Errorf("allele frequency must be in [0, 1], got %v", alleleFrequency)
	}
	return Advancer{
		Calc:            calc,
		Crosser:         crosser,
		PopulationSize:  populationSize,
		AlleleFrequency: alleleFrequency,
	}, nil
}

func DefaultAdvancer() Advancer {
	return Advancer{
		Calc:            DefaultCalculator(),
		Crosser:         DefaultCrosser(),
		PopulationSize:  DefaultPopulationSize,
		AlleleFrequency: genome.DefaultAlleleFrequency,
	}
}

// Founders creates the generation-1 population with maximal allelic
// diversity, computing every plant's derived values at the given
// environmental variance.
func (a Advancer) Founders(rng *rand.Rand, envVariance float64) ([]model.Plant, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}

	plants := make([]model.Plant, 0, a.PopulationSize)
	for i := 0; i < a.PopulationSize; i++ {
		g, err := genome.Founder(rng, a.AlleleFrequency)
		if err != nil {
			return nil, err
		}
		plant, err := a.Calc.NewPlant(rng, g, 1, envVariance)
		if err != nil {
			return nil, err
		}
		plants = append(plants, plant)
	}
	return plants, nil
}

// NextGeneration breeds a full replacement population from the selected
// parents: unordered distinct pairs are drawn uniformly with replacement
// across pairs, each pair contributing one offspring, until the population
// size is reached. Every offspring's derived values use this generation's
// environmental variance.
func (a Advancer) NextGeneration(rng *rand.Rand, parents []model.Plant, generation int, envVariance float64) ([]model.Plant, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if len(parents) < 2 {
		return nil, fmt.Errorf("at least 2 parents are required, got %d", len(parents))
	}
	if generation < 2 {
		return nil, fmt.Errorf("offspring generation must be >= 2, got %d", generation)
	}
	for _, parent := range parents {
		if err := genome.Validate(parent.Genome); err != nil {
			return nil, fmt.Errorf("parent %s: %w", parent.ID, err)
		}
	}

	offspring := make([]model.Plant, 0, a.PopulationSize)
	for len(offspring) < a.PopulationSize {
		i := rng.Intn(len(parents))
		j := rng.Intn(len(parents) - 1)
		if j >= i {
			j++
		}

		g, err := a.Crosser.Cross(rng, parents[i].Genome, parents[j].Genome)
		if err != nil {
			return nil, err
		}
		plant, err := a.Calc.NewPlant(rng, g, generation, envVariance)
		if err != nil {
			return nil, err
		}
		offspring = append(offspring, plant)
	}
	return offspring, nil
}
