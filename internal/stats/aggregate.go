// Package stats aggregates per-generation population statistics and writes
// season run artifacts.
package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"verdane/internal/model"
)

// Aggregate computes one generation's history entry: per-trait phenotype and
// breeding-value moments plus mean heterozygosity. Rejects empty populations.
func Aggregate(plants []model.Plant, generation int, envVariance float64) (model.PopulationStats, error) {
	if len(plants) == 0 {
		return model.PopulationStats{}, fmt.Errorf("cannot aggregate empty population")
	}

	hetero := make([]float64, len(plants))
	for i, plant := range plants {
		hetero[i] = plant.Heterozygosity
	}

	out := model.PopulationStats{
		VersionedRecord:    model.CurrentVersion(),
		Generation:         generation,
		Size:               len(plants),
		EnvVariance:        envVariance,
		MeanHeterozygosity: stat.Mean(hetero, nil),
	}
	for _, trait := range model.Traits() {
		phenotype := make([]float64, len(plants))
		breeding := make([]float64, len(plants))
		for i, plant := range plants {
			phenotype[i] = plant.Phenotype.Value(trait)
			breeding[i] = plant.BreedingValue.Value(trait)
		}
		setTraitStats(&out.Phenotype, trait, summarize(phenotype))
		setTraitStats(&out.BreedingValue, trait, summarize(breeding))
	}
	return out, nil
}

// Differential returns the phenotype-mean advantage of the selected parents
// over their source population (the selection differential S).
func Differential(parents, population []model.Plant) (model.TraitValues, error) {
	if len(parents) == 0 || len(population) == 0 {
		return model.TraitValues{}, fmt.Errorf("differential requires non-empty parent and population sets")
	}

	var out model.TraitValues
	for _, trait := range model.Traits() {
		parentValues := make([]float64, len(parents))
		for i, plant := range parents {
			parentValues[i] = plant.Phenotype.Value(trait)
		}
		populationValues := make([]float64, len(population))
		for i, plant := range population {
			populationValues[i] = plant.Phenotype.Value(trait)
		}
		out.Add(trait, stat.Mean(parentValues, nil)-stat.Mean(populationValues, nil))
	}
	return out, nil
}

func summarize(values []float64) model.TraitStats {
	variance := stat.PopVariance(values, nil)
	best, worst := values[0], values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
		if v < worst {
			worst = v
		}
	}
	return model.TraitStats{
		Mean:     stat.Mean(values, nil),
		Variance: variance,
		Std:      math.Sqrt(variance),
		Best:     best,
		Worst:    worst,
	}
}

func setTraitStats(set *model.TraitStatsSet, trait model.Trait, values model.TraitStats) {
	switch trait {
	case model.TraitYield:
		set.Yield = values
	case model.TraitResistance:
		set.Resistance = values
	case model.TraitHeight:
		set.Height = values
	}
}
