// Package breeding implements the genetics engine: phenotype and
// breeding-value computation, meiosis, parent selection, and generational
// advancement.
package breeding

import (
	"fmt"
	"math/rand"

	"verdane/internal/genome"
	"verdane/internal/model"
)

// Default pleiotropy and environment coefficients. Exposed through the config
// package rather than tuned for biological realism beyond what is testable.
const (
	DefaultTradeOffCoeff = 0.5
	DefaultLinkCoeff     = 0.3
	DefaultBaseEnvSD     = 1.0
)

// Calculator maps genomes to breeding values and phenotypes.
type Calculator struct {
	// TradeOffCoeff scales the negative cross-trait contribution of
	// trade-off loci; LinkCoeff scales the positive contribution of
	// positive-link loci.
	TradeOffCoeff float64
	LinkCoeff     float64
	// BaseEnvSD is the environmental deviation's standard deviation at
	// environmental variance 1.0.
	BaseEnvSD float64
}

func NewCalculator(tradeOff, link, baseEnvSD float64) (Calculator, error) {
	if tradeOff < 0 {
		return Calculator{}, fmt.Errorf("trade-off coefficient must be >= 0, got %v", tradeOff)
	}
	if link < 0 {
		return Calculator{}, fmt.Errorf("link coefficient must be >= 0, got %v", link)
	}
	if baseEnvSD < 0 {
		return Calculator{}, fmt.Errorf("base environmental sd must be >= 0, got %v", baseEnvSD)
	}
	return Calculator{TradeOffCoeff: tradeOff, LinkCoeff: link, BaseEnvSD: baseEnvSD}, nil
}

func DefaultCalculator() Calculator {
	return Calculator{
		TradeOffCoeff: DefaultTradeOffCoeff,
		LinkCoeff:     DefaultLinkCoeff,
		BaseEnvSD:     DefaultBaseEnvSD,
	}
}

// BreedingValues computes the genotype-only trait values (GEBV): the sum of
// effect-weighted dosages per trait group, plus signed cross-trait
// contributions from pleiotropic loci. Pure and repeatable; no environmental
// term.
func (c Calculator) BreedingValues(g model.Genome) model.TraitValues {
	var v model.TraitValues
	for locus := 0; locus < genome.LocusCount; locus++ {
		dosage := float64(genome.Dosage(g, locus))
		if dosage == 0 {
			continue
		}
		info := genome.Info(locus)
		v.Add(info.Trait, info.Effect*dosage)
		switch info.Relation {
		case genome.RelationTradeOff:
			v.Add(info.Partner, -c.TradeOffCoeff*info.Effect*dosage)
		case genome.RelationPositiveLink:
			v.Add(info.Partner, c.LinkCoeff*info.Effect*dosage)
		}
	}
	return v
}

// Phenotype adds one environmental deviate per trait to the breeding values.
// The deviation is Normal(0, envVariance * BaseEnvSD); variance 0 returns the
// breeding values exactly.
func (c Calculator) Phenotype(rng *rand.Rand, breedingValues model.TraitValues, envVariance float64) model.TraitValues {
	if envVariance <= 0 {
		return breedingValues
	}
	spread := envVariance * c.BaseEnvSD
	return model.TraitValues{
		Yield:      breedingValues.Yield + rng.NormFloat64()*spread,
		Resistance: breedingValues.Resistance + rng.NormFloat64()*spread,
		Height:     breedingValues.Height + rng.NormFloat64()*spread,
	}
}

// NewPlant materializes an immutable individual from a genome: fresh
// generation-stamped identity plus all derived fields.
func (c Calculator) NewPlant(rng *rand.Rand, g model.Genome, generation int, envVariance float64) (model.Plant, error) {
	if rng == nil {
		return model.Plant{}, fmt.Errorf("random source is required")
	}
	if err := genome.Validate(g); err != nil {
		return model.Plant{}, err
	}
	hetero, err := genome.Heterozygosity(g)
	if err != nil {
		return model.Plant{}, err
	}

	breedingValues := c.BreedingValues(g)
	return model.Plant{
		VersionedRecord: model.CurrentVersion(),
		ID:              genome.NewPlantID(generation),
		Generation:      generation,
		Genome:          g,
		BreedingValue:   breedingValues,
		Phenotype:       c.Phenotype(rng, breedingValues, envVariance),
		Heterozygosity:  hetero,
		Heterozygous:    hetero >= 0.5,
	}, nil
}
