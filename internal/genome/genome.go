// Package genome holds the locus map and the diploid genome model: dosage
// derivation, heterozygosity, and founder genome construction.
package genome

import (
	"fmt"

	"verdane/internal/model"
)

// New builds a genome from allele pairs, deriving the dosage sequence. The
// pair count must equal LocusCount.
func New(pairs []model.AllelePair) (model.Genome, error) {
	if len(pairs) != LocusCount {
		return model.Genome{}, fmt.Errorf("genome requires %d loci, got %d", LocusCount, len(pairs))
	}

	g := model.Genome{
		Pairs:   make([]model.AllelePair, LocusCount),
		Dosages: make([]int, LocusCount),
	}
	copy(g.Pairs, pairs)
	for i, pair := range g.Pairs {
		g.Dosages[i] = dosageOf(pair)
	}
	return g, nil
}

func dosageOf(pair model.AllelePair) int {
	dosage := 0
	if pair.Maternal {
		dosage++
	}
	if pair.Paternal {
		dosage++
	}
	return dosage
}

// Dosage returns the dominant-allele count at a locus.
func Dosage(g model.Genome, locus int) int {
	return g.Dosages[locus]
}

// Heterozygosity returns the fraction of loci whose two alleles differ.
// It fails only on an empty genome.
func Heterozygosity(g model.Genome) (float64, error) {
	if len(g.Pairs) == 0 {
		return 0, fmt.Errorf("heterozygosity of empty genome")
	}

	hetero := 0
	for _, pair := range g.Pairs {
		if pair.Maternal != pair.Paternal {
			hetero++
		}
	}
	return float64(hetero) / float64(len(g.Pairs)), nil
}

// Validate checks the genome shape and the pair/dosage consistency invariant.
func Validate(g model.Genome) error {
	if len(g.Pairs) != LocusCount {
		return fmt.Errorf("genome has %d loci, want %d", len(g.Pairs), LocusCount)
	}
	if len(g.Dosages) != len(g.Pairs) {
		return fmt.Errorf("dosage sequence length %d does not match %d loci", len(g.Dosages), len(g.Pairs))
	}
	for i, pair := range g.Pairs {
		if g.Dosages[i] != dosageOf(pair) {
			return fmt.Errorf("locus %d dosage %d inconsistent with allele pair", i, g.Dosages[i])
		}
	}
	return nil
}
