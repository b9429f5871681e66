package breeding

import (
	"fmt"
	"math/rand"

	"verdane/internal/genome"
	"verdane/internal/model"
)

// DefaultLinkageFidelity is the probability that a locus inside a linked
// block segregates on the same parental strand as the rest of its block.
const DefaultLinkageFidelity = 0.85

// Crosser forms offspring genomes from two parents via gamete formation with
// linkage-aware segregation.
type Crosser struct {
	LinkageFidelity float64
}

func NewCrosser(linkageFidelity float64) (Crosser, error) {
	if linkageFidelity < 0 || linkageFidelity > 1 {
		return Crosser{}, fmt.Errorf("linkage fidelity must be in [0, 1], got %v", linkageFidelity)
	}
	return Crosser{LinkageFidelity: linkageFidelity}, nil
}

func DefaultCrosser() Crosser {
	return Crosser{LinkageFidelity: DefaultLinkageFidelity}
}

// Cross produces one offspring genome: the maternal gamete from parent a and
// the paternal gamete from parent b. Rejects parents with mismatched locus
// counts; derived offspring fields are computed by the caller, never
// inherited.
func (c Crosser) Cross(rng *rand.Rand, a, b model.Genome) (model.Genome, error) {
	if rng == nil {
		return model.Genome{}, fmt.Errorf("random source is required")
	}
	if len(a.Pairs) != len(b.Pairs) {
		return model.Genome{}, fmt.Errorf("mismatched parent locus counts: %d vs %d", len(a.Pairs), len(b.Pairs))
	}
	if err := genome.Validate(a); err != nil {
		return model.Genome{}, fmt.Errorf("parent a: %w", err)
	}
	if err := genome.Validate(b); err != nil {
		return model.Genome{}, fmt.Errorf("parent b: %w", err)
	}

	maternal := c.gamete(rng, a)
	paternal := c.gamete(rng, b)
	pairs := make([]model.AllelePair, genome.LocusCount)
	for i := range pairs {
		pairs[i] = model.AllelePair{Maternal: maternal[i], Paternal: paternal[i]}
	}
	return genome.New(pairs)
}

// gamete picks one allele per locus. Unlinked loci assort independently
// (50/50); loci sharing a linked block reuse the block's first strand choice
// with probability LinkageFidelity, modeling reduced recombination frequency
// inside the block.
func (c Crosser) gamete(rng *rand.Rand, g model.Genome) []bool {
	alleles := make([]bool, genome.LocusCount)
	blockStrand := make(map[int]bool)

	for locus := 0; locus < genome.LocusCount; locus++ {
		var maternalStrand bool
		block := genome.BlockOf(locus)
		if block < 0 {
			maternalStrand = rng.Float64() < 0.5
		} else if chosen, seen := blockStrand[block]; seen {
			if rng.Float64() < c.LinkageFidelity {
				maternalStrand = chosen
			} else {
				maternalStrand = rng.Float64() < 0.5
			}
		} else {
			maternalStrand = rng.Float64() < 0.5
			blockStrand[block] = maternalStrand
		}

		if maternalStrand {
			alleles[locus] = g.Pairs[locus].Maternal
		} else {
			alleles[locus] = g.Pairs[locus].Paternal
		}
	}
	return alleles
}
