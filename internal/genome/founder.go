package genome

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"verdane/internal/model"
)

// DefaultAlleleFrequency is the founder dominant-allele frequency. Independent
// 0.5 draws on both strands maximize founder heterozygosity and the additive
// variance early selection acts on.
const DefaultAlleleFrequency = 0.5

// Founder draws one founder genome. Maternal and paternal presence are
// independent Bernoulli(alleleFrequency) draws at every locus.
func Founder(rng *rand.Rand, alleleFrequency float64) (model.Genome, error) {
	if alleleFrequency < 0 || alleleFrequency > 1 {
		return model.Genome{}, fmt.Errorf("allele frequency must be in [0, 1], got %v", alleleFrequency)
	}
	rng = ensureRNG(rng)

	pairs := make([]model.AllelePair, LocusCount)
	for i := range pairs {
		pairs[i] = model.AllelePair{
			Maternal: rng.Float64() < alleleFrequency,
			Paternal: rng.Float64() < alleleFrequency,
		}
	}
	return New(pairs)
}

// NewPlantID mints a generation-stamped plant identity.
func NewPlantID(generation int) string {
	return fmt.Sprintf("g%d-%s", generation, uuid.NewString())
}

func ensureRNG(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
