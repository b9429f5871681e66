package breeding

import (
	"math"
	"math/rand"
	"testing"

	"verdane/internal/genome"
	"verdane/internal/model"
)

func genomeWithDosage(t *testing.T, dosage int) model.Genome {
	t.Helper()
	pairs := make([]model.AllelePair, genome.LocusCount)
	for i := range pairs {
		pairs[i] = model.AllelePair{Maternal: dosage >= 1, Paternal: dosage >= 2}
	}
	g, err := genome.New(pairs)
	if err != nil {
		t.Fatalf("genome.New: %v", err)
	}
	return g
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBreedingValuesFullDominant(t *testing.T) {
	calc := DefaultCalculator()
	values := calc.BreedingValues(genomeWithDosage(t, 2))

	// Each trait group sums to 6.9 effect units, doubled by dosage 2. The two
	// trade-off loci subtract 0.5*0.6*2 each from resistance; the two link
	// loci add 0.3*0.6*2 each to height.
	if !almostEqual(values.Yield, 13.8) {
		t.Fatalf("yield = %v, want 13.8", values.Yield)
	}
	if !almostEqual(values.Resistance, 12.6) {
		t.Fatalf("resistance = %v, want 12.6", values.Resistance)
	}
	if !almostEqual(values.Height, 14.52) {
		t.Fatalf("height = %v, want 14.52", values.Height)
	}
}

func TestBreedingValuesZeroGenome(t *testing.T) {
	values := DefaultCalculator().BreedingValues(genomeWithDosage(t, 0))
	if values != (model.TraitValues{}) {
		t.Fatalf("all-recessive genome has non-zero breeding values: %+v", values)
	}
}

func TestTradeOffLocusLowersPartnerTrait(t *testing.T) {
	calc := DefaultCalculator()
	base := genomeWithDosage(t, 0)

	pairs := make([]model.AllelePair, genome.LocusCount)
	copy(pairs, base.Pairs)
	pairs[6] = model.AllelePair{Maternal: true, Paternal: true}
	raised, err := genome.New(pairs)
	if err != nil {
		t.Fatalf("genome.New: %v", err)
	}

	before := calc.BreedingValues(base)
	after := calc.BreedingValues(raised)
	if after.Yield <= before.Yield {
		t.Fatalf("trade-off dosage should raise yield: %v -> %v", before.Yield, after.Yield)
	}
	if after.Resistance >= before.Resistance {
		t.Fatalf("trade-off dosage should lower resistance: %v -> %v", before.Resistance, after.Resistance)
	}
}

func TestLinkLocusRaisesPartnerTrait(t *testing.T) {
	calc := DefaultCalculator()
	base := genomeWithDosage(t, 0)

	pairs := make([]model.AllelePair, genome.LocusCount)
	copy(pairs, base.Pairs)
	pairs[14] = model.AllelePair{Maternal: true, Paternal: true}
	raised, err := genome.New(pairs)
	if err != nil {
		t.Fatalf("genome.New: %v", err)
	}

	after := calc.BreedingValues(raised)
	if after.Resistance <= 0 || after.Height <= 0 {
		t.Fatalf("link dosage should raise both traits: %+v", after)
	}
}

func TestBreedingValuesIgnoreEnvironment(t *testing.T) {
	calc := DefaultCalculator()
	g := genomeWithDosage(t, 1)
	first := calc.BreedingValues(g)
	second := calc.BreedingValues(g)
	if first != second {
		t.Fatalf("breeding values not repeatable: %+v vs %+v", first, second)
	}
}

func TestPhenotypeAtZeroVarianceEqualsBreedingValues(t *testing.T) {
	calc := DefaultCalculator()
	rng := rand.New(rand.NewSource(11))
	bv := calc.BreedingValues(genomeWithDosage(t, 2))

	phenotype := calc.Phenotype(rng, bv, 0)
	if phenotype != bv {
		t.Fatalf("variance 0 phenotype %+v differs from breeding values %+v", phenotype, bv)
	}
}

func TestPhenotypeVariesWithEnvironment(t *testing.T) {
	calc := DefaultCalculator()
	rng := rand.New(rand.NewSource(11))
	bv := calc.BreedingValues(genomeWithDosage(t, 2))

	phenotype := calc.Phenotype(rng, bv, 1.5)
	if phenotype == bv {
		t.Fatal("expected environmental deviation at variance 1.5")
	}
}

func TestNewPlantRequiresRNG(t *testing.T) {
	calc := DefaultCalculator()
	if _, err := calc.NewPlant(nil, genomeWithDosage(t, 1), 1, 0); err == nil {
		t.Fatal("expected error for nil rng")
	}
}

func TestNewPlantDerivedFields(t *testing.T) {
	calc := DefaultCalculator()
	rng := rand.New(rand.NewSource(3))

	pairs := make([]model.AllelePair, genome.LocusCount)
	for i := range pairs {
		pairs[i] = model.AllelePair{Maternal: true, Paternal: false}
	}
	g, err := genome.New(pairs)
	if err != nil {
		t.Fatalf("genome.New: %v", err)
	}

	plant, err := calc.NewPlant(rng, g, 2, 0)
	if err != nil {
		t.Fatalf("NewPlant: %v", err)
	}
	if plant.Generation != 2 {
		t.Fatalf("generation = %d, want 2", plant.Generation)
	}
	if plant.Heterozygosity != 1.0 || !plant.Heterozygous {
		t.Fatalf("all-heterozygous plant: heterozygosity=%v heterozygous=%t", plant.Heterozygosity, plant.Heterozygous)
	}
	if plant.Phenotype != plant.BreedingValue {
		t.Fatal("variance 0 phenotype should equal breeding values")
	}
	if plant.SchemaVersion != model.CurrentSchemaVersion {
		t.Fatalf("plant not version-stamped: %d", plant.SchemaVersion)
	}
}

func TestNewCalculatorValidation(t *testing.T) {
	if _, err := NewCalculator(-0.1, 0.3, 1.0); err == nil {
		t.Fatal("expected error for negative trade-off coefficient")
	}
	if _, err := NewCalculator(0.5, -0.3, 1.0); err == nil {
		t.Fatal("expected error for negative link coefficient")
	}
	if _, err := NewCalculator(0.5, 0.3, -1.0); err == nil {
		t.Fatal("expected error for negative base env sd")
	}
}
