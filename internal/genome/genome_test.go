package genome

import (
	"math/rand"
	"strings"
	"testing"

	"verdane/internal/model"
)

func uniformPairs(maternal, paternal bool) []model.AllelePair {
	pairs := make([]model.AllelePair, LocusCount)
	for i := range pairs {
		pairs[i] = model.AllelePair{Maternal: maternal, Paternal: paternal}
	}
	return pairs
}

func TestNewDerivesDosages(t *testing.T) {
	pairs := uniformPairs(true, false)
	pairs[0] = model.AllelePair{Maternal: true, Paternal: true}
	pairs[1] = model.AllelePair{}

	g, err := New(pairs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if Dosage(g, 0) != 2 {
		t.Fatalf("homozygous dominant locus dosage = %d, want 2", Dosage(g, 0))
	}
	if Dosage(g, 1) != 0 {
		t.Fatalf("homozygous recessive locus dosage = %d, want 0", Dosage(g, 1))
	}
	if Dosage(g, 2) != 1 {
		t.Fatalf("heterozygous locus dosage = %d, want 1", Dosage(g, 2))
	}
}

func TestNewRejectsWrongLength(t *testing.T) {
	if _, err := New(make([]model.AllelePair, LocusCount-1)); err == nil {
		t.Fatal("expected error for short pair sequence")
	}
}

func TestNewCopiesInput(t *testing.T) {
	pairs := uniformPairs(false, false)
	g, err := New(pairs)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pairs[0].Maternal = true
	if g.Pairs[0].Maternal {
		t.Fatal("genome aliases caller's pair slice")
	}
}

func TestHeterozygosity(t *testing.T) {
	allHetero, err := New(uniformPairs(true, false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h, err := Heterozygosity(allHetero)
	if err != nil {
		t.Fatalf("Heterozygosity: %v", err)
	}
	if h != 1.0 {
		t.Fatalf("all-heterozygous genome: got %v, want 1.0", h)
	}

	allHomo, err := New(uniformPairs(true, true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h, err = Heterozygosity(allHomo)
	if err != nil {
		t.Fatalf("Heterozygosity: %v", err)
	}
	if h != 0.0 {
		t.Fatalf("all-homozygous genome: got %v, want 0.0", h)
	}
}

func TestHeterozygosityRejectsEmptyGenome(t *testing.T) {
	if _, err := Heterozygosity(model.Genome{}); err == nil {
		t.Fatal("expected error for empty genome")
	}
}

func TestValidateCatchesInconsistentDosage(t *testing.T) {
	g, err := New(uniformPairs(true, false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := Validate(g); err != nil {
		t.Fatalf("Validate on fresh genome: %v", err)
	}

	g.Dosages[5] = 2
	err = Validate(g)
	if err == nil {
		t.Fatal("expected error for tampered dosage")
	}
	if !strings.Contains(err.Error(), "locus 5") {
		t.Fatalf("error should name the locus: %v", err)
	}
}

func TestFounderIsDeterministicPerSeed(t *testing.T) {
	a, err := Founder(rand.New(rand.NewSource(7)), DefaultAlleleFrequency)
	if err != nil {
		t.Fatalf("Founder: %v", err)
	}
	b, err := Founder(rand.New(rand.NewSource(7)), DefaultAlleleFrequency)
	if err != nil {
		t.Fatalf("Founder: %v", err)
	}
	for i := range a.Pairs {
		if a.Pairs[i] != b.Pairs[i] {
			t.Fatalf("locus %d differs across identical seeds", i)
		}
	}
}

func TestFounderFrequencyExtremes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	fixed, err := Founder(rng, 1.0)
	if err != nil {
		t.Fatalf("Founder: %v", err)
	}
	for locus := 0; locus < LocusCount; locus++ {
		if Dosage(fixed, locus) != 2 {
			t.Fatalf("frequency 1.0: locus %d dosage %d, want 2", locus, Dosage(fixed, locus))
		}
	}

	empty, err := Founder(rng, 0.0)
	if err != nil {
		t.Fatalf("Founder: %v", err)
	}
	for locus := 0; locus < LocusCount; locus++ {
		if Dosage(empty, locus) != 0 {
			t.Fatalf("frequency 0.0: locus %d dosage %d, want 0", locus, Dosage(empty, locus))
		}
	}

	if _, err := Founder(rng, 1.5); err == nil {
		t.Fatal("expected error for out-of-range frequency")
	}
}

func TestNewPlantIDCarriesGeneration(t *testing.T) {
	id := NewPlantID(3)
	if !strings.HasPrefix(id, "g3-") {
		t.Fatalf("plant id %q missing generation prefix", id)
	}
	if id == NewPlantID(3) {
		t.Fatal("plant ids must be unique")
	}
}
