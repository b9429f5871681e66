package storage

import (
	"errors"
	"testing"

	"verdane/internal/model"
)

func TestRunCodecRoundTrip(t *testing.T) {
	run := model.RunRecord{
		VersionedRecord: model.CurrentVersion(),
		RunID:           "trial-1",
		Seed:            42,
		Size:            20,
		Generation:      2,
		PopulationID:    "trial-1-g2",
	}

	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("EncodeRun: %v", err)
	}
	got, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("DecodeRun: %v", err)
	}
	if got != run {
		t.Fatalf("run mismatch: %+v vs %+v", got, run)
	}
}

func TestDecodeRunRejectsVersionMismatch(t *testing.T) {
	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: 99, CodecVersion: 1},
		RunID:           "trial-1",
	}
	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("EncodeRun: %v", err)
	}
	if _, err := DecodeRun(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestPopulationCodecPreservesDerivedValues(t *testing.T) {
	population := model.Population{
		VersionedRecord: model.CurrentVersion(),
		ID:              "trial-1-g1",
		RunID:           "trial-1",
		Generation:      1,
		EnvVariance:     0.8,
		Plants: []model.Plant{
			{
				VersionedRecord: model.CurrentVersion(),
				ID:              "g1-abc",
				Generation:      1,
				Phenotype:       model.TraitValues{Yield: 6.1, Resistance: 4.2, Height: 5.5},
				BreedingValue:   model.TraitValues{Yield: 5.9, Resistance: 4.6, Height: 5.2},
				Heterozygosity:  0.42,
			},
		},
	}

	data, err := EncodePopulation(population)
	if err != nil {
		t.Fatalf("EncodePopulation: %v", err)
	}
	got, err := DecodePopulation(data)
	if err != nil {
		t.Fatalf("DecodePopulation: %v", err)
	}
	plant := got.Plants[0]
	if plant.Phenotype != population.Plants[0].Phenotype {
		t.Fatal("phenotype changed across codec round trip")
	}
	if plant.BreedingValue != population.Plants[0].BreedingValue {
		t.Fatal("breeding value changed across codec round trip")
	}
	if plant.Heterozygosity != 0.42 {
		t.Fatalf("heterozygosity = %v, want 0.42", plant.Heterozygosity)
	}
}

func TestDecodePopulationChecksPlantVersions(t *testing.T) {
	population := model.Population{
		VersionedRecord: model.CurrentVersion(),
		ID:              "trial-1-g1",
		Plants: []model.Plant{
			{VersionedRecord: model.VersionedRecord{SchemaVersion: 1, CodecVersion: 99}},
		},
	}
	data, err := EncodePopulation(population)
	if err != nil {
		t.Fatalf("EncodePopulation: %v", err)
	}
	if _, err := DecodePopulation(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestStatsHistoryCodec(t *testing.T) {
	differential := model.TraitValues{Yield: 1.1}
	history := []model.PopulationStats{
		{VersionedRecord: model.CurrentVersion(), Generation: 1, Size: 8},
		{VersionedRecord: model.CurrentVersion(), Generation: 2, Size: 8, SelectionDifferential: &differential},
	}

	data, err := EncodeStatsHistory(history)
	if err != nil {
		t.Fatalf("EncodeStatsHistory: %v", err)
	}
	got, err := DecodeStatsHistory(data)
	if err != nil {
		t.Fatalf("DecodeStatsHistory: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("history length = %d, want 2", len(got))
	}
	if got[0].SelectionDifferential != nil {
		t.Fatal("founder entry gained a selection differential")
	}
	if got[1].SelectionDifferential == nil || got[1].SelectionDifferential.Yield != 1.1 {
		t.Fatalf("differential mismatch: %+v", got[1].SelectionDifferential)
	}
}

func TestScenarioLogCodec(t *testing.T) {
	scenarios := []model.Scenario{
		{Generation: 1, Text: "mild season", EnvVariance: 0.6, Source: "static"},
	}
	data, err := EncodeScenarioLog(scenarios)
	if err != nil {
		t.Fatalf("EncodeScenarioLog: %v", err)
	}
	got, err := DecodeScenarioLog(data)
	if err != nil {
		t.Fatalf("DecodeScenarioLog: %v", err)
	}
	if len(got) != 1 || got[0] != scenarios[0] {
		t.Fatalf("scenario mismatch: %+v", got)
	}
}
