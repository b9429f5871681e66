package storage

import (
	"encoding/json"
	"errors"

	"verdane/internal/model"
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodePopulation(p model.Population) ([]byte, error) {
	return json.Marshal(p)
}

// DecodePopulation restores a population snapshot. Plant derived values are
// whatever was stored; nothing is recomputed on load.
func DecodePopulation(data []byte) (model.Population, error) {
	var population model.Population
	if err := json.Unmarshal(data, &population); err != nil {
		return model.Population{}, err
	}
	if err := checkVersion(population.VersionedRecord); err != nil {
		return model.Population{}, err
	}
	for _, plant := range population.Plants {
		if err := checkVersion(plant.VersionedRecord); err != nil {
			return model.Population{}, err
		}
	}
	return population, nil
}

func EncodeStatsHistory(history []model.PopulationStats) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeStatsHistory(data []byte) ([]model.PopulationStats, error) {
	var history []model.PopulationStats
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	for _, entry := range history {
		if err := checkVersion(entry.VersionedRecord); err != nil {
			return nil, err
		}
	}
	return history, nil
}

func EncodeScenarioLog(scenarios []model.Scenario) ([]byte, error) {
	return json.Marshal(scenarios)
}

func DecodeScenarioLog(data []byte) ([]model.Scenario, error) {
	var scenarios []model.Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != model.CurrentSchemaVersion || v.CodecVersion != model.CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
