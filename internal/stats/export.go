package stats

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"verdane/internal/model"
)

// HistoryRow is the flat CSV projection of one generation's stats.
type HistoryRow struct {
	Generation         int     `csv:"generation"`
	Size               int     `csv:"size"`
	EnvVariance        float64 `csv:"env_variance"`
	MeanHeterozygosity float64 `csv:"mean_heterozygosity"`

	YieldMean      float64 `csv:"yield_mean"`
	YieldStd       float64 `csv:"yield_std"`
	YieldBest      float64 `csv:"yield_best"`
	ResistanceMean float64 `csv:"resistance_mean"`
	ResistanceStd  float64 `csv:"resistance_std"`
	ResistanceBest float64 `csv:"resistance_best"`
	HeightMean     float64 `csv:"height_mean"`
	HeightStd      float64 `csv:"height_std"`
	HeightBest     float64 `csv:"height_best"`

	YieldGEBVMean      float64 `csv:"yield_gebv_mean"`
	ResistanceGEBVMean float64 `csv:"resistance_gebv_mean"`
	HeightGEBVMean     float64 `csv:"height_gebv_mean"`

	YieldDifferential float64 `csv:"yield_differential"`
}

// HistoryRows flattens a stats history for CSV export.
func HistoryRows(history []model.PopulationStats) []HistoryRow {
	rows := make([]HistoryRow, 0, len(history))
	for _, entry := range history {
		row := HistoryRow{
			Generation:         entry.Generation,
			Size:               entry.Size,
			EnvVariance:        entry.EnvVariance,
			MeanHeterozygosity: entry.MeanHeterozygosity,

			YieldMean:      entry.Phenotype.Yield.Mean,
			YieldStd:       entry.Phenotype.Yield.Std,
			YieldBest:      entry.Phenotype.Yield.Best,
			ResistanceMean: entry.Phenotype.Resistance.Mean,
			ResistanceStd:  entry.Phenotype.Resistance.Std,
			ResistanceBest: entry.Phenotype.Resistance.Best,
			HeightMean:     entry.Phenotype.Height.Mean,
			HeightStd:      entry.Phenotype.Height.Std,
			HeightBest:     entry.Phenotype.Height.Best,

			YieldGEBVMean:      entry.BreedingValue.Yield.Mean,
			ResistanceGEBVMean: entry.BreedingValue.Resistance.Mean,
			HeightGEBVMean:     entry.BreedingValue.Height.Mean,
		}
		if entry.SelectionDifferential != nil {
			row.YieldDifferential = entry.SelectionDifferential.Yield
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteHistoryCSV writes the stats history as a CSV file.
func WriteHistoryCSV(path string, history []model.PopulationStats) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	rows := HistoryRows(history)
	return gocsv.MarshalFile(&rows, f)
}

// ReadHistoryCSV reads back an exported history file.
func ReadHistoryCSV(path string) ([]HistoryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []HistoryRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
