package storage

import (
	"context"

	"verdane/internal/model"
)

// Store defines persistence operations for breeding runs. Histories and
// scenario logs are saved whole per run; callers append and re-save, never
// rewrite past entries.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, runID string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SavePopulation(ctx context.Context, population model.Population) error
	GetPopulation(ctx context.Context, id string) (model.Population, bool, error)
	SaveStatsHistory(ctx context.Context, runID string, history []model.PopulationStats) error
	GetStatsHistory(ctx context.Context, runID string) ([]model.PopulationStats, bool, error)
	SaveScenarioLog(ctx context.Context, runID string, scenarios []model.Scenario) error
	GetScenarioLog(ctx context.Context, runID string) ([]model.Scenario, bool, error)
}
