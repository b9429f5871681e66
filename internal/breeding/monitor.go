package breeding

import (
	"context"
	"fmt"
	"math/rand"

	"verdane/internal/model"
	"verdane/internal/stats"
)

// EnvSource yields the environmental scenario for an upcoming generation.
// Sources must not fail; advisory backends are wrapped best-effort upstream.
type EnvSource func(generation int, history []model.PopulationStats) model.Scenario

// MonitorConfig configures a headless multi-generation season run.
type MonitorConfig struct {
	Advancer    Advancer
	Selector    ParentSelector
	ParentCount int
	Generations int
	Seed        int64
}

// Monitor drives the selection → crossing → offspring cycle for a fixed
// number of generations.
type Monitor struct {
	cfg MonitorConfig
	rng *rand.Rand
}

func NewMonitor(cfg MonitorConfig) (*Monitor, error) {
	if cfg.Advancer.PopulationSize < 2 {
		return nil, fmt.Errorf("population size must be >= 2, got %d", cfg.Advancer.PopulationSize)
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be > 0, got %d", cfg.Generations)
	}
	if cfg.Selector == nil {
		cfg.Selector = TopYieldSelector{}
	}
	if cfg.ParentCount <= 0 {
		cfg.ParentCount = cfg.Advancer.PopulationSize / 4
	}
	if cfg.ParentCount < 2 {
		cfg.ParentCount = 2
	}
	if cfg.ParentCount > cfg.Advancer.PopulationSize {
		return nil, fmt.Errorf("parent count %d exceeds population size %d", cfg.ParentCount, cfg.Advancer.PopulationSize)
	}

	return &Monitor{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// RunResult carries everything a completed season produced.
type RunResult struct {
	History         []model.PopulationStats
	Scenarios       []model.Scenario
	Selections      []model.SelectionRecord
	FinalPopulation []model.Plant
}

// Run seeds the founder generation and advances through the configured
// generation count. Each generation's environmental variance comes from env;
// the history is append-only and ordered by generation.
func (m *Monitor) Run(ctx context.Context, env EnvSource) (RunResult, error) {
	if env == nil {
		return RunResult{}, fmt.Errorf("environment source is required")
	}

	history := make([]model.PopulationStats, 0, m.cfg.Generations)
	scenarios := make([]model.Scenario, 0, m.cfg.Generations)
	selections := make([]model.SelectionRecord, 0, m.cfg.Generations-1)

	scenario := env(1, nil)
	population, err := m.cfg.Advancer.Founders(m.rng, scenario.EnvVariance)
	if err != nil {
		return RunResult{}, err
	}
	entry, err := stats.Aggregate(population, 1, scenario.EnvVariance)
	if err != nil {
		return RunResult{}, err
	}
	history = append(history, entry)
	scenarios = append(scenarios, scenario)

	for gen := 2; gen <= m.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		scenario = env(gen, history)
		parents, err := m.cfg.Selector.SelectParents(m.rng, population, m.cfg.ParentCount)
		if err != nil {
			return RunResult{}, err
		}
		differential, err := stats.Differential(parents, population)
		if err != nil {
			return RunResult{}, err
		}

		population, err = m.cfg.Advancer.NextGeneration(m.rng, parents, gen, scenario.EnvVariance)
		if err != nil {
			return RunResult{}, err
		}
		entry, err = stats.Aggregate(population, gen, scenario.EnvVariance)
		if err != nil {
			return RunResult{}, err
		}
		entry.SelectionDifferential = &differential

		parentIDs := make([]string, len(parents))
		for i, parent := range parents {
			parentIDs[i] = parent.ID
		}
		history = append(history, entry)
		scenarios = append(scenarios, scenario)
		selections = append(selections, model.SelectionRecord{
			Generation:   gen,
			ParentIDs:    parentIDs,
			Differential: differential,
		})
	}

	return RunResult{
		History:         history,
		Scenarios:       scenarios,
		Selections:      selections,
		FinalPopulation: population,
	}, nil
}
