// Package platform orchestrates the breeding engine against storage and the
// advisory boundary: interactive seed/advance runs and headless seasons.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"verdane/internal/advisor"
	"verdane/internal/breeding"
	"verdane/internal/model"
	"verdane/internal/stats"
	"verdane/internal/storage"
)

// generationSeedStride separates per-generation RNG streams derived from one
// run seed, so replaying an interactive run reproduces every generation.
const generationSeedStride = 0x9E3779B9

// Config assembles a Program. Store is required; zero-value Advisor and nil
// Logger are usable defaults.
type Config struct {
	Store    storage.Store
	Advisor  advisor.BestEffort
	Advancer breeding.Advancer
	Logger   *slog.Logger
}

// Program is the stateful application core shared by the library facade and
// the CLI.
type Program struct {
	store    storage.Store
	advisor  advisor.BestEffort
	advancer breeding.Advancer
	logger   *slog.Logger
}

func New(cfg Config) (*Program, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Advancer.PopulationSize == 0 {
		cfg.Advancer = breeding.DefaultAdvancer()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Program{
		store:    cfg.Store,
		advisor:  cfg.Advisor,
		advancer: cfg.Advancer,
		logger:   cfg.Logger,
	}, nil
}

func (p *Program) Init(ctx context.Context) error {
	return p.store.Init(ctx)
}

// SeedConfig starts an interactive run. A zero Seed draws one from the clock;
// a zero Size uses the configured default population size.
type SeedConfig struct {
	RunID       string
	Size        int
	Seed        int64
	EnvVariance float64
	AskAdvisor  bool
}

// SeedResult reports the founder generation of a freshly seeded run.
type SeedResult struct {
	Run        model.RunRecord
	Population model.Population
	Stats      model.PopulationStats
	Scenario   model.Scenario
}

// Seed creates a new run: founder plants, generation-1 statistics, and the
// opening scenario, all persisted.
func (p *Program) Seed(ctx context.Context, cfg SeedConfig) (SeedResult, error) {
	if cfg.RunID == "" {
		return SeedResult{}, fmt.Errorf("run id is required")
	}
	if existing, found, err := p.store.GetRun(ctx, cfg.RunID); err != nil {
		return SeedResult{}, err
	} else if found {
		return SeedResult{}, fmt.Errorf("run %q already exists at generation %d", existing.RunID, existing.Generation)
	}
	if cfg.Size == 0 {
		cfg.Size = p.advancer.PopulationSize
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	advancer, err := p.advancerFor(cfg.Size)
	if err != nil {
		return SeedResult{}, err
	}

	scenario := p.scenarioFor(ctx, 1, nil, cfg.EnvVariance, cfg.AskAdvisor)
	rng := rngFor(cfg.Seed, 1)
	plants, err := advancer.Founders(rng, scenario.EnvVariance)
	if err != nil {
		return SeedResult{}, err
	}
	entry, err := stats.Aggregate(plants, 1, scenario.EnvVariance)
	if err != nil {
		return SeedResult{}, err
	}

	population := model.Population{
		VersionedRecord: model.CurrentVersion(),
		ID:              populationID(cfg.RunID, 1),
		RunID:           cfg.RunID,
		Generation:      1,
		EnvVariance:     scenario.EnvVariance,
		Plants:          plants,
	}
	run := model.RunRecord{
		VersionedRecord: model.CurrentVersion(),
		RunID:           cfg.RunID,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339),
		Seed:            cfg.Seed,
		Size:            cfg.Size,
		Generation:      1,
		PopulationID:    population.ID,
	}

	if err := p.store.SavePopulation(ctx, population); err != nil {
		return SeedResult{}, err
	}
	if err := p.store.SaveStatsHistory(ctx, cfg.RunID, []model.PopulationStats{entry}); err != nil {
		return SeedResult{}, err
	}
	if err := p.store.SaveScenarioLog(ctx, cfg.RunID, []model.Scenario{scenario}); err != nil {
		return SeedResult{}, err
	}
	if err := p.store.SaveRun(ctx, run); err != nil {
		return SeedResult{}, err
	}

	p.logger.Info("run seeded", "run", cfg.RunID, "seed", cfg.Seed, "stats", entry)
	return SeedResult{Run: run, Population: population, Stats: entry, Scenario: scenario}, nil
}

// AdvanceConfig advances a run by one generation from the named parents.
type AdvanceConfig struct {
	RunID       string
	ParentIDs   []string
	EnvVariance float64
	AskAdvisor  bool
}

// AdvanceResult reports one newly bred generation.
type AdvanceResult struct {
	Run        model.RunRecord
	Population model.Population
	Stats      model.PopulationStats
	Scenario   model.Scenario
	Selection  model.SelectionRecord
}

// Advance breeds the next generation of a run from the operator-selected
// parents. The current population is replaced wholesale; its statistics
// survive in the append-only history.
func (p *Program) Advance(ctx context.Context, cfg AdvanceConfig) (AdvanceResult, error) {
	if len(cfg.ParentIDs) < 2 {
		return AdvanceResult{}, fmt.Errorf("at least 2 parents are required, got %d", len(cfg.ParentIDs))
	}

	run, found, err := p.store.GetRun(ctx, cfg.RunID)
	if err != nil {
		return AdvanceResult{}, err
	}
	if !found {
		return AdvanceResult{}, fmt.Errorf("run %q not found", cfg.RunID)
	}
	current, found, err := p.store.GetPopulation(ctx, run.PopulationID)
	if err != nil {
		return AdvanceResult{}, err
	}
	if !found {
		return AdvanceResult{}, fmt.Errorf("population %q not found for run %q", run.PopulationID, cfg.RunID)
	}

	parents, err := pickParents(current.Plants, cfg.ParentIDs)
	if err != nil {
		return AdvanceResult{}, err
	}

	generation := run.Generation + 1
	history, _, err := p.store.GetStatsHistory(ctx, cfg.RunID)
	if err != nil {
		return AdvanceResult{}, err
	}
	scenarios, _, err := p.store.GetScenarioLog(ctx, cfg.RunID)
	if err != nil {
		return AdvanceResult{}, err
	}
	scenario := p.scenarioFor(ctx, generation, history, cfg.EnvVariance, cfg.AskAdvisor)

	advancer, err := p.advancerFor(run.Size)
	if err != nil {
		return AdvanceResult{}, err
	}

	differential, err := stats.Differential(parents, current.Plants)
	if err != nil {
		return AdvanceResult{}, err
	}
	rng := rngFor(run.Seed, generation)
	offspring, err := advancer.NextGeneration(rng, parents, generation, scenario.EnvVariance)
	if err != nil {
		return AdvanceResult{}, err
	}
	entry, err := stats.Aggregate(offspring, generation, scenario.EnvVariance)
	if err != nil {
		return AdvanceResult{}, err
	}
	entry.SelectionDifferential = &differential

	population := model.Population{
		VersionedRecord: model.CurrentVersion(),
		ID:              populationID(cfg.RunID, generation),
		RunID:           cfg.RunID,
		Generation:      generation,
		EnvVariance:     scenario.EnvVariance,
		Plants:          offspring,
	}
	run.Generation = generation
	run.PopulationID = population.ID

	if err := p.store.SavePopulation(ctx, population); err != nil {
		return AdvanceResult{}, err
	}
	if err := p.store.SaveStatsHistory(ctx, cfg.RunID, append(history, entry)); err != nil {
		return AdvanceResult{}, err
	}
	if err := p.store.SaveScenarioLog(ctx, cfg.RunID, append(scenarios, scenario)); err != nil {
		return AdvanceResult{}, err
	}
	if err := p.store.SaveRun(ctx, run); err != nil {
		return AdvanceResult{}, err
	}

	p.logger.Info("generation advanced", "run", cfg.RunID, "parents", len(parents), "stats", entry)
	return AdvanceResult{
		Run:        run,
		Population: population,
		Stats:      entry,
		Scenario:   scenario,
		Selection: model.SelectionRecord{
			Generation:   generation,
			ParentIDs:    cfg.ParentIDs,
			Differential: differential,
		},
	}, nil
}

// Population returns the current plant set of a run.
func (p *Program) Population(ctx context.Context, runID string) (model.Population, error) {
	run, found, err := p.store.GetRun(ctx, runID)
	if err != nil {
		return model.Population{}, err
	}
	if !found {
		return model.Population{}, fmt.Errorf("run %q not found", runID)
	}
	population, found, err := p.store.GetPopulation(ctx, run.PopulationID)
	if err != nil {
		return model.Population{}, err
	}
	if !found {
		return model.Population{}, fmt.Errorf("population %q not found for run %q", run.PopulationID, runID)
	}
	return population, nil
}

// History returns a run's generation-ordered statistics history.
func (p *Program) History(ctx context.Context, runID string) ([]model.PopulationStats, error) {
	history, found, err := p.store.GetStatsHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("run %q not found", runID)
	}
	return history, nil
}

// Scenarios returns a run's environmental scenario log.
func (p *Program) Scenarios(ctx context.Context, runID string) ([]model.Scenario, error) {
	scenarios, found, err := p.store.GetScenarioLog(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("run %q not found", runID)
	}
	return scenarios, nil
}

// Runs lists all stored run records.
func (p *Program) Runs(ctx context.Context) ([]model.RunRecord, error) {
	return p.store.ListRuns(ctx)
}

// Narrate produces advisory free text over a run's history.
func (p *Program) Narrate(ctx context.Context, runID string) (string, error) {
	history, err := p.History(ctx, runID)
	if err != nil {
		return "", err
	}
	return p.advisor.Narrate(ctx, history), nil
}

// SeasonConfig configures a headless multi-generation run.
type SeasonConfig struct {
	RunID       string
	Size        int
	Generations int
	Seed        int64
	Selection   string
	ParentCount int
	EnvVariance float64
	UseAdvisor  bool
	TopCount    int
}

// RunSeason executes a full season headlessly, persists its outcome like an
// interactive run, and assembles the run artifacts.
func (p *Program) RunSeason(ctx context.Context, cfg SeasonConfig) (stats.RunArtifacts, error) {
	if cfg.RunID == "" {
		return stats.RunArtifacts{}, fmt.Errorf("run id is required")
	}
	if cfg.Size == 0 {
		cfg.Size = p.advancer.PopulationSize
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TopCount <= 0 {
		cfg.TopCount = 5
	}
	selector, err := breeding.SelectorFromName(cfg.Selection)
	if err != nil {
		return stats.RunArtifacts{}, err
	}
	advancer, err := p.advancerFor(cfg.Size)
	if err != nil {
		return stats.RunArtifacts{}, err
	}
	monitor, err := breeding.NewMonitor(breeding.MonitorConfig{
		Advancer:    advancer,
		Selector:    selector,
		ParentCount: cfg.ParentCount,
		Generations: cfg.Generations,
		Seed:        cfg.Seed,
	})
	if err != nil {
		return stats.RunArtifacts{}, err
	}

	env := func(generation int, history []model.PopulationStats) model.Scenario {
		return p.scenarioFor(ctx, generation, history, cfg.EnvVariance, cfg.UseAdvisor)
	}
	result, err := monitor.Run(ctx, env)
	if err != nil {
		return stats.RunArtifacts{}, err
	}

	if err := p.persistSeason(ctx, cfg, result); err != nil {
		return stats.RunArtifacts{}, err
	}

	artifacts := stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:           cfg.RunID,
			Size:            cfg.Size,
			Generations:     cfg.Generations,
			Seed:            cfg.Seed,
			Selection:       selector.Name(),
			ParentCount:     cfg.ParentCount,
			EnvVariance:     cfg.EnvVariance,
			UseAdvisor:      cfg.UseAdvisor,
			AlleleFrequency: advancer.AlleleFrequency,
			TradeOffCoeff:   advancer.Calc.TradeOffCoeff,
			LinkCoeff:       advancer.Calc.LinkCoeff,
			LinkageFidelity: advancer.Crosser.LinkageFidelity,
			BaseEnvSD:       advancer.Calc.BaseEnvSD,
		},
		History:    result.History,
		Scenarios:  result.Scenarios,
		Selections: result.Selections,
		TopPlants:  topPlants(result.FinalPopulation, cfg.TopCount),
		Narration:  p.advisor.Narrate(ctx, result.History),
	}

	last := result.History[len(result.History)-1]
	p.logger.Info("season complete", "run", cfg.RunID, "generations", cfg.Generations, "stats", last)
	return artifacts, nil
}

func (p *Program) persistSeason(ctx context.Context, cfg SeasonConfig, result breeding.RunResult) error {
	generation := len(result.History)
	population := model.Population{
		VersionedRecord: model.CurrentVersion(),
		ID:              populationID(cfg.RunID, generation),
		RunID:           cfg.RunID,
		Generation:      generation,
		EnvVariance:     result.Scenarios[len(result.Scenarios)-1].EnvVariance,
		Plants:          result.FinalPopulation,
	}
	run := model.RunRecord{
		VersionedRecord: model.CurrentVersion(),
		RunID:           cfg.RunID,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339),
		Seed:            cfg.Seed,
		Size:            cfg.Size,
		Generation:      generation,
		PopulationID:    population.ID,
	}

	if err := p.store.SavePopulation(ctx, population); err != nil {
		return err
	}
	if err := p.store.SaveStatsHistory(ctx, cfg.RunID, result.History); err != nil {
		return err
	}
	if err := p.store.SaveScenarioLog(ctx, cfg.RunID, result.Scenarios); err != nil {
		return err
	}
	return p.store.SaveRun(ctx, run)
}

func (p *Program) scenarioFor(ctx context.Context, generation int, history []model.PopulationStats, envVariance float64, askAdvisor bool) model.Scenario {
	if askAdvisor {
		return p.advisor.Scenario(ctx, generation, history)
	}
	if envVariance < 0 {
		envVariance = advisor.DefaultEnvVariance
	}
	return model.Scenario{
		Generation:  generation,
		EnvVariance: envVariance,
		Source:      "manual",
	}
}

func (p *Program) advancerFor(size int) (breeding.Advancer, error) {
	return breeding.NewAdvancer(p.advancer.Calc, p.advancer.Crosser, size, p.advancer.AlleleFrequency)
}

func pickParents(plants []model.Plant, ids []string) ([]model.Plant, error) {
	byID := make(map[string]model.Plant, len(plants))
	for _, plant := range plants {
		byID[plant.ID] = plant
	}

	parents := make([]model.Plant, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("duplicate parent id %q", id)
		}
		seen[id] = true
		plant, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown parent id %q", id)
		}
		parents = append(parents, plant)
	}
	return parents, nil
}

func topPlants(plants []model.Plant, count int) []stats.TopPlant {
	ranked := make([]model.Plant, len(plants))
	copy(ranked, plants)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].BreedingValue.Yield > ranked[j].BreedingValue.Yield
	})
	if count > len(ranked) {
		count = len(ranked)
	}

	top := make([]stats.TopPlant, count)
	for i := 0; i < count; i++ {
		top[i] = stats.TopPlant{Rank: i + 1, Plant: ranked[i]}
	}
	return top
}

func populationID(runID string, generation int) string {
	return fmt.Sprintf("%s-g%d", runID, generation)
}

func rngFor(seed int64, generation int) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(generation)*generationSeedStride))
}
