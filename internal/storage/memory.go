package storage

import (
	"context"
	"sync"

	"verdane/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	populations map[string]model.Population
	history     map[string][]model.PopulationStats
	scenarios   map[string][]model.Scenario
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.populations = make(map[string]model.Population)
	s.history = make(map[string][]model.PopulationStats)
	s.scenarios = make(map[string][]model.Scenario)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.RunID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, runID string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	return runs, nil
}

func (s *MemoryStore) SavePopulation(_ context.Context, population model.Population) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.populations[population.ID] = population
	return nil
}

func (s *MemoryStore) GetPopulation(_ context.Context, id string) (model.Population, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	population, ok := s.populations[id]
	return population, ok, nil
}

func (s *MemoryStore) SaveStatsHistory(_ context.Context, runID string, history []model.PopulationStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]model.PopulationStats, len(history))
	copy(stored, history)
	s.history[runID] = stored
	return nil
}

func (s *MemoryStore) GetStatsHistory(_ context.Context, runID string) ([]model.PopulationStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	out := make([]model.PopulationStats, len(history))
	copy(out, history)
	return out, true, nil
}

func (s *MemoryStore) SaveScenarioLog(_ context.Context, runID string, scenarios []model.Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]model.Scenario, len(scenarios))
	copy(stored, scenarios)
	s.scenarios[runID] = stored
	return nil
}

func (s *MemoryStore) GetScenarioLog(_ context.Context, runID string) ([]model.Scenario, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scenarios, ok := s.scenarios[runID]
	if !ok {
		return nil, false, nil
	}
	out := make([]model.Scenario, len(scenarios))
	copy(out, scenarios)
	return out, true, nil
}
