package breeding

import (
	"context"
	"testing"

	"verdane/internal/model"
)

func fixedEnv(variance float64) EnvSource {
	return func(generation int, _ []model.PopulationStats) model.Scenario {
		return model.Scenario{Generation: generation, EnvVariance: variance, Source: "manual"}
	}
}

func TestMonitorRunHistoryShape(t *testing.T) {
	monitor, err := NewMonitor(MonitorConfig{
		Advancer:    DefaultAdvancer(),
		Generations: 5,
		Seed:        7,
	})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	result, err := monitor.Run(context.Background(), fixedEnv(0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.History) != 5 {
		t.Fatalf("history length = %d, want 5", len(result.History))
	}
	if len(result.Scenarios) != 5 {
		t.Fatalf("scenario count = %d, want 5", len(result.Scenarios))
	}
	if len(result.Selections) != 4 {
		t.Fatalf("selection count = %d, want 4", len(result.Selections))
	}
	if len(result.FinalPopulation) != DefaultPopulationSize {
		t.Fatalf("final population = %d, want %d", len(result.FinalPopulation), DefaultPopulationSize)
	}
	for i, entry := range result.History {
		if entry.Generation != i+1 {
			t.Fatalf("history[%d] generation = %d, want %d", i, entry.Generation, i+1)
		}
		if entry.Size != DefaultPopulationSize {
			t.Fatalf("generation %d size = %d, want %d", entry.Generation, entry.Size, DefaultPopulationSize)
		}
	}
	if result.History[0].SelectionDifferential != nil {
		t.Fatal("founder generation must have no selection differential")
	}
	for _, entry := range result.History[1:] {
		if entry.SelectionDifferential == nil {
			t.Fatalf("generation %d missing selection differential", entry.Generation)
		}
	}
}

func TestMonitorTopYieldDifferentialPositive(t *testing.T) {
	monitor, err := NewMonitor(MonitorConfig{
		Advancer:    DefaultAdvancer(),
		Selector:    TopYieldSelector{},
		ParentCount: 4,
		Generations: 3,
		Seed:        21,
	})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	result, err := monitor.Run(context.Background(), fixedEnv(0))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, selection := range result.Selections {
		if selection.Differential.Yield <= 0 {
			t.Fatalf("generation %d: truncation on yield produced differential %v", selection.Generation, selection.Differential.Yield)
		}
		if len(selection.ParentIDs) != 4 {
			t.Fatalf("generation %d: %d parent ids, want 4", selection.Generation, len(selection.ParentIDs))
		}
	}
}

func TestMonitorDeterministicPerSeed(t *testing.T) {
	runOnce := func() RunResult {
		monitor, err := NewMonitor(MonitorConfig{
			Advancer:    DefaultAdvancer(),
			Generations: 4,
			Seed:        123,
		})
		if err != nil {
			t.Fatalf("NewMonitor: %v", err)
		}
		result, err := monitor.Run(context.Background(), fixedEnv(0))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return result
	}

	first := runOnce()
	second := runOnce()
	for i := range first.History {
		if first.History[i].BreedingValue.Yield.Mean != second.History[i].BreedingValue.Yield.Mean {
			t.Fatalf("generation %d yield mean differs across identical seeds", i+1)
		}
	}
}

func TestMonitorHonorsContextCancellation(t *testing.T) {
	monitor, err := NewMonitor(MonitorConfig{
		Advancer:    DefaultAdvancer(),
		Generations: 50,
		Seed:        1,
	})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := monitor.Run(ctx, fixedEnv(0)); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestNewMonitorValidation(t *testing.T) {
	if _, err := NewMonitor(MonitorConfig{Generations: 3}); err == nil {
		t.Fatal("expected error for zero-size advancer")
	}
	if _, err := NewMonitor(MonitorConfig{Advancer: DefaultAdvancer()}); err == nil {
		t.Fatal("expected error for zero generations")
	}
	if _, err := NewMonitor(MonitorConfig{
		Advancer:    DefaultAdvancer(),
		Generations: 3,
		ParentCount: DefaultPopulationSize + 1,
	}); err == nil {
		t.Fatal("expected error for parent count above population size")
	}
}

func TestMonitorRunRequiresEnvSource(t *testing.T) {
	monitor, err := NewMonitor(MonitorConfig{Advancer: DefaultAdvancer(), Generations: 2, Seed: 1})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	if _, err := monitor.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil env source")
	}
}
