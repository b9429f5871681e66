// Package advisor defines the optional scenario/narration boundary. The
// engine consumes advisors best-effort: a slow or failing source never blocks
// generation advancement.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"verdane/internal/model"
)

// DefaultEnvVariance is the fallback environmental-variance scalar used when
// no advisor answer is available.
const DefaultEnvVariance = 1.0

// DefaultTimeout bounds each advisor call.
const DefaultTimeout = 5 * time.Second

const (
	fallbackScenarioText = "Advisory service unavailable; assuming a typical growing season."
	fallbackNarration    = "Advisory narration is unavailable for this run."
)

// Source provides per-generation environmental scenarios and free-text
// narration over a stats history. Implementations live outside this module;
// Static is the built-in offline default.
type Source interface {
	Scenario(ctx context.Context, generation int, history []model.PopulationStats) (model.Scenario, error)
	Narrate(ctx context.Context, history []model.PopulationStats) (string, error)
}

// Static rotates through a fixed set of seasons, keeping the simulation fully
// usable offline.
type Static struct{}

var rotation = []model.Scenario{
	{Text: "A mild, even season with steady rainfall.", EnvVariance: 0.6},
	{Text: "Late-summer drought stresses the trial plots.", EnvVariance: 1.4},
	{Text: "Leaf blight pressure builds in the low field.", EnvVariance: 1.2},
	{Text: "Ideal pollination weather across the station.", EnvVariance: 0.4},
	{Text: "Storms and patchy hail batter the nursery rows.", EnvVariance: 1.8},
	{Text: "A cool spring delays emergence but evens the stand.", EnvVariance: 0.8},
}

func (Static) Scenario(_ context.Context, generation int, _ []model.PopulationStats) (model.Scenario, error) {
	if generation < 1 {
		return model.Scenario{}, fmt.Errorf("generation must be >= 1, got %d", generation)
	}
	scenario := rotation[(generation-1)%len(rotation)]
	scenario.Generation = generation
	scenario.Source = "static"
	return scenario, nil
}

func (Static) Narrate(_ context.Context, history []model.PopulationStats) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("narration requires a non-empty history")
	}
	first, last := history[0], history[len(history)-1]
	if len(history) == 1 {
		return fmt.Sprintf(
			"Founder generation established: mean yield %.2f, resistance %.2f, height %.2f; heterozygosity %.0f%%. High genetic variance present.",
			first.Phenotype.Yield.Mean, first.Phenotype.Resistance.Mean, first.Phenotype.Height.Mean,
			first.MeanHeterozygosity*100,
		), nil
	}
	return fmt.Sprintf(
		"Across %d generations mean yield moved %+.2f, resistance %+.2f, height %+.2f. Heterozygosity now %.0f%%.",
		last.Generation,
		last.Phenotype.Yield.Mean-first.Phenotype.Yield.Mean,
		last.Phenotype.Resistance.Mean-first.Phenotype.Resistance.Mean,
		last.Phenotype.Height.Mean-first.Phenotype.Height.Mean,
		last.MeanHeterozygosity*100,
	), nil
}

// BestEffort wraps a Source and absorbs every failure: a timeout, error, or
// nil source yields the fallback scenario or narration instead.
type BestEffort struct {
	Source  Source
	Timeout time.Duration
	Logger  *slog.Logger
}

func (b BestEffort) Scenario(ctx context.Context, generation int, history []model.PopulationStats) model.Scenario {
	fallback := model.Scenario{
		Generation:  generation,
		Text:        fallbackScenarioText,
		EnvVariance: DefaultEnvVariance,
		Source:      "fallback",
	}
	if b.Source == nil {
		return fallback
	}

	callCtx, cancel := context.WithTimeout(ctx, b.timeout())
	defer cancel()

	scenario, err := b.Source.Scenario(callCtx, generation, history)
	if err != nil {
		b.warn("advisor scenario failed", generation, err)
		return fallback
	}
	if scenario.EnvVariance < 0 {
		b.warn("advisor returned negative variance", generation, nil)
		return fallback
	}
	scenario.Generation = generation
	return scenario
}

func (b BestEffort) Narrate(ctx context.Context, history []model.PopulationStats) string {
	if b.Source == nil {
		return fallbackNarration
	}

	callCtx, cancel := context.WithTimeout(ctx, b.timeout())
	defer cancel()

	narration, err := b.Source.Narrate(callCtx, history)
	if err != nil {
		b.warn("advisor narration failed", 0, err)
		return fallbackNarration
	}
	return narration
}

func (b BestEffort) timeout() time.Duration {
	if b.Timeout > 0 {
		return b.Timeout
	}
	return DefaultTimeout
}

func (b BestEffort) warn(msg string, generation int, err error) {
	if b.Logger == nil {
		return
	}
	b.Logger.Warn(msg, "generation", generation, "err", err)
}
