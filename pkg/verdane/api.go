// Package verdane is the embeddable client for the selective-breeding
// simulator: seed a founder population, advance generations from chosen
// parents, and run whole seasons headlessly.
package verdane

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"verdane/internal/advisor"
	"verdane/internal/breeding"
	"verdane/internal/config"
	"verdane/internal/model"
	"verdane/internal/platform"
	"verdane/internal/stats"
	"verdane/internal/storage"
)

const (
	defaultRunsDir    = "runs"
	defaultExportsDir = "exports"
	defaultDBPath     = "verdane.db"
)

type Options struct {
	StoreKind  string
	DBPath     string
	RunsDir    string
	ExportsDir string
	ConfigPath string
	Advisor    advisor.Source
	Logger     *slog.Logger
}

type Client struct {
	store   storage.Store
	cfg     config.Config
	program *platform.Program
	logger  *slog.Logger
	source  advisor.Source

	runsDir    string
	exportsDir string
}

type SeedRequest struct {
	RunID       string
	Size        int
	Seed        int64
	EnvVariance float64
	AskAdvisor  bool
}

type AdvanceRequest struct {
	RunID       string
	ParentIDs   []string
	EnvVariance float64
	AskAdvisor  bool
}

type GenerationSummary struct {
	RunID      string
	Generation int
	Stats      model.PopulationStats
	Scenario   model.Scenario
}

type RunRequest struct {
	RunID       string
	Population  int
	Generations int
	Seed        int64
	Selection   string
	ParentCount int
	EnvVariance float64
	UseAdvisor  bool
	TopCount    int
}

type RunSummary struct {
	RunID             string
	ArtifactsDir      string
	YieldByGeneration []float64
	FinalYieldMean    float64
	YieldGain         float64
	Narration         string
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID          string
	CreatedAtUTC   string
	Seed           int64
	Population     int
	Generations    int
	Selection      string
	FinalYieldMean float64
	YieldGain      float64
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = defaultRunsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	source := opts.Advisor
	if source == nil {
		source = advisor.Static{}
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		cfg:        cfg,
		logger:     logger,
		source:     source,
		runsDir:    runsDir,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensureProgram(ctx)
	return err
}

// Seed starts a new interactive run with a fresh founder population.
func (c *Client) Seed(ctx context.Context, req SeedRequest) (GenerationSummary, error) {
	if req.RunID == "" {
		return GenerationSummary{}, errors.New("run id is required")
	}
	if req.Size == 0 {
		req.Size = c.cfg.Population.Size
	}
	// Negative variance means "use the configured default"; zero is a valid,
	// fully deterministic setting.
	if req.EnvVariance < 0 {
		req.EnvVariance = c.cfg.Advisor.EnvVariance
	}

	p, err := c.ensureProgram(ctx)
	if err != nil {
		return GenerationSummary{}, err
	}
	result, err := p.Seed(ctx, platform.SeedConfig{
		RunID:       req.RunID,
		Size:        req.Size,
		Seed:        req.Seed,
		EnvVariance: req.EnvVariance,
		AskAdvisor:  req.AskAdvisor,
	})
	if err != nil {
		return GenerationSummary{}, err
	}
	return GenerationSummary{
		RunID:      req.RunID,
		Generation: result.Run.Generation,
		Stats:      result.Stats,
		Scenario:   result.Scenario,
	}, nil
}

// Advance breeds one generation of an existing run from the named parents.
func (c *Client) Advance(ctx context.Context, req AdvanceRequest) (GenerationSummary, error) {
	if req.RunID == "" {
		return GenerationSummary{}, errors.New("run id is required")
	}
	if req.EnvVariance < 0 {
		req.EnvVariance = c.cfg.Advisor.EnvVariance
	}

	p, err := c.ensureProgram(ctx)
	if err != nil {
		return GenerationSummary{}, err
	}
	result, err := p.Advance(ctx, platform.AdvanceConfig{
		RunID:       req.RunID,
		ParentIDs:   req.ParentIDs,
		EnvVariance: req.EnvVariance,
		AskAdvisor:  req.AskAdvisor,
	})
	if err != nil {
		return GenerationSummary{}, err
	}
	return GenerationSummary{
		RunID:      req.RunID,
		Generation: result.Run.Generation,
		Stats:      result.Stats,
		Scenario:   result.Scenario,
	}, nil
}

// Stats returns the latest generation's statistics for a run.
func (c *Client) Stats(ctx context.Context, runID string) (model.PopulationStats, error) {
	history, err := c.History(ctx, runID)
	if err != nil {
		return model.PopulationStats{}, err
	}
	return history[len(history)-1], nil
}

// History returns a run's full generation-ordered statistics history.
func (c *Client) History(ctx context.Context, runID string) ([]model.PopulationStats, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	p, err := c.ensureProgram(ctx)
	if err != nil {
		return nil, err
	}
	return p.History(ctx, runID)
}

// Scenarios returns a run's environmental scenario log.
func (c *Client) Scenarios(ctx context.Context, runID string) ([]model.Scenario, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	p, err := c.ensureProgram(ctx)
	if err != nil {
		return nil, err
	}
	return p.Scenarios(ctx, runID)
}

// Plants returns the current population of a run.
func (c *Client) Plants(ctx context.Context, runID string) ([]model.Plant, error) {
	if runID == "" {
		return nil, errors.New("run id is required")
	}
	p, err := c.ensureProgram(ctx)
	if err != nil {
		return nil, err
	}
	population, err := p.Population(ctx, runID)
	if err != nil {
		return nil, err
	}
	return population.Plants, nil
}

// Narrate returns advisory free text summarizing a run so far.
func (c *Client) Narrate(ctx context.Context, runID string) (string, error) {
	if runID == "" {
		return "", errors.New("run id is required")
	}
	p, err := c.ensureProgram(ctx)
	if err != nil {
		return "", err
	}
	return p.Narrate(ctx, runID)
}

// StoredRuns lists the run records in the store.
func (c *Client) StoredRuns(ctx context.Context) ([]model.RunRecord, error) {
	p, err := c.ensureProgram(ctx)
	if err != nil {
		return nil, err
	}
	return p.Runs(ctx)
}

// Run executes a headless season and writes its artifacts under the runs
// directory.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Population <= 0 {
		req.Population = c.cfg.Population.Size
	}
	if req.Generations <= 0 {
		req.Generations = 10
	}
	if req.Selection == "" {
		req.Selection = c.cfg.Selection.Strategy
	}
	if req.ParentCount <= 0 {
		req.ParentCount = c.cfg.Population.ParentCount
	}
	if req.EnvVariance < 0 {
		req.EnvVariance = c.cfg.Advisor.EnvVariance
	}
	now := time.Now().UTC()
	if req.RunID == "" {
		req.RunID = fmt.Sprintf("season-%d-%d", req.Seed, now.Unix())
	}

	p, err := c.ensureProgram(ctx)
	if err != nil {
		return RunSummary{}, err
	}
	artifacts, err := p.RunSeason(ctx, platform.SeasonConfig{
		RunID:       req.RunID,
		Size:        req.Population,
		Generations: req.Generations,
		Seed:        req.Seed,
		Selection:   req.Selection,
		ParentCount: req.ParentCount,
		EnvVariance: req.EnvVariance,
		UseAdvisor:  req.UseAdvisor,
		TopCount:    req.TopCount,
	})
	if err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.runsDir, artifacts)
	if err != nil {
		return RunSummary{}, err
	}

	first := artifacts.History[0]
	last := artifacts.History[len(artifacts.History)-1]
	gain := last.Phenotype.Yield.Mean - first.Phenotype.Yield.Mean
	if err := stats.AppendRunIndex(c.runsDir, stats.RunIndexEntry{
		RunID:          req.RunID,
		Size:           artifacts.Config.Size,
		Generations:    artifacts.Config.Generations,
		Seed:           artifacts.Config.Seed,
		Selection:      artifacts.Config.Selection,
		FinalYieldMean: last.Phenotype.Yield.Mean,
		YieldGain:      gain,
		CreatedAtUTC:   now.Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	yieldByGeneration := make([]float64, len(artifacts.History))
	for i, entry := range artifacts.History {
		yieldByGeneration[i] = entry.Phenotype.Yield.Mean
	}
	return RunSummary{
		RunID:             req.RunID,
		ArtifactsDir:      filepath.Clean(runDir),
		YieldByGeneration: yieldByGeneration,
		FinalYieldMean:    last.Phenotype.Yield.Mean,
		YieldGain:         gain,
		Narration:         artifacts.Narration,
	}, nil
}

// Runs lists completed season runs from the run index, newest first.
func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.runsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:          e.RunID,
			CreatedAtUTC:   e.CreatedAtUTC,
			Seed:           e.Seed,
			Population:     e.Size,
			Generations:    e.Generations,
			Selection:      e.Selection,
			FinalYieldMean: e.FinalYieldMean,
			YieldGain:      e.YieldGain,
		})
	}
	return out, nil
}

// Export copies a run's artifacts into the exports directory.
func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.runsDir)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(entries) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(c.runsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) ensureProgram(ctx context.Context) (*platform.Program, error) {
	if c.program != nil {
		return c.program, nil
	}

	advancer, err := c.advancerFromConfig()
	if err != nil {
		return nil, err
	}
	p, err := platform.New(platform.Config{
		Store: c.store,
		Advisor: advisor.BestEffort{
			Source:  c.source,
			Timeout: time.Duration(c.cfg.Advisor.TimeoutSeconds) * time.Second,
			Logger:  c.logger,
		},
		Advancer: advancer,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, err
	}
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	c.program = p
	return c.program, nil
}

func (c *Client) advancerFromConfig() (breeding.Advancer, error) {
	calc, err := breeding.NewCalculator(c.cfg.Genetics.TradeOffCoeff, c.cfg.Genetics.LinkCoeff, c.cfg.Genetics.BaseEnvSD)
	if err != nil {
		return breeding.Advancer{}, err
	}
	crosser, err := breeding.NewCrosser(c.cfg.Genetics.LinkageFidelity)
	if err != nil {
		return breeding.Advancer{}, err
	}
	return breeding.NewAdvancer(calc, crosser, c.cfg.Population.Size, c.cfg.Genetics.AlleleFrequency)
}
