package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"verdane/internal/config"
	"verdane/internal/storage"
	verdaneapi "verdane/pkg/verdane"
)

const (
	runsDir    = "runs"
	exportsDir = "exports"
)

const usageText = `usage: verdanectl <command> [flags]

commands:
  init      initialize the store backend
  seed      start a run with a fresh founder population
  advance   breed the next generation from selected parents
  stats     show the latest generation's statistics
  history   show a run's per-generation statistics history
  scenarios show a run's environmental scenario log
  plants    list the current population of a run
  narrate   advisory summary of a run so far
  run       execute a headless multi-generation season
  runs      list completed season runs
  export    copy a season run's artifacts
  config    write the default configuration file`

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "seed":
		return runSeed(ctx, args[1:])
	case "advance":
		return runAdvance(ctx, args[1:])
	case "stats":
		return runStats(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "scenarios":
		return runScenarios(ctx, args[1:])
	case "plants":
		return runPlants(ctx, args[1:])
	case "narrate":
		return runNarrate(ctx, args[1:])
	case "run":
		return runSeason(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "config":
		return runConfig(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\n\n%s", msg, usageText)
}

func clientFlags(fs *flag.FlagSet) (storeKind, dbPath, configPath *string) {
	storeKind = fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "verdane.db", "sqlite database path")
	configPath = fs.String("config", "", "optional YAML config path")
	return storeKind, dbPath, configPath
}

func newClient(storeKind, dbPath, configPath string) (*verdaneapi.Client, error) {
	return verdaneapi.New(verdaneapi.Options{
		StoreKind:  storeKind,
		DBPath:     dbPath,
		ConfigPath: configPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath, configPath := clientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *configPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runSeed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	size := fs.Int("size", 0, "population size (0 uses the configured default)")
	seed := fs.Int64("seed", 0, "rng seed (0 draws from the clock)")
	envVariance := fs.Float64("env-variance", -1, "environmental variance (negative uses the configured default)")
	askAdvisor := fs.Bool("advisor", false, "ask the advisor for the season scenario")
	storeKind, dbPath, configPath := clientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("seed requires --run-id")
	}

	client, err := newClient(*storeKind, *dbPath, *configPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Seed(ctx, verdaneapi.SeedRequest{
		RunID:       *runID,
		Size:        *size,
		Seed:        *seed,
		EnvVariance: *envVariance,
		AskAdvisor:  *askAdvisor,
	})
	if err != nil {
		return err
	}
	printGeneration(summary)
	return nil
}

func runAdvance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("advance", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	parents := fs.String("parents", "", "comma-separated parent plant ids (at least 2)")
	envVariance := fs.Float64("env-variance", -1, "environmental variance (negative uses the configured default)")
	askAdvisor := fs.Bool("advisor", false, "ask the advisor for the season scenario")
	storeKind, dbPath, configPath := clientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("advance requires --run-id")
	}
	if *parents == "" {
		return errors.New("advance requires --parents")
	}
	parentIDs := strings.Split(*parents, ",")
	for i := range parentIDs {
		parentIDs[i] = strings.TrimSpace(parentIDs[i])
	}

	client, err := newClient(*storeKind, *dbPath, *configPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Advance(ctx, verdaneapi.AdvanceRequest{
		RunID:       *runID,
		ParentIDs:   parentIDs,
		EnvVariance: *envVariance,
		AskAdvisor:  *askAdvisor,
	})
	if err != nil {
		return err
	}
	printGeneration(summary)
	return nil
}

func printGeneration(summary verdaneapi.GenerationSummary) {
	fmt.Printf("run_id=%s generation=%d size=%s env_variance=%.2f\n",
		summary.RunID, summary.Generation, humanCount(summary.Stats.Size), summary.Scenario.EnvVariance)
	if summary.Scenario.Text != "" {
		fmt.Printf("scenario: %s\n", summary.Scenario.Text)
	}
	fmt.Println(formatTraitLine("yield     ", summary.Stats.Phenotype.Yield.Mean, summary.Stats.Phenotype.Yield.Std, summary.Stats.Phenotype.Yield.Best))
	fmt.Println(formatTraitLine("resistance", summary.Stats.Phenotype.Resistance.Mean, summary.Stats.Phenotype.Resistance.Std, summary.Stats.Phenotype.Resistance.Best))
	fmt.Println(formatTraitLine("height    ", summary.Stats.Phenotype.Height.Mean, summary.Stats.Phenotype.Height.Std, summary.Stats.Phenotype.Height.Best))
	fmt.Printf("mean_heterozygosity=%.3f\n", summary.Stats.MeanHeterozygosity)
	if d := summary.Stats.SelectionDifferential; d != nil {
		fmt.Printf("selection_differential yield=%+.3f resistance=%+.3f height=%+.3f\n", d.Yield, d.Resistance, d.Height)
	}
}

func runStats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	jsonOut := fs.Bool("json", false, "emit statistics as JSON")
	storeKind, dbPath, configPath := clientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("stats requires --run-id")
	}

	client, err := newClient(*storeKind, *dbPath, *configPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	entry, err := client.Stats(ctx, *runID)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(entry)
	}

	fmt.Printf("run_id=%s generation=%d size=%s env_variance=%.2f mean_heterozygosity=%.3f\n",
		*runID, entry.Generation, humanCount(entry.Size), entry.EnvVariance, entry.MeanHeterozygosity)
	fmt.Println(formatTraitLine("yield     ", entry.Phenotype.Yield.Mean, entry.Phenotype.Yield.Std, entry.Phenotype.Yield.Best))
	fmt.Println(formatTraitLine("resistance", entry.Phenotype.Resistance.Mean, entry.Phenotype.Resistance.Std, entry.Phenotype.Resistance.Best))
	fmt.Println(formatTraitLine("height    ", entry.Phenotype.Height.Mean, entry.Phenotype.Height.Std, entry.Phenotype.Height.Best))
	fmt.Printf("yield_gebv mean=%.3f best=%.3f\n", entry.BreedingValue.Yield.Mean, entry.BreedingValue.Yield.Best)
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	jsonOut := fs.Bool("json", false, "emit history as JSON")
	storeKind, dbPath, configPath := clientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("history requires --run-id")
	}

	client, err := newClient(*storeKind, *dbPath, *configPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.History(ctx, *runID)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(history)
	}

	if stdoutIsTTY() {
		w := newTable()
		fmt.Fprintln(w, "GEN\tSIZE\tENV\tHET\tYIELD\tRESIST\tHEIGHT\tYIELD GEBV")
		for _, entry := range history {
			fmt.Fprintf(w, "%d\t%d\t%.2f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n",
				entry.Generation, entry.Size, entry.EnvVariance, entry.MeanHeterozygosity,
				entry.Phenotype.Yield.Mean, entry.Phenotype.Resistance.Mean, entry.Phenotype.Height.Mean,
				entry.BreedingValue.Yield.Mean)
		}
		return w.Flush()
	}
	for _, entry := range history {
		fmt.Printf("generation=%d size=%d env_variance=%.2f heterozygosity=%.3f yield_mean=%.3f resistance_mean=%.3f height_mean=%.3f yield_gebv_mean=%.3f\n",
			entry.Generation, entry.Size, entry.EnvVariance, entry.MeanHeterozygosity,
			entry.Phenotype.Yield.Mean, entry.Phenotype.Resistance.Mean, entry.Phenotype.Height.Mean,
			entry.BreedingValue.Yield.Mean)
	}
	return nil
}

func runScenarios(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scenarios", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	jsonOut := fs.Bool("json", false, "emit scenarios as JSON")
	storeKind, dbPath, configPath := clientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("scenarios requires --run-id")
	}

	client, err := newClient(*storeKind, *dbPath, *configPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	scenarios, err := client.Scenarios(ctx, *runID)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(scenarios)
	}
	for _, s := range scenarios {
		fmt.Printf("generation=%d env_variance=%.2f source=%s text=%s\n", s.Generation, s.EnvVariance, s.Source, s.Text)
	}
	return nil
}

func runPlants(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plants", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	jsonOut := fs.Bool("json", false, "emit plants as JSON")
	storeKind, dbPath, configPath := clientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("plants requires --run-id")
	}

	client, err := newClient(*storeKind, *dbPath, *configPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	plants, err := client.Plants(ctx, *runID)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(plants)
	}

	if stdoutIsTTY() {
		w := newTable()
		fmt.Fprintln(w, "ID\tYIELD\tRESIST\tHEIGHT\tYIELD GEBV\tHET")
		for _, plant := range plants {
			fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%.2f\n",
				plant.ID, plant.Phenotype.Yield, plant.Phenotype.Resistance, plant.Phenotype.Height,
				plant.BreedingValue.Yield, plant.Heterozygosity)
		}
		return w.Flush()
	}
	for _, plant := range plants {
		fmt.Printf("id=%s yield=%.3f resistance=%.3f height=%.3f yield_gebv=%.3f heterozygosity=%.2f\n",
			plant.ID, plant.Phenotype.Yield, plant.Phenotype.Resistance, plant.Phenotype.Height,
			plant.BreedingValue.Yield, plant.Heterozygosity)
	}
	return nil
}

func runNarrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("narrate", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	storeKind, dbPath, configPath := clientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("narrate requires --run-id")
	}

	client, err := newClient(*storeKind, *dbPath, *configPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	narration, err := client.Narrate(ctx, *runID)
	if err != nil {
		return err
	}
	fmt.Println(narration)
	return nil
}

func runSeason(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	runID := fs.String("run-id", "", "explicit run id (optional)")
	population := fs.Int("pop", 0, "population size (0 uses the configured default)")
	generations := fs.Int("gens", 10, "generation count")
	seed := fs.Int64("seed", 1, "rng seed")
	selection := fs.String("selection", "", "parent selection strategy: top_yield|index|tournament")
	parentCount := fs.Int("parents", 0, "parents selected per generation (0 uses the configured default)")
	envVariance := fs.Float64("env-variance", -1, "environmental variance (negative uses the configured default)")
	useAdvisor := fs.Bool("advisor", false, "ask the advisor for per-generation scenarios")
	topCount := fs.Int("top", 5, "final-generation plants to rank in artifacts")
	storeKind, dbPath, configPath := clientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *configPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, verdaneapi.RunRequest{
		RunID:       *runID,
		Population:  *population,
		Generations: *generations,
		Seed:        *seed,
		Selection:   *selection,
		ParentCount: *parentCount,
		EnvVariance: *envVariance,
		UseAdvisor:  *useAdvisor,
		TopCount:    *topCount,
	})
	if err != nil {
		return err
	}

	fmt.Printf("run completed run_id=%s gens=%d seed=%d\n", summary.RunID, *generations, *seed)
	for i, mean := range summary.YieldByGeneration {
		fmt.Printf("generation=%d yield_mean=%.3f\n", i+1, mean)
	}
	fmt.Printf("final_yield_mean=%.3f yield_gain=%+.3f\n", summary.FinalYieldMean, summary.YieldGain)
	if summary.Narration != "" {
		fmt.Printf("narration: %s\n", summary.Narration)
	}
	fmt.Printf("artifacts_dir=%s\n", summary.ArtifactsDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := newClient("", "", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	entries, err := client.Runs(ctx, verdaneapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		return printJSON(entries)
	}

	if stdoutIsTTY() {
		w := newTable()
		fmt.Fprintln(w, "RUN\tCREATED\tPOP\tGENS\tSELECTION\tFINAL YIELD\tGAIN")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%.3f\t%+.3f\n",
				e.RunID, humanTime(e.CreatedAtUTC), humanCount(e.Population), e.Generations,
				e.Selection, e.FinalYieldMean, e.YieldGain)
		}
		return w.Flush()
	}
	for _, e := range entries {
		fmt.Printf("run_id=%s created_at=%s seed=%d pop=%d gens=%d selection=%s final_yield_mean=%.3f yield_gain=%+.3f\n",
			e.RunID, e.CreatedAtUTC, e.Seed, e.Population, e.Generations, e.Selection, e.FinalYieldMean, e.YieldGain)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from the run index")
	outDir := fs.String("out", exportsDir, "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}

	client, err := newClient("", "", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, verdaneapi.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s dir=%s\n", summary.RunID, summary.Directory)
	return nil
}

func runConfig(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	outPath := fs.String("out", "verdane.yaml", "output path for the default configuration")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if err := cfg.WriteYAML(*outPath); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", *outPath)
	return nil
}
