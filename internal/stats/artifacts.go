package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"verdane/internal/model"
)

const runIndexFile = "run_index.json"

// RunConfig records the parameters a season run was started with.
type RunConfig struct {
	RunID           string  `json:"run_id"`
	Size            int     `json:"size"`
	Generations     int     `json:"generations"`
	Seed            int64   `json:"seed"`
	Selection       string  `json:"selection"`
	ParentCount     int     `json:"parent_count"`
	EnvVariance     float64 `json:"env_variance"`
	UseAdvisor      bool    `json:"use_advisor"`
	AlleleFrequency float64 `json:"allele_frequency"`
	TradeOffCoeff   float64 `json:"trade_off_coeff"`
	LinkCoeff       float64 `json:"link_coeff"`
	LinkageFidelity float64 `json:"linkage_fidelity"`
	BaseEnvSD       float64 `json:"base_env_sd"`
}

// TopPlant ranks one final-generation plant by yield breeding value.
type TopPlant struct {
	Rank  int         `json:"rank"`
	Plant model.Plant `json:"plant"`
}

// RunArtifacts is everything a season run writes under runs/<run-id>/.
type RunArtifacts struct {
	Config     RunConfig               `json:"config"`
	History    []model.PopulationStats `json:"history"`
	Scenarios  []model.Scenario        `json:"scenarios,omitempty"`
	Selections []model.SelectionRecord `json:"selections,omitempty"`
	TopPlants  []TopPlant              `json:"top_plants"`
	Narration  string                  `json:"narration,omitempty"`
}

type RunIndexEntry struct {
	RunID          string  `json:"run_id"`
	Size           int     `json:"size"`
	Generations    int     `json:"generations"`
	Seed           int64   `json:"seed"`
	Selection      string  `json:"selection"`
	FinalYieldMean float64 `json:"final_yield_mean"`
	YieldGain      float64 `json:"yield_gain"`
	CreatedAtUTC   string  `json:"created_at_utc"`
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "history.json"), artifacts.History); err != nil {
		return "", err
	}
	if err := WriteHistoryCSV(filepath.Join(runDir, "history.csv"), artifacts.History); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "scenarios.json"), artifacts.Scenarios); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "selections.json"), artifacts.Selections); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "top_plants.json"), artifacts.TopPlants); err != nil {
		return "", err
	}
	if artifacts.Narration != "" {
		if err := os.WriteFile(filepath.Join(runDir, "narration.txt"), []byte(artifacts.Narration+"\n"), 0o644); err != nil {
			return "", err
		}
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func ReadRunHistory(baseDir, runID string) ([]model.PopulationStats, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runID, "history.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var history []model.PopulationStats
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, false, err
	}
	return history, true, nil
}

func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	files := []string{"config.json", "history.json", "history.csv", "scenarios.json", "selections.json", "top_plants.json"}
	for _, file := range files {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	narrationPath := filepath.Join(src, "narration.txt")
	if _, err := os.Stat(narrationPath); err == nil {
		if err := copyFile(narrationPath, filepath.Join(dst, "narration.txt")); err != nil {
			return "", err
		}
	} else if !os.IsNotExist(err) {
		return "", err
	}

	return dst, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
