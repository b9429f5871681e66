package model

import "log/slog"

// CurrentSchemaVersion and CurrentCodecVersion stamp every persisted record
// at creation; the storage codec rejects records from other versions.
const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// CurrentVersion returns the header stamped on newly created records.
func CurrentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

// Trait identifies one of the three bred quantitative traits.
type Trait string

const (
	TraitYield      Trait = "yield"
	TraitResistance Trait = "resistance"
	TraitHeight     Trait = "height"
)

// Traits returns all traits in canonical order.
func Traits() []Trait {
	return []Trait{TraitYield, TraitResistance, TraitHeight}
}

// TraitValues holds one continuous value per trait.
type TraitValues struct {
	Yield      float64 `json:"yield"`
	Resistance float64 `json:"resistance"`
	Height     float64 `json:"height"`
}

func (v TraitValues) Value(t Trait) float64 {
	switch t {
	case TraitYield:
		return v.Yield
	case TraitResistance:
		return v.Resistance
	case TraitHeight:
		return v.Height
	}
	return 0
}

func (v *TraitValues) Add(t Trait, delta float64) {
	switch t {
	case TraitYield:
		v.Yield += delta
	case TraitResistance:
		v.Resistance += delta
	case TraitHeight:
		v.Height += delta
	}
}

// AllelePair records dominant-allele presence on the maternal and paternal
// strand at one locus.
type AllelePair struct {
	Maternal bool `json:"m"`
	Paternal bool `json:"p"`
}

// Genome is a diploid genotype: one allele pair per locus plus the derived
// per-locus dosage. Construct through genome.New so the pair sequence and
// the dosage sequence cannot diverge.
type Genome struct {
	Pairs   []AllelePair `json:"pairs"`
	Dosages []int        `json:"dosages"`
}

// Plant is one individual. Derived fields are computed at creation and never
// recomputed; a plant is immutable once materialized.
type Plant struct {
	VersionedRecord
	ID             string      `json:"id"`
	Generation     int         `json:"generation"`
	Genome         Genome      `json:"genome"`
	Phenotype      TraitValues `json:"phenotype"`
	BreedingValue  TraitValues `json:"breeding_value"`
	Heterozygosity float64     `json:"heterozygosity"`
	Heterozygous   bool        `json:"heterozygous"`
}

// Population is one generation's full plant set. Generations replace each
// other wholesale; superseded populations survive only in stored history.
type Population struct {
	VersionedRecord
	ID          string  `json:"id"`
	RunID       string  `json:"run_id"`
	Generation  int     `json:"generation"`
	EnvVariance float64 `json:"env_variance"`
	Plants      []Plant `json:"plants"`
}

// TraitStats summarizes one trait's distribution over a population.
type TraitStats struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Std      float64 `json:"std"`
	Best     float64 `json:"best"`
	Worst    float64 `json:"worst"`
}

// TraitStatsSet holds TraitStats for each trait.
type TraitStatsSet struct {
	Yield      TraitStats `json:"yield"`
	Resistance TraitStats `json:"resistance"`
	Height     TraitStats `json:"height"`
}

func (s TraitStatsSet) Stats(t Trait) TraitStats {
	switch t {
	case TraitYield:
		return s.Yield
	case TraitResistance:
		return s.Resistance
	case TraitHeight:
		return s.Height
	}
	return TraitStats{}
}

// PopulationStats is one generation's append-only history entry.
type PopulationStats struct {
	VersionedRecord
	Generation         int           `json:"generation"`
	Size               int           `json:"size"`
	EnvVariance        float64       `json:"env_variance"`
	MeanHeterozygosity float64       `json:"mean_heterozygosity"`
	Phenotype          TraitStatsSet `json:"phenotype"`
	BreedingValue      TraitStatsSet `json:"breeding_value"`

	// SelectionDifferential is the phenotype-mean advantage of the parents
	// that produced this generation over their source population. Absent for
	// the founder generation.
	SelectionDifferential *TraitValues `json:"selection_differential,omitempty"`
}

// LogValue implements slog.LogValuer for structured generation logging.
func (s PopulationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("size", s.Size),
		slog.Float64("env_variance", s.EnvVariance),
		slog.Float64("mean_heterozygosity", s.MeanHeterozygosity),
		slog.Float64("yield_mean", s.Phenotype.Yield.Mean),
		slog.Float64("resistance_mean", s.Phenotype.Resistance.Mean),
		slog.Float64("height_mean", s.Phenotype.Height.Mean),
		slog.Float64("yield_gebv_mean", s.BreedingValue.Yield.Mean),
	)
}

// SelectionRecord documents which parents produced a generation and the
// phenotype-mean advantage they held over their source population.
type SelectionRecord struct {
	Generation   int         `json:"generation"`
	ParentIDs    []string    `json:"parent_ids"`
	Differential TraitValues `json:"differential"`
}

// Scenario is one generation's environmental setting and narration.
type Scenario struct {
	Generation  int     `json:"generation"`
	Text        string  `json:"text"`
	EnvVariance float64 `json:"env_variance"`
	Source      string  `json:"source,omitempty"`
}

// RunRecord tracks the current state of an interactive breeding run.
type RunRecord struct {
	VersionedRecord
	RunID        string `json:"run_id"`
	CreatedAtUTC string `json:"created_at_utc"`
	Seed         int64  `json:"seed"`
	Size         int    `json:"size"`
	Generation   int    `json:"generation"`
	PopulationID string `json:"population_id"`
}
