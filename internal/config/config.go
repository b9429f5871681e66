// Package config loads simulator settings from YAML, layering an operator
// file over the embedded defaults.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Population struct {
	Size        int `yaml:"size"`
	ParentCount int `yaml:"parent_count"`
}

type Genetics struct {
	AlleleFrequency float64 `yaml:"allele_frequency"`
	TradeOffCoeff   float64 `yaml:"trade_off_coeff"`
	LinkCoeff       float64 `yaml:"link_coeff"`
	LinkageFidelity float64 `yaml:"linkage_fidelity"`
	BaseEnvSD       float64 `yaml:"base_env_sd"`
}

type SelectionWeights struct {
	Yield      float64 `yaml:"yield"`
	Resistance float64 `yaml:"resistance"`
	Height     float64 `yaml:"height"`
}

type Selection struct {
	Strategy       string           `yaml:"strategy"`
	TournamentSize int              `yaml:"tournament_size"`
	Weights        SelectionWeights `yaml:"weights"`
}

type Advisor struct {
	Enabled        bool    `yaml:"enabled"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	EnvVariance    float64 `yaml:"env_variance"`
}

type Storage struct {
	Backend string `yaml:"backend"`
	DBPath  string `yaml:"db_path"`
}

type Output struct {
	RunsDir string `yaml:"runs_dir"`
}

// Config is the full simulator configuration.
type Config struct {
	Population Population `yaml:"population"`
	Genetics   Genetics   `yaml:"genetics"`
	Selection  Selection  `yaml:"selection"`
	Advisor    Advisor    `yaml:"advisor"`
	Storage    Storage    `yaml:"storage"`
	Output     Output     `yaml:"output"`
}

// Default returns the embedded default configuration.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// The embedded defaults are fixed at build time.
		panic(fmt.Sprintf("config: invalid embedded defaults: %v", err))
	}
	return cfg
}

// Load reads a YAML file over the embedded defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the engine constructors would refuse.
func (c Config) Validate() error {
	if c.Population.Size < 2 {
		return fmt.Errorf("population size must be >= 2, got %d", c.Population.Size)
	}
	if c.Population.ParentCount < 2 || c.Population.ParentCount > c.Population.Size {
		return fmt.Errorf("parent count must be in [2, %d], got %d", c.Population.Size, c.Population.ParentCount)
	}
	if c.Genetics.AlleleFrequency < 0 || c.Genetics.AlleleFrequency > 1 {
		return fmt.Errorf("allele frequency must be in [0, 1], got %v", c.Genetics.AlleleFrequency)
	}
	if c.Genetics.LinkageFidelity < 0 || c.Genetics.LinkageFidelity > 1 {
		return fmt.Errorf("linkage fidelity must be in [0, 1], got %v", c.Genetics.LinkageFidelity)
	}
	if c.Genetics.TradeOffCoeff < 0 || c.Genetics.LinkCoeff < 0 || c.Genetics.BaseEnvSD < 0 {
		return fmt.Errorf("genetics coefficients must be >= 0")
	}
	if c.Advisor.TimeoutSeconds < 0 {
		return fmt.Errorf("advisor timeout must be >= 0, got %d", c.Advisor.TimeoutSeconds)
	}
	if c.Advisor.EnvVariance < 0 {
		return fmt.Errorf("advisor env variance must be >= 0, got %v", c.Advisor.EnvVariance)
	}
	switch c.Storage.Backend {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Storage.Backend)
	}
	return nil
}

// WriteYAML writes the configuration to path, for scaffolding an operator
// config file.
func (c Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
