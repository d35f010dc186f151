package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/nslv/internal/calculation"
)

// RunConfig is the YAML-loadable counterpart of engine.RunConfig: the
// scenario-generation parameters, worker count, and stress multipliers
// a run can source from a --config file instead of individual flags.
type RunConfig struct {
	Scenarios          int     `yaml:"scenarios"`
	Seed               uint64  `yaml:"seed"`
	InitialRate        float64 `yaml:"initial_rate"`
	Drift              float64 `yaml:"drift"`
	Volatility         float64 `yaml:"volatility"`
	MinRate            float64 `yaml:"min_rate"`
	MaxRate            float64 `yaml:"max_rate"`
	MortalityMult      float64 `yaml:"mortality_mult"`
	LapseMult          float64 `yaml:"lapse_mult"`
	ExpenseMult        float64 `yaml:"expense_mult"`
	Workers            int     `yaml:"workers"`
	RetainDistribution bool    `yaml:"retain_distribution"`
}

// Defaults fills in the zero-value baseline: identity multipliers and
// host-reported concurrency (signalled by Workers=0).
func Defaults() RunConfig {
	return RunConfig{
		MortalityMult: 1,
		LapseMult:     1,
		ExpenseMult:   1,
	}
}

// LoadRunConfigYAML reads a run configuration file, starting from Defaults().
func LoadRunConfigYAML(path string) (RunConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read run config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("parse run config YAML: %w", err)
	}
	return cfg, nil
}

// ScenarioParams narrows the config to calculation.ScenarioParams.
func (c RunConfig) ScenarioParams() calculation.ScenarioParams {
	return calculation.ScenarioParams{
		InitialRate: c.InitialRate,
		Drift:       c.Drift,
		Volatility:  c.Volatility,
		MinRate:     c.MinRate,
		MaxRate:     c.MaxRate,
	}
}

// Multipliers narrows the config to calculation.Multipliers.
func (c RunConfig) Multipliers() calculation.Multipliers {
	return calculation.Multipliers{
		Mortality: c.MortalityMult,
		Lapse:     c.LapseMult,
		Expense:   c.ExpenseMult,
	}
}
