package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults_IdentityMultipliers(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, 1.0, cfg.MortalityMult)
	require.Equal(t, 1.0, cfg.LapseMult)
	require.Equal(t, 1.0, cfg.ExpenseMult)
	require.Equal(t, 0, cfg.Workers)
}

func TestLoadRunConfigYAML_OverridesDefaults(t *testing.T) {
	body := "scenarios: 1000\nseed: 42\ninitial_rate: 0.04\ndrift: 0.0\nvolatility: 0.015\n" +
		"min_rate: 0\nmax_rate: 0.2\nmortality_mult: 1.1\nworkers: 4\nretain_distribution: true\n"
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadRunConfigYAML(path)
	require.NoError(t, err)
	require.Equal(t, 1000, cfg.Scenarios)
	require.Equal(t, uint64(42), cfg.Seed)
	require.Equal(t, 1.1, cfg.MortalityMult)
	require.Equal(t, 1.0, cfg.LapseMult) // untouched by the file, keeps the default
	require.True(t, cfg.RetainDistribution)
}

func TestLoadRunConfigYAML_MissingFileErrors(t *testing.T) {
	_, err := LoadRunConfigYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRunConfig_NarrowsToCalculationTypes(t *testing.T) {
	cfg := RunConfig{InitialRate: 0.03, Drift: 0.01, Volatility: 0.02, MinRate: 0, MaxRate: 0.1,
		MortalityMult: 1.5, LapseMult: 0.8, ExpenseMult: 1.2}

	params := cfg.ScenarioParams()
	require.Equal(t, 0.03, params.InitialRate)
	require.Equal(t, 0.02, params.Volatility)

	mult := cfg.Multipliers()
	require.Equal(t, 1.5, mult.Mortality)
	require.Equal(t, 0.8, mult.Lapse)
	require.Equal(t, 1.2, mult.Expense)
}
