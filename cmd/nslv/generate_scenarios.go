package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/nslv/internal/calculation"
	"github.com/rgehrsitz/nslv/internal/domain"
)

var generateFlags struct {
	count          int
	seed           uint64
	initialRate    float64
	drift          float64
	volatility     float64
	minRate        float64
	maxRate        float64
	outputPath     string
	scenarioSource string
	historicalPath string
}

var generateScenariosCmd = &cobra.Command{
	Use:   "generate-scenarios",
	Short: "Generate and print a scenario set without running a valuation",
	Long: `generate-scenarios runs the seeded GBM generator (C4), or with
--scenario-source=historical the historical bootstrap generator,
standalone so a host can inspect or cache scenario rates, or verify reproducibility
across machines and worker counts (spec.md §8, test 4).`,
	RunE: runGenerateScenarios,
}

func init() {
	f := generateScenariosCmd.Flags()
	f.IntVar(&generateFlags.count, "count", 10, "number of scenarios to generate")
	f.Uint64Var(&generateFlags.seed, "seed", 0, "PRNG seed")
	f.Float64Var(&generateFlags.initialRate, "initial-rate", 0.04, "initial interest rate")
	f.Float64Var(&generateFlags.drift, "drift", 0.0, "GBM drift")
	f.Float64Var(&generateFlags.volatility, "volatility", 0.015, "GBM volatility")
	f.Float64Var(&generateFlags.minRate, "min-rate", 0.0, "minimum clamped rate")
	f.Float64Var(&generateFlags.maxRate, "max-rate", 0.2, "maximum clamped rate")
	f.StringVar(&generateFlags.outputPath, "output", "", "path to write rates as JSON (default: stdout)")
	f.StringVar(&generateFlags.scenarioSource, "scenario-source", "gbm", "scenario generation source: gbm or historical")
	f.StringVar(&generateFlags.historicalPath, "historical-rates", "", "path to a year,rate CSV of observed annual rates (required when --scenario-source=historical)")
}

func runGenerateScenarios(cmd *cobra.Command, args []string) error {
	var set domain.ScenarioSet
	switch generateFlags.scenarioSource {
	case "", "gbm":
		params := calculation.ScenarioParams{
			InitialRate: generateFlags.initialRate,
			Drift:       generateFlags.drift,
			Volatility:  generateFlags.volatility,
			MinRate:     generateFlags.minRate,
			MaxRate:     generateFlags.maxRate,
		}
		s, err := calculation.GenerateScenarioSet(generateFlags.count, params, generateFlags.seed)
		if err != nil {
			return fmt.Errorf("generate scenarios: %w", err)
		}
		set = s
	case "historical":
		if generateFlags.historicalPath == "" {
			return fmt.Errorf("--historical-rates is required when --scenario-source=historical")
		}
		f, err := os.Open(generateFlags.historicalPath)
		if err != nil {
			return fmt.Errorf("open historical rates %s: %w", generateFlags.historicalPath, err)
		}
		defer f.Close()
		series, err := calculation.LoadHistoricalRatesCSV(f)
		if err != nil {
			return fmt.Errorf("load historical rates: %w", err)
		}
		s, err := series.GenerateBootstrapScenarioSet(generateFlags.count, generateFlags.seed)
		if err != nil {
			return fmt.Errorf("generate bootstrap scenarios: %w", err)
		}
		set = s
	default:
		return fmt.Errorf("unknown scenario source %q", generateFlags.scenarioSource)
	}

	rates := make([][]float64, set.Size())
	for i := 0; i < set.Size(); i++ {
		s := set.At(i)
		yearly := make([]float64, 50)
		for y := 1; y <= 50; y++ {
			yearly[y-1] = s.Rate(y)
		}
		rates[i] = yearly
	}

	out, err := json.MarshalIndent(rates, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scenarios: %w", err)
	}

	if generateFlags.outputPath == "" {
		fmt.Println(string(out))
		return nil
	}
	return os.WriteFile(generateFlags.outputPath, out, 0o644)
}
