package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/nslv/internal/calculation"
	"github.com/rgehrsitz/nslv/internal/config"
	"github.com/rgehrsitz/nslv/internal/domain"
	"github.com/rgehrsitz/nslv/internal/engine"
	"github.com/rgehrsitz/nslv/internal/output"
)

var runFlags struct {
	policies       string
	mortality      string
	lapse          string
	expenses       string
	scenarios      int
	seed           uint64
	outputPath     string
	configPath     string
	initialRate    float64
	drift          float64
	volatility     float64
	minRate        float64
	maxRate        float64
	mortMult       float64
	lapseMult      float64
	expenseMult    float64
	workers        int
	retainDist     bool
	format         string
	withReserves   bool
	scenarioSource string
	historicalPath string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a nested stochastic valuation over a portfolio",
	RunE:  runValuation,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.policies, "policies", "", "path to policies CSV (required)")
	f.StringVar(&runFlags.mortality, "mortality", "", "path to mortality CSV (required)")
	f.StringVar(&runFlags.lapse, "lapse", "", "path to lapse CSV (required)")
	f.StringVar(&runFlags.expenses, "expenses", "", "path to expenses CSV or JSON (required)")
	f.IntVar(&runFlags.scenarios, "scenarios", 0, "number of scenarios to generate (required)")
	f.Uint64Var(&runFlags.seed, "seed", 0, "PRNG seed for scenario generation (required)")
	f.StringVar(&runFlags.outputPath, "output", "", "path to write result JSON (required)")
	f.StringVar(&runFlags.configPath, "config", "", "optional YAML run config; flags override its values")
	f.Float64Var(&runFlags.initialRate, "initial-rate", 0.04, "initial interest rate")
	f.Float64Var(&runFlags.drift, "drift", 0.0, "GBM drift")
	f.Float64Var(&runFlags.volatility, "volatility", 0.015, "GBM volatility")
	f.Float64Var(&runFlags.minRate, "min-rate", 0.0, "minimum clamped rate")
	f.Float64Var(&runFlags.maxRate, "max-rate", 0.2, "maximum clamped rate")
	f.Float64Var(&runFlags.mortMult, "mortality-mult", 1.0, "mortality stress multiplier")
	f.Float64Var(&runFlags.lapseMult, "lapse-mult", 1.0, "lapse stress multiplier")
	f.Float64Var(&runFlags.expenseMult, "expense-mult", 1.0, "expense stress multiplier")
	f.IntVar(&runFlags.workers, "workers", 0, "worker count (0 = host-reported concurrency)")
	f.BoolVar(&runFlags.retainDist, "retain-distribution", false, "retain the full per-scenario NPV distribution")
	f.StringVar(&runFlags.format, "format", "json", "output format: json or console")
	f.BoolVar(&runFlags.withReserves, "with-reserves", false, "include each policy's net premium reserve schedule at the initial rate (JSON output only)")
	f.StringVar(&runFlags.scenarioSource, "scenario-source", "gbm", "scenario generation source: gbm or historical")
	f.StringVar(&runFlags.historicalPath, "historical-rates", "", "path to a year,rate CSV of observed annual rates (required when --scenario-source=historical)")

	for _, name := range []string{"policies", "mortality", "lapse", "expenses", "scenarios", "seed", "output"} {
		_ = runCmd.MarkFlagRequired(name)
	}
}

func runValuation(cmd *cobra.Command, args []string) error {
	if runFlags.configPath != "" {
		cfg, err := config.LoadRunConfigYAML(runFlags.configPath)
		if err != nil {
			return fmt.Errorf("load run config: %w", err)
		}
		if !cmd.Flags().Changed("scenarios") {
			runFlags.scenarios = cfg.Scenarios
		}
		if !cmd.Flags().Changed("seed") {
			runFlags.seed = cfg.Seed
		}
		if !cmd.Flags().Changed("initial-rate") {
			runFlags.initialRate = cfg.InitialRate
		}
		if !cmd.Flags().Changed("drift") {
			runFlags.drift = cfg.Drift
		}
		if !cmd.Flags().Changed("volatility") {
			runFlags.volatility = cfg.Volatility
		}
		if !cmd.Flags().Changed("min-rate") {
			runFlags.minRate = cfg.MinRate
		}
		if !cmd.Flags().Changed("max-rate") {
			runFlags.maxRate = cfg.MaxRate
		}
		if !cmd.Flags().Changed("mortality-mult") {
			runFlags.mortMult = cfg.MortalityMult
		}
		if !cmd.Flags().Changed("lapse-mult") {
			runFlags.lapseMult = cfg.LapseMult
		}
		if !cmd.Flags().Changed("expense-mult") {
			runFlags.expenseMult = cfg.ExpenseMult
		}
		if !cmd.Flags().Changed("workers") {
			runFlags.workers = cfg.Workers
		}
		if !cmd.Flags().Changed("retain-distribution") {
			runFlags.retainDist = cfg.RetainDistribution
		}
	}

	policies, mortality, lapse, expenses, err := loadPortfolioAndTables(runFlags.policies, runFlags.mortality, runFlags.lapse, runFlags.expenses)
	if err != nil {
		return err
	}

	h := engine.NewHandle()
	h.SetLogger(logger())

	policyBytes := make([]byte, 0, len(policies)*32)
	for _, p := range policies {
		b, err := p.MarshalBinary()
		if err != nil {
			return fmt.Errorf("serialize policies: %w", err)
		}
		policyBytes = append(policyBytes, b...)
	}
	if _, err := h.LoadPolicies(policyBytes); err != nil {
		return err
	}

	mortBytes, err := mortality.MarshalBinary()
	if err != nil {
		return err
	}
	if err := h.LoadMortality(mortBytes); err != nil {
		return err
	}

	lapseBytes, err := lapse.MarshalBinary()
	if err != nil {
		return err
	}
	if err := h.LoadLapse(lapseBytes); err != nil {
		return err
	}

	expenseBytes, err := expenses.MarshalBinary()
	if err != nil {
		return err
	}
	if err := h.LoadExpenses(expenseBytes); err != nil {
		return err
	}

	var historicalRates *calculation.HistoricalRateSeries
	if runFlags.scenarioSource == "historical" {
		if runFlags.historicalPath == "" {
			return fmt.Errorf("--historical-rates is required when --scenario-source=historical")
		}
		f, err := os.Open(runFlags.historicalPath)
		if err != nil {
			return fmt.Errorf("open historical rates %s: %w", runFlags.historicalPath, err)
		}
		defer f.Close()
		historicalRates, err = calculation.LoadHistoricalRatesCSV(f)
		if err != nil {
			return fmt.Errorf("load historical rates: %w", err)
		}
	}

	cfg := engine.RunConfig{
		ScenarioCount:      runFlags.scenarios,
		Seed:               runFlags.seed,
		ScenarioParams:     calculationScenarioParams(),
		Multipliers:        calculationMultipliers(),
		RetainDistribution: runFlags.retainDist,
		WorkerCount:        runFlags.workers,
		ScenarioSource:     runFlags.scenarioSource,
		HistoricalRates:    historicalRates,
	}

	start := time.Now()
	if err := h.RunValuation(context.Background(), cfg); err != nil {
		return fmt.Errorf("run %s: %w", h.ID(), err)
	}
	result := h.Result()
	result.ExecutionTimeMs = float64(time.Since(start).Microseconds()) / 1000.0

	var out []byte
	switch runFlags.format {
	case "console":
		out = output.FormatConsole(result)
	default:
		var reserves []output.PolicyReserve
		if runFlags.withReserves {
			reserves = computeReserves(policies, mortality, runFlags.initialRate)
		}
		out, err = output.FormatJSONWithReserves(result, reserves)
		if err != nil {
			return fmt.Errorf("format result: %w", err)
		}
	}

	if err := os.WriteFile(runFlags.outputPath, out, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", runFlags.outputPath, err)
	}
	return nil
}

// computeReserves builds the net premium reserve schedule for each
// policy at a single flat rate, a diagnostic companion to the nested
// stochastic NPV kernel rather than a reserving regime (see
// internal/calculation/reserves.go).
func computeReserves(policies []domain.Policy, mortality *domain.MortalityTable, rate float64) []output.PolicyReserve {
	out := make([]output.PolicyReserve, 0, len(policies))
	for _, p := range policies {
		np := calculation.NetPremium(p, mortality, rate)
		schedule := calculation.NetPremiumReserves(p, mortality, rate, np)
		out = append(out, output.PolicyReserve{PolicyID: p.PolicyID, Reserves: schedule})
	}
	return out
}
