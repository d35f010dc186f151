package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/nslv/internal/config"
	"github.com/rgehrsitz/nslv/internal/domain"
	"github.com/rgehrsitz/nslv/internal/output"
)

var inspectFlags struct {
	policies  string
	mortality string
	lapse     string
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a portfolio and table summary without running a valuation",
	RunE:  runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVar(&inspectFlags.policies, "policies", "", "path to policies CSV (required)")
	f.StringVar(&inspectFlags.mortality, "mortality", "", "optional path to mortality CSV")
	f.StringVar(&inspectFlags.lapse, "lapse", "", "optional path to lapse CSV")
	_ = inspectCmd.MarkFlagRequired("policies")
}

func runInspect(cmd *cobra.Command, args []string) error {
	policiesFile, err := os.Open(inspectFlags.policies)
	if err != nil {
		return fmt.Errorf("open policies file: %w", err)
	}
	defer policiesFile.Close()
	policies, err := config.LoadPoliciesCSV(policiesFile)
	if err != nil {
		return err
	}

	var mortality *domain.MortalityTable
	if inspectFlags.mortality != "" {
		f, err := os.Open(inspectFlags.mortality)
		if err != nil {
			return fmt.Errorf("open mortality file: %w", err)
		}
		defer f.Close()
		mortality, err = config.LoadMortalityCSV(f)
		if err != nil {
			return err
		}
	}

	var lapse *domain.LapseTable
	if inspectFlags.lapse != "" {
		f, err := os.Open(inspectFlags.lapse)
		if err != nil {
			return fmt.Errorf("open lapse file: %w", err)
		}
		defer f.Close()
		lapse, err = config.LoadLapseCSV(f)
		if err != nil {
			return err
		}
	}

	fmt.Print(string(output.FormatPortfolioSummary(policies, mortality, lapse)))
	return nil
}
