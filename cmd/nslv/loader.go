package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rgehrsitz/nslv/internal/calculation"
	"github.com/rgehrsitz/nslv/internal/config"
	"github.com/rgehrsitz/nslv/internal/domain"
)

func loadPortfolioAndTables(policiesPath, mortalityPath, lapsePath, expensesPath string) ([]domain.Policy, *domain.MortalityTable, *domain.LapseTable, domain.ExpenseAssumptions, error) {
	policiesFile, err := os.Open(policiesPath)
	if err != nil {
		return nil, nil, nil, domain.ExpenseAssumptions{}, fmt.Errorf("open policies file: %w", err)
	}
	defer policiesFile.Close()
	policies, err := config.LoadPoliciesCSV(policiesFile)
	if err != nil {
		return nil, nil, nil, domain.ExpenseAssumptions{}, err
	}

	mortalityFile, err := os.Open(mortalityPath)
	if err != nil {
		return nil, nil, nil, domain.ExpenseAssumptions{}, fmt.Errorf("open mortality file: %w", err)
	}
	defer mortalityFile.Close()
	mortality, err := config.LoadMortalityCSV(mortalityFile)
	if err != nil {
		return nil, nil, nil, domain.ExpenseAssumptions{}, err
	}

	lapseFile, err := os.Open(lapsePath)
	if err != nil {
		return nil, nil, nil, domain.ExpenseAssumptions{}, fmt.Errorf("open lapse file: %w", err)
	}
	defer lapseFile.Close()
	lapse, err := config.LoadLapseCSV(lapseFile)
	if err != nil {
		return nil, nil, nil, domain.ExpenseAssumptions{}, err
	}

	expensesFile, err := os.Open(expensesPath)
	if err != nil {
		return nil, nil, nil, domain.ExpenseAssumptions{}, fmt.Errorf("open expenses file: %w", err)
	}
	defer expensesFile.Close()

	var expenses domain.ExpenseAssumptions
	if strings.HasSuffix(expensesPath, ".json") {
		expenses, err = config.LoadExpensesJSON(expensesFile)
	} else {
		expenses, err = config.LoadExpensesCSV(expensesFile)
	}
	if err != nil {
		return nil, nil, nil, domain.ExpenseAssumptions{}, err
	}

	return policies, mortality, lapse, expenses, nil
}

func calculationScenarioParams() calculation.ScenarioParams {
	return calculation.ScenarioParams{
		InitialRate: runFlags.initialRate,
		Drift:       runFlags.drift,
		Volatility:  runFlags.volatility,
		MinRate:     runFlags.minRate,
		MaxRate:     runFlags.maxRate,
	}
}

func calculationMultipliers() calculation.Multipliers {
	return calculation.Multipliers{
		Mortality: runFlags.mortMult,
		Lapse:     runFlags.lapseMult,
		Expense:   runFlags.expenseMult,
	}
}
