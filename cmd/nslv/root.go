package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/nslv/internal/calculation"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "nslv",
	Short: "Nested stochastic life-insurance valuation engine",
	Long: `nslv runs a nested stochastic life-insurance valuation: projects a
portfolio of policies under a set of economic scenarios and reports
distributional statistics (mean, standard deviation, percentiles, and
the conditional tail expectation at 95%) over the scenario outcomes.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging to stderr")
	rootCmd.AddCommand(runCmd, generateScenariosCmd, inspectCmd)
}

// stderrLogger is the --verbose logger, writing to os.Stderr in the
// teacher's Logger shape; the default elsewhere in the engine is NopLogger.
type stderrLogger struct{}

func (stderrLogger) Debugf(format string, args ...any) { fmt.Fprintf(os.Stderr, "DEBUG: "+format+"\n", args...) }
func (stderrLogger) Infof(format string, args ...any)  { fmt.Fprintf(os.Stderr, "INFO: "+format+"\n", args...) }
func (stderrLogger) Warnf(format string, args ...any)  { fmt.Fprintf(os.Stderr, "WARN: "+format+"\n", args...) }
func (stderrLogger) Errorf(format string, args ...any) { fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...) }

func logger() calculation.Logger {
	if verbose {
		return stderrLogger{}
	}
	return calculation.NopLogger{}
}
