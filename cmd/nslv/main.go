// Command nslv is the batch driver CLI surface the nested stochastic
// life-insurance valuation engine exposes for a host harness to wrap
// or invoke directly (spec.md §6).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
