package domain

// Percentiles holds the five percentiles of a scenario-NPV distribution
// spec.md requires: 50, 75, 90, 95, 99.
type Percentiles struct {
	P50 float64
	P75 float64
	P90 float64
	P95 float64
	P99 float64
}

// ValuationResult summarizes S scenario-level portfolio NPVs.
type ValuationResult struct {
	Mean            float64
	StdDev          float64
	Percentiles     Percentiles
	CTE95           float64
	ScenarioCount   int
	ExecutionTimeMs float64
	// Distribution holds all S scenario NPVs, ordered by scenario index,
	// when the run was requested with retain_distribution=true. Nil otherwise.
	Distribution []float64
}
