package output

import (
	"encoding/json"

	"github.com/rgehrsitz/nslv/internal/domain"
)

// JSONResult mirrors spec.md §6's output JSON shape: a statistics
// object, execution metadata, and an optional retained distribution.
type JSONResult struct {
	Statistics      statisticsJSON  `json:"statistics"`
	ExecutionTimeMs float64         `json:"executionTimeMs"`
	ScenarioCount   int             `json:"scenarioCount"`
	Distribution    []float64       `json:"distribution,omitempty"`
	Reserves        []PolicyReserve `json:"reserves,omitempty"`
}

// PolicyReserve is one policy's net premium reserve schedule, included
// in the output when --with-reserves is requested.
type PolicyReserve struct {
	PolicyID uint64    `json:"policyId"`
	Reserves []float64 `json:"reserves"`
}

type statisticsJSON struct {
	Mean        float64         `json:"mean"`
	StdDev      float64         `json:"stdDev"`
	Percentiles percentilesJSON `json:"percentiles"`
	CTE95       float64         `json:"cte95"`
}

type percentilesJSON struct {
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// FormatJSON renders a ValuationResult as the spec.md §6 output JSON,
// pretty-printed the way the teacher's JSONFormatter renders results.
func FormatJSON(r *domain.ValuationResult) ([]byte, error) {
	return FormatJSONWithReserves(r, nil)
}

// FormatJSONWithReserves is FormatJSON plus an optional per-policy net
// premium reserve schedule, included when a run was started with
// --with-reserves.
func FormatJSONWithReserves(r *domain.ValuationResult, reserves []PolicyReserve) ([]byte, error) {
	out := JSONResult{
		Statistics: statisticsJSON{
			Mean:   r.Mean,
			StdDev: r.StdDev,
			Percentiles: percentilesJSON{
				P50: r.Percentiles.P50,
				P75: r.Percentiles.P75,
				P90: r.Percentiles.P90,
				P95: r.Percentiles.P95,
				P99: r.Percentiles.P99,
			},
			CTE95: r.CTE95,
		},
		ExecutionTimeMs: r.ExecutionTimeMs,
		ScenarioCount:   r.ScenarioCount,
		Distribution:    r.Distribution,
		Reserves:        reserves,
	}
	return json.MarshalIndent(out, "", "  ")
}
