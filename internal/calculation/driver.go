package calculation

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rgehrsitz/nslv/internal/domain"
)

// Tables bundles the three read-only assumption tables a valuation run
// shares across every worker.
type Tables struct {
	Mortality *domain.MortalityTable
	Lapse     *domain.LapseTable
	Expenses  domain.ExpenseAssumptions
}

// ValuateScenario sums ProjectPolicy over the portfolio for one
// scenario: "the per-scenario NPV is a portfolio-sum, not a mean"
// (spec.md §4.4). An empty portfolio sums to 0.
func ValuateScenario(portfolio []domain.Policy, tables Tables, scenario domain.Scenario, m Multipliers) (float64, error) {
	sum := 0.0
	for i, p := range portfolio {
		npv := ProjectPolicy(p, tables.Mortality, tables.Lapse, tables.Expenses, scenario, m, nil)
		if math.IsNaN(npv) || math.IsInf(npv, 0) {
			return 0, wrapError(KindRuntime, "projection_nonfinite",
				"projection produced a non-finite NPV", nonFiniteError{policyIndex: i})
		}
		sum += npv
	}
	return sum, nil
}

type nonFiniteError struct {
	policyIndex int
}

func (e nonFiniteError) Error() string {
	return fmt.Sprintf("non-finite NPV at policy index %d", e.policyIndex)
}

// ValuateChunk computes the per-scenario portfolio NPV for each
// scenario index in indices, in order, checking ctx for cancellation
// between scenarios (never within a single projection, per spec.md
// §4.6's cooperative cancellation contract).
func ValuateChunk(ctx context.Context, portfolio []domain.Policy, tables Tables, scenarios domain.ScenarioSet, indices []int, m Multipliers) ([]float64, error) {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		select {
		case <-ctx.Done():
			return nil, wrapError(KindRuntime, "cancelled", "valuation cancelled", ctx.Err())
		default:
		}
		v, err := ValuateScenario(portfolio, tables, scenarios.At(idx), m)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReduceStatistics reduces S scenario-level portfolio NPVs (in
// scenario-index order) to the distributional summary spec.md §3/§4.4
// requires. Degenerate input (S=0) yields all-zero statistics.
func ReduceStatistics(npvs []float64, retainDistribution bool) domain.ValuationResult {
	s := len(npvs)
	result := domain.ValuationResult{ScenarioCount: s}

	if retainDistribution {
		result.Distribution = append([]float64(nil), npvs...)
	}

	if s == 0 {
		return result
	}

	mean := 0.0
	for _, v := range npvs {
		mean += v
	}
	mean /= float64(s)
	result.Mean = mean

	variance := 0.0
	for _, v := range npvs {
		d := v - mean
		variance += d * d
	}
	variance /= float64(s)
	result.StdDev = math.Sqrt(variance)

	sorted := append([]float64(nil), npvs...)
	sort.Float64s(sorted)

	percentile := func(p float64) float64 {
		if s == 1 {
			return sorted[0]
		}
		r := (p / 100) * float64(s-1)
		lo := int(math.Floor(r))
		hi := int(math.Ceil(r))
		if lo == hi {
			return sorted[lo]
		}
		frac := r - float64(lo)
		return sorted[lo] + frac*(sorted[hi]-sorted[lo])
	}
	result.Percentiles = domain.Percentiles{
		P50: percentile(50),
		P75: percentile(75),
		P90: percentile(90),
		P95: percentile(95),
		P99: percentile(99),
	}

	k := int(math.Floor(0.05 * float64(s)))
	if k < 1 {
		k = 1
	}
	cteSum := 0.0
	for i := 0; i < k; i++ {
		cteSum += sorted[i]
	}
	result.CTE95 = cteSum / float64(k)

	return result
}
