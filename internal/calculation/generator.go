package calculation

import (
	"fmt"
	"math"

	"github.com/rgehrsitz/nslv/internal/domain"
	"github.com/rgehrsitz/nslv/pkg/rng"
)

// ScenarioParams configures the seeded GBM scenario generator.
type ScenarioParams struct {
	InitialRate float64
	Drift       float64
	Volatility  float64
	MinRate     float64
	MaxRate     float64
}

// Validate rejects a configuration the generator cannot honor.
func (p ScenarioParams) Validate() error {
	if p.Volatility < 0 {
		return fmt.Errorf("scenario params: volatility must be non-negative, got %g", p.Volatility)
	}
	if p.MinRate > p.MaxRate {
		return fmt.Errorf("scenario params: min_rate %g exceeds max_rate %g", p.MinRate, p.MaxRate)
	}
	return nil
}

func clampRate(r, min, max float64) float64 {
	if r < min {
		return min
	}
	if r > max {
		return max
	}
	return r
}

// GenerateScenario produces the one scenario at the given index for
// (params, seed). Each scenario index owns an independent PCG32
// stream derived from (seed, index) via pkg/rng.Stream, so the set of
// rates for a given index never changes when scenarios are generated
// by a different worker count or in a different order — only the
// single-threaded driver generates the full set, but the per-index
// derivation is what keeps that generation commutative.
func GenerateScenario(index int, params ScenarioParams, seed uint64) (domain.Scenario, error) {
	if err := params.Validate(); err != nil {
		return domain.Scenario{}, err
	}
	stream := rng.Stream(seed, index)

	rates := make([]float64, domain.ProjectionYears)
	r := params.InitialRate
	drift := params.Drift - 0.5*params.Volatility*params.Volatility
	for k := 0; k < domain.ProjectionYears; k++ {
		z := stream.NormFloat64()
		r = r * math.Exp(drift+params.Volatility*z)
		r = clampRate(r, params.MinRate, params.MaxRate)
		rates[k] = r
	}
	return domain.NewScenario(rates)
}

// GenerateScenarioSet produces count scenarios for (params, seed),
// generated single-threaded and in index order so the result is the
// canonical, worker-count-independent set the driver passes to workers
// by index (spec.md §4.6).
func GenerateScenarioSet(count int, params ScenarioParams, seed uint64) (domain.ScenarioSet, error) {
	scenarios := make([]domain.Scenario, count)
	for i := 0; i < count; i++ {
		s, err := GenerateScenario(i, params, seed)
		if err != nil {
			return domain.ScenarioSet{}, err
		}
		scenarios[i] = s
	}
	return domain.NewScenarioSet(scenarios), nil
}
