package calculation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/nslv/internal/domain"
)

func flatScenario(t *testing.T, rate float64) domain.Scenario {
	rates := make([]float64, domain.ProjectionYears)
	for i := range rates {
		rates[i] = rate
	}
	s, err := domain.NewScenario(rates)
	require.NoError(t, err)
	return s
}

func singleRateMortality(t *testing.T, age int, qx float64) *domain.MortalityTable {
	flat := make([]float64, domain.MortalityAges*2)
	flat[age*2+0] = qx
	flat[age*2+1] = qx
	table, err := domain.NewMortalityTable(flat)
	require.NoError(t, err)
	return table
}

func lapseRates(t *testing.T, byYear map[int]float64) *domain.LapseTable {
	rates := make([]float64, domain.LapseYears)
	for y, r := range byYear {
		rates[y-1] = r
	}
	table, err := domain.NewLapseTable(rates)
	require.NoError(t, err)
	return table
}

// TestProjectPolicy_SingleDeterministicPolicy is spec.md §8 scenario 1.
func TestProjectPolicy_SingleDeterministicPolicy(t *testing.T) {
	p := domain.Policy{
		Age:         40,
		Gender:      domain.Male,
		SumAssured:  100000,
		Premium:     1000,
		Term:        1,
		ProductType: domain.ProductTerm,
	}
	mortality := singleRateMortality(t, 40, 0.001)
	lapse := lapseRates(t, nil)
	scenario := flatScenario(t, 0.05)

	npv := ProjectPolicy(p, mortality, lapse, domain.ExpenseAssumptions{}, scenario, IdentityMultipliers(), nil)
	require.InDelta(t, 857.1428, npv, 0.01)
}

// TestProjectPolicy_TwoYearHandCalculated is spec.md §8 scenario 2.
func TestProjectPolicy_TwoYearHandCalculated(t *testing.T) {
	p := domain.Policy{
		Age:        40,
		Gender:     domain.Male,
		SumAssured: 100000,
		Premium:    1000,
		Term:       2,
	}
	flat := make([]float64, domain.MortalityAges*2)
	flat[40*2] = 0.001
	flat[41*2] = 0.0011
	mortality, err := domain.NewMortalityTable(flat)
	require.NoError(t, err)
	lapse := lapseRates(t, map[int]float64{1: 0.05, 2: 0.04})
	scenario := flatScenario(t, 0.05)

	// Hand computation following the strict decrement ordering.
	lives := 1.0
	d1 := 0.1 / 100 * lives
	survAfterDeath1 := lives * (1 - 0.001)
	l1 := survAfterDeath1 * 0.05
	lives1End := survAfterDeath1 - l1
	cf1 := lives*1000 - d1*100000
	pv1 := cf1 / 1.05

	d2 := lives1End * 0.0011
	survAfterDeath2 := lives1End * (1 - 0.0011)
	l2 := survAfterDeath2 * 0.04
	cf2 := lives1End*1000 - d2*100000
	pv2 := cf2 / (1.05 * 1.05)
	_ = l2

	want := pv1 + pv2
	got := ProjectPolicy(p, mortality, lapse, domain.ExpenseAssumptions{}, scenario, IdentityMultipliers(), nil)
	require.InEpsilon(t, want, got, 0.0001)
}

// TestProjectPolicy_StressMultiplierCap is spec.md §8 scenario 3.
func TestProjectPolicy_StressMultiplierCap(t *testing.T) {
	p := domain.Policy{Age: 80, Gender: domain.Male, SumAssured: 1, Term: 1}
	mortality := singleRateMortality(t, 80, 0.8)
	lapse := lapseRates(t, nil)
	scenario := flatScenario(t, 0.0)

	detail := make([]YearDetail, 1)
	ProjectPolicy(p, mortality, lapse, domain.ExpenseAssumptions{}, scenario, Multipliers{Mortality: 2.0, Lapse: 1, Expense: 1}, detail)
	require.InDelta(t, 1.0, detail[0].Deaths, 1e-12)
}

func TestProjectPolicy_ZeroTermIsZeroNPV(t *testing.T) {
	p := domain.Policy{Term: 0}
	mortality := singleRateMortality(t, 0, 0)
	lapse := lapseRates(t, nil)
	scenario := flatScenario(t, 0.05)
	npv := ProjectPolicy(p, mortality, lapse, domain.ExpenseAssumptions{}, scenario, IdentityMultipliers(), nil)
	require.Equal(t, 0.0, npv)
}

func TestProjectPolicy_LivesMonotonicNonIncreasing(t *testing.T) {
	p := domain.Policy{Age: 30, SumAssured: 1000, Premium: 100, Term: 20}
	mortality := singleRateMortality(t, 30, 0.02)
	lapse := lapseRates(t, map[int]float64{1: 0.1})
	scenario := flatScenario(t, 0.03)

	detail := make([]YearDetail, 20)
	ProjectPolicy(p, mortality, lapse, domain.ExpenseAssumptions{}, scenario, IdentityMultipliers(), detail)

	prev := 1.0
	for _, d := range detail {
		require.LessOrEqual(t, d.Lives, prev+1e-12)
		require.GreaterOrEqual(t, d.Lives, 0.0)
		prev = d.Lives
	}
}
