package calculation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/nslv/internal/domain"
)

// TestReduceStatistics_PercentileAndCTESanity is spec.md §8 scenario 5.
func TestReduceStatistics_PercentileAndCTESanity(t *testing.T) {
	npvs := make([]float64, 100)
	for i := range npvs {
		npvs[i] = float64(100 - i) // 100, 99, ..., 1
	}

	result := ReduceStatistics(npvs, false)
	require.Equal(t, 100, result.ScenarioCount)
	require.InDelta(t, 50.5, result.Mean, 1e-9)
	require.InDelta(t, 50.5, result.Percentiles.P50, 1e-9)
	require.InDelta(t, 95.05, result.Percentiles.P95, 1e-9)
	require.InDelta(t, 3.0, result.CTE95, 1e-9)
	require.Nil(t, result.Distribution)
}

func TestReduceStatistics_RetainsDistributionWhenRequested(t *testing.T) {
	npvs := []float64{1, 2, 3}
	result := ReduceStatistics(npvs, true)
	require.Equal(t, npvs, result.Distribution)
}

func TestReduceStatistics_EmptyIsDegenerateZero(t *testing.T) {
	result := ReduceStatistics(nil, false)
	require.Equal(t, 0, result.ScenarioCount)
	require.Equal(t, 0.0, result.Mean)
	require.Equal(t, 0.0, result.CTE95)
}

func TestReduceStatistics_SingleScenarioAllPercentilesEqual(t *testing.T) {
	result := ReduceStatistics([]float64{42}, false)
	require.Equal(t, 42.0, result.Percentiles.P50)
	require.Equal(t, 42.0, result.Percentiles.P99)
	require.Equal(t, 42.0, result.CTE95)
}

func testTables(t *testing.T) Tables {
	flat := make([]float64, domain.MortalityAges*2)
	flat[40*2] = 0.001
	flat[40*2+1] = 0.001
	mortality, err := domain.NewMortalityTable(flat)
	require.NoError(t, err)
	lapse, err := domain.NewLapseTable(make([]float64, domain.LapseYears))
	require.NoError(t, err)
	return Tables{Mortality: mortality, Lapse: lapse, Expenses: domain.ExpenseAssumptions{}}
}

func TestValuateScenario_SumsAcrossPortfolio(t *testing.T) {
	portfolio := []domain.Policy{
		{Age: 40, SumAssured: 100000, Premium: 1000, Term: 1},
		{Age: 40, SumAssured: 100000, Premium: 1000, Term: 1},
	}
	rates := make([]float64, domain.ProjectionYears)
	for i := range rates {
		rates[i] = 0.05
	}
	scenario, err := domain.NewScenario(rates)
	require.NoError(t, err)

	single, err := ValuateScenario(portfolio[:1], testTables(t), scenario, IdentityMultipliers())
	require.NoError(t, err)
	both, err := ValuateScenario(portfolio, testTables(t), scenario, IdentityMultipliers())
	require.NoError(t, err)
	require.InDelta(t, 2*single, both, 1e-9)
}

func TestValuateScenario_EmptyPortfolioIsZero(t *testing.T) {
	rates := make([]float64, domain.ProjectionYears)
	scenario, err := domain.NewScenario(rates)
	require.NoError(t, err)
	sum, err := ValuateScenario(nil, testTables(t), scenario, IdentityMultipliers())
	require.NoError(t, err)
	require.Equal(t, 0.0, sum)
}

func TestValuateChunk_RespectsCancellation(t *testing.T) {
	portfolio := []domain.Policy{{Age: 40, SumAssured: 1000, Premium: 10, Term: 1}}
	set, err := GenerateScenarioSet(5, ScenarioParams{InitialRate: 0.03, MinRate: 0, MaxRate: 1}, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ValuateChunk(ctx, portfolio, testTables(t), set, []int{0, 1, 2}, IdentityMultipliers())
	require.Error(t, err)
}

func TestValuateChunk_OrdersOutputByIndices(t *testing.T) {
	portfolio := []domain.Policy{{Age: 40, SumAssured: 1000, Premium: 10, Term: 1}}
	set, err := GenerateScenarioSet(3, ScenarioParams{InitialRate: 0.03, MinRate: 0, MaxRate: 1}, 1)
	require.NoError(t, err)

	out, err := ValuateChunk(context.Background(), portfolio, testTables(t), set, []int{2, 0, 1}, IdentityMultipliers())
	require.NoError(t, err)
	require.Len(t, out, 3)

	want0, err := ValuateScenario(portfolio, testTables(t), set.At(2), IdentityMultipliers())
	require.NoError(t, err)
	require.Equal(t, want0, out[0])
}
