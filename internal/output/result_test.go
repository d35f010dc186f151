package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/nslv/internal/domain"
)

func sampleResult() *domain.ValuationResult {
	return &domain.ValuationResult{
		Mean:            1000.5,
		StdDev:          50.25,
		Percentiles:     domain.Percentiles{P50: 1000, P75: 1050, P90: 1090, P95: 1095, P99: 1099},
		CTE95:           900.1,
		ScenarioCount:   1000,
		ExecutionTimeMs: 123.4,
	}
}

func TestFormatJSON_RoundTripsThroughStandardDecode(t *testing.T) {
	buf, err := FormatJSON(sampleResult())
	require.NoError(t, err)

	var got JSONResult
	require.NoError(t, json.Unmarshal(buf, &got))
	require.Equal(t, 1000.5, got.Statistics.Mean)
	require.Equal(t, 1000, got.ScenarioCount)
	require.Nil(t, got.Distribution)
	require.Nil(t, got.Reserves)
}

func TestFormatJSON_OmitsDistributionWhenNil(t *testing.T) {
	buf, err := FormatJSON(sampleResult())
	require.NoError(t, err)
	require.NotContains(t, string(buf), "distribution")
}

func TestFormatJSON_IncludesDistributionWhenRetained(t *testing.T) {
	r := sampleResult()
	r.Distribution = []float64{1, 2, 3}
	buf, err := FormatJSON(r)
	require.NoError(t, err)

	var got JSONResult
	require.NoError(t, json.Unmarshal(buf, &got))
	require.Equal(t, []float64{1, 2, 3}, got.Distribution)
}

func TestFormatJSONWithReserves_IncludesReserveSchedule(t *testing.T) {
	reserves := []PolicyReserve{{PolicyID: 7, Reserves: []float64{0, 10, 0}}}
	buf, err := FormatJSONWithReserves(sampleResult(), reserves)
	require.NoError(t, err)

	var got JSONResult
	require.NoError(t, json.Unmarshal(buf, &got))
	require.Len(t, got.Reserves, 1)
	require.Equal(t, uint64(7), got.Reserves[0].PolicyID)
}

func TestFormatConsole_ContainsKeyStatistics(t *testing.T) {
	out := string(FormatConsole(sampleResult()))
	require.Contains(t, out, "Scenarios:    1000")
	require.Contains(t, out, "CTE_95:")
	require.Contains(t, out, "Elapsed:      123.4 ms")
}

func TestFormatPortfolioSummary_CountsGenderAndAgeRange(t *testing.T) {
	policies := []domain.Policy{
		{Age: 30, Gender: domain.Male, SumAssured: 100000, Premium: 1000},
		{Age: 50, Gender: domain.Female, SumAssured: 200000, Premium: 2000},
	}
	out := string(FormatPortfolioSummary(policies, nil, nil))
	require.Contains(t, out, "Policies:     2")
	require.Contains(t, out, "Male/Female:  1 / 1")
	require.Contains(t, out, "Age range:    30..50")
}

func TestFormatPortfolioSummary_EmptyPortfolioOmitsAgeRange(t *testing.T) {
	out := string(FormatPortfolioSummary(nil, nil, nil))
	require.Contains(t, out, "Policies:     0")
	require.False(t, strings.Contains(out, "Age range:"))
}
