package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func flatMortality(fill float64) []float64 {
	flat := make([]float64, MortalityAges*2)
	for i := range flat {
		flat[i] = fill
	}
	return flat
}

func TestMortalityTableRoundTrip(t *testing.T) {
	flat := flatMortality(0)
	flat[40*2+0] = 0.001
	flat[40*2+1] = 0.0008
	table, err := NewMortalityTable(flat)
	require.NoError(t, err)

	buf, err := table.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, buf, MortalityTableSize)

	got, err := UnmarshalMortalityTable(buf)
	require.NoError(t, err)
	require.Equal(t, 0.001, got.Qx(40, Male))
	require.Equal(t, 0.0008, got.Qx(40, Female))
}

func TestMortalityTableRejectsOutOfRangeProbability(t *testing.T) {
	flat := flatMortality(0)
	flat[0] = 1.5
	_, err := NewMortalityTable(flat)
	require.Error(t, err)
}

func TestMortalityTableClampsAge(t *testing.T) {
	flat := flatMortality(0)
	flat[0*2+0] = 0.25
	flat[MaxAge*2+0] = 0.5
	table, err := NewMortalityTable(flat)
	require.NoError(t, err)
	require.Equal(t, 0.5, table.Qx(500, Male))
	require.Equal(t, 0.25, table.Qx(-10, Male))
}

func TestMortalityTableStressCapsAtOne(t *testing.T) {
	flat := flatMortality(0)
	flat[80*2+0] = 0.8
	table, err := NewMortalityTable(flat)
	require.NoError(t, err)
	require.Equal(t, 1.0, table.QxStressed(80, Male, 2.0))
}

func TestLapseTableRoundTrip(t *testing.T) {
	rates := make([]float64, LapseYears)
	rates[0] = 0.05
	rates[49] = 0.02
	table, err := NewLapseTable(rates)
	require.NoError(t, err)

	buf, err := table.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, buf, LapseTableSize)

	got, err := UnmarshalLapseTable(buf)
	require.NoError(t, err)
	require.Equal(t, 0.05, got.Lapse(1))
	require.Equal(t, 0.02, got.Lapse(50))
}

func TestLapseTableStressCapsAtOne(t *testing.T) {
	rates := make([]float64, LapseYears)
	rates[0] = 0.6
	table, err := NewLapseTable(rates)
	require.NoError(t, err)
	require.Equal(t, 1.0, table.LapseStressed(1, 2.0))
}

func TestExpenseAssumptionsRoundTrip(t *testing.T) {
	e := ExpenseAssumptions{
		PerPolicyAcquisition: 100,
		PerPolicyMaintenance: 25,
		PercentOfPremium:     0.05,
		PerClaim:             500,
	}
	buf, err := e.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, buf, ExpenseTableSize)

	got, err := UnmarshalExpenseAssumptions(buf)
	require.NoError(t, err)
	require.Equal(t, e, got)
}

func TestExpenseAssumptionsValidateNegative(t *testing.T) {
	e := ExpenseAssumptions{PerPolicyAcquisition: -1}
	require.Error(t, e.Validate())
}

func TestExpenseAssumptionsStressed(t *testing.T) {
	e := ExpenseAssumptions{PerPolicyAcquisition: 100, PerPolicyMaintenance: 10, PercentOfPremium: 0.1, PerClaim: 50}
	s := e.Stressed(2.0)
	require.Equal(t, 200.0, s.PerPolicyAcquisition)
	require.Equal(t, 20.0, s.PerPolicyMaintenance)
	require.Equal(t, 0.2, s.PercentOfPremium)
	require.Equal(t, 100.0, s.PerClaim)
}
