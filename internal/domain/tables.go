package domain

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MortalityAges is the number of ages covered by a MortalityTable, 0..120 inclusive.
const MortalityAges = MaxAge + 1

// MortalityTableSize is the fixed wire size of a serialized MortalityTable:
// 121 ages * 2 genders * 8 bytes.
const MortalityTableSize = MortalityAges * 2 * 8

// LapseYears is the number of policy years a LapseTable covers.
const LapseYears = 50

// LapseTableSize is the fixed wire size of a serialized LapseTable: 50 * 8 bytes.
const LapseTableSize = LapseYears * 8

// ExpenseTableSize is the fixed wire size of serialized ExpenseAssumptions: 4 * 8 bytes.
const ExpenseTableSize = 4 * 8

// MortalityTable is a two-dimensional lookup of probability of death
// within one policy year, indexed by clamped age and gender.
type MortalityTable struct {
	// qx is flattened [age*2 + gender], age in 0..120, gender 0=male, 1=female.
	qx [MortalityAges * 2]float64
}

// NewMortalityTable builds a table from a flat [age*2+gender] slice of
// length MortalityAges*2.
func NewMortalityTable(flat []float64) (*MortalityTable, error) {
	if len(flat) != MortalityAges*2 {
		return nil, fmt.Errorf("mortality table: expected %d entries, got %d", MortalityAges*2, len(flat))
	}
	t := &MortalityTable{}
	copy(t.qx[:], flat)
	for i, p := range t.qx {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("mortality table: entry %d is %g, not a probability in [0,1]", i, p)
		}
	}
	return t, nil
}

func clampAge(age int) int {
	if age < 0 {
		return 0
	}
	if age > MaxAge {
		return MaxAge
	}
	return age
}

// Qx returns the base probability of death within one policy year for
// the given age and gender. Out-of-range ages clamp to the table's extremes.
func (t *MortalityTable) Qx(age int, gender Gender) float64 {
	return t.qx[clampAge(age)*2+int(gender)]
}

// QxStressed returns Qx(age, gender) * multiplier, capped at 1.0 so a
// stressed probability never exceeds certainty.
func (t *MortalityTable) QxStressed(age int, gender Gender, multiplier float64) float64 {
	return math.Min(1.0, t.Qx(age, gender)*multiplier)
}

// MarshalBinary writes the 1,936-byte wire form: 121 ages x 2 genders x f64.
func (t *MortalityTable) MarshalBinary() ([]byte, error) {
	buf := make([]byte, MortalityTableSize)
	for i, v := range t.qx {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], math.Float64bits(v))
	}
	return buf, nil
}

// UnmarshalMortalityTable parses the 1,936-byte wire form.
func UnmarshalMortalityTable(buf []byte) (*MortalityTable, error) {
	if len(buf) < MortalityTableSize {
		return nil, fmt.Errorf("mortality table too short: got %d bytes, want %d", len(buf), MortalityTableSize)
	}
	flat := make([]float64, MortalityAges*2)
	for i := range flat {
		flat[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8 : i*8+8]))
	}
	return NewMortalityTable(flat)
}

// LapseTable is a one-dimensional lookup of probability of voluntary
// lapse within policy year k, k in 1..50.
type LapseTable struct {
	rates [LapseYears]float64
}

// NewLapseTable builds a table from a slice of length LapseYears, indexed by year-1.
func NewLapseTable(rates []float64) (*LapseTable, error) {
	if len(rates) != LapseYears {
		return nil, fmt.Errorf("lapse table: expected %d entries, got %d", LapseYears, len(rates))
	}
	t := &LapseTable{}
	copy(t.rates[:], rates)
	for i, p := range t.rates {
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("lapse table: entry %d (year %d) is %g, not a probability in [0,1]", i, i+1, p)
		}
	}
	return t, nil
}

func clampYear(year int) int {
	if year < 1 {
		return 1
	}
	if year > LapseYears {
		return LapseYears
	}
	return year
}

// Lapse returns the base probability of voluntary lapse in policy year.
// Out-of-range years clamp to the table's extremes.
func (t *LapseTable) Lapse(year int) float64 {
	return t.rates[clampYear(year)-1]
}

// LapseStressed returns Lapse(year) * multiplier, capped at 1.0.
func (t *LapseTable) LapseStressed(year int, multiplier float64) float64 {
	return math.Min(1.0, t.Lapse(year)*multiplier)
}

// MarshalBinary writes the 400-byte wire form: 50 years x f64, indexed by year-1.
func (t *LapseTable) MarshalBinary() ([]byte, error) {
	buf := make([]byte, LapseTableSize)
	for i, v := range t.rates {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], math.Float64bits(v))
	}
	return buf, nil
}

// UnmarshalLapseTable parses the 400-byte wire form.
func UnmarshalLapseTable(buf []byte) (*LapseTable, error) {
	if len(buf) < LapseTableSize {
		return nil, fmt.Errorf("lapse table too short: got %d bytes, want %d", len(buf), LapseTableSize)
	}
	rates := make([]float64, LapseYears)
	for i := range rates {
		rates[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8 : i*8+8]))
	}
	return NewLapseTable(rates)
}

// ExpenseAssumptions holds the four non-negative expense constants.
type ExpenseAssumptions struct {
	PerPolicyAcquisition float64
	PerPolicyMaintenance float64
	PercentOfPremium     float64
	PerClaim             float64
}

// Validate rejects negative constants.
func (e ExpenseAssumptions) Validate() error {
	for name, v := range map[string]float64{
		"per_policy_acquisition": e.PerPolicyAcquisition,
		"per_policy_maintenance": e.PerPolicyMaintenance,
		"percent_of_premium":     e.PercentOfPremium,
		"per_claim":              e.PerClaim,
	} {
		if v < 0 {
			return fmt.Errorf("expense assumption %s must be non-negative, got %g", name, v)
		}
	}
	return nil
}

// Stressed returns a copy of e with all four constants scaled by multiplier.
func (e ExpenseAssumptions) Stressed(multiplier float64) ExpenseAssumptions {
	return ExpenseAssumptions{
		PerPolicyAcquisition: e.PerPolicyAcquisition * multiplier,
		PerPolicyMaintenance: e.PerPolicyMaintenance * multiplier,
		PercentOfPremium:     e.PercentOfPremium * multiplier,
		PerClaim:             e.PerClaim * multiplier,
	}
}

// MarshalBinary writes the 32-byte wire form, in order acquisition,
// maintenance, percent_of_premium, per_claim.
func (e ExpenseAssumptions) MarshalBinary() ([]byte, error) {
	buf := make([]byte, ExpenseTableSize)
	vals := [4]float64{e.PerPolicyAcquisition, e.PerPolicyMaintenance, e.PercentOfPremium, e.PerClaim}
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], math.Float64bits(v))
	}
	return buf, nil
}

// UnmarshalExpenseAssumptions parses the 32-byte wire form.
func UnmarshalExpenseAssumptions(buf []byte) (ExpenseAssumptions, error) {
	if len(buf) < ExpenseTableSize {
		return ExpenseAssumptions{}, fmt.Errorf("expense constants too short: got %d bytes, want %d", len(buf), ExpenseTableSize)
	}
	read := func(i int) float64 {
		return math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8 : i*8+8]))
	}
	return ExpenseAssumptions{
		PerPolicyAcquisition: read(0),
		PerPolicyMaintenance: read(1),
		PercentOfPremium:     read(2),
		PerClaim:             read(3),
	}, nil
}
