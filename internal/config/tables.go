package config

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rgehrsitz/nslv/internal/domain"
)

// LoadMortalityCSV parses the logical mortality schema (spec.md §6):
// columns age, male, female (or male_qx/female_qx). Ages may start or
// end short of 0..120; missing ages clamp to the nearest present age,
// per the column-sparse front-end contract — the resulting flat table
// always has MortalityAges*2 entries.
func LoadMortalityCSV(r io.Reader) (*domain.MortalityTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read mortality CSV header: %w", err)
	}
	col := columnIndex(header)
	ageCol, ok := col["age"]
	if !ok {
		return nil, fmt.Errorf("mortality CSV missing required column %q", "age")
	}
	maleCol, maleOK := firstPresent(col, "male", "male_qx")
	femaleCol, femaleOK := firstPresent(col, "female", "female_qx")
	if !maleOK || !femaleOK {
		return nil, fmt.Errorf("mortality CSV missing male/female qx columns")
	}

	present := make(map[int][2]float64)
	for lineNum := 2; ; lineNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read mortality CSV line %d: %w", lineNum, err)
		}
		age, err := strconv.Atoi(record[ageCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid age: %w", lineNum, err)
		}
		male, err := strconv.ParseFloat(record[maleCol], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid male qx: %w", lineNum, err)
		}
		female, err := strconv.ParseFloat(record[femaleCol], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid female qx: %w", lineNum, err)
		}
		present[age] = [2]float64{male, female}
	}
	if len(present) == 0 {
		return nil, fmt.Errorf("mortality CSV has no data rows")
	}

	flat := fillByNearestAge(present)
	return domain.NewMortalityTable(flat)
}

func firstPresent(col map[string]int, names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := col[n]; ok {
			return i, true
		}
	}
	return 0, false
}

// fillByNearestAge expands a sparse age->(male,female) map into the
// full 0..120 flat [age*2+gender] table, clamping missing ages to the
// nearest present age below or above.
func fillByNearestAge(present map[int][2]float64) []float64 {
	ages := make([]int, 0, len(present))
	for a := range present {
		ages = append(ages, a)
	}
	for i := 0; i < len(ages); i++ {
		for j := i + 1; j < len(ages); j++ {
			if ages[j] < ages[i] {
				ages[i], ages[j] = ages[j], ages[i]
			}
		}
	}

	nearest := func(age int) int {
		best := ages[0]
		for _, a := range ages {
			if abs(a-age) < abs(best-age) {
				best = a
			}
		}
		return best
	}

	flat := make([]float64, domain.MortalityAges*2)
	for age := 0; age <= domain.MaxAge; age++ {
		v, ok := present[age]
		if !ok {
			v = present[nearest(age)]
		}
		flat[age*2+0] = v[0]
		flat[age*2+1] = v[1]
	}
	return flat
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// LoadLapseCSV parses the logical lapse schema (spec.md §6): columns year, rate.
func LoadLapseCSV(r io.Reader) (*domain.LapseTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read lapse CSV header: %w", err)
	}
	col := columnIndex(header)
	yearCol, yearOK := col["year"]
	rateCol, rateOK := col["rate"]
	if !yearOK || !rateOK {
		return nil, fmt.Errorf("lapse CSV missing required columns year, rate")
	}

	rates := make([]float64, domain.LapseYears)
	seen := make([]bool, domain.LapseYears)
	for lineNum := 2; ; lineNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read lapse CSV line %d: %w", lineNum, err)
		}
		year, err := strconv.Atoi(record[yearCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid year: %w", lineNum, err)
		}
		rate, err := strconv.ParseFloat(record[rateCol], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid rate: %w", lineNum, err)
		}
		if year < 1 || year > domain.LapseYears {
			return nil, fmt.Errorf("line %d: year %d out of range 1..%d", lineNum, year, domain.LapseYears)
		}
		rates[year-1] = rate
		seen[year-1] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("lapse CSV missing year %d", i+1)
		}
	}
	return domain.NewLapseTable(rates)
}

// expenseJSON holds the logical expense schema's four values;
// LoadExpensesJSON fills it from snake_case or camelCase keys.
type expenseJSON struct {
	PerPolicyAcquisition float64 `json:"per_policy_acquisition"`
	PerPolicyMaintenance float64 `json:"per_policy_maintenance"`
	PercentOfPremium     float64 `json:"percent_of_premium"`
	ClaimExpense         float64 `json:"claim_expense"`
}

// LoadExpensesJSON parses the logical expense schema as JSON.
func LoadExpensesJSON(r io.Reader) (domain.ExpenseAssumptions, error) {
	var raw map[string]float64
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return domain.ExpenseAssumptions{}, fmt.Errorf("decode expense JSON: %w", err)
	}
	var e expenseJSON
	for key, v := range raw {
		switch strings.ToLower(strings.ReplaceAll(key, "_", "")) {
		case "perpolicyacquisition":
			e.PerPolicyAcquisition = v
		case "perpolicymaintenance":
			e.PerPolicyMaintenance = v
		case "percentofpremium":
			e.PercentOfPremium = v
		case "claimexpense":
			e.ClaimExpense = v
		}
	}
	out := domain.ExpenseAssumptions{
		PerPolicyAcquisition: e.PerPolicyAcquisition,
		PerPolicyMaintenance: e.PerPolicyMaintenance,
		PercentOfPremium:     e.PercentOfPremium,
		PerClaim:             e.ClaimExpense,
	}
	if err := out.Validate(); err != nil {
		return domain.ExpenseAssumptions{}, err
	}
	return out, nil
}

// LoadExpensesCSV parses the logical expense schema as CSV rows of
// parameter,value with keys per_policy_acquisition, per_policy_maintenance,
// percent_of_premium, claim_expense.
func LoadExpensesCSV(r io.Reader) (domain.ExpenseAssumptions, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return domain.ExpenseAssumptions{}, fmt.Errorf("read expense CSV header: %w", err)
	}
	col := columnIndex(header)
	paramCol, paramOK := col["parameter"]
	valueCol, valueOK := col["value"]
	if !paramOK || !valueOK {
		return domain.ExpenseAssumptions{}, fmt.Errorf("expense CSV missing required columns parameter, value")
	}

	var out domain.ExpenseAssumptions
	for lineNum := 2; ; lineNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.ExpenseAssumptions{}, fmt.Errorf("read expense CSV line %d: %w", lineNum, err)
		}
		value, err := strconv.ParseFloat(record[valueCol], 64)
		if err != nil {
			return domain.ExpenseAssumptions{}, fmt.Errorf("line %d: invalid value: %w", lineNum, err)
		}
		switch record[paramCol] {
		case "per_policy_acquisition":
			out.PerPolicyAcquisition = value
		case "per_policy_maintenance":
			out.PerPolicyMaintenance = value
		case "percent_of_premium":
			out.PercentOfPremium = value
		case "claim_expense":
			out.PerClaim = value
		default:
			return domain.ExpenseAssumptions{}, fmt.Errorf("line %d: unrecognized expense parameter %q", lineNum, record[paramCol])
		}
	}
	if err := out.Validate(); err != nil {
		return domain.ExpenseAssumptions{}, err
	}
	return out, nil
}
