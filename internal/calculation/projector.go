package calculation

import "github.com/rgehrsitz/nslv/internal/domain"

// minLives is the in-force threshold below which remaining contributions
// are numerically negligible and the projection exits early.
const minLives = 1e-12

// Multipliers carries the stress factors applied to the assumption
// tables for one valuation run.
type Multipliers struct {
	Mortality float64
	Lapse     float64
	Expense   float64
}

// IdentityMultipliers returns the unstressed baseline (all 1.0), the
// multiplier set spec.md requires to reproduce the unstressed result
// to within ULP.
func IdentityMultipliers() Multipliers {
	return Multipliers{Mortality: 1, Lapse: 1, Expense: 1}
}

// YearDetail captures one projection year's intermediate values, for
// the optional detailed-mode output. It is not populated on the
// scalar hot path.
type YearDetail struct {
	Lives          float64
	Premium        float64
	Deaths         float64
	Lapses         float64
	Expenses       float64
	PVContribution float64
}

// ProjectPolicy computes the NPV of one policy under one scenario,
// per spec.md §4.3's year-by-year decrement, cash-flow, and discount
// loop. detail, if non-nil, receives one entry per projected year, for
// as many years as it has room; entries beyond the policy's run length
// are left untouched.
func ProjectPolicy(
	p domain.Policy,
	mortality *domain.MortalityTable,
	lapse *domain.LapseTable,
	expenses domain.ExpenseAssumptions,
	scenario domain.Scenario,
	m Multipliers,
	detail []YearDetail,
) float64 {
	term := p.ClampedTerm()
	if term == 0 {
		return 0
	}

	expenses = expenses.Stressed(m.Expense)

	lives := 1.0
	npv := 0.0

	for k := 1; k <= term; k++ {
		if lives < minLives {
			break
		}

		livesStart := lives

		q := mortality.QxStressed(int(p.Age)+k-1, p.Gender, m.Mortality)
		expectedDeaths := lives * q
		survivorsAfterDeath := lives - expectedDeaths

		l := lapse.LapseStressed(k, m.Lapse)
		expectedLapses := survivorsAfterDeath * l
		livesEnd := survivorsAfterDeath - expectedLapses

		premiumIncome := lives * p.Premium
		deathBenefits := -expectedDeaths * p.SumAssured
		surrenderBenefits := -expectedLapses * p.ProductType.SurrenderValue(k)

		expenseOutflow := -lives*expenses.PerPolicyMaintenance -
			lives*p.Premium*expenses.PercentOfPremium -
			expectedDeaths*expenses.PerClaim
		if k == 1 {
			expenseOutflow -= livesStart * expenses.PerPolicyAcquisition
		}

		netCashFlow := premiumIncome + deathBenefits + surrenderBenefits + expenseOutflow
		pvContribution := netCashFlow * scenario.CumulativeDiscountFactor(k)
		npv += pvContribution

		if detail != nil && k-1 < len(detail) {
			detail[k-1] = YearDetail{
				Lives:          livesStart,
				Premium:        premiumIncome,
				Deaths:         expectedDeaths,
				Lapses:         expectedLapses,
				Expenses:       -expenseOutflow,
				PVContribution: pvContribution,
			}
		}

		lives = livesEnd
	}

	return npv
}
