package calculation

import "github.com/rgehrsitz/nslv/internal/domain"

// NetPremium computes the level annual net premium for a policy under
// a flat valuation rate, via the equivalence principle: the present
// value of expected future premiums equals the present value of the
// expected future death benefit. This is a diagnostic companion to
// the NPV kernel, not a reserving regime — it ignores lapse, expenses,
// and surrender, matching the classical actuarial net-premium
// definition rather than the gross cash-flow projection of §4.3.
func NetPremium(p domain.Policy, mortality *domain.MortalityTable, rate float64) float64 {
	term := p.ClampedTerm()
	if term == 0 {
		return 0
	}

	var pvDeathBenefit, pvPremiumAnnuity float64
	survival := 1.0
	for t := 0; t < term; t++ {
		q := mortality.Qx(p.ClampedAge()+t, p.Gender)

		pvDeathBenefit += survival * q * discountFactor(rate, t+1) * p.SumAssured
		pvPremiumAnnuity += survival * discountFactor(rate, t)

		survival *= 1 - q
	}
	if pvPremiumAnnuity == 0 {
		return 0
	}
	return pvDeathBenefit / pvPremiumAnnuity
}

// NetPremiumReserves computes the net premium reserve at the end of
// each policy year 0..term, where the reserve at time t is the
// expected present value of future benefits minus future net premiums
// evaluated from age+t with the remaining term. Reserve at maturity is 0.
func NetPremiumReserves(p domain.Policy, mortality *domain.MortalityTable, rate float64, netPremium float64) []float64 {
	term := p.ClampedTerm()
	reserves := make([]float64, term+1)

	for t := 0; t <= term; t++ {
		if t == term {
			reserves[t] = 0
			continue
		}

		var futureDeathBenefit, futurePremiums float64
		survival := 1.0
		remaining := term - t
		for i := 0; i < remaining; i++ {
			q := mortality.Qx(p.ClampedAge()+t+i, p.Gender)

			futureDeathBenefit += survival * q * discountFactor(rate, i+1) * p.SumAssured
			futurePremiums += survival * discountFactor(rate, i)

			survival *= 1 - q
		}
		reserves[t] = futureDeathBenefit - netPremium*futurePremiums
	}
	return reserves
}

func discountFactor(rate float64, years int) float64 {
	df := 1.0
	for i := 0; i < years; i++ {
		df /= 1 + rate
	}
	return df
}
