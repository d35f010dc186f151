package output

import (
	"bytes"
	"fmt"

	"github.com/rgehrsitz/nslv/internal/domain"
	"github.com/rgehrsitz/nslv/pkg/money"
)

// FormatConsole renders a concise human-readable summary of a
// ValuationResult, in the teacher's ConsoleFormatter style.
func FormatConsole(r *domain.ValuationResult) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "VALUATION SUMMARY")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Scenarios:    %d\n", r.ScenarioCount)
	fmt.Fprintf(&buf, "Mean NPV:     %s\n", FormatCurrency(money.New(r.Mean)))
	fmt.Fprintf(&buf, "StdDev:       %s\n", FormatCurrency(money.New(r.StdDev)))
	fmt.Fprintf(&buf, "P50:          %s\n", FormatCurrency(money.New(r.Percentiles.P50)))
	fmt.Fprintf(&buf, "P75:          %s\n", FormatCurrency(money.New(r.Percentiles.P75)))
	fmt.Fprintf(&buf, "P90:          %s\n", FormatCurrency(money.New(r.Percentiles.P90)))
	fmt.Fprintf(&buf, "P95:          %s\n", FormatCurrency(money.New(r.Percentiles.P95)))
	fmt.Fprintf(&buf, "P99:          %s\n", FormatCurrency(money.New(r.Percentiles.P99)))
	fmt.Fprintf(&buf, "CTE_95:       %s\n", FormatCurrency(money.New(r.CTE95)))
	fmt.Fprintf(&buf, "Elapsed:      %.1f ms\n", r.ExecutionTimeMs)
	return buf.Bytes()
}

// FormatPortfolioSummary renders the `inspect` subcommand's
// policy/table overview without running a valuation.
func FormatPortfolioSummary(policies []domain.Policy, mortality *domain.MortalityTable, lapse *domain.LapseTable) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "PORTFOLIO SUMMARY")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Policies:     %d\n", len(policies))

	var males, females int
	var minAge, maxAge = 200, -1
	var sumAssured, premium float64
	for _, p := range policies {
		if p.Gender == domain.Male {
			males++
		} else {
			females++
		}
		age := int(p.Age)
		if age < minAge {
			minAge = age
		}
		if age > maxAge {
			maxAge = age
		}
		sumAssured += p.SumAssured
		premium += p.Premium
	}
	fmt.Fprintf(&buf, "Male/Female:  %d / %d\n", males, females)
	if len(policies) > 0 {
		fmt.Fprintf(&buf, "Age range:    %d..%d\n", minAge, maxAge)
	}
	fmt.Fprintf(&buf, "Total SA:     %s\n", FormatCurrency(money.New(sumAssured)))
	fmt.Fprintf(&buf, "Total premium:%s\n", FormatCurrency(money.New(premium)))
	if mortality != nil {
		fmt.Fprintf(&buf, "Mortality:    qx(40,M)=%.6f qx(40,F)=%.6f\n", mortality.Qx(40, domain.Male), mortality.Qx(40, domain.Female))
	}
	if lapse != nil {
		fmt.Fprintf(&buf, "Lapse:        year1=%.6f year10=%.6f\n", lapse.Lapse(1), lapse.Lapse(10))
	}
	return buf.Bytes()
}
