package calculation

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rgehrsitz/nslv/internal/domain"
	"github.com/rgehrsitz/nslv/pkg/rng"
)

// HistoricalRateSeries holds a year-indexed series of observed annual
// interest rates, loaded once per run and sampled from without
// mutation by the bootstrap generator below.
type HistoricalRateSeries struct {
	years []int
	rates []float64
}

// LoadHistoricalRatesCSV parses a two-column year,rate CSV into a
// HistoricalRateSeries, in the same hand-rolled encoding/csv style the
// internal/config front-ends use.
func LoadHistoricalRatesCSV(r io.Reader) (*HistoricalRateSeries, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read historical rate CSV header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("historical rate CSV: expected at least 2 columns, got %d", len(header))
	}

	series := &HistoricalRateSeries{}
	for lineNum := 2; ; lineNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read historical rate CSV line %d: %w", lineNum, err)
		}
		year, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid year: %w", lineNum, err)
		}
		rate, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid rate: %w", lineNum, err)
		}
		series.years = append(series.years, year)
		series.rates = append(series.rates, rate)
	}
	if len(series.rates) == 0 {
		return nil, fmt.Errorf("historical rate CSV has no data rows")
	}
	return series, nil
}

// Len returns the number of observed annual rates in the series.
func (s *HistoricalRateSeries) Len() int {
	return len(s.rates)
}

// GenerateBootstrapScenario draws domain.ProjectionYears independent
// samples (with replacement) from the observed series to build one
// scenario, an alternative to the GBM generator (C4) that shares its
// ScenarioSet output contract, so C5/C6/C7 are unaffected by which
// generator produced the rates. The draw is deterministic in
// (seed, index) via the same PCG32 stream derivation the GBM
// generator uses, so historical-bootstrap runs are reproducible too.
func (s *HistoricalRateSeries) GenerateBootstrapScenario(index int, seed uint64) (domain.Scenario, error) {
	if s.Len() == 0 {
		return domain.Scenario{}, fmt.Errorf("historical rate series is empty")
	}
	stream := rng.Stream(seed, index)
	rates := make([]float64, domain.ProjectionYears)
	for k := 0; k < domain.ProjectionYears; k++ {
		draw := int(stream.Float64() * float64(s.Len()))
		if draw >= s.Len() {
			draw = s.Len() - 1
		}
		rates[k] = s.rates[draw]
	}
	return domain.NewScenario(rates)
}

// GenerateBootstrapScenarioSet produces count scenarios by independent
// bootstrap draws from the series, generated single-threaded and in
// index order for the same worker-count independence GenerateScenarioSet provides.
func (s *HistoricalRateSeries) GenerateBootstrapScenarioSet(count int, seed uint64) (domain.ScenarioSet, error) {
	scenarios := make([]domain.Scenario, count)
	for i := 0; i < count; i++ {
		sc, err := s.GenerateBootstrapScenario(i, seed)
		if err != nil {
			return domain.ScenarioSet{}, err
		}
		scenarios[i] = sc
	}
	return domain.NewScenarioSet(scenarios), nil
}
