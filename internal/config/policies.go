package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rgehrsitz/nslv/internal/domain"
	"github.com/rgehrsitz/nslv/pkg/money"
)

// LoadPoliciesCSV parses the logical policy schema (spec.md §6):
// policy_id, age, gender, sum_assured, premium, term, product_type.
func LoadPoliciesCSV(r io.Reader) ([]domain.Policy, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read policy CSV header: %w", err)
	}
	col := columnIndex(header)

	required := []string{"policy_id", "age", "gender", "sum_assured", "premium", "term"}
	for _, c := range required {
		if _, ok := col[c]; !ok {
			return nil, fmt.Errorf("policy CSV missing required column %q", c)
		}
	}

	var policies []domain.Policy
	for lineNum := 2; ; lineNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read policy CSV line %d: %w", lineNum, err)
		}

		policyID, err := strconv.ParseUint(record[col["policy_id"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid policy_id: %w", lineNum, err)
		}
		age, err := strconv.ParseUint(record[col["age"]], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid age: %w", lineNum, err)
		}
		gender, err := domain.ParseGender(record[col["gender"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		sumAssured, err := money.Parse(record[col["sum_assured"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid sum_assured: %w", lineNum, err)
		}
		premium, err := money.Parse(record[col["premium"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid premium: %w", lineNum, err)
		}
		term, err := strconv.ParseUint(record[col["term"]], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid term: %w", lineNum, err)
		}

		product := domain.ProductTerm
		if idx, ok := col["product_type"]; ok && record[idx] != "" {
			product, err = domain.ParseProductType(record[idx])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
		}

		p := domain.Policy{
			PolicyID:    policyID,
			Age:         uint8(age),
			Gender:      gender,
			ProductType: product,
			Term:        uint32(term),
			SumAssured:  sumAssured.Float64(),
			Premium:     premium.Float64(),
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		policies = append(policies, p)
	}
	return policies, nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}
