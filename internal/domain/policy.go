package domain

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Gender is the policyholder's gender as used for mortality lookup.
type Gender uint8

const (
	Male Gender = iota
	Female
)

func (g Gender) String() string {
	if g == Female {
		return "female"
	}
	return "male"
}

// ParseGender accepts M/F/male/female/0/1.
func ParseGender(s string) (Gender, error) {
	switch s {
	case "M", "m", "male", "Male", "0":
		return Male, nil
	case "F", "f", "female", "Female", "1":
		return Female, nil
	default:
		return 0, fmt.Errorf("unrecognized gender %q", s)
	}
}

// ProductType tags the policy's benefit structure. The core implements
// term semantics fully; other tags are accepted but currently yield
// the same (zero) surrender value as term, pending an explicit
// product-type contract (see spec Open Questions).
type ProductType uint8

const (
	ProductTerm ProductType = iota
	ProductWholeLife
	ProductEndowment
)

func (p ProductType) String() string {
	switch p {
	case ProductWholeLife:
		return "whole_life"
	case ProductEndowment:
		return "endowment"
	default:
		return "term"
	}
}

// ParseProductType accepts the logical CSV/JSON tag strings.
func ParseProductType(s string) (ProductType, error) {
	switch s {
	case "", "term":
		return ProductTerm, nil
	case "whole_life":
		return ProductWholeLife, nil
	case "endowment":
		return ProductEndowment, nil
	default:
		return 0, fmt.Errorf("unrecognized product type %q", s)
	}
}

// SurrenderValue returns the surrender benefit per unit of lapsed
// lives for the given product and policy year. Term products have no
// surrender value; other product tags are left at zero pending an
// explicit contract (spec Open Questions) rather than guessed at.
func (p ProductType) SurrenderValue(_ int) float64 {
	return 0
}

// PolicyRecordSize is the fixed wire size of a serialized Policy, in
// bytes. spec.md's external-interfaces section states the Policy
// record is "24 bytes" but also enumerates policy_id (u64) + age/
// gender/product_type/padding (4*u8) + term (u32) + sum_assured (f64)
// + premium (f64), which sums to 32 bytes. This implementation
// resolves the inconsistency in favor of the explicit field list —
// preserving full f64 precision on both monetary fields, required by
// the round-trip bit-exactness property — rather than truncating one
// of them to fit a stated byte count that cannot hold both as f64.
// See DESIGN.md for the full resolution note.
const PolicyRecordSize = 32

// MaxAge is the clamp ceiling used by mortality lookups; ages beyond
// it clamp rather than error.
const MaxAge = 120

// Policy describes one contract under valuation.
type Policy struct {
	PolicyID    uint64
	Age         uint8
	Gender      Gender
	ProductType ProductType
	Term        uint32
	SumAssured  float64
	Premium     float64
}

// Validate checks the invariants spec.md §3 places on a Policy,
// independent of any table it will be projected against.
func (p Policy) Validate() error {
	if p.SumAssured < 0 {
		return fmt.Errorf("policy %d: sum_assured must be non-negative, got %g", p.PolicyID, p.SumAssured)
	}
	if p.Premium < 0 {
		return fmt.Errorf("policy %d: premium must be non-negative, got %g", p.PolicyID, p.Premium)
	}
	if p.Term > 50 {
		return fmt.Errorf("policy %d: term %d exceeds the 50-year supported horizon", p.PolicyID, p.Term)
	}
	return nil
}

// ClampedAge returns the age clamped to [0, MaxAge], the convention
// used by every mortality lookup against this policy.
func (p Policy) ClampedAge() int {
	a := int(p.Age)
	if a > MaxAge {
		return MaxAge
	}
	if a < 0 {
		return 0
	}
	return a
}

// ClampedTerm returns the term clamped to the 50-year supported horizon.
func (p Policy) ClampedTerm() int {
	t := int(p.Term)
	if t > 50 {
		return 50
	}
	return t
}

// MarshalBinary writes the fixed-width little-endian wire form of the policy.
func (p Policy) MarshalBinary() ([]byte, error) {
	buf := make([]byte, PolicyRecordSize)
	binary.LittleEndian.PutUint64(buf[0:8], p.PolicyID)
	buf[8] = p.Age
	buf[9] = uint8(p.Gender)
	buf[10] = uint8(p.ProductType)
	buf[11] = 0 // padding
	binary.LittleEndian.PutUint32(buf[12:16], p.Term)
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(p.SumAssured))
	binary.LittleEndian.PutUint64(buf[24:32], math.Float64bits(p.Premium))
	return buf, nil
}

// UnmarshalPolicy parses the fixed-width wire form of a Policy.
func UnmarshalPolicy(buf []byte) (Policy, error) {
	if len(buf) < PolicyRecordSize {
		return Policy{}, fmt.Errorf("policy record too short: got %d bytes, want %d", len(buf), PolicyRecordSize)
	}
	return Policy{
		PolicyID:    binary.LittleEndian.Uint64(buf[0:8]),
		Age:         buf[8],
		Gender:      Gender(buf[9]),
		ProductType: ProductType(buf[10]),
		Term:        binary.LittleEndian.Uint32(buf[12:16]),
		SumAssured:  math.Float64frombits(binary.LittleEndian.Uint64(buf[16:24])),
		Premium:     math.Float64frombits(binary.LittleEndian.Uint64(buf[24:32])),
	}, nil
}
