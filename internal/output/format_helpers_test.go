package output

import (
	"testing"

	"github.com/rgehrsitz/nslv/pkg/money"
)

func TestFormatCurrency(t *testing.T) {
	got := FormatCurrency(money.New(1234.567))
	want := "$1234.57"
	if got != want {
		t.Errorf("FormatCurrency = %q, want %q", got, want)
	}
}

func TestFormatPercentage(t *testing.T) {
	got := FormatPercentage(0.123456)
	want := "12.35%"
	if got != want {
		t.Errorf("FormatPercentage = %q, want %q", got, want)
	}
}
