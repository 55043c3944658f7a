package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value that may be absent. A journal entry line
// carries an amount on its debit side, its credit side, both, or
// neither, so "no value" has to be representable and distinct from zero.
type Amount struct {
	Dec   decimal.Decimal
	Valid bool
}

// NewAmount returns a present Amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Dec: d, Valid: true}
}

// NewAmountFromFloat returns a present Amount converted from a float64.
// Extraction responses deliver numbers as float64, so the value goes
// through decimal rather than being formatted directly.
func NewAmountFromFloat(f float64) Amount {
	return Amount{Dec: decimal.NewFromFloat(f), Valid: true}
}

// ParseAmount converts free-form user or model input into an Amount.
// Empty input and input that does not parse as a decimal both map to
// absent. It never returns an error: a bad edit clears the field
// instead of failing the edit.
func ParseAmount(raw string) Amount {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Amount{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}
	}
	return Amount{Dec: d, Valid: true}
}

// String renders the amount as plain decimal text, or "" when absent.
func (a Amount) String() string {
	if !a.Valid {
		return ""
	}
	return a.Dec.String()
}

// Equal reports whether two Amounts are both absent or both present
// with equal values.
func (a Amount) Equal(other Amount) bool {
	if a.Valid != other.Valid {
		return false
	}
	if !a.Valid {
		return true
	}
	return a.Dec.Equal(other.Dec)
}

// MarshalCSV implements the gocsv marshaller so entries round-trip
// through the export format.
func (a Amount) MarshalCSV() (string, error) {
	return a.String(), nil
}

// UnmarshalCSV implements the gocsv unmarshaller.
func (a *Amount) UnmarshalCSV(field string) error {
	*a = ParseAmount(field)
	return nil
}
