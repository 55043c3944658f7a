package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"scanbook/scan-csv/internal/models"
)

// RawRecord is the untyped decode target for one element of the
// service's response array. Every field is `any` because the model may
// answer with strings, numbers, nulls, or omit optionals entirely;
// normalization decides what survives.
type RawRecord struct {
	Date          any `json:"date"`
	Description   any `json:"description"`
	DebitAccount  any `json:"debitAccount"`
	DebitAmount   any `json:"debitAmount"`
	DebitTax      any `json:"debitTax"`
	CreditAccount any `json:"creditAccount"`
	CreditAmount  any `json:"creditAmount"`
	CreditTax     any `json:"creditTax"`
}

// ParseRecords parses the response text as a JSON array of raw
// records. Markdown code fences are stripped first; models wrap JSON
// in them even when told not to. A parse failure here is the one hard
// failure of an extraction invocation.
func ParseRecords(text string) ([]RawRecord, error) {
	cleaned := stripCodeFences(text)

	var records []RawRecord
	if err := json.Unmarshal([]byte(cleaned), &records); err != nil {
		return nil, fmt.Errorf("response is not a JSON record array: %w", err)
	}
	return records, nil
}

func stripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the fence line.
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// NormalizeRecord coerces one raw record into a well-formed entry for
// the given account and number. Missing or null optionals take the
// documented defaults: amounts become absent, tax labels become
// "out of scope", strings become empty. No record is ever rejected
// for its field values.
func NormalizeRecord(raw RawRecord, accountID string, no int) models.JournalEntry {
	return models.JournalEntry{
		ID:            uuid.NewString(),
		AccountID:     accountID,
		No:            no,
		Date:          asString(raw.Date),
		Description:   asString(raw.Description),
		DebitAccount:  asString(raw.DebitAccount),
		DebitAmount:   asAmount(raw.DebitAmount),
		DebitTax:      asTax(raw.DebitTax),
		CreditAccount: asString(raw.CreditAccount),
		CreditAmount:  asAmount(raw.CreditAmount),
		CreditTax:     asTax(raw.CreditTax),
	}
}

func asString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

func asTax(v any) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return models.DefaultTaxCategory
	}
	return s
}

func asAmount(v any) models.Amount {
	switch t := v.(type) {
	case float64:
		return models.NewAmountFromFloat(t)
	case string:
		return models.ParseAmount(t)
	default:
		return models.Amount{}
	}
}
