package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanbook/scan-csv/internal/models"
)

func TestParseRecords(t *testing.T) {
	text := `[
		{"date":"2026/01/05","description":"Office chairs","debitAccount":"Supplies","creditAccount":"Ordinary deposit","debitAmount":24800,"debitTax":"Taxable purchase 10%","creditAmount":24800,"creditTax":null},
		{"date":"2026/01/07","description":"Invoice 102","debitAccount":"Ordinary deposit","creditAccount":"Sales"}
	]`

	records, err := ParseRecords(text)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2026/01/05", records[0].Date)
	assert.Equal(t, 24800.0, records[0].DebitAmount)
	assert.Nil(t, records[0].CreditTax)
	assert.Nil(t, records[1].DebitAmount)
}

func TestParseRecordsStripsCodeFences(t *testing.T) {
	for _, text := range []string{
		"```json\n[{\"date\":\"2026/01/05\"}]\n```",
		"```\n[{\"date\":\"2026/01/05\"}]\n```",
		"  [{\"date\":\"2026/01/05\"}]  ",
	} {
		records, err := ParseRecords(text)
		require.NoError(t, err, "input: %q", text)
		require.Len(t, records, 1)
		assert.Equal(t, "2026/01/05", records[0].Date)
	}
}

func TestParseRecordsEmptyArray(t *testing.T) {
	records, err := ParseRecords("[]")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseRecordsFailures(t *testing.T) {
	for _, text := range []string{
		"",
		"I could not read the image.",
		`{"date":"2026/01/05"}`, // object, not array
		"[{unclosed",
	} {
		_, err := ParseRecords(text)
		assert.Error(t, err, "input: %q", text)
	}
}

func TestNormalizeRecordDefaults(t *testing.T) {
	e := NormalizeRecord(RawRecord{}, "acct-1", 4)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "acct-1", e.AccountID)
	assert.Equal(t, 4, e.No)
	assert.Equal(t, "", e.Date)
	assert.Equal(t, "", e.Description)
	assert.Equal(t, "", e.DebitAccount)
	assert.False(t, e.DebitAmount.Valid)
	assert.False(t, e.CreditAmount.Valid)
	assert.Equal(t, models.DefaultTaxCategory, e.DebitTax)
	assert.Equal(t, models.DefaultTaxCategory, e.CreditTax)
}

func TestNormalizeRecordCoercion(t *testing.T) {
	raw := RawRecord{
		Date:          "2026/02/01",
		Description:   "Coffee with client",
		DebitAccount:  "Entertainment",
		DebitAmount:   1280.0,
		DebitTax:      "Taxable purchase 10%",
		CreditAccount: "Ordinary deposit",
		CreditAmount:  "1280", // string number still accepted
		CreditTax:     "",     // empty maps to the default label
	}

	e := NormalizeRecord(raw, "acct-1", 1)
	assert.Equal(t, "2026/02/01", e.Date)
	assert.Equal(t, "1280", e.DebitAmount.String())
	assert.Equal(t, "1280", e.CreditAmount.String())
	assert.Equal(t, "Taxable purchase 10%", e.DebitTax)
	assert.Equal(t, models.DefaultTaxCategory, e.CreditTax)
}

func TestNormalizeRecordBadTypes(t *testing.T) {
	raw := RawRecord{
		Date:         12345,            // wrong type -> empty
		DebitAmount:  "around 500 yen", // not numeric -> absent
		CreditAmount: true,             // wrong type -> absent
		DebitTax:     7,                // wrong type -> default
	}

	e := NormalizeRecord(raw, "acct-1", 1)
	assert.Equal(t, "", e.Date)
	assert.False(t, e.DebitAmount.Valid)
	assert.False(t, e.CreditAmount.Valid)
	assert.Equal(t, models.DefaultTaxCategory, e.DebitTax)
}
