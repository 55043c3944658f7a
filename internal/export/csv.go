// Package export serializes an account's journal entries to the CSV
// layout the target accounting software imports, with a legacy
// double-byte primary encoding and a UTF-8 BOM fallback.
package export

import (
	"strconv"
	"strings"

	"scanbook/scan-csv/internal/models"
)

// Header is the fixed 9-column header row, in import order.
var Header = []string{
	"No", "Date",
	"Debit account", "Debit amount", "Debit tax",
	"Credit account", "Credit amount", "Credit tax",
	"Description",
}

const crlf = "\r\n"

// MarshalCSV renders entries in the exact import layout: CRLF row
// separators, text fields always double-quoted with embedded quotes
// doubled, numeric fields as bare decimal text (absent amounts render
// empty). The importer depends on these bytes, so this writer is
// hand-rolled: encoding/csv quotes per-need and cannot force-quote
// text columns while leaving numeric columns bare.
func MarshalCSV(entries []models.JournalEntry) string {
	var b strings.Builder

	for i, h := range Header {
		if i > 0 {
			b.WriteByte(',')
		}
		writeQuoted(&b, h)
	}
	b.WriteString(crlf)

	for _, e := range entries {
		writeNumber(&b, strconv.Itoa(e.No))
		b.WriteByte(',')
		writeQuoted(&b, e.Date)
		b.WriteByte(',')
		writeQuoted(&b, e.DebitAccount)
		b.WriteByte(',')
		writeNumber(&b, e.DebitAmount.String())
		b.WriteByte(',')
		writeQuoted(&b, e.DebitTax)
		b.WriteByte(',')
		writeQuoted(&b, e.CreditAccount)
		b.WriteByte(',')
		writeNumber(&b, e.CreditAmount.String())
		b.WriteByte(',')
		writeQuoted(&b, e.CreditTax)
		b.WriteByte(',')
		writeQuoted(&b, e.Description)
		b.WriteString(crlf)
	}

	return b.String()
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(s, `"`, `""`))
	b.WriteByte('"')
}

func writeNumber(b *strings.Builder, s string) {
	b.WriteString(s)
}
