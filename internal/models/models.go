// Package models defines the core data types shared by the pipeline,
// the ledger store and the exporter.
package models

import (
	"github.com/google/uuid"
)

// DefaultTaxCategory is the tax label applied when the extraction
// service returns none for a side of an entry.
const DefaultTaxCategory = "out of scope"

// Account is a named grouping bucket for journal entries, analogous to
// one bank account's ledger. IDs are opaque and stable for the session.
type Account struct {
	ID   string
	Name string
}

// NewAccount creates an account with a fresh id.
func NewAccount(name string) Account {
	return Account{ID: uuid.NewString(), Name: name}
}

// JournalEntry is a single double-entry bookkeeping line. The csv tags
// mirror the export header so a previously exported file can be read
// back with gocsv.
type JournalEntry struct {
	ID        string `csv:"-"`
	AccountID string `csv:"-"`

	// No orders entries within an account. The store hands out
	// max(no)+1 for new entries; user edits may introduce duplicates
	// or gaps and those are kept as entered.
	No int `csv:"No"`

	// Date is free-form, canonically YYYY/MM/DD, never validated.
	Date string `csv:"Date"`

	DebitAccount string `csv:"Debit account"`
	DebitAmount  Amount `csv:"Debit amount"`
	DebitTax     string `csv:"Debit tax"`

	CreditAccount string `csv:"Credit account"`
	CreditAmount  Amount `csv:"Credit amount"`
	CreditTax     string `csv:"Credit tax"`

	Description string `csv:"Description"`
}

// NewBlankEntry creates a manually added row: all fields at their
// empty defaults except the tax categories and the given number.
func NewBlankEntry(accountID string, no int) JournalEntry {
	return JournalEntry{
		ID:        uuid.NewString(),
		AccountID: accountID,
		No:        no,
		DebitTax:  DefaultTaxCategory,
		CreditTax: DefaultTaxCategory,
	}
}
