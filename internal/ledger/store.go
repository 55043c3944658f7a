// Package ledger owns the in-memory record store: accounts and their
// journal entries. The store is created at session start, injected
// into the pipeline and the exporter, and torn down with the session;
// nothing is persisted.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"scanbook/scan-csv/internal/models"
	"scanbook/scan-csv/internal/pipeerror"
)

// Store holds accounts and entries. All methods are safe for use from
// the pipeline goroutine and the editing surface concurrently.
type Store struct {
	mu       sync.Mutex
	accounts []models.Account
	entries  []models.JournalEntry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// AddAccount creates a new named account and returns it.
func (s *Store) AddAccount(name string) models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := models.NewAccount(name)
	s.accounts = append(s.accounts, a)
	return a
}

// RenameAccount changes an account's display name. Empty names are
// rejected; an account always has a visible name once created.
func (s *Store) RenameAccount(accountID, name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("account name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.accounts {
		if s.accounts[i].ID == accountID {
			s.accounts[i].Name = name
			return nil
		}
	}
	return &pipeerror.UnknownAccountError{AccountID: accountID}
}

// Accounts returns all accounts in creation order.
func (s *Store) Accounts() []models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// Account looks up one account by id.
func (s *Store) Account(accountID string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.ID == accountID {
			return a, nil
		}
	}
	return models.Account{}, &pipeerror.UnknownAccountError{AccountID: accountID}
}

// Append adds already-numbered entries verbatim. The dispatcher
// numbers its batches before committing; nothing is renumbered or
// de-duplicated here.
func (s *Store) Append(accountID string, entries []models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasAccountLocked(accountID) {
		return &pipeerror.UnknownAccountError{AccountID: accountID}
	}

	for _, e := range entries {
		e.AccountID = accountID
		s.entries = append(s.entries, e)
	}
	return nil
}

// AddBlank creates one empty entry numbered max(no)+1 for the account.
func (s *Store) AddBlank(accountID string) (models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasAccountLocked(accountID) {
		return models.JournalEntry{}, &pipeerror.UnknownAccountError{AccountID: accountID}
	}

	e := models.NewBlankEntry(accountID, s.maxNoLocked(accountID)+1)
	s.entries = append(s.entries, e)
	return e, nil
}

// Field names accepted by Update.
const (
	FieldNo            = "no"
	FieldDate          = "date"
	FieldDebitAccount  = "debitAccount"
	FieldDebitAmount   = "debitAmount"
	FieldDebitTax      = "debitTax"
	FieldCreditAccount = "creditAccount"
	FieldCreditAmount  = "creditAmount"
	FieldCreditTax     = "creditTax"
	FieldDescription   = "description"
)

// Update applies a field-level edit. Amount fields treat empty and
// non-numeric input as "absent" and never fail. The entry number has
// no absent state, so input that does not parse as an integer leaves
// the current number unchanged; edits that create duplicate or gapped
// numbers are accepted as entered. All other fields take the raw
// string verbatim, empty included.
func (s *Store) Update(entryID, field, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID != entryID {
			continue
		}
		e := &s.entries[i]
		switch field {
		case FieldNo:
			if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
				e.No = n
			}
		case FieldDate:
			e.Date = raw
		case FieldDebitAccount:
			e.DebitAccount = raw
		case FieldDebitAmount:
			e.DebitAmount = models.ParseAmount(raw)
		case FieldDebitTax:
			e.DebitTax = raw
		case FieldCreditAccount:
			e.CreditAccount = raw
		case FieldCreditAmount:
			e.CreditAmount = models.ParseAmount(raw)
		case FieldCreditTax:
			e.CreditTax = raw
		case FieldDescription:
			e.Description = raw
		default:
			return fmt.Errorf("unknown entry field: %q", field)
		}
		return nil
	}
	return &pipeerror.UnknownEntryError{EntryID: entryID}
}

// Remove deletes exactly one entry.
func (s *Store) Remove(entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == entryID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return &pipeerror.UnknownEntryError{EntryID: entryID}
}

// Clear deletes every entry for the account and returns how many were
// removed. Other accounts' entries are untouched.
func (s *Store) Clear(accountID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		if e.AccountID == accountID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed
}

// ListForAccount returns the account's entries sorted ascending by
// number; equal numbers keep insertion order.
func (s *Store) ListForAccount(accountID string) []models.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.JournalEntry
	for _, e := range s.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].No < out[j].No
	})
	return out
}

// MaxNo returns the highest entry number in the account, or 0 when the
// account has no entries. New batches start numbering at MaxNo+1.
func (s *Store) MaxNo(accountID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxNoLocked(accountID)
}

func (s *Store) maxNoLocked(accountID string) int {
	max := 0
	for _, e := range s.entries {
		if e.AccountID == accountID && e.No > max {
			max = e.No
		}
	}
	return max
}

func (s *Store) hasAccountLocked(accountID string) bool {
	for _, a := range s.accounts {
		if a.ID == accountID {
			return true
		}
	}
	return false
}
