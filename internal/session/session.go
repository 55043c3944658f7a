// Package session ties the store, the pipeline and the exporter into
// the surface a presentation layer drives. The session owns the active
// account, the cancellation handle for the run in flight, and the
// progress text stream; no pipeline error leaves it untranslated.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"scanbook/scan-csv/internal/export"
	"scanbook/scan-csv/internal/extract"
	"scanbook/scan-csv/internal/ingest"
	"scanbook/scan-csv/internal/ledger"
	"scanbook/scan-csv/internal/logging"
	"scanbook/scan-csv/internal/models"
	"scanbook/scan-csv/internal/pipeerror"
)

// Session is created at application start and torn down with it.
// Nothing survives the session; persistence is limited to exported
// files.
type Session struct {
	store      *ledger.Store
	dispatcher *extract.Dispatcher
	normalizer *ingest.Normalizer
	log        logging.Logger

	mu         sync.Mutex
	active     string
	cancelRun  context.CancelFunc
	onProgress func(string)
}

// New creates a Session with one initial account, which becomes
// active.
func New(store *ledger.Store, dispatcher *extract.Dispatcher, normalizer *ingest.Normalizer, accountName string, log logging.Logger) *Session {
	s := &Session{
		store:      store,
		dispatcher: dispatcher,
		normalizer: normalizer,
		log:        log,
	}
	a := store.AddAccount(accountName)
	s.active = a.ID
	return s
}

// OnProgress registers the progress text sink. Updates are emitted
// from the goroutine running ProcessFiles.
func (s *Session) OnProgress(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = fn
}

func (s *Session) progress(msg string) {
	s.mu.Lock()
	fn := s.onProgress
	s.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

// ActiveAccount returns the currently active account.
func (s *Session) ActiveAccount() (models.Account, error) {
	s.mu.Lock()
	id := s.active
	s.mu.Unlock()
	return s.store.Account(id)
}

// SetActiveAccount switches the active account.
func (s *Session) SetActiveAccount(accountID string) error {
	if _, err := s.store.Account(accountID); err != nil {
		return err
	}
	s.mu.Lock()
	s.active = accountID
	s.mu.Unlock()
	return nil
}

// AddAccount creates a named account without activating it.
func (s *Session) AddAccount(name string) models.Account {
	return s.store.AddAccount(name)
}

// ProcessFiles runs one extraction invocation over the given files,
// committing extracted entries to the active account. Cancellation is
// not an error: the method returns nil and keeps entries from files
// that completed before the cancel was observed. Any other failure
// comes back as one user-facing error after a diagnostic log entry.
// A second call while a run is in flight is rejected with BusyError
// and leaves the first run's cancel handle untouched.
func (s *Session) ProcessFiles(ctx context.Context, files []ingest.InputFile) error {
	s.mu.Lock()
	if s.cancelRun != nil {
		s.mu.Unlock()
		s.log.Warn("Rejecting extraction request: a run is already in progress")
		return &pipeerror.BusyError{}
	}
	accountID := s.active
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRun = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelRun = nil
		s.mu.Unlock()
	}()

	s.progress("Preparing files...")

	images, err := s.normalizer.Normalize(runCtx, files, s.progress)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.log.Info("Extraction cancelled by user during file preparation")
			s.progress("Cancelled.")
			return nil
		}
		s.log.WithError(err).Error("File preparation failed")
		s.progress("Extraction failed.")
		return fmt.Errorf("extraction failed: unclear image or service error")
	}

	startNo := s.store.MaxNo(accountID)
	res, err := s.dispatcher.Run(runCtx, images, accountID, startNo, s.store, func(p extract.Progress) {
		s.progress(fmt.Sprintf("Extracting %d/%d: %s", p.Index, p.Total, p.Label))
	})

	var busy *pipeerror.BusyError
	switch {
	case err == nil:
		s.progress(fmt.Sprintf("Done: %d entries from %d images.", res.EntriesCommitted, res.FilesCommitted))
		return nil
	case errors.Is(err, context.Canceled):
		s.log.Info("Extraction cancelled by user",
			logging.F("kept_files", res.FilesCommitted),
			logging.F("kept_entries", res.EntriesCommitted))
		s.progress("Cancelled.")
		return nil
	case errors.As(err, &busy):
		// Duplicate trigger, not an extraction failure.
		s.log.Warn("Rejecting extraction request: a run is already in progress")
		return err
	default:
		s.log.WithError(err).Error("Extraction run failed")
		s.progress("Extraction failed.")
		return err
	}
}

// Cancel requests cooperative cancellation of the run in flight, if
// any. The request that is currently executing still completes.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancelRun
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// AddRow appends a blank entry to the active account.
func (s *Session) AddRow() (models.JournalEntry, error) {
	s.mu.Lock()
	accountID := s.active
	s.mu.Unlock()
	return s.store.AddBlank(accountID)
}

// UpdateField applies a field-level edit to one entry.
func (s *Session) UpdateField(entryID, field, value string) error {
	return s.store.Update(entryID, field, value)
}

// RemoveRow deletes one entry.
func (s *Session) RemoveRow(entryID string) error {
	return s.store.Remove(entryID)
}

// ClearAll deletes every entry of the given account.
func (s *Session) ClearAll(accountID string) int {
	return s.store.Clear(accountID)
}

// Entries lists the active account's entries in display order.
func (s *Session) Entries() ([]models.JournalEntry, error) {
	a, err := s.ActiveAccount()
	if err != nil {
		return nil, err
	}
	return s.store.ListForAccount(a.ID), nil
}

// ExportCSV serializes one account into its encoded CSV artifact.
func (s *Session) ExportCSV(accountID string) (export.Export, error) {
	return export.ExportAccount(s.store, accountID, time.Now(), s.log)
}

// LoadCSV reads a previously exported ledger file into the active
// account, renumbering the rows after the account's current maximum.
func (s *Session) LoadCSV(path string) (int, error) {
	s.mu.Lock()
	accountID := s.active
	s.mu.Unlock()

	rows, err := export.ReadLedgerCSV(path, s.log)
	if err != nil {
		return 0, err
	}

	no := s.store.MaxNo(accountID)
	entries := make([]models.JournalEntry, len(rows))
	for i, r := range rows {
		no++
		e := models.NewBlankEntry(accountID, no)
		e.Date = r.Date
		e.DebitAccount = r.DebitAccount
		e.DebitAmount = r.DebitAmount
		e.DebitTax = r.DebitTax
		e.CreditAccount = r.CreditAccount
		e.CreditAmount = r.CreditAmount
		e.CreditTax = r.CreditTax
		e.Description = r.Description
		entries[i] = e
	}

	if err := s.store.Append(accountID, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
