// Package pipeerror defines the error types surfaced by the extraction
// pipeline and the exporter. Everything the presentation layer sees is
// one of these (or context.Canceled); raw service and codec errors
// never cross the session boundary untranslated.
package pipeerror

import "fmt"

// ExtractionError is the single recoverable failure for one pipeline
// invocation: a service error or a malformed response. The user-facing
// message is deliberately generic; Err keeps the diagnostic cause.
type ExtractionError struct {
	Label string // label of the image being processed when it failed
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: unclear image or service error", e.Label)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// RenderError reports that a paged document could not be opened or
// rendered at all. Individual page failures are skipped, not errors.
type RenderError struct {
	File string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("cannot render document %s: %v", e.File, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// EncodingError is terminal for one export attempt: both the legacy
// encoding and the UTF-8 fallback failed, so no file was produced.
type EncodingError struct {
	Account string
	Err     error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode CSV for account %s: %v", e.Account, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// BusyError rejects a second extraction invocation while one is in
// flight. The dispatcher enforces this itself rather than trusting the
// caller's trigger guard.
type BusyError struct{}

func (e *BusyError) Error() string {
	return "an extraction run is already in progress"
}

// UnknownAccountError reports a ledger operation against an account id
// that does not exist in the store.
type UnknownAccountError struct {
	AccountID string
}

func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("unknown account: %s", e.AccountID)
}

// UnknownEntryError reports an edit or delete against an entry id that
// does not exist in the store.
type UnknownEntryError struct {
	EntryID string
}

func (e *UnknownEntryError) Error() string {
	return fmt.Sprintf("unknown entry: %s", e.EntryID)
}
