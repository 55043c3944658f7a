package export

import (
	"fmt"
	"strings"
	"time"

	"scanbook/scan-csv/internal/ledger"
	"scanbook/scan-csv/internal/logging"
	"scanbook/scan-csv/internal/pipeerror"
)

// Export is one finished export artifact.
type Export struct {
	FileName string
	Data     []byte
	Encoding Encoding
}

// FileName builds the download name from the account's display name
// and the given date. Path separators in the name are flattened so the
// result is always a plain file name.
func FileName(accountName string, now time.Time) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(accountName)
	return fmt.Sprintf("%s_journal_%s.csv", safe, now.Format("20060102"))
}

// ExportAccount serializes one account's entries, sorted by number,
// into an encoded CSV artifact. If both encoding tiers fail the export
// is terminal: an EncodingError and no bytes.
func ExportAccount(store *ledger.Store, accountID string, now time.Time, log logging.Logger) (Export, error) {
	account, err := store.Account(accountID)
	if err != nil {
		return Export{}, err
	}

	entries := store.ListForAccount(accountID)
	text := MarshalCSV(entries)

	data, enc, err := Encode(text)
	if err != nil {
		log.WithError(err).Error("Export encoding failed", logging.F("account", account.Name))
		return Export{}, &pipeerror.EncodingError{Account: account.Name, Err: err}
	}

	log.Info("Exported account",
		logging.F("account", account.Name),
		logging.F("entries", len(entries)),
		logging.F("encoding", string(enc)))

	return Export{
		FileName: FileName(account.Name, now),
		Data:     data,
		Encoding: enc,
	}, nil
}
