package export

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"scanbook/scan-csv/internal/logging"
	"scanbook/scan-csv/internal/models"
)

// ReadLedgerCSV reads a previously exported ledger file back into
// entries, so a saved export can seed a new session. Both encoding
// tiers are understood: a UTF-8 BOM is stripped, anything else is
// assumed Shift_JIS.
func ReadLedgerCSV(path string, log logging.Logger) ([]models.JournalEntry, error) {
	log.Info("Reading ledger CSV file", logging.F("file", path))

	file, err := os.Open(path) // #nosec G304 -- CLI tool takes user-provided paths
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	reader, err := decodeReader(file)
	if err != nil {
		return nil, err
	}

	var rows []models.JournalEntry
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	log.Info("Successfully read ledger CSV", logging.F("count", len(rows)))
	return rows, nil
}

func decodeReader(r io.Reader) (io.Reader, error) {
	head := make([]byte, 3)
	n, err := io.ReadFull(r, head)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return bytes.NewReader(head[:n]), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading CSV file: %w", err)
	}

	if bytes.Equal(head, utf8BOM) {
		return r, nil
	}

	rest := io.MultiReader(bytes.NewReader(head), r)
	return transform.NewReader(rest, japanese.ShiftJIS.NewDecoder()), nil
}
