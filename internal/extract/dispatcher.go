package extract

import (
	"context"
	"errors"
	"sync/atomic"

	"scanbook/scan-csv/internal/ingest"
	"scanbook/scan-csv/internal/logging"
	"scanbook/scan-csv/internal/models"
	"scanbook/scan-csv/internal/pipeerror"
)

// Progress is one per-image progress update.
type Progress struct {
	Index int // 1-based index of the image being processed
	Total int
	Label string
}

// Committer receives finished per-file batches. *ledger.Store
// satisfies this.
type Committer interface {
	Append(accountID string, entries []models.JournalEntry) error
}

// Result summarizes one dispatcher run.
type Result struct {
	// FilesCommitted is how many images completed and had their
	// entries committed.
	FilesCommitted int
	// EntriesCommitted is the total number of committed entries.
	EntriesCommitted int
}

// Dispatcher runs extraction invocations. Images are processed
// strictly sequentially: that bounds load on the external service and
// keeps progress reporting deterministic. One Dispatcher admits one
// run at a time regardless of what the caller's UI does.
type Dispatcher struct {
	client   Client
	log      logging.Logger
	inFlight atomic.Bool
}

// NewDispatcher creates a Dispatcher over the given extraction client.
func NewDispatcher(client Client, log logging.Logger) *Dispatcher {
	return &Dispatcher{client: client, log: log}
}

// Run processes the images in order, committing each image's entries
// as soon as that image completes. Numbering starts at startNo+1 and
// the running maximum advances across images so numbers stay unique
// for the whole invocation.
//
// Cancellation is cooperative: the context is checked before each
// request, an in-flight request always completes or errors first.
// On cancellation or failure, batches committed for earlier images in
// this run are retained; the current image's records are discarded.
//
// A second Run while one is in flight returns BusyError.
func (d *Dispatcher) Run(ctx context.Context, images []ingest.PageImage, accountID string, startNo int, commit Committer, progress func(Progress)) (Result, error) {
	if !d.inFlight.CompareAndSwap(false, true) {
		return Result{}, &pipeerror.BusyError{}
	}
	defer d.inFlight.Store(false)

	var res Result
	no := startNo

	d.log.Info("Starting extraction run",
		logging.F("images", len(images)), logging.F("account", accountID), logging.F("start_no", startNo))

	for i, img := range images {
		if err := ctx.Err(); err != nil {
			d.log.Info("Extraction run cancelled",
				logging.F("processed", i), logging.F("total", len(images)))
			return res, err
		}

		if progress != nil {
			progress(Progress{Index: i + 1, Total: len(images), Label: img.Label})
		}

		text, err := d.client.ExtractRecords(ctx, img.Data, img.MediaType)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return res, context.Canceled
			}
			d.log.WithError(err).Error("Extraction request failed", logging.F("label", img.Label))
			return res, &pipeerror.ExtractionError{Label: img.Label, Err: err}
		}

		raws, err := ParseRecords(text)
		if err != nil {
			d.log.WithError(err).Error("Extraction response malformed", logging.F("label", img.Label))
			return res, &pipeerror.ExtractionError{Label: img.Label, Err: err}
		}

		batch := make([]models.JournalEntry, len(raws))
		for j, raw := range raws {
			no++
			batch[j] = NormalizeRecord(raw, accountID, no)
		}

		if err := commit.Append(accountID, batch); err != nil {
			return res, &pipeerror.ExtractionError{Label: img.Label, Err: err}
		}

		res.FilesCommitted++
		res.EntriesCommitted += len(batch)

		d.log.Debug("Committed batch",
			logging.F("label", img.Label), logging.F("entries", len(batch)))
	}

	d.log.Info("Extraction run completed",
		logging.F("files", res.FilesCommitted), logging.F("entries", res.EntriesCommitted))

	return res, nil
}
