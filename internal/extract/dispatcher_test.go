package extract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanbook/scan-csv/internal/categories"
	"scanbook/scan-csv/internal/ingest"
	"scanbook/scan-csv/internal/ledger"
	"scanbook/scan-csv/internal/logging"
	"scanbook/scan-csv/internal/pipeerror"
)

func testCategories() categories.Set {
	return categories.Default()
}

// scriptedClient returns one canned response (or error) per image, and
// can cancel a context or block mid-call to drive concurrency tests.
type scriptedClient struct {
	mu        sync.Mutex
	responses []response
	calls     int
	onCall    func(call int)
}

type response struct {
	text string
	err  error
}

func (c *scriptedClient) ExtractRecords(ctx context.Context, image []byte, mimeType string) (string, error) {
	c.mu.Lock()
	call := c.calls
	c.calls++
	c.mu.Unlock()

	if c.onCall != nil {
		c.onCall(call)
	}
	if call >= len(c.responses) {
		return "", errors.New("unexpected call")
	}
	r := c.responses[call]
	return r.text, r.err
}

func recordsJSON(n int) string {
	s := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf(`{"date":"2026/03/%02d","description":"tx %d","debitAccount":"Supplies","creditAccount":"Ordinary deposit","debitAmount":%d}`, i+1, i, (i+1)*100)
	}
	return s + "]"
}

func pages(n int) []ingest.PageImage {
	out := make([]ingest.PageImage, n)
	for i := range out {
		out[i] = ingest.PageImage{
			Label:     fmt.Sprintf("scan%d.png", i+1),
			MediaType: "image/png",
			Data:      []byte{byte(i)},
		}
	}
	return out
}

func newTestLedger(t *testing.T) (*ledger.Store, string) {
	t.Helper()
	s := ledger.NewStore()
	a := s.AddAccount("Main")
	return s, a.ID
}

func TestRunNumbersBatchesAcrossFiles(t *testing.T) {
	store, accountID := newTestLedger(t)
	client := &scriptedClient{responses: []response{
		{text: recordsJSON(2)},
		{text: recordsJSON(3)},
	}}
	d := NewDispatcher(client, logging.NewMockLogger())

	// Current max is 5: the run must number 6..10 across both files.
	res, err := d.Run(context.Background(), pages(2), accountID, 5, store, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FilesCommitted)
	assert.Equal(t, 5, res.EntriesCommitted)

	list := store.ListForAccount(accountID)
	require.Len(t, list, 5)
	for i, e := range list {
		assert.Equal(t, 6+i, e.No)
	}
}

func TestRunReportsProgressPerImage(t *testing.T) {
	store, accountID := newTestLedger(t)
	client := &scriptedClient{responses: []response{
		{text: "[]"}, {text: "[]"}, {text: "[]"},
	}}
	d := NewDispatcher(client, logging.NewMockLogger())

	var got []Progress
	_, err := d.Run(context.Background(), pages(3), accountID, 0, store, func(p Progress) {
		got = append(got, p)
	})
	require.NoError(t, err)

	require.Len(t, got, 3)
	for i, p := range got {
		assert.Equal(t, i+1, p.Index)
		assert.Equal(t, 3, p.Total)
		assert.Equal(t, fmt.Sprintf("scan%d.png", i+1), p.Label)
	}
}

func TestRunServiceFailureKeepsEarlierBatches(t *testing.T) {
	store, accountID := newTestLedger(t)
	client := &scriptedClient{responses: []response{
		{text: recordsJSON(2)},
		{err: errors.New("service unavailable")},
		{text: recordsJSON(1)}, // never reached
	}}
	d := NewDispatcher(client, logging.NewMockLogger())

	res, err := d.Run(context.Background(), pages(3), accountID, 0, store, nil)

	var exErr *pipeerror.ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, "scan2.png", exErr.Label)

	// File 1 committed before the failure stays; file 2 contributed
	// nothing; file 3 was never attempted.
	assert.Equal(t, 1, res.FilesCommitted)
	assert.Len(t, store.ListForAccount(accountID), 2)
	assert.Equal(t, 2, client.calls)
}

func TestRunMalformedResponseIsHardFailure(t *testing.T) {
	store, accountID := newTestLedger(t)
	client := &scriptedClient{responses: []response{
		{text: "sorry, the image is unreadable"},
	}}
	d := NewDispatcher(client, logging.NewMockLogger())

	_, err := d.Run(context.Background(), pages(1), accountID, 0, store, nil)
	var exErr *pipeerror.ExtractionError
	require.ErrorAs(t, err, &exErr)
	assert.Empty(t, store.ListForAccount(accountID))
}

func TestRunCancelKeepsCommittedFiles(t *testing.T) {
	store, accountID := newTestLedger(t)
	ctx, cancel := context.WithCancel(context.Background())

	client := &scriptedClient{
		responses: []response{
			{text: recordsJSON(1)},
			{text: recordsJSON(1)},
			{text: recordsJSON(1)},
			{text: recordsJSON(1)},
			{text: recordsJSON(1)},
		},
		onCall: func(call int) {
			// Cancel while the second request is in flight: it still
			// completes, then the pre-request check stops the run.
			if call == 1 {
				cancel()
			}
		},
	}
	d := NewDispatcher(client, logging.NewMockLogger())

	res, err := d.Run(ctx, pages(5), accountID, 0, store, nil)
	require.ErrorIs(t, err, context.Canceled)

	// 2 of 5 files completed before cancellation was observed; their
	// entries are retained per the per-file commit policy.
	assert.Equal(t, 2, res.FilesCommitted)
	assert.Len(t, store.ListForAccount(accountID), 2)
	assert.Equal(t, 2, client.calls)
}

func TestRunCancelledBeforeStart(t *testing.T) {
	store, accountID := newTestLedger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &scriptedClient{responses: []response{{text: recordsJSON(1)}}}
	d := NewDispatcher(client, logging.NewMockLogger())

	res, err := d.Run(ctx, pages(1), accountID, 0, store, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.FilesCommitted)
	assert.Zero(t, client.calls)
}

func TestRunRejectsConcurrentInvocation(t *testing.T) {
	store, accountID := newTestLedger(t)

	started := make(chan struct{})
	release := make(chan struct{})
	client := &scriptedClient{
		responses: []response{{text: "[]"}},
		onCall: func(call int) {
			close(started)
			<-release
		},
	}
	d := NewDispatcher(client, logging.NewMockLogger())

	done := make(chan error, 1)
	go func() {
		_, err := d.Run(context.Background(), pages(1), accountID, 0, store, nil)
		done <- err
	}()

	<-started
	_, err := d.Run(context.Background(), pages(1), accountID, 0, store, nil)
	var busy *pipeerror.BusyError
	assert.ErrorAs(t, err, &busy)

	close(release)
	require.NoError(t, <-done)

	// The dispatcher is reusable once the first run finishes.
	client.mu.Lock()
	client.responses = append(client.responses, response{text: "[]"})
	client.mu.Unlock()
	client.onCall = nil
	_, err = d.Run(context.Background(), pages(1), accountID, 0, store, nil)
	assert.NoError(t, err)
}

func TestRunEmptyImageList(t *testing.T) {
	store, accountID := newTestLedger(t)
	d := NewDispatcher(&scriptedClient{}, logging.NewMockLogger())

	res, err := d.Run(context.Background(), nil, accountID, 0, store, nil)
	require.NoError(t, err)
	assert.Zero(t, res.FilesCommitted)
	assert.Zero(t, res.EntriesCommitted)
}

func TestBuildInstructionMentionsLabels(t *testing.T) {
	ins := BuildInstruction(testCategories())
	assert.Contains(t, ins, "JSON array")
	assert.Contains(t, ins, "Supplies")
	assert.Contains(t, ins, "Sales")
	assert.Contains(t, ins, "out of scope")
}
