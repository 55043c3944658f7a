package ingest

import (
	"context"
	"fmt"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanbook/scan-csv/internal/logging"
	"scanbook/scan-csv/internal/rasterize"
)

type stubRenderer struct {
	pages int
}

func (s *stubRenderer) Open(data []byte) (rasterize.Document, error) {
	return &stubDocument{pages: s.pages}, nil
}

type stubDocument struct {
	pages int
}

func (d *stubDocument) PageCount() int { return d.pages }

func (d *stubDocument) RenderPage(page int, scale float64) (image.Image, error) {
	return image.NewGray(image.Rect(0, 0, 10, 10)), nil
}

func (d *stubDocument) Close() error { return nil }

func newNormalizer(pages int) *Normalizer {
	return NewNormalizer(&stubRenderer{pages: pages}, rasterize.DefaultOptions(), logging.NewMockLogger())
}

func TestAccepted(t *testing.T) {
	assert.True(t, Accepted("image/png"))
	assert.True(t, Accepted("image/jpeg"))
	assert.True(t, Accepted("application/pdf"))
	assert.False(t, Accepted("text/csv"))
	assert.False(t, Accepted("application/zip"))
	assert.False(t, Accepted(""))
}

func TestNormalizePassesImagesThrough(t *testing.T) {
	files := []InputFile{
		{Name: "scan1.png", MediaType: "image/png", Data: []byte{1, 2}},
		{Name: "scan2.jpg", MediaType: "image/jpeg", Data: []byte{3}},
	}

	out, err := newNormalizer(0).Normalize(context.Background(), files, nil)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "scan1.png", out[0].Label)
	assert.Equal(t, "image/png", out[0].MediaType)
	assert.Equal(t, []byte{1, 2}, out[0].Data)
	assert.Equal(t, "scan2.jpg", out[1].Label)
}

func TestNormalizeExpandsDocumentPages(t *testing.T) {
	files := []InputFile{
		{Name: "statement.pdf", MediaType: "application/pdf", Data: []byte("pdf")},
	}

	out, err := newNormalizer(3).Normalize(context.Background(), files, nil)
	require.NoError(t, err)

	require.Len(t, out, 3)
	for i, p := range out {
		assert.Equal(t, fmt.Sprintf("statement.pdf (P.%d)", i+1), p.Label)
		assert.Equal(t, "image/jpeg", p.MediaType)
		assert.NotEmpty(t, p.Data)
	}
}

func TestNormalizeDropsUnsupportedAndKeepsOrder(t *testing.T) {
	files := []InputFile{
		{Name: "a.png", MediaType: "image/png", Data: []byte{1}},
		{Name: "notes.txt", MediaType: "text/plain", Data: []byte{2}},
		{Name: "doc.pdf", MediaType: "application/pdf", Data: []byte("pdf")},
		{Name: "b.jpg", MediaType: "image/jpeg", Data: []byte{3}},
	}

	out, err := newNormalizer(2).Normalize(context.Background(), files, nil)
	require.NoError(t, err)

	labels := make([]string, len(out))
	for i, p := range out {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{"a.png", "doc.pdf (P.1)", "doc.pdf (P.2)", "b.jpg"}, labels)
}

func TestNormalizeReportsProgress(t *testing.T) {
	files := []InputFile{
		{Name: "doc.pdf", MediaType: "application/pdf", Data: []byte("pdf")},
	}

	var updates []string
	_, err := newNormalizer(2).Normalize(context.Background(), files, func(msg string) {
		updates = append(updates, msg)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Rendering doc.pdf...",
		"Rendering doc.pdf (page 1/2)...",
		"Rendering doc.pdf (page 2/2)...",
	}, updates)
}

func TestNormalizeCancelledMidDocument(t *testing.T) {
	files := []InputFile{
		{Name: "doc.pdf", MediaType: "application/pdf", Data: []byte("pdf")},
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Cancel while page 2 of 3 is rendering: the remaining page must
	// not be touched and the cancel surfaces as context.Canceled.
	var updates []string
	_, err := newNormalizer(3).Normalize(ctx, files, func(msg string) {
		updates = append(updates, msg)
		if strings.Contains(msg, "(page 2/3)") {
			cancel()
		}
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, updates, "Rendering doc.pdf (page 3/3)...")
}

func TestNormalizeCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newNormalizer(0).Normalize(ctx, []InputFile{
		{Name: "a.png", MediaType: "image/png", Data: []byte{1}},
	}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestPageLabel(t *testing.T) {
	assert.Equal(t, "bank.pdf (P.1)", PageLabel("bank.pdf", 1))
	assert.Equal(t, "bank.pdf (P.12)", PageLabel("bank.pdf", 12))
}
