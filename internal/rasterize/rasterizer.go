// Package rasterize turns paged documents into per-page JPEG images
// sized for the extraction service. The rendering capability sits
// behind the Renderer interface so tests inject a fake, mirroring the
// way PDF text extraction is injected elsewhere in this codebase's
// lineage.
package rasterize

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"

	"scanbook/scan-csv/internal/logging"
	"scanbook/scan-csv/internal/pipeerror"
)

const (
	// DefaultScale is the upscaling factor applied to each page.
	// Rendering at 2x the native viewport measurably improves the
	// recognition accuracy of the downstream service.
	DefaultScale = 2.0

	// DefaultJPEGQuality bounds payload size while keeping statement
	// text legible.
	DefaultJPEGQuality = 80
)

// Document is one opened paged document.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int
	// RenderPage renders the 0-based page at the given upscaling
	// factor to a pixel image.
	RenderPage(page int, scale float64) (image.Image, error)
	Close() error
}

// Renderer opens paged documents from raw bytes.
type Renderer interface {
	Open(data []byte) (Document, error)
}

// Options controls rendering scale and JPEG quality.
type Options struct {
	Scale       float64
	JPEGQuality int
}

// DefaultOptions returns the standard rendering options.
func DefaultOptions() Options {
	return Options{Scale: DefaultScale, JPEGQuality: DefaultJPEGQuality}
}

// Rasterize renders every page of doc to an encoded JPEG, in page
// order. Pages that fail to render are skipped with a warning; a
// document that cannot be opened at all is a RenderError. The context
// is checked before each page, so a cancel takes effect between page
// renders. perPage, if non-nil, is called once per page before it is
// rendered with the 1-based page number and the total.
func Rasterize(ctx context.Context, renderer Renderer, doc []byte, name string, opts Options, log logging.Logger, perPage func(page, total int)) ([][]byte, error) {
	if opts.Scale <= 0 {
		opts.Scale = DefaultScale
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = DefaultJPEGQuality
	}

	d, err := renderer.Open(doc)
	if err != nil {
		return nil, &pipeerror.RenderError{File: name, Err: err}
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.WithError(err).Warn("Failed to close document", logging.F("file", name))
		}
	}()

	total := d.PageCount()
	pages := make([][]byte, 0, total)

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			log.Info("Rasterization cancelled",
				logging.F("file", name), logging.F("rendered", len(pages)), logging.F("total", total))
			return nil, err
		}

		if perPage != nil {
			perPage(i+1, total)
		}

		img, err := d.RenderPage(i, opts.Scale)
		if err != nil {
			// A page without a drawing surface is dropped, not fatal.
			log.WithError(err).Warn("Skipping page that failed to render",
				logging.F("file", name), logging.F("page", i+1))
			continue
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
			log.WithError(err).Warn("Skipping page that failed to encode",
				logging.F("file", name), logging.F("page", i+1))
			continue
		}

		pages = append(pages, buf.Bytes())
	}

	log.Info("Rasterized document",
		logging.F("file", name),
		logging.F("pages", len(pages)),
		logging.F("total", total))

	return pages, nil
}
