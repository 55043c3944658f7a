// Package ingest classifies user-supplied files and flattens them into
// the ordered list of labeled page images the extraction dispatcher
// consumes. Raster images pass through untouched; paged documents are
// rasterized one tuple per page.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"scanbook/scan-csv/internal/logging"
	"scanbook/scan-csv/internal/rasterize"
)

// PDFMediaType is the one paged-document type accepted alongside
// raster images.
const PDFMediaType = "application/pdf"

// jpegMediaType is stamped on rasterized pages.
const jpegMediaType = "image/jpeg"

// InputFile is one user-supplied file with its declared media type.
type InputFile struct {
	Name      string
	MediaType string
	Data      []byte
}

// PageImage is one normalized unit of work for the dispatcher: a
// single raster image with a display label.
type PageImage struct {
	Label     string
	MediaType string
	Data      []byte
}

// Accepted reports whether the declared media type enters the
// pipeline. Anything else is silently dropped; the picker upstream is
// expected to have pre-filtered, but the ingestor tolerates any input.
func Accepted(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/") || mediaType == PDFMediaType
}

// Normalizer flattens input files into page images.
type Normalizer struct {
	renderer rasterize.Renderer
	opts     rasterize.Options
	log      logging.Logger
}

// NewNormalizer creates a Normalizer using the given page renderer.
func NewNormalizer(renderer rasterize.Renderer, opts rasterize.Options, log logging.Logger) *Normalizer {
	return &Normalizer{renderer: renderer, opts: opts, log: log}
}

// Normalize produces one PageImage per raster image and one per page
// of each paged document, preserving input order and document page
// order. The context is checked before each file and between page
// renders, so a cancel during a long document takes effect promptly.
// progress, if non-nil, receives incremental status text before and
// during document rasterization.
func (n *Normalizer) Normalize(ctx context.Context, files []InputFile, progress func(string)) ([]PageImage, error) {
	report := func(msg string) {
		if progress != nil {
			progress(msg)
		}
	}

	var out []PageImage
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch {
		case f.MediaType == PDFMediaType:
			report(fmt.Sprintf("Rendering %s...", f.Name))

			pages, err := rasterize.Rasterize(ctx, n.renderer, f.Data, f.Name, n.opts, n.log, func(page, total int) {
				report(fmt.Sprintf("Rendering %s (page %d/%d)...", f.Name, page, total))
			})
			if err != nil {
				return nil, err
			}

			for i, data := range pages {
				out = append(out, PageImage{
					Label:     PageLabel(f.Name, i+1),
					MediaType: jpegMediaType,
					Data:      data,
				})
			}

		case strings.HasPrefix(f.MediaType, "image/"):
			out = append(out, PageImage{
				Label:     f.Name,
				MediaType: f.MediaType,
				Data:      f.Data,
			})

		default:
			n.log.Debug("Dropping unsupported file",
				logging.F("file", f.Name), logging.F("media_type", f.MediaType))
		}
	}

	return out, nil
}

// PageLabel formats the display label for a rasterized document page.
// page is 1-based.
func PageLabel(name string, page int) string {
	return fmt.Sprintf("%s (P.%d)", name, page)
}
