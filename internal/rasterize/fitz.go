package rasterize

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// pdfBaseDPI is the PDF point resolution; scale 1.0 renders at the
// page's native viewport size.
const pdfBaseDPI = 72

// FitzRenderer renders PDF pages with MuPDF via go-fitz.
type FitzRenderer struct{}

// NewFitzRenderer returns the production Renderer.
func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{}
}

// Open opens a PDF from memory.
func (r *FitzRenderer) Open(data []byte) (Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) PageCount() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) RenderPage(page int, scale float64) (image.Image, error) {
	return d.doc.ImageDPI(page, pdfBaseDPI*scale)
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
