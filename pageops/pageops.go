// Package pageops draws per-page decorations on documents produced by the
// render package: a letterhead imported from an existing PDF, a status
// watermark, a page-number footer and a barcode stamp. It can also append
// the pages of existing PDF files after the rendered content.
//
// Existing PDFs are imported as templates with the gofpdi contrib package.
package pageops

import (
	"fmt"
	"os"

	"github.com/phpdave11/gofpdf"
	"github.com/phpdave11/gofpdf/contrib/gofpdi"
)

// Position specifies where to place an element on a page. The zero value
// leaves the choice to the element.
type Position int

const (
	PositionDefault Position = iota
	Center
	TopLeft
	TopCenter
	TopRight
	BottomLeft
	BottomCenter
	BottomRight
)

// Decorations groups the optional decorations of a rendered document.
// Nil fields are skipped.
type Decorations struct {
	Letterhead  *Letterhead
	Watermark   *TextWatermark
	PageNumbers *PageNumberStyle
	Stamp       *Stamp
}

// Empty reports whether no decoration is set.
func (d Decorations) Empty() bool {
	return d.Letterhead == nil && d.Watermark == nil && d.PageNumbers == nil && d.Stamp == nil
}

// Prepare imports templates and registers images on pdf. It must be called
// once, before the first page is added.
func (d Decorations) Prepare(pdf *gofpdf.Fpdf) error {
	if d.PageNumbers != nil {
		pdf.AliasNbPages(d.PageNumbers.Alias())
	}
	if d.Letterhead != nil {
		if err := d.Letterhead.load(pdf); err != nil {
			return err
		}
	}
	if d.Stamp != nil {
		if err := d.Stamp.register(pdf); err != nil {
			return err
		}
	}
	return nil
}

// Under draws the decorations that sit below the page content. Call it right
// after adding a page.
func (d Decorations) Under(pdf *gofpdf.Fpdf) {
	if d.Letterhead != nil {
		d.Letterhead.draw(pdf)
	}
}

// Over draws the decorations that sit above the page content. Call it once
// the page content is complete.
func (d Decorations) Over(pdf *gofpdf.Fpdf) {
	w, h := pdf.GetPageSize()
	if d.Watermark != nil {
		drawTextWatermark(pdf, *d.Watermark, w, h)
	}
	if d.Stamp != nil {
		d.Stamp.draw(pdf, w, h)
	}
	if d.PageNumbers != nil {
		drawPageNumber(pdf, *d.PageNumbers, pdf.PageNo(), w, h)
	}
}

// importPage imports a single page from a source file into the target PDF.
// Returns the template ID, the page count of the source and the page
// dimensions in the unit of pdf.
func importPage(pdf *gofpdf.Fpdf, imp *gofpdi.Importer, sourceFile string, pageNum int) (tplID, pages int, w, h float64, err error) {
	if _, err := os.Stat(sourceFile); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("pageops: %w", err)
	}
	tplID = imp.ImportPage(pdf, sourceFile, pageNum, "/MediaBox")
	if pdf.Err() {
		return 0, 0, 0, 0, fmt.Errorf("pageops: importing %s: %w", sourceFile, pdf.Error())
	}
	sizes := imp.GetPageSizes()
	k := pdf.GetConversionRatio()
	if dims, ok := sizes[pageNum]; ok {
		if mb, ok := dims["/MediaBox"]; ok {
			w = mb["w"] / k
			h = mb["h"] / k
		}
	}
	return tplID, len(sizes), w, h, nil
}

// calculatePosition returns x, y coordinates for text placement. textH is
// the text height and y the baseline.
func calculatePosition(pos Position, pageW, pageH, textW, textH, margin float64) (x, y float64) {
	switch pos {
	case TopLeft:
		return margin, margin + textH
	case TopCenter:
		return (pageW - textW) / 2, margin + textH
	case TopRight:
		return pageW - textW - margin, margin + textH
	case BottomLeft:
		return margin, pageH - margin
	case BottomRight:
		return pageW - textW - margin, pageH - margin
	case Center:
		return (pageW - textW) / 2, pageH / 2
	default: // BottomCenter, PositionDefault
		return (pageW - textW) / 2, pageH - margin
	}
}

// boxPosition returns the top-left corner of a w x h box placed at pos.
func boxPosition(pos Position, pageW, pageH, w, h, margin float64) (x, y float64) {
	x, y = calculatePosition(pos, pageW, pageH, w, h, margin)
	return x, y - h
}
