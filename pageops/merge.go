package pageops

import (
	"fmt"

	"github.com/phpdave11/gofpdf"
	"github.com/phpdave11/gofpdf/contrib/gofpdi"
)

// Letterhead draws one page of an existing PDF under every page of the
// rendered document, stretched to the page size.
type Letterhead struct {
	Path string // source PDF
	Page int    // 1-based page to use (default: 1)

	imp *gofpdi.Importer
	tpl int
}

func (l *Letterhead) load(pdf *gofpdf.Fpdf) error {
	if l.Page <= 0 {
		l.Page = 1
	}
	l.imp = gofpdi.NewImporter()
	tpl, pages, _, _, err := importPage(pdf, l.imp, l.Path, l.Page)
	if err != nil {
		return fmt.Errorf("pageops: letterhead: %w", err)
	}
	if l.Page > pages {
		return fmt.Errorf("pageops: letterhead: %s has %d pages, page %d requested", l.Path, pages, l.Page)
	}
	l.tpl = tpl
	return nil
}

func (l *Letterhead) draw(pdf *gofpdf.Fpdf) {
	if l.imp == nil {
		return
	}
	w, h := pdf.GetPageSize()
	l.imp.UseImportedTemplate(pdf, l.tpl, 0, 0, w, h)
}

// AppendFiles imports all pages of the given PDF files after the pages
// already in pdf, keeping their original sizes. It returns the number of
// pages added.
func AppendFiles(pdf *gofpdf.Fpdf, inputPaths ...string) (int, error) {
	added := 0
	for _, inputPath := range inputPaths {
		n, err := appendFile(pdf, inputPath)
		added += n
		if err != nil {
			return added, fmt.Errorf("pageops: appending %s: %w", inputPath, err)
		}
	}
	return added, nil
}

// appendFile imports all pages from a PDF file into the target PDF.
func appendFile(pdf *gofpdf.Fpdf, inputPath string) (int, error) {
	imp := gofpdi.NewImporter()

	tplID, pageCount, w, h, err := importPage(pdf, imp, inputPath, 1)
	if err != nil {
		return 0, err
	}
	for i := 1; i <= pageCount; i++ {
		if i > 1 {
			tplID, _, w, h, err = importPage(pdf, imp, inputPath, i)
			if err != nil {
				return i - 1, err
			}
		}
		if w == 0 || h == 0 {
			w, h = pdf.GetPageSize()
		}

		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
		imp.UseImportedTemplate(pdf, tplID, 0, 0, w, h)
	}

	return pageCount, pdf.Error()
}
