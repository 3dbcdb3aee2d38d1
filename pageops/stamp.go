package pageops

import (
	"fmt"
	"strings"

	"github.com/boombuler/barcode/qr"
	"github.com/phpdave11/gofpdf"
	"github.com/phpdave11/gofpdf/contrib/barcode"
)

// StampKind selects the barcode symbology of a Stamp.
type StampKind int

const (
	StampQR StampKind = iota
	StampPDF417
)

// ParseStampKind maps "qr" and "pdf417" to a StampKind.
func ParseStampKind(s string) (StampKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "qr", "":
		return StampQR, nil
	case "pdf417":
		return StampPDF417, nil
	}
	return 0, fmt.Errorf("pageops: unknown stamp kind %q", s)
}

// Stamp is a barcode encoding document metadata, drawn on every page.
type Stamp struct {
	Kind     StampKind
	Content  string
	Position Position // default: BottomRight
	Size     float64  // height in the document unit (default: 12 mm); PDF417 is three times as wide
	Margin   float64  // distance from the page edge in the document unit (default: 5 mm)

	key string
}

func (s *Stamp) register(pdf *gofpdf.Fpdf) error {
	if strings.TrimSpace(s.Content) == "" {
		return fmt.Errorf("pageops: stamp has no content")
	}
	s.withDefaults(pdf)

	switch s.Kind {
	case StampPDF417:
		s.key = barcode.RegisterPdf417(pdf, s.Content, 4, 2)
	default:
		s.key = barcode.RegisterQR(pdf, s.Content, qr.M, qr.Unicode)
	}
	if pdf.Err() {
		return fmt.Errorf("pageops: stamp: %w", pdf.Error())
	}
	return nil
}

// withDefaults keeps an unsized stamp inside the default 20 mm bottom margin.
func (s *Stamp) withDefaults(pdf *gofpdf.Fpdf) {
	if s.Position == PositionDefault {
		s.Position = BottomRight
	}
	if s.Size == 0 {
		s.Size = pdf.PointConvert(12 * 72 / 25.4)
	}
	if s.Margin == 0 {
		s.Margin = pdf.PointConvert(5 * 72 / 25.4)
	}
}

func (s *Stamp) size() (w, h float64) {
	if s.Kind == StampPDF417 {
		return 3 * s.Size, s.Size
	}
	return s.Size, s.Size
}

func (s *Stamp) draw(pdf *gofpdf.Fpdf, pageW, pageH float64) {
	if s.key == "" {
		return
	}
	w, h := s.size()
	x, y := boxPosition(s.Position, pageW, pageH, w, h, s.Margin)
	barcode.Barcode(pdf, s.key, x, y, w, h, false)
}
