package pageops

import (
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/lvillar/richdoc"
)

// TextWatermark defines a text-based watermark.
type TextWatermark struct {
	Text     string        // watermark text
	FontSize float64       // font size in points (default: 60)
	Color    richdoc.Color // text color (default: light gray)
	Opacity  float64       // 0.0 to 1.0 (default: 0.3)
	Angle    float64       // rotation angle in degrees (default: 45)
}

// statuses that mark a document as not final
var watermarkStatuses = map[string]string{
	"draft":     "DRAFT",
	"review":    "IN REVIEW",
	"in review": "IN REVIEW",
	"archived":  "ARCHIVED",
}

// StatusWatermark returns the watermark for a document status, false when
// the status needs none (e.g. "published").
func StatusWatermark(status string, color richdoc.Color) (TextWatermark, bool) {
	text, ok := watermarkStatuses[strings.ToLower(strings.TrimSpace(status))]
	if !ok {
		return TextWatermark{}, false
	}
	return TextWatermark{Text: text, Color: color}, true
}

func (wm TextWatermark) withDefaults() TextWatermark {
	if wm.FontSize == 0 {
		wm.FontSize = 60
	}
	if wm.Opacity == 0 {
		wm.Opacity = 0.3
	}
	if wm.Angle == 0 {
		wm.Angle = 45
	}
	if wm.Color == (richdoc.Color{}) {
		wm.Color = richdoc.Color{R: 200, G: 200, B: 200}
	}
	return wm
}

// drawTextWatermark renders the watermark text centered on the current page.
func drawTextWatermark(pdf *gofpdf.Fpdf, wm TextWatermark, pageW, pageH float64) {
	wm = wm.withDefaults()
	pdf.SetFont("Helvetica", "B", wm.FontSize)
	pdf.SetTextColor(wm.Color.R, wm.Color.G, wm.Color.B)
	pdf.SetAlpha(wm.Opacity, "Normal")

	textW := pdf.GetStringWidth(wm.Text)
	cx := pageW / 2
	cy := pageH / 2

	pdf.TransformBegin()
	pdf.TransformRotate(wm.Angle, cx, cy)

	// approximate vertical centering
	x := cx - textW/2
	y := cy + pdf.PointConvert(wm.FontSize)/3

	pdf.Text(x, y, wm.Text)
	pdf.TransformEnd()

	pdf.SetAlpha(1.0, "Normal")
}

// DefaultNbAlias is replaced by the total page count when the document is closed.
const DefaultNbAlias = "{nb}"

// PageNumberStyle defines the appearance and position of page numbers.
type PageNumberStyle struct {
	Format   string        // fmt format receiving the page number, e.g. "Page %d of {nb}"
	Position Position      // where to place the number (default: BottomCenter)
	FontSize float64       // font size in points (default: 9)
	Color    richdoc.Color // text color (default: black)
	Margin   float64       // distance from the page edge in the document unit (default: 10 mm)
}

// Alias returns the placeholder standing for the total page count.
func (s PageNumberStyle) Alias() string {
	return DefaultNbAlias
}

func (s PageNumberStyle) withDefaults(pdf *gofpdf.Fpdf) PageNumberStyle {
	if s.Format == "" {
		s.Format = "Page %d of " + DefaultNbAlias
	}
	if s.FontSize == 0 {
		s.FontSize = 9
	}
	if s.Margin == 0 {
		s.Margin = pdf.PointConvert(10 * 72 / 25.4)
	}
	if s.Position == PositionDefault {
		s.Position = BottomCenter
	}
	return s
}

// PageLabel formats the label of page n, leaving the total-count alias in place.
func (s PageNumberStyle) PageLabel(n int) string {
	format := s.Format
	if format == "" {
		format = "Page %d of " + DefaultNbAlias
	}
	if !strings.Contains(format, "%d") {
		return format
	}
	return strings.Replace(format, "%d", strconv.Itoa(n), 1)
}

func drawPageNumber(pdf *gofpdf.Fpdf, style PageNumberStyle, page int, pageW, pageH float64) {
	style = style.withDefaults(pdf)
	text := style.PageLabel(page)
	pdf.SetFont("Helvetica", "", style.FontSize)
	pdf.SetTextColor(style.Color.R, style.Color.G, style.Color.B)

	textW := pdf.GetStringWidth(text)
	x, y := calculatePosition(style.Position, pageW, pageH, textW, pdf.PointConvert(style.FontSize), style.Margin)
	pdf.Text(x, y, text)
}
