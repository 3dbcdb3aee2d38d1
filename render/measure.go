package render

import (
	"sync"

	"github.com/phpdave11/gofpdf"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/paginate"
)

// PDFMeasurer measures strings with the font metrics of the PDF backend, so
// wrapped lines fit exactly once drawn. The backend document is created on
// the first measurement. A PDFMeasurer is safe for concurrent use.
type PDFMeasurer struct {
	cfg *richdoc.Config

	once     sync.Once
	mu       sync.Mutex
	pdf      *gofpdf.Fpdf
	err      error
	fallback paginate.EstimateMeasurer
}

// NewPDFMeasurer returns a measurer for the layout of cfg.
func NewPDFMeasurer(cfg *richdoc.Config) *PDFMeasurer {
	return &PDFMeasurer{cfg: cfg, fallback: paginate.NewEstimateMeasurer(cfg)}
}

func (m *PDFMeasurer) init() {
	m.pdf = newDocument(m.cfg)
	if m.pdf.Err() {
		m.err = m.pdf.Error()
	}
}

// Err reports whether the backend could be loaded. It loads it if needed.
func (m *PDFMeasurer) Err() error {
	m.once.Do(m.init)
	return m.err
}

// StringWidth implements paginate.Measurer. Widths are estimated when the
// backend is unavailable.
func (m *PDFMeasurer) StringWidth(s string, f paginate.Font) float64 {
	if m.Err() != nil {
		return m.fallback.StringWidth(s, f)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(coreFamily(f.Family), fontStyle(f), f.Size)
	if m.pdf.Err() {
		return m.fallback.StringWidth(s, f)
	}
	return m.pdf.GetStringWidth(pdfText(s))
}

// newDocument creates a backend document for the layout of cfg. The
// paginator decides page breaks, so automatic breaking is off.
func newDocument(cfg *richdoc.Config) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        cfg.Unit,
		Size:           gofpdf.SizeType{Wd: cfg.PageWidth, Ht: cfg.PageHeight},
		FontDirStr:     cfg.FontDir,
	})
	pdf.SetMargins(cfg.MarginLeft, cfg.MarginTop, cfg.MarginRight)
	pdf.SetAutoPageBreak(false, cfg.MarginBottom)
	pdf.SetCellMargin(0)
	return pdf
}
