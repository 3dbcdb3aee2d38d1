package render

import (
	"log/slog"

	"github.com/phpdave11/gofpdf"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/paginate"
)

// drawer replays draw instructions on the current page.
type drawer struct {
	pdf    *gofpdf.Fpdf
	cfg    *richdoc.Config
	images *images
	log    *slog.Logger

	placeholders int
}

func (d *drawer) page(p paginate.Page) {
	for _, in := range p.Instructions {
		switch in.Kind {
		case paginate.TextOp:
			d.text(in)
		case paginate.RectOp:
			d.rect(in)
		case paginate.LineOp:
			d.line(in)
		case paginate.ImageOp:
			d.image(in)
		}
	}
}

func (d *drawer) text(in paginate.Instruction) {
	d.pdf.SetFont(coreFamily(in.Font.Family), fontStyle(in.Font), in.Font.Size)
	d.pdf.SetTextColor(in.Color.R, in.Color.G, in.Color.B)
	align := in.Align
	if align == "" {
		align = "L"
	}
	d.pdf.SetXY(in.X, in.Y)
	d.pdf.CellFormat(in.W, in.H, pdfText(in.Text), "", 0, align+"M", false, 0, "")
}

func (d *drawer) rect(in paginate.Instruction) {
	style := ""
	if in.Fill != nil {
		d.pdf.SetFillColor(in.Fill.R, in.Fill.G, in.Fill.B)
		style += "F"
	}
	if in.Border {
		d.pdf.SetDrawColor(in.Color.R, in.Color.G, in.Color.B)
		if in.LineWidth > 0 {
			d.pdf.SetLineWidth(in.LineWidth)
		}
		style += "D"
	}
	if style == "" {
		return
	}
	d.pdf.Rect(in.X, in.Y, in.W, in.H, style)
}

func (d *drawer) line(in paginate.Instruction) {
	d.pdf.SetDrawColor(in.Color.R, in.Color.G, in.Color.B)
	if in.LineWidth > 0 {
		d.pdf.SetLineWidth(in.LineWidth)
	}
	d.pdf.Line(in.X, in.Y, in.X+in.W, in.Y+in.H)
}

func (d *drawer) image(in paginate.Instruction) {
	img, err := d.images.register(in.Src)
	if err != nil {
		d.log.Warn("image could not be embedded, drawing placeholder",
			"component", "render", "alt", in.Alt, "error", err)
		d.placeholders++
		label := "[Image]"
		if in.Alt != "" {
			label = "[Image: " + in.Alt + "]"
		}
		muted := d.cfg.Theme.Muted
		d.text(paginate.Instruction{
			X: in.X, Y: in.Y, W: in.W, H: d.cfg.LineHeight, Text: label, Align: "L",
			Font:  paginate.Font{Family: d.cfg.FontFamily, Style: "I", Size: d.cfg.FontSize},
			Color: muted,
		})
		return
	}
	w, h := fit(img.width, img.height, in.W, in.H)
	d.pdf.ImageOptions(img.name, in.X, in.Y, w, h, false, gofpdf.ImageOptions{ImageType: img.typ}, 0, "")
}
