package render

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/lvillar/richdoc/paginate"
)

// pdfText converts s to the cp1252 encoding used by the core PDF fonts.
// Characters outside it become '?'.
func pdfText(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// coreFamily maps a family name onto one of the core fonts.
func coreFamily(family string) string {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "times", "times new roman", "serif":
		return "Times"
	case "courier", "courier new", "monospace":
		return "Courier"
	}
	return "Helvetica"
}

// fontStyle keeps the style letters gofpdf understands.
func fontStyle(f paginate.Font) string {
	var b strings.Builder
	for _, c := range "BIU" {
		if strings.ContainsRune(strings.ToUpper(f.Style), c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}
