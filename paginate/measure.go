package paginate

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/lvillar/richdoc"
)

// Measurer reports the rendered width of a string in the layout unit.
type Measurer interface {
	StringWidth(s string, f Font) float64
}

// EstimateMeasurer approximates string widths from grapheme cell widths and
// the font size. It needs no font files, so layouts stay deterministic even
// without a rendering backend.
type EstimateMeasurer struct {
	Scale float64 // points per layout unit
}

// NewEstimateMeasurer returns an EstimateMeasurer for the units of cfg.
func NewEstimateMeasurer(cfg *richdoc.Config) EstimateMeasurer {
	return EstimateMeasurer{Scale: cfg.Scale()}
}

// StringWidth implements Measurer.
func (m EstimateMeasurer) StringWidth(s string, f Font) float64 {
	factor := 0.5
	switch {
	case strings.EqualFold(f.Family, "Courier"):
		factor = 0.6
	case strings.Contains(f.Style, "B"):
		factor = 0.55
	}
	scale := m.Scale
	if scale <= 0 {
		scale = 1
	}
	return float64(uniseg.StringWidth(s)) * f.Size * factor / scale
}

// FixedMeasurer gives every grapheme cluster the same width, whatever the font.
type FixedMeasurer struct {
	CharWidth float64
}

// StringWidth implements Measurer.
func (m FixedMeasurer) StringWidth(s string, _ Font) float64 {
	return float64(uniseg.GraphemeClusterCount(s)) * m.CharWidth
}
