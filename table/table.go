package table

import "math"

// Layout is the grid geometry of one table on a page.
type Layout struct {
	X          float64 // left edge
	Width      float64 // total table width
	Columns    int
	RowHeight  float64 // every row is a strip of this height
	LineHeight float64 // line height of wrapped cell text
	Padding    Padding

	// Step is the width grid in the layout unit, e.g. 1mm expressed in
	// inches. Zero means 1.
	Step float64
}

// ColumnWidths splits total into cols columns of the integer width
// floor(total/cols); the last column absorbs the remainder.
func ColumnWidths(total float64, cols int) []float64 {
	return ColumnWidthsStep(total, cols, 1)
}

// ColumnWidthsStep is ColumnWidths on a grid of step-sized units: every
// column but the last is a whole number of steps wide.
func ColumnWidthsStep(total float64, cols int, step float64) []float64 {
	if cols <= 0 {
		return nil
	}
	if step <= 0 {
		step = 1
	}
	w := math.Floor(total/step/float64(cols)+1e-9) * step
	widths := make([]float64, cols)
	for i := range widths {
		widths[i] = w
	}
	widths[cols-1] = total - w*float64(cols-1)
	return widths
}

// Widths returns the column widths of the layout.
func (l Layout) Widths() []float64 {
	return ColumnWidthsStep(l.Width, l.Columns, l.Step)
}

// CellX returns the left edge of column i.
func (l Layout) CellX(i int) float64 {
	x := l.X
	for j, w := range l.Widths() {
		if j == i {
			break
		}
		x += w
	}
	return x
}

// TextWidth is the wrapping width available inside a cell of column i,
// at least one Step.
func (l Layout) TextWidth(i int) float64 {
	widths := l.Widths()
	if i < 0 || i >= len(widths) {
		return 0
	}
	step := l.Step
	if step <= 0 {
		step = 1
	}
	return max(widths[i]-l.Padding.Left-l.Padding.Right, step)
}

// MaxLines is the number of text lines that fit inside a row strip.
func (l Layout) MaxLines() int {
	if l.LineHeight <= 0 {
		return 0
	}
	avail := l.RowHeight - l.Padding.Top - l.Padding.Bottom
	n := int(math.Floor(avail/l.LineHeight + 1e-9))
	if n < 1 {
		n = 1
	}
	return n
}

// Clip keeps the wrapped lines that fit inside a row strip. A clipped cell
// ends with an ellipsis on its last visible line.
func (l Layout) Clip(lines []string) []string {
	max := l.MaxLines()
	if len(lines) <= max {
		return lines
	}
	out := append([]string(nil), lines[:max]...)
	out[max-1] += "..."
	return out
}
