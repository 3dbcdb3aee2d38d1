// Package table provides the table support shared by the editor and the paginator.
//
// On the editing side it builds the detached table fragments inserted by the
// editor (a header row plus body rows with placeholder text). On the layout
// side it computes the grid geometry used by the paginator: integer column
// widths with the remainder absorbed by the last column, fixed-height row
// strips, and wrapped cell text clipped to the strip.
package table

import "github.com/lvillar/richdoc"

// FontSpec defines font properties for cell text.
type FontSpec struct {
	Family string
	Style  string  // "", "B", "I", "BI"
	Size   float64 // in points
}

// Padding defines spacing inside a cell.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// UniformPadding creates a Padding with the same value on all sides.
func UniformPadding(v float64) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// BorderStyle defines the appearance of cell borders.
type BorderStyle struct {
	Width float64
	Color richdoc.Color
}

// CellStyle defines the visual appearance of a cell.
type CellStyle struct {
	FillColor *richdoc.Color
	TextColor richdoc.Color
	Font      FontSpec
}

// Style defines the overall appearance of a table.
type Style struct {
	Header CellStyle
	Body   CellStyle
	Border BorderStyle
}

// DefaultStyle derives a table style from the layout font and theme.
func DefaultStyle(cfg *richdoc.Config) Style {
	fill := cfg.Theme.TableHeaderFill
	size := cfg.FontSize - 1
	if size < 6 {
		size = cfg.FontSize
	}
	return Style{
		Header: CellStyle{
			FillColor: &fill,
			TextColor: cfg.Theme.TableHeaderText,
			Font:      FontSpec{Family: cfg.FontFamily, Style: "B", Size: size},
		},
		Body: CellStyle{
			TextColor: cfg.Theme.Text,
			Font:      FontSpec{Family: cfg.FontFamily, Size: size},
		},
		Border: BorderStyle{Width: cfg.FromMM(0.2), Color: cfg.Theme.TableBorder},
	}
}
