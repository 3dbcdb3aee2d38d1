package table

import (
	"fmt"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/content"
)

// Cell is a single cell of a table being built.
type Cell struct {
	text   string
	header bool
	align  string
}

// SetAlign sets the text-align of this cell ("left", "center", "right").
func (c *Cell) SetAlign(align string) *Cell {
	c.align = align
	return c
}

// Row represents a single row in a table being built.
type Row struct {
	cells    []*Cell
	isHeader bool
}

// AddCell adds a text cell to the row and returns the cell for chaining.
func (r *Row) AddCell(text string) *Cell {
	c := &Cell{text: text, header: r.isHeader}
	r.cells = append(r.cells, c)
	return c
}

// AddCellf adds a formatted text cell to the row.
func (r *Row) AddCellf(format string, args ...any) *Cell {
	return r.AddCell(fmt.Sprintf(format, args...))
}

// Builder assembles a detached table fragment row by row.
type Builder struct {
	rows []*Row
}

// NewBuilder returns an empty table builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddHeaderRow adds a header row and returns it for chaining. Header rows
// are kept ahead of the body rows.
func (b *Builder) AddHeaderRow() *Row {
	r := &Row{isHeader: true}
	insertIdx := 0
	for i, existing := range b.rows {
		if !existing.isHeader {
			break
		}
		insertIdx = i + 1
	}
	b.rows = append(b.rows, nil)
	copy(b.rows[insertIdx+1:], b.rows[insertIdx:])
	b.rows[insertIdx] = r
	return r
}

// AddRow adds a body row and returns it for chaining.
func (b *Builder) AddRow() *Row {
	r := &Row{}
	b.rows = append(b.rows, r)
	return r
}

// Fragment returns the table as a detached <table> element with thead and
// tbody sections.
func (b *Builder) Fragment() content.Fragment {
	var head, body []*content.Node
	for _, r := range b.rows {
		tr := content.Element("tr", nil)
		for _, c := range r.cells {
			tag := "td"
			if c.header {
				tag = "th"
			}
			var attrs []content.Attr
			if c.align != "" {
				attrs = append(attrs, content.Attr{Key: "style", Val: "text-align: " + c.align})
			}
			tr.Children = append(tr.Children, content.Element(tag, attrs, content.Text(c.text)))
		}
		if r.isHeader {
			head = append(head, tr)
		} else {
			body = append(body, tr)
		}
	}

	tbl := content.Element("table", nil)
	if len(head) > 0 {
		tbl.Children = append(tbl.Children, content.Element("thead", nil, head...))
	}
	if len(body) > 0 {
		tbl.Children = append(tbl.Children, content.Element("tbody", nil, body...))
	}
	return content.Fragment{tbl}
}

// Spec is the size of a table inserted by the editor.
type Spec struct {
	Rows int // body rows
	Cols int
}

// Validate rejects non-positive row or column counts.
func (s Spec) Validate() error {
	if s.Rows < 1 || s.Cols < 1 {
		return fmt.Errorf("%w: %dx%d", richdoc.ErrInvalidTableSpec, s.Rows, s.Cols)
	}
	return nil
}

// Fragment builds a header row of Cols cells labelled "Header i" followed
// by Rows body rows of cells labelled "Cell i-j" (1-based).
func (s Spec) Fragment() (content.Fragment, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	b := NewBuilder()
	h := b.AddHeaderRow()
	for j := 1; j <= s.Cols; j++ {
		h.AddCellf("Header %d", j)
	}
	for i := 1; i <= s.Rows; i++ {
		r := b.AddRow()
		for j := 1; j <= s.Cols; j++ {
			r.AddCellf("Cell %d-%d", i, j)
		}
	}
	return b.Fragment(), nil
}
