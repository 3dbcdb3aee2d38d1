package table_test

import (
	"errors"
	"testing"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/content"
	"github.com/lvillar/richdoc/table"
)

func TestColumnWidthsRemainderInLastColumn(t *testing.T) {
	tests := []struct {
		total float64
		cols  int
		want  []float64
	}{
		{170, 4, []float64{42, 42, 42, 44}},
		{170, 3, []float64{56, 56, 58}},
		{170, 1, []float64{170}},
		{481.89, 2, []float64{240, 241.89}},
	}
	for _, tt := range tests {
		got := table.ColumnWidths(tt.total, tt.cols)
		if len(got) != len(tt.want) {
			t.Fatalf("ColumnWidths(%v, %d) = %v", tt.total, tt.cols, got)
		}
		sum := 0.0
		for i := range got {
			sum += got[i]
			if d := got[i] - tt.want[i]; d > 1e-9 || d < -1e-9 {
				t.Errorf("ColumnWidths(%v, %d)[%d] = %v, want %v", tt.total, tt.cols, i, got[i], tt.want[i])
			}
		}
		if d := sum - tt.total; d > 1e-9 || d < -1e-9 {
			t.Errorf("widths must add up to %v, got %v", tt.total, sum)
		}
	}
	if table.ColumnWidths(100, 0) != nil {
		t.Error("zero columns should produce no widths")
	}
}

func TestColumnWidthsStep(t *testing.T) {
	mmInInches := 1 / 25.4
	got := table.ColumnWidthsStep(170*mmInInches, 8, mmInInches)
	for i, w := range got {
		want := 21.0
		if i == 7 {
			want = 23
		}
		if d := w/mmInInches - want; d > 1e-6 || d < -1e-6 {
			t.Errorf("column %d is %.4fmm, want %vmm", i, w/mmInInches, want)
		}
	}
	if w := table.ColumnWidthsStep(10, 2, 0); w[0] != 5 || w[1] != 5 {
		t.Errorf("zero step should behave as 1, got %v", w)
	}
}

func TestLayoutGeometry(t *testing.T) {
	l := table.Layout{X: 20, Width: 170, Columns: 4, RowHeight: 10, LineHeight: 4, Padding: table.UniformPadding(1)}
	if x := l.CellX(3); x != 20+42*3 {
		t.Fatalf("CellX(3) = %v", x)
	}
	if w := l.TextWidth(3); w != 42 {
		t.Fatalf("TextWidth(3) = %v", w)
	}
	if n := l.MaxLines(); n != 2 {
		t.Fatalf("MaxLines() = %d, want 2", n)
	}
	clipped := l.Clip([]string{"a", "b", "c"})
	if len(clipped) != 2 || clipped[1] != "b..." {
		t.Fatalf("Clip = %q", clipped)
	}
}

func TestSpecFragment(t *testing.T) {
	frag, err := table.Spec{Rows: 3, Cols: 4}.Fragment()
	if err != nil {
		t.Fatalf("Fragment: %v", err)
	}
	tr := content.New()
	_ = tr.Append(tr.Root(), tr.Import(frag)...)

	tbl := tr.FindTag("table")[0]
	rows := tr.TableRows(tbl)
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	for i, r := range rows {
		cells := tr.RowCells(r)
		if len(cells) != 4 {
			t.Fatalf("row %d has %d cells", i, len(cells))
		}
	}
	if got := tr.TextContent(tr.RowCells(rows[0])[1]); got != "Header 2" {
		t.Errorf("header text = %q", got)
	}
	if got := tr.TextContent(tr.RowCells(rows[2])[3]); got != "Cell 2-4" {
		t.Errorf("cell text = %q", got)
	}
	if tr.Tag(tr.RowCells(rows[0])[0]) != "th" {
		t.Error("header cells should be th")
	}
}

func TestSpecRejectsNonPositive(t *testing.T) {
	for _, s := range []table.Spec{{0, 3}, {3, 0}, {-1, -1}} {
		if _, err := s.Fragment(); !errors.Is(err, richdoc.ErrInvalidTableSpec) {
			t.Errorf("Spec%+v: expected ErrInvalidTableSpec, got %v", s, err)
		}
	}
}

func TestBuilderKeepsHeadersFirst(t *testing.T) {
	b := table.NewBuilder()
	b.AddRow().AddCell("body")
	b.AddHeaderRow().AddCell("head").SetAlign("center")
	tr := content.New()
	_ = tr.Append(tr.Root(), tr.Import(b.Fragment())...)
	want := `<table><thead><tr><th style="text-align: center">head</th></tr></thead><tbody><tr><td>body</td></tr></tbody></table>`
	if got := tr.String(); got != want {
		t.Fatalf("got %q", got)
	}
}

func TestDefaultStyle(t *testing.T) {
	s := table.DefaultStyle(richdoc.DefaultConfig())
	if s.Header.FillColor == nil || s.Header.Font.Style != "B" {
		t.Fatalf("header style %+v", s.Header)
	}
	if s.Body.FillColor != nil {
		t.Fatal("body cells are not filled")
	}
}
