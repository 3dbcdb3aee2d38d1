package paginate

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/content"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustParse(t *testing.T, s string) *content.Tree {
	t.Helper()
	tree, err := content.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", s, err)
	}
	return tree
}

func checkBounds(t *testing.T, cfg *richdoc.Config, pages []Page) {
	t.Helper()
	for _, p := range pages {
		for i, in := range p.Instructions {
			if in.Bottom() > cfg.Bound()+1e-6 {
				t.Fatalf("page %d instruction %d (%s %q) ends at %.3f, bound is %.3f",
					p.Index, i, in.Kind, in.Text, in.Bottom(), cfg.Bound())
			}
			if in.Y < cfg.MarginTop-1e-6 {
				t.Fatalf("page %d instruction %d starts above the top margin: %.3f", p.Index, i, in.Y)
			}
		}
	}
}

func textOps(pages []Page) []Instruction {
	var out []Instruction
	for _, p := range pages {
		for _, in := range p.Instructions {
			if in.Kind == TextOp {
				out = append(out, in)
			}
		}
	}
	return out
}

func TestLongParagraphBreaksPages(t *testing.T) {
	cfg := richdoc.DefaultConfig()
	p := New(cfg, WithMeasurer(FixedMeasurer{CharWidth: cfg.ContentWidth() / 40}), WithLogger(quietLogger()))

	text := strings.Repeat("abcdefghi ", 500)
	if len(text) != 5000 {
		t.Fatalf("test text has %d characters", len(text))
	}
	res := p.Paginate(mustParse(t, "<p>"+text+"</p>"))

	if len(res.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(res.Blocks))
	}
	b := res.Blocks[0]
	if b.Lines != 125 {
		t.Fatalf("expected 125 wrapped lines, got %d", b.Lines)
	}
	if b.Advance < 125*cfg.LineHeight {
		t.Fatalf("block advanced %.2f, want at least %.2f", b.Advance, 125*cfg.LineHeight)
	}
	if len(res.Pages) < 2 || b.EndPage == b.StartPage {
		t.Fatalf("expected a page break, got %d pages", len(res.Pages))
	}
	for _, in := range textOps(res.Pages) {
		if got := len([]rune(in.Text)); got > 40 {
			t.Fatalf("line %q has %d characters", in.Text, got)
		}
	}
	checkBounds(t, cfg, res.Pages)
}

func TestBoundaryInvariant(t *testing.T) {
	cfg, err := richdoc.NewConfig(richdoc.WithPageSize(richdoc.PageSizeA5))
	if err != nil {
		t.Fatal(err)
	}
	img := content.EncodeDataURL("image/png", []byte("\x89PNG"))

	var b strings.Builder
	for i := 0; i < 12; i++ {
		b.WriteString("<h1>Chapter</h1><h2>Section</h2><h3>Sub</h3>")
		b.WriteString("<p>" + strings.Repeat("lorem ipsum dolor sit amet ", 30) + "</p>")
		b.WriteString(`<p><img src="` + img + `" alt="chart"></p>`)
		b.WriteString("<table><tbody><tr><td>a</td><td>" + strings.Repeat("long cell ", 40) + "</td></tr><tr><td>c</td></tr></tbody></table>")
		b.WriteString("<ul><li>one<ul><li>nested</li></ul></li><li>two</li></ul>")
		b.WriteString("<blockquote><p>quoted text</p></blockquote><pre>code\n\tindented</pre><br>")
	}

	pages := New(cfg, WithLogger(quietLogger())).Render(mustParse(t, b.String()))
	if len(pages) < 2 {
		t.Fatalf("expected several pages, got %d", len(pages))
	}
	for i, p := range pages {
		if p.Index != i {
			t.Fatalf("page %d has index %d", i, p.Index)
		}
	}
	checkBounds(t, cfg, pages)
}

func TestOversizedBlocksAreClamped(t *testing.T) {
	cfg, err := richdoc.NewConfig(richdoc.WithPageSizeCustom(100, 50), richdoc.WithMargins(10, 10, 10, 10))
	if err != nil {
		t.Fatal(err)
	}
	img := content.EncodeDataURL("image/jpeg", []byte{0xff, 0xd8})
	pages := New(cfg, WithLogger(quietLogger())).Render(mustParse(t, `<h1>Big</h1><img src="`+img+`"><img src="`+img+`">`))
	// each image is clamped to the 30 unit content height and gets its own page
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	checkBounds(t, cfg, pages)
}

func TestDeterministic(t *testing.T) {
	src := "<h1>Report</h1><p>Intro <strong>bold</strong> and <em>italic</em>.</p>" +
		"<ol><li>first</li><li>second</li></ol>" +
		"<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>" +
		strings.Repeat("<p>filler paragraph text that wraps around the page</p>", 60)

	p := New(nil, WithLogger(quietLogger()))
	first := p.Render(mustParse(t, src))
	second := p.Render(mustParse(t, src))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("rendering is not deterministic (-first +second):\n%s", diff)
	}
}

func TestImagePlaceholder(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	p := New(nil, WithLogger(logger))

	pages, err := p.RenderString(`<p><img src="https://example.com/a.png" alt="Sales chart"></p>`)
	if err != nil {
		t.Fatalf("RenderString failed: %v", err)
	}
	ops := textOps(pages)
	if len(ops) != 1 || ops[0].Text != "[Image: Sales chart]" {
		t.Fatalf("expected placeholder text, got %+v", ops)
	}
	for _, in := range pages[0].Instructions {
		if in.Kind == ImageOp {
			t.Fatal("non-embeddable image must not produce an image instruction")
		}
	}
	if !strings.Contains(logs.String(), "placeholder") {
		t.Fatalf("expected a warning to be logged, got %q", logs.String())
	}
}

func TestEmbeddedImageWithCaption(t *testing.T) {
	cfg := richdoc.DefaultConfig()
	src := content.EncodeDataURL("image/png", []byte("\x89PNG"))
	pages := New(cfg, WithLogger(quietLogger())).Render(mustParse(t, `<p><img src="`+src+`" alt="Logo"></p>`))

	ins := pages[0].Instructions
	if len(ins) != 2 {
		t.Fatalf("expected image and caption, got %d instructions", len(ins))
	}
	if ins[0].Kind != ImageOp || ins[0].Src != src || ins[0].Alt != "Logo" {
		t.Fatalf("unexpected image instruction %+v", ins[0])
	}
	if math.Abs(ins[0].W-cfg.FromMM(60)) > 1e-9 || math.Abs(ins[0].H-cfg.FromMM(40)) > 1e-9 {
		t.Fatalf("unexpected image box %.2fx%.2f", ins[0].W, ins[0].H)
	}
	if ins[1].Kind != TextOp || ins[1].Text != "Logo" || ins[1].Y < ins[0].Bottom()-1e-9 {
		t.Fatalf("unexpected caption %+v", ins[1])
	}
}

func TestTableGrid(t *testing.T) {
	cfg := richdoc.DefaultConfig()
	src := "<table><thead><tr><th>H1</th><th>H2</th><th>H3</th></tr></thead>" +
		"<tbody><tr><td>a</td><td>b</td></tr><tr><td>c</td><td>d</td><td>e</td></tr></tbody></table>"
	pages := New(cfg, WithLogger(quietLogger())).Render(mustParse(t, src))

	var rects []Instruction
	for _, in := range pages[0].Instructions {
		if in.Kind == RectOp {
			rects = append(rects, in)
		}
	}
	if len(rects) != 9 {
		t.Fatalf("expected 3x3 cells, got %d", len(rects))
	}

	w := math.Floor(math.Floor(cfg.ContentWidth()) / 3)
	last := math.Floor(cfg.ContentWidth()) - 2*w
	if rects[0].W != w || rects[1].W != w || rects[2].W != last {
		t.Fatalf("unexpected widths %.3f %.3f %.3f", rects[0].W, rects[1].W, rects[2].W)
	}
	if rects[0].Fill == nil || rects[3].Fill != nil {
		t.Fatal("only header cells should be filled")
	}
	if rects[3].Y != rects[0].Y+cfg.FromMM(10) {
		t.Fatalf("rows are not fixed strips: %.3f then %.3f", rects[0].Y, rects[3].Y)
	}

	ops := textOps(pages)
	if ops[0].Text != "[Table: 3 x 3]" {
		t.Fatalf("expected table label, got %q", ops[0].Text)
	}
	if ops[1].Text != "H1" || ops[1].Font.Style != "B" {
		t.Fatalf("expected bold header text, got %+v", ops[1])
	}
}

func TestTableWidthsInEveryUnit(t *testing.T) {
	src := "<table><tbody><tr>" + strings.Repeat("<td>cell</td>", 8) + "</tr></tbody></table>"
	want := []float64{21, 21, 21, 21, 21, 21, 21, 23}

	for _, unit := range []string{richdoc.UnitMillimeter, richdoc.UnitInch, richdoc.UnitCentimeter, richdoc.UnitPoint} {
		cfg, err := richdoc.NewConfig(richdoc.WithUnit(unit))
		if err != nil {
			t.Fatalf("%s: %v", unit, err)
		}
		pages := New(cfg, WithLogger(quietLogger())).Render(mustParse(t, src))

		var got []float64
		prevX := -1.0
		for _, in := range pages[0].Instructions {
			if in.Kind != RectOp {
				continue
			}
			if in.X <= prevX {
				t.Fatalf("%s: cells overlap at x=%.4f", unit, in.X)
			}
			prevX = in.X
			got = append(got, math.Round(in.W/cfg.FromMM(1)*1000)/1000)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: column widths in mm (-want +got):\n%s", unit, diff)
		}
		for _, in := range textOps(pages)[1:] {
			if in.W <= 0 {
				t.Fatalf("%s: cell text %q has no room", unit, in.Text)
			}
		}
	}
}

func TestTableCellClipped(t *testing.T) {
	cfg := richdoc.DefaultConfig()
	src := "<table><tbody><tr><td>" + strings.Repeat("word ", 200) + "</td></tr></tbody></table>"
	pages := New(cfg, WithLogger(quietLogger())).Render(mustParse(t, src))

	ops := textOps(pages)[1:]
	if len(ops) == 0 || !strings.HasSuffix(ops[len(ops)-1].Text, "...") {
		t.Fatalf("expected clipped cell text, got %+v", ops)
	}
	checkBounds(t, cfg, pages)
}

func TestListMarkersAndIndent(t *testing.T) {
	cfg := richdoc.DefaultConfig()
	src := "<ol><li>first</li><li><p>second</p><ul><li>inner</li></ul></li></ol>"
	ops := textOps(New(cfg, WithLogger(quietLogger())).Render(mustParse(t, src)))

	want := []string{"1. first", "2. second", "• inner"}
	var got []string
	for _, in := range ops {
		got = append(got, in.Text)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("list lines mismatch (-want +got):\n%s", diff)
	}
	if ops[2].X <= ops[0].X {
		t.Fatalf("nested item not indented: %.2f <= %.2f", ops[2].X, ops[0].X)
	}
}

func TestHeadingsAndAlignment(t *testing.T) {
	src := `<h1>Title</h1><h2 style="text-align: center">Sub</h2><p style="text-align: right">Body</p>`
	ops := textOps(New(nil, WithLogger(quietLogger())).Render(mustParse(t, src)))
	if len(ops) != 3 {
		t.Fatalf("expected 3 text lines, got %d", len(ops))
	}
	if ops[0].Font.Size != 20 || ops[0].Font.Style != "B" || ops[1].Font.Size != 16 {
		t.Fatalf("unexpected heading fonts %+v %+v", ops[0].Font, ops[1].Font)
	}
	if ops[1].Align != "C" || ops[2].Align != "R" {
		t.Fatalf("unexpected alignment %q %q", ops[1].Align, ops[2].Align)
	}
}

func TestUnknownTagsRecurse(t *testing.T) {
	src := "<section><article><p>deep</p></article></section><custom-tag>loose text</custom-tag>"
	ops := textOps(New(nil, WithLogger(quietLogger())).Render(mustParse(t, src)))
	if len(ops) != 2 || ops[0].Text != "deep" || ops[1].Text != "loose text" {
		t.Fatalf("unexpected output %+v", ops)
	}
}

func TestInlineBreaksAndWhitespace(t *testing.T) {
	src := "<p>one<br>two</p><p>   </p><p>three\n\tfour</p>"
	ops := textOps(New(nil, WithLogger(quietLogger())).Render(mustParse(t, src)))
	var got []string
	for _, in := range ops {
		got = append(got, in.Text)
	}
	if diff := cmp.Diff([]string{"one", "two", "three four"}, got); diff != "" {
		t.Fatalf("unexpected lines (-want +got):\n%s", diff)
	}
}

func TestLinkRunsUseLinkColor(t *testing.T) {
	cfg := richdoc.DefaultConfig()
	cw := cfg.ContentWidth() / 12
	left := cfg.MarginLeft
	theme := cfg.Theme

	type textRun struct {
		Text  string
		X     float64
		Style string
		Color richdoc.Color
	}
	tests := []struct {
		name string
		src  string
		want []textRun
	}{
		{
			"link inside a line",
			`<p>see <a href="https://a.example">the docs</a> now</p>`,
			[]textRun{
				{"see ", left, "", theme.Text},
				{"the docs", left + 4*cw, "U", theme.Link},
				{"now", left, "", theme.Text},
			},
		},
		{
			"whole line is a link",
			`<p><a href="https://a.example">all <em>of</em> it</a></p>`,
			[]textRun{{"all of it", left, "U", theme.Link}},
		},
		{
			"no link",
			`<p>plain words</p>`,
			[]textRun{{"plain words", left, "", theme.Text}},
		},
	}
	for _, tt := range tests {
		p := New(cfg, WithMeasurer(FixedMeasurer{CharWidth: cw}), WithLogger(quietLogger()))
		var got []textRun
		for _, in := range textOps(p.Render(mustParse(t, tt.src))) {
			got = append(got, textRun{in.Text, math.Round(in.X*1e6) / 1e6, in.Font.Style, in.Color})
		}
		for i := range tt.want {
			tt.want[i].X = math.Round(tt.want[i].X*1e6) / 1e6
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s: unexpected runs (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestLinkSegments(t *testing.T) {
	mask := []bool{false, false, true, true, false}
	next := 0
	got := linkSegments("ab cd e", mask, &next)
	want := []segment{{"ab ", false}, {"cd", true}, {" e", false}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(segment{})); diff != "" {
		t.Fatalf("unexpected segments (-want +got):\n%s", diff)
	}
	if next != 5 {
		t.Fatalf("expected 5 mask entries consumed, got %d", next)
	}
}

func TestPreKeepsLines(t *testing.T) {
	ops := textOps(New(nil, WithLogger(quietLogger())).Render(mustParse(t, "<pre>a\n\tb</pre>")))
	if len(ops) != 2 || ops[1].Text != "    b" || ops[0].Font.Family != "Courier" {
		t.Fatalf("unexpected code lines %+v", ops)
	}
}

func TestBlockquoteRule(t *testing.T) {
	cfg := richdoc.DefaultConfig()
	pages := New(cfg, WithLogger(quietLogger())).Render(mustParse(t, "<blockquote><p>quoted</p></blockquote>"))
	ins := pages[0].Instructions
	if len(ins) != 2 || ins[0].Kind != LineOp || ins[1].Kind != TextOp {
		t.Fatalf("expected a rule then a text line, got %+v", ins)
	}
	if ins[0].X >= ins[1].X || ins[0].Y != ins[1].Y || ins[0].H != ins[1].H {
		t.Fatalf("rule not beside the line: %+v %+v", ins[0], ins[1])
	}
	if ins[1].Font.Style != "I" || ins[1].X != cfg.MarginLeft+cfg.FromMM(10) {
		t.Fatalf("unexpected quote line %+v", ins[1])
	}
}

func TestPhaseAfterPaginate(t *testing.T) {
	p := New(nil, WithLogger(quietLogger()))
	res := p.Paginate(mustParse(t, "<p>one</p>"))
	if res.Phase != Done {
		t.Fatalf("expected phase %v, got %v", Done, res.Phase)
	}

	r := &run{Paginator: p, tree: content.New(), top: 20, bound: 277, result: &Result{}}
	r.startPage()
	r.emit(Instruction{Kind: TextOp, Text: "kept"})
	r.finish()
	r.emit(Instruction{Kind: TextOp, Text: "late"})
	if n := len(r.page.Instructions); n != 1 {
		t.Fatalf("instructions after Done must be dropped, got %d", n)
	}
}

func TestEmptyDocumentHasOnePage(t *testing.T) {
	pages := New(nil).Render(content.New())
	if len(pages) != 1 || len(pages[0].Instructions) != 0 {
		t.Fatalf("expected one empty page, got %+v", pages)
	}
}

func TestWrap(t *testing.T) {
	m := FixedMeasurer{CharWidth: 1}
	tests := []struct {
		text  string
		width float64
		want  []string
	}{
		{"hello world", 20, []string{"hello world"}},
		{"hello world", 7, []string{"hello", "world"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"a\nb", 10, []string{"a", "b"}},
		{"  spaced   out  ", 20, []string{"spaced out"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Wrap(m, tt.text, tt.width, Font{})); diff != "" {
			t.Errorf("Wrap(%q, %v) mismatch (-want +got):\n%s", tt.text, tt.width, diff)
		}
	}
}
