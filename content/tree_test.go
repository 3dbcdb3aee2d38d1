package content

import "testing"

func TestInsertAndReachable(t *testing.T) {
	tr := New()
	p := tr.NewElement("P")
	txt := tr.NewText("hello")
	if err := tr.Append(p, txt); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if tr.Reachable(p) || tr.Reachable(txt) {
		t.Fatal("detached nodes must not be reachable")
	}
	if err := tr.Append(tr.Root(), p); err != nil {
		t.Fatalf("Append root: %v", err)
	}
	if !tr.Reachable(txt) {
		t.Fatal("text should be reachable once its paragraph is attached")
	}
	if tr.Tag(p) != "p" {
		t.Fatalf("tags are lower-cased, got %q", tr.Tag(p))
	}
	if got := tr.String(); got != "<p>hello</p>" {
		t.Fatalf("String() = %q", got)
	}
}

func TestRemoveMakesSubtreeUnreachable(t *testing.T) {
	tr, err := Parse("<p>one</p><p><em>two</em></p>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	em := tr.FindTag("em")[0]
	inner := tr.Child(em, 0)
	second := tr.Parent(em)
	tr.Remove(second)

	if tr.Reachable(inner) || tr.Reachable(em) || tr.Reachable(second) {
		t.Fatal("removed subtree must be unreachable")
	}
	if !tr.Exists(inner) {
		t.Fatal("removed nodes stay in the arena")
	}
	if tr.String() != "<p>one</p>" {
		t.Fatalf("unexpected content %q", tr.String())
	}
	fresh := tr.NewText("x")
	if fresh == inner || fresh == em {
		t.Fatal("ids must never be reused")
	}
}

func TestInsertMovesWithinParent(t *testing.T) {
	tr, _ := Parse("<p>a</p><p>b</p><p>c</p>")
	kids := tr.Children(tr.Root())
	if err := tr.Insert(tr.Root(), 3, kids[0]); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got := tr.String(); got != "<p>b</p><p>c</p><p>a</p>" {
		t.Fatalf("got %q", got)
	}
}

func TestInsertRejectsCycles(t *testing.T) {
	tr, _ := Parse("<blockquote><p>x</p></blockquote>")
	bq := tr.FindTag("blockquote")[0]
	p := tr.FindTag("p")[0]
	if err := tr.Append(p, bq); err == nil {
		t.Fatal("expected error when inserting an ancestor into its descendant")
	}
	if err := tr.Append(tr.Child(p, 0), tr.NewText("y")); err == nil {
		t.Fatal("expected error when inserting into a text node")
	}
	if err := tr.Append(p, NodeID(9999)); err == nil {
		t.Fatal("expected error for unknown node")
	}
}

func TestWrapUnwrap(t *testing.T) {
	tr, _ := Parse("<p>plain</p>")
	txt := tr.Child(tr.FindTag("p")[0], 0)
	w := tr.Wrap(txt, "strong")
	if tr.String() != "<p><strong>plain</strong></p>" {
		t.Fatalf("after wrap %q", tr.String())
	}
	tr.Unwrap(w)
	if tr.String() != "<p>plain</p>" {
		t.Fatalf("after unwrap %q", tr.String())
	}
	if tr.Parent(txt) != tr.FindTag("p")[0] {
		t.Fatal("text should keep its id through wrap/unwrap")
	}
}

func TestAttrsKeepOrder(t *testing.T) {
	tr := New()
	a := tr.NewElement("a", Attr{Key: "href", Val: "https://example.com"})
	tr.SetAttr(a, "title", "Example")
	tr.SetAttr(a, "href", "https://example.org")
	_ = tr.Append(a, tr.NewText("site"))
	_ = tr.Append(tr.Root(), a)

	want := `<a href="https://example.org" title="Example">site</a>`
	if got := tr.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	tr.RemoveAttr(a, "title")
	if _, ok := tr.Attr(a, "title"); ok {
		t.Fatal("title should be removed")
	}
}

func TestTableRows(t *testing.T) {
	tr, _ := Parse("<table><tr><td>a</td><td>b</td></tr><tr><th>c</th></tr></table>")
	tables := tr.FindTag("table")
	if len(tables) != 1 {
		t.Fatalf("expected one table, got %d", len(tables))
	}
	rows := tr.TableRows(tables[0])
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows through the implied tbody, got %d", len(rows))
	}
	if n := len(tr.RowCells(rows[0])); n != 2 {
		t.Fatalf("expected 2 cells, got %d", n)
	}
}

func TestBlockClassification(t *testing.T) {
	tr, _ := Parse("<p>a <em>b</em></p><custom-tag>c</custom-tag>")
	p := tr.FindTag("p")[0]
	em := tr.FindTag("em")[0]
	custom := tr.FindTag("custom-tag")[0]
	if !tr.IsBlock(p) || !tr.IsBlock(custom) {
		t.Fatal("p and unknown tags are blocks")
	}
	if tr.IsBlock(em) || tr.IsBlock(tr.Child(p, 0)) {
		t.Fatal("phrasing elements and text are not blocks")
	}
	if tr.IsBlock(tr.Root()) {
		t.Fatal("the root is not a block")
	}
}

func TestFindText(t *testing.T) {
	tr, _ := Parse("<p>Über den Quarterly Report</p>")
	id, off := tr.FindText("Quarterly")
	if id == NoNode {
		t.Fatal("text not found")
	}
	if off != 9 {
		t.Fatalf("offset should count runes, got %d", off)
	}
	if id, _ := tr.FindText("missing"); id != NoNode {
		t.Fatal("expected NoNode")
	}
}

func TestImportExport(t *testing.T) {
	tr := New()
	frag := Fragment{
		Element("h2", nil, Text("Title")),
		Element("img", []Attr{{Key: "src", Val: "x.png"}}, Text("ignored")),
	}
	if !frag.HasBlock() {
		t.Fatal("h2 is block-level")
	}
	ids := tr.Import(frag)
	_ = tr.Append(tr.Root(), ids...)
	if got := tr.String(); got != `<h2>Title</h2><img src="x.png"/>` {
		t.Fatalf("got %q", got)
	}
	out := tr.Export(ids[0])
	if out.TextContent() != "Title" || out.Tag != "h2" {
		t.Fatalf("unexpected export %+v", out)
	}
}
