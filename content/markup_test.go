package content

import "testing"

func TestCanonicalRoundTrip(t *testing.T) {
	inputs := []string{
		"<h1>Quarterly Report</h1><p>Revenue <strong>grew</strong> by <em>15%</em>.</p>",
		`<p style="text-align: center">Centered <u>text</u><br/>next line</p>`,
		"<ul><li>One</li><li>Two &amp; three</li></ul><ol><li>First</li></ol>",
		"<blockquote><p>Quoted</p></blockquote><pre>func main() {\n\treturn\n}</pre>",
		"<pre>\nleading newline</pre>",
		`<table><thead><tr><th>Header 1</th></tr></thead><tbody><tr><td>Cell 1-1</td></tr></tbody></table>`,
		`<p><a href="https://example.com?a=1&amp;b=2">link</a> <img src="data:image/png;base64,AAAA" alt="x &quot;y&quot;"/></p>`,
		"plain text at the top <b>level</b>",
	}
	for _, in := range inputs {
		first, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		s1 := first.String()
		second, err := Parse(s1)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s1, err)
		}
		if s2 := second.String(); s1 != s2 {
			t.Errorf("round trip not stable:\n first: %q\nsecond: %q", s1, s2)
		}
	}
}

func TestParseDropsComments(t *testing.T) {
	tr, err := Parse("<p>a<!-- note -->b</p>")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := tr.String(); got != "<p>ab</p>" {
		t.Fatalf("got %q", got)
	}
}

func TestReplaceDetachesOldNodes(t *testing.T) {
	tr, _ := Parse("<p>old</p>")
	old := tr.FindTag("p")[0]
	if err := tr.Replace("<h2>new</h2>"); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if tr.Reachable(old) {
		t.Fatal("old paragraph should be unreachable after Replace")
	}
	if tr.String() != "<h2>new</h2>" {
		t.Fatalf("got %q", tr.String())
	}
}

func TestEmptyContent(t *testing.T) {
	tr, err := Parse("")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !tr.Empty() || tr.String() != "" {
		t.Fatalf("expected empty tree, got %q", tr.String())
	}
}
