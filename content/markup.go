package content

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse builds a tree from a canonical content string.
func Parse(s string) (*Tree, error) {
	t := New()
	if err := t.Replace(s); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseFragment parses markup into detached nodes.
func ParseFragment(s string) (Fragment, error) {
	bodyCtx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), bodyCtx)
	if err != nil {
		return nil, fmt.Errorf("content: parsing markup: %w", err)
	}
	var out Fragment
	for _, n := range nodes {
		if c := fromHTML(n); c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func fromHTML(n *html.Node) *Node {
	switch n.Type {
	case html.TextNode:
		return Text(n.Data)
	case html.ElementNode:
		el := &Node{Kind: ElementNode, Tag: strings.ToLower(n.Data)}
		for _, a := range n.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			el.Attrs = append(el.Attrs, Attr{Key: key, Val: a.Val})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if cn := fromHTML(c); cn != nil {
				el.Children = append(el.Children, cn)
			}
		}
		return el
	}
	return nil
}

// Replace swaps the whole content for the parsed value of s. Every node that
// was attached before becomes unreachable.
func (t *Tree) Replace(s string) error {
	frag, err := ParseFragment(s)
	if err != nil {
		return err
	}
	for _, c := range t.Children(t.root) {
		t.Remove(c)
	}
	return t.Append(t.root, t.Import(frag)...)
}

// Render writes the canonical serialization of the tree to w.
func (t *Tree) Render(w io.Writer) error {
	for _, c := range t.Children(t.root) {
		if err := html.Render(w, t.toHTML(c)); err != nil {
			return fmt.Errorf("content: rendering markup: %w", err)
		}
	}
	return nil
}

// String returns the canonical content string.
func (t *Tree) String() string {
	var buf bytes.Buffer
	if err := t.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (t *Tree) toHTML(id NodeID) *html.Node {
	if t.IsText(id) {
		return &html.Node{Type: html.TextNode, Data: t.Text(id)}
	}
	tag := t.Tag(id)
	el := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for _, a := range t.Attrs(id) {
		el.Attr = append(el.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	if IsVoidTag(tag) {
		return el
	}
	for _, c := range t.Children(id) {
		el.AppendChild(t.toHTML(c))
	}
	return el
}
