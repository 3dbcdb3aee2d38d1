package content

import "strings"

// Node is a detached node value used to build fragments before they are
// spliced into a Tree.
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// Fragment is an ordered list of detached subtrees prepared for insertion.
type Fragment []*Node

// Element builds a detached element.
func Element(tag string, attrs []Attr, children ...*Node) *Node {
	return &Node{
		Kind:     ElementNode,
		Tag:      strings.ToLower(tag),
		Attrs:    attrs,
		Children: children,
	}
}

// Text builds a detached text node.
func Text(s string) *Node {
	return &Node{Kind: TextNode, Text: s}
}

// TextContent concatenates the text of n and its descendants.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.Kind == TextNode {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// HasBlock reports whether any top-level node of f is block-level.
func (f Fragment) HasBlock() bool {
	for _, n := range f {
		if n.Kind == ElementNode && IsBlockTag(n.Tag) {
			return true
		}
	}
	return false
}

// Import copies f into the arena and returns the ids of its top-level nodes.
// The imported nodes are detached until inserted.
func (t *Tree) Import(f Fragment) []NodeID {
	ids := make([]NodeID, 0, len(f))
	for _, n := range f {
		if n != nil {
			ids = append(ids, t.importNode(n))
		}
	}
	return ids
}

func (t *Tree) importNode(n *Node) NodeID {
	if n.Kind == TextNode {
		return t.NewText(n.Text)
	}
	id := t.NewElement(n.Tag, n.Attrs...)
	if IsVoidTag(n.Tag) {
		return id
	}
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		cid := t.importNode(c)
		t.nodes[cid].parent = id
		t.nodes[id].children = append(t.nodes[id].children, cid)
	}
	return id
}

// Export copies the subtree at id into a detached Node.
func (t *Tree) Export(id NodeID) *Node {
	n := t.get(id)
	if n == nil {
		return nil
	}
	if n.kind == TextNode {
		return Text(n.text)
	}
	out := &Node{Kind: ElementNode, Tag: n.tag, Attrs: append([]Attr(nil), n.attrs...)}
	for _, c := range n.children {
		out.Children = append(out.Children, t.Export(c))
	}
	return out
}
