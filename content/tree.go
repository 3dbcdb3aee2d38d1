// Package content holds the structured document tree edited by the editor
// and consumed by the paginator.
//
// A Tree is an arena of element and text nodes addressed by NodeID. Ids are
// never reused: a node removed from the tree keeps its id, is no longer
// reachable from the root, and cannot alias a node created later. This lets
// callers hold plain (NodeID, offset) cursors and detect when they went stale.
package content

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// NodeID identifies a node within a Tree.
type NodeID int32

// NoNode is the zero reference returned when a node has no parent or a lookup fails.
const NoNode NodeID = -1

// Kind distinguishes element and text nodes.
type Kind uint8

const (
	ElementNode Kind = iota
	TextNode
)

func (k Kind) String() string {
	if k == TextNode {
		return "text"
	}
	return "element"
}

// Attr is a single element attribute. Attributes keep their insertion order.
type Attr struct {
	Key string
	Val string
}

type node struct {
	kind     Kind
	tag      string
	attrs    []Attr
	text     string
	parent   NodeID
	children []NodeID
}

// Tree is the canonical document value. The root is an implicit container
// holding the top-level blocks; it is never serialized itself.
type Tree struct {
	nodes []node
	root  NodeID
}

// New returns an empty tree.
func New() *Tree {
	t := &Tree{}
	t.root = t.alloc(node{kind: ElementNode, tag: "", parent: NoNode})
	return t
}

func (t *Tree) alloc(n node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) get(id NodeID) *node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Root returns the implicit top-level container.
func (t *Tree) Root() NodeID { return t.root }

// Exists reports whether id was ever allocated by this tree.
func (t *Tree) Exists(id NodeID) bool { return t.get(id) != nil }

// Reachable reports whether id is attached to the tree through its parent chain.
func (t *Tree) Reachable(id NodeID) bool {
	for steps := 0; steps <= len(t.nodes); steps++ {
		n := t.get(id)
		if n == nil {
			return false
		}
		if id == t.root {
			return true
		}
		id = n.parent
	}
	return false
}

// NewElement allocates a detached element.
func (t *Tree) NewElement(tag string, attrs ...Attr) NodeID {
	return t.alloc(node{
		kind:   ElementNode,
		tag:    strings.ToLower(tag),
		attrs:  append([]Attr(nil), attrs...),
		parent: NoNode,
	})
}

// NewText allocates a detached text node.
func (t *Tree) NewText(s string) NodeID {
	return t.alloc(node{kind: TextNode, text: s, parent: NoNode})
}

// IsText reports whether id is a text node.
func (t *Tree) IsText(id NodeID) bool {
	n := t.get(id)
	return n != nil && n.kind == TextNode
}

// Tag returns the lower-case tag name of an element, or "" for text nodes and the root.
func (t *Tree) Tag(id NodeID) string {
	if n := t.get(id); n != nil {
		return n.tag
	}
	return ""
}

// SetTag renames an element in place. The node keeps its id and children.
func (t *Tree) SetTag(id NodeID, tag string) {
	if n := t.get(id); n != nil && n.kind == ElementNode && id != t.root {
		n.tag = strings.ToLower(tag)
	}
}

// Attrs returns a copy of the attributes of id.
func (t *Tree) Attrs(id NodeID) []Attr {
	if n := t.get(id); n != nil {
		return append([]Attr(nil), n.attrs...)
	}
	return nil
}

// Attr returns the value of attribute key.
func (t *Tree) Attr(id NodeID, key string) (string, bool) {
	if n := t.get(id); n != nil {
		for _, a := range n.attrs {
			if a.Key == key {
				return a.Val, true
			}
		}
	}
	return "", false
}

// SetAttr sets attribute key, keeping its position when it already exists.
func (t *Tree) SetAttr(id NodeID, key, val string) {
	n := t.get(id)
	if n == nil || n.kind != ElementNode {
		return
	}
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs[i].Val = val
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Key: key, Val: val})
}

// RemoveAttr deletes attribute key.
func (t *Tree) RemoveAttr(id NodeID, key string) {
	n := t.get(id)
	if n == nil {
		return
	}
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// Text returns the payload of a text node.
func (t *Tree) Text(id NodeID) string {
	if n := t.get(id); n != nil {
		return n.text
	}
	return ""
}

// SetText replaces the payload of a text node.
func (t *Tree) SetText(id NodeID, s string) {
	if n := t.get(id); n != nil && n.kind == TextNode {
		n.text = s
	}
}

// Len is the rune length of a text node or the child count of an element.
// It is the largest valid cursor offset within id.
func (t *Tree) Len(id NodeID) int {
	n := t.get(id)
	if n == nil {
		return 0
	}
	if n.kind == TextNode {
		return utf8.RuneCountInString(n.text)
	}
	return len(n.children)
}

// Parent returns the parent of id, or NoNode when detached or the root.
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.get(id); n != nil {
		return n.parent
	}
	return NoNode
}

// Children returns a copy of the children of id.
func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.get(id); n != nil {
		return append([]NodeID(nil), n.children...)
	}
	return nil
}

// Child returns the i-th child of id, or NoNode when out of range.
func (t *Tree) Child(id NodeID, i int) NodeID {
	n := t.get(id)
	if n == nil || i < 0 || i >= len(n.children) {
		return NoNode
	}
	return n.children[i]
}

// Index returns the position of id within its parent, or -1 when detached.
func (t *Tree) Index(id NodeID) int {
	p := t.get(t.Parent(id))
	if p == nil {
		return -1
	}
	for i, c := range p.children {
		if c == id {
			return i
		}
	}
	return -1
}

// Insert attaches detached nodes as children of parent starting at index.
// Nodes that are still attached elsewhere are moved.
func (t *Tree) Insert(parent NodeID, index int, ids ...NodeID) error {
	p := t.get(parent)
	if p == nil {
		return fmt.Errorf("content: insert into unknown node %d", parent)
	}
	if p.kind != ElementNode {
		return fmt.Errorf("content: insert into text node %d", parent)
	}
	for _, id := range ids {
		if t.get(id) == nil {
			return fmt.Errorf("content: insert of unknown node %d", id)
		}
		if id == t.root || t.IsAncestor(id, parent) {
			return fmt.Errorf("content: node %d cannot become its own descendant", id)
		}
	}
	for _, id := range ids {
		if t.Parent(id) == parent && t.Index(id) < index {
			index--
		}
		t.Remove(id)
	}
	p = t.get(parent)
	if index < 0 {
		index = 0
	}
	if index > len(p.children) {
		index = len(p.children)
	}
	kids := make([]NodeID, 0, len(p.children)+len(ids))
	kids = append(kids, p.children[:index]...)
	kids = append(kids, ids...)
	kids = append(kids, p.children[index:]...)
	p.children = kids
	for _, id := range ids {
		t.nodes[id].parent = parent
	}
	return nil
}

// Append attaches nodes at the end of parent.
func (t *Tree) Append(parent NodeID, ids ...NodeID) error {
	return t.Insert(parent, t.Len(parent), ids...)
}

// Remove detaches id (and its subtree) from its parent. The subtree stays in
// the arena so stale references can still be inspected.
func (t *Tree) Remove(id NodeID) {
	n := t.get(id)
	if n == nil || n.parent == NoNode {
		return
	}
	p := t.get(n.parent)
	for i, c := range p.children {
		if c == id {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = NoNode
}

// Unwrap replaces element id with its children.
func (t *Tree) Unwrap(id NodeID) {
	parent := t.Parent(id)
	if parent == NoNode || t.IsText(id) {
		return
	}
	idx := t.Index(id)
	kids := t.Children(id)
	t.Remove(id)
	_ = t.Insert(parent, idx, kids...)
}

// Wrap moves id into a new element with the given tag, placed where id was.
func (t *Tree) Wrap(id NodeID, tag string, attrs ...Attr) NodeID {
	parent := t.Parent(id)
	if parent == NoNode {
		return NoNode
	}
	idx := t.Index(id)
	w := t.NewElement(tag, attrs...)
	_ = t.Insert(parent, idx, w)
	_ = t.Append(w, id)
	return w
}

// IsAncestor reports whether a is id or one of its ancestors.
func (t *Tree) IsAncestor(a, id NodeID) bool {
	for id != NoNode {
		if id == a {
			return true
		}
		id = t.Parent(id)
	}
	return false
}

// Ancestor returns the closest ancestor of id (including id) accepted by match.
func (t *Tree) Ancestor(id NodeID, match func(NodeID) bool) NodeID {
	for id != NoNode {
		if match(id) {
			return id
		}
		id = t.Parent(id)
	}
	return NoNode
}

// Walk visits id and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	if t.get(id) == nil {
		return
	}
	if !fn(id) {
		return
	}
	for _, c := range t.Children(id) {
		t.Walk(c, fn)
	}
}

// TextContent concatenates the text of id and all its descendants.
func (t *Tree) TextContent(id NodeID) string {
	var b strings.Builder
	t.Walk(id, func(n NodeID) bool {
		if t.IsText(n) {
			b.WriteString(t.Text(n))
		}
		return true
	})
	return b.String()
}

// Empty reports whether the root has no children.
func (t *Tree) Empty() bool {
	return t.Len(t.root) == 0
}

// FindText returns the first reachable text node containing s and the rune
// offset of the match.
func (t *Tree) FindText(s string) (NodeID, int) {
	found, offset := NoNode, 0
	t.Walk(t.root, func(id NodeID) bool {
		if found != NoNode {
			return false
		}
		if t.IsText(id) {
			if i := strings.Index(t.Text(id), s); i >= 0 {
				found = id
				offset = utf8.RuneCountInString(t.Text(id)[:i])
			}
		}
		return true
	})
	return found, offset
}

// FindTag returns the reachable elements with the given tag in document order.
func (t *Tree) FindTag(tag string) []NodeID {
	var out []NodeID
	t.Walk(t.root, func(id NodeID) bool {
		if !t.IsText(id) && t.Tag(id) == tag {
			out = append(out, id)
		}
		return true
	})
	return out
}

// TableRows returns the row elements of a table, looking through thead,
// tbody and tfoot sections.
func (t *Tree) TableRows(table NodeID) []NodeID {
	var rows []NodeID
	for _, c := range t.Children(table) {
		switch t.Tag(c) {
		case "tr":
			rows = append(rows, c)
		case "thead", "tbody", "tfoot":
			for _, r := range t.Children(c) {
				if t.Tag(r) == "tr" {
					rows = append(rows, r)
				}
			}
		}
	}
	return rows
}

// RowCells returns the td/th children of a row.
func (t *Tree) RowCells(row NodeID) []NodeID {
	var cells []NodeID
	for _, c := range t.Children(row) {
		if tag := t.Tag(c); tag == "td" || tag == "th" {
			cells = append(cells, c)
		}
	}
	return cells
}
