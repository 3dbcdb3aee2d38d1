package editor

import (
	"slices"

	"github.com/lvillar/richdoc/content"
)

// splitText cuts a text node at a rune offset and returns the new node
// holding the tail, or NoNode when off is at either end.
func (d *Document) splitText(id content.NodeID, off int) content.NodeID {
	t := d.Tree
	if !t.IsText(id) || off <= 0 || off >= t.Len(id) {
		return content.NoNode
	}
	r := []rune(t.Text(id))
	tail := t.NewText(string(r[off:]))
	t.SetText(id, string(r[:off]))
	_ = t.Insert(t.Parent(id), t.Index(id)+1, tail)
	return tail
}

// splitElement moves the children of el from index i on into a copy of el
// placed right after it, and returns the copy.
func (d *Document) splitElement(el content.NodeID, i int) content.NodeID {
	t := d.Tree
	clone := t.NewElement(t.Tag(el), t.Attrs(el)...)
	_ = t.Insert(t.Parent(el), t.Index(el)+1, clone)
	_ = t.Append(clone, t.Children(el)[i:]...)
	d.remap(func(c Cursor) Cursor {
		if c.Container == el && c.Offset > i {
			return Cursor{clone, c.Offset - i}
		}
		return c
	})
	return clone
}

// unwrap replaces el with its children, keeping the selection on them.
func (d *Document) unwrap(el content.NodeID) {
	parent, idx := d.Tree.Parent(el), d.Tree.Index(el)
	d.remap(func(c Cursor) Cursor {
		if c.Container == el {
			return Cursor{parent, idx + c.Offset}
		}
		return c
	})
	d.Tree.Unwrap(el)
}

// remap rewrites both ends of the selection after a structural change.
func (d *Document) remap(fn func(Cursor) Cursor) {
	d.sel.Anchor = fn(d.sel.Anchor)
	d.sel.Focus = fn(d.sel.Focus)
}

// splitBefore splits every element from the parent of node up to top so that
// node becomes the first descendant of its top-level piece, which is returned.
func (d *Document) splitBefore(node, top content.NodeID) content.NodeID {
	t := d.Tree
	cur := node
	for {
		p := t.Parent(cur)
		if i := t.Index(cur); i > 0 {
			cur = d.splitElement(p, i)
		} else {
			cur = p
		}
		if p == top || p == content.NoNode {
			return cur
		}
	}
}

// splitAfter splits every element from the parent of node up to top so that
// node becomes the last descendant of top.
func (d *Document) splitAfter(node, top content.NodeID) {
	t := d.Tree
	for cur := node; cur != top && cur != content.NoNode; cur = t.Parent(cur) {
		p := t.Parent(cur)
		if i := t.Index(cur) + 1; i < t.Len(p) {
			d.splitElement(p, i)
		}
	}
}

// boundary turns a cursor into an element boundary, splitting text if needed.
func (d *Document) boundary(c Cursor) Cursor {
	t := d.Tree
	if !t.IsText(c.Container) {
		return c
	}
	switch {
	case c.Offset <= 0:
		return d.before(c.Container)
	case c.Offset >= t.Len(c.Container):
		return d.after(c.Container)
	}
	tail := d.splitText(c.Container, c.Offset)
	return d.before(tail)
}

// boundaries splits text at both ends of [start, end] and returns the range
// as element boundaries.
func (d *Document) boundaries(start, end Cursor) (Cursor, Cursor) {
	t := d.Tree
	if t.IsText(end.Container) {
		d.splitText(end.Container, end.Offset)
	}
	if t.IsText(start.Container) {
		if tail := d.splitText(start.Container, start.Offset); tail != content.NoNode {
			switch {
			case start.Container == end.Container:
				end = Cursor{tail, end.Offset - start.Offset}
			case !t.IsText(end.Container) && t.Parent(tail) == end.Container && t.Index(tail) <= end.Offset:
				end.Offset++
			}
			start = Cursor{tail, 0}
		}
	}
	return d.boundary(start), d.boundary(end)
}

// textsWithin returns the non-empty text nodes between two boundaries in
// document order.
func (d *Document) textsWithin(start, end Cursor) []content.NodeID {
	var out []content.NodeID
	d.Tree.Walk(d.Tree.Root(), func(id content.NodeID) bool {
		if d.Tree.IsText(id) && d.Tree.Len(id) > 0 && d.within(id, start, end) {
			out = append(out, id)
		}
		return true
	})
	return out
}

// maximalWithin returns the outermost nodes lying entirely between two
// boundaries.
func (d *Document) maximalWithin(start, end Cursor) []content.NodeID {
	var out []content.NodeID
	root := d.Tree.Root()
	d.Tree.Walk(root, func(id content.NodeID) bool {
		if id == root {
			return true
		}
		if d.within(id, start, end) {
			out = append(out, id)
			return false
		}
		return true
	})
	return out
}

// blockOf returns the phrasing block holding id. Inline content sitting
// directly in a flow container is first wrapped into a new paragraph.
func (d *Document) blockOf(id content.NodeID) content.NodeID {
	t := d.Tree
	if b := t.Ancestor(id, t.IsTextBlock); b != content.NoNode {
		return b
	}
	child := id
	for p := t.Parent(child); p != content.NoNode; child, p = p, t.Parent(p) {
		if !t.IsFlowContainer(p) {
			continue
		}
		if t.IsBlock(child) {
			return content.NoNode
		}
		return d.wrapRun(p, t.Index(child))
	}
	return content.NoNode
}

// wrapRun wraps the run of inline children of p around index i into a <p>.
func (d *Document) wrapRun(p content.NodeID, i int) content.NodeID {
	t := d.Tree
	kids := t.Children(p)
	lo, hi := i, i+1
	for lo > 0 && t.IsInline(kids[lo-1]) {
		lo--
	}
	for hi < len(kids) && t.IsInline(kids[hi]) {
		hi++
	}
	para := t.NewElement("p")
	_ = t.Insert(p, lo, para)
	_ = t.Append(para, kids[lo:hi]...)
	return para
}

// blockAt returns the phrasing block at a caret, creating an empty paragraph
// when the caret sits between blocks.
func (d *Document) blockAt(c Cursor) content.NodeID {
	t := d.Tree
	if !t.IsFlowContainer(c.Container) {
		if !t.IsStructural(c.Container) {
			if b := d.blockOf(c.Container); b != content.NoNode {
				return b
			}
		}
		for !t.IsFlowContainer(c.Container) && t.Parent(c.Container) != content.NoNode {
			c = d.after(c.Container)
		}
	}
	for _, i := range []int{c.Offset - 1, c.Offset} {
		k := t.Child(c.Container, i)
		switch {
		case k == content.NoNode:
		case t.IsTextBlock(k):
			return k
		case t.IsInline(k):
			return d.blockOf(k)
		}
	}
	para := t.NewElement("p")
	_ = t.Insert(c.Container, c.Offset, para)
	return para
}

// blocksWithin returns the distinct phrasing blocks touched by the texts in
// document order.
func (d *Document) blocksWithin(texts []content.NodeID) []content.NodeID {
	var out []content.NodeID
	for _, id := range texts {
		if b := d.blockOf(id); b != content.NoNode && !slices.Contains(out, b) {
			out = append(out, b)
		}
	}
	return out
}

func sameAttrs(a, b []content.Attr) bool {
	return slices.Equal(a, b)
}

// merge joins el with identical neighbouring elements and returns the survivor.
func (d *Document) merge(el content.NodeID) content.NodeID {
	t := d.Tree
	p := t.Parent(el)
	if prev := t.Child(p, t.Index(el)-1); prev != content.NoNode && d.mergeable(prev, el) {
		_ = t.Append(prev, t.Children(el)...)
		t.Remove(el)
		el = prev
	}
	if next := t.Child(p, t.Index(el)+1); next != content.NoNode && d.mergeable(el, next) {
		_ = t.Append(el, t.Children(next)...)
		t.Remove(next)
	}
	return el
}

func (d *Document) mergeable(a, b content.NodeID) bool {
	t := d.Tree
	return !t.IsText(a) && !t.IsText(b) && t.Tag(a) == t.Tag(b) && sameAttrs(t.Attrs(a), t.Attrs(b))
}

// prune removes empty inline elements on the ancestor chain of p and returns
// a cursor at the place of the outermost removed element, or c unchanged.
func (d *Document) prune(p content.NodeID, c Cursor) Cursor {
	t := d.Tree
	for p != content.NoNode && p != t.Root() && t.Len(p) == 0 && t.IsInline(p) && !t.IsVoid(p) {
		parent, idx := t.Parent(p), t.Index(p)
		t.Remove(p)
		if c.Container == p || !t.Reachable(c.Container) {
			c = Cursor{parent, idx}
		}
		p = parent
	}
	return c
}
