package editor

import (
	"github.com/lvillar/richdoc/content"
)

// deleteSelection removes the selected content and returns the collapsed
// caret left behind. ok is false when there was no selection.
func (d *Document) deleteSelection() (Cursor, bool) {
	start, end, ok := d.selection()
	if !ok {
		return NoCursor, false
	}
	t := d.Tree
	start, end = d.boundaries(start, end)

	startBlock := d.enclosingBlock(start)
	endBlock := d.enclosingBlock(end)

	var parents []content.NodeID
	for _, id := range d.maximalWithin(start, end) {
		parents = append(parents, t.Parent(id))
		t.Remove(id)
	}
	caret := d.clamp(start)
	for _, p := range parents {
		if t.Reachable(p) {
			caret = d.prune(p, caret)
		}
	}

	if startBlock != endBlock && startBlock != content.NoNode && endBlock != content.NoNode &&
		t.Reachable(startBlock) && t.Reachable(endBlock) {
		_ = t.Append(startBlock, t.Children(endBlock)...)
		t.Remove(endBlock)
	}
	if !t.Reachable(caret.Container) {
		caret, _ = d.endCursor()
	}
	d.Restore(caret)
	return caret, true
}

// enclosingBlock returns the phrasing block a boundary falls in, if any.
func (d *Document) enclosingBlock(c Cursor) content.NodeID {
	return d.Tree.Ancestor(c.Container, d.Tree.IsTextBlock)
}

// place inserts detached nodes at c and returns the cursor right after the
// last one. Block nodes are never left inside phrasing content: the
// containers around c are split up to the nearest flow container, and
// structural containers are stepped out of. A link is split the same way
// when another link is inserted inside it. Inline nodes landing directly in
// the root are wrapped in a new paragraph.
func (d *Document) place(c Cursor, ids []content.NodeID, block bool) (Cursor, error) {
	t := d.Tree
	c = d.boundary(d.clamp(c))
	if t.IsVoid(c.Container) {
		c = d.after(c.Container)
	}

	// links never nest: an inserted link splits the link around c
	link := !block && d.containsTag(ids, "a")
	inLink := func(id content.NodeID) bool { return t.Tag(id) == "a" }

	for !t.IsFlowContainer(c.Container) && t.Parent(c.Container) != content.NoNode {
		p := c.Container
		if !block && !t.IsStructural(p) && !(link && t.Ancestor(p, inLink) != content.NoNode) {
			break
		}
		switch {
		case t.IsStructural(p):
			c = d.after(p)
		case c.Offset == 0:
			c = d.before(p)
		case c.Offset >= t.Len(p):
			c = d.after(p)
		default:
			d.splitElement(p, c.Offset)
			c = d.after(p)
		}
	}

	if !block && c.Container == t.Root() {
		para := t.NewElement("p")
		if err := t.Insert(c.Container, c.Offset, para); err != nil {
			return NoCursor, err
		}
		c = Cursor{para, 0}
	}
	if err := t.Insert(c.Container, c.Offset, ids...); err != nil {
		return NoCursor, err
	}
	last := ids[len(ids)-1]
	return d.after(last), nil
}

// containsTag reports whether any of the nodes or their descendants is a tag element.
func (d *Document) containsTag(ids []content.NodeID, tag string) bool {
	found := false
	for _, id := range ids {
		d.Tree.Walk(id, func(n content.NodeID) bool {
			if d.Tree.Tag(n) == tag {
				found = true
			}
			return !found
		})
	}
	return found
}

// target resolves where the next insertion goes: the collapsed selection
// after deleting the selected content, or the caret with its fallback tiers.
func (d *Document) target() (Cursor, Fallback) {
	if caret, ok := d.deleteSelection(); ok {
		return caret, FallbackNone
	}
	return d.caret()
}

// insert is the Insertion Engine: it removes any selection, splices the
// nodes at the caret (or at the fallback position when the caret is stale),
// and moves the caret after the inserted content.
func (d *Document) insert(ids []content.NodeID, block bool) (Cursor, Fallback) {
	c, fb := d.target()
	return d.insertAt(c, fb, ids, block)
}

// insertAt never fails: nodes that cannot be placed at c are appended at the
// end of the document.
func (d *Document) insertAt(c Cursor, fb Fallback, ids []content.NodeID, block bool) (Cursor, Fallback) {
	t := d.Tree
	if len(ids) == 0 {
		return c, fb
	}
	after, err := d.place(c, ids, block)
	if err == nil && t.Reachable(ids[len(ids)-1]) {
		return after, fb
	}

	d.log.Warn("insertion failed, appending at end of document",
		"component", "editor", "container", c.Container, "offset", c.Offset, "error", err)
	for _, id := range ids {
		t.Remove(id)
	}
	root := t.Root()
	if !block {
		para := t.NewElement("p")
		_ = t.Append(root, para)
		root = para
	}
	_ = t.Append(root, ids...)
	return d.after(ids[len(ids)-1]), FallbackAppend
}

// insertText types s at the caret, extending the neighbouring text node
// when there is one.
func (d *Document) insertText(s string) (Cursor, Fallback) {
	t := d.Tree
	c, fb := d.target()
	if s == "" {
		return c, fb
	}

	if t.IsText(c.Container) {
		r := []rune(t.Text(c.Container))
		t.SetText(c.Container, string(r[:c.Offset])+s+string(r[c.Offset:]))
		return Cursor{c.Container, c.Offset + len([]rune(s))}, fb
	}
	if prev := t.Child(c.Container, c.Offset-1); t.IsText(prev) {
		t.SetText(prev, t.Text(prev)+s)
		return Cursor{prev, t.Len(prev)}, fb
	}

	id := t.NewText(s)
	_, fb = d.insertAt(c, fb, []content.NodeID{id}, false)
	return Cursor{id, t.Len(id)}, fb
}
