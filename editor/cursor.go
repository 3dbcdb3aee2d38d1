package editor

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/content"
)

// Cursor is an insertion point inside a Document. For a text container the
// offset counts runes; for an element container it is a child index.
type Cursor struct {
	Container content.NodeID
	Offset    int
}

// NoCursor is returned when nothing is focused.
var NoCursor = Cursor{Container: content.NoNode}

// Selection is the range between Anchor and Focus. It is collapsed when both
// ends are equal; Focus is where the caret sits.
type Selection struct {
	Anchor Cursor
	Focus  Cursor
}

// Collapsed reports whether the selection covers nothing.
func (s Selection) Collapsed() bool { return s.Anchor == s.Focus }

// Fallback records which recovery tier produced an insertion point.
type Fallback uint8

const (
	FallbackNone          Fallback = iota // the captured cursor was used
	FallbackEndOfBlock                    // end of the last top-level block
	FallbackImplicitBlock                 // empty tree, an implicit <p> was created
	FallbackAppend                        // appended at the end of the document
)

func (f Fallback) String() string {
	return [...]string{"none", "end-of-block", "implicit-block", "append"}[f]
}

// Document is a content tree plus the editing selection over it.
type Document struct {
	Tree *content.Tree

	sel     Selection
	focused bool
	log     *slog.Logger
}

// NewDocument wraps t. The document starts without focus. A nil logger uses
// slog.Default.
func NewDocument(t *content.Tree, log *slog.Logger) *Document {
	if t == nil {
		t = content.New()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Document{Tree: t, sel: Selection{NoCursor, NoCursor}, log: log}
}

// Select focuses the document with the given selection.
func (d *Document) Select(anchor, focus Cursor) {
	d.sel = Selection{Anchor: anchor, Focus: focus}
	d.focused = true
}

// Restore focuses the document with a collapsed selection at c.
func (d *Document) Restore(c Cursor) {
	d.Select(c, c)
}

// Blur drops the focus. Later insertions fall back to the end of the document.
func (d *Document) Blur() {
	d.focused = false
}

// Focused reports whether the document holds a selection.
func (d *Document) Focused() bool { return d.focused }

// Selection returns the current selection, false when not focused.
func (d *Document) Selection() (Selection, bool) {
	if !d.focused {
		return Selection{NoCursor, NoCursor}, false
	}
	return d.sel, true
}

// Capture returns the caret, false when nothing is focused.
func (d *Document) Capture() (Cursor, bool) {
	if !d.focused {
		return NoCursor, false
	}
	return d.sel.Focus, true
}

// Validate returns an error wrapping richdoc.ErrStaleCursor when c can no
// longer be resolved against the tree.
func (d *Document) Validate(c Cursor) error {
	if !d.IsValid(c) {
		return fmt.Errorf("editor: container %d: %w", c.Container, richdoc.ErrStaleCursor)
	}
	return nil
}

// IsValid reports whether the container of c is still reachable from the root.
func (d *Document) IsValid(c Cursor) bool {
	return c.Container != content.NoNode && d.Tree.Reachable(c.Container)
}

// SelectText selects the first occurrence of s. It reports whether s was found.
func (d *Document) SelectText(s string) bool {
	if s == "" {
		return false
	}
	id, off := d.Tree.FindText(s)
	if id == content.NoNode {
		return false
	}
	d.Select(Cursor{id, off}, Cursor{id, off + len([]rune(s))})
	return true
}

// SelectAll selects the whole document.
func (d *Document) SelectAll() {
	root := d.Tree.Root()
	d.Select(Cursor{root, 0}, Cursor{root, d.Tree.Len(root)})
}

func (d *Document) clamp(c Cursor) Cursor {
	c.Offset = max(0, min(c.Offset, d.Tree.Len(c.Container)))
	return c
}

// caret resolves the insertion point, falling back when the captured cursor
// is missing or stale.
func (d *Document) caret() (Cursor, Fallback) {
	c, ok := d.Capture()
	err := d.Validate(c)
	if ok && err == nil {
		return d.clamp(c), FallbackNone
	}
	end, fb := d.endCursor()
	attrs := []any{"component", "editor", "focused", ok, "container", c.Container, "fallback", fb.String()}
	if ok {
		attrs = append(attrs, "error", err)
	}
	d.log.Info("cursor unavailable, using fallback", attrs...)
	return end, fb
}

// selection returns the normalised (start, end) range when a non-collapsed,
// valid selection exists.
func (d *Document) selection() (start, end Cursor, ok bool) {
	if !d.focused || d.sel.Collapsed() || !d.IsValid(d.sel.Anchor) || !d.IsValid(d.sel.Focus) {
		return NoCursor, NoCursor, false
	}
	a, f := d.clamp(d.sel.Anchor), d.clamp(d.sel.Focus)
	if d.compare(a, f) > 0 {
		a, f = f, a
	}
	if d.compare(a, f) == 0 {
		return NoCursor, NoCursor, false
	}
	return a, f, true
}

// endCursor places the cursor at the end of the last top-level block, or
// creates an implicit paragraph in an empty tree.
func (d *Document) endCursor() (Cursor, Fallback) {
	t := d.Tree
	root := t.Root()
	if t.Empty() {
		p := t.NewElement("p")
		_ = t.Append(root, p)
		return Cursor{p, 0}, FallbackImplicitBlock
	}
	last := t.Child(root, t.Len(root)-1)
	if !textual(t, last) {
		return Cursor{root, t.Len(root)}, FallbackEndOfBlock
	}
	for t.IsFlowContainer(last) && t.Len(last) > 0 && textual(t, t.Child(last, t.Len(last)-1)) {
		last = t.Child(last, t.Len(last)-1)
	}
	return Cursor{last, t.Len(last)}, FallbackEndOfBlock
}

// textual reports whether a cursor at the end of id can take typed text.
func textual(t *content.Tree, id content.NodeID) bool {
	if t.IsTextBlock(id) {
		return true
	}
	switch t.Tag(id) {
	case "blockquote", "div":
		return !t.IsText(id)
	}
	return false
}

// path is the chain of child indices from the root to id.
func (d *Document) path(id content.NodeID) []int {
	var p []int
	root := d.Tree.Root()
	for id != root && id != content.NoNode {
		p = append(p, d.Tree.Index(id))
		id = d.Tree.Parent(id)
	}
	slices.Reverse(p)
	return p
}

func (d *Document) key(c Cursor) []int {
	return append(d.path(c.Container), c.Offset)
}

// compare orders two cursors in document order.
func (d *Document) compare(a, b Cursor) int {
	return slices.Compare(d.key(a), d.key(b))
}

// before is the boundary immediately before id within its parent.
func (d *Document) before(id content.NodeID) Cursor {
	return Cursor{d.Tree.Parent(id), d.Tree.Index(id)}
}

// after is the boundary immediately after id within its parent.
func (d *Document) after(id content.NodeID) Cursor {
	return Cursor{d.Tree.Parent(id), d.Tree.Index(id) + 1}
}

// within reports whether id lies entirely between the boundaries start and end.
func (d *Document) within(id content.NodeID, start, end Cursor) bool {
	return d.compare(d.before(id), start) >= 0 && d.compare(d.after(id), end) <= 0
}
