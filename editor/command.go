package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/content"
)

// Kind identifies a command.
type Kind uint8

const (
	Bold Kind = iota + 1
	Italic
	Underline
	JustifyLeft
	JustifyCenter
	JustifyRight
	UnorderedList
	OrderedList
	Blockquote
	CodeBlock
	Heading
	InsertFragment
	InsertText
)

var kindNames = map[Kind]string{
	Bold:           "bold",
	Italic:         "italic",
	Underline:      "underline",
	JustifyLeft:    "justify-left",
	JustifyCenter:  "justify-center",
	JustifyRight:   "justify-right",
	UnorderedList:  "unordered-list",
	OrderedList:    "ordered-list",
	Blockquote:     "blockquote",
	CodeBlock:      "code-block",
	Heading:        "heading",
	InsertFragment: "insert-fragment",
	InsertText:     "insert-text",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Command is one mutation expressed as data.
type Command struct {
	Kind     Kind
	Level    int              // Heading: 1..3
	Text     string           // InsertText
	Fragment content.Fragment // InsertFragment
}

// Commands lists the names accepted by ParseCommand.
func Commands() []string {
	return []string{
		"bold", "italic", "underline",
		"justify-left", "justify-center", "justify-right",
		"unordered-list", "ordered-list", "blockquote", "code-block", "heading",
	}
}

// ParseCommand builds a formatting command from its name and optional value.
// The heading level is given as the value ("1".."3" or "h1".."h3").
func ParseCommand(name, value string) (Command, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "h1", "h2", "h3":
		value, name = name, "heading"
	case "justifyleft", "justifycenter", "justifyright":
		name = "justify-" + strings.TrimPrefix(name, "justify")
	case "insertunorderedlist":
		name = "unordered-list"
	case "insertorderedlist":
		name = "ordered-list"
	}
	for k, n := range kindNames {
		if n != name || k == InsertFragment || k == InsertText {
			continue
		}
		cmd := Command{Kind: k}
		if k == Heading {
			lvl, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), "h"))
			if err != nil || lvl < 1 || lvl > 3 {
				return Command{}, fmt.Errorf("editor: %w: heading level %q", richdoc.ErrInvalidParam, value)
			}
			cmd.Level = lvl
		}
		return cmd, nil
	}
	return Command{}, fmt.Errorf("editor: %w: command %q", richdoc.ErrUnsupported, name)
}

// Result describes the outcome of Apply.
type Result struct {
	Changed  bool
	Cursor   Cursor   // caret after the command; the editor refocuses here
	Fallback Fallback // recovery tier used to find the insertion point
	Err      error    // rejected input; the tree is unchanged
}

// Apply runs cmd against doc. It is the only way commands mutate a document.
// Apply never panics on stale or missing cursors; unless the command is
// rejected it leaves the document focused at a valid caret.
func Apply(doc *Document, cmd Command) Result {
	before := doc.Tree.String()
	var res Result

	switch cmd.Kind {
	case Bold:
		res = doc.toggleInline("strong", "b")
	case Italic:
		res = doc.toggleInline("em", "i")
	case Underline:
		res = doc.toggleInline("u")
	case JustifyLeft:
		res = doc.align("")
	case JustifyCenter:
		res = doc.align("center")
	case JustifyRight:
		res = doc.align("right")
	case UnorderedList:
		res = doc.list("ul")
	case OrderedList:
		res = doc.list("ol")
	case Blockquote:
		res = doc.blockquote()
	case CodeBlock:
		res = doc.retag("pre")
	case Heading:
		if cmd.Level < 1 || cmd.Level > 3 {
			res.Err = fmt.Errorf("editor: %w: heading level %d", richdoc.ErrInvalidParam, cmd.Level)
			break
		}
		res = doc.retag("h" + strconv.Itoa(cmd.Level))
	case InsertFragment:
		ids := doc.Tree.Import(cmd.Fragment)
		res.Cursor, res.Fallback = doc.insert(ids, cmd.Fragment.HasBlock())
	case InsertText:
		res.Cursor, res.Fallback = doc.insertText(cmd.Text)
	default:
		res.Err = fmt.Errorf("editor: %w: command %v", richdoc.ErrUnsupported, cmd.Kind)
	}

	if res.Err != nil {
		res.Cursor, _ = doc.Capture()
		return res
	}
	if res.Cursor.Container == content.NoNode || !doc.IsValid(res.Cursor) {
		c, fb := doc.caret()
		res.Cursor = c
		if res.Fallback == FallbackNone {
			res.Fallback = fb
		}
	}
	res.Cursor = doc.clamp(res.Cursor)

	// formatting keeps a selection over the formatted text; everything else
	// refocuses at the resulting caret
	if sel, ok := doc.Selection(); !ok || sel.Collapsed() || !doc.IsValid(sel.Anchor) || !doc.IsValid(sel.Focus) {
		doc.Restore(res.Cursor)
	}
	res.Changed = doc.Tree.String() != before
	return res
}

// toggleInline wraps the selected text in tags[0], or removes the formatting
// when every selected text node already carries one of tags.
func (d *Document) toggleInline(tags ...string) Result {
	t := d.Tree
	start, end, ok := d.selection()
	if !ok {
		el := t.NewElement(tags[0])
		_, fb := d.insert([]content.NodeID{el}, false)
		return Result{Cursor: Cursor{el, 0}, Fallback: fb}
	}

	start, end = d.boundaries(start, end)
	texts := d.textsWithin(start, end)
	if len(texts) == 0 {
		return Result{Cursor: d.sel.Focus}
	}
	isTag := func(id content.NodeID) bool {
		if t.IsText(id) {
			return false
		}
		for _, tag := range tags {
			if t.Tag(id) == tag {
				return true
			}
		}
		return false
	}
	formatted := func(id content.NodeID) content.NodeID {
		return t.Ancestor(t.Parent(id), isTag)
	}

	all := true
	for _, id := range texts {
		if formatted(id) == content.NoNode {
			all = false
			break
		}
	}

	if all {
		for _, id := range texts {
			for a := formatted(id); a != content.NoNode; a = formatted(id) {
				piece := d.splitBefore(id, a)
				d.splitAfter(id, piece)
				d.unwrap(piece)
			}
		}
	} else {
		for _, id := range texts {
			if formatted(id) != content.NoNode {
				continue
			}
			d.merge(t.Wrap(id, tags[0]))
		}
	}

	first, last := texts[0], texts[len(texts)-1]
	d.Select(Cursor{first, 0}, Cursor{last, t.Len(last)})
	return Result{Cursor: Cursor{last, t.Len(last)}}
}

// selectedBlocks returns the phrasing blocks touched by the selection, or the
// block at the caret when nothing is selected.
func (d *Document) selectedBlocks() ([]content.NodeID, Fallback) {
	if start, end, ok := d.selection(); ok {
		start, end = d.boundaries(start, end)
		texts := d.textsWithin(start, end)
		if blocks := d.blocksWithin(texts); len(blocks) > 0 {
			first, last := texts[0], texts[len(texts)-1]
			d.Select(Cursor{first, 0}, Cursor{last, d.Tree.Len(last)})
			return blocks, FallbackNone
		}
	}
	c, fb := d.caret()
	b := d.blockAt(c)
	if !d.Tree.IsAncestor(b, c.Container) {
		c = Cursor{b, d.Tree.Len(b)}
	}
	d.Restore(c)
	return []content.NodeID{b}, fb
}

func (d *Document) align(value string) Result {
	blocks, fb := d.selectedBlocks()
	for _, b := range blocks {
		style, _ := d.Tree.Attr(b, "style")
		style = setStyle(style, "text-align", value)
		if style == "" {
			d.Tree.RemoveAttr(b, "style")
		} else {
			d.Tree.SetAttr(b, "style", style)
		}
	}
	return Result{Cursor: d.sel.Focus, Fallback: fb}
}

// setStyle sets or, for an empty value, removes one declaration of an inline
// style attribute, keeping the others in order.
func setStyle(style, prop, value string) string {
	var decls []string
	found := false
	for _, decl := range strings.Split(style, ";") {
		k, _, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(k), prop) {
			found = true
			if value != "" {
				decls = append(decls, prop+": "+value)
			}
			continue
		}
		decls = append(decls, strings.TrimSpace(decl))
	}
	if !found && value != "" {
		decls = append(decls, prop+": "+value)
	}
	return strings.Join(decls, "; ")
}

// retag turns the selected blocks into tag, or back into paragraphs when they
// all already are. With nothing selected an empty tag element is inserted at
// the caret. A selection covering part of a single block is split out of it
// first.
func (d *Document) retag(tag string) Result {
	t := d.Tree
	start, end, ok := d.selection()
	if !ok {
		el := t.NewElement(tag)
		_, fb := d.insert([]content.NodeID{el}, true)
		return Result{Cursor: Cursor{el, 0}, Fallback: fb}
	}

	start, end = d.boundaries(start, end)
	texts := d.textsWithin(start, end)
	blocks := d.blocksWithin(texts)
	if len(blocks) == 0 {
		return Result{Cursor: d.sel.Focus}
	}

	if len(blocks) == 1 {
		b := blocks[0]
		first, last := texts[0], texts[len(texts)-1]
		whole := len(d.textsWithin(d.before(b), d.after(b))) == len(texts)
		if !whole {
			b = d.splitBefore(first, b)
			d.splitAfter(last, b)
			blocks[0] = b
		}
	}

	target := tag
	toggled := true
	for _, b := range blocks {
		if t.Tag(b) != tag {
			toggled = false
			break
		}
	}
	if toggled {
		target = "p"
	}
	for _, b := range blocks {
		t.SetTag(b, target)
	}

	first, last := texts[0], texts[len(texts)-1]
	d.Select(Cursor{first, 0}, Cursor{last, t.Len(last)})
	return Result{Cursor: Cursor{last, t.Len(last)}}
}

func (d *Document) blockquote() Result {
	t := d.Tree
	if _, _, ok := d.selection(); !ok {
		el := t.NewElement("blockquote")
		_, fb := d.insert([]content.NodeID{el}, true)
		return Result{Cursor: Cursor{el, 0}, Fallback: fb}
	}

	blocks, fb := d.selectedBlocks()
	quoted := func(id content.NodeID) content.NodeID {
		return t.Ancestor(t.Parent(id), func(n content.NodeID) bool { return t.Tag(n) == "blockquote" && !t.IsText(n) })
	}

	all := true
	for _, b := range blocks {
		if quoted(b) == content.NoNode {
			all = false
			break
		}
	}
	if all {
		for _, b := range blocks {
			if q := quoted(b); q != content.NoNode {
				d.unwrap(q)
			}
		}
		return Result{Cursor: d.sel.Focus, Fallback: fb}
	}

	for _, group := range siblingRuns(t, blocks) {
		q := t.Wrap(group[0], "blockquote")
		_ = t.Append(q, group[1:]...)
	}
	return Result{Cursor: d.sel.Focus, Fallback: fb}
}

// siblingRuns groups blocks into runs of consecutive siblings.
func siblingRuns(t *content.Tree, blocks []content.NodeID) [][]content.NodeID {
	var runs [][]content.NodeID
	for _, b := range blocks {
		if n := len(runs); n > 0 {
			prev := runs[n-1][len(runs[n-1])-1]
			if t.Parent(prev) == t.Parent(b) && t.Index(prev)+1 == t.Index(b) {
				runs[n-1] = append(runs[n-1], b)
				continue
			}
		}
		runs = append(runs, []content.NodeID{b})
	}
	return runs
}

// list turns the selected blocks into items of a tag list, switches the type
// of the lists they are in, or turns their items back into paragraphs when
// they already are in a tag list.
func (d *Document) list(tag string) Result {
	t := d.Tree
	blocks, fb := d.selectedBlocks()

	listOf := func(b content.NodeID) (item, list content.NodeID) {
		item = t.Parent(b)
		if t.Tag(item) != "li" || t.IsText(item) {
			return content.NoNode, content.NoNode
		}
		list = t.Parent(item)
		if tg := t.Tag(list); tg != "ul" && tg != "ol" {
			return content.NoNode, content.NoNode
		}
		return item, list
	}

	inList, same := true, true
	for _, b := range blocks {
		_, l := listOf(b)
		if l == content.NoNode {
			inList = false
			break
		}
		if t.Tag(l) != tag {
			same = false
		}
	}

	switch {
	case inList && same:
		for _, b := range blocks {
			item, l := listOf(b)
			if item == content.NoNode {
				continue
			}
			if i := t.Index(item); i+1 < t.Len(l) {
				d.splitElement(l, i+1)
			}
			if i := t.Index(item); i > 0 {
				l = d.splitElement(l, i)
			}
			for _, c := range t.Children(item) {
				if t.Parent(c) == item && t.IsInline(c) {
					d.wrapRun(item, t.Index(c))
				}
			}
			d.unwrap(item)
			d.unwrap(l)
		}
	case inList:
		for _, b := range blocks {
			if _, l := listOf(b); l != content.NoNode {
				t.SetTag(l, tag)
			}
		}
	default:
		for _, group := range siblingRuns(t, blocks) {
			l := t.NewElement(tag)
			_ = t.Insert(t.Parent(group[0]), t.Index(group[0]), l)
			for _, b := range group {
				item := t.NewElement("li")
				_ = t.Append(l, item)
				_ = t.Append(item, b)
			}
		}
	}

	// a plain paragraph alone in an item is kept as bare item text
	for _, b := range blocks {
		item := t.Parent(b)
		if t.Reachable(b) && t.Tag(b) == "p" && len(t.Attrs(b)) == 0 && t.Tag(item) == "li" && t.Len(item) == 1 {
			d.unwrap(b)
		}
	}
	return Result{Cursor: d.sel.Focus, Fallback: fb}
}
