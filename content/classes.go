package content

// Tag classes used when deciding where a fragment may be spliced.
var (
	flowTags = map[string]bool{
		"blockquote": true, "li": true, "td": true, "th": true, "div": true,
	}
	phrasingBlockTags = map[string]bool{
		"p": true, "h1": true, "h2": true, "h3": true, "pre": true,
	}
	structuralTags = map[string]bool{
		"ul": true, "ol": true, "table": true, "thead": true, "tbody": true, "tfoot": true, "tr": true,
	}
	voidTags = map[string]bool{
		"br": true, "img": true, "hr": true,
	}
	inlineTags = map[string]bool{
		"strong": true, "b": true, "em": true, "i": true, "u": true, "a": true,
		"span": true, "code": true, "br": true, "img": true, "s": true, "sub": true, "sup": true,
	}
)

// IsFlowContainer reports whether id accepts block-level children (the root,
// blockquote, li, td, th, div).
func (t *Tree) IsFlowContainer(id NodeID) bool {
	return id == t.root || (!t.IsText(id) && flowTags[t.Tag(id)])
}

// IsTextBlock reports whether id is a block that holds only phrasing content.
func (t *Tree) IsTextBlock(id NodeID) bool {
	return !t.IsText(id) && phrasingBlockTags[t.Tag(id)]
}

// IsStructural reports whether id only accepts specific children (lists, tables, rows).
func (t *Tree) IsStructural(id NodeID) bool {
	return !t.IsText(id) && structuralTags[t.Tag(id)]
}

// IsVoid reports whether id is an element that never has children.
func (t *Tree) IsVoid(id NodeID) bool {
	return !t.IsText(id) && voidTags[t.Tag(id)]
}

// IsInline reports whether id is text or a phrasing element.
func (t *Tree) IsInline(id NodeID) bool {
	return t.IsText(id) || inlineTags[t.Tag(id)]
}

// IsBlock reports whether id is a block-level element.
func (t *Tree) IsBlock(id NodeID) bool {
	return id != t.root && !t.IsInline(id)
}

// IsBlockTag reports whether tag names a block-level element.
func IsBlockTag(tag string) bool {
	return tag != "" && !inlineTags[tag]
}

// IsVoidTag reports whether tag names an element that never has children.
func IsVoidTag(tag string) bool {
	return voidTags[tag]
}
