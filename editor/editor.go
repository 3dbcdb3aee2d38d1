// Package editor implements rich-text editing over a content tree.
//
// A Document couples a content.Tree with a selection made of (container,
// offset) cursors. Every mutation is a Command applied through Apply: inline
// formatting, block changes, fragment insertion and typing. A cursor that is
// missing or no longer reachable is recovered in tiers (end of the last
// block, then an implicit paragraph, then a plain append), so edits never
// fail on a stale position and never drop content.
//
// Editor is the boundary used by an owner such as a form or the MCP server:
// it is created from a canonical content string and reports the new string
// through its onChange callback after every committed change.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/content"
	"github.com/lvillar/richdoc/table"
)

// ErrClosed is returned by operations on a closed Editor.
var ErrClosed = errors.New("editor: closed")

// Option configures an Editor.
type Option func(*Editor)

// WithPlaceholder sets the text shown by the owner while the document is empty.
func WithPlaceholder(s string) Option {
	return func(e *Editor) {
		e.placeholder = s
	}
}

// WithLogger sets the logger used to report recovered degradations.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		e.log = l
	}
}

// WithMaxImageWidth bounds the display width of inserted images, in pixels.
func WithMaxImageWidth(px int) Option {
	return func(e *Editor) {
		e.maxImageWidth = px
	}
}

// Editor owns one document while it is being edited.
type Editor struct {
	doc  *Document
	sync *Synchronizer

	placeholder   string
	maxImageWidth int
	log           *slog.Logger
	closed        bool
}

// New parses value and returns an editor over it. onChange receives the
// canonical content string after every change and once more on Close.
func New(value string, onChange func(string), opts ...Option) (*Editor, error) {
	e := &Editor{
		maxImageWidth: DefaultMaxImageWidth,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	t, err := content.Parse(value)
	if err != nil {
		return nil, richdoc.NewError("editor.New", err)
	}
	e.doc = NewDocument(t, e.log)
	e.sync = NewSynchronizer(t.String(), onChange, e.log)
	return e, nil
}

// Document exposes the edited document.
func (e *Editor) Document() *Document { return e.doc }

// Value returns the canonical content string.
func (e *Editor) Value() string { return e.doc.Tree.String() }

// Placeholder returns the placeholder text.
func (e *Editor) Placeholder() string { return e.placeholder }

// Empty reports whether the document has no visible text and no embedded
// objects, which is when the owner shows the placeholder.
func (e *Editor) Empty() bool {
	t := e.doc.Tree
	if strings.TrimSpace(t.TextContent(t.Root())) != "" {
		return false
	}
	for _, tag := range []string{"img", "table", "hr"} {
		if len(t.FindTag(tag)) > 0 {
			return false
		}
	}
	return true
}

// Select sets the selection.
func (e *Editor) Select(anchor, focus Cursor) { e.doc.Select(anchor, focus) }

// SetCursor collapses the selection at c.
func (e *Editor) SetCursor(c Cursor) { e.doc.Restore(c) }

// SelectText selects the first occurrence of s.
func (e *Editor) SelectText(s string) bool { return e.doc.SelectText(s) }

// SelectAll selects the whole document.
func (e *Editor) SelectAll() { e.doc.SelectAll() }

// Blur drops the focus, as when the user clicks outside the editing surface.
func (e *Editor) Blur() { e.doc.Blur() }

// Cursor returns the caret, false when the editor is not focused.
func (e *Editor) Cursor() (Cursor, bool) { return e.doc.Capture() }

// Apply runs cmd and synchronizes the owner.
func (e *Editor) Apply(cmd Command) Result {
	if e.closed {
		return Result{Cursor: NoCursor, Err: ErrClosed}
	}
	res := Apply(e.doc, cmd)
	if res.Err != nil {
		e.log.Info("command rejected", "component", "editor", "op", cmd.Kind.String(), "error", res.Err)
		return res
	}
	if res.Fallback != FallbackNone {
		e.log.Info("command used cursor fallback", "component", "editor", "op", cmd.Kind.String(), "fallback", res.Fallback.String())
	}
	e.sync.Sync(e.doc.Tree)
	return res
}

// Exec runs a formatting command by name, e.g. Exec("heading", "2").
func (e *Editor) Exec(name, value string) error {
	cmd, err := ParseCommand(name, value)
	if err != nil {
		return err
	}
	return e.Apply(cmd).Err
}

// InsertText types s at the caret.
func (e *Editor) InsertText(s string) error {
	return e.Apply(Command{Kind: InsertText, Text: s}).Err
}

// InsertFragment splices f at the caret.
func (e *Editor) InsertFragment(f content.Fragment) error {
	return e.Apply(Command{Kind: InsertFragment, Fragment: f}).Err
}

// InsertTable inserts a header row plus rows body rows of cols cells. A
// non-positive size is rejected and leaves the document unchanged.
func (e *Editor) InsertTable(rows, cols int) error {
	f, err := table.Spec{Rows: rows, Cols: cols}.Fragment()
	if err != nil {
		e.log.Info("table rejected", "component", "editor", "rows", rows, "cols", cols, "error", err)
		return err
	}
	return e.InsertFragment(f)
}

// InsertLink inserts an <a> element. The display text defaults to the target.
func (e *Editor) InsertLink(href, text string) error {
	href = strings.TrimSpace(href)
	if href == "" {
		return fmt.Errorf("editor: %w", richdoc.ErrEmptyLinkTarget)
	}
	if strings.TrimSpace(text) == "" {
		text = href
	}
	return e.InsertFragment(content.Fragment{
		content.Element("a", []content.Attr{{Key: "href", Val: href}}, content.Text(text)),
	})
}

// InsertImage inserts a resolved image.
func (e *Editor) InsertImage(img ResolvedImage) error {
	if img.Src == "" {
		return fmt.Errorf("editor: %w: empty image source", richdoc.ErrInvalidParam)
	}
	return e.InsertFragment(img.Fragment(e.maxImageWidth))
}

// InsertImageRequest resolves req, then inserts the image wherever the caret
// is once the image is ready.
func (e *Editor) InsertImageRequest(ctx context.Context, req ImageRequest) error {
	img, err := req.Resolve(ctx)
	if err != nil {
		e.log.Info("image not inserted", "component", "editor", "path", req.Path, "url", req.URL, "error", err)
		return err
	}
	return e.InsertImage(img)
}

// InsertHeading inserts a heading of the given level holding text.
func (e *Editor) InsertHeading(level int, text string) error {
	if level < 1 || level > 3 {
		return fmt.Errorf("editor: %w: heading level %d", richdoc.ErrInvalidParam, level)
	}
	return e.InsertFragment(content.Fragment{
		content.Element("h"+strconv.Itoa(level), nil, content.Text(text)),
	})
}

// Close hands the final value to the owner. Later edits fail with ErrClosed.
func (e *Editor) Close() string {
	if !e.closed {
		e.closed = true
		e.sync.Flush(e.doc.Tree)
	}
	return e.sync.Last()
}
