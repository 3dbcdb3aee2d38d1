package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/editor"
)

// ImageTimeout bounds how long insert_image may spend reading a file.
const ImageTimeout = 30 * time.Second

// RegisterDefaultTools adds all built-in editing and rendering tools to the server.
func RegisterDefaultTools(s *Server, w *Workspace) {
	s.AddTool(openDocumentTool(w))
	s.AddTool(selectTextTool(w))
	s.AddTool(typeTextTool(w))
	s.AddTool(applyCommandTool(w))
	s.AddTool(insertTableTool(w))
	s.AddTool(insertLinkTool(w))
	s.AddTool(insertImageTool(w))
	s.AddTool(insertHeadingTool(w))
	s.AddTool(getContentTool(w))
	s.AddTool(closeDocumentTool(w))
	s.AddTool(renderPDFTool(w))
}

// field is one key of a JSON tool result.
type field struct {
	key string
	val any
}

// jsonResult builds a text result holding a JSON object.
func jsonResult(fields ...field) (ToolResult, error) {
	out := "{}"
	for _, f := range fields {
		var err error
		if out, err = sjson.Set(out, f.key, f.val); err != nil {
			return ToolResult{}, fmt.Errorf("encoding result: %w", err)
		}
	}
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: out}}}, nil
}

// stateResult reports the content of a session after an edit.
func stateResult(s *session, fields ...field) (ToolResult, error) {
	base := []field{
		{"session", s.id},
		{"content", s.editor.Value()},
		{"empty", s.editor.Empty()},
	}
	return jsonResult(append(base, fields...)...)
}

func requireString(args gjson.Result, key string) (string, error) {
	v := args.Get(key)
	if v.Type != gjson.String {
		return "", fmt.Errorf("%w: missing '%s' argument", richdoc.ErrInvalidParam, key)
	}
	return v.String(), nil
}

// MaxTableSize bounds the rows and columns insert_table accepts.
const MaxTableSize = 1000

func requireInt(args gjson.Result, key string) (int, error) {
	v := args.Get(key)
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("%w: missing '%s' argument", richdoc.ErrInvalidParam, key)
	}
	return int(v.Int()), nil
}

// requireSize reads a table dimension in 1..MaxTableSize.
func requireSize(args gjson.Result, key string) (int, error) {
	n, err := requireInt(args, key)
	if err != nil {
		return 0, err
	}
	if n > MaxTableSize {
		return 0, fmt.Errorf("%w: '%s' is %d, at most %d allowed", richdoc.ErrInvalidParam, key, n, MaxTableSize)
	}
	return n, nil
}

func schema(required []string, props map[string]interface{}) map[string]interface{} {
	m := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		m["required"] = required
	}
	return m
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

var sessionProp = prop("string", "Session id returned by open_document")

var metadataProps = map[string]interface{}{
	"title":        prop("string", "Document title, also used for the PDF file name"),
	"author":       prop("string", "Author"),
	"status":       prop("string", "Status, e.g. draft, review, published"),
	"priority":     prop("string", "Priority"),
	"category":     prop("string", "Category"),
	"version":      prop("string", "Version"),
	"lastEditedBy": prop("string", "Name of the last editor"),
	"lastEditedAt": prop("string", "Time of the last edit (RFC 3339)"),
}

// metadataFrom overrides base with the metadata arguments present in args.
func metadataFrom(args gjson.Result, base richdoc.Metadata) (richdoc.Metadata, error) {
	set := func(key string, dst *string) {
		if v := args.Get(key); v.Type == gjson.String {
			*dst = v.String()
		}
	}
	set("title", &base.Title)
	set("author", &base.Author)
	set("status", &base.Status)
	set("priority", &base.Priority)
	set("category", &base.Category)
	set("version", &base.Version)
	set("lastEditedBy", &base.LastEditedBy)
	if v := args.Get("lastEditedAt"); v.Type == gjson.String {
		t, err := time.Parse(time.RFC3339, v.String())
		if err != nil {
			return base, fmt.Errorf("%w: lastEditedAt: %v", richdoc.ErrInvalidParam, err)
		}
		base.LastEditedAt = t
	}
	return base, nil
}

func withProps(extra map[string]interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(metadataProps)+len(extra))
	for k, v := range metadataProps {
		m[k] = v
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func openDocumentTool(w *Workspace) Tool {
	return Tool{
		Name:        "open_document",
		Description: "Open a rich-text document for editing. The content is HTML-like markup (p, h1-h3, strong, em, u, a, ul/ol/li, blockquote, pre, table, img). Returns the session id and the canonical content.",
		InputSchema: schema(nil, withProps(map[string]interface{}{
			"content":     prop("string", "Initial content; empty for a new document"),
			"placeholder": prop("string", "Text shown while the document is empty"),
		})),
		Handler: func(args gjson.Result) (ToolResult, error) {
			meta, err := metadataFrom(args, richdoc.Metadata{})
			if err != nil {
				return ToolResult{}, err
			}
			var opts []editor.Option
			if p := args.Get("placeholder").String(); p != "" {
				opts = append(opts, editor.WithPlaceholder(p))
			}
			s, err := w.open(args.Get("content").String(), meta, opts...)
			if err != nil {
				return ToolResult{}, err
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			return stateResult(s)
		},
	}
}

func selectTextTool(w *Workspace) Tool {
	return Tool{
		Name:        "select_text",
		Description: "Select the first occurrence of a text, or the whole document with all=true. Formatting commands and insertions apply to the selection.",
		InputSchema: schema([]string{"session"}, map[string]interface{}{
			"session": sessionProp,
			"text":    prop("string", "Text to select"),
			"all":     prop("boolean", "Select the whole document"),
		}),
		Handler: func(args gjson.Result) (ToolResult, error) {
			var res ToolResult
			err := w.with(args.Get("session").String(), func(s *session) error {
				if args.Get("all").Bool() {
					s.editor.SelectAll()
					var err error
					res, err = jsonResult(field{"session", s.id}, field{"found", true})
					return err
				}
				text, err := requireString(args, "text")
				if err != nil {
					return err
				}
				found := s.editor.SelectText(text)
				res, err = jsonResult(field{"session", s.id}, field{"found", found})
				return err
			})
			return res, err
		},
	}
}

func typeTextTool(w *Workspace) Tool {
	return Tool{
		Name:        "type_text",
		Description: "Type text at the cursor, replacing the selection if there is one. Without a cursor the text goes to the end of the document.",
		InputSchema: schema([]string{"session", "text"}, map[string]interface{}{
			"session": sessionProp,
			"text":    prop("string", "Text to type"),
		}),
		Handler: func(args gjson.Result) (ToolResult, error) {
			return editTool(w, args, func(s *session) error {
				text, err := requireString(args, "text")
				if err != nil {
					return err
				}
				return s.editor.InsertText(text)
			})
		},
	}
}

func applyCommandTool(w *Workspace) Tool {
	return Tool{
		Name: "apply_command",
		Description: "Apply a formatting command to the selection or the cursor position. Commands: " +
			strings.Join(editor.Commands(), ", ") + ". heading takes the level 1-3 as value.",
		InputSchema: schema([]string{"session", "command"}, map[string]interface{}{
			"session": sessionProp,
			"command": prop("string", "Command name"),
			"value":   prop("string", "Command value, e.g. the heading level"),
		}),
		Handler: func(args gjson.Result) (ToolResult, error) {
			return editTool(w, args, func(s *session) error {
				name, err := requireString(args, "command")
				if err != nil {
					return err
				}
				return s.editor.Exec(name, args.Get("value").String())
			})
		},
	}
}

func insertTableTool(w *Workspace) Tool {
	return Tool{
		Name:        "insert_table",
		Description: "Insert a table with a header row and the given number of body rows and columns at the cursor.",
		InputSchema: schema([]string{"session", "rows", "cols"}, map[string]interface{}{
			"session": sessionProp,
			"rows":    prop("integer", "Number of body rows (1 to 1000)"),
			"cols":    prop("integer", "Number of columns (1 to 1000)"),
		}),
		Handler: func(args gjson.Result) (ToolResult, error) {
			return editTool(w, args, func(s *session) error {
				rows, err := requireSize(args, "rows")
				if err != nil {
					return err
				}
				cols, err := requireSize(args, "cols")
				if err != nil {
					return err
				}
				return s.editor.InsertTable(rows, cols)
			})
		},
	}
}

func insertLinkTool(w *Workspace) Tool {
	return Tool{
		Name:        "insert_link",
		Description: "Insert a link at the cursor. The text defaults to the target.",
		InputSchema: schema([]string{"session", "href"}, map[string]interface{}{
			"session": sessionProp,
			"href":    prop("string", "Link target"),
			"text":    prop("string", "Link text"),
		}),
		Handler: func(args gjson.Result) (ToolResult, error) {
			return editTool(w, args, func(s *session) error {
				return s.editor.InsertLink(args.Get("href").String(), args.Get("text").String())
			})
		},
	}
}

func insertImageTool(w *Workspace) Tool {
	return Tool{
		Name:        "insert_image",
		Description: "Insert an image at the cursor, either a local file (embedded in the document) or an http(s) URL.",
		InputSchema: schema([]string{"session"}, map[string]interface{}{
			"session": sessionProp,
			"path":    prop("string", "Local image file (PNG, JPEG, GIF, WebP, BMP, TIFF)"),
			"url":     prop("string", "Remote image URL"),
			"alt":     prop("string", "Alternative text, drawn as the caption"),
		}),
		Handler: func(args gjson.Result) (ToolResult, error) {
			req := editor.ImageRequest{
				Path: args.Get("path").String(),
				URL:  args.Get("url").String(),
				Alt:  args.Get("alt").String(),
			}
			// resolve outside the session lock so other edits are not held up
			ctx, cancel := context.WithTimeout(context.Background(), ImageTimeout)
			defer cancel()
			img, err := req.Resolve(ctx)
			if err != nil {
				return ToolResult{}, err
			}
			return editTool(w, args, func(s *session) error {
				return s.editor.InsertImage(img)
			})
		},
	}
}

func insertHeadingTool(w *Workspace) Tool {
	return Tool{
		Name:        "insert_heading",
		Description: "Insert a heading of level 1-3 holding the given text at the cursor.",
		InputSchema: schema([]string{"session", "level", "text"}, map[string]interface{}{
			"session": sessionProp,
			"level":   prop("integer", "Heading level 1-3"),
			"text":    prop("string", "Heading text"),
		}),
		Handler: func(args gjson.Result) (ToolResult, error) {
			return editTool(w, args, func(s *session) error {
				level, err := requireInt(args, "level")
				if err != nil {
					return err
				}
				return s.editor.InsertHeading(level, args.Get("text").String())
			})
		},
	}
}

// editTool runs an edit on the session named in args and reports the new state.
func editTool(w *Workspace, args gjson.Result, edit func(*session) error) (ToolResult, error) {
	var res ToolResult
	err := w.with(args.Get("session").String(), func(s *session) error {
		if err := edit(s); err != nil {
			return err
		}
		var err error
		res, err = stateResult(s)
		return err
	})
	return res, err
}

func getContentTool(w *Workspace) Tool {
	return Tool{
		Name:        "get_content",
		Description: "Return the canonical content of a session.",
		InputSchema: schema([]string{"session"}, map[string]interface{}{"session": sessionProp}),
		Handler: func(args gjson.Result) (ToolResult, error) {
			var res ToolResult
			err := w.with(args.Get("session").String(), func(s *session) error {
				var err error
				res, err = stateResult(s, field{"placeholder", s.editor.Placeholder()}, field{"title", s.meta.Title})
				return err
			})
			return res, err
		},
	}
}

func closeDocumentTool(w *Workspace) Tool {
	return Tool{
		Name:        "close_document",
		Description: "Close a session and return its final content.",
		InputSchema: schema([]string{"session"}, map[string]interface{}{"session": sessionProp}),
		Handler: func(args gjson.Result) (ToolResult, error) {
			id := args.Get("session").String()
			v, err := w.close(id)
			if err != nil {
				return ToolResult{}, err
			}
			return jsonResult(field{"session", id}, field{"content", v}, field{"closed", true})
		},
	}
}

func renderPDFTool(w *Workspace) Tool {
	return Tool{
		Name:        "render_pdf",
		Description: "Render a session (or the given content) to PDF with a metadata preamble and page numbers. Writes <Title>.pdf into outputDir, or returns the PDF as base64.",
		InputSchema: schema(nil, withProps(map[string]interface{}{
			"session":   sessionProp,
			"content":   prop("string", "Content to render when no session is given"),
			"outputDir": prop("string", "Directory for the PDF file. If omitted, returns base64."),
		})),
		Handler: func(args gjson.Result) (ToolResult, error) {
			content, meta := args.Get("content").String(), richdoc.Metadata{}
			if id := args.Get("session").String(); id != "" {
				err := w.with(id, func(s *session) error {
					content, meta = s.value, s.meta
					return nil
				})
				if err != nil {
					return ToolResult{}, err
				}
			}
			meta, err := metadataFrom(args, meta)
			if err != nil {
				return ToolResult{}, err
			}

			if dir := args.Get("outputDir").String(); dir != "" {
				path, res, err := w.renderer.RenderFile(dir, content, meta)
				if err != nil {
					return ToolResult{}, err
				}
				return jsonResult(field{"path", path}, field{"pages", res.Pages}, field{"placeholders", res.Placeholders})
			}

			var buf bytes.Buffer
			res, err := w.renderer.Render(&buf, content, meta)
			if err != nil {
				return ToolResult{}, err
			}
			return ToolResult{Content: []ContentBlock{
				{Type: "text", Text: fmt.Sprintf("PDF rendered: %s, %d pages (%d bytes)", meta.Filename(), res.Pages, buf.Len())},
				{Type: "resource", MIMEType: "application/pdf", Data: base64.StdEncoding.EncodeToString(buf.Bytes())},
			}}, nil
		},
	}
}
