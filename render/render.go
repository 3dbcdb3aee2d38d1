// Package render turns canonical document content plus its metadata into a
// single PDF file.
//
// Content is laid out by the paginate package and the resulting draw
// instructions are replayed on a gofpdf document. A metadata preamble (title,
// author, status and edit history) precedes the content, and every page gets
// the decorations of the pageops package: a page-number footer and, when
// enabled, a status watermark, a letterhead and a barcode stamp.
//
// Rendering is all or nothing: any backend failure, including a panic, is
// logged and reported as one error wrapping richdoc.ErrRender, and nothing is
// written to the destination.
package render

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/phpdave11/gofpdf"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/content"
	"github.com/lvillar/richdoc/pageops"
	"github.com/lvillar/richdoc/paginate"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithConfig sets the page layout. The default is richdoc.DefaultConfig.
func WithConfig(cfg *richdoc.Config) Option {
	return func(r *Renderer) {
		r.cfg = cfg
	}
}

// WithLogger sets the logger used for degradations and failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		r.log = l
	}
}

// WithMeasurer replaces the backend font metrics used for line wrapping.
func WithMeasurer(m paginate.Measurer) Option {
	return func(r *Renderer) {
		r.measurer = m
	}
}

// WithStamp draws a barcode of the document metadata on every page.
func WithStamp(kind pageops.StampKind) Option {
	return func(r *Renderer) {
		r.stamp = true
		r.stampKind = kind
	}
}

// WithStatusWatermark draws the status (DRAFT, IN REVIEW, ARCHIVED) across
// pages of documents that are not final.
func WithStatusWatermark() Option {
	return func(r *Renderer) {
		r.watermark = true
	}
}

// WithLetterhead draws the first page of the PDF at path under every page.
func WithLetterhead(path string) Option {
	return func(r *Renderer) {
		r.letterhead = path
	}
}

// WithAppendix appends the pages of existing PDF files after the content.
func WithAppendix(paths ...string) Option {
	return func(r *Renderer) {
		r.appendix = append(r.appendix, paths...)
	}
}

// WithPageNumbers overrides the page-number footer style.
func WithPageNumbers(style pageops.PageNumberStyle) Option {
	return func(r *Renderer) {
		r.numbers = style
	}
}

// Renderer renders documents to PDF. It is safe for concurrent use.
type Renderer struct {
	cfg        *richdoc.Config
	log        *slog.Logger
	measurer   paginate.Measurer
	stamp      bool
	stampKind  pageops.StampKind
	watermark  bool
	letterhead string
	appendix   []string
	numbers    pageops.PageNumberStyle

	once sync.Once
	pdfM *PDFMeasurer
}

// New returns a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	if r.cfg == nil {
		r.cfg = richdoc.DefaultConfig()
	}
	if r.numbers.Color == (richdoc.Color{}) {
		r.numbers.Color = r.cfg.Theme.Muted
	}
	return r
}

// Result describes a rendered document.
type Result struct {
	Pages        int              // pages in the output, appendix included
	Blocks       []paginate.Block // layout of the preamble and content blocks
	Placeholders int              // images drawn as placeholders
}

// Render writes the PDF for content and meta to w.
func (r *Renderer) Render(w io.Writer, s string, meta richdoc.Metadata) (*Result, error) {
	var buf bytes.Buffer
	res, err := r.render(&buf, s, meta)
	if err != nil {
		return nil, err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return nil, r.fail("Render", meta, err)
	}
	return res, nil
}

// RenderFile writes the PDF into dir under the name derived from the title
// and returns its path.
func (r *Renderer) RenderFile(dir, s string, meta richdoc.Metadata) (string, *Result, error) {
	var buf bytes.Buffer
	res, err := r.render(&buf, s, meta)
	if err != nil {
		return "", nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, r.fail("RenderFile", meta, err)
	}
	path := filepath.Join(dir, meta.Filename())
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", nil, r.fail("RenderFile", meta, err)
	}
	r.log.Info("document rendered", "component", "render", "path", path, "pages", res.Pages)
	return path, res, nil
}

func (r *Renderer) measure() paginate.Measurer {
	if r.measurer != nil {
		return r.measurer
	}
	r.once.Do(func() {
		r.pdfM = NewPDFMeasurer(r.cfg)
	})
	return r.pdfM
}

func (r *Renderer) render(w io.Writer, s string, meta richdoc.Metadata) (res *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res, err = nil, r.fail("Render", meta, fmt.Errorf("backend panic: %v", rec))
		}
	}()

	tree, err := content.Parse(s)
	if err != nil {
		return nil, r.fail("Render", meta, err)
	}
	if err := prependPreamble(tree, meta); err != nil {
		return nil, r.fail("Render", meta, err)
	}

	m := r.measure()
	if pm, ok := m.(*PDFMeasurer); ok && pm.Err() != nil {
		return nil, r.fail("Render", meta, fmt.Errorf("%w: %v", richdoc.ErrBackendUnavailable, pm.Err()))
	}
	layout := paginate.New(r.cfg, paginate.WithMeasurer(m), paginate.WithLogger(r.log)).Paginate(tree)

	pdf := newDocument(r.cfg)
	if pdf.Err() {
		return nil, r.fail("Render", meta, fmt.Errorf("%w: %v", richdoc.ErrBackendUnavailable, pdf.Error()))
	}
	setInfo(pdf, meta)

	decor := r.decorations(meta)
	if err := decor.Prepare(pdf); err != nil {
		return nil, r.fail("Render", meta, err)
	}

	res = &Result{Blocks: layout.Blocks}
	d := &drawer{pdf: pdf, cfg: r.cfg, images: newImages(pdf), log: r.log}
	for _, page := range layout.Pages {
		pdf.AddPage()
		decor.Under(pdf)
		d.page(page)
		decor.Over(pdf)
	}
	res.Placeholders = d.placeholders

	if len(r.appendix) > 0 {
		if _, err := pageops.AppendFiles(pdf, r.appendix...); err != nil {
			return nil, r.fail("Render", meta, err)
		}
	}
	res.Pages = pdf.PageNo()

	if err := pdf.Output(w); err != nil {
		return nil, r.fail("Render", meta, err)
	}
	return res, nil
}

// fail logs err and wraps it as the single terminal render error.
func (r *Renderer) fail(op string, meta richdoc.Metadata, err error) error {
	r.log.Error("render failed", "component", "render", "op", op, "title", meta.Title, "error", err)
	return richdoc.NewError(op, fmt.Errorf("%w: %w", richdoc.ErrRender, err))
}

func (r *Renderer) decorations(meta richdoc.Metadata) pageops.Decorations {
	numbers := r.numbers
	d := pageops.Decorations{PageNumbers: &numbers}
	if r.watermark {
		if wm, ok := pageops.StatusWatermark(meta.Status, r.cfg.Theme.Watermark); ok {
			d.Watermark = &wm
		}
	}
	if r.letterhead != "" {
		d.Letterhead = &pageops.Letterhead{Path: r.letterhead}
	}
	if r.stamp {
		d.Stamp = &pageops.Stamp{Kind: r.stampKind, Content: stampContent(meta)}
	}
	return d
}

// stampContent is the text encoded in the barcode stamp.
func stampContent(meta richdoc.Metadata) string {
	parts := []string{meta.Title}
	if meta.Version != "" {
		parts = append(parts, "v"+strings.TrimPrefix(meta.Version, "v"))
	}
	if meta.LastEditedBy != "" {
		parts = append(parts, meta.LastEditedBy)
	}
	if !meta.LastEditedAt.IsZero() {
		parts = append(parts, meta.LastEditedAt.UTC().Format("2006-01-02T15:04Z"))
	}
	s := strings.TrimSpace(strings.Join(parts, " | "))
	if strings.Trim(s, " |") == "" {
		return meta.Filename()
	}
	return s
}

func setInfo(pdf *gofpdf.Fpdf, meta richdoc.Metadata) {
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Category, true)
	var keywords []string
	for _, k := range []string{meta.Status, meta.Priority, meta.Version} {
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	pdf.SetKeywords(strings.Join(keywords, " "), true)
	pdf.SetCreator("richdoc", false)
}

// prependPreamble inserts the title heading and the metadata lines before
// the content.
func prependPreamble(tree *content.Tree, meta richdoc.Metadata) error {
	var f content.Fragment
	if strings.TrimSpace(meta.Title) != "" {
		f = append(f, content.Element("h1", nil, content.Text(meta.Title)))
	}
	for _, line := range meta.Fields() {
		f = append(f, content.Element("p", nil, content.Text(line)))
	}
	if len(f) == 0 {
		return nil
	}
	return tree.Insert(tree.Root(), 0, tree.Import(f)...)
}
