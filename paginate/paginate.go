// Package paginate lays out a content tree as page-bounded draw instructions.
//
// A Paginator walks the tree in document order and dispatches on the tag of
// every block: headings, paragraphs, line breaks, images, tables, lists,
// blockquotes and preformatted code have dedicated rules; any other element is
// descended into with the same rules. Before an instruction is emitted the
// running vertical offset is checked against the page bound; an instruction
// that would cross it starts a new page first. Each call owns its own layout
// state, so a Paginator can be reused for any number of documents.
package paginate

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"unicode"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/content"
	"github.com/lvillar/richdoc/table"
)

// Phase is the state of the page state machine.
type Phase uint8

const (
	Filling     Phase = iota // accepting instructions
	Overflowing              // the next instruction does not fit
	PageBreak                // current page emitted, new page started
	Done                     // tree exhausted, last page emitted
)

func (p Phase) String() string {
	return [...]string{"filling", "overflowing", "page-break", "done"}[p]
}

// Metrics are the fixed sizes used by the per-tag rules, in the layout unit
// unless noted otherwise.
type Metrics struct {
	HeadingSize      [3]float64 // points, h1..h3
	HeadingAdvance   [3]float64
	ParagraphSpacing float64
	LineBreak        float64
	ImageWidth       float64
	ImageHeight      float64
	CaptionHeight    float64
	CaptionSize      float64 // points
	TableRowHeight   float64
	ListIndent       float64
	QuoteIndent      float64
	CodeLineHeight   float64
	CodeSize         float64 // points
}

// DefaultMetrics returns the built-in metrics converted to the unit of cfg.
func DefaultMetrics(cfg *richdoc.Config) Metrics {
	mm := cfg.FromMM
	return Metrics{
		HeadingSize:      [3]float64{20, 16, 14},
		HeadingAdvance:   [3]float64{mm(12), mm(10), mm(8)},
		ParagraphSpacing: mm(3),
		LineBreak:        mm(4),
		ImageWidth:       mm(60),
		ImageHeight:      mm(40),
		CaptionHeight:    mm(5),
		CaptionSize:      9,
		TableRowHeight:   mm(10),
		ListIndent:       mm(6),
		QuoteIndent:      mm(10),
		CodeLineHeight:   mm(5),
		CodeSize:         9,
	}
}

// Option configures a Paginator.
type Option func(*Paginator)

// WithMeasurer sets the string measurer used for word wrapping.
func WithMeasurer(m Measurer) Option {
	return func(p *Paginator) {
		p.measure = m
	}
}

// WithMetrics overrides the per-tag sizes.
func WithMetrics(m Metrics) Option {
	return func(p *Paginator) {
		p.metrics = m
	}
}

// WithLogger sets the logger used to report degraded rendering.
func WithLogger(l *slog.Logger) Option {
	return func(p *Paginator) {
		p.log = l
	}
}

// Paginator turns content trees into pages of draw instructions.
type Paginator struct {
	cfg     *richdoc.Config
	measure Measurer
	metrics Metrics
	style   table.Style
	log     *slog.Logger
}

// New returns a Paginator for the given layout. A nil cfg uses richdoc.DefaultConfig.
func New(cfg *richdoc.Config, opts ...Option) *Paginator {
	if cfg == nil {
		cfg = richdoc.DefaultConfig()
	}
	p := &Paginator{
		cfg:     cfg,
		measure: NewEstimateMeasurer(cfg),
		metrics: DefaultMetrics(cfg),
		style:   table.DefaultStyle(cfg),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the layout the paginator was built with.
func (p *Paginator) Config() *richdoc.Config { return p.cfg }

// Render lays out t and returns its pages. There is always at least one page.
func (p *Paginator) Render(t *content.Tree) []Page {
	return p.Paginate(t).Pages
}

// RenderString parses a canonical content string and lays it out.
func (p *Paginator) RenderString(s string) ([]Page, error) {
	t, err := content.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("paginate: %w", err)
	}
	return p.Render(t), nil
}

// Paginate lays out t and also reports per-block statistics.
func (p *Paginator) Paginate(t *content.Tree) *Result {
	r := &run{
		Paginator: p,
		tree:      t,
		left:      p.cfg.MarginLeft,
		width:     p.cfg.ContentWidth(),
		top:       p.cfg.MarginTop,
		bound:     p.cfg.Bound(),
		result:    &Result{},
	}
	r.startPage()
	r.blocks(t.Root(), true)
	r.finish()
	return r.result
}

// run is the ephemeral layout state of one Paginate call.
type run struct {
	*Paginator
	tree *content.Tree

	left, width float64
	top, bound  float64

	y     float64
	page  *Page
	phase Phase

	block  *Block
	result *Result
}

func (r *run) startPage() {
	r.result.Pages = append(r.result.Pages, Page{Index: len(r.result.Pages)})
	r.page = &r.result.Pages[len(r.result.Pages)-1]
	r.y = r.top
	r.phase = Filling
}

func (r *run) finish() {
	r.phase = Done
	r.result.Phase = r.phase
}

// fit clamps a required height to the usable page height.
func (r *run) fit(h float64) float64 {
	return math.Min(h, r.bound-r.top)
}

// reserve makes room for h before an instruction is drawn, breaking the page
// when the instruction would cross the bound. It returns the offset to draw at.
func (r *run) reserve(h float64) float64 {
	if r.y+h > r.bound+eps && r.y > r.top+eps {
		r.phase = Overflowing
		r.log.Debug("page break", "component", "paginate", "page", r.page.Index, "offset", r.y, "need", h, "phase", r.phase)
		r.phase = PageBreak
		r.startPage()
	}
	y := r.y
	r.y += h
	if r.block != nil {
		r.block.Advance += h
		r.block.EndPage = r.page.Index
	}
	return y
}

// skip advances the offset without drawing; it never crosses the bound.
func (r *run) skip(h float64) {
	ny := math.Min(r.y+h, r.bound)
	if r.block != nil {
		r.block.Advance += h
	}
	r.y = ny
}

func (r *run) emit(in Instruction) {
	if r.phase != Filling && r.phase != PageBreak {
		r.log.Warn("instruction dropped", "component", "paginate", "kind", in.Kind, "phase", r.phase)
		return
	}
	r.page.Instructions = append(r.page.Instructions, in)
}

func (r *run) beginBlock(tag string) {
	r.block = &Block{Tag: tag, StartPage: r.page.Index, EndPage: r.page.Index}
}

func (r *run) endBlock() {
	if r.block != nil {
		r.result.Blocks = append(r.result.Blocks, *r.block)
		r.block = nil
	}
}

func (r *run) bodyFont() Font {
	return Font{Family: r.cfg.FontFamily, Size: r.cfg.FontSize}
}

// textLines draws wrapped lines, each with its own page-break check.
func (r *run) textLines(lines []string, x, width, lineH float64, f Font, align string, color richdoc.Color) {
	lineH = r.fit(lineH)
	for _, line := range lines {
		y := r.reserve(lineH)
		if line == "" {
			continue
		}
		r.emit(Instruction{Kind: TextOp, X: x, Y: y, W: width, H: lineH, Text: line, Font: f, Align: align, Color: color})
		if r.block != nil {
			r.block.Lines++
		}
	}
}

// linkedLines draws wrapped paragraph lines, splitting each line into runs
// so that link text takes the link colour and an underline. mask flags the
// non-space runes of the paragraph that sit inside an <a>.
func (r *run) linkedLines(lines []string, mask []bool, align string) {
	f := r.bodyFont()
	if !slices.Contains(mask, true) {
		r.textLines(lines, r.left, r.width, r.cfg.LineHeight, f, align, r.cfg.Theme.Text)
		return
	}
	linkFont := f
	linkFont.Style += "U"
	style := func(link bool) (Font, richdoc.Color) {
		if link {
			return linkFont, r.cfg.Theme.Link
		}
		return f, r.cfg.Theme.Text
	}

	lineH := r.fit(r.cfg.LineHeight)
	next := 0
	for _, line := range lines {
		y := r.reserve(lineH)
		if line == "" {
			continue
		}
		segs := linkSegments(line, mask, &next)
		if len(segs) == 1 {
			sf, color := style(segs[0].link)
			r.emit(Instruction{Kind: TextOp, X: r.left, Y: y, W: r.width, H: lineH, Text: line, Font: sf, Align: align, Color: color})
		} else {
			widths := make([]float64, len(segs))
			total := 0.0
			for i, sg := range segs {
				sf, _ := style(sg.link)
				widths[i] = r.measure.StringWidth(sg.text, sf)
				total += widths[i]
			}
			x := r.left
			switch align {
			case "C":
				x += max(0, r.width-total) / 2
			case "R":
				x += max(0, r.width-total)
			}
			for i, sg := range segs {
				sf, color := style(sg.link)
				r.emit(Instruction{Kind: TextOp, X: x, Y: y, W: widths[i], H: lineH, Text: sg.text, Font: sf, Align: "L", Color: color})
				x += widths[i]
			}
		}
		if r.block != nil {
			r.block.Lines++
		}
	}
}

type segment struct {
	text string
	link bool
}

// linkSegments groups the runes of line by link flag. *next indexes the
// first unused entry of mask. A space joins a link run only when the runes
// on both sides of it are link text.
func linkSegments(line string, mask []bool, next *int) []segment {
	runes := []rune(line)
	flags := make([]bool, len(runes))
	for i, c := range runes {
		if unicode.IsSpace(c) {
			continue
		}
		if *next < len(mask) {
			flags[i] = mask[*next]
		}
		*next++
	}
	for i, c := range runes {
		if !unicode.IsSpace(c) {
			continue
		}
		before, after := false, false
		for j := i - 1; j >= 0; j-- {
			if !unicode.IsSpace(runes[j]) {
				before = flags[j]
				break
			}
		}
		for j := i + 1; j < len(runes); j++ {
			if !unicode.IsSpace(runes[j]) {
				after = flags[j]
				break
			}
		}
		flags[i] = before && after
	}

	var segs []segment
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || flags[i] != flags[start] {
			segs = append(segs, segment{text: string(runes[start:i]), link: flags[start]})
			start = i
		}
	}
	return segs
}

// blocks lays out the children of a flow container. Consecutive inline
// children are gathered into one paragraph.
func (r *run) blocks(id content.NodeID, topLevel bool) {
	var inline []content.NodeID
	flush := func() {
		if len(inline) == 0 {
			return
		}
		if topLevel {
			r.beginBlock("#text")
		}
		r.paragraphRun(inline, "L")
		if topLevel {
			r.endBlock()
		}
		inline = nil
	}

	for _, c := range r.tree.Children(id) {
		if r.tree.IsInline(c) && !(r.tree.Tag(c) == "br" && len(inline) == 0) {
			inline = append(inline, c)
			continue
		}
		flush()
		if topLevel {
			r.beginBlock(r.tree.Tag(c))
		}
		r.visit(c)
		if topLevel {
			r.endBlock()
		}
	}
	flush()
}

// visit dispatches one block-level node to its rule. Unknown elements are
// descended into.
func (r *run) visit(id content.NodeID) {
	t := r.tree
	switch tag := t.Tag(id); tag {
	case "h1", "h2", "h3":
		r.heading(id, int(tag[1]-'0'))
	case "p":
		r.paragraphRun(t.Children(id), alignOf(t, id))
	case "br":
		r.skip(r.metrics.LineBreak)
	case "img":
		r.image(id)
	case "table":
		r.table(id)
	case "ul", "ol":
		r.list(id, 0)
		r.skip(r.metrics.ParagraphSpacing)
	case "blockquote":
		r.blockquote(id)
	case "pre":
		r.code(id)
	default:
		r.blocks(id, false)
	}
}

func (r *run) heading(id content.NodeID, level int) {
	i := level - 1
	f := Font{Family: r.cfg.FontFamily, Style: "B", Size: r.metrics.HeadingSize[i]}
	text := inlineText(r.tree, r.tree.Children(id))
	if strings.TrimSpace(text) == "" {
		r.skip(r.metrics.HeadingAdvance[i])
		return
	}
	lines := Wrap(r.measure, text, r.width, f)
	r.textLines(lines, r.left, r.width, r.metrics.HeadingAdvance[i], f, alignOf(r.tree, id), r.cfg.Theme.Heading)
}

// paragraphRun draws a sequence of inline nodes as one word-wrapped block.
// Images inside the run interrupt the text and are drawn in place.
func (r *run) paragraphRun(nodes []content.NodeID, align string) {
	var pending []content.NodeID
	drew := false
	flushText := func() {
		text := inlineText(r.tree, pending)
		if strings.TrimSpace(text) == "" {
			pending = nil
			return
		}
		lines := Wrap(r.measure, text, r.width, r.bodyFont())
		r.linkedLines(lines, linkMask(r.tree, pending), align)
		pending = nil
		drew = true
	}

	var walk func(ids []content.NodeID)
	walk = func(ids []content.NodeID) {
		for _, c := range ids {
			switch {
			case r.tree.Tag(c) == "img":
				flushText()
				r.image(c)
				drew = true
			case !r.tree.IsText(c) && containsTag(r.tree, c, "img"):
				walk(r.tree.Children(c))
			default:
				pending = append(pending, c)
			}
		}
	}
	walk(nodes)
	flushText()

	if drew {
		r.skip(r.metrics.ParagraphSpacing)
	}
}

func (r *run) image(id content.NodeID) {
	src, _ := r.tree.Attr(id, "src")
	alt, _ := r.tree.Attr(id, "alt")
	alt = collapse(alt)

	if !content.EmbeddableImage(src) {
		r.log.Warn("image source not embeddable, drawing placeholder",
			"component", "paginate", "src", truncate(src, 64), "alt", alt)
		r.textLines([]string{placeholder(alt)}, r.left, r.width, r.cfg.LineHeight,
			Font{Family: r.cfg.FontFamily, Style: "I", Size: r.cfg.FontSize}, "L", r.cfg.Theme.Muted)
		r.skip(r.metrics.ParagraphSpacing)
		return
	}

	w := math.Min(r.metrics.ImageWidth, r.width)
	h := r.fit(r.metrics.ImageHeight)
	y := r.reserve(h)
	r.emit(Instruction{Kind: ImageOp, X: r.left, Y: y, W: w, H: h, Src: src, Alt: alt})

	if alt != "" {
		f := Font{Family: r.cfg.FontFamily, Style: "I", Size: r.metrics.CaptionSize}
		lines := Wrap(r.measure, alt, w, f)
		r.textLines(lines, r.left, w, r.metrics.CaptionHeight, f, "L", r.cfg.Theme.Muted)
	}
	r.skip(r.metrics.ParagraphSpacing)
}

// placeholder is the label drawn instead of an image that cannot be embedded.
func placeholder(alt string) string {
	if alt == "" {
		return "[Image]"
	}
	return "[Image: " + alt + "]"
}

func (r *run) table(id content.NodeID) {
	t := r.tree
	rows := t.TableRows(id)
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(t.RowCells(row)))
	}

	label := fmt.Sprintf("[Table: %d x %d]", len(rows), cols)
	r.textLines([]string{label}, r.left, r.width, r.cfg.LineHeight,
		Font{Family: r.cfg.FontFamily, Style: "I", Size: r.metrics.CaptionSize}, "L", r.cfg.Theme.Muted)
	if cols == 0 {
		r.skip(r.metrics.ParagraphSpacing)
		return
	}

	st := r.style
	// whole millimetres, whatever the unit
	mm := r.cfg.FromMM(1)
	layout := table.Layout{
		X:          r.left,
		Width:      math.Floor(r.width/mm+1e-9) * mm,
		Step:       mm,
		Columns:    cols,
		RowHeight:  r.fit(r.metrics.TableRowHeight),
		LineHeight: r.cfg.FromPt(st.Body.Font.Size) * 1.25,
		Padding:    table.UniformPadding(r.cfg.FromMM(1)),
	}
	widths := layout.Widths()

	for _, row := range rows {
		y := r.reserve(layout.RowHeight)
		cells := t.RowCells(row)
		for i := 0; i < cols; i++ {
			cs := st.Body
			text, align := "", "L"
			if i < len(cells) {
				if t.Tag(cells[i]) == "th" || t.Tag(t.Parent(row)) == "thead" {
					cs = st.Header
				}
				text = inlineText(t, t.Children(cells[i]))
				align = alignOf(t, cells[i])
			}
			x := layout.CellX(i)
			r.emit(Instruction{
				Kind: RectOp, X: x, Y: y, W: widths[i], H: layout.RowHeight,
				Fill: cs.FillColor, Border: true, LineWidth: st.Border.Width, Color: st.Border.Color,
			})

			if strings.TrimSpace(text) == "" {
				continue
			}
			f := Font{Family: cs.Font.Family, Style: cs.Font.Style, Size: cs.Font.Size}
			tw := layout.TextWidth(i)
			lines := layout.Clip(Wrap(r.measure, text, tw, f))
			for k, line := range lines {
				r.emit(Instruction{
					Kind: TextOp, X: x + layout.Padding.Left, Y: y + layout.Padding.Top + float64(k)*layout.LineHeight,
					W: tw, H: layout.LineHeight, Text: line, Font: f, Align: align, Color: cs.TextColor,
				})
			}
			if r.block != nil {
				r.block.Lines += len(lines)
			}
		}
	}
	r.skip(r.metrics.ParagraphSpacing)
}

func (r *run) list(id content.NodeID, depth int) {
	t := r.tree
	ordered := t.Tag(id) == "ol"
	indent := r.metrics.ListIndent * float64(depth+1)
	if indent > r.width/2 {
		indent = r.width / 2
	}
	x, width := r.left+indent, r.width-indent
	n := 0

	for _, item := range t.Children(id) {
		if t.IsText(item) && strings.TrimSpace(t.Text(item)) == "" {
			continue
		}
		n++
		marker := "•"
		if ordered {
			marker = fmt.Sprintf("%d.", n)
		}

		var text []content.NodeID
		var nested []content.NodeID
		for _, c := range itemParts(t, item) {
			if tag := t.Tag(c); tag == "ul" || tag == "ol" {
				nested = append(nested, c)
			} else {
				text = append(text, c)
			}
		}
		lines := Wrap(r.measure, marker+" "+inlineText(t, text), width, r.bodyFont())
		r.textLines(lines, x, width, r.cfg.LineHeight, r.bodyFont(), "L", r.cfg.Theme.Text)
		for _, sub := range nested {
			r.list(sub, depth+1)
		}
	}
}

// itemParts flattens the children of a list item so that paragraphs inside
// the item contribute their inline content and nested lists stay separate.
func itemParts(t *content.Tree, item content.NodeID) []content.NodeID {
	if t.IsText(item) || t.Tag(item) != "li" {
		return []content.NodeID{item}
	}
	var out []content.NodeID
	for _, c := range t.Children(item) {
		if t.IsTextBlock(c) {
			out = append(out, t.Children(c)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *run) blockquote(id content.NodeID) {
	f := Font{Family: r.cfg.FontFamily, Style: "I", Size: r.cfg.FontSize}
	indent := math.Min(r.metrics.QuoteIndent, r.width/2)
	text := blockText(r.tree, id)
	if strings.TrimSpace(text) != "" {
		lineH := r.fit(r.cfg.LineHeight)
		bar := r.left + indent/3
		for _, line := range Wrap(r.measure, text, r.width-indent, f) {
			y := r.reserve(lineH)
			// the rule runs down the left edge, one segment per line
			r.emit(Instruction{Kind: LineOp, X: bar, Y: y, H: lineH, LineWidth: r.cfg.FromPt(1), Color: r.cfg.Theme.TableBorder})
			if line == "" {
				continue
			}
			r.emit(Instruction{Kind: TextOp, X: r.left + indent, Y: y, W: r.width - indent, H: lineH,
				Text: line, Font: f, Align: "L", Color: r.cfg.Theme.Muted})
			if r.block != nil {
				r.block.Lines++
			}
		}
	}
	r.skip(r.metrics.ParagraphSpacing)
}

func (r *run) code(id content.NodeID) {
	f := Font{Family: "Courier", Size: r.metrics.CodeSize}
	text := strings.ReplaceAll(r.tree.TextContent(id), "\t", "    ")
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	r.textLines(lines, r.left, r.width, r.metrics.CodeLineHeight, f, "L", r.cfg.Theme.Text)
	r.skip(r.metrics.ParagraphSpacing)
}

// inlineText flattens inline nodes into display text: whitespace collapses,
// <br> becomes a forced line break, a trailing <br> is dropped.
func inlineText(t *content.Tree, ids []content.NodeID) string {
	var b strings.Builder
	var walk func(id content.NodeID)
	walk = func(id content.NodeID) {
		switch {
		case t.IsText(id):
			b.WriteString(strings.Map(func(r rune) rune {
				if r == '\n' || r == '\r' || r == '\t' {
					return ' '
				}
				return r
			}, t.Text(id)))
		case t.Tag(id) == "br":
			b.WriteByte('\n')
		case t.Tag(id) == "img":
			if alt, _ := t.Attr(id, "alt"); alt != "" {
				b.WriteString(placeholder(alt))
			}
		default:
			for _, c := range t.Children(id) {
				walk(c)
			}
		}
	}
	for _, id := range ids {
		walk(id)
	}

	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	for i, l := range lines {
		lines[i] = collapse(l)
	}
	return strings.Join(lines, "\n")
}

// linkMask flags, in order, each non-space rune of inlineText(t, ids) that
// belongs to a link.
func linkMask(t *content.Tree, ids []content.NodeID) []bool {
	var mask []bool
	add := func(s string, link bool) {
		for _, c := range s {
			if !unicode.IsSpace(c) {
				mask = append(mask, link)
			}
		}
	}
	var walk func(id content.NodeID, link bool)
	walk = func(id content.NodeID, link bool) {
		switch {
		case t.IsText(id):
			add(t.Text(id), link)
		case t.Tag(id) == "img":
			if alt, _ := t.Attr(id, "alt"); alt != "" {
				add(placeholder(alt), link)
			}
		default:
			link = link || t.Tag(id) == "a"
			for _, c := range t.Children(id) {
				walk(c, link)
			}
		}
	}
	for _, id := range ids {
		walk(id, false)
	}
	return mask
}

// blockText flattens a subtree, separating nested blocks with line breaks.
func blockText(t *content.Tree, id content.NodeID) string {
	var parts []string
	var inline []content.NodeID
	flush := func() {
		if s := inlineText(t, inline); strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
		inline = nil
	}
	for _, c := range t.Children(id) {
		if t.IsInline(c) {
			inline = append(inline, c)
			continue
		}
		flush()
		if s := blockText(t, c); s != "" {
			parts = append(parts, s)
		}
	}
	flush()
	return strings.Join(parts, "\n")
}

func containsTag(t *content.Tree, id content.NodeID, tag string) bool {
	found := false
	t.Walk(id, func(n content.NodeID) bool {
		if !found && t.Tag(n) == tag && !t.IsText(n) {
			found = true
		}
		return !found
	})
	return found
}

// alignOf reads text-align from the style attribute of id.
func alignOf(t *content.Tree, id content.NodeID) string {
	style, ok := t.Attr(id, "style")
	if !ok {
		return "L"
	}
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok || strings.TrimSpace(strings.ToLower(k)) != "text-align" {
			continue
		}
		switch strings.TrimSpace(strings.ToLower(v)) {
		case "center":
			return "C"
		case "right":
			return "R"
		}
	}
	return "L"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
