// Command richdoc-render renders a rich-text document to PDF.
//
//	richdoc-render -in report.html -title "Quarterly Report" -status draft -watermark -out build/
//	cat notes.html | richdoc-render -in - -stdout > notes.pdf
//
// The output file is named after the title with non-alphanumeric characters
// removed, e.g. QuarterlyReport.pdf.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/pageops"
	"github.com/lvillar/richdoc/render"
)

type listFlag []string

func (l *listFlag) String() string     { return strings.Join(*l, ",") }
func (l *listFlag) Set(v string) error { *l = append(*l, v); return nil }

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "richdoc-render: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout *os.File, stderr io.Writer) error {
	fs := flag.NewFlagSet("richdoc-render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		in         = fs.String("in", "-", "input file, - for stdin")
		out        = fs.String("out", ".", "output directory")
		toStdout   = fs.Bool("stdout", false, "write the PDF to stdout")
		pageSize   = fs.String("page-size", richdoc.PageSizeA4, "page size: A3, A4, A5, Letter, Legal")
		landscape  = fs.Bool("landscape", false, "landscape orientation")
		stamp      = fs.String("stamp", "", "barcode stamp on every page: qr or pdf417")
		watermark  = fs.Bool("watermark", false, "watermark drafts and documents in review")
		letterhead = fs.String("letterhead", "", "PDF whose first page is drawn under every page")
		numbers    = fs.String("page-format", "", "page number format, %d is the page and {nb} the page count")
		verbose    = fs.Bool("v", false, "log debug messages")
		appendix   listFlag
		meta       richdoc.Metadata
		editedAt   string
	)
	fs.Var(&appendix, "appendix", "PDF to append after the content (repeatable)")
	fs.StringVar(&meta.Title, "title", "", "document title")
	fs.StringVar(&meta.Author, "author", "", "author")
	fs.StringVar(&meta.Status, "status", "", "status")
	fs.StringVar(&meta.Priority, "priority", "", "priority")
	fs.StringVar(&meta.Category, "category", "", "category")
	fs.StringVar(&meta.Version, "version", "", "version")
	fs.StringVar(&meta.LastEditedBy, "edited-by", "", "name of the last editor")
	fs.StringVar(&editedAt, "edited-at", "", "time of the last edit (RFC 3339)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if editedAt != "" {
		t, err := time.Parse(time.RFC3339, editedAt)
		if err != nil {
			return fmt.Errorf("-edited-at: %w", err)
		}
		meta.LastEditedAt = t
	}
	if *toStdout && term.IsTerminal(int(stdout.Fd())) {
		return fmt.Errorf("refusing to write a PDF to a terminal, redirect stdout or use -out")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	src, err := readInput(*in, stdin)
	if err != nil {
		return err
	}

	cfgOpts := []richdoc.Option{richdoc.WithPageSize(*pageSize)}
	if *landscape {
		cfgOpts = append(cfgOpts, richdoc.WithOrientation(richdoc.OrientationLandscape))
	}
	cfg, err := richdoc.NewConfig(cfgOpts...)
	if err != nil {
		return err
	}

	opts := []render.Option{render.WithConfig(cfg), render.WithLogger(log)}
	if *stamp != "" {
		kind, err := pageops.ParseStampKind(*stamp)
		if err != nil {
			return err
		}
		opts = append(opts, render.WithStamp(kind))
	}
	if *watermark {
		opts = append(opts, render.WithStatusWatermark())
	}
	if *letterhead != "" {
		opts = append(opts, render.WithLetterhead(*letterhead))
	}
	if *numbers != "" {
		opts = append(opts, render.WithPageNumbers(pageops.PageNumberStyle{Format: *numbers}))
	}
	if len(appendix) > 0 {
		opts = append(opts, render.WithAppendix(appendix...))
	}
	r := render.New(opts...)

	if *toStdout {
		_, err := r.Render(stdout, src, meta)
		return err
	}
	path, res, err := r.RenderFile(*out, src, meta)
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "%s: %d pages\n", path, res.Pages)
	if res.Placeholders > 0 {
		fmt.Fprintf(stderr, "%d images could not be embedded\n", res.Placeholders)
	}
	return nil
}

func readInput(name string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}
