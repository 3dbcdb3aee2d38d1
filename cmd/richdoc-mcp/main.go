// Command richdoc-mcp is an MCP (Model Context Protocol) server that lets AI
// assistants edit rich-text documents and export them to PDF.
//
// # Installation
//
//	go install github.com/lvillar/richdoc/cmd/richdoc-mcp@latest
//
// # Configuration for Claude Desktop
//
// Add to ~/.config/claude/claude_desktop_config.json:
//
//	{
//	  "mcpServers": {
//	    "richdoc": {
//	      "command": "richdoc-mcp",
//	      "args": ["-stamp", "qr"]
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - open_document: Open a document and get a session id
//   - select_text: Select a text or the whole document
//   - type_text: Type at the cursor
//   - apply_command: Bold, italic, underline, alignment, lists, blockquote, code block, heading
//   - insert_table, insert_link, insert_image, insert_heading: Insert content at the cursor
//   - get_content: Read the canonical content
//   - close_document: Close a session
//   - render_pdf: Export a session or a content string to PDF
//
// # Available Resources
//
//   - richdoc://sessions : Open sessions
//   - richdoc://sessions/<id> : Content of one session
//
// Logs are written to stderr; stdout carries the protocol.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lvillar/richdoc"
	"github.com/lvillar/richdoc/mcp"
	"github.com/lvillar/richdoc/pageops"
	"github.com/lvillar/richdoc/render"
)

func main() {
	pageSize := flag.String("page-size", richdoc.PageSizeA4, "page size: A3, A4, A5, Letter, Legal")
	stamp := flag.String("stamp", "", "barcode stamp on every page: qr or pdf417")
	watermark := flag.Bool("watermark", false, "watermark drafts and documents in review")
	letterhead := flag.String("letterhead", "", "PDF whose first page is drawn under every page")
	debug := flag.Bool("debug", false, "log debug messages")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := richdoc.NewConfig(richdoc.WithPageSize(*pageSize))
	if err != nil {
		fmt.Fprintf(os.Stderr, "richdoc-mcp: %v\n", err)
		os.Exit(2)
	}
	opts := []render.Option{render.WithConfig(cfg), render.WithLogger(log)}
	if *stamp != "" {
		kind, err := pageops.ParseStampKind(*stamp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "richdoc-mcp: %v\n", err)
			os.Exit(2)
		}
		opts = append(opts, render.WithStamp(kind))
	}
	if *watermark {
		opts = append(opts, render.WithStatusWatermark())
	}
	if *letterhead != "" {
		opts = append(opts, render.WithLetterhead(*letterhead))
	}

	server := mcp.NewServer(mcp.WithLogger(log))
	ws := mcp.NewWorkspace(render.New(opts...), log)

	mcp.RegisterDefaultTools(server, ws)
	mcp.RegisterDefaultResources(server, ws)

	log.Info("serving", "component", "mcp")
	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "richdoc-mcp: %v\n", err)
		os.Exit(1)
	}
}
