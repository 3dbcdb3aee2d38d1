package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunWritesTitledFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.html")
	if err := os.WriteFile(in, []byte("<h2>Plan</h2><p>Ship it.</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	var stderr bytes.Buffer
	args := []string{"-in", in, "-out", dir, "-title", "Release Plan", "-status", "draft", "-watermark", "-stamp", "pdf417"}
	if err := run(args, strings.NewReader(""), os.Stdout, &stderr); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "ReleasePlan.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	if !strings.Contains(stderr.String(), "1 pages") {
		t.Fatalf("unexpected summary %q", stderr.String())
	}
}

func TestRunStdout(t *testing.T) {
	out, err := os.Create(filepath.Join(t.TempDir(), "out.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	if err := run([]string{"-stdout"}, strings.NewReader("<p>piped</p>"), out, &bytes.Buffer{}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	data, err := os.ReadFile(out.Name())
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("stdout did not receive a PDF: %v", err)
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	for _, args := range [][]string{
		{"-stamp", "aztec", "-in", "-"},
		{"-edited-at", "yesterday"},
		{"-page-size", "B9"},
	} {
		if err := run(args, strings.NewReader("<p>x</p>"), os.Stdout, &bytes.Buffer{}); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}
