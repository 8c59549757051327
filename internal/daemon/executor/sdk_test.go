package executor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseFileBlocks(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"I built a small site.",
		"",
		"```path=index.html",
		"<html>",
		"<body>hi</body>",
		"</html>",
		"```",
		"",
		"And a stylesheet:",
		"```path=css/style.css",
		"body { margin: 0 }",
		"```",
		"",
		"```go",
		"// a plain code block, not a file",
		"```",
	}, "\n")

	files := parseFileBlocks(text)
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
	if files[0].Path != "index.html" || !strings.Contains(files[0].Content, "<body>hi</body>") {
		t.Fatalf("unexpected first file %+v", files[0])
	}
	if files[1].Path != "css/style.css" || files[1].Content != "body { margin: 0 }\n" {
		t.Fatalf("unexpected second file %+v", files[1])
	}
}

func TestParseFileBlocksUnclosedFence(t *testing.T) {
	t.Parallel()

	text := "```path=a.txt\ncontent without closing fence"
	if files := parseFileBlocks(text); len(files) != 0 {
		t.Fatalf("unclosed fence yielded files: %v", files)
	}
}

func TestMaterializeFilesWritesAndReports(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger := zerolog.Nop()
	e := &SDKExecutor{log: &logger}

	text := "```path=src/main.go\npackage main\n```"
	rec := &updateRecorder{}
	e.materializeFiles(text, dir, rec.fn())

	content, err := os.ReadFile(filepath.Join(dir, "src", "main.go"))
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if string(content) != "package main\n" {
		t.Fatalf("unexpected content %q", content)
	}
	if terminal := rec.byKind(KindTerminal); len(terminal) != 1 || terminal[0] != "Write: src/main.go" {
		t.Fatalf("unexpected terminal updates %v", terminal)
	}
	if writes := rec.byKind(KindFileWrite); len(writes) != 1 || !strings.Contains(writes[0], `"path":"src/main.go"`) {
		t.Fatalf("unexpected file_write updates %v", writes)
	}
}

func TestMaterializeFilesRejectsEscape(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger := zerolog.Nop()
	e := &SDKExecutor{log: &logger}

	rec := &updateRecorder{}
	e.materializeFiles("```path=../outside.txt\nnope\n```", dir, rec.fn())

	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "outside.txt")); err == nil {
		t.Fatal("path traversal escaped the work dir")
	}
	if writes := rec.byKind(KindFileWrite); len(writes) != 0 {
		t.Fatalf("escaped write reported: %v", writes)
	}
}
