package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quill/internal/diagfmt"
)

// executeCommand прогоняет rootCmd с аргументами и возвращает stdout и stderr.
// Флаги rootCmd живут между вызовами, поэтому тесты задают их явно.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	runCleanups()
	return stdout.String(), stderr.String(), err
}

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

var tokenizeDefaults = []string{
	"--quiet=false", "--stats=false", "--spans=false", "--cache=false", "--ui=off", "--jobs=0",
}

func TestTokenizeFileJSON(t *testing.T) {
	path := writeSource(t, t.TempDir(), "a.ql", "num := 123\n")

	args := append([]string{"tokenize", "--format=json"}, tokenizeDefaults...)
	stdout, stderr, err := executeCommand(t, append(args, path)...)
	if err != nil {
		t.Fatalf("tokenize failed: %v\nstderr: %s", err, stderr)
	}

	var got []diagfmt.TokenOutput
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	wantKinds := []string{"NAME", "COLON_ASSIGN", "INT", "EOF"}
	if len(got) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d: %+v", len(got), len(wantKinds), got)
	}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Errorf("token %d kind = %s, want %s", i, got[i].Kind, k)
		}
	}
	if got[0].Name != "num" {
		t.Errorf("name payload = %q, want num", got[0].Name)
	}
	if got[2].Int == nil || *got[2].Int != 123 {
		t.Errorf("int payload = %v, want 123", got[2].Int)
	}
}

func TestTokenizeReportsStrayBytes(t *testing.T) {
	path := writeSource(t, t.TempDir(), "a.ql", "x := @\n")

	args := append([]string{"tokenize", "--format=pretty"}, tokenizeDefaults...)
	stdout, stderr, err := executeCommand(t, append(args, path)...)
	// stray byte - это info, а не ошибка
	if err != nil {
		t.Fatalf("tokenize failed: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stderr, "a.ql:1:6") {
		t.Errorf("stderr missing stray byte location:\n%s", stderr)
	}
	if !strings.Contains(stdout, "intern = x") {
		t.Errorf("stdout missing name token:\n%s", stdout)
	}
}

func TestTokenizeDirJSON(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "one.ql", "a := 1\n")
	writeSource(t, dir, "two.ql", "b += a\n")
	writeSource(t, dir, "notes.txt", "ignored\n")

	args := append([]string{"tokenize", "--format=json"}, tokenizeDefaults...)
	stdout, stderr, err := executeCommand(t, append(args, dir)...)
	if err != nil {
		t.Fatalf("tokenize failed: %v\nstderr: %s", err, stderr)
	}

	var files []diagfmt.TokenFile
	if err := json.Unmarshal([]byte(stdout), &files); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	for _, f := range files {
		if f.Error != "" {
			t.Errorf("%s: unexpected error %q", f.Path, f.Error)
		}
		if len(f.Tokens) != 4 {
			t.Errorf("%s: got %d tokens, want 4", f.Path, len(f.Tokens))
		}
	}
}

func TestTokenizeRejectsUnknownFormat(t *testing.T) {
	path := writeSource(t, t.TempDir(), "a.ql", "a\n")
	args := append([]string{"tokenize", "--format=yaml"}, tokenizeDefaults...)
	_, _, err := executeCommand(t, append(args, path)...)
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestTokenizeMissingPath(t *testing.T) {
	args := append([]string{"tokenize", "--format=json"}, tokenizeDefaults...)
	_, _, err := executeCommand(t, append(args, filepath.Join(t.TempDir(), "nope.ql"))...)
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := executeCommand(t, "version", "--format=json", "--full")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if payload.Tool != "quill" {
		t.Errorf("tool = %q, want quill", payload.Tool)
	}
	if payload.GitCommit == "" || payload.BuildDate == "" {
		t.Errorf("--full must fill commit and date, got %+v", payload)
	}
}

func TestVersionPrettyHint(t *testing.T) {
	var buf bytes.Buffer
	renderVersionPretty(&buf, versionInfo{Version: "1.2.3"}, versionOptions{format: "pretty"})
	out := buf.String()
	if !strings.HasPrefix(out, "quill 1.2.3: ") {
		t.Errorf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "--full") {
		t.Errorf("missing hint line: %q", out)
	}
}
