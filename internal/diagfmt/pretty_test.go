package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"quill/internal/diag"
	"quill/internal/source"
)

func testBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("project/src/test.ql", []byte("a := 1\nb := @\n\tc := 99999999999999999999\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.LexStrayByte,
		Message:  "byte 0x40 does not start any token",
		Primary:  source.Span{File: id, Start: 12, End: 13},
	})
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.LexIntOverflow,
		Message:  "integer literal does not fit in 64 bits; value wraps around",
		Primary:  source.Span{File: id, Start: 20, End: 40},
		Notes:    []diag.Note{{Span: source.Span{File: id, Start: 15, End: 16}, Msg: "assigned here"}},
	})
	return bag, fs
}

func TestPrettyHeaderLines(t *testing.T) {
	bag, fs := testBag(t)

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	want := "test.ql:2:6: INFO LEX1001: byte 0x40 does not start any token\n" +
		"test.ql:3:7: WARNING LEX1002: integer literal does not fit in 64 bits; value wraps around\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyContextAndNotes(t *testing.T) {
	bag, fs := testBag(t)

	var buf bytes.Buffer
	err := Pretty(&buf, bag, fs, PrettyOpts{Context: true, ShowNotes: true})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	// Подчёркивание под '@'
	if !strings.Contains(out, "  | b := @\n  |      ^\n") {
		t.Errorf("missing caret under stray byte:\n%s", out)
	}
	// табуляция раскрывается в 4 пробела, переполненный литерал подчёркнут целиком
	if !strings.Contains(out, "  |     c := 99999999999999999999\n  |          ^~~~~~~~~~~~~~~~~~~~\n") {
		t.Errorf("missing underline for literal:\n%s", out)
	}
	if !strings.Contains(out, "  note: project/src/test.ql:3:2: assigned here") {
		t.Errorf("missing note:\n%s", out)
	}
}

func TestPrettyMaxAndDropped(t *testing.T) {
	bag, fs := testBag(t)

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{Max: 1}); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "LEX") != 1 {
		t.Fatalf("Max not honored:\n%s", buf.String())
	}

	small := diag.NewBag(1)
	for _, d := range bag.Items() {
		small.Add(d)
	}
	buf.Reset()
	if err := Pretty(&buf, small, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "... 1 more diagnostics not shown") {
		t.Fatalf("dropped count missing:\n%s", buf.String())
	}
}

func TestPathModes(t *testing.T) {
	tests := []struct {
		mode PathMode
		base string
		want string
	}{
		{PathModeAuto, "", "project/src/test.ql"},
		{PathModeBasename, "", "test.ql"},
		{PathModeRelative, "", "project/src/test.ql"},
	}
	for _, tt := range tests {
		if got := formatPath("project/src/test.ql", tt.mode, tt.base); got != tt.want {
			t.Errorf("mode %d: got %q, want %q", tt.mode, got, tt.want)
		}
	}
	if got := formatPath("/home/user/project/src/test.ql", PathModeRelative, "/home/user/project"); got != "src/test.ql" {
		t.Errorf("relative: got %q", got)
	}
}

func TestJSONDiagnostics(t *testing.T) {
	bag, fs := testBag(t)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[1]
	if d.Severity != "WARNING" || d.Code != "LEX1002" {
		t.Errorf("diagnostic = %+v", d)
	}
	if d.Location.File != "test.ql" || d.Location.Line != 3 || d.Location.Col != 7 || d.Location.StartByte != 20 {
		t.Errorf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "assigned here" {
		t.Errorf("notes = %+v", d.Notes)
	}
}

func TestJSONMaxReportsDropped(t *testing.T) {
	bag, fs := testBag(t)
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 || out.Dropped != 1 {
		t.Fatalf("count=%d dropped=%d", out.Count, out.Dropped)
	}
}
