package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"quill/internal/lexer"
	"quill/internal/source"
	"quill/internal/token"
)

func lexAll(t *testing.T, input string) ([]token.Token, *source.File, *source.Interner) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.ql", []byte(input)))
	lx := lexer.New(file, nil, lexer.Options{})
	var toks []token.Token
	for tok := range lx.All() {
		toks = append(toks, tok)
	}
	return toks, file, lx.Interner()
}

func TestFormatTokensPretty(t *testing.T) {
	toks, file, pool := lexAll(t, "num := 123 @")

	var buf bytes.Buffer
	if err := FormatTokensPretty(&buf, toks, file, pool, TokenOpts{ShowSpans: true}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), buf.String())
	}

	checks := []struct {
		line  int
		parts []string
	}{
		{0, []string{"1: NAME", "intern = num", `"num"`, "[0,3)"}},
		{1, []string{"2: COLON_ASSIGN", `":="`, "[4,6)"}},
		{2, []string{"3: INT", "123", `"123"`, "[7,10)"}},
		{3, []string{"4: BYTE(0x40)", `"@"`}},
		{4, []string{"5: EOF", "[12,12)"}},
	}
	for _, c := range checks {
		for _, p := range c.parts {
			if !strings.Contains(lines[c.line], p) {
				t.Errorf("line %d %q missing %q", c.line+1, lines[c.line], p)
			}
		}
	}
	for _, l := range lines {
		if strings.HasSuffix(l, " ") {
			t.Errorf("trailing space in %q", l)
		}
	}
}

func TestFormatTokensPrettyStopsAtEOF(t *testing.T) {
	toks, file, pool := lexAll(t, "x")
	toks = append(toks, toks...) // мусор после EOF не печатается

	var buf bytes.Buffer
	if err := FormatTokensPretty(&buf, toks, file, pool, TokenOpts{}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", got, buf.String())
	}
}

func TestFormatTokensJSON(t *testing.T) {
	toks, file, pool := lexAll(t, "y += 1")

	var buf bytes.Buffer
	if err := FormatTokensJSON(&buf, toks, file, pool); err != nil {
		t.Fatal(err)
	}
	var out []TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(out) != 4 {
		t.Fatalf("records = %d", len(out))
	}
	if out[0].Kind != "NAME" || out[0].Name != "y" || out[0].Int != nil {
		t.Errorf("name record = %+v", out[0])
	}
	if out[1].Kind != "ADD_ASSIGN" || out[1].Text != "+=" || out[1].Start != 2 || out[1].End != 4 {
		t.Errorf("operator record = %+v", out[1])
	}
	if out[2].Int == nil || *out[2].Int != 1 {
		t.Errorf("int record = %+v", out[2])
	}
	if out[3].Kind != "EOF" || out[3].Text != "" {
		t.Errorf("eof record = %+v", out[3])
	}
}

func TestFormatTokensMsgpack(t *testing.T) {
	toks, file, pool := lexAll(t, "a, 7")

	var buf bytes.Buffer
	if err := FormatTokensMsgpack(&buf, toks, file, pool); err != nil {
		t.Fatal(err)
	}
	var out []TokenOutput
	if err := msgpack.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	want := BuildTokenOutputs(toks, file, pool)
	if len(out) != len(want) {
		t.Fatalf("records = %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i].Kind != want[i].Kind || out[i].Text != want[i].Text || out[i].Name != want[i].Name {
			t.Errorf("record %d = %+v, want %+v", i, out[i], want[i])
		}
	}
}

func TestFormatTokenFilesJSON(t *testing.T) {
	toks, file, pool := lexAll(t, "a")
	files := []TokenFile{
		{Path: "a.ql", Tokens: BuildTokenOutputs(toks, file, pool)},
		{Path: "broken.ql", Error: "permission denied", Tokens: []TokenOutput{}},
	}

	var buf bytes.Buffer
	if err := FormatTokenFilesJSON(&buf, files); err != nil {
		t.Fatal(err)
	}
	var out []TokenFile
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || len(out[0].Tokens) != 2 || out[1].Error != "permission denied" {
		t.Fatalf("decoded = %+v", out)
	}

	buf.Reset()
	if err := FormatTokenFilesMsgpack(&buf, files); err != nil {
		t.Fatal(err)
	}
	out = nil
	if err := msgpack.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].Tokens[0].Name != "a" {
		t.Fatalf("decoded msgpack = %+v", out)
	}
}
