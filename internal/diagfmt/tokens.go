package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"

	"quill/internal/source"
	"quill/internal/token"
)

// TokenOutput is one token as written by the JSON and msgpack formats.
type TokenOutput struct {
	Kind  string  `json:"kind" msgpack:"kind"`
	Text  string  `json:"text" msgpack:"text"`
	Start uint32  `json:"start" msgpack:"start"`
	End   uint32  `json:"end" msgpack:"end"`
	Int   *uint64 `json:"int,omitempty" msgpack:"int,omitempty"`
	Name  string  `json:"name,omitempty" msgpack:"name,omitempty"`
}

// BuildTokenOutputs converts a token stream into serializable records.
// Output stops after the first EOF.
func BuildTokenOutputs(tokens []token.Token, file *source.File, interner *source.Interner) []TokenOutput {
	out := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		rec := TokenOutput{
			Kind:  tok.Kind.String(),
			Start: tok.Span.Start,
			End:   tok.Span.End,
		}
		if file != nil {
			rec.Text = string(tok.Text(file.Content))
		}
		switch v := tok.Payload().(type) {
		case token.IntValue:
			n := uint64(v)
			rec.Int = &n
		case token.NameValue:
			if interner != nil {
				rec.Name, _ = interner.Lookup(source.StringID(v))
			}
		}
		out = append(out, rec)
		if tok.IsEOF() {
			break
		}
	}
	return out
}

var (
	kindColor    = color.New(color.FgCyan, color.Bold)
	intColor     = color.New(color.FgYellow)
	nameColor    = color.New(color.FgGreen)
	strayColor   = color.New(color.FgRed, color.Bold)
	spanColor    = color.New(color.Faint)
	kindColWidth = 14
)

// FormatTokensPretty выводит токены по одному на строку:
//
//	  1: NAME          intern = num   "num"  [0,3)
//	  2: COLON_ASSIGN                 ":="   [4,6)
//	  3: INT           123            "123"  [8,11)
func FormatTokensPretty(w io.Writer, tokens []token.Token, file *source.File, interner *source.Interner, opts TokenOpts) error {
	paint := func(c *color.Color, s string) string {
		if !opts.Color {
			return s
		}
		return c.Sprint(s)
	}

	for i, tok := range tokens {
		kindText := tok.Kind.String()
		kc := kindColor
		if tok.Kind.IsFallback() {
			kc = strayColor
		}

		payload := ""
		pc := intColor
		switch v := tok.Payload().(type) {
		case token.IntValue:
			payload = strconv.FormatUint(uint64(v), 10)
		case token.NameValue:
			name := fmt.Sprintf("#%d", uint32(v))
			if interner != nil {
				if s, ok := interner.Lookup(source.StringID(v)); ok {
					name = s
				}
			}
			payload = "intern = " + name
			pc = nameColor
		}

		line := fmt.Sprintf("%3d: %s", i+1, paint(kc, runewidth.FillRight(kindText, kindColWidth)))
		if payload != "" || !tok.IsEOF() {
			line += " " + paint(pc, runewidth.FillRight(payload, 16))
		}
		if file != nil && !tok.IsEOF() {
			line += " " + runewidth.FillRight(strconv.Quote(string(tok.Text(file.Content))), 8)
		}
		if opts.ShowSpans {
			line += " " + paint(spanColor, fmt.Sprintf("[%d,%d)", tok.Span.Start, tok.Span.End))
		}

		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
		if tok.IsEOF() {
			break
		}
	}
	return nil
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, tokens []token.Token, file *source.File, interner *source.Interner) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildTokenOutputs(tokens, file, interner))
}

// FormatTokensMsgpack writes the same records as FormatTokensJSON, msgpack-encoded.
func FormatTokensMsgpack(w io.Writer, tokens []token.Token, file *source.File, interner *source.Interner) error {
	return msgpack.NewEncoder(w).Encode(BuildTokenOutputs(tokens, file, interner))
}

// TokenFile groups the token records of one file for directory output.
type TokenFile struct {
	Path   string        `json:"path" msgpack:"path"`
	Error  string        `json:"error,omitempty" msgpack:"error,omitempty"`
	Tokens []TokenOutput `json:"tokens" msgpack:"tokens"`
}

// FormatTokenFilesJSON writes several files' token streams as one JSON array.
func FormatTokenFilesJSON(w io.Writer, files []TokenFile) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(files)
}

// FormatTokenFilesMsgpack is the msgpack counterpart of FormatTokenFilesJSON.
func FormatTokenFilesMsgpack(w io.Writer, files []TokenFile) error {
	return msgpack.NewEncoder(w).Encode(files)
}
