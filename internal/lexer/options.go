package lexer

import (
	"quill/internal/diag"
	"quill/internal/source"
)

type Options struct {
	// Reporter receives advisory diagnostics (stray bytes, integer overflow).
	// Может быть nil - тогда диагностики игнорируем; поток токенов от этого не меняется.
	Reporter diag.Reporter
}

func (lx *Lexer) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, sev, sp, msg, nil)
	}
}
