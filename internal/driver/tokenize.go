package driver

import (
	"context"
	"fmt"
	"strconv"

	"quill/internal/diag"
	"quill/internal/lexer"
	"quill/internal/source"
	"quill/internal/token"
	"quill/internal/trace"
)

// TokenizeResult holds the token stream of one file.
type TokenizeResult struct {
	FileSet  *source.FileSet
	File     *source.File
	Tokens   []token.Token // заканчивается EOF
	Interner *source.Interner
	Bag      *diag.Bag
	// FromCache is true when Tokens were restored from Options.Cache.
	FromCache bool
}

// TokenizeSource lexes an in-memory buffer registered under name as a virtual file.
func TokenizeSource(name string, src []byte, opts Options) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(name, src))
	res := lexFile(context.Background(), file, opts, 0)
	res.FileSet = fs
	return res, nil
}

// Tokenize loads path from disk (BOM stripped, CRLF normalized) and lexes it to EOF.
func Tokenize(ctx context.Context, path string, opts Options) (*TokenizeResult, error) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	loadSpan := trace.Begin(tracer, trace.ScopePass, "load", parent)
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		loadSpan.End("error")
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	file := fs.Get(fileID)
	loadSpan.WithExtra("bytes", strconv.Itoa(len(file.Content))).End("")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := lexFile(ctx, file, opts, parent)
	res.FileSet = fs
	return res, nil
}

// lexFile прогоняет лексер до EOF, при наличии кэша сначала ищет в нём.
// Диагностики лексера собираются без лимита: в кэш уходит полный список,
// а лимит opts.MaxDiagnostics применяется при заполнении Bag, так что
// попадание в кэш даёт тот же Bag (включая Dropped), что и свежий прогон.
// Ошибки кэша не фатальны: они становятся предупреждениями после диагностик лексера.
func lexFile(ctx context.Context, file *source.File, opts Options, parent uint64) *TokenizeResult {
	tracer := trace.FromContext(ctx)
	bag := diag.NewBag(opts.maxDiagnostics())
	res := &TokenizeResult{File: file, Bag: bag}

	var cacheErr error
	if opts.Cache != nil {
		entry, ok, err := opts.Cache.Get(file.Hash, file)
		switch {
		case err != nil:
			cacheErr = err
		case ok:
			trace.Point(tracer, trace.ScopeFile, "cache", "hit", parent)
			res.Tokens = entry.Tokens
			res.Interner = entry.Interner
			res.FromCache = true
			fillBag(bag, entry.Diagnostics)
			return res
		}
	}

	span := trace.Begin(tracer, trace.ScopePass, "lex", parent)
	pool := source.NewInterner()
	var lexDiags diag.ListReporter
	lx := lexer.New(file, pool, lexer.Options{Reporter: &lexDiags})

	tokens := make([]token.Token, 0, len(file.Content)/4+1)
	for tok := range lx.All() {
		tokens = append(tokens, tok)
	}
	span.WithExtra("tokens", strconv.Itoa(len(tokens))).
		WithExtra("names", strconv.Itoa(pool.Len())).
		WithExtra("diags", strconv.Itoa(len(lexDiags.Items))).
		End("")

	res.Tokens = tokens
	res.Interner = pool
	fillBag(bag, lexDiags.Items)

	if opts.Cache != nil {
		if err := opts.Cache.Put(file.Hash, tokens, pool, lexDiags.Items); err != nil {
			bag.Add(cacheDiagnostic(file, diag.ObsCacheWrite, "token cache not updated", err))
		}
	}
	if cacheErr != nil {
		bag.Add(cacheDiagnostic(file, diag.ObsCacheCorrupt, "token cache entry ignored", cacheErr))
	}
	return res
}

// fillBag добавляет диагностики по одной; лишние учитываются в Dropped.
func fillBag(bag *diag.Bag, items []diag.Diagnostic) {
	for _, d := range items {
		bag.Add(d)
	}
}

func cacheDiagnostic(file *source.File, code diag.Code, what string, err error) diag.Diagnostic {
	return diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     code,
		Message:  fmt.Sprintf("%s: %v", what, err),
		Primary:  source.Span{File: file.ID},
	}
}
