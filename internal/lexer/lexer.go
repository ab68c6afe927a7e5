// Package lexer turns an in-memory source buffer into tokens on demand.
//
// The lexer never copies source text: token spans index the caller's buffer,
// and identifier lexemes reach the Interner as byte slices. The first NUL byte
// or the end of the buffer, whichever comes first, ends the input.
package lexer

import (
	"iter"

	"quill/internal/source"
	"quill/internal/token"
)

// Lexer holds a cursor over one file and the current token.
type Lexer struct {
	file    *source.File
	cursor  Cursor
	strings *source.Interner
	opts    Options
	tok     token.Token // текущий токен
}

// New creates a lexer positioned at the start of file and scans the first
// token, so Token is valid immediately. A nil interner gets a fresh one.
func New(file *source.File, interner *source.Interner, opts Options) *Lexer {
	if interner == nil {
		interner = source.NewInterner()
	}
	lx := &Lexer{
		file:    file,
		cursor:  NewCursor(file),
		strings: interner,
		opts:    opts,
	}
	lx.Advance()
	return lx
}

// Token returns the current token.
func (lx *Lexer) Token() token.Token {
	return lx.tok
}

// Advance discards the current token, scans the next one and returns it.
// Once EOF is reached every further call returns EOF again.
func (lx *Lexer) Advance() token.Token {
	lx.tok = lx.scan()
	return lx.tok
}

// Next returns the current token and advances past it.
func (lx *Lexer) Next() token.Token {
	tok := lx.tok
	lx.Advance()
	return tok
}

// All yields the remaining tokens, ending with (and including) EOF.
func (lx *Lexer) All() iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		for {
			tok := lx.Next()
			if !yield(tok) || tok.IsEOF() {
				return
			}
		}
	}
}

// Interner returns the pool identifier handles refer to.
func (lx *Lexer) Interner() *source.Interner {
	return lx.strings
}

// File returns the file being scanned.
func (lx *Lexer) File() *source.File {
	return lx.file
}

func (lx *Lexer) scan() token.Token {
	lx.skipWhitespace()

	ch := lx.cursor.Peek()
	switch {
	case ch == 0:
		// конец ввода: курсор не двигаем, повторные вызовы снова дают EOF
		return token.New(token.EOF, lx.cursor.SpanFrom(lx.cursor.Mark()))
	case isDec(ch):
		return lx.scanNumber()
	case isIdentStartByte(ch):
		return lx.scanName()
	default:
		return lx.scanOperatorOrPunct()
	}
}
