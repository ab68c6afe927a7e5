package lexer

import (
	"quill/internal/token"
)

// scanName читает [A-Za-z_][A-Za-z0-9_]* и интернирует лексему.
func (lx *Lexer) scanName() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}

	sp := lx.cursor.SpanFrom(start)
	id := lx.strings.InternBytes(lx.file.Content[sp.Start:sp.End])
	return token.NewName(sp, id)
}
