package lexer

import (
	"fmt"

	"quill/internal/diag"
	"quill/internal/token"
)

// scanOperatorOrPunct разбирает пунктуацию и операторы по правилу
// максимального захвата: "<<=" никогда не распадается на "<<" и "=".
// Всё нераспознанное становится однобайтовым токеном с kind == значению байта.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		return token.New(k, lx.cursor.SpanFrom(start))
	}

	ch := lx.cursor.Bump()
	switch ch {
	// односимвольные
	case '(':
		return emit(token.LParen)
	case ')':
		return emit(token.RParen)
	case '~':
		return emit(token.BitNot)
	case ',':
		return emit(token.Comma)
	case '[':
		return emit(token.LBracket)
	case ']':
		return emit(token.RBracket)
	case '{':
		return emit(token.LBrace)
	case '}':
		return emit(token.RBrace)

	// X или X=
	case ':':
		return emit(lx.orAssign(token.Colon, token.ColonAssign))
	case '+':
		return emit(lx.orAssign(token.Add, token.AddAssign))
	case '-':
		return emit(lx.orAssign(token.Sub, token.SubAssign))
	case '*':
		return emit(lx.orAssign(token.Mul, token.MulAssign))
	case '/':
		return emit(lx.orAssign(token.Div, token.DivAssign))
	case '=':
		return emit(lx.orAssign(token.Assign, token.Eq))
	case '!':
		return emit(lx.orAssign(token.Not, token.NotEq))
	case '^':
		return emit(lx.orAssign(token.Xor, token.XorAssign))
	case '%':
		return emit(lx.orAssign(token.Mod, token.ModAssign))

	// X, XX, X=, XX=
	case '<':
		return emit(lx.shift('<', token.Lt, token.LtEq, token.Shl, token.ShlAssign))
	case '>':
		return emit(lx.shift('>', token.Gt, token.GtEq, token.Shr, token.ShrAssign))

	default:
		sp := lx.cursor.SpanFrom(start)
		lx.report(diag.LexStrayByte, diag.SevInfo, sp, fmt.Sprintf("byte 0x%02X does not start any token", ch))
		return token.New(token.Fallback(ch), sp)
	}
}

// orAssign съедает следующий '=' если он есть.
func (lx *Lexer) orAssign(bare, withAssign token.Kind) token.Kind {
	if lx.cursor.Eat('=') {
		return withAssign
	}
	return bare
}

// shift сначала проверяет удвоение ("<<"), затем '='.
func (lx *Lexer) shift(c byte, bare, bareAssign, doubled, doubledAssign token.Kind) token.Kind {
	if lx.cursor.Eat(c) {
		return lx.orAssign(doubled, doubledAssign)
	}
	return lx.orAssign(bare, bareAssign)
}
