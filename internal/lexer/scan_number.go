package lexer

import (
	"math/bits"

	"quill/internal/diag"
	"quill/internal/token"
)

// scanNumber читает максимальную серию десятичных цифр.
// Значение накапливается как value*10 + digit по модулю 2^64: переполнение
// не ошибка, лексер лишь сообщает о нём предупреждением.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	var value uint64
	wrapped := false
	for isDec(lx.cursor.Peek()) {
		digit := uint64(lx.cursor.Bump() - '0')
		hi, lo := bits.Mul64(value, 10)
		sum, carry := bits.Add64(lo, digit, 0)
		if hi != 0 || carry != 0 {
			wrapped = true
		}
		value = sum
	}

	sp := lx.cursor.SpanFrom(start)
	if wrapped {
		lx.report(diag.LexIntOverflow, diag.SevWarning, sp, "integer literal does not fit in 64 bits; value wraps around")
	}
	return token.NewInt(sp, value)
}
