package lexer

// skipWhitespace пропускает пробелы, табы, переводы строк, \r и \v.
// Пробелы не порождают токенов.
func (lx *Lexer) skipWhitespace() {
	for isSpace(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v':
		return true
	default:
		return false
	}
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }
