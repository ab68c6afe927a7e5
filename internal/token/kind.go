package token

import "fmt"

// Kind represents the category of a source token.
type Kind uint16

const (
	// EOF marks the end of the source input (a NUL byte or the end of the buffer).
	EOF Kind = 0

	// firstNamed is the first kind that is not a raw byte value.
	firstNamed Kind = 256
)

const (
	// Int represents an unsigned decimal integer literal.
	Int Kind = firstNamed + iota
	// Name represents an identifier.
	Name

	Colon       // :
	ColonAssign // :=
	Add         // +
	Sub         // -
	Mul         // *
	Div         // /
	AddAssign   // +=
	SubAssign   // -=
	MulAssign   // *=
	DivAssign   // /=
	Eq          // ==
	Assign      // =
	Not         // !
	NotEq       // !=
	Xor         // ^
	XorAssign   // ^=
	Mod         // %
	ModAssign   // %=
	LParen      // (
	RParen      // )
	Lt          // <
	LtEq        // <=
	Shl         // <<
	ShlAssign   // <<=
	Gt          // >
	GtEq        // >=
	Shr         // >>
	ShrAssign   // >>=
	BitNot      // ~
	Comma       // ,
	LBracket    // [
	RBracket    // ]
	LBrace      // {
	RBrace      // }

	lastNamed = RBrace
)

type kindInfo struct {
	name   string
	lexeme string
}

var kinds = [...]kindInfo{
	Int - firstNamed:         {"INT", ""},
	Name - firstNamed:        {"NAME", ""},
	Colon - firstNamed:       {"COLON", ":"},
	ColonAssign - firstNamed: {"COLON_ASSIGN", ":="},
	Add - firstNamed:         {"ADD", "+"},
	Sub - firstNamed:         {"SUB", "-"},
	Mul - firstNamed:         {"MUL", "*"},
	Div - firstNamed:         {"DIV", "/"},
	AddAssign - firstNamed:   {"ADD_ASSIGN", "+="},
	SubAssign - firstNamed:   {"SUB_ASSIGN", "-="},
	MulAssign - firstNamed:   {"MUL_ASSIGN", "*="},
	DivAssign - firstNamed:   {"DIV_ASSIGN", "/="},
	Eq - firstNamed:          {"EQ", "=="},
	Assign - firstNamed:      {"ASSIGN", "="},
	Not - firstNamed:         {"NOT", "!"},
	NotEq - firstNamed:       {"NEQ", "!="},
	Xor - firstNamed:         {"XOR", "^"},
	XorAssign - firstNamed:   {"XOR_ASSIGN", "^="},
	Mod - firstNamed:         {"MOD", "%"},
	ModAssign - firstNamed:   {"MOD_ASSIGN", "%="},
	LParen - firstNamed:      {"LPAREN", "("},
	RParen - firstNamed:      {"RPAREN", ")"},
	Lt - firstNamed:          {"LT", "<"},
	LtEq - firstNamed:        {"LTE", "<="},
	Shl - firstNamed:         {"LSHIFT", "<<"},
	ShlAssign - firstNamed:   {"LSHIFT_ASSIGN", "<<="},
	Gt - firstNamed:          {"GT", ">"},
	GtEq - firstNamed:        {"GTE", ">="},
	Shr - firstNamed:         {"RSHIFT", ">>"},
	ShrAssign - firstNamed:   {"RSHIFT_ASSIGN", ">>="},
	BitNot - firstNamed:      {"BITNOT", "~"},
	Comma - firstNamed:       {"COMMA", ","},
	LBracket - firstNamed:    {"LBRACKET", "["},
	RBracket - firstNamed:    {"RBRACKET", "]"},
	LBrace - firstNamed:      {"LBRACE", "{"},
	RBrace - firstNamed:      {"RBRACE", "}"},
}

// Fallback returns the kind used for a byte the lexer does not recognize.
func Fallback(b byte) Kind {
	return Kind(b)
}

// IsFallback reports whether k stands for a single unrecognized byte.
func (k Kind) IsFallback() bool {
	return k > EOF && k < firstNamed
}

// Valid reports whether k is EOF, a fallback kind or one of the named kinds.
func (k Kind) Valid() bool {
	return k <= lastNamed
}

// String returns the diagnostic name of the kind, e.g. "COLON_ASSIGN".
func (k Kind) String() string {
	switch {
	case k == EOF:
		return "EOF"
	case k.IsFallback():
		return fmt.Sprintf("BYTE(0x%02X)", uint8(k))
	case k.Valid():
		return kinds[k-firstNamed].name
	default:
		return fmt.Sprintf("Kind(%d)", uint16(k))
	}
}

// Lexeme returns the fixed spelling of a punctuation or operator kind.
// Kinds without a fixed spelling (EOF, Int, Name, fallback) return "".
func (k Kind) Lexeme() string {
	if k < firstNamed || !k.Valid() {
		return ""
	}
	return kinds[k-firstNamed].lexeme
}
