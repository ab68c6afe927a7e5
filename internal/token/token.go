package token

import (
	"fmt"

	"quill/internal/source"
)

// Payload is the value carried by literal-like tokens. It is implemented
// only by IntValue and NameValue.
type Payload interface {
	payload()
}

// IntValue is the payload of an Int token.
type IntValue uint64

// NameValue is the payload of a Name token: the canonical interned handle.
type NameValue source.StringID

func (IntValue) payload()  {}
func (NameValue) payload() {}

// Token represents a single source token with its location and payload.
type Token struct {
	Kind  Kind
	Span  source.Span
	value Payload
}

// New builds a token that carries no payload. It panics for Int and Name,
// which must be built with NewInt and NewName.
func New(kind Kind, span source.Span) Token {
	if kind == Int || kind == Name {
		panic(fmt.Sprintf("token.New: kind %v requires a payload", kind))
	}
	return Token{Kind: kind, Span: span}
}

// NewInt builds an Int token.
func NewInt(span source.Span, v uint64) Token {
	return Token{Kind: Int, Span: span, value: IntValue(v)}
}

// NewName builds a Name token.
func NewName(span source.Span, id source.StringID) Token {
	return Token{Kind: Name, Span: span, value: NameValue(id)}
}

// Payload returns the token's payload, or nil for kinds without one.
func (t Token) Payload() Payload { return t.value }

// Int returns the literal value of an Int token.
func (t Token) Int() (uint64, bool) {
	v, ok := t.value.(IntValue)
	return uint64(v), ok
}

// Name returns the interned handle of a Name token.
func (t Token) Name() (source.StringID, bool) {
	v, ok := t.value.(NameValue)
	return source.StringID(v), ok
}

// Text returns the lexeme inside src, the buffer the token was scanned from.
// The result aliases src.
func (t Token) Text(src []byte) []byte {
	if t.Span.Start > t.Span.End || int(t.Span.End) > len(src) {
		return nil
	}
	return src[t.Span.Start:t.Span.End]
}

// IsEOF reports whether the token ends the stream.
func (t Token) IsEOF() bool { return t.Kind == EOF }

// IsLiteral reports whether the token is an integer literal.
func (t Token) IsLiteral() bool { return t.Kind == Int }

// IsName reports whether the token is an identifier.
func (t Token) IsName() bool { return t.Kind == Name }

// IsPunctOrOp reports whether the token is a punctuation or operator.
func (t Token) IsPunctOrOp() bool {
	return t.Kind > Name && t.Kind <= lastNamed
}

func (t Token) String() string {
	switch v := t.value.(type) {
	case IntValue:
		return fmt.Sprintf("%v(%d)@%v", t.Kind, uint64(v), t.Span)
	case NameValue:
		return fmt.Sprintf("%v(#%d)@%v", t.Kind, uint32(v), t.Span)
	default:
		return fmt.Sprintf("%v@%v", t.Kind, t.Span)
	}
}
